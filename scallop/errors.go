package scallop

import "errors"

// ErrNonterminating is scallop's AssemblyNonterminating signal (§7):
// the link/decompose loop hit its iteration cap without reaching a
// fixpoint. Driver.AssembleBundle never returns it to its own caller —
// it logs a warning and falls back to whatever the greedy path
// collector can still extract from the graph in its current state.
var ErrNonterminating = errors.New("scallop: simplification did not converge")
