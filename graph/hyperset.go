package graph

import (
	"sort"
	"strconv"
	"strings"
)

// HyperChain is an ascending sequence of partial-exon vertex indices
// a single read (or bridged read-pair) is known to visit (§4.2 step
// 9). Chains of length < 2 carry no phasing information and are never
// inserted into a HyperSet.
type HyperChain []int32

func (c HyperChain) key() string {
	var b strings.Builder
	for i, v := range c {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(v)))
	}
	return b.String()
}

// HyperSet is a multiset of HyperChains with a support count each
// (§3). It is the read-derived phasing evidence the Router consults
// when deciding how to pair a vertex's in-edges with its out-edges.
type HyperSet struct {
	index  map[string]int
	chains []HyperChain
	counts []int
}

// NewHyperSet returns an empty set.
func NewHyperSet() *HyperSet {
	return &HyperSet{index: make(map[string]int)}
}

// Add records one observation of chain, merging it into an existing
// entry if an identical chain was already observed.
func (s *HyperSet) Add(chain HyperChain) {
	if len(chain) < 2 {
		return
	}
	k := chain.key()
	if i, ok := s.index[k]; ok {
		s.counts[i]++
		return
	}
	s.index[k] = len(s.chains)
	s.chains = append(s.chains, chain)
	s.counts = append(s.counts, 1)
}

// Chains returns every distinct chain together with its support
// count, in insertion order.
func (s *HyperSet) Chains() []HyperChain { return s.chains }

// Count returns the support count of the i-th chain returned by
// Chains.
func (s *HyperSet) Count(i int) int { return s.counts[i] }

// Len returns the number of distinct chains.
func (s *HyperSet) Len() int { return len(s.chains) }

// RoutesThrough returns, for a vertex v, every (in, out) adjacent pair
// implied by a chain that passes through v, i.e. every consecutive
// pair (p, v, q) within a chain, once per occurrence and without a
// support count, sorted by (p, q). Used by the Router (§4.4) to build
// the bipartite phasing graph.
func (s *HyperSet) RoutesThrough(v int32) [][2]int32 {
	var routes [][2]int32
	for _, chain := range s.chains {
		for i := 1; i < len(chain)-1; i++ {
			if chain[i] == v {
				routes = append(routes, [2]int32{chain[i-1], chain[i+1]})
			}
		}
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i][0] != routes[j][0] {
			return routes[i][0] < routes[j][0]
		}
		return routes[i][1] < routes[j][1]
	})
	return routes
}
