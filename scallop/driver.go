// Package scallop implements §4.6 and §4.7: the per-bundle
// splice-graph simplification loop (weight smoothing, linking,
// equation-driven decomposition) and the path collector that turns a
// simplified graph into transcript candidates.
package scallop

import (
	"context"
	"log"

	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/scallop/bundle"
	"github.com/exascience/scallop/graph"
)

// maxSimplifyIterations bounds the outer link/decompose loop, grounded
// on kmerGraph.simplify's own 100-iteration cap
// (filters/assemble-reads.go) before it gives up and accepts whatever
// fixpoint it has reached.
const maxSimplifyIterations = 100

// Driver runs the Scallop core (§5: single-threaded, no shared state)
// over one bundle at a time.
type Driver struct {
	cfg Config
}

// NewDriver returns a Driver configured with cfg.
func NewDriver(cfg Config) *Driver {
	debugAssertions = cfg.Debug
	return &Driver{cfg: cfg}
}

// debugAssertions gates the invariant checks named in §7: disabled by
// default, enabled by config.Config.Debug / --debug. §5 runs one
// Driver per process with no shared state, so a package-level flag set
// once in NewDriver is enough.
var debugAssertions = false

// assertAcyclic panics if g's DAG invariant was broken by the
// simplification pass that just ran. This is a bug in the simplifier,
// never a user-facing condition, matching elPrep's own log.Panic use
// for "this should be impossible" states.
func assertAcyclic(g *graph.SpliceGraph) {
	if debugAssertions && !g.IsAcyclic() {
		log.Panic("scallop: splice graph is no longer acyclic after simplification")
	}
}

// AssembleBundle runs §4.6's weight smoothing once, then its outer
// iterate loop (equation phase, linking, decomposition, repeated until
// none of the three changes the graph), followed by §4.7's path
// collection, returning the accepted transcript candidates. A
// non-converging graph (ErrNonterminating) is logged and not treated
// as fatal: whatever the residual graph's widest paths still yield is
// returned.
func (d *Driver) AssembleBundle(bd *bundle.Bundle) []Path {
	smoothWeights(bd.Graph)
	if err := simplify(bd.Graph, bd.Hyper); err != nil {
		log.Printf("scallop: bundle %s:%d-%d did not converge within %d iterations; collecting residual paths",
			*bd.Chrom, bd.Lpos, bd.Rpos, maxSimplifyIterations)
	}
	paths := CollectPaths(bd.Graph, d.cfg.AverageReadLength)
	return filterPaths(paths, d.cfg)
}

// simplify implements §4.6's outer loop exactly as scallop3::iterate
// structures it (original_source/src/src/scallop3.cc:25-82): every
// round re-runs the equation phase before linking and decomposition,
// since each of the three can change which disjoint-set
// representatives exist and what they weigh, making an equation
// discoverable (or a link/decomposition possible) that the previous
// round couldn't see. The round keeps going until none of the three
// changes the graph.
func simplify(g *graph.SpliceGraph, hs *graph.HyperSet) error {
	for i := 0; i < maxSimplifyIterations; i++ {
		equated := equationPhase(g)
		linked := linkEdges(g)
		decomposed := applyEquations(g, hs)
		assertAcyclic(g)
		if !equated && !linked && !decomposed {
			return nil
		}
	}
	return ErrNonterminating
}

func filterPaths(paths []Path, cfg Config) []Path {
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		if len(p.Exons) == 0 {
			continue
		}
		if len(p.Exons) == 1 && cfg.IgnoreSingleExonTranscripts {
			continue
		}
		if p.Length() < cfg.MinTranscriptLength {
			continue
		}
		out = append(out, p)
	}
	return out
}

// BundleResult pairs one bundle with the transcripts assembled from it.
type BundleResult struct {
	Bundle *bundle.Bundle
	Paths  []Path
}

// Sink receives one bundle's finished transcripts, in bundle order.
// cmd/assemble.go supplies one backed by gtfwriter.Writer.
type Sink func(BundleResult) error

// Run wires the whole per-bundle assembly as a pargo pipeline (§5's
// concurrency model: bundles are assembled in parallel, each bundle's
// own assembly is strictly single-threaded), in the same shape
// sam/filter-pipeline.go wires alignment batches: a source, a bounded
// parallel stage doing the actual work, and a strictly-ordered stage
// that hands results to sink in the original bundle order.
func (d *Driver) Run(bundles <-chan *bundle.Bundle, sink Sink) error {
	var p pipeline.Pipeline
	p.Source(&bundleSource{ch: bundles})
	p.Add(
		pipeline.LimitedPar(0, assembleNode(d)),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			for _, res := range data.([]BundleResult) {
				if err := sink(res); err != nil {
					p.SetErr(err)
					return nil
				}
			}
			return nil
		})),
	)
	p.Run()
	return p.Err()
}

// assembleNode returns the pipeline.Filter that runs AssembleBundle on
// every bundle in a batch.
func assembleNode(d *Driver) pipeline.Filter {
	return func(p *pipeline.Pipeline, _ pipeline.NodeKind, _ *int) (receiver pipeline.Receiver, finalizer pipeline.Finalizer) {
		receiver = func(_ int, data interface{}) interface{} {
			bundles := data.([]*bundle.Bundle)
			results := make([]BundleResult, len(bundles))
			for i, bd := range bundles {
				results[i] = BundleResult{Bundle: bd, Paths: d.AssembleBundle(bd)}
			}
			return results
		}
		return
	}
}

// bundleSource adapts a channel of bundles into a pargo pipeline.Source
// (§5: bundles stream in one at a time from the boundary reader), the
// same adaptation sam.InputFile makes for SAM/BAM records.
type bundleSource struct {
	ch  <-chan *bundle.Bundle
	buf []*bundle.Bundle
}

func (s *bundleSource) Err() error { return nil }

func (s *bundleSource) Prepare(context.Context) int { return -1 }

func (s *bundleSource) Fetch(size int) int {
	s.buf = s.buf[:0]
	for i := 0; i < size; i++ {
		bd, ok := <-s.ch
		if !ok {
			break
		}
		s.buf = append(s.buf, bd)
	}
	return len(s.buf)
}

func (s *bundleSource) Data() interface{} { return s.buf }
