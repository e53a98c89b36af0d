package estimator

import (
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/quicksilver/pkg/errors"
	"github.com/matzehuels/quicksilver/pkg/graph"
	"github.com/matzehuels/quicksilver/pkg/observability"
	"github.com/matzehuels/quicksilver/pkg/query"
)

// Simple is the label-statistics estimator.
//
// The zero value is not usable - use NewSimple. After Prepare (or LoadStats)
// a Simple is read-only and safe for concurrent Estimate calls.
type Simple struct {
	graph *graph.Graph
	stats []graph.CardStat // label -> {distinct sources, edges, distinct targets}
}

// NewSimple creates an estimator for g. Statistics are not computed until
// Prepare is called.
func NewSimple(g *graph.Graph) *Simple {
	return &Simple{graph: g}
}

// Prepare computes the statistics row of every label. It runs in
// O(E log E) over all edges.
func (s *Simple) Prepare() {
	start := time.Now()
	n := s.graph.NumLabels()
	stats := make([]graph.CardStat, n)

	var scratch []graph.Pair
	for l := uint32(0); l < n; l++ {
		edges := s.graph.Edges(l)
		if len(edges) == 0 {
			continue
		}
		scratch = append(scratch[:0], edges...)
		stats[l] = labelStat(scratch)
	}
	s.stats = stats
	observability.Engine().OnPrepare(int(n), time.Since(start))
}

// labelStat counts distinct sources and targets of edges. It reorders edges.
func labelStat(edges []graph.Pair) graph.CardStat {
	graph.SortBySrc(edges)
	out := countRuns(edges, func(p graph.Pair) uint32 { return p.Src })

	graph.SortByDst(edges)
	in := countRuns(edges, func(p graph.Pair) uint32 { return p.Dst })

	return graph.CardStat{NoOut: out, NoPaths: uint32(len(edges)), NoIn: in}
}

// countRuns counts maximal runs of equal keys in a slice sorted by key.
func countRuns(edges []graph.Pair, key func(graph.Pair) uint32) uint32 {
	var runs uint32
	for i := range edges {
		if i == 0 || key(edges[i]) != key(edges[i-1]) {
			runs++
		}
	}
	return runs
}

// Prepared reports whether statistics are available.
func (s *Simple) Prepared() bool { return s.stats != nil }

// Stats returns a copy of the per-label statistics table, indexed by label.
// It returns nil before Prepare.
func (s *Simple) Stats() []graph.CardStat {
	return slices.Clone(s.stats)
}

// LabelStat returns the statistics row for label.
func (s *Simple) LabelStat(label uint32) graph.CardStat {
	s.mustBePrepared()
	if int(label) >= len(s.stats) {
		panic(fmt.Sprintf("estimator: label %d out of range (numLabels=%d)", label, len(s.stats)))
	}
	return s.stats[label]
}

// LoadStats installs a statistics table computed earlier for the same graph,
// for example one restored from a cache, instead of calling Prepare. It
// returns an INVALID_INPUT error if the table does not have one row per label.
func (s *Simple) LoadStats(stats []graph.CardStat) error {
	if len(stats) != int(s.graph.NumLabels()) {
		return errors.New(errors.ErrCodeInvalidInput,
			"statistics table has %d rows, graph has %d labels", len(stats), s.graph.NumLabels())
	}
	s.stats = slices.Clone(stats)
	return nil
}

// Estimate predicts the cardinality of q. A query without steps estimates to
// the zero CardStat.
//
// Estimate panics if called before Prepare or if q uses a label outside the
// statistics table; validate queries with query.Validate first.
func (s *Simple) Estimate(q *query.Node) graph.CardStat {
	return s.EstimateSteps(query.Steps(q))
}

// EstimateSteps is Estimate for an already flattened step sequence.
func (s *Simple) EstimateSteps(steps []query.Step) graph.CardStat {
	if len(steps) == 0 {
		return graph.CardStat{}
	}

	left := s.stepStat(steps[0])
	if len(steps) == 1 {
		return left
	}

	overlap := (left.NoIn + left.NoOut) / 2
	for _, step := range steps[1:] {
		right := s.stepStat(step)
		overlap /= 4
		left = combine(left, right, overlap)
	}
	return left
}

// stepStat returns the statistics row of step, reversed for inverse steps.
func (s *Simple) stepStat(step query.Step) graph.CardStat {
	row := s.LabelStat(step.Label)
	if step.Dir == query.Inverse {
		return row.Reverse()
	}
	return row
}

// combine estimates the concatenation left/right.
func combine(left, right graph.CardStat, overlap uint32) graph.CardStat {
	in := left.NoIn / 4
	out := right.NoOut / 4

	product := 2 * left.NoPaths * right.NoPaths
	paths := min(
		product/max(right.NoIn+right.NoOut+overlap, 1),
		product/max(left.NoOut+left.NoIn+overlap, 1),
	)
	return graph.CardStat{NoOut: min(out, paths), NoPaths: paths, NoIn: min(in, paths)}
}

func (s *Simple) mustBePrepared() {
	if s.stats == nil {
		panic("estimator: Estimate called before Prepare")
	}
}
