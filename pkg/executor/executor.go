package executor

import (
	"fmt"
	"slices"

	"github.com/matzehuels/quicksilver/pkg/graph"
)

// ResultSet is an intermediate query result: (source, target) vertex pairs.
type ResultSet []graph.Pair

// Project returns every edge of label as a (source, target) pair, or as
// (target, source) when inverse is set. A label without edges yields an empty
// set.
//
// The result is a bag, not a set: parallel edges with the same label between
// the same two vertices appear once per edge, in storage order. Join
// deduplicates its output, so this only matters when a projection is the
// final result; pass it through Distinct for set semantics.
//
// Project panics if label is outside the graph's label range.
func Project(label uint32, inverse bool, g *graph.Graph) ResultSet {
	edges := g.Edges(label)
	out := make(ResultSet, len(edges))
	for i, e := range edges {
		if inverse {
			out[i] = e.Reverse()
		} else {
			out[i] = e
		}
	}
	return out
}

// Join computes the concatenation of left and right: every (a, c) such that
// (a, b) is in left and (b, c) is in right. The result is sorted by
// (source, target) and contains each pair at most once, even when the inputs
// contain duplicates.
//
// Join sorts a copy of right by source and indexes the first position of each
// source vertex, then scans the matching run for every left pair. It runs in
// O(L + R log R + K log K) for K emitted pairs.
func Join(left, right ResultSet) ResultSet {
	if len(left) == 0 || len(right) == 0 {
		return ResultSet{}
	}

	sorted := slices.Clone(right)
	graph.SortBySrc(sorted)
	pos := firstPositions(sorted)

	out := make(ResultSet, 0, len(left))
	for _, l := range left {
		if int64(l.Dst) >= int64(len(pos)) {
			continue
		}
		for j := pos[l.Dst]; j < len(sorted) && sorted[j].Src == l.Dst; j++ {
			p := graph.Pair{Src: l.Src, Dst: sorted[j].Dst}
			if n := len(out); n > 0 && out[n-1] == p {
				continue
			}
			out = append(out, p)
		}
	}

	graph.SortPairs(out)
	return graph.Dedup(out)
}

// firstPositions indexes sorted (ordered by source) so that pos[v] is the
// first position whose source is v, or len(sorted) if v has no pairs.
func firstPositions(sorted ResultSet) []int {
	maxSrc := sorted[len(sorted)-1].Src
	pos := make([]int, int64(maxSrc)+1)
	for i := range pos {
		pos[i] = len(sorted)
	}
	// backward scan leaves the lowest index of every run
	for j := len(sorted) - 1; j >= 0; j-- {
		pos[sorted[j].Src] = j
	}
	return pos
}

// Summarize reports the cardinality of an evaluated result: NoPaths is the
// number of distinct pairs, NoOut and NoIn are left at zero. Benchmarks
// compare estimates against exactly this shape; use SummarizeExact to also
// count distinct endpoints.
func Summarize(rs ResultSet) graph.CardStat {
	return graph.CardStat{NoPaths: uint32(len(rs))}
}

// SummarizeExact reports the number of distinct sources, pairs and targets
// in rs. rs must be duplicate-free, as returned by Project after Dedup or by
// Join.
func SummarizeExact(rs ResultSet) graph.CardStat {
	if len(rs) == 0 {
		return graph.CardStat{}
	}
	sources := make(map[uint32]struct{})
	targets := make(map[uint32]struct{})
	for _, p := range rs {
		sources[p.Src] = struct{}{}
		targets[p.Dst] = struct{}{}
	}
	return graph.CardStat{
		NoOut:   uint32(len(sources)),
		NoPaths: uint32(len(rs)),
		NoIn:    uint32(len(targets)),
	}
}

// Distinct returns rs sorted and without duplicate pairs. A projection of a
// label with parallel edges contains duplicates until it is joined or passed
// through Distinct.
func Distinct(rs ResultSet) ResultSet {
	out := slices.Clone(rs)
	graph.SortPairs(out)
	return graph.Dedup(out)
}

// String formats a short description of the set for debug logging.
func (rs ResultSet) String() string {
	if len(rs) <= 8 {
		return fmt.Sprint([]graph.Pair(rs))
	}
	return fmt.Sprintf("%v ... (%d pairs)", []graph.Pair(rs[:8]), len(rs))
}
