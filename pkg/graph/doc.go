// Package graph provides the label-partitioned graph that path queries run over.
//
// # Overview
//
// A [Graph] stores one edge list per label. Vertex ids are dense integers in
// [0, NumVertices) and label ids are dense integers in [0, NumLabels). Every
// consumer (the estimator, the join executor) reads edges one label at a time,
// so this layout lets them touch only the labels a query mentions.
//
//	g := graph.New(10, 2)
//	_ = g.AddEdge(1, 2, 0) // 1 -[0]-> 2
//	_ = g.AddEdge(2, 4, 1) // 2 -[1]-> 4
//	for _, e := range g.Edges(0) {
//	    fmt.Println(e.Src, e.Dst)
//	}
//
// Edge lists are not sorted by contract and may contain duplicate edges.
// Callers that need an order sort a private copy with [SortBySrc],
// [SortByDst] or [SortPairs]; the canonical lists are never permuted, so a
// loaded graph is safe for concurrent readers.
//
// # Cardinality Statistics
//
// [CardStat] is the (distinct sources, paths, distinct targets) triple used
// both for estimates and for evaluated results, so the two can be compared
// directly by benchmark harnesses.
//
// # File Format
//
// [ReadGraph] and [WriteGraph] use the line-oriented edge-list format of the
// query benchmarks:
//
//	10,11,2        <- noVertices,noEdges,noLabels
//	1 0 2 .        <- subject predicate object
//	3 0 2 .
//	2 1 4 .
//
// Fields may be separated by spaces or tabs, and the trailing "." is optional.
// Blank lines and lines starting with "#" are ignored.
//
// # Concurrency
//
// A Graph is not safe for concurrent writes. Once loading is complete it is
// treated as immutable and all read methods are safe for concurrent use.
package graph
