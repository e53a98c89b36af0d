package graph

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/quicksilver/pkg/errors"
)

// Pair is a directed (source, target) vertex pair. It is both the unit of
// edge storage and the element type of intermediate query results.
type Pair struct {
	Src uint32 `json:"src"`
	Dst uint32 `json:"dst"`
}

// Reverse returns the pair with source and target swapped.
func (p Pair) Reverse() Pair { return Pair{Src: p.Dst, Dst: p.Src} }

// Graph is a directed multigraph whose edges are partitioned by label.
//
// The zero value is not usable - use New to create a Graph with declared
// vertex and label bounds.
type Graph struct {
	numVertices uint32
	numLabels   uint32
	numEdges    int
	adj         [][]Pair // label -> edges
}

// New creates an empty graph that accepts vertex ids below numVertices and
// label ids below numLabels.
func New(numVertices, numLabels uint32) *Graph {
	return &Graph{
		numVertices: numVertices,
		numLabels:   numLabels,
		adj:         make([][]Pair, numLabels),
	}
}

// NumVertices returns the declared vertex bound.
func (g *Graph) NumVertices() uint32 { return g.numVertices }

// NumLabels returns the declared label bound.
func (g *Graph) NumLabels() uint32 { return g.numLabels }

// NumEdges returns the number of edges added, duplicates included.
func (g *Graph) NumEdges() int { return g.numEdges }

// AddEdge appends the edge from -[label]-> to. It returns an INVALID_GRAPH
// error if any id is outside the bounds declared in New; the graph is left
// unchanged in that case.
func (g *Graph) AddEdge(from, to, label uint32) error {
	if from >= g.numVertices {
		return errors.New(errors.ErrCodeInvalidGraph, "source vertex %d out of range (max %d)", from, g.numVertices)
	}
	if to >= g.numVertices {
		return errors.New(errors.ErrCodeInvalidGraph, "target vertex %d out of range (max %d)", to, g.numVertices)
	}
	if label >= g.numLabels {
		return errors.New(errors.ErrCodeInvalidGraph, "label %d out of range (max %d)", label, g.numLabels)
	}
	g.adj[label] = append(g.adj[label], Pair{Src: from, Dst: to})
	g.numEdges++
	return nil
}

// Edges returns the edge list of label in insertion order. The returned slice
// is shared with the graph and must not be modified; sort a copy instead.
//
// Edges panics if label is not below NumLabels. An out-of-range label means a
// query was not validated against this graph, which is a caller bug.
func (g *Graph) Edges(label uint32) []Pair {
	if label >= g.numLabels {
		panic(fmt.Sprintf("graph: label %d out of range (numLabels=%d)", label, g.numLabels))
	}
	return g.adj[label]
}

// UsedLabels returns the labels that have at least one edge, in ascending order.
func (g *Graph) UsedLabels() []uint32 {
	var used []uint32
	for l, edges := range g.adj {
		if len(edges) > 0 {
			used = append(used, uint32(l))
		}
	}
	return used
}

// =============================================================================
// Sorting Helpers
// =============================================================================

// SortBySrc sorts pairs in place by source vertex. Pairs with equal sources
// keep no particular order.
func SortBySrc(pairs []Pair) {
	slices.SortFunc(pairs, func(a, b Pair) int { return cmp.Compare(a.Src, b.Src) })
}

// SortByDst sorts pairs in place by target vertex.
func SortByDst(pairs []Pair) {
	slices.SortFunc(pairs, func(a, b Pair) int { return cmp.Compare(a.Dst, b.Dst) })
}

// SortPairs sorts pairs in place lexicographically by (Src, Dst).
func SortPairs(pairs []Pair) {
	slices.SortFunc(pairs, ComparePairs)
}

// ComparePairs orders pairs lexicographically by (Src, Dst).
func ComparePairs(a, b Pair) int {
	if c := cmp.Compare(a.Src, b.Src); c != 0 {
		return c
	}
	return cmp.Compare(a.Dst, b.Dst)
}

// Dedup removes adjacent duplicates from pairs and returns the shortened
// slice. Call it on a slice sorted with SortPairs to obtain set semantics.
func Dedup(pairs []Pair) []Pair {
	return slices.Compact(pairs)
}
