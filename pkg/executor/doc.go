// Package executor evaluates path queries exactly with projections and
// sort-merge joins over a labeled graph.
//
// A [ResultSet] holds (source, target) pairs. [Project] produces the result
// of a single step and [Join] the result of concatenating two sub-paths.
// Join always returns a duplicate-free set sorted by (source, target):
// parallel edges with the same label between the same two vertices collapse
// into one pair. Project returns the label's edges as stored; use [Distinct]
// when set semantics are needed for a single step.
//
// All functions are synchronous and allocate fresh result slices; the graph
// and the input sets are never modified.
package executor
