// Package query provides the path-query syntax tree, its parser and the
// workload file format used by benchmarks.
//
// # Syntax
//
// A path query is a concatenation of steps. Each step names an edge label
// and a direction: "+" follows edges forwards, "-" follows them backwards.
//
//	0+          edges with label 0
//	0+/1-       label 0 forwards, then label 1 backwards
//	(0+/1-)/2+  parentheses group sub-paths
//
// [Parse] builds a binary [Node] tree. Concatenation is associative for
// evaluation purposes, so the shape of the tree only affects the cost of
// evaluating it; [Steps] returns the left-to-right step sequence that defines
// the query's meaning.
//
// # Trees
//
// Nodes are immutable after construction. Optimizers build new trees by
// allocating fresh [Concat] nodes over existing subtrees, so a leaf may be
// shared between the parsed query and any number of candidate plans.
//
// # Workloads
//
// [ReadWorkload] parses benchmark workload files with one query per line in
// the form "source,path,target", where source and target are "*" or a
// vertex id.
package query
