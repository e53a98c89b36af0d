// Package estimator predicts the cardinality of path queries without
// evaluating them.
//
// # Statistics
//
// [Simple.Prepare] scans every label once and records a [graph.CardStat] row:
// the number of distinct source vertices, the number of edges and the number
// of distinct target vertices. Counting distinct values sorts a private copy
// of each edge list, so the graph itself is never reordered and several
// estimators may prepare against the same graph concurrently.
//
// # Estimation
//
// [Simple.Estimate] flattens a query into its step sequence and folds the
// per-label rows from left to right. Each concatenation combines the running
// estimate with the next step's row using a selectivity model whose overlap
// term decays geometrically (divided by four per step):
//
//	paths = min(2·L.paths·R.paths / max(R.in+R.out+overlap, 1),
//	            2·L.paths·R.paths / max(L.out+L.in+overlap, 1))
//	out   = min(R.out/4, paths)
//	in    = min(L.in/4, paths)
//
// All arithmetic is unsigned 32-bit with truncating division. The planner's
// decisions and tie-breaks depend on these exact integer values, so they must
// not be computed in floating point.
package estimator
