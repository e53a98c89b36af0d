// Package planner chooses the join order for path queries.
//
// # Overview
//
// A path query such as 0+/1-/2+ can be evaluated under any bracketing of
// its steps: ((0+/1-)/2+) or (0+/(1-/2+)) produce the same result, but the
// size of the intermediate join results can differ by orders of magnitude on
// skewed labels. The planner keeps the left-to-right order of the steps and
// picks a bracketing that minimizes the sum of the estimated path counts of
// every intermediate join. It never executes a join; an
// [estimator.Estimator] is its only cost oracle.
//
// # Strategies
//
//   - [Planner.Greedy] repeatedly merges the adjacent pair with the smallest
//     estimated path count. O(n²) estimates for n steps.
//   - [Planner.Exhaustive] finds the cheapest bracketing with a dynamic
//     program over leaf spans. O(n³) time and O(n²) estimates.
//
// [Planner.Optimize] switches between the two: when the number of steps times
// the estimated path count of the whole query exceeds the threshold
// ([DefaultThreshold] unless set with [WithThreshold]) the query is considered
// expensive and planned greedily, otherwise exhaustively. Queries with more
// than [MaxAutoExhaustiveLeaves] steps are always planned greedily.
//
// # Visualization
//
// [ToDOT] converts a plan into Graphviz DOT source and [RenderSVG] renders it
// in-process with [github.com/goccy/go-graphviz].
package planner
