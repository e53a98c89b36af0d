// Package evaluator computes exact results of path queries.
//
// An [Evaluator] owns a reference to a loaded graph and, optionally, an
// [estimator.Estimator]. With an estimator attached, every query is first
// re-bracketed by the [planner] and then executed bottom-up: leaves become
// projections and concatenations become joins (see [executor]). Without an
// estimator the query tree is executed as given.
//
// Typical use:
//
//	ev := evaluator.New(g, evaluator.WithLogger(logger))
//	ev.AttachEstimator(estimator.NewSimple(g))
//	ev.Prepare()
//	stat, err := ev.Evaluate(query.MustParse("0+/1-"))
//
// An Evaluator is not safe for concurrent use: it records the last plan it
// chose. Use one Evaluator per goroutine, or serialize calls.
package evaluator
