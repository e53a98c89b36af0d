// Package bench runs query workloads against a graph and reports estimation
// accuracy and timings.
//
// # Overview
//
// A benchmark run has two phases:
//
//  1. Setup: read the graph file into memory and prepare the estimator. The
//     statistics table is cached by graph file hash, so repeated runs over
//     the same graph skip the preparation pass.
//  2. Workload: for every workload entry, parse the path, then estimate its
//     cardinality, evaluate it exactly, or both, timing each step.
//
// A failing query (unknown label, syntax error) is recorded in its [Result]
// and the run continues; only setup failures and cancellation abort a run.
//
// # Usage
//
//	runner := bench.NewRunner(cache, nil, logger)
//	report, err := runner.Run(ctx, bench.Options{
//	    GraphPath:    "graph.nt",
//	    WorkloadPath: "queries.csv",
//	    Mode:         bench.ModeBoth,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(report.Summary())
package bench
