// Package pkg provides the core libraries for Quicksilver regular path query
// planning and evaluation.
//
// # Overview
//
// Quicksilver answers regular path queries over edge-labelled graphs. A
// query such as "0+/1-/2+" is a concatenation of steps; each step follows the
// edges of one label forwards (+) or backwards (-). The pkg directory is
// organized into three areas:
//
//  1. Engine - graph storage, query trees, estimation, joins and planning
//  2. Infrastructure - caching, configuration, errors and observability
//  3. Entry points - workload benchmarks and the HTTP server
//
// # Architecture
//
// The typical data flow:
//
//	Graph file (edge list)
//	         ↓
//	    [graph] package (per-label adjacency lists)
//	         ↓
//	    [estimator] package (per-label statistics, cardinality estimates)
//	         ↓
//	    [planner] package (join order: greedy or exhaustive)
//	         ↓
//	    [executor] package (projection and sort-merge joins)
//	         ↓
//	    (sources, paths, targets)
//
// [evaluator] ties the pipeline together.
//
// # Quick Start
//
//	g, _ := graph.ReadGraphFile("graph.txt")
//
//	ev := evaluator.New(g)
//	ev.AttachEstimator(estimator.NewSimple(g))
//	ev.Prepare()
//
//	q, _ := query.Parse("0+/1-/2+")
//	stat, _ := ev.Evaluate(q)
//	fmt.Println(stat.NoPaths)
//
// # Main Packages
//
// ## Engine
//
// [graph] - Immutable labelled graph with per-label edge lists, the CardStat
// triple and the edge-list file format.
//
// [query] - Query trees, the path expression parser and workload files.
//
// [estimator] - Cardinality estimation from per-label statistics.
//
// [executor] - Result sets, projection, the sort-merge join and summaries.
//
// [planner] - Join ordering. Greedy merges the cheapest adjacent pair;
// exhaustive searches all bracketings span by span. Plans can
// be drawn with Graphviz.
//
// [evaluator] - Plans and executes queries against one graph.
//
// ## Infrastructure
//
// [cache] - Cache interface with file, redis, mongo and null backends. Used for
// label statistics and benchmark reports.
//
// [config] - TOML configuration.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Hooks for engine and cache events.
//
// ## Entry Points
//
// [bench] - Workload runner comparing estimates with exact results.
//
// [server] - HTTP API over one prepared graph.
//
// # Testing
//
//	go test ./pkg/...         # All tests
//	go test -short ./pkg/...  # Skip Graphviz rendering
//	go test -run Example      # Examples only
package pkg
