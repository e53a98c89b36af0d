// Package server exposes the query engine over HTTP.
//
// One Server serves one graph that was loaded and prepared at startup. All
// requests and responses are JSON:
//
//	GET  /healthz       liveness check
//	GET  /v1/stats      graph size and per-label statistics
//	POST /v1/estimate   {"query": "0+/1-"} -> estimated cardinality
//	POST /v1/evaluate   {"query": "0+/1-"} -> exact cardinality and plan
//	POST /v1/plan       {"query": "0+/1-", "strategy": "greedy"} -> join plan
//
// Errors are returned as {"error": {"code": "INVALID_QUERY", "message": ...}}
// with status 400 for invalid input, 404 for unknown resources and 500
// otherwise.
//
// The engine is single-threaded: evaluations are serialized by a mutex, so
// concurrent requests queue rather than run in parallel.
package server
