// Package cache stores derived artifacts of benchmark runs.
//
// The engine itself never touches a cache. The benchmark runner and the HTTP
// server use one to skip work that depends only on the graph file: the
// per-label statistics table is keyed by the SHA-256 of the graph file, so a
// second run over the same graph loads the table instead of calling
// Prepare. Benchmark reports are stored by run id.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default,
//     ~/.cache/quicksilver/)
//   - [RedisCache]: a Redis server shared by several machines
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] builds cache keys so callers never format them by hand. Wrap it
// in a [ScopedKeyer] to give several workloads separate namespaces on one
// backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiration.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Pinger is implemented by backends that can check they are usable before
// the first Get. All backends in this package implement it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Keyer builds cache keys.
type Keyer interface {
	// StatsKey is the key of the label statistics table of a graph, given
	// the hash of the graph file.
	StatsKey(graphHash string) string

	// ReportKey is the key of a stored benchmark report.
	ReportKey(runID string) string
}

// statsVersion changes whenever the encoding or meaning of the statistics
// table changes, invalidating old entries.
const statsVersion = 1

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// StatsKey hashes the graph hash together with the table version.
func (DefaultKeyer) StatsKey(graphHash string) string {
	return hashKey("stats", graphHash, statsVersion)
}

// ReportKey returns "report:<runID>".
func (DefaultKeyer) ReportKey(runID string) string {
	return "report:" + runID
}
