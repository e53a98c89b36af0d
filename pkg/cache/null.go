package cache

import (
	"context"
	"time"
)

// NullCache is the backend used when caching is off: backend "none", the
// --no-cache flag, or a remote backend that did not answer a ping. Every
// lookup misses, so the runner recomputes label statistics on each run and
// stored reports are dropped.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache {
	return &NullCache{}
}

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error { return nil }
func (*NullCache) Close() error { return nil }

// Ping always succeeds; there is nothing to reach.
func (*NullCache) Ping(context.Context) error { return nil }

var (
	_ Cache  = (*NullCache)(nil)
	_ Pinger = (*NullCache)(nil)
)
