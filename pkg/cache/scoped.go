package cache

// ScopedKeyer wraps a Keyer with a prefix so that several workloads can share
// one backend without colliding, for example one Redis instance used by
// benchmark machines with different engine builds.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "build:"+buildinfo.Commit+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// StatsKey generates a prefixed key for label statistics.
func (k *ScopedKeyer) StatsKey(graphHash string) string {
	return k.prefix + k.inner.StatsKey(graphHash)
}

// ReportKey generates a prefixed key for benchmark reports.
func (k *ScopedKeyer) ReportKey(runID string) string {
	return k.prefix + k.inner.ReportKey(runID)
}
