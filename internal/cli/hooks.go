package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/quicksilver/pkg/observability"
)

// logHooks reports engine and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

// registerHooks installs logging hooks for the engine and the cache.
func registerHooks(logger *log.Logger) {
	h := &logHooks{logger: logger}
	observability.SetEngineHooks(h)
	observability.SetCacheHooks(h)
}

func (h *logHooks) OnPrepare(labels int, d time.Duration) {
	h.logger.Debug("statistics computed", "labels", labels, "duration", d)
}

func (h *logHooks) OnEstimate(query string, paths uint32, d time.Duration) {
	h.logger.Debug("estimated", "query", query, "paths", paths, "duration", d)
}

func (h *logHooks) OnPlan(query, strategy string, leaves int, cost uint64, d time.Duration) {
	h.logger.Debug("planned", "query", query, "strategy", strategy, "leaves", leaves, "cost", cost, "duration", d)
}

func (h *logHooks) OnEvaluate(query string, paths uint32, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("evaluation failed", "query", query, "error", err)
		return
	}
	h.logger.Debug("evaluated", "query", query, "paths", paths, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
