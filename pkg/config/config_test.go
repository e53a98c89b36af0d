package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/quicksilver/pkg/errors"
	"github.com/matzehuels/quicksilver/pkg/planner"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quicksilver.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExplicitFile(t *testing.T) {
	path := writeConfig(t, `
[planner]
threshold = 500
strategy = "greedy"

[evaluator]
exact_endpoints = true

[cache]
backend = "redis"
ttl = "1h"

[cache.redis]
addr = "redis:6379"

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Planner.Threshold != 500 {
		t.Errorf("Planner.Threshold = %d, want 500", cfg.Planner.Threshold)
	}
	if cfg.Strategy() != planner.StrategyGreedy {
		t.Errorf("Strategy() = %s, want greedy", cfg.Strategy())
	}
	if !cfg.Evaluator.ExactEndpoints {
		t.Error("Evaluator.ExactEndpoints = false, want true")
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Redis.Addr != "redis:6379" {
		t.Errorf("Cache = %+v, want redis at redis:6379", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("Cache.TTL = %s, want 1h", cfg.Cache.TTL)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel() = %s, want debug", cfg.LogLevel())
	}
	// untouched sections keep their defaults
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Cache.Redis.KeyPrefix != "quicksilver:" {
		t.Errorf("Cache.Redis.KeyPrefix = %q, want quicksilver:", cfg.Cache.Redis.KeyPrefix)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[planner]
threshold = 0
strategy = ""

[cache]
backend = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Planner.Threshold != planner.DefaultThreshold {
		t.Errorf("Planner.Threshold = %d, want %d", cfg.Planner.Threshold, planner.DefaultThreshold)
	}
	if cfg.Planner.Strategy != "auto" {
		t.Errorf("Planner.Strategy = %q, want auto", cfg.Planner.Strategy)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadSearchesDefaultPaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "configs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "configs", "quicksilver.toml"), []byte("[server]\naddr = \":9999\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want :9999", cfg.Server.Addr)
	}
}

func TestLoadWithoutFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Planner.Threshold != planner.DefaultThreshold {
		t.Errorf("Planner.Threshold = %d, want default", cfg.Planner.Threshold)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[planner\nthreshold = 1", errors.ErrCodeInvalidConfig},
		{"unknown key", "[planner]\nthreshhold = 1\n", errors.ErrCodeInvalidConfig},
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidConfig},
		{"unknown strategy", "[planner]\nstrategy = \"random\"\n", errors.ErrCodeInvalidConfig},
		{"unknown level", "[log]\nlevel = \"loud\"\n", errors.ErrCodeInvalidConfig},
		{"bad duration", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidConfig},
		{"negative ttl", "[cache]\nttl = \"-1h\"\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "quicksilver.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def := Default()
	if cfg.Planner != def.Planner {
		t.Errorf("Planner = %+v, want %+v", cfg.Planner, def.Planner)
	}
	if cfg.Cache.TTL != def.Cache.TTL {
		t.Errorf("Cache.TTL = %s, want %s", cfg.Cache.TTL, def.Cache.TTL)
	}
	if cfg.Server != def.Server {
		t.Errorf("Server = %+v, want %+v", cfg.Server, def.Server)
	}
}

func TestLoadMongoBackend(t *testing.T) {
	path := writeConfig(t, `
[cache]
backend = "mongo"

[cache.mongo]
uri = "mongodb://db:27017"
timeout = "2s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	m := cfg.Cache.Mongo
	if m.URI != "mongodb://db:27017" || m.Timeout.Duration != 2*time.Second {
		t.Errorf("Cache.Mongo = %+v, want db:27017 with 2s timeout", m)
	}
	if m.Database != "quicksilver" || m.Collection != "cache" {
		t.Errorf("Cache.Mongo = %+v, want default database and collection", m)
	}
}
