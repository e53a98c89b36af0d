package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/quicksilver/pkg/cache"
	"github.com/matzehuels/quicksilver/pkg/config"
)

func TestCacheDir(t *testing.T) {
	// Clear XDG_CACHE_HOME to test default behavior
	oldXdg := os.Getenv("XDG_CACHE_HOME")
	os.Unsetenv("XDG_CACHE_HOME")
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	if dir == "" {
		t.Error("cacheDir() returned empty string")
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}

	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}

	if !strings.Contains(dir, ".cache") {
		t.Errorf("cacheDir() = %q, should contain '.cache'", dir)
	}
}

func TestCacheDirStructure(t *testing.T) {
	// Clear XDG_CACHE_HOME to test default behavior
	oldXdg := os.Getenv("XDG_CACHE_HOME")
	os.Unsetenv("XDG_CACHE_HOME")
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := "/tmp/custom-cache"
	oldXdg := os.Getenv("XDG_CACHE_HOME")
	os.Setenv("XDG_CACHE_HOME", customCache)
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		} else {
			os.Unsetenv("XDG_CACHE_HOME")
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestFileCacheDir(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = "/var/cache/qs"
	dir, err := fileCacheDir(cfg)
	if err != nil {
		t.Fatalf("fileCacheDir() error: %v", err)
	}
	if dir != "/var/cache/qs" {
		t.Errorf("fileCacheDir() = %q, want configured dir", dir)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	cfg.Cache.Dir = ""
	dir, err = fileCacheDir(cfg)
	if err != nil {
		t.Fatalf("fileCacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", appName); dir != want {
		t.Errorf("fileCacheDir() = %q, want %q", dir, want)
	}
}

func TestNewCacheBackends(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)

	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	store, err := c.newCache(cfg, false)
	if err != nil {
		t.Fatalf("newCache(file) error: %v", err)
	}
	if _, ok := store.(*cache.FileCache); !ok {
		t.Errorf("newCache(file) = %T, want *cache.FileCache", store)
	}

	store, _ = c.newCache(cfg, true)
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("newCache(noCache) = %T, want *cache.NullCache", store)
	}

	cfg.Cache.Backend = "none"
	store, err = c.newCache(cfg, false)
	if err != nil {
		t.Fatalf("newCache(none) error: %v", err)
	}
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("newCache(none) = %T, want *cache.NullCache", store)
	}

	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.Addr = "127.0.0.1:1"
	store, err = c.newCache(cfg, false)
	if err != nil {
		t.Fatalf("newCache(unreachable redis) error: %v", err)
	}
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("newCache(unreachable redis) = %T, want *cache.NullCache", store)
	}
}

func TestNewRunnerScope(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	cfg := config.Default()
	cfg.Cache.Backend = "none"
	cfg.Cache.Scope = "build-1"
	c.cfg = cfg

	runner, err := c.newRunner(false)
	if err != nil {
		t.Fatalf("newRunner() error: %v", err)
	}
	defer runner.Close()

	got := runner.Keyer.StatsKey("abc")
	if !strings.HasPrefix(got, "build-1:") {
		t.Errorf("StatsKey() = %q, want build-1: prefix", got)
	}
}
