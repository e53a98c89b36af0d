package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/bench"
	"github.com/matzehuels/quicksilver/pkg/buildinfo"
	"github.com/matzehuels/quicksilver/pkg/cache"
	"github.com/matzehuels/quicksilver/pkg/config"
	"github.com/matzehuels/quicksilver/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "quicksilver"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Process exit codes returned by ExitCode.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitBadInput    = 2   // malformed query, graph file, path or config
	ExitInterrupted = 130 // SIGINT or SIGTERM
)

// ExitCode maps the error returned by the root command to a process exit
// code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.IsInputError(err):
		return ExitBadInput
	}
	return ExitFailure
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Quicksilver plans and evaluates regular path queries",
		Long: `Quicksilver estimates, plans and evaluates regular path queries over
edge-labelled graphs. Queries are concatenations of labelled steps such as
"0+/1-/2+", where "+" follows an edge forwards and "-" backwards.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: quicksilver.toml or configs/quicksilver.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging, overriding the configured level")

	root.AddCommand(c.benchCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.estimateCommand())
	root.AddCommand(c.evaluateCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.shellCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and registers the logging hooks.
// The configured log level applies unless --verbose is set.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.verbose {
		c.Logger.SetLevel(LogDebug)
	} else {
		c.Logger.SetLevel(cfg.LogLevel())
	}
	registerHooks(c.Logger)
	return nil
}

// config returns the loaded configuration, or the defaults if none was loaded.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a bench runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*bench.Runner, error) {
	cfg := c.config()
	store, err := c.newCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Scope != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Scope+":")
	}
	runner := bench.NewRunner(store, keyer, c.Logger)
	runner.StatsTTL = cfg.Cache.TTL.Duration
	return runner, nil
}

// newCache opens the configured cache backend and pings it. A file cache
// whose directory cannot be determined, or any backend that fails its ping,
// degrades to no caching.
func (c *CLI) newCache(cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	store, err := c.openCache(cfg)
	if err != nil {
		return nil, err
	}
	store = c.pinged(store, cfg.Cache.Backend)

	if mc, ok := store.(*cache.MongoCache); ok {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Cache.Mongo.Timeout.Duration)
		defer cancel()
		// without the index expired entries are still ignored, just not purged
		if err := mc.EnsureIndexes(ctx); err != nil {
			c.Logger.Warn("could not create cache TTL index", "error", err)
		}
	}
	return store, nil
}

func (c *CLI) openCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.Redis.Addr,
			Username:  cfg.Cache.Redis.Username,
			Password:  cfg.Cache.Redis.Password,
			DB:        cfg.Cache.Redis.DB,
			KeyPrefix: cfg.Cache.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Cache.Mongo.Timeout.Duration+time.Second)
		defer cancel()
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        cfg.Cache.Mongo.URI,
			Database:   cfg.Cache.Mongo.Database,
			Collection: cfg.Cache.Mongo.Collection,
			Timeout:    cfg.Cache.Mongo.Timeout.Duration,
		})
		if err != nil {
			return nil, fmt.Errorf("open mongo cache: %w", err)
		}
		return mc, nil
	}
	dir, err := fileCacheDir(cfg)
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// pinged returns store if it answers a ping within a few seconds and a
// NullCache otherwise, closing store.
func (c *CLI) pinged(store cache.Cache, backend string) cache.Cache {
	p, ok := store.(cache.Pinger)
	if !ok {
		return store
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		c.Logger.Warn("cache unreachable, caching disabled", "backend", backend, "error", err)
		store.Close()
		return cache.NewNullCache()
	}
	return store
}

// =============================================================================
// Paths
// =============================================================================

// fileCacheDir returns the configured cache directory or the default one.
func fileCacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/quicksilver/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
