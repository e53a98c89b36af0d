// Package config loads quicksilver settings from TOML files.
//
// Settings are resolved in three layers: built-in defaults, then the first
// file found (an explicit path, or quicksilver.toml / configs/quicksilver.toml
// in the working directory), then command-line flags applied by the caller.
// Missing default files are not an error; a missing explicit file is.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/quicksilver/pkg/errors"
	"github.com/matzehuels/quicksilver/pkg/planner"
)

// DefaultPaths are searched in order when Load is called without a path.
var DefaultPaths = []string{"quicksilver.toml", "configs/quicksilver.toml"}

// Config is the complete configuration.
type Config struct {
	Planner   PlannerConfig   `toml:"planner"`
	Evaluator EvaluatorConfig `toml:"evaluator"`
	Cache     CacheConfig     `toml:"cache"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
}

// PlannerConfig controls join ordering.
type PlannerConfig struct {
	Threshold uint64 `toml:"threshold"` // greedy above leafCount x estimated paths
	Strategy  string `toml:"strategy"`  // auto, greedy or exhaustive
}

// EvaluatorConfig controls exact evaluation.
type EvaluatorConfig struct {
	// ExactEndpoints reports distinct sources and targets of evaluated
	// results instead of zero.
	ExactEndpoints bool `toml:"exact_endpoints"`
}

// CacheConfig selects the statistics and report cache.
type CacheConfig struct {
	Backend string      `toml:"backend"` // file, redis, mongo or none
	Dir     string      `toml:"dir"`     // file backend; empty means the user cache dir
	TTL     Duration    `toml:"ttl"`     // zero keeps entries forever
	Scope   string      `toml:"scope"`   // optional key namespace shared by all backends
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr      string `toml:"addr"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string   `toml:"uri"`
	Database   string   `toml:"database"`
	Collection string   `toml:"collection"`
	Timeout    Duration `toml:"timeout"` // server selection
}

// ServerConfig configures "quicksilver serve".
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Duration is a time.Duration written as a string such as "30s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			Threshold: planner.DefaultThreshold,
			Strategy:  string(planner.StrategyAuto),
		},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     Duration{7 * 24 * time.Hour},
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "quicksilver:",
			},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "quicksilver",
				Collection: "cache",
				Timeout:    Duration{10 * time.Second},
			},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{5 * time.Minute},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the configuration from path, or from the first of DefaultPaths
// that exists when path is empty. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, p := range DefaultPaths {
			data, err := os.ReadFile(p)
			if err != nil {
				continue
			}
			if err := decode(data, p, cfg); err != nil {
				return nil, err
			}
			break
		}
	} else {
		if err := errors.ValidatePath(path); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
		if err := decode(data, path, cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode parses TOML into cfg, rejecting keys that do not map to a field.
func decode(data []byte, path string, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// applyDefaults repairs zero values left by a partial file.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Planner.Threshold == 0 {
		cfg.Planner.Threshold = def.Planner.Threshold
	}
	if cfg.Planner.Strategy == "" {
		cfg.Planner.Strategy = def.Planner.Strategy
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = def.Cache.Backend
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = def.Cache.Redis.Addr
	}
	if cfg.Cache.Mongo.URI == "" {
		cfg.Cache.Mongo.URI = def.Cache.Mongo.URI
	}
	if cfg.Cache.Mongo.Database == "" {
		cfg.Cache.Mongo.Database = def.Cache.Mongo.Database
	}
	if cfg.Cache.Mongo.Collection == "" {
		cfg.Cache.Mongo.Collection = def.Cache.Mongo.Collection
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.ReadTimeout.Duration <= 0 {
		cfg.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout.Duration <= 0 {
		cfg.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// Validate checks enumerated settings. Errors carry INVALID_CONFIG.
func (c *Config) Validate() error {
	if err := errors.ValidateCacheBackend(c.Cache.Backend); err != nil {
		return err
	}
	if _, err := planner.ParseStrategy(c.Planner.Strategy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "planner.strategy")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// Strategy returns the configured planning strategy. Call after Validate.
func (c *Config) Strategy() planner.Strategy {
	s, _ := planner.ParseStrategy(c.Planner.Strategy)
	return s
}

// LogLevel returns the configured log level, or info if it does not parse.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
