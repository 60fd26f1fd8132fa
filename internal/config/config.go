// Package config loads the neoviz configuration from a TOML file.
//
// A complete file looks like:
//
//	[neo4j]
//	uri = "neo4j://localhost:7687"
//	username = "neo4j"
//	password = "secret"
//	database = "neo4j"
//
//	[server]
//	addr = "127.0.0.1:8080"
//	allowed_origins = ["http://localhost:5173"]
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "5m"
//	prefix = "neoviz"
//
//	[log]
//	level = "info"
//	format = "text"
//
// Every key is optional; missing keys keep the values of Default. The configuration is
// a plain value handed to the components that need it; nothing reads the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/saulfrancisco-ruizacevedo/go-neoviz"
	"github.com/saulfrancisco-ruizacevedo/go-neoviz/internal/cache"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	Neo4j  neoviz.Neo4jConfig `toml:"neo4j"`
	Server Server             `toml:"server"`
	Cache  Cache              `toml:"cache"`
	Log    Log                `toml:"log"`
}

// Server configures the HTTP server.
type Server struct {
	Addr string `toml:"addr"`
	// AllowedOrigins lists the origins accepted for websocket upgrades. Empty allows any.
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Cache configures the query result cache.
type Cache struct {
	// Backend is "none", "memory" or "redis". When empty, redis is used if RedisAddr is
	// set and caching is off otherwise.
	Backend string `toml:"backend"`
	// RedisAddr is the host:port of the Redis server.
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
	Prefix    string   `toml:"prefix"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
	// Format is "text", "json" or "logfmt".
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Neo4j: neoviz.Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		Server: Server{Addr: "127.0.0.1:8080"},
		Cache: Cache{
			TTL:    DurationFrom(5 * time.Minute),
			Prefix: "neoviz",
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads the TOML file at path on top of Default and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks the fields that cannot be defaulted.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Neo4j.URI) == "" {
		return fmt.Errorf("%w: neo4j.uri is required", ErrInvalid)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	if _, err := c.LogFormatter(); err != nil {
		return fmt.Errorf("%w: log.format: %v", ErrInvalid, err)
	}
	backend, err := c.CacheBackend()
	if err != nil {
		return fmt.Errorf("%w: cache.backend: %v", ErrInvalid, err)
	}
	if backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("%w: cache.redis_addr is required by the redis backend", ErrInvalid)
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative", ErrInvalid)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (log.Level, error) {
	return log.ParseLevel(c.Log.Level)
}

// LogFormatter parses Log.Format. Empty means text.
func (c Config) LogFormatter() (log.Formatter, error) {
	switch c.Log.Format {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return 0, fmt.Errorf("unknown format %q (want text, json or logfmt)", c.Log.Format)
}

// CacheBackend resolves Cache.Backend, inferring redis from a configured address.
func (c Config) CacheBackend() (cache.Backend, error) {
	if c.Cache.Backend == "" {
		if c.Cache.RedisAddr != "" {
			return cache.BackendRedis, nil
		}
		return cache.BackendNone, nil
	}
	return cache.ParseBackend(c.Cache.Backend)
}

// CacheOptions returns the settings handed to cache.Open.
func (c Config) CacheOptions() (cache.Options, error) {
	backend, err := c.CacheBackend()
	if err != nil {
		return cache.Options{}, err
	}
	return cache.Options{Backend: backend, RedisAddr: c.Cache.RedisAddr, Prefix: c.Cache.Prefix}, nil
}

// CacheEnabled reports whether query results are cached at all.
func (c Config) CacheEnabled() bool {
	backend, err := c.CacheBackend()
	return err == nil && backend != cache.BackendNone
}
