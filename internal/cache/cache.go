// Package cache provides storage backends for serialized query results.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored data and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero keeps the entry until it is deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names a cache implementation.
type Backend string

// Known backends.
const (
	BackendNone   Backend = "none"
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

// ParseBackend validates a backend name.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(name); b {
	case BackendNone, BackendMemory, BackendRedis:
		return b, nil
	}
	return "", fmt.Errorf("unknown cache backend %q (want none, memory or redis)", name)
}

// Options selects and configures a backend for Open.
type Options struct {
	Backend   Backend
	RedisAddr string
	Prefix    string
}

// Open creates the backend named by opts. The Redis backend is pinged before it is
// returned.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendNone, "":
		return Nop{}, nil
	case BackendMemory:
		return NewMemoryCache(), nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache needs an address")
		}
		return NewRedisCache(ctx, opts.RedisAddr, opts.Prefix)
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}
