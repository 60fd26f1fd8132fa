package cache

import (
	"context"
	"time"
)

// Nop is the backend used when caching is turned off: writes are discarded and every
// read misses, so the service always runs the query.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Delete(context.Context, string) error { return nil }

func (Nop) Close() error { return nil }
