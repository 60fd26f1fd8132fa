package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/saulfrancisco-ruizacevedo/go-neoviz"
	"github.com/saulfrancisco-ruizacevedo/go-neoviz/internal/cache"
	"github.com/saulfrancisco-ruizacevedo/go-neoviz/internal/config"
)

// connect opens and verifies the Neo4j executor described by cfg.
func connect(ctx context.Context, cfg config.Config) (*neoviz.Neo4jExecutor, error) {
	logger := loggerFromContext(ctx)
	logger.Debug("connecting", "uri", cfg.Neo4j.URI, "database", cfg.Neo4j.Database)

	exec, err := neoviz.NewNeo4jExecutor(cfg.Neo4j)
	if err != nil {
		return nil, err
	}
	if err := exec.Verify(ctx); err != nil {
		_ = exec.Close(ctx)
		return nil, err
	}
	return exec, nil
}

// openCache opens the configured cache backend.
func openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	opts, err := cfg.CacheOptions()
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("opening cache", "backend", opts.Backend)
	return cache.Open(ctx, opts)
}

// newService builds the graph service on top of runner with the configured cache.
// The returned cache must be closed by the caller.
func newService(ctx context.Context, cfg config.Config, runner neoviz.DBRunner, logger *log.Logger) (*neoviz.GraphService, cache.Cache, error) {
	c, err := openCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := neoviz.NewGraphService(runner,
		neoviz.WithCache(c, cfg.Cache.TTL.Duration),
		neoviz.WithLogger(logger),
	)
	return svc, c, nil
}
