package neoviz

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

var (
	// ErrNotFound is returned by FindGraph when the query matches no records.
	ErrNotFound = errors.New("record not found")

	// ErrEmptyQuery is returned when a blank Cypher query is submitted.
	ErrEmptyQuery = errors.New("empty cypher query")

	// ErrUnknownQuery is returned when a canned query name is not in the catalog.
	ErrUnknownQuery = errors.New("unknown query")

	// ErrInvalidArgument is returned when a canned query is given unusable arguments.
	ErrInvalidArgument = errors.New("invalid query argument")
)

// Cache stores serialized query results. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// QueryResult is the outcome of one query. Exactly one of Graph and Rows is populated:
// results holding both nodes and relationships are converted into a graph, anything else
// is returned as a table.
type QueryResult struct {
	ID      string           `json:"id"`
	Graph   *ViewGraph       `json:"graph,omitempty"`
	Columns []string         `json:"columns,omitempty"`
	Rows    []map[string]any `json:"rows,omitempty"`
	Cached  bool             `json:"cached"`
}

// GraphService is the central orchestrator between the database and the viewer. It runs
// queries, converts graph results and serves repeated queries from an optional cache.
type GraphService struct {
	runner  DBRunner
	catalog *Catalog
	cache   Cache
	ttl     time.Duration
	logger  *log.Logger
}

// Option configures a GraphService.
type Option func(*GraphService)

// WithCache serves repeated queries from c for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *GraphService) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithCatalog replaces the default canned query catalog.
func WithCatalog(c *Catalog) Option {
	return func(s *GraphService) { s.catalog = c }
}

// WithLogger sets the logger used for query diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *GraphService) { s.logger = l }
}

// NewGraphService creates a new GraphService running its queries through runner.
func NewGraphService(runner DBRunner, opts ...Option) *GraphService {
	s := &GraphService{
		runner:  runner,
		catalog: DefaultCatalog(),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the canned queries offered by the service.
func (s *GraphService) Catalog() *Catalog {
	return s.catalog
}

// Query executes cypher with params and returns either the converted graph or the
// tabular rows of the result.
//
// Parameters:
//   - ctx: The context for the query execution.
//   - cypher: The Cypher query text. Surrounding whitespace is ignored.
//   - params: Query parameters; nil is treated as empty.
//
// Returns:
//
//	The QueryResult, ErrEmptyQuery for a blank query, or the execution error.
func (s *GraphService) Query(ctx context.Context, cypher string, params map[string]any) (*QueryResult, error) {
	cypher = strings.TrimSpace(cypher)
	if cypher == "" {
		return nil, ErrEmptyQuery
	}
	if params == nil {
		params = map[string]any{}
	}

	id := uuid.NewString()
	logger := s.logger.With("query", id)
	start := time.Now()

	key, cacheable := queryKey(cypher, params)
	if !cacheable {
		logger.Debug("params are not cacheable, bypassing cache")
	} else if res, ok := s.cached(ctx, logger, key); ok {
		res.ID = id
		logger.Debug("served from cache", "elapsed", time.Since(start).Round(time.Millisecond))
		return res, nil
	}

	eagerResult, err := s.runner.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	res := &QueryResult{ID: id}
	raw := GraphFromRecords(eagerResult.Records)
	if raw.Empty() {
		res.Columns = eagerResult.Keys
		res.Rows = tabulate(eagerResult.Records)
		logger.Debug("tabular result", "rows", len(res.Rows), "elapsed", time.Since(start).Round(time.Millisecond))
	} else {
		g := Convert(raw)
		res.Graph = &g
		logger.Debug("graph result", "nodes", len(g.Nodes), "links", len(g.Links),
			"dropped", len(raw.Relationships)-len(g.Links), "elapsed", time.Since(start).Round(time.Millisecond))
	}

	if cacheable {
		s.store(ctx, logger, key, res)
	}
	return res, nil
}

// Named runs the canned query called name with the given arguments.
func (s *GraphService) Named(ctx context.Context, name string, args map[string]string) (*QueryResult, error) {
	cypher, params, err := s.catalog.Build(name, args)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, cypher, params)
}

// FindGraph executes a graph query defined by a gocypher.QueryBuilder and converts every
// node and relationship of the result into a ViewGraph. The caller is responsible for a
// RETURN clause naming the elements that should be part of the graph, e.g. `RETURN u, r, p`.
//
// FindGraph bypasses the cache.
//
// Parameters:
//   - ctx: The context for the query execution.
//   - qb: A configured gocypher.QueryBuilder defining the graph to retrieve.
//
// Returns:
//   - The converted graph.
//   - ErrNotFound if the query executes successfully but returns zero records.
//   - Any other error encountered during query building or execution.
func (s *GraphService) FindGraph(ctx context.Context, qb *gocypher.QueryBuilder) (*ViewGraph, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}

	eagerResult, err := s.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(eagerResult.Records) == 0 {
		return nil, ErrNotFound
	}

	g := Convert(GraphFromRecords(eagerResult.Records))
	return &g, nil
}

func (s *GraphService) cached(ctx context.Context, logger *log.Logger, key string) (*QueryResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	// Numbers stay json.Number so integers above 2^53 replay exactly.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var res QueryResult
	if err := dec.Decode(&res); err != nil {
		logger.Warn("discarding unreadable cache entry", "err", err)
		return nil, false
	}
	res.Cached = true
	return &res, true
}

func (s *GraphService) store(ctx context.Context, logger *log.Logger, key string, res *QueryResult) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		logger.Warn("result is not cacheable", "err", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
}

// queryKey hashes the query text and parameters into a cache key. It reports false when
// the parameters have no JSON encoding (NaN, channels, ...), in which case the query must
// not be cached.
func queryKey(cypher string, params map[string]any) (string, bool) {
	data, err := json.Marshal([]any{cypher, params})
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(data)
	return "query:" + hex.EncodeToString(sum[:]), true
}

// tabulate turns records into one map per row. Graph elements are replaced by their
// property maps so rows stay flat.
func tabulate(records []*neo4j.Record) []map[string]any {
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			if i < len(record.Values) {
				row[key] = flatten(record.Values[i])
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func flatten(value any) any {
	switch v := value.(type) {
	case neo4j.Node:
		return copyProps(v.Props)
	case neo4j.Relationship:
		return copyProps(v.Props)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = flatten(item)
		}
		return out
	default:
		return v
	}
}
