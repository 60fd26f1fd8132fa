// Package neoviz queries a Neo4j database and converts the returned property graph into the
// dense node/link format consumed by browser graph viewers such as Cosmograph.
package neoviz

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DBRunner defines the interface for a generic query executor.
// It abstracts the execution of a Cypher query, allowing for different implementations
// or mocking in tests.
type DBRunner interface {
	// Run executes a given Cypher query with parameters and returns a fully-buffered result.
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Neo4jConfig holds the connection settings for a Neo4j instance. It is passed to
// NewNeo4jExecutor explicitly; nothing in this package reads the process environment.
type Neo4jConfig struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

//---

// Neo4jExecutor is a concrete implementation of the DBRunner interface that uses the
// official Neo4j Go driver. It manages the driver instance and the target database name.
type Neo4jExecutor struct {
	Driver neo4j.DriverWithContext
	DBName string
}

var _ DBRunner = (*Neo4jExecutor)(nil)

// NewNeo4jExecutor creates and initializes a new Neo4jExecutor.
// Basic authentication is used when cfg.Username is set; otherwise the driver connects
// without credentials.
//
// Parameters:
//   - cfg: The connection settings (URI, credentials and target database).
//
// Returns:
//
//	A pointer to the newly created Neo4jExecutor or an error if the driver creation fails.
func NewNeo4jExecutor(cfg Neo4jConfig) (*Neo4jExecutor, error) {
	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	return &Neo4jExecutor{Driver: driver, DBName: cfg.Database}, nil
}

// Verify checks the connectivity to the Neo4j database.
//
// Returns:
//
//	An error if the connection cannot be established.
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	if err := e.Driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("could not connect to neo4j: %w", err)
	}
	return nil
}

// Close releases the driver and all pooled connections.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

// Run executes a Cypher query using ExecuteQuery, which handles session and transaction
// management automatically. It is routed to the cluster writers and is suitable for both
// read and write operations.
//
// Parameters:
//   - ctx: The context for the query execution.
//   - query: The Cypher query string to execute.
//   - params: A map of parameters to be used in the query.
//
// Returns:
//
//	An EagerResult containing all buffered records from the query, or an error if
//	the execution fails.
func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	return e.execute(ctx, query, params)
}

// RunRead behaves like Run but routes the query to the cluster readers.
func (e *Neo4jExecutor) RunRead(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	return e.execute(ctx, query, params, neo4j.ExecuteQueryWithReadersRouting())
}

func (e *Neo4jExecutor) execute(ctx context.Context, query string, params map[string]any, opts ...neo4j.ExecuteQueryConfigurationOption) (*neo4j.EagerResult, error) {
	if params == nil {
		params = map[string]any{}
	}
	opts = append(opts, neo4j.ExecuteQueryWithDatabase(e.DBName))

	result, err := neo4j.ExecuteQuery(
		ctx,
		e.Driver,
		query,
		params,
		neo4j.EagerResultTransformer, // Buffers all results in memory before returning.
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}

	return result, nil
}

// readRunner is a DBRunner that always routes to the readers of an executor.
type readRunner struct{ e *Neo4jExecutor }

func (r readRunner) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	return r.e.RunRead(ctx, query, params)
}

// Reader returns a DBRunner view of e that sends every query to the readers.
func (e *Neo4jExecutor) Reader() DBRunner {
	return readRunner{e: e}
}
