package neoviz

import (
	"fmt"
	"regexp"
	"slices"
	"sort"

	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

// SchemaCypher asks the database for a virtual graph of its labels and relationship types.
const SchemaCypher = "CALL db.schema.visualization()"

// DefaultPayor is the payor used by the payor-documents query when none is given.
const DefaultPayor = "uhc"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CannedQuery is a named, parameterised Cypher query offered to users of the demo.
type CannedQuery struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Args        []string `json:"args,omitempty"`

	build func(args map[string]string) (string, map[string]any, error)
}

// Catalog is a fixed set of canned queries, looked up by name.
type Catalog struct {
	queries map[string]CannedQuery
}

// NewCatalog creates a catalog from the given queries. Later queries replace earlier ones
// with the same name.
func NewCatalog(queries ...CannedQuery) *Catalog {
	c := &Catalog{queries: make(map[string]CannedQuery, len(queries))}
	for _, q := range queries {
		c.queries[q.Name] = q
	}
	return c
}

// DefaultCatalog returns the queries of the prior-authorization demo dataset.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		CannedQuery{
			Name:        "payors",
			Description: "List every payor",
			build:       buildPayors,
		},
		CannedQuery{
			Name:        "payor-documents",
			Description: "Plans offered by a payor and the documents they publish",
			Args:        []string{"payor"},
			build:       buildPayorDocuments,
		},
		CannedQuery{
			Name:        "payor-document-list",
			Description: "Plan names and document file names of a payor, as a table",
			Args:        []string{"payor"},
			build:       payorQuery(payorDocumentListCypher),
		},
		CannedQuery{
			Name:        "payor-document-context",
			Description: "Payor documents graph extended with everything the documents point to",
			Args:        []string{"payor"},
			build:       payorQuery(payorDocumentContextCypher),
		},
		CannedQuery{
			Name:        "label",
			Description: "Every node carrying a label",
			Args:        []string{"label"},
			build:       buildByLabel,
		},
		CannedQuery{
			Name:        "schema",
			Description: "Labels and relationship types of the database",
			build: func(map[string]string) (string, map[string]any, error) {
				return SchemaCypher, map[string]any{}, nil
			},
		},
	)
}

// Names returns the query names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.queries))
	for name := range c.queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns every query, sorted by name.
func (c *Catalog) List() []CannedQuery {
	out := make([]CannedQuery, 0, len(c.queries))
	for _, name := range c.Names() {
		out = append(out, c.queries[name])
	}
	return out
}

// Build returns the Cypher text and parameters of the named query.
//
// Returns:
//
//	ErrUnknownQuery (wrapped) when no query has that name, ErrInvalidArgument (wrapped)
//	when args are not accepted by the query, or the error of the query builder.
func (c *Catalog) Build(name string, args map[string]string) (string, map[string]any, error) {
	q, ok := c.queries[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownQuery, name, c.Names())
	}
	if args == nil {
		args = map[string]string{}
	}
	for key := range args {
		if !q.hasArg(key) {
			return "", nil, fmt.Errorf("%w: query %q does not take %q", ErrInvalidArgument, name, key)
		}
	}
	query, params, err := q.build(args)
	if err != nil {
		return "", nil, fmt.Errorf("could not build query %q: %w", name, err)
	}
	return query, params, nil
}

func buildPayors(map[string]string) (string, map[string]any, error) {
	return gocypher.NewQueryBuilder().
		Match(gocypher.N("p", "Payor")).
		Return("p").
		Build()
}

func buildPayorDocuments(args map[string]string) (string, map[string]any, error) {
	payor := args["payor"]
	if payor == "" {
		payor = DefaultPayor
	}

	return gocypher.NewQueryBuilder().
		Match(gocypher.N("p1", "Payor").WithProperties(map[string]any{"name": payor})).
		Match(
			gocypher.NRef("p1"),
			gocypher.R("o", "OFFERS").To(),
			gocypher.N("p2", "Plan"),
		).
		Match(
			gocypher.NRef("p2"),
			gocypher.R("pub", "PUBLISHES").To(),
			gocypher.N("d", "Document"),
		).
		Return("p1", "o", "p2", "pub", "d").
		Build()
}

const (
	payorDocumentListCypher = `MATCH (p1:Payor) WHERE p1.name = $payor
MATCH (p1)-[:OFFERS]->(p2:Plan)
MATCH (p2)-[:PUBLISHES]->(d:Document)
RETURN p2.name, d.fileName`

	// Untyped relationships and RETURN * are written as plain Cypher.
	payorDocumentContextCypher = `MATCH (p1:Payor) WHERE p1.name = $payor
MATCH (p1)-[o:OFFERS]->(p2:Plan)-[pub:PUBLISHES]->(d:Document)-[h]->(x)
RETURN *`
)

// payorQuery binds the payor argument of a hand-written query, defaulting to DefaultPayor.
func payorQuery(cypher string) func(map[string]string) (string, map[string]any, error) {
	return func(args map[string]string) (string, map[string]any, error) {
		payor := args["payor"]
		if payor == "" {
			payor = DefaultPayor
		}
		return cypher, map[string]any{"payor": payor}, nil
	}
}

func buildByLabel(args map[string]string) (string, map[string]any, error) {
	label := args["label"]
	if !identifierPattern.MatchString(label) {
		return "", nil, fmt.Errorf("%w: label %q is not a valid identifier", ErrInvalidArgument, label)
	}
	return gocypher.NewQueryBuilder().
		Match(gocypher.N("n", label)).
		Return("n").
		Build()
}

// hasArg reports whether q declares the named argument.
func (q CannedQuery) hasArg(name string) bool {
	return slices.Contains(q.Args, name)
}
