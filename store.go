package neoviz

import (
	"context"
	"fmt"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

// Store persists entities of type T as nodes. T must be a struct whose fields carry `neo`
// tags, exactly one of them marked `pk`:
//
//	type Payor struct {
//		Name string `neo:"pk,property:name"`
//	}
type Store[T any] struct {
	runner DBRunner
	meta   *entityMeta
}

// NewStore creates a store for T after validating the struct tags of T.
func NewStore[T any](runner DBRunner) (*Store[T], error) {
	meta, err := metaFor(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return &Store[T]{runner: runner, meta: meta}, nil
}

// Label returns the node label used for T.
func (s *Store[T]) Label() string {
	return s.meta.Label
}

// Save creates the node of entity or updates it in place. The node is matched on the
// primary key with MERGE and every other mapped field is SET.
func (s *Store[T]) Save(ctx context.Context, entity *T) error {
	if entity == nil {
		return fmt.Errorf("cannot save a nil %s", s.meta.Label)
	}
	val := reflect.ValueOf(entity).Elem()
	merge := map[string]any{s.meta.PKProp: val.FieldByName(s.meta.PKField).Interface()}

	set := make(map[string]any)
	for fieldName, prop := range s.meta.Fields {
		if fieldName != s.meta.PKField {
			set["n."+prop] = val.FieldByName(fieldName).Interface()
		}
	}

	query, params, err := gocypher.NewQueryBuilder().
		Merge(gocypher.N("n", s.meta.Label).WithProperties(merge)).
		Set(set).
		Return("n").
		Build()
	if err != nil {
		return err
	}
	if _, err := s.runner.Run(ctx, query, params); err != nil {
		return fmt.Errorf("could not save %s: %w", s.meta.Label, err)
	}
	return nil
}

// FindByID loads the entity whose primary key equals id.
//
// Returns:
//
//	The entity, ErrNotFound when no node matches, or an error when more than one node
//	matches or the query fails.
func (s *Store[T]) FindByID(ctx context.Context, id any) (*T, error) {
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", s.meta.Label).WithProperties(map[string]any{s.meta.PKProp: id})).
		Return("n").
		Build()
	if err != nil {
		return nil, err
	}

	eagerResult, err := s.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	switch n := len(eagerResult.Records); {
	case n == 0:
		return nil, ErrNotFound
	case n > 1:
		// A primary key lookup must be unique; more rows is a data integrity problem.
		return nil, fmt.Errorf("expected 1 %s with %s=%v but found %d", s.meta.Label, s.meta.PKProp, id, n)
	}

	value, ok := eagerResult.Records[0].Get("n")
	if !ok {
		return nil, fmt.Errorf("could not find return value 'n' in query result")
	}
	node, ok := value.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("return value 'n' is not a node")
	}

	entity := new(T)
	assignProps(reflect.ValueOf(entity).Elem(), s.meta, node.Props)
	return entity, nil
}

// Delete removes the node whose primary key equals id, with all its relationships.
func (s *Store[T]) Delete(ctx context.Context, id any) error {
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", s.meta.Label).WithProperties(map[string]any{s.meta.PKProp: id})).
		DetachDelete("n").
		Build()
	if err != nil {
		return err
	}
	if _, err := s.runner.Run(ctx, query, params); err != nil {
		return fmt.Errorf("could not delete %s: %w", s.meta.Label, err)
	}
	return nil
}

// Linker creates relationships between stored entities of any type.
type Linker struct {
	runner DBRunner
}

// NewLinker creates a Linker running its queries through runner.
func NewLinker(runner DBRunner) *Linker {
	return &Linker{runner: runner}
}

// Relate creates a directed relationship of type relType from the node of from to the
// node of to. Both arguments must be pointers to tagged structs whose nodes already exist.
func (l *Linker) Relate(ctx context.Context, from, to any, relType string, props map[string]any) error {
	fromVal, fromMeta, err := entityValue(from)
	if err != nil {
		return err
	}
	toVal, toMeta, err := entityValue(to)
	if err != nil {
		return err
	}
	if !identifierPattern.MatchString(relType) {
		return fmt.Errorf("relationship type %q is not a valid identifier", relType)
	}

	fromKey := map[string]any{fromMeta.PKProp: fromVal.FieldByName(fromMeta.PKField).Interface()}
	toKey := map[string]any{toMeta.PKProp: toVal.FieldByName(toMeta.PKField).Interface()}

	if props == nil {
		props = map[string]any{}
	}

	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("a", fromMeta.Label).WithProperties(fromKey)).
		Match(gocypher.N("b", toMeta.Label).WithProperties(toKey)).
		Create(
			gocypher.N("a", ""), // Reference the 'a' alias without its label
			gocypher.R("r", relType).To().WithProperties(props),
			gocypher.N("b", ""),
		).
		Build()
	if err != nil {
		return err
	}
	if _, err := l.runner.Run(ctx, query, params); err != nil {
		return fmt.Errorf("could not create %s relationship: %w", relType, err)
	}
	return nil
}
