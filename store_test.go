package neoviz

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Member struct {
	MemberID string  `neo:"pk,property:memberId"`
	Name     string  `neo:"property:name"`
	Age      int     `neo:"property:age"`
	Score    float64 `neo:"property:score"`
	Ignored  string
}

type Clinic struct {
	Code string `neo:"pk,property:code"`
}

func TestMetaFor(t *testing.T) {
	meta, err := metaFor(reflect.TypeOf(&Member{}))
	require.NoError(t, err)
	assert.Equal(t, "Member", meta.Label)
	assert.Equal(t, "MemberID", meta.PKField)
	assert.Equal(t, "memberId", meta.PKProp)
	assert.Equal(t, map[string]string{"MemberID": "memberId", "Name": "name", "Age": "age", "Score": "score"}, meta.Fields)
}

func TestMetaForErrors(t *testing.T) {
	type noKey struct {
		Name string `neo:"property:name"`
	}
	type twoKeys struct {
		A string `neo:"pk,property:a"`
		B string `neo:"pk,property:b"`
	}
	type noProperty struct {
		A string `neo:"pk"`
	}

	tests := map[string]reflect.Type{
		"not a struct": reflect.TypeOf(42),
		"no key":       reflect.TypeOf(noKey{}),
		"two keys":     reflect.TypeOf(twoKeys{}),
		"no property":  reflect.TypeOf(noProperty{}),
		"nil type":     nil,
	}
	for name, typ := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := metaFor(typ)
			assert.Error(t, err)
		})
	}
}

func TestStoreSave(t *testing.T) {
	runner := &fakeRunner{}
	store, err := NewStore[Member](runner)
	require.NoError(t, err)
	assert.Equal(t, "Member", store.Label())

	err = store.Save(context.Background(), &Member{MemberID: "m-1", Name: "Kai", Age: 41})
	require.NoError(t, err)

	c := runner.lastCall()
	assert.Contains(t, c.query, "MERGE")
	assert.Contains(t, c.query, "Member")
	assert.True(t, mentions(c.query, c.params, "m-1"))
	assert.True(t, mentions(c.query, c.params, "Kai"))

	assert.Error(t, store.Save(context.Background(), nil))
}

func TestStoreSaveWrapsRunnerError(t *testing.T) {
	boom := errors.New("boom")
	store, err := NewStore[Member](&fakeRunner{err: boom})
	require.NoError(t, err)

	err = store.Save(context.Background(), &Member{MemberID: "m-1"})
	assert.ErrorIs(t, err, boom)
}

func TestStoreFindByID(t *testing.T) {
	runner := &fakeRunner{result: result([]string{"n"}, []any{
		dbNode("4:x:1", []string{"Member"}, map[string]any{
			"memberId": "m-1",
			"name":     "Kai",
			"age":      int64(41),
			"score":    2.5,
			"other":    "ignored",
		}),
	})}
	store, err := NewStore[Member](runner)
	require.NoError(t, err)

	m, err := store.FindByID(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, &Member{MemberID: "m-1", Name: "Kai", Age: 41, Score: 2.5}, m)
	assert.True(t, mentions(runner.lastCall().query, runner.lastCall().params, "m-1"))
}

func TestStoreFindByIDCardinality(t *testing.T) {
	node := dbNode("4:x:1", []string{"Member"}, map[string]any{"memberId": "m-1"})

	store, err := NewStore[Member](&fakeRunner{result: &neo4j.EagerResult{}})
	require.NoError(t, err)
	_, err = store.FindByID(context.Background(), "m-1")
	assert.ErrorIs(t, err, ErrNotFound)

	store, err = NewStore[Member](&fakeRunner{result: result([]string{"n"}, []any{node}, []any{node})})
	require.NoError(t, err)
	_, err = store.FindByID(context.Background(), "m-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	store, err = NewStore[Member](&fakeRunner{result: result([]string{"n"}, []any{"not a node"})})
	require.NoError(t, err)
	_, err = store.FindByID(context.Background(), "m-1")
	assert.Error(t, err)
}

func TestStoreDelete(t *testing.T) {
	runner := &fakeRunner{}
	store, err := NewStore[Member](runner)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "m-1"))
	c := runner.lastCall()
	assert.Contains(t, strings.ToUpper(c.query), "DETACH DELETE")
	assert.True(t, mentions(c.query, c.params, "m-1"))
}

func TestLinkerRelate(t *testing.T) {
	runner := &fakeRunner{}
	linker := NewLinker(runner)
	ctx := context.Background()

	err := linker.Relate(ctx, &Member{MemberID: "m-1"}, &Clinic{Code: "c-9"}, "VISITS", map[string]any{"year": int64(2024)})
	require.NoError(t, err)

	c := runner.lastCall()
	assert.Contains(t, c.query, "CREATE")
	assert.Contains(t, c.query, "VISITS")
	assert.True(t, mentions(c.query, c.params, "m-1"))
	assert.True(t, mentions(c.query, c.params, "c-9"))

	assert.Error(t, linker.Relate(ctx, Member{MemberID: "m-1"}, &Clinic{Code: "c-9"}, "VISITS", nil))
	assert.Error(t, linker.Relate(ctx, &Member{MemberID: "m-1"}, (*Clinic)(nil), "VISITS", nil))
	assert.Error(t, linker.Relate(ctx, &Member{MemberID: "m-1"}, &Clinic{Code: "c-9"}, "BAD TYPE", nil))
	assert.Equal(t, 1, runner.callCount())
}
