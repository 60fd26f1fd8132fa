package neoviz

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kaiAcme() RawGraph {
	return RawGraph{
		Nodes: []RawNode{
			{ElementID: "n1", Labels: []string{"Person"}, Props: map[string]any{"name": "Kai"}},
			{ElementID: "n2", Labels: []string{"Org"}, Props: map[string]any{"name": "Acme"}},
		},
		Relationships: []RawRelationship{
			{ElementID: "r1", Type: "WORKS_AT", StartElementID: "n1", EndElementID: "n2", Props: map[string]any{}},
		},
	}
}

func TestConvertEndToEnd(t *testing.T) {
	got := Convert(kaiAcme())

	want := ViewGraph{
		Nodes: []ViewNode{
			{ID: "0", Label: "Person", DisplayName: "Kai", Color: ColorFor("Person"), Properties: map[string]any{"name": "Kai"}},
			{ID: "1", Label: "Org", DisplayName: "Acme", Color: ColorFor("Org"), Properties: map[string]any{"name": "Acme"}},
		},
		Links: []ViewLink{
			{Source: "0", Target: "1", Type: "WORKS_AT", Properties: map[string]any{}},
		},
	}
	assert.Equal(t, want, got)
}

func TestConvertDropsDanglingLinks(t *testing.T) {
	g := kaiAcme()
	g.Relationships[0].EndElementID = "n3"

	got := Convert(g)
	assert.Len(t, got.Nodes, 2)
	assert.Empty(t, got.Links)
	assert.NotNil(t, got.Links, "links should encode as [] rather than null")
}

func TestConvertSkipsMissingEndpoints(t *testing.T) {
	g := RawGraph{
		Nodes: []RawNode{{ElementID: "", Labels: []string{"Ghost"}}, {ElementID: "a"}},
		Relationships: []RawRelationship{
			{Type: "NO_START", EndElementID: "a"},
			{Type: "NO_END", StartElementID: "a"},
			{Type: "BOTH_EMPTY"},
		},
	}
	assert.Empty(t, Convert(g).Links)
}

func TestConvertIndexDensity(t *testing.T) {
	g := RawGraph{}
	for i := 0; i < 25; i++ {
		g.Nodes = append(g.Nodes, RawNode{ElementID: "4:abc:" + strconv.Itoa(100-i)})
	}

	got := Convert(g)
	require.Len(t, got.Nodes, 25)
	seen := map[string]bool{}
	for i, n := range got.Nodes {
		assert.Equal(t, strconv.Itoa(i), n.ID)
		assert.False(t, seen[n.ID], "id %s used twice", n.ID)
		seen[n.ID] = true
	}
}

func TestConvertKeepsSourceOrder(t *testing.T) {
	g := RawGraph{
		Nodes: []RawNode{
			{ElementID: "z", Labels: []string{"B"}},
			{ElementID: "a", Labels: []string{"A"}},
			{ElementID: "m", Labels: []string{"C"}},
		},
		Relationships: []RawRelationship{
			{Type: "SECOND", StartElementID: "m", EndElementID: "z"},
			{Type: "FIRST", StartElementID: "z", EndElementID: "a"},
			{Type: "SELF", StartElementID: "a", EndElementID: "a"},
		},
	}

	got := Convert(g)
	assert.Equal(t, []string{"B", "A", "C"}, []string{got.Nodes[0].Label, got.Nodes[1].Label, got.Nodes[2].Label})
	assert.Equal(t, []ViewLink{
		{Source: "2", Target: "0", Type: "SECOND", Properties: map[string]any{}},
		{Source: "0", Target: "1", Type: "FIRST", Properties: map[string]any{}},
		{Source: "1", Target: "1", Type: "SELF", Properties: map[string]any{}},
	}, got.Links)
}

func TestConvertIsDeterministic(t *testing.T) {
	g := kaiAcme()
	g.Nodes = append(g.Nodes, RawNode{
		ElementID: "n3",
		Labels:    []string{"Patient", "Person"},
		Props:     map[string]any{"lastName": "Doe", "firstName": "Jane", "age": int64(41)},
	})

	first, err := json.Marshal(Convert(g))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(Convert(g))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestConvertDoesNotShareOrMutateInput(t *testing.T) {
	props := map[string]any{"name": "Kai"}
	relProps := map[string]any{"since": int64(2020)}
	g := RawGraph{
		Nodes: []RawNode{{ElementID: "n1", Labels: []string{"Person"}, Props: props}},
		Relationships: []RawRelationship{
			{Type: "KNOWS", StartElementID: "n1", EndElementID: "n1", Props: relProps},
		},
	}

	got := Convert(g)
	got.Nodes[0].Properties["name"] = "changed"
	got.Links[0].Properties["since"] = int64(1)

	assert.Equal(t, "Kai", props["name"])
	assert.Equal(t, int64(2020), relProps["since"])
}

func TestConvertUnlabeledAndNilProps(t *testing.T) {
	got := Convert(RawGraph{
		Nodes:         []RawNode{{ElementID: "4:x:7"}},
		Relationships: []RawRelationship{{Type: "LOOP", StartElementID: "4:x:7", EndElementID: "4:x:7"}},
	})

	require.Len(t, got.Nodes, 1)
	n := got.Nodes[0]
	assert.Equal(t, UnknownLabel, n.Label)
	assert.Equal(t, ColorFor(UnknownLabel), n.Color)
	assert.Equal(t, "Node-4:x:7", n.DisplayName)
	assert.NotNil(t, n.Properties)
	assert.Empty(t, n.Properties)
	require.Len(t, got.Links, 1)
	assert.NotNil(t, got.Links[0].Properties)
}

func TestConvertEmptyGraph(t *testing.T) {
	got := Convert(RawGraph{})
	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"links":[]}`, string(data))
}

func TestViewGraphJSONShape(t *testing.T) {
	data, err := json.Marshal(Convert(kaiAcme()))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nodes": [
			{"id": "0", "label": "Person", "displayName": "Kai", "color": "#444ce5", "properties": {"name": "Kai"}},
			{"id": "1", "label": "Org", "displayName": "Acme", "color": "#e58144", "properties": {"name": "Acme"}}
		],
		"links": [
			{"source": "0", "target": "1", "type": "WORKS_AT", "properties": {}}
		]
	}`, string(data))
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		node RawNode
		want string
	}{
		{
			name: "first name-like property",
			node: RawNode{ElementID: "a", Props: map[string]any{"fullName": "Alice", "age": 30}},
			want: "Alice",
		},
		{
			name: "exact name wins",
			node: RawNode{ElementID: "b", Props: map[string]any{"name": "Bob", "fullName": "Robert"}},
			want: "Bob",
		},
		{
			name: "exact match is case sensitive",
			node: RawNode{ElementID: "c", Props: map[string]any{"Name": "Upper", "nickname": "Lower"}},
			want: "Upper",
		},
		{
			name: "match is case insensitive",
			node: RawNode{ElementID: "d", Props: map[string]any{"FILENAME": "a.pdf", "size": 3}},
			want: "a.pdf",
		},
		{
			name: "label fallback",
			node: RawNode{ElementID: "e", Labels: []string{"Person"}, Props: map[string]any{"age": 30}},
			want: "Person",
		},
		{
			name: "first label",
			node: RawNode{ElementID: "f", Labels: []string{"Patient", "Person"}},
			want: "Patient",
		},
		{
			name: "identity fallback",
			node: RawNode{ElementID: "4:db:12"},
			want: "Node-4:db:12",
		},
		{
			name: "non-string value",
			node: RawNode{ElementID: "g", Props: map[string]any{"name": int64(42)}},
			want: "42",
		},
		{
			name: "bool value",
			node: RawNode{ElementID: "i", Props: map[string]any{"name": true}},
			want: "true",
		},
		{
			name: "float value",
			node: RawNode{ElementID: "j", Props: map[string]any{"name": 2.5}},
			want: "2.5",
		},
		{
			name: "nil value",
			node: RawNode{ElementID: "h", Labels: []string{"X"}, Props: map[string]any{"name": nil}},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.node))
		})
	}
}
