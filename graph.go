package neoviz

import (
	"maps"
	"slices"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// RawNode is a node as returned by the database, before any view mapping.
type RawNode struct {
	// ElementID is the opaque identity of the node. It is stable within one query result
	// only and must not be cached across queries.
	ElementID string
	// Labels holds the node labels in the order the driver returned them.
	Labels []string
	// Props maps property names to scalar values. A nil map is treated as empty.
	Props map[string]any
}

// RawRelationship is a directed, typed relationship between two RawNodes.
type RawRelationship struct {
	ElementID      string
	Type           string
	StartElementID string
	EndElementID   string
	Props          map[string]any
}

// RawGraph is a property-graph snapshot produced by one query execution. Relationships may
// reference nodes that are not part of Nodes.
type RawGraph struct {
	Nodes         []RawNode
	Relationships []RawRelationship
}

// Empty reports whether the graph lacks either nodes or relationships, in which case a
// tabular view of the result is more useful than a graph view.
func (g RawGraph) Empty() bool {
	return len(g.Nodes) == 0 || len(g.Relationships) == 0
}

// GraphFromRecords collects every node and relationship found in the values of the given
// records into a RawGraph. Paths are expanded into their nodes and relationships, and
// lists are walked recursively, so `RETURN *`, `RETURN p` and `RETURN collect(n)` style
// queries all yield a graph.
//
// Elements are de-duplicated by ElementId; the first occurrence fixes the position in the
// output, so the order follows the order of the result set. Relationship endpoints that are
// never returned as nodes themselves are appended afterwards as bare nodes carrying only
// their element id, so `RETURN r` still yields a drawable graph.
func GraphFromRecords(records []*neo4j.Record) RawGraph {
	c := newCollector()
	for _, record := range records {
		if record == nil {
			continue
		}
		for _, value := range record.Values {
			c.add(value)
		}
	}
	c.addEndpoints()
	return c.graph
}

type collector struct {
	graph     RawGraph
	seenNodes map[string]struct{}
	seenRels  map[string]struct{}
}

func newCollector() *collector {
	return &collector{
		seenNodes: make(map[string]struct{}),
		seenRels:  make(map[string]struct{}),
	}
}

func (c *collector) add(value any) {
	switch v := value.(type) {
	case neo4j.Node:
		c.addNode(v)
	case *neo4j.Node:
		if v != nil {
			c.addNode(*v)
		}
	case neo4j.Relationship:
		c.addRelationship(v)
	case *neo4j.Relationship:
		if v != nil {
			c.addRelationship(*v)
		}
	case neo4j.Path:
		for _, n := range v.Nodes {
			c.addNode(n)
		}
		for _, r := range v.Relationships {
			c.addRelationship(r)
		}
	case []any:
		for _, item := range v {
			c.add(item)
		}
	case map[string]any:
		// Map iteration order is random; walk keys sorted to keep the output stable.
		for _, key := range slices.Sorted(maps.Keys(v)) {
			c.add(v[key])
		}
	}
}

func (c *collector) addNode(n neo4j.Node) {
	if _, ok := c.seenNodes[n.ElementId]; ok {
		return
	}
	c.seenNodes[n.ElementId] = struct{}{}
	c.graph.Nodes = append(c.graph.Nodes, RawNode{
		ElementID: n.ElementId,
		Labels:    n.Labels,
		Props:     n.Props,
	})
}

func (c *collector) addRelationship(r neo4j.Relationship) {
	if _, ok := c.seenRels[r.ElementId]; ok {
		return
	}
	c.seenRels[r.ElementId] = struct{}{}
	c.graph.Relationships = append(c.graph.Relationships, RawRelationship{
		ElementID:      r.ElementId,
		Type:           r.Type,
		StartElementID: r.StartElementId,
		EndElementID:   r.EndElementId,
		Props:          r.Props,
	})
}

// addEndpoints adds a bare node for every relationship endpoint not seen as a node. It
// runs after all records are walked so real nodes keep their position.
func (c *collector) addEndpoints() {
	for _, r := range c.graph.Relationships {
		for _, id := range []string{r.StartElementID, r.EndElementID} {
			if id == "" {
				continue
			}
			if _, ok := c.seenNodes[id]; ok {
				continue
			}
			c.seenNodes[id] = struct{}{}
			c.graph.Nodes = append(c.graph.Nodes, RawNode{ElementID: id})
		}
	}
}
