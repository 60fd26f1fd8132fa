package neoviz

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// UnknownLabel is the label given to nodes that carry no label at all.
const UnknownLabel = "Unknown"

// ViewNode is a node in the format expected by the graph viewer.
type ViewNode struct {
	// ID is the dense index of the node within one Convert call, as a decimal string.
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	DisplayName string         `json:"displayName"`
	Color       string         `json:"color"`
	Properties  map[string]any `json:"properties"`
}

// ViewLink connects two ViewNodes by their dense ids.
type ViewLink struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// ViewGraph is the payload handed to the graph viewer.
type ViewGraph struct {
	Nodes []ViewNode `json:"nodes"`
	Links []ViewLink `json:"links"`
}

// Convert maps a raw property graph into the dense node/link format of the viewer.
//
// Nodes keep the order of g.Nodes and are numbered from zero; the number, rendered in
// decimal, becomes the node id. Relationships keep the order of g.Relationships and are
// rewritten to reference those ids. A relationship whose start or end node is not part of
// g.Nodes is dropped, so every emitted link resolves to an emitted node.
//
// Convert is pure: it performs no I/O, keeps no state between calls and does not modify g.
// Property maps in the output are shallow copies.
func Convert(g RawGraph) ViewGraph {
	index := make(map[string]int, len(g.Nodes))
	out := ViewGraph{
		Nodes: make([]ViewNode, 0, len(g.Nodes)),
		Links: make([]ViewLink, 0, len(g.Relationships)),
	}

	for i, n := range g.Nodes {
		index[n.ElementID] = i

		label := primaryLabel(n.Labels)
		out.Nodes = append(out.Nodes, ViewNode{
			ID:          strconv.Itoa(i),
			Label:       label,
			DisplayName: DisplayName(n),
			Color:       ColorFor(label),
			Properties:  copyProps(n.Props),
		})
	}

	for _, r := range g.Relationships {
		if r.StartElementID == "" || r.EndElementID == "" {
			continue
		}
		source, ok := index[r.StartElementID]
		if !ok {
			continue
		}
		target, ok := index[r.EndElementID]
		if !ok {
			continue
		}
		out.Links = append(out.Links, ViewLink{
			Source:     strconv.Itoa(source),
			Target:     strconv.Itoa(target),
			Type:       r.Type,
			Properties: copyProps(r.Props),
		})
	}

	return out
}

// DisplayName picks a human readable name for n.
//
// Properties whose key contains "name" (case-insensitive) are preferred: an exact "name"
// key wins, otherwise the first match in sorted key order is used. Without such a property
// the first label is returned, and without labels "Node-<element id>".
func DisplayName(n RawNode) string {
	var first string
	found := false
	for _, key := range slices.Sorted(maps.Keys(n.Props)) {
		if !strings.Contains(strings.ToLower(key), "name") {
			continue
		}
		if key == "name" {
			return stringify(n.Props[key])
		}
		if !found {
			first, found = key, true
		}
	}
	if found {
		return stringify(n.Props[first])
	}

	if len(n.Labels) > 0 {
		return n.Labels[0]
	}
	return "Node-" + n.ElementID
}

func primaryLabel(labels []string) string {
	if len(labels) == 0 {
		return UnknownLabel
	}
	return labels[0]
}

func copyProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	maps.Copy(out, props)
	return out
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
