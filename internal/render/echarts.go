// Package render turns a converted graph into a standalone go-echarts HTML page, for
// sharing query results without the interactive viewer.
package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/saulfrancisco-ruizacevedo/go-neoviz"
)

// DefaultTitle is used when no page title is given.
const DefaultTitle = "neoviz"

// ECharts builds a force-directed go-echarts graph from g. Node names must be unique in
// echarts, so repeated display names are suffixed with the node id.
func ECharts(g neoviz.ViewGraph, title string) *charts.Graph {
	if title == "" {
		title = DefaultTitle
	}

	names := NodeNames(g)
	nodes := make([]opts.GraphNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, opts.GraphNode{
			Name:      names[n.ID],
			ItemStyle: &opts.ItemStyle{Color: n.Color},
		})
	}
	links := make([]opts.GraphLink, 0, len(g.Links))
	for _, l := range g.Links {
		links = append(links, opts.GraphLink{
			Source: names[l.Source],
			Target: names[l.Target],
		})
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d nodes, %d links", len(g.Nodes), len(g.Links)),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"graph",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Draggable: opts.Bool(true),
				Roam:      opts.Bool(true),
				Force:     &opts.GraphForce{Repulsion: 400},
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    "black",
			Position: "top",
		}),
	)
	return graph
}

// WriteHTML renders g as a complete HTML page to w.
func WriteHTML(w io.Writer, g neoviz.ViewGraph, title string) error {
	page := components.NewPage()
	page.PageTitle = pageTitle(title)
	page.AddCharts(ECharts(g, title))
	return page.Render(w)
}

// NodeNames maps every node id to a unique display string. Repeated names get a " #<id>"
// suffix, extended further if that is itself taken.
func NodeNames(g neoviz.ViewGraph) map[string]string {
	names := make(map[string]string, len(g.Nodes))
	used := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		name := n.DisplayName
		for i := 0; used[name]; i++ {
			if i == 0 {
				name = fmt.Sprintf("%s #%s", n.DisplayName, n.ID)
			} else {
				name = fmt.Sprintf("%s #%s.%d", n.DisplayName, n.ID, i)
			}
		}
		used[name] = true
		names[n.ID] = name
	}
	return names
}

func pageTitle(title string) string {
	if title == "" {
		return DefaultTitle
	}
	return title
}
