package sankey

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/flowatlas/flowatlas/pkg/flow"
)

const (
	DefaultTitle  = "Refugee Flows"
	DefaultWidth  = "100vw"
	DefaultHeight = "100vh"

	originColor = "#e6550d"
	asylumColor = "#3182bd"
)

// Options configures the Sankey page.
type Options struct {
	Title    string
	Subtitle string
	Width    string // CSS size, default 100vw
	Height   string // CSS size, default 100vh
}

func (o *Options) setDefaults() {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Width == "" {
		o.Width = DefaultWidth
	}
	if o.Height == "" {
		o.Height = DefaultHeight
	}
}

// Chart builds the go-echarts Sankey chart for g.
func Chart(g *flow.Graph, o Options) *charts.Sankey {
	o.setDefaults()

	c := charts.NewSankey()
	c.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     o.Width,
			Height:    o.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: o.Subtitle}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	nodes, links := Series(g)
	c.AddSeries("flows", nodes, links,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
	)
	return c
}

// Series converts g into ECharts node and link data.
func Series(g *flow.Graph) ([]opts.SankeyNode, []opts.SankeyLink) {
	names := Names(g)

	nodes := make([]opts.SankeyNode, len(g.Nodes))
	for i, n := range g.Nodes {
		color := originColor
		if n.Role == flow.RoleAsylum {
			color = asylumColor
		}
		nodes[i] = opts.SankeyNode{
			Name:      names[i],
			ItemStyle: &opts.ItemStyle{Color: color},
		}
	}

	links := make([]opts.SankeyLink, len(g.Links))
	for i, l := range g.Links {
		links[i] = opts.SankeyLink{
			Source: names[l.Source],
			Target: names[l.Target],
			Value:  float32(l.Value),
		}
	}
	return nodes, links
}

// Names returns a unique display name for every node of g, in node order.
func Names(g *flow.Graph) []string {
	labels := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		labels[flow.Label(n.Name)]++
	}

	used := make(map[string]bool, len(g.Nodes))
	names := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		name := flow.Label(n.Name)
		if labels[name] > 1 {
			name = n.Key()
		}
		base := name
		for k := 2; used[name]; k++ {
			name = fmt.Sprintf("%s #%d", base, k)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// Render writes g as a standalone HTML page.
func Render(w io.Writer, g *flow.Graph, o Options) error {
	if err := Chart(g, o).Render(w); err != nil {
		return fmt.Errorf("render sankey: %w", err)
	}
	return nil
}
