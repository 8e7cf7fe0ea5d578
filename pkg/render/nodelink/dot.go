package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/flowatlas/flowatlas/pkg/flow"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the flow value as an edge label.
	Detailed bool

	// MaxPenWidth is the stroke width of the largest flow. Default 12.
	MaxPenWidth float64
}

// ToDOT converts a flow graph to Graphviz DOT.
func ToDOT(g *flow.Graph, opts Options) string {
	if opts.MaxPenWidth <= 0 {
		opts.MaxPenWidth = 12
	}
	var peak float64
	for _, l := range g.Links {
		peak = math.Max(peak, l.Value)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph flows {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.05\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#4682b480\"];\n")
	buf.WriteString("  ranksep=3;\n\n")

	writeRank(&buf, g, flow.RoleOrigin, "source", "#fde0c5")
	writeRank(&buf, g, flow.RoleAsylum, "sink", "#c6dbef")

	buf.WriteString("\n")
	for i, l := range g.Links {
		attrs := fmt.Sprintf("penwidth=%.2f, tooltip=%q", penWidth(l.Value, peak, opts.MaxPenWidth), g.Tooltip(i))
		if opts.Detailed {
			attrs += fmt.Sprintf(", label=%q", flow.FormatValue(l.Value))
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", l.Source, l.Target, attrs)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func writeRank(buf *bytes.Buffer, g *flow.Graph, role flow.Role, rank, fill string) {
	fmt.Fprintf(buf, "  { rank=%s;\n", rank)
	for i, n := range g.Nodes {
		if n.Role != role {
			continue
		}
		fmt.Fprintf(buf, "    n%d [label=%q, tooltip=%q, fillcolor=%q];\n", i, flow.Label(n.Name), n.Name, fill)
	}
	buf.WriteString("  }\n")
}

func penWidth(v, peak, maxWidth float64) float64 {
	if peak <= 0 || v <= 0 {
		return 1
	}
	return math.Max(1, maxWidth*math.Sqrt(v/peak))
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one that scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
