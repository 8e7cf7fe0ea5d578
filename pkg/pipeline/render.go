package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/flowatlas/flowatlas/pkg/flow"
	"github.com/flowatlas/flowatlas/pkg/geo"
	fio "github.com/flowatlas/flowatlas/pkg/io"
	"github.com/flowatlas/flowatlas/pkg/render/choropleth"
	"github.com/flowatlas/flowatlas/pkg/render/nodelink"
	"github.com/flowatlas/flowatlas/pkg/render/raster"
	"github.com/flowatlas/flowatlas/pkg/render/sankey"
)

// RenderFlow generates flow artifacts in the requested formats.
func RenderFlow(ctx context.Context, g *flow.Graph, opts Options) (map[string][]byte, error) {
	f := opts.Filters()
	artifacts := make(map[string][]byte, len(opts.Formats))

	var (
		html []byte
		dot  string
	)
	page := func() ([]byte, error) {
		if html != nil {
			return html, nil
		}
		var buf bytes.Buffer
		err := sankey.Render(&buf, g, sankey.Options{Title: opts.Title, Subtitle: subtitle(f)})
		html = buf.Bytes()
		return html, err
	}
	graphviz := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(g, nodelink.Options{})
		}
		return dot
	}

	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatHTML:
			data, err = page()
		case FormatJSON:
			var buf bytes.Buffer
			err = fio.WriteGraph(&buf, g, &f)
			data = buf.Bytes()
		case FormatDOT:
			data = []byte(graphviz())
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, graphviz())
		case FormatPNG:
			if data, err = page(); err == nil {
				data, err = raster.HTMLToPNG(ctx, data, raster.Options{Width: int64(opts.Width), Height: int64(opts.Height)})
			}
		default:
			return nil, fmt.Errorf("unsupported flow format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderMap generates map artifacts in the requested formats.
func RenderMap(ctx context.Context, cmd MapCommand, regions []geo.Region, opts Options) (map[string][]byte, error) {
	title := opts.Title
	if title == "" {
		title = cmd.Year
	}
	svg := func() []byte {
		return choropleth.RenderBytes(regions, cmd.Fills, cmd.Legend,
			choropleth.WithSize(opts.Width, opts.Height),
			choropleth.WithTitle(title),
			choropleth.WithTooltips(cmd.Tooltips),
		)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			data = svg()
		case FormatJSON:
			var buf bytes.Buffer
			err = fio.WriteFrame(&buf, cmd.Frame())
			data = buf.Bytes()
		case FormatPNG:
			data, err = raster.SVGToPNG(ctx, svg(), raster.Options{
				Width:  int64(opts.Width),
				Height: int64(opts.Height) + 80,
			})
		default:
			return nil, fmt.Errorf("unsupported map format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func subtitle(f flow.Filters) string {
	n := f.Normalize()
	return fmt.Sprintf("Year: %s, origin: %s, asylum: %s", n.Year, n.Origin, n.Asylum)
}
