package choropleth

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo/float"

	"github.com/flowatlas/flowatlas/pkg/binner"
	"github.com/flowatlas/flowatlas/pkg/geo"
)

const (
	legendHeight = 70
	legendMargin = 20
	swatchWidth  = 40
	swatchHeight = 15
	gradientID   = "legend-gradient"

	oceanColor  = "#f7fbff"
	borderColor = "#ffffff"
)

// Option configures map rendering.
type Option func(*renderer)

type renderer struct {
	width, height float64
	title         string
	tooltips      map[string]string
	projection    *geo.Projection
}

// WithSize sets the map canvas size in pixels. The legend is drawn below it.
func WithSize(width, height float64) Option {
	return func(r *renderer) { r.width, r.height = width, height }
}

func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

// WithTooltips attaches hover text to regions by name.
func WithTooltips(tips map[string]string) Option {
	return func(r *renderer) { r.tooltips = tips }
}

// WithProjection overrides the projection fitted to the canvas size.
func WithProjection(p geo.Projection) Option {
	return func(r *renderer) { r.projection = &p }
}

// Render writes the map as an SVG document. Regions absent from fills are
// drawn with the no-data colour.
func Render(w io.Writer, regions []geo.Region, fills map[string]binner.Color, legend binner.Legend, opts ...Option) error {
	if _, err := w.Write(RenderBytes(regions, fills, legend, opts...)); err != nil {
		return fmt.Errorf("write map: %w", err)
	}
	return nil
}

// RenderBytes returns the SVG document.
func RenderBytes(regions []geo.Region, fills map[string]binner.Color, legend binner.Legend, opts ...Option) []byte {
	r := renderer{width: geo.DefaultWidth, height: geo.DefaultHeight}
	for _, opt := range opts {
		opt(&r)
	}
	proj := geo.NewProjection(r.width, r.height)
	if r.projection != nil {
		proj = *r.projection
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(r.width, r.height+legendHeight,
		fmt.Sprintf(`viewBox="0 0 %s %s"`, num(r.width), num(r.height+legendHeight)),
		`font-family="Helvetica,Arial,sans-serif"`)

	canvas.Rect(0, 0, r.width, r.height, "fill:"+oceanColor)
	canvas.Group(`class="regions"`, fmt.Sprintf(`stroke="%s" stroke-width="0.5"`, borderColor))
	for _, region := range regions {
		d := proj.Path(region.Geometry)
		if d == "" {
			continue
		}
		fill, ok := fills[region.Name]
		if !ok {
			fill = binner.NoData()
		}
		canvas.Group(`class="region"`)
		if tip, ok := r.tooltips[region.Name]; ok {
			canvas.Title(tip)
		} else {
			canvas.Title(region.Name)
		}
		canvas.Path(d, fmt.Sprintf(`fill="%s"`, fill.Hex()))
		canvas.Gend()
	}
	canvas.Gend()

	if r.title != "" {
		canvas.Text(r.width/2, 28, r.title, "text-anchor:middle;font-size:20px;font-weight:bold")
	}

	drawLegend(canvas, legend, r.width, r.height+10)
	canvas.End()
	return buf.Bytes()
}

func drawLegend(canvas *svg.SVG, l binner.Legend, width, top float64) {
	canvas.Group(`class="legend"`, `font-size="10px"`)
	defer canvas.Gend()

	x := legendMargin
	buckets := l.Entries
	if len(buckets) > 0 && buckets[0].Color.NoData {
		swatch(canvas, float64(x), top, swatchWidth, buckets[0])
		buckets = buckets[1:]
	}
	left := float64(x + swatchWidth + 20)
	barWidth := width - left - legendMargin

	if len(l.Gradient) > 0 {
		stops := make([]svg.Offcolor, len(l.Gradient))
		for i, s := range l.Gradient {
			stops[i] = svg.Offcolor{Offset: uint8(s.Offset*100 + 0.5), Color: s.Color.Hex(), Opacity: 1}
		}
		canvas.Def()
		canvas.LinearGradient(gradientID, 0, 0, 100, 0, stops)
		canvas.DefEnd()
		canvas.Rect(left, top, barWidth, swatchHeight, fmt.Sprintf(`fill="url(#%s)"`, gradientID))
		for _, t := range l.Ticks {
			tx := left + t.Offset*barWidth
			canvas.Line(tx, top+swatchHeight, tx, top+swatchHeight+4, "stroke:#333")
			canvas.Text(tx, top+swatchHeight+15, t.Label, "text-anchor:middle")
		}
	} else if len(buckets) > 0 {
		w := barWidth / float64(len(buckets))
		for i, e := range buckets {
			swatch(canvas, left+float64(i)*w, top, w, e)
		}
	}

	if l.Title != "" {
		canvas.Text(left+barWidth/2, top+swatchHeight+35, l.Title, "text-anchor:middle;font-size:12px")
	}
}

func swatch(canvas *svg.SVG, x, y, w float64, e binner.LegendEntry) {
	canvas.Rect(x, y, w, swatchHeight, fmt.Sprintf(`fill="%s"`, e.Color.Hex()))
	canvas.Text(x+w/2, y+swatchHeight+15, e.Label, "text-anchor:middle")
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
