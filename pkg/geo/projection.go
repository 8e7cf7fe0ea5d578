package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 500

	baseScale = 130
	maxLat    = 85.05112878
)

// Projection maps lon/lat degrees to canvas pixels with a spherical Mercator.
type Projection struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// NewProjection fits the default world view to a canvas of the given size.
func NewProjection(width, height float64) Projection {
	return Projection{
		Scale:      baseScale * width / DefaultWidth,
		TranslateX: width / 2,
		TranslateY: height / 1.5,
	}
}

// Project returns the canvas position of p. Latitudes are clamped to the
// Mercator limit.
func (pr Projection) Project(p orb.Point) (x, y float64) {
	lon := p.Lon() * math.Pi / 180
	lat := math.Max(-maxLat, math.Min(maxLat, p.Lat())) * math.Pi / 180
	x = pr.Scale*lon + pr.TranslateX
	y = pr.TranslateY - pr.Scale*math.Log(math.Tan(math.Pi/4+lat/2))
	return x, y
}

// Path returns SVG path data for a polygonal geometry. Other geometry types
// yield an empty string.
func (pr Projection) Path(g orb.Geometry) string {
	var b strings.Builder
	switch g := g.(type) {
	case orb.Polygon:
		pr.writePolygon(&b, g)
	case orb.MultiPolygon:
		for _, p := range g {
			pr.writePolygon(&b, p)
		}
	}
	return b.String()
}

func (pr Projection) writePolygon(b *strings.Builder, p orb.Polygon) {
	for _, ring := range p {
		if len(ring) < 3 {
			continue
		}
		for i, pt := range ring {
			x, y := pr.Project(pt)
			if i == 0 {
				b.WriteByte('M')
			} else {
				b.WriteByte('L')
			}
			b.WriteString(strconv.FormatFloat(x, 'f', 1, 64))
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(y, 'f', 1, 64))
		}
		b.WriteByte('Z')
	}
}
