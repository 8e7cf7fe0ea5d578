package geo

import (
	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

// CountriesObject is the world-atlas object holding country outlines. When a
// topology has it, the other objects (land, borders) are ignored.
const CountriesObject = "countries"

type topology struct {
	Type      string                `json:"type"`
	Transform *topoTransform        `json:"transform"`
	Objects   map[string]topoObject `json:"objects"`
	Arcs      [][][]float64         `json:"arcs"`
}

type topoTransform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoObject struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometries []topoObject    `json:"geometries"`
	Arcs       json.RawMessage `json:"arcs"`
}

// isTopology sniffs the top-level "type" member.
func isTopology(data []byte) bool {
	var head struct {
		Type string `json:"type"`
	}
	return json.Unmarshal(data, &head) == nil && head.Type == "Topology"
}

// parseTopology converts the polygons of a TopoJSON topology into GeoJSON
// features. Quantized arcs are delta-decoded through the transform.
func parseTopology(data []byte) (*geojson.FeatureCollection, error) {
	var t topology
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode topojson")
	}
	arcs := t.decodeArcs()

	objects := t.Objects
	if c, ok := objects[CountriesObject]; ok {
		objects = map[string]topoObject{CountriesObject: c}
	}

	fc := geojson.NewFeatureCollection()
	for _, obj := range objects {
		geoms := []topoObject{obj}
		if obj.Type == "GeometryCollection" {
			geoms = obj.Geometries
		}
		for _, g := range geoms {
			geom, err := g.geometry(arcs)
			if err != nil {
				return nil, err
			}
			if geom == nil {
				continue
			}
			f := geojson.NewFeature(geom)
			f.Properties = geojson.Properties(g.Properties)
			if f.Properties == nil {
				f.Properties = geojson.Properties{}
			}
			fc.Append(f)
		}
	}
	return fc, nil
}

func (t *topology) decodeArcs() [][]orb.Point {
	out := make([][]orb.Point, len(t.Arcs))
	for i, arc := range t.Arcs {
		pts := make([]orb.Point, 0, len(arc))
		var x, y float64
		for _, p := range arc {
			if len(p) < 2 {
				continue
			}
			if t.Transform == nil {
				pts = append(pts, orb.Point{p[0], p[1]})
				continue
			}
			x += p[0]
			y += p[1]
			pts = append(pts, orb.Point{
				x*t.Transform.Scale[0] + t.Transform.Translate[0],
				y*t.Transform.Scale[1] + t.Transform.Translate[1],
			})
		}
		out[i] = pts
	}
	return out
}

// geometry returns nil for types that cannot outline a region.
func (o topoObject) geometry(arcs [][]orb.Point) (orb.Geometry, error) {
	switch o.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(o.Arcs, &rings); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode polygon arcs")
		}
		return polygon(rings, arcs)
	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(o.Arcs, &polys); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode multipolygon arcs")
		}
		mp := make(orb.MultiPolygon, 0, len(polys))
		for _, rings := range polys {
			p, err := polygon(rings, arcs)
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}
		return mp, nil
	}
	return nil, nil
}

func polygon(rings [][]int, arcs [][]orb.Point) (orb.Polygon, error) {
	p := make(orb.Polygon, 0, len(rings))
	for _, refs := range rings {
		var ring orb.Ring
		for _, ref := range refs {
			i, reverse := ref, false
			if ref < 0 {
				i, reverse = ^ref, true
			}
			if i >= len(arcs) {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "arc index %d out of range (%d arcs)", i, len(arcs))
			}
			pts := arcs[i]
			if reverse {
				pts = reversed(pts)
			}
			// Consecutive arcs share their joining point.
			if len(ring) > 0 && len(pts) > 0 {
				pts = pts[1:]
			}
			ring = append(ring, pts...)
		}
		p = append(p, ring)
	}
	return p, nil
}

func reversed(pts []orb.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
