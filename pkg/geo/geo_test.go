package geo

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Syria"},
     "geometry": {"type": "Polygon", "coordinates": [[[36,33],[42,33],[42,37],[36,37],[36,33]]]}},
    {"type": "Feature", "properties": {"ADMIN": "Dem. Rep. Congo"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[12,-13],[31,-13],[31,5],[12,5],[12,-13]]]]}},
    {"type": "Feature", "properties": {"name": "Null Island"},
     "geometry": {"type": "Point", "coordinates": [0,0]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}
  ]
}`

func TestParse(t *testing.T) {
	regions, err := Parse([]byte(sampleGeoJSON))
	require.NoError(t, err)
	assert.Equal(t, []string{"Dem. Rep. Congo", "Syria"}, Names(regions))

	c := regions[1].Centroid()
	assert.InDelta(t, 39, c.Lon(), 1e-9)
	assert.InDelta(t, 35, c.Lat(), 1e-9)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("not json"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, err = Parse([]byte(`{"type":"FeatureCollection","features":[]}`))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

// Two unit squares at lon 30-32 and 32-34 sharing the arc at lon 32.
const sampleTopoJSON = `{
  "type": "Topology",
  "transform": {"scale": [1, 1], "translate": [30, 30]},
  "objects": {
    "countries": {"type": "GeometryCollection", "geometries": [
      {"type": "Polygon", "id": "760", "properties": {"name": "Syria"}, "arcs": [[0, 1]]},
      {"type": "MultiPolygon", "id": "368", "properties": {"name": "Iraq"}, "arcs": [[[2, -1]]]},
      {"type": null, "properties": {"name": "Nowhere"}}
    ]},
    "land": {"type": "GeometryCollection", "geometries": [
      {"type": "Polygon", "properties": {"name": "World"}, "arcs": [[1, 2]]}
    ]}
  },
  "arcs": [
    [[2, 0], [0, 2]],
    [[2, 2], [-2, 0], [0, -2], [2, 0]],
    [[2, 0], [2, 0], [0, 2], [-2, 0]]
  ]
}`

func TestParseTopology(t *testing.T) {
	regions, err := Parse([]byte(sampleTopoJSON))
	require.NoError(t, err)
	require.Equal(t, []string{"Iraq", "Syria"}, Names(regions))

	syria := regions[1].Geometry.(orb.Polygon)
	require.Len(t, syria, 1)
	assert.Equal(t, orb.Ring{{32, 30}, {32, 32}, {30, 32}, {30, 30}, {32, 30}}, syria[0])
	assert.True(t, syria[0].Closed())

	iraq := regions[0].Geometry.(orb.MultiPolygon)
	require.Len(t, iraq, 1)
	assert.Equal(t, orb.Ring{{32, 30}, {34, 30}, {34, 32}, {32, 32}, {32, 30}}, iraq[0][0])

	c := regions[0].Centroid()
	assert.InDelta(t, 33, c.Lon(), 1e-9)
	assert.InDelta(t, 31, c.Lat(), 1e-9)
}

func TestParseTopologyWithoutCountries(t *testing.T) {
	data := `{"type": "Topology",
	  "objects": {"regions": {"type": "Polygon", "properties": {"name": "Chad"}, "arcs": [[0]]}},
	  "arcs": [[[14, 8], [24, 8], [24, 23], [14, 23], [14, 8]]]}`
	regions, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Equal(t, []string{"Chad"}, Names(regions))
	assert.Equal(t, orb.Bound{Min: orb.Point{14, 8}, Max: orb.Point{24, 23}}, regions[0].Bound())
}

func TestParseTopologyErrors(t *testing.T) {
	badArc := `{"type": "Topology",
	  "objects": {"countries": {"type": "Polygon", "properties": {"name": "Chad"}, "arcs": [[3]]}},
	  "arcs": []}`
	_, err := Parse([]byte(badArc))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, err = Parse([]byte(`{"type": "Topology", "objects": {}, "arcs": []}`))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

type stubFetcher struct{ data []byte }

func (s stubFetcher) Fetch(context.Context, string) ([]byte, error) { return s.data, nil }

func TestLoad(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "world.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sampleGeoJSON), 0o644))
	regions, err := Load(ctx, path, nil)
	require.NoError(t, err)
	assert.Len(t, regions, 2)

	regions, err = Load(ctx, "https://example.com/world.geojson", stubFetcher{[]byte(sampleGeoJSON)})
	require.NoError(t, err)
	assert.Len(t, regions, 2)

	_, err = Load(ctx, "https://example.com/world.geojson", nil)
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))

	_, err = Load(ctx, filepath.Join(t.TempDir(), "missing.geojson"), nil)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestProjection(t *testing.T) {
	pr := NewProjection(DefaultWidth, DefaultHeight)

	x, y := pr.Project(orb.Point{0, 0})
	assert.InDelta(t, 400, x, 1e-9)
	assert.InDelta(t, 500/1.5, y, 1e-9)

	x, _ = pr.Project(orb.Point{180, 0})
	assert.InDelta(t, 400+130*math.Pi, x, 1e-9)

	_, north := pr.Project(orb.Point{0, 60})
	_, pole := pr.Project(orb.Point{0, 90})
	assert.Less(t, north, y, "north is up")
	assert.False(t, math.IsInf(pole, 0), "poles are clamped")

	half := NewProjection(400, 250)
	assert.InDelta(t, 65, half.Scale, 1e-9)
}

func TestPath(t *testing.T) {
	pr := Projection{Scale: 180 / math.Pi, TranslateY: 100}
	sq := orb.Polygon{{{0, 0}, {10, 0}, {10, 0}, {0, 0}}}
	assert.Equal(t, "M0.0,100.0L10.0,100.0L10.0,100.0L0.0,100.0Z", pr.Path(sq))

	assert.Empty(t, pr.Path(orb.Point{1, 1}))
	assert.Empty(t, pr.Path(orb.Polygon{{{0, 0}, {1, 1}}}), "degenerate rings are dropped")
}
