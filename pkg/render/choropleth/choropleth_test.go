package choropleth

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowatlas/flowatlas/pkg/binner"
	"github.com/flowatlas/flowatlas/pkg/geo"
)

func regions() []geo.Region {
	return []geo.Region{
		{Name: "Syria", Geometry: orb.Polygon{{{36, 33}, {42, 33}, {42, 37}, {36, 37}, {36, 33}}}},
		{Name: "Atlantis", Geometry: orb.Polygon{{{-30, 0}, {-20, 0}, {-20, 10}, {-30, 0}}}},
		{Name: "Nowhere", Geometry: orb.Point{0, 0}},
	}
}

func wellFormed(t *testing.T, doc []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			require.Equal(t, "EOF", err.Error(), "document is not well-formed XML")
			return
		}
	}
}

func TestRenderThreshold(t *testing.T) {
	b := binner.New(nil, nil)
	slice := binner.YearSlice{"Syria": 6500000}
	fills, unknown := b.Fills(geo.Names(regions()), slice)
	assert.Equal(t, []string{"Atlantis", "Nowhere"}, unknown)

	doc := RenderBytes(regions(), fills, binner.NewLegend(b.Scale),
		WithTitle("2020"),
		WithTooltips(map[string]string{"Syria": b.Tooltip("Syria", slice)}),
	)
	wellFormed(t, doc)

	s := string(doc)
	assert.Equal(t, 2, strings.Count(s, `<g class="region"`), "points are not drawn")
	assert.Contains(t, s, "<title>Syria&#xA;Refugees: 6500000</title>")
	assert.Contains(t, s, "<title>Atlantis</title>")
	assert.Contains(t, s, `fill="`+fills["Syria"].Hex()+`"`)
	assert.Contains(t, s, `fill="#cccccc"`)
	assert.Contains(t, s, ">2020</text>")
	assert.Contains(t, s, ">No data</text>")
	assert.Contains(t, s, ">1M+</text>")
	assert.Contains(t, s, ">"+binner.LegendTitle+"</text>")
	assert.NotContains(t, s, gradientID)
}

func TestRenderContinuous(t *testing.T) {
	scale, err := binner.NewContinuous(1000, 1000000, binner.Log, nil)
	require.NoError(t, err)
	legend := binner.NewLegend(scale)

	doc := RenderBytes(regions(), map[string]binner.Color{}, legend, WithSize(400, 250))
	wellFormed(t, doc)

	s := string(doc)
	assert.Contains(t, s, `<linearGradient id="`+gradientID+`"`)
	assert.Equal(t, len(legend.Gradient), strings.Count(s, "<stop "))
	assert.Contains(t, s, ">1K</text>")
	assert.Contains(t, s, ">500K</text>")
	assert.Contains(t, s, `width="400.00" height="320.00"`)
}

func TestRenderProjectionOverride(t *testing.T) {
	p := geo.Projection{Scale: 1, TranslateX: 5, TranslateY: 5}
	doc := RenderBytes(regions()[:1], nil, binner.Legend{}, WithProjection(p))
	assert.Contains(t, string(doc), `d="M5.6,4.4`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderWriteError(t *testing.T) {
	err := Render(failingWriter{}, regions(), nil, binner.Legend{})
	assert.ErrorContains(t, err, "disk full")
}
