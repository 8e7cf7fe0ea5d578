package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowatlas/flowatlas/pkg/binner"
	"github.com/flowatlas/flowatlas/pkg/errors"
	"github.com/flowatlas/flowatlas/pkg/flow"
)

func sampleGraph() *flow.Graph {
	return &flow.Graph{
		Nodes: []flow.Node{
			{Name: "Syria", Role: flow.RoleOrigin},
			{Name: "Turkey", Role: flow.RoleAsylum},
			{Name: "Venezuela (Bolivarian Republic of)", Role: flow.RoleOrigin},
		},
		Links: []flow.Link{
			{Source: 0, Target: 1, Value: 3600000},
			{Source: 2, Target: 1, Value: 1500},
		},
	}
}

func TestWriteGraph(t *testing.T) {
	var buf bytes.Buffer
	filters := flow.Filters{Year: "2020", Origin: "all", Asylum: "all"}
	require.NoError(t, WriteGraph(&buf, sampleGraph(), &filters))

	out := buf.String()
	assert.Contains(t, out, `"tooltip": "Syria to Turkey : 3600000"`)
	assert.Contains(t, out, `"label": "Venezuela (Bolivarian Repub..."`)
	assert.Contains(t, out, `"year": "2020"`)

	g, f, err := ReadGraph(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleGraph(), g)
	require.NotNil(t, f)
	assert.Equal(t, filters, *f)
}

func TestMarshalGraph(t *testing.T) {
	data, err := MarshalGraph(sampleGraph())
	require.NoError(t, err)
	g, err := UnmarshalGraph(data)
	require.NoError(t, err)
	assert.Equal(t, sampleGraph(), g)
}

func TestReadGraph_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"reversed link", `{"nodes":[{"name":"A","role":"origin"},{"name":"B","role":"asylum"}],"links":[{"source":1,"target":0,"value":1}]}`},
		{"dangling index", `{"nodes":[{"name":"A","role":"origin"}],"links":[{"source":0,"target":3,"value":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadGraph(strings.NewReader(tt.json))
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
		})
	}

	_, _, err := ReadGraph(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestExportImportGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, ExportGraph(sampleGraph(), nil, path))
	g, f, err := ImportGraph(path)
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.Equal(t, 2, g.LinkCount())

	_, _, err = ImportGraph(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFrameRoundTrip(t *testing.T) {
	b := binner.New(nil, nil)
	slice := binner.YearSlice{"Syria": 6e6}
	fills, unknown := b.Fills([]string{"Syria", "Narnia"}, slice)
	fr := Frame{Year: "2015", Fills: fills, Legend: binner.NewLegend(b.Scale), Unknown: unknown}

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, fr))
	assert.Contains(t, buf.String(), `"Narnia": ""`)

	back, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, "2015", back.Year)
	assert.Equal(t, fills["Syria"], back.Fills["Syria"])
	assert.True(t, back.Fills["Narnia"].NoData)
	assert.Equal(t, []string{"Narnia"}, back.Unknown)
	assert.Len(t, back.Legend.Entries, 9)
}
