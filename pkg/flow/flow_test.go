package flow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowatlas/flowatlas/pkg/dataset"
	"github.com/flowatlas/flowatlas/pkg/errors"
)

func rec(year, origin, asylum, value string) dataset.Record {
	s := dataset.SchemaUNHCR
	return dataset.NewRecord(s, map[string]string{
		s.Year:   year,
		s.Origin: origin,
		s.Asylum: asylum,
		s.Value:  value,
	})
}

func TestBuild_SharedOrigin(t *testing.T) {
	records := []dataset.Record{
		rec("2013", "Syria", "Turkey", "500000"),
		rec("2013", "Syria", "Germany", "200000"),
	}
	g := Build(records, Filters{Year: "2013", Origin: "all", Asylum: "all"}, Options{})

	require.Equal(t, 3, g.NodeCount())
	require.Equal(t, 2, g.LinkCount())
	assert.Equal(t, []Node{
		{Name: "Syria", Role: RoleOrigin},
		{Name: "Turkey", Role: RoleAsylum},
		{Name: "Germany", Role: RoleAsylum},
	}, g.Nodes)
	assert.Equal(t, Link{Source: 0, Target: 1, Value: 500000}, g.Links[0])
	assert.Equal(t, Link{Source: 0, Target: 2, Value: 200000}, g.Links[1])
	assert.Equal(t, 700000.0, g.Total())
	assert.NoError(t, g.Validate())
}

func TestBuild_UnparseableValue(t *testing.T) {
	records := []dataset.Record{rec("2021", "Eritrea", "Sudan", "N/A")}
	g := Build(records, Filters{Origin: "Eritrea"}, Options{})

	require.Equal(t, 1, g.LinkCount())
	assert.Equal(t, 0.0, g.Links[0].Value)
}

func TestBuild_SameNameBothRoles(t *testing.T) {
	records := []dataset.Record{
		rec("2020", "Sudan", "Chad", "5000"),
		rec("2020", "Eritrea", "Sudan", "5000"),
		rec("2020", "Sudan", "Egypt", "5000"),
	}
	g := Build(records, Filters{}, Options{})

	require.Equal(t, 5, g.NodeCount())
	assert.Equal(t, Node{Name: "Sudan", Role: RoleOrigin}, g.Nodes[0])
	assert.Equal(t, Node{Name: "Sudan", Role: RoleAsylum}, g.Nodes[3])
	assert.Equal(t, 0, g.Links[2].Source, "origin node reused")
	assert.NoError(t, g.Validate())
}

func TestBuild_Pruning(t *testing.T) {
	records := []dataset.Record{
		rec("2020", "Syria", "Turkey", "3600000"),
		rec("2020", "Syria", "Malta", "1000"),
		rec("2020", "Iraq", "Malta", "999"),
		rec("2020", "Iraq", "Jordan", "1001"),
		rec("2020", "Iraq", "Chile", ""),
	}

	tests := []struct {
		name      string
		filters   Filters
		opts      Options
		wantLinks int
	}{
		{"all/all prunes at 1000", Filters{Year: "2020"}, Options{}, 2},
		{"ALL is case-insensitive", Filters{Origin: "ALL", Asylum: "All"}, Options{}, 2},
		{"origin set disables pruning", Filters{Origin: "Iraq"}, Options{}, 3},
		{"asylum set disables pruning", Filters{Asylum: "Malta"}, Options{}, 2},
		{"custom threshold", Filters{}, Options{MinValue: Threshold(1000.5)}, 3},
		{"zero threshold keeps positive values", Filters{}, Options{MinValue: Threshold(0)}, 4},
		{"pruning disabled", Filters{}, Options{DisablePruning: true}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(records, tt.filters, tt.opts)
			assert.Equal(t, tt.wantLinks, g.LinkCount())
			assert.NoError(t, g.Validate())
		})
	}
}

func TestBuild_NoMatches(t *testing.T) {
	g := Build([]dataset.Record{rec("2020", "Syria", "Turkey", "5000")}, Filters{Year: "1999"}, Options{})
	assert.Equal(t, 0, g.NodeCount())
	assert.NotNil(t, g.Links)
	assert.Equal(t, 0.0, g.Total())
}

func TestBuild_OrderFollowsInput(t *testing.T) {
	records := []dataset.Record{
		rec("2020", "B", "Y", "5000"),
		rec("2020", "A", "X", "5000"),
		rec("2020", "B", "X", "5000"),
	}
	g := Build(records, Filters{}, Options{})
	names := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		names[i] = n.Name
	}
	assert.Equal(t, []string{"B", "Y", "A", "X"}, names)
	assert.Equal(t, []Link{{0, 1, 5000}, {2, 3, 5000}, {0, 3, 5000}}, g.Links)
}

func TestFilters_Normalize(t *testing.T) {
	got := Filters{Year: "2020", Origin: "", Asylum: "ALL"}.Normalize()
	assert.Equal(t, Filters{Year: "2020", Origin: "all", Asylum: "all"}, got)
}

func TestGraph_Validate(t *testing.T) {
	origin := Node{Name: "Syria", Role: RoleOrigin}
	asylum := Node{Name: "Turkey", Role: RoleAsylum}

	tests := []struct {
		name  string
		graph Graph
	}{
		{"out of range", Graph{Nodes: []Node{origin, asylum}, Links: []Link{{0, 2, 1}}}},
		{"reversed", Graph{Nodes: []Node{origin, asylum}, Links: []Link{{1, 0, 1}}}},
		{"duplicate node", Graph{Nodes: []Node{origin, origin}}},
		{"bad role", Graph{Nodes: []Node{{Name: "X", Role: "transit"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.graph.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Syria", Label("Syria"))
	exact := strings.Repeat("a", MaxLabel)
	assert.Equal(t, exact, Label(exact))
	long := "Venezuela (Bolivarian Republic of)"
	got := Label(long)
	assert.Equal(t, "Venezuela (Bolivarian Repub...", got)
	assert.Len(t, got, MaxLabel)
}

func TestTooltip(t *testing.T) {
	g := Build([]dataset.Record{rec("2020", "Syria", "Turkey", "3600000")}, Filters{}, Options{})
	assert.Equal(t, "Syria to Turkey : 3600000", g.Tooltip(0))
}
