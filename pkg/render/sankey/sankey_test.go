package sankey

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowatlas/flowatlas/pkg/flow"
)

func TestNames(t *testing.T) {
	t.Run("distinct countries keep their labels", func(t *testing.T) {
		g := &flow.Graph{Nodes: []flow.Node{
			{Name: "Syria", Role: flow.RoleOrigin},
			{Name: "Turkey", Role: flow.RoleAsylum},
		}}
		assert.Equal(t, []string{"Syria", "Turkey"}, Names(g))
	})

	t.Run("same country in both roles", func(t *testing.T) {
		g := &flow.Graph{Nodes: []flow.Node{
			{Name: "Ukraine", Role: flow.RoleOrigin},
			{Name: "Ukraine", Role: flow.RoleAsylum},
		}}
		assert.Equal(t, []string{"Ukraine (origin)", "Ukraine (asylum)"}, Names(g))
	})

	t.Run("truncation collisions", func(t *testing.T) {
		a := "Democratic Republic of the Congo North"
		b := "Democratic Republic of the Congo South"
		g := &flow.Graph{Nodes: []flow.Node{
			{Name: a, Role: flow.RoleOrigin},
			{Name: b, Role: flow.RoleOrigin},
		}}
		names := Names(g)
		assert.Equal(t, a+" (origin)", names[0])
		assert.Equal(t, b+" (origin)", names[1])
	})

	t.Run("suffix as last resort", func(t *testing.T) {
		g := &flow.Graph{Nodes: []flow.Node{
			{Name: "Chad", Role: flow.RoleOrigin},
			{Name: "Chad", Role: flow.RoleAsylum},
			{Name: "Chad (origin)", Role: flow.RoleAsylum},
		}}
		assert.Equal(t, []string{"Chad (origin)", "Chad (asylum)", "Chad (origin) #2"}, Names(g))
	})
}

func TestSeries(t *testing.T) {
	g := &flow.Graph{
		Nodes: []flow.Node{
			{Name: "Syria", Role: flow.RoleOrigin},
			{Name: "Germany", Role: flow.RoleAsylum},
		},
		Links: []flow.Link{{Source: 0, Target: 1, Value: 560000}},
	}
	nodes, links := Series(g)
	require.Len(t, nodes, 2)
	require.Len(t, links, 1)
	assert.Equal(t, originColor, nodes[0].ItemStyle.Color)
	assert.Equal(t, asylumColor, nodes[1].ItemStyle.Color)
	assert.Equal(t, "Syria", links[0].Source)
	assert.Equal(t, "Germany", links[0].Target)
	assert.Equal(t, float32(560000), links[0].Value)
}

func TestRender(t *testing.T) {
	g := &flow.Graph{
		Nodes: []flow.Node{
			{Name: "Afghanistan", Role: flow.RoleOrigin},
			{Name: "Pakistan", Role: flow.RoleAsylum},
		},
		Links: []flow.Link{{Source: 0, Target: 1, Value: 1400000}},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, g, Options{Subtitle: "2020"}))

	html := buf.String()
	assert.Contains(t, html, DefaultTitle)
	assert.Contains(t, html, "sankey")
	assert.Contains(t, html, "Afghanistan")
	assert.Contains(t, html, "Pakistan")
}
