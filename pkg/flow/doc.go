// Package flow builds the origin -> asylum flow graph behind the Sankey
// diagram.
//
// [Build] filters records by year, origin and asylum, then turns every
// surviving record into one link between an origin node and an asylum node.
// Origin and asylum nodes live in separate namespaces: a country that both
// sends and hosts refugees appears twice, once on each side of the diagram.
// This keeps the graph bipartite and acyclic, which Sankey layouts require.
//
// When neither the origin nor the asylum filter is set the full dataset is
// too dense to draw, so records with a value at or below [Options.MinValue]
// are pruned before any node is created.
package flow
