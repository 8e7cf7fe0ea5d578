// Package nodelink renders flow graphs as Graphviz node-link diagrams.
//
// Origins are ranked on the left and asylum countries on the right
// (rankdir=LR), and each edge's pen width grows with the square root of its
// value relative to the largest flow. This is a static alternative to the
// interactive Sankey page, useful in documents and terminals.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// Rendering runs Graphviz in-process through [github.com/goccy/go-graphviz].
package nodelink
