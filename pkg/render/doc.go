// Package render groups the output writers for flowatlas.
//
// Each subpackage turns a data structure produced by the pipeline into bytes:
//
//   - [sankey]: interactive HTML Sankey page for a flow graph (go-echarts)
//   - [nodelink]: Graphviz DOT, SVG and PNG for a flow graph
//   - [choropleth]: SVG world map and legend for one year of fills (svgo)
//   - [raster]: PNG screenshots of rendered HTML or SVG (headless Chrome)
//
// None of them compute layout. Sankey node placement is left to ECharts,
// node-link placement to Graphviz, and map geometry comes projected from
// the geo package.
//
// [sankey]: github.com/flowatlas/flowatlas/pkg/render/sankey
// [nodelink]: github.com/flowatlas/flowatlas/pkg/render/nodelink
// [choropleth]: github.com/flowatlas/flowatlas/pkg/render/choropleth
// [raster]: github.com/flowatlas/flowatlas/pkg/render/raster
package render
