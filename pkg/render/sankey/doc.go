// Package sankey renders flow graphs as interactive Sankey pages.
//
// The page is a self-contained go-echarts HTML document. ECharts lays out the
// diagram in the browser, so this package only translates a [flow.Graph]
// into series data: one node per (country, role) and one link per flow.
//
// ECharts identifies Sankey nodes by name, so a country appearing both as an
// origin and as an asylum country needs distinct display names. [Names]
// assigns them: the truncated label when it is free, the role-qualified key
// otherwise, and a numeric suffix as a last resort.
//
// [flow.Graph]: github.com/flowatlas/flowatlas/pkg/flow.Graph
package sankey
