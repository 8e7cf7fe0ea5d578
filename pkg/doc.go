// Package pkg provides the core libraries for flowatlas refugee flow
// visualization.
//
// # Overview
//
// flowatlas reads refugee and asylum statistics from CSV and draws them two
// ways: a Sankey diagram of movements from countries of origin to countries
// of asylum, and a choropleth world map coloured by the number of refugees
// from each country in one year. A timelapse replays the map across years.
//
// # Architecture
//
// The typical data flow:
//
//	CSV (file or URL)
//	         ↓
//	    [dataset] (schema, records, dropdown options)
//	         ↓
//	    [flow] graph builder        [binner] year slice + colour scale
//	         ↓                               ↓
//	    [render/sankey], [render/nodelink]   [render/choropleth] + [geo]
//	         ↓                               ↓
//	    HTML/JSON/DOT/SVG/PNG           SVG/JSON/PNG, [timelapse] frames
//
// [pipeline] ties the stages together with caching and is the entry point
// for both the CLI and [server].
//
// # Quick Start
//
//	ds, _ := dataset.Open(ctx, "refugees.csv", dataset.SchemaUNHCR, nil)
//	g := flow.Build(ds.Records, flow.Filters{Year: "2016"}, flow.Options{})
//	fmt.Println(g.NodeCount(), g.LinkCount())
//
// # Main Packages
//
// [dataset] - CSV loading with column presets for UNHCR (origin, asylum,
// value) and OWID (one value per country and year) tables.
//
// [flow] - Builds the origin to asylum graph: nodes by name, links summed,
// small links pruned in the unfiltered view.
//
// [binner] - Year slices, the country alias table, threshold and continuous
// colour scales, and legends.
//
// [timelapse] - A ticker that walks the year list in one-shot or loop mode
// with manual overrides.
//
// [pipeline] - Options, runner and interactive controller producing render
// commands and artifacts.
//
// [geo] - GeoJSON or TopoJSON world geometry and the map projection.
//
// [render] - Output writers for Sankey pages, Graphviz, map SVG and PNG.
//
// [server] and [session] - HTTP API with per-client websocket timelapse
// sessions.
//
// [cache], [httputil], [config], [errors], [io] and [observability] - the
// supporting infrastructure.
//
// [dataset]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/dataset
// [flow]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/flow
// [binner]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/binner
// [timelapse]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/timelapse
// [pipeline]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/pipeline
// [geo]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/geo
// [render]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/render
// [render/sankey]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/render/sankey
// [render/nodelink]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/render/nodelink
// [render/choropleth]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/render/choropleth
// [server]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/server
// [session]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/session
// [cache]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/httputil
// [config]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/config
// [errors]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/errors
// [io]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/io
// [observability]: https://pkg.go.dev/github.com/flowatlas/flowatlas/pkg/observability
package pkg
