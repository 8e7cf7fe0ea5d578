package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowatlas/flowatlas/pkg/config"
	"github.com/flowatlas/flowatlas/pkg/dataset"
	"github.com/flowatlas/flowatlas/pkg/geo"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
	"github.com/flowatlas/flowatlas/pkg/server"
	"github.com/flowatlas/flowatlas/pkg/session"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		schema     string
		mapData    string
		mapSchema  string
		noCache    bool
		sessionTTL time.Duration
		maps       mapFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [data.csv]",
		Short: "Serve flow diagrams, maps and timelapse sessions over HTTP",
		Long: `Serve flow diagrams, maps and timelapse sessions over HTTP.

The flow endpoints read data.csv. The map and timelapse endpoints read
--map-data when given (an OWID-style table with one value per country and
year), otherwise data.csv. They are enabled only when world geometry is
available from --geo or the config file.

Timelapse clients connect to /ws/timelapse and drive their own session.`,
		Example: `  flowatlas serve refugees.csv
  flowatlas serve unhcr.csv --map-data owid.csv --geo world.geojson --addr :8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			if err := maps.apply(cmd, &opts); err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && c.Config.Server.Addr != "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), serveParams{
				input:      args[0],
				schema:     schema,
				mapData:    mapData,
				mapSchema:  mapSchema,
				geo:        maps.geo,
				addr:       addr,
				sessionTTL: sessionTTL,
				noCache:    noCache,
				opts:       opts,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&schema, "schema", "", "column preset for data.csv (default: unhcr)")
	cmd.Flags().StringVar(&mapData, "map-data", "", "separate dataset for the map endpoints (file or URL)")
	cmd.Flags().StringVar(&mapSchema, "map-schema", defaultMapSchema, "column preset for --map-data")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", session.DefaultTTL, "idle lifetime of a timelapse session")
	maps.register(cmd)

	return cmd
}

type serveParams struct {
	input, schema      string
	mapData, mapSchema string
	geo, addr          string
	sessionTTL         time.Duration
	noCache            bool
	opts               pipeline.Options
}

func (c *CLI) runServe(ctx context.Context, p serveParams) error {
	runner, err := c.newRunner(ctx, p.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	s, err := c.schemaFor(p.schema, defaultFlowSchema)
	if err != nil {
		return err
	}
	ds, err := c.loadDataset(ctx, p.input, s, runner.Cache)
	if err != nil {
		return err
	}
	ds = ds.DropZero()

	var mapDS *dataset.Dataset
	if p.mapData != "" {
		ms, err := dataset.Preset(p.mapSchema)
		if err != nil {
			return err
		}
		if mapDS, err = c.loadDataset(ctx, p.mapData, ms, runner.Cache); err != nil {
			return err
		}
	}

	var regions []geo.Region
	if p.geo != "" || c.Config.Map.Geo != "" {
		if regions, err = c.loadRegions(ctx, p.geo, runner.Cache); err != nil {
			return err
		}
	} else {
		printWarning("No map geometry: map and timelapse endpoints are disabled (pass --geo)")
	}

	srv, err := server.New(server.Config{
		Runner:     runner,
		Dataset:    ds,
		MapDataset: mapDS,
		Regions:    regions,
		Options:    p.opts,
		SessionTTL: p.sessionTTL,
		Logger:     c.Logger,
	})
	if err != nil {
		return err
	}

	printSuccess("Serving %d records", ds.Len())
	printKeyValue("Address", StyleLink.Render("http://"+p.addr))
	if ds.Schema.HasAsylum() {
		printKeyValue("Flow", "/api/flow")
	} else {
		printDetail("Flow endpoints disabled: schema has no asylum column")
	}
	if len(regions) > 0 {
		printKeyValue("Map", "/api/map/{year}")
		printKeyValue("Timelapse", "/ws/timelapse")
	}
	return srv.ListenAndServe(ctx, p.addr)
}
