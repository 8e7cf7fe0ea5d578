package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowatlas/flowatlas/pkg/binner"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
)

// mapFlags are the flags shared by the map and timelapse commands.
type mapFlags struct {
	geo         string
	scale       string
	domain      []float64
	breakpoints []float64
	palette     string
	minYear     string
	maxYear     string
	width       float64
	height      float64
}

func (f *mapFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.geo, "geo", "", "GeoJSON or TopoJSON world geometry (file or URL)")
	cmd.Flags().StringVar(&f.scale, "scale", "", "colour scale: threshold (default), linear, log")
	cmd.Flags().Float64SliceVar(&f.domain, "domain", nil, "continuous scale domain as min,max")
	cmd.Flags().Float64SliceVar(&f.breakpoints, "breakpoints", nil, fmt.Sprintf("threshold breakpoints (default %v)", binner.DefaultBreakpoints))
	cmd.Flags().StringVar(&f.palette, "palette", "", "palette: plasma, viridis (continuous); ColorBrewer name (threshold)")
	cmd.Flags().StringVar(&f.minYear, "min-year", "", "first year considered (default "+pipeline.DefaultMinYear+")")
	cmd.Flags().StringVar(&f.maxYear, "max-year", "", "last year considered (default "+pipeline.DefaultMaxYear+")")
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "map width")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "map height")
}

func (f *mapFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	flags := cmd.Flags()
	if flags.Changed("scale") {
		opts.Scale = f.scale
	}
	if flags.Changed("domain") {
		if len(f.domain) != 2 {
			return fmt.Errorf("--domain needs two values, got %d", len(f.domain))
		}
		opts.DomainMin, opts.DomainMax = f.domain[0], f.domain[1]
	}
	if flags.Changed("breakpoints") {
		opts.Breakpoints = f.breakpoints
	}
	if flags.Changed("palette") {
		opts.Palette = f.palette
	}
	if flags.Changed("min-year") {
		opts.MinYear = f.minYear
	}
	if flags.Changed("max-year") {
		opts.MaxYear = f.maxYear
	}
	opts.Width, opts.Height = f.width, f.height
	return nil
}

// mapCommand creates the map command for rendering one year of the
// choropleth map.
func (c *CLI) mapCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		schema     string
		year       string
		title      string
		noCache    bool
		refresh    bool
		maps       mapFlags
	)

	cmd := &cobra.Command{
		Use:   "map [data.csv]",
		Short: "Render a choropleth map of refugees by country of origin",
		Long: `Render a choropleth map of refugees by country of origin for one year.

Each region of the GeoJSON geometry is coloured by the dataset's value for
the matching country. Region names are translated through the alias table
(extend it under [aliases] in the config file); regions without a value are
drawn gray and reported.

Without --year the latest year between --min-year and --max-year is shown.

Formats: svg (default), json (fills, tooltips and legend), png.`,
		Example: `  flowatlas map refugee.csv --geo world.geojson
  flowatlas map refugee.csv --geo world.geojson --year 2016 --scale log -f svg,png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			if err := maps.apply(cmd, &opts); err != nil {
				return err
			}
			opts.Year = year
			opts.Title = title
			opts.Refresh = refresh
			opts.Formats = parseFormats(formatsStr, pipeline.FormatSVG)
			if err := pipeline.ValidateFormats(opts.Formats, pipeline.MapFormats); err != nil {
				return err
			}
			return c.runMap(cmd.Context(), args[0], schema, maps.geo, opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png (comma-separated)")
	cmd.Flags().StringVar(&schema, "schema", "", "column preset: owid (default), unhcr, applications")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-render even when cached")

	// Map flags
	cmd.Flags().StringVar(&year, "year", "", "year to show (default: latest)")
	cmd.Flags().StringVar(&title, "title", "", "map title (default: the year)")
	maps.register(cmd)

	return cmd
}

// runMap loads the dataset and geometry, bins one year and writes every
// format.
func (c *CLI) runMap(ctx context.Context, input, schemaName, geoSrc string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	s, err := c.schemaFor(schemaName, defaultMapSchema)
	if err != nil {
		return err
	}
	ds, err := c.loadDataset(ctx, input, s, runner.Cache)
	if err != nil {
		return err
	}
	regions, err := c.loadRegions(ctx, geoSrc, runner.Cache)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering map...")
	spinner.Start()
	result, err := runner.ExecuteMap(ctx, ds, regions, opts)
	if err != nil {
		spinner.StopWithError("Map failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		suffix:    "_" + result.Map.Year,
	})
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	printSuccess("Map for %s", result.Map.Year)
	printStats(result.Stats, result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	reportUnknown(c, result.Map.Unknown)
	return nil
}

// reportUnknown warns about regions that resolved to no data and logs their
// names at debug level.
func reportUnknown(c *CLI, unknown []string) {
	if len(unknown) == 0 {
		return
	}
	printWarning("%d regions have no data; add [aliases] entries if names differ", len(unknown))
	c.Logger.Debug("regions without data", "names", unknown)
}
