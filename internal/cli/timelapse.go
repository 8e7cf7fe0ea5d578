package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flowatlas/flowatlas/pkg/dataset"
	"github.com/flowatlas/flowatlas/pkg/geo"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
	"github.com/flowatlas/flowatlas/pkg/timelapse"
)

// timelapseCommand creates the timelapse command, which exports one map per
// year or plays the years in the terminal.
func (c *CLI) timelapseCommand() *cobra.Command {
	var (
		formatsStr string
		outDir     string
		schema     string
		noCache    bool
		tui        bool
		loop       bool
		interval   time.Duration
		maps       mapFlags
	)

	cmd := &cobra.Command{
		Use:   "timelapse [data.csv]",
		Short: "Replay the choropleth map year by year",
		Long: `Replay the choropleth map year by year.

With --out-dir every year between --min-year and --max-year is rendered to
<out-dir>/<name>_<year>.<format>. With --tui the years play in the terminal:
each frame lists the regions with the most refugees, coloured like the map.

Player keys: space play/pause, ←/→ previous/next year, home/end first/last
year, r rewind, q quit.

The player needs no geometry: without --geo the dataset's own country names
are binned.`,
		Example: `  flowatlas timelapse refugee.csv --geo world.geojson --out-dir frames
  flowatlas timelapse refugee.csv --tui --loop --interval 1.5s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !tui && outDir == "" {
				return fmt.Errorf("choose an output: --out-dir or --tui")
			}
			opts := c.baseOptions()
			if err := maps.apply(cmd, &opts); err != nil {
				return err
			}
			if cmd.Flags().Changed("interval") {
				opts.Interval = interval
			}
			if cmd.Flags().Changed("loop") {
				opts.Mode = timelapse.OneShot.String()
				if loop {
					opts.Mode = timelapse.Loop.String()
				}
			}
			opts.Formats = parseFormats(formatsStr, pipeline.FormatSVG)
			if err := pipeline.ValidateFormats(opts.Formats, pipeline.MapFormats); err != nil {
				return err
			}
			if tui {
				return c.runPlayer(cmd.Context(), args[0], schema, maps.geo, opts, noCache)
			}
			return c.runExport(cmd.Context(), args[0], schema, maps.geo, opts, outDir, noCache)
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for one file per year and format")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "frame format(s): svg (default), json, png (comma-separated)")
	cmd.Flags().StringVar(&schema, "schema", "", "column preset: owid (default), unhcr, applications")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&tui, "tui", false, "play the timelapse in the terminal")
	cmd.Flags().BoolVar(&loop, "loop", false, "restart from the first year after the last")
	cmd.Flags().DurationVar(&interval, "interval", timelapse.DefaultInterval, "time between frames")
	maps.register(cmd)

	return cmd
}

// timelapseInputs is what both timelapse modes load.
type timelapseInputs struct {
	runner  *pipeline.Runner
	ds      *dataset.Dataset
	regions []geo.Region
	names   []string
}

func (c *CLI) loadTimelapse(ctx context.Context, input, schemaName, geoSrc string, noCache, needGeo bool) (*timelapseInputs, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	s, err := c.schemaFor(schemaName, defaultMapSchema)
	if err != nil {
		runner.Close()
		return nil, err
	}
	ds, err := c.loadDataset(ctx, input, s, runner.Cache)
	if err != nil {
		runner.Close()
		return nil, err
	}

	in := &timelapseInputs{runner: runner, ds: ds}
	if !needGeo && geoSrc == "" && c.Config.Map.Geo == "" {
		in.names = ds.Options(dataset.FieldOrigin)
		return in, nil
	}
	in.regions, err = c.loadRegions(ctx, geoSrc, runner.Cache)
	if err != nil {
		runner.Close()
		return nil, err
	}
	in.names = geo.Names(in.regions)
	return in, nil
}

// runExport renders every year in order and writes one file per year and
// format.
func (c *CLI) runExport(ctx context.Context, input, schemaName, geoSrc string, opts pipeline.Options, outDir string, noCache bool) error {
	in, err := c.loadTimelapse(ctx, input, schemaName, geoSrc, noCache, true)
	if err != nil {
		return err
	}
	defer in.runner.Close()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering frames...")
	var (
		paths   []string
		unknown int
		emitErr error
	)
	emit := pipeline.EmitterFunc(func(ctx context.Context, cmd pipeline.RenderCommand) error {
		m, ok := cmd.(pipeline.MapCommand)
		if !ok {
			return nil
		}
		spinner.Advance("Rendering %s...", m.Year)
		artifacts, _, err := in.runner.RenderMap(ctx, m, in.regions, opts)
		if err != nil {
			return err
		}
		written, err := writeArtifacts(artifactWriteParams{
			artifacts: artifacts,
			formats:   opts.Formats,
			input:     input,
			output:    outDir,
			suffix:    "_" + m.Year,
		})
		paths = append(paths, written...)
		unknown = max(unknown, len(m.Unknown))
		return err
	})

	opts.Mode = timelapse.OneShot.String()
	ctrl, err := pipeline.NewController(in.runner, in.ds, in.names, opts, emit)
	if err != nil {
		return err
	}
	years := ctrl.State().Years
	if len(years) == 0 {
		return fmt.Errorf("no years between %s and %s", opts.MinYear, opts.MaxYear)
	}

	spinner.SetTotal(len(years))
	spinner.Start()
	for _, year := range years {
		if ctx.Err() != nil {
			emitErr = ctx.Err()
			break
		}
		if emitErr = ctrl.ShowYear(ctx, year); emitErr != nil {
			break
		}
	}
	if emitErr != nil {
		spinner.StopWithError("Timelapse failed")
		return emitErr
	}
	spinner.Stop()

	printSuccess("Timelapse %s to %s (%d frames)", years[0], years[len(years)-1], len(years))
	printDetail("Directory: %s", outDir)
	if len(paths) <= 6 {
		for _, p := range paths {
			printFile(p)
		}
	}
	if unknown > 0 {
		printWarning("Up to %d regions per year have no data", unknown)
	}
	return nil
}

// runPlayer plays the timelapse in a bubbletea program. The sequencer's
// redraws reach the program as messages.
func (c *CLI) runPlayer(ctx context.Context, input, schemaName, geoSrc string, opts pipeline.Options, noCache bool) error {
	in, err := c.loadTimelapse(ctx, input, schemaName, geoSrc, noCache, false)
	if err != nil {
		return err
	}
	defer in.runner.Close()

	var (
		prog *tea.Program
		ctrl *pipeline.Controller
	)
	emit := pipeline.EmitterFunc(func(ctx context.Context, cmd pipeline.RenderCommand) error {
		if m, ok := cmd.(pipeline.MapCommand); ok {
			prog.Send(frameMsg{cmd: m})
		}
		return nil
	})
	ctrl, err = pipeline.NewController(in.runner, in.ds, in.names, opts, emit)
	if err != nil {
		return err
	}
	seq := ctrl.Timelapse(opts.TimelapseMode())
	if len(seq.Years()) == 0 {
		return fmt.Errorf("no years between %s and %s", opts.MinYear, opts.MaxYear)
	}
	defer seq.Stop()

	// Logging would scribble over the alternate screen.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(c.logOut)

	prog = tea.NewProgram(newPlayerModel(ctx, seq, ctrl.Legend()), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = prog.Run()
	return err
}
