package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowatlas/flowatlas/pkg/errors"
	"github.com/flowatlas/flowatlas/pkg/flow"
	fio "github.com/flowatlas/flowatlas/pkg/io"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
)

// flowFlags are the flags shared by commands that build flow graphs.
type flowFlags struct {
	year, origin, asylum string
	minValue             float64
	noPrune              bool
}

func (f *flowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.year, "year", "", "year to show (default: all)")
	cmd.Flags().StringVar(&f.origin, "origin", "", "country of origin (default: all)")
	cmd.Flags().StringVar(&f.asylum, "asylum", "", "country of asylum (default: all)")
	cmd.Flags().Float64Var(&f.minValue, "min-value", flow.DefaultMinValue, "flows must exceed this value in the unfiltered view")
	cmd.Flags().BoolVar(&f.noPrune, "no-prune", false, "keep small links in the unfiltered view")
}

func (f *flowFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	opts.Year, opts.Origin, opts.Asylum = f.year, f.origin, f.asylum
	if cmd.Flags().Changed("min-value") {
		opts.MinValue = flow.Threshold(f.minValue)
	}
	if cmd.Flags().Changed("no-prune") {
		opts.DisablePruning = f.noPrune
	}
}

// sankeyCommand creates the sankey command for rendering flow diagrams.
func (c *CLI) sankeyCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		schema     string
		title      string
		noCache    bool
		refresh    bool
		flows      flowFlags
	)

	cmd := &cobra.Command{
		Use:   "sankey [data.csv|graph.json]",
		Short: "Render a Sankey diagram of refugee flows",
		Long: `Render a Sankey diagram of refugee flows from countries of origin to
countries of asylum.

The dataset is a CSV file or URL. Rows with a value of exactly zero are
dropped. Without filters the diagram shows every flow above --min-value; with
a year, origin or asylum filter every matching flow is kept.

Formats: html (interactive page, default), json (graph), dot (Graphviz
source), svg (Graphviz layout), png (screenshot of the html page, needs
Chrome).

A graph exported with -f json may be given instead of a CSV; it is
re-rendered with the filters stored in it.

Results are cached locally for faster subsequent runs.`,
		Example: `  flowatlas sankey refugees.csv
  flowatlas sankey refugees.csv --year 2016 --origin Syria -f html,json
  flowatlas sankey refugees.csv -f dot -o - | dot -Tpdf > flows.pdf
  flowatlas sankey refugees.json -f svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			flows.apply(cmd, &opts)
			opts.Title = title
			opts.Refresh = refresh
			opts.Formats = parseFormats(formatsStr, pipeline.FormatHTML)
			if err := pipeline.ValidateFormats(opts.Formats, pipeline.FlowFormats); err != nil {
				return err
			}
			return c.runSankey(cmd.Context(), args[0], schema, opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): html (default), json, dot, svg, png (comma-separated)")
	cmd.Flags().StringVar(&schema, "schema", "", "column preset: unhcr (default), owid, applications")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rebuild even when cached")

	// Flow flags
	flows.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "chart title")

	return cmd
}

// runSankey loads the dataset, builds the graph and writes every format.
func (c *CLI) runSankey(ctx context.Context, input, schemaName string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var result *pipeline.Result
	if strings.EqualFold(filepath.Ext(input), ".json") {
		result, err = c.renderGraphFile(ctx, runner, input, &opts)
	} else {
		result, err = c.buildFlow(ctx, runner, input, schemaName, opts)
	}
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
	})
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	printSuccess("Flow diagram (%s)", opts.String())
	printStats(result.Stats, result.CacheInfo.BuildHit && result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
		if strings.HasSuffix(p, "."+pipeline.FormatDOT) {
			printNextStep("Render with Graphviz", "dot -Tpdf "+p+" -o "+strings.TrimSuffix(p, ".dot")+".pdf")
		}
	}
	if result.Graph.LinkCount() == 0 {
		printWarning("No flows match these filters")
	}
	return nil
}

// buildFlow loads a CSV and runs the full flow pipeline.
func (c *CLI) buildFlow(ctx context.Context, runner *pipeline.Runner, input, schemaName string, opts pipeline.Options) (*pipeline.Result, error) {
	s, err := c.schemaFor(schemaName, defaultFlowSchema)
	if err != nil {
		return nil, err
	}
	if !s.HasAsylum() {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "sankey needs a schema with an asylum column")
	}
	ds, err := c.loadDataset(ctx, input, s, runner.Cache)
	if err != nil {
		return nil, err
	}
	ds = ds.DropZero()

	spinner := newSpinnerWithContext(ctx, "Building flow graph...")
	spinner.Start()
	result, err := runner.ExecuteFlow(ctx, ds, opts)
	if err != nil {
		spinner.StopWithError("Flow diagram failed")
		return nil, err
	}
	spinner.Stop()
	return result, nil
}

// renderGraphFile re-renders a graph exported with -f json. The filters
// stored in the file replace those in opts.
func (c *CLI) renderGraphFile(ctx context.Context, runner *pipeline.Runner, input string, opts *pipeline.Options) (*pipeline.Result, error) {
	g, f, err := fio.ImportGraph(input)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", input, err)
	}
	if f != nil {
		opts.Year, opts.Origin, opts.Asylum = f.Year, f.Origin, f.Asylum
	}
	c.Logger.Debug("imported graph", "path", input, "nodes", g.NodeCount(), "links", g.LinkCount())

	spinner := newSpinnerWithContext(ctx, "Rendering flow graph...")
	spinner.Start()
	artifacts, hit, err := runner.RenderFlow(ctx, g, *opts)
	if err != nil {
		spinner.StopWithError("Flow diagram failed")
		return nil, err
	}
	spinner.Stop()
	return &pipeline.Result{
		Graph:     g,
		Artifacts: artifacts,
		Stats:     pipeline.Stats{NodeCount: g.NodeCount(), LinkCount: g.LinkCount()},
		CacheInfo: pipeline.CacheInfo{BuildHit: true, RenderHit: hit},
	}, nil
}
