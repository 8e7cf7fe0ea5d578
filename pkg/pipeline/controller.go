package pipeline

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/flowatlas/flowatlas/pkg/binner"
	"github.com/flowatlas/flowatlas/pkg/dataset"
	"github.com/flowatlas/flowatlas/pkg/errors"
	"github.com/flowatlas/flowatlas/pkg/flow"
	fio "github.com/flowatlas/flowatlas/pkg/io"
	"github.com/flowatlas/flowatlas/pkg/observability"
	"github.com/flowatlas/flowatlas/pkg/timelapse"
)

// RenderCommand is a complete description of one frame to draw.
type RenderCommand interface {
	// Kind is "flow" or "map".
	Kind() string
}

// FlowCommand draws a Sankey diagram.
type FlowCommand struct {
	Graph   *flow.Graph
	Filters flow.Filters
}

// MapCommand draws one year of the choropleth map. Values holds the resolved
// count of every region with data; Unknown lists the rest.
type MapCommand struct {
	Year     string
	Fills    map[string]binner.Color
	Tooltips map[string]string
	Values   map[string]float64
	Legend   binner.Legend
	Unknown  []string
}

func (FlowCommand) Kind() string { return "flow" }
func (MapCommand) Kind() string  { return "map" }

// Frame converts the command to its serialised form.
func (c MapCommand) Frame() fio.Frame {
	return fio.Frame{Year: c.Year, Fills: c.Fills, Tooltips: c.Tooltips, Legend: c.Legend, Unknown: c.Unknown}
}

// Emitter receives render commands. Emit is called synchronously from the
// goroutine that changed the state.
type Emitter interface {
	Emit(ctx context.Context, cmd RenderCommand) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, cmd RenderCommand) error

func (f EmitterFunc) Emit(ctx context.Context, cmd RenderCommand) error { return f(ctx, cmd) }

// State is the interactive state of a session.
type State struct {
	Dataset   *dataset.Dataset
	Filters   flow.Filters
	Years     []string
	YearIndex int // -1 until a year is shown
	Slice     binner.YearSlice
}

// Year returns the selected year, or "" before the first ShowYear.
func (s State) Year() string {
	if s.YearIndex < 0 || s.YearIndex >= len(s.Years) {
		return ""
	}
	return s.Years[s.YearIndex]
}

// Controller owns a State and turns selections into render commands.
type Controller struct {
	runner  *Runner
	opts    Options
	regions []string
	binner  *binner.Binner
	legend  binner.Legend
	emit    Emitter

	mu    sync.Mutex
	state State
}

// NewController validates opts and prepares a session over ds. regions are
// the names of the map's regions; they may be empty for a flow-only session.
// A nil runner builds graphs without caching.
func NewController(runner *Runner, ds *dataset.Dataset, regions []string, opts Options, emit Emitter) (*Controller, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if runner == nil {
		runner = NewRunner(nil, nil, opts.Logger)
	}
	b, err := opts.Binner()
	if err != nil {
		return nil, err
	}
	if emit == nil {
		emit = EmitterFunc(func(context.Context, RenderCommand) error { return nil })
	}
	return &Controller{
		runner:  runner,
		opts:    opts,
		regions: slices.Clone(regions),
		binner:  b,
		legend:  binner.NewLegend(b.Scale),
		emit:    emit,
		state: State{
			Dataset:   ds,
			Filters:   opts.Filters(),
			Years:     ds.Years(opts.MinYear, opts.MaxYear),
			YearIndex: -1,
		},
	}, nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Years = slices.Clone(s.Years)
	return s
}

// Legend returns the map legend for the configured scale.
func (c *Controller) Legend() binner.Legend { return c.legend }

// Flow selects filters, builds the graph and emits a FlowCommand.
func (c *Controller) Flow(ctx context.Context, f flow.Filters) (*flow.Graph, error) {
	c.mu.Lock()
	c.state.Filters = f
	ds := c.state.Dataset
	c.mu.Unlock()

	opts := c.opts
	opts.Year, opts.Origin, opts.Asylum = f.Year, f.Origin, f.Asylum
	g, _, err := c.runner.BuildGraph(ctx, ds, opts)
	if err != nil {
		return nil, err
	}
	if err := c.emit.Emit(ctx, FlowCommand{Graph: g, Filters: f}); err != nil {
		return nil, err
	}
	return g, nil
}

// ShowYear rebuilds the year slice, bins every region and emits a
// MapCommand. The year must be one of State.Years.
func (c *Controller) ShowYear(ctx context.Context, year string) error {
	c.mu.Lock()
	i := slices.Index(c.state.Years, year)
	if i < 0 {
		c.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidYear, "year %q is not in the dataset (%d years between %s and %s)", year, len(c.state.Years), c.opts.MinYear, c.opts.MaxYear)
	}
	cmd, slice := BinYear(ctx, c.state.Dataset, c.regions, year, c.binner, c.legend)
	c.state.YearIndex = i
	c.state.Slice = slice
	c.mu.Unlock()

	c.opts.Logger.Debug("binned year", "year", year, "regions", len(c.regions), "unknown", len(cmd.Unknown))
	return c.emit.Emit(ctx, cmd)
}

// Timelapse returns a sequencer over State.Years whose redraw is ShowYear.
// Redraw errors are logged.
func (c *Controller) Timelapse(mode timelapse.Mode) *timelapse.Sequencer {
	years := c.State().Years
	return timelapse.New(years, mode, c.opts.Interval, func(year string) {
		ctx := context.Background()
		observability.Timelapse().OnTick(ctx, year, slices.Index(years, year))
		if err := c.ShowYear(ctx, year); err != nil {
			c.opts.Logger.Error("timelapse redraw failed", "year", year, "error", err)
		}
	})
}

// BinYear slices ds for year and colours every region. It also returns the
// slice it built.
func BinYear(ctx context.Context, ds *dataset.Dataset, regions []string, year string, b *binner.Binner, legend binner.Legend) (MapCommand, binner.YearSlice) {
	start := time.Now()
	slice := binner.Slice(ds.Records, year)
	fills, unknown := b.Fills(regions, slice)
	tips := make(map[string]string, len(fills))
	values := make(map[string]float64, len(fills))
	for name := range fills {
		tips[name] = b.Tooltip(name, slice)
		if v, ok := b.Value(name, slice); ok {
			values[name] = v
		}
	}
	if unknown == nil {
		unknown = []string{}
	}
	observability.Pipeline().OnBinComplete(ctx, year, len(fills), len(unknown), time.Since(start))
	return MapCommand{Year: year, Fills: fills, Tooltips: tips, Values: values, Legend: legend, Unknown: unknown}, slice
}
