// Package pipeline connects datasets to rendered Sankey diagrams and maps.
//
// There are two pipelines sharing one set of [Options]:
//
//  1. Flow: filter records -> build the flow graph -> render (html, json, dot, svg, png)
//  2. Map: slice one year -> bin every region -> render (svg, json, png)
//
// [Runner] executes them with caching, so an unchanged dataset with unchanged
// options is served from the cache. [Controller] holds the interactive state
// of a session (selected filters, selected year, timelapse) and turns every
// user action into a [RenderCommand] for an [Emitter].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Year: "2020", Formats: []string{"html", "json"}}
//	result, err := runner.ExecuteFlow(ctx, ds, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page := result.Artifacts["html"]
//
// Drive a map session:
//
//	ctrl, err := pipeline.NewController(runner, ds, geo.Names(regions), opts, emitter)
//	err = ctrl.ShowYear(ctx, "2016")
//	seq := ctrl.Timelapse(timelapse.OneShot)
//	seq.Start(ctx)
package pipeline

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowatlas/flowatlas/pkg/binner"
	"github.com/flowatlas/flowatlas/pkg/cache"
	"github.com/flowatlas/flowatlas/pkg/errors"
	"github.com/flowatlas/flowatlas/pkg/flow"
	"github.com/flowatlas/flowatlas/pkg/geo"
	"github.com/flowatlas/flowatlas/pkg/timelapse"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and server
// =============================================================================

const (
	// DefaultMinYear and DefaultMaxYear bound the map's year list.
	DefaultMinYear = "2014"
	DefaultMaxYear = "2024"

	// DefaultScale is the map colour scale.
	DefaultScale = ScaleThreshold

	// DefaultDomainMax is the upper end of a continuous scale's domain.
	DefaultDomainMax = 1e6

	// DefaultLogDomainMin is the lower end of a log scale's domain.
	DefaultLogDomainMin = 1e3

	// DefaultWidth and DefaultHeight size the map canvas and the PNG viewport.
	DefaultWidth  = geo.DefaultWidth
	DefaultHeight = geo.DefaultHeight
)

// Scale names.
const (
	ScaleThreshold = "threshold"
	ScaleLinear    = "linear"
	ScaleLog       = "log"
)

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// FlowFormats are the formats a flow graph renders to.
var FlowFormats = map[string]bool{
	FormatHTML: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// MapFormats are the formats a map frame renders to.
var MapFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatPNG:  true,
}

// ValidScales is the set of supported map scales.
var ValidScales = map[string]bool{
	ScaleThreshold: true,
	ScaleLinear:    true,
	ScaleLog:       true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for both pipelines.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Flow options
	Year           string  `json:"year,omitempty"`
	Origin         string  `json:"origin,omitempty"`
	Asylum         string  `json:"asylum,omitempty"`
	MinValue       *float64 `json:"min_value,omitempty"`
	DisablePruning bool     `json:"disable_pruning,omitempty"`

	// Map options
	Scale       string            `json:"scale,omitempty"`
	DomainMin   float64           `json:"domain_min,omitempty"`
	DomainMax   float64           `json:"domain_max,omitempty"`
	Breakpoints []float64         `json:"breakpoints,omitempty"`
	Palette     string            `json:"palette,omitempty"`
	MinYear     string            `json:"min_year,omitempty"`
	MaxYear     string            `json:"max_year,omitempty"`
	Aliases     map[string]string `json:"aliases,omitempty"` // merged over the default alias table

	// Timelapse options
	Interval time.Duration `json:"interval,omitempty"`
	Mode     string        `json:"mode,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Title   string   `json:"title,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the flow graph (flow pipeline only).
	Graph *flow.Graph

	// Map is the binned year (map pipeline only).
	Map *MapCommand

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records    int
	NodeCount  int
	LinkCount  int
	Regions    int
	Unknown    int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the graph came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks every format against the allowed set.
func ValidateFormats(formats []string, allowed map[string]bool) error {
	for _, f := range formats {
		if !allowed[f] {
			return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", f, strings.Join(slices.Sorted(maps.Keys(allowed)), ", "))
		}
	}
	return nil
}

// ValidateScale checks that a scale name is valid.
func ValidateScale(name string) error {
	if !ValidScales[name] {
		return errors.New(errors.ErrCodeInvalidScale, "invalid scale: %q (must be one of: threshold, linear, log)", name)
	}
	return nil
}

// ValidateYear checks that y is empty or a four-digit year.
func ValidateYear(y string) error {
	if y == "" {
		return nil
	}
	if n, err := strconv.Atoi(y); err != nil || n < 1000 || n > 9999 {
		return errors.New(errors.ErrCodeInvalidYear, "invalid year: %q", y)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for both
// pipelines. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.validateCommon(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats, mergeFormats()); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFlow validates and sets defaults for the flow pipeline.
func (o *Options) ValidateForFlow() error {
	if err := o.validateCommon(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	return ValidateFormats(o.Formats, FlowFormats)
}

// ValidateForMap validates and sets defaults for the map pipeline.
func (o *Options) ValidateForMap() error {
	if err := o.validateCommon(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	return ValidateFormats(o.Formats, MapFormats)
}

func (o *Options) validateCommon() error {
	if o.MinValue == nil {
		o.MinValue = flow.Threshold(flow.DefaultMinValue)
	}
	if *o.MinValue < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "min_value must not be negative: %g", *o.MinValue)
	}

	if o.Scale == "" {
		o.Scale = DefaultScale
	}
	o.Scale = strings.ToLower(o.Scale)
	if err := ValidateScale(o.Scale); err != nil {
		return err
	}

	if o.MinYear == "" {
		o.MinYear = DefaultMinYear
	}
	if o.MaxYear == "" {
		o.MaxYear = DefaultMaxYear
	}
	years := []string{o.MinYear, o.MaxYear}
	if !flow.IsAll(o.Year) {
		years = append(years, o.Year)
	}
	for _, y := range years {
		if err := ValidateYear(y); err != nil {
			return err
		}
	}
	if o.MinYear > o.MaxYear {
		return errors.New(errors.ErrCodeInvalidYear, "min_year %s is after max_year %s", o.MinYear, o.MaxYear)
	}

	if o.Interval <= 0 {
		o.Interval = timelapse.DefaultInterval
	}
	if o.Mode == "" {
		o.Mode = timelapse.OneShot.String()
	}
	if _, err := timelapse.ParseMode(o.Mode); err != nil {
		return err
	}

	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

func mergeFormats() map[string]bool {
	all := maps.Clone(FlowFormats)
	maps.Copy(all, MapFormats)
	return all
}

// Filters returns the flow filters selected by the options.
func (o *Options) Filters() flow.Filters {
	return flow.Filters{Year: o.Year, Origin: o.Origin, Asylum: o.Asylum}
}

// FlowOptions returns the graph construction options.
func (o *Options) FlowOptions() flow.Options {
	return flow.Options{MinValue: o.MinValue, DisablePruning: o.DisablePruning}
}

// TimelapseMode returns the parsed sequencer mode.
func (o *Options) TimelapseMode() timelapse.Mode {
	m, _ := timelapse.ParseMode(o.Mode)
	return m
}

// BuildScale constructs the map colour scale.
func (o *Options) BuildScale() (binner.Scale, error) {
	switch o.Scale {
	case ScaleThreshold, "":
		if len(o.Breakpoints) == 0 && o.Palette == "" {
			return binner.DefaultThreshold(), nil
		}
		bps := o.Breakpoints
		if len(bps) == 0 {
			bps = binner.DefaultBreakpoints
		}
		name := o.Palette
		if name == "" {
			name = "YlOrRd"
		}
		colors, err := binner.DiscretePalette(name, len(bps)+1)
		if err != nil {
			return nil, err
		}
		return binner.NewThreshold(bps, colors)
	case ScaleLinear, ScaleLog:
		p, err := binner.ContinuousPalette(o.Palette)
		if err != nil {
			return nil, err
		}
		lo, hi := o.DomainMin, o.DomainMax
		if hi == 0 {
			hi = DefaultDomainMax
		}
		if o.Scale == ScaleLog && lo == 0 {
			lo = DefaultLogDomainMin
		}
		return binner.NewContinuous(lo, hi, binner.Interpolation(o.Scale), p)
	}
	return nil, ValidateScale(o.Scale)
}

// Binner constructs the map binner from the scale and alias options.
func (o *Options) Binner() (*binner.Binner, error) {
	s, err := o.BuildScale()
	if err != nil {
		return nil, err
	}
	return binner.New(s, binner.DefaultAliases().Merge(o.Aliases)), nil
}

// GraphKeyOpts returns cache key options for graph construction.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	f := o.Filters().Normalize()
	return cache.GraphKeyOpts{
		Year:           f.Year,
		Origin:         f.Origin,
		Asylum:         f.Asylum,
		MinValue:       o.FlowOptions().Threshold(),
		DisablePruning: o.DisablePruning,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering. Flow
// artifacts embed the selection, so it is part of their key.
func (o *Options) ArtifactKeyOpts(kind, format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Kind:   kind,
		Format: format,
		Width:  o.Width,
		Height: o.Height,
		Title:  o.Title,
	}
	if kind == "flow" {
		k.Filters = o.String()
	}
	return k
}

// String summarises the flow selection for log lines.
func (o *Options) String() string {
	f := o.Filters().Normalize()
	return fmt.Sprintf("year=%s origin=%s asylum=%s", f.Year, f.Origin, f.Asylum)
}
