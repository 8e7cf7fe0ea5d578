package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowatlas/flowatlas/pkg/binner"
	"github.com/flowatlas/flowatlas/pkg/cache"
	"github.com/flowatlas/flowatlas/pkg/dataset"
	"github.com/flowatlas/flowatlas/pkg/errors"
	"github.com/flowatlas/flowatlas/pkg/flow"
	"github.com/flowatlas/flowatlas/pkg/geo"
	fio "github.com/flowatlas/flowatlas/pkg/io"
	"github.com/flowatlas/flowatlas/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ExecuteFlow runs the complete filter -> build -> render flow pipeline.
func (r *Runner) ExecuteFlow(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	if err := opts.ValidateForFlow(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{Stats: Stats{Records: ds.Len()}}

	// Stage 1: Build
	buildStart := time.Now()
	g, hit, err := r.BuildGraph(ctx, ds, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.LinkCount = g.LinkCount()
	result.CacheInfo.BuildHit = hit

	r.Logger.Info("built flow graph",
		"filters", opts.String(),
		"nodes", g.NodeCount(),
		"links", g.LinkCount(),
		"cached", hit,
		"duration", result.Stats.BuildTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderFlow(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered flow", "formats", opts.Formats, "cached", hit, "duration", result.Stats.RenderTime)
	return result, nil
}

// ExecuteMap bins one year and renders the map. An empty or "all" Year
// selects the latest year within the bounds.
func (r *Runner) ExecuteMap(ctx context.Context, ds *dataset.Dataset, regions []geo.Region, opts Options) (*Result, error) {
	if err := opts.ValidateForMap(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	b, err := opts.Binner()
	if err != nil {
		return nil, err
	}

	years := ds.Years(opts.MinYear, opts.MaxYear)
	year := opts.Year
	if flow.IsAll(year) {
		if len(years) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidYear, "no years between %s and %s", opts.MinYear, opts.MaxYear)
		}
		year = years[len(years)-1]
	} else if !slices.Contains(years, year) {
		return nil, errors.New(errors.ErrCodeInvalidYear, "year %q is not in the dataset between %s and %s", year, opts.MinYear, opts.MaxYear)
	}

	buildStart := time.Now()
	cmd, _ := BinYear(ctx, ds, geo.Names(regions), year, b, binner.NewLegend(b.Scale))
	result := &Result{
		Map: &cmd,
		Stats: Stats{
			Records:   ds.Len(),
			Regions:   len(cmd.Fills),
			Unknown:   len(cmd.Unknown),
			BuildTime: time.Since(buildStart),
		},
	}
	r.Logger.Info("binned map", "year", year, "regions", len(cmd.Fills), "unknown", len(cmd.Unknown))
	r.Logger.Debug("regions without data", "names", cmd.Unknown)

	renderStart := time.Now()
	artifacts, hit, err := r.RenderMap(ctx, cmd, regions, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered map", "formats", opts.Formats, "cached", hit, "duration", result.Stats.RenderTime)
	return result, nil
}

// BuildGraph builds the flow graph with caching and reports whether it came
// from the cache. Datasets without a digest are never cached.
func (r *Runner) BuildGraph(ctx context.Context, ds *dataset.Dataset, opts Options) (*flow.Graph, bool, error) {
	if err := opts.validateCommon(); err != nil {
		return nil, false, err
	}
	f := opts.Filters()

	cacheKey := ""
	if ds.Digest != "" {
		cacheKey = r.Keyer.GraphKey(ds.Digest, opts.GraphKeyOpts())
	}

	// Try cache first (unless refresh requested)
	if cacheKey != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := fio.UnmarshalGraph(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return g, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, f.Year, f.Origin, f.Asylum)
	start := time.Now()
	g := flow.Build(ds.Records, f, opts.FlowOptions())
	hooks.OnBuildComplete(ctx, g.NodeCount(), g.LinkCount(), time.Since(start))

	if cacheKey != "" {
		if data, err := fio.MarshalGraph(g); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph); err != nil {
				r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "graph", len(data))
			}
		}
	}
	return g, false, nil
}

// RenderFlow renders g in every requested format with caching and reports
// whether all artifacts came from the cache.
func (r *Runner) RenderFlow(ctx context.Context, g *flow.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForFlow(); err != nil {
		return nil, false, err
	}
	data, err := fio.MarshalGraph(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	return r.renderCached(ctx, "flow", cache.Hash(data), opts, func() (map[string][]byte, error) {
		return RenderFlow(ctx, g, opts)
	})
}

// RenderMap renders a map frame in every requested format with caching.
func (r *Runner) RenderMap(ctx context.Context, cmd MapCommand, regions []geo.Region, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForMap(); err != nil {
		return nil, false, err
	}
	data, err := fio.MarshalFrame(cmd.Frame())
	if err != nil {
		return nil, false, fmt.Errorf("serialize frame for cache key: %w", err)
	}
	content := cache.Hash(append(data, regionsDigest(regions)...))
	return r.renderCached(ctx, "map", content, opts, func() (map[string][]byte, error) {
		return RenderMap(ctx, cmd, regions, opts)
	})
}

func (r *Runner) renderCached(ctx context.Context, kind, contentHash string, opts Options, render func() (map[string][]byte, error)) (map[string][]byte, bool, error) {
	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(contentHash, opts.ArtifactKeyOpts(kind, format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, kind, opts.Formats)
	start := time.Now()
	rendered, err := render()
	hooks.OnRenderComplete(ctx, kind, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(contentHash, opts.ArtifactKeyOpts(kind, format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func regionsDigest(regions []geo.Region) []byte {
	var buf []byte
	for _, rg := range regions {
		b := rg.Bound()
		buf = fmt.Appendf(buf, "%s|%g,%g,%g,%g\n", rg.Name, b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat())
	}
	return buf
}
