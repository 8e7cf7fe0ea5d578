package cli

import (
	"context"
	"fmt"

	"github.com/flowatlas/flowatlas/pkg/cache"
	"github.com/flowatlas/flowatlas/pkg/dataset"
	"github.com/flowatlas/flowatlas/pkg/geo"
	"github.com/flowatlas/flowatlas/pkg/httputil"
)

// schemaFor resolves the schema from the --schema flag, then the config
// file, then the command's default preset.
func (c *CLI) schemaFor(flag, fallback string) (dataset.Schema, error) {
	if flag != "" {
		return dataset.Preset(flag)
	}
	return c.Config.SchemaFor(fallback)
}

// loadDataset reads a CSV from a path or URL. Remote files go through the
// cache.
func (c *CLI) loadDataset(ctx context.Context, src string, s dataset.Schema, cc cache.Cache) (*dataset.Dataset, error) {
	prog := newProgress(loggerFromContext(ctx))
	ds, err := dataset.Open(ctx, src, s, httputil.NewClient(cc, c.Logger))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src, err)
	}
	prog.done("loaded dataset", "source", src, "records", ds.Len())
	return ds, nil
}

// loadRegions reads map geometry from the --geo flag or the config file.
func (c *CLI) loadRegions(ctx context.Context, src string, cc cache.Cache) ([]geo.Region, error) {
	if src == "" {
		src = c.Config.Map.Geo
	}
	if src == "" {
		return nil, fmt.Errorf("map geometry required: pass --geo or set [map] geo in the config file")
	}
	prog := newProgress(loggerFromContext(ctx))
	regions, err := geo.Load(ctx, src, httputil.NewClient(cc, c.Logger))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src, err)
	}
	prog.done("loaded regions", "source", src, "regions", len(regions))
	return regions, nil
}
