package geo

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

// NameProperties lists the feature properties consulted for a region name,
// in order.
var NameProperties = []string{"name", "NAME", "ADMIN", "name_long"}

// Region is one named country outline.
type Region struct {
	Name     string
	Geometry orb.Geometry
}

// Centroid returns the area-weighted centre of the region.
func (r Region) Centroid() orb.Point {
	c, _ := planar.CentroidArea(r.Geometry)
	return c
}

// Bound returns the region's bounding box in lon/lat.
func (r Region) Bound() orb.Bound {
	return r.Geometry.Bound()
}

// Fetcher retrieves remote geometry. *httputil.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Parse decodes a GeoJSON FeatureCollection or a TopoJSON topology (such as
// the world-atlas countries file) into regions sorted by name.
func Parse(data []byte) ([]Region, error) {
	var (
		fc  *geojson.FeatureCollection
		err error
	)
	if isTopology(data) {
		fc, err = parseTopology(data)
		if err != nil {
			return nil, err
		}
	} else {
		fc, err = geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode geojson")
		}
	}

	var regions []Region
	for _, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		name := featureName(f)
		if name == "" {
			continue
		}
		regions = append(regions, Region{Name: name, Geometry: f.Geometry})
	}
	if len(regions) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "geometry has no named polygon features")
	}
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Name < regions[j].Name })
	return regions, nil
}

func featureName(f *geojson.Feature) string {
	for _, key := range NameProperties {
		if s := strings.TrimSpace(f.Properties.MustString(key, "")); s != "" {
			return s
		}
	}
	return ""
}

// Load reads regions from a local path or an http(s) URL.
func Load(ctx context.Context, src string, fetch Fetcher) ([]Region, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if fetch == nil {
			return nil, errors.New(errors.ErrCodeUnsupported, "remote geometry needs a fetcher: %s", src)
		}
		data, err = fetch.Fetch(ctx, src)
	} else {
		data, err = os.ReadFile(src)
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "geometry %s", src)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("read geometry %s: %w", src, err)
	}
	return Parse(data)
}

// Names returns the region names in order.
func Names(regions []Region) []string {
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.Name
	}
	return names
}
