// Package geo loads country outlines for the choropleth map.
//
// Regions come from a GeoJSON FeatureCollection (decoded with
// [github.com/paulmach/orb/geojson]) or a TopoJSON topology such as the
// world-atlas countries-110m.json file. A topology's arcs are stitched into
// orb polygons; when it has a "countries" object only that object is read.
// Each feature's display name is read from
// the first non-empty property in [NameProperties]; features without a
// polygonal geometry or a name are skipped. The display name is what the
// binner resolves through its alias table, so it should match the map's
// naming (for example "Dem. Rep. Congo"), not the statistics'.
//
// [Projection] is a spherical Mercator tuned like the original web map:
// scale 130 on an 800x500 canvas, centred horizontally and shifted down so
// the southern hemisphere is cropped.
package geo
