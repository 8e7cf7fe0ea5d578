// Package choropleth renders a year of region fills as an SVG world map.
//
// The document has two parts: the projected country outlines, each filled
// with its binned colour and carrying a <title> tooltip, and a legend strip
// below the map. Continuous scales get a gradient bar with K/M ticks;
// threshold scales get one swatch per bucket. Both start with the grey
// "No data" swatch.
//
//	err := choropleth.Render(w, regions, fills, legend,
//	    choropleth.WithTitle("2020"),
//	    choropleth.WithTooltips(tips),
//	)
package choropleth
