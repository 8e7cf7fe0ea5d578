// Package io provides JSON import and export for flow graphs and map frames.
//
// # Flow graph format
//
//	{
//	  "filters": {"year": "2020", "origin": "all", "asylum": "all"},
//	  "nodes": [
//	    {"name": "Syria", "role": "origin"},
//	    {"name": "Turkey", "role": "asylum"}
//	  ],
//	  "links": [
//	    {"source": 0, "target": 1, "value": 3600000,
//	     "tooltip": "Syria to Turkey : 3600000"}
//	  ]
//	}
//
// Node "label" and link "tooltip" are written for consumers that draw the
// diagram themselves and are ignored on import. [ReadGraph] validates the
// result with [flow.Graph.Validate], so indices out of range or links that
// run from an asylum node are rejected.
//
// # Map frame format
//
// A frame carries the fills for one year, keyed by geometry region name, the
// legend, and the regions that had no data:
//
//	{
//	  "year": "2015",
//	  "fills": {"Syria": "#bd0026", "Narnia": ""},
//	  "legend": {...},
//	  "unknown": ["Narnia"]
//	}
//
// An empty fill string is the no-data colour.
package io
