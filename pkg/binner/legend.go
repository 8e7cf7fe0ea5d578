package binner

import (
	"math"
	"strconv"
)

// LegendTitle is the caption drawn under the map legend.
const LegendTitle = "Number of Refugees"

// LegendEntry is one swatch. Min and Max bound the values it represents and
// are infinite for the outer threshold buckets. Both are NaN for no data.
type LegendEntry struct {
	Label string  `json:"label"`
	Color Color   `json:"color"`
	Min   float64 `json:"-"`
	Max   float64 `json:"-"`
}

// GradientStop samples a continuous scale at Offset in [0, 1].
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  Color   `json:"color"`
}

// Tick is a labelled position along a continuous legend axis.
type Tick struct {
	Value  float64 `json:"value"`
	Offset float64 `json:"offset"`
	Label  string  `json:"label"`
}

// Legend describes how to draw the key for a scale. Entries always start
// with the no-data swatch. Continuous scales additionally carry a gradient
// and axis ticks.
type Legend struct {
	Title    string         `json:"title"`
	Entries  []LegendEntry  `json:"entries"`
	Gradient []GradientStop `json:"gradient,omitempty"`
	Ticks    []Tick         `json:"ticks,omitempty"`
}

const gradientStops = 100

// NewLegend builds the legend for s.
func NewLegend(s Scale) Legend {
	l := Legend{
		Title:   LegendTitle,
		Entries: []LegendEntry{{Label: "No data", Color: NoData(), Min: math.NaN(), Max: math.NaN()}},
	}
	switch s := s.(type) {
	case *Threshold:
		for _, r := range s.Buckets() {
			l.Entries = append(l.Entries, LegendEntry{
				Label: rangeLabel(r.Min, r.Max),
				Color: ColorOf(r.Color),
				Min:   r.Min,
				Max:   r.Max,
			})
		}
	case *Continuous:
		for i := 0; i <= gradientStops; i++ {
			x := float64(i) / gradientStops
			l.Gradient = append(l.Gradient, GradientStop{Offset: x, Color: ColorOf(s.Palette.Map(x))})
		}
		for _, v := range legendTicks(s) {
			l.Ticks = append(l.Ticks, Tick{Value: v, Offset: s.Unit(v), Label: FormatCount(v)})
		}
		l.Entries = append(l.Entries,
			LegendEntry{Label: FormatCount(s.Lo), Color: ColorOf(s.Map(s.Lo)), Min: s.Lo, Max: s.Lo},
			LegendEntry{Label: FormatCount(s.Hi), Color: ColorOf(s.Map(s.Hi)), Min: s.Hi, Max: s.Hi},
		)
	}
	return l
}

func legendTicks(s *Continuous) []float64 {
	var ticks []float64
	for _, v := range DefaultBreakpoints {
		if v >= s.Lo && v <= s.Hi {
			ticks = append(ticks, v)
		}
	}
	if len(ticks) < 2 {
		ticks = []float64{s.Lo, (s.Lo + s.Hi) / 2, s.Hi}
	}
	return ticks
}

func rangeLabel(lo, hi float64) string {
	switch {
	case math.IsInf(lo, -1):
		return "< " + FormatCount(hi)
	case math.IsInf(hi, 1):
		return FormatCount(lo) + "+"
	default:
		return FormatCount(lo) + "-" + FormatCount(hi)
	}
}

// FormatCount abbreviates counts of a thousand or more with K and M.
func FormatCount(v float64) string {
	switch {
	case math.Abs(v) >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', -1, 64) + "M"
	case math.Abs(v) >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', -1, 64) + "K"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
