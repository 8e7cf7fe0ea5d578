package binner

import (
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/aclements/go-gg/palette"
	"github.com/aclements/go-gg/palette/brewer"
	"github.com/aclements/go-moremath/scale"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

// Scale maps a count to a colour. Bucket returns the discrete class of v,
// used for legends and for grouping regions in rendered output.
type Scale interface {
	Map(v float64) color.Color
	Bucket(v float64) int
}

// Interpolation selects how a Continuous scale spreads its domain.
type Interpolation string

const (
	Linear Interpolation = "linear"
	Log    Interpolation = "log"
)

// DefaultSteps is the number of classes a Continuous scale reports from
// Bucket.
const DefaultSteps = 10

// Continuous interpolates [Lo, Hi] into a continuous palette. Values outside
// the domain take the endpoint colour.
type Continuous struct {
	Lo, Hi  float64
	Interp  Interpolation
	Palette palette.Continuous
	Steps   int

	unit interface{ Map(float64) float64 }
}

// NewContinuous builds a continuous scale. A log scale requires 0 < lo < hi.
func NewContinuous(lo, hi float64, interp Interpolation, p palette.Continuous) (*Continuous, error) {
	if !(lo < hi) {
		return nil, errors.New(errors.ErrCodeInvalidScale, "domain [%g, %g] is empty", lo, hi)
	}
	if p == nil {
		p = Plasma
	}
	c := &Continuous{Lo: lo, Hi: hi, Interp: interp, Palette: p, Steps: DefaultSteps}
	switch interp {
	case Linear, "":
		c.Interp = Linear
		c.unit = scale.Linear{Min: lo, Max: hi, Clamp: true}
	case Log:
		if lo <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidScale, "log domain must be positive, got [%g, %g]", lo, hi)
		}
		s, err := scale.NewLog(lo, hi, 10)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScale, err, "log domain [%g, %g]", lo, hi)
		}
		s.Clamp = true
		c.unit = s
	default:
		return nil, errors.New(errors.ErrCodeInvalidScale, "unknown interpolation %q (must be linear or log)", interp)
	}
	return c, nil
}

// Unit returns the position of v in [0, 1].
func (c *Continuous) Unit(v float64) float64 {
	v = math.Max(c.Lo, math.Min(c.Hi, v))
	x := c.unit.Map(v)
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}

func (c *Continuous) Map(v float64) color.Color {
	return c.Palette.Map(c.Unit(v))
}

func (c *Continuous) Bucket(v float64) int {
	steps := max(c.Steps, 1)
	return min(int(c.Unit(v)*float64(steps)), steps-1)
}

// DefaultBreakpoints are the legend ticks of the refugee map.
var DefaultBreakpoints = []float64{1e3, 5e3, 1e4, 5e4, 1e5, 5e5, 1e6}

// Threshold assigns each value to one of len(Breakpoints)+1 buckets.
type Threshold struct {
	Breakpoints []float64
	Colors      []color.Color
}

// NewThreshold validates that breakpoints strictly ascend and that there is
// exactly one more colour than breakpoints.
func NewThreshold(breakpoints []float64, colors []color.Color) (*Threshold, error) {
	if len(breakpoints) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidScale, "threshold scale needs at least one breakpoint")
	}
	for i := 1; i < len(breakpoints); i++ {
		if !(breakpoints[i-1] < breakpoints[i]) {
			return nil, errors.New(errors.ErrCodeInvalidScale, "breakpoints must ascend: %g then %g", breakpoints[i-1], breakpoints[i])
		}
	}
	if len(colors) != len(breakpoints)+1 {
		return nil, errors.New(errors.ErrCodeInvalidScale, "%d breakpoints need %d colours, got %d", len(breakpoints), len(breakpoints)+1, len(colors))
	}
	return &Threshold{
		Breakpoints: append([]float64(nil), breakpoints...),
		Colors:      append([]color.Color(nil), colors...),
	}, nil
}

// DefaultThreshold returns the 1K..1M threshold scale coloured with YlOrRd.
func DefaultThreshold() *Threshold {
	t, _ := NewThreshold(DefaultBreakpoints, brewer.YlOrRd_8)
	return t
}

// Bucket returns the number of breakpoints less than or equal to v.
func (t *Threshold) Bucket(v float64) int {
	return sort.Search(len(t.Breakpoints), func(i int) bool { return t.Breakpoints[i] > v })
}

func (t *Threshold) Map(v float64) color.Color {
	return t.Colors[t.Bucket(v)]
}

// Range is the half-open interval [Min, Max) covered by one threshold bucket.
// The outer buckets are unbounded.
type Range struct {
	Min, Max float64
	Color    color.Color
}

// Buckets lists the ranges in ascending order.
func (t *Threshold) Buckets() []Range {
	out := make([]Range, len(t.Colors))
	lo := math.Inf(-1)
	for i, c := range t.Colors {
		hi := math.Inf(1)
		if i < len(t.Breakpoints) {
			hi = t.Breakpoints[i]
		}
		out[i] = Range{Min: lo, Max: hi, Color: c}
		lo = hi
	}
	return out
}

// Plasma approximates the matplotlib plasma ramp.
var Plasma = palette.RGBGradient{Colors: []color.RGBA{
	{0x0d, 0x08, 0x87, 0xff},
	{0x6a, 0x00, 0xa8, 0xff},
	{0xb1, 0x2a, 0x90, 0xff},
	{0xe1, 0x64, 0x62, 0xff},
	{0xfc, 0xa6, 0x36, 0xff},
	{0xf0, 0xf9, 0x21, 0xff},
}}

// ContinuousPalette returns a continuous palette by name: "plasma",
// "viridis", or any ColorBrewer palette name, which is blended from its
// 9-class variant.
func ContinuousPalette(name string) (palette.Continuous, error) {
	switch strings.ToLower(name) {
	case "", "plasma":
		return Plasma, nil
	case "viridis":
		return palette.Viridis, nil
	}
	colors, err := DiscretePalette(name, 9)
	if err != nil {
		return nil, err
	}
	g := palette.RGBGradient{Colors: make([]color.RGBA, len(colors))}
	for i, c := range colors {
		g.Colors[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	return g, nil
}

// PaletteNames lists the names ContinuousPalette accepts: the built-in
// ramps, then the ColorBrewer palettes with a 9-class variant in
// alphabetical order.
func PaletteNames() []string {
	names := make([]string, 0, len(brewer.ByName))
	for k, variants := range brewer.ByName {
		if _, ok := variants[9]; ok {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return append([]string{"plasma", "viridis"}, names...)
}

// DiscretePalette returns the n-class variant of a ColorBrewer palette.
func DiscretePalette(name string, n int) ([]color.Color, error) {
	for k, variants := range brewer.ByName {
		if !strings.EqualFold(k, name) {
			continue
		}
		if colors, ok := variants[n]; ok {
			return colors, nil
		}
		return nil, errors.New(errors.ErrCodeInvalidScale, "palette %s has no %d-class variant", k, n)
	}
	return nil, errors.New(errors.ErrCodeInvalidScale, "unknown palette %q", name)
}
