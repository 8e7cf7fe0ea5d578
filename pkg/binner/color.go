package binner

import (
	"fmt"
	"image/color"
)

// NoDataRGBA is the neutral gray used for regions without statistics.
var NoDataRGBA = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}

// Color is a fill colour or the no-data sentinel. The zero value is not a
// valid colour; use [NoData] or [ColorOf].
type Color struct {
	RGBA   color.RGBA
	NoData bool
}

// NoData returns the no-data sentinel.
func NoData() Color {
	return Color{RGBA: NoDataRGBA, NoData: true}
}

// ColorOf converts any colour to a data-bearing Color.
func ColorOf(c color.Color) Color {
	return Color{RGBA: color.RGBAModel.Convert(c).(color.RGBA)}
}

// Hex returns the colour as "#rrggbb".
func (c Color) Hex() string {
	rgba := c.RGBA
	if c.NoData {
		rgba = NoDataRGBA
	}
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

func (c Color) String() string {
	if c.NoData {
		return "no-data"
	}
	return c.Hex()
}

// MarshalText encodes the colour as its hex string, or "" for no data.
func (c Color) MarshalText() ([]byte, error) {
	if c.NoData {
		return []byte(""), nil
	}
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes the output of MarshalText.
func (c *Color) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = NoData()
		return nil
	}
	var r, g, bl uint8
	if _, err := fmt.Sscanf(string(b), "#%02x%02x%02x", &r, &g, &bl); err != nil {
		return fmt.Errorf("parse colour %q: %w", b, err)
	}
	*c = Color{RGBA: color.RGBA{R: r, G: g, B: bl, A: 0xff}}
	return nil
}
