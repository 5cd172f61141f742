package paint

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGB color with channels in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Neutral is the color of instances that were never painted.
var Neutral = Color{R: 0.5, G: 0.5, B: 0.5}

// ParseHex parses an sRGB hex color ("#rrggbb" or "#rgb") into linear RGB.
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(normalizeHex(s))
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.LinearRgb()
	return Color{R: r, G: g, B: b}, nil
}

// normalizeHex accepts colors without the leading '#'.
func normalizeHex(s string) string {
	if len(s) > 0 && s[0] != '#' {
		return "#" + s
	}
	return s
}

// Hex returns the sRGB hex form of c.
func (c Color) Hex() string {
	return colorful.LinearRgb(c.R, c.G, c.B).Clamped().Hex()
}

func (c Color) String() string { return c.Hex() }

// Clamped limits every channel to [0, 1]. NaN collapses to 0.
func (c Color) Clamped() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

// Gamma returns c with every channel raised to 1/2.2, the encoding used for
// material color factors.
func (c Color) Gamma() [3]float64 {
	c = c.Clamped()
	const inv = 1 / 2.2
	return [3]float64{math.Pow(c.R, inv), math.Pow(c.G, inv), math.Pow(c.B, inv)}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
