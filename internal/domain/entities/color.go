package entities

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an RGBA quadruple with every component in [0,1].
type Color struct {
	R float64 `json:"r" validate:"gte=0,lte=1"`
	G float64 `json:"g" validate:"gte=0,lte=1"`
	B float64 `json:"b" validate:"gte=0,lte=1"`
	A float64 `json:"a" validate:"gte=0,lte=1"`
}

// Palette is handed out round-robin to imported courses.
var Palette = []Color{
	{R: 0.20, G: 0.60, B: 0.86, A: 1}, // blue
	{R: 0.18, G: 0.80, B: 0.44, A: 1}, // green
	{R: 0.91, G: 0.30, B: 0.24, A: 1}, // red
	{R: 0.95, G: 0.61, B: 0.07, A: 1}, // orange
	{R: 0.61, G: 0.35, B: 0.71, A: 1}, // purple
	{R: 0.10, G: 0.74, B: 0.61, A: 1}, // teal
	{R: 0.95, G: 0.77, B: 0.06, A: 1}, // yellow
	{R: 0.91, G: 0.40, B: 0.62, A: 1}, // pink
}

// PaletteColor returns the i-th palette color, wrapping around.
func PaletteColor(i int) Color {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// Valid reports whether every component is inside [0,1].
func (c Color) Valid() bool {
	for _, v := range []float64{c.R, c.G, c.B, c.A} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// Hex renders the color as #RRGGBBAA.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", channel(c.R), channel(c.G), channel(c.B), channel(c.A))
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// ParseHexColor parses #RRGGBB or #RRGGBBAA. The leading # is optional.
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(s) == 6 {
		s += "FF"
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	return Color{
		R: float64(v>>24&0xFF) / 255,
		G: float64(v>>16&0xFF) / 255,
		B: float64(v>>8&0xFF) / 255,
		A: float64(v&0xFF) / 255,
	}, nil
}
