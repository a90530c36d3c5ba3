// Package palette maps time-to-flip values to colors.
package palette

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSL is a color with hue in degrees and saturation and lightness in
// percent.
type HSL struct {
	H, S, L float64
}

// Map colors a flip time. Hue sweeps the full circle over [0, maxTime];
// the sentinel maxTime (no flip) is black.
func Map(t, maxTime float64) HSL {
	c := HSL{H: t / maxTime * 360, S: 100, L: 50}
	if t == maxTime {
		c.L = 0
	}
	return c
}

// String renders the color in CSS notation.
func (c HSL) String() string {
	return fmt.Sprintf("hsl(%g, %g%%, %g%%)", c.H, c.S, c.L)
}

func (c HSL) colorful() colorful.Color {
	return colorful.Hsl(c.H, c.S/100, c.L/100).Clamped()
}

// RGBA converts to an opaque 8-bit color.
func (c HSL) RGBA() color.RGBA {
	r, g, b := c.colorful().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Hex returns the #rrggbb form used by terminal styles.
func (c HSL) Hex() string {
	return c.colorful().Hex()
}
