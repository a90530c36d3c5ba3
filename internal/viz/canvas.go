package viz

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/chaosmap/internal/palette"
	"github.com/san-kum/chaosmap/internal/scan"
)

// Half blocks: every terminal cell shows two stacked pixels, the upper
// one as the foreground of '▀' and the lower one as its background.
const halfBlock = "▀"

// Canvas is a color terminal canvas for scan output. A scan surface of
// SurfaceSize() pixels maps onto it with Scale surface pixels per
// half-block, so a scan at stride Scale paints exactly one half-block
// per sample.
type Canvas struct {
	Width, Height int
	Scale         int
	pix           []palette.HSL
	dirty         bool
	rendered      string
}

func NewCanvas(w, h, scale int) *Canvas {
	if scale < 1 {
		scale = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Scale:  scale,
		pix:    make([]palette.HSL, w*h*2),
	}
	c.Clear()
	return c
}

func (c *Canvas) SurfaceSize() (int, int) {
	return c.Width * c.Scale, c.Height * 2 * c.Scale
}

// Fill implements scan.Sink.
func (c *Canvas) Fill(f scan.Fill) {
	x0, y0 := f.X/c.Scale, f.Y/c.Scale
	x1 := (f.X + f.W + c.Scale - 1) / c.Scale
	y1 := (f.Y + f.H + c.Scale - 1) / c.Scale
	x1, y1 = min(x1, c.Width), min(y1, c.Height*2)

	for y := max(y0, 0); y < y1; y++ {
		for x := max(x0, 0); x < x1; x++ {
			c.pix[y*c.Width+x] = f.Color
		}
	}
	c.dirty = true
}

func (c *Canvas) At(x, y int) color.RGBA {
	return c.pix[y*c.Width+x].RGBA()
}

func (c *Canvas) Clear() {
	for i := range c.pix {
		c.pix[i] = palette.HSL{}
	}
	c.dirty = true
}

func (c *Canvas) String() string {
	if !c.dirty {
		return c.rendered
	}

	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		top := c.pix[2*row*c.Width:]
		bottom := c.pix[(2*row+1)*c.Width:]
		for col := 0; col < c.Width; col++ {
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top[col].Hex())).
				Background(lipgloss.Color(bottom[col].Hex())).
				Render(halfBlock))
		}
		b.WriteString("\n")
	}

	c.rendered = b.String()
	c.dirty = false
	return c.rendered
}
