package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg"
)

var ErrNoFlips = errors.New("no flipped samples to plot")

// WriteHistogramPNG plots the distribution of flip times as a PNG.
// Samples equal to maxTime never flipped and are left out.
func WriteHistogramPNG(w io.Writer, values []float64, maxTime float64, bins int) error {
	flipped := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if v != maxTime {
			flipped = append(flipped, v)
		}
	}
	if len(flipped) == 0 {
		return ErrNoFlips
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Time to flip (%d of %d samples)", len(flipped), len(values))
	p.X.Label.Text = "t"
	p.Y.Label.Text = "samples"
	p.X.Min = 0
	p.X.Max = maxTime

	h, err := plotter.NewHist(flipped, bins)
	if err != nil {
		return err
	}
	h.FillColor = color.RGBA{R: 0x33, G: 0x99, B: 0xff, A: 0xff}
	p.Add(h)

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
