package export

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/san-kum/chaosmap/internal/scan"
)

// Raster paints scan samples into an RGBA image. The background is
// opaque black, the same color as an unflipped sample.
type Raster struct {
	img *image.RGBA
}

func NewRaster(width, height int) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return &Raster{img: img}
}

// Fill implements scan.Sink. Blocks that run past the right or bottom
// edge are clipped.
func (r *Raster) Fill(f scan.Fill) {
	c := f.Color.RGBA()
	if f.W == 1 && f.H == 1 {
		if (image.Point{X: f.X, Y: f.Y}).In(r.img.Rect) {
			r.img.SetRGBA(f.X, f.Y, c)
		}
		return
	}

	rect := image.Rect(f.X, f.Y, f.X+f.W, f.Y+f.H).Intersect(r.img.Rect)
	if rect.Empty() {
		return
	}
	draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *Raster) Image() *image.RGBA      { return r.img }
func (r *Raster) Bounds() image.Rectangle { return r.img.Rect }

// Thumbnail scales src down to fit inside maxW x maxH, keeping its
// aspect ratio. Images that already fit are copied unscaled.
func Thumbnail(src image.Image, maxW, maxH int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := 1.0
	if w > maxW || h > maxH {
		scale = min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	}
	tw := max(1, int(float64(w)*scale))
	th := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	if scale == 1 {
		draw.Copy(dst, image.Point{}, src, b, draw.Src, nil)
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
