// Package canvas provides drawing-surface implementations of the Canvas
// capability: a raster surface backed by fogleman/gg and a headless recorder
// for hosts without a display.
package canvas

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/pixelforge/imagekit/core"
)

// Raster is a pixel-backed canvas.  Rendered output is read back with
// Image() or Pixels().
type Raster struct {
	dc     *gg.Context
	width  int
	height int
}

var _ core.Canvas = (*Raster)(nil)

// NewRaster allocates a transparent raster surface of the given size.
func NewRaster(width, height int) *Raster {
	return &Raster{
		dc:     gg.NewContext(width, height),
		width:  width,
		height: height,
	}
}

// NewRasterFrom wraps an existing image as the canvas background.
func NewRasterFrom(img image.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy())
	r.dc.DrawImage(img, 0, 0)
	return r
}

// Size returns the surface dimensions.
func (r *Raster) Size() (int, int) { return r.width, r.height }

// SetColor sets the current draw color.
func (r *Raster) SetColor(red, green, blue, alpha uint8) {
	r.dc.SetRGBA255(int(red), int(green), int(blue), int(alpha))
}

// SetLineWidth sets the stroke width.
func (r *Raster) SetLineWidth(w float64) { r.dc.SetLineWidth(w) }

// SetDash sets the stroke dash pattern.
func (r *Raster) SetDash(dashes ...float64) { r.dc.SetDash(dashes...) }

// ClearDash restores solid strokes.
func (r *Raster) ClearDash() { r.dc.SetDash() }

// MoveTo starts a new subpath at (x, y).
func (r *Raster) MoveTo(x, y float64) { r.dc.MoveTo(x, y) }

// LineTo extends the current subpath to (x, y).
func (r *Raster) LineTo(x, y float64) { r.dc.LineTo(x, y) }

// ClosePath closes the current subpath.
func (r *Raster) ClosePath() { r.dc.ClosePath() }

// Stroke strokes the current path and clears it.
func (r *Raster) Stroke() { r.dc.Stroke() }

// Fill fills the current path and clears it.
func (r *Raster) Fill() { r.dc.Fill() }

// DrawRectangle adds a rectangle to the current path.
func (r *Raster) DrawRectangle(x, y, w, h float64) { r.dc.DrawRectangle(x, y, w, h) }

// DrawEllipse adds an ellipse to the current path.
func (r *Raster) DrawEllipse(cx, cy, rx, ry float64) { r.dc.DrawEllipse(cx, cy, rx, ry) }

// DrawLine adds a line segment to the current path.
func (r *Raster) DrawLine(x1, y1, x2, y2 float64) { r.dc.DrawLine(x1, y1, x2, y2) }

// DrawText paints s anchored at its baseline-left corner.
func (r *Raster) DrawText(s string, x, y float64) { r.dc.DrawString(s, x, y) }

// DrawImage paints img with its top-left corner at (x, y).
func (r *Raster) DrawImage(img image.Image, x, y float64) {
	r.dc.DrawImage(img, int(x), int(y))
}

// Push saves the current drawing state.
func (r *Raster) Push() { r.dc.Push() }

// Pop restores the last pushed drawing state.
func (r *Raster) Pop() { r.dc.Pop() }

// Image returns the rendered surface.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// Pixels returns the surface as a flat RGBA byte buffer, 4 bytes per pixel,
// row-major, suitable for the filter pipeline.
func (r *Raster) Pixels() []byte {
	img := r.dc.Image()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*r.width {
		out := make([]byte, len(rgba.Pix))
		copy(out, rgba.Pix)
		return out
	}
	out := make([]byte, r.width*r.height*4)
	i := 0
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			c := img.At(x, y)
			red, green, blue, alpha := c.RGBA()
			out[i] = byte(red >> 8)
			out[i+1] = byte(green >> 8)
			out[i+2] = byte(blue >> 8)
			out[i+3] = byte(alpha >> 8)
			i += 4
		}
	}
	return out
}
