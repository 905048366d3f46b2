package editor

import (
	"math"

	"github.com/pixelforge/imagekit/core"
)

// RenderLayers paints every visible layer onto the canvas in order.  Layer
// opacity multiplies each element's alpha.
func RenderLayers(c core.Canvas, layers []Layer) {
	for _, layer := range layers {
		if !layer.Visible || layer.Opacity <= 0 {
			continue
		}
		for _, el := range layer.Elements {
			renderElement(c, el, layer.Opacity)
		}
	}
}

func renderElement(c core.Canvas, el Element, opacity float64) {
	switch el.Kind {
	case KindStroke:
		renderStroke(c, el.Stroke, opacity)
	case KindShape:
		renderShape(c, el.Shape, opacity)
	case KindText:
		renderText(c, el.Text, opacity)
	case KindSticker:
		renderSticker(c, el.Sticker)
	}
}

func renderStroke(c core.Canvas, e *StrokeElement, opacity float64) {
	if e == nil || len(e.Points) == 0 {
		return
	}
	c.Push()
	setColor(c, e.Color, opacity)
	c.SetLineWidth(e.Width)
	c.MoveTo(e.Points[0].X, e.Points[0].Y)
	for _, p := range e.Points[1:] {
		c.LineTo(p.X, p.Y)
	}
	c.Stroke()
	c.Pop()
}

func renderShape(c core.Canvas, e *ShapeElement, opacity float64) {
	if e == nil {
		return
	}
	c.Push()
	setColor(c, e.Color, opacity)
	c.SetLineWidth(e.StrokeWidth)

	x := math.Min(e.Start.X, e.End.X)
	y := math.Min(e.Start.Y, e.End.Y)
	w := math.Abs(e.End.X - e.Start.X)
	h := math.Abs(e.End.Y - e.Start.Y)

	switch e.Shape {
	case ShapeRectangle:
		c.DrawRectangle(x, y, w, h)
		paint(c, e.Fill)
	case ShapeEllipse:
		c.DrawEllipse(x+w/2, y+h/2, w/2, h/2)
		paint(c, e.Fill)
	case ShapeLine:
		c.DrawLine(e.Start.X, e.Start.Y, e.End.X, e.End.Y)
		c.Stroke()
	case ShapeArrow:
		c.DrawLine(e.Start.X, e.Start.Y, e.End.X, e.End.Y)
		c.Stroke()
		renderArrowHead(c, e)
	}
	c.Pop()
}

// renderArrowHead draws the two head strokes at the end point, sized
// relative to the stroke width.
func renderArrowHead(c core.Canvas, e *ShapeElement) {
	angle := math.Atan2(e.End.Y-e.Start.Y, e.End.X-e.Start.X)
	size := 4 * math.Max(e.StrokeWidth, 1)
	const spread = math.Pi / 6

	for _, a := range [2]float64{angle - spread, angle + spread} {
		c.DrawLine(e.End.X, e.End.Y,
			e.End.X-size*math.Cos(a),
			e.End.Y-size*math.Sin(a))
		c.Stroke()
	}
}

func renderText(c core.Canvas, e *TextElement, opacity float64) {
	if e == nil || e.Text == "" {
		return
	}
	c.Push()
	setColor(c, e.Color, opacity)
	c.DrawText(e.Text, e.Position.X, e.Position.Y)
	c.Pop()
}

func renderSticker(c core.Canvas, e *StickerElement) {
	if e == nil || e.Image == nil {
		return
	}
	c.DrawImage(e.Image, e.Position.X, e.Position.Y)
}

// RenderCropOverlay dims the surface outside the selection, then draws a
// dashed border and corner handles around it.
func RenderCropOverlay(c core.Canvas, selection core.Rect) {
	w, h := c.Size()
	sx, sy := float64(selection.X), float64(selection.Y)
	sw, sh := float64(selection.Width), float64(selection.Height)

	c.Push()

	// Dim the four regions around the selection.
	c.SetColor(0, 0, 0, 128)
	c.DrawRectangle(0, 0, float64(w), sy)
	c.Fill()
	c.DrawRectangle(0, sy+sh, float64(w), float64(h)-sy-sh)
	c.Fill()
	c.DrawRectangle(0, sy, sx, sh)
	c.Fill()
	c.DrawRectangle(sx+sw, sy, float64(w)-sx-sw, sh)
	c.Fill()

	// Dashed selection border.
	c.SetColor(255, 255, 255, 255)
	c.SetLineWidth(1)
	c.SetDash(6, 4)
	c.DrawRectangle(sx, sy, sw, sh)
	c.Stroke()
	c.ClearDash()

	// Corner handles.
	const handle = 8.0
	for _, corner := range [4]Point{
		{X: sx, Y: sy},
		{X: sx + sw, Y: sy},
		{X: sx, Y: sy + sh},
		{X: sx + sw, Y: sy + sh},
	} {
		c.DrawRectangle(corner.X-handle/2, corner.Y-handle/2, handle, handle)
		c.Fill()
	}

	c.Pop()
}

func paint(c core.Canvas, fill bool) {
	if fill {
		c.Fill()
	} else {
		c.Stroke()
	}
}

func setColor(c core.Canvas, col Color, opacity float64) {
	a := float64(col.A) * opacity
	c.SetColor(col.R, col.G, col.B, uint8(math.Round(a)))
}
