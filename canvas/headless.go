package canvas

import (
	"fmt"
	"image"

	"github.com/pixelforge/imagekit/core"
)

// Op is one recorded drawing call.
type Op struct {
	Name string
	Args []float64
	Text string
}

// Headless records drawing calls without rasterizing anything.  It serves
// hosts with no display and render tests that assert on the call sequence.
type Headless struct {
	width  int
	height int
	ops    []Op
}

var _ core.Canvas = (*Headless)(nil)

// NewHeadless creates a recording canvas of the given logical size.
func NewHeadless(width, height int) *Headless {
	return &Headless{width: width, height: height}
}

func (h *Headless) record(name string, args ...float64) {
	h.ops = append(h.ops, Op{Name: name, Args: args})
}

// Size returns the logical surface dimensions.
func (h *Headless) Size() (int, int) { return h.width, h.height }

func (h *Headless) SetColor(r, g, b, a uint8) {
	h.record("setColor", float64(r), float64(g), float64(b), float64(a))
}

func (h *Headless) SetLineWidth(w float64)    { h.record("setLineWidth", w) }
func (h *Headless) SetDash(dashes ...float64) { h.record("setDash", dashes...) }
func (h *Headless) ClearDash()                { h.record("clearDash") }
func (h *Headless) MoveTo(x, y float64)       { h.record("moveTo", x, y) }
func (h *Headless) LineTo(x, y float64)       { h.record("lineTo", x, y) }
func (h *Headless) ClosePath()                { h.record("closePath") }
func (h *Headless) Stroke()                   { h.record("stroke") }
func (h *Headless) Fill()                     { h.record("fill") }

func (h *Headless) DrawRectangle(x, y, w, height float64) {
	h.record("drawRectangle", x, y, w, height)
}

func (h *Headless) DrawEllipse(cx, cy, rx, ry float64) { h.record("drawEllipse", cx, cy, rx, ry) }
func (h *Headless) DrawLine(x1, y1, x2, y2 float64)    { h.record("drawLine", x1, y1, x2, y2) }

func (h *Headless) DrawText(s string, x, y float64) {
	h.ops = append(h.ops, Op{Name: "drawText", Args: []float64{x, y}, Text: s})
}

func (h *Headless) DrawImage(img image.Image, x, y float64) {
	h.record("drawImage", x, y)
}

func (h *Headless) Push() { h.record("push") }
func (h *Headless) Pop()  { h.record("pop") }

// Ops returns the recorded call sequence.
func (h *Headless) Ops() []Op { return h.ops }

// Count returns how many calls with the given name were recorded.
func (h *Headless) Count(name string) int {
	n := 0
	for _, op := range h.ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// Reset discards the recorded calls.
func (h *Headless) Reset() { h.ops = nil }

// String renders the op log, one call per line, for test diagnostics.
func (h *Headless) String() string {
	var out string
	for _, op := range h.ops {
		if op.Text != "" {
			out += fmt.Sprintf("%s(%q, %v)\n", op.Name, op.Text, op.Args)
			continue
		}
		out += fmt.Sprintf("%s(%v)\n", op.Name, op.Args)
	}
	return out
}
