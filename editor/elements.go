package editor

import "image"

// Point is a position on the editor surface.
type Point struct {
	X float64
	Y float64
}

// Color is an RGBA color with 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

// ElementKind tags the concrete variant held by an Element.
type ElementKind string

const (
	KindStroke  ElementKind = "stroke"
	KindShape   ElementKind = "shape"
	KindText    ElementKind = "text"
	KindSticker ElementKind = "sticker"
)

// ShapeKind selects the geometry of a ShapeElement.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeEllipse   ShapeKind = "ellipse"
	ShapeLine      ShapeKind = "line"
	ShapeArrow     ShapeKind = "arrow"
)

// StrokeElement is a freehand brush path.
type StrokeElement struct {
	Points []Point
	Color  Color
	Width  float64
}

// ShapeElement is a geometric primitive spanned by two corner points.
type ShapeElement struct {
	Shape       ShapeKind
	Start       Point
	End         Point
	Color       Color
	StrokeWidth float64
	Fill        bool
}

// TextElement is a text label anchored at a position.
type TextElement struct {
	Text     string
	Position Point
	Color    Color
	Size     float64
}

// StickerElement places a decoded raster image on the surface.  Image may be
// nil on headless hosts; the URI identifies the asset either way.
type StickerElement struct {
	URI      string
	Image    image.Image
	Position Point
	Width    float64
	Height   float64
}

// Element is a tagged variant over the four concrete element kinds.  Exactly
// one payload field matching Kind is non-nil; renderers match exhaustively
// on Kind.
type Element struct {
	Kind    ElementKind
	Stroke  *StrokeElement
	Shape   *ShapeElement
	Text    *TextElement
	Sticker *StickerElement
}

// NewStroke wraps a StrokeElement in its tagged form.
func NewStroke(e StrokeElement) Element { return Element{Kind: KindStroke, Stroke: &e} }

// NewShape wraps a ShapeElement in its tagged form.
func NewShape(e ShapeElement) Element { return Element{Kind: KindShape, Shape: &e} }

// NewText wraps a TextElement in its tagged form.
func NewText(e TextElement) Element { return Element{Kind: KindText, Text: &e} }

// NewSticker wraps a StickerElement in its tagged form.
func NewSticker(e StickerElement) Element { return Element{Kind: KindSticker, Sticker: &e} }
