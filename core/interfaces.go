package core

import (
	"context"
	"image"
	"time"
)

// Engine is the native image-manipulation collaborator.  It decodes data,
// applies the steps of each Action in fixed order (resize, crop, rotate,
// flip), and re-encodes per opts.  Implementations must be safe for
// concurrent use.
type Engine interface {
	Transform(ctx context.Context, data []byte, actions []Action, opts SaveOptions) (*Output, error)
	Identify(ctx context.Context, data []byte) (ImageInfo, error)
}

// Storage persists processed images and copies them into the host's
// documents directory.
type Storage interface {
	// Write stores data under name (a fresh name is generated when empty)
	// and returns the URI of the stored file.
	Write(ctx context.Context, name string, data []byte) (string, error)
	// CopyToDocuments copies the file behind uri into the documents
	// directory and returns the new URI.
	CopyToDocuments(ctx context.Context, uri, filename string) (string, error)
}

// Canvas is the 2D drawing-surface capability the editor renders into.
// Hosts select an implementation at construction time: a real raster canvas
// or a headless one.  Business logic never branches on the environment.
type Canvas interface {
	Size() (width, height int)

	SetColor(r, g, b, a uint8)
	SetLineWidth(w float64)
	SetDash(dashes ...float64)
	ClearDash()

	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	Stroke()
	Fill()

	DrawRectangle(x, y, w, h float64)
	DrawEllipse(cx, cy, rx, ry float64)
	DrawLine(x1, y1, x2, y2 float64)
	DrawText(s string, x, y float64)
	DrawImage(img image.Image, x, y float64)

	Push()
	Pop()
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Hook is an optional observer invoked around service operations.
type Hook interface {
	BeforeOp(ctx context.Context, op, uri string)
	AfterOp(ctx context.Context, op string, res *Result, d time.Duration, err error)
}
