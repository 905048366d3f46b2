package core

// Format identifies an image codec.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatUnknown Format = "unknown"
)

// Orientation classifies an image by its aspect.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationSquare    Orientation = "square"
)

// Rect is a rectangle in source-image pixel space.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// ResizeSpec describes a resize.  A zero axis is computed from the other,
// preserving aspect ratio.
type ResizeSpec struct {
	Width  int
	Height int
}

// FlipSpec describes a mirror operation on one or both axes.
type FlipSpec struct {
	Horizontal bool
	Vertical   bool
}

// Action bundles the geometric steps of one engine call.  Non-nil fields are
// applied in fixed order: resize, then crop, then rotate, then flip.  The
// order is part of the contract and must not change.
type Action struct {
	Resize *ResizeSpec
	Crop   *Rect
	Rotate *float64 // degrees, positive = clockwise
	Flip   *FlipSpec
}

// SaveOptions carries output encoding parameters for an engine call.
type SaveOptions struct {
	Compress float64 // quality in [0,1]
	Format   Format
	Base64   bool // also return the encoded output as base64
}

// ImageInfo is lightweight metadata extracted without full processing.
type ImageInfo struct {
	Width  int
	Height int
	Format Format
}

// Output is what an Engine returns: encoded bytes plus their metadata.
type Output struct {
	Data []byte
	Info ImageInfo
}

// Result is returned to the caller after a service operation completes.
type Result struct {
	URI    string
	Width  int
	Height int
	Base64 string // populated only when SaveOptions.Base64 was set
}
