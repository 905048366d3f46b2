// Package validate is the sole gate against malformed input reaching the
// native engine.  Every service must call these checks before delegating.
// All functions are pure and side-effect free.
package validate

import (
	"math"
	"strings"

	apperrors "github.com/pixelforge/imagekit/errors"
)

// Recognized URI prefixes.  data URIs must carry an image MIME type.
var allowedPrefixes = []string{
	"file://",
	"content://",
	"http://",
	"https://",
	"data:image/",
}

// URI checks that uri is non-empty and uses one of the recognized schemes.
func URI(uri string) error {
	if uri == "" {
		return apperrors.New(apperrors.CodeInvalidURI, "validate.uri", "URI must not be empty")
	}
	for _, p := range allowedPrefixes {
		if strings.HasPrefix(uri, p) {
			return nil
		}
	}
	return apperrors.Newf(apperrors.CodeInvalidURI, "validate.uri",
		"unsupported URI scheme in %q (expected file://, content://, http://, https:// or data:image/)", uri)
}

// Dimensions checks that every provided dimension is a positive number.
// Nil means "not provided" and is skipped.
func Dimensions(width, height *int) error {
	if width != nil && *width <= 0 {
		return apperrors.Newf(apperrors.CodeInvalidDimensions, "validate.dimensions",
			"width must be positive, got %d", *width)
	}
	if height != nil && *height <= 0 {
		return apperrors.Newf(apperrors.CodeInvalidDimensions, "validate.dimensions",
			"height must be positive, got %d", *height)
	}
	return nil
}

// Quality checks that q lies in [0,1].
func Quality(q float64) error {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return apperrors.Newf(apperrors.CodeInvalidQuality, "validate.quality",
			"quality must be between 0 and 1, got %v", q)
	}
	return nil
}

// Rotation checks that degrees is a finite number.
func Rotation(degrees float64) error {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return apperrors.New(apperrors.CodeValidation, "validate.rotation",
			"rotation must be a finite number of degrees")
	}
	return nil
}

// CropArea checks that the area has positive width and height and
// non-negative origin.
func CropArea(x, y, width, height int) error {
	if width <= 0 || height <= 0 {
		return apperrors.Newf(apperrors.CodeInvalidDimensions, "validate.crop",
			"crop area must have positive dimensions, got %dx%d", width, height)
	}
	if x < 0 || y < 0 {
		return apperrors.Newf(apperrors.CodeInvalidDimensions, "validate.crop",
			"crop origin must be non-negative, got (%d,%d)", x, y)
	}
	return nil
}
