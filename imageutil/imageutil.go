// Package imageutil provides pure dimension and format utilities.
package imageutil

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/pixelforge/imagekit/core"
)

// Orientation classifies dimensions as landscape, portrait, or square.
func Orientation(width, height int) core.Orientation {
	switch {
	case width > height:
		return core.OrientationLandscape
	case height > width:
		return core.OrientationPortrait
	default:
		return core.OrientationSquare
	}
}

// AspectRatio returns width/height.  Zero height yields 0.
func AspectRatio(width, height int) float64 {
	if height == 0 {
		return 0
	}
	return float64(width) / float64(height)
}

// FitToSize scales (width, height) down so both fit within (maxWidth,
// maxHeight), preserving aspect ratio.  The width is constrained first and
// the (possibly updated) height second; this tie-break order is part of the
// contract and must not be reordered.
func FitToSize(width, height, maxWidth, maxHeight int) (int, int) {
	aspect := float64(width) / float64(height)
	w := float64(width)
	h := float64(height)

	if w > float64(maxWidth) {
		w = float64(maxWidth)
		h = w / aspect
	}
	if h > float64(maxHeight) {
		h = float64(maxHeight)
		w = h * aspect
	}
	return int(math.Round(w)), int(math.Round(h))
}

// SquareCrop returns the centered square region of a width×height image.
func SquareCrop(width, height int) core.Rect {
	size := width
	if height < size {
		size = height
	}
	return core.Rect{
		X:      (width - size) / 2,
		Y:      (height - size) / 2,
		Width:  size,
		Height: size,
	}
}

// FormatFileSize renders a byte count as "N B", "x.x KB", or "x.x MB".
func FormatFileSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * 1024
	)
	switch {
	case bytes < kb:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	}
}

// DetectFormat sniffs the leading bytes of data and returns the image format.
func DetectFormat(data []byte) core.Format {
	if len(data) < 4 {
		return core.FormatUnknown
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return core.FormatJPEG
	}
	// PNG: 89 50 4E 47
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return core.FormatPNG
	}
	// WebP: RIFF....WEBP
	if len(data) >= 12 &&
		data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P' {
		return core.FormatWebP
	}
	// Fallback to net/http sniffing.
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return core.FormatJPEG
	case "image/png":
		return core.FormatPNG
	case "image/webp":
		return core.FormatWebP
	}
	return core.FormatUnknown
}

// ParseFormat maps a user-supplied format name to a Format, defaulting to
// JPEG for anything unrecognized.
func ParseFormat(s string) core.Format {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return core.FormatPNG
	case "webp":
		return core.FormatWebP
	default:
		return core.FormatJPEG
	}
}

// Extension returns the conventional file extension for f, without a dot.
func Extension(f core.Format) string {
	switch f {
	case core.FormatPNG:
		return "png"
	case core.FormatWebP:
		return "webp"
	default:
		return "jpg"
	}
}
