// Package filter implements the raster filter pipeline: pure functions over
// flat RGBA byte buffers (4 bytes per pixel, row-major).  Every function
// allocates a fresh output buffer and never mutates its input, so callers
// may reuse one source buffer across multiple filters.
package filter

import (
	"sort"

	apperrors "github.com/pixelforge/imagekit/errors"
)

const bytesPerPixel = 4

func checkBuffer(op string, px []byte, width, height int) error {
	if width <= 0 || height <= 0 {
		return apperrors.Newf(apperrors.CodeInvalidDimensions, op,
			"dimensions must be positive, got %dx%d", width, height)
	}
	if len(px) != width*height*bytesPerPixel {
		return apperrors.Newf(apperrors.CodeValidation, op,
			"buffer length %d does not match %dx%d RGBA", len(px), width, height)
	}
	return nil
}

func clamp(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// Brightness shifts every color channel by brightness*2.55 for
// brightness in [-100,100].  Alpha is untouched.
func Brightness(px []byte, width, height int, brightness float64) ([]byte, error) {
	if err := checkBuffer("filter.brightness", px, width, height); err != nil {
		return nil, err
	}
	delta := brightness * 2.55
	out := make([]byte, len(px))
	for i := 0; i < len(px); i += bytesPerPixel {
		out[i] = clamp(float64(px[i]) + delta)
		out[i+1] = clamp(float64(px[i+1]) + delta)
		out[i+2] = clamp(float64(px[i+2]) + delta)
		out[i+3] = px[i+3]
	}
	return out, nil
}

// Contrast scales channels around the midpoint using the standard contrast
// factor for contrast in [-100,100].  Alpha is untouched.
func Contrast(px []byte, width, height int, contrast float64) ([]byte, error) {
	if err := checkBuffer("filter.contrast", px, width, height); err != nil {
		return nil, err
	}
	c := contrast * 2.55
	factor := (259 * (c + 255)) / (255 * (259 - c))
	out := make([]byte, len(px))
	for i := 0; i < len(px); i += bytesPerPixel {
		out[i] = clamp(factor*(float64(px[i])-128) + 128)
		out[i+1] = clamp(factor*(float64(px[i+1])-128) + 128)
		out[i+2] = clamp(factor*(float64(px[i+2])-128) + 128)
		out[i+3] = px[i+3]
	}
	return out, nil
}

// Saturation moves channels toward (negative) or away from (positive) the
// luminance gray for saturation in [-100,100].  Alpha is untouched.
func Saturation(px []byte, width, height int, saturation float64) ([]byte, error) {
	if err := checkBuffer("filter.saturation", px, width, height); err != nil {
		return nil, err
	}
	adjustment := 1 + saturation/100
	out := make([]byte, len(px))
	for i := 0; i < len(px); i += bytesPerPixel {
		r := float64(px[i])
		g := float64(px[i+1])
		b := float64(px[i+2])
		gray := 0.299*r + 0.587*g + 0.114*b
		out[i] = clamp(gray + adjustment*(r-gray))
		out[i+1] = clamp(gray + adjustment*(g-gray))
		out[i+2] = clamp(gray + adjustment*(b-gray))
		out[i+3] = px[i+3]
	}
	return out, nil
}

// Sepia blends the input toward the published sepia matrix by intensity in
// [0,1].  Intensity 0 is the identity; 1 is the full sepia transform.
func Sepia(px []byte, width, height int, intensity float64) ([]byte, error) {
	if err := checkBuffer("filter.sepia", px, width, height); err != nil {
		return nil, err
	}
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	out := make([]byte, len(px))
	sepiaInto(out, px, intensity)
	return out, nil
}

// sepiaInto writes the intensity-weighted sepia transform of src into dst.
// The weights are the identity matrix blended with the sepia matrix
// (0.393 0.769 0.189 / 0.349 0.686 0.168 / 0.272 0.534 0.131) by k.
func sepiaInto(dst, src []byte, k float64) {
	for i := 0; i < len(src); i += bytesPerPixel {
		r := float64(src[i])
		g := float64(src[i+1])
		b := float64(src[i+2])
		dst[i] = clamp(r*(1-0.607*k) + g*(0.769*k) + b*(0.189*k))
		dst[i+1] = clamp(r*(0.349*k) + g*(1-0.314*k) + b*(0.168*k))
		dst[i+2] = clamp(r*(0.272*k) + g*(0.534*k) + b*(1-0.869*k))
		dst[i+3] = src[i+3]
	}
}

// Vintage applies a sepia mix of intensity/100 followed by a warmth pass:
// positive warmth lifts red and green and damps blue; negative warmth only
// damps blue, leaving red and green unchanged.  Preserved as observed
// behaviour.
func Vintage(px []byte, width, height int, intensity, warmth float64) ([]byte, error) {
	if err := checkBuffer("filter.vintage", px, width, height); err != nil {
		return nil, err
	}
	factor := intensity / 100
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	out := make([]byte, len(px))
	sepiaInto(out, px, factor)

	warmFactor := warmth / 100
	if warmFactor == 0 {
		return out, nil
	}
	for i := 0; i < len(out); i += bytesPerPixel {
		if warmFactor >= 0 {
			out[i] = clamp(float64(out[i]) + warmFactor*20)
			out[i+1] = clamp(float64(out[i+1]) + warmFactor*10)
			out[i+2] = clamp(float64(out[i+2]) * (1 - warmFactor*0.3))
		} else {
			out[i+2] = clamp(float64(out[i+2]) * (1 + warmFactor*0.3))
		}
	}
	return out, nil
}

// BoxBlur averages each pixel over a (2r+1)×(2r+1) window.  Out-of-bounds
// neighbors are excluded from both sum and count, so edge pixels average
// over a smaller window rather than being zero-padded.
func BoxBlur(px []byte, width, height, radius int) ([]byte, error) {
	if err := checkBuffer("filter.boxblur", px, width, height); err != nil {
		return nil, err
	}
	if radius < 1 {
		radius = 1
	}
	out := make([]byte, len(px))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum [4]float64
			count := 0
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= height {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= width {
						continue
					}
					idx := (ny*width + nx) * bytesPerPixel
					sum[0] += float64(px[idx])
					sum[1] += float64(px[idx+1])
					sum[2] += float64(px[idx+2])
					sum[3] += float64(px[idx+3])
					count++
				}
			}
			idx := (y*width + x) * bytesPerPixel
			for c := 0; c < 4; c++ {
				out[idx+c] = clamp(sum[c] / float64(count))
			}
		}
	}
	return out, nil
}

// sharpenKernel is the fixed 3×3 sharpening kernel.
var sharpenKernel = [3][3]float64{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

// Sharpen convolves the color channels with the fixed kernel, leaving alpha
// untouched.  Out-of-bounds taps are skipped rather than padded, which
// biases edge pixels; this quirk is preserved, not corrected.
func Sharpen(px []byte, width, height int) ([]byte, error) {
	if err := checkBuffer("filter.sharpen", px, width, height); err != nil {
		return nil, err
	}
	out := make([]byte, len(px))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum [3]float64
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= height {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= width {
						continue
					}
					weight := sharpenKernel[dy+1][dx+1]
					idx := (ny*width + nx) * bytesPerPixel
					sum[0] += weight * float64(px[idx])
					sum[1] += weight * float64(px[idx+1])
					sum[2] += weight * float64(px[idx+2])
				}
			}
			idx := (y*width + x) * bytesPerPixel
			out[idx] = clamp(sum[0])
			out[idx+1] = clamp(sum[1])
			out[idx+2] = clamp(sum[2])
			out[idx+3] = px[idx+3]
		}
	}
	return out, nil
}

// ReduceNoise applies a 3×3 median filter per color channel, leaving alpha
// untouched.  Edge windows shrink to the valid neighborhood.
func ReduceNoise(px []byte, width, height int) ([]byte, error) {
	if err := checkBuffer("filter.noise", px, width, height); err != nil {
		return nil, err
	}
	out := make([]byte, len(px))
	window := make([]byte, 0, 9)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := (y*width + x) * bytesPerPixel
			for c := 0; c < 3; c++ {
				window = window[:0]
				for dy := -1; dy <= 1; dy++ {
					ny := y + dy
					if ny < 0 || ny >= height {
						continue
					}
					for dx := -1; dx <= 1; dx++ {
						nx := x + dx
						if nx < 0 || nx >= width {
							continue
						}
						window = append(window, px[(ny*width+nx)*bytesPerPixel+c])
					}
				}
				out[idx+c] = median(window)
			}
			out[idx+3] = px[idx+3]
		}
	}
	return out, nil
}

func median(window []byte) byte {
	sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
	return window[len(window)/2]
}

// Blend linearly interpolates between original and processed buffers by
// intensity in [0,100], per byte including alpha.  Intensity 0 returns the
// original values; 100 returns the processed values.
func Blend(original, processed []byte, intensity float64) ([]byte, error) {
	if len(original) != len(processed) {
		return nil, apperrors.Newf(apperrors.CodeValidation, "filter.blend",
			"buffer lengths differ: %d vs %d", len(original), len(processed))
	}
	t := intensity / 100
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	out := make([]byte, len(original))
	for i := range original {
		out[i] = clamp(float64(original[i])*(1-t) + float64(processed[i])*t)
	}
	return out, nil
}
