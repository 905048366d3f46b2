package filter_test

import (
	"bytes"
	"testing"

	apperrors "github.com/pixelforge/imagekit/errors"
	"github.com/pixelforge/imagekit/filter"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

// uniformImage fills a w×h RGBA buffer with one pixel value.
func uniformImage(w, h int, r, g, b, a byte) []byte {
	px := make([]byte, w*h*4)
	for i := 0; i < len(px); i += 4 {
		px[i], px[i+1], px[i+2], px[i+3] = r, g, b, a
	}
	return px
}

// gradientImage fills a w×h RGBA buffer with varied values so convolution
// tests exercise non-trivial neighborhoods.
func gradientImage(w, h int) []byte {
	px := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			px[i] = byte(x * 40)
			px[i+1] = byte(y * 40)
			px[i+2] = byte((x + y) * 20)
			px[i+3] = 255
		}
	}
	return px
}

// ── Unit tests ────────────────────────────────────────────────────────────────

func TestBrightness(t *testing.T) {
	px := uniformImage(2, 2, 100, 100, 100, 255)

	out, err := filter.Brightness(px, 2, 2, 20)
	if err != nil {
		t.Fatalf("Brightness: %v", err)
	}
	// 100 + 20*2.55 = 151
	if out[0] != 151 || out[1] != 151 || out[2] != 151 {
		t.Errorf("channels: got (%d,%d,%d), want 151", out[0], out[1], out[2])
	}
	if out[3] != 255 {
		t.Errorf("alpha changed: got %d", out[3])
	}
}

func TestBrightness_Clamps(t *testing.T) {
	px := uniformImage(1, 1, 250, 5, 128, 200)

	up, err := filter.Brightness(px, 1, 1, 100)
	if err != nil {
		t.Fatalf("Brightness: %v", err)
	}
	if up[0] != 255 {
		t.Errorf("overflow not clamped: got %d", up[0])
	}

	down, err := filter.Brightness(px, 1, 1, -100)
	if err != nil {
		t.Fatalf("Brightness: %v", err)
	}
	if down[1] != 0 {
		t.Errorf("underflow not clamped: got %d", down[1])
	}
}

func TestContrast_ZeroIsIdentity(t *testing.T) {
	px := gradientImage(3, 3)
	out, err := filter.Contrast(px, 3, 3, 0)
	if err != nil {
		t.Fatalf("Contrast: %v", err)
	}
	if !bytes.Equal(out, px) {
		t.Error("contrast 0 changed the image")
	}
}

func TestContrast_PushesAwayFromMidpoint(t *testing.T) {
	px := uniformImage(1, 1, 200, 60, 128, 255)
	out, err := filter.Contrast(px, 1, 1, 50)
	if err != nil {
		t.Fatalf("Contrast: %v", err)
	}
	if out[0] <= 200 {
		t.Errorf("bright channel should increase: got %d", out[0])
	}
	if out[1] >= 60 {
		t.Errorf("dark channel should decrease: got %d", out[1])
	}
	if out[2] != 128 {
		t.Errorf("midpoint should stay fixed: got %d", out[2])
	}
}

func TestSaturation_FullDesaturateIsGray(t *testing.T) {
	px := uniformImage(1, 1, 200, 50, 100, 255)
	out, err := filter.Saturation(px, 1, 1, -100)
	if err != nil {
		t.Fatalf("Saturation: %v", err)
	}
	// gray = 0.299*200 + 0.587*50 + 0.114*100 = 100.55 → 100
	if out[0] != out[1] || out[1] != out[2] {
		t.Errorf("not gray: (%d,%d,%d)", out[0], out[1], out[2])
	}
	if out[0] != 100 {
		t.Errorf("gray value: got %d, want 100", out[0])
	}
}

func TestSepia_ZeroIsIdentity(t *testing.T) {
	px := gradientImage(2, 2)
	out, err := filter.Sepia(px, 2, 2, 0)
	if err != nil {
		t.Fatalf("Sepia: %v", err)
	}
	if !bytes.Equal(out, px) {
		t.Error("sepia intensity 0 changed the image")
	}
}

func TestSepia_FullMatrix(t *testing.T) {
	px := uniformImage(1, 1, 100, 100, 100, 255)
	out, err := filter.Sepia(px, 1, 1, 1)
	if err != nil {
		t.Fatalf("Sepia: %v", err)
	}
	// R = 100*(0.393+0.769+0.189) = 135.1 → 135
	// G = 100*(0.349+0.686+0.168) = 120.3 → 120
	// B = 100*(0.272+0.534+0.131) =  93.7 → 93
	if out[0] != 135 || out[1] != 120 || out[2] != 93 {
		t.Errorf("got (%d,%d,%d), want (135,120,93)", out[0], out[1], out[2])
	}
	if out[3] != 255 {
		t.Errorf("alpha changed: got %d", out[3])
	}
}

func TestVintage_WarmthBranches(t *testing.T) {
	px := uniformImage(1, 1, 100, 100, 100, 255)

	warm, err := filter.Vintage(px, 1, 1, 0, 50)
	if err != nil {
		t.Fatalf("Vintage: %v", err)
	}
	// warmth 50: R+=10, G+=5, B*=0.85
	if warm[0] != 110 || warm[1] != 105 || warm[2] != 85 {
		t.Errorf("warm: got (%d,%d,%d), want (110,105,85)", warm[0], warm[1], warm[2])
	}

	cool, err := filter.Vintage(px, 1, 1, 0, -50)
	if err != nil {
		t.Fatalf("Vintage: %v", err)
	}
	// warmth -50: only B*=0.85; R and G untouched
	if cool[0] != 100 || cool[1] != 100 {
		t.Errorf("cool should not touch R/G: got (%d,%d)", cool[0], cool[1])
	}
	if cool[2] != 85 {
		t.Errorf("cool blue: got %d, want 85", cool[2])
	}
}

func TestBoxBlur_UniformImageInvariant(t *testing.T) {
	px := uniformImage(5, 5, 90, 140, 200, 255)
	out, err := filter.BoxBlur(px, 5, 5, 2)
	if err != nil {
		t.Fatalf("BoxBlur: %v", err)
	}
	if !bytes.Equal(out, px) {
		t.Error("blurring a uniform image changed it")
	}
}

func TestBoxBlur_AveragesNeighbors(t *testing.T) {
	// A single white pixel centered in black: the center of the blurred
	// image is the mean over the full 3×3 window.
	px := uniformImage(3, 3, 0, 0, 0, 255)
	center := (1*3 + 1) * 4
	px[center], px[center+1], px[center+2] = 255, 255, 255

	out, err := filter.BoxBlur(px, 3, 3, 1)
	if err != nil {
		t.Fatalf("BoxBlur: %v", err)
	}
	// 255/9 = 28.33 → 28
	if out[center] != 28 {
		t.Errorf("center: got %d, want 28", out[center])
	}
	// Corner window covers 4 pixels, one of them white: 255/4 = 63.75 → 63
	if out[0] != 63 {
		t.Errorf("corner: got %d, want 63", out[0])
	}
}

func TestSharpen_UniformImageInvariant(t *testing.T) {
	// Interior pixels: 5v - 4v = v.  Edge pixels lose kernel taps, so only
	// the interior is invariant.
	px := uniformImage(5, 5, 120, 80, 60, 255)
	out, err := filter.Sharpen(px, 5, 5)
	if err != nil {
		t.Fatalf("Sharpen: %v", err)
	}
	center := (2*5 + 2) * 4
	if out[center] != 120 || out[center+1] != 80 || out[center+2] != 60 {
		t.Errorf("interior changed: (%d,%d,%d)", out[center], out[center+1], out[center+2])
	}
	if out[center+3] != 255 {
		t.Errorf("alpha changed: got %d", out[center+3])
	}
}

func TestReduceNoise_RemovesSpeck(t *testing.T) {
	px := uniformImage(3, 3, 50, 50, 50, 255)
	center := (1*3 + 1) * 4
	px[center] = 255 // salt noise on the red channel

	out, err := filter.ReduceNoise(px, 3, 3)
	if err != nil {
		t.Fatalf("ReduceNoise: %v", err)
	}
	if out[center] != 50 {
		t.Errorf("speck survived the median: got %d", out[center])
	}
	if out[center+3] != 255 {
		t.Errorf("alpha changed: got %d", out[center+3])
	}
}

func TestBlend(t *testing.T) {
	original := uniformImage(2, 1, 0, 0, 0, 0)
	processed := uniformImage(2, 1, 200, 100, 50, 255)

	tests := []struct {
		name      string
		intensity float64
		want      byte // red channel
	}{
		{"zero keeps original", 0, 0},
		{"full keeps processed", 100, 200},
		{"half blends", 50, 100},
		{"below range clamps", -20, 0},
		{"above range clamps", 140, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := filter.Blend(original, processed, tt.intensity)
			if err != nil {
				t.Fatalf("Blend: %v", err)
			}
			if out[0] != tt.want {
				t.Errorf("red: got %d, want %d", out[0], tt.want)
			}
		})
	}
}

func TestBlend_IncludesAlpha(t *testing.T) {
	original := uniformImage(1, 1, 0, 0, 0, 0)
	processed := uniformImage(1, 1, 0, 0, 0, 200)
	out, err := filter.Blend(original, processed, 50)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	if out[3] != 100 {
		t.Errorf("alpha: got %d, want 100", out[3])
	}
}

func TestBlend_LengthMismatch(t *testing.T) {
	_, err := filter.Blend(make([]byte, 8), make([]byte, 4), 50)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestFilters_DoNotMutateInput(t *testing.T) {
	px := gradientImage(4, 4)
	before := append([]byte(nil), px...)

	run := func(name string, fn func() ([]byte, error)) {
		t.Helper()
		if _, err := fn(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !bytes.Equal(px, before) {
			t.Fatalf("%s mutated its input", name)
		}
	}

	run("brightness", func() ([]byte, error) { return filter.Brightness(px, 4, 4, 30) })
	run("contrast", func() ([]byte, error) { return filter.Contrast(px, 4, 4, 30) })
	run("saturation", func() ([]byte, error) { return filter.Saturation(px, 4, 4, 30) })
	run("sepia", func() ([]byte, error) { return filter.Sepia(px, 4, 4, 0.5) })
	run("vintage", func() ([]byte, error) { return filter.Vintage(px, 4, 4, 50, 20) })
	run("blur", func() ([]byte, error) { return filter.BoxBlur(px, 4, 4, 1) })
	run("sharpen", func() ([]byte, error) { return filter.Sharpen(px, 4, 4) })
	run("noise", func() ([]byte, error) { return filter.ReduceNoise(px, 4, 4) })
}

func TestFilters_RejectBadBuffers(t *testing.T) {
	if _, err := filter.Brightness(make([]byte, 10), 2, 2, 0); !apperrors.IsValidation(err) {
		t.Errorf("length mismatch: got %v", err)
	}
	if _, err := filter.Sharpen(make([]byte, 16), 0, 2); !apperrors.IsCode(err, apperrors.CodeInvalidDimensions) {
		t.Errorf("zero dimension: got %v", err)
	}
}
