package filter_test

import (
	"bytes"
	"testing"

	apperrors "github.com/pixelforge/imagekit/errors"
	"github.com/pixelforge/imagekit/filter"
)

func TestStack_AppliesInOrder(t *testing.T) {
	px := uniformImage(2, 2, 100, 100, 100, 255)

	out, err := filter.NewStack(
		filter.Setting{ID: filter.IDBrightness, Intensity: 100, Enabled: true,
			Params: map[string]float64{"amount": 20}},
	).Apply(px, 2, 2)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out[0] != 151 {
		t.Errorf("brightness step: got %d, want 151", out[0])
	}
}

func TestStack_IntensityBlendsStepOutput(t *testing.T) {
	px := uniformImage(1, 1, 100, 100, 100, 255)

	// Brightness would land at 151; at intensity 50 the step output is
	// blended halfway back toward the input: (100+151)/2 = 125.5 → 125.
	out, err := filter.NewStack(
		filter.Setting{ID: filter.IDBrightness, Intensity: 50, Enabled: true,
			Params: map[string]float64{"amount": 20}},
	).Apply(px, 1, 1)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out[0] != 125 {
		t.Errorf("blended: got %d, want 125", out[0])
	}
}

func TestStack_SkipsDisabled(t *testing.T) {
	px := uniformImage(1, 1, 100, 100, 100, 255)

	out, err := filter.NewStack(
		filter.Setting{ID: filter.IDBrightness, Intensity: 100, Enabled: false,
			Params: map[string]float64{"amount": 50}},
	).Apply(px, 1, 1)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !bytes.Equal(out, px) {
		t.Error("disabled setting ran")
	}
	if &out[0] == &px[0] {
		t.Error("Apply returned the input buffer instead of a fresh copy")
	}
}

func TestStack_UnknownFilterID(t *testing.T) {
	px := uniformImage(1, 1, 0, 0, 0, 255)
	_, err := filter.NewStack(
		filter.Setting{ID: "posterize", Intensity: 100, Enabled: true},
	).Apply(px, 1, 1)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestStack_UseChains(t *testing.T) {
	s := filter.NewStack().
		Use(filter.Setting{ID: filter.IDSharpen, Intensity: 100, Enabled: true}).
		Use(filter.Setting{ID: filter.IDNoise, Intensity: 100, Enabled: true})

	px := gradientImage(4, 4)
	if _, err := s.Apply(px, 4, 4); err != nil {
		t.Fatalf("Apply: %v", err)
	}
}
