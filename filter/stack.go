package filter

import (
	apperrors "github.com/pixelforge/imagekit/errors"
)

// ID names a built-in filter in a Stack.
type ID string

const (
	IDBrightness ID = "brightness"
	IDContrast   ID = "contrast"
	IDSaturation ID = "saturation"
	IDSepia      ID = "sepia"
	IDVintage    ID = "vintage"
	IDBlur       ID = "blur"
	IDSharpen    ID = "sharpen"
	IDNoise      ID = "noise"
)

// Setting is one ephemeral filter configuration owned by the caller.
// Intensity in [0,100] blends the filter output toward the input.
type Setting struct {
	ID        ID
	Intensity float64
	Params    map[string]float64
	Enabled   bool
}

// Stack applies an ordered list of filter settings.  Disabled settings are
// skipped; each enabled filter's output is intensity-blended with its input
// before the next setting runs.
type Stack struct {
	settings []Setting
}

// NewStack creates a Stack over the given settings, applied in order.
func NewStack(settings ...Setting) *Stack {
	return &Stack{settings: settings}
}

// Use appends settings to the stack.  Returns the same Stack for chaining.
func (s *Stack) Use(settings ...Setting) *Stack {
	s.settings = append(s.settings, settings...)
	return s
}

// Apply runs the stack over px and returns a fresh buffer; px is never
// mutated.
func (s *Stack) Apply(px []byte, width, height int) ([]byte, error) {
	if err := checkBuffer("filter.stack", px, width, height); err != nil {
		return nil, err
	}
	current := px
	for _, st := range s.settings {
		if !st.Enabled {
			continue
		}
		processed, err := runSetting(current, width, height, st)
		if err != nil {
			return nil, err
		}
		current, err = Blend(current, processed, st.Intensity)
		if err != nil {
			return nil, err
		}
	}
	if len(current) == len(px) && &current[0] == &px[0] {
		// Nothing ran; still hand back a fresh buffer per the contract.
		out := make([]byte, len(px))
		copy(out, px)
		return out, nil
	}
	return current, nil
}

func runSetting(px []byte, width, height int, st Setting) ([]byte, error) {
	amount := func(key string, fallback float64) float64 {
		if v, ok := st.Params[key]; ok {
			return v
		}
		return fallback
	}

	switch st.ID {
	case IDBrightness:
		return Brightness(px, width, height, amount("amount", 0))
	case IDContrast:
		return Contrast(px, width, height, amount("amount", 0))
	case IDSaturation:
		return Saturation(px, width, height, amount("amount", 0))
	case IDSepia:
		return Sepia(px, width, height, 1)
	case IDVintage:
		return Vintage(px, width, height, 100, amount("warmth", 0))
	case IDBlur:
		return BoxBlur(px, width, height, int(amount("radius", 1)))
	case IDSharpen:
		return Sharpen(px, width, height)
	case IDNoise:
		return ReduceNoise(px, width, height)
	default:
		return nil, apperrors.Newf(apperrors.CodeValidation, "filter.stack",
			"unknown filter id %q", st.ID)
	}
}
