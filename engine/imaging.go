// Package engine provides the default pure-Go image engine built on
// disintegration/imaging.  JPEG and PNG use the standard library codecs;
// WebP decodes via golang.org/x/image/webp and encodes via chai2010/webp.
package engine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP with image.Decode

	"github.com/pixelforge/imagekit/core"
	apperrors "github.com/pixelforge/imagekit/errors"
)

// Imaging is the default core.Engine.  It is stateless and safe for
// concurrent use.
type Imaging struct {
	// Filter controls resampling quality; defaults to Lanczos.
	Filter imaging.ResampleFilter
}

// New returns an Imaging engine with Lanczos resampling.
func New() *Imaging {
	return &Imaging{Filter: imaging.Lanczos}
}

var _ core.Engine = (*Imaging)(nil)

// Transform decodes data, applies each action's steps in fixed order
// (resize, crop, rotate, flip), and re-encodes per opts.
func (e *Imaging) Transform(ctx context.Context, data []byte, actions []core.Action, opts core.SaveOptions) (*core.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "engine.transform", err)
	}
	if len(data) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "engine.transform", apperrors.ErrEmptyInput)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "engine.decode", err)
	}

	for _, action := range actions {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "engine.transform", err)
		}
		img, err = e.apply(img, action)
		if err != nil {
			return nil, err
		}
	}

	encoded, err := e.encode(img, opts)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &core.Output{
		Data: encoded,
		Info: core.ImageInfo{
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
			Format: normalizeFormat(opts.Format),
		},
	}, nil
}

// Identify extracts dimensions and format without decoding pixel data.
func (e *Imaging) Identify(ctx context.Context, data []byte) (core.ImageInfo, error) {
	if err := ctx.Err(); err != nil {
		return core.ImageInfo{}, apperrors.Wrap(apperrors.CodeManipulationFailed, "engine.identify", err)
	}
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return core.ImageInfo{}, apperrors.Wrap(apperrors.CodeManipulationFailed, "engine.identify", err)
	}
	return core.ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: formatFromName(name)}, nil
}

// apply runs one action's steps in the contract order.
func (e *Imaging) apply(img image.Image, a core.Action) (image.Image, error) {
	if a.Resize != nil {
		if a.Resize.Width <= 0 && a.Resize.Height <= 0 {
			return nil, apperrors.New(apperrors.CodeInvalidDimensions, "engine.resize",
				"resize requires at least one positive dimension")
		}
		w, h := a.Resize.Width, a.Resize.Height
		if w < 0 {
			w = 0
		}
		if h < 0 {
			h = 0
		}
		img = imaging.Resize(img, w, h, e.filter())
	}
	if a.Crop != nil {
		rect := image.Rect(a.Crop.X, a.Crop.Y, a.Crop.X+a.Crop.Width, a.Crop.Y+a.Crop.Height)
		rect = rect.Intersect(img.Bounds())
		if rect.Empty() {
			return nil, apperrors.Newf(apperrors.CodeInvalidDimensions, "engine.crop",
				"crop area %+v lies outside image bounds %v", *a.Crop, img.Bounds())
		}
		img = imaging.Crop(img, rect)
	}
	if a.Rotate != nil {
		// imaging rotates counter-clockwise; callers pass clockwise degrees.
		img = imaging.Rotate(img, -*a.Rotate, color.NRGBA{})
	}
	if a.Flip != nil {
		if a.Flip.Horizontal {
			img = imaging.FlipH(img)
		}
		if a.Flip.Vertical {
			img = imaging.FlipV(img)
		}
	}
	return img, nil
}

func (e *Imaging) encode(img image.Image, opts core.SaveOptions) ([]byte, error) {
	quality := int(math.Round(opts.Compress * 100))
	if quality <= 0 {
		quality = 80
	}
	if quality > 100 {
		quality = 100
	}

	var buf bytes.Buffer
	switch normalizeFormat(opts.Format) {
	case core.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "engine.encode.png", err)
		}
	case core.FormatWebP:
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "engine.encode.webp", err)
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "engine.encode.jpeg", err)
		}
	}
	return buf.Bytes(), nil
}

func (e *Imaging) filter() imaging.ResampleFilter {
	if e.Filter.Support > 0 {
		return e.Filter
	}
	return imaging.Lanczos
}

func normalizeFormat(f core.Format) core.Format {
	switch f {
	case core.FormatPNG, core.FormatWebP:
		return f
	default:
		return core.FormatJPEG
	}
}

func formatFromName(name string) core.Format {
	switch name {
	case "jpeg":
		return core.FormatJPEG
	case "png":
		return core.FormatPNG
	case "webp":
		return core.FormatWebP
	}
	return core.FormatUnknown
}
