// Package vips provides a core.Engine backed by libvips via govips.  It
// trades the pure-Go engine's portability for throughput and shrink-on-load
// decoding; select it at construction time on hosts with libvips available.
package vips

import (
	"context"
	"math"
	"runtime"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/pixelforge/imagekit/core"
	apperrors "github.com/pixelforge/imagekit/errors"
)

// Config configures the libvips backend.
type Config struct {
	DefaultQuality int // 1-100; default 80
	MaxCacheSize   int
	MaxWorkers     int
	ReportLeaks    bool
}

// Engine is a libvips-powered core.Engine.  Safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine initialises libvips and returns a ready Engine.
// Call Shutdown() when the process exits.
func NewEngine(cfg Config) *Engine {
	if cfg.DefaultQuality <= 0 {
		cfg.DefaultQuality = 80
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	govips.Startup(&govips.Config{
		ConcurrencyLevel: cfg.MaxWorkers,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
		CollectStats:     true,
	})
	return &Engine{cfg: cfg}
}

// Shutdown releases all libvips resources. Call once at process exit.
func (e *Engine) Shutdown() {
	govips.Shutdown()
}

var _ core.Engine = (*Engine)(nil)

// Transform applies each action's steps in fixed order (resize, crop,
// rotate, flip) and exports per opts.
func (e *Engine) Transform(ctx context.Context, data []byte, actions []core.Action, opts core.SaveOptions) (*core.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.transform", err)
	}
	if len(data) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.transform", apperrors.ErrEmptyInput)
	}

	ref, err := govips.NewImageFromBuffer(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.decode", err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.autorotate", err)
	}

	for _, action := range actions {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.transform", err)
		}
		if err := e.apply(ref, action); err != nil {
			return nil, err
		}
	}

	encoded, format, err := e.export(ref, opts)
	if err != nil {
		return nil, err
	}
	return &core.Output{
		Data: encoded,
		Info: core.ImageInfo{Width: ref.Width(), Height: ref.Height(), Format: format},
	}, nil
}

// Identify extracts dimensions and format without a full decode.
func (e *Engine) Identify(ctx context.Context, data []byte) (core.ImageInfo, error) {
	if err := ctx.Err(); err != nil {
		return core.ImageInfo{}, apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.identify", err)
	}
	ref, err := govips.NewImageFromBuffer(data)
	if err != nil {
		return core.ImageInfo{}, apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.identify", err)
	}
	defer ref.Close()
	return core.ImageInfo{
		Width:  ref.Width(),
		Height: ref.Height(),
		Format: vipsFormatToCore(ref.Format()),
	}, nil
}

func (e *Engine) apply(ref *govips.ImageRef, a core.Action) error {
	if a.Resize != nil {
		if a.Resize.Width <= 0 && a.Resize.Height <= 0 {
			return apperrors.New(apperrors.CodeInvalidDimensions, "vips.resize",
				"resize requires at least one positive dimension")
		}
		hscale, vscale := resizeScales(ref.Width(), ref.Height(), a.Resize.Width, a.Resize.Height)
		if err := ref.ResizeWithVScale(hscale, vscale, govips.KernelLanczos3); err != nil {
			return apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.resize", err)
		}
	}
	if a.Crop != nil {
		x, y, w, h := clipCrop(*a.Crop, ref.Width(), ref.Height())
		if w <= 0 || h <= 0 {
			return apperrors.Newf(apperrors.CodeInvalidDimensions, "vips.crop",
				"crop area %+v lies outside image bounds %dx%d", *a.Crop, ref.Width(), ref.Height())
		}
		if err := ref.ExtractArea(x, y, w, h); err != nil {
			return apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.crop", err)
		}
	}
	if a.Rotate != nil {
		if err := rotate(ref, *a.Rotate); err != nil {
			return apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.rotate", err)
		}
	}
	if a.Flip != nil {
		if a.Flip.Horizontal {
			if err := ref.Flip(govips.DirectionHorizontal); err != nil {
				return apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.flip", err)
			}
		}
		if a.Flip.Vertical {
			if err := ref.Flip(govips.DirectionVertical); err != nil {
				return apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.flip", err)
			}
		}
	}
	return nil
}

// rotate uses the fast rot90 path for right-angle rotations and falls back
// to vips_similarity for arbitrary angles.
func rotate(ref *govips.ImageRef, degrees float64) error {
	deg := math.Mod(degrees, 360)
	if deg < 0 {
		deg += 360
	}
	switch deg {
	case 0:
		return nil
	case 90:
		return ref.Rotate(govips.Angle90)
	case 180:
		return ref.Rotate(govips.Angle180)
	case 270:
		return ref.Rotate(govips.Angle270)
	}
	return ref.Similarity(1.0, deg, &govips.ColorRGBA{}, 0, 0, 0, 0)
}

func (e *Engine) export(ref *govips.ImageRef, opts core.SaveOptions) ([]byte, core.Format, error) {
	quality := int(math.Round(opts.Compress * 100))
	if quality <= 0 {
		quality = e.cfg.DefaultQuality
	}
	if quality > 100 {
		quality = 100
	}

	switch opts.Format {
	case core.FormatPNG:
		ep := govips.NewPngExportParams()
		buf, _, err := ref.ExportPng(ep)
		if err != nil {
			return nil, "", apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.encode.png", err)
		}
		return buf, core.FormatPNG, nil

	case core.FormatWebP:
		ep := govips.NewWebpExportParams()
		ep.Quality = quality
		buf, _, err := ref.ExportWebp(ep)
		if err != nil {
			return nil, "", apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.encode.webp", err)
		}
		return buf, core.FormatWebP, nil

	default:
		ep := govips.NewJpegExportParams()
		ep.Quality = quality
		buf, _, err := ref.ExportJpeg(ep)
		if err != nil {
			return nil, "", apperrors.Wrap(apperrors.CodeManipulationFailed, "vips.encode.jpeg", err)
		}
		return buf, core.FormatJPEG, nil
	}
}

// resizeScales computes per-axis scale factors; a zero target axis follows
// the other, preserving aspect ratio.
func resizeScales(srcW, srcH, targetW, targetH int) (hscale, vscale float64) {
	switch {
	case targetW <= 0:
		vscale = float64(targetH) / float64(srcH)
		hscale = vscale
	case targetH <= 0:
		hscale = float64(targetW) / float64(srcW)
		vscale = hscale
	default:
		hscale = float64(targetW) / float64(srcW)
		vscale = float64(targetH) / float64(srcH)
	}
	return hscale, vscale
}

func clipCrop(r core.Rect, w, h int) (x, y, cw, ch int) {
	x, y = r.X, r.Y
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	cw, ch = r.Width, r.Height
	if x+cw > w {
		cw = w - x
	}
	if y+ch > h {
		ch = h - y
	}
	return x, y, cw, ch
}

func vipsFormatToCore(f govips.ImageType) core.Format {
	switch f {
	case govips.ImageTypeJPEG:
		return core.FormatJPEG
	case govips.ImageTypePNG:
		return core.FormatPNG
	case govips.ImageTypeWEBP:
		return core.FormatWebP
	default:
		return core.FormatUnknown
	}
}
