// Package transform implements the stateless transform service: validation,
// source resolution, delegation to the native engine, and persistence of the
// output.
package transform

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pixelforge/imagekit/config"
	"github.com/pixelforge/imagekit/core"
	apperrors "github.com/pixelforge/imagekit/errors"
	"github.com/pixelforge/imagekit/imageutil"
	"github.com/pixelforge/imagekit/source"
	"github.com/pixelforge/imagekit/validate"
)

// Options overrides per-call save behaviour.  Nil pointer fields fall back
// to configured defaults, resolved once in buildSaveOptions.
type Options struct {
	Compress *float64    // quality in [0,1]; default cfg.DefaultQuality
	Format   core.Format // default cfg.DefaultFormat
	Base64   bool        // include base64 payload in the result
	Filename string      // output filename; generated when empty
}

// Service delegates geometric operations to the native engine after
// validation.  It is stateless and safe for concurrent use.
type Service struct {
	engine   core.Engine
	resolver *source.Resolver
	store    core.Storage
	cfg      config.Config
	logger   core.Logger
	hooks    []core.Hook
}

// New creates a transform Service.
func New(engine core.Engine, resolver *source.Resolver, store core.Storage, cfg config.Config) *Service {
	return &Service{engine: engine, resolver: resolver, store: store, cfg: cfg}
}

// SetLogger attaches a structured logger.
func (s *Service) SetLogger(l core.Logger) { s.logger = l }

// AddHook registers an observer for operation events.
func (s *Service) AddHook(h core.Hook) { s.hooks = append(s.hooks, h) }

// Resize scales the image.  A zero axis is computed from the other,
// preserving aspect ratio; at least one axis must be positive.
func (s *Service) Resize(ctx context.Context, uri string, width, height int, opts *Options) (*core.Result, error) {
	if err := validate.URI(uri); err != nil {
		return nil, err
	}
	if width == 0 && height == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidDimensions, "transform.resize",
			"resize requires at least one dimension")
	}
	var wp, hp *int
	if width != 0 {
		wp = &width
	}
	if height != 0 {
		hp = &height
	}
	if err := validate.Dimensions(wp, hp); err != nil {
		return nil, err
	}
	action := core.Action{Resize: &core.ResizeSpec{Width: width, Height: height}}
	return s.run(ctx, "transform.resize", uri, action, opts)
}

// Crop extracts the given area from the image.
func (s *Service) Crop(ctx context.Context, uri string, area core.Rect, opts *Options) (*core.Result, error) {
	if err := validate.URI(uri); err != nil {
		return nil, err
	}
	if err := validate.CropArea(area.X, area.Y, area.Width, area.Height); err != nil {
		return nil, err
	}
	action := core.Action{Crop: &area}
	return s.run(ctx, "transform.crop", uri, action, opts)
}

// Rotate turns the image by the given number of degrees (clockwise).
func (s *Service) Rotate(ctx context.Context, uri string, degrees float64, opts *Options) (*core.Result, error) {
	if err := validate.URI(uri); err != nil {
		return nil, err
	}
	if err := validate.Rotation(degrees); err != nil {
		return nil, err
	}
	action := core.Action{Rotate: &degrees}
	return s.run(ctx, "transform.rotate", uri, action, opts)
}

// Flip mirrors the image on the requested axes.
func (s *Service) Flip(ctx context.Context, uri string, flip core.FlipSpec, opts *Options) (*core.Result, error) {
	if err := validate.URI(uri); err != nil {
		return nil, err
	}
	if !flip.Horizontal && !flip.Vertical {
		return nil, apperrors.New(apperrors.CodeValidation, "transform.flip",
			"flip requires at least one axis")
	}
	action := core.Action{Flip: &flip}
	return s.run(ctx, "transform.flip", uri, action, opts)
}

// Manipulate applies any combination of resize, crop, rotate, and flip in
// that fixed order within a single engine call.
func (s *Service) Manipulate(ctx context.Context, uri string, action core.Action, opts *Options) (*core.Result, error) {
	if err := validate.URI(uri); err != nil {
		return nil, err
	}
	if action.Resize != nil {
		var wp, hp *int
		if action.Resize.Width != 0 {
			wp = &action.Resize.Width
		}
		if action.Resize.Height != 0 {
			hp = &action.Resize.Height
		}
		if err := validate.Dimensions(wp, hp); err != nil {
			return nil, err
		}
	}
	if action.Crop != nil {
		if err := validate.CropArea(action.Crop.X, action.Crop.Y, action.Crop.Width, action.Crop.Height); err != nil {
			return nil, err
		}
	}
	if action.Rotate != nil {
		if err := validate.Rotation(*action.Rotate); err != nil {
			return nil, err
		}
	}
	return s.run(ctx, "transform.manipulate", uri, action, opts)
}

// ResizeToFit scales the image down so it fits within maxWidth×maxHeight,
// preserving aspect ratio (width-first tie-break, see imageutil.FitToSize).
func (s *Service) ResizeToFit(ctx context.Context, uri string, maxWidth, maxHeight int, opts *Options) (*core.Result, error) {
	if err := validate.URI(uri); err != nil {
		return nil, err
	}
	if err := validate.Dimensions(&maxWidth, &maxHeight); err != nil {
		return nil, err
	}

	info, err := s.identify(ctx, uri)
	if err != nil {
		return nil, err
	}
	w, h := imageutil.FitToSize(info.Width, info.Height, maxWidth, maxHeight)
	return s.Resize(ctx, uri, w, h, opts)
}

// CropToSquare crops the image to its centered largest square.
func (s *Service) CropToSquare(ctx context.Context, uri string, opts *Options) (*core.Result, error) {
	if err := validate.URI(uri); err != nil {
		return nil, err
	}
	info, err := s.identify(ctx, uri)
	if err != nil {
		return nil, err
	}
	return s.Crop(ctx, uri, imageutil.SquareCrop(info.Width, info.Height), opts)
}

// Identify returns dimensions and format for the image behind uri.
func (s *Service) Identify(ctx context.Context, uri string) (core.ImageInfo, error) {
	if err := validate.URI(uri); err != nil {
		return core.ImageInfo{}, err
	}
	return s.identify(ctx, uri)
}

// SaveOptions resolves per-call options against configured defaults.
// Exposed so sibling services build engine calls the same way.
func (s *Service) SaveOptions(opts *Options) (core.SaveOptions, error) {
	so := core.SaveOptions{
		Compress: s.cfg.DefaultQuality,
		Format:   s.cfg.DefaultFormat,
	}
	if opts != nil {
		if opts.Compress != nil {
			if err := validate.Quality(*opts.Compress); err != nil {
				return core.SaveOptions{}, err
			}
			so.Compress = *opts.Compress
		}
		if opts.Format != "" {
			so.Format = opts.Format
		}
		so.Base64 = opts.Base64
	}
	return so, nil
}

// run is the shared delegation path: resolve, engine call, store, result.
// Failures past validation surface as MANIPULATION_FAILED.
func (s *Service) run(ctx context.Context, op, uri string, action core.Action, opts *Options) (*core.Result, error) {
	saveOpts, err := s.SaveOptions(opts)
	if err != nil {
		return nil, err
	}

	s.notifyBefore(ctx, op, uri)
	start := time.Now()
	res, err := s.execute(ctx, op, uri, action, saveOpts, filename(opts, saveOpts.Format))
	s.notifyAfter(ctx, op, res, time.Since(start), err)

	if err != nil {
		if s.logger != nil {
			s.logger.Error("transform.failed", "op", op, "uri", uri, "error", err.Error())
		}
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug("transform.done", "op", op, "uri", res.URI,
			"width", res.Width, "height", res.Height)
	}
	return res, nil
}

func (s *Service) execute(ctx context.Context, op, uri string, action core.Action, saveOpts core.SaveOptions, name string) (*core.Result, error) {
	data, err := s.resolver.Resolve(ctx, uri)
	if err != nil {
		return nil, apperrors.Normalize(op, err)
	}

	out, err := s.engine.Transform(ctx, data, []core.Action{action}, saveOpts)
	if err != nil {
		return nil, apperrors.Normalize(op, err)
	}

	outURI, err := s.store.Write(ctx, name, out.Data)
	if err != nil {
		return nil, apperrors.Normalize(op, err)
	}

	res := &core.Result{URI: outURI, Width: out.Info.Width, Height: out.Info.Height}
	if saveOpts.Base64 {
		res.Base64 = base64.StdEncoding.EncodeToString(out.Data)
	}
	return res, nil
}

func (s *Service) identify(ctx context.Context, uri string) (core.ImageInfo, error) {
	data, err := s.resolver.Resolve(ctx, uri)
	if err != nil {
		return core.ImageInfo{}, apperrors.Normalize("transform.identify", err)
	}
	info, err := s.engine.Identify(ctx, data)
	if err != nil {
		return core.ImageInfo{}, apperrors.Normalize("transform.identify", err)
	}
	return info, nil
}

func (s *Service) notifyBefore(ctx context.Context, op, uri string) {
	for _, h := range s.hooks {
		h.BeforeOp(ctx, op, uri)
	}
}

func (s *Service) notifyAfter(ctx context.Context, op string, res *core.Result, d time.Duration, err error) {
	for _, h := range s.hooks {
		h.AfterOp(ctx, op, res, d, err)
	}
}

func filename(opts *Options, format core.Format) string {
	if opts != nil && opts.Filename != "" {
		return opts.Filename
	}
	return fmt.Sprintf("%s.%s", ulid.Make().String(), imageutil.Extension(format))
}
