// Package convert implements compression, format conversion, and thumbnail
// generation on top of the transform service.
package convert

import (
	"context"

	"github.com/pixelforge/imagekit/config"
	"github.com/pixelforge/imagekit/core"
	apperrors "github.com/pixelforge/imagekit/errors"
	"github.com/pixelforge/imagekit/transform"
	"github.com/pixelforge/imagekit/validate"
)

// Service performs encoding-only operations.  Failures past validation
// surface as CONVERSION_FAILED.
type Service struct {
	transforms *transform.Service
	cfg        config.Config
}

// New creates a conversion Service on top of the transform service.
func New(transforms *transform.Service, cfg config.Config) *Service {
	return &Service{transforms: transforms, cfg: cfg}
}

// Compress re-encodes the image at the given quality without geometric
// changes.  quality <= 0 selects the configured default.
func (s *Service) Compress(ctx context.Context, uri string, quality float64) (*core.Result, error) {
	if err := validate.URI(uri); err != nil {
		return nil, err
	}
	if quality <= 0 {
		quality = s.cfg.DefaultQuality
	}
	if err := validate.Quality(quality); err != nil {
		return nil, err
	}

	res, err := s.transforms.Manipulate(ctx, uri, core.Action{}, &transform.Options{Compress: &quality})
	if err != nil {
		return nil, recode(err, "convert.compress")
	}
	return res, nil
}

// ConvertFormat re-encodes the image in the target format.  Unrecognized
// formats fall back to JPEG.  quality <= 0 selects the configured default.
func (s *Service) ConvertFormat(ctx context.Context, uri string, format core.Format, quality float64) (*core.Result, error) {
	if err := validate.URI(uri); err != nil {
		return nil, err
	}
	opts := &transform.Options{Format: mapFormat(format)}
	if quality > 0 {
		if err := validate.Quality(quality); err != nil {
			return nil, err
		}
		opts.Compress = &quality
	}

	res, err := s.transforms.Manipulate(ctx, uri, core.Action{}, opts)
	if err != nil {
		return nil, recode(err, "convert.format")
	}
	return res, nil
}

// Thumbnail produces a fit-to-box thumbnail.  size <= 0 selects the
// configured default; the compression default is the thumbnail quality.
func (s *Service) Thumbnail(ctx context.Context, uri string, size int, opts *transform.Options) (*core.Result, error) {
	if err := validate.URI(uri); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = s.cfg.ThumbnailSize
	}

	resolved := transform.Options{}
	if opts != nil {
		resolved = *opts
	}
	if resolved.Compress == nil {
		q := s.cfg.ThumbnailQuality
		resolved.Compress = &q
	}

	res, err := s.transforms.ResizeToFit(ctx, uri, size, size, &resolved)
	if err != nil {
		return nil, recode(err, "convert.thumbnail")
	}
	return res, nil
}

// recode relabels engine failures as CONVERSION_FAILED while letting
// validation codes pass through untouched.
func recode(err error, op string) error {
	if apperrors.IsValidation(err) {
		return err
	}
	ie := apperrors.Normalize(op, err)
	if ie.Code == apperrors.CodeManipulationFailed {
		return &apperrors.ImageError{
			Code:    apperrors.CodeConversionFailed,
			Op:      op,
			Message: ie.Message,
			Err:     ie.Err,
		}
	}
	return ie
}

func mapFormat(f core.Format) core.Format {
	switch f {
	case core.FormatPNG, core.FormatWebP:
		return f
	default:
		return core.FormatJPEG
	}
}
