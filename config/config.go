// Package config holds the top-level configuration.  All fields have safe
// defaults so callers can start with Default() and override only what they
// need.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/pixelforge/imagekit/core"
)

// Config is the top-level configuration struct.
type Config struct {
	// Default encode quality in [0,1], applied when an operation does not
	// override it.
	DefaultQuality float64 `validate:"gt=0,lte=1"`

	// Thumbnail defaults.
	ThumbnailQuality float64 `validate:"gt=0,lte=1"`
	ThumbnailSize    int     `validate:"gt=0"`

	// Output format used when none is requested.
	DefaultFormat core.Format `validate:"oneof=jpeg png webp"`

	// Batch processing: operations per concurrent chunk.
	BatchConcurrency int `validate:"gte=1"`

	// Editor history ring size.
	HistoryLimit int `validate:"gte=1"`

	// Maximum bytes accepted when resolving remote or data URIs. 0 = no limit.
	MaxSourceBytes int64 `validate:"gte=0"`

	// Directories for stored outputs and document copies.
	OutputDir    string `validate:"required"`
	DocumentsDir string `validate:"required"`

	LogLevel string `validate:"oneof=debug info warn error"`
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	base := filepath.Join(os.TempDir(), "imagekit")
	return Config{
		DefaultQuality:   0.8,
		ThumbnailQuality: 0.7,
		ThumbnailSize:    200,
		DefaultFormat:    core.FormatJPEG,
		BatchConcurrency: 3,
		HistoryLimit:     50,
		MaxSourceBytes:   32 << 20,
		OutputDir:        base,
		DocumentsDir:     filepath.Join(base, "documents"),
		LogLevel:         "info",
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	return validator.New().Struct(c)
}

// FromEnv returns Default() overridden by IMAGEKIT_* environment variables.
// A .env file in the working directory is loaded first when present.
func FromEnv() (Config, error) {
	_ = godotenv.Load() // missing .env is not an error

	cfg := Default()
	if v := os.Getenv("IMAGEKIT_DEFAULT_QUALITY"); v != "" {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, err
		}
		cfg.DefaultQuality = q
	}
	if v := os.Getenv("IMAGEKIT_THUMBNAIL_QUALITY"); v != "" {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, err
		}
		cfg.ThumbnailQuality = q
	}
	if v := os.Getenv("IMAGEKIT_THUMBNAIL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, err
		}
		cfg.ThumbnailSize = n
	}
	if v := os.Getenv("IMAGEKIT_DEFAULT_FORMAT"); v != "" {
		cfg.DefaultFormat = core.Format(v)
	}
	if v := os.Getenv("IMAGEKIT_BATCH_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, err
		}
		cfg.BatchConcurrency = n
	}
	if v := os.Getenv("IMAGEKIT_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, err
		}
		cfg.HistoryLimit = n
	}
	if v := os.Getenv("IMAGEKIT_MAX_SOURCE_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, err
		}
		cfg.MaxSourceBytes = n
	}
	if v := os.Getenv("IMAGEKIT_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("IMAGEKIT_DOCUMENTS_DIR"); v != "" {
		cfg.DocumentsDir = v
	}
	if v := os.Getenv("IMAGEKIT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, Validate(cfg)
}
