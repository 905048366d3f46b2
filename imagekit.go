// Package imagekit is a type-safe facade over native image manipulation:
// transforms, format conversion, batch processing, an editor state engine,
// and a gallery viewer controller.
package imagekit

import (
	"context"

	"github.com/pixelforge/imagekit/batch"
	"github.com/pixelforge/imagekit/config"
	"github.com/pixelforge/imagekit/convert"
	"github.com/pixelforge/imagekit/core"
	"github.com/pixelforge/imagekit/editor"
	"github.com/pixelforge/imagekit/engine"
	"github.com/pixelforge/imagekit/gallery"
	"github.com/pixelforge/imagekit/source"
	"github.com/pixelforge/imagekit/storage"
	"github.com/pixelforge/imagekit/transform"
)

// Re-export Format constants for convenience.
const (
	JPEG = core.FormatJPEG
	PNG  = core.FormatPNG
	WebP = core.FormatWebP
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Option customizes the Client's collaborators at construction time.
type Option func(*Client)

// WithEngine replaces the default pure-Go engine (e.g. with the vips one).
func WithEngine(e core.Engine) Option { return func(c *Client) { c.engine = e } }

// WithStorage replaces the default local filesystem storage.
func WithStorage(s core.Storage) Option { return func(c *Client) { c.store = s } }

// WithResolver replaces the default source resolver.
func WithResolver(r *source.Resolver) Option { return func(c *Client) { c.resolver = r } }

// WithLogger attaches a structured logger.
func WithLogger(l core.Logger) Option { return func(c *Client) { c.logger = l } }

// WithHook registers an observer for operation events.
func WithHook(h core.Hook) Option { return func(c *Client) { c.hooks = append(c.hooks, h) } }

// Client is the primary entry point.  It is safe for concurrent use except
// for the editor and viewer objects it creates, which are single-writer.
type Client struct {
	cfg      config.Config
	engine   core.Engine
	resolver *source.Resolver
	store    core.Storage
	logger   core.Logger
	hooks    []core.Hook

	transforms *transform.Service
	converts   *convert.Service
	batches    *batch.Service
}

// New creates a fully wired Client.  With no options it uses the pure-Go
// engine and local filesystem storage under cfg.OutputDir.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.engine == nil {
		c.engine = engine.New()
	}
	if c.resolver == nil {
		c.resolver = source.NewResolver(cfg.MaxSourceBytes)
	}
	if c.store == nil {
		local, err := storage.NewLocal(cfg.OutputDir, cfg.DocumentsDir)
		if err != nil {
			return nil, err
		}
		c.store = local
	}

	c.transforms = transform.New(c.engine, c.resolver, c.store, cfg)
	if c.logger != nil {
		c.transforms.SetLogger(c.logger)
	}
	for _, h := range c.hooks {
		c.transforms.AddHook(h)
	}

	c.converts = convert.New(c.transforms, cfg)
	c.batches = batch.New(c.transforms, c.converts, cfg)
	if c.logger != nil {
		c.batches.SetLogger(c.logger)
	}
	return c, nil
}

// RegisterScheme installs a resolver handler for a host-specific URI scheme
// such as "content".
func (c *Client) RegisterScheme(scheme string, h source.Handler) {
	c.resolver.Register(scheme, h)
}

// ── transforms ────────────────────────────────────────────────────────────────

// Resize scales the image behind uri.  A zero axis preserves aspect ratio.
func (c *Client) Resize(ctx context.Context, uri string, width, height int, opts *transform.Options) (*core.Result, error) {
	return c.transforms.Resize(ctx, uri, width, height, opts)
}

// Crop extracts the given area from the image behind uri.
func (c *Client) Crop(ctx context.Context, uri string, area core.Rect, opts *transform.Options) (*core.Result, error) {
	return c.transforms.Crop(ctx, uri, area, opts)
}

// Rotate turns the image by degrees, positive clockwise.
func (c *Client) Rotate(ctx context.Context, uri string, degrees float64, opts *transform.Options) (*core.Result, error) {
	return c.transforms.Rotate(ctx, uri, degrees, opts)
}

// Flip mirrors the image on the requested axes.
func (c *Client) Flip(ctx context.Context, uri string, flip core.FlipSpec, opts *transform.Options) (*core.Result, error) {
	return c.transforms.Flip(ctx, uri, flip, opts)
}

// Manipulate applies resize, crop, rotate, and flip in that order within one
// engine call.
func (c *Client) Manipulate(ctx context.Context, uri string, action core.Action, opts *transform.Options) (*core.Result, error) {
	return c.transforms.Manipulate(ctx, uri, action, opts)
}

// ResizeToFit scales the image down to fit within maxWidth×maxHeight.
func (c *Client) ResizeToFit(ctx context.Context, uri string, maxWidth, maxHeight int, opts *transform.Options) (*core.Result, error) {
	return c.transforms.ResizeToFit(ctx, uri, maxWidth, maxHeight, opts)
}

// CropToSquare crops the image to its centered largest square.
func (c *Client) CropToSquare(ctx context.Context, uri string, opts *transform.Options) (*core.Result, error) {
	return c.transforms.CropToSquare(ctx, uri, opts)
}

// Identify returns dimensions and format without transforming.
func (c *Client) Identify(ctx context.Context, uri string) (core.ImageInfo, error) {
	return c.transforms.Identify(ctx, uri)
}

// ── conversion ────────────────────────────────────────────────────────────────

// Compress re-encodes at the given quality; quality <= 0 uses the default.
func (c *Client) Compress(ctx context.Context, uri string, quality float64) (*core.Result, error) {
	return c.converts.Compress(ctx, uri, quality)
}

// ConvertFormat re-encodes in the target format.
func (c *Client) ConvertFormat(ctx context.Context, uri string, format core.Format, quality float64) (*core.Result, error) {
	return c.converts.ConvertFormat(ctx, uri, format, quality)
}

// Thumbnail produces a fit-to-box thumbnail; size <= 0 uses the default.
func (c *Client) Thumbnail(ctx context.Context, uri string, size int, opts *transform.Options) (*core.Result, error) {
	return c.converts.Thumbnail(ctx, uri, size, opts)
}

// ── batch ─────────────────────────────────────────────────────────────────────

// ProcessBatch runs the operations with bounded concurrency and returns a
// per-item summary.  Item failures never abort the run.
func (c *Client) ProcessBatch(ctx context.Context, ops []batch.Operation, opts batch.Options) (*batch.Summary, error) {
	return c.batches.Process(ctx, ops, opts)
}

// ── persistence ───────────────────────────────────────────────────────────────

// SaveToDocuments copies a processed image into the documents directory.
func (c *Client) SaveToDocuments(ctx context.Context, uri, filename string) (string, error) {
	return c.store.CopyToDocuments(ctx, uri, filename)
}

// ── stateful components ───────────────────────────────────────────────────────

// NewEditor creates an editor State for a surface of the given size, with
// the configured history limit.
func (c *Client) NewEditor(width, height int) *editor.State {
	return editor.NewState(width, height, c.cfg.HistoryLimit)
}

// NewViewer creates a closed gallery viewer.
func (c *Client) NewViewer() *gallery.Viewer {
	return gallery.NewViewer()
}
