// Package batch runs ordered lists of image operations with bounded,
// chunked concurrency: up to `concurrency` items run in parallel, the whole
// chunk is joined before the next begins, and item failures never abort the
// run.
package batch

import (
	"context"
	"sync"

	"github.com/pixelforge/imagekit/config"
	"github.com/pixelforge/imagekit/convert"
	"github.com/pixelforge/imagekit/core"
	apperrors "github.com/pixelforge/imagekit/errors"
	"github.com/pixelforge/imagekit/transform"
)

// OperationType selects which service operation a batch item performs.
type OperationType string

const (
	OpResize    OperationType = "resize"
	OpCrop      OperationType = "crop"
	OpRotate    OperationType = "rotate"
	OpFlip      OperationType = "flip"
	OpCompress  OperationType = "compress"
	OpConvert   OperationType = "convert"
	OpThumbnail OperationType = "thumbnail"
)

// Params carries the operation-specific parameters; only the fields relevant
// to the operation type are read.
type Params struct {
	Width   int
	Height  int
	Area    core.Rect
	Degrees float64
	Flip    core.FlipSpec
	Quality float64
	Format  core.Format
	Size    int
}

// Operation is one unit of batch work.
type Operation struct {
	URI     string
	Type    OperationType
	Params  Params
	Options *transform.Options
}

// ItemResult records the outcome of a single operation.
type ItemResult struct {
	URI    string
	Result *core.Result
	Err    error
}

// Summary partitions the batch into successes and failures.
type Summary struct {
	Successful     []ItemResult
	Failed         []ItemResult
	TotalProcessed int
	SuccessCount   int
	FailureCount   int
}

// Options controls batch execution.
type Options struct {
	// Concurrency is the chunk size; defaults to the configured value (3).
	Concurrency int
	// OnProgress fires after every item settles, success or failure.
	OnProgress func(completed, total int, uri string)
	// OnError fires once per failed item.
	OnError func(uri string, err error)
}

// Service executes batches against the transform and conversion services.
type Service struct {
	transforms *transform.Service
	converts   *convert.Service
	cfg        config.Config
	logger     core.Logger
}

// New creates a batch Service.
func New(transforms *transform.Service, converts *convert.Service, cfg config.Config) *Service {
	return &Service{transforms: transforms, converts: converts, cfg: cfg}
}

// SetLogger attaches a structured logger.
func (s *Service) SetLogger(l core.Logger) { s.logger = l }

// Process runs every operation and returns a Summary.  Items in one chunk
// run concurrently; the next chunk starts only after every member of the
// previous one has settled.  There is no cross-chunk overlap.
func (s *Service) Process(ctx context.Context, ops []Operation, o Options) (*Summary, error) {
	concurrency := o.Concurrency
	if concurrency <= 0 {
		concurrency = s.cfg.BatchConcurrency
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	total := len(ops)
	results := make([]ItemResult, total)

	var (
		mu        sync.Mutex
		completed int
	)
	settle := func(idx int, res ItemResult) {
		results[idx] = res

		mu.Lock()
		completed++
		done := completed
		mu.Unlock()

		if res.Err != nil && o.OnError != nil {
			o.OnError(res.URI, res.Err)
		}
		if o.OnProgress != nil {
			o.OnProgress(done, total, res.URI)
		}
	}

	for start := 0; start < total; start += concurrency {
		end := start + concurrency
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int, op Operation) {
				defer wg.Done()
				res, err := s.dispatch(ctx, op)
				settle(idx, ItemResult{URI: op.URI, Result: res, Err: err})
			}(i, ops[i])
		}
		wg.Wait()
	}

	summary := &Summary{TotalProcessed: total}
	for _, r := range results {
		if r.Err != nil {
			summary.Failed = append(summary.Failed, r)
			summary.FailureCount++
		} else {
			summary.Successful = append(summary.Successful, r)
			summary.SuccessCount++
		}
	}
	if s.logger != nil {
		s.logger.Info("batch.done",
			"total", summary.TotalProcessed,
			"succeeded", summary.SuccessCount,
			"failed", summary.FailureCount,
		)
	}
	return summary, nil
}

func (s *Service) dispatch(ctx context.Context, op Operation) (*core.Result, error) {
	switch op.Type {
	case OpResize:
		return s.transforms.Resize(ctx, op.URI, op.Params.Width, op.Params.Height, op.Options)
	case OpCrop:
		return s.transforms.Crop(ctx, op.URI, op.Params.Area, op.Options)
	case OpRotate:
		return s.transforms.Rotate(ctx, op.URI, op.Params.Degrees, op.Options)
	case OpFlip:
		return s.transforms.Flip(ctx, op.URI, op.Params.Flip, op.Options)
	case OpCompress:
		return s.converts.Compress(ctx, op.URI, op.Params.Quality)
	case OpConvert:
		return s.converts.ConvertFormat(ctx, op.URI, op.Params.Format, op.Params.Quality)
	case OpThumbnail:
		return s.converts.Thumbnail(ctx, op.URI, op.Params.Size, op.Options)
	default:
		return nil, apperrors.Newf(apperrors.CodeValidation, "batch.dispatch",
			"unknown operation type %q", op.Type)
	}
}
