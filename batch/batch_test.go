package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pixelforge/imagekit/batch"
	"github.com/pixelforge/imagekit/config"
	"github.com/pixelforge/imagekit/convert"
	"github.com/pixelforge/imagekit/core"
	apperrors "github.com/pixelforge/imagekit/errors"
	"github.com/pixelforge/imagekit/source"
	"github.com/pixelforge/imagekit/transform"
)

// ── Test fakes ────────────────────────────────────────────────────────────────

// fakeEngine tracks concurrent calls so chunking is observable.
type fakeEngine struct {
	inFlight    int64
	maxInFlight int64
	calls       int64
	failOn      string // substring of the data payload that triggers failure
}

func (f *fakeEngine) Transform(_ context.Context, data []byte, _ []core.Action, opts core.SaveOptions) (*core.Output, error) {
	cur := atomic.AddInt64(&f.inFlight, 1)
	defer atomic.AddInt64(&f.inFlight, -1)
	for {
		max := atomic.LoadInt64(&f.maxInFlight)
		if cur <= max || atomic.CompareAndSwapInt64(&f.maxInFlight, max, cur) {
			break
		}
	}
	atomic.AddInt64(&f.calls, 1)

	if f.failOn != "" && string(data) == f.failOn {
		return nil, apperrors.New(apperrors.CodeManipulationFailed, "engine.transform", "forced failure")
	}
	return &core.Output{Data: data, Info: core.ImageInfo{Width: 10, Height: 10, Format: opts.Format}}, nil
}

func (f *fakeEngine) Identify(context.Context, []byte) (core.ImageInfo, error) {
	return core.ImageInfo{Width: 100, Height: 100, Format: core.FormatJPEG}, nil
}

type memStore struct{}

func (memStore) Write(_ context.Context, name string, _ []byte) (string, error) {
	return "file:///mem/" + name, nil
}

func (memStore) CopyToDocuments(_ context.Context, _, filename string) (string, error) {
	return "file:///docs/" + filename, nil
}

// ── Test helpers ──────────────────────────────────────────────────────────────

func fixtureURI(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return "file://" + path
}

func newService(t *testing.T, eng *fakeEngine) *batch.Service {
	t.Helper()
	cfg := config.Default()
	transforms := transform.New(eng, source.NewResolver(0), memStore{}, cfg)
	converts := convert.New(transforms, cfg)
	return batch.New(transforms, converts, cfg)
}

func resizeOp(uri string) batch.Operation {
	return batch.Operation{URI: uri, Type: batch.OpResize, Params: batch.Params{Width: 100}}
}

// ── Unit tests ────────────────────────────────────────────────────────────────

func TestProcess_AllOperationTypes(t *testing.T) {
	eng := &fakeEngine{}
	svc := newService(t, eng)
	dir := t.TempDir()
	uri := fixtureURI(t, dir, "a.jpg", "payload")

	ops := []batch.Operation{
		{URI: uri, Type: batch.OpResize, Params: batch.Params{Width: 100}},
		{URI: uri, Type: batch.OpCrop, Params: batch.Params{Area: core.Rect{Width: 10, Height: 10}}},
		{URI: uri, Type: batch.OpRotate, Params: batch.Params{Degrees: 90}},
		{URI: uri, Type: batch.OpFlip, Params: batch.Params{Flip: core.FlipSpec{Horizontal: true}}},
		{URI: uri, Type: batch.OpCompress, Params: batch.Params{Quality: 0.5}},
		{URI: uri, Type: batch.OpConvert, Params: batch.Params{Format: core.FormatPNG}},
		{URI: uri, Type: batch.OpThumbnail, Params: batch.Params{Size: 64}},
	}

	summary, err := svc.Process(context.Background(), ops, batch.Options{Concurrency: 3})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if summary.TotalProcessed != 7 {
		t.Errorf("total: got %d, want 7", summary.TotalProcessed)
	}
	if summary.SuccessCount != 7 || summary.FailureCount != 0 {
		t.Errorf("counts: %d ok / %d failed", summary.SuccessCount, summary.FailureCount)
	}
	if got := summary.SuccessCount + summary.FailureCount; got != summary.TotalProcessed {
		t.Errorf("counts do not partition the batch: %d", got)
	}
}

func TestProcess_BoundedConcurrency(t *testing.T) {
	eng := &fakeEngine{}
	svc := newService(t, eng)
	dir := t.TempDir()

	ops := make([]batch.Operation, 9)
	for i := range ops {
		ops[i] = resizeOp(fixtureURI(t, dir, string(rune('a'+i))+".jpg", "x"))
	}

	if _, err := svc.Process(context.Background(), ops, batch.Options{Concurrency: 3}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if max := atomic.LoadInt64(&eng.maxInFlight); max > 3 {
		t.Errorf("max in-flight engine calls: got %d, want <= 3", max)
	}
	if calls := atomic.LoadInt64(&eng.calls); calls != 9 {
		t.Errorf("engine calls: got %d, want 9", calls)
	}
}

func TestProcess_ItemFailuresDoNotAbort(t *testing.T) {
	eng := &fakeEngine{failOn: "poison"}
	svc := newService(t, eng)
	dir := t.TempDir()

	good := fixtureURI(t, dir, "good.jpg", "fine")
	bad := fixtureURI(t, dir, "bad.jpg", "poison")

	var (
		mu       sync.Mutex
		errURIs  []string
		progress int
	)
	summary, err := svc.Process(context.Background(), []batch.Operation{
		resizeOp(good), resizeOp(bad), resizeOp(good),
	}, batch.Options{
		Concurrency: 2,
		OnError: func(uri string, _ error) {
			mu.Lock()
			errURIs = append(errURIs, uri)
			mu.Unlock()
		},
		OnProgress: func(completed, total int, _ string) {
			mu.Lock()
			progress++
			mu.Unlock()
			if total != 3 {
				t.Errorf("progress total: got %d, want 3", total)
			}
		},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if summary.SuccessCount != 2 || summary.FailureCount != 1 {
		t.Errorf("counts: %d ok / %d failed", summary.SuccessCount, summary.FailureCount)
	}
	if len(summary.Failed) != 1 || summary.Failed[0].URI != bad {
		t.Errorf("failed items: %+v", summary.Failed)
	}
	if !apperrors.IsCode(summary.Failed[0].Err, apperrors.CodeManipulationFailed) {
		t.Errorf("failure code: got %v", summary.Failed[0].Err)
	}
	if len(errURIs) != 1 || errURIs[0] != bad {
		t.Errorf("OnError calls: %v", errURIs)
	}
	if progress != 3 {
		t.Errorf("OnProgress calls: got %d, want 3 (fires for failures too)", progress)
	}
}

func TestProcess_UnknownOperationType(t *testing.T) {
	eng := &fakeEngine{}
	svc := newService(t, eng)
	uri := fixtureURI(t, t.TempDir(), "a.jpg", "x")

	summary, err := svc.Process(context.Background(), []batch.Operation{
		{URI: uri, Type: "sharpen"},
	}, batch.Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if summary.FailureCount != 1 {
		t.Fatalf("failures: got %d, want 1", summary.FailureCount)
	}
	if !apperrors.IsCode(summary.Failed[0].Err, apperrors.CodeValidation) {
		t.Errorf("code: got %v, want VALIDATION_ERROR", summary.Failed[0].Err)
	}
}

func TestProcess_EmptyBatch(t *testing.T) {
	svc := newService(t, &fakeEngine{})
	summary, err := svc.Process(context.Background(), nil, batch.Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if summary.TotalProcessed != 0 || summary.SuccessCount != 0 || summary.FailureCount != 0 {
		t.Errorf("summary: %+v", summary)
	}
}

func TestProcess_DefaultsConcurrencyFromConfig(t *testing.T) {
	eng := &fakeEngine{}
	svc := newService(t, eng)
	dir := t.TempDir()

	ops := make([]batch.Operation, 6)
	for i := range ops {
		ops[i] = resizeOp(fixtureURI(t, dir, string(rune('a'+i))+".jpg", "x"))
	}
	if _, err := svc.Process(context.Background(), ops, batch.Options{}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if max := atomic.LoadInt64(&eng.maxInFlight); max > 3 {
		t.Errorf("max in-flight: got %d, want <= configured 3", max)
	}
}
