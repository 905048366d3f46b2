// Package storage provides filesystem persistence for processed images.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	apperrors "github.com/pixelforge/imagekit/errors"
)

// Local stores processed images on the local filesystem and copies saved
// results into a documents directory.
type Local struct {
	outputDir    string
	documentsDir string
	permissions  os.FileMode
}

// NewLocal creates a Local storage rooted at outputDir, with document copies
// placed under documentsDir.
func NewLocal(outputDir, documentsDir string) (*Local, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: mkdir %s: %w", outputDir, err)
	}
	if err := os.MkdirAll(documentsDir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: mkdir %s: %w", documentsDir, err)
	}
	return &Local{outputDir: outputDir, documentsDir: documentsDir, permissions: 0o644}, nil
}

// Write stores data under name and returns its file:// URI.  A ULID-based
// name is generated when name is empty.
func (l *Local) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageFailed, "local.write", err)
	}
	if name == "" {
		name = ulid.Make().String()
	}
	path := filepath.Join(l.outputDir, filepath.Clean(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageFailed, "local.write.mkdir", err)
	}
	if err := os.WriteFile(path, data, l.permissions); err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageFailed, "local.write", err)
	}
	return "file://" + path, nil
}

// CopyToDocuments copies the file behind uri into the documents directory
// and returns the new file:// URI.  Only file:// sources are copyable.
func (l *Local) CopyToDocuments(ctx context.Context, uri, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageFailed, "local.copy", err)
	}
	if !strings.HasPrefix(uri, "file://") {
		return "", apperrors.Newf(apperrors.CodeStorageFailed, "local.copy",
			"cannot copy non-file URI %q to documents", uri)
	}
	src := strings.TrimPrefix(uri, "file://")

	data, err := os.ReadFile(src)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageFailed, "local.copy.read", err)
	}

	if filename == "" {
		filename = filepath.Base(src)
	}
	dst := filepath.Join(l.documentsDir, filepath.Clean(filename))
	if err := os.WriteFile(dst, data, l.permissions); err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageFailed, "local.copy.write", err)
	}
	return "file://" + dst, nil
}
