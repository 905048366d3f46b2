// Package errors defines the structured error taxonomy used throughout the
// module.  Every service boundary funnels failures through Normalize so
// callers always see a single consistent shape.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies error types for targeted handling and monitoring.
type Code string

const (
	CodeInvalidURI         Code = "INVALID_URI"
	CodeInvalidDimensions  Code = "INVALID_DIMENSIONS"
	CodeInvalidQuality     Code = "INVALID_QUALITY"
	CodeManipulationFailed Code = "MANIPULATION_FAILED"
	CodeConversionFailed   Code = "CONVERSION_FAILED"
	CodeStorageFailed      Code = "STORAGE_FAILED"
	CodeValidation         Code = "VALIDATION_ERROR"
)

// ImageError is the structured error type used throughout the module.
type ImageError struct {
	Code    Code
	Op      string // operation name, e.g. "transform.resize"
	Message string
	Err     error
}

func (e *ImageError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Op, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ImageError) Unwrap() error { return e.Err }

// New creates an ImageError with the given code and message.
func New(code Code, op, message string) *ImageError {
	return &ImageError{Code: code, Op: op, Message: message}
}

// Newf creates an ImageError with a formatted message.
func Newf(code Code, op, format string, args ...interface{}) *ImageError {
	return &ImageError{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and operation context.
// Returns nil when err is nil.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ImageError{Code: code, Op: op, Message: err.Error(), Err: err}
}

// Normalize converts an arbitrary error into an *ImageError.  Values that
// already carry an ImageError pass through unchanged; anything else is
// wrapped as MANIPULATION_FAILED with the original message preserved.
func Normalize(op string, err error) *ImageError {
	if err == nil {
		return nil
	}
	var ie *ImageError
	if errors.As(err, &ie) {
		return ie
	}
	msg := err.Error()
	if msg == "" {
		msg = "image operation failed"
	}
	return &ImageError{Code: CodeManipulationFailed, Op: op, Message: msg, Err: err}
}

// CodeOf returns the code carried by err, or the empty Code when err is not
// an ImageError.
func CodeOf(err error) Code {
	var ie *ImageError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// IsValidation reports whether err is a locally-detectable input failure
// (one that never reached the engine or storage layer).
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case CodeInvalidURI, CodeInvalidDimensions, CodeInvalidQuality, CodeValidation:
		return true
	}
	return false
}

// Sentinel errors for common failure modes.
var (
	ErrEmptyInput        = errors.New("empty input")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
)
