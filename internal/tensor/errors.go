package tensor

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported data format")
	ErrExtraction        = errors.New("cannot extract elements")
	ErrShapeMismatch     = errors.New("shape and strides do not fit storage")
	ErrReleased          = errors.New("view has been released")
)

// FormatError reports a format tag outside the supported set.
type FormatError struct {
	Tag string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported data format %q, expected one of ?bhiqBefdv", e.Tag)
}

// Unwrap returns ErrUnsupportedFormat.
func (e *FormatError) Unwrap() error { return ErrUnsupportedFormat }

// ExtractionError reports input elements that could not be read as the
// requested format.
type ExtractionError struct {
	Format string // Requested format tag
	Got    string // Go type of the supplied value
	Reason string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot extract %s as format %q: %s", e.Got, e.Format, e.Reason)
	}
	return fmt.Sprintf("cannot extract %s as format %q", e.Got, e.Format)
}

// Unwrap returns ErrExtraction.
func (e *ExtractionError) Unwrap() error { return ErrExtraction }

// ShapeError describes a shape/strides pair that does not fit a storage.
type ShapeError struct {
	Shape      []int
	Strides    []int
	ItemSize   int
	StorageLen int
	Reason     string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape %v strides %v (itemsize %d) over %d bytes: %s",
		e.Shape, e.Strides, e.ItemSize, e.StorageLen, e.Reason)
}

// Unwrap returns ErrShapeMismatch.
func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }
