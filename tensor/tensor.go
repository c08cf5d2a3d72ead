// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/ndbuf/internal/tensor"
)

// DataType is the element type of a view.
type DataType = tensor.DataType

// Data type constants.
const (
	Bool     DataType = tensor.Bool
	Int8     DataType = tensor.Int8
	Int16    DataType = tensor.Int16
	Int32    DataType = tensor.Int32
	Int64    DataType = tensor.Int64
	Uint8    DataType = tensor.Uint8
	Float16  DataType = tensor.Float16
	Float32  DataType = tensor.Float32
	Float64  DataType = tensor.Float64
	BFloat16 DataType = tensor.BFloat16
)

// Shape represents the dimensions of a view.
// Example: Shape{2, 3, 4} represents a 3D view with dimensions 2×3×4.
type Shape = tensor.Shape

// Storage is a reference-counted byte buffer shared by views.
type Storage = tensor.Storage

// View is a typed, strided window over a Storage.
type View = tensor.View

// Error types.
type (
	// FormatError reports an unknown format tag.
	FormatError = tensor.FormatError

	// ExtractionError reports input data that cannot be encoded in a format.
	ExtractionError = tensor.ExtractionError

	// ShapeError reports a layout that does not fit its storage.
	ShapeError = tensor.ShapeError
)

// Sentinel errors.
var (
	ErrUnsupportedFormat = tensor.ErrUnsupportedFormat
	ErrExtraction        = tensor.ErrExtraction
	ErrShapeMismatch     = tensor.ErrShapeMismatch
	ErrReleased          = tensor.ErrReleased
)

// DefaultPreviewElements is the number of elements View.String shows.
const DefaultPreviewElements = tensor.DefaultPreviewElements

// DataTypes returns every supported data type.
func DataTypes() []DataType {
	return tensor.DataTypes()
}

// FromTag returns the data type for a one-character format tag.
func FromTag(tag byte) (DataType, error) {
	return tensor.FromTag(tag)
}

// ParseFormat returns the data type named by a format string such as "f".
func ParseFormat(format string) (DataType, error) {
	return tensor.ParseFormat(format)
}

// FromBytes returns a storage holding a copy of src.
func FromBytes(src []byte) *Storage {
	return tensor.FromBytes(src)
}

// NewView creates a view over s with explicit byte strides.
func NewView(s *Storage, shape Shape, strides []int, dtype DataType) (*View, error) {
	return tensor.NewView(s, shape, strides, dtype)
}

// NewContiguous creates a row-major view over s.
func NewContiguous(s *Storage, shape Shape, dtype DataType) (*View, error) {
	return tensor.NewContiguous(s, shape, dtype)
}

// DecodeElement decodes the leading element of b as dtype.
func DecodeElement(dtype DataType, b []byte) (any, error) {
	return tensor.DecodeElement(dtype, b)
}
