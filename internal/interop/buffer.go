// Package interop is the host-facing surface of ndbuf.
//
// A foreign runtime constructs Buffer objects from its own values, asks
// them for buffer descriptors and reshapes them. Registration of the
// exported types with the host is explicit; see Module.
package interop

import (
	"fmt"

	"github.com/born-ml/ndbuf/internal/buffer"
	"github.com/born-ml/ndbuf/internal/tensor"
)

// Buffer owns a view over storage built from host data.
type Buffer struct {
	view *tensor.View
}

// Construct copies data into a new storage and wraps it in a Buffer
// with the given shape, byte strides and one-character format. Nil
// strides mean row-major.
//
// Errors: tensor.ErrUnsupportedFormat for an unknown format,
// tensor.ErrExtraction when data cannot be read as that format, and
// tensor.ErrShapeMismatch when shape/strides do not fit the data.
func Construct(data any, shape, strides []int, format string) (*Buffer, error) {
	dtype, err := tensor.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	raw, err := extract(data, dtype)
	if err != nil {
		return nil, err
	}

	if strides == nil {
		strides = tensor.Shape(shape).ContiguousStrides(dtype.Size())
	}
	view, err := tensor.NewView(tensor.FromBytes(raw), shape, strides, dtype)
	if err != nil {
		return nil, err
	}
	return &Buffer{view: view}, nil
}

// Wrap adopts a share of an existing view.
func Wrap(v *tensor.View) *Buffer {
	return &Buffer{view: v.Clone()}
}

// View returns the underlying view.
func (b *Buffer) View() *tensor.View {
	return b.view
}

// String renders the buffer like the host's repr.
func (b *Buffer) String() string {
	v := b.view
	if v.Released() {
		return "Buffer(released)"
	}
	return fmt.Sprintf("Buffer(shape=%v, strides=%v, format=%q, data=%s...)",
		[]int(v.Shape()), v.Strides(), string(v.DType().Format()), v.Preview(tensor.DefaultPreviewElements))
}

// Reshape replaces shape and strides without moving data.
func (b *Buffer) Reshape(shape, strides []int) error {
	return b.view.Reshape(shape, strides)
}

// GetBuffer exports the buffer for a consumer. The descriptor must be
// released when the consumer lets go of it.
func (b *Buffer) GetBuffer(flags buffer.Flags) (*buffer.Descriptor, error) {
	return buffer.Export(b.view, flags)
}

// Release drops the buffer's storage share. Live descriptors keep the
// storage alive until they are released.
func (b *Buffer) Release() {
	b.view.Release()
}
