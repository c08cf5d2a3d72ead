// Package buffer exports tensor views as zero-copy buffer descriptors.
//
// A Descriptor borrows the view's storage: it holds a storage reference
// and pins the data, shape, strides and format arrays so that a foreign
// consumer can read and write them in place. Callers must Release the
// descriptor when the consumer is done; a finalizer is only a safety net.
package buffer

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/born-ml/ndbuf/internal/tensor"
)

// ErrNotContiguous is returned when a consumer cannot handle strides
// but the view is not row-major.
var ErrNotContiguous = errors.New("view is not C-contiguous")

// Descriptor is a buffer-protocol view of a tensor.View.
//
// Field meanings follow the native buffer protocol. The descriptor stays
// valid until Release; reshaping the originating view afterwards does not
// affect it because Shape and Strides are snapshots.
type Descriptor struct {
	Buf        unsafe.Pointer // First byte of storage, nil when empty
	Len        int            // product(Shape) * ItemSize
	ItemSize   int            // Bytes per element
	ReadOnly   bool           // Always false
	NDim       int            // len(Shape)
	Format     *byte          // NUL-terminated format tag
	Shape      []int          // Extents
	Strides    []int          // Byte strides
	SubOffsets unsafe.Pointer // Always nil

	flags   Flags
	dtype   tensor.DataType
	storage *tensor.Storage
	span    int // Bytes addressable from Buf
	format  []byte
	pinner  *runtime.Pinner
	raw     *CBuffer
}

// Export produces a descriptor for v.
//
// The view must not be released. Unless flags include FlagStrides, the
// view must be C-contiguous, mirroring how the buffer protocol treats
// consumers that do not understand strides.
func Export(v *tensor.View, flags Flags) (*Descriptor, error) {
	if v == nil || v.Released() {
		return nil, fmt.Errorf("export: %w", tensor.ErrReleased)
	}
	if flags.requiresContiguous() && !v.IsContiguous() {
		return nil, fmt.Errorf("export shape %v strides %v: %w", v.Shape(), v.Strides(), ErrNotContiguous)
	}

	storage := v.Storage()
	storage.Pin()

	d := &Descriptor{
		Len:      v.ByteLen(),
		ItemSize: v.DType().Size(),
		NDim:     v.NDim(),
		Shape:    append([]int(nil), v.Shape()...),
		Strides:  append([]int(nil), v.Strides()...),
		flags:    flags,
		dtype:    v.DType(),
		storage:  storage,
		span:     storage.Len(),
		format:   []byte{v.DType().Format(), 0},
		pinner:   &runtime.Pinner{},
	}

	d.Buf = storage.Pointer()
	if d.Buf != nil {
		d.pinner.Pin(d.Buf)
	}
	// Rank-0 views have no shape array to pin.
	if len(d.Shape) > 0 {
		d.pinner.Pin(unsafe.SliceData(d.Shape))
		d.pinner.Pin(unsafe.SliceData(d.Strides))
	}
	d.pinner.Pin(&d.format[0])
	d.Format = &d.format[0]

	// Finalizer is a safety net for consumers that forget Release.
	runtime.SetFinalizer(d, func(d *Descriptor) {
		d.Release()
	})

	return d, nil
}

// DType returns the exported element type.
func (d *Descriptor) DType() tensor.DataType {
	return d.dtype
}

// Flags returns the request flags the descriptor was exported with.
func (d *Descriptor) Flags() Flags {
	return d.flags
}

// FormatString returns the format tag as a Go string.
func (d *Descriptor) FormatString() string {
	if d.format == nil {
		return ""
	}
	return string(d.format[:1])
}

// Released reports whether the descriptor has been released.
func (d *Descriptor) Released() bool {
	return d.storage == nil
}

// Bytes returns the writable memory behind Buf. It spans the whole
// storage, which may be larger than Len for partial windows.
// WARNING: writes go straight into the shared storage.
func (d *Descriptor) Bytes() []byte {
	if d.Buf == nil {
		return nil
	}
	//nolint:gosec // Buf is pinned and spans exactly d.span bytes
	return unsafe.Slice((*byte)(d.Buf), d.span)
}

// Offset returns the byte offset from Buf of the element at indices.
func (d *Descriptor) Offset(indices ...int) (int, error) {
	if len(indices) != d.NDim {
		return 0, fmt.Errorf("expected %d indices, got %d", d.NDim, len(indices))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= d.Shape[i] {
			return 0, fmt.Errorf("index %d out of bounds for dimension %d (size %d)", idx, i, d.Shape[i])
		}
		offset += idx * d.Strides[i]
	}
	return offset, nil
}

// Release unpins the exported arrays and drops the storage reference.
// Repeated calls are no-ops.
func (d *Descriptor) Release() {
	if d.storage == nil {
		return
	}
	runtime.SetFinalizer(d, nil)

	storage := d.storage
	d.storage = nil
	d.Buf = nil
	d.Format = nil
	d.Shape = nil
	d.Strides = nil
	d.NDim = 0
	d.Len = 0
	d.span = 0
	d.format = nil
	d.raw = nil

	d.pinner.Unpin()
	d.pinner = nil
	storage.Unpin()
}
