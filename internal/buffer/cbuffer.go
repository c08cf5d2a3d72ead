package buffer

import "unsafe"

// CBuffer has the memory layout of CPython's Py_buffer on 64-bit and
// 32-bit platforms: Go int matches Py_ssize_t and int32 matches C int.
//
//	void *buf; PyObject *obj; Py_ssize_t len; Py_ssize_t itemsize;
//	int readonly; int ndim; char *format; Py_ssize_t *shape;
//	Py_ssize_t *strides; Py_ssize_t *suboffsets; void *internal;
type CBuffer struct {
	Buf        uintptr
	Obj        uintptr
	Len        int
	ItemSize   int
	ReadOnly   int32
	NDim       int32
	Format     uintptr
	Shape      uintptr
	Strides    uintptr
	SubOffsets uintptr
	Internal   uintptr
}

// Raw returns the descriptor as a C-layout record.
//
// Pointer fields reference the descriptor's pinned arrays and remain
// valid until Release. As the protocol requires, Format is null unless
// FlagFormat was requested, Shape is null without FlagND and Strides is
// null without FlagStrides. Obj is left for the host runtime to fill.
func (d *Descriptor) Raw() *CBuffer {
	if d.Released() {
		return nil
	}
	if d.raw != nil {
		return d.raw
	}

	raw := &CBuffer{
		Buf:      uintptr(d.Buf),
		Len:      d.Len,
		ItemSize: d.ItemSize,
		NDim:     int32(d.NDim),
	}
	if d.ReadOnly {
		raw.ReadOnly = 1
	}
	if d.flags.Has(FlagFormat) {
		raw.Format = uintptr(unsafe.Pointer(d.Format))
	}
	if d.flags.Has(FlagND) && d.NDim > 0 {
		raw.Shape = uintptr(unsafe.Pointer(unsafe.SliceData(d.Shape)))
	}
	if d.flags.Has(FlagStrides) && d.NDim > 0 {
		raw.Strides = uintptr(unsafe.Pointer(unsafe.SliceData(d.Strides)))
	}

	d.pinner.Pin(raw)
	d.raw = raw
	return raw
}
