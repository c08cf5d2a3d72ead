package buffer

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndbuf/internal/tensor"
)

func TestCBufferLayout(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("layout offsets checked on 64-bit platforms")
	}

	var b CBuffer
	offsets := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"buf", unsafe.Offsetof(b.Buf), 0},
		{"obj", unsafe.Offsetof(b.Obj), 8},
		{"len", unsafe.Offsetof(b.Len), 16},
		{"itemsize", unsafe.Offsetof(b.ItemSize), 24},
		{"readonly", unsafe.Offsetof(b.ReadOnly), 32},
		{"ndim", unsafe.Offsetof(b.NDim), 36},
		{"format", unsafe.Offsetof(b.Format), 40},
		{"shape", unsafe.Offsetof(b.Shape), 48},
		{"strides", unsafe.Offsetof(b.Strides), 56},
		{"suboffsets", unsafe.Offsetof(b.SubOffsets), 64},
		{"internal", unsafe.Offsetof(b.Internal), 72},
	}
	for _, o := range offsets {
		assert.Equal(t, o.want, o.got, "offset of %s", o.name)
	}
	assert.Equal(t, uintptr(80), unsafe.Sizeof(b))
}

func TestDescriptorRaw(t *testing.T) {
	v := newView(t, []byte{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, []int{3, 1}, tensor.Uint8)

	d, err := Export(v, FlagRecords)
	require.NoError(t, err)
	defer d.Release()

	raw := d.Raw()
	require.NotNil(t, raw)
	assert.Same(t, raw, d.Raw(), "Raw is cached")

	assert.Equal(t, uintptr(d.Buf), raw.Buf)
	assert.Equal(t, 6, raw.Len)
	assert.Equal(t, 1, raw.ItemSize)
	assert.Equal(t, int32(0), raw.ReadOnly)
	assert.Equal(t, int32(2), raw.NDim)
	assert.Zero(t, raw.SubOffsets)
	assert.Zero(t, raw.Obj)

	//nolint:govet // reading back pinned Go memory through the C record
	shape := unsafe.Slice((*int)(unsafe.Pointer(raw.Shape)), raw.NDim)
	assert.Equal(t, []int{2, 3}, shape)
	//nolint:govet
	strides := unsafe.Slice((*int)(unsafe.Pointer(raw.Strides)), raw.NDim)
	assert.Equal(t, []int{3, 1}, strides)
	//nolint:govet
	assert.Equal(t, byte('B'), *(*byte)(unsafe.Pointer(raw.Format)))
}

func TestDescriptorRawHonorsRequest(t *testing.T) {
	v := newView(t, make([]byte, 8), tensor.Shape{2}, []int{4}, tensor.Float32)

	d, err := Export(v, FlagSimple)
	require.NoError(t, err)
	defer d.Release()

	raw := d.Raw()
	assert.NotZero(t, raw.Buf)
	assert.Zero(t, raw.Format)
	assert.Zero(t, raw.Shape)
	assert.Zero(t, raw.Strides)
	assert.Equal(t, 8, raw.Len)
}
