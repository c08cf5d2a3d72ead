package interop

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndbuf/internal/buffer"
	"github.com/born-ml/ndbuf/internal/tensor"
)

func TestConstructFromBytes(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	b, err := Construct(src, []int{2, 3}, []int{3, 1}, "B")
	require.NoError(t, err)
	defer b.Release()

	src[0] = 100
	assert.Equal(t, byte(1), b.View().Storage().Bytes()[0], "construction must copy")
	assert.Equal(t, `Buffer(shape=[2 3], strides=[3 1], format="B", data=[1, 2, 3, 4, 5, 6]...)`, b.String())
}

func TestConstructTypedSlices(t *testing.T) {
	tests := []struct {
		name   string
		data   any
		format string
		want   any
	}{
		{"float32", []float32{1.5, 2.5}, "f", float32(1.5)},
		{"int8", []int8{-3, 4}, "b", int8(-3)},
		{"int16", []int16{-300, 4}, "h", int16(-300)},
		{"int32", []int32{70000, 1}, "i", int32(70000)},
		{"int64", []int64{-1 << 40, 1}, "q", int64(-1 << 40)},
		{"bool", []bool{true, false}, "?", true},
		{"ints as int8", []int{-128, 127}, "b", int8(-128)},
		{"ints as uint8", []int{255, 0}, "B", uint8(255)},
		{"float64 as float16", []float64{0.5, 1}, "e", float32(0.5)},
		{"float64 as bfloat16", []float64{2, 1}, "v", float32(2)},
		{"float64", []float64{0.125, 1}, "d", 0.125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, err := tensor.ParseFormat(tt.format)
			require.NoError(t, err)
			b, err := Construct(tt.data, []int{2}, []int{dt.Size()}, tt.format)
			require.NoError(t, err)
			defer b.Release()

			got, err := b.View().At(0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConstructUnsupportedFormat(t *testing.T) {
	for _, format := range []string{"x", "", "ff"} {
		_, err := Construct([]byte{1}, []int{1}, []int{1}, format)
		assert.ErrorIs(t, err, tensor.ErrUnsupportedFormat, "format %q", format)
	}
}

func TestConstructExtractionFailure(t *testing.T) {
	tests := []struct {
		name   string
		data   any
		format string
	}{
		{"float32 as int8", []float32{1}, "b"},
		{"ints as float", []int{1}, "f"},
		{"int out of range", []int{256}, "B"},
		{"negative bool", []int{-1}, "?"},
		{"ragged bytes", []byte{1, 2, 3}, "f"},
		{"string", "hello", "B"},
		{"map", map[string]int{}, "i"},
		{"float64 as int", []float64{1}, "q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Construct(tt.data, []int{1}, []int{1}, tt.format)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tensor.ErrExtraction), "got %v", err)

			var ee *tensor.ExtractionError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.format, ee.Format)
		})
	}
}

func TestConstructShapeMismatch(t *testing.T) {
	_, err := Construct([]byte{1, 2, 3}, []int{2, 2}, []int{2, 1}, "B")
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestBufferGetBufferAndReshape(t *testing.T) {
	data := make([]byte, 16)
	for i := 0; i < 4; i++ {
		binary.NativeEndian.PutUint32(data[4*i:], math.Float32bits(float32(i)))
	}
	b, err := Construct(data, []int{4}, []int{4}, "f")
	require.NoError(t, err)
	defer b.Release()

	require.NoError(t, b.Reshape([]int{2, 2}, []int{8, 4}))

	d, err := b.GetBuffer(buffer.FlagRecords)
	require.NoError(t, err)
	defer d.Release()

	assert.Equal(t, 16, d.Len)
	assert.Equal(t, 4, d.ItemSize)
	assert.Equal(t, "f", d.FormatString())
	assert.Equal(t, []int{2, 2}, d.Shape)

	off, err := d.Offset(1, 1)
	require.NoError(t, err)
	binary.NativeEndian.PutUint32(d.Bytes()[off:], math.Float32bits(9))

	got, err := b.View().At(1, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(9), got)
}

func TestWrapSharesStorage(t *testing.T) {
	v, err := tensor.NewView(tensor.FromBytes([]byte{1, 2}), tensor.Shape{2}, []int{1}, tensor.Uint8)
	require.NoError(t, err)

	b := Wrap(v)
	v.Release()
	assert.False(t, b.View().Storage().Released())

	b.Release()
	assert.True(t, b.View().Storage().Released())
	assert.Equal(t, "Buffer(released)", b.String())
}

type recordingHost struct {
	calls []string
	fail  error
}

func (h *recordingHost) DefineType(module, name string, _ Constructor) error {
	h.calls = append(h.calls, module+"."+name)
	return h.fail
}

func TestModuleRegisterOnce(t *testing.T) {
	m := NewCoreModule()
	assert.Equal(t, []string{"Buffer"}, m.Types())

	host := &recordingHost{}
	require.NoError(t, m.Register(host))
	require.NoError(t, m.Register(host))
	require.NoError(t, m.Register(&recordingHost{}))
	assert.Equal(t, []string{"ndbuf_core.Buffer"}, host.calls)

	err := m.AddType("Other", Construct)
	assert.Error(t, err, "types are frozen after registration")
}

func TestModuleAddTypeIdempotent(t *testing.T) {
	m := NewModule("test")
	first := func(any, []int, []int, string) (*Buffer, error) { return nil, errors.New("first") }
	second := func(any, []int, []int, string) (*Buffer, error) { return nil, errors.New("second") }

	require.NoError(t, m.AddType("T", first))
	require.NoError(t, m.AddType("T", second))
	assert.Equal(t, []string{"T"}, m.Types())

	ctor, ok := m.Lookup("T")
	require.True(t, ok)
	_, err := ctor(nil, nil, nil, "")
	assert.EqualError(t, err, "first")

	_, ok = m.Lookup("missing")
	assert.False(t, ok)
	assert.Error(t, m.AddType("", first))
}

func TestModuleRegisterError(t *testing.T) {
	m := NewCoreModule()
	boom := errors.New("boom")

	err := m.Register(&recordingHost{fail: boom})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.Register(&recordingHost{}), boom, "first result is sticky")
}

func TestConstructDefaultsToRowMajor(t *testing.T) {
	b, err := Construct([]float32{1, 2, 3, 4}, []int{2, 2}, nil, "f")
	require.NoError(t, err)
	defer b.Release()

	assert.Equal(t, []int{8, 4}, b.View().Strides())
	assert.True(t, b.View().IsContiguous())
}
