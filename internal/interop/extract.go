package interop

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/born-ml/ndbuf/internal/tensor"
)

// extract encodes host-supplied elements as raw bytes of type dt.
//
// Accepted inputs:
//   - []byte: raw bytes for any format; length must be a multiple of the item size
//   - a typed slice matching dt ([]int8 for 'b', []float32 for 'f', ...)
//   - []uint16 bit patterns for 'e' and 'v'
//   - []int for integer and bool formats, range checked
//   - []float64 for any floating-point format
func extract(data any, dt tensor.DataType) ([]byte, error) {
	fail := func(reason string) error {
		return &tensor.ExtractionError{
			Format: string(dt.Format()),
			Got:    fmt.Sprintf("%T", data),
			Reason: reason,
		}
	}
	order := binary.NativeEndian

	switch src := data.(type) {
	case []byte:
		if len(src)%dt.Size() != 0 {
			return nil, fail(fmt.Sprintf("%d bytes is not a multiple of item size %d", len(src), dt.Size()))
		}
		return src, nil

	case []bool:
		if dt != tensor.Bool {
			return nil, fail("type mismatch")
		}
		out := make([]byte, len(src))
		for i, v := range src {
			if v {
				out[i] = 1
			}
		}
		return out, nil

	case []int8:
		if dt != tensor.Int8 {
			return nil, fail("type mismatch")
		}
		out := make([]byte, len(src))
		for i, v := range src {
			out[i] = byte(v)
		}
		return out, nil

	case []int16:
		if dt != tensor.Int16 {
			return nil, fail("type mismatch")
		}
		out := make([]byte, 2*len(src))
		for i, v := range src {
			order.PutUint16(out[2*i:], uint16(v))
		}
		return out, nil

	case []uint16:
		if dt != tensor.Float16 && dt != tensor.BFloat16 && dt != tensor.Int16 {
			return nil, fail("type mismatch")
		}
		out := make([]byte, 2*len(src))
		for i, v := range src {
			order.PutUint16(out[2*i:], v)
		}
		return out, nil

	case []int32:
		if dt != tensor.Int32 {
			return nil, fail("type mismatch")
		}
		out := make([]byte, 4*len(src))
		for i, v := range src {
			order.PutUint32(out[4*i:], uint32(v))
		}
		return out, nil

	case []int64:
		if dt != tensor.Int64 {
			return nil, fail("type mismatch")
		}
		out := make([]byte, 8*len(src))
		for i, v := range src {
			order.PutUint64(out[8*i:], uint64(v))
		}
		return out, nil

	case []float32:
		if dt != tensor.Float32 {
			return nil, fail("type mismatch")
		}
		out := make([]byte, 4*len(src))
		for i, v := range src {
			order.PutUint32(out[4*i:], math.Float32bits(v))
		}
		return out, nil

	case []float64:
		if !dt.IsFloat() {
			return nil, fail("type mismatch")
		}
		return encodeFloats(src, dt), nil

	case []int:
		return encodeInts(src, dt, fail)

	default:
		return nil, fail("unsupported element container")
	}
}

func encodeFloats(src []float64, dt tensor.DataType) []byte {
	order := binary.NativeEndian
	out := make([]byte, dt.Size()*len(src))
	for i, v := range src {
		switch dt {
		case tensor.Float16:
			order.PutUint16(out[2*i:], float16.Fromfloat32(float32(v)).Bits())
		case tensor.BFloat16:
			// Truncating conversion: keep the upper half of the float32 bits.
			order.PutUint16(out[2*i:], uint16(math.Float32bits(float32(v))>>16))
		case tensor.Float32:
			order.PutUint32(out[4*i:], math.Float32bits(float32(v)))
		default: // Float64
			order.PutUint64(out[8*i:], math.Float64bits(v))
		}
	}
	return out
}

func encodeInts(src []int, dt tensor.DataType, fail func(string) error) ([]byte, error) {
	var lo, hi int64
	switch dt {
	case tensor.Bool:
		lo, hi = 0, 1
	case tensor.Uint8:
		lo, hi = 0, math.MaxUint8
	case tensor.Int8:
		lo, hi = math.MinInt8, math.MaxInt8
	case tensor.Int16:
		lo, hi = math.MinInt16, math.MaxInt16
	case tensor.Int32:
		lo, hi = math.MinInt32, math.MaxInt32
	case tensor.Int64:
		lo, hi = math.MinInt64, math.MaxInt64
	default:
		return nil, fail("integers cannot be stored as floating-point format")
	}

	order := binary.NativeEndian
	size := dt.Size()
	out := make([]byte, size*len(src))
	for i, v := range src {
		if int64(v) < lo || int64(v) > hi {
			return nil, fail(fmt.Sprintf("element %d value %d out of range for %s", i, v, dt))
		}
		switch size {
		case 1:
			out[i] = byte(v)
		case 2:
			order.PutUint16(out[2*i:], uint16(v))
		case 4:
			order.PutUint32(out[4*i:], uint32(v))
		default:
			order.PutUint64(out[8*i:], uint64(v))
		}
	}
	return out, nil
}
