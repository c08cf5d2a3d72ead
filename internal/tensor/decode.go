package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/x448/float16"
)

// DecodeElement decodes the first element of b as dt.
//
// The result type depends on dt: bool, int8, int16, int32, int64, uint8,
// float32 (Float16, BFloat16 and Float32) or float64. Bytes are read in
// native order because consumers access the same memory in place.
func DecodeElement(dt DataType, b []byte) (any, error) {
	if !dt.Valid() {
		return nil, fmt.Errorf("decode: unknown data type %d", int(dt))
	}
	if len(b) < dt.Size() {
		return nil, fmt.Errorf("decode %s: need %d bytes, have %d", dt, dt.Size(), len(b))
	}

	order := binary.NativeEndian
	switch dt {
	case Bool:
		return b[0] != 0, nil
	case Int8:
		return int8(b[0]), nil
	case Uint8:
		return b[0], nil
	case Int16:
		return int16(order.Uint16(b)), nil
	case Int32:
		return int32(order.Uint32(b)), nil
	case Int64:
		return int64(order.Uint64(b)), nil
	case Float16:
		return float16.Frombits(order.Uint16(b)).Float32(), nil
	case BFloat16:
		return math.Float32frombits(uint32(order.Uint16(b)) << 16), nil
	case Float32:
		return math.Float32frombits(order.Uint32(b)), nil
	default: // Float64
		return math.Float64frombits(order.Uint64(b)), nil
	}
}

// decodeLeading decodes up to limit elements from the front of data.
func decodeLeading(dt DataType, data []byte, limit int) []any {
	if limit <= 0 {
		return []any{}
	}
	size := dt.Size()
	n := min(limit, len(data)/size)
	values := make([]any, n)
	for i := range values {
		v, err := DecodeElement(dt, data[i*size:])
		if err != nil {
			// Length was checked above.
			panic(err)
		}
		values[i] = v
	}
	return values
}

// formatValues renders decoded values as "[a, b, c]".
func formatValues(values []any) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, v)
	}
	sb.WriteByte(']')
	return sb.String()
}
