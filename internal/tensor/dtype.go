// Package tensor provides the typed storage and strided view core of ndbuf.
package tensor

import "fmt"

// DataType identifies the binary encoding of a single element.
type DataType int

// Supported data types. The set is closed; see FromTag.
const (
	Bool DataType = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Float16
	Float32
	Float64
	BFloat16
)

// dataTypes lists every supported type in declaration order.
var dataTypes = []DataType{Bool, Int8, Int16, Int32, Int64, Uint8, Float16, Float32, Float64, BFloat16}

// DataTypes returns the supported data types in declaration order.
func DataTypes() []DataType {
	return append([]DataType(nil), dataTypes...)
}

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Float16, BFloat16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		panic(fmt.Sprintf("unknown data type %d", int(dt)))
	}
}

// Format returns the buffer-protocol format character of the data type.
// See https://numpy.org/devdocs/reference/arrays.dtypes.html.
func (dt DataType) Format() byte {
	switch dt {
	case Bool:
		return '?'
	case Int8:
		return 'b'
	case Int16:
		return 'h'
	case Int32:
		return 'i'
	case Int64:
		return 'q'
	case Uint8:
		return 'B'
	case Float16:
		return 'e'
	case Float32:
		return 'f'
	case Float64:
		return 'd'
	case BFloat16:
		return 'v'
	default:
		panic(fmt.Sprintf("unknown data type %d", int(dt)))
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case BFloat16:
		return "bfloat16"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the data type is a floating-point encoding.
func (dt DataType) IsFloat() bool {
	switch dt {
	case Float16, Float32, Float64, BFloat16:
		return true
	default:
		return false
	}
}

// Valid reports whether dt is one of the supported data types.
func (dt DataType) Valid() bool {
	return dt >= Bool && dt <= BFloat16
}

// FromTag maps a format character to its data type.
func FromTag(tag byte) (DataType, error) {
	switch tag {
	case '?':
		return Bool, nil
	case 'b':
		return Int8, nil
	case 'h':
		return Int16, nil
	case 'i':
		return Int32, nil
	case 'q':
		return Int64, nil
	case 'B':
		return Uint8, nil
	case 'e':
		return Float16, nil
	case 'f':
		return Float32, nil
	case 'd':
		return Float64, nil
	case 'v':
		return BFloat16, nil
	default:
		return 0, &FormatError{Tag: string(tag)}
	}
}

// ParseFormat parses a one-character format string such as "f" or "B".
func ParseFormat(format string) (DataType, error) {
	if len(format) != 1 {
		return 0, &FormatError{Tag: format}
	}
	return FromTag(format[0])
}
