package datasets

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/born-ml/ndbuf/internal/parallel"
	"github.com/born-ml/ndbuf/internal/tensor"
)

// ErrInvalidIDX is returned for data that is not a well-formed IDX file.
var ErrInvalidIDX = errors.New("invalid IDX data")

// idxTypes maps IDX element type codes to data types.
var idxTypes = map[byte]tensor.DataType{
	0x08: tensor.Uint8,
	0x09: tensor.Int8,
	0x0B: tensor.Int16,
	0x0C: tensor.Int32,
	0x0D: tensor.Float32,
	0x0E: tensor.Float64,
}

// ParseIDX decodes an IDX file into a contiguous view.
//
// IDX layout:
//
//	magic: 0x00 0x00 <type code> <rank>
//	extents: rank * uint32 (big-endian)
//	data: elements, big-endian
//
// MNIST images are type 0x08 with rank 3 (magic 2051); labels are type
// 0x08 with rank 1 (magic 2049). Multi-byte elements are converted to
// native byte order so the storage can be exported as is.
func ParseIDX(data []byte) (*tensor.View, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: %d bytes is too short for a magic number", ErrInvalidIDX, len(data))
	}
	if data[0] != 0 || data[1] != 0 {
		return nil, fmt.Errorf("%w: magic 0x%08x", ErrInvalidIDX, binary.BigEndian.Uint32(data))
	}
	dtype, ok := idxTypes[data[2]]
	if !ok {
		return nil, fmt.Errorf("%w: unknown element type 0x%02x", ErrInvalidIDX, data[2])
	}

	rank := int(data[3])
	headerLen := 4 + 4*rank
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: truncated extents for rank %d", ErrInvalidIDX, rank)
	}

	body := data[headerLen:]
	available := len(body) / dtype.Size()

	shape := make(tensor.Shape, rank)
	count := 1
	for i := range shape {
		dim := int(binary.BigEndian.Uint32(data[4+4*i:]))
		shape[i] = dim
		// Extents come from the file; compare before multiplying.
		if dim != 0 && count > available/dim {
			return nil, fmt.Errorf("%w: shape %v needs more than the %d elements present", ErrInvalidIDX, shape[:i+1], available)
		}
		count *= dim
	}

	want := count * dtype.Size()
	storage := tensor.FromBytes(body[:want])
	toNativeOrder(storage.Bytes(), dtype.Size())

	return tensor.NewContiguous(storage, shape, dtype)
}

// toNativeOrder rewrites big-endian elements of the given size in place.
func toNativeOrder(data []byte, size int) {
	if size == 1 {
		return
	}
	var order [2]byte
	binary.NativeEndian.PutUint16(order[:], 1)
	if order[0] == 0 {
		return // big-endian host
	}
	parallel.Ranges(len(data)/size, func(lo, hi int) {
		for off := lo * size; off < hi*size; off += size {
			elem := data[off : off+size]
			for i, j := 0, size-1; i < j; i, j = i+1, j-1 {
				elem[i], elem[j] = elem[j], elem[i]
			}
		}
	}, parallel.DefaultConfig())
}
