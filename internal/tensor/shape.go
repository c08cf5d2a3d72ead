package tensor

import (
	"fmt"
	"math"
)

// Shape represents the extents of a view, one per dimension.
type Shape []int

// NumElements returns the total number of elements. Shapes accepted
// by NewView or Reshape never overflow.
func (s Shape) NumElements() int {
	n := 1 // Scalar has 1 element
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every extent is non-negative.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ContiguousStrides calculates row-major byte strides for the shape.
// stride[i] = itemSize * product of all dimensions after i.
func (s Shape) ContiguousStrides(itemSize int) []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = itemSize
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// byteSpan returns the lowest and highest byte offsets of elements
// reachable through shape and strides, failing instead of overflowing
// once any step leaves [0, limit]. empty is true when some extent is
// zero, in which case no byte is reachable.
func byteSpan(shape Shape, strides []int, limit int) (lo, hi int, empty bool, err error) {
	for _, dim := range shape {
		if dim == 0 {
			return 0, 0, true, nil
		}
	}
	for i, dim := range shape {
		n, stride := dim-1, strides[i]
		if n == 0 || stride == 0 {
			continue
		}
		if stride == math.MinInt {
			return 0, 0, false, fmt.Errorf("stride %d at dimension %d is out of range", stride, i)
		}
		mag := stride
		if mag < 0 {
			mag = -mag
		}
		// No step longer than the storage can fit, so n*mag <= limit
		// is the only case that needs the product.
		if mag > limit/n {
			return 0, 0, false, fmt.Errorf("dimension %d spans more than %d bytes", i, limit)
		}
		if stride < 0 {
			lo -= n * mag
			if lo < -limit {
				return 0, 0, false, fmt.Errorf("negative strides reach byte offset %d", lo)
			}
		} else {
			hi += n * mag
			if hi > limit {
				return 0, 0, false, fmt.Errorf("strides reach byte offset %d", hi)
			}
		}
	}
	return lo, hi, false, nil
}

// checkedByteLen returns NumElements*itemSize, or false on overflow.
func checkedByteLen(shape Shape, itemSize int) (int, bool) {
	n := itemSize
	for _, dim := range shape {
		if dim == 0 {
			return 0, true
		}
	}
	for _, dim := range shape {
		if n > math.MaxInt/dim {
			return 0, false
		}
		n *= dim
	}
	return n, true
}

// checkLayout validates a shape/strides pair against a storage length.
func checkLayout(shape Shape, strides []int, itemSize, storageLen int) error {
	fail := func(reason string) error {
		return &ShapeError{
			Shape:      shape.Clone(),
			Strides:    append([]int(nil), strides...),
			ItemSize:   itemSize,
			StorageLen: storageLen,
			Reason:     reason,
		}
	}

	if len(shape) != len(strides) {
		return fail(fmt.Sprintf("rank mismatch: %d extents, %d strides", len(shape), len(strides)))
	}
	if err := shape.Validate(); err != nil {
		return fail(err.Error())
	}
	if _, ok := checkedByteLen(shape, itemSize); !ok {
		return fail("element count overflows")
	}

	lo, hi, empty, err := byteSpan(shape, strides, storageLen)
	if err != nil {
		return fail(err.Error())
	}
	if empty {
		return nil
	}
	if lo < 0 {
		return fail(fmt.Sprintf("negative strides reach byte offset %d", lo))
	}
	if hi > storageLen-itemSize {
		return fail(fmt.Sprintf("last element ends at byte %d", hi+itemSize))
	}
	return nil
}
