package tensor

import "fmt"

// DefaultPreviewElements is the number of elements shown by View.String.
const DefaultPreviewElements = 10

// View is a typed, shaped and strided window onto a Storage.
//
// A View holds one reference to its storage for as long as it is alive.
// Strides are in bytes, one per dimension. A View is not safe for
// concurrent mutation.
//
// Example:
//
//	s := tensor.FromBytes([]byte{1, 2, 3, 4, 5, 6})
//	v, _ := tensor.NewView(s, tensor.Shape{2, 3}, []int{3, 1}, tensor.Uint8)
//	defer v.Release()
//	x, _ := v.At(1, 2) // uint8(6)
type View struct {
	storage  *Storage
	shape    Shape
	strides  []int
	dtype    DataType
	released bool
}

// NewView attaches shape, strides and dtype to an existing storage.
//
// Fails with ErrShapeMismatch when ranks differ, an extent is negative,
// or an element reachable through shape/strides lies outside storage.
func NewView(s *Storage, shape Shape, strides []int, dtype DataType) (*View, error) {
	if s == nil {
		return nil, fmt.Errorf("new view: nil storage")
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("new view: unknown data type %d", int(dtype))
	}
	if err := checkLayout(shape, strides, dtype.Size(), s.Len()); err != nil {
		return nil, fmt.Errorf("new view: %w", err)
	}

	s.Retain()
	return &View{
		storage: s,
		shape:   shape.Clone(),
		strides: append([]int(nil), strides...),
		dtype:   dtype,
	}, nil
}

// NewContiguous creates a row-major view over s.
func NewContiguous(s *Storage, shape Shape, dtype DataType) (*View, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("new view: unknown data type %d", int(dtype))
	}
	return NewView(s, shape, shape.ContiguousStrides(dtype.Size()), dtype)
}

// Storage returns the shared storage.
func (v *View) Storage() *Storage {
	return v.storage
}

// Shape returns the view's shape.
func (v *View) Shape() Shape {
	return v.shape
}

// Strides returns the view's byte strides.
func (v *View) Strides() []int {
	return v.strides
}

// DType returns the view's data type.
func (v *View) DType() DataType {
	return v.dtype
}

// NDim returns the number of dimensions.
func (v *View) NDim() int {
	return len(v.shape)
}

// NumElements returns the total number of elements.
func (v *View) NumElements() int {
	return v.shape.NumElements()
}

// ByteLen returns the logical extent in bytes: NumElements * itemsize.
// It may be smaller than the storage when the view is a partial window.
func (v *View) ByteLen() int {
	return v.NumElements() * v.dtype.Size()
}

// IsContiguous reports whether strides are row-major for the shape.
func (v *View) IsContiguous() bool {
	want := v.shape.ContiguousStrides(v.dtype.Size())
	for i, dim := range v.shape {
		// Strides of unit dimensions never move the cursor.
		if dim > 1 && v.strides[i] != want[i] {
			return false
		}
	}
	return true
}

// Released reports whether Release has been called on this view.
func (v *View) Released() bool {
	return v.released
}

// Reshape replaces shape and strides in place.
// No bytes move and element counts need not match, but the new layout
// must fit the storage. On error the view is unchanged.
func (v *View) Reshape(shape Shape, strides []int) error {
	if v.released {
		return ErrReleased
	}
	if err := checkLayout(shape, strides, v.dtype.Size(), v.storage.Len()); err != nil {
		return fmt.Errorf("reshape: %w", err)
	}
	v.shape = shape.Clone()
	v.strides = append([]int(nil), strides...)
	return nil
}

// Offset returns the byte offset of the element at indices.
func (v *View) Offset(indices ...int) (int, error) {
	if len(indices) != len(v.shape) {
		return 0, fmt.Errorf("expected %d indices, got %d", len(v.shape), len(indices))
	}

	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= v.shape[i] {
			return 0, fmt.Errorf("index %d out of bounds for dimension %d (size %d)", idx, i, v.shape[i])
		}
		offset += idx * v.strides[i]
	}
	return offset, nil
}

// At decodes the element at the given indices.
func (v *View) At(indices ...int) (any, error) {
	if v.released {
		return nil, ErrReleased
	}
	offset, err := v.Offset(indices...)
	if err != nil {
		return nil, err
	}

	data := v.storage.Bytes()
	if offset < 0 || offset+v.dtype.Size() > len(data) {
		// Layout was validated; reaching here means storage was corrupted.
		panic(fmt.Sprintf("tensor: element at byte %d outside storage of %d bytes", offset, len(data)))
	}
	return DecodeElement(v.dtype, data[offset:])
}

// Head decodes up to limit elements from the front of the storage, in
// storage order. It never returns more than limit values.
func (v *View) Head(limit int) []any {
	if v.released {
		return []any{}
	}
	return decodeLeading(v.dtype, v.storage.Bytes(), limit)
}

// Preview renders up to limit leading elements for diagnostics.
func (v *View) Preview(limit int) string {
	return formatValues(v.Head(limit))
}

// String returns a diagnostic summary with a short data preview.
func (v *View) String() string {
	if v.released {
		return fmt.Sprintf("View(shape=%v, strides=%v, format=%q, released)",
			[]int(v.shape), v.strides, string(v.dtype.Format()))
	}
	return fmt.Sprintf("View(shape=%v, strides=%v, format=%q, data=%s...)",
		[]int(v.shape), v.strides, string(v.dtype.Format()), v.Preview(DefaultPreviewElements))
}

// Clone returns a new view sharing the same storage.
// Writes through either view are visible to the other.
func (v *View) Clone() *View {
	if v.released {
		panic("tensor: clone of released view")
	}
	v.storage.Retain()
	return &View{
		storage: v.storage,
		shape:   v.shape.Clone(),
		strides: append([]int(nil), v.strides...),
		dtype:   v.dtype,
	}
}

// Release drops this view's storage reference. Repeated calls are no-ops.
func (v *View) Release() {
	if v.released {
		return
	}
	v.released = true
	v.storage.Release()
}
