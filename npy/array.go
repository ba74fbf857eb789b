package npy

import (
	"fmt"
)

// Array is an in-memory numeric array: a contiguous byte buffer plus the
// shape, element type, and layout metadata needed to round-trip it through
// the npy format. The zero value is an empty array.
type Array struct {
	shape    []int
	dtype    Dtype
	elemSize int
	fortran  bool
	data     []byte
}

// NewArray allocates a zeroed array of the given shape and element type.
// The shape must have rank at least 1 with non-negative dimensions.
func NewArray(shape []int, dtype Dtype, elemSize int, fortran bool) (*Array, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("npy: array shape must have rank >= 1")
	}
	for _, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("npy: negative dimension %d in shape %v", dim, shape)
		}
	}
	if elemSize <= 0 {
		return nil, fmt.Errorf("npy: element size must be positive, have %d", elemSize)
	}
	a := &Array{
		shape:    append([]int(nil), shape...),
		dtype:    dtype,
		elemSize: elemSize,
		fortran:  fortran,
	}
	a.data = make([]byte, a.NumElements()*elemSize)
	return a, nil
}

// NewArrayFrom allocates an array like NewArray and copies the caller's
// bytes into it. len(data) must equal the array's total byte size.
func NewArrayFrom(shape []int, dtype Dtype, elemSize int, fortran bool, data []byte) (*Array, error) {
	a, err := NewArray(shape, dtype, elemSize, fortran)
	if err != nil {
		return nil, err
	}
	if len(data) != len(a.data) {
		return nil, fmt.Errorf("npy: shape %v with element size %d needs %d bytes, have %d",
			shape, elemSize, len(a.data), len(data))
	}
	copy(a.data, data)
	return a, nil
}

// Shape returns the array's dimensions. The slice is owned by the array.
func (a *Array) Shape() []int { return a.shape }

// Dim returns the extent of dimension i.
func (a *Array) Dim(i int) int { return a.shape[i] }

// NDims returns the array's rank.
func (a *Array) NDims() int { return len(a.shape) }

// NumElements returns the product of all dimensions.
func (a *Array) NumElements() int {
	n := 1
	for _, dim := range a.shape {
		n *= dim
	}
	return n
}

// ElemSize returns the byte width of one element.
func (a *Array) ElemSize() int { return a.elemSize }

// Size returns the total payload size in bytes.
func (a *Array) Size() int { return len(a.data) }

// Fortran reports whether the elements are stored in column-major order.
func (a *Array) Fortran() bool { return a.fortran }

// Dtype returns the array's element type descriptor.
func (a *Array) Dtype() Dtype { return a.dtype }

// Data returns the array's payload buffer, or nil once the buffer has been
// taken with TakeData.
func (a *Array) Data() []byte { return a.data }

// Empty reports whether the array holds no buffer, either because it is the
// zero value or because TakeData consumed it.
func (a *Array) Empty() bool { return a.data == nil }

// TakeData transfers the payload buffer out of the array and leaves it
// empty. After the call every accessor sees an empty array; the caller is
// the buffer's sole owner.
func (a *Array) TakeData() []byte {
	d := a.data
	a.data = nil
	a.shape = nil
	a.dtype = Dtype{}
	a.elemSize = 0
	a.fortran = false
	return d
}
