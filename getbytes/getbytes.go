// Package getbytes converts between typed numeric slices and raw byte slices
// using unsafe, without copying. The resulting bytes are in host order, which
// this module requires to be little-endian.
package getbytes

import (
	"unsafe"
)

// Element is the set of element types that can be stored in a npy file.
type Element interface {
	~bool | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~complex64 | ~complex128
}

// Sizeof returns the byte width of one element of type T.
func Sizeof[T Element]() int {
	var t T
	return int(unsafe.Sizeof(t))
}

// FromSlice views a typed slice as its underlying bytes. The returned slice
// aliases d: it is valid only as long as d is.
func FromSlice[T Element](d []T) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	outlength := uintptr(len(d)) * unsafe.Sizeof(d[0])
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), outlength)
}

// AsSlice views raw bytes as a typed slice without copying. The length of b
// must be a multiple of the element width; trailing bytes that do not fill a
// whole element are not viewable and are ignored.
func AsSlice[T Element](b []byte) []T {
	size := Sizeof[T]()
	n := len(b) / size
	if n == 0 {
		return []T{}
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}
