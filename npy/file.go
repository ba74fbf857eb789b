package npy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/cwrogers/npio/getbytes"
)

// Mode selects how Save treats an existing destination.
type Mode int

const (
	// ModeWrite truncates or creates the destination file.
	ModeWrite Mode = iota
	// ModeAppend grows an existing npy file along its first dimension. When
	// the destination does not exist it behaves like ModeWrite.
	ModeAppend
)

// Save writes a to the file at path. In ModeAppend the file's existing
// header must describe the same element size, rank, and trailing dimensions
// as a; the leading dimension grows by a's and the payload is appended.
func Save(path string, a *Array, mode Mode) error {
	if a.Empty() {
		return fmt.Errorf("npy: cannot save an empty array to %s", path)
	}
	if a.fortran {
		return fmt.Errorf("npy: cannot save fortran-order data to %s", path)
	}
	if mode == ModeAppend {
		f, err := os.OpenFile(path, os.O_RDWR, 0644)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// no file yet: fall through to a plain write
		case err != nil:
			return fmt.Errorf("npy save: %w", err)
		default:
			aerr := appendTo(f, path, a)
			if cerr := f.Close(); aerr == nil {
				aerr = cerr
			}
			return aerr
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("npy save: %w", err)
	}
	werr := writeTo(f, a)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}

func writeTo(f *os.File, a *Array) error {
	if _, err := f.Write(EncodeHeader(a.dtype, a.elemSize, a.shape)); err != nil {
		return fmt.Errorf("npy save: writing header: %w", err)
	}
	if _, err := f.Write(a.data); err != nil {
		return fmt.Errorf("npy save: writing payload: %w", err)
	}
	return nil
}

// appendTo validates a against the file's current header, rewrites the
// header with the grown leading dimension, and appends a's payload. All
// checks run before any byte of the file changes.
func appendTo(f *os.File, path string, a *Array) error {
	hdr, err := DecodeHeader(f)
	if err != nil {
		return fmt.Errorf("npy append to %s: %w", path, err)
	}
	if a.fortran || hdr.Fortran {
		return fmt.Errorf("npy append to %s: fortran-order data cannot be appended", path)
	}
	if hdr.ElemSize != a.elemSize {
		return fmt.Errorf("npy append to %s: file has element size %d but new data has %d",
			path, hdr.ElemSize, a.elemSize)
	}
	if len(hdr.Shape) != a.NDims() {
		return fmt.Errorf("npy append to %s: file has rank %d but new data has rank %d",
			path, len(hdr.Shape), a.NDims())
	}
	for i := 1; i < len(hdr.Shape); i++ {
		if hdr.Shape[i] != a.shape[i] {
			return fmt.Errorf("npy append to %s: arrays can only grow along the first dimension: file shape %v, new shape %v",
				path, hdr.Shape, a.shape)
		}
	}

	grown := append([]int(nil), hdr.Shape...)
	grown[0] += a.shape[0]

	// DecodeHeader leaves the cursor at the first payload byte, which is
	// also the space the rewritten header must fit in.
	headerSize, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("npy append to %s: %w", path, err)
	}
	newHeader := encodeHeaderSized(a.dtype, a.elemSize, grown, int(headerSize))
	if int64(len(newHeader)) != headerSize {
		return fmt.Errorf("npy append to %s: rewritten header needs %d bytes but only %d are reserved",
			path, len(newHeader), headerSize)
	}
	if _, err := f.WriteAt(newHeader, 0); err != nil {
		return fmt.Errorf("npy append to %s: rewriting header: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("npy append to %s: %w", path, err)
	}
	if _, err := f.Write(a.data); err != nil {
		return fmt.Errorf("npy append to %s: writing payload: %w", path, err)
	}
	return nil
}

// Load reads the npy file at path into a freshly allocated array.
func Load(path string) (*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("npy load: %w", err)
	}
	defer f.Close()
	a, err := ReadArray(f)
	if err != nil {
		return nil, fmt.Errorf("npy load %s: %w", path, err)
	}
	return a, nil
}

// ReadArray decodes one complete npy stream (header plus payload) from r.
func ReadArray(r io.Reader) (*Array, error) {
	hdr, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	a, err := NewArray(hdr.Shape, hdr.Dtype, hdr.ElemSize, hdr.Fortran)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	n, err := io.ReadFull(r, a.data)
	if err != nil {
		return nil, fmt.Errorf("%w: expected %d payload bytes, read %d", ErrFormat, len(a.data), n)
	}
	return a, nil
}

// SaveSlice writes data as a npy file of the given shape. The product of the
// dimensions must equal len(data).
func SaveSlice[T getbytes.Element](path string, data []T, shape []int, mode Mode) error {
	a, err := NewArrayFrom(shape, DtypeFor[T](), getbytes.Sizeof[T](), false, getbytes.FromSlice(data))
	if err != nil {
		return err
	}
	return Save(path, a, mode)
}

// AsSlice views a's payload as a typed slice without copying. The slice
// aliases the array's buffer and is valid as long as the array holds it.
func AsSlice[T getbytes.Element](a *Array) ([]T, error) {
	if a.Empty() {
		return nil, fmt.Errorf("npy: array holds no data")
	}
	if want := getbytes.Sizeof[T](); a.elemSize != want {
		return nil, fmt.Errorf("npy: array has element size %d but destination type is %d bytes wide",
			a.elemSize, want)
	}
	return getbytes.AsSlice[T](a.data), nil
}
