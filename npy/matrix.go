package npy

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SaveMatrix writes m to path as a rank-2 float64 npy file in row-major
// order.
func SaveMatrix(path string, m *mat.Dense, mode Mode) error {
	rows, cols := m.Dims()
	raw := m.RawMatrix()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, raw.Data[i*raw.Stride:i*raw.Stride+cols]...)
	}
	return SaveSlice(path, data, []int{rows, cols}, mode)
}

// LoadMatrix reads a rank-2 float64 npy file into a mat.Dense.
func LoadMatrix(path string) (*mat.Dense, error) {
	a, err := Load(path)
	if err != nil {
		return nil, err
	}
	if a.Dtype().Kind != Float || a.ElemSize() != 8 {
		return nil, fmt.Errorf("npy: %s holds %v data, want float64", path, a.Dtype())
	}
	if a.Fortran() {
		return nil, fmt.Errorf("npy: %s is fortran-ordered, which mat.Dense cannot represent", path)
	}
	if a.NDims() != 2 {
		return nil, fmt.Errorf("npy: %s has rank %d, want 2", path, a.NDims())
	}
	if a.Dim(0) == 0 || a.Dim(1) == 0 {
		return nil, fmt.Errorf("npy: %s has an empty dimension (shape %v), which mat.Dense cannot represent", path, a.Shape())
	}
	data, err := AsSlice[float64](a)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(a.Dim(0), a.Dim(1), data), nil
}
