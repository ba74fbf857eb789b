package npy

import (
	"testing"
)

func TestKindChar(t *testing.T) {
	var tests = []struct {
		kind Kind
		want byte
	}{
		{Int, 'i'},
		{Uint, 'u'},
		{Float, 'f'},
		{Complex, 'c'},
		{Bool, 'b'},
		{Void, '?'},
		{Kind(99), '?'},
	}
	for _, test := range tests {
		if c := test.kind.Char(); c != test.want {
			t.Errorf("Char(%v) = %q, want %q", test.kind, c, test.want)
		}
	}
}

func TestDtypeOf(t *testing.T) {
	var tests = []struct {
		code byte
		size int
		want Dtype
	}{
		{'i', 1, Dtype{Int, 1}},
		{'i', 2, Dtype{Int, 2}},
		{'i', 4, Dtype{Int, 4}},
		{'i', 8, Dtype{Int, 8}},
		{'u', 1, Dtype{Uint, 1}},
		{'u', 8, Dtype{Uint, 8}},
		{'f', 4, Dtype{Float, 4}},
		{'f', 8, Dtype{Float, 8}},
		{'f', 16, Dtype{Float, 16}},
		{'c', 8, Dtype{Complex, 8}},
		{'c', 16, Dtype{Complex, 16}},
		{'c', 32, Dtype{Complex, 32}},
		{'b', 1, Dtype{Bool, 1}},

		// unknown code or unmatched width decodes to Void, never an error
		{'x', 4, Dtype{Void, 0}},
		{'i', 3, Dtype{Void, 0}},
		{'b', 2, Dtype{Void, 0}},
		{'f', 2, Dtype{Void, 0}},
	}
	for _, test := range tests {
		if d := DtypeOf(test.code, test.size); d != test.want {
			t.Errorf("DtypeOf(%q, %d) = %v, want %v", test.code, test.size, d, test.want)
		}
	}
}

func TestDtypeFor(t *testing.T) {
	if d := DtypeFor[float64](); d != (Dtype{Float, 8}) {
		t.Errorf("DtypeFor[float64] = %v", d)
	}
	if d := DtypeFor[int16](); d != (Dtype{Int, 2}) {
		t.Errorf("DtypeFor[int16] = %v", d)
	}
	if d := DtypeFor[complex128](); d != (Dtype{Complex, 16}) {
		t.Errorf("DtypeFor[complex128] = %v", d)
	}
	if d := DtypeFor[bool](); d != (Dtype{Bool, 1}) {
		t.Errorf("DtypeFor[bool] = %v", d)
	}
	type counter uint32
	if d := DtypeFor[counter](); d != (Dtype{Uint, 4}) {
		t.Errorf("DtypeFor[defined uint32 type] = %v", d)
	}
}
