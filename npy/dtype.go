// Package npy reads and writes single arrays in the NumPy *.npy binary
// format: a fixed 10-byte preamble, a textual header dictionary padded to a
// 16-byte boundary, and the raw element bytes.
package npy

import (
	"fmt"
	"reflect"

	"github.com/cwrogers/npio/getbytes"
)

// Kind is the semantic category of an array element type.
type Kind int

// Enumeration of the element categories a npy descriptor can name. Void
// marks an unrecognized descriptor: decoding never fails on one, so callers
// must check for Void explicitly.
const (
	Void Kind = iota
	Int
	Uint
	Float
	Complex
	Bool
)

// Dtype pairs an element category with its byte width.
type Dtype struct {
	Kind Kind
	Size int
}

// Char returns the one-character type code used in the header descr field,
// or '?' for a kind that has no code.
func (k Kind) Char() byte {
	switch k {
	case Int:
		return 'i'
	case Uint:
		return 'u'
	case Float:
		return 'f'
	case Complex:
		return 'c'
	case Bool:
		return 'b'
	default:
		return '?'
	}
}

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Complex:
		return "complex"
	case Bool:
		return "bool"
	default:
		return "void"
	}
}

func (d Dtype) String() string {
	return fmt.Sprintf("%v%d", d.Kind, d.Size*8)
}

// kindWidths lists the element widths this format defines for each code.
var kindWidths = map[Kind][]int{
	Int:     {1, 2, 4, 8},
	Uint:    {1, 2, 4, 8},
	Float:   {4, 8, 16},
	Complex: {8, 16, 32},
	Bool:    {1},
}

var kindOfChar = map[byte]Kind{
	'i': Int,
	'u': Uint,
	'f': Float,
	'c': Complex,
	'b': Bool,
}

// DtypeOf is the inverse of Kind.Char constrained to the known widths. An
// unrecognized code or a width the code does not define yields the Void
// dtype rather than an error.
func DtypeOf(code byte, size int) Dtype {
	kind, ok := kindOfChar[code]
	if !ok {
		return Dtype{Kind: Void}
	}
	for _, w := range kindWidths[kind] {
		if w == size {
			return Dtype{Kind: kind, Size: size}
		}
	}
	return Dtype{Kind: Void}
}

// DtypeFor maps a Go element type to its npy dtype.
func DtypeFor[T getbytes.Element]() Dtype {
	var v T
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool:
		return Dtype{Bool, 1}
	case reflect.Int8:
		return Dtype{Int, 1}
	case reflect.Int16:
		return Dtype{Int, 2}
	case reflect.Int32:
		return Dtype{Int, 4}
	case reflect.Int64:
		return Dtype{Int, 8}
	case reflect.Uint8:
		return Dtype{Uint, 1}
	case reflect.Uint16:
		return Dtype{Uint, 2}
	case reflect.Uint32:
		return Dtype{Uint, 4}
	case reflect.Uint64:
		return Dtype{Uint, 8}
	case reflect.Float32:
		return Dtype{Float, 4}
	case reflect.Float64:
		return Dtype{Float, 8}
	case reflect.Complex64:
		return Dtype{Complex, 8}
	case reflect.Complex128:
		return Dtype{Complex, 16}
	default:
		return Dtype{Kind: Void}
	}
}
