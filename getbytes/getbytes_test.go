package getbytes

import (
	"encoding/hex"
	"testing"
)

func TestFromSlice(t *testing.T) {
	var byteslicetests = []struct {
		byteslice []byte
		expect    string
	}{
		{FromSlice([]uint8{0xAB, 0xCD, 0xEF, 0x01, 0x23, 0x45, 0x67, 0x89}), "abcdef0123456789"},
		{FromSlice([]uint16{0xABCD, 0xEF01, 0x2345, 0x6789}), "cdab01ef45238967"},
		{FromSlice([]uint32{0xABCDEF01, 0x23456789}), "01efcdab89674523"},
		{FromSlice([]uint64{0xABCDEF0123456789}), "8967452301efcdab"},
		{FromSlice([]int8{0x00, 0x0A, 0x0B, 0x0C, 0x0D, 0x0F, 0x01, 0x02}), "000a0b0c0d0f0102"},
		{FromSlice([]int16{1, 2, 3, 4}), "0100020003000400"},
		{FromSlice([]int32{1, 2}), "0100000002000000"},
		{FromSlice([]int64{1}), "0100000000000000"},
		{FromSlice([]float32{1, 2}), "0000803f00000040"},
		{FromSlice([]float64{2, 4}), "00000000000000400000000000001040"},
		{FromSlice([]bool{true, false}), "0100"},
		{FromSlice([]complex64{1 + 2i}), "0000803f00000040"},
		{FromSlice([]uint8{}), ""},
		{FromSlice([]int64{}), ""},
		{FromSlice([]float64{}), ""},
	}
	for _, test := range byteslicetests {
		encodedStr := hex.EncodeToString(test.byteslice)
		if expectStr := test.expect; encodedStr != expectStr {
			t.Errorf("want %v, have %v", expectStr, encodedStr)
		}
	}
}

func TestAsSlice(t *testing.T) {
	in := []float64{1.5, -2.25, 1e300}
	b := FromSlice(in)
	out := AsSlice[float64](b)
	if len(out) != len(in) {
		t.Fatalf("AsSlice returned %d elements, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("element %d: have %v, want %v", i, out[i], in[i])
		}
	}
	if got := AsSlice[uint32]([]byte{1, 0, 0, 0, 2, 0, 0, 0}); got[0] != 1 || got[1] != 2 {
		t.Errorf("AsSlice[uint32] = %v, want [1 2]", got)
	}
	if got := AsSlice[uint64]([]byte{}); len(got) != 0 {
		t.Errorf("AsSlice of empty bytes has %d elements, want 0", len(got))
	}
}

func TestSizeof(t *testing.T) {
	var sizetests = []struct {
		have int
		want int
	}{
		{Sizeof[bool](), 1},
		{Sizeof[uint8](), 1},
		{Sizeof[uint16](), 2},
		{Sizeof[uint32](), 4},
		{Sizeof[uint64](), 8},
		{Sizeof[int8](), 1},
		{Sizeof[int16](), 2},
		{Sizeof[int32](), 4},
		{Sizeof[int64](), 8},
		{Sizeof[float32](), 4},
		{Sizeof[float64](), 8},
		{Sizeof[complex64](), 8},
		{Sizeof[complex128](), 16},
	}
	for _, test := range sizetests {
		if test.have != test.want {
			t.Errorf("wrong width: %d, want %d", test.have, test.want)
		}
	}
}
