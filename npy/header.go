package npy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	magic        = "\x93NUMPY"
	versionMajor = 1
	versionMinor = 0

	// The preamble is magic(6) + version(2) + dictLen(2). The dictionary is
	// padded so the payload after it starts on a headerAlign boundary.
	preambleSize = 10
	headerAlign  = 16
)

var (
	// ErrFormat reports a structurally invalid or truncated npy stream.
	ErrFormat = errors.New("npy: invalid npy data")

	// ErrBigEndian reports a file that declares big-endian element data,
	// which this package cannot byte-swap.
	ErrBigEndian = errors.New("npy: big-endian data is not supported")
)

// Header holds the metadata decoded from one npy header.
type Header struct {
	Shape    []int
	ElemSize int
	Fortran  bool
	Dtype    Dtype
}

// EncodeHeader renders the preamble plus padded header dictionary for an
// array of the given element type and shape. The result's length is a
// multiple of 16 and its last byte is '\n'.
func EncodeHeader(dtype Dtype, elemSize int, shape []int) []byte {
	return encodeHeaderSized(dtype, elemSize, shape, 0)
}

// encodeHeaderSized is EncodeHeader with a minimum total size: the dictionary
// is padded out so the whole header occupies at least total bytes. total must
// be zero (minimal padding) or a multiple of 16. Appends use this to rewrite
// a header into exactly the space the original occupied.
func encodeHeaderSized(dtype Dtype, elemSize int, shape []int, total int) []byte {
	var dict bytes.Buffer
	fmt.Fprintf(&dict, "{'descr': '<%c%d', 'fortran_order': False, 'shape': (", dtype.Kind.Char(), elemSize)
	for i, dim := range shape {
		if i > 0 {
			dict.WriteString(", ")
		}
		fmt.Fprintf(&dict, "%d", dim)
	}
	if len(shape) == 1 {
		dict.WriteString(",") // one-element tuple form: (N,)
	}
	dict.WriteString("), }")

	size := preambleSize + dict.Len()
	size += headerAlign - size%headerAlign
	if size < total {
		size = total
	}

	buf := make([]byte, 0, size)
	buf = append(buf, magic...)
	buf = append(buf, versionMajor, versionMinor)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(size-preambleSize))
	buf = append(buf, dict.Bytes()...)
	for len(buf) < size-1 {
		buf = append(buf, ' ')
	}
	return append(buf, '\n')
}

// DecodeHeader reads and parses one npy header from r, leaving r positioned
// at the first payload byte.
func DecodeHeader(r io.Reader) (Header, error) {
	pre := make([]byte, preambleSize)
	if _, err := io.ReadFull(r, pre); err != nil {
		return Header{}, fmt.Errorf("%w: short preamble: %v", ErrFormat, err)
	}
	if string(pre[:len(magic)]) != magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrFormat, pre[:len(magic)])
	}
	dictLen := binary.LittleEndian.Uint16(pre[8:10])
	dict := make([]byte, dictLen)
	if _, err := io.ReadFull(r, dict); err != nil {
		return Header{}, fmt.Errorf("%w: short header dictionary: %v", ErrFormat, err)
	}
	return parseHeaderDict(string(dict))
}

// parseHeaderDict extracts the three header fields from the constrained
// Python-literal dictionary text. The format is narrow enough that targeted
// substring searches are the whole parser; anything that does not match is a
// hard error.
func parseHeaderDict(dict string) (Header, error) {
	var h Header

	i := strings.Index(dict, "'fortran_order':")
	if i < 0 {
		return h, fmt.Errorf("%w: header dictionary lacks 'fortran_order'", ErrFormat)
	}
	switch rest := strings.TrimLeft(dict[i+len("'fortran_order':"):], " "); {
	case strings.HasPrefix(rest, "True"):
		h.Fortran = true
	case strings.HasPrefix(rest, "False"):
		h.Fortran = false
	default:
		return h, fmt.Errorf("%w: unreadable 'fortran_order' value", ErrFormat)
	}

	lparen := strings.Index(dict, "(")
	rparen := strings.Index(dict, ")")
	if lparen < 0 || rparen < lparen {
		return h, fmt.Errorf("%w: header dictionary lacks a shape tuple", ErrFormat)
	}
	fields := strings.Split(dict[lparen+1:rparen], ",")
	if len(fields) > 1 && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1] // rank-1 tuples end "N,)"
	}
	h.Shape = make([]int, 0, len(fields))
	for _, field := range fields {
		dim, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || dim < 0 {
			return h, fmt.Errorf("%w: bad shape dimension %q", ErrFormat, strings.TrimSpace(field))
		}
		h.Shape = append(h.Shape, dim)
	}

	i = strings.Index(dict, "'descr':")
	if i < 0 {
		return h, fmt.Errorf("%w: header dictionary lacks 'descr'", ErrFormat)
	}
	descr := strings.TrimLeft(dict[i+len("'descr':"):], " ")
	if len(descr) < 4 || descr[0] != '\'' {
		return h, fmt.Errorf("%w: unreadable 'descr' value", ErrFormat)
	}
	descr = descr[1:]
	switch descr[0] {
	case '<', '|':
		// little-endian or single-byte; both readable on a little-endian host
	case '>':
		return h, fmt.Errorf("%w: descr %q", ErrBigEndian, descr[:3])
	default:
		return h, fmt.Errorf("%w: descr has unknown byte-order mark %q", ErrFormat, descr[0])
	}
	code := descr[1]
	end := strings.IndexByte(descr[2:], '\'')
	if end < 0 {
		return h, fmt.Errorf("%w: unterminated 'descr' value", ErrFormat)
	}
	size, err := strconv.Atoi(descr[2 : 2+end])
	if err != nil || size <= 0 {
		return h, fmt.Errorf("%w: bad element size in descr %q", ErrFormat, descr[:2+end])
	}
	h.ElemSize = size
	h.Dtype = DtypeOf(code, size)
	return h, nil
}
