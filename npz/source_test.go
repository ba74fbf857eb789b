package npz

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain pulls everything out of src in chunkSize pieces.
func drain(t *testing.T, src Source, chunkSize int) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, chunkSize)
	for {
		n, err := src.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
	}
}

func TestEntrySourceDrainsHeaderThenData(t *testing.T) {
	header := []byte("HEADERBYTES")
	data := []byte("payload-payload-payload")
	src := NewEntrySource(header, data)

	st := src.Stat()
	assert.Equal(t, int64(len(header)+len(data)), st.Size)
	assert.Equal(t, uint16(methodStored), st.Method)
	assert.False(t, st.Encrypted)

	require.NoError(t, src.Open())
	want := append(append([]byte{}, header...), data...)

	// chunk sizes that divide, straddle, and exceed the header length
	for _, chunk := range []int{1, 3, 5, 11, 16, 64} {
		require.NoError(t, src.Open())
		got := drain(t, src, chunk)
		assert.Equal(t, want, got, "chunk size %d", chunk)
	}
}

func TestEntrySourceReopen(t *testing.T) {
	src := NewEntrySource([]byte("hh"), []byte("dddd"))
	first := drain(t, src, 3)
	require.NoError(t, src.Open())
	second := drain(t, src, 3)
	assert.Equal(t, first, second, "Open must rewind the source")
	require.NoError(t, src.Close())
}

func TestEntrySourceEmptyData(t *testing.T) {
	src := NewEntrySource([]byte("only-header"), nil)
	assert.Equal(t, int64(11), src.Stat().Size)
	got := drain(t, src, 4)
	assert.Equal(t, []byte("only-header"), got)

	n, err := src.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err, "a drained source keeps reporting EOF")
}

func TestEntrySourceZeroLengthRead(t *testing.T) {
	src := NewEntrySource([]byte("h"), []byte("d"))
	n, err := src.Read(nil)
	assert.Equal(t, 0, n)
	assert.NoError(t, err, "an empty destination is not end-of-entry")
	got := drain(t, src, 8)
	assert.Equal(t, []byte("hd"), got)
}
