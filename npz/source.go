package npz

import (
	"io"
)

// SourceStat describes one archive entry before its bytes are pulled. It is
// consulted once, ahead of the first Read, so the writer can frame the entry
// with its exact stored size.
type SourceStat struct {
	Size      int64
	Method    uint16
	Encrypted bool
}

// Source supplies one archive entry's bytes on demand. Open resets the
// source to its beginning; Read fills p and returns io.EOF once everything
// has been handed out; Close releases whatever the source holds.
type Source interface {
	Open() error
	Read(p []byte) (int, error)
	Stat() SourceStat
	Close() error
}

// EntrySource is a Source over a pre-built npy header and a borrowed payload
// buffer. It drains the header first, then the payload, handing out bytes
// straight from the two buffers: the entry is never concatenated into an
// intermediate buffer, so archiving a large array costs no extra copy.
type EntrySource struct {
	header     []byte
	data       []byte
	off        int
	headerDone bool
}

// NewEntrySource returns a source over header and data. Both slices are
// borrowed: the source never frees or mutates them.
func NewEntrySource(header, data []byte) *EntrySource {
	return &EntrySource{header: header, data: data}
}

// Open rewinds the source to the start of the header.
func (s *EntrySource) Open() error {
	s.off = 0
	s.headerDone = false
	return nil
}

// Read copies the next bytes of the entry into p: header bytes until the
// header is exhausted, then payload bytes. Returns io.EOF once both are
// drained.
func (s *EntrySource) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if !s.headerDone {
		n := copy(p, s.header[s.off:])
		s.off += n
		if s.off == len(s.header) {
			s.headerDone = true
			s.off = 0
		}
		if n > 0 {
			return n, nil
		}
	}
	n := copy(p, s.data[s.off:])
	s.off += n
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Stat reports the entry's total stored size and its fixed framing: method
// STORE, no encryption.
func (s *EntrySource) Stat() SourceStat {
	return SourceStat{
		Size:   int64(len(s.header) + len(s.data)),
		Method: methodStored,
	}
}

// Close is a no-op: the source owns neither buffer.
func (s *EntrySource) Close() error {
	return nil
}
