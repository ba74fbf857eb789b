// Package npz reads and writes npz archives: zip containers whose entries
// are each a complete npy file stored uncompressed under "<name>.npy". Only
// the zip subset those archives need is implemented: 30-byte local file
// headers, 46-byte central directory records, and the 22-byte
// end-of-central-directory footer, all fields little-endian, method STORE.
package npz

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	localHeaderSignature     = 0x04034b50
	centralDirSignature      = 0x02014b50
	endOfCentralDirSignature = 0x06054b50

	localHeaderSize     = 30
	centralHeaderSize   = 46
	endOfCentralDirSize = 22

	zipVersion   = 20 // version 2.0: the floor for any directory-bearing zip
	methodStored = 0
)

var (
	// ErrArchive reports a structurally invalid or truncated archive.
	ErrArchive = errors.New("npz: invalid archive")

	// ErrNotFound reports that a requested entry name is absent from an
	// otherwise valid archive.
	ErrNotFound = errors.New("npz: entry not found")
)

// leWriter accumulates little-endian integer fields and raw bytes, the order
// every multi-byte zip field is stored in.
type leWriter struct {
	buf []byte
}

func (w *leWriter) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *leWriter) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *leWriter) bytes(b []byte) { w.buf = append(w.buf, b...) }
func (w *leWriter) str(s string) { w.buf = append(w.buf, s...) }

// localRecord renders the local file header for a stored entry of the given
// size. The caller patches the CRC field (bytes 14:18) once it is known.
func localRecord(name string, crc uint32, size int) []byte {
	w := &leWriter{buf: make([]byte, 0, localHeaderSize+len(name))}
	w.u32(localHeaderSignature)
	w.u16(zipVersion)           // minimum version to extract
	w.u16(0)                    // general purpose bit flag
	w.u16(methodStored)         // compression method
	w.u16(0)                    // last mod time
	w.u16(0)                    // last mod date
	w.u32(crc)                  // crc32 of the stored bytes
	w.u32(uint32(size))         // compressed size
	w.u32(uint32(size))         // uncompressed size (equal: STORE)
	w.u16(uint16(len(name)))    // name length
	w.u16(0)                    // extra field length
	w.str(name)
	return w.buf
}

// centralRecord renders the central directory record for the entry whose
// local header (already CRC-patched) starts at offset. The 26 bytes from
// version-needed through extra-field-length are shared verbatim between the
// two record types, so they are copied from the local header.
func centralRecord(local []byte, offset int64) []byte {
	w := &leWriter{buf: make([]byte, 0, centralHeaderSize+len(local)-localHeaderSize)}
	w.u32(centralDirSignature)
	w.u16(zipVersion)                  // version made by
	w.bytes(local[4:localHeaderSize])  // shared middle fields
	w.u16(0)                           // comment length
	w.u16(0)                           // disk number start
	w.u16(0)                           // internal attributes
	w.u32(0)                           // external attributes
	w.u32(uint32(offset))              // local header offset
	w.bytes(local[localHeaderSize:])   // entry name
	return w.buf
}

// endRecord renders the end-of-central-directory footer.
func endRecord(records int, dirSize int, dirOffset int64) []byte {
	w := &leWriter{buf: make([]byte, 0, endOfCentralDirSize)}
	w.u32(endOfCentralDirSignature)
	w.u16(0)                   // this disk
	w.u16(0)                   // disk holding the directory
	w.u16(uint16(records))     // records on this disk
	w.u16(uint16(records))     // records total
	w.u32(uint32(dirSize))     // central directory size
	w.u32(uint32(dirOffset))   // central directory offset
	w.u16(0)                   // comment length
	return w.buf
}

// zipFooter is a parsed end-of-central-directory record.
type zipFooter struct {
	records   int
	dirSize   int
	dirOffset int64
}

// parseFooter reads the footer from the last 22 bytes of f.
func parseFooter(f *os.File) (zipFooter, error) {
	fi, err := f.Stat()
	if err != nil {
		return zipFooter{}, fmt.Errorf("%w: %v", ErrArchive, err)
	}
	if fi.Size() < endOfCentralDirSize {
		return zipFooter{}, fmt.Errorf("%w: %d bytes is too short for a footer", ErrArchive, fi.Size())
	}
	buf := make([]byte, endOfCentralDirSize)
	if _, err := f.ReadAt(buf, fi.Size()-endOfCentralDirSize); err != nil {
		return zipFooter{}, fmt.Errorf("%w: reading footer: %v", ErrArchive, err)
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != endOfCentralDirSignature {
		return zipFooter{}, fmt.Errorf("%w: bad footer signature", ErrArchive)
	}
	diskNo := binary.LittleEndian.Uint16(buf[4:6])
	diskStart := binary.LittleEndian.Uint16(buf[6:8])
	recordsOnDisk := binary.LittleEndian.Uint16(buf[8:10])
	records := binary.LittleEndian.Uint16(buf[10:12])
	commentLen := binary.LittleEndian.Uint16(buf[20:22])
	if diskNo != 0 || diskStart != 0 || recordsOnDisk != records {
		return zipFooter{}, fmt.Errorf("%w: multi-disk archives are not supported", ErrArchive)
	}
	if commentLen != 0 {
		return zipFooter{}, fmt.Errorf("%w: archive comments are not supported", ErrArchive)
	}
	return zipFooter{
		records:   int(records),
		dirSize:   int(binary.LittleEndian.Uint32(buf[12:16])),
		dirOffset: int64(binary.LittleEndian.Uint32(buf[16:20])),
	}, nil
}

// dirEntryNames walks a buffered central directory and returns the stored
// entry names in directory order.
func dirEntryNames(dir []byte) ([]string, error) {
	var names []string
	for off := 0; off < len(dir); {
		if off+centralHeaderSize > len(dir) {
			return nil, fmt.Errorf("%w: truncated central directory record", ErrArchive)
		}
		if binary.LittleEndian.Uint32(dir[off:off+4]) != centralDirSignature {
			return nil, fmt.Errorf("%w: bad central directory record signature", ErrArchive)
		}
		nameLen := int(binary.LittleEndian.Uint16(dir[off+28 : off+30]))
		extraLen := int(binary.LittleEndian.Uint16(dir[off+30 : off+32]))
		commentLen := int(binary.LittleEndian.Uint16(dir[off+32 : off+34]))
		end := off + centralHeaderSize + nameLen + extraLen + commentLen
		if end > len(dir) {
			return nil, fmt.Errorf("%w: truncated central directory record", ErrArchive)
		}
		names = append(names, string(dir[off+centralHeaderSize:off+centralHeaderSize+nameLen]))
		off = end
	}
	return names, nil
}

// localEntry is one parsed local file header.
type localEntry struct {
	name string
	size int // stored payload size (header + data of the npy entry)
}

// readLocalHeader reads the next local file header from r, consuming its
// name and extra field. done is true when the bytes at the cursor are not a
// local header, which marks the start of the central directory.
func readLocalHeader(r io.Reader) (ent localEntry, done bool, err error) {
	buf := make([]byte, localHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return localEntry{}, false, fmt.Errorf("%w: short local header: %v", ErrArchive, err)
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != localHeaderSignature {
		return localEntry{}, true, nil
	}
	ent.size = int(binary.LittleEndian.Uint32(buf[18:22]))
	nameLen := int(binary.LittleEndian.Uint16(buf[26:28]))
	extraLen := int(binary.LittleEndian.Uint16(buf[28:30]))
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return localEntry{}, false, fmt.Errorf("%w: short entry name: %v", ErrArchive, err)
	}
	ent.name = string(name)
	if extraLen > 0 {
		// extra-field contents carry no meaning here; length is all that matters
		if _, err := io.CopyN(io.Discard, r, int64(extraLen)); err != nil {
			return localEntry{}, false, fmt.Errorf("%w: short extra field: %v", ErrArchive, err)
		}
	}
	return ent, false, nil
}
