package npz

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/cwrogers/npio/getbytes"
	"github.com/cwrogers/npio/npy"
)

const entrySuffix = ".npy"

// Save writes a into the archive at zipPath as the entry named name.
// ModeWrite deletes any existing archive and creates a fresh one holding
// only this entry. ModeAppend adds the entry to an existing archive; a prior
// entry of the same name is replaced, never duplicated.
func Save(zipPath, name string, a *npy.Array, mode npy.Mode) error {
	if a.Empty() {
		return fmt.Errorf("npz: cannot save an empty array as %q", name)
	}
	if a.Fortran() {
		return fmt.Errorf("npz: cannot save fortran-order data as %q", name)
	}
	header := npy.EncodeHeader(a.Dtype(), a.ElemSize(), a.Shape())
	src := NewEntrySource(header, a.Data())
	entryName := name + entrySuffix

	if mode == npy.ModeAppend {
		f, err := os.OpenFile(zipPath, os.O_RDWR, 0644)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// no archive yet: create one below
		case err != nil:
			return fmt.Errorf("npz save: %w", err)
		default:
			aerr := appendTo(f, entryName, src)
			if cerr := f.Close(); aerr == nil {
				aerr = cerr
			}
			return aerr
		}
	} else {
		if err := os.Remove(zipPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("npz save: cannot delete existing %s: %w", zipPath, err)
		}
	}

	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("npz save: %w", err)
	}
	werr := writeFresh(f, []pendingEntry{{entryName, src}})
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}

// SaveSlice writes data as one named array of the given shape in the
// archive at zipPath.
func SaveSlice[T getbytes.Element](zipPath, name string, data []T, shape []int, mode npy.Mode) error {
	a, err := npy.NewArrayFrom(shape, npy.DtypeFor[T](), getbytes.Sizeof[T](), false, getbytes.FromSlice(data))
	if err != nil {
		return err
	}
	return Save(zipPath, name, a, mode)
}

// Load reads the single entry named name from the archive at zipPath. A
// missing entry yields ErrNotFound; other entries' payloads are skipped, not
// decoded.
func Load(zipPath, name string) (*npy.Array, error) {
	f, err := os.Open(zipPath)
	if err != nil {
		return nil, fmt.Errorf("npz load: %w", err)
	}
	defer f.Close()

	target := name + entrySuffix
	for {
		ent, done, err := readLocalHeader(f)
		if err != nil {
			return nil, fmt.Errorf("npz load %s: %w", zipPath, err)
		}
		if done {
			return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, name, zipPath)
		}
		if ent.name == target {
			a, err := npy.ReadArray(f)
			if err != nil {
				return nil, fmt.Errorf("npz load %s: entry %q: %w", zipPath, name, err)
			}
			return a, nil
		}
		if _, err := f.Seek(int64(ent.size), io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("npz load %s: %w", zipPath, err)
		}
	}
}

// LoadAll reads every entry in the archive at zipPath, keyed by entry name
// with the ".npy" suffix stripped.
func LoadAll(zipPath string) (map[string]*npy.Array, error) {
	f, err := os.Open(zipPath)
	if err != nil {
		return nil, fmt.Errorf("npz load: %w", err)
	}
	defer f.Close()

	arrays := make(map[string]*npy.Array)
	r := bufio.NewReader(f)
	for {
		ent, done, err := readLocalHeader(r)
		if err != nil {
			return nil, fmt.Errorf("npz load %s: %w", zipPath, err)
		}
		if done {
			return arrays, nil
		}
		a, err := npy.ReadArray(r)
		if err != nil {
			return nil, fmt.Errorf("npz load %s: entry %q: %w", zipPath, ent.name, err)
		}
		arrays[strings.TrimSuffix(ent.name, entrySuffix)] = a
	}
}

// pendingEntry pairs an entry name with the source that supplies its bytes.
type pendingEntry struct {
	name string
	src  Source
}

// writeFresh writes a complete archive: every entry's local record and
// stored bytes, then the central directory and footer.
func writeFresh(f *os.File, entries []pendingEntry) error {
	var off int64
	var dir []byte
	for _, e := range entries {
		central, end, err := writeEntry(f, e.name, e.src, off)
		if err != nil {
			return err
		}
		dir = append(dir, central...)
		off = end
	}
	tail := append(dir, endRecord(len(entries), len(dir), off)...)
	if _, err := f.WriteAt(tail, off); err != nil {
		return fmt.Errorf("npz save: writing central directory: %w", err)
	}
	return nil
}

// appendTo adds one entry to an existing archive. The new local record and
// bytes overwrite the spot where the central directory began; the buffered
// directory, extended with the new entry's record, is re-appended after it
// along with an updated footer. A name collision falls back to rewriting the
// whole archive so no orphaned local record survives.
func appendTo(f *os.File, entryName string, src Source) error {
	footer, err := parseFooter(f)
	if err != nil {
		return fmt.Errorf("npz append: %w", err)
	}
	dir := make([]byte, footer.dirSize)
	if _, err := f.ReadAt(dir, footer.dirOffset); err != nil {
		return fmt.Errorf("%w: reading central directory: %v", ErrArchive, err)
	}
	names, err := dirEntryNames(dir)
	if err != nil {
		return fmt.Errorf("npz append: %w", err)
	}
	for _, existing := range names {
		if existing == entryName {
			return rewriteReplacing(f, entryName, src)
		}
	}

	central, end, err := writeEntry(f, entryName, src, footer.dirOffset)
	if err != nil {
		return err
	}
	tail := append(dir, central...)
	tail = append(tail, endRecord(footer.records+1, len(dir)+len(central), end)...)
	if _, err := f.WriteAt(tail, end); err != nil {
		return fmt.Errorf("npz append: writing central directory: %w", err)
	}
	return nil
}

// rawEntry is one archive entry's name and complete npy bytes, in file
// order.
type rawEntry struct {
	name string
	body []byte
}

// rewriteReplacing rebuilds the archive from scratch with src taking the
// place of the entry it collides with.
func rewriteReplacing(f *os.File, entryName string, src Source) error {
	entries, err := readRawEntries(f)
	if err != nil {
		return fmt.Errorf("npz append: %w", err)
	}
	pending := make([]pendingEntry, 0, len(entries))
	for _, e := range entries {
		if e.name == entryName {
			pending = append(pending, pendingEntry{entryName, src})
		} else {
			pending = append(pending, pendingEntry{e.name, NewEntrySource(e.body, nil)})
		}
	}
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("npz append: %w", err)
	}
	return writeFresh(f, pending)
}

// readRawEntries scans every local entry and returns its stored bytes
// verbatim, without decoding the npy content.
func readRawEntries(f *os.File) ([]rawEntry, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	var entries []rawEntry
	r := bufio.NewReader(f)
	for {
		ent, done, err := readLocalHeader(r)
		if err != nil {
			return nil, err
		}
		if done {
			return entries, nil
		}
		body := make([]byte, ent.size)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("%w: entry %q: short payload: %v", ErrArchive, ent.name, err)
		}
		entries = append(entries, rawEntry{name: ent.name, body: body})
	}
}

// writeEntry frames src as one stored entry starting at offset off. The CRC
// is accumulated while the source streams and patched back into the local
// header afterwards, so the entry is written in a single pass over the data.
// It returns the entry's central directory record and the offset just past
// its stored bytes.
func writeEntry(f *os.File, name string, src Source, off int64) (central []byte, end int64, err error) {
	st := src.Stat()
	if st.Method != methodStored || st.Encrypted {
		return nil, 0, fmt.Errorf("npz: entry %q: only stored, unencrypted entries are supported", name)
	}
	if err := src.Open(); err != nil {
		return nil, 0, fmt.Errorf("npz: entry %q: %w", name, err)
	}
	defer src.Close()

	local := localRecord(name, 0, int(st.Size))
	if _, err := f.WriteAt(local, off); err != nil {
		return nil, 0, fmt.Errorf("npz: entry %q: writing local header: %w", name, err)
	}

	pos := off + int64(len(local))
	var crc uint32
	var written int64
	buf := make([]byte, 32*1024)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			crc = crc32.Update(crc, crc32.IEEETable, buf[:n])
			if _, werr := f.WriteAt(buf[:n], pos); werr != nil {
				return nil, 0, fmt.Errorf("npz: entry %q: writing payload: %w", name, werr)
			}
			pos += int64(n)
			written += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, 0, fmt.Errorf("npz: entry %q: %w", name, rerr)
		}
	}
	if written != st.Size {
		return nil, 0, fmt.Errorf("npz: entry %q: source supplied %d bytes but declared %d", name, written, st.Size)
	}

	crcField := make([]byte, 4)
	binary.LittleEndian.PutUint32(crcField, crc)
	if _, err := f.WriteAt(crcField, off+14); err != nil {
		return nil, 0, fmt.Errorf("npz: entry %q: patching crc: %w", name, err)
	}
	copy(local[14:18], crcField)
	return centralRecord(local, off), pos, nil
}
