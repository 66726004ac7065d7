// Package wad implements the binary WAD archive container: a 12-byte
// header (four-byte magic, lump count, directory offset), a flat lump
// directory, and per-lump data ownership. All multi-byte integers are
// little-endian; lump names are 8-byte NUL-padded ASCII.
package wad

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"

	"github.com/GitExl/WADMerge/internal/binio"
	"github.com/GitExl/WADMerge/internal/omap"
)

// Kind distinguishes IWAD (base game archive) from PWAD (add-on
// archive); it is a header tag only, with no structural effect.
type Kind [4]byte

var (
	IWAD = Kind{'I', 'W', 'A', 'D'}
	PWAD = Kind{'P', 'W', 'A', 'D'}
)

func (k Kind) String() string { return string(k[:]) }

const (
	headerSize    = 12
	directorySize = 16
	nameWidth     = 8
)

// Archive is a typed container of Lumps, preserving insertion order
// and supporting lookup by both name and ordinal position.
type Archive struct {
	Kind     Kind
	Path     string
	Basename string

	lumps *omap.Map[string, *Lump]
}

// New constructs an empty archive of the given kind, ready to receive
// lumps via AddLump.
func New(kind Kind, basename string) *Archive {
	return &Archive{
		Kind:     kind,
		Basename: basename,
		lumps:    omap.New[string, *Lump](),
	}
}

// Load reads an entire WAD file into memory: header, directory, and
// every lump's bytes. Read contract per the container format: magic
// must be IWAD or PWAD (ErrInvalidFormat otherwise), and the declared
// directory offset must not exceed the file length (ErrCorruptHeader
// otherwise).
func Load(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("wad: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, xerrors.Errorf("wad: stat %s: %w", path, err)
	}
	fileSize := info.Size()

	var hdr [headerSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return nil, xerrors.Errorf("wad: read header %s: %w", path, err)
	}

	var kind Kind
	copy(kind[:], hdr[:4])
	if kind != IWAD && kind != PWAD {
		return nil, xerrors.Errorf("wad: %s: %w", path, ErrInvalidFormat)
	}

	numLumps := le32(hdr[4:8])
	dirOffset := le32(hdr[8:12])
	if int64(dirOffset) < headerSize || int64(dirOffset) > fileSize {
		return nil, xerrors.Errorf("wad: %s: %w", path, ErrCorruptHeader)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	a := New(kind, base)
	a.Path = path

	if _, err := f.Seek(int64(dirOffset), io.SeekStart); err != nil {
		return nil, xerrors.Errorf("wad: seek directory %s: %w", path, err)
	}

	type dirEntry struct {
		offset uint32
		size   uint32
		name   string
	}
	entries := make([]dirEntry, numLumps)
	var raw [directorySize]byte
	for i := uint32(0); i < numLumps; i++ {
		if _, err := io.ReadFull(f, raw[:]); err != nil {
			return nil, xerrors.Errorf("wad: read directory entry %d of %s: %w", i, path, err)
		}
		entries[i] = dirEntry{
			offset: le32(raw[0:4]),
			size:   le32(raw[4:8]),
			name:   binio.TrimName(raw[8:16]),
		}
	}

	for i, e := range entries {
		data := make([]byte, e.size)
		if e.size > 0 {
			if _, err := f.ReadAt(data, int64(e.offset)); err != nil {
				return nil, xerrors.Errorf("wad: read lump %q (%d of %s): %w", e.name, i, path, err)
			}
		}
		a.lumps.Add(e.name, &Lump{
			Name:   e.name,
			Data:   data,
			Source: a,
			Index:  i,
		})
	}

	return a, nil
}

// AddLump appends a lump to the archive, unconditionally (duplicate
// names are permitted; see internal/omap's shadowing semantics).
func (a *Archive) AddLump(l *Lump) {
	l.Source = a
	l.Index = a.lumps.Len()
	a.lumps.Add(l.Name, l)
}

// Len returns the number of lumps, counting duplicate names.
func (a *Archive) Len() int { return a.lumps.Len() }

// At returns the lump at ordinal position i.
func (a *Archive) At(i int) *Lump {
	_, l := a.lumps.At(i)
	return l
}

// Get returns the lump bound to name. The underlying map always
// returns the latest binding for a key, so when several lumps share
// a name, Get returns the one added last; the earlier ones are still
// reachable by position through At.
func (a *Archive) Get(name string) (*Lump, bool) {
	return a.lumps.Get(name)
}

// Write serializes the archive: lump data packed back-to-back
// starting at byte 12 in insertion order, followed by the directory.
// Offsets are recomputed from scratch; the header's lump count is
// always the actual number of lumps written, never a value carried
// over from a source archive.
func (a *Archive) Write(w io.Writer) error {
	n := a.lumps.Len()
	offsets := make([]uint32, n)
	offset := uint32(headerSize)

	var body bytes.Buffer
	for i := 0; i < n; i++ {
		l := a.At(i)
		offsets[i] = offset
		body.Write(l.Data)
		offset += uint32(len(l.Data))
	}

	var out bytes.Buffer
	out.Write(a.Kind[:])
	binio.WriteUint32(&out, uint32(n))
	binio.WriteUint32(&out, offset)
	out.Write(body.Bytes())

	for i := 0; i < n; i++ {
		l := a.At(i)
		binio.WriteUint32(&out, offsets[i])
		binio.WriteUint32(&out, uint32(len(l.Data)))
		binio.PutName(&out, l.Name, nameWidth)
	}

	if _, err := w.Write(out.Bytes()); err != nil {
		return xerrors.Errorf("wad: write archive: %w", err)
	}
	return nil
}

// WriteFile serializes the archive to a new file at path. The file
// handle is closed exactly once; if serialization fails the partial
// file is left on disk rather than atomically replaced.
func (a *Archive) WriteFile(path string) (err error) {
	f, createErr := os.Create(path)
	if createErr != nil {
		return xerrors.Errorf("wad: create %s: %w", path, createErr)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := a.Write(f); err != nil {
		return fmt.Errorf("wad: write %s: %w", path, err)
	}
	return nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
