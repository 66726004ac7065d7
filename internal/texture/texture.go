// Package texture implements the TEXTURE1/TEXTURE2 + PNAMES codec,
// including Strife 1.1 variant detection (latched from an overloaded
// field the first time a non-Doom-shaped record is seen) and the
// patch-index renumbering performed across a merged texture table.
package texture

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"golang.org/x/xerrors"

	"github.com/GitExl/WADMerge/internal/binio"
	"github.com/GitExl/WADMerge/internal/dupe"
	"github.com/GitExl/WADMerge/internal/omap"
	"github.com/GitExl/WADMerge/internal/wad"
)

const (
	nameWidth = 8

	doomHeaderSize   = 22
	strifeHeaderSize = 18
	doomPatchSize    = 10
	strifePatchSize  = 6
)

// DefaultNullTextureNames is the built-in "pinned to the top of
// TEXTURE1" set: the first entry of TEXTURE1 in several shipped IWADs
// is historically a placeholder/error texture, and user WADs expect
// it to stay first after a merge. A MergeProfile may extend this set.
var DefaultNullTextureNames = []string{"AASHITTY", "AASTINKY", "BADPATCH"}

// PatchDef is one patch composited into a TextureDef.
type PatchDef struct {
	XOffset, YOffset int16

	// PatchName is the canonical reference, resolved from PNAMES by
	// index at read time.
	PatchName string

	// PatchIndex is a derived cache, stale from the moment
	// PatchName is resolved until UpdatePatchNames rewrites it
	// immediately before serialization. Equality between PatchDefs
	// deliberately ignores it.
	PatchIndex int
}

// TextureDef is a named composition of patches.
type TextureDef struct {
	Name          string
	Width, Height int16
	Patches       []PatchDef

	// sourceArchive is the basename of the archive this definition
	// was read from, used only to build DuplicateRecord full names.
	sourceArchive string
}

// Equal compares name, width, height, and each patch's x, y, and
// patch name. The numeric patch index is excluded since it is
// rebuilt from scratch whenever patch tables are renumbered.
func (t *TextureDef) Equal(o *TextureDef) bool {
	if t.Name != o.Name || t.Width != o.Width || t.Height != o.Height {
		return false
	}
	if len(t.Patches) != len(o.Patches) {
		return false
	}
	for i := range t.Patches {
		a, b := t.Patches[i], o.Patches[i]
		if a.XOffset != b.XOffset || a.YOffset != b.YOffset || a.PatchName != b.PatchName {
			return false
		}
	}
	return true
}

// Table is a texture table: the union of TEXTURE1/TEXTURE2 records
// read so far, plus the patch-name list they reference.
type Table struct {
	textures   *omap.Map[string, *TextureDef]
	patchNames []string

	// strifeMode latches true the first time Strife-variant header
	// layout is detected and then sticks for every subsequent read
	// and for serialization.
	strifeMode bool

	// NullTextureNames overrides DefaultNullTextureNames when set by
	// a MergeProfile; nil means "use the default".
	NullTextureNames []string

	Logger *log.Logger
}

// NewTable returns an empty texture table.
func NewTable() *Table {
	return &Table{
		textures: omap.New[string, *TextureDef](),
		Logger:   log.New(io.Discard, "", 0),
	}
}

// StrifeMode reports whether Strife 1.1 layout has latched.
func (t *Table) StrifeMode() bool { return t.strifeMode }

// Len returns the number of distinct texture names in the table.
func (t *Table) Len() int { return t.textures.Len() }

// Add appends a TextureDef directly, for callers building a table
// programmatically (e.g. tests, or a future config-seeded table)
// rather than via ReadFrom.
func (t *Table) Add(def *TextureDef) { t.textures.Add(def.Name, def) }

// Textures returns the table's TextureDefs in insertion order.
func (t *Table) Textures() []*TextureDef { return t.textures.Values() }

// ReadFrom builds a fresh Table from one archive's PNAMES + TEXTURE1
// (+ TEXTURE2 if present), resolving each patch's PatchName from
// PNAMES by index at read time. Absent PNAMES or TEXTURE1 is a
// documented no-op, not an error. Patch index referring past PNAMES
// is fatal (the error wraps internal/wad.ErrIntegrity).
func ReadFrom(a *wad.Archive) (*Table, error) {
	t := NewTable()

	pnamesLump, hasPnames := a.Get("PNAMES")
	tex1Lump, hasTex1 := a.Get("TEXTURE1")
	if !hasPnames || !hasTex1 {
		return t, nil
	}
	pnamesLump.Used = true

	byIndex, err := readPNAMES(pnamesLump.Data)
	if err != nil {
		return nil, xerrors.Errorf("texture: PNAMES in %s: %w", a.Basename, err)
	}

	tex1Lump.Used = true
	if err := t.readTextureLump(tex1Lump.Data, byIndex, a.Basename); err != nil {
		return nil, xerrors.Errorf("texture: TEXTURE1 in %s: %w", a.Basename, err)
	}

	if tex2Lump, ok := a.Get("TEXTURE2"); ok {
		tex2Lump.Used = true
		if err := t.readTextureLump(tex2Lump.Data, byIndex, a.Basename); err != nil {
			return nil, xerrors.Errorf("texture: TEXTURE2 in %s: %w", a.Basename, err)
		}
	}

	return t, nil
}

func readPNAMES(data []byte) ([]string, error) {
	r := bytes.NewReader(data)
	count, err := binio.ReadUint32(r)
	if err != nil {
		return nil, binio.ErrUnexpectedEOF("PNAMES count", err)
	}
	names := make([]string, count)
	for i := range names {
		name, err := binio.ReadName(r, nameWidth)
		if err != nil {
			return nil, binio.ErrUnexpectedEOF(fmt.Sprintf("PNAMES entry %d", i), err)
		}
		names[i] = name
	}
	return names, nil
}

func (t *Table) readTextureLump(data []byte, byIndex []string, sourceArchive string) error {
	r := bytes.NewReader(data)
	count, err := binio.ReadUint32(r)
	if err != nil {
		return binio.ErrUnexpectedEOF("texture count", err)
	}
	offsets := make([]uint32, count)
	for i := range offsets {
		off, err := binio.ReadUint32(r)
		if err != nil {
			return binio.ErrUnexpectedEOF(fmt.Sprintf("texture offset %d", i), err)
		}
		offsets[i] = off
	}

	for i, off := range offsets {
		if int64(off) > int64(len(data)) {
			return xerrors.Errorf("texture %d: offset %d out of bounds: %w", i, off, wad.ErrIntegrity)
		}
		tr := bytes.NewReader(data[off:])
		def, err := t.readTextureRecord(tr, byIndex)
		if err != nil {
			return xerrors.Errorf("texture %d at offset %d: %w", i, off, err)
		}
		def.sourceArchive = sourceArchive
		t.textures.Update(def.Name, def)
	}
	return nil
}

func (t *Table) readTextureRecord(r io.Reader, byIndex []string) (*TextureDef, error) {
	name, err := binio.ReadName(r, nameWidth)
	if err != nil {
		return nil, binio.ErrUnexpectedEOF("texture name", err)
	}
	if _, err := discard(r, 4); err != nil { // "unused"/masked field
		return nil, binio.ErrUnexpectedEOF("texture unused field", err)
	}
	width, err := binio.ReadInt16(r)
	if err != nil {
		return nil, binio.ErrUnexpectedEOF("texture width", err)
	}
	height, err := binio.ReadInt16(r)
	if err != nil {
		return nil, binio.ErrUnexpectedEOF("texture height", err)
	}

	field, err := binio.ReadUint16(r)
	if err != nil {
		return nil, binio.ErrUnexpectedEOF("texture strife-detection field", err)
	}

	var patchCount uint16
	switch {
	case t.strifeMode:
		patchCount = field
	case field != 0:
		t.strifeMode = true
		patchCount = field
	default:
		if _, err := discard(r, 2); err != nil { // second half of column-directory padding
			return nil, binio.ErrUnexpectedEOF("texture padding", err)
		}
		patchCount, err = binio.ReadUint16(r)
		if err != nil {
			return nil, binio.ErrUnexpectedEOF("texture patch count", err)
		}
	}

	patches := make([]PatchDef, patchCount)
	for i := range patches {
		x, err := binio.ReadInt16(r)
		if err != nil {
			return nil, binio.ErrUnexpectedEOF(fmt.Sprintf("patch %d x-offset", i), err)
		}
		y, err := binio.ReadInt16(r)
		if err != nil {
			return nil, binio.ErrUnexpectedEOF(fmt.Sprintf("patch %d y-offset", i), err)
		}
		idx, err := binio.ReadUint16(r)
		if err != nil {
			return nil, binio.ErrUnexpectedEOF(fmt.Sprintf("patch %d index", i), err)
		}
		if !t.strifeMode {
			if _, err := discard(r, 4); err != nil { // stepdir + colormap
				return nil, binio.ErrUnexpectedEOF(fmt.Sprintf("patch %d padding", i), err)
			}
		}
		if int(idx) >= len(byIndex) {
			return nil, xerrors.Errorf("patch %d: index %d out of range of %d PNAMES: %w", i, idx, len(byIndex), wad.ErrIntegrity)
		}
		patches[i] = PatchDef{XOffset: x, YOffset: y, PatchName: byIndex[idx], PatchIndex: int(idx)}
	}

	return &TextureDef{Name: name, Width: width, Height: height, Patches: patches}, nil
}

func discard(r io.Reader, n int64) (int64, error) {
	return io.CopyN(io.Discard, r, n)
}

// MergeWith folds other's textures into t: a new name is appended; an
// existing name compares structurally (Equal) and is kept silently if
// equal, or overwritten with a DuplicateRecord otherwise. If either
// table has latched Strife mode, the merged table does too, since
// serialization follows t.strifeMode.
func (t *Table) MergeWith(other *Table) []dupe.Record {
	if other.strifeMode {
		t.strifeMode = true
	}
	var records []dupe.Record
	for _, name := range other.textures.Keys() {
		incoming, _ := other.textures.Get(name)
		existing, ok := t.textures.Get(name)
		if !ok {
			t.textures.Add(name, incoming)
			continue
		}
		if existing.Equal(incoming) {
			continue
		}
		t.textures.Update(name, incoming)
		records = append(records, dupe.Record{
			Op:   dupe.Overwrite,
			Kind: "texture",
			A:    existing.sourceArchive + ":" + existing.Name,
			B:    incoming.sourceArchive + ":" + incoming.Name,
		})
	}
	return records
}

// UpdatePatchNames rebuilds the patch-name list from the first-seen
// union of PatchNames in use across all textures, then rewrites every
// PatchDef's PatchIndex to its position in the rebuilt list. It must
// be invoked exactly once before WriteTo.
func (t *Table) UpdatePatchNames() {
	seen := make(map[string]int)
	var names []string
	for _, def := range t.textures.Values() {
		for i := range def.Patches {
			p := &def.Patches[i]
			idx, ok := seen[p.PatchName]
			if !ok {
				idx = len(names)
				seen[p.PatchName] = idx
				names = append(names, p.PatchName)
			}
			p.PatchIndex = idx
		}
	}
	t.patchNames = names
}

// PatchNames returns the patch-name list built by UpdatePatchNames.
func (t *Table) PatchNames() []string { return t.patchNames }

func (t *Table) isNullTexture(name string) bool {
	names := t.NullTextureNames
	if names == nil {
		names = DefaultNullTextureNames
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Sort orders textures ascending by name, except that names in the
// null-texture set sort before everything else; if more than one
// null-texture name is present simultaneously that is logged as a
// likely user error, and the implementation falls back to natural
// name order between them rather than failing.
func (t *Table) Sort() {
	seenNull := 0
	t.textures.Sort(func(a, b string) bool {
		aNull, bNull := t.isNullTexture(a), t.isNullTexture(b)
		if aNull && bNull {
			seenNull++
			if seenNull == 1 {
				t.Logger.Printf("warning: more than one null texture name present (%q, %q); sorting by name", a, b)
			}
			return a < b
		}
		if aNull != bNull {
			return aNull
		}
		return a < b
	})
}

// WriteTo serializes the table into a PNAMES lump and a TEXTURE1 lump
// on the given archive. TEXTURE2 is never produced, even if it was
// read, matching the historical writer this is modeled on. Callers
// must call UpdatePatchNames first.
func (t *Table) WriteTo(a *wad.Archive) {
	a.AddLump(&wad.Lump{Name: "PNAMES", Data: t.encodePNAMES()})
	a.AddLump(&wad.Lump{Name: "TEXTURE1", Data: t.encodeTexture1()})
}

func (t *Table) encodePNAMES() []byte {
	var buf bytes.Buffer
	binio.WriteUint32(&buf, uint32(len(t.patchNames)))
	for _, n := range t.patchNames {
		binio.PutName(&buf, n, nameWidth)
	}
	return buf.Bytes()
}

func (t *Table) encodeTexture1() []byte {
	defs := t.textures.Values()

	headerSize := doomHeaderSize
	patchSize := doomPatchSize
	if t.strifeMode {
		headerSize = strifeHeaderSize
		patchSize = strifePatchSize
	}

	var records bytes.Buffer
	offsets := make([]uint32, len(defs))
	base := uint32(4 + 4*len(defs)) // count + offset table
	offset := base
	for i, def := range defs {
		offsets[i] = offset
		t.encodeTextureRecord(&records, def)
		offset += uint32(headerSize + len(def.Patches)*patchSize)
	}

	var buf bytes.Buffer
	binio.WriteUint32(&buf, uint32(len(defs)))
	for _, off := range offsets {
		binio.WriteUint32(&buf, off)
	}
	buf.Write(records.Bytes())
	return buf.Bytes()
}

func (t *Table) encodeTextureRecord(buf *bytes.Buffer, def *TextureDef) {
	binio.PutName(buf, def.Name, nameWidth)
	buf.Write(make([]byte, 4)) // unused/masked
	binio.WriteInt16(buf, def.Width)
	binio.WriteInt16(buf, def.Height)
	if t.strifeMode {
		binio.WriteUint16(buf, uint16(len(def.Patches)))
	} else {
		buf.Write(make([]byte, 4)) // column-directory padding
		binio.WriteUint16(buf, uint16(len(def.Patches)))
	}
	for _, p := range def.Patches {
		binio.WriteInt16(buf, p.XOffset)
		binio.WriteInt16(buf, p.YOffset)
		binio.WriteUint16(buf, uint16(p.PatchIndex))
		if !t.strifeMode {
			buf.Write(make([]byte, 4)) // stepdir + colormap
		}
	}
}
