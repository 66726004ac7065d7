// Package animswitch implements the ANIMATED and SWITCHES codec:
// fixed-record, sentinel-terminated streams describing Boom-style
// animated-texture cycles and pressable-switch texture pairs, with
// deduplication by texture-name key.
package animswitch

import (
	"bytes"
	"io"

	"golang.org/x/xerrors"

	"github.com/GitExl/WADMerge/internal/binio"
	"github.com/GitExl/WADMerge/internal/dupe"
	"github.com/GitExl/WADMerge/internal/omap"
	"github.com/GitExl/WADMerge/internal/wad"
)

// AnimKind distinguishes an ANIMATED record's target: a wall texture
// or a flat.
type AnimKind uint8

const (
	AnimWall AnimKind = 0
	AnimFlat AnimKind = 1
)

const (
	animNameWidth    = 9
	animRecordSize   = 23
	animSentinel     = 0xFF
	switchNameWidth  = 9
	switchRecordSize = 20
)

// AnimateDef is one ANIMATED entry.
type AnimateDef struct {
	Kind  AnimKind
	Last  string
	First string
	Speed uint32

	sourceArchive string
}

func (a *AnimateDef) key() string { return a.First + "\x00" + a.Last }

// SwitchDef is one SWITCHES entry. IWAD is the selector: 1=shareware,
// 2=registered, 3=commercial (the values the original format uses).
type SwitchDef struct {
	Off  string
	On   string
	IWAD uint16

	sourceArchive string
}

func (s *SwitchDef) key() string { return s.Off + "\x00" + s.On }

// Table is the cumulative set of animations and switches merged so
// far.
type Table struct {
	anims    *omap.Map[string, *AnimateDef]
	switches *omap.Map[string, *SwitchDef]
}

// NewTable returns an empty animation/switch table.
func NewTable() *Table {
	return &Table{
		anims:    omap.New[string, *AnimateDef](),
		switches: omap.New[string, *SwitchDef](),
	}
}

// Animations returns the merged ANIMATED entries in first-seen order.
func (t *Table) Animations() []*AnimateDef { return t.anims.Values() }

// Switches returns the merged SWITCHES entries in first-seen order.
func (t *Table) Switches() []*SwitchDef { return t.switches.Values() }

// ScanArchive reads a's ANIMATED and/or SWITCHES lumps (if present,
// claiming them) and merges their records into the table, returning
// any DuplicateRecords produced by a (first,last) or (off,on) key
// collision.
func (t *Table) ScanArchive(a *wad.Archive) ([]dupe.Record, error) {
	var records []dupe.Record

	if lump, ok := a.Get("ANIMATED"); ok {
		lump.Used = true
		anims, err := readAnimated(lump.Data)
		if err != nil {
			return nil, xerrors.Errorf("animswitch: ANIMATED in %s: %w", a.Basename, err)
		}
		for _, def := range anims {
			def.sourceArchive = a.Basename
			if rec := t.mergeAnim(def); rec != nil {
				records = append(records, *rec)
			}
		}
	}

	if lump, ok := a.Get("SWITCHES"); ok {
		lump.Used = true
		switches, err := readSwitches(lump.Data)
		if err != nil {
			return nil, xerrors.Errorf("animswitch: SWITCHES in %s: %w", a.Basename, err)
		}
		for _, def := range switches {
			def.sourceArchive = a.Basename
			if rec := t.mergeSwitch(def); rec != nil {
				records = append(records, *rec)
			}
		}
	}

	return records, nil
}

func (t *Table) mergeAnim(def *AnimateDef) *dupe.Record {
	existing, ok := t.anims.Get(def.key())
	t.anims.Update(def.key(), def)
	if !ok {
		return nil
	}
	return &dupe.Record{
		Op:   dupe.Overwrite,
		Kind: "animation",
		A:    existing.sourceArchive + ":" + existing.First,
		B:    def.sourceArchive + ":" + def.First,
	}
}

func (t *Table) mergeSwitch(def *SwitchDef) *dupe.Record {
	existing, ok := t.switches.Get(def.key())
	t.switches.Update(def.key(), def)
	if !ok {
		return nil
	}
	return &dupe.Record{
		Op:   dupe.Overwrite,
		Kind: "switch",
		A:    existing.sourceArchive + ":" + existing.Off,
		B:    def.sourceArchive + ":" + def.Off,
	}
}

func readAnimated(data []byte) ([]*AnimateDef, error) {
	r := bytes.NewReader(data)
	var defs []*AnimateDef
	for {
		var rec [animRecordSize]byte
		n, err := io.ReadFull(r, rec[:])
		if err == io.EOF && n == 0 {
			return nil, xerrors.Errorf("ANIMATED: reached EOF before sentinel record: %w", wad.ErrIntegrity)
		}
		if err != nil {
			return nil, xerrors.Errorf("ANIMATED: truncated record: %w", wad.ErrIntegrity)
		}
		if rec[0] == animSentinel {
			return defs, nil
		}
		defs = append(defs, &AnimateDef{
			Kind:  AnimKind(rec[0]),
			Last:  binio.TrimName(rec[1 : 1+animNameWidth]),
			First: binio.TrimName(rec[1+animNameWidth : 1+2*animNameWidth]),
			Speed: le32(rec[1+2*animNameWidth:]),
		})
	}
}

func readSwitches(data []byte) ([]*SwitchDef, error) {
	r := bytes.NewReader(data)
	var defs []*SwitchDef
	for {
		var rec [switchRecordSize]byte
		n, err := io.ReadFull(r, rec[:])
		if err == io.EOF && n == 0 {
			return nil, xerrors.Errorf("SWITCHES: reached EOF before sentinel record: %w", wad.ErrIntegrity)
		}
		if err != nil {
			return nil, xerrors.Errorf("SWITCHES: truncated record: %w", wad.ErrIntegrity)
		}
		selector := uint16(rec[18]) | uint16(rec[19])<<8
		if selector == 0 {
			return defs, nil
		}
		defs = append(defs, &SwitchDef{
			Off:  binio.TrimName(rec[0:switchNameWidth]),
			On:   binio.TrimName(rec[switchNameWidth : 2*switchNameWidth]),
			IWAD: selector,
		})
	}
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// WriteTo serializes the table's animations, then switches, each
// terminated by its sentinel record with remaining fields zero-filled.
func (t *Table) WriteTo(out *wad.Archive) {
	var animBuf bytes.Buffer
	for _, def := range t.anims.Values() {
		animBuf.WriteByte(byte(def.Kind))
		animBuf.Write(binio.FormatName(def.Last, animNameWidth))
		animBuf.Write(binio.FormatName(def.First, animNameWidth))
		binio.WriteUint32(&animBuf, def.Speed)
	}
	animBuf.WriteByte(animSentinel)
	animBuf.Write(make([]byte, animRecordSize-1))
	out.AddLump(&wad.Lump{Name: "ANIMATED", Data: animBuf.Bytes()})

	var swBuf bytes.Buffer
	for _, def := range t.switches.Values() {
		swBuf.Write(binio.FormatName(def.Off, switchNameWidth))
		swBuf.Write(binio.FormatName(def.On, switchNameWidth))
		binio.WriteUint16(&swBuf, def.IWAD)
	}
	swBuf.Write(make([]byte, switchRecordSize))
	out.AddLump(&wad.Lump{Name: "SWITCHES", Data: swBuf.Bytes()})
}
