// Package textlump implements the text-lump merger: name-gated
// concatenation of known text-format lumps (DECORATE, MAPINFO,
// SNDINFO, and the rest of the Doom/Hexen/ZDoom/Skulltag/Doomsday
// configuration-lump family) with a newline separator between
// sources. Encoding is never interpreted; bytes are opaque.
package textlump

import (
	"github.com/GitExl/WADMerge/internal/dupe"
	"github.com/GitExl/WADMerge/internal/omap"
	"github.com/GitExl/WADMerge/internal/wad"
)

// DefaultWhitelist is the fixed set of ASCII lump names recognized as
// text-format configuration lumps across Doom, Hexen, ZDoom,
// Skulltag, and Doomsday. A MergeProfile may extend this set.
var DefaultWhitelist = []string{
	"DECORATE", "DECALDEF", "DEHACKED", "LANGUAGE", "LOCKDEFS",
	"MAPINFO", "ZMAPINFO", "EMAPINFO", "SNDINFO", "SNDSEQ", "SBARINFO",
	"KEYCONF", "MENUDEF", "GLDEFS", "ANIMDEFS", "TERRAIN", "TEXTCOLO",
	"XLAT", "FONTDEFS", "CVARINFO", "MODELDEF", "VOXELDEF", "ALTHUDCF",
	"CREDITS", "CRSHAIRS", "TEAMINFO", "SKYBOXES", "SPLASH", "IWADINFO",
	"RESTART", "GAMEINFO", "MUSINFO", "SECRETS", "HIRESTEX", "DMXGUS",
	"DMXGUSC", "TIMIDITY", "S_SKIN", "ZSCRIPT", "GAMECONF", "X11R6RGB",
	"TRNSLATE", "PALVERS", "ENDOOM", "ENDTEXT", "ENDSTRF", "ENDBOOM",
}

// Table is the cumulative set of merged text lumps, keyed by name.
type Table struct {
	lumps     *omap.Map[string, *wad.Lump]
	whitelist map[string]bool
}

// NewTable returns an empty text-lump merger using the built-in
// whitelist.
func NewTable() *Table {
	wl := make(map[string]bool, len(DefaultWhitelist))
	for _, n := range DefaultWhitelist {
		wl[n] = true
	}
	return &Table{lumps: omap.New[string, *wad.Lump](), whitelist: wl}
}

// AddWhitelistNames extends the recognized name set, e.g. from a
// MergeProfile.
func (t *Table) AddWhitelistNames(names []string) {
	for _, n := range names {
		t.whitelist[n] = true
	}
}

// Len returns the number of distinct merged text lumps.
func (t *Table) Len() int { return t.lumps.Len() }

// Lumps returns the merged text lumps in first-seen order.
func (t *Table) Lumps() []*wad.Lump { return t.lumps.Values() }

// ScanArchive claims every unclaimed, whitelisted lump in a: the
// first occurrence of a name is inserted as a fresh copy; every
// subsequent occurrence is appended after a single 0x0A separator,
// and a DuplicateRecord is produced (the "merge text lump" label —
// text lumps always concatenate, so a record is logged on every
// collision regardless of byte content).
func (t *Table) ScanArchive(a *wad.Archive) []dupe.Record {
	var records []dupe.Record
	n := a.Len()
	for i := 0; i < n; i++ {
		l := a.At(i)
		if l.Used || !t.whitelist[l.Name] {
			continue
		}
		l.Used = true

		existing, ok := t.lumps.Get(l.Name)
		if !ok {
			t.lumps.Add(l.Name, l.Clone())
			continue
		}

		merged := existing.Clone()
		merged.Data = append(append(append([]byte{}, existing.Data...), 0x0A), l.Data...)
		t.lumps.Update(l.Name, merged)

		records = append(records, dupe.Record{
			Op:   dupe.Merge,
			Kind: "text lump",
			A:    existing.FullName(),
			B:    l.FullName(),
		})
	}
	return records
}

// Sort orders the merged text lumps ascending by name.
func (t *Table) Sort() {
	t.lumps.Sort(func(a, b string) bool { return a < b })
}

// WriteTo emits every merged text lump onto the output archive.
func (t *Table) WriteTo(out *wad.Archive) {
	for _, l := range t.lumps.Values() {
		out.AddLump(l.Clone())
	}
}
