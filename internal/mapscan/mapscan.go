// Package mapscan implements the map extractor: a small state machine
// over an archive's lump sequence that recognizes Doom, Hexen, and
// UDMF map variants and emits coherent lump runs anchored to marker
// lumps (THINGS/TEXTMAP openers, ENDMAP/non-map-lump/end-of-archive
// terminators; BEHAVIOR marks a map as Hexen).
package mapscan

import (
	"github.com/GitExl/WADMerge/internal/dupe"
	"github.com/GitExl/WADMerge/internal/omap"
	"github.com/GitExl/WADMerge/internal/wad"
)

// Format distinguishes the three map data layouts this module
// recognizes.
type Format int

const (
	Doom Format = iota
	Hexen
	UDMF
)

func (f Format) String() string {
	switch f {
	case Doom:
		return "Doom"
	case Hexen:
		return "Hexen"
	case UDMF:
		return "UDMF"
	default:
		return "unknown"
	}
}

// knownMapLumps is the set of lump names that belong to a Doom/Hexen
// map's lump run (the marker and THINGS/TEXTMAP are handled
// separately by the state machine).
var knownMapLumps = map[string]bool{
	"THINGS": true, "VERTEXES": true, "SIDEDEFS": true, "SECTORS": true,
	"SEGS": true, "SSECTORS": true, "NODES": true, "LINEDEFS": true,
	"REJECT": true, "BLOCKMAP": true, "BEHAVIOR": true, "SCRIPTS": true,
}

// Marker is one extracted map: its name, detected format, the archive
// it came from, and the half-open lump-index range [Start, End) that
// comprises it. The range never includes the marker lump itself.
type Marker struct {
	Name   string
	Format Format
	Source *wad.Archive
	Start  int
	End    int
}

func (m *Marker) fullName() string {
	base := ""
	if m.Source != nil {
		base = m.Source.Basename
	}
	return base + ":" + m.Name
}

// Table is the cumulative set of maps extracted so far, keyed by map
// name.
type Table struct {
	maps *omap.Map[string, *Marker]
}

// NewTable returns an empty map table.
func NewTable() *Table {
	return &Table{maps: omap.New[string, *Marker]()}
}

// Len returns the number of maps in the table.
func (t *Table) Len() int { return t.maps.Len() }

// Markers returns the extracted maps in insertion order.
func (t *Table) Markers() []*Marker { return t.maps.Values() }

type scanState int

const (
	stateOut scanState = iota
	stateInDoomHexen
	stateInUDMF
)

// ScanArchive runs the extractor over one archive's lumps, adding any
// maps found to the table (overwriting a same-named existing marker
// and producing a DuplicateRecord), and marking every claimed lump
// Used so other readers skip it.
func (t *Table) ScanArchive(a *wad.Archive) []dupe.Record {
	var records []dupe.Record
	state := stateOut

	var markerName string
	var format Format
	var start int

	n := a.Len()
	for i := 0; i < n; i++ {
		lump := a.At(i)
		name := lump.Name

		switch state {
		case stateOut:
			switch name {
			case "THINGS":
				if i > 0 {
					a.At(i - 1).Used = true
					markerName = a.At(i - 1).Name
				}
				lump.Used = true
				format = Doom
				start = i
				state = stateInDoomHexen
			case "TEXTMAP":
				if i > 0 {
					a.At(i - 1).Used = true
					markerName = a.At(i - 1).Name
				}
				lump.Used = true
				format = UDMF
				start = i
				state = stateInUDMF
			}

		case stateInUDMF:
			lump.Used = true
			if name == "ENDMAP" {
				records = append(records, t.emit(markerName, format, a, start, i+1)...)
				state = stateOut
			}

		case stateInDoomHexen:
			switch {
			case name == "BEHAVIOR":
				format = Hexen
				lump.Used = true
				if i == n-1 {
					records = append(records, t.emit(markerName, format, a, start, i+1)...)
					state = stateOut
				}
			case knownMapLumps[name]:
				lump.Used = true
				if i == n-1 {
					records = append(records, t.emit(markerName, format, a, start, i+1)...)
					state = stateOut
				}
			default:
				records = append(records, t.emit(markerName, format, a, start, i)...)
				state = stateOut
			}
		}
	}

	return records
}

// WriteTo emits every map onto the output archive: an empty marker
// lump followed by its half-open lump range copied from the source
// archive, in table order.
func (t *Table) WriteTo(out *wad.Archive) {
	for _, m := range t.maps.Values() {
		out.AddLump(&wad.Lump{Name: m.Name})
		for i := m.Start; i < m.End; i++ {
			out.AddLump(m.Source.At(i).Clone())
		}
	}
}

// Sort orders maps ascending by name.
func (t *Table) Sort() {
	t.maps.Sort(func(a, b string) bool { return a < b })
}

func (t *Table) emit(name string, format Format, a *wad.Archive, start, end int) []dupe.Record {
	marker := &Marker{Name: name, Format: format, Source: a, Start: start, End: end}

	existing, ok := t.maps.Get(name)
	t.maps.Update(name, marker)
	if !ok {
		return nil
	}
	return []dupe.Record{{
		Op:   dupe.Overwrite,
		Kind: "map",
		A:    existing.fullName(),
		B:    marker.fullName(),
	}}
}
