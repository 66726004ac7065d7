// Package nsp implements the namespace partitioner: start/end-marker
// pairing over an archive's unclaimed lumps, with alias folding
// (F/F1/F2/F3 → FF, P/P1/P2/P3 → PP, S → SS) and a leftover ("loose")
// lump bucket for anything outside a namespace.
package nsp

import (
	"bytes"
	"strings"

	"github.com/GitExl/WADMerge/internal/dupe"
	"github.com/GitExl/WADMerge/internal/omap"
	"github.com/GitExl/WADMerge/internal/wad"
)

// defaultAliases folds the IWAD/PWAD-era marker prefixes onto their
// logical namespace name. A MergeProfile may add further overrides on
// top of this built-in set.
var defaultAliases = map[string]string{
	"F": "FF", "F1": "FF", "F2": "FF", "F3": "FF",
	"S": "SS",
	"P": "PP", "P1": "PP", "P2": "PP", "P3": "PP",
}

// Namespace is a named bracket of lumps.
type Namespace struct {
	Name  string
	Lumps *omap.Map[string, *wad.Lump]
}

// Table is the cumulative set of namespaces and the loose-lump
// bucket, built up across every input archive.
type Table struct {
	namespaces *omap.Map[string, *Namespace]
	loose      *omap.Map[string, *wad.Lump]
	aliases    map[string]string
}

// NewTable returns an empty partitioner table using the built-in
// alias table.
func NewTable() *Table {
	aliases := make(map[string]string, len(defaultAliases))
	for k, v := range defaultAliases {
		aliases[k] = v
	}
	return &Table{
		namespaces: omap.New[string, *Namespace](),
		loose:      omap.New[string, *wad.Lump](),
		aliases:    aliases,
	}
}

// SetAliasOverrides merges MergeProfile-provided raw-prefix→folded-name
// overrides into the alias table.
func (t *Table) SetAliasOverrides(overrides map[string]string) {
	for k, v := range overrides {
		t.aliases[k] = v
	}
}

func (t *Table) fold(rawPrefix string) string {
	if folded, ok := t.aliases[rawPrefix]; ok {
		return folded
	}
	return rawPrefix
}

func (t *Table) namespace(name string) *Namespace {
	ns, ok := t.namespaces.Get(name)
	if !ok {
		ns = &Namespace{Name: name, Lumps: omap.New[string, *wad.Lump]()}
		t.namespaces.Add(name, ns)
	}
	return ns
}

// Namespaces returns the partitioned namespaces with at least one
// lump, in insertion order.
func (t *Table) Namespaces() []*Namespace {
	var out []*Namespace
	for _, ns := range t.namespaces.Values() {
		if ns.Lumps.Len() > 0 {
			out = append(out, ns)
		}
	}
	return out
}

// Loose returns the loose-lump bucket's contents in insertion order.
func (t *Table) Loose() []*wad.Lump { return t.loose.Values() }

// ScanArchive performs a single left-to-right pass over a's unclaimed
// lumps: a zero-size "<prefix>_START" lump opens a namespace (folded
// through the alias table); a zero-size "*_END" lump closes whichever
// namespace is currently open, regardless of its own prefix; lumps in
// between join the open namespace, and lumps seen with nothing open
// join the loose bucket. Lumps already claimed by another reader are
// skipped entirely.
func (t *Table) ScanArchive(a *wad.Archive) []dupe.Record {
	var records []dupe.Record
	var open *Namespace

	n := a.Len()
	for i := 0; i < n; i++ {
		l := a.At(i)
		if l.Used {
			continue
		}

		if len(l.Data) == 0 && strings.HasSuffix(l.Name, "_START") {
			raw := strings.TrimSuffix(l.Name, "_START")
			open = t.namespace(t.fold(raw))
			l.Used = true
			continue
		}
		if len(l.Data) == 0 && strings.HasSuffix(l.Name, "_END") && open != nil {
			l.Used = true
			open = nil
			continue
		}

		l.Used = true
		if open != nil {
			if rec := addWithCollisionCheck(open.Lumps, l, "namespace"); rec != nil {
				records = append(records, *rec)
			}
		} else {
			if rec := addWithCollisionCheck(t.loose, l, "loose"); rec != nil {
				records = append(records, *rec)
			}
		}
	}

	return records
}

func addWithCollisionCheck(m *omap.Map[string, *wad.Lump], l *wad.Lump, kind string) *dupe.Record {
	existing, ok := m.Get(l.Name)
	if !ok {
		m.Add(l.Name, l)
		return nil
	}
	if bytes.Equal(existing.Data, l.Data) {
		return nil
	}
	m.Update(l.Name, l)
	return &dupe.Record{
		Op:   dupe.Overwrite,
		Kind: kind + " lump",
		A:    existing.FullName(),
		B:    l.FullName(),
	}
}

// PrunePatches drops any lump from the PP namespace whose name is not
// present in live, the patch-name list rebuilt by the texture codec.
// It returns the number of lumps dropped.
func (t *Table) PrunePatches(live map[string]bool) int {
	pp, ok := t.namespaces.Get("PP")
	if !ok {
		return 0
	}
	kept := omap.New[string, *wad.Lump]()
	dropped := 0
	for _, name := range pp.Lumps.Keys() {
		l, _ := pp.Lumps.Get(name)
		if live[name] {
			kept.Update(name, l)
		} else {
			dropped++
		}
	}
	pp.Lumps = kept
	return dropped
}

// Sort orders each namespace's contents ascending by name. The loose
// bucket is not touched; see SortLoose.
func (t *Table) Sort() {
	for _, ns := range t.namespaces.Values() {
		ns.Lumps.Sort(func(a, b string) bool { return a < b })
	}
}

// SortLoose orders the loose bucket's contents ascending by name.
func (t *Table) SortLoose() {
	t.loose.Sort(func(a, b string) bool { return a < b })
}

// endMarkerName renders the engine-preferred short form for SS/FF's
// end marker, and the full "<name>_END" form otherwise.
func endMarkerName(name string) string {
	switch name {
	case "SS":
		return "S_END"
	case "FF":
		return "F_END"
	default:
		return name + "_END"
	}
}

// WriteTo emits every non-empty namespace as a "<name>_START" marker,
// its lumps in order, and an end marker in the engine-preferred short
// form for SS/FF.
func (t *Table) WriteTo(out *wad.Archive) {
	for _, ns := range t.Namespaces() {
		out.AddLump(&wad.Lump{Name: ns.Name + "_START"})
		for _, l := range ns.Lumps.Values() {
			out.AddLump(l.Clone())
		}
		out.AddLump(&wad.Lump{Name: endMarkerName(ns.Name)})
	}
}

// WriteLoose emits the loose-lump bucket's contents in order.
func (t *Table) WriteLoose(out *wad.Archive) {
	for _, l := range t.loose.Values() {
		out.AddLump(l.Clone())
	}
}
