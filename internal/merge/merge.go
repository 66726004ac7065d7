// Package merge implements the merge driver: the fixed per-archive
// read order (textures, animations, maps, text, namespaces), the
// post-processing pass (patch-name renumbering, patch-namespace
// prune, sorting), and the fixed output-section order (loose lumps,
// text lumps, animations+switches, textures+PNAMES, maps, namespaces).
package merge

import (
	"io"
	"log"

	"golang.org/x/xerrors"

	"github.com/GitExl/WADMerge/internal/animswitch"
	"github.com/GitExl/WADMerge/internal/dupe"
	"github.com/GitExl/WADMerge/internal/mapscan"
	"github.com/GitExl/WADMerge/internal/nsp"
	"github.com/GitExl/WADMerge/internal/textlump"
	"github.com/GitExl/WADMerge/internal/texture"
	"github.com/GitExl/WADMerge/internal/wad"
)

// Options captures every merge-level toggle the CLI surface exposes,
// plus the overrides a MergeProfile may contribute.
type Options struct {
	MergeText bool

	FilterPatches  bool
	SortNamespaces bool
	SortMaps       bool
	SortTextures   bool
	SortText       bool
	SortLoose      bool

	ExtraTextLumpNames []string
	ExtraNullTextures  []string
	AliasOverrides     map[string]string

	Logger *log.Logger
}

// DefaultOptions returns the documented CLI defaults: filter-patches,
// merge-text, sort-ns, sort-maps, and sort-text on; sort-textures and
// sort-loose off.
func DefaultOptions() Options {
	return Options{
		MergeText:      true,
		FilterPatches:  true,
		SortNamespaces: true,
		SortMaps:       true,
		SortTextures:   false,
		SortText:       true,
		SortLoose:      false,
		Logger:         log.New(io.Discard, "", 0),
	}
}

// Merger accumulates state across a sequence of input archives and
// produces one output archive.
type Merger struct {
	opts Options
	log  *dupe.Log

	textures *texture.Table
	anims    *animswitch.Table
	maps     *mapscan.Table
	text     *textlump.Table
	ns       *nsp.Table
}

// New constructs a Merger ready to receive input archives via Add.
func New(opts Options) *Merger {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	textures := texture.NewTable()
	textures.Logger = opts.Logger
	if len(opts.ExtraNullTextures) > 0 {
		textures.NullTextureNames = append(append([]string{}, texture.DefaultNullTextureNames...), opts.ExtraNullTextures...)
	}

	text := textlump.NewTable()
	text.AddWhitelistNames(opts.ExtraTextLumpNames)

	ns := nsp.NewTable()
	ns.SetAliasOverrides(opts.AliasOverrides)

	return &Merger{
		opts:     opts,
		log:      dupe.NewLog(),
		textures: textures,
		anims:    animswitch.NewTable(),
		maps:     mapscan.NewTable(),
		text:     text,
		ns:       ns,
	}
}

// Add folds one input archive's resources into the merge, in the
// fixed per-archive pass order: textures, animations, maps, text (if
// enabled), namespaces. Whatever lumps remain unclaimed after all
// passes fall into the namespace partitioner's loose bucket.
func (m *Merger) Add(a *wad.Archive) error {
	m.opts.Logger.Printf("merging %s (%d lumps)", a.Basename, a.Len())

	archiveTextures, err := texture.ReadFrom(a)
	if err != nil {
		return xerrors.Errorf("merge: %s: %w", a.Basename, err)
	}
	m.log.AddAll(m.textures.MergeWith(archiveTextures))

	animRecords, err := m.anims.ScanArchive(a)
	if err != nil {
		return xerrors.Errorf("merge: %s: %w", a.Basename, err)
	}
	m.log.AddAll(animRecords)

	m.log.AddAll(m.maps.ScanArchive(a))

	if m.opts.MergeText {
		m.log.AddAll(m.text.ScanArchive(a))
	}

	m.log.AddAll(m.ns.ScanArchive(a))

	return nil
}

// Build finalizes the merge: patch-name renumbering, optional
// patch-namespace prune, optional per-table sorting, and assembly of
// the output archive in fixed section order.
func (m *Merger) Build(basename string) *wad.Archive {
	m.textures.UpdatePatchNames()

	if m.opts.FilterPatches {
		live := make(map[string]bool)
		for _, name := range m.textures.PatchNames() {
			live[name] = true
		}
		dropped := m.ns.PrunePatches(live)
		if dropped > 0 {
			m.opts.Logger.Printf("pruned %d unreferenced patch lump(s)", dropped)
		}
	}

	if m.opts.SortNamespaces {
		m.ns.Sort()
	}
	if m.opts.SortLoose {
		m.ns.SortLoose()
	}
	if m.opts.SortMaps {
		m.maps.Sort()
	}
	if m.opts.SortTextures {
		m.textures.Sort()
	}
	if m.opts.SortText {
		m.text.Sort()
	}

	out := wad.New(wad.PWAD, basename)
	m.ns.WriteLoose(out)
	m.text.WriteTo(out)
	m.anims.WriteTo(out)
	m.textures.WriteTo(out)
	m.maps.WriteTo(out)
	m.ns.WriteTo(out)
	return out
}

// DuplicateLog returns the accumulated conflict log.
func (m *Merger) DuplicateLog() *dupe.Log { return m.log }

// WriteReport renders the duplicate log to w.
func (m *Merger) WriteReport(w io.Writer) error {
	_, err := m.log.WriteTo(w)
	return err
}
