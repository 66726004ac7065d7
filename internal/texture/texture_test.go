package texture_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/GitExl/WADMerge/internal/binio"
	"github.com/GitExl/WADMerge/internal/texture"
	"github.com/GitExl/WADMerge/internal/wad"
)

// encodePNAMES and encodeTexture1 build raw lump bytes by hand, so
// tests can exercise PNAMES index resolution (including unreferenced
// entries) and Strife-variant detection without going through the
// table's own writer, which only ever emits referenced patch names.
func encodePNAMES(names ...string) []byte {
	var buf bytes.Buffer
	binio.WriteUint32(&buf, uint32(len(names)))
	for _, n := range names {
		binio.PutName(&buf, n, 8)
	}
	return buf.Bytes()
}

type rawPatch struct {
	x, y  int16
	index uint16
}

type rawTexture struct {
	name          string
	width, height int16
	patches       []rawPatch
}

func encodeTexture1(strife bool, textures []rawTexture) []byte {
	headerSize, patchSize := 22, 10
	if strife {
		headerSize, patchSize = 18, 6
	}

	var records bytes.Buffer
	offsets := make([]uint32, len(textures))
	offset := uint32(4 + 4*len(textures))
	for i, tex := range textures {
		offsets[i] = offset
		binio.PutName(&records, tex.name, 8)
		records.Write(make([]byte, 4))
		binio.WriteInt16(&records, tex.width)
		binio.WriteInt16(&records, tex.height)
		if strife {
			binio.WriteUint16(&records, uint16(len(tex.patches)))
		} else {
			records.Write(make([]byte, 4))
			binio.WriteUint16(&records, uint16(len(tex.patches)))
		}
		for _, p := range tex.patches {
			binio.WriteInt16(&records, p.x)
			binio.WriteInt16(&records, p.y)
			binio.WriteUint16(&records, p.index)
			if !strife {
				records.Write(make([]byte, 4))
			}
		}
		offset += uint32(headerSize + len(tex.patches)*patchSize)
	}

	var buf bytes.Buffer
	binio.WriteUint32(&buf, uint32(len(textures)))
	for _, off := range offsets {
		binio.WriteUint32(&buf, off)
	}
	buf.Write(records.Bytes())
	return buf.Bytes()
}

func archiveWithRaw(basename string, pnames []string, strife bool, textures []rawTexture) *wad.Archive {
	a := wad.New(wad.PWAD, basename)
	a.AddLump(&wad.Lump{Name: "PNAMES", Data: encodePNAMES(pnames...)})
	a.AddLump(&wad.Lump{Name: "TEXTURE1", Data: encodeTexture1(strife, textures)})
	return a
}

func TestReadFromResolvesPatchNamesByIndex(t *testing.T) {
	a := archiveWithRaw("test", []string{"A", "B", "C"}, false, []rawTexture{
		{name: "TEX1", width: 64, height: 64, patches: []rawPatch{{x: 1, y: 2, index: 1}}},
	})
	table, err := texture.ReadFrom(a)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	defs := table.Textures()
	if len(defs) != 1 {
		t.Fatalf("Textures() len = %d; want 1", len(defs))
	}
	if got := defs[0].Patches[0].PatchName; got != "B" {
		t.Fatalf("PatchName = %q; want %q", got, "B")
	}
}

func TestReadFromRejectsPatchIndexOutOfRange(t *testing.T) {
	a := archiveWithRaw("test", []string{"A"}, false, []rawTexture{
		{name: "TEX1", patches: []rawPatch{{index: 5}}},
	})
	_, err := texture.ReadFrom(a)
	if err == nil {
		t.Fatal("ReadFrom() err = nil; want an integrity error")
	}
}

func TestReadFromIsNoOpWithoutTexture1OrPnames(t *testing.T) {
	a := wad.New(wad.PWAD, "empty")
	table, err := texture.ReadFrom(a)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("Len() = %d; want 0", table.Len())
	}
}

func TestStrifeVariantLatchesAndSticksForSerialization(t *testing.T) {
	a := archiveWithRaw("test", []string{"P"}, true, []rawTexture{
		{name: "TEX1", width: 1, height: 1, patches: []rawPatch{{index: 0}}},
		{name: "TEX2", width: 1, height: 1, patches: nil},
	})
	table, err := texture.ReadFrom(a)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if !table.StrifeMode() {
		t.Fatal("StrifeMode() = false; want true after reading a Strife-variant TEXTURE1")
	}

	table.UpdatePatchNames()
	out := wad.New(wad.PWAD, "out")
	table.WriteTo(out)

	reread, err := texture.ReadFrom(out)
	if err != nil {
		t.Fatalf("ReadFrom(round-trip): %v", err)
	}
	if !reread.StrifeMode() {
		t.Fatal("StrifeMode() = false after round-tripping a Strife-mode table; want true (latch must stick)")
	}
	if diff := cmp.Diff(table.Textures()[0].Patches[0].PatchName, reread.Textures()[0].Patches[0].PatchName); diff != "" {
		t.Errorf("patch name mismatch after round-trip (-want +got):\n%s", diff)
	}
}

func TestRoundTripTextures(t *testing.T) {
	table := texture.NewTable()
	table.Add(&texture.TextureDef{
		Name: "WALL1", Width: 64, Height: 128,
		Patches: []texture.PatchDef{{XOffset: 1, YOffset: 2, PatchName: "PATCH1"}},
	})
	table.UpdatePatchNames()

	a := wad.New(wad.PWAD, "test")
	table.WriteTo(a)

	reread, err := texture.ReadFrom(a)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	opts := cmp.Options{
		cmpopts.IgnoreFields(texture.PatchDef{}, "PatchIndex"),
		cmpopts.IgnoreUnexported(texture.TextureDef{}),
	}
	if diff := cmp.Diff(table.Textures()[0], reread.Textures()[0], opts); diff != "" {
		t.Errorf("texture mismatch after round-trip (-want +got):\n%s", diff)
	}
}

func TestMergeWithKeepsEqualTexturesSilently(t *testing.T) {
	a1 := archiveWithRaw("a", []string{"WALL00_1"}, false, []rawTexture{
		{name: "AASHITTY", width: 64, height: 64, patches: []rawPatch{{index: 0}}},
	})
	a2 := archiveWithRaw("b", []string{"WALL00_1"}, false, []rawTexture{
		{name: "AASHITTY", width: 64, height: 64, patches: []rawPatch{{index: 0}}},
		{name: "DIFF", width: 128, height: 128},
	})

	t1, err := texture.ReadFrom(a1)
	if err != nil {
		t.Fatal(err)
	}
	t2, err := texture.ReadFrom(a2)
	if err != nil {
		t.Fatal(err)
	}

	records := t1.MergeWith(t2)
	if len(records) != 0 {
		t.Fatalf("MergeWith produced %d duplicate records; want 0 (AASHITTY is structurally equal)", len(records))
	}
	if t1.Len() != 2 {
		t.Fatalf("Len() = %d; want 2 (AASHITTY + DIFF)", t1.Len())
	}
}

func TestMergeWithOverwritesDifferingTexture(t *testing.T) {
	a1 := archiveWithRaw("a", nil, false, []rawTexture{{name: "WALL1", width: 64, height: 64}})
	a2 := archiveWithRaw("b", nil, false, []rawTexture{{name: "WALL1", width: 999, height: 999}})

	t1, _ := texture.ReadFrom(a1)
	t2, _ := texture.ReadFrom(a2)
	records := t1.MergeWith(t2)
	if len(records) != 1 {
		t.Fatalf("MergeWith produced %d records; want 1", len(records))
	}
	if records[0].Label() != "overwrite texture" {
		t.Fatalf("Label() = %q; want %q", records[0].Label(), "overwrite texture")
	}
}

func TestUpdatePatchNamesFirstSeenOrderAndRenumbering(t *testing.T) {
	a1 := archiveWithRaw("a", []string{"A", "B", "C"}, false, []rawTexture{
		{name: "TEX1", patches: []rawPatch{{index: 1}}}, // B
	})
	a2 := archiveWithRaw("b", []string{"Z", "B", "Y"}, false, []rawTexture{
		{name: "TEX2", patches: []rawPatch{{index: 1}, {index: 0}}}, // B, Z
	})

	t1, _ := texture.ReadFrom(a1)
	t2, _ := texture.ReadFrom(a2)
	t1.MergeWith(t2)
	t1.UpdatePatchNames()

	names := t1.PatchNames()
	if len(names) != 2 || names[0] != "B" || names[1] != "Z" {
		t.Fatalf("PatchNames() = %v; want [B Z] in first-seen order", names)
	}
	for _, def := range t1.Textures() {
		for _, p := range def.Patches {
			if names[p.PatchIndex] != p.PatchName {
				t.Fatalf("patch index %d resolves to %q; want %q", p.PatchIndex, names[p.PatchIndex], p.PatchName)
			}
		}
	}
}

func TestSortPinsNullTextureFirst(t *testing.T) {
	table := texture.NewTable()
	for _, name := range []string{"ZETA", "AASHITTY", "ALPHA"} {
		table.Add(&texture.TextureDef{Name: name})
	}
	table.Sort()

	var got []string
	for _, def := range table.Textures() {
		got = append(got, def.Name)
	}
	want := []string{"AASHITTY", "ALPHA", "ZETA"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sort() order mismatch (-want +got):\n%s", diff)
	}
}
