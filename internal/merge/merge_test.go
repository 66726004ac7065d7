package merge_test

import (
	"bytes"
	"testing"

	"github.com/GitExl/WADMerge/internal/binio"
	"github.com/GitExl/WADMerge/internal/merge"
	"github.com/GitExl/WADMerge/internal/wad"
)

func encodePNAMES(names ...string) []byte {
	var buf bytes.Buffer
	binio.WriteUint32(&buf, uint32(len(names)))
	for _, n := range names {
		binio.PutName(&buf, n, 8)
	}
	return buf.Bytes()
}

func encodeTexture1(entries []struct {
	name          string
	width, height int16
	patchIndex    uint16
}) []byte {
	var records bytes.Buffer
	offsets := make([]uint32, len(entries))
	offset := uint32(4 + 4*len(entries))
	for i, e := range entries {
		offsets[i] = offset
		binio.PutName(&records, e.name, 8)
		records.Write(make([]byte, 4))
		binio.WriteInt16(&records, e.width)
		binio.WriteInt16(&records, e.height)
		records.Write(make([]byte, 4))
		binio.WriteUint16(&records, 1)
		binio.WriteInt16(&records, 0)
		binio.WriteInt16(&records, 0)
		binio.WriteUint16(&records, e.patchIndex)
		records.Write(make([]byte, 4))
		offset += uint32(22 + 10)
	}
	var buf bytes.Buffer
	binio.WriteUint32(&buf, uint32(len(entries)))
	for _, off := range offsets {
		binio.WriteUint32(&buf, off)
	}
	buf.Write(records.Bytes())
	return buf.Bytes()
}

func encodeAnimated(recs [][2]string) []byte {
	padName := func(s string) []byte {
		b := make([]byte, 9)
		copy(b, s)
		return b
	}
	var buf bytes.Buffer
	for _, r := range recs {
		buf.WriteByte(0)
		buf.Write(padName(r[0]))
		buf.Write(padName(r[1]))
		buf.Write([]byte{8, 0, 0, 0})
	}
	buf.WriteByte(0xFF)
	buf.Write(make([]byte, 22))
	return buf.Bytes()
}

func TestScenario1TexturesMergeWithoutSpuriousDuplicate(t *testing.T) {
	a := wad.New(wad.PWAD, "a")
	a.AddLump(&wad.Lump{Name: "PNAMES", Data: encodePNAMES("WALL00_1")})
	a.AddLump(&wad.Lump{Name: "TEXTURE1", Data: encodeTexture1([]struct {
		name          string
		width, height int16
		patchIndex    uint16
	}{{"AASHITTY", 64, 64, 0}})})

	b := wad.New(wad.PWAD, "b")
	b.AddLump(&wad.Lump{Name: "PNAMES", Data: encodePNAMES("WALL00_1")})
	b.AddLump(&wad.Lump{Name: "TEXTURE1", Data: encodeTexture1([]struct {
		name          string
		width, height int16
		patchIndex    uint16
	}{{"AASHITTY", 64, 64, 0}, {"DIFF", 128, 128, 0}})})

	m := merge.New(merge.DefaultOptions())
	if err := m.Add(a); err != nil {
		t.Fatalf("Add(a): %v", err)
	}
	if err := m.Add(b); err != nil {
		t.Fatalf("Add(b): %v", err)
	}

	out := m.Build("merged")
	if m.DuplicateLog().Len() != 0 {
		t.Fatalf("DuplicateLog().Len() = %d; want 0 (AASHITTY is structurally equal)", m.DuplicateLog().Len())
	}

	if _, ok := out.Get("TEXTURE1"); !ok {
		t.Fatal("output archive has no TEXTURE1")
	}
}

func TestScenario6AnimatedDedupKeepsLaterRecord(t *testing.T) {
	a := wad.New(wad.PWAD, "a")
	a.AddLump(&wad.Lump{Name: "ANIMATED", Data: encodeAnimated([][2]string{{"WATER4", "WATER1"}})})

	b := wad.New(wad.PWAD, "b")
	b.AddLump(&wad.Lump{Name: "ANIMATED", Data: encodeAnimated([][2]string{{"WATER4", "WATER1"}})})

	m := merge.New(merge.DefaultOptions())
	if err := m.Add(a); err != nil {
		t.Fatalf("Add(a): %v", err)
	}
	if err := m.Add(b); err != nil {
		t.Fatalf("Add(b): %v", err)
	}

	if m.DuplicateLog().Len() != 1 {
		t.Fatalf("DuplicateLog().Len() = %d; want 1", m.DuplicateLog().Len())
	}
	if m.DuplicateLog().Records()[0].Kind != "animation" {
		t.Fatalf("Kind = %q; want animation", m.DuplicateLog().Records()[0].Kind)
	}
}

func TestScenario5TextLumpsConcatenateWithNewline(t *testing.T) {
	a := wad.New(wad.PWAD, "a")
	a.AddLump(&wad.Lump{Name: "DECORATE", Data: []byte("A\n")})

	b := wad.New(wad.PWAD, "b")
	b.AddLump(&wad.Lump{Name: "DECORATE", Data: []byte("B\n")})

	m := merge.New(merge.DefaultOptions())
	if err := m.Add(a); err != nil {
		t.Fatalf("Add(a): %v", err)
	}
	if err := m.Add(b); err != nil {
		t.Fatalf("Add(b): %v", err)
	}

	out := m.Build("merged")
	lump, ok := out.Get("DECORATE")
	if !ok {
		t.Fatal("output archive has no DECORATE")
	}
	if string(lump.Data) != "A\n\nB\n" {
		t.Fatalf("DECORATE = %q; want %q", lump.Data, "A\n\nB\n")
	}
}

func TestBuildIsDeterministicAcrossRuns(t *testing.T) {
	build := func() []byte {
		a := wad.New(wad.PWAD, "a")
		a.AddLump(&wad.Lump{Name: "DEMO1", Data: []byte{1, 2, 3}})
		a.AddLump(&wad.Lump{Name: "DECORATE", Data: []byte("A\n")})

		m := merge.New(merge.DefaultOptions())
		if err := m.Add(a); err != nil {
			t.Fatalf("Add: %v", err)
		}
		out := m.Build("merged")

		var buf bytes.Buffer
		if err := out.Write(&buf); err != nil {
			t.Fatalf("Write: %v", err)
		}
		return buf.Bytes()
	}

	first := build()
	second := build()
	if !bytes.Equal(first, second) {
		t.Fatal("Build() output is not byte-identical across runs with identical inputs")
	}
}

func TestOutputSectionOrderIsFixed(t *testing.T) {
	a := wad.New(wad.PWAD, "a")
	a.AddLump(&wad.Lump{Name: "DEMO1", Data: []byte{1}})
	a.AddLump(&wad.Lump{Name: "DECORATE", Data: []byte("A\n")})
	a.AddLump(&wad.Lump{Name: "ANIMATED", Data: encodeAnimated(nil)})
	a.AddLump(&wad.Lump{Name: "PNAMES", Data: encodePNAMES("WALL00_1")})
	a.AddLump(&wad.Lump{Name: "TEXTURE1", Data: encodeTexture1([]struct {
		name          string
		width, height int16
		patchIndex    uint16
	}{{"AASHITTY", 64, 64, 0}})})
	a.AddLump(&wad.Lump{Name: "SS_START"})
	a.AddLump(&wad.Lump{Name: "SPRITE1", Data: []byte{9}})
	a.AddLump(&wad.Lump{Name: "S_END"})

	m := merge.New(merge.DefaultOptions())
	if err := m.Add(a); err != nil {
		t.Fatalf("Add: %v", err)
	}
	out := m.Build("merged")

	var names []string
	for i := 0; i < out.Len(); i++ {
		names = append(names, out.At(i).Name)
	}

	wantOrder := []string{"DEMO1", "DECORATE", "ANIMATED", "SWITCHES", "PNAMES", "TEXTURE1", "SS_START", "SPRITE1", "S_END"}
	if len(names) != len(wantOrder) {
		t.Fatalf("lump count = %d; want %d, got %v", len(names), len(wantOrder), names)
	}
	for i, want := range wantOrder {
		if names[i] != want {
			t.Fatalf("lump %d = %q; want %q (full order: %v)", i, names[i], want, names)
		}
	}
}
