package wad

// Lump is a named byte blob, the sole unit of resource addressing
// inside a WAD. A Lump is owned by the Archive it was read from; the
// back-reference to that Archive and the lump's original directory
// index exist purely for conflict reporting (DuplicateRecord full
// names of the form "<archive-basename>:<lump-name>") and are never
// traversed to mutate anything.
type Lump struct {
	Name string
	Data []byte

	// Used is set by a reader (texture table, map extractor,
	// namespace partitioner, text-lump merger, animation/switch
	// codec) once it has claimed this lump, so later readers in the
	// merge driver's fixed pass order skip it.
	Used bool

	// Source and Index are the weak back-reference described above.
	Source *Archive
	Index  int
}

// Clone returns a value copy of the lump with fresh backing storage,
// suitable for placing into an output archive that conceptually
// re-owns the bytes. The source bytes are never mutated after read,
// so sharing them would also be sound; Clone keeps the output archive
// independent of the input archive's lifetime regardless.
func (l *Lump) Clone() *Lump {
	data := make([]byte, len(l.Data))
	copy(data, l.Data)
	return &Lump{
		Name:   l.Name,
		Data:   data,
		Source: l.Source,
		Index:  l.Index,
	}
}

// FullName renders the "<archive-basename>:<lump-name>" form used in
// DuplicateRecord entries.
func (l *Lump) FullName() string {
	base := ""
	if l.Source != nil {
		base = l.Source.Basename
	}
	return base + ":" + l.Name
}
