package font

// CFF2's top-level layout drops Name INDEX, String INDEX, encoding, and
// charset relative to CFF1; FDArray is mandatory (every glyph belongs to
// exactly one Font DICT, even in a non-CID font where there is just one),
// and FDSelect may be omitted only when the FDArray holds a single Font
// DICT. This file covers that layout plus the `blend` operator,
// sharing the INDEX/DICT/charstring primitives from cff.go.

type cff2Table struct {
	charStrings  *cffIndex
	globalSubrs  *cffIndex
	fdLocalSubrs []*cffIndex
	fdSelect     []uint8
	store        *itemVariationStore // nil if the Top DICT carries no vstore
}

func parseCFF2(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	major := r.ReadUint8()
	_ = r.ReadUint8() // minor
	if major != 2 {
		panic(&UnsupportedVersionError{Tag: "CFF2", Version: uint32(major)})
	}
	headerSize := r.ReadUint8()
	topDictLen := uint32(r.ReadUint16())
	r.Seek(uint32(headerSize))

	topDictBytes := r.ReadBytes(topDictLen)
	topDict := parseCFFDict(topDictBytes)

	globalSubrs := parseCFF2Index(r)

	charStringsOffset := topDict.Int(opCharStrings, 0)
	if charStringsOffset <= 0 || uint32(len(b)) <= uint32(charStringsOffset) {
		panic(&CorruptError{Tag: "CFF2", Reason: "missing CharStrings INDEX"})
	}
	csReader := newBinaryReader(b)
	csReader.Seek(uint32(charStringsOffset))
	charStrings := parseCFF2Index(csReader)

	t := &cff2Table{charStrings: charStrings, globalSubrs: globalSubrs}

	fdArrayOff, ok := topDict.Get(opFDArray)
	if !ok || len(fdArrayOff) != 1 {
		panic(&CorruptError{Tag: "CFF2", Reason: "missing mandatory FDArray"})
	}
	fr := newBinaryReader(b)
	fr.Seek(uint32(fdArrayOff[0]))
	fdArray := parseCFF2Index(fr)
	t.fdLocalSubrs = make([]*cffIndex, fdArray.Len())
	for i := 0; i < fdArray.Len(); i++ {
		fdDict := parseCFFDict(fdArray.Get(i))
		if priv, ok := fdDict.Get(opPrivate); ok && len(priv) == 2 {
			size, offset := int(priv[0]), int(priv[1])
			if 0 < size && offset >= 0 && uint32(offset+size) <= uint32(len(b)) {
				privDict := parseCFFDict(b[offset : offset+size])
				if subrsOff, ok := privDict.Get(opSubrs); ok && len(subrsOff) == 1 {
					sr := newBinaryReader(b)
					sr.Seek(uint32(offset) + uint32(subrsOff[0]))
					t.fdLocalSubrs[i] = parseCFF2Index(sr)
				}
			}
		}
	}
	if fdSelectOff, ok := topDict.Get(opFDSelect); ok && len(fdSelectOff) == 1 {
		t.fdSelect = parseFDSelect(b, uint32(fdSelectOff[0]), charStrings.Len())
	} else if fdArray.Len() == 1 {
		t.fdSelect = nil // single Font DICT covers every glyph, index 0 implicit
	} else {
		panic(&CorruptError{Tag: "CFF2", Reason: "multiple Font DICTs require FDSelect"})
	}

	if vstoreOff, ok := topDict.Get(opVstore); ok && len(vstoreOff) == 1 {
		store, err := parseItemVariationStore(b[uint32(vstoreOff[0]):])
		if err != nil {
			return nil, err
		}
		t.store = store
	}
	return t, nil
}

func (f *Font) cff2() (*cff2Table, error) {
	v, err := f.getTable("CFF2", parseCFF2)
	if err != nil {
		return nil, err
	}
	return v.(*cff2Table), nil
}

// GlyphContourCFF2 executes glyphID's CFF2 charstring, normalizing coords
// (nil/empty means the font's default instance) and making the resulting
// ItemVariationStore query available to any `blend` operator the
// charstring contains.
func (f *Font) GlyphContourCFF2(glyphID uint16, coords map[string]float64) (*glyfContour, error) {
	cff2, err := f.cff2()
	if err != nil {
		return nil, err
	}
	cs := cff2.charStrings.Get(int(glyphID))
	if cs == nil {
		return nil, &CorruptError{Tag: "CFF2", Reason: "glyph id out of range"}
	}
	fd := uint8(0)
	if cff2.fdSelect != nil && int(glyphID) < len(cff2.fdSelect) {
		fd = cff2.fdSelect[glyphID]
	}
	localSubrs := &cffIndex{}
	if int(fd) < len(cff2.fdLocalSubrs) && cff2.fdLocalSubrs[fd] != nil {
		localSubrs = cff2.fdLocalSubrs[fd]
	}

	interp := newCharstringInterp(cff2.globalSubrs, localSubrs, true)
	if cff2.store != nil {
		norm, err := f.NormalizeCoords(coords)
		if err != nil {
			norm = nil
		}
		interp.vs = newVariationQuery(cff2.store, norm)
	}
	if err := interp.Run(cs); err != nil && err != errEndchar {
		return nil, err
	}
	interp.contour.GlyphID = glyphID
	return interp.contour, nil
}

// runBlend implements CFF2 operator 16, per §4.6: replace the k base
// values with base[i] + Σⱼ scalarⱼ·delta[i,j], discarding the k×n deltas
// and the trailing count.
func (in *charstringInterp) runBlend() error {
	if len(in.stack) < 1 {
		return &CorruptError{Tag: "CFF2", Reason: "blend: stack underflow"}
	}
	k := int(in.stack[len(in.stack)-1])
	in.stack = in.stack[:len(in.stack)-1]
	if in.vs == nil {
		return &CorruptError{Tag: "CFF2", Reason: "blend without variation store"}
	}
	scalars := in.vs.RegionScalars(in.vsIndex)
	n := len(scalars)
	need := k * (n + 1)
	if k < 0 || need > len(in.stack) {
		return &CorruptError{Tag: "CFF2", Reason: "blend: stack underflow"}
	}
	base := in.stack[len(in.stack)-need : len(in.stack)-need+k]
	deltas := in.stack[len(in.stack)-need+k:]
	for i := 0; i < k; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += scalars[j] * deltas[i*n+j]
		}
		base[i] += sum
	}
	in.stack = in.stack[:len(in.stack)-need+k]
	return nil
}

// vsindex (CFF2 operator 15) selects which
// ItemVariationData subtable subsequent blend operators in this
// charstring consult, per the Open Question decision in §9: it is valid
// until the next endchar or the next vsindex in the same charstring. Each
// glyph starts at vsindex 0, because newCharstringInterp leaves vsIndex at
// its zero value for every fresh glyph; no default vsindex is read from the
// Top DICT or any Private DICT.
func (in *charstringInterp) runVsindex() error {
	if len(in.stack) < 1 {
		return &CorruptError{Tag: "CFF2", Reason: "vsindex: stack underflow"}
	}
	in.vsIndex = int(in.stack[len(in.stack)-1])
	in.clear()
	return nil
}
