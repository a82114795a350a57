package font

import "sort"

// cmapSubtable is the unified decoded form of one `cmap` encoding record:
// a partial function codepoint → glyph id (format 14 additionally carries
// the variation-selector tables handled separately below).
type cmapSubtable interface {
	// Lookup returns the glyph id for cp, or false if cp is outside this
	// subtable's domain.
	Lookup(cp rune) (uint16, bool)
	// ToUnicode is the inverse used by diagnostic tooling; it need not be
	// exhaustive for segmented formats with gaps.
	ToUnicode(glyphID uint16) (rune, bool)
}

// cmapTable holds every subtable this decoder recognized, plus the one
// selected as default by priority, and format 14's variation-selector
// records (if present).
type cmapTable struct {
	subtables []encodingRecord
	selected  cmapSubtable
	uvs       *cmapFormat14
}

type encodingRecord struct {
	platformID, encodingID uint16
	subtable                cmapSubtable
}

// cmapPriority lists (platformID, encodingID) pairs in the default subtable
// selection order: Windows Unicode full repertoire (3,10), then Windows
// Unicode BMP (3,1), then Unicode-platform full repertoire (0,4) and BMP
// (0,3), then Mac Roman (1,0), per §4.4.
var cmapPriority = [][2]uint16{
	{3, 10},
	{3, 1},
	{0, 4},
	{0, 3},
	{1, 0},
}

func parseCmap(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // version
	numTables := r.ReadUint16()

	type rawRecord struct {
		platformID, encodingID uint16
		offset                 uint32
	}
	raws := make([]rawRecord, numTables)
	for i := range raws {
		raws[i] = rawRecord{r.ReadUint16(), r.ReadUint16(), r.ReadUint32()}
	}

	t := &cmapTable{}
	var uvsRaw *cmapFormat14
	for _, rr := range raws {
		if uint32(len(b)) <= rr.offset {
			continue // skip: recovers per §7's "unknown cmap subtable" policy
		}
		sub, format, err := parseCmapSubtable(b[rr.offset:])
		if err != nil {
			continue // skip this encoding record, try another
		}
		if format == 14 {
			uvsRaw = sub.(*cmapFormat14)
			continue
		}
		t.subtables = append(t.subtables, encodingRecord{rr.platformID, rr.encodingID, sub})
	}
	t.uvs = uvsRaw

	for _, pr := range cmapPriority {
		for _, rec := range t.subtables {
			if rec.platformID == pr[0] && rec.encodingID == pr[1] {
				t.selected = rec.subtable
				break
			}
		}
		if t.selected != nil {
			break
		}
	}
	if t.selected == nil && len(t.subtables) > 0 {
		t.selected = t.subtables[0].subtable
	}
	return t, nil
}

func parseCmapSubtable(b []byte) (cmapSubtable, uint16, error) {
	r := newBinaryReader(b)
	format := r.ReadUint16()
	switch format {
	case 0:
		return parseCmapFormat0(b)
	case 2:
		return parseCmapFormat2(b)
	case 4:
		return parseCmapFormat4(b)
	case 6:
		return parseCmapFormat6(b)
	case 10:
		return parseCmapFormat10(b)
	case 12, 13:
		return parseCmapFormat12or13(b, format)
	case 14:
		return parseCmapFormat14(b)
	}
	return nil, format, &UnsupportedVersionError{Tag: "cmap", Version: uint32(format)}
}

// GlyphID implements the unified lookup of §4.4: glyph_id(cp, vs).
func (t *cmapTable) GlyphID(cp rune, vs rune) (uint16, bool) {
	if vs != 0 && t.uvs != nil {
		if gid, ok := t.uvs.NonDefault(cp, vs); ok {
			return gid, true
		}
		if t.uvs.IsDefault(cp, vs) {
			// default-UVS: fall through to the base subtable below
		} else if t.uvs.HasSelector(vs) {
			return 0, false
		}
	}
	if t.selected == nil {
		return 0, false
	}
	return t.selected.Lookup(cp)
}

func (t *cmapTable) ToUnicode(glyphID uint16) rune {
	if t.selected == nil {
		return 0
	}
	r, _ := t.selected.ToUnicode(glyphID)
	return r
}

func (f *Font) cmap() (*cmapTable, error) {
	v, err := f.getTable("cmap", parseCmap)
	if err != nil {
		return nil, err
	}
	return v.(*cmapTable), nil
}

// GlyphIndex resolves a codepoint (with an optional trailing variation
// selector, 0 if none) to a glyph id, or 0/false if unmapped.
func (f *Font) GlyphIndex(cp rune, vs rune) (uint16, bool) {
	cmap, err := f.cmap()
	if err != nil {
		return 0, false
	}
	return cmap.GlyphID(cp, vs)
}

////////////////////////////////////////////////////////////////
// format 0: byte encoding table

type cmapFormat0 struct {
	glyphIDs [256]uint8
}

func parseCmapFormat0(b []byte) (cmapSubtable, uint16, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // format
	length := r.ReadUint16()
	_ = r.ReadUint16() // language
	if length < 262 {
		panic(&CorruptError{Tag: "cmap", Reason: "format 0 too short"})
	}
	t := &cmapFormat0{}
	for i := 0; i < 256; i++ {
		t.glyphIDs[i] = r.ReadUint8()
	}
	return t, 0, nil
}

func (t *cmapFormat0) Lookup(cp rune) (uint16, bool) {
	if cp < 0 || 255 < cp {
		return 0, false
	}
	gid := t.glyphIDs[cp]
	return uint16(gid), gid != 0
}

func (t *cmapFormat0) ToUnicode(glyphID uint16) (rune, bool) {
	for cp, gid := range t.glyphIDs {
		if uint16(gid) == glyphID {
			return rune(cp), true
		}
	}
	return 0, false
}

////////////////////////////////////////////////////////////////
// format 2: high-byte mapping through table (legacy CJK)

type cmapSubHeader struct {
	firstCode, entryCount uint16
	idDelta               int16
	idRangeOffset         uint16
	glyphArrayStart       uint32 // absolute offset into b of this subheader's glyph-id array
}

type cmapFormat2 struct {
	b              []byte
	subHeaderKeys  [256]uint16 // index into subHeaders, in units of subheaders (key/8)
	subHeaders     []cmapSubHeader
}

func parseCmapFormat2(b []byte) (cmapSubtable, uint16, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // format
	_ = r.ReadUint16() // length
	_ = r.ReadUint16() // language
	t := &cmapFormat2{b: b}
	maxSubHeaderKey := uint16(0)
	for i := 0; i < 256; i++ {
		key := r.ReadUint16()
		t.subHeaderKeys[i] = key / 8
		if t.subHeaderKeys[i] > maxSubHeaderKey {
			maxSubHeaderKey = t.subHeaderKeys[i]
		}
	}
	t.subHeaders = make([]cmapSubHeader, maxSubHeaderKey+1)
	pos := r.Pos()
	for i := range t.subHeaders {
		r.Seek(pos + uint32(i)*8)
		firstCode := r.ReadUint16()
		entryCount := r.ReadUint16()
		idDelta := r.ReadInt16()
		idRangeOffset := r.ReadUint16()
		// idRangeOffset is relative to its own field's position.
		t.subHeaders[i] = cmapSubHeader{
			firstCode: firstCode, entryCount: entryCount, idDelta: idDelta,
			idRangeOffset: idRangeOffset,
			glyphArrayStart: pos + uint32(i)*8 + 6 + uint32(idRangeOffset),
		}
	}
	return t, 2, nil
}

func (t *cmapFormat2) Lookup(cp rune) (uint16, bool) {
	if cp < 0 || 0xFFFF < cp {
		return 0, false
	}
	highByte := uint16(cp>>8) & 0xFF
	lowByte := uint16(cp) & 0xFF
	key := t.subHeaderKeys[highByte]
	sh := t.subHeaders[key]
	if key == 0 {
		// single-byte lookup: only the low byte (cp itself, since high
		// byte 0 means a one-byte code) participates.
		if highByte != 0 {
			lowByte = uint16(cp) & 0xFF
		}
	}
	if lowByte < sh.firstCode || sh.entryCount <= lowByte-sh.firstCode {
		return 0, false
	}
	r := newBinaryReader(t.b)
	offset := sh.glyphArrayStart + uint32(lowByte-sh.firstCode)*2
	if offset+2 > uint32(len(t.b)) {
		return 0, false
	}
	r.Seek(offset)
	gid := r.ReadUint16()
	if gid == 0 {
		return 0, false
	}
	return uint16((int32(gid) + int32(sh.idDelta)) % 65536), true
}

func (t *cmapFormat2) ToUnicode(glyphID uint16) (rune, bool) {
	return 0, false
}

////////////////////////////////////////////////////////////////
// format 4: segment mapping to delta values (the common BMP format)

type cmapFormat4 struct {
	endCode, startCode []uint16
	idDelta            []int16
	idRangeOffset      []uint16
	glyphIDArray       []byte
	glyphIDArrayPos    uint32 // absolute offset of glyphIDArray within the subtable, for idRangeOffset arithmetic
	idRangeOffsetPos   []uint32
}

func parseCmapFormat4(b []byte) (cmapSubtable, uint16, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // format
	_ = r.ReadUint16() // length
	_ = r.ReadUint16() // language
	segCountX2 := r.ReadUint16()
	segCount := int(segCountX2 / 2)
	_ = r.ReadUint16() // searchRange
	_ = r.ReadUint16() // entrySelector
	_ = r.ReadUint16() // rangeShift

	t := &cmapFormat4{
		endCode:   make([]uint16, segCount),
		startCode: make([]uint16, segCount),
		idDelta:   make([]int16, segCount),
		idRangeOffset: make([]uint16, segCount),
		idRangeOffsetPos: make([]uint32, segCount),
	}
	for i := 0; i < segCount; i++ {
		t.endCode[i] = r.ReadUint16()
	}
	_ = r.ReadUint16() // reservedPad
	for i := 0; i < segCount; i++ {
		t.startCode[i] = r.ReadUint16()
	}
	for i := 0; i < segCount; i++ {
		t.idDelta[i] = r.ReadInt16()
	}
	for i := 0; i < segCount; i++ {
		t.idRangeOffsetPos[i] = r.Pos()
		t.idRangeOffset[i] = r.ReadUint16()
	}
	t.glyphIDArrayPos = r.Pos()
	t.glyphIDArray = b[r.Pos():]

	if !sort.SliceIsSorted(t.endCode, func(i, j int) bool { return t.endCode[i] < t.endCode[j] }) {
		panic(&CorruptError{Tag: "cmap", Reason: "format 4 endCode not ascending"})
	}
	return t, 4, nil
}

func (t *cmapFormat4) Lookup(cp rune) (uint16, bool) {
	if cp < 0 || 0xFFFF < cp {
		return 0, false
	}
	c := uint16(cp)
	// binary search for the first segment with endCode >= c, per §4.4 and
	// the Open Question in §9 (preserve correctness over the source's
	// occasional linear scan).
	lo, hi := 0, len(t.endCode)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.endCode[mid] < c {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(t.endCode) || c < t.startCode[lo] {
		return 0, false
	}
	if c == 0xFFFF && t.endCode[lo] == 0xFFFF && t.startCode[lo] == 0xFFFF {
		return 0, false // segment terminator, never a real mapping
	}
	if t.idRangeOffset[lo] == 0 {
		return uint16(int32(c) + int32(t.idDelta[lo])), true
	}
	glyphOffset := t.idRangeOffsetPos[lo] + 2 + uint32(t.idRangeOffset[lo]) + uint32(c-t.startCode[lo])*2
	if glyphOffset+2 > t.glyphIDArrayPos+uint32(len(t.glyphIDArray)) {
		return 0, false
	}
	r := newBinaryReader(t.glyphIDArray)
	r.Seek(glyphOffset - t.glyphIDArrayPos)
	gid := r.ReadUint16()
	if gid == 0 {
		return 0, false
	}
	return uint16((int32(gid) + int32(t.idDelta[lo])) % 65536), true
}

func (t *cmapFormat4) ToUnicode(glyphID uint16) (rune, bool) {
	for i := range t.startCode {
		for c := uint32(t.startCode[i]); c <= uint32(t.endCode[i]); c++ {
			if gid, ok := t.Lookup(rune(c)); ok && gid == glyphID {
				return rune(c), true
			}
			if t.endCode[i] == 0xFFFF {
				break
			}
		}
	}
	return 0, false
}

////////////////////////////////////////////////////////////////
// format 6: trimmed table mapping (dense, small range)

type cmapFormat6 struct {
	firstCode uint16
	glyphIDs  []uint16
}

func parseCmapFormat6(b []byte) (cmapSubtable, uint16, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // format
	_ = r.ReadUint16() // length
	_ = r.ReadUint16() // language
	firstCode := r.ReadUint16()
	entryCount := r.ReadUint16()
	glyphIDs := make([]uint16, entryCount)
	for i := range glyphIDs {
		glyphIDs[i] = r.ReadUint16()
	}
	return &cmapFormat6{firstCode, glyphIDs}, 6, nil
}

func (t *cmapFormat6) Lookup(cp rune) (uint16, bool) {
	if cp < rune(t.firstCode) {
		return 0, false
	}
	i := int(cp) - int(t.firstCode)
	if i >= len(t.glyphIDs) {
		return 0, false
	}
	gid := t.glyphIDs[i]
	return gid, gid != 0
}

func (t *cmapFormat6) ToUnicode(glyphID uint16) (rune, bool) {
	for i, gid := range t.glyphIDs {
		if gid == glyphID {
			return rune(int(t.firstCode) + i), true
		}
	}
	return 0, false
}

////////////////////////////////////////////////////////////////
// format 10: trimmed array, 32-bit domain

type cmapFormat10 struct {
	startCharCode uint32
	glyphIDs      []uint16
}

func parseCmapFormat10(b []byte) (cmapSubtable, uint16, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // format
	_ = r.ReadUint16() // reserved
	_ = r.ReadUint32() // length
	_ = r.ReadUint32() // language
	startCharCode := r.ReadUint32()
	numChars := r.ReadUint32()
	glyphIDs := make([]uint16, numChars)
	for i := range glyphIDs {
		glyphIDs[i] = r.ReadUint16()
	}
	return &cmapFormat10{startCharCode, glyphIDs}, 10, nil
}

func (t *cmapFormat10) Lookup(cp rune) (uint16, bool) {
	if uint32(cp) < t.startCharCode {
		return 0, false
	}
	i := uint32(cp) - t.startCharCode
	if i >= uint32(len(t.glyphIDs)) {
		return 0, false
	}
	gid := t.glyphIDs[i]
	return gid, gid != 0
}

func (t *cmapFormat10) ToUnicode(glyphID uint16) (rune, bool) {
	for i, gid := range t.glyphIDs {
		if gid == glyphID {
			return rune(t.startCharCode + uint32(i)), true
		}
	}
	return 0, false
}

////////////////////////////////////////////////////////////////
// formats 12/13: segmented coverage (sequential vs. constant groups)

type cmapGroup struct {
	startCharCode, endCharCode, startGlyphID uint32
}

type cmapFormat12or13 struct {
	groups   []cmapGroup
	constant bool // format 13: every cp in range maps to startGlyphID
}

func parseCmapFormat12or13(b []byte, format uint16) (cmapSubtable, uint16, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // format
	_ = r.ReadUint16() // reserved
	_ = r.ReadUint32() // length
	_ = r.ReadUint32() // language
	numGroups := r.ReadUint32()
	groups := make([]cmapGroup, numGroups)
	for i := range groups {
		groups[i] = cmapGroup{r.ReadUint32(), r.ReadUint32(), r.ReadUint32()}
	}
	return &cmapFormat12or13{groups, format == 13}, format, nil
}

func (t *cmapFormat12or13) Lookup(cp rune) (uint16, bool) {
	c := uint32(cp)
	lo, hi := 0, len(t.groups)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.groups[mid].endCharCode < c {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(t.groups) || c < t.groups[lo].startCharCode {
		return 0, false
	}
	g := t.groups[lo]
	if t.constant {
		return uint16(g.startGlyphID), true
	}
	return uint16(g.startGlyphID + (c - g.startCharCode)), true
}

func (t *cmapFormat12or13) ToUnicode(glyphID uint16) (rune, bool) {
	for _, g := range t.groups {
		if t.constant {
			if uint32(glyphID) == g.startGlyphID {
				return rune(g.startCharCode), true
			}
			continue
		}
		if g.startGlyphID <= uint32(glyphID) && uint32(glyphID) <= g.startGlyphID+(g.endCharCode-g.startCharCode) {
			return rune(g.startCharCode + (uint32(glyphID) - g.startGlyphID)), true
		}
	}
	return 0, false
}

////////////////////////////////////////////////////////////////
// format 14: Unicode variation sequences

type uvsRange struct {
	startUnicodeValue uint32
	additionalCount   uint8
}

type uvsMapping struct {
	unicodeValue uint32
	glyphID      uint16
}

type variationSelectorRecord struct {
	selector          uint32
	defaultUVS        []uvsRange
	nonDefaultUVS     []uvsMapping
}

type cmapFormat14 struct {
	records []variationSelectorRecord
}

func parseCmapFormat14(b []byte) (cmapSubtable, uint16, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // format
	_ = r.ReadUint32() // length
	numVarSelectorRecords := r.ReadUint32()

	type raw struct {
		selector                        uint32
		defaultUVSOffset, nonDefaultUVSOffset uint32
	}
	raws := make([]raw, numVarSelectorRecords)
	for i := range raws {
		raws[i] = raw{r.ReadUint24(), r.ReadUint32(), r.ReadUint32()}
	}

	t := &cmapFormat14{}
	for _, rr := range raws {
		rec := variationSelectorRecord{selector: rr.selector}
		if rr.defaultUVSOffset != 0 {
			dr := newBinaryReader(b)
			dr.Seek(rr.defaultUVSOffset)
			numRanges := dr.ReadUint32()
			rec.defaultUVS = make([]uvsRange, numRanges)
			for i := range rec.defaultUVS {
				rec.defaultUVS[i] = uvsRange{dr.ReadUint24(), dr.ReadUint8()}
			}
		}
		if rr.nonDefaultUVSOffset != 0 {
			nr := newBinaryReader(b)
			nr.Seek(rr.nonDefaultUVSOffset)
			numMappings := nr.ReadUint32()
			rec.nonDefaultUVS = make([]uvsMapping, numMappings)
			for i := range rec.nonDefaultUVS {
				rec.nonDefaultUVS[i] = uvsMapping{nr.ReadUint24(), nr.ReadUint16()}
			}
		}
		t.records = append(t.records, rec)
	}
	return t, 14, nil
}

func (t *cmapFormat14) find(vs rune) *variationSelectorRecord {
	for i := range t.records {
		if t.records[i].selector == uint32(vs) {
			return &t.records[i]
		}
	}
	return nil
}

// HasSelector reports whether vs appears in the format 14 subtable at all.
func (t *cmapFormat14) HasSelector(vs rune) bool {
	return t.find(vs) != nil
}

// NonDefault resolves (cp, vs) via the non-default-UVS table, which
// carries an explicit glyph override.
func (t *cmapFormat14) NonDefault(cp rune, vs rune) (uint16, bool) {
	rec := t.find(vs)
	if rec == nil {
		return 0, false
	}
	for _, m := range rec.nonDefaultUVS {
		if m.unicodeValue == uint32(cp) {
			return m.glyphID, true
		}
	}
	return 0, false
}

// IsDefault reports whether (cp, vs) is covered by the default-UVS ranges,
// meaning the caller should fall back to the base subtable.
func (t *cmapFormat14) IsDefault(cp rune, vs rune) bool {
	rec := t.find(vs)
	if rec == nil {
		return false
	}
	for _, rg := range rec.defaultUVS {
		if uint32(cp) >= rg.startUnicodeValue && uint32(cp) <= rg.startUnicodeValue+uint32(rg.additionalCount) {
			return true
		}
	}
	return false
}

func (t *cmapFormat14) ToUnicode(uint16) (rune, bool) { return 0, false }
func (t *cmapFormat14) Lookup(rune) (uint16, bool)    { return 0, false }
