package font

import "sort"

// headTable is the fixed-schema `head` table: font-wide scaling and
// bounding-box metadata.
type headTable struct {
	UnitsPerEm         uint16
	XMin, YMin         int16
	XMax, YMax         int16
	MacStyle           uint16
	LowestRecPPEM      uint16
	FontDirectionHint  int16
	IndexToLocFormat   int16 // 0 = short (Offset16, ÷2), 1 = long (Offset32)
	GlyphDataFormat    int16
	ChecksumAdjustment uint32
}

func parseHead(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	version := r.ReadUint32()
	if version != 0x00010000 {
		panic(&UnsupportedVersionError{Tag: "head", Version: version})
	}
	_ = r.ReadFixed() // fontRevision
	checksumAdjustment := r.ReadUint32()
	magic := r.ReadUint32()
	if magic != 0x5F0F3CF5 {
		panic(&BadMagicError{Found: magic, Expected: "0x5F0F3CF5"})
	}
	_ = r.ReadUint16() // flags
	unitsPerEm := r.ReadUint16()
	_ = r.ReadLongDateTime() // created
	_ = r.ReadLongDateTime() // modified
	xMin := r.ReadInt16()
	yMin := r.ReadInt16()
	xMax := r.ReadInt16()
	yMax := r.ReadInt16()
	macStyle := r.ReadUint16()
	lowestRecPPEM := r.ReadUint16()
	fontDirectionHint := r.ReadInt16()
	indexToLocFormat := r.ReadInt16()
	glyphDataFormat := r.ReadInt16()
	return &headTable{
		UnitsPerEm:         unitsPerEm,
		XMin:               xMin,
		YMin:               yMin,
		XMax:               xMax,
		YMax:               yMax,
		MacStyle:           macStyle,
		LowestRecPPEM:      lowestRecPPEM,
		FontDirectionHint:  fontDirectionHint,
		IndexToLocFormat:   indexToLocFormat,
		GlyphDataFormat:    glyphDataFormat,
		ChecksumAdjustment: checksumAdjustment,
	}, nil
}

func (f *Font) head() (*headTable, error) {
	v, err := f.getTable("head", parseHead)
	if err != nil {
		return nil, err
	}
	return v.(*headTable), nil
}

// hheaTable is the horizontal/vertical header (`hhea`/`vhea` share layout).
type hheaTable struct {
	Ascender, Descender, LineGap int16
	AdvanceWidthMax              uint16
	MinLeftSideBearing           int16
	MinRightSideBearing          int16
	XMaxExtent                   int16
	CaretSlopeRise               int16
	CaretSlopeRun                int16
	CaretOffset                  int16
	NumberOfHMetrics             uint16
}

func parseHhea(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	version := r.ReadUint32()
	if version != 0x00010000 {
		panic(&UnsupportedVersionError{Tag: "hhea", Version: version})
	}
	ascender := r.ReadInt16()
	descender := r.ReadInt16()
	lineGap := r.ReadInt16()
	advanceWidthMax := r.ReadUint16()
	minLSB := r.ReadInt16()
	minRSB := r.ReadInt16()
	xMaxExtent := r.ReadInt16()
	caretSlopeRise := r.ReadInt16()
	caretSlopeRun := r.ReadInt16()
	caretOffset := r.ReadInt16()
	_ = r.ReadBytes(8) // reserved x4 int16
	_ = r.ReadInt16()  // metricDataFormat
	numberOfHMetrics := r.ReadUint16()
	return &hheaTable{
		Ascender:             ascender,
		Descender:            descender,
		LineGap:              lineGap,
		AdvanceWidthMax:      advanceWidthMax,
		MinLeftSideBearing:   minLSB,
		MinRightSideBearing:  minRSB,
		XMaxExtent:           xMaxExtent,
		CaretSlopeRise:       caretSlopeRise,
		CaretSlopeRun:        caretSlopeRun,
		CaretOffset:          caretOffset,
		NumberOfHMetrics:     numberOfHMetrics,
	}, nil
}

func (f *Font) hhea() (*hheaTable, error) {
	v, err := f.getTable("hhea", parseHhea)
	if err != nil {
		return nil, err
	}
	return v.(*hheaTable), nil
}

func (f *Font) vhea() (*hheaTable, error) {
	v, err := f.getTable("vhea", parseHhea)
	if err != nil {
		return nil, err
	}
	return v.(*hheaTable), nil
}

// hmtxTable holds the per-glyph (advance, lsb) metrics. Entries beyond
// NumberOfHMetrics repeat the final advance width with a bare lsb, per the
// `hmtx` table invariant in §3.
type hmtxTable struct {
	numberOfHMetrics uint16
	numGlyphs        uint16
	advances         []uint16
	lsbs             []int16 // len == numGlyphs
}

func parseHmtxWith(numberOfHMetrics, numGlyphs uint16) func([]byte) (interface{}, error) {
	return func(b []byte) (interface{}, error) {
		if numberOfHMetrics == 0 || numGlyphs < numberOfHMetrics {
			panic(&InvariantViolationError{What: "numberOfHMetrics exceeds numGlyphs"})
		}
		r := newBinaryReader(b)
		advances := make([]uint16, numberOfHMetrics)
		lsbs := make([]int16, numGlyphs)
		for i := uint16(0); i < numberOfHMetrics; i++ {
			advances[i] = r.ReadUint16()
			lsbs[i] = r.ReadInt16()
		}
		for i := numberOfHMetrics; i < numGlyphs; i++ {
			lsbs[i] = r.ReadInt16()
		}
		return &hmtxTable{numberOfHMetrics, numGlyphs, advances, lsbs}, nil
	}
}

func (t *hmtxTable) Advance(glyphID uint16) uint16 {
	if glyphID >= t.numberOfHMetrics {
		return t.advances[t.numberOfHMetrics-1]
	}
	return t.advances[glyphID]
}

func (t *hmtxTable) LeftSideBearing(glyphID uint16) int16 {
	if int(glyphID) >= len(t.lsbs) {
		return 0
	}
	return t.lsbs[glyphID]
}

func (f *Font) hmtx() (*hmtxTable, error) {
	hhea, err := f.hhea()
	if err != nil {
		return nil, err
	}
	maxp, err := f.maxp()
	if err != nil {
		return nil, err
	}
	v, err := f.getTable("hmtx", parseHmtxWith(hhea.NumberOfHMetrics, maxp.NumGlyphs))
	if err != nil {
		return nil, err
	}
	return v.(*hmtxTable), nil
}

func (f *Font) vmtx() (*hmtxTable, error) {
	vhea, err := f.vhea()
	if err != nil {
		return nil, err
	}
	maxp, err := f.maxp()
	if err != nil {
		return nil, err
	}
	v, err := f.getTable("vmtx", parseHmtxWith(vhea.NumberOfHMetrics, maxp.NumGlyphs))
	if err != nil {
		return nil, err
	}
	return v.(*hmtxTable), nil
}

// maxpTable is the `maxp` table. Only version 0.5 (CFF) and 1.0 (TrueType)
// are recognized; only the version and numGlyphs are kept, and the
// TrueType-only profile fields are not decoded.
type maxpTable struct {
	Version   uint32
	NumGlyphs uint16
}

func parseMaxp(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	version := r.ReadUint32()
	numGlyphs := r.ReadUint16()
	if version != 0x00005000 && version != 0x00010000 {
		panic(&UnsupportedVersionError{Tag: "maxp", Version: version})
	}
	return &maxpTable{version, numGlyphs}, nil
}

func (f *Font) maxp() (*maxpTable, error) {
	v, err := f.getTable("maxp", parseMaxp)
	if err != nil {
		return nil, err
	}
	return v.(*maxpTable), nil
}

// NumGlyphs returns maxp.numGlyphs, the size of the glyph id space.
func (f *Font) NumGlyphs() (uint32, error) {
	maxp, err := f.maxp()
	if err != nil {
		return 0, err
	}
	return uint32(maxp.NumGlyphs), nil
}

// postTable exposes glyph names for `post` version 2.0; other versions
// (1.0's standard Macintosh glyph order, 3.0's "no names") resolve every
// glyph to the empty string.
type postTable struct {
	version  uint32
	names    []string // index by glyphID for version 2.0
}

var macGlyphNames = [...]string{
	".notdef", ".null", "nonmarkingreturn", "space", "exclam", "quotedbl",
	"numbersign", "dollar", "percent", "ampersand", "quotesingle",
	"parenleft", "parenright", "asterisk", "plus", "comma", "hyphen",
	"period", "slash", "zero", "one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "colon", "semicolon", "less",
	"equal", "greater", "question", "at", "A", "B", "C", "D", "E", "F",
	"G", "H", "I", "J", "K", "L", "M", "N", "O", "P", "Q", "R", "S", "T",
	"U", "V", "W", "X", "Y", "Z", "bracketleft", "backslash",
	"bracketright", "asciicircum", "underscore", "grave", "a", "b", "c",
	"d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q",
	"r", "s", "t", "u", "v", "w", "x", "y", "z", "braceleft", "bar",
	"braceright", "asciitilde",
}

func parsePost(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	version := r.ReadUint32()
	t := &postTable{version: version}
	if version != 0x00020000 {
		return t, nil
	}
	_ = r.ReadBytes(28) // italicAngle, underline*, isFixedPitch, mem*
	numGlyphs := r.ReadUint16()
	indices := make([]uint16, numGlyphs)
	maxIndex := uint16(0)
	for i := range indices {
		indices[i] = r.ReadUint16()
		if 258 <= indices[i] && indices[i]-258 > maxIndex {
			maxIndex = indices[i] - 258
		}
	}
	pascal := make([]string, 0, maxIndex+1)
	for !r.EOF() {
		n := r.ReadUint8()
		pascal = append(pascal, r.ReadString(uint32(n)))
	}
	names := make([]string, numGlyphs)
	for i, idx := range indices {
		if idx < 258 {
			if int(idx) < len(macGlyphNames) {
				names[i] = macGlyphNames[idx]
			}
		} else if j := int(idx) - 258; j < len(pascal) {
			names[i] = pascal[j]
		}
	}
	t.names = names
	return t, nil
}

func (t *postTable) Get(glyphID uint16) string {
	if int(glyphID) < len(t.names) {
		return t.names[glyphID]
	}
	return ""
}

func (f *Font) post() (*postTable, error) {
	v, err := f.getTable("post", parsePost)
	if err != nil {
		return nil, err
	}
	return v.(*postTable), nil
}

// GlyphName returns the `post` table name for glyphID, or "" if the font
// carries no name for it.
func (f *Font) GlyphName(glyphID uint16) string {
	post, err := f.post()
	if err != nil {
		return ""
	}
	return post.Get(glyphID)
}

// os2Table is the fixed-schema `OS/2` table, used here only for the metrics
// clients commonly read off it; the full 96-byte (or 86-byte, version-0)
// record isn't reproduced field-for-field beyond what's queried.
type os2Table struct {
	Version             uint16
	XAvgCharWidth       int16
	UsWeightClass       uint16
	UsWidthClass        uint16
	FsType              uint16
	YSubscriptXSize     int16
	YSubscriptYSize     int16
	YSubscriptXOffset   int16
	YSubscriptYOffset   int16
	YSuperscriptXSize   int16
	YSuperscriptYSize   int16
	YSuperscriptXOffset int16
	YSuperscriptYOffset int16
	YStrikeoutSize      int16
	YStrikeoutPosition  int16
	SFamilyClass        int16
	SCapHeight          int16 // version >= 2 only
	SxHeight            int16 // version >= 2 only
	UsWinAscent         uint16
	UsWinDescent        uint16
}

func parseOS2(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	version := r.ReadUint16()
	xAvgCharWidth := r.ReadInt16()
	usWeightClass := r.ReadUint16()
	usWidthClass := r.ReadUint16()
	fsType := r.ReadUint16()
	ySubscriptXSize := r.ReadInt16()
	ySubscriptYSize := r.ReadInt16()
	ySubscriptXOffset := r.ReadInt16()
	ySubscriptYOffset := r.ReadInt16()
	ySuperscriptXSize := r.ReadInt16()
	ySuperscriptYSize := r.ReadInt16()
	ySuperscriptXOffset := r.ReadInt16()
	ySuperscriptYOffset := r.ReadInt16()
	yStrikeoutSize := r.ReadInt16()
	yStrikeoutPosition := r.ReadInt16()
	sFamilyClass := r.ReadInt16()
	_ = r.ReadBytes(10) // panose
	_ = r.ReadBytes(16) // unicode range 1-4
	_ = r.ReadBytes(4)  // achVendID
	_ = r.ReadUint16()  // fsSelection
	_ = r.ReadUint16()  // usFirstCharIndex
	_ = r.ReadUint16()  // usLastCharIndex
	_ = r.ReadInt16()   // sTypoAscender
	_ = r.ReadInt16()   // sTypoDescender
	_ = r.ReadInt16()   // sTypoLineGap
	usWinAscent := r.ReadUint16()
	usWinDescent := r.ReadUint16()
	t := &os2Table{
		Version: version, XAvgCharWidth: xAvgCharWidth,
		UsWeightClass: usWeightClass, UsWidthClass: usWidthClass, FsType: fsType,
		YSubscriptXSize: ySubscriptXSize, YSubscriptYSize: ySubscriptYSize,
		YSubscriptXOffset: ySubscriptXOffset, YSubscriptYOffset: ySubscriptYOffset,
		YSuperscriptXSize: ySuperscriptXSize, YSuperscriptYSize: ySuperscriptYSize,
		YSuperscriptXOffset: ySuperscriptXOffset, YSuperscriptYOffset: ySuperscriptYOffset,
		YStrikeoutSize: yStrikeoutSize, YStrikeoutPosition: yStrikeoutPosition,
		SFamilyClass: sFamilyClass, UsWinAscent: usWinAscent, UsWinDescent: usWinDescent,
	}
	if version >= 2 && !r.EOF() {
		_ = r.ReadBytes(8) // ulCodePageRange1-2
		t.SxHeight = r.ReadInt16()
		t.SCapHeight = r.ReadInt16()
	}
	return t, nil
}

func (f *Font) os2() (*os2Table, error) {
	v, err := f.getTable("OS/2", parseOS2)
	if err != nil {
		return nil, err
	}
	return v.(*os2Table), nil
}

// nameTable is the `name` table: a set of (platformID, encodingID,
// languageID, nameID) → string records.
type nameTable struct {
	records []nameRecord
}

type nameRecord struct {
	PlatformID, EncodingID, LanguageID, NameID uint16
	Value                                      string
}

func parseName(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	format := r.ReadUint16()
	if format != 0 && format != 1 {
		panic(&UnsupportedVersionError{Tag: "name", Version: uint32(format)})
	}
	count := r.ReadUint16()
	stringOffset := r.ReadUint16()
	type raw struct {
		platformID, encodingID, languageID, nameID uint16
		length, offset                             uint16
	}
	raws := make([]raw, count)
	for i := range raws {
		raws[i] = raw{
			platformID: r.ReadUint16(),
			encodingID: r.ReadUint16(),
			languageID: r.ReadUint16(),
			nameID:     r.ReadUint16(),
			length:     r.ReadUint16(),
			offset:     r.ReadUint16(),
		}
	}
	if uint32(stringOffset) > uint32(len(b)) {
		panic(&BoundsExceededError{Position: int(stringOffset), Have: len(b)})
	}
	storage := b[stringOffset:]
	records := make([]nameRecord, len(raws))
	for i, rr := range raws {
		if uint32(rr.offset)+uint32(rr.length) > uint32(len(storage)) {
			panic(&BoundsExceededError{Position: int(rr.offset), Need: int(rr.length), Have: len(storage) - int(rr.offset)})
		}
		raw := storage[rr.offset : rr.offset+rr.length]
		records[i] = nameRecord{rr.platformID, rr.encodingID, rr.languageID, rr.nameID, decodeNameString(rr.platformID, raw)}
	}
	return &nameTable{records}, nil
}

// decodeNameString converts a name-table record's raw bytes to a Go string.
// Windows/Unicode platforms store UTF-16BE; everything else (Macintosh
// Roman in practice) is treated as already being ASCII-compatible.
func decodeNameString(platformID uint16, raw []byte) string {
	if platformID == uint16(PlatformMacintosh) {
		return string(raw)
	}
	runes := make([]rune, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		u := uint16(raw[i])<<8 | uint16(raw[i+1])
		runes = append(runes, rune(u))
	}
	return string(runes)
}

func (f *Font) name() (*nameTable, error) {
	v, err := f.getTable("name", parseName)
	if err != nil {
		return nil, err
	}
	return v.(*nameTable), nil
}

// NameRecord returns a `name` table string for the given nameID, or "" if
// absent. It prefers the first Windows-platform record, then the first
// Unicode-platform record, then the first record of any other platform;
// the encoding and language IDs are not considered.
func (f *Font) NameRecord(nameID uint16) string {
	name, err := f.name()
	if err != nil {
		return ""
	}
	best := ""
	bestRank := -1
	for _, rec := range name.records {
		if rec.NameID != nameID {
			continue
		}
		rank := 0
		if rec.PlatformID == uint16(PlatformWindows) {
			rank = 2
		} else if rec.PlatformID == uint16(PlatformUnicode) {
			rank = 1
		}
		if rank > bestRank {
			bestRank, best = rank, rec.Value
		}
	}
	return best
}

// PlatformID identifies a `cmap`/`name` platform.
type PlatformID uint16

const (
	PlatformUnicode   = PlatformID(0)
	PlatformMacintosh = PlatformID(1)
	PlatformWindows   = PlatformID(3)
)

// sortedTags returns the tags of tables in ascending order.
func sortedTags(tables Tables) []string {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
