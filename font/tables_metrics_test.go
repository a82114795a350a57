package font

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestParseHead(t *testing.T) {
	v, err := safeParse("head", buildHead(2048, true), parseHead)
	test.Error(t, err)
	h := v.(*headTable)
	test.T(t, h.UnitsPerEm, uint16(2048))
	test.T(t, h.IndexToLocFormat, int16(1))
}

func TestParseHeadBadMagic(t *testing.T) {
	b := buildHead(1000, false)
	// Corrupt the magic number at byte offset 12.
	b[12] ^= 0xFF
	_, err := safeParse("head", b, parseHead)
	test.That(t, err != nil)
	_, ok := err.(*BadMagicError)
	test.That(t, ok)
}

func TestParseHhea(t *testing.T) {
	v, err := safeParse("hhea", buildHhea(3), parseHhea)
	test.Error(t, err)
	h := v.(*hheaTable)
	test.T(t, h.NumberOfHMetrics, uint16(3))
}

func TestParseMaxp(t *testing.T) {
	v, err := safeParse("maxp", buildMaxp10(42), parseMaxp)
	test.Error(t, err)
	m := v.(*maxpTable)
	test.T(t, m.NumGlyphs, uint16(42))
}

func TestParseMaxpBadVersion(t *testing.T) {
	b := cat(be32(0x00020000), be16(1))
	_, err := safeParse("maxp", b, parseMaxp)
	test.That(t, err != nil)
}

func TestParseHmtxTrailingLSBOnly(t *testing.T) {
	b := buildHmtx([]uint16{500, 600}, []int16{1, 2, 3})
	v, err := safeParse("hmtx", b, parseHmtxWith(2, 3))
	test.Error(t, err)
	hm := v.(*hmtxTable)
	test.T(t, hm.Advance(0), uint16(500))
	test.T(t, hm.Advance(1), uint16(600))
	// Glyph 2 has no own advance record; it repeats the final metric's width.
	test.T(t, hm.Advance(2), uint16(600))
	test.T(t, hm.LeftSideBearing(2), int16(3))
}

func TestParseHmtxInvariantViolation(t *testing.T) {
	_, err := safeParse("hmtx", []byte{}, parseHmtxWith(2, 1))
	test.That(t, err != nil)
	_, ok := err.(*InvariantViolationError)
	test.That(t, ok)
}

func TestParsePostV2Names(t *testing.T) {
	b := cat(
		be32(0x00020000),
		make([]byte, 28), // italicAngle..mem fields
		be16(2),          // numGlyphs
		be16(3),          // index 0 -> macGlyphNames[3] == "space"
		be16(258),        // index 1 -> pascal string 0
		[]byte{5}, []byte("hello"),
	)
	v, err := safeParse("post", b, parsePost)
	test.Error(t, err)
	p := v.(*postTable)
	test.T(t, p.Get(0), "space")
	test.T(t, p.Get(1), "hello")
}

func TestParsePostV3NoNames(t *testing.T) {
	b := be32(0x00030000)
	v, err := safeParse("post", b, parsePost)
	test.Error(t, err)
	p := v.(*postTable)
	test.T(t, p.Get(0), "")
}

func TestParseOS2Version0(t *testing.T) {
	b := cat(
		be16(0),          // version
		be16(600),        // xAvgCharWidth
		be16(400),        // usWeightClass
		be16(5),          // usWidthClass
		be16(0),          // fsType
		make([]byte, 8*2), // subscript/superscript x/y size/offset (8 int16s)
		be16(0), be16(0), // strikeout size/position
		be16(0),           // sFamilyClass
		make([]byte, 10),  // panose
		make([]byte, 16),  // unicode ranges
		make([]byte, 4),   // achVendID
		be16(0),           // fsSelection
		be16(0), be16(0),  // first/last char index
		be16(0), be16(0), be16(0), // typo ascender/descender/linegap
		be16(900), be16(200), // win ascent/descent
	)
	v, err := safeParse("OS/2", b, parseOS2)
	test.Error(t, err)
	os2 := v.(*os2Table)
	test.T(t, os2.UsWeightClass, uint16(400))
	test.T(t, os2.UsWinAscent, uint16(900))
}

func TestParseNameWindowsUnicode(t *testing.T) {
	str := "Test Font"
	var utf16 []byte
	for _, r := range str {
		utf16 = append(utf16, be16(uint16(r))...)
	}
	header := cat(be16(0), be16(1), be16(6+12)) // format, count, stringOffset
	record := cat(
		be16(uint16(PlatformWindows)), be16(1), be16(0x0409), be16(1), // nameID 1 = family
		be16(uint16(len(utf16))), be16(0),
	)
	b := cat(header, record, utf16)
	v, err := safeParse("name", b, parseName)
	test.Error(t, err)
	nm := v.(*nameTable)
	test.T(t, len(nm.records), 1)
	test.T(t, nm.records[0].Value, str)
}
