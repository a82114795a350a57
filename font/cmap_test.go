package font

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestCmapFormat4Lookup(t *testing.T) {
	sub, format, err := parseCmapSubtable(buildCmapFormat4(3, 1, 'A', 'A', 0)[12:])
	test.Error(t, err)
	test.T(t, format, uint16(4))

	gid, ok := sub.Lookup('A')
	test.That(t, ok)
	test.T(t, gid, uint16(0))

	_, ok = sub.Lookup('B')
	test.That(t, !ok)

	// The mandatory terminator segment (0xFFFF -> 0xFFFF) must never
	// resolve to a real glyph, per §8's boundary case.
	_, ok = sub.Lookup(0xFFFF)
	test.That(t, !ok)
}

func TestCmapTablePriority(t *testing.T) {
	// Two encoding records for the same glyph: (1,0) Mac Roman and (3,1)
	// Unicode BMP. §4.4 says Unicode BMP wins even though it's not first
	// in the directory.
	macRoman := buildCmapFormat4(1, 0, 'A', 'A', 5)
	unicodeBMP := buildCmapFormat4(3, 1, 'A', 'A', 7)

	// Splice both encoding records into one cmap header.
	macSub := macRoman[12:]
	uniSub := unicodeBMP[12:]
	const headerLen = 4 + 2*8 // version+numTables, then 2 x (platformID,encodingID,offset)
	header := cat(
		be16(1), be16(2),
		be16(1), be16(0), be32(headerLen),
		be16(3), be16(1), be32(headerLen+uint32(len(macSub))),
	)
	body := cat(header, macSub, uniSub)

	v, err := parseCmap(body)
	test.Error(t, err)
	ct := v.(*cmapTable)

	gid, ok := ct.GlyphID('A', 0)
	test.That(t, ok)
	test.T(t, gid, uint16(7))
}

func TestCmapFormat0(t *testing.T) {
	glyphIDs := make([]byte, 256)
	glyphIDs[65] = 9
	b := cat(be16(0), be16(262), be16(0), glyphIDs)
	sub, format, err := parseCmapSubtable(b)
	test.Error(t, err)
	test.T(t, format, uint16(0))

	gid, ok := sub.Lookup('A')
	test.That(t, ok)
	test.T(t, gid, uint16(9))

	_, ok = sub.Lookup('B')
	test.That(t, !ok)
}

func TestCmapFormat12SequentialGroups(t *testing.T) {
	b := cat(
		be16(12), be16(0), // format, reserved
		be32(0),           // length (unchecked by the decoder)
		be32(0),           // language
		be32(1),           // nGroups
		be32(uint32('A')), be32(uint32('Z')), be32(10),
	)
	sub, format, err := parseCmapSubtable(b)
	test.Error(t, err)
	test.T(t, format, uint16(12))

	gid, ok := sub.Lookup('C')
	test.That(t, ok)
	test.T(t, gid, uint16(10+('C'-'A')))
}
