package font

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestDetectFormat(t *testing.T) {
	test.T(t, DetectFormat(be32(0x00010000)), "ttf")
	test.T(t, DetectFormat([]byte("OTTO")), "otf")
	test.T(t, DetectFormat([]byte("wOFF")), "woff")
	test.T(t, DetectFormat([]byte("wOF2")), "woff2")
	test.T(t, DetectFormat([]byte("ttcf")), "collection")
	test.T(t, DetectFormat([]byte("bad!")), "other")
	test.T(t, DetectFormat([]byte{0x00}), "other")
}

func TestOpenTooShort(t *testing.T) {
	_, err := Open([]byte{0x00, 0x01, 0x00}, 0)
	test.That(t, err != nil)
	_, ok := err.(*BoundsExceededError)
	test.That(t, ok)
}

func TestCalcChecksum(t *testing.T) {
	// Two whole words sum directly; the additive checksum ignores overflow.
	sum := calcChecksum(cat(be32(1), be32(2)))
	test.T(t, sum, uint32(3))

	// A non-multiple-of-4 tail is treated as if zero-padded.
	sum = calcChecksum([]byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00})
	test.T(t, sum, uint32(1)+uint32(0x00000000))
}

func TestOpenMinimalTTF(t *testing.T) {
	b := newSFNTBuilder()
	b.add("head", buildHead(1000, false))
	b.add("hhea", buildHhea(1))
	b.add("maxp", buildMaxp10(1))
	b.add("hmtx", buildHmtx([]uint16{500}, []int16{0}))
	b.add("loca", buildLocaShort([]uint32{0}))
	b.add("glyf", []byte{})
	b.add("cmap", buildCmapFormat4(3, 1, 'A', 'A', 0))

	font, err := Open(b.build(0x00010000), 0)
	test.Error(t, err)
	test.That(t, !font.IsCFF())

	n, err := font.NumGlyphs()
	test.Error(t, err)
	test.T(t, n, uint32(1))
}

func TestOpenUnknownTable(t *testing.T) {
	b := newSFNTBuilder()
	b.add("head", buildHead(1000, false))
	b.add("hhea", buildHhea(1))
	b.add("maxp", buildMaxp10(1))
	b.add("hmtx", buildHmtx([]uint16{500}, []int16{0}))

	font, err := Open(b.build(0x00010000), 0)
	test.Error(t, err)

	_, ok := font.Table("CFF ")
	test.That(t, !ok)
}
