package font

import (
	"testing"

	"github.com/tdewolff/test"
)

func buildTriangleFont() ([]byte, []byte) {
	glyph := buildSimpleGlyph1Contour(
		[]int16{0, 500, 250},
		[]int16{0, 0, 500},
		0, 0, 500, 500,
	)
	paddedLen := (uint32(len(glyph)) + 3) &^ 3
	padded := make([]byte, paddedLen)
	copy(padded, glyph)

	glyfBlob := cat(padded, []byte{}) // single glyph, glyph 1 is empty (loca[1]==loca[2])
	loca := buildLocaShort([]uint32{uint32(len(glyph)), 0})

	return glyfBlob, loca
}

func TestGlyphContourSimple(t *testing.T) {
	glyfBlob, loca := buildTriangleFont()

	b := newSFNTBuilder()
	b.add("head", buildHead(1000, false))
	b.add("hhea", buildHhea(1))
	b.add("maxp", buildMaxp10(2))
	b.add("hmtx", buildHmtx([]uint16{500}, []int16{0, 0}))
	b.add("loca", loca)
	b.add("glyf", glyfBlob)
	b.add("cmap", buildCmapFormat4(3, 1, 'A', 'A', 0))

	f, err := Open(b.build(0x00010000), 0)
	test.Error(t, err)

	c, err := f.GlyphContour(0)
	test.Error(t, err)
	test.T(t, len(c.EndPoints), 1)
	test.T(t, c.EndPoints[0], uint16(2))
	test.T(t, len(c.XCoordinates), 3)
	test.T(t, c.XCoordinates, []int16{0, 500, 250})
	test.T(t, c.YCoordinates, []int16{0, 0, 500})
	for _, on := range c.OnCurve {
		test.That(t, on)
	}

	// Empty glyph (loca[i]==loca[i+1]) produces a zero-contour outline,
	// per §8's boundary case.
	empty, err := f.GlyphContour(1)
	test.Error(t, err)
	test.T(t, len(empty.EndPoints), 0)
}

func TestGlyphContourOutOfRange(t *testing.T) {
	glyfBlob, loca := buildTriangleFont()

	b := newSFNTBuilder()
	b.add("head", buildHead(1000, false))
	b.add("hhea", buildHhea(1))
	b.add("maxp", buildMaxp10(2))
	b.add("hmtx", buildHmtx([]uint16{500}, []int16{0, 0}))
	b.add("loca", loca)
	b.add("glyf", glyfBlob)
	b.add("cmap", buildCmapFormat4(3, 1, 'A', 'A', 0))

	f, err := Open(b.build(0x00010000), 0)
	test.Error(t, err)

	_, err = f.GlyphContour(5)
	test.That(t, err != nil)
}

func TestLocaMonotoneInvariant(t *testing.T) {
	// loca[i+1] < loca[i] must be rejected as Corrupt, per §3's invariant.
	_, err := safeParse("loca", cat(be16(5), be16(2)), parseLocaWith(1, false))
	test.That(t, err != nil)
	_, ok := err.(*CorruptError)
	test.That(t, ok)
}
