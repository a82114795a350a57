package font

import (
	"testing"

	"github.com/tdewolff/test"
)

func buildFvarWght(min, def, max float64) []byte {
	const axisSize = 20
	header := cat(
		be16(1), be16(0),
		be16(16), // axesArrayOffset
		be16(0),  // reserved
		be16(1),  // axisCount
		be16(axisSize),
		be16(0), be16(4), // instanceCount, instanceSize
	)
	axis := cat(
		[]byte("wght"),
		be32(uint32(int32(min*65536))),
		be32(uint32(int32(def*65536))),
		be32(uint32(int32(max*65536))),
		be16(0), be16(0),
	)
	return cat(header, axis)
}

func buildHVAR(store []byte) []byte {
	const storeOffset = 20
	return cat(
		be16(1), be16(0),
		be32(storeOffset),
		be32(0), be32(0), be32(0),
		store,
	)
}

func TestVariationAxesAndAdvanceWidth(t *testing.T) {
	b := newSFNTBuilder()
	b.add("head", buildHead(1000, false))
	b.add("hhea", buildHhea(1))
	b.add("maxp", buildMaxp10(1))
	b.add("hmtx", buildHmtx([]uint16{500}, []int16{0}))
	b.add("loca", buildLocaShort([]uint32{0}))
	b.add("glyf", []byte{})
	b.add("cmap", buildCmapFormat4(3, 1, 'A', 'A', 0))
	b.add("fvar", buildFvarWght(100, 400, 900))
	b.add("HVAR", buildHVAR(buildItemVariationStore()))

	f, err := Open(b.build(0x00010000), 0)
	test.Error(t, err)

	axes := f.VariationAxes()
	test.T(t, len(axes), 1)
	test.T(t, axes[0].Tag, "wght")
	test.Float(t, axes[0].Min, 100)
	test.Float(t, axes[0].Default, 400)
	test.Float(t, axes[0].Max, 900)

	// At the default coordinate, every delta is zero: advance width
	// matches the static hmtx value (§8's origin invariant).
	adv, err := f.AdvanceWidth(0, map[string]float64{"wght": 400})
	test.Error(t, err)
	test.T(t, adv, uint16(500))

	// At the region's peak (wght:900 normalizes to +1), HVAR's full delta
	// applies: static 500 + stored delta 100 = 600, per §8 scenario 4.
	adv, err = f.AdvanceWidth(0, map[string]float64{"wght": 900})
	test.Error(t, err)
	test.T(t, adv, uint16(600))
}

func TestGlyphIndexFormat4(t *testing.T) {
	b := newSFNTBuilder()
	b.add("head", buildHead(1000, false))
	b.add("hhea", buildHhea(1))
	b.add("maxp", buildMaxp10(2))
	b.add("hmtx", buildHmtx([]uint16{500}, []int16{0, 0}))
	b.add("loca", buildLocaShort([]uint32{0, 0}))
	b.add("glyf", []byte{})
	b.add("cmap", buildCmapFormat4(3, 1, 'A', 'A', 1))

	f, err := Open(b.build(0x00010000), 0)
	test.Error(t, err)

	gid, ok := f.GlyphIndex('A', 0)
	test.That(t, ok)
	test.T(t, gid, uint16(1))

	gid, ok = f.GlyphIndex('Z', 0)
	test.That(t, !ok)
	test.T(t, gid, uint16(0))
}

func TestMediaTypeAndExtension(t *testing.T) {
	mt, err := MediaType([]byte("wOFF"))
	test.Error(t, err)
	test.T(t, mt, "font/woff")
	test.T(t, Extension([]byte("wOFF")), ".woff")

	mt, err = MediaType([]byte("OTTO"))
	test.Error(t, err)
	test.T(t, mt, "font/opentype")

	_, err = MediaType([]byte("xxxx"))
	test.That(t, err != nil)
}
