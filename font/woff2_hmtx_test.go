package font

import (
	"testing"

	"github.com/tdewolff/test"
)

// buildGlyfForHmtxTest assembles a glyf blob with one record per xMin, each
// zero-padded to recordLen bytes, carrying only the (numberOfContours, xMin)
// header reconstructHmtx needs, plus a short loca addressing those records.
func buildGlyfForHmtxTest(xMins []int16, recordLen int) ([]byte, []byte) {
	var glyf []byte
	lengths := make([]uint32, len(xMins))
	for i, xMin := range xMins {
		rec := cat(be16(1), be16(uint16(xMin)))
		padded := make([]byte, recordLen)
		copy(padded, rec)
		glyf = append(glyf, padded...)
		lengths[i] = uint32(len(padded))
	}
	return glyf, buildLocaShort(lengths)
}

func TestReconstructHmtxFullyReconstructed(t *testing.T) {
	numGlyphs, numHMetrics := uint16(2), uint16(1)
	glyf, loca := buildGlyfForHmtxTest([]int16{20, -5}, 12)

	head := buildHead(1000, false)
	maxp := buildMaxp10(numGlyphs)
	hhea := buildHhea(numHMetrics)

	// flags = 0x03: both proportional and monospace LSBs are absent from
	// the stream and must be reconstructed from glyf's xMin, per §4.3.
	input := cat([]byte{0x03}, be16(500))

	out, err := reconstructHmtx(input, head, glyf, loca, maxp, hhea)
	test.Error(t, err)

	want := cat(be16(500), be16(uint16(int16(20))), be16(0xFFFB)) // lsbs 20, -5
	test.T(t, out, want)
}

func TestReconstructHmtxReservedBitsRejected(t *testing.T) {
	numGlyphs, numHMetrics := uint16(1), uint16(1)
	glyf, loca := buildGlyfForHmtxTest([]int16{0}, 12)
	head := buildHead(1000, false)
	maxp := buildMaxp10(numGlyphs)
	hhea := buildHhea(numHMetrics)

	input := cat([]byte{0x04}, be16(500), be16(0)) // reserved bit 2 set
	_, err := reconstructHmtx(input, head, glyf, loca, maxp, hhea)
	test.That(t, err != nil)
}

func TestReconstructHmtxNumHMetricsExceedsNumGlyphs(t *testing.T) {
	glyf, loca := buildGlyfForHmtxTest([]int16{0}, 12)
	head := buildHead(1000, false)
	maxp := buildMaxp10(1)
	hhea := buildHhea(2) // numberOfHMetrics > numGlyphs

	input := cat([]byte{0x03}, be16(500), be16(500))
	_, err := reconstructHmtx(input, head, glyf, loca, maxp, hhea)
	test.That(t, err != nil)
}
