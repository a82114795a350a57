package font

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestNormalizeAxisValue(t *testing.T) {
	// wght axis (100, 400, 900), per spec.md §8 scenario 4.
	test.Float(t, normalizeAxisValue(400, 100, 400, 900), 0)
	test.Float(t, normalizeAxisValue(900, 100, 400, 900), 1)
	test.Float(t, normalizeAxisValue(100, 100, 400, 900), -1)
	test.Float(t, normalizeAxisValue(650, 100, 400, 900), 0.5)
	// Out-of-range values clamp to the nearest endpoint.
	test.Float(t, normalizeAxisValue(1000, 100, 400, 900), 1)
	test.Float(t, normalizeAxisValue(0, 100, 400, 900), -1)
}

func TestRegionScalarAtPeakEndMidpoint(t *testing.T) {
	region := variationRegion{axes: []regionAxisCoords{{0, 1, 1}}}
	// At the peak, the scalar is exactly 1.
	test.Float(t, region.scalar([]float64{1}), 1)
	region2 := variationRegion{axes: []regionAxisCoords{{0, 0.5, 1}}}
	// At or beyond the end, the scalar is 0.
	test.Float(t, region2.scalar([]float64{1}), 0)
	// At the midpoint between start and peak, the ramp is linear.
	test.Float(t, region2.scalar([]float64{0.25}), 0.5)
}

func TestRegionScalarRange(t *testing.T) {
	region := variationRegion{axes: []regionAxisCoords{{-1, 0.5, 1}}}
	for _, c := range []float64{-1, -0.5, 0, 0.25, 0.5, 0.75, 1} {
		s := region.scalar([]float64{c})
		test.That(t, 0 <= s && s <= 1)
	}
}

// buildItemVariationStore builds a minimal one-axis, one-region,
// single-subtable ItemVariationStore: region peak at coord 1.0, one item
// with one short (int16) delta of 100.
func buildItemVariationStore() []byte {
	regionList := cat(
		be16(1), be16(1), // axisCount, regionCount
		be16(0x0000), be16(0x4000), be16(0x4000), // start=0, peak=1, end=1 (F2Dot14)
	)
	data := cat(
		be16(1), be16(1), be16(1), // itemCount, shortDeltaCount, regionIndexCount
		be16(0),                   // regionIndexes[0] = 0
		be16(uint16(100)),         // deltaSets[0][0] = 100 (int16)
	)
	const storeHeaderLen = 2 + 4 + 2 + 4 // format + regionListOffset + dataCount + one dataOffset
	regionListOffset := uint32(storeHeaderLen)
	dataOffset := regionListOffset + uint32(len(regionList))
	return cat(
		be16(1), // format
		be32(regionListOffset),
		be16(1), be32(dataOffset),
		regionList,
		data,
	)
}

func TestItemVariationStoreDeltaAtOriginIsZero(t *testing.T) {
	store, err := parseItemVariationStore(buildItemVariationStore())
	test.Error(t, err)

	q := newVariationQuery(store, []float64{0})
	test.Float(t, q.Delta(0, 0), 0)
}

func TestItemVariationStoreDeltaAtPeak(t *testing.T) {
	store, err := parseItemVariationStore(buildItemVariationStore())
	test.Error(t, err)

	q := newVariationQuery(store, []float64{1})
	test.Float(t, q.Delta(0, 0), 100)

	scalars := q.RegionScalars(0)
	test.T(t, len(scalars), 1)
	test.Float(t, scalars[0], 1)
}
