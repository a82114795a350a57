package font

import "sort"

// fvarTable is the `fvar` axis list. The named instance list is not
// decoded: neither the instances nor their count are kept.
type fvarTable struct {
	axes []Axis
}

func parseFvar(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // majorVersion
	_ = r.ReadUint16() // minorVersion
	axesArrayOffset := r.ReadUint16()
	_ = r.ReadUint16() // reserved
	axisCount := r.ReadUint16()
	axisSize := r.ReadUint16()
	_ = r.ReadUint16() // instanceCount
	_ = r.ReadUint16() // instanceSize

	axes := make([]Axis, axisCount)
	ar := newBinaryReader(b)
	ar.Seek(uint32(axesArrayOffset))
	for i := range axes {
		start := ar.Pos()
		tag := ar.ReadTag()
		min := ar.ReadFixed()
		def := ar.ReadFixed()
		max := ar.ReadFixed()
		flags := ar.ReadUint16()
		_ = ar.ReadUint16() // axisNameID, not resolved here (would need `name`)
		axes[i] = Axis{Tag: tag, Min: min, Default: def, Max: max, Hidden: flags&0x0001 != 0}
		ar.Seek(start + uint32(axisSize))
	}
	return &fvarTable{axes}, nil
}

func (f *Font) fvar() (*fvarTable, error) {
	v, err := f.getTable("fvar", parseFvar)
	if err != nil {
		return nil, err
	}
	return v.(*fvarTable), nil
}

// VariationAxes returns the font's fvar axis list, or nil if the font is
// not variable.
func (f *Font) VariationAxes() []Axis {
	fvar, err := f.fvar()
	if err != nil {
		return nil
	}
	return fvar.axes
}

// avarSegmentMap is one axis's piecewise-linear (fromCoord, toCoord) pairs.
type avarSegmentMap struct {
	pairs [][2]float64 // sorted by fromCoord
}

func (m *avarSegmentMap) Apply(x float64) float64 {
	if len(m.pairs) == 0 {
		return x
	}
	if x <= m.pairs[0][0] {
		return m.pairs[0][1] + (x-m.pairs[0][0])*slopeAt(m.pairs, 0)
	}
	last := len(m.pairs) - 1
	if x >= m.pairs[last][0] {
		return m.pairs[last][1]
	}
	for i := 1; i < len(m.pairs); i++ {
		if x <= m.pairs[i][0] {
			x0, y0 := m.pairs[i-1][0], m.pairs[i-1][1]
			x1, y1 := m.pairs[i][0], m.pairs[i][1]
			if x1 == x0 {
				return y0
			}
			return y0 + (x-x0)*(y1-y0)/(x1-x0)
		}
	}
	return x
}

func slopeAt(pairs [][2]float64, i int) float64 {
	if i+1 >= len(pairs) || pairs[i+1][0] == pairs[i][0] {
		return 1
	}
	return (pairs[i+1][1] - pairs[i][1]) / (pairs[i+1][0] - pairs[i][0])
}

type avarTable struct {
	segmentMaps []*avarSegmentMap // one per fvar axis, in axis order
}

func parseAvar(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // majorVersion
	_ = r.ReadUint16() // minorVersion
	axisCount := r.ReadUint16()
	maps := make([]*avarSegmentMap, axisCount)
	for i := range maps {
		pairCount := r.ReadUint16()
		m := &avarSegmentMap{pairs: make([][2]float64, pairCount)}
		for j := range m.pairs {
			m.pairs[j] = [2]float64{r.ReadF2Dot14(), r.ReadF2Dot14()}
		}
		maps[i] = m
	}
	return &avarTable{maps}, nil
}

func (f *Font) avar() (*avarTable, error) {
	v, err := f.getTable("avar", parseAvar)
	if err != nil {
		return nil, err
	}
	return v.(*avarTable), nil
}

// NormalizeCoords maps a user-coordinate map (axis tag → user value) to a
// normalized coordinate vector in fvar axis order, applying the axis
// [min,default,max]→[-1,0,+1] piecewise-linear map and then avar's
// remapping, per §3 and §4.7.
func (f *Font) NormalizeCoords(user map[string]float64) ([]float64, error) {
	fvar, err := f.fvar()
	if err != nil {
		return nil, err
	}
	coords := make([]float64, len(fvar.axes))
	for i, axis := range fvar.axes {
		u, ok := user[axis.Tag]
		if !ok {
			u = axis.Default
		}
		coords[i] = normalizeAxisValue(u, axis.Min, axis.Default, axis.Max)
	}
	if avar, err := f.avar(); err == nil {
		for i := range coords {
			if i < len(avar.segmentMaps) && avar.segmentMaps[i] != nil {
				coords[i] = avar.segmentMaps[i].Apply(coords[i])
			}
		}
	}
	return coords, nil
}

func normalizeAxisValue(v, min, def, max float64) float64 {
	switch {
	case v < def:
		if min == def {
			return 0
		}
		if v < min {
			v = min
		}
		return (v - def) / (def - min)
	case v > def:
		if max == def {
			return 0
		}
		if v > max {
			v = max
		}
		return (v - def) / (max - def)
	default:
		return 0
	}
}

////////////////////////////////////////////////////////////////
// ItemVariationStore

// variationRegion is one (start, peak, end) triple per axis composing a
// single region of the ItemVariationStore.
type variationRegion struct {
	axes []regionAxisCoords
}

type regionAxisCoords struct {
	start, peak, end float64
}

// scalar computes the region's weight at normalized coordinate vector
// coord, per §4.7: the product across axes of a per-axis triangular ramp
// that is 0 outside [start,end], 1 at peak.
func (rg *variationRegion) scalar(coord []float64) float64 {
	s := 1.0
	for i, a := range rg.axes {
		if a.start == 0 && a.peak == 0 && a.end == 0 {
			continue // convention: (0,0,0) contributes a factor of 1
		}
		var c float64
		if i < len(coord) {
			c = coord[i]
		}
		var axisScalar float64
		switch {
		case c == a.peak:
			axisScalar = 1
		case c <= a.start || c >= a.end:
			axisScalar = 0
		case c < a.peak:
			if a.peak == a.start {
				axisScalar = 0
			} else {
				axisScalar = (c - a.start) / (a.peak - a.start)
			}
		default: // a.peak < c < a.end
			if a.end == a.peak {
				axisScalar = 0
			} else {
				axisScalar = (a.end - c) / (a.end - a.peak)
			}
		}
		s *= axisScalar
		if s == 0 {
			return 0
		}
	}
	return s
}

// itemVariationData is one subtable of the store: a matrix of per-region
// deltas indexed by (itemIndex, regionIndex-within-this-subtable).
type itemVariationData struct {
	regionIndexes []uint16 // indexes into the shared region list
	deltaSets     [][]int32
}

type itemVariationStore struct {
	regions []variationRegion
	data    []itemVariationData
}

func parseItemVariationStore(b []byte) (*itemVariationStore, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // format, always 1
	regionListOffset := r.ReadUint32()
	itemVariationDataCount := r.ReadUint16()
	dataOffsets := make([]uint32, itemVariationDataCount)
	for i := range dataOffsets {
		dataOffsets[i] = r.ReadUint32()
	}

	rr := newBinaryReader(b)
	rr.Seek(regionListOffset)
	axisCount := rr.ReadUint16()
	regionCount := rr.ReadUint16()
	regions := make([]variationRegion, regionCount)
	for i := range regions {
		axes := make([]regionAxisCoords, axisCount)
		for j := range axes {
			axes[j] = regionAxisCoords{rr.ReadF2Dot14(), rr.ReadF2Dot14(), rr.ReadF2Dot14()}
		}
		regions[i] = variationRegion{axes}
	}

	data := make([]itemVariationData, len(dataOffsets))
	for i, off := range dataOffsets {
		dr := newBinaryReader(b)
		dr.Seek(off)
		itemCount := dr.ReadUint16()
		shortDeltaCount := dr.ReadUint16()
		regionIndexCount := dr.ReadUint16()
		regionIndexes := make([]uint16, regionIndexCount)
		for j := range regionIndexes {
			regionIndexes[j] = dr.ReadUint16()
		}
		deltaSets := make([][]int32, itemCount)
		for j := range deltaSets {
			deltas := make([]int32, regionIndexCount)
			k := uint16(0)
			for ; k < shortDeltaCount && k < regionIndexCount; k++ {
				deltas[k] = int32(dr.ReadInt16())
			}
			for ; k < regionIndexCount; k++ {
				deltas[k] = int32(dr.ReadInt8())
			}
			deltaSets[j] = deltas
		}
		data[i] = itemVariationData{regionIndexes, deltaSets}
	}
	return &itemVariationStore{regions, data}, nil
}

// variationEngineQuery precomputes every region's scalar for a fixed
// normalized coordinate, so a single query can cheaply evaluate many
// deltas within one HVAR, MVAR or CFF2-glyph evaluation (each of those
// builds its own query), per the "precompute once"
// design note in §9.
type variationEngineQuery struct {
	store   *itemVariationStore
	coord   []float64
	scalars []float64 // one per region in store.regions, computed by newVariationQuery
}

func newVariationQuery(store *itemVariationStore, coord []float64) *variationEngineQuery {
	if store == nil {
		return nil
	}
	scalars := make([]float64, len(store.regions))
	for i := range store.regions {
		scalars[i] = store.regions[i].scalar(coord)
	}
	return &variationEngineQuery{store, coord, scalars}
}

// Delta evaluates delta(outer, inner) = Σ region_scalar × stored_delta.
func (q *variationEngineQuery) Delta(outer, inner int) float64 {
	if q == nil || outer < 0 || outer >= len(q.store.data) {
		return 0
	}
	vd := q.store.data[outer]
	if inner < 0 || inner >= len(vd.deltaSets) {
		return 0
	}
	deltas := vd.deltaSets[inner]
	var sum float64
	for i, regionIdx := range vd.regionIndexes {
		if int(regionIdx) >= len(q.scalars) || i >= len(deltas) {
			continue
		}
		sum += q.scalars[regionIdx] * float64(deltas[i])
	}
	return sum
}

// RegionScalars returns the precomputed region scalar for each region
// belonging to ItemVariationData subtable outer, in that subtable's own
// region order — exactly the `scalarⱼ` sequence CFF2's blend operator
// needs (§4.6), as distinct from Delta's stored-table deltas.
func (q *variationEngineQuery) RegionScalars(outer int) []float64 {
	if q == nil || outer < 0 || outer >= len(q.store.data) {
		return nil
	}
	vd := q.store.data[outer]
	out := make([]float64, len(vd.regionIndexes))
	for i, ri := range vd.regionIndexes {
		if int(ri) < len(q.scalars) {
			out[i] = q.scalars[ri]
		}
	}
	return out
}

// NumRegions reports how many regions the store carries for the given
// ItemVariationData subtable, the `n` CFF2's blend operator needs to know
// how many deltas accompany each base value.
func (q *variationEngineQuery) NumRegions(outer int) int {
	if q == nil || outer < 0 || outer >= len(q.store.data) {
		return 0
	}
	return len(q.store.data[outer].regionIndexes)
}

////////////////////////////////////////////////////////////////
// HVAR / VVAR

type hvarTable struct {
	store          *itemVariationStore
	advanceMap     *deltaSetIndexMap
	lsbMap         *deltaSetIndexMap
}

// deltaSetIndexMap maps a glyph id to (outer, inner) indexes into an
// ItemVariationStore; nil means the identity map glyphID → (0, glyphID).
type deltaSetIndexMap struct {
	entries []uint32 // packed outer<<16|inner per the table's entryFormat, pre-expanded
}

func parseDeltaSetIndexMap(b []byte) *deltaSetIndexMap {
	r := newBinaryReader(b)
	format := r.ReadUint8()
	entryFormat := r.ReadUint8()
	var mapCount uint32
	if format == 0 {
		mapCount = uint32(r.ReadUint16())
	} else {
		mapCount = r.ReadUint32()
	}
	entrySize := int((entryFormat>>4)&3) + 1
	innerBits := uint(entryFormat&0xF) + 1
	entries := make([]uint32, mapCount)
	for i := range entries {
		var raw uint32
		switch entrySize {
		case 1:
			raw = uint32(r.ReadUint8())
		case 2:
			raw = uint32(r.ReadUint16())
		case 3:
			raw = r.ReadUint24()
		case 4:
			raw = r.ReadUint32()
		}
		outer := raw >> innerBits
		inner := raw & ((1 << innerBits) - 1)
		entries[i] = outer<<16 | inner
	}
	return &deltaSetIndexMap{entries}
}

func (m *deltaSetIndexMap) Lookup(glyphID uint16) (outer, inner int) {
	if m == nil {
		return 0, int(glyphID)
	}
	i := int(glyphID)
	if i >= len(m.entries) {
		i = len(m.entries) - 1
	}
	if i < 0 {
		return 0, 0
	}
	packed := m.entries[i]
	return int(packed >> 16), int(packed & 0xFFFF)
}

func parseHVAR(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // majorVersion
	_ = r.ReadUint16() // minorVersion
	itemVariationStoreOffset := r.ReadUint32()
	advanceWidthMappingOffset := r.ReadUint32()
	lsbMappingOffset := r.ReadUint32()
	_ = r.ReadUint32() // rsbMappingOffset, unused (rsb deltas not decoded here)

	store, err := parseItemVariationStore(b[itemVariationStoreOffset:])
	if err != nil {
		return nil, err
	}
	t := &hvarTable{store: store}
	if advanceWidthMappingOffset != 0 {
		t.advanceMap = parseDeltaSetIndexMap(b[advanceWidthMappingOffset:])
	}
	if lsbMappingOffset != 0 {
		t.lsbMap = parseDeltaSetIndexMap(b[lsbMappingOffset:])
	}
	return t, nil
}

func (f *Font) hvar() (*hvarTable, error) {
	v, err := f.getTable("HVAR", parseHVAR)
	if err != nil {
		return nil, err
	}
	return v.(*hvarTable), nil
}

// AdvanceWidth returns glyphID's horizontal advance, applying HVAR deltas
// when coords names a non-origin position on a variable font. Deltas are
// rounded to the nearest integer per §8 scenario 4.
func (f *Font) AdvanceWidth(glyphID uint16, coords map[string]float64) (uint16, error) {
	hmtx, err := f.hmtx()
	if err != nil {
		return 0, err
	}
	base := hmtx.Advance(glyphID)
	if len(coords) == 0 {
		return base, nil
	}
	hvar, err := f.hvar()
	if err != nil {
		return base, nil // no HVAR: static metrics are authoritative
	}
	norm, err := f.NormalizeCoords(coords)
	if err != nil {
		return base, nil
	}
	q := newVariationQuery(hvar.store, norm)
	outer, inner := hvar.advanceMap.Lookup(glyphID)
	delta := q.Delta(outer, inner)
	return uint16(roundHalfAwayFromZero(float64(base) + delta)), nil
}

func roundHalfAwayFromZero(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}

////////////////////////////////////////////////////////////////
// MVAR

// mvarValueTag enumerates the closed set of MVAR metric selectors named in
// §4.7; any other 4-byte tag is ignored as an unsupported metric.
type mvarValueTag string

const (
	MVARHorizontalAscender         mvarValueTag = "hasc"
	MVARHorizontalDescender        mvarValueTag = "hdsc"
	MVARHorizontalLineGap          mvarValueTag = "hlgp"
	MVARHorizontalClippingAscent   mvarValueTag = "hcla"
	MVARHorizontalClippingDescent  mvarValueTag = "hcld"
	MVARVerticalAscender           mvarValueTag = "vasc"
	MVARVerticalDescender          mvarValueTag = "vdsc"
	MVARUnderlineSize              mvarValueTag = "unds"
	MVARUnderlineOffset            mvarValueTag = "undo"
	MVARStrikeoutSize              mvarValueTag = "stro"
	MVARStrikeoutOffset            mvarValueTag = "strs"
)

type mvarTable struct {
	store      *itemVariationStore
	records    map[string][2]uint16 // tag → (outerIndex, innerIndex)
}

func parseMVAR(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // majorVersion
	_ = r.ReadUint16() // minorVersion
	_ = r.ReadUint16() // reserved
	valueRecordSize := r.ReadUint16()
	valueRecordCount := r.ReadUint16()
	itemVariationStoreOffset := r.ReadUint16()

	records := make(map[string][2]uint16, valueRecordCount)
	for i := uint16(0); i < valueRecordCount; i++ {
		start := r.Pos()
		tag := r.ReadTag()
		outer := r.ReadUint16()
		inner := r.ReadUint16()
		records[tag] = [2]uint16{outer, inner}
		r.Seek(start + uint32(valueRecordSize))
	}
	var store *itemVariationStore
	if itemVariationStoreOffset != 0 {
		var err error
		store, err = parseItemVariationStore(b[itemVariationStoreOffset:])
		if err != nil {
			return nil, err
		}
	}
	return &mvarTable{store, records}, nil
}

func (f *Font) mvar() (*mvarTable, error) {
	v, err := f.getTable("MVAR", parseMVAR)
	if err != nil {
		return nil, err
	}
	return v.(*mvarTable), nil
}

// MetricDelta returns the MVAR delta (already integer-rounded) for the
// given metric tag at coords, or 0 if the font carries no MVAR or no
// record for that tag.
func (f *Font) MetricDelta(tag mvarValueTag, coords map[string]float64) float64 {
	mvar, err := f.mvar()
	if err != nil {
		return 0
	}
	rec, ok := mvar.records[string(tag)]
	if !ok {
		return 0
	}
	norm, err := f.NormalizeCoords(coords)
	if err != nil {
		return 0
	}
	q := newVariationQuery(mvar.store, norm)
	return roundHalfAwayFromZero(q.Delta(int(rec[0]), int(rec[1])))
}

// sortAxesByTag is a small helper kept for diagnostic tooling that wants axes
// listed alphabetically rather than in fvar's declared order.
func sortAxesByTag(axes []Axis) []Axis {
	out := append([]Axis(nil), axes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}
