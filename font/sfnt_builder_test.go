package font

import "encoding/binary"

// sfntBuilder assembles a minimal, valid TrueType sfnt image in-process: no
// binary fixtures (.ttf/.otf/.woff/.woff2) are available in this
// environment, so tests synthesize the bytes they need the same way the
// teacher's table writers assemble a `head`/`maxp`/`hmtx` byte slice, just
// run in reverse (building instead of decoding).
type sfntBuilder struct {
	tables map[string][]byte
}

func newSFNTBuilder() *sfntBuilder {
	return &sfntBuilder{tables: map[string][]byte{}}
}

func (b *sfntBuilder) add(tag string, data []byte) {
	b.tables[tag] = data
}

func be16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func cat(bs ...[]byte) []byte {
	var out []byte
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}

// build emits the sfnt header, the table directory (sorted ascending by
// tag, per the ContainerLoader's "may warn, not fail" ordering check), and
// the concatenated, 4-byte-padded table bodies, with per-table checksums
// filled in (head.checksumAdjustment is left as whatever the caller put in
// its head bytes; tests that care about it build head separately).
func (b *sfntBuilder) build(flavor uint32) []byte {
	tags := make([]string, 0, len(b.tables))
	for tag := range b.tables {
		tags = append(tags, tag)
	}
	for i := 0; i < len(tags); i++ {
		for j := i + 1; j < len(tags); j++ {
			if tags[j] < tags[i] {
				tags[i], tags[j] = tags[j], tags[i]
			}
		}
	}

	numTables := len(tags)
	headerLen := 12 + 16*numTables
	body := make([]byte, 0, 1024)
	records := make([][]byte, numTables)
	offset := uint32(headerLen)
	for i, tag := range tags {
		data := b.tables[tag]
		padded := make([]byte, (len(data)+3)&^3)
		copy(padded, data)
		checksum := calcChecksum(padded)
		rec := cat([]byte(tag), be32(checksum), be32(offset), be32(uint32(len(data))))
		records[i] = rec
		body = append(body, padded...)
		offset += uint32(len(padded))
	}

	out := cat(
		be32(flavor),
		be16(uint16(numTables)),
		be16(0), be16(0), be16(0),
	)
	for _, rec := range records {
		out = append(out, rec...)
	}
	out = append(out, body...)
	return out
}

// buildHead returns a minimal valid `head` table (54 bytes), long or short
// loca format per longLoca.
func buildHead(unitsPerEm uint16, longLoca bool) []byte {
	indexToLoc := int16(0)
	if longLoca {
		indexToLoc = 1
	}
	b := make([]byte, 54)
	binary.BigEndian.PutUint32(b[0:], 0x00010000) // version
	binary.BigEndian.PutUint32(b[4:], 0x00010000) // fontRevision
	binary.BigEndian.PutUint32(b[8:], 0)          // checksumAdjustment
	binary.BigEndian.PutUint32(b[12:], 0x5F0F3CF5)
	binary.BigEndian.PutUint16(b[16:], 0) // flags
	binary.BigEndian.PutUint16(b[18:], unitsPerEm)
	// created/modified longDateTime at 20/28, left zero
	binary.BigEndian.PutUint16(b[36:], 0)      // xMin
	binary.BigEndian.PutUint16(b[38:], 0)      // yMin
	binary.BigEndian.PutUint16(b[40:], 1000)   // xMax
	binary.BigEndian.PutUint16(b[42:], 1000)   // yMax
	binary.BigEndian.PutUint16(b[44:], 0)      // macStyle
	binary.BigEndian.PutUint16(b[46:], 8)      // lowestRecPPEM
	binary.BigEndian.PutUint16(b[48:], 2)      // fontDirectionHint
	binary.BigEndian.PutUint16(b[50:], uint16(indexToLoc))
	binary.BigEndian.PutUint16(b[52:], 0) // glyphDataFormat
	return b
}

func buildMaxp10(numGlyphs uint16) []byte {
	b := make([]byte, 32)
	binary.BigEndian.PutUint32(b[0:], 0x00010000)
	binary.BigEndian.PutUint16(b[4:], numGlyphs)
	return b
}

func buildHhea(numberOfHMetrics uint16) []byte {
	b := make([]byte, 36)
	binary.BigEndian.PutUint32(b[0:], 0x00010000)
	binary.BigEndian.PutUint16(b[4:], 900)  // ascender
	binary.BigEndian.PutUint16(b[6:], 0xFF38) // descender -200
	binary.BigEndian.PutUint16(b[34:], numberOfHMetrics)
	return b
}

func buildHmtx(advances []uint16, lsbs []int16) []byte {
	var out []byte
	for i, a := range advances {
		out = append(out, be16(a)...)
		out = append(out, be16(uint16(lsbs[i]))...)
	}
	for i := len(advances); i < len(lsbs); i++ {
		out = append(out, be16(uint16(lsbs[i]))...)
	}
	return out
}

// buildCmapFormat4 builds a single-segment format-4 subtable mapping the
// contiguous range [start,end] to consecutive glyph ids beginning at
// startGlyph, plus the mandatory terminator segment.
func buildCmapFormat4(platformID, encodingID uint16, start, end rune, startGlyph uint16) []byte {
	segCount := 2 // one real segment + terminator
	endCodes := []uint16{uint16(end), 0xFFFF}
	startCodes := []uint16{uint16(start), 0xFFFF}
	idDeltas := []int16{int16(int32(startGlyph) - int32(start)), 1}
	idRangeOffsets := []uint16{0, 0}

	searchRange := uint16(2 * (1 << log2(segCount)))
	sub := cat(
		be16(4),
		be16(0), // length placeholder, fixed below
		be16(0), // language
		be16(uint16(segCount*2)),
		be16(searchRange),
		be16(uint16(log2(segCount))),
		be16(uint16(segCount*2)-searchRange),
	)
	for _, v := range endCodes {
		sub = append(sub, be16(v)...)
	}
	sub = append(sub, be16(0)...) // reservedPad
	for _, v := range startCodes {
		sub = append(sub, be16(v)...)
	}
	for _, v := range idDeltas {
		sub = append(sub, be16(uint16(v))...)
	}
	for _, v := range idRangeOffsets {
		sub = append(sub, be16(v)...)
	}
	binary.BigEndian.PutUint16(sub[2:], uint16(len(sub)))

	out := cat(
		be16(1), // version
		be16(1), // numTables
		be16(platformID), be16(encodingID), be32(12),
	)
	out = append(out, sub...)
	return out
}

func log2(n int) int {
	e := 0
	for (1 << uint(e+1)) <= n {
		e++
	}
	return e
}

// buildSimpleGlyph1Contour builds one simple `glyf` glyph record: a single
// triangle contour with all points on-curve, using only the 2-byte-delta
// coordinate encoding path so the test stays independent of the
// short-vector sign-bit branch.
func buildSimpleGlyph1Contour(xs, ys []int16, xMin, yMin, xMax, yMax int16) []byte {
	n := len(xs)
	out := cat(
		be16(1), // numberOfContours
		be16(uint16(xMin)), be16(uint16(yMin)), be16(uint16(xMax)), be16(uint16(yMax)),
		be16(uint16(n-1)), // endPoints[0]
		be16(0),           // instructionLength
	)
	flags := make([]byte, n)
	for i := range flags {
		flags[i] = 0x01 // on-curve, no repeat, full 16-bit deltas for x/y
	}
	out = append(out, flags...)
	var dx, dy int16
	for i := 0; i < n; i++ {
		d := xs[i] - dx
		out = append(out, be16(uint16(d))...)
		dx = xs[i]
	}
	for i := 0; i < n; i++ {
		d := ys[i] - dy
		out = append(out, be16(uint16(d))...)
		dy = ys[i]
	}
	return out
}

func buildLocaShort(glyfLengths []uint32) []byte {
	var out []byte
	offset := uint32(0)
	out = append(out, be16(uint16(offset/2))...)
	for _, l := range glyfLengths {
		offset += (l + 3) &^ 3
		out = append(out, be16(uint16(offset/2))...)
	}
	return out
}
