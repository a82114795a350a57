package font

import (
	"encoding/binary"
	"fmt"
)

// MaxMemory bounds the uncompressed size this package is willing to
// allocate while reconstructing a WOFF2 payload, guarding against a hostile
// header claiming an enormous decompressed size.
const MaxMemory = 1 << 30 // 1 GiB

// ErrExceedsMemory is returned when a WOFF2 header's declared sizes exceed
// MaxMemory.
var ErrExceedsMemory = &InvariantViolationError{What: "declared size exceeds maximum memory"}

// Tables is the raw tag → bytes directory produced by the ContainerLoader,
// before any table has been parsed by the TableRegistry.
type Tables map[string][]byte

// sfntHeader is the 12-byte offset table shared by sfnt TrueType/OpenType
// images and each member of a TrueType Collection.
type sfntHeader struct {
	flavor        uint32
	numTables     uint16
	searchRange   uint16
	entrySelector uint16
	rangeShift    uint16
}

type tableRecord struct {
	tag      string
	checksum uint32
	offset   uint32
	length   uint32
}

// detectFormat inspects the first few bytes of b and reports which
// container format it holds.
func detectFormat(b []byte) (string, error) {
	if len(b) < 4 {
		return "", &BoundsExceededError{Position: 0, Need: 4, Have: len(b)}
	}
	switch uint32ToString(binary.BigEndian.Uint32(b[:4])) {
	case "wOFF":
		return "woff", nil
	case "wOF2":
		return "woff2", nil
	case "ttcf":
		return "collection", nil
	case "true", "OTTO":
		return "sfnt", nil
	}
	if binary.BigEndian.Uint32(b[:4]) == 0x00010000 {
		return "sfnt", nil
	}
	return "", &BadMagicError{Found: binary.BigEndian.Uint32(b[:4]), Expected: "sfnt/OTTO/true/wOFF/wOF2/ttcf"}
}

// ToSFNT takes a byte slice in any supported container format and returns
// the equivalent sfnt (TTF/OTF) byte slice, decompressing/reconstructing as
// needed. sfnt input and TrueType collections are returned unchanged.
func ToSFNT(b []byte) (out []byte, err error) {
	format, err := detectFormat(b)
	if err != nil {
		return nil, err
	}
	switch format {
	case "sfnt", "collection":
		return b, nil
	case "woff":
		b, err = ParseWOFF(b)
		if err != nil {
			return nil, fmt.Errorf("WOFF: %w", err)
		}
		return b, nil
	case "woff2":
		b, err = ParseWOFF2(b)
		if err != nil {
			return nil, fmt.Errorf("WOFF2: %w", err)
		}
		return b, nil
	}
	return nil, &BadMagicError{Expected: "sfnt/woff/woff2/collection"}
}

// parseSFNTDirectory parses the 12-byte offset table at offset base in b and
// its numTables table records, returning a tag→bytes directory. ascending
// reports whether the directory was sorted ascending by tag (a violation is
// a warning, not a failure, per the container loader's policy).
func parseSFNTDirectory(b []byte, base uint32) (hdr sfntHeader, tables Tables, ascending bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e, ok := rec.(error)
			if !ok {
				panic(rec)
			}
			err = e
		}
	}()

	r := newBinaryReader(b)
	r.Seek(base)
	hdr.flavor = r.ReadUint32()
	hdr.numTables = r.ReadUint16()
	hdr.searchRange = r.ReadUint16()
	hdr.entrySelector = r.ReadUint16()
	hdr.rangeShift = r.ReadUint16()

	tables = Tables{}
	ascending = true
	var prevTag string
	for i := 0; i < int(hdr.numTables); i++ {
		tag := r.ReadTag()
		_ = r.ReadUint32() // checksum, not verified
		offset := r.ReadUint32()
		length := r.ReadUint32()
		if uint32(len(b)) < offset || uint32(len(b))-offset < length {
			return hdr, nil, false, &BoundsExceededError{Position: int(offset), Need: int(length), Have: len(b) - int(offset)}
		}
		if i > 0 && tag < prevTag {
			ascending = false
		}
		prevTag = tag
		tables[tag] = b[offset : offset+length : offset+length]
	}
	return hdr, tables, ascending, nil
}

// parseCollectionDirectory parses a ttcf header and returns the byte offset
// of the requested font index's sfnt offset table.
func parseCollectionDirectory(b []byte, index int) (offset uint32, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e, ok := rec.(error)
			if !ok {
				panic(rec)
			}
			err = e
		}
	}()

	r := newBinaryReader(b)
	tag := r.ReadTag()
	if tag != "ttcf" {
		return 0, &BadMagicError{Expected: "ttcf"}
	}
	_ = r.ReadUint32() // majorVersion/minorVersion
	numFonts := r.ReadUint32()
	if index < 0 || uint32(index) >= numFonts {
		return 0, &InvariantViolationError{What: "font index out of range"}
	}
	r.Seek(uint32(12 + 4*index))
	return r.ReadUint32(), nil
}

// calcChecksum computes the sfnt additive-uint32 checksum of a 4-byte
// padded byte slice.
func calcChecksum(b []byte) uint32 {
	var sum uint32
	for i := 0; i+4 <= len(b); i += 4 {
		sum += binary.BigEndian.Uint32(b[i:])
	}
	if r := len(b) % 4; r != 0 {
		var last [4]byte
		copy(last[:], b[len(b)-r:])
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}

// bitmapReader reads single bits MSB-first from a byte slice, used to
// decode the WOFF2 glyf transform's bboxBitmap.
type bitmapReader struct {
	b   []byte
	pos int
}

func newBitmapReader(b []byte) *bitmapReader {
	return &bitmapReader{b, 0}
}

func (r *bitmapReader) Read() bool {
	byteIndex := r.pos >> 3
	bitIndex := 7 - uint(r.pos&7)
	r.pos++
	if byteIndex >= len(r.b) {
		return false
	}
	return r.b[byteIndex]&(1<<bitIndex) != 0
}
