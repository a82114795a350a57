package font

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestBinaryReaderPrimitives(t *testing.T) {
	b := cat(
		be16(0x1234),
		[]byte{0xFE},         // int8 -2
		be32(0x00010000),     // Fixed 1.0
		be16(0x4000),         // F2Dot14 1.0
		[]byte("true"),
	)
	r := newBinaryReader(b)
	test.T(t, r.ReadUint16(), uint16(0x1234))
	test.T(t, r.ReadInt8(), int8(-2))
	test.Float(t, r.ReadFixed(), 1.0)
	test.Float(t, r.ReadF2Dot14(), 1.0)
	test.T(t, r.ReadTag(), "true")
	test.That(t, r.EOF())
}

func TestBinaryReaderBoundsExceeded(t *testing.T) {
	r := newBinaryReader([]byte{0x00, 0x01})
	defer func() {
		rec := recover()
		test.That(t, rec != nil)
		_, ok := rec.(*BoundsExceededError)
		test.That(t, ok)
	}()
	r.ReadUint32()
}

func TestBinaryReaderSeekAndSubreader(t *testing.T) {
	b := cat(be16(1), be16(2), be16(3))
	r := newBinaryReader(b)
	r.Seek(2)
	test.T(t, r.ReadUint16(), uint16(2))

	sub := r.Subreader(0, 2)
	test.T(t, sub.ReadUint16(), uint16(1))
}

func TestBinaryReaderBase128(t *testing.T) {
	// 300 encodes as two base-128 bytes: 0x82 0x2C (continuation bit set
	// on all but the last byte), per the WOFF2 variable-length codec.
	r := newBinaryReader([]byte{0x82, 0x2C})
	test.T(t, r.ReadBase128(), uint32(300))
}

func TestBinaryReader255Uint16(t *testing.T) {
	// Values < 253 are stored as a single byte.
	r := newBinaryReader([]byte{100})
	test.T(t, r.Read255Uint16(), uint16(100))

	// 253 (WORD_CODE) precedes a big-endian uint16.
	r = newBinaryReader([]byte{253, 0x01, 0x00})
	test.T(t, r.Read255Uint16(), uint16(256))

	// 254 (LOWBYTE_CODE) maps to 253*2 + nextByte.
	r = newBinaryReader([]byte{254, 10})
	test.T(t, r.Read255Uint16(), uint16(253*2+10))

	// 255 (HIGHBYTE_CODE) maps to 253 + nextByte.
	r = newBinaryReader([]byte{255, 10})
	test.T(t, r.Read255Uint16(), uint16(253+10))
}
