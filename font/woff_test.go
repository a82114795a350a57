package font

import (
	"encoding/binary"
	"testing"

	"github.com/tdewolff/test"
)

func TestParseWOFFUncompressedTable(t *testing.T) {
	head := buildHead(1000, false) // 54 bytes, checksumAdjustment already zero
	padded := make([]byte, (len(head)+3)&^3)
	copy(padded, head)
	origChecksum := calcChecksum(padded)

	const frontSize = 44 + 20*1
	const dataOffset = frontSize
	length := uint32(dataOffset + len(head))
	sfntOrigLength := (uint32(len(head)) + 3) &^ 3
	totalSfntSize := uint32(12+16*1) + sfntOrigLength

	woffHeader := cat(
		[]byte("wOFF"),
		be32(0x00010000), // flavor
		be32(length),
		be16(1), be16(0), // numTables, reserved
		be32(totalSfntSize),
		be16(0), be16(0), // majorVersion, minorVersion
		be32(0), be32(0), be32(0), // meta offset/length/origLength
		be32(0), be32(0), // priv offset/length
	)
	dir := cat(
		[]byte("head"),
		be32(uint32(dataOffset)),
		be32(uint32(len(head))), // compLength == origLength: uncompressed
		be32(uint32(len(head))),
		be32(origChecksum),
	)
	b := cat(woffHeader, dir, head)
	test.T(t, len(b), int(length))

	out, err := ParseWOFF(b)
	test.Error(t, err)
	test.T(t, binary.BigEndian.Uint32(out[:4]), uint32(0x00010000))
	test.T(t, len(out), int(totalSfntSize))
}

func TestParseWOFFBadSignature(t *testing.T) {
	b := make([]byte, 44)
	copy(b, "XXXX")
	_, err := ParseWOFF(b)
	test.That(t, err != nil)
}
