package font

import "encoding/binary"

// binaryReader decodes big-endian primitives from a byte slice with a
// bounds-checked cursor. Reads past the end of the buffer panic with a
// *BoundsExceededError; exported entry points recover from this at their
// top level and return it as a normal error.
type binaryReader struct {
	b []byte
	i uint32
}

func newBinaryReader(b []byte) *binaryReader {
	return &binaryReader{b, 0}
}

func (r *binaryReader) need(n uint32) {
	if uint32(len(r.b))-r.i < n {
		panic(&BoundsExceededError{Position: int(r.i), Need: int(n), Have: len(r.b) - int(r.i)})
	}
}

// Pos returns the current cursor offset.
func (r *binaryReader) Pos() uint32 { return r.i }

// Len returns the total length of the underlying buffer.
func (r *binaryReader) Len() uint32 { return uint32(len(r.b)) }

// EOF reports whether the cursor has reached the end of the buffer.
func (r *binaryReader) EOF() bool { return r.i >= uint32(len(r.b)) }

// Seek repositions the cursor absolutely within the current buffer.
func (r *binaryReader) Seek(offset uint32) {
	if offset > uint32(len(r.b)) {
		panic(&BoundsExceededError{Position: int(offset), Need: 0, Have: len(r.b)})
	}
	r.i = offset
}

// Subreader yields an independent cursor over a sub-slice of the buffer.
func (r *binaryReader) Subreader(offset, length uint32) *binaryReader {
	if offset > uint32(len(r.b)) || uint32(len(r.b))-offset < length {
		panic(&BoundsExceededError{Position: int(offset), Need: int(length), Have: len(r.b) - int(offset)})
	}
	return &binaryReader{r.b[offset : offset+length], 0}
}

func (r *binaryReader) ReadBytes(n uint32) []byte {
	r.need(n)
	b := r.b[r.i : r.i+n]
	r.i += n
	return b
}

func (r *binaryReader) ReadByte() byte {
	return r.ReadBytes(1)[0]
}

func (r *binaryReader) ReadString(n uint32) string {
	return string(r.ReadBytes(n))
}

func (r *binaryReader) ReadUint8() uint8 {
	return r.ReadByte()
}

func (r *binaryReader) ReadInt8() int8 {
	return int8(r.ReadByte())
}

func (r *binaryReader) ReadUint16() uint16 {
	return binary.BigEndian.Uint16(r.ReadBytes(2))
}

func (r *binaryReader) ReadInt16() int16 {
	return int16(r.ReadUint16())
}

func (r *binaryReader) ReadUint24() uint32 {
	b := r.ReadBytes(3)
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func (r *binaryReader) ReadUint32() uint32 {
	return binary.BigEndian.Uint32(r.ReadBytes(4))
}

func (r *binaryReader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

func (r *binaryReader) ReadInt64() int64 {
	return int64(r.ReadUint32())<<32 | int64(r.ReadUint32())
}

// ReadTag reads a 4-byte table/feature/script tag.
func (r *binaryReader) ReadTag() string {
	return r.ReadString(4)
}

func (r *binaryReader) ReadOffset16() uint16 {
	return r.ReadUint16()
}

func (r *binaryReader) ReadOffset32() uint32 {
	return r.ReadUint32()
}

// ReadFixed reads a 32-bit 16.16 fixed-point number.
func (r *binaryReader) ReadFixed() float64 {
	return float64(r.ReadInt32()) / 65536.0
}

// ReadF2Dot14 reads a 16-bit 2.14 fixed-point number, used for variation
// axis coordinates and transform scales.
func (r *binaryReader) ReadF2Dot14() float64 {
	return float64(r.ReadInt16()) / 16384.0
}

// ReadLongDateTime reads a 64-bit signed count of seconds since
// 1904-01-01T00:00:00Z.
func (r *binaryReader) ReadLongDateTime() int64 {
	return r.ReadInt64()
}

// ReadBase128 reads a UIntBase128 variable-length integer as used by the
// WOFF2 table directory (5 bytes max, no leading-zero encoding, MSB-first).
func (r *binaryReader) ReadBase128() uint32 {
	var accum uint32
	for i := 0; i < 5; i++ {
		b := r.ReadByte()
		if i == 0 && b == 0x80 {
			panic(&CorruptError{Tag: "woff2", Reason: "UIntBase128 leading zero"})
		}
		if accum&0xFE000000 != 0 {
			panic(&CorruptError{Tag: "woff2", Reason: "UIntBase128 overflow"})
		}
		accum = accum<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return accum
		}
	}
	panic(&CorruptError{Tag: "woff2", Reason: "UIntBase128 too long"})
}

// Read255Uint16 reads the 255UInt16 variable-length point-count codec used
// by the WOFF2 glyf transform's point-count streams.
func (r *binaryReader) Read255Uint16() uint16 {
	const (
		oneMoreByteCode1 = 255
		oneMoreByteCode2 = 254
		wordCode         = 253
		lowestUCode      = 253
	)
	code := r.ReadUint8()
	switch code {
	case wordCode:
		return r.ReadUint16()
	case oneMoreByteCode1:
		return uint16(r.ReadUint8()) + lowestUCode
	case oneMoreByteCode2:
		return uint16(r.ReadUint8()) + lowestUCode*2
	default:
		return uint16(code)
	}
}

// binaryWriter encodes big-endian primitives into a preallocated byte
// slice. Callers size the destination buffer up front. WriteUint16,
// WriteInt16 and WriteUint32 past the end panic the same way slice indexing
// would; WriteBytes, WriteByte and WriteString past the end copy only what
// fits and drop the rest without an error.
type binaryWriter struct {
	b []byte
	i uint32
}

func newBinaryWriter(b []byte) *binaryWriter {
	return &binaryWriter{b, 0}
}

func (w *binaryWriter) Bytes() []byte {
	return w.b
}

func (w *binaryWriter) Len() uint32 {
	return w.i
}

func (w *binaryWriter) WriteBytes(v []byte) {
	w.i += uint32(copy(w.b[w.i:], v))
}

func (w *binaryWriter) WriteByte(v byte) {
	w.WriteBytes([]byte{v})
}

func (w *binaryWriter) WriteString(v string) {
	w.WriteBytes([]byte(v))
}

func (w *binaryWriter) WriteUint16(v uint16) {
	binary.BigEndian.PutUint16(w.b[w.i:], v)
	w.i += 2
}

func (w *binaryWriter) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *binaryWriter) WriteUint32(v uint32) {
	binary.BigEndian.PutUint32(w.b[w.i:], v)
	w.i += 4
}

func uint32ToString(v uint32) string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return string(b)
}
