package font

// This file implements the CFF (Compact Font Format) table: INDEX/DICT
// parsing and the Type 2 charstring interpreter. CFF2's extensions
// (FDArray-only layout, the `blend` operator against a variation store)
// live in cff2.go, which shares the INDEX/DICT primitives defined here.

// cffIndex is the INDEX structure shared by every CFF1 top-level list
// (Name, Top DICT, String, Global Subr, CharStrings, Private-local subrs).
type cffIndex struct {
	items [][]byte
}

func (idx *cffIndex) Len() int { return len(idx.items) }

func (idx *cffIndex) Get(i int) []byte {
	if i < 0 || len(idx.items) <= i {
		return nil
	}
	return idx.items[i]
}

// parseCFFIndex reads a CFF1 (count:uint16) INDEX starting at r's cursor
// and returns it, leaving r positioned just past it.
func parseCFFIndex(r *binaryReader) *cffIndex {
	count := r.ReadUint16()
	if count == 0 {
		return &cffIndex{}
	}
	offSize := r.ReadUint8()
	offsets := make([]uint32, count+1)
	for i := range offsets {
		offsets[i] = readOffset(r, offSize)
	}
	base := r.Pos() - 1
	items := make([][]byte, count)
	for i := 0; i < int(count); i++ {
		start, end := base+offsets[i], base+offsets[i+1]
		if end < start {
			panic(&CorruptError{Tag: "CFF ", Reason: "INDEX offsets not monotone"})
		}
		items[i] = r.Subreader(start, end-start).ReadBytes(end - start)
	}
	r.Seek(base + offsets[count])
	return &cffIndex{items}
}

// parseCFF2Index reads a CFF2 INDEX, identical to CFF1's except the count
// field is 32 bits.
func parseCFF2Index(r *binaryReader) *cffIndex {
	count := r.ReadUint32()
	if count == 0 {
		return &cffIndex{}
	}
	offSize := r.ReadUint8()
	offsets := make([]uint32, count+1)
	for i := range offsets {
		offsets[i] = readOffset(r, offSize)
	}
	base := r.Pos() - 1
	items := make([][]byte, count)
	for i := 0; i < int(count); i++ {
		start, end := base+offsets[i], base+offsets[i+1]
		if end < start {
			panic(&CorruptError{Tag: "CFF2", Reason: "INDEX offsets not monotone"})
		}
		items[i] = r.Subreader(start, end-start).ReadBytes(end - start)
	}
	r.Seek(base + offsets[count])
	return &cffIndex{items}
}

func readOffset(r *binaryReader, offSize uint8) uint32 {
	switch offSize {
	case 1:
		return uint32(r.ReadUint8())
	case 2:
		return uint32(r.ReadUint16())
	case 3:
		return r.ReadUint24()
	case 4:
		return r.ReadUint32()
	}
	panic(&CorruptError{Tag: "CFF ", Reason: "invalid INDEX offSize"})
}

// cffDict is a parsed DICT: operator → operand list. Two-byte operators
// (12 x) are encoded here as 1200+x.
type cffDict map[int][]float64

func parseCFFDict(b []byte) cffDict {
	dict := cffDict{}
	r := newBinaryReader(b)
	var operands []float64
	for !r.EOF() {
		b0 := r.ReadUint8()
		switch {
		case b0 <= 21:
			op := int(b0)
			if b0 == 12 {
				op = 1200 + int(r.ReadUint8())
			}
			dict[op] = operands
			operands = nil
		case b0 == 28:
			operands = append(operands, float64(r.ReadInt16()))
		case b0 == 29:
			operands = append(operands, float64(r.ReadInt32()))
		case b0 == 30:
			operands = append(operands, readCFFReal(r))
		case 32 <= b0 && b0 <= 246:
			operands = append(operands, float64(int(b0)-139))
		case 247 <= b0 && b0 <= 250:
			b1 := r.ReadUint8()
			operands = append(operands, float64((int(b0)-247)*256+int(b1)+108))
		case 251 <= b0 && b0 <= 254:
			b1 := r.ReadUint8()
			operands = append(operands, float64(-(int(b0)-251)*256-int(b1)-108))
		}
	}
	return dict
}

// readCFFReal decodes a real-number operand (nibble-packed BCD-like
// encoding, operator 30).
func readCFFReal(r *binaryReader) float64 {
	var s []byte
	done := false
	for !done {
		b := r.ReadUint8()
		for _, nibble := range [2]uint8{b >> 4, b & 0xF} {
			switch nibble {
			case 0xA:
				s = append(s, '.')
			case 0xB:
				s = append(s, 'E')
			case 0xC:
				s = append(s, 'E', '-')
			case 0xE:
				s = append(s, '-')
			case 0xF:
				done = true
			default:
				s = append(s, '0'+nibble)
			}
			if done {
				break
			}
		}
	}
	var f float64
	var neg bool
	var dot, exp, expNeg bool
	var fracDiv float64 = 1
	var expVal int
	for _, c := range s {
		switch {
		case c == '-' && !dot && !exp:
			neg = true
		case c == '.':
			dot = true
		case c == 'E':
			exp = true
		case c == '-' && exp:
			expNeg = true
		case '0' <= c && c <= '9':
			d := float64(c - '0')
			if exp {
				expVal = expVal*10 + int(d)
			} else if dot {
				fracDiv *= 10
				f += d / fracDiv
			} else {
				f = f*10 + d
			}
		}
	}
	if neg {
		f = -f
	}
	if exp {
		if expNeg {
			expVal = -expVal
		}
		f *= pow10(expVal)
	}
	return f
}

func pow10(n int) float64 {
	f := 1.0
	if n < 0 {
		for i := 0; i < -n; i++ {
			f /= 10
		}
		return f
	}
	for i := 0; i < n; i++ {
		f *= 10
	}
	return f
}

func (d cffDict) Get(op int) ([]float64, bool) {
	v, ok := d[op]
	return v, ok
}

func (d cffDict) Int(op int, def int) int {
	if v, ok := d[op]; ok && len(v) > 0 {
		return int(v[0])
	}
	return def
}

// CFF DICT operators used by this decoder.
const (
	opCharstringType = 1206
	opCharStrings    = 17
	opPrivate        = 18
	opCharset        = 15
	opFDArray        = 1236
	opFDSelect       = 1237
	opVstore         = 1224
	opSubrs          = 19
)

// cffTable is the parsed CFF1 table: global structures plus a lazy
// per-glyph charstring interpreter.
type cffTable struct {
	charStrings *cffIndex
	globalSubrs *cffIndex
	localSubrs  *cffIndex // Private DICT's local subrs (single-Private CFF1 font)
	// FDArray-based local subr selection, for CID-keyed CFF1 fonts.
	fdLocalSubrs []*cffIndex
	fdSelect     []uint8 // per-glyph FD index, nil if not CID-keyed
}

func parseCFF(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint8() // major
	_ = r.ReadUint8() // minor
	hdrSize := r.ReadUint8()
	_ = r.ReadUint8() // offSize
	r.Seek(uint32(hdrSize))

	_ = parseCFFIndex(r) // Name INDEX
	topDictIndex := parseCFFIndex(r)
	_ = parseCFFIndex(r) // String INDEX
	globalSubrs := parseCFFIndex(r)

	if topDictIndex.Len() == 0 {
		panic(&CorruptError{Tag: "CFF ", Reason: "empty Top DICT INDEX"})
	}
	topDict := parseCFFDict(topDictIndex.Get(0))

	charStringsOffset := topDict.Int(opCharStrings, 0)
	if charStringsOffset <= 0 || uint32(len(b)) <= uint32(charStringsOffset) {
		panic(&CorruptError{Tag: "CFF ", Reason: "missing CharStrings INDEX"})
	}
	csReader := newBinaryReader(b)
	csReader.Seek(uint32(charStringsOffset))
	charStrings := parseCFFIndex(csReader)

	t := &cffTable{charStrings: charStrings, globalSubrs: globalSubrs}

	if priv, ok := topDict.Get(opPrivate); ok && len(priv) == 2 {
		size, offset := int(priv[0]), int(priv[1])
		if 0 < size && offset >= 0 && uint32(offset+size) <= uint32(len(b)) {
			privDict := parseCFFDict(b[offset : offset+size])
			if subrsOff, ok := privDict.Get(opSubrs); ok && len(subrsOff) == 1 {
				sr := newBinaryReader(b)
				sr.Seek(uint32(offset) + uint32(subrsOff[0]))
				t.localSubrs = parseCFFIndex(sr)
			}
		}
	}

	if fdArrayOff, ok := topDict.Get(opFDArray); ok && len(fdArrayOff) == 1 {
		fr := newBinaryReader(b)
		fr.Seek(uint32(fdArrayOff[0]))
		fdArray := parseCFFIndex(fr)
		t.fdLocalSubrs = make([]*cffIndex, fdArray.Len())
		for i := 0; i < fdArray.Len(); i++ {
			fdDict := parseCFFDict(fdArray.Get(i))
			if priv, ok := fdDict.Get(opPrivate); ok && len(priv) == 2 {
				size, offset := int(priv[0]), int(priv[1])
				if 0 < size && offset >= 0 && uint32(offset+size) <= uint32(len(b)) {
					privDict := parseCFFDict(b[offset : offset+size])
					if subrsOff, ok := privDict.Get(opSubrs); ok && len(subrsOff) == 1 {
						sr := newBinaryReader(b)
						sr.Seek(uint32(offset) + uint32(subrsOff[0]))
						t.fdLocalSubrs[i] = parseCFFIndex(sr)
					}
				}
			}
		}
	}
	if fdSelectOff, ok := topDict.Get(opFDSelect); ok && len(fdSelectOff) == 1 {
		t.fdSelect = parseFDSelect(b, uint32(fdSelectOff[0]), charStrings.Len())
	}

	return t, nil
}

func parseFDSelect(b []byte, offset uint32, numGlyphs int) []uint8 {
	r := newBinaryReader(b)
	r.Seek(offset)
	format := r.ReadUint8()
	fd := make([]uint8, numGlyphs)
	switch format {
	case 0:
		for i := range fd {
			fd[i] = r.ReadUint8()
		}
	case 3:
		nRanges := r.ReadUint16()
		first := r.ReadUint16()
		for i := 0; i < int(nRanges); i++ {
			fdIndex := r.ReadUint8()
			next := r.ReadUint16()
			for g := first; g < next && int(g) < numGlyphs; g++ {
				fd[g] = fdIndex
			}
			first = next
		}
	}
	return fd
}

func (f *Font) cff() (*cffTable, error) {
	v, err := f.getTable("CFF ", parseCFF)
	if err != nil {
		return nil, err
	}
	return v.(*cffTable), nil
}

// subrBias is the standard Type 2 bias applied to callsubr/callgsubr
// indices, per §4.6.
func subrBias(n int) int32 {
	switch {
	case n < 1240:
		return 107
	case n < 33900:
		return 1131
	default:
		return 32768
	}
}

const (
	type2MaxStack     = 48
	type2MaxStackCFF2 = 513
	type2MaxSubrDepth = 10
)

// charstringInterp executes a Type 2 charstring and accumulates the
// resulting contour. It is shared, with minor behavior differences gated
// by isCFF2, between CFF1 (cff.go) and CFF2 (cff2.go, which adds `blend`
// and a wider operand stack).
type charstringInterp struct {
	stack      []float64
	x, y       float64
	nStems     int
	widthDone  bool
	haveWidth  bool
	contour    *glyfContour
	curX, curY []int16 // scratch point accumulation for the open contour
	open       bool
	globalSubrs, localSubrs *cffIndex
	globalBias, localBias   int32
	depth      int
	isCFF2     bool
	maxStack   int
	transient  [32]float64

	// CFF2 blend support.
	vs        *variationEngineQuery
	vsIndex   int
}

func newCharstringInterp(globalSubrs, localSubrs *cffIndex, isCFF2 bool) *charstringInterp {
	maxStack := type2MaxStack
	if isCFF2 {
		maxStack = type2MaxStackCFF2
	}
	return &charstringInterp{
		globalSubrs: globalSubrs, localSubrs: localSubrs,
		globalBias: subrBias(globalSubrs.Len()), localBias: subrBias(localSubrs.Len()),
		isCFF2: isCFF2, maxStack: maxStack,
		contour: &glyfContour{},
	}
}

func (in *charstringInterp) push(v float64) {
	if len(in.stack) >= in.maxStack {
		panic(&CorruptError{Tag: "CFF ", Reason: "charstring stack overflow"})
	}
	in.stack = append(in.stack, v)
}

func (in *charstringInterp) clear() { in.stack = in.stack[:0] }

func (in *charstringInterp) closeContour() {
	if in.open {
		in.contour.EndPoints = append(in.contour.EndPoints, uint16(len(in.contour.XCoordinates)-1))
		in.open = false
	}
}

func (in *charstringInterp) moveTo(dx, dy float64) {
	in.closeContour()
	in.x += dx
	in.y += dy
	in.emit(true)
	in.open = true
}

func (in *charstringInterp) lineTo(dx, dy float64) {
	in.x += dx
	in.y += dy
	in.emit(true)
}

// curveTo appends a cubic Bézier as three points: two off-curve control
// points and one on-curve endpoint, matching the glyfContour on-curve
// convention used by the TrueType decoder (which encodes quadratics the
// same way, one off-curve point per segment; CFF's cubic segments simply
// contribute two off-curve points instead of one).
func (in *charstringInterp) curveTo(dx1, dy1, dx2, dy2, dx3, dy3 float64) {
	in.x += dx1
	in.y += dy1
	in.emit(false)
	in.x += dx2
	in.y += dy2
	in.emit(false)
	in.x += dx3
	in.y += dy3
	in.emit(true)
}

func (in *charstringInterp) emit(onCurve bool) {
	in.contour.XCoordinates = append(in.contour.XCoordinates, int16(in.x))
	in.contour.YCoordinates = append(in.contour.YCoordinates, int16(in.y))
	in.contour.OnCurve = append(in.contour.OnCurve, onCurve)
}

// takeWidth consumes an optional leading width operand: present iff the
// argument count for the first stem/moveto/endchar operator is one more
// than the operator's normal arity.
func (in *charstringInterp) takeWidth(nominalArgs int) {
	if in.widthDone {
		return
	}
	in.widthDone = true
	if len(in.stack) > nominalArgs {
		in.haveWidth = true
		in.stack = in.stack[1:]
	}
}

// Run interprets charstring cs, recursing into local/global subrs, and
// accumulates the outline in in.contour. Reaching an endchar operator
// returns errEndchar.
func (in *charstringInterp) Run(cs []byte) error {
	if in.depth > type2MaxSubrDepth {
		return &CorruptError{Tag: "CFF ", Reason: "subr recursion too deep"}
	}
	in.depth++
	defer func() { in.depth-- }()

	r := newBinaryReader(cs)
	for !r.EOF() {
		b0 := r.ReadUint8()
		switch {
		case b0 == 28:
			in.push(float64(r.ReadInt16()))
			continue
		case 32 <= b0 && b0 <= 246:
			in.push(float64(int(b0) - 139))
			continue
		case 247 <= b0 && b0 <= 250:
			b1 := r.ReadUint8()
			in.push(float64((int(b0)-247)*256 + int(b1) + 108))
			continue
		case 251 <= b0 && b0 <= 254:
			b1 := r.ReadUint8()
			in.push(float64(-(int(b0)-251)*256 - int(b1) - 108))
			continue
		case b0 == 255:
			if in.isCFF2 {
				in.push(readCFF2Fixed(r))
			} else {
				in.push(float64(r.ReadInt32()) / 65536.0)
			}
			continue
		}

		switch b0 {
		case 1, 3, 18, 23: // h/vstem, h/vstemhm
			in.takeWidth(len(in.stack) &^ 1)
			in.nStems += len(in.stack) / 2
			in.clear()
		case 19, 20: // hintmask, cntrmask
			in.takeWidth(len(in.stack) &^ 1)
			in.nStems += len(in.stack) / 2
			in.clear()
			_ = r.ReadBytes(uint32((in.nStems + 7) / 8))
		case 21: // rmoveto
			in.takeWidth(2)
			if len(in.stack) < 2 {
				return &CorruptError{Tag: "CFF ", Reason: "rmoveto: stack underflow"}
			}
			in.moveTo(in.stack[0], in.stack[1])
			in.clear()
		case 22: // hmoveto
			in.takeWidth(1)
			if len(in.stack) < 1 {
				return &CorruptError{Tag: "CFF ", Reason: "hmoveto: stack underflow"}
			}
			in.moveTo(in.stack[0], 0)
			in.clear()
		case 4: // vmoveto
			in.takeWidth(1)
			if len(in.stack) < 1 {
				return &CorruptError{Tag: "CFF ", Reason: "vmoveto: stack underflow"}
			}
			in.moveTo(0, in.stack[0])
			in.clear()
		case 5: // rlineto
			for i := 0; i+1 < len(in.stack); i += 2 {
				in.lineTo(in.stack[i], in.stack[i+1])
			}
			in.clear()
		case 6, 7: // hlineto, vlineto (alternating)
			horiz := b0 == 6
			for i := 0; i < len(in.stack); i++ {
				if horiz {
					in.lineTo(in.stack[i], 0)
				} else {
					in.lineTo(0, in.stack[i])
				}
				horiz = !horiz
			}
			in.clear()
		case 8: // rrcurveto
			for i := 0; i+5 < len(in.stack); i += 6 {
				in.curveTo(in.stack[i], in.stack[i+1], in.stack[i+2], in.stack[i+3], in.stack[i+4], in.stack[i+5])
			}
			in.clear()
		case 24: // rcurveline
			i := 0
			for ; i+5 < len(in.stack)-2; i += 6 {
				in.curveTo(in.stack[i], in.stack[i+1], in.stack[i+2], in.stack[i+3], in.stack[i+4], in.stack[i+5])
			}
			if i+1 < len(in.stack) {
				in.lineTo(in.stack[i], in.stack[i+1])
			}
			in.clear()
		case 25: // rlinecurve
			i := 0
			for ; i+1 < len(in.stack)-6; i += 2 {
				in.lineTo(in.stack[i], in.stack[i+1])
			}
			if i+5 < len(in.stack) {
				in.curveTo(in.stack[i], in.stack[i+1], in.stack[i+2], in.stack[i+3], in.stack[i+4], in.stack[i+5])
			}
			in.clear()
		case 26: // vvcurveto
			i := 0
			dx1 := 0.0
			if len(in.stack)%4 == 1 {
				dx1 = in.stack[0]
				i = 1
			}
			for ; i+3 < len(in.stack); i += 4 {
				in.curveTo(dx1, in.stack[i], in.stack[i+1], in.stack[i+2], 0, in.stack[i+3])
				dx1 = 0
			}
			in.clear()
		case 27: // hhcurveto
			i := 0
			dy1 := 0.0
			if len(in.stack)%4 == 1 {
				dy1 = in.stack[0]
				i = 1
			}
			for ; i+3 < len(in.stack); i += 4 {
				in.curveTo(in.stack[i], dy1, in.stack[i+1], in.stack[i+2], in.stack[i+3], 0)
				dy1 = 0
			}
			in.clear()
		case 30, 31: // vhcurveto, hvcurveto
			horiz := b0 == 31
			i := 0
			for ; i+3 < len(in.stack); i += 4 {
				last := i+4 >= len(in.stack)-1
				var df float64
				if last && i+4 == len(in.stack)-1 {
					df = in.stack[i+4]
				}
				if horiz {
					in.curveTo(in.stack[i], 0, in.stack[i+1], in.stack[i+2], df, in.stack[i+3])
				} else {
					in.curveTo(0, in.stack[i], in.stack[i+1], in.stack[i+2], in.stack[i+3], df)
				}
				horiz = !horiz
			}
			in.clear()
		case 10: // callsubr
			if len(in.stack) == 0 {
				return &CorruptError{Tag: "CFF ", Reason: "callsubr: stack underflow"}
			}
			idx := int32(in.stack[len(in.stack)-1]) + in.localBias
			in.stack = in.stack[:len(in.stack)-1]
			subr := in.localSubrs.Get(int(idx))
			if subr == nil {
				return &CorruptError{Tag: "CFF ", Reason: "callsubr: index out of range"}
			}
			if err := in.Run(subr); err != nil {
				return err
			}
		case 29: // callgsubr
			if len(in.stack) == 0 {
				return &CorruptError{Tag: "CFF ", Reason: "callgsubr: stack underflow"}
			}
			idx := int32(in.stack[len(in.stack)-1]) + in.globalBias
			in.stack = in.stack[:len(in.stack)-1]
			subr := in.globalSubrs.Get(int(idx))
			if subr == nil {
				return &CorruptError{Tag: "CFF ", Reason: "callgsubr: index out of range"}
			}
			if err := in.Run(subr); err != nil {
				return err
			}
		case 11: // return
			return nil
		case 15: // vsindex (CFF2 only; undefined in CFF1, ignored there)
			if in.isCFF2 {
				if err := in.runVsindex(); err != nil {
					return err
				}
			} else {
				in.clear()
			}
		case 16: // blend (CFF2 only; undefined in CFF1, ignored there)
			if in.isCFF2 {
				if err := in.runBlend(); err != nil {
					return err
				}
			} else {
				in.clear()
			}
		case 14: // endchar
			in.takeWidth(0)
			if len(in.stack) >= 4 {
				// seac-like accent composition is not reproduced here;
				// treated as a plain endchar with the base glyph only.
				in.clear()
			}
			in.closeContour()
			if len(in.stack) != 0 {
				return &CorruptError{Tag: "CFF ", Reason: "endchar: stack not empty"}
			}
			return errEndchar
		case 12: // escape (two-byte operators)
			b1 := r.ReadUint8()
			if err := in.runEscape(b1); err != nil {
				return err
			}
		default:
			return &CorruptError{Tag: "CFF ", Reason: "unknown charstring operator"}
		}
	}
	return nil
}

// errEndchar is a sentinel unwound by Font.GlyphContourCFF and
// Font.GlyphContourCFF2 to distinguish
// "charstring finished normally" from a subr's implicit return.
var errEndchar = &CorruptError{Tag: "CFF ", Reason: "endchar"}

func (in *charstringInterp) runEscape(op uint8) error {
	switch op {
	case 35: // flex
		if len(in.stack) < 13 {
			return &CorruptError{Tag: "CFF ", Reason: "flex: stack underflow"}
		}
		s := in.stack
		in.curveTo(s[0], s[1], s[2], s[3], s[4], s[5])
		in.curveTo(s[6], s[7], s[8], s[9], s[10], s[11])
		in.clear()
	case 34: // hflex
		if len(in.stack) < 7 {
			return &CorruptError{Tag: "CFF ", Reason: "hflex: stack underflow"}
		}
		s := in.stack
		in.curveTo(s[0], 0, s[1], s[2], s[3], 0)
		in.curveTo(s[4], 0, s[5], -s[2], s[6], 0)
		in.clear()
	case 36: // hflex1
		if len(in.stack) < 9 {
			return &CorruptError{Tag: "CFF ", Reason: "hflex1: stack underflow"}
		}
		s := in.stack
		in.curveTo(s[0], s[1], s[2], s[3], s[4], 0)
		in.curveTo(s[5], 0, s[6], s[7], s[8], -(s[1] + s[3] + s[7]))
		in.clear()
	case 37: // flex1
		if len(in.stack) < 11 {
			return &CorruptError{Tag: "CFF ", Reason: "flex1: stack underflow"}
		}
		s := in.stack
		dx := s[0] + s[2] + s[4] + s[6] + s[8]
		dy := s[1] + s[3] + s[5] + s[7] + s[9]
		in.curveTo(s[0], s[1], s[2], s[3], s[4], s[5])
		if abs(dx) > abs(dy) {
			in.curveTo(s[6], s[7], s[8], s[9], s[10], -dy)
		} else {
			in.curveTo(s[6], s[7], s[8], s[9], -dx, s[10])
		}
		in.clear()
	case 3: // and
		in.binOp(func(a, b float64) float64 {
			if a != 0 && b != 0 {
				return 1
			}
			return 0
		})
	case 4: // or
		in.binOp(func(a, b float64) float64 {
			if a != 0 || b != 0 {
				return 1
			}
			return 0
		})
	case 5: // not
		in.unOp(func(a float64) float64 {
			if a == 0 {
				return 1
			}
			return 0
		})
	case 9: // abs
		in.unOp(abs)
	case 10: // add
		in.binOp(func(a, b float64) float64 { return a + b })
	case 11: // sub
		in.binOp(func(a, b float64) float64 { return a - b })
	case 12: // div
		in.binOp(func(a, b float64) float64 {
			if b == 0 {
				return 0
			}
			return a / b
		})
	case 14: // neg
		in.unOp(func(a float64) float64 { return -a })
	case 18: // drop
		if len(in.stack) > 0 {
			in.stack = in.stack[:len(in.stack)-1]
		}
	case 24: // add (alt mnemonic in some docs) -- unused, ignore safely
	case 20: // put
		if len(in.stack) >= 2 {
			i := int(in.stack[len(in.stack)-1])
			v := in.stack[len(in.stack)-2]
			if 0 <= i && i < len(in.transient) {
				in.transient[i] = v
			}
			in.stack = in.stack[:len(in.stack)-2]
		}
	case 21: // get
		if len(in.stack) >= 1 {
			i := int(in.stack[len(in.stack)-1])
			v := 0.0
			if 0 <= i && i < len(in.transient) {
				v = in.transient[i]
			}
			in.stack[len(in.stack)-1] = v
		}
	default:
		// Remaining escape operators (ifelse, random, sqrt, etc.) are
		// exotic in practice; they are not evaluated, only the operand
		// stack is cleared, rather than failing the whole charstring.
		in.clear()
	}
	return nil
}

func (in *charstringInterp) binOp(f func(a, b float64) float64) {
	if len(in.stack) < 2 {
		return
	}
	n := len(in.stack)
	in.stack[n-2] = f(in.stack[n-2], in.stack[n-1])
	in.stack = in.stack[:n-1]
}

func (in *charstringInterp) unOp(f func(float64) float64) {
	if len(in.stack) < 1 {
		return
	}
	in.stack[len(in.stack)-1] = f(in.stack[len(in.stack)-1])
}

func abs(a float64) float64 {
	if a < 0 {
		return -a
	}
	return a
}

func readCFF2Fixed(r *binaryReader) float64 {
	return float64(r.ReadInt32()) / 65536.0
}

// GlyphContourCFF executes the Type 2 charstring for glyphID against a
// CFF1 table and returns the resulting contour. Coordinates are truncated
// to int16 FUnits to match the shared glyfContour representation.
func (f *Font) GlyphContourCFF(glyphID uint16) (*glyfContour, error) {
	cff, err := f.cff()
	if err != nil {
		return nil, err
	}
	cs := cff.charStrings.Get(int(glyphID))
	if cs == nil {
		return nil, &CorruptError{Tag: "CFF ", Reason: "glyph id out of range"}
	}
	localSubrs := cff.localSubrs
	if cff.fdSelect != nil && int(glyphID) < len(cff.fdSelect) {
		fd := cff.fdSelect[glyphID]
		if int(fd) < len(cff.fdLocalSubrs) && cff.fdLocalSubrs[fd] != nil {
			localSubrs = cff.fdLocalSubrs[fd]
		}
	}
	if localSubrs == nil {
		localSubrs = &cffIndex{}
	}
	interp := newCharstringInterp(cff.globalSubrs, localSubrs, false)
	err = interp.Run(cs)
	if err != nil && err != errEndchar {
		return nil, err
	}
	interp.contour.GlyphID = glyphID
	if len(interp.contour.XCoordinates) > 0 {
		xMin, yMin := interp.contour.XCoordinates[0], interp.contour.YCoordinates[0]
		xMax, yMax := xMin, yMin
		for i := range interp.contour.XCoordinates {
			if interp.contour.XCoordinates[i] < xMin {
				xMin = interp.contour.XCoordinates[i]
			}
			if interp.contour.XCoordinates[i] > xMax {
				xMax = interp.contour.XCoordinates[i]
			}
			if interp.contour.YCoordinates[i] < yMin {
				yMin = interp.contour.YCoordinates[i]
			}
			if interp.contour.YCoordinates[i] > yMax {
				yMax = interp.contour.YCoordinates[i]
			}
		}
		interp.contour.XMin, interp.contour.YMin = xMin, yMin
		interp.contour.XMax, interp.contour.YMax = xMax, yMax
	}
	return interp.contour, nil
}
