package font

// glyfContour is the shared outline abstraction produced by both the
// TrueType glyf decoder and the CFF/CFF2 charstring interpreter: an ordered
// set of points with an on-curve flag, grouped into closed contours by
// EndPoints.
type glyfContour struct {
	GlyphID                uint16
	XMin, YMin, XMax, YMax int16
	EndPoints              []uint16
	Instructions           []byte
	OnCurve                []bool
	XCoordinates           []int16
	YCoordinates           []int16
}

// maxCompositeDepth bounds recursive composite-glyph resolution; beyond it
// decoding fails with "composite nesting too deep". A component that refers
// back to one of its ancestors is reported separately as "composite cycle"
// (§8 scenario 6).
const maxCompositeDepth = 10

// locaTable holds the numGlyphs+1 monotone byte offsets into `glyf`.
type locaTable struct {
	offsets []uint32
}

func parseLocaWith(numGlyphs uint16, long bool) func([]byte) (interface{}, error) {
	return func(b []byte) (interface{}, error) {
		n := int(numGlyphs) + 1
		r := newBinaryReader(b)
		offsets := make([]uint32, n)
		for i := 0; i < n; i++ {
			if long {
				offsets[i] = r.ReadUint32()
			} else {
				offsets[i] = uint32(r.ReadUint16()) * 2
			}
		}
		for i := 1; i < n; i++ {
			if offsets[i] < offsets[i-1] {
				panic(&CorruptError{Tag: "loca", Reason: "offsets not monotonically increasing"})
			}
		}
		return &locaTable{offsets}, nil
	}
}

func (t *locaTable) Range(glyphID uint16) (start, end uint32, ok bool) {
	if int(glyphID)+1 >= len(t.offsets) {
		return 0, 0, false
	}
	return t.offsets[glyphID], t.offsets[glyphID+1], true
}

func (f *Font) loca() (*locaTable, error) {
	head, err := f.head()
	if err != nil {
		return nil, err
	}
	maxp, err := f.maxp()
	if err != nil {
		return nil, err
	}
	v, err := f.getTable("loca", parseLocaWith(maxp.NumGlyphs, head.IndexToLocFormat != 0))
	if err != nil {
		return nil, err
	}
	return v.(*locaTable), nil
}

// glyfTable is the raw `glyf` bytes plus enough context (via the Font) to
// decode one glyph record on demand; contours are not memoized globally
// since §3's lifecycle only requires eager resolution of a composite's
// component list, not the components themselves.
type glyfTable struct {
	b []byte
}

func parseGlyf(b []byte) (interface{}, error) {
	return &glyfTable{b}, nil
}

func (f *Font) glyf() (*glyfTable, error) {
	v, err := f.getTable("glyf", parseGlyf)
	if err != nil {
		return nil, err
	}
	return v.(*glyfTable), nil
}

// GlyphContour decodes glyph id's TrueType outline, recursively resolving
// composite components. It fails on a font whose outlines are CFF/CFF2;
// callers should check Font.IsCFF first.
func (f *Font) GlyphContour(glyphID uint16) (*glyfContour, error) {
	if f.IsCFF() {
		return nil, &InvariantViolationError{What: "font uses CFF outlines, not glyf"}
	}
	glyf, err := f.glyf()
	if err != nil {
		return nil, err
	}
	loca, err := f.loca()
	if err != nil {
		return nil, err
	}
	return f.glyphContour(glyf, loca, glyphID, 0, nil)
}

func (f *Font) glyphContour(glyf *glyfTable, loca *locaTable, glyphID uint16, depth int, ancestors []uint16) (contour *glyfContour, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			panic(rec)
		}
	}()

	if depth > maxCompositeDepth {
		return nil, &CorruptError{Tag: "glyf", Reason: "composite nesting too deep"}
	}
	for _, a := range ancestors {
		if a == glyphID {
			return nil, &CorruptError{Tag: "glyf", Reason: "composite cycle"}
		}
	}

	start, end, ok := loca.Range(glyphID)
	if !ok {
		return nil, &CorruptError{Tag: "loca", Reason: "glyph id out of range"}
	}
	if start == end {
		return &glyfContour{GlyphID: glyphID}, nil // empty glyph, §8 boundary case
	}
	if uint32(len(glyf.b)) < end {
		return nil, &BoundsExceededError{Position: int(start), Need: int(end - start), Have: len(glyf.b) - int(start)}
	}

	r := newBinaryReader(glyf.b[start:end])
	numberOfContours := r.ReadInt16()
	xMin := r.ReadInt16()
	yMin := r.ReadInt16()
	xMax := r.ReadInt16()
	yMax := r.ReadInt16()

	c := &glyfContour{GlyphID: glyphID, XMin: xMin, YMin: yMin, XMax: xMax, YMax: yMax}
	if 0 <= numberOfContours {
		parseSimpleGlyph(r, c, numberOfContours)
		return c, nil
	}
	return f.parseCompositeGlyph(glyf, loca, r, c, depth, append(ancestors, glyphID))
}

func parseSimpleGlyph(r *binaryReader, c *glyfContour, numberOfContours int16) {
	endPoints := make([]uint16, numberOfContours)
	for i := range endPoints {
		endPoints[i] = r.ReadUint16()
	}
	c.EndPoints = endPoints

	numPoints := 0
	if len(endPoints) > 0 {
		numPoints = int(endPoints[len(endPoints)-1]) + 1
	}

	instructionLength := r.ReadUint16()
	c.Instructions = r.ReadBytes(uint32(instructionLength))

	flags := make([]byte, 0, numPoints)
	for len(flags) < numPoints {
		flag := r.ReadByte()
		flags = append(flags, flag)
		if flag&0x08 != 0 { // REPEAT_FLAG
			repeat := r.ReadByte()
			for i := byte(0); i < repeat && len(flags) < numPoints; i++ {
				flags = append(flags, flag)
			}
		}
	}
	if len(flags) != numPoints {
		panic(&CorruptError{Tag: "glyf", Reason: "flag count does not match endPoints"})
	}

	onCurve := make([]bool, numPoints)
	xs := make([]int16, numPoints)
	var x int32
	for i, flag := range flags {
		onCurve[i] = flag&0x01 != 0
		switch {
		case flag&0x02 != 0: // X_SHORT_VECTOR
			d := int32(r.ReadUint8())
			if flag&0x10 == 0 { // sign bit clear means negative
				d = -d
			}
			x += d
		case flag&0x10 == 0: // X_IS_SAME_OR_POSITIVE_X_SHORT_VECTOR clear, not short: full delta
			x += int32(r.ReadInt16())
		}
		xs[i] = int16(x)
	}

	ys := make([]int16, numPoints)
	var y int32
	for i, flag := range flags {
		switch {
		case flag&0x04 != 0: // Y_SHORT_VECTOR
			d := int32(r.ReadUint8())
			if flag&0x20 == 0 {
				d = -d
			}
			y += d
		case flag&0x20 == 0:
			y += int32(r.ReadInt16())
		}
		ys[i] = int16(y)
	}

	c.OnCurve = onCurve
	c.XCoordinates = xs
	c.YCoordinates = ys
}

// Composite glyph component flags, per OpenType `glyf` §"Composite Glyph
// Description".
const (
	compArgsAreWords    = 0x0001
	compArgsAreXYValues = 0x0002
	compWeHaveScale     = 0x0008
	compMoreComponents  = 0x0020
	compWeHaveXYScale   = 0x0040
	compWeHave2x2       = 0x0080
	compWeHaveInstr     = 0x0100
)

// compositeComponent is one resolved entry of a composite glyph's component
// list, eagerly captured during outline decoding per §3's lifecycle note.
type compositeComponent struct {
	GlyphID                     uint16
	ArgsAreXY                   bool
	Dx, Dy                      int16 // valid iff ArgsAreXY
	Point1, Point2              uint16 // valid iff !ArgsAreXY (anchor point indices)
	A, B, C, D                  float64 // 2x2 transform, identity if not carried
}

func (f *Font) parseCompositeGlyph(glyf *glyfTable, loca *locaTable, r *binaryReader, c *glyfContour, depth int, ancestors []uint16) (*glyfContour, error) {
	var components []compositeComponent
	hasInstructions := false
	for {
		flags := r.ReadUint16()
		glyphIndex := r.ReadUint16()

		comp := compositeComponent{GlyphID: glyphIndex, A: 1, D: 1}
		argsAreWords := flags&compArgsAreWords != 0
		comp.ArgsAreXY = flags&compArgsAreXYValues != 0
		if argsAreWords {
			a1, a2 := r.ReadInt16(), r.ReadInt16()
			if comp.ArgsAreXY {
				comp.Dx, comp.Dy = a1, a2
			} else {
				comp.Point1, comp.Point2 = uint16(a1), uint16(a2)
			}
		} else {
			a1, a2 := r.ReadInt8(), r.ReadInt8()
			if comp.ArgsAreXY {
				comp.Dx, comp.Dy = int16(a1), int16(a2)
			} else {
				comp.Point1, comp.Point2 = uint16(a1), uint16(a2)
			}
		}

		switch {
		case flags&compWeHave2x2 != 0:
			comp.A = r.ReadF2Dot14()
			comp.B = r.ReadF2Dot14()
			comp.C = r.ReadF2Dot14()
			comp.D = r.ReadF2Dot14()
		case flags&compWeHaveXYScale != 0:
			comp.A = r.ReadF2Dot14()
			comp.D = r.ReadF2Dot14()
		case flags&compWeHaveScale != 0:
			s := r.ReadF2Dot14()
			comp.A, comp.D = s, s
		}

		components = append(components, comp)
		if flags&compWeHaveInstr != 0 {
			hasInstructions = true
		}
		if flags&compMoreComponents == 0 {
			break
		}
	}
	if hasInstructions {
		n := r.ReadUint16()
		c.Instructions = r.ReadBytes(uint32(n))
	}

	for _, comp := range components {
		child, err := f.glyphContour(glyf, loca, comp.GlyphID, depth+1, ancestors)
		if err != nil {
			return nil, err
		}
		dx, dy := float64(comp.Dx), float64(comp.Dy)
		if !comp.ArgsAreXY {
			dx, dy = resolveAnchorOffset(c, child, comp.Point1, comp.Point2)
		}
		appendTransformed(c, child, comp.A, comp.B, comp.C, comp.D, dx, dy)
	}
	return c, nil
}

// resolveAnchorOffset computes the (dx, dy) translation implied by
// point-matching anchors: point Point1 of the glyph built so far must
// coincide with point Point2 of the incoming component.
func resolveAnchorOffset(base, child *glyfContour, point1, point2 uint16) (float64, float64) {
	if int(point1) >= len(base.XCoordinates) || int(point2) >= len(child.XCoordinates) {
		return 0, 0
	}
	dx := float64(base.XCoordinates[point1]) - float64(child.XCoordinates[point2])
	dy := float64(base.YCoordinates[point1]) - float64(child.YCoordinates[point2])
	return dx, dy
}

func appendTransformed(dst, src *glyfContour, a, b, c, d, dx, dy float64) {
	base := uint16(len(dst.XCoordinates))
	for i := range src.XCoordinates {
		x := float64(src.XCoordinates[i])
		y := float64(src.YCoordinates[i])
		tx := a*x + c*y + dx
		ty := b*x + d*y + dy
		dst.XCoordinates = append(dst.XCoordinates, int16(tx))
		dst.YCoordinates = append(dst.YCoordinates, int16(ty))
		dst.OnCurve = append(dst.OnCurve, src.OnCurve[i])
	}
	for _, ep := range src.EndPoints {
		dst.EndPoints = append(dst.EndPoints, base+ep)
	}
}
