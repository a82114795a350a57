package font

// This file covers the common layer shared by GSUB, GPOS, and GDEF: script
// list, feature list, lookup list, coverage tables, and class definitions.
// Individual lookup subtables are not interpreted; a lookup is resolved
// down to its type, flags, and subtable byte ranges, parsed lazily the
// first time a caller asks for it. An unrecognized lookup type does not fail
// the whole table: the lookup is kept in the list like any other, and the
// warning parseLookupList produces for it is not passed on by
// parseLayoutTable.

// Coverage maps a glyph id to its index within a coverage table (format 1:
// explicit glyph list; format 2: sorted ranges), or reports not covered.
type Coverage struct {
	format  uint16
	glyphs  []uint16          // format 1
	ranges  []coverageRange   // format 2
}

type coverageRange struct {
	start, end         uint16
	startCoverageIndex uint16
}

func parseCoverage(b []byte) (*Coverage, error) {
	r := newBinaryReader(b)
	format := r.ReadUint16()
	cov := &Coverage{format: format}
	switch format {
	case 1:
		count := r.ReadUint16()
		cov.glyphs = make([]uint16, count)
		for i := range cov.glyphs {
			cov.glyphs[i] = r.ReadUint16()
		}
	case 2:
		count := r.ReadUint16()
		cov.ranges = make([]coverageRange, count)
		for i := range cov.ranges {
			cov.ranges[i] = coverageRange{r.ReadUint16(), r.ReadUint16(), r.ReadUint16()}
		}
	default:
		return nil, &UnsupportedVersionError{Tag: "coverage", Version: uint32(format)}
	}
	return cov, nil
}

// Index returns glyphID's coverage index and whether it is covered at all.
func (c *Coverage) Index(glyphID uint16) (int, bool) {
	switch c.format {
	case 1:
		for i, g := range c.glyphs {
			if g == glyphID {
				return i, true
			}
			if g > glyphID {
				break
			}
		}
	case 2:
		for _, rg := range c.ranges {
			if rg.start <= glyphID && glyphID <= rg.end {
				return int(rg.startCoverageIndex) + int(glyphID-rg.start), true
			}
		}
	}
	return 0, false
}

// ClassDef maps a glyph id to a class number (format 1: contiguous array;
// format 2: sorted ranges). Glyphs outside the table are class 0.
type ClassDef struct {
	format      uint16
	startGlyph  uint16
	classValues []uint16        // format 1
	ranges      []classDefRange // format 2
}

type classDefRange struct {
	start, end uint16
	class      uint16
}

func parseClassDef(b []byte) (*ClassDef, error) {
	r := newBinaryReader(b)
	format := r.ReadUint16()
	cd := &ClassDef{format: format}
	switch format {
	case 1:
		cd.startGlyph = r.ReadUint16()
		count := r.ReadUint16()
		cd.classValues = make([]uint16, count)
		for i := range cd.classValues {
			cd.classValues[i] = r.ReadUint16()
		}
	case 2:
		count := r.ReadUint16()
		cd.ranges = make([]classDefRange, count)
		for i := range cd.ranges {
			cd.ranges[i] = classDefRange{r.ReadUint16(), r.ReadUint16(), r.ReadUint16()}
		}
	default:
		return nil, &UnsupportedVersionError{Tag: "classDef", Version: uint32(format)}
	}
	return cd, nil
}

func (cd *ClassDef) Class(glyphID uint16) uint16 {
	switch cd.format {
	case 1:
		if glyphID < cd.startGlyph || int(glyphID-cd.startGlyph) >= len(cd.classValues) {
			return 0
		}
		return cd.classValues[glyphID-cd.startGlyph]
	case 2:
		for _, rg := range cd.ranges {
			if rg.start <= glyphID && glyphID <= rg.end {
				return rg.class
			}
		}
	}
	return 0
}

// langSys names the feature indices a (script, language) pair activates,
// plus a required feature index (0xFFFF if none).
type langSys struct {
	requiredFeatureIndex uint16
	featureIndices       []uint16
}

// scriptList maps a script tag to its per-language langSys records, with
// "dflt" reserved as the default language within a script.
type scriptList map[string]map[string]langSys

func parseScriptList(b []byte) (scriptList, error) {
	r := newBinaryReader(b)
	scriptCount := r.ReadUint16()
	scripts := make(scriptList, scriptCount)
	for i := 0; i < int(scriptCount); i++ {
		scriptTag := r.ReadString(4)
		scriptOffset := r.ReadUint16()

		sr := newBinaryReader(b)
		sr.Seek(uint32(scriptOffset))
		defaultLangSysOffset := sr.ReadUint16()
		langSysCount := sr.ReadUint16()
		langSyss := make(map[string]langSys, langSysCount+1)
		if defaultLangSysOffset != 0 {
			lr := newBinaryReader(b)
			lr.Seek(uint32(scriptOffset) + uint32(defaultLangSysOffset))
			langSyss["dflt"] = readLangSysRecord(lr)
		}
		for j := 0; j < int(langSysCount); j++ {
			langSysTag := sr.ReadString(4)
			langSysOffset := sr.ReadUint16()
			rr := newBinaryReader(b)
			rr.Seek(uint32(scriptOffset) + uint32(langSysOffset))
			langSyss[langSysTag] = readLangSysRecord(rr)
		}
		scripts[scriptTag] = langSyss
	}
	return scripts, nil
}

func readLangSysRecord(r *binaryReader) langSys {
	lookupOrderOffset := r.ReadUint16()
	_ = lookupOrderOffset // must be NULL per spec; a nonzero value is ignored rather than failing the table
	required := r.ReadUint16()
	count := r.ReadUint16()
	indices := make([]uint16, count)
	for i := range indices {
		indices[i] = r.ReadUint16()
	}
	return langSys{requiredFeatureIndex: required, featureIndices: indices}
}

func (s scriptList) LangSys(script, language string) (langSys, bool) {
	langs, ok := s[script]
	if !ok {
		langs, ok = s["dflt"]
		if !ok {
			return langSys{}, false
		}
	}
	ls, ok := langs[language]
	if !ok {
		ls, ok = langs["dflt"]
	}
	return ls, ok
}

// featureList resolves a feature index to its tag and activated lookup
// indices.
type featureList struct {
	tags    []string
	lookups [][]uint16
}

func parseFeatureList(b []byte) (featureList, error) {
	r := newBinaryReader(b)
	count := r.ReadUint16()
	tags := make([]string, count)
	lookups := make([][]uint16, count)
	for i := 0; i < int(count); i++ {
		tag := r.ReadString(4)
		offset := r.ReadUint16()

		fr := newBinaryReader(b)
		fr.Seek(uint32(offset))
		_ = fr.ReadUint16() // featureParamsOffset
		lookupCount := fr.ReadUint16()
		indices := make([]uint16, lookupCount)
		for j := range indices {
			indices[j] = fr.ReadUint16()
		}
		tags[i] = tag
		lookups[i] = indices
	}
	return featureList{tags, lookups}, nil
}

func (fl featureList) Feature(i uint16) (string, []uint16, bool) {
	if int(i) >= len(fl.tags) {
		return "", nil, false
	}
	return fl.tags[i], fl.lookups[i], true
}

// lookupRecord is one entry of a LookupList, resolved only as far as its
// header: type, flags, and the byte ranges of its subtables. Subtable
// bytes are kept raw; GSUB/GPOS consumers that need a specific lookup
// type's semantics parse the subtable from lookupRecord.Subtable(i) on
// demand, matching the lazy "parsed on demand" design used throughout this
// package.
type lookupRecord struct {
	lookupType      uint16
	lookupFlag      uint16
	subtableOffsets []uint16
	markFilteringSet uint16
	base            []byte // the lookup table's own byte range, for Subtable() to index from
}

func (lr lookupRecord) Subtable(i int) []byte {
	if i < 0 || len(lr.subtableOffsets) <= i {
		return nil
	}
	off := int(lr.subtableOffsets[i])
	if off < 0 || len(lr.base) <= off {
		return nil
	}
	return lr.base[off:]
}

type lookupList struct {
	lookups []lookupRecord
}

func parseLookupList(b []byte) (lookupList, []string, error) {
	r := newBinaryReader(b)
	count := r.ReadUint16()
	offsets := make([]uint16, count)
	for i := range offsets {
		offsets[i] = r.ReadUint16()
	}
	var warnings []string
	lookups := make([]lookupRecord, count)
	for i, off := range offsets {
		lr := newBinaryReader(b)
		lr.Seek(uint32(off))
		lookupType := lr.ReadUint16()
		lookupFlag := lr.ReadUint16()
		subtableCount := lr.ReadUint16()
		subOffsets := make([]uint16, subtableCount)
		for j := range subOffsets {
			subOffsets[j] = lr.ReadUint16()
		}
		markFilteringSet := uint16(0)
		if lookupFlag&0x0010 != 0 { // USE_MARK_FILTERING_SET
			markFilteringSet = lr.ReadUint16()
		}
		if lookupType == 0 || 40 < lookupType {
			warnings = append(warnings, "layout: unrecognized lookup type")
		}
		lookups[i] = lookupRecord{
			lookupType: lookupType, lookupFlag: lookupFlag,
			subtableOffsets: subOffsets, markFilteringSet: markFilteringSet,
			base: b[off:],
		}
	}
	return lookupList{lookups}, warnings, nil
}

// layoutTable is the common GSUB/GPOS skeleton: script/feature/lookup
// lists. The FeatureVariations offset of a version 1.1 table is read past
// and discarded; feature variations are not resolved.
type layoutTable struct {
	scripts  scriptList
	features featureList
	lookups  lookupList
}

func parseLayoutTable(tag string) func([]byte) (interface{}, error) {
	return func(b []byte) (interface{}, error) {
		r := newBinaryReader(b)
		major := r.ReadUint16()
		minor := r.ReadUint16()
		if major != 1 {
			panic(&UnsupportedVersionError{Tag: tag, Version: uint32(major)})
		}
		scriptListOffset := r.ReadUint16()
		featureListOffset := r.ReadUint16()
		lookupListOffset := r.ReadUint16()
		if minor == 1 {
			_ = r.ReadUint32() // featureVariationsOffset, not resolved
		}

		scripts, err := parseScriptList(b[scriptListOffset:])
		if err != nil {
			return nil, err
		}
		features, err := parseFeatureList(b[featureListOffset:])
		if err != nil {
			return nil, err
		}
		lookups, _, err := parseLookupList(b[lookupListOffset:])
		if err != nil {
			return nil, err
		}
		return &layoutTable{scripts, features, lookups}, nil
	}
}

func (f *Font) gsub() (*layoutTable, error) {
	v, err := f.getTable("GSUB", parseLayoutTable("GSUB"))
	if err != nil {
		return nil, err
	}
	return v.(*layoutTable), nil
}

func (f *Font) gpos() (*layoutTable, error) {
	v, err := f.getTable("GPOS", parseLayoutTable("GPOS"))
	if err != nil {
		return nil, err
	}
	return v.(*layoutTable), nil
}

// Lookups returns the lookup indices script/language activates for
// feature, or nil if the table, script, language, or feature is absent.
// This is the common entry point GSUB and GPOS callers share; a caller
// wanting actual glyph substitution/positioning still has to interpret the
// returned lookups' subtables itself; that per-type interpretation is
// explicitly out of scope here.
func (lt *layoutTable) Lookups(script, language, feature string) []uint16 {
	ls, ok := lt.scripts.LangSys(script, language)
	if !ok {
		return nil
	}
	var out []uint16
	for _, fi := range ls.featureIndices {
		tag, lookupIndices, ok := lt.features.Feature(fi)
		if !ok || tag != feature {
			continue
		}
		out = append(out, lookupIndices...)
	}
	return out
}

func (lt *layoutTable) Lookup(i uint16) (lookupRecord, bool) {
	if int(i) >= len(lt.lookups.lookups) {
		return lookupRecord{}, false
	}
	return lt.lookups.lookups[i], true
}

// gdefTable is GDEF's glyph classification layer: GlyphClassDef assigns
// each glyph a category (base/ligature/mark/component), MarkAttachClassDef
// groups marks for lookup-flag filtering. The attachment list and ligature
// caret list offsets are read past and discarded; neither list is decoded.
type gdefTable struct {
	glyphClassDef      *ClassDef
	markAttachClassDef *ClassDef
}

func parseGDEF(b []byte) (interface{}, error) {
	r := newBinaryReader(b)
	_ = r.ReadUint16() // majorVersion
	minor := r.ReadUint16()
	glyphClassDefOffset := r.ReadUint16()
	_ = r.ReadUint16() // attachListOffset, not resolved
	_ = r.ReadUint16() // ligCaretListOffset, not resolved
	markAttachClassDefOffset := r.ReadUint16()
	_ = minor // 1.2/1.3 add mark glyph sets / item variation store, not needed here

	t := &gdefTable{}
	if glyphClassDefOffset != 0 {
		cd, err := parseClassDef(b[glyphClassDefOffset:])
		if err != nil {
			return nil, err
		}
		t.glyphClassDef = cd
	}
	if markAttachClassDefOffset != 0 {
		cd, err := parseClassDef(b[markAttachClassDefOffset:])
		if err != nil {
			return nil, err
		}
		t.markAttachClassDef = cd
	}
	return t, nil
}

func (f *Font) gdef() (*gdefTable, error) {
	v, err := f.getTable("GDEF", parseGDEF)
	if err != nil {
		return nil, err
	}
	return v.(*gdefTable), nil
}

// GlyphClass reports glyphID's GDEF glyph class (1=base, 2=ligature,
// 3=mark, 4=component), or 0 if the font carries no GDEF or the glyph is
// unclassified.
func (f *Font) GlyphClass(glyphID uint16) uint16 {
	gdef, err := f.gdef()
	if err != nil || gdef.glyphClassDef == nil {
		return 0
	}
	return gdef.glyphClassDef.Class(glyphID)
}
