package font

import "sync"

// Axis describes one entry of the fvar axis list: a 4-byte tag and its
// (min, default, max) range in user-space units.
type Axis struct {
	Tag                    string
	Min, Default, Max      float64
	Name                   string
	Hidden                 bool
}

// Font is the in-memory, queryable representation of a single sfnt font
// image produced by the ContainerLoader (and, where needed, the WOFF2
// Reconstructor). It owns the underlying byte buffer; every parsed table
// borrows from it instead of copying.
//
// Table parse results are memoized behind a single mutex: the first caller
// to request a tag parses it and every later caller (on any goroutine)
// observes the cached result, satisfying the "at-most-one parse per tag"
// invariant. Cached results are read under the shared lock; a first parse
// runs while holding the exclusive lock, so it blocks the first access to
// any other tag until it finishes.
type Font struct {
	data   []byte
	Tables Tables
	Flavor uint32

	// Warnings collects non-fatal issues noticed during open; the one
	// recorded is a table directory not sorted ascending by tag. Skipped
	// cmap subtables and unrecognized layout lookup types are not recorded.
	Warnings []string

	mu     sync.RWMutex
	parsed map[string]parseResult
}

type parseResult struct {
	value interface{}
	err   error
}

// Open parses b (in any supported container format) and returns the
// queryable Font for the font at the given index (0 for anything but a
// TrueType Collection). Container detection, WOFF/WOFF2 reconstruction, and
// directory parsing all run eagerly here; per-table decoding is deferred to
// first access.
func Open(b []byte, index int) (*Font, error) {
	sfntBytes, err := ToSFNT(b)
	if err != nil {
		return nil, err
	}

	base := uint32(0)
	if format, _ := detectFormat(sfntBytes); format == "collection" {
		base, err = parseCollectionDirectory(sfntBytes, index)
		if err != nil {
			return nil, err
		}
	} else if index != 0 {
		return nil, &InvariantViolationError{What: "font index out of range"}
	}

	hdr, tables, ascending, err := parseSFNTDirectory(sfntBytes, base)
	if err != nil {
		return nil, err
	}

	f := &Font{
		data:   sfntBytes,
		Tables: tables,
		Flavor: hdr.flavor,
		parsed: map[string]parseResult{},
	}
	if !ascending {
		f.warn("table directory is not sorted ascending by tag")
	}
	return f, nil
}

func (f *Font) warn(msg string) {
	f.Warnings = append(f.Warnings, msg)
}

// Table returns the raw bytes for tag, or false if the font's directory
// does not carry it.
func (f *Font) Table(tag string) ([]byte, bool) {
	b, ok := f.Tables[tag]
	return b, ok
}

// IsCFF reports whether the font's outlines are CFF/CFF2 charstrings
// (sfntVersion "OTTO") as opposed to TrueType glyf/loca.
func (f *Font) IsCFF() bool {
	return uint32ToString(f.Flavor) == "OTTO"
}

// getTable is the TableRegistry's single entry point: it returns the
// memoized parse of tag, parsing it via parse on first access. parse is
// called at most once per tag for the lifetime of the Font, even under
// concurrent callers.
func (f *Font) getTable(tag string, parse func([]byte) (interface{}, error)) (interface{}, error) {
	f.mu.RLock()
	res, ok := f.parsed[tag]
	f.mu.RUnlock()
	if ok {
		return res.value, res.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if res, ok = f.parsed[tag]; ok {
		return res.value, res.err
	}

	b, ok := f.Tables[tag]
	if !ok {
		err := &UnknownTableError{Tag: tag}
		f.parsed[tag] = parseResult{nil, err}
		return nil, err
	}

	value, err := safeParse(tag, b, parse)
	f.parsed[tag] = parseResult{value, err}
	return value, err
}

// safeParse converts a panic raised by a parser (out-of-bounds reads are
// reported this way throughout this package) into a regular error.
func safeParse(tag string, b []byte, parse func([]byte) (interface{}, error)) (value interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			panic(rec)
		}
	}()
	return parse(b)
}
