package font

import "fmt"

// BoundsExceededError is returned when a reader runs off the end of its
// underlying buffer.
type BoundsExceededError struct {
	Position int
	Need     int
	Have     int
}

func (e *BoundsExceededError) Error() string {
	return fmt.Sprintf("bounds exceeded at %d: need %d bytes, have %d", e.Position, e.Need, e.Have)
}

// BadMagicError is returned when a container or sub-structure magic number
// does not match any known signature.
type BadMagicError struct {
	Found    uint32
	Expected string
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("bad magic %08x, expected %s", e.Found, e.Expected)
}

// UnsupportedVersionError is returned when a table's version field is
// outside the range this decoder understands.
type UnsupportedVersionError struct {
	Tag     string
	Version uint32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s: unsupported version %d", e.Tag, e.Version)
}

// CorruptError is returned when a structural invariant within a table is
// violated (non-monotone loca, charstring stack overflow, composite cycle,
// unknown DICT operator, ...).
type CorruptError struct {
	Tag    string
	Reason string
}

func (e *CorruptError) Error() string {
	if e.Tag == "" {
		return "corrupt: " + e.Reason
	}
	return fmt.Sprintf("%s: corrupt: %s", e.Tag, e.Reason)
}

// UnknownTableError is returned when a requested tag is absent from the
// font's table directory.
type UnknownTableError struct {
	Tag string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table %q", e.Tag)
}

// DecompressFailedError wraps a failure from the Brotli or zlib
// decompressor.
type DecompressFailedError struct {
	Detail string
}

func (e *DecompressFailedError) Error() string {
	return "decompress failed: " + e.Detail
}

// InvariantViolationError is returned when a cross-table check fails, such
// as numberOfHMetrics exceeding numGlyphs.
type InvariantViolationError struct {
	What string
}

func (e *InvariantViolationError) Error() string {
	return "invariant violation: " + e.What
}

// ErrInvalidFontData is the catch-all sentinel for malformed container
// framing that doesn't warrant a more specific error kind above (mirrors the
// teacher package's single sentinel for WOFF/WOFF2 header checks).
var ErrInvalidFontData = &CorruptError{Reason: "invalid font data"}
