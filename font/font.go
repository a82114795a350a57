package font

import (
	"encoding/binary"
	"fmt"
)

// MediaType returns the IANA media type for a font file, inspecting only
// its container magic. EOT is not a supported container in this package;
// only sfnt/OTF, WOFF, WOFF2, and TrueType collections are recognized.
func MediaType(b []byte) (string, error) {
	format, err := detectFormat(b)
	if err != nil {
		return "", err
	}
	switch format {
	case "woff":
		return "font/woff", nil
	case "woff2":
		return "font/woff2", nil
	case "collection":
		return "font/collection", nil
	case "sfnt":
		if len(b) >= 4 && uint32ToString(binary.BigEndian.Uint32(b[:4])) == "OTTO" {
			return "font/opentype", nil
		}
		return "font/truetype", nil
	}
	return "", fmt.Errorf("unrecognized font file format")
}

// Extension returns the conventional file extension for a font file, or an
// empty string if the format is not recognized.
func Extension(b []byte) string {
	mediatype, err := MediaType(b)
	if err != nil {
		return ""
	}
	switch mediatype {
	case "font/truetype":
		return ".ttf"
	case "font/opentype":
		return ".otf"
	case "font/woff":
		return ".woff"
	case "font/woff2":
		return ".woff2"
	case "font/collection":
		return ".ttc"
	}
	return ""
}

// DetectFormat classifies b's container the way a caller deciding how to
// route a font file wants: "ttf", "otf", "woff", "woff2", "collection", or
// "other" if unrecognized.
func DetectFormat(b []byte) string {
	format, err := detectFormat(b)
	if err != nil {
		return "other"
	}
	switch format {
	case "sfnt":
		if len(b) >= 4 && uint32ToString(binary.BigEndian.Uint32(b[:4])) == "OTTO" {
			return "otf"
		}
		return "ttf"
	default:
		return format
	}
}

// Outline resolves glyphID's outline, dispatching to the TrueType glyf
// decoder, the CFF1 interpreter, or the CFF2 interpreter based on the
// font's flavor. coords' variation deltas are applied in the CFF2 case
// only: gvar is not decoded, so TrueType outlines are always the static
// (default-instance) outlines, whatever coords holds.
func (f *Font) Outline(glyphID uint16, coords map[string]float64) (*glyfContour, error) {
	if !f.IsCFF() {
		return f.GlyphContour(glyphID)
	}
	if _, ok := f.Table("CFF2"); ok {
		return f.GlyphContourCFF2(glyphID, coords)
	}
	return f.GlyphContourCFF(glyphID)
}
