package main

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/tdewolff/argp"

	"github.com/arlowen/fontcore/font"
)

// Info prints a font's media type and sfnt flavor, any open-time warnings,
// its table directory, its glyph count, (for variable fonts) its fvar axis
// list, and optionally the glyph one character maps to through cmap.
type Info struct {
	Index int    `short:"i" desc:"Font index for font collections"`
	Char  string `short:"c" desc:"Unicode character to resolve through cmap"`
	Input string `index:"0" desc:"Input file"`
}

func main() {
	root := argp.New("Toolkit for TTF, OTF, WOFF, and WOFF2 files")
	root.AddCmd(&Info{}, "info", "Get font info")
	root.Parse()
	root.PrintHelp()
}

func (cmd *Info) Run() error {
	b, err := os.ReadFile(cmd.Input)
	if err != nil {
		return err
	}

	mediatype, err := font.MediaType(b)
	if err != nil {
		return err
	}

	sfntBytes, err := font.ToSFNT(b)
	if err != nil {
		return err
	}

	f, err := font.Open(b, cmd.Index)
	if err != nil {
		return err
	}

	fmt.Printf("File: %s\n", cmd.Input)
	fmt.Printf("Media type: %s\n", mediatype)
	flavor := "TrueType"
	if f.IsCFF() {
		flavor = "CFF"
	}
	fmt.Printf("sfntVersion: 0x%08X (%s)\n", f.Flavor, flavor)

	for _, w := range f.Warnings {
		fmt.Printf("warning: %s\n", w)
	}

	nLen := 1
	if n := len(sfntBytes); n > 0 {
		nLen = int(math.Log10(float64(n))) + 1
	}

	fmt.Printf("\nTable directory:\n")
	for i, tag := range sortedTags(f.Tables) {
		data := f.Tables[tag]
		fmt.Printf("  %2d  %s  length=%*d\n", i, tag, nLen, len(data))
	}

	numGlyphs, err := f.NumGlyphs()
	if err == nil {
		fmt.Printf("\nGlyphs: %d\n", numGlyphs)
	}

	if axes := f.VariationAxes(); len(axes) != 0 {
		fmt.Printf("\nVariation axes:\n")
		for _, axis := range axes {
			fmt.Printf("  %s  min=%g default=%g max=%g\n", axis.Tag, axis.Min, axis.Default, axis.Max)
		}
	}

	if cmd.Char != "" {
		rs := []rune(cmd.Char)
		if len(rs) != 1 {
			return fmt.Errorf("char must be one Unicode character")
		}
		gid, ok := f.GlyphIndex(rs[0], 0)
		if !ok {
			fmt.Printf("\nChar %q has no glyph\n", cmd.Char)
		} else {
			fmt.Printf("\nChar %q -> GlyphID %d", cmd.Char, gid)
			if name := f.GlyphName(gid); name != "" {
				fmt.Printf(" (%s)", name)
			}
			fmt.Println()
		}
	}
	return nil
}

func sortedTags(tables font.Tables) []string {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
