// Package fontmodel is the read-side counterpart the REPL front-end uses
// to preview a build: a typed summary of the glyphs the core just emitted
// (FontHeader, a code-point-to-glyph-name CMap stub), plus a thin loader
// for an existing OpenType font so the REPL can check which code points
// it already covers before the core assigns new ones. Neither concern
// belongs to the core itself (spec.md §1 places font-file reading and
// writing outside its scope); this package exists only to give
// cmd/duploycli something to inspect.
package fontmodel

import (
	"fmt"
	"os"
	"sort"

	"github.com/dscorbett/duployan-go/emit"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

func tracer() tracing.Trace {
	return tracing.Select("duployan.fontmodel")
}

// GlyphSummary is one emitted glyph's preview row.
type GlyphSummary struct {
	Name        string
	CodePoints  []rune
	Advance     float64
	LeftBearing float64
}

// FontHeader is a typed, read-only preview of the glyph set a build just
// produced: no binary font exists to parse (the vector-drawing backend
// that would realize one is out of the core's scope), so this is built
// directly from emit.Results rather than through golang.org/x/image/font/sfnt.
type FontHeader struct {
	Glyphs []GlyphSummary
	CMap   map[rune]string
}

// Preview summarizes results into a FontHeader, sorted by glyph name for
// stable REPL listing.
func Preview(results []emit.Result) *FontHeader {
	h := &FontHeader{
		Glyphs: make([]GlyphSummary, 0, len(results)),
		CMap:   make(map[rune]string),
	}
	for _, r := range results {
		bbox := r.Glyph.BoundingBox()
		h.Glyphs = append(h.Glyphs, GlyphSummary{
			Name:        r.Schema.GlyphName(),
			CodePoints:  r.Schema.CodePoints,
			Advance:     bbox.XMax + r.Glyph.RightSideBearing,
			LeftBearing: bbox.XMin,
		})
		for _, cp := range r.Schema.CodePoints {
			h.CMap[cp] = r.Schema.GlyphName()
		}
	}
	sort.Slice(h.Glyphs, func(i, j int) bool { return h.Glyphs[i].Name < h.Glyphs[j].Name })
	tracer().Infof("fontmodel: previewing %d glyphs, %d mapped code points", len(h.Glyphs), len(h.CMap))
	return h
}

// Covers reports whether cp already has a glyph assigned among the
// schemas that went into h, letting a caller flag a code point the core
// is about to duplicate (spec.md §7's single fail-fast condition).
func (h *FontHeader) Covers(cp rune) bool {
	_, ok := h.CMap[cp]
	return ok
}

// ReferenceFont wraps an existing, already-compiled OpenType font loaded
// from disk, used by the REPL to cross-check cmap coverage against a
// previous build or a companion font in the same family.
type ReferenceFont struct {
	Name   string
	Binary []byte
	SFNT   *sfnt.Font
}

// LoadReferenceFont reads and parses an OpenType font file (TTF or OTF).
func LoadReferenceFont(path string) (*ReferenceFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fontmodel: %w", err)
	}
	return ParseReferenceFont(data)
}

// ParseReferenceFont parses an OpenType font already read into memory.
func ParseReferenceFont(data []byte) (*ReferenceFont, error) {
	f := &ReferenceFont{Binary: data}
	parsed, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fontmodel: %w", err)
	}
	f.SFNT = parsed
	if name, err := parsed.Name(nil, sfnt.NameIDFull); err == nil {
		f.Name = name
		tracer().Debugf("fontmodel: loaded reference font %s", name)
	}
	return f, nil
}

// HasGlyph reports whether the reference font has a glyph mapped to r.
func (f *ReferenceFont) HasGlyph(r rune) (bool, error) {
	var buf sfnt.Buffer
	gid, err := f.SFNT.GlyphIndex(&buf, r)
	if err != nil {
		return false, fmt.Errorf("fontmodel: %w", err)
	}
	return gid != 0, nil
}
