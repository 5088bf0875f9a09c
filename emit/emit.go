package emit

import (
	"fmt"

	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("duployan.emit")
}

// Options is the stroke-style geometry the emitter threads into every
// Shape.Draw call, independent of whatever richer configuration type the
// caller (the top-level build entry point) maintains.
type Options struct {
	StrokeWidth float64
	LightLine   float64
	StrokeGap   float64
}

// Result is one emitted glyph together with the schema it came from, so a
// caller can pair final glyph geometry back to its source for naming,
// code-point mapping, and Layout anchor-class collection (spec.md §6).
type Result struct {
	Schema *schema.Schema
	Glyph  *Glyph
}

// Emit runs the glyph emitter of spec.md §4.8 over every canonical schema:
// allocate a glyph, draw it, translate its cursive entry (or left
// sidebearing origin) to x=0, sit it on the baseline unless the shape
// declares FixedY, and set its right sidebearing.
func Emit(canonical []*schema.Schema, opts Options) ([]Result, error) {
	results := make([]Result, 0, len(canonical))
	for _, s := range canonical {
		g, err := emitOne(s, opts)
		if err != nil {
			return nil, fmt.Errorf("emit: schema %s: %w", s.GlyphName(), err)
		}
		results = append(results, Result{Schema: s, Glyph: g})
	}
	tracer().Infof("emit: drew %d glyphs", len(results))
	return results, nil
}

func emitOne(s *schema.Schema, opts Options) (*Glyph, error) {
	g := NewGlyph(glyphName(s))

	params := shape.DrawParams{
		StrokeWidth: opts.StrokeWidth,
		LightLine:   opts.LightLine,
		StrokeGap:   opts.StrokeGap,
		Size:        s.Size,
		Anchor:      s.Anchor,
		JoiningType: s.JoiningType,
		Diphthong1:  s.Diphthong1,
		Diphthong2:  s.Diphthong2,
	}

	if !s.Shape.Invisible() {
		bbox, err := s.Shape.Draw(g, params)
		if err != nil {
			return nil, err
		}
		if bbox == nil {
			b := g.BoundingBox()
			bbox = &b
		}

		entryX, _, hasEntry := g.AnchorPoint(anchor.Cursive, shape.KindEntry)
		if !hasEntry {
			entryX = bbox.XMin
		}
		g.Translate(-entryX, 0)

		if !s.Shape.FixedY() {
			b := g.BoundingBox()
			g.Translate(0, -b.YMin)
		}
	}

	sideBearing := s.SideBearing
	if s.Anchor != nil {
		sideBearing = 0
	}
	g.RightSideBearing = sideBearing

	return g, nil
}

// glyphName picks the allocation target of spec.md §4.8 step 1: the
// schema's own derived name doubles as either a real code point's glyph
// name or a private ligature name, depending on how many code points it
// binds.
func glyphName(s *schema.Schema) string {
	return s.GlyphName()
}
