package shape

import (
	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/layout"
)

// Dot is a small circular mark, typically pseudo-cursive. See SPEC_FULL.md
// §C.3 (supplemented from original_source, elided from spec.md's
// non-exhaustive shape list).
type Dot struct {
	Base
}

// DotScalar scales the light-line contribution to a Dot's effective size,
// matching the reference implementation's `Dot.SCALAR`.
const DotScalar = 2.0

// DotRadiusFactor is the fraction of RADIUS a Dot occupies.
const DotRadiusFactor = 0.2

func (Dot) Name(float64, JoiningType) string { return "" }
func (Dot) Group() any                       { return "dot" }
func (Dot) HubPriority(float64) int          { return -1 }
func (Dot) IsPseudoCursive(float64) bool     { return true }
func (Dot) IsShadable() bool                 { return true }

func (d Dot) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	r := RADIUS * p.Size * DotRadiusFactor
	pen := glyph.Pen()
	kappa := 0.5523
	pen.MoveTo(geom.Point{X: 0, Y: r})
	quads := []geom.Angle{90, 180, 270, 0, 90}
	for i := 0; i < 4; i++ {
		a0, a1 := quads[i], quads[i+1]
		p0 := geom.Rect(r, a0)
		p1 := geom.Rect(r, a1)
		d0 := geom.Rect(r*kappa, a0.Add(90))
		d1 := geom.Rect(r*kappa, a1.Add(-90))
		pen.CurveTo(p0.Add(d0), p1.Add(d1), p1)
	}
	glyph.AddAnchorPoint(anchor.Cursive, KindEntry, 0, 0)
	glyph.AddAnchorPoint(anchor.Cursive, KindExit, 0, 0)
	return nil, nil
}

func (d Dot) Contextualize(geom.Context, geom.Context) Shape { return d }

// RomanianU falls back to Circle contextualization when surrounded by
// context on both sides (spec.md §4.1.6).
type RomanianU struct {
	*Complex
	inner *Circle
}

// NewRomanianU builds a RomanianU compound from its inner circle.
func NewRomanianU(inner *Circle) *RomanianU {
	c := NewComplex([]Instruction{{SizeScalar: 1, Sub: inner}})
	return &RomanianU{Complex: c, inner: inner}
}

func (r *RomanianU) Contextualize(contextIn, contextOut geom.Context) Shape {
	if !contextIn.IsNoContext() && !contextOut.IsNoContext() {
		return r.inner.Contextualize(contextIn, contextOut)
	}
	return r.Complex.Contextualize(contextIn, contextOut)
}

// Ou is a Circle plus a small tail Curve whose geometry branches on
// initial/medial/isolated position (spec.md §4.1.6).
type Ou struct {
	*Complex
}

// NewOu builds an Ou compound. tailAngleIn/tailAngleOut describe the tail
// Curve appended after the Circle.
func NewOu(circ *Circle, tailAngleIn, tailAngleOut geom.Angle, tailClockwise bool) *Ou {
	tail := NewCurve(tailAngleIn, tailAngleOut, tailClockwise)
	tail.Stretch = -0.5
	c := NewComplex([]Instruction{
		{SizeScalar: 1, Sub: circ},
		{SizeScalar: 0.3, Sub: tail},
	})
	return &Ou{Complex: c}
}

// Wa is two Circles (outer and inner) sharing a crossing point (spec.md
// §4.1.6).
type Wa struct {
	*Complex
}

// NewWa builds a Wa from an outer and inner Circle.
func NewWa(outer, inner *Circle) *Wa {
	c := NewComplex([]Instruction{
		{SizeScalar: 1, Sub: outer},
		{SizeScalar: 0.5, Sub: inner},
	})
	return &Wa{Complex: c}
}

// Wi is one Circle plus one or more Curves (spec.md §4.1.6).
type Wi struct {
	*Complex
}

// NewWi builds a Wi from a Circle and a set of trailing Curves.
func NewWi(circ *Circle, tails ...*Curve) *Wi {
	instrs := []Instruction{{SizeScalar: 1, Sub: circ}}
	for _, t := range tails {
		instrs = append(instrs, Instruction{SizeScalar: 0.5, Sub: t})
	}
	return &Wi{Complex: NewComplex(instrs)}
}

// TangentHook rewrites its internal instructions when initial (spec.md
// §4.1.6).
type TangentHook struct {
	*Complex
	initialInstructions []Instruction
}

// NewTangentHook builds a TangentHook from its medial instruction list and
// an alternate list used when the schema occurs initially.
func NewTangentHook(medial, initial []Instruction) *TangentHook {
	return &TangentHook{Complex: NewComplex(medial), initialInstructions: initial}
}

func (t *TangentHook) Contextualize(contextIn, contextOut geom.Context) Shape {
	if contextIn.IsNoContext() {
		initial := &Complex{Instructions: t.initialInstructions}
		return initial.Contextualize(contextIn, contextOut)
	}
	return t.Complex.Contextualize(contextIn, contextOut)
}

// XShape is two crossing Curves; it forces cursive entry and exit to its
// geometric centre, i.e. it is pseudo-cursive (spec.md §4.1.6).
type XShape struct {
	*Complex
}

// NewXShape builds an XShape from its two crossing Curves.
func NewXShape(a, b *Curve) *XShape {
	return &XShape{Complex: NewComplex([]Instruction{
		{SizeScalar: 1, Sub: a},
		{SizeScalar: 1, Sub: b, SkipDrawing: false},
	})}
}

func (x *XShape) IsPseudoCursive(float64) bool { return true }

func (x *XShape) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	bb, err := x.Complex.Draw(glyph, p)
	if err != nil {
		return nil, err
	}
	glyph.AddAnchorPoint(anchor.Cursive, KindEntry, 0, 0)
	glyph.AddAnchorPoint(anchor.Cursive, KindExit, 0, 0)
	return bb, nil
}

func (x *XShape) Contextualize(geom.Context, geom.Context) Shape { return x }
func (x *XShape) ContextIn() geom.Context                        { return geom.NoContext }
func (x *XShape) ContextOut() geom.Context                       { return geom.NoContext }

// EqualsSign is a pseudo-cursive Complex with NO_CONTEXT boundaries
// (spec.md §4.1.6).
type EqualsSign struct {
	*Complex
}

// NewEqualsSign builds an EqualsSign from two parallel Line instructions.
func NewEqualsSign(a, b *Line) *EqualsSign {
	return &EqualsSign{Complex: NewComplex([]Instruction{
		{SizeScalar: 1, Sub: a},
		{SizeScalar: 1, Sub: b},
	})}
}

func (e *EqualsSign) IsPseudoCursive(float64) bool           { return true }
func (e *EqualsSign) Contextualize(geom.Context, geom.Context) Shape { return e }
func (e *EqualsSign) ContextIn() geom.Context                 { return geom.NoContext }
func (e *EqualsSign) ContextOut() geom.Context                { return geom.NoContext }

// Grammalogue is a pseudo-cursive Complex with NO_CONTEXT boundaries,
// composing an arbitrary fixed instruction list representing a whole-word
// abbreviation glyph (spec.md §4.1.6).
type Grammalogue struct {
	*Complex
}

// NewGrammalogue builds a Grammalogue from a fixed instruction list.
func NewGrammalogue(instrs []Instruction) *Grammalogue {
	return &Grammalogue{Complex: NewComplex(instrs)}
}

func (g *Grammalogue) IsPseudoCursive(float64) bool           { return true }
func (g *Grammalogue) Contextualize(geom.Context, geom.Context) Shape { return g }
func (g *Grammalogue) ContextIn() geom.Context                 { return geom.NoContext }
func (g *Grammalogue) ContextOut() geom.Context                { return geom.NoContext }
func (g *Grammalogue) GuaranteedGlyphClass() (layout.GlyphClass, bool) {
	return layout.Blocker, true
}
