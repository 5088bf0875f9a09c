// Package shape implements the shape algebra: a closed family of geometric
// primitives that support contextualization (rewriting themselves based on
// neighbouring letters' exit/entry angles) and drawing into a pen
// interface with anchor points. See spec.md §4.1.
package shape

import (
	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/layout"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("duployan.shape")
}

// JoiningType classifies how a schema's glyph participates in cursive
// joining.
type JoiningType int

const (
	Joining JoiningType = iota
	Orienting
	NonJoining
)

// AnchorKind is the kind of an anchor point added to a glyph, mirroring
// the kinds accepted by the drawing backend (spec.md §6).
type AnchorKind int

const (
	KindEntry AnchorKind = iota
	KindExit
	KindMark
	KindBase
	KindBaseMark
	KindLigature
)

// BBox is an axis-aligned bounding box in font design units.
type BBox struct {
	XMin, YMin, XMax, YMax float64
}

// Pen is the path-construction half of the drawing backend interface
// (spec.md §6, "Pen operations").
type Pen interface {
	MoveTo(p geom.Point)
	LineTo(p geom.Point)
	CurveTo(c1, c2, end geom.Point)
	EndPath()
}

// Glyph is the glyph-construction half of the drawing backend interface a
// Shape draws into (spec.md §6, "To the drawing backend").
type Glyph interface {
	Pen() Pen
	AddAnchorPoint(name anchor.Name, kind AnchorKind, x, y float64)
	Rotate(theta geom.Angle)
	Translate(dx, dy float64)
	Scale(sx, sy float64)
	Stroke(diameter float64)
	RemoveOverlap()
	BoundingBox() BBox
	XBoundsAtY(y float64) (xmin, xmax float64)

	// AnchorPoint returns the most recently added anchor point of the
	// given name and kind, and whether one has been added. Complex uses
	// this to find a component's cursive exit so the next component can
	// be translated to meet it (spec.md §4.1.5).
	AnchorPoint(name anchor.Name, kind AnchorKind) (x, y float64, ok bool)
}

// DrawParams bundles the stroke-style and shaping-state parameters that
// Draw needs beyond the glyph handle itself, matching the Draw signature
// in spec.md §4.1 ("draw(glyph, stroke_width, light_line, stroke_gap,
// size, anchor, joining_type, four diphthong flags)").
type DrawParams struct {
	StrokeWidth float64
	LightLine   float64
	StrokeGap   float64
	Size        float64
	Anchor      *anchor.Name
	JoiningType JoiningType

	InitialCircleDiphthong bool
	FinalCircleDiphthong   bool
	Diphthong1             bool
	Diphthong2             bool
}

// Shape is the closed family of geometric primitives. Every variant
// implements this interface; package-level dispatch (sifting, the glyph
// emitter) never type-switches on the concrete type except where a
// variant-specific attribute is genuinely needed (e.g. the overlap-tree
// phases inspecting ChildEdge.Lineage).
type Shape interface {
	// Name returns a short token used to build the glyph name.
	Name(size float64, joiningType JoiningType) string

	// NameImpliesType reports whether Name()'s result alone determines the
	// schema's Duployan letter type, in which case the name builder omits
	// the "dupl." prefix (spec.md §4.2 step 2).
	NameImpliesType() bool

	// Group returns an identity value for deduplication: two shapes with
	// equal Group (compared with ==) and matching schema attributes
	// collapse to one glyph.
	Group() any

	// Invisible reports whether drawing should be skipped entirely.
	Invisible() bool

	// HubPriority returns -1 (never a baseline candidate) through 2
	// (highest visual prominence).
	HubPriority(size float64) int

	// Draw draws contours and anchor points into glyph, and returns the
	// shape's effective bounding box if it differs from the glyph's own
	// (e.g. a Complex excludes tick components), or nil.
	Draw(glyph Glyph, params DrawParams) (*BBox, error)

	// Contextualize returns the shape this shape becomes given neighbour
	// contexts.
	Contextualize(contextIn, contextOut geom.Context) Shape

	// ContextIn and ContextOut are the contexts this shape exposes to its
	// neighbours.
	ContextIn() geom.Context
	ContextOut() geom.Context

	// CalculateDiacriticAngles returns the baseline rotation for marks
	// attached at each anchor.
	CalculateDiacriticAngles() map[anchor.Name]geom.Angle

	// GuaranteedGlyphClass forces a GDEF glyph class if determined by the
	// shape alone, independent of the owning schema's anchor/children.
	GuaranteedGlyphClass() (layout.GlyphClass, bool)

	// CanTakeSecant reports whether a secant mark may attach to this
	// shape as a base.
	CanTakeSecant() bool

	// CanBeChild reports whether this shape may serve as a child in an
	// overlap tree.
	CanBeChild(size float64) bool

	// MaxTreeWidth bounds how many children this shape admits per side.
	MaxTreeWidth(size float64) int

	// MaxDoubleMarks bounds how many U+1BC9E double marks this shape
	// tolerates before the excess becomes an error glyph.
	MaxDoubleMarks(size float64, joiningType JoiningType, markCount int) int

	// IsPseudoCursive reports whether this shape's cursive entry/exit
	// points coincide, requiring a positioning shim against real-cursive
	// neighbours.
	IsPseudoCursive(size float64) bool

	// IsShadable reports whether a following DTLS can shade this shape.
	IsShadable() bool

	// FixedY reports whether the glyph emitter must not adjust this
	// shape's vertical position to sit on the baseline.
	FixedY() bool
}

// Base provides default implementations for the less frequently
// overridden Shape methods. Concrete shapes embed Base and override only
// what differs, the way the reference implementation's Shape base class
// supplies defaults that most variants inherit (spec.md §4.1, "Shape: a
// sealed family of variants ... implements this common interface").
type Base struct{}

func (Base) NameImpliesType() bool                       { return false }
func (Base) Invisible() bool                              { return false }
func (Base) HubPriority(float64) int                       { return -1 }
func (Base) CanTakeSecant() bool                            { return false }
func (Base) CanBeChild(float64) bool                        { return false }
func (Base) MaxTreeWidth(float64) int                       { return 0 }
func (Base) MaxDoubleMarks(float64, JoiningType, int) int    { return 0 }
func (Base) IsPseudoCursive(float64) bool                   { return false }
func (Base) IsShadable() bool                               { return false }
func (Base) FixedY() bool                                   { return false }
func (Base) CalculateDiacriticAngles() map[anchor.Name]geom.Angle { return nil }
func (Base) GuaranteedGlyphClass() (layout.GlyphClass, bool)      { return layout.ClassUnknown, false }
func (Base) ContextIn() geom.Context                         { return geom.NoContext }
func (Base) ContextOut() geom.Context                         { return geom.NoContext }
