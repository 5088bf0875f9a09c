package shape

import (
	"fmt"

	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/layout"
)

// WidthMarkerRadix and WidthMarkerPlaces fix the positional-number
// encoding the width-marker arithmetic uses (spec.md §4.6).
const (
	WidthMarkerRadix  = 4
	WidthMarkerPlaces = 7
	// WidthMarkerMaxMagnitude is the largest width magnitude representable:
	// radix^places / 2.
	WidthMarkerMaxMagnitude = 8192
)

// DigitStatus tracks a bound/width digit's progress through the
// min/max-extremum and sign-extension passes, supplemented from
// original_source/sources/shapes.py's DigitStatus (SPEC_FULL.md §C.1).
type DigitStatus int

const (
	DigitNormal DigitStatus = iota
	DigitAlreadyNegative
	DigitDone
)

// --- Structural/control markers --------------------------------------------

// ContextMarker reifies a Context as a glyph so rules can match on it
// (spec.md §3).
type ContextMarker struct {
	Base
	Context     geom.Context
	IsContextIn bool
}

func (m *ContextMarker) Name(float64, JoiningType) string {
	dir := "out"
	if m.IsContextIn {
		dir = "in"
	}
	return fmt.Sprintf("%s.%v", dir, m.Context.Key())
}
func (m *ContextMarker) NameImpliesType() bool { return true }
func (m *ContextMarker) Group() any            { return m.Name(0, Orienting) }
func (m *ContextMarker) Invisible() bool       { return true }
func (m *ContextMarker) Draw(Glyph, DrawParams) (*BBox, error) { return nil, nil }
func (m *ContextMarker) Contextualize(geom.Context, geom.Context) Shape { return m }
func (m *ContextMarker) GuaranteedGlyphClass() (layout.GlyphClass, bool) {
	return layout.Mark, true
}

// Dummy is a placeholder shape with no geometry and no semantics beyond
// occupying a schema slot.
type Dummy struct{ Base }

func (Dummy) Name(float64, JoiningType) string                    { return "dummy" }
func (Dummy) NameImpliesType() bool                                { return true }
func (Dummy) Invisible() bool                                      { return true }
func (Dummy) Draw(Glyph, DrawParams) (*BBox, error)                { return nil, nil }
func (d Dummy) Contextualize(geom.Context, geom.Context) Shape      { return d }
func (Dummy) GuaranteedGlyphClass() (layout.GlyphClass, bool)       { return layout.ClassUnknown, false }

// Start marks the beginning of a width-marker chain.
type Start struct{ Base }

func (Start) Name(float64, JoiningType) string { return "start" }
func (Start) NameImpliesType() bool            { return true }
func (Start) Invisible() bool                  { return true }
func (s Start) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	glyph.AddAnchorPoint(anchor.Cursive, KindEntry, 0, 0)
	glyph.AddAnchorPoint(anchor.Cursive, KindExit, 0, 0)
	return nil, nil
}
func (s Start) Contextualize(geom.Context, geom.Context) Shape { return s }
func (Start) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// Hub is an invisible glyph marking a candidate baseline-anchor point, with
// priority (spec.md §3).
type Hub struct {
	Base
	Priority          int
	Continuing        bool
	Initial           bool
}

func (h *Hub) Name(float64, JoiningType) string { return fmt.Sprintf("hub.%d", h.Priority) }
func (h *Hub) NameImpliesType() bool             { return true }
func (h *Hub) Invisible() bool                   { return true }
func (h *Hub) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	glyph.AddAnchorPoint(anchor.Cursive, KindEntry, 0, 0)
	glyph.AddAnchorPoint(anchor.Cursive, KindExit, 0, 0)
	return nil, nil
}
func (h *Hub) Contextualize(geom.Context, geom.Context) Shape { return h }
func (h *Hub) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// End marks the end of a width-marker chain.
type End struct{ Base }

func (End) Name(float64, JoiningType) string { return "end" }
func (End) NameImpliesType() bool            { return true }
func (End) Invisible() bool                  { return true }
func (e End) Draw(Glyph, DrawParams) (*BBox, error) { return nil, nil }
func (e End) Contextualize(geom.Context, geom.Context) Shape { return e }
func (End) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// Carry is the overflow marker the sum_width_markers phase inserts between
// two digit glyphs when a digit sum overflows the radix (spec.md §4.6).
type Carry struct{ Base }

func (Carry) Name(float64, JoiningType) string { return "carry" }
func (Carry) NameImpliesType() bool            { return true }
func (Carry) Invisible() bool                  { return true }
func (c Carry) Draw(Glyph, DrawParams) (*BBox, error)           { return nil, nil }
func (c Carry) Contextualize(geom.Context, geom.Context) Shape { return c }
func (Carry) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// --- Width/position digit markers -----------------------------------------

// EntryWidthDigit is one base-WidthMarkerRadix digit of a glyph's entry
// (left) width.
type EntryWidthDigit struct {
	Base
	Place, Digit int
}

func (d *EntryWidthDigit) Name(float64, JoiningType) string {
	return fmt.Sprintf("entry.%d.%d", d.Place, d.Digit)
}
func (d *EntryWidthDigit) NameImpliesType() bool { return true }
func (d *EntryWidthDigit) Invisible() bool       { return true }
func (d *EntryWidthDigit) Group() any            { return *d }
func (d *EntryWidthDigit) Draw(Glyph, DrawParams) (*BBox, error) { return nil, nil }
func (d *EntryWidthDigit) Contextualize(geom.Context, geom.Context) Shape { return d }
func (d *EntryWidthDigit) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// LeftBoundDigit is one digit of a glyph's running left-bound extremum.
type LeftBoundDigit struct {
	Base
	Place, Digit int
	Status       DigitStatus
}

func (d *LeftBoundDigit) Name(float64, JoiningType) string {
	return fmt.Sprintf("ldx.%d.%d", d.Place, d.Digit)
}
func (d *LeftBoundDigit) NameImpliesType() bool { return true }
func (d *LeftBoundDigit) Invisible() bool       { return true }
func (d *LeftBoundDigit) Group() any            { return *d }
func (d *LeftBoundDigit) Draw(Glyph, DrawParams) (*BBox, error) { return nil, nil }
func (d *LeftBoundDigit) Contextualize(geom.Context, geom.Context) Shape { return d }
func (d *LeftBoundDigit) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// RightBoundDigit is one digit of a glyph's running right-bound extremum.
type RightBoundDigit struct {
	Base
	Place, Digit int
	Status       DigitStatus
}

func (d *RightBoundDigit) Name(float64, JoiningType) string {
	return fmt.Sprintf("rdx.%d.%d", d.Place, d.Digit)
}
func (d *RightBoundDigit) NameImpliesType() bool { return true }
func (d *RightBoundDigit) Invisible() bool       { return true }
func (d *RightBoundDigit) Group() any            { return *d }
func (d *RightBoundDigit) Draw(Glyph, DrawParams) (*BBox, error) { return nil, nil }
func (d *RightBoundDigit) Contextualize(geom.Context, geom.Context) Shape { return d }
func (d *RightBoundDigit) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// AnchorWidthDigit is one digit of a per-anchor width (place x digit),
// i.e. how far an attaching mark's anchor must shift.
type AnchorWidthDigit struct {
	Base
	Place, Digit int
	Status       DigitStatus
}

func (d *AnchorWidthDigit) Name(float64, JoiningType) string {
	return fmt.Sprintf("adx.%d.%d", d.Place, d.Digit)
}
func (d *AnchorWidthDigit) NameImpliesType() bool { return true }
func (d *AnchorWidthDigit) Invisible() bool       { return true }
func (d *AnchorWidthDigit) Group() any            { return *d }
func (d *AnchorWidthDigit) Draw(Glyph, DrawParams) (*BBox, error) { return nil, nil }
func (d *AnchorWidthDigit) Contextualize(geom.Context, geom.Context) Shape { return d }
func (d *AnchorWidthDigit) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// Digit is the minimal interface the three digit kinds above share, used by
// WidthNumber.ToDigits.
type Digit interface {
	Shape
	digitValue() (place, value int)
}

func (d *EntryWidthDigit) digitValue() (int, int)  { return d.Place, d.Digit }
func (d *LeftBoundDigit) digitValue() (int, int)   { return d.Place, d.Digit }
func (d *RightBoundDigit) digitValue() (int, int)  { return d.Place, d.Digit }
func (d *AnchorWidthDigit) digitValue() (int, int) { return d.Place, d.Digit }

// DigitPlaceValue exposes a Digit's (place, value) pair to callers outside
// package shape, since digitValue itself is unexported (it exists only to
// keep Digit closed to this package's four concrete kinds).
func DigitPlaceValue(d Digit) (place, value int) { return d.digitValue() }

// WidthNumber is a single glyph that expands to a full digit run in a
// later single-iteration lookup, used for widths common enough (>=2
// occurrences) to deduplicate (spec.md §4.6).
type WidthNumber struct {
	Base
	Value int
	// NewDigit builds a digit shape for (place, value) in the kind this
	// WidthNumber expands to (EntryWidthDigit, LeftBoundDigit, etc).
	NewDigit func(place, value int) Digit
	Kind     string
}

func (w *WidthNumber) Name(float64, JoiningType) string { return fmt.Sprintf("wn.%s.%d", w.Kind, w.Value) }
func (w *WidthNumber) NameImpliesType() bool            { return true }
func (w *WidthNumber) Invisible() bool                  { return true }
func (w *WidthNumber) Group() any                       { return struct {
	Kind  string
	Value int
}{w.Kind, w.Value} }
func (w *WidthNumber) Draw(Glyph, DrawParams) (*BBox, error) { return nil, nil }
func (w *WidthNumber) Contextualize(geom.Context, geom.Context) Shape { return w }
func (w *WidthNumber) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// ToDigits expands w.Value into WidthMarkerPlaces digits, most significant
// first is NOT the convention used here: place 0 is least significant, as
// in the reference get_width_number.
func (w *WidthNumber) ToDigits() []Digit {
	v := w.Value
	digits := make([]Digit, WidthMarkerPlaces)
	for place := 0; place < WidthMarkerPlaces; place++ {
		digit := ((v % WidthMarkerRadix) + WidthMarkerRadix) % WidthMarkerRadix
		digits[place] = w.NewDigit(place, digit)
		v /= WidthMarkerRadix
	}
	return digits
}

// EncodeWidth converts a signed width magnitude into WidthMarkerPlaces
// base-WidthMarkerRadix digits using sign extension at the top place, per
// spec.md §4.6 ("The sign-extension trick at the highest place").
func EncodeWidth(width int) ([]int, error) {
	if width > WidthMarkerMaxMagnitude || width < -WidthMarkerMaxMagnitude {
		return nil, fmt.Errorf("shape: width %d exceeds maximum magnitude %d", width, WidthMarkerMaxMagnitude)
	}
	v := width
	if v < 0 {
		v += 1 << (2 * WidthMarkerPlaces) // radix^places == 4^7 == 2^14
	}
	digits := make([]int, WidthMarkerPlaces)
	for place := 0; place < WidthMarkerPlaces; place++ {
		digits[place] = v % WidthMarkerRadix
		v /= WidthMarkerRadix
	}
	return digits, nil
}

// DecodeWidth is the inverse of EncodeWidth, interpreting the top place as
// a sign bit when its value is >= radix/2.
func DecodeWidth(digits []int) int {
	v := 0
	for place := len(digits) - 1; place >= 0; place-- {
		v = v*WidthMarkerRadix + digits[place]
	}
	top := digits[len(digits)-1]
	if top >= WidthMarkerRadix/2 {
		v -= 1 << (2 * WidthMarkerPlaces)
	}
	return v
}

// --- Selectors and tree markers -------------------------------------------

// MarkAnchorSelector records which anchor a following mark attaches as.
type MarkAnchorSelector struct {
	Base
	Anchor anchor.Name
}

func (m *MarkAnchorSelector) Name(float64, JoiningType) string { return "anchor." + string(m.Anchor) }
func (m *MarkAnchorSelector) NameImpliesType() bool             { return true }
func (m *MarkAnchorSelector) Invisible() bool                   { return true }
func (m *MarkAnchorSelector) Draw(Glyph, DrawParams) (*BBox, error) { return nil, nil }
func (m *MarkAnchorSelector) Contextualize(geom.Context, geom.Context) Shape { return m }
func (m *MarkAnchorSelector) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// GlyphClassSelector reifies a GDEF glyph class as a glyph, used by the
// width-marker chain to let later GPOS rules match on a base's class.
type GlyphClassSelector struct {
	Base
	Class layout.GlyphClass
}

func (g *GlyphClassSelector) Name(float64, JoiningType) string { return "class." + g.Class.String() }
func (g *GlyphClassSelector) NameImpliesType() bool             { return true }
func (g *GlyphClassSelector) Invisible() bool                   { return true }
func (g *GlyphClassSelector) Draw(Glyph, DrawParams) (*BBox, error) { return nil, nil }
func (g *GlyphClassSelector) Contextualize(geom.Context, geom.Context) Shape { return g }
func (g *GlyphClassSelector) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// InitialSecantMarker is inserted after an initial secant so downstream
// phases can detect "this letter started with a secant" (spec.md §4.5
// step 5).
type InitialSecantMarker struct{ Base }

func (InitialSecantMarker) Name(float64, JoiningType) string { return "secant.initial" }
func (InitialSecantMarker) NameImpliesType() bool             { return true }
func (InitialSecantMarker) Group() any                        { return "initial_secant_marker" }
func (InitialSecantMarker) Invisible() bool                    { return true }
func (m InitialSecantMarker) Draw(Glyph, DrawParams) (*BBox, error) { return nil, nil }
func (m InitialSecantMarker) Contextualize(geom.Context, geom.Context) Shape { return m }
func (InitialSecantMarker) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// ContinuingOverlapS is the base for continuing-overlap markers (U+1BCA1).
type ContinuingOverlapS struct{ Base }

func (ContinuingOverlapS) Name(float64, JoiningType) string { return "overlap.continuing" }
func (ContinuingOverlapS) NameImpliesType() bool             { return true }
func (ContinuingOverlapS) Invisible() bool                   { return true }
func (c ContinuingOverlapS) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	glyph.AddAnchorPoint(anchor.ContinuingOverlap, KindEntry, 0, 0)
	glyph.AddAnchorPoint(anchor.ContinuingOverlap, KindExit, 0, 0)
	return nil, nil
}
func (c ContinuingOverlapS) Contextualize(geom.Context, geom.Context) Shape { return c }
func (ContinuingOverlapS) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// ContinuingOverlap is the concrete U+1BCA1 glyph.
type ContinuingOverlap struct{ ContinuingOverlapS }

// ChildEdge represents an overlap-tree edge to a child at Lineage, a
// sequence of (layer, index) pairs describing the edge's position in the
// tree (spec.md §4.5 step 6, step 11).
type ChildEdge struct {
	Base
	Lineage []geom.Point // (layer, index) pairs encoded as points for hashing convenience
}

func (c *ChildEdge) Name(float64, JoiningType) string { return fmt.Sprintf("edge.child.%v", c.Lineage) }
func (c *ChildEdge) NameImpliesType() bool             { return true }
func (c *ChildEdge) Invisible() bool                   { return true }
func (c *ChildEdge) Group() any                        { return c.Name(0, Orienting) }
func (c *ChildEdge) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	glyph.AddAnchorPoint(anchor.ChildEdge(0, 0), KindMark, 0, 0)
	return nil, nil
}
func (c *ChildEdge) Contextualize(geom.Context, geom.Context) Shape { return c }
func (c *ChildEdge) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// ParentEdge represents the edge from a joiner up to its parent (or, if it
// is a root, nothing).
type ParentEdge struct {
	Base
	Lineage []geom.Point
}

func (p *ParentEdge) Name(float64, JoiningType) string { return fmt.Sprintf("edge.parent.%v", p.Lineage) }
func (p *ParentEdge) NameImpliesType() bool             { return true }
func (p *ParentEdge) Invisible() bool                   { return true }
func (p *ParentEdge) Group() any                        { return p.Name(0, Orienting) }
func (p *ParentEdge) Draw(glyph Glyph, dp DrawParams) (*BBox, error) {
	glyph.AddAnchorPoint(anchor.ParentEdge, KindEntry, 0, 0)
	return nil, nil
}
func (p *ParentEdge) Contextualize(geom.Context, geom.Context) Shape { return p }
func (p *ParentEdge) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// RootOnlyParentEdge is a ParentEdge variant valid only at the root of an
// overlap tree.
type RootOnlyParentEdge struct{ ParentEdge }

// --- Space, invalid, and notdef glyphs ------------------------------------

// Space is a blank glyph of a given width, used both for literal spaces
// and as a shim between real-cursive and pseudo-cursive neighbours
// (spec.md §3, §4.6 "add_shims_for_pseudo_cursive").
type Space struct {
	Base
	Width float64
}

func (s *Space) Name(float64, JoiningType) string { return fmt.Sprintf("space.%g", s.Width) }
func (s *Space) Group() any                        { return s.Width }
func (s *Space) Invisible() bool                    { return true }
func (s *Space) HubPriority(float64) int            { return -1 }
func (s *Space) IsPseudoCursive(float64) bool       { return true }
func (s *Space) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	glyph.AddAnchorPoint(anchor.Cursive, KindEntry, 0, 0)
	glyph.AddAnchorPoint(anchor.Cursive, KindExit, s.Width, 0)
	return nil, nil
}
func (s *Space) Contextualize(geom.Context, geom.Context) Shape { return s }
func (s *Space) ContextIn() geom.Context                         { return geom.NoContext }
func (s *Space) ContextOut() geom.Context                        { return geom.NoContext }

// InvisibleMark is a combining mark with no visible geometry, used by
// phases that need a placeholder mark slot.
type InvisibleMark struct{ Base }

func (InvisibleMark) Name(float64, JoiningType) string { return "invisible" }
func (InvisibleMark) Group() any                        { return "invisible_mark" }
func (InvisibleMark) Invisible() bool                   { return true }
func (m InvisibleMark) Draw(Glyph, DrawParams) (*BBox, error)           { return nil, nil }
func (m InvisibleMark) Contextualize(geom.Context, geom.Context) Shape { return m }
func (InvisibleMark) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// Bound draws the dotted-square placeholder glyph shared by every "invalid"
// error glyph, supplemented from original_source (SPEC_FULL.md §C.4).
type Bound struct{ Base }

func (Bound) Name(float64, JoiningType) string { return "bound" }
func (Bound) Group() any                        { return "bound" }
func (b Bound) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	r := RADIUS * p.Size
	pen := glyph.Pen()
	pen.MoveTo(geom.Point{X: -r, Y: -r})
	pen.LineTo(geom.Point{X: r, Y: -r})
	pen.LineTo(geom.Point{X: r, Y: r})
	pen.LineTo(geom.Point{X: -r, Y: r})
	pen.LineTo(geom.Point{X: -r, Y: -r})
	pen.EndPath()
	return nil, nil
}
func (b Bound) Contextualize(geom.Context, geom.Context) Shape { return b }
func (b Bound) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Blocker, true }

// Notdef is the font's required ".notdef" glyph.
type Notdef struct{ Base }

func (Notdef) Name(float64, JoiningType) string { return "notdef" }
func (Notdef) NameImpliesType() bool             { return true }
func (Notdef) Group() any                        { return "notdef" }
func (n Notdef) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	return Bound{}.Draw(glyph, p)
}
func (n Notdef) Contextualize(geom.Context, geom.Context) Shape { return n }
func (n Notdef) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Blocker, true }

// ValidDTLS is a U+1BC9D that has been confirmed to follow a shadable
// shape.
type ValidDTLS struct{ Base }

func (ValidDTLS) Name(float64, JoiningType) string { return "dtls" }
func (ValidDTLS) NameImpliesType() bool             { return true }
func (ValidDTLS) Group() any                        { return "valid_dtls" }
func (ValidDTLS) Invisible() bool                    { return true }
func (v ValidDTLS) Draw(Glyph, DrawParams) (*BBox, error)           { return nil, nil }
func (v ValidDTLS) Contextualize(geom.Context, geom.Context) Shape { return v }
func (ValidDTLS) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.Mark, true }

// InvalidDTLS draws as a dotted-square error glyph, representing a DTLS
// that followed a non-shadable shape (spec.md §7).
type InvalidDTLS struct{ *Complex }

// NewInvalidDTLS builds the InvalidDTLS error glyph.
func NewInvalidDTLS() *InvalidDTLS {
	return &InvalidDTLS{Complex: NewComplex([]Instruction{{SizeScalar: 1, Sub: Bound{}}})}
}

// InvalidOverlap draws as a dotted-square error glyph, representing an
// overlap control in an illegal position (spec.md §7).
type InvalidOverlap struct {
	*Complex
	ContinuingOverlap bool
}

// NewInvalidOverlap builds the InvalidOverlap error glyph.
func NewInvalidOverlap(continuing bool) *InvalidOverlap {
	return &InvalidOverlap{Complex: NewComplex([]Instruction{{SizeScalar: 1, Sub: Bound{}}}), ContinuingOverlap: continuing}
}

// InvalidStep draws as a dotted-square error glyph, representing a step
// character (U+1BCA2/3) in an illegal position (spec.md §7).
type InvalidStep struct{ *Complex }

// NewInvalidStep builds the InvalidStep error glyph.
func NewInvalidStep() *InvalidStep {
	return &InvalidStep{Complex: NewComplex([]Instruction{{SizeScalar: 1, Sub: Bound{}}})}
}
