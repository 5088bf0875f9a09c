// Package schema defines Schema, the unit that becomes a glyph: the
// binding of a Shape to a Unicode code point (or ligature sequence), size,
// joining behaviour, anchors, and marks. See spec.md §3, §4.2.
package schema

import (
	"fmt"

	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/layout"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("duployan.schema")
}

// Ignorability classifies whether a schema's glyph is ignored for topography
// purposes (spec.md §3).
type Ignorability int

const (
	DefaultNo Ignorability = iota
	DefaultYes
	OverriddenNo
)

// Widthless classifies a schema's widthlessness, which may be "unset" until
// a marker phase decides it (spec.md §3).
type Widthless int

const (
	WidthlessUnset Widthless = iota
	WidthlessNo
	WidthlessYes
)

// ID is an arena index into a Set's schema slice, used in place of the
// reference implementation's direct cyclic object references
// (canonical_schema, lookalike_group), per Design Note "Arena + indices for
// cyclic references".
type ID int

// NoID is the distinguished "no schema" index.
const NoID ID = -1

// Schema is the unit that becomes a glyph.
type Schema struct {
	ID ID

	// CodePoints holds zero code points (for a pure marker/invisible
	// schema), one (an ordinary letter), or several (a ligature).
	CodePoints []rune

	Shape         shape.Shape
	OriginalShape shape.Shape // the shape variant before contextualization

	Size        float64
	JoiningType shape.JoiningType
	SideBearing float64

	Child  bool
	Anchor *anchor.Name // set iff this schema attaches as a mark under this anchor
	Marks  []ID         // mark schemas attached to this one; mutually exclusive with Anchor

	Widthless Widthless

	Ignorability    Ignorability
	ShadingAllowed  bool
	Encirclable     bool

	ContextIn, ContextOut geom.Context

	Diphthong1, Diphthong2 bool

	PhaseIndex int // the phase at which this schema was introduced

	// OverlapBase and OverlapChild record, for a ChildEdge schema, the
	// base and child flanking the overlap-control token it replaced, set
	// once by validateOverlapControls while that adjacency is still
	// trustworthy. Later overlap-tree passes read these instead of
	// re-deriving neighbors by array position, since schemas those passes
	// append in between would otherwise corrupt a position-based lookup.
	// NoID on every schema that isn't a ChildEdge.
	OverlapBase, OverlapChild ID

	// AttachedTo records, for a ParentEdge schema, the schema addParentEdges
	// attached it to. NoID on every schema that isn't a ParentEdge.
	AttachedTo ID

	// CanonicalSchema is NoID until sifting assigns an alias; reflexive
	// (equal to ID) is represented as NoID until assigned, per Design Note.
	CanonicalSchema ID
	// LookalikeGroup is a group-id, not a direct reference, per Design Note.
	LookalikeGroup int

	// name caches the derived glyph name once computed (see name.go).
	name string
}

// Validate checks the structural invariants of spec.md §3 ("Invariants")
// and §7 ("Assertions guard: ... Schema invariants").
func (s *Schema) Validate() error {
	if len(s.Marks) > 0 && s.Anchor != nil {
		return fmt.Errorf("schema: cannot have both marks and an anchor (cps=%v)", s.CodePoints)
	}
	if s.Widthless == WidthlessYes && s.Anchor == nil {
		return fmt.Errorf("schema: a widthless schema must have an anchor (cps=%v)", s.CodePoints)
	}
	return nil
}

// GlyphClass determines the GDEF glyph class per spec.md §3: the shape's
// guarantee first, else anchor/child implies MARK, else joining_type
// determines BLOCKER vs JOINER.
func (s *Schema) GlyphClass() layout.GlyphClass {
	if gc, ok := s.Shape.GuaranteedGlyphClass(); ok {
		return gc
	}
	if s.Anchor != nil || s.Child {
		return layout.Mark
	}
	if s.JoiningType == shape.NonJoining {
		return layout.Blocker
	}
	return layout.Joiner
}

// GlyphName implements layout.Glyph so a Schema can appear directly in
// Rule sequences.
func (s *Schema) GlyphName() string {
	if s.name == "" {
		tracer().Errorf("schema: GlyphName called before name assignment (cps=%v)", s.CodePoints)
	}
	return s.name
}

// SetName is called once by the naming pass (name.go) to fix the schema's
// canonical glyph name.
func (s *Schema) SetName(name string) { s.name = name }

// GroupKey is the value returned by Group(): a hashable built from every
// attribute that makes two schemas interchangeable as glyph definitions
// (spec.md §4.2, "group() returns a hashable...").
type GroupKey struct {
	Ignorability Ignorability
	ShapeGroup   any
	Size         float64
	JoiningType  shape.JoiningType
	SideBearing  float64
	Child        bool
	HasAnchor    bool
	Anchor       anchor.Name
	Widthless    Widthless
	MarkGroups   string
	GlyphClass   layout.GlyphClass
	NoContextIn  bool
	NoContextOut bool
}

// Group returns the dedup identity for s. Two schemas with equal Group()
// are interchangeable as glyph definitions (spec.md §4.2).
func (s *Schema) Group(resolve func(ID) *Schema) GroupKey {
	k := GroupKey{
		Ignorability: s.Ignorability,
		ShapeGroup:   s.Shape.Group(),
		Size:         s.Size,
		JoiningType:  s.JoiningType,
		SideBearing:  s.SideBearing,
		Child:        s.Child,
		Widthless:    s.Widthless,
		GlyphClass:   s.GlyphClass(),
		NoContextIn:  s.ContextIn.IsNoContext() || s.Diphthong1,
		NoContextOut: s.ContextOut.IsNoContext() || s.Diphthong2,
	}
	if s.Anchor != nil {
		k.HasAnchor = true
		k.Anchor = *s.Anchor
	}
	for _, m := range s.Marks {
		ms := resolve(m)
		k.MarkGroups += fmt.Sprintf("|%v", ms.Group(resolve))
	}
	return k
}
