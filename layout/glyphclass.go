// Package layout models the OpenType Layout rule tree the core produces:
// Rule, Lookup, Class, GDEF glyph classes, and their conversion to
// feature-file AST statements. It is the production-side counterpart of
// the teacher's read-side `ot` package (GSUB/GPOS table types) and
// `otlayout` package (feature-tag surface).
package layout

// GlyphClass is the GDEF glyph class attached to every drawn glyph.
type GlyphClass int

const (
	// ClassUnknown means no class has been assigned yet.
	ClassUnknown GlyphClass = iota
	// Blocker is a non-joining glyph: it neither attaches cursively nor
	// carries marks.
	Blocker
	// Joiner is a glyph that participates in cursive attachment.
	Joiner
	// Mark is a glyph that attaches as a combining mark, either to a base
	// (anchor set) or to another mark (child/overlap).
	Mark
)

func (g GlyphClass) String() string {
	switch g {
	case Blocker:
		return "BLOCKER"
	case Joiner:
		return "JOINER"
	case Mark:
		return "MARK"
	default:
		return "UNKNOWN"
	}
}
