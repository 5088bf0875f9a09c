package layout

import "fmt"

// Glyph is the minimal interface a schema (or any other glyph-like value)
// must satisfy to appear in a Rule. It is intentionally small so that
// package layout never needs to import package schema, keeping the
// dependency edge one-directional (schema -> layout), matching Design Note
// "Context pass-through, not globals" in spirit: layout holds no reference
// back to its callers' richer types.
type Glyph interface {
	// GlyphName returns the canonical, stable glyph name.
	GlyphName() string
}

// Member is one element of a Rule's backtrack/input/lookahead/output
// sequence: either a single glyph or a reference to a namespaced Class.
type Member struct {
	Glyph     Glyph
	ClassName string // non-empty when this member refers to a class
}

// IsClass reports whether m refers to a class rather than a single glyph.
func (m Member) IsClass() bool { return m.ClassName != "" }

// G wraps a single glyph as a Member.
func G(g Glyph) Member { return Member{Glyph: g} }

// C wraps a class name as a Member.
func C(name string) Member { return Member{ClassName: name} }

// LookupRef chains into a named lookup at a given input position, used by
// GSUB rules whose effect is expressed as "apply lookup X at input glyph
// i" rather than a flat substitution.
type LookupRef struct {
	InputIndex int
	Lookup     string // named-lookup key
}

// Rule is a contextual substitution or single-adjustment positioning rule.
// Exactly one of Output, Lookups, or (XPlacements/XAdvances) must be set;
// this is asserted by Validate (spec.md §7, "Rule arity").
type Rule struct {
	Backtrack []Member
	Input     []Member
	Lookahead []Member

	Output []Member // GSUB: replace Input with Output

	Lookups []LookupRef // GSUB: chain into named lookups per input position

	XPlacements []int // GPOS single adjustment, parallel to Input
	XAdvances   []int // GPOS single adjustment, parallel to Input
}

// HasFeedback reports whether this rule has a non-empty backtrack (forward
// lookups) or lookahead (reverse lookups), per the phase runner's feedback
// rule (spec.md §4.4).
func (r Rule) HasFeedback(reverse bool) bool {
	if reverse {
		return len(r.Lookahead) > 0
	}
	return len(r.Backtrack) > 0
}

// Validate checks the "exactly one of outputs/lookups/positions" invariant
// and returns an error describing which combination was illegal.
func (r Rule) Validate() error {
	set := 0
	if len(r.Output) > 0 {
		set++
	}
	if len(r.Lookups) > 0 {
		set++
	}
	if len(r.XPlacements) > 0 || len(r.XAdvances) > 0 {
		set++
	}
	if set != 1 {
		return fmt.Errorf("layout: rule must set exactly one of outputs/lookups/positions, got %d", set)
	}
	if len(r.XPlacements) > 0 && len(r.XPlacements) != len(r.Input) {
		return fmt.Errorf("layout: x_placements length %d does not match input length %d", len(r.XPlacements), len(r.Input))
	}
	if len(r.XAdvances) > 0 && len(r.XAdvances) != len(r.Input) {
		return fmt.Errorf("layout: x_advances length %d does not match input length %d", len(r.XAdvances), len(r.Input))
	}
	return nil
}

// IsNonContextualSingleInput reports whether r is a single-input,
// non-contextual GSUB substitution (empty backtrack/lookahead, exactly one
// input member), the shape required_single_rule_removal optimization in
// add_rule looks for (spec.md §4.4).
func (r Rule) IsNonContextualSingleInput() bool {
	return len(r.Backtrack) == 0 && len(r.Lookahead) == 0 && len(r.Input) == 1 && len(r.Output) > 0
}

// extends reports whether candidate is a "weak extension" of existing: same
// Input, candidate's Backtrack is a suffix-compatible prefix extension and
// Lookahead a prefix-compatible suffix extension of existing's. Used by
// add_rule's deduplication (spec.md §4.4, "It deduplicates rules").
func (existing Rule) extends(candidate Rule) bool {
	if len(existing.Input) != len(candidate.Input) {
		return false
	}
	for i := range existing.Input {
		if !sameMember(existing.Input[i], candidate.Input[i]) {
			return false
		}
	}
	if len(candidate.Backtrack) < len(existing.Backtrack) {
		return false
	}
	offset := len(candidate.Backtrack) - len(existing.Backtrack)
	for i, m := range existing.Backtrack {
		if !sameMember(m, candidate.Backtrack[offset+i]) {
			return false
		}
	}
	if len(candidate.Lookahead) < len(existing.Lookahead) {
		return false
	}
	for i, m := range existing.Lookahead {
		if !sameMember(m, candidate.Lookahead[i]) {
			return false
		}
	}
	return true
}

func sameMember(a, b Member) bool {
	if a.IsClass() || b.IsClass() {
		return a.ClassName == b.ClassName
	}
	if a.Glyph == nil || b.Glyph == nil {
		return a.Glyph == b.Glyph
	}
	return a.Glyph.GlyphName() == b.Glyph.GlyphName()
}
