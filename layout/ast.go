package layout

import "fmt"

// Statement is one feature-file AST node produced from a Rule. The core
// never serializes these to text itself (that is the FEA-merging
// collaborator's job, out of scope per spec.md §1); it only builds the
// structured tree downstream tooling consumes.
type Statement interface {
	statement()
}

// SingleSubst is `sub a by b;` for a single non-contextual input.
type SingleSubst struct {
	Input, Output Member
}

func (SingleSubst) statement() {}

// MultipleSubst is `sub a by b c;`: one input glyph maps to several output
// glyphs. ToStatements returns a single MultipleSubst for every
// non-contextual, single-input rule with several outputs, whether its
// members are glyphs or classes; class forms are not unrolled into one
// MultipleSubst per position.
type MultipleSubst struct {
	Input  Member
	Output []Member
}

func (MultipleSubst) statement() {}

// LigatureSubst is `sub a b by c;`: several input glyphs ligate to one
// output glyph. ToStatements produces one only when the output is a single
// glyph; a rule whose output is a class is not unrolled and yields an
// error.
type LigatureSubst struct {
	Input  []Member
	Output Member
}

func (LigatureSubst) statement() {}

// ChainContextSubst is `sub backtrack input' lookahead by-lookups;`: a
// contextual rule that chains into named lookups rather than substituting
// directly.
type ChainContextSubst struct {
	Backtrack, Input, Lookahead []Member
	Lookups                     []LookupRef
}

func (ChainContextSubst) statement() {}

// SinglePos is `pos a <xPlacement 0 xAdvance 0 0>;`: single-adjustment
// positioning, one entry per input glyph.
type SinglePos struct {
	Input       []Member
	XPlacements []int
	XAdvances   []int
}

func (SinglePos) statement() {}

// ToStatements converts r into one or more Statements, choosing the
// conversion per spec.md §4.3.
func (r Rule) ToStatements() ([]Statement, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	switch {
	case len(r.XPlacements) > 0 || len(r.XAdvances) > 0:
		return []Statement{SinglePos{Input: r.Input, XPlacements: r.XPlacements, XAdvances: r.XAdvances}}, nil

	case len(r.Lookups) > 0:
		return []Statement{ChainContextSubst{
			Backtrack: r.Backtrack,
			Input:     r.Input,
			Lookahead: r.Lookahead,
			Lookups:   r.Lookups,
		}}, nil

	case len(r.Backtrack) == 0 && len(r.Lookahead) == 0 && len(r.Input) == 1:
		// Non-contextual, single input.
		if len(r.Output) == 1 {
			return []Statement{SingleSubst{Input: r.Input[0], Output: r.Output[0]}}, nil
		}
		return []Statement{MultipleSubst{Input: r.Input[0], Output: r.Output}}, nil

	case len(r.Input) > 1 && len(r.Output) == 1:
		return unrollLigature(r)

	default:
		return nil, fmt.Errorf("layout: rule shape not representable as a single FEA statement (backtrack=%d input=%d lookahead=%d output=%d)",
			len(r.Backtrack), len(r.Input), len(r.Lookahead), len(r.Output))
	}
}

// unrollLigature converts a ligature-substitution rule whose output is a
// single glyph into one LigatureSubst. A rule whose output is a class
// (which FEA cannot express as `sub [a b] [c d] by [e f];`) is not
// expanded per position: it returns an error.
func unrollLigature(r Rule) ([]Statement, error) {
	if !r.Output[0].IsClass() {
		return []Statement{LigatureSubst{Input: r.Input, Output: r.Output[0]}}, nil
	}
	return nil, fmt.Errorf("layout: class-output ligature substitution needs caller-supplied per-glyph class members to unroll")
}
