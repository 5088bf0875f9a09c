package schema

import (
	"fmt"
	"strings"
)

// MaxGlyphNameLength is the maximum length a generated glyph name may have
// before truncation and disambiguation kick in (spec.md §4.2 step 5).
const MaxGlyphNameLength = 63

// Namer derives and fixes canonical glyph names for a set of schemas,
// tracking collisions so each name is unique (spec.md §4.2).
type Namer struct {
	used map[string]bool
}

// NewNamer returns an empty Namer.
func NewNamer() *Namer {
	return &Namer{used: make(map[string]bool)}
}

// Name derives s's canonical glyph name, registers it against collisions,
// and calls s.SetName. It follows the six ordered rules of spec.md §4.2.
func (n *Namer) Name(s *Schema) (string, error) {
	var b strings.Builder

	// Step 1: code points, or shape-variant prefix.
	impliesType := s.Shape.NameImpliesType()
	if len(s.CodePoints) > 0 {
		parts := make([]string, len(s.CodePoints))
		for i, cp := range s.CodePoints {
			parts[i] = glyphNameForCodePoint(cp)
		}
		b.WriteString(strings.Join(parts, "_"))
		if len(s.CodePoints) > 1 {
			readable := make([]string, len(s.CodePoints))
			for i, cp := range s.CodePoints {
				readable[i] = readableNameForCodePoint(cp)
			}
			b.WriteString(".")
			b.WriteString(strings.Join(readable, "__"))
		}
	} else if !impliesType {
		b.WriteString("dupl.")
		b.WriteString(shapeVariantName(s.Shape))
	}

	// Step 2/3: shape-specific suffixes.
	suffix := s.Shape.Name(s.Size, s.JoiningType)
	if suffix != "" {
		b.WriteString(suffix)
	}
	if s.Anchor != nil {
		b.WriteString("_")
		b.WriteString(string(*s.Anchor))
	}
	if s.Diphthong1 {
		b.WriteString("_d1")
	}
	if s.Diphthong2 {
		b.WriteString("_d2")
	}
	if s.Child {
		b.WriteString("_sub")
	}

	name := b.String()

	// Step 4: shape implies type but there's no code point → prefix "_".
	if impliesType && len(s.CodePoints) == 0 {
		name = "_" + name
	}

	if name == "" {
		name = "_unnamed"
	}

	// Step 5: truncate, then disambiguate on collision.
	if len(name) > MaxGlyphNameLength {
		name = name[:MaxGlyphNameLength]
	}
	final := name
	if n.used[final] {
		for i := 1; ; i++ {
			candidate := fmt.Sprintf("%s._%x", truncateFor(name, i), i)
			if !n.used[candidate] {
				final = candidate
				break
			}
		}
	}
	n.used[final] = true

	// Step 6: round-trip assertion.
	if len(s.CodePoints) > 0 {
		if back, ok := codePointsFromGlyphName(final); ok {
			if !runesEqual(back, s.CodePoints) {
				tracer().Errorf("schema: name %q does not round-trip to code points %v", final, s.CodePoints)
				return "", fmt.Errorf("schema: naming round-trip failed for %v", s.CodePoints)
			}
		}
	}

	s.SetName(final)
	return final, nil
}

// truncateFor leaves room for the "._N" disambiguator suffix.
func truncateFor(name string, i int) string {
	suffix := fmt.Sprintf("._%x", i)
	max := MaxGlyphNameLength - len(suffix)
	if max < 0 {
		max = 0
	}
	if len(name) > max {
		return name[:max]
	}
	return name
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// shapeVariantName returns a short token identifying the shape's concrete
// Go type, used as the "dupl.<ShapeVariant>" prefix.
func shapeVariantName(s interface{ Group() any }) string {
	return fmt.Sprintf("%T", s)
}
