package schema

import "golang.org/x/text/unicode/norm"

// SortKey orders schemas for canonical selection during sifting (spec.md
// §4.7, §4.2 "sort_key()"): prefer those with code points, prefer earlier
// phase origin, prefer NFD-normalized code points, prefer the original
// shape, prefer a shorter name. Lower keys sort first.
type SortKey struct {
	NoCodePoints   bool // true sorts after false
	PhaseIndex     int
	NotNFDNormal   bool // true sorts after false
	NotOriginal    bool // true sorts after false
	NameLength     int
}

// Less reports whether k should be selected as canonical ahead of other.
func (k SortKey) Less(other SortKey) bool {
	if k.NoCodePoints != other.NoCodePoints {
		return !k.NoCodePoints
	}
	if k.PhaseIndex != other.PhaseIndex {
		return k.PhaseIndex < other.PhaseIndex
	}
	if k.NotNFDNormal != other.NotNFDNormal {
		return !k.NotNFDNormal
	}
	if k.NotOriginal != other.NotOriginal {
		return !k.NotOriginal
	}
	return k.NameLength < other.NameLength
}

// SortKey computes s's SortKey. isNFDNormalized reports whether s's code
// points, taken together as a string, are already in NFD form — schemas
// built straight from input text should be, but ligature composition or
// phase rewriting can produce non-normalized sequences that lose that
// preference (spec.md §4.2, "prefer NFD-normalized code points").
func (s *Schema) SortKey() SortKey {
	k := SortKey{
		NoCodePoints: len(s.CodePoints) == 0,
		PhaseIndex:   s.PhaseIndex,
		NotOriginal:  s.Shape != s.OriginalShape,
		NameLength:   len(s.name),
	}
	if len(s.CodePoints) > 0 {
		k.NotNFDNormal = !isNFD(s.CodePoints)
	}
	return k
}

func isNFD(rs []rune) bool {
	return norm.NFD.IsNormalString(string(rs))
}
