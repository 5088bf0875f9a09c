package layout

import "fmt"

// Tag is a four-character OpenType feature or script tag (e.g. "rlig",
// "latn"). Unlike the teacher's `ot.Tag`, which packs a tag into a uint32
// for reading binary font tables, this Tag is a plain string: the core only
// ever produces tags, never parses them out of a byte stream.
type Tag string

// LookupFlag mirrors the OpenType lookup flag bits relevant to rule
// generation.
type LookupFlag uint16

const (
	RightToLeft        LookupFlag = 1 << 0
	IgnoreBaseGlyphs    LookupFlag = 1 << 1
	IgnoreLigatures     LookupFlag = 1 << 2
	IgnoreMarks         LookupFlag = 1 << 3
	UseMarkFilteringSet LookupFlag = 1 << 4
)

// Direction is the order rules within a lookup are matched against the
// glyph stream.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

// Lookup is an OpenType Layout lookup: an optional feature tag (absent for
// named/anonymous lookups chained into from other lookups), a language tag,
// flags, an optional mark-filtering-set class name, a match direction, and
// an ordered list of Rules.
type Lookup struct {
	Name             string // named-lookup key, empty for feature-attached anonymous lookups
	Feature          Tag    // empty if this is a purely named lookup
	Script           Tag
	Language         Tag
	Flags            LookupFlag
	MarkFilteringSet string
	Direction        Direction
	Rules            []Rule
}

// NewLookup creates a Lookup, automatically setting UseMarkFilteringSet
// when a mark filtering set is given, and rejecting the combination of
// IgnoreMarks with a mark filtering set (the two are mutually exclusive
// per spec.md §4.3).
func NewLookup(feature, script, language Tag, flags LookupFlag, markFilteringSet string, direction Direction) (*Lookup, error) {
	if markFilteringSet != "" {
		if flags&IgnoreMarks != 0 {
			return nil, fmt.Errorf("layout: IgnoreMarks and a mark filtering set are mutually exclusive")
		}
		flags |= UseMarkFilteringSet
	}
	return &Lookup{
		Feature:           feature,
		Script:            script,
		Language:          language,
		Flags:             flags,
		MarkFilteringSet:  markFilteringSet,
		Direction:         direction,
	}, nil
}

// AppendRule validates and appends r.
func (l *Lookup) AppendRule(r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	l.Rules = append(l.Rules, r)
	return nil
}

// knownFeatures is the fixed set of feature tags the Layout compiler
// accepts, mirroring a Duployan font's actual feature list. Each entry
// records whether the (feature, script) combination is required (always
// applied) or discretionary (applied only if a shaper/user opts in).
var knownFeatures = map[Tag]bool{
	"ccmp": true, "abvs": false, "blws": false, "psts": false, "pres": false,
	"rlig": true, "liga": true, "calt": true, "locl": false,
	"curs": true, "dist": true, "mark": true, "mkmk": true, "abvm": false, "blwm": false,
	"rclt": true, "valt": false,
}

var knownScripts = map[Tag]bool{
	"dupl": true, "DFLT": true,
}

// ValidateFeature reports an error if feature or script is not among the
// fixed set the Layout compiler recognizes (spec.md §4.3: "Every feature
// tag is validated against a fixed set of known features and scripts").
func ValidateFeature(feature, script Tag) error {
	if feature != "" {
		if _, ok := knownFeatures[feature]; !ok {
			return fmt.Errorf("layout: unknown feature tag %q", feature)
		}
	}
	if script != "" {
		if _, ok := knownScripts[script]; !ok {
			return fmt.Errorf("layout: unknown script tag %q", script)
		}
	}
	return nil
}

// IsRequired reports whether (feature, script) is always applied, which
// unlocks the "remove unconditionally substituted schemas" add_rule
// optimization (spec.md §4.4).
func IsRequired(feature, script Tag) bool {
	if feature == "" {
		return false
	}
	return knownFeatures[feature]
}
