// Package sift implements the equivalence-class canonicalization of
// spec.md §4.7: after the main phases settle, schemas that produce
// interchangeable glyph definitions are grouped, one representative is
// picked per group, and a final rewrite lookup collapses every alias onto
// its canonical.
package sift

import (
	"sort"

	"github.com/dscorbett/duployan-go/layout"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("duployan.sift")
}

// Result is the outcome of sifting: the canonical schemas to emit (in a
// stable, deterministic order) and the rewrite lookup that maps every
// aliased schema onto its group's canonical.
type Result struct {
	Canonical []*schema.Schema
	Rewrite   *layout.Lookup
}

// Sift groups every schema in set by Schema.Group(), picks the
// SortKey()-least member of each group as canonical, records
// CanonicalSchema/LookalikeGroup on every member, and builds the rewrite
// lookup spec.md §4.7 calls for.
//
// Sifting preserves semantics because by construction all schemas in a
// group share shape, size, joining type, marks, and context state
// (spec.md §4.7): only the glyph *identity* collapses, never its meaning.
func Sift(set *schema.Set) (*Result, error) {
	groups := make(map[schema.GroupKey][]*schema.Schema)
	var order []schema.GroupKey
	for _, s := range set.All() {
		key := s.Group(set.Resolve)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}

	lookup, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
	if err != nil {
		return nil, err
	}

	var canonical []*schema.Schema
	for groupIndex, key := range order {
		members := groups[key]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].SortKey().Less(members[j].SortKey())
		})
		head := members[0]
		head.CanonicalSchema = head.ID
		head.LookalikeGroup = groupIndex
		canonical = append(canonical, head)

		for _, alias := range members[1:] {
			alias.CanonicalSchema = head.ID
			alias.LookalikeGroup = groupIndex
			if alias.GlyphName() == head.GlyphName() {
				continue
			}
			if err := lookup.AppendRule(layout.Rule{
				Input:  []layout.Member{layout.G(alias)},
				Output: []layout.Member{layout.G(head)},
			}); err != nil {
				return nil, err
			}
		}
	}

	tracer().Infof("sift: %d schemas collapsed to %d canonical glyphs", set.Len(), len(canonical))
	return &Result{Canonical: canonical, Rewrite: lookup}, nil
}
