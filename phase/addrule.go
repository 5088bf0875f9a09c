package phase

import (
	"github.com/dscorbett/duployan-go/layout"
	"github.com/dscorbett/duployan-go/schema"
)

// addRuleImpl implements the add_rule policies of spec.md §4.4.
func addRuleImpl(
	b *Builder,
	lookup *layout.Lookup,
	rule layout.Rule,
	autochthonous map[schema.ID]bool,
	outputSchemas map[schema.ID]bool,
	classes *ClassRegistry,
	namedLookups *LookupRegistry,
) {
	if allAutochthonous(rule, autochthonous) {
		tracer().Debugf("add_rule: dropping rule with only autochthonous input")
		return
	}

	for i, existing := range lookup.Rules {
		if existing.extends(rule) {
			tracer().Debugf("add_rule: dropping rule weakly extended by existing rule %d", i)
			return
		}
	}

	if err := lookup.AppendRule(rule); err != nil {
		tracer().Errorf("add_rule: %v", err)
		return
	}

	if lookup.Feature != "" && layout.IsRequired(lookup.Feature, lookup.Script) && rule.IsNonContextualSingleInput() {
		if onlyAppearsAsInput(lookup, rule) {
			if id, ok := schemaIDOf(rule.Input[0]); ok {
				delete(outputSchemas, id)
			}
		}
	}

	registerOutputs(rule.Output, outputSchemas, classes)
	for _, ref := range rule.Lookups {
		if named, ok := namedLookups.lookups[ref.Lookup]; ok {
			for _, r := range named.Rules {
				registerOutputs(r.Output, outputSchemas, classes)
			}
		}
	}
}

// allAutochthonous reports whether every input member of rule is a
// same-phase-produced schema, in which case adding the rule would re-match
// the phase's own output forever.
func allAutochthonous(rule layout.Rule, autochthonous map[schema.ID]bool) bool {
	if len(autochthonous) == 0 || len(rule.Input) == 0 {
		return false
	}
	for _, m := range rule.Input {
		if m.IsClass() {
			return false
		}
		id, ok := schemaIDOf(m)
		if !ok || !autochthonous[id] {
			return false
		}
	}
	return true
}

// onlyAppearsAsInput reports whether rule's single input schema never
// occurs elsewhere in lookup (as input, backtrack, lookahead, or output of
// any other rule), meaning it is guaranteed to be substituted away. rule
// has already been appended to lookup.Rules by the time this runs, so its
// own single occurrence is excluded from the count.
func onlyAppearsAsInput(lookup *layout.Lookup, rule layout.Rule) bool {
	id, ok := schemaIDOf(rule.Input[0])
	if !ok {
		return false
	}
	selfExcluded := false
	for _, r := range lookup.Rules {
		if !selfExcluded && len(r.Input) == 1 {
			if other, ok := schemaIDOf(r.Input[0]); ok && other == id &&
				len(r.Backtrack) == len(rule.Backtrack) && len(r.Lookahead) == len(rule.Lookahead) {
				selfExcluded = true
				continue
			}
		}
		for _, m := range allMembers(r) {
			if m.IsClass() {
				continue
			}
			if other, ok := schemaIDOf(m); ok && other == id {
				return false
			}
		}
	}
	return true
}

func allMembers(r layout.Rule) []layout.Member {
	all := make([]layout.Member, 0, len(r.Backtrack)+len(r.Input)+len(r.Lookahead)+len(r.Output))
	all = append(all, r.Backtrack...)
	all = append(all, r.Input...)
	all = append(all, r.Lookahead...)
	all = append(all, r.Output...)
	return all
}

func registerOutputs(members []layout.Member, outputSchemas map[schema.ID]bool, classes *ClassRegistry) {
	for _, m := range members {
		if m.IsClass() {
			if c, ok := classes.classes[m.ClassName]; ok {
				c.Freeze(0)
				for _, g := range c.Members() {
					if s, ok := g.(*schema.Schema); ok {
						outputSchemas[s.ID] = true
					}
				}
			}
			continue
		}
		if id, ok := schemaIDOf(m); ok {
			outputSchemas[id] = true
		}
	}
}

// schemaIDOf extracts the schema.ID a rule member refers to, if its
// underlying Glyph is a *schema.Schema.
func schemaIDOf(m layout.Member) (schema.ID, bool) {
	if m.Glyph == nil {
		return 0, false
	}
	s, ok := m.Glyph.(*schema.Schema)
	if !ok {
		return 0, false
	}
	return s.ID, true
}
