// Package phase implements the fixed-point phase runner that drives both
// the main (GSUB) passes and the marker (width/position) passes: each
// phase inspects the schemas produced so far and emits layout.Lookups,
// iterating until it stops discovering schemas its own rules introduced.
// See spec.md §4.4.
package phase

import (
	"fmt"

	"github.com/dscorbett/duployan-go/layout"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("duployan.phase")
}

// Builder is the shared, mutable state a phase function may read and
// extend: the growing set of lookups a phase is assembling, plus a handle
// back to the schema arena for resolving IDs.
type Builder struct {
	Schemas *schema.Set
	Lookups []*layout.Lookup
}

// AddLookup appends a fresh lookup to the builder and returns it. Phases
// call this only on their first iteration; subsequent iterations reuse
// Builder.Lookups[i] by index (spec.md §4.4, "the length of that list is
// fixed after the first iteration").
func (b *Builder) AddLookup(l *layout.Lookup) *layout.Lookup {
	b.Lookups = append(b.Lookups, l)
	return l
}

// AddRuleFunc is the signature a phase uses to register a rule against a
// specific lookup, subject to the add_rule policies (spec.md §4.4).
type AddRuleFunc func(lookup *layout.Lookup, rule layout.Rule)

// Func is the signature of a single phase (spec.md §4.4): given the
// builder, the schemas present before this phase ran at all
// (originalSchemas), every schema visible to this iteration (schemas),
// and the schemas newly introduced since the phase's own previous
// iteration (newSchemas), plus namespaced class/named-lookup registries
// and an add_rule callback, it returns the list of lookups it produced
// this iteration (by identity, matching prior iterations after the
// first).
type Func func(
	b *Builder,
	originalSchemas []*schema.ID,
	schemas []*schema.ID,
	newSchemas []*schema.ID,
	classes *ClassRegistry,
	namedLookups *LookupRegistry,
	addRule AddRuleFunc,
) ([]*layout.Lookup, error)

// Phase pairs a Func with the identity used to derive its PrefixView
// namespace (spec.md §4.4, "The prefix is derived from the phase's
// identity").
type Phase struct {
	Name string
	Run  Func
}

// Run drives phase p to a fixed point against the given schema set,
// implementing the iteration contract of spec.md §4.4.
//
// allInputSchemas accumulates every schema ID ever seen as an input to
// any lookup in this phase; it is used to decide, for a lookup with
// feedback, which output schemas are genuinely new.
func Run(p Phase, set *schema.Set, originalSchemas []*schema.ID) ([]*layout.Lookup, error) {
	classes := newClassRegistry(p.Name)
	namedLookups := newLookupRegistry(p.Name)
	b := &Builder{Schemas: set}

	allInputSchemas := make(map[schema.ID]bool)
	outputSchemas := make(map[schema.ID]bool)
	seen := make(map[schema.ID]bool)
	for _, id := range originalSchemas {
		seen[*id] = true
	}

	newSchemas := originalSchemas
	allSchemas := append([]*schema.ID(nil), originalSchemas...)

	iteration := 0
	var lookups []*layout.Lookup
	for len(newSchemas) > 0 {
		autochthonous := make(map[schema.ID]bool)
		if iteration > 0 {
			for _, id := range newSchemas {
				autochthonous[*id] = true
			}
		}

		addRule := func(lookup *layout.Lookup, rule layout.Rule) {
			addRuleImpl(b, lookup, rule, autochthonous, outputSchemas, classes, namedLookups)
		}

		out, err := p.Run(b, originalSchemas, allSchemas, newSchemas, classes, namedLookups, addRule)
		if err != nil {
			return nil, fmt.Errorf("phase %s: iteration %d: %w", p.Name, iteration, err)
		}
		if iteration > 0 && len(out) != len(lookups) {
			return nil, fmt.Errorf("phase %s: iteration %d returned %d lookups, want %d", p.Name, iteration, len(out), len(lookups))
		}
		lookups = out

		for _, id := range newSchemas {
			allInputSchemas[*id] = true
		}

		hasFeedback := false
		for _, l := range lookups {
			if lookupHasFeedback(l) {
				hasFeedback = true
				break
			}
		}

		if !hasFeedback {
			break
		}

		var next []*schema.ID
		for id := range outputSchemas {
			if !allInputSchemas[id] && !seen[id] {
				idCopy := id
				next = append(next, &idCopy)
				seen[id] = true
				allSchemas = append(allSchemas, &idCopy)
			}
		}
		newSchemas = next
		iteration++
	}

	tracer().Infof("phase %s: converged after %d iteration(s), %d lookup(s)", p.Name, iteration+1, len(lookups))
	return lookups, nil
}

// lookupHasFeedback reports whether any rule in l has a non-empty
// backtrack (or lookahead, for a reverse lookup), per spec.md §4.4.
func lookupHasFeedback(l *layout.Lookup) bool {
	for _, r := range l.Rules {
		if r.HasFeedback(l.Direction == layout.Reverse) {
			return true
		}
	}
	return false
}
