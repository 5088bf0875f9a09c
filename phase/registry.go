package phase

import (
	"strings"

	"github.com/dscorbett/duployan-go/layout"
)

// globalPrefix marks a class or named-lookup name as bypassing
// per-phase namespacing (spec.md §4.4, "a name prefixed global.. bypasses
// namespacing").
const globalPrefix = "global.."

// namespace prepends name's phase so two phases may reuse the same class
// or lookup name without conflict, unless name already carries the global
// escape prefix.
func namespace(phaseName, name string) string {
	if strings.HasPrefix(name, globalPrefix) {
		return name
	}
	return phaseName + ".." + name
}

// ClassRegistry is the PrefixView over layout.Class values: a phase refers
// to classes by their bare name, and the registry resolves the namespaced
// storage key (spec.md §4.4, "Classes and named lookups referenced by
// rules are namespaced per phase via a PrefixView").
type ClassRegistry struct {
	phaseName string
	classes   map[string]*layout.Class
}

func newClassRegistry(phaseName string) *ClassRegistry {
	return &ClassRegistry{phaseName: phaseName, classes: make(map[string]*layout.Class)}
}

// Get returns the class for name, creating it empty on first reference.
func (r *ClassRegistry) Get(name string) *layout.Class {
	key := namespace(r.phaseName, name)
	c, ok := r.classes[key]
	if !ok {
		c = layout.NewClass(key)
		r.classes[key] = c
	}
	return c
}

// All returns every class this registry has created, keyed by their
// namespaced name.
func (r *ClassRegistry) All() map[string]*layout.Class {
	return r.classes
}

// LookupRegistry is the PrefixView over named (non-feature-attached)
// lookups, analogous to ClassRegistry.
type LookupRegistry struct {
	phaseName string
	lookups   map[string]*layout.Lookup
}

func newLookupRegistry(phaseName string) *LookupRegistry {
	return &LookupRegistry{phaseName: phaseName, lookups: make(map[string]*layout.Lookup)}
}

// Get returns the named lookup, creating it on first reference.
func (r *LookupRegistry) Get(name string) *layout.Lookup {
	key := namespace(r.phaseName, name)
	l, ok := r.lookups[key]
	if !ok {
		l = &layout.Lookup{Name: key}
		r.lookups[key] = l
	}
	return l
}

// All returns every named lookup, keyed by namespaced name.
func (r *LookupRegistry) All() map[string]*layout.Lookup {
	return r.lookups
}
