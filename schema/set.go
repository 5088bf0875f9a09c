package schema

import "fmt"

// Set is the arena owning every Schema created during compilation. Schemas
// refer to each other by ID rather than by pointer so that cyclic
// references (a mark's base, a sifted alias) stay serializable and cheap
// to copy, per Design Note "Arena + indices for cyclic references".
type Set struct {
	schemas []*Schema
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{}
}

// Add appends s to the set and assigns its ID.
func (set *Set) Add(s *Schema) ID {
	id := ID(len(set.schemas))
	s.ID = id
	set.schemas = append(set.schemas, s)
	return id
}

// Get resolves id to its Schema. It panics on an out-of-range id, since a
// dangling schema reference is a programming error, not recoverable input.
func (set *Set) Get(id ID) *Schema {
	if id < 0 || int(id) >= len(set.schemas) {
		panic(fmt.Sprintf("schema: invalid id %d", id))
	}
	return set.schemas[id]
}

// All returns every schema currently in the set, in insertion order.
func (set *Set) All() []*Schema {
	return set.schemas
}

// Len returns the number of schemas in the set.
func (set *Set) Len() int {
	return len(set.schemas)
}

// Resolve adapts Get to the func(ID) *Schema shape Group expects.
func (set *Set) Resolve(id ID) *Schema {
	return set.Get(id)
}
