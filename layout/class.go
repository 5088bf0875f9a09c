package layout

import "fmt"

// Class is a named, ordered, freezable multiset of glyphs. Classes are
// namespaced per phase via PrefixView (see package phase); a name prefixed
// "global.." bypasses namespacing, by convention of the caller rather than
// anything package layout enforces.
type Class struct {
	name    string
	members []Glyph
	frozen  bool
	// frozenAtIteration records when Freeze was called, so the phase
	// runner can reject a rule that references a class after it was
	// frozen in an earlier iteration (spec.md §8: "no rule in L refers to
	// a class frozen strictly before L was extended with that rule" is
	// the inverse check performed on lookups; classes track their own
	// freeze point for symmetry and debuggability).
	frozenAtIteration int
}

// NewClass creates an empty, mutable class named name.
func NewClass(name string) *Class {
	return &Class{name: name, frozenAtIteration: -1}
}

// Name returns the class's namespaced name.
func (c *Class) Name() string { return c.name }

// Append adds g to the class. It panics if the class is frozen, since
// insertion into a frozen class would violate the stable-membership
// guarantee rules consuming it rely on.
func (c *Class) Append(g Glyph) {
	if c.frozen {
		panic(fmt.Sprintf("layout: cannot append to frozen class %q", c.name))
	}
	c.members = append(c.members, g)
}

// Freeze forbids further insertion. iteration identifies the phase
// iteration at which freezing happened, recorded for diagnostics.
func (c *Class) Freeze(iteration int) {
	if !c.frozen {
		c.frozen = true
		c.frozenAtIteration = iteration
	}
}

// Frozen reports whether the class has been frozen.
func (c *Class) Frozen() bool { return c.frozen }

// FrozenAtIteration returns the iteration at which Freeze was called, or -1
// if the class is not yet frozen.
func (c *Class) FrozenAtIteration() int { return c.frozenAtIteration }

// Members returns the class's current members in insertion order. The
// returned slice must not be mutated by the caller.
func (c *Class) Members() []Glyph { return c.members }

// Len returns the number of members currently in the class.
func (c *Class) Len() int { return len(c.members) }

// Contains reports whether g (by glyph name) is already a member.
func (c *Class) Contains(g Glyph) bool {
	for _, m := range c.members {
		if m.GlyphName() == g.GlyphName() {
			return true
		}
	}
	return false
}
