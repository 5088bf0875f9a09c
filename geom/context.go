package geom

// Context describes how one letter meets its neighbour: the angle and
// curvature sense exposed at the join, plus flags that several phases key
// on (topography ignoring, diphthong ligature boundaries). It corresponds
// to `utils.Context` in the reference implementation.
//
// Angle and Clockwise are pointers so that "absent" (no adjacent letter) is
// distinguishable from angle 0 / clockwise false. NO_CONTEXT is the
// distinguished value with both pointers nil and every flag false.
type Context struct {
	Angle    *Angle
	Clockwise *bool

	Minor                     bool
	IgnorableForTopography    bool
	DiphthongStart            bool
	DiphthongEnd              bool
}

// NoContext is the distinguished "no adjacent letter" value.
var NoContext = Context{}

// NewContext builds a Context with an angle and (optional) clockwise sense.
func NewContext(angle Angle, clockwise *bool) Context {
	a := angle
	return Context{Angle: &a, Clockwise: clockwise}
}

// HasAngle reports whether c carries an angle.
func (c Context) HasAngle() bool { return c.Angle != nil }

// HasClockwise reports whether c carries a curvature sense.
func (c Context) HasClockwise() bool { return c.Clockwise != nil }

// IsNoContext reports whether c is indistinguishable from NoContext for the
// purposes of contextualization (no angle, no clockwise, no flags set).
func (c Context) IsNoContext() bool {
	return c.Angle == nil && c.Clockwise == nil && !c.Minor &&
		!c.IgnorableForTopography && !c.DiphthongStart && !c.DiphthongEnd
}

// Equal reports value equality, comparing dereferenced Angle/Clockwise.
func (c Context) Equal(o Context) bool {
	if c.Minor != o.Minor || c.IgnorableForTopography != o.IgnorableForTopography ||
		c.DiphthongStart != o.DiphthongStart || c.DiphthongEnd != o.DiphthongEnd {
		return false
	}
	if (c.Angle == nil) != (o.Angle == nil) {
		return false
	}
	if c.Angle != nil && *c.Angle != *o.Angle {
		return false
	}
	if (c.Clockwise == nil) != (o.Clockwise == nil) {
		return false
	}
	if c.Clockwise != nil && *c.Clockwise != *o.Clockwise {
		return false
	}
	return true
}

// Key returns a hashable, comparable representation of c suitable for use
// as a map key (Context itself holds pointers and is not comparable with
// ==). Two contexts with Equal(...)==true produce the same Key.
type Key struct {
	Angle                  Angle
	HasAngle               bool
	Clockwise              bool
	HasClockwise           bool
	Minor                  bool
	IgnorableForTopography bool
	DiphthongStart         bool
	DiphthongEnd           bool
}

// Key builds the comparable Key for c.
func (c Context) Key() Key {
	k := Key{
		Minor:                  c.Minor,
		IgnorableForTopography: c.IgnorableForTopography,
		DiphthongStart:         c.DiphthongStart,
		DiphthongEnd:           c.DiphthongEnd,
	}
	if c.Angle != nil {
		k.HasAngle = true
		k.Angle = *c.Angle
	}
	if c.Clockwise != nil {
		k.HasClockwise = true
		k.Clockwise = *c.Clockwise
	}
	return k
}

// Reversed returns the context as seen from the other side of the join:
// the angle is rotated 180 degrees and the curvature sense is flipped.
// Diphthong/minor/ignorable flags pass through unchanged, matching
// `Context.reversed` in the reference implementation.
func (c Context) Reversed() Context {
	r := c
	if c.Angle != nil {
		a := c.Angle.Add(180)
		r.Angle = &a
	}
	if c.Clockwise != nil {
		cw := !*c.Clockwise
		r.Clockwise = &cw
	}
	return r
}

// HasClockwiseLoopTo reports whether c and other, taken as the two contexts
// at either end of a join, would sweep a tight loop if drawn as adjacent
// curves with the same curvature sense. Both contexts must carry an angle
// and a curvature sense; otherwise the predicate is false by definition.
func (c Context) HasClockwiseLoopTo(other Context) bool {
	if !c.HasAngle() || !c.HasClockwise() || !other.HasAngle() || !other.HasClockwise() {
		return false
	}
	if *c.Clockwise != *other.Clockwise {
		return false
	}
	delta := FullTurnDelta(*other.Angle, *c.Angle)
	if *c.Clockwise {
		delta = -delta
	}
	return delta > 0 && delta < 180
}
