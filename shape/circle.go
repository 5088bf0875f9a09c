package shape

import (
	"math"

	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
)

// CircleRole distinguishes how a Circle participates in a diphthong or
// orienting sequence. See spec.md §4.1.4.
type CircleRole int

const (
	Independent CircleRole = iota
	Leader
	Dependent
)

// Circle is a full ellipse. See spec.md §4.1.4.
type Circle struct {
	Base

	AngleIn, AngleOut geom.Angle
	Clockwise         bool
	Stretch           float64
	Long              bool
	StretchAxis       StretchAxis

	Reversed bool
	Pinned   bool
	Role     CircleRole
}

func (c *Circle) clone() *Circle {
	cp := *c
	return &cp
}

// Clone returns a shallow copy of c, for callers outside the package
// (mainphase's leader-tagging and rotation passes).
func (c *Circle) Clone() *Circle { return c.clone() }

func (c *Circle) Name(size float64, joiningType JoiningType) string { return "" }

func (c *Circle) Group() any {
	return struct {
		AngleIn, AngleOut, Stretch float64
		Clockwise, Long, Reversed, Pinned bool
		Role                              CircleRole
	}{float64(c.AngleIn), float64(c.AngleOut), c.Stretch, c.Clockwise, c.Long, c.Reversed, c.Pinned, c.Role}
}

func (c *Circle) HubPriority(size float64) int { return 1 }
func (c *Circle) CanBeChild(float64) bool       { return true }
func (c *Circle) MaxTreeWidth(float64) int      { return 1 }
func (c *Circle) IsShadable() bool              { return true }

func (c *Circle) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	pen := glyph.Pen()
	r := RADIUS * p.Size
	// Four cubic Beziers, starting at the north pole, going all the way
	// around, matching spec.md §4.1.4's "unconditional full ellipse".
	kappa := 0.5523
	north := geom.Point{X: 0, Y: r}
	pen.MoveTo(north)
	quads := []geom.Angle{90, 180, 270, 0, 90}
	for i := 0; i < 4; i++ {
		a0, a1 := quads[i], quads[i+1]
		p0 := geom.Rect(r, a0)
		p1 := geom.Rect(r, a1)
		d0 := geom.Rect(r*kappa, a0.Add(90))
		d1 := geom.Rect(r*kappa, a1.Add(-90))
		pen.CurveTo(p0.Add(d0).Scale(1), p1.Add(d1).Scale(1), p1)
	}
	if c.Stretch > 0 {
		glyph.Scale(1+c.Stretch, 1)
	}
	glyph.AddAnchorPoint(anchor.Cursive, KindEntry, geom.Rect(r, c.AngleIn).X, geom.Rect(r, c.AngleIn).Y)
	glyph.AddAnchorPoint(anchor.Cursive, KindExit, geom.Rect(r, c.AngleOut).X, geom.Rect(r, c.AngleOut).Y)
	return nil, nil
}

// Contextualize decides whether the Circle stays a Circle or degrades to a
// Curve, per spec.md §4.1.4.
func (c *Circle) Contextualize(contextIn, contextOut geom.Context) Shape {
	if contextIn.HasAngle() && contextOut.HasAngle() && *contextIn.Angle == *contextOut.Angle {
		clockwise := c.Reversed
		if contextIn.HasClockwise() {
			clockwise = *contextIn.Clockwise != c.Reversed
		}
		cp := c.clone()
		cp.Clockwise = clockwise
		return cp
	}

	delta := geom.FullTurnDelta(c.AngleOut, c.AngleIn)
	clockwiseIgnoringCurvature := math.Abs(delta) >= 180 != (c.AngleOut > c.AngleIn)

	var clockwise bool
	loopKnown := false
	if contextIn.HasClockwiseLoopTo(contextOut) && contextIn.HasClockwise() {
		clockwise = *contextIn.Clockwise
		loopKnown = true
	}
	if !loopKnown {
		clockwise = clockwiseIgnoringCurvature
	}
	finalClockwise := clockwise != c.Reversed

	if c.Role == Leader || c.Role == Dependent {
		if c.Pinned && !c.Reversed {
			cp := c.clone()
			cp.Clockwise = finalClockwise
			if c.Role == Leader {
				cp.AngleOut = cp.AngleIn
			}
			return cp
		}
	}

	curve := &Curve{
		AngleIn: c.AngleIn, AngleOut: c.AngleOut, Clockwise: finalClockwise,
		Stretch: c.Stretch, Long: c.Long, StretchAxis: c.StretchAxis,
		ExitPosition: 1,
	}
	if c.Reversed && math.Abs(delta) != 180 {
		curve.ReversedCircle = 1
	}
	return curve.Contextualize(contextIn, contextOut)
}

func (c *Circle) ContextIn() geom.Context {
	cw := c.Clockwise
	return geom.Context{Angle: &c.AngleIn, Clockwise: &cw}
}

func (c *Circle) ContextOut() geom.Context {
	cw := c.Clockwise
	return geom.Context{Angle: &c.AngleOut, Clockwise: &cw}
}

func (c *Circle) CalculateDiacriticAngles() map[anchor.Name]geom.Angle {
	mid := geom.Normalize((float64(c.AngleIn) + float64(c.AngleOut)) / 2)
	return map[anchor.Name]geom.Angle{
		anchor.Relative1: mid,
		anchor.Relative2: mid,
	}
}
