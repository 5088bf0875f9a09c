package shape

import (
	"math"

	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
)

// StretchAxis is the axis along which a Curve (or Circle) is stretched.
type StretchAxis int

const (
	StretchAbsolute StretchAxis = iota
	StretchAlongAngleIn
	StretchAlongAngleOut
)

// Curve is an elliptical arc. See spec.md §4.1.3.
type Curve struct {
	Base

	AngleIn, AngleOut geom.Angle
	Clockwise         bool
	Stretch           float64 // >= -1
	Long              bool
	StretchAxis       StretchAxis
	Hook              bool
	ReversedCircle    float64 // nonzero: add a straight swash to the exit
	Secondary         bool
	EntryPosition     float64 // in [0,1]
	ExitPosition      float64 // in [0,1]
	OverlapAngle      *geom.Angle // override for semiellipses only

	Diphthong1, Diphthong2 bool
}

// NewCurve constructs a Curve with default entry/exit positions of 0 and 1.
func NewCurve(angleIn, angleOut geom.Angle, clockwise bool) *Curve {
	return &Curve{AngleIn: angleIn, AngleOut: angleOut, Clockwise: clockwise, Stretch: 0, ExitPosition: 1}
}

func (c *Curve) clone() *Curve {
	cp := *c
	return &cp
}

func (c *Curve) radius(size float64) float64 {
	return RADIUS * size
}

// RADIUS is the unstretched radius of a size-1 curve/circle, matching the
// reference implementation's RADIUS constant.
const RADIUS = 50

func (c *Curve) Name(size float64, joiningType JoiningType) string {
	return ""
}

func (c *Curve) Group() any {
	type key struct {
		AngleIn, AngleOut, Stretch float64
		Clockwise, Long, Hook, Secondary bool
		StretchAxis                     StretchAxis
		ReversedCircle                  float64
		EntryPosition, ExitPosition      float64
		HasOverlapAngle                 bool
		OverlapAngle                    float64
	}
	k := key{
		AngleIn: float64(c.AngleIn), AngleOut: float64(c.AngleOut), Stretch: c.Stretch,
		Clockwise: c.Clockwise, Long: c.Long, Hook: c.Hook, Secondary: c.Secondary,
		StretchAxis: c.StretchAxis, ReversedCircle: c.ReversedCircle,
		EntryPosition: c.EntryPosition, ExitPosition: c.ExitPosition,
	}
	if c.OverlapAngle != nil {
		k.HasOverlapAngle = true
		k.OverlapAngle = float64(*c.OverlapAngle)
	}
	return k
}

func (c *Curve) HubPriority(size float64) int {
	if size >= 2 {
		return 1
	}
	return 0
}

func (c *Curve) CanBeChild(float64) bool { return true }
func (c *Curve) MaxTreeWidth(float64) int { return 1 }
func (c *Curve) IsShadable() bool          { return true }

// sweep returns the normalized (a1, a2, totalDelta) for the arc, applying
// the "da=0 means a full 360 turn" rule (spec.md §8).
func (c *Curve) sweep() (a1, a2 geom.Angle, da float64) {
	sign := geom.Angle(1)
	if c.Clockwise {
		sign = -1
	}
	a1 = c.AngleIn.Add(90 * sign)
	a2 = c.AngleOut.Add(90 * sign)
	da = geom.FullTurnDelta(a2, a1)
	if c.Clockwise {
		da = -geom.FullTurnDelta(a1, a2)
		if da == 0 {
			da = -360
		}
	}
	return
}

func (c *Curve) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	pen := glyph.Pen()
	r := c.radius(p.Size)
	a1, _, da := c.sweep()
	arcs := int(math.Ceil(math.Abs(da) / 90))
	if arcs < 1 {
		arcs = 1
	}
	step := da / float64(arcs)
	start := geom.Rect(r, a1)
	pen.MoveTo(start)
	cur := a1
	kappa := 4.0 / 3.0
	for i := 0; i < arcs; i++ {
		next := cur.Add(geom.Angle(step))
		tan := r * kappa * math.Tan(step*math.Pi/360)
		p0 := geom.Rect(r, cur)
		p3 := geom.Rect(r, next)
		d0 := geom.Rect(1, cur.Add(90))
		d3 := geom.Rect(1, next.Add(90))
		sign := 1.0
		if step < 0 {
			sign = -1
		}
		c1 := p0.Add(d0.Scale(tan * sign))
		c2 := p3.Add(d3.Scale(-tan * sign))
		pen.CurveTo(c1, c2, p3)
		cur = next
	}
	if c.Stretch > 0 {
		glyph.Scale(1+c.Stretch, 1)
	}
	if c.ReversedCircle != 0 {
		swashAngle := 30.0
		length := c.ReversedCircle * math.Sin(swashAngle*math.Pi/180) * r / math.Sin((90-swashAngle)*math.Pi/180)
		exit := geom.Rect(r, c.AngleOut)
		dir := geom.Rect(1, c.AngleOut)
		end := exit.Add(dir.Scale(length))
		pen.LineTo(end)
	}
	glyph.AddAnchorPoint(anchor.Cursive, KindEntry, start.X, start.Y)
	if !c.Hook {
		glyph.AddAnchorPoint(anchor.Cursive, KindExit, geom.Rect(r, c.AngleOut).X, geom.Rect(r, c.AngleOut).Y)
	}
	if c.Diphthong1 {
		exit := geom.Rect(r, c.AngleOut)
		a2m := c.AngleOut.Add(-90)
		if c.Clockwise {
			a2m = c.AngleOut.Add(90)
		}
		d := geom.Rect(r, a2m)
		glyph.Translate(d.X-exit.X, d.Y-exit.Y)
	}
	return nil, nil
}

func (c *Curve) Contextualize(contextIn, contextOut geom.Context) Shape {
	if c.Hook && !contextIn.IsNoContext() && !contextOut.IsNoContext() {
		reversed := c.reversed()
		res := reversed.Contextualize(contextOut.Reversed(), contextIn.Reversed())
		if rc, ok := res.(*Curve); ok {
			rc2 := rc.clone()
			rc2.Clockwise = !rc2.Clockwise
			return rc2
		}
		return res
	}

	clockwise := c.Clockwise
	flips := 0
	if !contextIn.HasClockwise() {
		clockwise = !clockwise
		flips++
	}
	var otherClockwise *bool
	if contextIn.HasClockwise() {
		otherClockwise = contextIn.Clockwise
	} else if contextOut.HasClockwise() {
		otherClockwise = contextOut.Clockwise
	}
	if c.Secondary && otherClockwise != nil && *otherClockwise != clockwise {
		clockwise = !clockwise
		flips++
	}

	angleIn, angleOut := c.AngleIn, c.AngleOut
	exitPosition := c.ExitPosition
	if !contextIn.IsNoContext() && !contextOut.IsNoContext() {
		if contextIn.HasAngle() && geom.InDegreeRange(*contextIn.Angle, angleOut, angleOut.Add(180), clockwise) {
			clockwise = !clockwise
			flips++
		}
		if contextOut.HasAngle() && geom.InDegreeRange(*contextOut.Angle, angleIn.Add(180), angleIn, clockwise) {
			clockwise = !clockwise
			flips++
		}
		if flips%2 == 1 {
			exitPosition = 0.5
		}
	}
	cp := c.clone()
	cp.AngleIn = angleIn
	cp.AngleOut = angleOut
	cp.Clockwise = clockwise
	cp.ExitPosition = exitPosition
	return cp
}

func (c *Curve) reversed() *Curve {
	cp := c.clone()
	cp.AngleIn = c.AngleOut.Add(180)
	cp.AngleOut = c.AngleIn.Add(180)
	cp.Clockwise = !c.Clockwise
	cp.EntryPosition, cp.ExitPosition = 1-c.ExitPosition, 1-c.EntryPosition
	return cp
}

func (c *Curve) ContextIn() geom.Context {
	cw := c.Clockwise
	return geom.Context{Angle: &c.AngleIn, Clockwise: &cw}
}

func (c *Curve) ContextOut() geom.Context {
	cw := c.Clockwise
	return geom.Context{Angle: &c.AngleOut, Clockwise: &cw}
}

func (c *Curve) CalculateDiacriticAngles() map[anchor.Name]geom.Angle {
	mid := geom.Normalize((float64(c.AngleIn) + float64(c.AngleOut)) / 2)
	return map[anchor.Name]geom.Angle{
		anchor.Relative1: mid,
		anchor.Relative2: mid,
		anchor.Middle:    geom.Normalize(float64(mid) + 90),
	}
}
