package shape

import (
	"math"
	"strconv"

	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/layout"
)

// LineFactor is the base stroke length for size 1, in font design units,
// matching the reference implementation's LINE_FACTOR.
const LineFactor = 500

// epsilon guards divisions that the reference implementation special-cases
// as "close enough to horizontal/vertical to not stretch."
const epsilon = 1e-4

// Line is a straight segment. See spec.md §4.1.2.
type Line struct {
	Base

	Angle                  geom.Angle
	Minor                  bool
	Stretchy               bool
	Secant                 *float64 // fraction in (0, 1), nil if not a secant
	SecantCurvatureOffset  float64
	Dots                   *int
	OriginalAngle          *geom.Angle
}

// NewLine constructs a Line with the reference implementation's default
// secant curvature offset of 45 degrees.
func NewLine(angle geom.Angle) *Line {
	return &Line{Angle: angle, SecantCurvatureOffset: 45}
}

func (l *Line) clone() *Line {
	cp := *l
	return &cp
}

// Clone returns a shallow copy of l, for callers outside the package that
// need to derive a variant (e.g. mainphase's subantiparallel-line
// perturbation).
func (l *Line) Clone() *Line { return l.clone() }

func (l *Line) Name(size float64, joiningType JoiningType) string {
	if l.Dots != nil || (!l.Stretchy && joiningType == Orienting) {
		s := strconv.Itoa(int(l.Angle))
		if l.Dots != nil {
			s += ".dotted"
		}
		return s
	}
	return ""
}

func (l *Line) Group() any {
	type key struct {
		Angle, SecantCurvatureOffset float64
		Stretchy                     bool
		Secant                       float64
		HasSecant                    bool
		Dots                         int
		HasDots                      bool
		OriginalAngle                float64
		HasOriginalAngle             bool
	}
	k := key{Angle: float64(l.Angle), Stretchy: l.Stretchy, SecantCurvatureOffset: l.SecantCurvatureOffset}
	if l.Secant != nil {
		k.HasSecant = true
		k.Secant = *l.Secant
	}
	if l.Dots != nil {
		k.HasDots = true
		k.Dots = *l.Dots
	}
	if l.OriginalAngle != nil && *l.OriginalAngle != l.Angle {
		k.HasOriginalAngle = true
		k.OriginalAngle = float64(*l.OriginalAngle)
	}
	return k
}

func (l *Line) CanTakeSecant() bool { return true }

func (l *Line) HubPriority(size float64) int {
	if l.Dots != nil {
		return 0
	}
	if l.Secant != nil {
		return -1
	}
	if math.Mod(float64(l.Angle), 180) == 0 {
		return 2
	}
	if size >= 1 {
		return 0
	}
	return -1
}

func (l *Line) length(size float64) float64 {
	denom := 1.0
	if l.Stretchy {
		angle := l.Angle
		if l.OriginalAngle != nil {
			angle = *l.OriginalAngle
		}
		denom = math.Abs(math.Sin(float64(angle) * math.Pi / 180))
		if denom < epsilon {
			denom = 1
		}
	}
	return LineFactor * size / denom
}

func (l *Line) CanBeChild(float64) bool { return l.Secant == nil && l.Dots == nil }

func (l *Line) MaxTreeWidth(size float64) int {
	if size == 2 && l.Secant == nil {
		return 2
	}
	return 1
}

func (l *Line) MaxDoubleMarks(size float64, joiningType JoiningType, markCount int) int {
	// The reference implementation also looks at whether any mark anchors
	// at rel1/rel2/mid; callers that need that refinement should check
	// schema.Marks directly before falling back to this bound.
	if l.Secant != nil {
		return 0
	}
	return int(l.length(size)/(250*0.45)) - 1
}

func (l *Line) IsShadable() bool { return l.Dots == nil }

func (l *Line) FixedY() bool {
	return l.Secant != nil && math.Mod(float64(l.Angle), 90) == 0
}

func (l *Line) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	pen := glyph.Pen()
	length := l.length(p.Size)
	endY := 0.0
	pen.MoveTo(geom.Point{})
	if l.Dots != nil && *l.Dots > 1 {
		interval := length / float64(*l.Dots-1)
		for i := 1; i < *l.Dots; i++ {
			pen.EndPath()
			pen.MoveTo(geom.Point{X: interval * float64(i)})
		}
	} else {
		pen.LineTo(geom.Point{X: length})
	}
	switch {
	case p.Anchor != nil:
		effLen := length
		if p.JoiningType == Orienting || math.Mod(float64(l.Angle), 180) == 0 ||
			(*p.Anchor != anchor.Above && *p.Anchor != anchor.Below) {
			frac := 0.5
			if l.Secant != nil {
				frac = *l.Secant
			}
			effLen = length * frac
		} else if (*p.Anchor == anchor.Above) == (l.Angle < 180) {
			effLen = 0
		}
		glyph.AddAnchorPoint(*p.Anchor, KindMark, effLen, endY)
	case l.Secant != nil:
		glyph.AddAnchorPoint(anchor.ContinuingOverlap, KindExit, length**l.Secant, endY)
		glyph.AddAnchorPoint(anchor.PreHubContinuingOverlap, KindExit, length**l.Secant, endY)
	default:
		if p.JoiningType != NonJoining {
			maxWidth := l.MaxTreeWidth(p.Size)
			childInterval := length / float64(maxWidth+2)
			for side := 0; side < 2; side++ {
				for idx := 0; idx < maxWidth; idx++ {
					glyph.AddAnchorPoint(anchor.ChildEdge(side, idx), KindBase, childInterval*float64(idx+2), 0)
				}
			}
			glyph.AddAnchorPoint(anchor.ParentEdge, KindMark, childInterval, 0)
			glyph.AddAnchorPoint(anchor.ContinuingOverlap, KindEntry, childInterval, 0)
			glyph.AddAnchorPoint(anchor.ContinuingOverlap, KindExit, childInterval*float64(maxWidth+1), 0)
			glyph.AddAnchorPoint(anchor.Cursive, KindEntry, 0, 0)
			glyph.AddAnchorPoint(anchor.Cursive, KindExit, length, endY)
			glyph.AddAnchorPoint(anchor.PostHubContinuingOverlap, KindEntry, childInterval, 0)
			if l.HubPriority(p.Size) != -1 {
				glyph.AddAnchorPoint(anchor.PreHubCursive, KindEntry, 0, 0)
			}
			if l.HubPriority(p.Size) != 0 {
				glyph.AddAnchorPoint(anchor.PostHubCursive, KindExit, length, endY)
			}
			glyph.AddAnchorPoint(anchor.Secant, KindBase, childInterval*float64(maxWidth+1), 0)
		}
		dotScalar := 2.0
		if p.Size == 2 && l.Angle > 0 && l.Angle <= 45 {
			glyph.AddAnchorPoint(anchor.Relative1, KindBase, length/2-(p.LightLine+p.StrokeGap), -(p.StrokeWidth+dotScalar*p.LightLine)/2)
			glyph.AddAnchorPoint(anchor.Relative2, KindBase, length/2+p.LightLine+p.StrokeGap, -(p.StrokeWidth+dotScalar*p.LightLine)/2)
		} else {
			glyph.AddAnchorPoint(anchor.Relative1, KindBase, length/2, (p.StrokeWidth+dotScalar*p.LightLine)/2)
			glyph.AddAnchorPoint(anchor.Relative2, KindBase, length/2, -(p.StrokeWidth+dotScalar*p.LightLine)/2)
		}
		glyph.AddAnchorPoint(anchor.Middle, KindBase, length/2, 0)
	}
	glyph.Rotate(l.Angle)
	glyph.Stroke(p.StrokeWidth)
	if p.Anchor == nil || l.Secant != nil {
		bb := glyph.BoundingBox()
		xc := (bb.XMax + bb.XMin) / 2
		glyph.AddAnchorPoint(anchor.Above, KindBase, xc, bb.YMax+p.StrokeWidth/2+2*p.StrokeGap+p.LightLine/2)
		glyph.AddAnchorPoint(anchor.Below, KindBase, xc, bb.YMin-(p.StrokeWidth/2+2*p.StrokeGap+p.LightLine/2))
		if l.Secant != nil && math.Mod(float64(l.Angle), 90) == 0 {
			yOffset := 2 * LineFactor * (2**l.Secant - 1)
			if math.Mod(l.GuidelineAngle(), 180) == 90 {
				glyph.Translate(0, yOffset+p.StrokeWidth/2)
			} else {
				glyph.Translate(0, -yOffset-LineFactor+p.StrokeWidth/2)
			}
		}
	}
	return nil, nil
}

// GuidelineAngle returns the angle of the guideline this secant should be
// displayed on, per spec.md §4.5 step 9.
func (l *Line) GuidelineAngle() float64 {
	m := math.Mod(float64(l.Angle)+90, 180)
	if m < 0 {
		m += 180
	}
	if m >= 45 && m < 135 {
		return 270
	}
	return 0
}

const secantMinFreeSeparation = 30
const secantMinCurvedSeparation = 45

func (l *Line) Contextualize(contextIn, contextOut geom.Context) Shape {
	switch {
	case l.Secant != nil:
		if !contextOut.IsNoContext() {
			return l.rotateDiacritic(contextOut)
		}
	case l.Stretchy:
		if contextOut.HasAngle() && *contextOut.Angle == l.Angle && !contextOut.HasClockwise() {
			// Append a terminal tick to disambiguate a parallel
			// continuation (spec.md §4.1.2).
			tickAngle := l.Angle - 90
			if l.Angle > 90 && l.Angle <= 270 {
				tickAngle = l.Angle + 90
			}
			c := NewComplex([]Instruction{
				{SizeScalar: 1, Sub: l},
				{SizeScalar: 0.2, Sub: NewLine(tickAngle.Add(0)), SkipDrawing: false, Tick: true},
				{ContextFn: func(c geom.Context) geom.Context {
					a := l.Angle
					c.Angle = &a
					return c
				}},
			})
			return c
		}
	default:
		if !contextIn.IsNoContext() && contextIn.HasAngle() {
			cp := l.clone()
			cp.Angle = *contextIn.Angle
			return cp
		}
	}
	return l
}

func (l *Line) rotateDiacritic(context geom.Context) *Line {
	if context.Angle == nil {
		return l
	}
	angle := float64(*context.Angle)
	minimumDa := 30.0
	if context.Clockwise != nil {
		minimumDa = 45
		if context.IgnorableForTopography {
			minimumDa = 0
		}
		sign := -1.0
		if *context.Clockwise {
			sign = 1
		}
		angle -= l.SecantCurvatureOffset * sign
	}
	da := math.Mod(float64(l.Angle), 180) - math.Mod(angle, 180)
	switch {
	case da > 90:
		da -= 180
	case da < -90:
		da += 180
	}
	if math.Abs(da) >= minimumDa {
		return l
	}
	var newDa float64
	if da > 0 {
		newDa = minimumDa - da
	} else {
		newDa = -minimumDa - da
	}
	ltr := math.Mod(float64(l.Angle), 180) > 90
	rtl := math.Mod(float64(l.Angle), 180) < 90
	newLtr := math.Mod(float64(l.Angle)+newDa, 180) > 90
	newRtl := math.Mod(float64(l.Angle)+newDa, 180) < 90
	if ltr != newLtr && rtl != newRtl {
		if da > 0 {
			newDa = -minimumDa
		} else {
			newDa = minimumDa
		}
	}
	cp := l.clone()
	cp.Angle = l.Angle.Add(geom.Angle(newDa))
	return cp
}

func (l *Line) ContextIn() geom.Context {
	return geom.Context{Angle: &l.Angle, Minor: l.Minor}
}

func (l *Line) ContextOut() geom.Context {
	return geom.Context{Angle: &l.Angle, Minor: l.Minor}
}

func (l *Line) CalculateDiacriticAngles() map[anchor.Name]geom.Angle {
	a := geom.Normalize(math.Mod(float64(l.Angle), 180))
	return map[anchor.Name]geom.Angle{
		anchor.Relative1: a,
		anchor.Relative2: a,
		anchor.Middle:    geom.Normalize(float64(a) + 90),
		anchor.Secant:    a,
	}
}

func (l *Line) GuaranteedGlyphClass() (layout.GlyphClass, bool) { return layout.ClassUnknown, false }

// Reversed returns a Line with the opposite angle.
func (l *Line) Reversed() *Line {
	cp := l.clone()
	cp.Angle = l.Angle.Add(180)
	return cp
}
