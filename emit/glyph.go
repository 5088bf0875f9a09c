// Package emit implements the glyph emitter of spec.md §4.8: for each
// canonical schema, allocate a glyph, call shape.Draw into it, then
// translate and adjust it into final position. See spec.md §6, "To the
// drawing backend", for the operations a drawn glyph must support.
package emit

import (
	"math"

	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/shape"
)

// SegmentOp is the kind of a path segment, mirroring the vocabulary a real
// rasterizing backend accepts (moveTo/lineTo/curveTo/endPath, spec.md §6).
type SegmentOp int

const (
	SegmentMoveTo SegmentOp = iota
	SegmentLineTo
	SegmentCurveTo
	SegmentEndPath
)

// Segment is one recorded path operation. Args holds 0 points for
// SegmentEndPath, 1 for MoveTo/LineTo, 3 (ctrl1, ctrl2, end) for CurveTo.
type Segment struct {
	Op   SegmentOp
	Args [3]geom.Point
}

// AnchorPointEntry is one recorded anchor point on a Glyph.
type AnchorPointEntry struct {
	Name anchor.Name
	Kind shape.AnchorKind
	X, Y float64
}

// Glyph is the in-core stand-in for the drawing backend's glyph handle: it
// records contours and anchor points rather than rasterizing them, since
// realizing contours into a binary font is outside the core's scope
// (spec.md §1, "Deliberately OUT of scope ... the vector-drawing
// backend"). It implements shape.Glyph so every Shape.Draw can target it
// directly.
type Glyph struct {
	Name string

	// RightSideBearing is set by the emitter after drawing, per spec.md
	// §4.8 step 5: schema.SideBearing, or 0 for marks.
	RightSideBearing float64

	Segments []Segment
	Anchors  []AnchorPointEntry

	// xmin/ymin/xmax/ymax track the accumulated path's bounding box as
	// segments are recorded, updated incrementally rather than walked on
	// demand since BoundingBox is queried from mid-draw (Complex reads a
	// component's exit anchor before the next component draws).
	xmin, ymin, xmax, ymax float64
	hasPath                bool

	pen *pen
}

// NewGlyph returns an empty Glyph named name (a code point's glyph name or
// a private ligature name, per spec.md §4.8 step 1).
func NewGlyph(name string) *Glyph {
	g := &Glyph{Name: name}
	g.pen = &pen{g: g}
	return g
}

func (g *Glyph) Pen() shape.Pen { return g.pen }

func (g *Glyph) growBBox(p geom.Point) {
	if !g.hasPath {
		g.xmin, g.xmax = p.X, p.X
		g.ymin, g.ymax = p.Y, p.Y
		g.hasPath = true
		return
	}
	g.xmin = math.Min(g.xmin, p.X)
	g.xmax = math.Max(g.xmax, p.X)
	g.ymin = math.Min(g.ymin, p.Y)
	g.ymax = math.Max(g.ymax, p.Y)
}

func (g *Glyph) AddAnchorPoint(name anchor.Name, kind shape.AnchorKind, x, y float64) {
	g.Anchors = append(g.Anchors, AnchorPointEntry{Name: name, Kind: kind, X: x, Y: y})
}

// AnchorPoint returns the most recently added anchor point of the given
// name and kind, per shape.Glyph (used by Complex to chain a component's
// cursive exit into the next component's entry, spec.md §4.1.5).
func (g *Glyph) AnchorPoint(name anchor.Name, kind shape.AnchorKind) (x, y float64, ok bool) {
	for i := len(g.Anchors) - 1; i >= 0; i-- {
		a := g.Anchors[i]
		if a.Name == name && a.Kind == kind {
			return a.X, a.Y, true
		}
	}
	return 0, 0, false
}

func (g *Glyph) Rotate(theta geom.Angle) {
	rad := float64(theta) * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	rotatePoint := func(p geom.Point) geom.Point {
		return geom.Point{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
	}
	g.transformPoints(rotatePoint)
}

func (g *Glyph) Translate(dx, dy float64) {
	g.transformPoints(func(p geom.Point) geom.Point {
		return geom.Point{X: p.X + dx, Y: p.Y + dy}
	})
}

func (g *Glyph) Scale(sx, sy float64) {
	g.transformPoints(func(p geom.Point) geom.Point {
		return geom.Point{X: p.X * sx, Y: p.Y * sy}
	})
}

// transformPoints applies f to every recorded point (segment args and
// anchors) and rebuilds the bounding box from scratch, since an affine
// transform doesn't commute with the incremental min/max tracked by
// growBBox.
func (g *Glyph) transformPoints(f func(geom.Point) geom.Point) {
	for i := range g.Segments {
		n := argCount(g.Segments[i].Op)
		for j := 0; j < n; j++ {
			g.Segments[i].Args[j] = f(g.Segments[i].Args[j])
		}
	}
	for i := range g.Anchors {
		p := f(geom.Point{X: g.Anchors[i].X, Y: g.Anchors[i].Y})
		g.Anchors[i].X, g.Anchors[i].Y = p.X, p.Y
	}
	g.hasPath = false
	for _, s := range g.Segments {
		n := argCount(s.Op)
		for j := 0; j < n; j++ {
			g.growBBox(s.Args[j])
		}
	}
}

func argCount(op SegmentOp) int {
	switch op {
	case SegmentMoveTo, SegmentLineTo:
		return 1
	case SegmentCurveTo:
		return 3
	default:
		return 0
	}
}

// Stroke thickens every recorded contour by diameter, approximated here as
// an expansion of the bounding box by the nib radius in every direction;
// the true circular-nib stroke outline is the vector-drawing backend's
// job, out of the core's scope.
func (g *Glyph) Stroke(diameter float64) {
	if !g.hasPath {
		return
	}
	r := diameter / 2
	g.xmin -= r
	g.ymin -= r
	g.xmax += r
	g.ymax += r
}

// RemoveOverlap is a no-op here: resolving self-intersecting contours is a
// property of the final rasterized outline, which this recording Glyph
// never produces.
func (g *Glyph) RemoveOverlap() {}

func (g *Glyph) BoundingBox() shape.BBox {
	if !g.hasPath {
		return shape.BBox{}
	}
	return shape.BBox{XMin: g.xmin, YMin: g.ymin, XMax: g.xmax, YMax: g.ymax}
}

// XBoundsAtY returns the horizontal extent of every line/curve segment
// whose endpoints straddle y, approximated linearly between segment
// endpoints (curves are treated as their chord). This is precise enough
// for the shim/secant placement decisions spec.md §4.5-§4.6 make from it,
// without needing a true Bezier-vs-horizontal-line intersection solver.
func (g *Glyph) XBoundsAtY(y float64) (xmin, xmax float64) {
	first := true
	var cur geom.Point
	consider := func(a, b geom.Point) {
		lo, hi := a.Y, b.Y
		if lo > hi {
			lo, hi = hi, lo
		}
		if y < lo || y > hi || lo == hi {
			return
		}
		t := (y - a.Y) / (b.Y - a.Y)
		x := a.X + t*(b.X-a.X)
		if first {
			xmin, xmax = x, x
			first = false
			return
		}
		xmin = math.Min(xmin, x)
		xmax = math.Max(xmax, x)
	}
	for _, s := range g.Segments {
		switch s.Op {
		case SegmentMoveTo:
			cur = s.Args[0]
		case SegmentLineTo:
			consider(cur, s.Args[0])
			cur = s.Args[0]
		case SegmentCurveTo:
			consider(cur, s.Args[2])
			cur = s.Args[2]
		}
	}
	return xmin, xmax
}

// pen is the Pen half of Glyph's drawing surface; it exists separately
// from Glyph so shape.Shape.Draw implementations hold a narrow interface
// (spec.md §6, "Pen operations").
type pen struct {
	g *Glyph
}

func (p *pen) MoveTo(pt geom.Point) {
	p.g.Segments = append(p.g.Segments, Segment{Op: SegmentMoveTo, Args: [3]geom.Point{pt}})
	p.g.growBBox(pt)
}

func (p *pen) LineTo(pt geom.Point) {
	p.g.Segments = append(p.g.Segments, Segment{Op: SegmentLineTo, Args: [3]geom.Point{pt}})
	p.g.growBBox(pt)
}

func (p *pen) CurveTo(c1, c2, end geom.Point) {
	p.g.Segments = append(p.g.Segments, Segment{Op: SegmentCurveTo, Args: [3]geom.Point{c1, c2, end}})
	p.g.growBBox(c1)
	p.g.growBBox(c2)
	p.g.growBBox(end)
}

func (p *pen) EndPath() {
	p.g.Segments = append(p.g.Segments, Segment{Op: SegmentEndPath})
}
