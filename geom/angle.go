// Package geom provides the angle and point arithmetic shared by the shape
// algebra: rectangular/polar conversion, modular angle arithmetic, and the
// directed-arc membership test used throughout contextualization.
package geom

import "math"

// Angle is a real number in [0, 360) measured counterclockwise from east.
// Arithmetic on Angle wraps modulo 360, matching the convention used
// throughout the shape algebra's contextualization rules.
type Angle float64

// Normalize wraps a into [0, 360).
func Normalize(a float64) Angle {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return Angle(a)
}

// Add returns a+b normalized into [0, 360).
func (a Angle) Add(b Angle) Angle {
	return Normalize(float64(a) + float64(b))
}

// Sub returns a-b normalized into [0, 360). It keeps no sign information;
// use SignedDelta for a signed difference in (-180, 180].
func (a Angle) Sub(b Angle) Angle {
	return Normalize(float64(a) - float64(b))
}

// SignedDelta returns the smallest-magnitude rotation that carries b to a,
// in (-180, 180]. A result of exactly 0 when a==b is preserved; callers that
// need "360 for a full turn" should use FullTurnDelta instead.
func SignedDelta(a, b Angle) float64 {
	d := math.Mod(float64(a)-float64(b), 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// FullTurnDelta behaves like SignedDelta but returns 360 (rather than 0)
// when a and b coincide, matching the "full turn" convention needed by
// Curve's sweep computation (spec.md §8: "A Curve with da = 0 is
// interpreted as da = 360").
func FullTurnDelta(a, b Angle) float64 {
	d := SignedDelta(a, b)
	if d == 0 {
		return 360
	}
	return d
}

// Point is a 2D coordinate in font design units.
type Point struct {
	X, Y float64
}

// Rect converts a polar coordinate (r, theta in degrees) to rectangular
// coordinates, matching the Python helper `_rect(r, theta)` which operates
// in radians; here theta is accepted in degrees for caller convenience and
// converted internally.
func Rect(r float64, theta Angle) Point {
	rad := float64(theta) * math.Pi / 180
	return Point{X: r * math.Cos(rad), Y: r * math.Sin(rad)}
}

// Add returns the vector sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// InDegreeRange reports whether key lies on the arc that starts at `start`
// and sweeps to `stop`. If clockwise is false the arc is traversed
// counterclockwise (increasing angle); if true, clockwise (decreasing
// angle). All three angles are taken modulo 360 before comparison.
func InDegreeRange(key, start, stop Angle, clockwise bool) bool {
	k := Normalize(float64(key))
	s := Normalize(float64(start))
	e := Normalize(float64(stop))
	if clockwise {
		s, e = e, s
	}
	if s <= e {
		return k >= s && k <= e
	}
	// The arc wraps through 0/360.
	return k >= s || k <= e
}

// ScaleAngle returns the angle of a vector at angle theta (in degrees) after
// independently scaling its x and y components by scaleX and scaleY. This is
// used when a shape is stretched along an axis and the tangent angle at the
// endpoints must be recomputed, matching the Python helper `_scale_angle`.
func ScaleAngle(theta Angle, scaleX, scaleY float64) Angle {
	rad := float64(theta) * math.Pi / 180
	x := scaleX * math.Cos(rad)
	y := scaleY * math.Sin(rad)
	return Normalize(math.Atan2(y, x) * 180 / math.Pi)
}
