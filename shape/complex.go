package shape

import (
	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
)

// Instruction is one element of a Complex's instruction list: either a
// component (drawing a sub-shape) or a context function that rewrites the
// context threaded to the next component. See spec.md §4.1.5.
type Instruction struct {
	// Component fields; Sub is nil for a context-function instruction.
	SizeScalar  float64
	Sub         Shape
	SkipDrawing bool
	Tick        bool

	// ContextFn, set instead of Sub, rewrites the threaded context.
	ContextFn func(geom.Context) geom.Context
}

func (in Instruction) isComponent() bool { return in.ContextFn == nil }

// Complex is an ordered list of instructions, composing sub-shapes into one
// glyph via cursive concatenation. See spec.md §4.1.5.
type Complex struct {
	Base

	Instructions []Instruction
	// InitialPosition, if true, means Contextualize threads the context
	// through the instruction list in reverse, so the *last* component
	// determines the entry context exposed to the previous letter.
	InitialPosition bool
}

// NewComplex constructs a Complex from an instruction list.
func NewComplex(instrs []Instruction) *Complex {
	return &Complex{Instructions: instrs}
}

func (x *Complex) Name(size float64, joiningType JoiningType) string { return "" }

func (x *Complex) Group() any {
	type compKey struct {
		SizeScalar float64
		SubGroup   any
		SkipDrawing, Tick bool
		IsFn       bool
	}
	keys := make([]compKey, len(x.Instructions))
	for i, in := range x.Instructions {
		if in.isComponent() {
			keys[i] = compKey{SizeScalar: in.SizeScalar, SubGroup: in.Sub.Group(), SkipDrawing: in.SkipDrawing, Tick: in.Tick}
		} else {
			keys[i] = compKey{IsFn: true}
		}
	}
	return struct {
		Keys            string
		InitialPosition bool
		N               int
	}{Keys: formatComplexGroup(keys), InitialPosition: x.InitialPosition, N: len(keys)}
}

func formatComplexGroup(keys any) string {
	// A cheap, stable stringification used purely as a dedup key
	// component; it need not be human-readable.
	return stringifyAny(keys)
}

func (x *Complex) components() []Instruction {
	out := make([]Instruction, 0, len(x.Instructions))
	for _, in := range x.Instructions {
		if in.isComponent() {
			out = append(out, in)
		}
	}
	return out
}

func (x *Complex) Draw(glyph Glyph, p DrawParams) (*BBox, error) {
	first := true
	var entryX, entryY float64
	var effXMin, effYMin, effXMax, effYMax float64
	haveEff := false
	for _, in := range x.Instructions {
		if !in.isComponent() || in.SkipDrawing {
			continue
		}
		sub := in.Sub
		subParams := p
		subParams.Size = p.Size * in.SizeScalar
		if in.Tick {
			subParams.StrokeWidth = p.LightLine
		}
		if !first {
			if ex, ey, ok := glyph.AnchorPoint(anchor.Cursive, KindExit); ok {
				entryX, entryY = ex, ey
			}
		}
		bbox, err := sub.Draw(glyph, subParams)
		if err != nil {
			return nil, err
		}
		if !first {
			if nx, ny, ok := glyph.AnchorPoint(anchor.Cursive, KindEntry); ok {
				glyph.Translate(entryX-nx, entryY-ny)
			}
		}
		first = false
		if bbox != nil {
			if !haveEff {
				effXMin, effYMin, effXMax, effYMax = bbox.XMin, bbox.YMin, bbox.XMax, bbox.YMax
				haveEff = true
			} else {
				effXMin = min(effXMin, bbox.XMin)
				effYMin = min(effYMin, bbox.YMin)
				effXMax = max(effXMax, bbox.XMax)
				effYMax = max(effYMax, bbox.YMax)
			}
		} else if !in.Tick {
			bb := glyph.BoundingBox()
			if !haveEff {
				effXMin, effYMin, effXMax, effYMax = bb.XMin, bb.YMin, bb.XMax, bb.YMax
				haveEff = true
			} else {
				effXMin = min(effXMin, bb.XMin)
				effYMin = min(effYMin, bb.YMin)
				effXMax = max(effXMax, bb.XMax)
				effYMax = max(effYMax, bb.YMax)
			}
		}
	}
	if haveEff {
		return &BBox{effXMin, effYMin, effXMax, effYMax}, nil
	}
	return nil, nil
}

func (x *Complex) Contextualize(contextIn, contextOut geom.Context) Shape {
	order := make([]int, len(x.Instructions))
	for i := range order {
		order[i] = i
	}
	if x.InitialPosition {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}
	current := contextIn
	newInstrs := make([]Instruction, len(x.Instructions))
	copy(newInstrs, x.Instructions)
	for _, idx := range order {
		in := x.Instructions[idx]
		if in.isComponent() {
			out := geom.NoContext
			if isLastComponent(x.Instructions, idx) {
				out = contextOut
			}
			newSub := in.Sub.Contextualize(current, out)
			newInstrs[idx] = Instruction{SizeScalar: in.SizeScalar, Sub: newSub, SkipDrawing: in.SkipDrawing, Tick: in.Tick}
			current = newSub.ContextOut()
		} else {
			current = in.ContextFn(current)
			newInstrs[idx] = in
		}
	}
	return &Complex{Instructions: newInstrs, InitialPosition: x.InitialPosition}
}

func isLastComponent(instrs []Instruction, idx int) bool {
	for i := idx + 1; i < len(instrs); i++ {
		if instrs[i].isComponent() {
			return false
		}
	}
	return true
}

func firstComponentIndex(instrs []Instruction) int {
	for i, in := range instrs {
		if in.isComponent() {
			return i
		}
	}
	return -1
}

func (x *Complex) ContextIn() geom.Context {
	i := firstComponentIndex(x.Instructions)
	if i < 0 {
		return geom.NoContext
	}
	return x.Instructions[i].Sub.ContextIn()
}

func (x *Complex) ContextOut() geom.Context {
	for i := len(x.Instructions) - 1; i >= 0; i-- {
		if x.Instructions[i].isComponent() {
			return x.Instructions[i].Sub.ContextOut()
		}
	}
	return geom.NoContext
}

func (x *Complex) CalculateDiacriticAngles() map[anchor.Name]geom.Angle {
	for _, in := range x.Instructions {
		if in.isComponent() {
			return in.Sub.CalculateDiacriticAngles()
		}
	}
	return nil
}

func (x *Complex) CanBeChild(size float64) bool {
	for _, in := range x.components() {
		if !in.Sub.CanBeChild(size * in.SizeScalar) {
			return false
		}
	}
	return true
}

func (x *Complex) IsShadable() bool {
	for _, in := range x.components() {
		if !in.Sub.IsShadable() {
			return false
		}
	}
	return true
}

// ComplexCurve is a Complex built by composing an inner Curve's
// contextualization instead of hand-writing an instruction list, grounded
// on original_source/sources/shapes.py's `ComplexCurve` (SPEC_FULL.md §C.5).
type ComplexCurve struct {
	*Complex
}

// RotatedComplex derives a new Complex by rotating another Complex's
// instructions by a fixed angle, grounded on
// original_source/sources/shapes.py's `RotatedComplex` (SPEC_FULL.md §C.5).
type RotatedComplex struct {
	*Complex
	RotationAngle geom.Angle
}

// NewRotatedComplex rotates every Line/Curve component of base by angle,
// leaving context functions untouched.
func NewRotatedComplex(base *Complex, angle geom.Angle) *RotatedComplex {
	instrs := make([]Instruction, len(base.Instructions))
	for i, in := range base.Instructions {
		if !in.isComponent() {
			instrs[i] = in
			continue
		}
		instrs[i] = Instruction{SizeScalar: in.SizeScalar, SkipDrawing: in.SkipDrawing, Tick: in.Tick, Sub: rotateSub(in.Sub, angle)}
	}
	return &RotatedComplex{Complex: &Complex{Instructions: instrs, InitialPosition: base.InitialPosition}, RotationAngle: angle}
}

func rotateSub(s Shape, angle geom.Angle) Shape {
	switch v := s.(type) {
	case *Line:
		cp := v.clone()
		cp.Angle = v.Angle.Add(angle)
		return cp
	case *Curve:
		cp := v.clone()
		cp.AngleIn = v.AngleIn.Add(angle)
		cp.AngleOut = v.AngleOut.Add(angle)
		return cp
	case *Circle:
		cp := v.clone()
		cp.AngleIn = v.AngleIn.Add(angle)
		cp.AngleOut = v.AngleOut.Add(angle)
		return cp
	default:
		return s
	}
}
