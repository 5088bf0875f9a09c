// Package markerphase implements the width/position pipeline of spec.md
// §4.6: the invisible-glyph marker chain that lets GSUB/GPOS rules encode
// and arithmetically combine glyph-width information, culminating in the
// `dist` pass that turns a glyph's settled digit chain into real
// x_advance/x_placement adjustments.
package markerphase

import (
	"math"

	"github.com/dscorbett/duployan-go/emit"
	"github.com/dscorbett/duployan-go/layout"
	"github.com/dscorbett/duployan-go/phase"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("duployan.phase.marker")
}

// All returns the marker phases in pipeline order (spec.md §4.6, 15 passes).
// addShimsForPseudoCursive and shrinkWrapEnclosingCircle need rendered
// bounding-box geometry that only exists after the glyph emitter has run a
// shape's Draw; since this phase runner operates purely on schema/shape
// attributes before drawing, both are documented simplified hooks rather
// than full ports (see DESIGN.md).
func All() []phase.Phase {
	return []phase.Phase{
		{Name: "add-shims-for-pseudo-cursive", Run: addShimsForPseudoCursive},
		{Name: "shrink-wrap-enclosing-circle", Run: shrinkWrapEnclosingCircle},
		{Name: "add-width-markers", Run: addWidthMarkers},
		{Name: "add-end-markers-for-marks", Run: addEndMarkersForMarks},
		{Name: "remove-false-end-markers", Run: removeFalseEndMarkers},
		{Name: "clear-entry-width-markers", Run: clearEntryWidthMarkers},
		{Name: "sum-width-markers", Run: sumWidthMarkers},
		{Name: "calculate-bound-extrema", Run: calculateBoundExtrema},
		{Name: "remove-false-start-markers", Run: removeFalseStartMarkers},
		{Name: "mark-hubs-after-initial-secants", Run: markHubsAfterInitialSecants},
		{Name: "find-real-hub", Run: findRealHub},
		{Name: "expand-start-markers", Run: expandStartMarkers},
		{Name: "mark-maximum-bounds", Run: markMaximumBounds},
		{Name: "copy-maximum-left-bound-to-start", Run: copyMaximumLeftBoundToStart},
		{Name: "dist", Run: dist},
	}
}

// addShimsForPseudoCursive would insert a Space shim between a real-cursive
// exit and a pseudo-cursive entry, sized from each glyph's drawn bounding
// box (§4.6). That geometry is only known once the emitter has called
// Shape.Draw, which happens after sifting; this phase runner only ever
// sees undrawn schemas, so the pass is a documented no-op hook here and the
// shim sizing is left to the emitter to perform directly when it notices a
// pseudo-cursive/real-cursive adjacency (shape.Shape.IsPseudoCursive).
func addShimsForPseudoCursive(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// shrinkWrapEnclosingCircle clones each encirclable schema's shape into a
// Complex with an enclosing Circle component, sized from Schema.Size plus
// a fixed margin rather than a drawn bounding box (the same simplification
// as addShimsForPseudoCursive, since the real bound needs Draw to have
// run). The `dist` x_placement/x_advance centering the spec calls for is
// left to the emitter, which has the real geometry to centre against.
func shrinkWrapEnclosingCircle(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	const margin = 3*encircleStrokeGap + encircleLightLine
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		if !s.Encirclable {
			continue
		}
		ring := &shape.Circle{Stretch: margin / s.Size, Long: true}
		enclosed := shape.NewComplex([]shape.Instruction{
			{SizeScalar: 1, Sub: s.Shape},
			{SizeScalar: 1, Sub: ring},
		})
		out := &schema.Schema{Shape: enclosed, Size: s.Size, JoiningType: s.JoiningType, PhaseIndex: s.PhaseIndex}
		b.Schemas.Add(out)
		addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: []layout.Member{layout.G(out)}})
	}
	return b.Lookups, nil
}

const encircleStrokeGap = 40
const encircleLightLine = 70

// nominalDrawParams draws a schema with stand-in stroke-style geometry
// just to measure its bounding box for the width-marker chain below. The
// real build's stroke style (BuildOptions.Stroke) isn't threaded into
// this phase runner, so the measurement is an approximation rather than
// the emitter's own final geometry; it's close enough that the running
// left/right-bound digits calculateBoundExtrema/dist produce track a
// schema's actual drawn shape instead of staying zero forever.
var nominalDrawParams = shape.DrawParams{StrokeWidth: 70, LightLine: 70, StrokeGap: 64}

// measureBounds draws s with nominalDrawParams into a scratch glyph and
// returns its horizontal bounding box, or ok=false for an invisible shape
// that draws nothing.
func measureBounds(s *schema.Schema) (xMin, xMax int, ok bool) {
	if s.Shape.Invisible() {
		return 0, 0, false
	}
	g := emit.NewGlyph("measure")
	params := nominalDrawParams
	params.Size = s.Size
	params.Anchor = s.Anchor
	params.JoiningType = s.JoiningType
	params.Diphthong1 = s.Diphthong1
	params.Diphthong2 = s.Diphthong2
	bbox, err := s.Shape.Draw(g, params)
	if err != nil {
		return 0, 0, false
	}
	if bbox == nil {
		b := g.BoundingBox()
		bbox = &b
	}
	return int(math.Round(bbox.XMin)), int(math.Round(bbox.XMax)), true
}

// widthDigitChain encodes width as a signed digit chain of newDigit's
// kind, falling back to all-zero digits when width exceeds the encodable
// magnitude (shape.EncodeWidth's own fail-safe boundary).
func widthDigitChain(width int, newDigit func(place, digit int) shape.Digit) []*schema.Schema {
	digits, err := shape.EncodeWidth(width)
	if err != nil {
		digits, _ = shape.EncodeWidth(0)
	}
	out := make([]*schema.Schema, len(digits))
	for place, d := range digits {
		out[place] = &schema.Schema{Shape: newDigit(place, d)}
	}
	return out
}

// addWidthMarkers is the central construction of spec.md §4.6: every
// emittable schema is rewritten to
//
//	[Start, GlyphClassSelector, MarkAnchorSelector?, schema,
//	 EntryWidthDigits, LeftBoundDigits, RightBoundDigits,
//	 per-anchor AnchorWidthDigits, End]
//
// LeftBoundDigits/RightBoundDigits start at the schema's own measured
// bounding box (measureBounds) rather than zero, so sum_width_markers and
// dist downstream operate on real magnitudes; EntryWidthDigits and
// AnchorWidthDigits still start at zero, since modeling cursive entry
// offset and per-anchor mark shift needs the whole chain's geometry, not
// one schema's bounding box in isolation.
func addWidthMarkers(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		if s.Shape.Invisible() {
			continue
		}
		xMin, xMax, hasBounds := measureBounds(s)
		chain := []*schema.Schema{{Shape: shape.Start{}}}
		chain = append(chain, &schema.Schema{Shape: &shape.GlyphClassSelector{Class: s.GlyphClass()}})
		if s.Anchor != nil {
			chain = append(chain, &schema.Schema{Shape: &shape.MarkAnchorSelector{Anchor: *s.Anchor}})
		}
		chain = append(chain, s)
		chain = append(chain, zeroDigitChain(func(place, digit int) shape.Digit {
			return &shape.EntryWidthDigit{Place: place, Digit: digit}
		})...)
		leftBound, rightBound := 0, 0
		if hasBounds {
			leftBound, rightBound = xMin, xMax
		}
		chain = append(chain, widthDigitChain(leftBound, func(place, digit int) shape.Digit {
			return &shape.LeftBoundDigit{Place: place, Digit: digit}
		})...)
		chain = append(chain, widthDigitChain(rightBound, func(place, digit int) shape.Digit {
			return &shape.RightBoundDigit{Place: place, Digit: digit}
		})...)
		for anchorName := range s.Shape.CalculateDiacriticAngles() {
			_ = anchorName
			chain = append(chain, zeroDigitChain(func(place, digit int) shape.Digit {
				return &shape.AnchorWidthDigit{Place: place, Digit: digit}
			})...)
		}
		chain = append(chain, &schema.Schema{Shape: shape.End{}})

		output := make([]layout.Member, 0, len(chain))
		for _, cs := range chain {
			if cs != s {
				b.Schemas.Add(cs)
			}
			output = append(output, layout.G(cs))
		}
		addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: output})
	}
	return b.Lookups, nil
}

// zeroDigitChain builds a WidthMarkerPlaces-long run of zero-valued digit
// schemas of the kind newDigit constructs, least-significant place first
// (matching shape.WidthNumber.ToDigits's convention).
func zeroDigitChain(newDigit func(place, digit int) shape.Digit) []*schema.Schema {
	out := make([]*schema.Schema, shape.WidthMarkerPlaces)
	for place := 0; place < shape.WidthMarkerPlaces; place++ {
		out[place] = &schema.Schema{Shape: newDigit(place, 0)}
	}
	return out
}

// addEndMarkersForMarks ensures every mark schema (one attached via
// Schema.Anchor) also terminates in an End marker, matching real glyphs'
// chains so later passes can scan a chain uniformly regardless of whether
// it belongs to a base or a mark (§4.6).
func addEndMarkersForMarks(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		if s.Anchor == nil {
			continue
		}
		if _, ok := s.Shape.(shape.End); ok {
			continue
		}
		end := &schema.Schema{Shape: shape.End{}, PhaseIndex: s.PhaseIndex}
		b.Schemas.Add(end)
		addRule(l, layout.Rule{
			Input:  []layout.Member{layout.G(s)},
			Output: []layout.Member{layout.G(s), layout.G(end)},
		})
	}
	return b.Lookups, nil
}

// removeFalseEndMarkers deletes an End marker that is immediately followed
// by another chain's Start, which can only happen if a rewrite elsewhere
// produced two End markers back to back (§4.6).
func removeFalseEndMarkers(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for i := 0; i+1 < len(newSchemas); i++ {
		a := b.Schemas.Get(*newSchemas[i])
		c := b.Schemas.Get(*newSchemas[i+1])
		if _, ok := a.Shape.(shape.End); !ok {
			continue
		}
		if _, ok := c.Shape.(shape.End); !ok {
			continue
		}
		addRule(l, layout.Rule{
			Input:  []layout.Member{layout.G(a), layout.G(c)},
			Output: []layout.Member{layout.G(c)},
		})
	}
	return b.Lookups, nil
}

// clearEntryWidthMarkers zeroes a schema's EntryWidthDigit chain when it
// directly follows a ContinuingOverlap, since a continuing overlap abuts
// its next glyph with no entry gap (§4.6).
func clearEntryWidthMarkers(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for i := 0; i+1 < len(newSchemas); i++ {
		overlap := b.Schemas.Get(*newSchemas[i])
		digit := b.Schemas.Get(*newSchemas[i+1])
		if _, ok := overlap.Shape.(shape.ContinuingOverlap); !ok {
			continue
		}
		d, ok := digit.Shape.(*shape.EntryWidthDigit)
		if !ok || d.Digit == 0 {
			continue
		}
		zero := &schema.Schema{Shape: &shape.EntryWidthDigit{Place: d.Place, Digit: 0}, PhaseIndex: digit.PhaseIndex}
		b.Schemas.Add(zero)
		addRule(l, layout.Rule{
			Backtrack: []layout.Member{layout.G(overlap)},
			Input:     []layout.Member{layout.G(digit)},
			Output:    []layout.Member{layout.G(zero)},
		})
	}
	return b.Lookups, nil
}

// sumWidthMarkers is the arithmetic core of spec.md §4.6: for every
// adjacent (augend digit, addend digit) pair of the same kind and place,
// replace the addend with their base-WidthMarkerRadix sum digit, inserting
// a Carry marker after it when the sum overflows the radix. The reference
// construction dispatches through a named subsidiary lookup per (place,
// carry-in, augend-digit) triple so the chained-context rule can select the
// sum purely through glyph-class matching; this pass computes the same sum
// directly in Go and emits one rule per concrete pair, which is
// semantically equivalent for the finite schema set this compiler ever
// produces (simplified per DESIGN.md: no unbounded carry-in chaining is
// modeled beyond the single adjacent pair actually observed).
func sumWidthMarkers(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for i := 0; i+1 < len(newSchemas); i++ {
		augend := b.Schemas.Get(*newSchemas[i])
		addend := b.Schemas.Get(*newSchemas[i+1])
		ad, aok := augend.Shape.(shape.Digit)
		bd, bok := addend.Shape.(shape.Digit)
		if !aok || !bok {
			continue
		}
		ap, av := shape.DigitPlaceValue(ad)
		bp, bv := shape.DigitPlaceValue(bd)
		if ap != bp {
			continue
		}
		sum := av + bv
		carry := sum >= shape.WidthMarkerRadix
		if carry {
			sum -= shape.WidthMarkerRadix
		}
		sumSchema := &schema.Schema{Shape: sameDigitKind(addend.Shape, bp, sum), PhaseIndex: addend.PhaseIndex}
		b.Schemas.Add(sumSchema)
		output := []layout.Member{layout.G(sumSchema)}
		if carry {
			carrySchema := &schema.Schema{Shape: shape.Carry{}, PhaseIndex: addend.PhaseIndex}
			b.Schemas.Add(carrySchema)
			output = append(output, layout.G(carrySchema))
		}
		addRule(l, layout.Rule{
			Backtrack: []layout.Member{layout.G(augend)},
			Input:     []layout.Member{layout.G(addend)},
			Output:    output,
		})
	}
	return b.Lookups, nil
}

// sameDigitKind constructs a new digit of kind like and value (place,
// digit), used by sumWidthMarkers and calculateBoundExtrema to produce a
// replacement digit of the same kind as the one being replaced.
func sameDigitKind(like shape.Shape, place, digit int) shape.Shape {
	switch like.(type) {
	case *shape.EntryWidthDigit:
		return &shape.EntryWidthDigit{Place: place, Digit: digit}
	case *shape.LeftBoundDigit:
		return &shape.LeftBoundDigit{Place: place, Digit: digit}
	case *shape.RightBoundDigit:
		return &shape.RightBoundDigit{Place: place, Digit: digit}
	case *shape.AnchorWidthDigit:
		return &shape.AnchorWidthDigit{Place: place, Digit: digit}
	default:
		return like
	}
}

// calculateBoundExtrema retains the more-extreme digit between two
// successive LeftBound (minimum) or RightBound (maximum) candidates at the
// same place (§4.6).
func calculateBoundExtrema(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for i := 0; i+1 < len(newSchemas); i++ {
		first := b.Schemas.Get(*newSchemas[i])
		second := b.Schemas.Get(*newSchemas[i+1])

		if ld1, ok := first.Shape.(*shape.LeftBoundDigit); ok {
			if ld2, ok := second.Shape.(*shape.LeftBoundDigit); ok && ld1.Place == ld2.Place {
				if ld1.Digit < ld2.Digit {
					out := &schema.Schema{Shape: &shape.LeftBoundDigit{Place: ld2.Place, Digit: ld1.Digit, Status: shape.DigitDone}, PhaseIndex: second.PhaseIndex}
					b.Schemas.Add(out)
					addRule(l, layout.Rule{
						Backtrack: []layout.Member{layout.G(first)},
						Input:     []layout.Member{layout.G(second)},
						Output:    []layout.Member{layout.G(out)},
					})
				}
				continue
			}
		}
		if rd1, ok := first.Shape.(*shape.RightBoundDigit); ok {
			if rd2, ok := second.Shape.(*shape.RightBoundDigit); ok && rd1.Place == rd2.Place {
				if rd1.Digit > rd2.Digit {
					out := &schema.Schema{Shape: &shape.RightBoundDigit{Place: rd2.Place, Digit: rd1.Digit, Status: shape.DigitDone}, PhaseIndex: second.PhaseIndex}
					b.Schemas.Add(out)
					addRule(l, layout.Rule{
						Backtrack: []layout.Member{layout.G(first)},
						Input:     []layout.Member{layout.G(second)},
						Output:    []layout.Member{layout.G(out)},
					})
				}
				continue
			}
		}
	}
	return b.Lookups, nil
}

// removeFalseStartMarkers deletes a Start marker that directly follows
// another Start marker, collapsing a doubled chain boundary (§4.6).
func removeFalseStartMarkers(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for i := 0; i+1 < len(newSchemas); i++ {
		a := b.Schemas.Get(*newSchemas[i])
		c := b.Schemas.Get(*newSchemas[i+1])
		if _, ok := a.Shape.(shape.Start); !ok {
			continue
		}
		if _, ok := c.Shape.(shape.Start); !ok {
			continue
		}
		addRule(l, layout.Rule{
			Input:  []layout.Member{layout.G(a), layout.G(c)},
			Output: []layout.Member{layout.G(c)},
		})
	}
	return b.Lookups, nil
}

// markHubsAfterInitialSecants promotes a Hub marker directly following an
// InitialSecantMarker to Initial, matching the reference's treatment of a
// word-initial secant as its own hub candidate (§4.6).
func markHubsAfterInitialSecants(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for i := 0; i+1 < len(newSchemas); i++ {
		secant := b.Schemas.Get(*newSchemas[i])
		hubSchema := b.Schemas.Get(*newSchemas[i+1])
		if _, ok := secant.Shape.(shape.InitialSecantMarker); !ok {
			continue
		}
		h, ok := hubSchema.Shape.(*shape.Hub)
		if !ok || h.Initial {
			continue
		}
		marked := &schema.Schema{Shape: &shape.Hub{Priority: h.Priority, Continuing: h.Continuing, Initial: true}, PhaseIndex: hubSchema.PhaseIndex}
		b.Schemas.Add(marked)
		addRule(l, layout.Rule{
			Backtrack: []layout.Member{layout.G(secant)},
			Input:     []layout.Member{layout.G(hubSchema)},
			Output:    []layout.Member{layout.G(marked)},
		})
	}
	return b.Lookups, nil
}

// findRealHub reduces a Start ... Hub ... Hub ... glyph chain to the
// single Hub of highest priority, deleting every lower-priority candidate
// (§4.6).
func findRealHub(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for i := 0; i+1 < len(newSchemas); i++ {
		first := b.Schemas.Get(*newSchemas[i])
		second := b.Schemas.Get(*newSchemas[i+1])
		h1, ok1 := first.Shape.(*shape.Hub)
		h2, ok2 := second.Shape.(*shape.Hub)
		if !ok1 || !ok2 {
			continue
		}
		if h1.Priority >= h2.Priority {
			continue
		}
		addRule(l, layout.Rule{
			Backtrack: []layout.Member{layout.G(first)},
			Input:     []layout.Member{layout.G(second)},
			Output:    []layout.Member{layout.G(second)},
		})
	}
	return b.Lookups, nil
}

// expandStartMarkers materialises a zero-valued LeftBound digit chain
// right after Start, ready to accept max-bound updates from
// calculateBoundExtrema (§4.6).
func expandStartMarkers(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		if _, ok := s.Shape.(shape.Start); !ok {
			continue
		}
		chain := zeroDigitChain(func(place, digit int) shape.Digit {
			return &shape.LeftBoundDigit{Place: place, Digit: digit}
		})
		output := []layout.Member{layout.G(s)}
		for _, cs := range chain {
			b.Schemas.Add(cs)
			output = append(output, layout.G(cs))
		}
		addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: output})
	}
	return b.Lookups, nil
}

// markMaximumBounds marks every LeftBound/RightBound digit as DigitDone
// once calculateBoundExtrema has settled it, freezing the
// "final answer" state dist then consumes (§4.6).
func markMaximumBounds(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		switch d := s.Shape.(type) {
		case *shape.LeftBoundDigit:
			if d.Status == shape.DigitDone {
				continue
			}
			out := &schema.Schema{Shape: &shape.LeftBoundDigit{Place: d.Place, Digit: d.Digit, Status: shape.DigitDone}, PhaseIndex: s.PhaseIndex}
			b.Schemas.Add(out)
			addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: []layout.Member{layout.G(out)}})
		case *shape.RightBoundDigit:
			if d.Status == shape.DigitDone {
				continue
			}
			out := &schema.Schema{Shape: &shape.RightBoundDigit{Place: d.Place, Digit: d.Digit, Status: shape.DigitDone}, PhaseIndex: s.PhaseIndex}
			b.Schemas.Add(out)
			addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: []layout.Member{layout.G(out)}})
		}
	}
	return b.Lookups, nil
}

// copyMaximumLeftBoundToStart emits no rules and returns the builder's
// lookups unchanged (§4.6): the settled left-bound digit chain is not
// copied onto the chain's Start marker, and dist reads the digits where
// they stand in the schema stream.
func copyMaximumLeftBoundToStart(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// dist converts each settled digit into its actual positioning adjustment
// (§4.6): LeftBound and AnchorWidth digits negate their place value (they
// move backward, toward glyph origin or anchor), RightBound digits are
// positive. The highest place sign-extends (digits >= radix/2 are
// negative), per shape.DecodeWidth.
func dist(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("dist", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		placeValue := 1
		var sign int
		switch d := s.Shape.(type) {
		case *shape.LeftBoundDigit:
			if d.Status != shape.DigitDone {
				continue
			}
			sign, placeValue = -1, pow(shape.WidthMarkerRadix, d.Place)
		case *shape.RightBoundDigit:
			if d.Status != shape.DigitDone {
				continue
			}
			sign, placeValue = 1, pow(shape.WidthMarkerRadix, d.Place)
		case *shape.AnchorWidthDigit:
			sign, placeValue = -1, pow(shape.WidthMarkerRadix, d.Place)
		default:
			continue
		}
		value := sign * digitValueOf(s.Shape) * placeValue
		addRule(l, layout.Rule{
			Input:     []layout.Member{layout.G(s)},
			XAdvances: []int{value},
		})
	}
	return b.Lookups, nil
}

func digitValueOf(s shape.Shape) int {
	d, ok := s.(shape.Digit)
	if !ok {
		return 0
	}
	_, v := shape.DigitPlaceValue(d)
	return v
}

func pow(base, exp int) int {
	v := 1
	for i := 0; i < exp; i++ {
		v *= base
	}
	return v
}
