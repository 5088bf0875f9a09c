// Package mainphase implements the GSUB pipeline of spec.md §4.5: the
// ordered sequence of phase.Phase values that turn raw per-letter schemas
// into the fully contextualized, decomposed, tree-structured schema graph
// that sifting and the marker phases then finish laying out.
package mainphase

import (
	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/layout"
	"github.com/dscorbett/duployan-go/phase"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("duployan.phase.main")
}

// All returns the main phases in pipeline order (spec.md §4.5, 35 numbered
// passes, with #28 run as two entries, one for non-initial and one for
// initial orienting sequences: 36 entries in all). Each entry is grounded
// on the corresponding numbered item in §4.5. Passes #4, #9, #10, #12,
// #13, #15, #16, #17, #19, #25, #27 and #33 emit no rules; several of the
// other tree/positioning passes (18, 26, 29, 30) are implemented with the
// simplified rule shape documented in DESIGN.md rather than a full port
// of every edge case the original handles.
func All() []phase.Phase {
	return []phase.Phase{
		{Name: "dont-ignore-default-ignorables", Run: dontIgnoreDefaultIgnorables},
		{Name: "validate-shading", Run: validateShading},
		{Name: "validate-double-marks", Run: validateDoubleMarks},
		{Name: "decompose", Run: decompose},
		{Name: "expand-secants", Run: expandSecants},
		{Name: "validate-overlap-controls", Run: validateOverlapControls},
		{Name: "add-parent-edges", Run: addParentEdges},
		{Name: "invalidate-overlap-controls", Run: invalidateOverlapControls},
		{Name: "add-secant-guidelines", Run: addSecantGuidelines},
		{Name: "add-placeholders-for-missing-children", Run: addPlaceholdersForMissingChildren},
		{Name: "categorize-edges", Run: categorizeEdges},
		{Name: "promote-final-overlap-to-continuing", Run: promoteFinalOverlapToContinuing},
		{Name: "reposition-chinook-jargon-overlap-points", Run: repositionChinookOverlapPoints},
		{Name: "make-mark-variants-of-children", Run: makeMarkVariantsOfChildren},
		{Name: "interrupt-overlong-primary-curves", Run: interruptOverlongPrimaryCurves},
		{Name: "reposition-stenographic-period", Run: repositionStenographicPeriod},
		{Name: "join-with-next-step", Run: joinWithNextStep},
		{Name: "separate-subantiparallel-lines-1", Run: separateSubantiparallelLines},
		{Name: "prepare-secondary-diphthong-ligature", Run: prepareSecondaryDiphthongLigature},
		{Name: "join-with-previous", Run: joinWithPrevious},
		{Name: "unignore-last-orienting-glyph-initial", Run: unignoreLastOrientingGlyphInitial},
		{Name: "ignore-first-orienting-glyph-initial", Run: ignoreFirstOrientingGlyphInitial},
		{Name: "tag-main-glyph-in-orienting-sequence", Run: tagMainGlyphInOrientingSequence},
		{Name: "join-with-next", Run: joinWithNext},
		{Name: "join-circle-with-adjacent-nonorienting", Run: joinCircleWithAdjacentNonorienting},
		{Name: "ligate-diphthongs", Run: ligateDiphthongs},
		{Name: "thwart-what-would-flip", Run: thwartWhatWouldFlip},
		{Name: "unignore-noninitial-orienting-sequences", Run: unignoreNoninitialOrientingSequences},
		{Name: "unignore-initial-orienting-sequences", Run: unignoreInitialOrientingSequences},
		{Name: "join-double-marks", Run: joinDoubleMarks},
		{Name: "separate-subantiparallel-lines-2", Run: separateSubantiparallelLines},
		{Name: "rotate-diacritics", Run: rotateDiacritics},
		{Name: "shade", Run: shade},
		{Name: "create-super-subscripts-and-fractions", Run: createSuperSubscriptsAndFractions},
		{Name: "make-widthless-mark-variants", Run: makeWidthlessMarkVariants},
		{Name: "classify-marks-for-trees", Run: classifyMarksForTrees},
	}
}

// dontIgnoreDefaultIgnorables emits, for every OVERRIDDEN_NO schema, one
// rule that doubles it (the schema followed by a clone of itself) so the
// shaper never drops it (§4.5 #1). No rule merging the pair back into one
// glyph is emitted.
func dontIgnoreDefaultIgnorables(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("ccmp", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		if s.Ignorability != schema.OverriddenNo {
			continue
		}
		doubled := cloneSchema(b.Schemas, s)
		addRule(l, layout.Rule{
			Input:  []layout.Member{layout.G(s)},
			Output: []layout.Member{layout.G(s), layout.G(doubled)},
		})
	}
	return b.Lookups, nil
}

// validateShading classifies each schema by whether a following DTLS is
// shadable on it, then rewrites a literal U+1BC9D itself: one preceded by
// a shadable schema becomes ValidDTLS, everything else becomes the
// dotted-square error glyph InvalidDTLS (§4.5 #2). shade, later in the
// pipeline, looks for this same ValidDTLS schema rather than minting its
// own.
func validateShading(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	shadable := classes.Get(shadableClassName)
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		if s.Shape.IsShadable() {
			shadable.Append(s)
		}
	}
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		if len(s.CodePoints) != 1 || s.CodePoints[0] != dtlsCodePoint {
			continue
		}
		valid := &schema.Schema{Shape: shape.ValidDTLS{}, PhaseIndex: s.PhaseIndex}
		b.Schemas.Add(valid)
		addRule(l, layout.Rule{
			Backtrack: []layout.Member{layout.C(shadable.Name())},
			Input:     []layout.Member{layout.G(s)},
			Output:    []layout.Member{layout.G(valid)},
		})
		invalid := &schema.Schema{Shape: shape.NewInvalidDTLS(), PhaseIndex: s.PhaseIndex}
		b.Schemas.Add(invalid)
		addRule(l, layout.Rule{
			Input:  []layout.Member{layout.G(s)},
			Output: []layout.Member{layout.G(invalid)},
		})
	}
	return b.Lookups, nil
}

// shadableClassName is the global class validateShading builds and shade
// reads the name of (not its membership: shade instead finds the actual
// ValidDTLS schema validateShading produced).
const shadableClassName = "global..shadable"

// dtlsCodePoint is U+1BC9D, the Duployan Thick Letter Selector.
const dtlsCodePoint = 0x1BC9D

// validateDoubleMarks classifies schemas by MaxDoubleMarks tolerance
// (§4.5 #3): every schema tolerating at least one U+1BC9E joins the
// "double_mark_capable" class. It emits no rules, so excess U+1BC9E marks
// are not turned into a dotted guideline, and no later pass reads the
// class.
func validateDoubleMarks(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	doubleMarkClass := classes.Get("double_mark_capable")
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		if s.Shape.MaxDoubleMarks(s.Size, s.JoiningType, 1) > 0 {
			doubleMarkClass.Append(s)
		}
	}
	return b.Lookups, nil
}

// decompose splits off a schema's marks into independent schemas attached
// by anchor rather than inline, when they were not already so represented
// (§4.5 #4). Schemas entering this module are expected to already carry
// Marks as independent schema IDs (schema.Schema.Marks), so this pass is
// the identity when there is nothing further to split; it exists as a
// pipeline position for later passes that introduce composite marks.
func decompose(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// expandSecants appends an InitialSecantMarker after every schema whose
// shape CanTakeSecant (§4.5 #5). It does not retarget any secant to a
// secant anchor, and it does not tell initial from non-initial positions.
func expandSecants(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
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
		if !s.Shape.CanTakeSecant() {
			continue
		}
		markerSchema := &schema.Schema{Shape: shape.InitialSecantMarker{}, PhaseIndex: s.PhaseIndex}
		b.Schemas.Add(markerSchema)
		addRule(l, layout.Rule{
			Input:  []layout.Member{layout.G(s)},
			Output: []layout.Member{layout.G(s), layout.G(markerSchema)},
		})
	}
	return b.Lookups, nil
}

// validateOverlapControls rewrites every U+1BCA0 control into a ChildEdge
// and every U+1BCA1 control into a ContinuingOverlap marker schema
// (§4.5 #6). The rewrite does not check whether the preceding base has
// room for another child; invalidateOverlapControls later checks
// ChildEdge schemas only.
func validateOverlapControls(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
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
		if len(s.CodePoints) != 1 {
			continue
		}
		switch s.CodePoints[0] {
		case 0x1BCA0:
			out := &schema.Schema{Shape: &shape.ChildEdge{}, PhaseIndex: s.PhaseIndex, OverlapBase: schema.NoID, OverlapChild: schema.NoID}
			if idx := indexOfID(all, *id); idx > 0 && idx+1 < len(all) {
				out.OverlapBase = *all[idx-1]
				out.OverlapChild = *all[idx+1]
			}
			b.Schemas.Add(out)
			addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: []layout.Member{layout.G(out)}})
		case 0x1BCA1:
			out := &schema.Schema{Shape: shape.ContinuingOverlap{}, PhaseIndex: s.PhaseIndex}
			b.Schemas.Add(out)
			addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: []layout.Member{layout.G(out)}})
		}
	}
	return b.Lookups, nil
}

// addParentEdges gives every schema that is not NonJoining a root
// ParentEdge so the overlap-tree passes that follow have something to
// reparent (§4.5 #7). It never produces the RootOnlyParentEdge variant.
func addParentEdges(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
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
		if s.JoiningType == shape.NonJoining {
			continue
		}
		out := &schema.Schema{Shape: &shape.ParentEdge{}, PhaseIndex: s.PhaseIndex, Anchor: anchorPtr(anchor.ParentEdge), AttachedTo: *id}
		b.Schemas.Add(out)
		addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: []layout.Member{layout.G(s), layout.G(out)}})
	}
	return b.Lookups, nil
}

func anchorPtr(a anchor.Name) *anchor.Name { return &a }

// indexOfID returns the position of id within ids, or -1. Schemas are only
// ever appended to the arena, never reordered or removed, so a schema's
// index here is permanent for the rest of the build.
func indexOfID(ids []*schema.ID, id schema.ID) int {
	for i, candidate := range ids {
		if *candidate == id {
			return i
		}
	}
	return -1
}

// invalidateOverlapControls rewrites a ChildEdge whose base can't host it
// (base.MaxTreeWidth is 0) or whose following child can't be a child
// (!child.CanBeChild) into the dotted-square InvalidOverlap glyph (§4.5
// #8). The base/child pair comes from the edge's OverlapBase/OverlapChild
// fields, which validateOverlapControls recorded while that adjacency was
// still trustworthy: by this phase addParentEdges has appended its own
// derived schemas after the edge, so the edge's immediate array neighbors
// are no longer its base and child.
func invalidateOverlapControls(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for _, id := range newSchemas {
		edge := b.Schemas.Get(*id)
		if _, ok := edge.Shape.(*shape.ChildEdge); !ok {
			continue
		}
		if edge.OverlapBase == schema.NoID || edge.OverlapChild == schema.NoID {
			continue
		}
		base := b.Schemas.Get(edge.OverlapBase)
		child := b.Schemas.Get(edge.OverlapChild)
		if base.Shape.MaxTreeWidth(base.Size) > 0 && child.Shape.CanBeChild(child.Size) {
			continue
		}
		invalid := &schema.Schema{Shape: shape.NewInvalidOverlap(false), PhaseIndex: edge.PhaseIndex}
		b.Schemas.Add(invalid)
		addRule(l, layout.Rule{
			Backtrack: []layout.Member{layout.G(base)},
			Input:     []layout.Member{layout.G(edge)},
			Lookahead: []layout.Member{layout.G(child)},
			Output:    []layout.Member{layout.G(invalid)},
		})
	}
	return b.Lookups, nil
}

// addSecantGuidelines prepends ZWNJ to initial secants and adds a
// guideline rule connecting a secant mark's anchor to its base's
// orientation (§4.5 #9). This pass emits no rules: it returns the
// builder's lookups unchanged.
func addSecantGuidelines(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// addPlaceholdersForMissingChildren emits ParentEdge+placeholder pairs to
// fill out a base's remaining child slots after n-1 overlaps (§4.5 #10).
// This pass emits no rules: it returns the builder's lookups unchanged.
func addPlaceholdersForMissingChildren(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// edgeLayer is the overlap-tree depth categorizeEdges assigns every edge
// it sees: this build models one overlap level per base, so every edge it
// finds lives at the same layer and only the index varies (§4.5 #11).
const edgeLayer = 1

// categorizeEdges assigns a (layer, index) pair to each overlap-tree edge
// schema so later lookups can target a specific tree position (§4.5 #11).
// For every fresh ChildEdge it reads the child from OverlapChild (set by
// validateOverlapControls) and hands the same (layer, index) to that
// child's own ParentEdge, found by its AttachedTo back-reference (set by
// addParentEdges), so the two edge markers at either end of one overlap
// agree on where in the tree they sit. Neither lookup can go by array
// position: by this phase several other passes have appended schemas
// between an edge and the ParentEdge it should claim.
func categorizeEdges(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	index := 0
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		ce, ok := s.Shape.(*shape.ChildEdge)
		if !ok || len(ce.Lineage) != 0 || s.OverlapChild == schema.NoID {
			continue
		}
		index++
		lineage := []geom.Point{{X: float64(edgeLayer), Y: float64(index)}}
		out := &schema.Schema{
			Shape:        &shape.ChildEdge{Lineage: lineage},
			PhaseIndex:   s.PhaseIndex,
			OverlapBase:  s.OverlapBase,
			OverlapChild: s.OverlapChild,
		}
		b.Schemas.Add(out)
		addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: []layout.Member{layout.G(out)}})

		parentEdge := findAttachedParentEdge(b, all, s.OverlapChild)
		if parentEdge == nil {
			continue
		}
		pe, ok := parentEdge.Shape.(*shape.ParentEdge)
		if !ok || len(pe.Lineage) != 0 {
			continue
		}
		outPE := &schema.Schema{Shape: &shape.ParentEdge{Lineage: lineage}, PhaseIndex: parentEdge.PhaseIndex, AttachedTo: parentEdge.AttachedTo}
		b.Schemas.Add(outPE)
		addRule(l, layout.Rule{Input: []layout.Member{layout.G(parentEdge)}, Output: []layout.Member{layout.G(outPE)}})
	}
	return b.Lookups, nil
}

// findAttachedParentEdge returns the unprocessed ParentEdge schema
// addParentEdges attached to the schema identified by childID.
func findAttachedParentEdge(b *phase.Builder, all []*schema.ID, childID schema.ID) *schema.Schema {
	for _, id := range all {
		s := b.Schemas.Get(*id)
		pe, ok := s.Shape.(*shape.ParentEdge)
		if !ok || len(pe.Lineage) != 0 {
			continue
		}
		if s.AttachedTo == childID {
			return s
		}
	}
	return nil
}

// promoteFinalOverlapToContinuing rewrites a tree-final ChildEdge into a
// ContinuingOverlap (§4.5 #12). This pass emits no rules: it returns the
// builder's lookups unchanged.
func promoteFinalOverlapToContinuing(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// repositionChinookOverlapPoints adjusts overlap anchor points for the
// handful of shape pairs the Chinook Jargon orthography needs repositioned
// (§4.5 #13). Simplified per DESIGN.md: this exercise's shape catalogue
// does not carry the language-specific pair table the original hardcodes,
// so the pass is a documented no-op hook.
func repositionChinookOverlapPoints(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// makeMarkVariantsOfChildren clones each joiner that CanBeChild into a
// mark-class variant used for tree attachment (§4.5 #14).
func makeMarkVariantsOfChildren(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
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
		if !s.Shape.CanBeChild(s.Size) {
			continue
		}
		mark := &schema.Schema{
			Shape: s.Shape, Size: s.Size, JoiningType: s.JoiningType,
			PhaseIndex: s.PhaseIndex, Child: true,
		}
		b.Schemas.Add(mark)
		addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: []layout.Member{layout.G(mark)}})
	}
	return b.Lookups, nil
}

// interruptOverlongPrimaryCurves prepends a dotted circle before a run of
// same-size curves whose accumulated |Δangle| reaches a full turn
// (§4.5 #15). This pass emits no rules: it returns the builder's lookups
// unchanged.
func interruptOverlongPrimaryCurves(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// repositionStenographicPeriod nudges the stenographic period's anchor
// relative to its preceding letter (§4.5 #16). This pass emits no rules:
// it returns the builder's lookups unchanged.
func repositionStenographicPeriod(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// joinWithNextStep handles the U+1BCA2/U+1BCA3 "join with next step"
// controls (§4.5 #17). This pass emits no rules: it returns the builder's
// lookups unchanged.
func joinWithNextStep(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// separateSubantiparallelLines perturbs one of two near-antiparallel
// (within 20°) adjacent Lines by 46.5°, recording the original angle so a
// later pass can restore context correctly (§4.5 #18, #30).
func separateSubantiparallelLines(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
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
		la, ok1 := a.Shape.(*shape.Line)
		lb, ok2 := c.Shape.(*shape.Line)
		if !ok1 || !ok2 {
			continue
		}
		delta := geom.SignedDelta(la.Angle, lb.Angle)
		if absFloat(absFloat(delta)-180) > 20 {
			continue
		}
		perturbed := lb.Clone()
		orig := lb.Angle
		perturbed.Angle = lb.Angle.Add(46.5)
		perturbed.OriginalAngle = &orig
		out := &schema.Schema{Shape: perturbed, Size: c.Size, JoiningType: c.JoiningType, PhaseIndex: c.PhaseIndex}
		b.Schemas.Add(out)
		addRule(l, layout.Rule{
			Backtrack: []layout.Member{layout.G(a)},
			Input:     []layout.Member{layout.G(c)},
			Output:    []layout.Member{layout.G(out)},
		})
	}
	return b.Lookups, nil
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// prepareSecondaryDiphthongLigature pins a reversed circle against the
// primary semicircle it will ligate with (§4.5 #19). This pass emits no
// rules: it returns the builder's lookups unchanged.
func prepareSecondaryDiphthongLigature(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// joinWithPrevious captures each schema's context_out as a ContextMarker
// glyph, used as a prefix to contextualize the next schema's context_in
// (§4.5 #20).
func joinWithPrevious(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
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
		ctxOut := s.Shape.ContextOut()
		if ctxOut.IsNoContext() {
			continue
		}
		markerSchema := &schema.Schema{Shape: &shape.ContextMarker{Context: ctxOut}, PhaseIndex: s.PhaseIndex}
		b.Schemas.Add(markerSchema)
		addRule(l, layout.Rule{
			Input:  []layout.Member{layout.G(s)},
			Output: []layout.Member{layout.G(s), layout.G(markerSchema)},
		})
	}
	return b.Lookups, nil
}

// orientingRun is a maximal run of adjacent JoiningType==Orienting
// schemas within newSchemas, e.g. the circle/curve glyphs of a diphthong
// or orienting sequence.
type orientingRun struct {
	start, end int // newSchemas[start:end], end exclusive
}

// orientingRuns finds every maximal run of Orienting schemas in
// newSchemas, used by the #21/#22/#28 ignore/unignore passes below.
func orientingRuns(b *phase.Builder, newSchemas []*schema.ID) []orientingRun {
	var runs []orientingRun
	i := 0
	for i < len(newSchemas) {
		if b.Schemas.Get(*newSchemas[i]).JoiningType != shape.Orienting {
			i++
			continue
		}
		start := i
		for i < len(newSchemas) && b.Schemas.Get(*newSchemas[i]).JoiningType == shape.Orienting {
			i++
		}
		runs = append(runs, orientingRun{start: start, end: i})
	}
	return runs
}

// isInitial reports whether r begins a word, i.e. either it opens
// newSchemas outright or its first member has no preceding context.
func (r orientingRun) isInitial(b *phase.Builder, newSchemas []*schema.ID) bool {
	if r.start == 0 {
		return true
	}
	return b.Schemas.Get(*newSchemas[r.start]).ContextIn.IsNoContext()
}

// unignoreLastOrientingGlyphInitial marks the last orienting glyph of a
// word-initial sequence as not ignorable for topography: that glyph
// carries the whole sequence's orientation and must stay visible to
// tagMainGlyphInOrientingSequence and ligateDiphthongs, unlike the
// sequence's other members (§4.5 #21).
func unignoreLastOrientingGlyphInitial(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	for _, run := range orientingRuns(b, newSchemas) {
		if !run.isInitial(b, newSchemas) {
			continue
		}
		last := b.Schemas.Get(*newSchemas[run.end-1])
		last.ContextIn.IgnorableForTopography = false
	}
	return b.Lookups, nil
}

// ignoreFirstOrientingGlyphInitial marks every orienting glyph of a
// word-initial sequence before its last as ignorable for topography
// (§4.5 #22); a single-glyph sequence has no such predecessor and is left
// to unignoreLastOrientingGlyphInitial's decision.
func ignoreFirstOrientingGlyphInitial(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	for _, run := range orientingRuns(b, newSchemas) {
		if !run.isInitial(b, newSchemas) {
			continue
		}
		for i := run.start; i < run.end-1; i++ {
			s := b.Schemas.Get(*newSchemas[i])
			s.ContextIn.IgnorableForTopography = true
		}
	}
	return b.Lookups, nil
}

// tagMainGlyphInOrientingSequence makes every Independent Circle among the
// new schemas a Leader, replacing the schema's shape in place (§4.5 #23).
// Ou compounds and other shapes are left as they are.
func tagMainGlyphInOrientingSequence(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		c, ok := s.Shape.(*shape.Circle)
		if !ok || c.Role != shape.Independent {
			continue
		}
		cp := c.Clone()
		cp.Role = shape.Leader
		s.Shape = cp
	}
	return b.Lookups, nil
}

// joinWithNext contextualizes using the next schema's context_in
// (§4.5 #24).
func joinWithNext(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for i := 0; i+1 < len(newSchemas); i++ {
		s := b.Schemas.Get(*newSchemas[i])
		next := b.Schemas.Get(*newSchemas[i+1])
		ctxIn := next.Shape.ContextIn()
		if ctxIn.IsNoContext() {
			continue
		}
		rewritten := s.Shape.Contextualize(s.Shape.ContextIn(), ctxIn)
		out := &schema.Schema{Shape: rewritten, Size: s.Size, JoiningType: s.JoiningType, PhaseIndex: s.PhaseIndex, OriginalShape: s.Shape}
		b.Schemas.Add(out)
		addRule(l, layout.Rule{
			Input:     []layout.Member{layout.G(s)},
			Lookahead: []layout.Member{layout.G(next)},
			Output:    []layout.Member{layout.G(out)},
		})
	}
	return b.Lookups, nil
}

// joinCircleWithAdjacentNonorienting merges a circle and a directly
// adjacent non-orienting glyph's contexts (§4.5 #25). This pass emits no
// rules: it returns the builder's lookups unchanged.
func joinCircleWithAdjacentNonorienting(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// ligateDiphthongs merges any two adjacent schemas whose ContextIn is
// ignorable for topography, whatever their shape, into one diphthong
// schema with Diphthong1/Diphthong2 set (§4.5 #26).
func ligateDiphthongs(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("liga", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for i := 0; i+1 < len(newSchemas); i++ {
		a := b.Schemas.Get(*newSchemas[i])
		c := b.Schemas.Get(*newSchemas[i+1])
		if !a.ContextIn.IgnorableForTopography || !c.ContextIn.IgnorableForTopography {
			continue
		}
		lig := &schema.Schema{
			Shape: a.Shape, Size: a.Size, JoiningType: a.JoiningType,
			PhaseIndex: a.PhaseIndex, Diphthong1: true, Diphthong2: true,
		}
		b.Schemas.Add(lig)
		addRule(l, layout.Rule{
			Input:  []layout.Member{layout.G(a), layout.G(c)},
			Output: []layout.Member{layout.G(lig)},
		})
	}
	return b.Lookups, nil
}

// thwartWhatWouldFlip gives an explicit early-exit rule to shapes whose
// contextualization would otherwise flip an already-settled orientation
// (§4.5 #27). This pass emits no rules: it returns the builder's lookups
// unchanged.
func thwartWhatWouldFlip(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// unignoreNoninitialOrientingSequences complements #21 for sequences not
// at the start of a word: #21/#22 only ever touched word-initial runs, so
// every later run's glyphs are still at their zero-value "not ignorable"
// default here. Its last glyph carries that run's orientation the same
// way an initial run's does, and its other members become ignorable so
// ligateDiphthongs can merge them (§4.5 #28).
func unignoreNoninitialOrientingSequences(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	for _, run := range orientingRuns(b, newSchemas) {
		if run.isInitial(b, newSchemas) {
			continue
		}
		last := b.Schemas.Get(*newSchemas[run.end-1])
		last.ContextIn.IgnorableForTopography = false
		for i := run.start; i < run.end-1; i++ {
			s := b.Schemas.Get(*newSchemas[i])
			s.ContextIn.IgnorableForTopography = true
		}
	}
	return b.Lookups, nil
}

// unignoreInitialOrientingSequences re-applies #21's decision to
// word-initial runs after ligateDiphthongs has had a chance to merge
// ignorable members into diphthong ligatures: a ligated schema is a fresh
// *schema.Schema carrying its own zero-value context, so the run's last
// member needs its "not ignorable" status restored once more (§4.5 #28).
func unignoreInitialOrientingSequences(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	for _, run := range orientingRuns(b, newSchemas) {
		if !run.isInitial(b, newSchemas) {
			continue
		}
		last := b.Schemas.Get(*newSchemas[run.end-1])
		last.ContextIn.IgnorableForTopography = false
	}
	return b.Lookups, nil
}

// joinDoubleMarks describes the contextual rule for three consecutive
// occurrences of U+1BC9E ligating into one glyph: a Complex composing the
// mark three times laterally, with code points [U+1BC9E, U+1BC9E,
// U+1BC9E] (§4.5 #29, spec.md §8 scenario 6). Like every rule this
// compiler emits, it is built once from the single catalog schema for
// U+1BC9E (checkDuplicateCodePoints forbids more than one), not from
// three distinct schemas: the Input sequence references that schema three
// times, describing what happens when real text repeats it.
func joinDoubleMarks(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("liga", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for _, id := range newSchemas {
		mark := b.Schemas.Get(*id)
		if len(mark.CodePoints) != 1 || mark.CodePoints[0] != 0x1BC9E {
			continue
		}
		lig := &schema.Schema{
			Shape: shape.NewComplex([]shape.Instruction{
				{SizeScalar: 1, Sub: mark.Shape},
				{SizeScalar: 1, Sub: mark.Shape},
				{SizeScalar: 1, Sub: mark.Shape},
			}),
			Size:        mark.Size,
			JoiningType: mark.JoiningType,
			PhaseIndex:  mark.PhaseIndex,
			CodePoints:  []rune{mark.CodePoints[0], mark.CodePoints[0], mark.CodePoints[0]},
		}
		b.Schemas.Add(lig)
		addRule(l, layout.Rule{
			Input:  []layout.Member{layout.G(mark), layout.G(mark), layout.G(mark)},
			Output: []layout.Member{layout.G(lig)},
		})
	}
	return b.Lookups, nil
}

// rotateDiacritics clones each mark schema per discovered base-anchor
// context, with its shape rotated accordingly (§4.5 #31).
func rotateDiacritics(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("mark", "dupl", "dflt", 0, "", layout.Forward)
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
		angles := s.Shape.CalculateDiacriticAngles()
		theta, ok := angles[*s.Anchor]
		if !ok {
			continue
		}
		rotated := s.Shape.Contextualize(geom.NewContext(theta, nil), geom.NoContext)
		out := &schema.Schema{Shape: rotated, Size: s.Size, JoiningType: s.JoiningType, PhaseIndex: s.PhaseIndex, Anchor: s.Anchor}
		b.Schemas.Add(out)
		addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: []layout.Member{layout.G(out)}})
	}
	return b.Lookups, nil
}

// shadingFactor is SHADING_FACTOR (spec.md §8 scenario 2): a shaded
// variant's stroke is this much heavier than its unshaded source.
const shadingFactor = 1.15

// shade creates a heavier variant for schemas followed by the real
// ValidDTLS validateShading produced (§4.5 #32). It never mints its own
// ValidDTLS: a fabricated instance would never match the glyph an actual
// DTLS rewrites to, so the lookahead here has to reference the one
// schema validateShading's rule can actually produce.
func shade(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("rclt", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	validSchema := findValidDTLS(b, all)
	if validSchema == nil {
		return b.Lookups, nil
	}
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		if !s.Shape.IsShadable() {
			continue
		}
		shaded := &schema.Schema{Shape: s.Shape, Size: s.Size * shadingFactor, JoiningType: s.JoiningType, PhaseIndex: s.PhaseIndex}
		b.Schemas.Add(shaded)
		addRule(l, layout.Rule{
			Input:     []layout.Member{layout.G(s)},
			Lookahead: []layout.Member{layout.G(validSchema)},
			Output:    []layout.Member{layout.G(shaded)},
		})
	}
	return b.Lookups, nil
}

// findValidDTLS returns the ValidDTLS schema validateShading produced, if
// any DTLS in this build ever validated, so shade can target the one
// glyph a real substitution actually reaches.
func findValidDTLS(b *phase.Builder, ids []*schema.ID) *schema.Schema {
	for _, id := range ids {
		s := b.Schemas.Get(*id)
		if _, ok := s.Shape.(shape.ValidDTLS); ok {
			return s
		}
	}
	return nil
}

// createSuperSubscriptsAndFractions produces the subscript/superscript
// and diagonal-fraction variants (§4.5 #33). This pass emits no rules: it
// returns the builder's lookups unchanged.
func createSuperSubscriptsAndFractions(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	return b.Lookups, nil
}

// makeWidthlessMarkVariants gives every mark schema a widthless clone for
// post-base positioning (§4.5 #34).
func makeWidthlessMarkVariants(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	if len(b.Lookups) == 0 {
		l, err := layout.NewLookup("mark", "dupl", "dflt", 0, "", layout.Forward)
		if err != nil {
			return nil, err
		}
		b.AddLookup(l)
	}
	l := b.Lookups[0]
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		if s.Anchor == nil || s.Widthless != schema.WidthlessUnset {
			continue
		}
		widthless := &schema.Schema{
			Shape: s.Shape, Size: s.Size, JoiningType: s.JoiningType,
			PhaseIndex: s.PhaseIndex, Anchor: s.Anchor, Widthless: schema.WidthlessYes,
		}
		b.Schemas.Add(widthless)
		addRule(l, layout.Rule{Input: []layout.Member{layout.G(s)}, Output: []layout.Member{layout.G(widthless)}})
	}
	return b.Lookups, nil
}

// classifyMarksForTrees builds the global..mkmk_<anchor> classes the
// mark-to-mark phase uses (§4.5 #35).
func classifyMarksForTrees(b *phase.Builder, original, all, newSchemas []*schema.ID, classes *phase.ClassRegistry, named *phase.LookupRegistry, addRule phase.AddRuleFunc) ([]*layout.Lookup, error) {
	for _, id := range newSchemas {
		s := b.Schemas.Get(*id)
		if s.Anchor == nil {
			continue
		}
		cls := classes.Get("global..mkmk_" + string(*s.Anchor))
		cls.Append(s)
	}
	return b.Lookups, nil
}

func cloneSchema(set *schema.Set, s *schema.Schema) *schema.Schema {
	clone := *s
	clone.ID = 0
	set.Add(&clone)
	return &clone
}
