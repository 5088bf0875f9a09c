// Package duployan is the root of the Duployan font compiler core
// (spec.md §1): it wires the shape algebra, the phase pipeline, sifting,
// and the glyph emitter into a single Build entry point, the way
// opentype.go/font.go wire the teacher's parser, layout tables, and
// shaping engine behind ScalableFont.
package duployan

import (
	"fmt"
	"sort"

	"github.com/dscorbett/duployan-go/emit"
	"github.com/dscorbett/duployan-go/fontmodel"
	"github.com/dscorbett/duployan-go/layout"
	"github.com/dscorbett/duployan-go/phase"
	"github.com/dscorbett/duployan-go/phase/mainphase"
	"github.com/dscorbett/duployan-go/phase/markerphase"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/sift"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("duployan")
}

// StrokeStyle is the stroke-style configuration spec.md §1 names as half
// of the compiler's input: line thickness and minimum gap, threaded down
// into every Shape.Draw call via emit.Options.
type StrokeStyle struct {
	// StrokeWidth is the diameter of the circular nib used for a normal
	// stroke.
	StrokeWidth float64
	// LightLine is the diameter used for a de-emphasized ("light") line,
	// e.g. a secant guideline.
	LightLine float64
	// StrokeGap is the minimum clear space required between two strokes
	// that would otherwise overlap.
	StrokeGap float64
}

// BuildOptions bundles the stroke style with whatever else a build needs,
// passed explicitly into Build rather than read from package-level state
// (Design Note "Context pass-through, not globals").
type BuildOptions struct {
	Stroke StrokeStyle
}

// Result is everything a build produced: the schema arena (for anything
// downstream that wants to inspect an individual schema), the lookups
// collected from every phase plus sifting's rewrite lookup, the canonical
// glyphs sifting selected, their drawn geometry, and any accumulated
// non-fatal problems.
type Result struct {
	Schemas   *schema.Set
	Lookups   []*layout.Lookup
	Canonical []*schema.Schema
	Glyphs    []emit.Result
	Warnings  []CompileWarning
}

// Preview summarizes r.Glyphs the way cmd/duploycli's inspector does.
func (r *Result) Preview() *fontmodel.FontHeader {
	return fontmodel.Preview(r.Glyphs)
}

// Build runs the full pipeline of spec.md §2 over an input schema list:
// fail fast on duplicate code points (§7's one user-facing fail-fast
// condition), run every main phase then every marker phase to their
// respective fixed points, sift lookalikes together, and emit drawn
// glyphs for the canonical set.
func Build(schemas []*schema.Schema, opts BuildOptions) (*Result, error) {
	if err := checkDuplicateCodePoints(schemas); err != nil {
		return nil, err
	}

	set := schema.NewSet()
	ids := make([]*schema.ID, 0, len(schemas))
	namer := schema.NewNamer()
	for _, s := range schemas {
		id := set.Add(s)
		idCopy := id
		ids = append(ids, &idCopy)
		if _, err := namer.Name(s); err != nil {
			return nil, fmt.Errorf("duployan: naming initial schema: %w", err)
		}
	}

	ec := &errorCollector{}
	var lookups []*layout.Lookup

	runAll := func(phases []phase.Phase) error {
		for _, p := range phases {
			before := set.Len()
			out, err := phase.Run(p, set, ids)
			if err != nil {
				ec.addError(p.Name, err.Error(), SeverityCritical, nil)
				return fmt.Errorf("duployan: %w", err)
			}
			lookups = append(lookups, out...)
			for i := before; i < set.Len(); i++ {
				s := set.Get(schema.ID(i))
				if _, err := namer.Name(s); err != nil {
					return fmt.Errorf("duployan: naming schema introduced by phase %s: %w", p.Name, err)
				}
				idCopy := schema.ID(i)
				ids = append(ids, &idCopy)
			}
		}
		return nil
	}

	if err := runAll(mainphase.All()); err != nil {
		return nil, err
	}
	if err := runAll(markerphase.All()); err != nil {
		return nil, err
	}

	siftResult, err := sift.Sift(set)
	if err != nil {
		return nil, fmt.Errorf("duployan: sifting: %w", err)
	}
	lookups = append(lookups, siftResult.Rewrite)

	glyphs, err := emit.Emit(siftResult.Canonical, emit.Options{
		StrokeWidth: opts.Stroke.StrokeWidth,
		LightLine:   opts.Stroke.LightLine,
		StrokeGap:   opts.Stroke.StrokeGap,
	})
	if err != nil {
		return nil, fmt.Errorf("duployan: emitting: %w", err)
	}

	tracer().Infof("duployan: built %d lookups, %d canonical glyphs from %d input schemas", len(lookups), len(glyphs), len(schemas))

	return &Result{
		Schemas:   set,
		Lookups:   lookups,
		Canonical: siftResult.Canonical,
		Glyphs:    glyphs,
		Warnings:  ec.warnings,
	}, nil
}

// checkDuplicateCodePoints implements spec.md §7's single user-facing
// fail-fast condition: duplicate code points across schemas fail the
// build with a list of the offending hex code points.
func checkDuplicateCodePoints(schemas []*schema.Schema) error {
	seen := make(map[rune]bool)
	var dupes []rune
	dupeSeen := make(map[rune]bool)
	for _, s := range schemas {
		for _, cp := range s.CodePoints {
			if seen[cp] {
				if !dupeSeen[cp] {
					dupes = append(dupes, cp)
					dupeSeen[cp] = true
				}
				continue
			}
			seen[cp] = true
		}
	}
	if len(dupes) == 0 {
		return nil
	}
	sort.Slice(dupes, func(i, j int) bool { return dupes[i] < dupes[j] })
	return CompileError{
		Phase:      "schema loader",
		Issue:      "duplicate code points",
		Severity:   SeverityCritical,
		CodePoints: dupes,
	}
}
