package duployan

import (
	"testing"

	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDuplicateCodePointsRejectsRepeats(t *testing.T) {
	a := &schema.Schema{Shape: shape.NewLine(0), JoiningType: shape.Joining, Size: 1, CodePoints: []rune{'p'}}
	b := &schema.Schema{Shape: shape.NewLine(0), JoiningType: shape.Joining, Size: 1, CodePoints: []rune{'p'}}

	err := checkDuplicateCodePoints([]*schema.Schema{a, b})
	require.Error(t, err)

	var ce CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, SeverityCritical, ce.Severity)
	assert.Equal(t, []rune{'p'}, ce.CodePoints)
}

func TestCheckDuplicateCodePointsAcceptsDistinctSchemas(t *testing.T) {
	a := &schema.Schema{Shape: shape.NewLine(0), JoiningType: shape.Joining, Size: 1, CodePoints: []rune{'p'}}
	b := &schema.Schema{Shape: shape.NewLine(0), JoiningType: shape.Joining, Size: 1, CodePoints: []rune{'b'}}

	assert.NoError(t, checkDuplicateCodePoints([]*schema.Schema{a, b}))
}

func TestBuildRunsFullPipelineOverASingleLetter(t *testing.T) {
	p := &schema.Schema{
		Shape:       shape.NewLine(0),
		JoiningType: shape.Joining,
		Size:        1,
		SideBearing: 70,
		CodePoints:  []rune{'p'},
	}

	result, err := Build([]*schema.Schema{p}, BuildOptions{
		Stroke: StrokeStyle{StrokeWidth: 70, LightLine: 70, StrokeGap: 64},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	require.GreaterOrEqual(t, len(result.Canonical), 1)
	assert.Equal(t, len(result.Canonical), len(result.Glyphs))
	assert.NotEmpty(t, result.Lookups)

	preview := result.Preview()
	assert.True(t, preview.Covers('p'))
}

func TestBuildShadesAGlyphFollowedByAValidDTLS(t *testing.T) {
	p := &schema.Schema{
		Shape:       shape.NewLine(0),
		JoiningType: shape.Joining,
		Size:        1,
		SideBearing: 70,
		CodePoints:  []rune{0x1BC02},
	}
	dtls := &schema.Schema{
		Shape:       shape.NewLine(0),
		JoiningType: shape.NonJoining,
		Size:        1,
		CodePoints:  []rune{0x1BC9D},
	}

	result, err := Build([]*schema.Schema{p, dtls}, BuildOptions{
		Stroke: StrokeStyle{StrokeWidth: 70, LightLine: 70, StrokeGap: 64},
	})
	require.NoError(t, err)

	var validDTLS *schema.Schema
	for _, s := range result.Schemas.All() {
		if _, ok := s.Shape.(shape.ValidDTLS); ok {
			validDTLS = s
			break
		}
	}
	require.NotNil(t, validDTLS, "validateShading must produce a real ValidDTLS schema")

	var shaded *schema.Schema
	for _, l := range result.Lookups {
		for _, r := range l.Rules {
			if len(r.Lookahead) != 1 || r.Lookahead[0].IsClass() {
				continue
			}
			if r.Lookahead[0].Glyph.GlyphName() != validDTLS.GlyphName() {
				continue
			}
			if len(r.Output) != 1 || r.Output[0].IsClass() {
				continue
			}
			out, ok := r.Output[0].Glyph.(*schema.Schema)
			if ok {
				shaded = out
			}
		}
	}
	require.NotNil(t, shaded, "shade must emit a rule shading the glyph preceding the real ValidDTLS")
	// shadingFactor (spec.md §8 scenario 2, SHADING_FACTOR): a shaded
	// variant's stroke is 1.15x its unshaded source.
	assert.InDelta(t, p.Size*1.15, shaded.Size, 1e-9)
}

func TestBuildCategorizesAnOverlapTree(t *testing.T) {
	p := &schema.Schema{
		Shape:       shape.NewLine(0),
		JoiningType: shape.Joining,
		Size:        1,
		SideBearing: 70,
		CodePoints:  []rune{0x1BC02},
	}
	overlap := &schema.Schema{
		Shape:       shape.NewLine(0),
		JoiningType: shape.NonJoining,
		Size:        1,
		CodePoints:  []rune{0x1BCA0},
	}
	letterT := &schema.Schema{
		Shape:       shape.NewLine(180),
		JoiningType: shape.Joining,
		Size:        1,
		SideBearing: 70,
		CodePoints:  []rune{0x1BC03},
	}

	result, err := Build([]*schema.Schema{p, overlap, letterT}, BuildOptions{
		Stroke: StrokeStyle{StrokeWidth: 70, LightLine: 70, StrokeGap: 64},
	})
	require.NoError(t, err)

	var childEdge, parentEdge *schema.Schema
	for _, s := range result.Schemas.All() {
		if ce, ok := s.Shape.(*shape.ChildEdge); ok && len(ce.Lineage) > 0 {
			childEdge = s
		}
		if pe, ok := s.Shape.(*shape.ParentEdge); ok && len(pe.Lineage) > 0 {
			parentEdge = s
		}
	}
	require.NotNil(t, childEdge, "categorizeEdges must assign lineage to the overlap's ChildEdge")
	require.NotNil(t, parentEdge, "categorizeEdges must assign lineage to the child's ParentEdge")

	wantLineage := []geom.Point{{X: 1, Y: 1}}
	assert.Equal(t, wantLineage, childEdge.Shape.(*shape.ChildEdge).Lineage)
	assert.Equal(t, wantLineage, parentEdge.Shape.(*shape.ParentEdge).Lineage)
}

func TestBuildLigatesThreeDoubleMarks(t *testing.T) {
	rel1 := anchor.Relative1
	mark := &schema.Schema{
		Shape:       shape.NewLine(0),
		JoiningType: shape.NonJoining,
		Size:        1,
		Anchor:      &rel1,
		CodePoints:  []rune{0x1BC9E},
	}

	result, err := Build([]*schema.Schema{mark}, BuildOptions{
		Stroke: StrokeStyle{StrokeWidth: 70, LightLine: 70, StrokeGap: 64},
	})
	require.NoError(t, err)

	var ligature *schema.Schema
	for _, s := range result.Schemas.All() {
		if len(s.CodePoints) != 3 {
			continue
		}
		if s.CodePoints[0] == 0x1BC9E && s.CodePoints[1] == 0x1BC9E && s.CodePoints[2] == 0x1BC9E {
			ligature = s
		}
	}
	require.NotNil(t, ligature, "joinDoubleMarks must describe the triple double-mark ligature")
	_, ok := ligature.Shape.(*shape.Complex)
	assert.True(t, ok, "the triple double-mark ligature must be a Complex composing the mark three times")
}

func TestBuildFailsFastOnDuplicateCodePoints(t *testing.T) {
	a := &schema.Schema{Shape: shape.NewLine(0), JoiningType: shape.Joining, Size: 1, CodePoints: []rune{'p'}}
	b := &schema.Schema{Shape: shape.NewLine(90), JoiningType: shape.Joining, Size: 1, CodePoints: []rune{'p'}}

	_, err := Build([]*schema.Schema{a, b}, BuildOptions{})
	require.Error(t, err)
	var ce CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, SeverityCritical, ce.Severity)
}
