package emit

import (
	"testing"

	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitTranslatesEntryXToZero(t *testing.T) {
	set := schema.NewSet()
	// AngleIn=0 gives a cursive entry at (radius, 0), not the origin, so
	// this exercises the x-only translate in step 3.
	s := &schema.Schema{Shape: &shape.Circle{AngleIn: 0, AngleOut: 90}, JoiningType: shape.Orienting, Size: 1, SideBearing: 70}
	set.Add(s)
	s.SetName("o")

	results, err := Emit([]*schema.Schema{s}, Options{StrokeWidth: 70, LightLine: 70, StrokeGap: 64})
	require.NoError(t, err)
	require.Len(t, results, 1)

	g := results[0].Glyph
	entryX, _, ok := g.AnchorPoint(anchor.Cursive, shape.KindEntry)
	require.True(t, ok)
	assert.InDelta(t, 0, entryX, 1e-6)
	assert.Equal(t, 70.0, g.RightSideBearing)
}

func TestEmitZeroesSideBearingForMarks(t *testing.T) {
	set := schema.NewSet()
	rel1 := anchor.Relative1
	s := &schema.Schema{Shape: shape.NewLine(0), JoiningType: shape.Joining, Size: 1, SideBearing: 70, Anchor: &rel1}
	set.Add(s)
	s.SetName("dot")

	results, err := Emit([]*schema.Schema{s}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Glyph.RightSideBearing)
}

func TestEmitSitsOnBaselineUnlessFixedY(t *testing.T) {
	set := schema.NewSet()
	s := &schema.Schema{Shape: &shape.Circle{AngleIn: 0, AngleOut: 180}, JoiningType: shape.Orienting, Size: 1}
	set.Add(s)
	s.SetName("o")

	results, err := Emit([]*schema.Schema{s}, Options{})
	require.NoError(t, err)
	b := results[0].Glyph.BoundingBox()
	assert.InDelta(t, 0, b.YMin, 1e-6)
}
