package mainphase

import (
	"testing"

	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/phase"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLetter(t *testing.T, set *schema.Set, name string, angle geom.Angle) *schema.Schema {
	t.Helper()
	s := &schema.Schema{
		Shape:       shape.NewLine(angle),
		JoiningType: shape.Joining,
		Size:        1,
	}
	set.Add(s)
	s.SetName(name)
	return s
}

func TestAllReturns36PhasesInOrder(t *testing.T) {
	all := All()
	require.Len(t, all, 36)
	assert.Equal(t, "dont-ignore-default-ignorables", all[0].Name)
	assert.Equal(t, "classify-marks-for-trees", all[len(all)-1].Name)
}

func TestDontIgnoreDefaultIgnorablesDoublesOverriddenSchemas(t *testing.T) {
	set := schema.NewSet()
	s := newLetter(t, set, "u1BC9D", 0)
	s.Ignorability = schema.OverriddenNo

	id := s.ID
	lookups, err := phase.Run(phase.Phase{Name: "dont-ignore-default-ignorables", Run: dontIgnoreDefaultIgnorables}, set, []*schema.ID{&id})
	require.NoError(t, err)
	require.Len(t, lookups, 1)
	require.Len(t, lookups[0].Rules, 1)
	assert.Len(t, lookups[0].Rules[0].Output, 2)
}

func TestValidateShadingAcceptsShadableCircle(t *testing.T) {
	set := schema.NewSet()
	circle := &schema.Schema{Shape: &shape.Circle{}, Size: 1}
	set.Add(circle)
	circle.SetName("circle")

	id := circle.ID
	_, err := phase.Run(phase.Phase{Name: "validate-shading", Run: validateShading}, set, []*schema.ID{&id})
	require.NoError(t, err)
}

func TestAddParentEdgesSkipsNonJoining(t *testing.T) {
	set := schema.NewSet()
	nonJoiner := newLetter(t, set, "space", 0)
	nonJoiner.JoiningType = shape.NonJoining
	joiner := newLetter(t, set, "p", 0)
	joiner.JoiningType = shape.Joining

	ids := []*schema.ID{&nonJoiner.ID, &joiner.ID}
	lookups, err := phase.Run(phase.Phase{Name: "add-parent-edges", Run: addParentEdges}, set, ids)
	require.NoError(t, err)
	require.Len(t, lookups, 1)
	assert.Len(t, lookups[0].Rules, 1)
}

func TestTagMainGlyphInOrientingSequencePromotesIndependentCircle(t *testing.T) {
	set := schema.NewSet()
	s := &schema.Schema{Shape: &shape.Circle{Role: shape.Independent}, Size: 2}
	set.Add(s)
	s.SetName("o")

	id := s.ID
	_, err := phase.Run(phase.Phase{Name: "tag-main-glyph-in-orienting-sequence", Run: tagMainGlyphInOrientingSequence}, set, []*schema.ID{&id})
	require.NoError(t, err)
	c, ok := s.Shape.(*shape.Circle)
	require.True(t, ok)
	assert.Equal(t, shape.Leader, c.Role)
}

func TestMakeWidthlessMarkVariantsRequiresAnchor(t *testing.T) {
	set := schema.NewSet()
	rel1 := anchor.Relative1
	marked := &schema.Schema{Shape: shape.NewLine(0), Anchor: &rel1}
	set.Add(marked)
	marked.SetName("dot_mark")
	unmarked := &schema.Schema{Shape: shape.NewLine(0)}
	set.Add(unmarked)
	unmarked.SetName("base")

	ids := []*schema.ID{&marked.ID, &unmarked.ID}
	lookups, err := phase.Run(phase.Phase{Name: "make-widthless-mark-variants", Run: makeWidthlessMarkVariants}, set, ids)
	require.NoError(t, err)
	require.Len(t, lookups, 1)
	assert.Len(t, lookups[0].Rules, 1)
}
