package schema

import (
	"testing"

	"github.com/dscorbett/duployan-go/anchor"
	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/layout"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsMarksAndAnchorTogether(t *testing.T) {
	a := anchor.Above
	s := &Schema{Anchor: &a, Marks: []ID{0}}
	err := s.Validate()
	require.Error(t, err)
}

func TestValidateRejectsWidthlessWithoutAnchor(t *testing.T) {
	s := &Schema{Widthless: WidthlessYes}
	err := s.Validate()
	require.Error(t, err)
}

func TestGlyphClassFallsBackToJoiningType(t *testing.T) {
	line := shape.NewLine(geom.Angle(0))
	s := &Schema{Shape: line, JoiningType: shape.NonJoining}
	assert.Equal(t, layout.Blocker, s.GlyphClass())

	s2 := &Schema{Shape: line, JoiningType: shape.Joining}
	assert.Equal(t, layout.Joiner, s2.GlyphClass())
}

func TestGlyphClassMarkFromAnchor(t *testing.T) {
	a := anchor.Above
	line := shape.NewLine(geom.Angle(0))
	s := &Schema{Shape: line, Anchor: &a}
	assert.Equal(t, layout.Mark, s.GlyphClass())
}

func TestGroupCollapsesIdenticalSchemas(t *testing.T) {
	set := NewSet()
	line := shape.NewLine(geom.Angle(0))
	s1 := &Schema{Shape: line, Size: 1, JoiningType: shape.Joining}
	s2 := &Schema{Shape: line, Size: 1, JoiningType: shape.Joining}
	set.Add(s1)
	set.Add(s2)
	assert.Equal(t, s1.Group(set.Resolve), s2.Group(set.Resolve))
}

func TestGroupDiffersOnSize(t *testing.T) {
	set := NewSet()
	line := shape.NewLine(geom.Angle(0))
	s1 := &Schema{Shape: line, Size: 1, JoiningType: shape.Joining}
	s2 := &Schema{Shape: line, Size: 2, JoiningType: shape.Joining}
	set.Add(s1)
	set.Add(s2)
	assert.NotEqual(t, s1.Group(set.Resolve), s2.Group(set.Resolve))
}
