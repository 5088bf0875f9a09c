package schema

import (
	"testing"

	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameUsesAGLForKnownCodePoint(t *testing.T) {
	n := NewNamer()
	s := &Schema{CodePoints: []rune{' '}, Shape: shape.NewLine(geom.Angle(0))}
	name, err := n.Name(s)
	require.NoError(t, err)
	assert.Contains(t, name, "space")
}

func TestNameFallsBackToUniForUnknownCodePoint(t *testing.T) {
	n := NewNamer()
	s := &Schema{CodePoints: []rune{0x1BC00}, Shape: shape.NewLine(geom.Angle(0))}
	name, err := n.Name(s)
	require.NoError(t, err)
	assert.Contains(t, name, "u1BC00")
}

func TestNameDisambiguatesCollisions(t *testing.T) {
	n := NewNamer()
	s1 := &Schema{CodePoints: []rune{' '}, Shape: shape.NewLine(geom.Angle(0))}
	s2 := &Schema{CodePoints: []rune{' '}, Shape: shape.NewLine(geom.Angle(0))}
	name1, err := n.Name(s1)
	require.NoError(t, err)
	name2, err := n.Name(s2)
	require.NoError(t, err)
	assert.NotEqual(t, name1, name2)
}

func TestNameLigatureJoinsReadableNames(t *testing.T) {
	n := NewNamer()
	s := &Schema{CodePoints: []rune{' ', '.'}, Shape: shape.NewLine(geom.Angle(0))}
	name, err := n.Name(s)
	require.NoError(t, err)
	assert.Contains(t, name, "space_period")
	assert.Contains(t, name, ".space__period")
}
