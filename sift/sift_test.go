package sift

import (
	"testing"

	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSchema(t *testing.T, set *schema.Set, name string, angle geom.Angle, cps []rune) *schema.Schema {
	t.Helper()
	s := &schema.Schema{Shape: shape.NewLine(angle), JoiningType: shape.Joining, Size: 1, CodePoints: cps}
	set.Add(s)
	s.SetName(name)
	return s
}

func TestSiftCollapsesIdenticalSchemas(t *testing.T) {
	set := schema.NewSet()
	a := newSchema(t, set, "p", 0, []rune{'p'})
	b := newSchema(t, set, "p.alt", 0, nil)

	result, err := Sift(set)
	require.NoError(t, err)
	require.Len(t, result.Canonical, 1)
	assert.Equal(t, a.ID, a.CanonicalSchema)
	assert.Equal(t, a.ID, b.CanonicalSchema)
	require.Len(t, result.Rewrite.Rules, 1)
	assert.Equal(t, b.GlyphName(), result.Rewrite.Rules[0].Input[0].Glyph.GlyphName())
	assert.Equal(t, a.GlyphName(), result.Rewrite.Rules[0].Output[0].Glyph.GlyphName())
}

func TestSiftKeepsSchemasWithDifferentSizeApart(t *testing.T) {
	set := schema.NewSet()
	a := newSchema(t, set, "p1", 0, []rune{'p'})
	b := newSchema(t, set, "p2", 0, nil)
	b.Size = 2

	result, err := Sift(set)
	require.NoError(t, err)
	assert.Len(t, result.Canonical, 2)
	assert.NotEqual(t, a.CanonicalSchema, b.CanonicalSchema)
}

func TestSiftPrefersSchemaWithCodePoints(t *testing.T) {
	set := schema.NewSet()
	noCP := newSchema(t, set, "p.alt", 0, nil)
	withCP := newSchema(t, set, "p", 0, []rune{'p'})

	result, err := Sift(set)
	require.NoError(t, err)
	require.Len(t, result.Canonical, 1)
	assert.Equal(t, withCP.ID, result.Canonical[0].ID)
	assert.Equal(t, withCP.ID, noCP.CanonicalSchema)
}
