package fontmodel

import (
	"testing"

	"github.com/dscorbett/duployan-go/emit"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewBuildsCMapAndSortsByName(t *testing.T) {
	set := schema.NewSet()
	b := &schema.Schema{Shape: shape.NewLine(0), JoiningType: shape.Joining, Size: 1, CodePoints: []rune{'b'}}
	set.Add(b)
	b.SetName("b")
	a := &schema.Schema{Shape: shape.NewLine(0), JoiningType: shape.Joining, Size: 1, CodePoints: []rune{'a'}}
	set.Add(a)
	a.SetName("a")

	results, err := emit.Emit([]*schema.Schema{b, a}, emit.Options{})
	require.NoError(t, err)

	h := Preview(results)
	require.Len(t, h.Glyphs, 2)
	assert.Equal(t, "a", h.Glyphs[0].Name)
	assert.Equal(t, "b", h.Glyphs[1].Name)
	assert.True(t, h.Covers('a'))
	assert.True(t, h.Covers('b'))
	assert.False(t, h.Covers('c'))
}

func TestParseReferenceFontRejectsGarbage(t *testing.T) {
	_, err := ParseReferenceFont([]byte("not a font"))
	assert.Error(t, err)
}
