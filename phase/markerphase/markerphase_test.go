package markerphase

import (
	"testing"

	"github.com/dscorbett/duployan-go/phase"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllReturns15PhasesInOrder(t *testing.T) {
	all := All()
	require.Len(t, all, 15)
	assert.Equal(t, "add-shims-for-pseudo-cursive", all[0].Name)
	assert.Equal(t, "dist", all[len(all)-1].Name)
}

func TestAddWidthMarkersWrapsSchemaInChain(t *testing.T) {
	set := schema.NewSet()
	s := &schema.Schema{Shape: shape.NewLine(0), JoiningType: shape.Joining, Size: 1}
	set.Add(s)
	s.SetName("p")

	id := s.ID
	lookups, err := phase.Run(phase.Phase{Name: "add-width-markers", Run: addWidthMarkers}, set, []*schema.ID{&id})
	require.NoError(t, err)
	require.Len(t, lookups, 1)
	require.Len(t, lookups[0].Rules, 1)
	out := lookups[0].Rules[0].Output
	_, startOK := out[0].Glyph.(*schema.Schema)
	require.True(t, startOK)
	firstSchema := out[0].Glyph.(*schema.Schema)
	_, ok := firstSchema.Shape.(shape.Start)
	assert.True(t, ok)
	lastSchema := out[len(out)-1].Glyph.(*schema.Schema)
	_, endOK := lastSchema.Shape.(shape.End)
	assert.True(t, endOK)
}

func TestSumWidthMarkersCarriesOnOverflow(t *testing.T) {
	set := schema.NewSet()
	augend := &schema.Schema{Shape: &shape.AnchorWidthDigit{Place: 0, Digit: 3}}
	set.Add(augend)
	augend.SetName("adx.0.3")
	addend := &schema.Schema{Shape: &shape.AnchorWidthDigit{Place: 0, Digit: 2}}
	set.Add(addend)
	addend.SetName("adx.0.2")

	ids := []*schema.ID{&augend.ID, &addend.ID}
	lookups, err := phase.Run(phase.Phase{Name: "sum-width-markers", Run: sumWidthMarkers}, set, ids)
	require.NoError(t, err)
	require.Len(t, lookups, 1)
	require.Len(t, lookups[0].Rules, 1)
	output := lookups[0].Rules[0].Output
	require.Len(t, output, 2)
	sumSchema := output[0].Glyph.(*schema.Schema)
	d, ok := sumSchema.Shape.(*shape.AnchorWidthDigit)
	require.True(t, ok)
	assert.Equal(t, 1, d.Digit) // (3+2) mod 4 == 1
	carrySchema := output[1].Glyph.(*schema.Schema)
	_, carryOK := carrySchema.Shape.(shape.Carry)
	assert.True(t, carryOK)
}

func TestCalculateBoundExtremaKeepsSmallerLeftBound(t *testing.T) {
	set := schema.NewSet()
	a := &schema.Schema{Shape: &shape.LeftBoundDigit{Place: 0, Digit: 1}}
	set.Add(a)
	a.SetName("ldx.0.1")
	c := &schema.Schema{Shape: &shape.LeftBoundDigit{Place: 0, Digit: 3}}
	set.Add(c)
	c.SetName("ldx.0.3")

	ids := []*schema.ID{&a.ID, &c.ID}
	lookups, err := phase.Run(phase.Phase{Name: "calculate-bound-extrema", Run: calculateBoundExtrema}, set, ids)
	require.NoError(t, err)
	require.Len(t, lookups, 1)
	require.Len(t, lookups[0].Rules, 1)
	out := lookups[0].Rules[0].Output[0].Glyph.(*schema.Schema)
	d := out.Shape.(*shape.LeftBoundDigit)
	assert.Equal(t, 1, d.Digit)
	assert.Equal(t, shape.DigitDone, d.Status)
}

func TestDistNegatesLeftBoundAdvance(t *testing.T) {
	set := schema.NewSet()
	s := &schema.Schema{Shape: &shape.LeftBoundDigit{Place: 1, Digit: 2, Status: shape.DigitDone}}
	set.Add(s)
	s.SetName("ldx.1.2.done")

	id := s.ID
	lookups, err := phase.Run(phase.Phase{Name: "dist", Run: dist}, set, []*schema.ID{&id})
	require.NoError(t, err)
	require.Len(t, lookups, 1)
	require.Len(t, lookups[0].Rules, 1)
	assert.Equal(t, []int{-8}, lookups[0].Rules[0].XAdvances) // -(2 * 4^1)
}
