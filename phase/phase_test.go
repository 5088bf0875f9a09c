package phase

import (
	"testing"

	"github.com/dscorbett/duployan-go/geom"
	"github.com/dscorbett/duployan-go/layout"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSchema(t *testing.T, set *schema.Set, name string) *schema.Schema {
	t.Helper()
	s := &schema.Schema{Shape: shape.NewLine(geom.Angle(0))}
	set.Add(s)
	s.SetName(name)
	return s
}

func TestRunSingleIterationWithoutFeedback(t *testing.T) {
	set := schema.NewSet()
	a := newTestSchema(t, set, "a")
	b := newTestSchema(t, set, "b")

	calls := 0
	p := Phase{
		Name: "rewrite-a-to-b",
		Run: func(builder *Builder, original, all, newSchemas []*schema.ID, classes *ClassRegistry, lookups *LookupRegistry, addRule AddRuleFunc) ([]*layout.Lookup, error) {
			calls++
			l, err := layout.NewLookup("rlig", "dupl", "dflt", 0, "", layout.Forward)
			require.NoError(t, err)
			builder.AddLookup(l)
			addRule(l, layout.Rule{Input: []layout.Member{layout.G(a)}, Output: []layout.Member{layout.G(b)}})
			return builder.Lookups, nil
		},
	}

	aID := a.ID
	out, err := Run(p, set, []*schema.ID{&aID})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, out, 1)
	assert.Len(t, out[0].Rules, 1)
}

func TestAddRuleDropsAutochthonousOnlyInput(t *testing.T) {
	set := schema.NewSet()
	a := newTestSchema(t, set, "a")

	var secondIterationRuleCount int
	p := Phase{
		Name: "loopy",
		Run: func(builder *Builder, original, all, newSchemas []*schema.ID, classes *ClassRegistry, lookups *LookupRegistry, addRule AddRuleFunc) ([]*layout.Lookup, error) {
			if len(builder.Lookups) == 0 {
				l, err := layout.NewLookup("rlig", "dupl", "dflt", 0, "", layout.Forward)
				require.NoError(t, err)
				builder.AddLookup(l)
			}
			l := builder.Lookups[0]
			for _, id := range newSchemas {
				s := set.Get(*id)
				clone := &schema.Schema{Shape: s.Shape}
				set.Add(clone)
				clone.SetName(s.GlyphName() + "'")
				addRule(l, layout.Rule{
					Backtrack: []layout.Member{layout.G(a)},
					Input:     []layout.Member{layout.G(s)},
					Output:    []layout.Member{layout.G(clone)},
				})
			}
			secondIterationRuleCount = len(l.Rules)
			return builder.Lookups, nil
		},
	}

	aID := a.ID
	out, err := Run(p, set, []*schema.ID{&aID})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, secondIterationRuleCount)
}
