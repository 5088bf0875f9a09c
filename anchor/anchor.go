// Package anchor names the fixed anchor set that every drawn glyph attaches
// points under. Downstream Layout consumers (spec.md §6, "To the Layout
// compiler") must support exactly this set: parent/child-edge anchors,
// inter-edge, hub anchors (pre/post-hub, cursive and continuing-overlap
// flavours), and the mark anchors with their mkmk counterparts.
//
// Modeled on the teacher's use of typed Tag constants for fixed vocabularies
// (see ot.Tag in the retrieval pack); anchors here are plain strings because
// Layout anchor names are not four-byte packed tags.
package anchor

// Name identifies an anchor point on a glyph.
type Name string

const (
	Cursive               Name = "cursive"
	ContinuingOverlap     Name = "continuing_overlap"
	PreHubCursive         Name = "pre_hub_cursive"
	PostHubCursive        Name = "post_hub_cursive"
	PreHubContinuingOverlap  Name = "pre_hub_continuing_overlap"
	PostHubContinuingOverlap Name = "post_hub_continuing_overlap"
	ParentEdge            Name = "parent_edge"

	Above    Name = "above"
	Below    Name = "below"
	Relative1 Name = "rel1"
	Relative2 Name = "rel2"
	Middle   Name = "mid"
	Secant   Name = "secant"
)

// Mkmk returns the mark-to-mark flavour of a mark anchor name, e.g.
// Mkmk(Above) == "mkmk_above".
func Mkmk(n Name) Name {
	return Name("mkmk_" + string(n))
}

// MaxTreeWidth bounds the number of children an overlap-tree node may have
// per side, per spec.md §4.5 step 8 (MAX_TREE_WIDTH=2).
const MaxTreeWidth = 2

// MaxTreeDepth bounds the depth of the overlap tree enumerated by
// make_trees, per spec.md §4.5 step 8 (MAX_TREE_DEPTH=3).
const MaxTreeDepth = 3

// ChildEdge returns the per-(side, index) child-edge anchor name. side is 0
// or 1 (the two sides of the base stroke); index is in [0, MaxTreeWidth).
func ChildEdge(side, index int) Name {
	sides := [2]string{"l", "r"}
	digits := "0123456789"
	return Name("child_" + sides[side%2] + string(digits[index%len(digits)]))
}

// InterEdge returns the anchor name used between two child-edges on the
// same side, reified so a chain of overlapping children can attach in
// sequence.
func InterEdge(side, index int) Name {
	sides := [2]string{"l", "r"}
	digits := "0123456789"
	return Name("inter_" + sides[side%2] + string(digits[index%len(digits)]))
}
