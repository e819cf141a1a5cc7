package newick

import (
	"testing"
)

func mustParse(t *testing.T, s string) *Node {
	t.Helper()
	n, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return n
}

func TestLeaves(t *testing.T) {
	root := mustParse(t, "(((A,B),C),(D,E));")
	leaves := Leaves(root)
	if len(leaves) != 5 {
		t.Fatalf("len(Leaves) = %d, want 5", len(leaves))
	}
	labels := map[string]bool{}
	for _, l := range leaves {
		labels[l.Label] = true
	}
	for _, want := range []string{"A", "B", "C", "D", "E"} {
		if !labels[want] {
			t.Errorf("missing leaf %q", want)
		}
	}
}

func TestPostOrderRootLast(t *testing.T) {
	root := mustParse(t, "((A,B),C);")
	order := PostOrder(root)
	if len(order) != 5 {
		t.Fatalf("len(PostOrder) = %d, want 5", len(order))
	}
	if order[len(order)-1] != root {
		t.Error("root must come last in post-order")
	}
	if order[0].Label != "A" && order[0].Label != "B" {
		t.Errorf("first post-order node = %q, want a leaf under the first child", order[0].Label)
	}
}

func TestSubtreeBranches(t *testing.T) {
	root := mustParse(t, "(((A,B),C),D);")
	// First root child carries ((A,B),C): branches (A,B)+C below it plus A and B.
	first := root.Children[0]
	got := SubtreeBranches(first)
	if len(got) != 4 {
		t.Errorf("len(SubtreeBranches) = %d, want 4", len(got))
	}
}

func TestStripLengths(t *testing.T) {
	root := mustParse(t, "((A:0.1,B:0.2):0.3,C:0.4);")
	StripLengths(root)
	want := "((A,B),C);"
	if Newick(root) != want {
		t.Errorf("Newick after StripLengths = %q, want %q", Newick(root), want)
	}
}

func TestSmoothUnary(t *testing.T) {
	// Build ((A:1):2,B); by hand: the inner unary node must be merged away.
	leafA := &Node{Label: "A"}
	unary := &Node{}
	unary.AddChild(&Branch{Child: leafA, Length: 1})
	leafA.Parent = unary.Children[0]
	root := &Node{}
	root.AddChild(&Branch{Child: unary, Length: 2})
	unary.Parent = root.Children[0]
	root.AddChild(&Branch{Child: &Node{Label: "B"}})
	root.Children[1].Child.Parent = root.Children[1]

	SmoothUnary(root)
	if Newick(root) != "(A:3,B);" {
		t.Errorf("Newick after SmoothUnary = %q, want %q", Newick(root), "(A:3,B);")
	}
}

func TestClearLabelStashes(t *testing.T) {
	root := mustParse(t, "((A,B)support,C);")
	inner := root.Children[0].Child
	if inner.IsLeaf() {
		inner = root.Children[1].Child
	}
	if inner.Label != "support" {
		t.Fatalf("interior label = %q, want %q", inner.Label, "support")
	}
	inner.ClearLabel()
	if inner.Label != "" || inner.StashedLabel() != "support" {
		t.Errorf("ClearLabel: label=%q stashed=%q", inner.Label, inner.StashedLabel())
	}
}

func TestIsSibling(t *testing.T) {
	root := mustParse(t, "((A,B),C);")
	var inner *Node
	for _, b := range root.Children {
		if !b.Child.IsLeaf() {
			inner = b.Child
		}
	}
	if !IsSibling(inner.Children[0], inner.Children[1]) {
		t.Error("children of the same node must be siblings")
	}
	if IsSibling(inner.Children[0], root.Children[0]) && inner.Children[0].Parent != root.Children[0].Parent {
		t.Error("branches with different parents must not be siblings")
	}
	if IsSibling(nil, root.Children[0]) {
		t.Error("nil branch is never a sibling")
	}
}
