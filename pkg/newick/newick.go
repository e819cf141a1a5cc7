package newick

import (
	"slices"
	"strconv"
	"strings"
)

// Node is a vertex in a parsed tree. A node is a leaf iff it has no children.
// Parent is a non-owning back-reference to the branch above the node, nil for
// the root.
type Node struct {
	Label    string
	Children []*Branch
	Parent   *Branch

	stashed string // interior label cleared during canonicalization
}

// Branch connects a parent node to exactly one child node. Length 0 means the
// input carried no branch length. Parent is a non-owning back-reference.
type Branch struct {
	Child  *Node
	Length float64
	Parent *Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// AddChild appends a branch to the node's child list and sets its back-reference.
func (n *Node) AddChild(b *Branch) {
	b.Parent = n
	n.Children = append(n.Children, b)
}

// RemoveChild removes b from the node's child list. The branch's own parent
// pointer is left untouched so the caller can restore it.
func (n *Node) RemoveChild(b *Branch) {
	n.Children = slices.DeleteFunc(n.Children, func(c *Branch) bool { return c == b })
}

// ClearLabel clears an interior label while keeping it recoverable. Interior
// labels carry auxiliary statistics, not taxon identity, and must not leak
// into canonical serialization.
func (n *Node) ClearLabel() {
	if n.Label != "" {
		n.stashed = n.Label
		n.Label = ""
	}
}

// StashedLabel returns the label removed by ClearLabel, if any.
func (n *Node) StashedLabel() string { return n.stashed }

// Newick returns the canonical serialization of the tree rooted at n,
// terminated by ';'. Children are ordered by their canonical subtree text.
func Newick(n *Node) string {
	var sb strings.Builder
	writeNode(&sb, n, true)
	sb.WriteByte(';')
	return sb.String()
}

// Structure returns the canonical serialization with all branch lengths
// stripped. Two trees share a structure string iff they share a shape, which
// makes the structure string usable as a deduplication key.
func Structure(n *Node) string {
	var sb strings.Builder
	writeNode(&sb, n, false)
	sb.WriteByte(';')
	return sb.String()
}

// String returns the canonical serialization without the trailing ';'.
func (n *Node) String() string {
	var sb strings.Builder
	writeNode(&sb, n, true)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node, lengths bool) {
	if n.IsLeaf() {
		sb.WriteString(n.Label)
		return
	}
	ordered := orderedChildren(n)
	sb.WriteByte('(')
	for i, b := range ordered {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeBranch(sb, b, lengths)
	}
	sb.WriteByte(')')
	sb.WriteString(n.Label)
}

func writeBranch(sb *strings.Builder, b *Branch, lengths bool) {
	writeNode(sb, b.Child, lengths)
	if lengths && b.Length > 0 {
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(b.Length, 'g', -1, 64))
	}
}

// orderedChildren returns a copy of the child list sorted by structural text.
// Ordering on the length-free form keeps sibling order identical between
// Newick and Structure output.
func orderedChildren(n *Node) []*Branch {
	ordered := slices.Clone(n.Children)
	slices.SortStableFunc(ordered, func(a, b *Branch) int {
		return strings.Compare(structureKey(a.Child), structureKey(b.Child))
	})
	return ordered
}

func structureKey(n *Node) string {
	var sb strings.Builder
	writeNode(&sb, n, false)
	return sb.String()
}

// Leaves returns all leaf nodes under n in traversal order.
func Leaves(n *Node) []*Node {
	if n.IsLeaf() {
		return []*Node{n}
	}
	var out []*Node
	for _, b := range n.Children {
		out = append(out, Leaves(b.Child)...)
	}
	return out
}

// Nodes returns n and every node below it, parents before children.
func Nodes(n *Node) []*Node {
	if n == nil {
		return nil
	}
	out := []*Node{n}
	for _, b := range n.Children {
		out = append(out, Nodes(b.Child)...)
	}
	return out
}

// PostOrder returns every node under n in post-order, n last. Bipartition
// indexing (persisted locks, the vertex facade) is defined against this
// ordering, so it must stay stable.
func PostOrder(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, b := range n.Children {
		out = append(out, PostOrder(b.Child)...)
	}
	return append(out, n)
}

// SubtreeBranches returns every branch strictly below b.
func SubtreeBranches(b *Branch) []*Branch {
	var out []*Branch
	out = append(out, b.Child.Children...)
	for _, c := range b.Child.Children {
		out = append(out, SubtreeBranches(c)...)
	}
	return out
}

// StripLengths zeroes every branch length under n.
func StripLengths(n *Node) {
	for _, b := range n.Children {
		b.Length = 0
		StripLengths(b.Child)
	}
}

// IsSibling reports whether two branches hang off the same parent node.
func IsSibling(a, b *Branch) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Parent == b.Parent
}

// SmoothUnary merges any degree-2 interior node under top into a single edge,
// summing the two branch lengths. Rerooting and subtree pruning both leave
// unary nodes behind; the canonical form has none.
func SmoothUnary(top *Node) {
	// Snapshot first: splicing rewrites child lists along the way.
	for _, n := range Nodes(top) {
		if len(n.Children) != 1 || n.Parent == nil {
			continue
		}
		pa, ch := n.Parent, n.Children[0]
		start, end := pa.Parent, ch.Child
		start.RemoveChild(pa)
		merged := &Branch{Child: end, Length: pa.Length + ch.Length}
		start.AddChild(merged)
		end.Parent = merged
	}
}

// InvertPath reverses parent/child directionality along the path from top
// down to target, so that target can act as a new top-level node. Reports
// whether target was found under top. Low-level rerooting primitive; the
// tree is in an inconsistent state for any other use afterwards.
func InvertPath(target, top *Node) bool {
	if target == top {
		invertDirections(target, nil)
		return true
	}
	for _, b := range top.Children {
		if InvertPath(target, b.Child) {
			invertDirections(top, b)
			top.RemoveChild(b)
			return true
		}
	}
	return false
}

func invertDirections(n *Node, newParent *Branch) {
	if b := n.Parent; b != nil {
		b.Child = b.Parent
		b.Parent = n
		if len(n.Children) != 0 {
			n.Children = append(n.Children, b)
		}
	}
	n.Parent = newParent
}

// assignParents walks the tree once and sets every back-reference.
func assignParents(top *Node, parent *Branch) {
	top.Parent = parent
	for _, b := range top.Children {
		b.Parent = top
		assignParents(b.Child, b)
	}
}
