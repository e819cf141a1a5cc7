package topology

import (
	"errors"
	"fmt"
	"slices"

	"github.com/treescape/treescape/pkg/newick"
)

var (
	// ErrLeafNotFound is returned when a requested anchor leaf does not
	// exist in the tree.
	ErrLeafNotFound = errors.New("leaf not found")

	// ErrTooSmall is returned for trees with fewer than three leaves,
	// which have no rearrangeable branches.
	ErrTooSmall = errors.New("tree has fewer than three leaves")

	// ErrDuplicateLeaf is returned when two leaves share a label.
	ErrDuplicateLeaf = errors.New("duplicate leaf label")

	// ErrForbiddenMove is returned by [Topology.MoveNewick] when the
	// destination is adjacent to the source or inside its subtree.
	ErrForbiddenMove = errors.New("move destination is forbidden")

	// ErrLockedPartition is returned when a move would remove a locked
	// bipartition from the tree.
	ErrLockedPartition = errors.New("move would break a locked partition")

	// ErrBranchNotFound is returned when a bipartition cannot be resolved
	// to a branch of the topology.
	ErrBranchNotFound = errors.New("no branch induces the partition")
)

// Topology is an anchored, canonically serializable tree shape. The zero
// value is not usable; construct with [FromNewick].
type Topology struct {
	root     *newick.Node
	anchor   string
	anchorBr *newick.Branch
	far      *newick.Branch
	branches []*newick.Branch
	leaves   []string
	locks    []*Bipartition
	orig     string
}

// Option adjusts topology construction.
type Option func(*config)

type config struct {
	anchor   string
	noReroot bool
}

// WithAnchor anchors the topology at the named leaf instead of the
// lexicographically smallest one.
func WithAnchor(label string) Option {
	return func(c *config) { c.anchor = label }
}

// WithoutReroot keeps the parsed rooting instead of anchoring. The topology
// still serializes deterministically but is no longer canonical across
// rootings of the same shape.
func WithoutReroot() Option {
	return func(c *config) { c.noReroot = true }
}

// FromNewick parses a tree description and puts it into anchored form.
// Interior node labels are discarded; leaf labels must be unique.
func FromNewick(text string, opts ...Option) (*Topology, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	root, err := newick.Parse(text)
	if err != nil {
		return nil, err
	}
	for _, n := range newick.Nodes(root) {
		if !n.IsLeaf() {
			n.ClearLabel()
		}
	}

	leafNodes := newick.Leaves(root)
	if len(leafNodes) < 3 {
		return nil, fmt.Errorf("topology: %d leaves: %w", len(leafNodes), ErrTooSmall)
	}
	labels := make([]string, len(leafNodes))
	for i, l := range leafNodes {
		labels[i] = l.Label
	}
	slices.Sort(labels)
	for i := 1; i < len(labels); i++ {
		if labels[i] == labels[i-1] {
			return nil, fmt.Errorf("topology: %q: %w", labels[i], ErrDuplicateLeaf)
		}
	}

	anchor := cfg.anchor
	if anchor == "" {
		anchor = labels[0]
	} else if _, ok := slices.BinarySearch(labels, anchor); !ok {
		return nil, fmt.Errorf("topology: anchor %q: %w", anchor, ErrLeafNotFound)
	}

	if !cfg.noReroot {
		root, err = rerootAtLeaf(root, anchor)
		if err != nil {
			return nil, err
		}
	}

	t := &Topology{
		root:   root,
		anchor: anchor,
		leaves: labels,
		orig:   text,
	}
	t.index()
	return t, nil
}

// rerootAtLeaf rewires the tree so that a synthetic two-child root holds the
// named leaf on one side and everything else on the other. The rewired tree
// is serialized and reparsed so that all back-references are rebuilt from
// scratch.
func rerootAtLeaf(root *newick.Node, label string) (*newick.Node, error) {
	var leaf *newick.Node
	for _, l := range newick.Leaves(root) {
		if l.Label == label {
			leaf = l
			break
		}
	}
	if leaf == nil {
		return nil, fmt.Errorf("topology: %q: %w", label, ErrLeafNotFound)
	}

	leafBr := leaf.Parent
	closest := leafBr.Parent
	if closest != root || len(root.Children) != 2 {
		newick.InvertPath(closest, root)
		closest.RemoveChild(leafBr)
		top := &newick.Node{}
		top.AddChild(leafBr)
		top.AddChild(&newick.Branch{Child: closest})
		newick.SmoothUnary(top)
		root = top
	}
	return newick.Parse(newick.Newick(root))
}

// index caches the branch enumeration and the two root-adjacent branches.
// Branch order follows the post-order node walk, root last, which is the
// ordering persisted by landscape files.
func (t *Topology) index() {
	t.branches = t.branches[:0]
	for _, n := range newick.PostOrder(t.root) {
		if n.Parent != nil {
			t.branches = append(t.branches, n.Parent)
		}
	}
	t.anchorBr, t.far = nil, nil
	for _, b := range t.root.Children {
		if b.Child.IsLeaf() && b.Child.Label == t.anchor {
			t.anchorBr = b
		} else {
			t.far = b
		}
	}
}

// Anchor returns the label of the anchor leaf.
func (t *Topology) Anchor() string { return t.anchor }

// Root returns the synthetic root node.
func (t *Topology) Root() *newick.Node { return t.root }

// Taxa returns the sorted leaf labels.
func (t *Topology) Taxa() []string { return slices.Clone(t.leaves) }

// NumLeaves returns the number of leaves.
func (t *Topology) NumLeaves() int { return len(t.leaves) }

// Branches returns every branch of the tree in post-order. The slice is
// shared; callers must not modify it.
func (t *Topology) Branches() []*newick.Branch { return t.branches }

// Newick returns the canonical serialization with branch lengths.
func (t *Topology) Newick() string { return newick.Newick(t.root) }

// Structure returns the canonical serialization without branch lengths.
// Topologies share a structure string iff they share an unrooted shape.
func (t *Topology) Structure() string { return newick.Structure(t.root) }

// Original returns the text the topology was parsed from.
func (t *Topology) Original() string { return t.orig }

// UnrootedNewick collapses the synthetic root and returns the tree as a
// multifurcation at the anchor's neighbor, the usual form for unrooted trees.
func (t *Topology) UnrootedNewick() string {
	if t.far == nil || t.far.Child.IsLeaf() {
		return t.Newick()
	}
	top := &newick.Node{}
	for _, b := range t.far.Child.Children {
		top.Children = append(top.Children, b)
	}
	top.Children = append(top.Children, &newick.Branch{
		Child:  t.anchorBr.Child,
		Length: t.anchorBr.Length + t.far.Length,
	})
	return newick.Newick(top)
}

// leafSet collects the labels under a branch.
func leafSet(b *newick.Branch) map[string]bool {
	set := make(map[string]bool)
	for _, l := range newick.Leaves(b.Child) {
		set[l.Label] = true
	}
	return set
}

// Partition returns the bipartition induced by removing b.
func (t *Topology) Partition(b *newick.Branch) *Bipartition {
	under := leafSet(b)
	left := make([]string, 0, len(under))
	right := make([]string, 0, len(t.leaves)-len(under))
	for _, lbl := range t.leaves {
		if under[lbl] {
			left = append(left, lbl)
		} else {
			right = append(right, lbl)
		}
	}
	return FromSides(left, right)
}

// Bipartitions returns the bipartition of every branch, aligned with
// [Topology.Branches].
func (t *Topology) Bipartitions() []*Bipartition {
	out := make([]*Bipartition, len(t.branches))
	for i, b := range t.branches {
		out[i] = t.Partition(b)
	}
	return out
}

// BranchFromBipartition resolves a bipartition to the branch inducing it.
func (t *Topology) BranchFromBipartition(bp *Bipartition) (*newick.Branch, bool) {
	for _, b := range t.branches {
		if t.Partition(b).Equal(bp) {
			return b, true
		}
	}
	return nil, false
}

// LockBranch pins the bipartition induced by b. Subsequent moves that would
// remove it are rejected.
func (t *Topology) LockBranch(b *newick.Branch) {
	t.lock(t.Partition(b))
}

// LockPartition pins a bipartition given by its leaf sides. The partition
// must be present in the topology.
func (t *Topology) LockPartition(bp *Bipartition) error {
	if _, ok := t.BranchFromBipartition(bp); !ok {
		return fmt.Errorf("topology: lock %s: %w", bp.Short(), ErrBranchNotFound)
	}
	t.lock(bp)
	return nil
}

func (t *Topology) lock(bp *Bipartition) {
	for _, l := range t.locks {
		if l.Equal(bp) {
			return
		}
	}
	t.locks = append(t.locks, bp)
}

// Locks returns the pinned bipartitions.
func (t *Topology) Locks() []*Bipartition { return slices.Clone(t.locks) }

// forbiddenFor returns the destinations a source branch can never move to:
// itself, every branch in its subtree, its siblings, and the branch directly
// above its parent. These moves are either identities or would disconnect
// the tree.
func (t *Topology) forbiddenFor(src *newick.Branch) map[*newick.Branch]bool {
	set := map[*newick.Branch]bool{src: true}
	for _, b := range newick.SubtreeBranches(src) {
		set[b] = true
	}
	for _, b := range src.Parent.Children {
		set[b] = true
	}
	if pb := src.Parent.Parent; pb != nil {
		set[pb] = true
		// The two root children are halves of one unrooted edge. When
		// detaching src dissolves its parent into that edge, the other
		// half would regraft back onto the same spot.
		if pb.Parent == t.root && len(src.Parent.Children) == 2 {
			for _, b := range t.root.Children {
				set[b] = true
			}
		}
	}
	return set
}

// checkLocks reports the first lock a prune-regraft of src onto dst would
// break. A lock survives when the pruned subtree stays on its side of the
// locked split, carries the whole split with it, or is regrafted onto the
// locked branch itself.
func (t *Topology) checkLocks(src, dst *newick.Branch) error {
	if len(t.locks) == 0 {
		return nil
	}
	s := leafSet(src)
	d := leafSet(dst)
	for _, lk := range t.locks {
		clade := lk.first
		if lk.side(t.anchor) == 0 {
			clade = lk.second
		}
		u := make(map[string]bool, len(clade))
		for _, lbl := range clade {
			u[lbl] = true
		}
		if violatesClade(u, s, d) {
			return fmt.Errorf("topology: %s: %w", lk.Short(), ErrLockedPartition)
		}
	}
	return nil
}

// violatesClade decides break/keep for one locked clade u given the leaf
// sets of the source subtree s and destination subtree d. Anchoring
// guarantees u, s and d are clades, so any two of them are nested or
// disjoint.
func violatesClade(u, s, d map[string]bool) bool {
	switch {
	case subset(u, s):
		// Lock travels inside the moved subtree, or the moved subtree
		// is exactly the locked clade.
		return false
	case subset(s, u):
		// Moved subtree must stay inside the clade. Regrafting onto
		// the clade's own branch reattaches it just below the split.
		return !subset(d, u)
	default:
		// Source is outside the clade and must not be inserted
		// strictly below the locked branch.
		return subset(d, u) && len(d) < len(u)
	}
}

func subset(a, b map[string]bool) bool {
	if len(a) > len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// MoveNewick prunes the subtree under src, regrafts it onto dst and returns
// the canonical serialization of the result. The receiver is restored before
// returning, whatever the outcome.
func (t *Topology) MoveNewick(src, dst *newick.Branch) (string, error) {
	if src.Parent == t.root {
		return "", fmt.Errorf("topology: source is root-adjacent: %w", ErrForbiddenMove)
	}
	if t.forbiddenFor(src)[dst] {
		return "", fmt.Errorf("topology: %w", ErrForbiddenMove)
	}
	if err := t.checkLocks(src, dst); err != nil {
		return "", err
	}

	undo := t.apply(src, dst)
	text := newick.Newick(t.root)
	undo()
	return text, nil
}

// MoveTopology performs the move and returns the result as a fresh anchored
// topology. Locks carry over.
func (t *Topology) MoveTopology(src, dst *newick.Branch) (*Topology, error) {
	text, err := t.MoveNewick(src, dst)
	if err != nil {
		return nil, err
	}
	nt, err := FromNewick(text)
	if err != nil {
		return nil, err
	}
	nt.locks = slices.Clone(t.locks)
	return nt, nil
}

// apply mutates the tree in place and returns the inverse. Both directions
// touch only the nodes around src and dst, so enumeration over a large tree
// stays cheap.
func (t *Topology) apply(src, dst *newick.Branch) func() {
	sParent := src.Parent
	tParent := dst.Parent

	// Detach the source subtree and split the destination around a new
	// interior node holding it.
	sParent.RemoveChild(src)
	mid := &newick.Node{}
	mid.AddChild(src)
	src.Child.Parent = src

	half := dst.Length / 2
	tParent.RemoveChild(dst)
	inner := &newick.Branch{Child: mid, Length: half}
	tParent.AddChild(inner)
	mid.Parent = inner
	outer := &newick.Branch{Child: dst.Child, Length: half}
	mid.AddChild(outer)
	dst.Child.Parent = outer

	// Detaching may have left a unary node behind; merge it away.
	var merged, above *newick.Branch
	var start *newick.Node
	if len(sParent.Children) == 1 && sParent.Parent != nil {
		above = sParent.Parent
		below := sParent.Children[0]
		start = above.Parent
		start.RemoveChild(above)
		merged = &newick.Branch{Child: below.Child, Length: above.Length + below.Length}
		start.AddChild(merged)
		below.Child.Parent = merged
	}

	return func() {
		if merged != nil {
			start.RemoveChild(merged)
			start.AddChild(above)
			sParent.Children[0].Child.Parent = sParent.Children[0]
		}
		tParent.RemoveChild(inner)
		tParent.AddChild(dst)
		dst.Child.Parent = dst
		sParent.AddChild(src)
		src.Child.Parent = src
	}
}
