package topology

import (
	"errors"
	"fmt"
	"slices"

	"github.com/treescape/treescape/pkg/newick"
)

// Op identifies a rearrangement operator.
type Op int

const (
	// OpSPR prunes a subtree and regrafts it onto any non-adjacent branch.
	OpSPR Op = iota

	// OpNNI swaps a subtree with one across its grandparent node, the
	// smallest rearrangement neighborhood.
	OpNNI

	// OpTBR is recognized for interchange with persisted landscapes but
	// has no enumeration.
	OpTBR
)

// ErrUnsupportedOp is returned for operators without an enumeration.
var ErrUnsupportedOp = errors.New("unsupported rearrangement operator")

func (op Op) String() string {
	switch op {
	case OpSPR:
		return "spr"
	case OpNNI:
		return "nni"
	case OpTBR:
		return "tbr"
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// ParseOp converts an operator name as persisted by landscape files.
func ParseOp(s string) (Op, error) {
	switch s {
	case "spr":
		return OpSPR, nil
	case "nni":
		return OpNNI, nil
	case "tbr":
		return OpTBR, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnsupportedOp)
}

// Move is one pending rearrangement of a topology. It holds no tree state of
// its own: applying it mutates and restores the underlying topology, so a
// slice of moves can be realized one at a time in any order.
type Move struct {
	Op Op

	topo     *Topology
	src, dst *newick.Branch
}

// ToNewick applies the move and returns the resulting serialization. The
// underlying topology is left unchanged.
func (m Move) ToNewick() (string, error) {
	return m.topo.MoveNewick(m.src, m.dst)
}

// ToTopology applies the move and returns the result as a fresh anchored
// topology carrying the same locks.
func (m Move) ToTopology() (*Topology, error) {
	return m.topo.MoveTopology(m.src, m.dst)
}

// SourcePartition returns the split of the pruned branch.
func (m Move) SourcePartition() *Bipartition { return m.topo.Partition(m.src) }

// DestPartition returns the split of the regraft branch.
func (m Move) DestPartition() *Bipartition { return m.topo.Partition(m.dst) }

func (m Move) String() string {
	return fmt.Sprintf("%s %s => %s", m.Op, m.SourcePartition().Short(), m.DestPartition().Short())
}

// SPRMoves enumerates the prune-regraft moves available to one branch,
// including the moves that prune the branch's complement side.
func (t *Topology) SPRMoves(src *newick.Branch) []Move {
	return t.sprMoves(src, true)
}

func (t *Topology) sprMoves(src *newick.Branch, flip bool) []Move {
	var out []Move
	if src.Parent != t.root {
		forb := t.forbiddenFor(src)
		for _, dst := range t.branches {
			if forb[dst] || t.checkLocks(src, dst) != nil {
				continue
			}
			out = append(out, Move{Op: OpSPR, topo: t, src: src, dst: dst})
		}
	}
	if flip && !src.Child.IsLeaf() {
		out = append(out, t.flipMoves(src)...)
	}
	return out
}

// flipMoves re-anchors a copy of the tree at a leaf inside src's subtree so
// the complement side of src's split becomes a prunable branch, then
// enumerates that branch's moves on the copy. Without this pass the side of
// a split facing the anchor could never be the pruned subtree.
func (t *Topology) flipMoves(src *newick.Branch) []Move {
	bp := t.Partition(src)
	var inside string
	for _, l := range newick.Leaves(src.Child) {
		if l.Label != t.anchor {
			inside = l.Label
			break
		}
	}
	if inside == "" {
		return nil
	}
	dup, err := FromNewick(t.Newick(), WithAnchor(inside))
	if err != nil {
		return nil
	}
	dup.locks = slices.Clone(t.locks)
	b, ok := dup.BranchFromBipartition(bp)
	if !ok {
		return nil
	}
	return dup.sprMoves(b, false)
}

// NNIMoves enumerates the nearest-neighbor interchanges available to one
// branch: its destinations are the siblings of its parent branch and the
// branch above its grandparent node.
func (t *Topology) NNIMoves(src *newick.Branch) []Move {
	if src.Parent == t.root {
		return nil
	}
	pb := src.Parent.Parent
	dests := make([]*newick.Branch, 0, 3)
	for _, b := range pb.Parent.Children {
		if b != pb {
			dests = append(dests, b)
		}
	}
	if gb := pb.Parent.Parent; gb != nil {
		dests = append(dests, gb)
	}

	var out []Move
	forb := t.forbiddenFor(src)
	for _, dst := range dests {
		if forb[dst] || t.checkLocks(src, dst) != nil {
			continue
		}
		out = append(out, Move{Op: OpNNI, topo: t, src: src, dst: dst})
	}
	return out
}

// AllSPR enumerates every prune-regraft move of the topology. Distinct moves
// can serialize to the same shape; deduplication is left to the caller.
func (t *Topology) AllSPR() []Move {
	var out []Move
	for _, b := range t.branches {
		out = append(out, t.sprMoves(b, true)...)
	}
	return out
}

// AllNNI enumerates every nearest-neighbor interchange of the topology.
func (t *Topology) AllNNI() []Move {
	var out []Move
	for _, b := range t.branches {
		out = append(out, t.NNIMoves(b)...)
	}
	return out
}

// Moves enumerates the neighborhood of the topology under one operator.
func (t *Topology) Moves(op Op) ([]Move, error) {
	switch op {
	case OpSPR:
		return t.AllSPR(), nil
	case OpNNI:
		return t.AllNNI(), nil
	}
	return nil, fmt.Errorf("topology: %s: %w", op, ErrUnsupportedOp)
}
