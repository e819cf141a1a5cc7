package topology

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/treescape/treescape/pkg/newick"
)

func mustTopo(t *testing.T, text string, opts ...Option) *Topology {
	t.Helper()
	top, err := FromNewick(text, opts...)
	require.NoError(t, err)
	return top
}

// branchAbove returns the branch ending in the named leaf.
func branchAbove(t *testing.T, top *Topology, label string) *newick.Branch {
	t.Helper()
	for _, b := range top.Branches() {
		if b.Child.IsLeaf() && b.Child.Label == label {
			return b
		}
	}
	t.Fatalf("no leaf %q", label)
	return nil
}

func TestFromNewickAnchors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already anchored", "(A,(B,(C,D)));", "(((C,D),B),A);"},
		{"balanced", "((A,B),(C,D));", "(((C,D),B),A);"},
		{"rotated", "((D,C),(B,A));", "(((C,D),B),A);"},
		{"five leaves", "((A,B),((C,D),E));", "((((C,D),E),B),A);"},
		{"trifurcating root", "(A,B,(C,D));", "(((C,D),B),A);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top := mustTopo(t, tt.in)
			require.Equal(t, tt.want, top.Structure())
			require.Equal(t, "A", top.Anchor())
			require.Len(t, top.Root().Children, 2)
		})
	}
}

func TestFromNewickErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts []Option
		want error
	}{
		{"two leaves", "(A,B);", nil, ErrTooSmall},
		{"duplicate leaf", "((A,A),B);", nil, ErrDuplicateLeaf},
		{"missing anchor", "((A,B),C);", []Option{WithAnchor("Z")}, ErrLeafNotFound},
		{"bad text", "((A,B),C", nil, newick.ErrMissingSemicolon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromNewick(tt.in, tt.opts...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFromNewickWithAnchor(t *testing.T) {
	top := mustTopo(t, "((A,B),(C,D));", WithAnchor("C"))
	require.Equal(t, "C", top.Anchor())

	var labels []string
	for _, b := range top.Root().Children {
		if b.Child.IsLeaf() {
			labels = append(labels, b.Child.Label)
		}
	}
	require.Equal(t, []string{"C"}, labels)
}

func TestCanonicalIdempotent(t *testing.T) {
	top := mustTopo(t, "((E:0.1,B:0.2),((C,D):0.5,A));")
	again := mustTopo(t, top.Newick())
	require.Equal(t, top.Structure(), again.Structure())
	require.Equal(t, top.Newick(), again.Newick())
}

func TestBranchCount(t *testing.T) {
	// An unrooted binary tree on n leaves has 2n-3 edges; anchoring splits
	// one of them in two.
	tests := []struct {
		in   string
		want int
	}{
		{"((A,B),C);", 4},
		{"((A,B),(C,D));", 6},
		{"((A,B),((C,D),E));", 8},
	}
	for _, tt := range tests {
		top := mustTopo(t, tt.in)
		require.Len(t, top.Branches(), tt.want, "tree %s", tt.in)
	}
}

func TestInteriorLabelsDropped(t *testing.T) {
	top := mustTopo(t, "((A,B)support1,(C,D)support2);")
	require.Equal(t, "(((C,D),B),A);", top.Structure())
}

func TestUnrootedNewick(t *testing.T) {
	top := mustTopo(t, "((A,B),(C,D));")
	require.Equal(t, "((C,D),A,B);", top.UnrootedNewick())
}

func TestPartition(t *testing.T) {
	top := mustTopo(t, "((A,B),((C,D),E));")

	b, ok := top.BranchFromBipartition(FromSides([]string{"C", "D"}, []string{"A", "B", "E"}))
	require.True(t, ok)
	require.Equal(t, "ABE:CD", top.Partition(b).Short())

	_, ok = top.BranchFromBipartition(FromSides([]string{"C", "E"}, []string{"A", "B", "D"}))
	require.False(t, ok)
}

func TestBipartitionsAlignWithBranches(t *testing.T) {
	top := mustTopo(t, "((A,B),((C,D),E));")
	parts := top.Bipartitions()
	require.Len(t, parts, len(top.Branches()))
	for i, b := range top.Branches() {
		require.True(t, parts[i].Equal(top.Partition(b)))
	}
}

func TestMoveRestoresReceiver(t *testing.T) {
	top := mustTopo(t, "((A,B),((C,D),E));")
	before := top.Newick()

	src := branchAbove(t, top, "C")
	dst := branchAbove(t, top, "B")
	got, err := top.MoveNewick(src, dst)
	require.NoError(t, err)
	require.NotEqual(t, before, got)
	require.Equal(t, before, top.Newick())
}

func TestMoveForbidden(t *testing.T) {
	top := mustTopo(t, "((A,B),((C,D),E));")
	c := branchAbove(t, top, "C")
	d := branchAbove(t, top, "D")

	_, err := top.MoveNewick(c, d)
	require.ErrorIs(t, err, ErrForbiddenMove, "sibling destination")

	_, err = top.MoveNewick(c, c)
	require.ErrorIs(t, err, ErrForbiddenMove, "self destination")

	cd, ok := top.BranchFromBipartition(FromSides([]string{"C", "D"}, []string{"A", "B", "E"}))
	require.True(t, ok)
	_, err = top.MoveNewick(c, cd)
	require.ErrorIs(t, err, ErrForbiddenMove, "parent destination")

	a := branchAbove(t, top, "A")
	_, err = top.MoveNewick(a, c)
	require.ErrorIs(t, err, ErrForbiddenMove, "root-adjacent source")
}

func TestMoveHalvesDestinationLength(t *testing.T) {
	top := mustTopo(t, "((A,B:0.4),((C,D),E:0.8));")
	src := branchAbove(t, top, "C")
	dst := branchAbove(t, top, "E")

	got, err := top.MoveTopology(src, dst)
	require.NoError(t, err)

	e := branchAbove(t, got, "E")
	require.InDelta(t, 0.4, e.Length, 1e-12)
}

func TestLocks(t *testing.T) {
	newTopo := func(t *testing.T) *Topology {
		top := mustTopo(t, "((A,B),((C,D),E));")
		err := top.LockPartition(FromSides([]string{"A", "B"}, []string{"C", "D", "E"}))
		require.NoError(t, err)
		return top
	}

	t.Run("crossing move rejected", func(t *testing.T) {
		top := newTopo(t)
		_, err := top.MoveNewick(branchAbove(t, top, "C"), branchAbove(t, top, "B"))
		require.ErrorIs(t, err, ErrLockedPartition)
	})

	t.Run("move within the clade allowed", func(t *testing.T) {
		top := newTopo(t)
		_, err := top.MoveNewick(branchAbove(t, top, "C"), branchAbove(t, top, "E"))
		require.NoError(t, err)
	})

	t.Run("regraft onto the locked branch allowed", func(t *testing.T) {
		top := newTopo(t)
		lk, ok := top.BranchFromBipartition(FromSides([]string{"C", "D", "E"}, []string{"A", "B"}))
		require.True(t, ok)
		_, err := top.MoveNewick(branchAbove(t, top, "C"), lk)
		require.NoError(t, err)
	})

	t.Run("absent partition rejected", func(t *testing.T) {
		top := newTopo(t)
		err := top.LockPartition(FromSides([]string{"A", "C"}, []string{"B", "D", "E"}))
		require.ErrorIs(t, err, ErrBranchNotFound)
	})

	t.Run("locks carry into move results", func(t *testing.T) {
		top := newTopo(t)
		got, err := top.MoveTopology(branchAbove(t, top, "C"), branchAbove(t, top, "E"))
		require.NoError(t, err)
		require.Len(t, got.Locks(), 1)
	})
}
