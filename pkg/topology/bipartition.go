package topology

import (
	"slices"
	"strings"
)

// Bipartition is the symmetric split of a leaf set induced by removing one
// branch from an unrooted tree. It is defined purely on leaf labels, so the
// same Bipartition value can be resolved against any topology over the same
// taxa.
type Bipartition struct {
	first, second []string
}

// FromSides builds a bipartition from two disjoint leaf-label sets. Order of
// the arguments and order within each side do not matter.
func FromSides(left, right []string) *Bipartition {
	l, r := slices.Clone(left), slices.Clone(right)
	slices.Sort(l)
	slices.Sort(r)
	// Canonical orientation: larger side first, lexicographic on ties.
	if len(r) > len(l) || (len(r) == len(l) && strings.Join(r, ",") < strings.Join(l, ",")) {
		l, r = r, l
	}
	return &Bipartition{first: l, second: r}
}

// Sides returns the two leaf-label sets, each sorted, larger side first.
func (bp *Bipartition) Sides() ([]string, []string) {
	return slices.Clone(bp.first), slices.Clone(bp.second)
}

// Equal reports whether two bipartitions describe the same split. It is
// symmetric in the sides by construction.
func (bp *Bipartition) Equal(o *Bipartition) bool {
	if o == nil {
		return bp == nil
	}
	return slices.Equal(bp.first, o.first) && slices.Equal(bp.second, o.second)
}

// Trivial reports whether one side is a single leaf. Trivial bipartitions are
// present in every topology over the same taxa.
func (bp *Bipartition) Trivial() bool {
	return len(bp.second) == 1 || len(bp.first) == 1
}

// Short returns a compact alphabet-coded form of the split. Each taxon is
// replaced by a capital letter given by its rank in the sorted union of both
// sides, so {C,D,E}|{A,B} over taxa A..E reads "CDE:AB". With more than 26
// taxa the coding is no longer possible and the labeled form is returned.
func (bp *Bipartition) Short() string {
	union := append(slices.Clone(bp.first), bp.second...)
	slices.Sort(union)
	if len(union) > 26 {
		return bp.String()
	}
	rank := make(map[string]byte, len(union))
	for i, lbl := range union {
		rank[lbl] = byte('A' + i)
	}
	var sb strings.Builder
	for _, lbl := range bp.first {
		sb.WriteByte(rank[lbl])
	}
	sb.WriteByte(':')
	for _, lbl := range bp.second {
		sb.WriteByte(rank[lbl])
	}
	return sb.String()
}

// String returns the split with full labels, sides separated by ':'.
func (bp *Bipartition) String() string {
	return strings.Join(bp.first, ",") + ":" + strings.Join(bp.second, ",")
}

// side returns which of the two sides contains the label: 0, 1, or -1 when
// the label is on neither side.
func (bp *Bipartition) side(label string) int {
	if _, ok := slices.BinarySearch(bp.first, label); ok {
		return 0
	}
	if _, ok := slices.BinarySearch(bp.second, label); ok {
		return 1
	}
	return -1
}
