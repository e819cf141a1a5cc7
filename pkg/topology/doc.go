// Package topology models an unrooted phylogenetic tree shape and the
// rearrangement moves defined on it.
//
// Every Topology is held in an anchored form: a synthetic root with exactly
// two children, one of which is the anchor leaf (by default the
// lexicographically smallest leaf label). Anchoring makes serialization
// canonical, so two topologies describe the same unrooted shape iff their
// Structure strings are equal.
//
// Rearrangement is expressed as branch moves. A move prunes the subtree under
// a source branch and regrafts it onto a destination branch, splitting the
// destination in half. Moves are transactional: MoveNewick applies the move,
// serializes the result, and restores the receiver before returning, so a
// Topology can enumerate its whole neighborhood without being copied.
//
// Branches can carry locks. A lock pins the bipartition a branch induces;
// any move that would remove that bipartition from the tree is rejected.
package topology
