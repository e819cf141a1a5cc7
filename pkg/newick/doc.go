// Package newick parses and serializes phylogenetic trees written in the
// Newick (bracketed tree-description) format.
//
// The package defines the low-level tree representation shared by the rest of
// treescape: a [Node] owns an ordered list of child [Branch] values, and each
// branch owns exactly one child node. Parent links point the other way (node →
// branch → node) and are non-owning back-references, so a tree is an ordinary
// acyclic ownership structure despite being navigable in both directions.
//
// # Grammar
//
//	tree    := subtree ';'
//	subtree := leaf | '(' subtree (',' subtree)* ')' [label] [':' length]
//	leaf    := name [':' length]
//
// A missing branch length is stored as 0, which downstream code treats as
// "unset" rather than a literal zero-length branch.
//
// # Canonical form
//
// [Newick] and [Structure] serialize children ordered by their canonical
// subtree text, so two trees with the same shape always produce the same
// string. The landscape's deduplication index relies on this property.
//
// Serialization is linear; parsing is linear in the input with recursion
// bounded by nesting depth. Deeply right-nested inputs are the known worst
// case and are acceptable for typical tree depths.
package newick
