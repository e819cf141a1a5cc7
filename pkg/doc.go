// Package pkg provides the core libraries for Treescape landscape exploration.
//
// # Overview
//
// Treescape maps the neighborhood structure of phylogenetic tree topologies:
// every vertex is a distinct unrooted tree shape over a fixed taxon set, and
// every edge is a single rearrangement (SPR or NNI) connecting two shapes.
// The pkg directory is organized bottom-up:
//
//  1. [newick] - TreeText parsing and canonical serialization
//  2. [topology] - Rearrangement engine, bipartitions, branch locks
//  3. [align] / [parsimony] - Sequence data and Fitch scoring
//  4. [landscape] - The deduplicated landscape graph and its vertex facade
//  5. [landfile] / [viz] / [cache] - Persistence, drawing, score caching
//
// # Quick Start
//
// Seed a landscape, expand a neighborhood, and find the best tree:
//
//	import (
//	    "github.com/treescape/treescape/pkg/align"
//	    "github.com/treescape/treescape/pkg/landscape"
//	)
//
//	// 1. Score trees by parsimony over an alignment
//	a, _ := align.New(map[string]string{
//	    "human": "ACGGACA", "chimp": "ACGGACT",
//	    "gorilla": "ACGGTCA", "orang": "TCGGTCA",
//	})
//	scorer, _ := landscape.NewParsimonyScorer(a)
//
//	// 2. Seed the landscape
//	l := landscape.New(landscape.WithScorer(scorer))
//	seed, _ := l.Add(a.StartingTree())
//
//	// 3. Expand the seed's SPR neighborhood
//	created, _ := l.Explore(seed)
//	_ = created
//
//	// 4. Walk uphill
//	best, _ := l.GlobalOptimum()
//
// # Main Packages
//
// [newick] - Recursive-descent Newick parser and canonical writer. The
// canonical form orders children by their length-free subtree strings, so
// equal shapes serialize identically; that string is the landscape's
// deduplication key.
//
// [topology] - Rooted working copies of unrooted shapes. A topology is
// rerooted at an anchor leaf, which turns every branch into a clade and makes
// rearrangement bookkeeping uniform. Supplies SPR and NNI move enumeration,
// transactional move application, bipartition extraction, and branch locks
// that constrain which moves are proposed.
//
// [align] - In-memory multiple sequence alignments keyed by taxon label,
// with a FASTA reader and ladder starting trees.
//
// [parsimony] - Fitch small parsimony with site-pattern compression.
// Rooting-invariant, so scores apply to the unrooted shape.
//
// [landscape] - The landscape graph itself, backed by gonum. Deduplicates
// vertices by structure, tracks exploration state, scores vertices in two
// phases (cheap parsimony on admission, full objective on demand), and
// answers path, component, and optima queries. [landscape.Vertex] is the
// read-mostly facade over one tree.
//
// [landfile] - JSON interchange documents for landscapes: trees, edges,
// locks, and scores, rebuildable into a live landscape.
//
// [viz] - Graphviz drawings of a landscape via DOT, SVG, and PNG.
//
// [cache] - Byte cache with file-backed and null implementations, keyed by
// tree structure so rescoring a known shape is free across runs.
package pkg
