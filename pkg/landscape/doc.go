// Package landscape maintains a graph of tree shapes connected by single
// rearrangement moves.
//
// Each vertex holds one canonical topology; the length-free structure string
// is the deduplication key, so a shape enters the landscape exactly once no
// matter how many moves lead to it. Edges connect shapes one move apart
// under the landscape's operator.
//
// Scoring is two-phase. A cheap admission score (parsimony) is computed when
// a vertex is added; the full objective is computed on demand, which keeps
// exploration fast on landscapes where most vertices are never revisited.
package landscape
