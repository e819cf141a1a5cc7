package landscape

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/treescape/treescape/pkg/topology"
)

// Vertex is a read-mostly facade over one landscape record, giving
// tree-level views (bipartitions, neighborhoods, score statistics) without
// the caller holding both the landscape and the topology machinery.
type Vertex struct {
	l   *Landscape
	rec *Record
}

// Vertex returns a facade for the given id.
func (l *Landscape) Vertex(id int64) (*Vertex, bool) {
	rec, ok := l.records[id]
	if !ok {
		return nil, false
	}
	return &Vertex{l: l, rec: rec}, true
}

func (v *Vertex) ID() int64         { return v.rec.ID }
func (v *Vertex) Name() string      { return v.rec.Name }
func (v *Vertex) Newick() string    { return v.rec.Newick }
func (v *Vertex) Structure() string { return v.rec.Structure }
func (v *Vertex) Origin() string    { return v.rec.Origin }
func (v *Vertex) Score() Score      { return v.rec.Score }
func (v *Vertex) Explored() bool    { return v.rec.Explored }
func (v *Vertex) Failed() bool      { return v.rec.Failed }

// SetName renames the vertex.
func (v *Vertex) SetName(name string) { v.rec.Name = name }

// Topology rebuilds the vertex's anchored topology.
func (v *Vertex) Topology() (*topology.Topology, error) {
	return topology.FromNewick(v.rec.Newick)
}

// Neighbors returns adjacent vertex ids in ascending order.
func (v *Vertex) Neighbors() []int64 { return v.l.Neighbors(v.rec.ID) }

// Degree returns the number of adjacent vertices.
func (v *Vertex) Degree() int { return v.l.Degree(v.rec.ID) }

// Bipartitions returns the splits of the vertex's tree in branch order.
func (v *Vertex) Bipartitions() ([]*topology.Bipartition, error) {
	top, err := v.Topology()
	if err != nil {
		return nil, err
	}
	return top.Bipartitions(), nil
}

// NeighborsOfBipartition returns the landscape ids reachable from this
// vertex by the prune-regraft moves of the branch carrying the given split.
// Shapes the landscape has not admitted are omitted, as is the vertex
// itself; a split absent from the tree has no branch and yields nothing.
func (v *Vertex) NeighborsOfBipartition(bp *topology.Bipartition) ([]int64, error) {
	top, err := v.Topology()
	if err != nil {
		return nil, err
	}
	br, ok := top.BranchFromBipartition(bp)
	if !ok {
		return nil, nil
	}
	seen := make(map[int64]bool)
	var out []int64
	for _, m := range top.SPRMoves(br) {
		nt, err := m.ToTopology()
		if err != nil {
			continue
		}
		id, known := v.l.byStructure[nt.Structure()]
		if !known || id == v.rec.ID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

// ApproxNeighborSlots estimates how many moves the landscape operator admits
// from this vertex: 4(n-3)(n-2) for SPR on n leaves. Other operators have no
// closed form here and report -1.
func (v *Vertex) ApproxNeighborSlots() int {
	if v.l.op != topology.OpSPR {
		return -1
	}
	top, err := v.Topology()
	if err != nil {
		return -1
	}
	n := top.NumLeaves()
	return 4 * (n - 3) * (n - 2)
}

// EnsureScored computes the full objective if it is still missing.
func (v *Vertex) EnsureScored() (Score, error) { return v.l.ScoreFull(v.rec.ID) }

// BestImprovement returns the best strictly improving neighbor.
func (v *Vertex) BestImprovement() (int64, bool) { return v.l.BestImprovement(v.rec.ID) }

// IsLocalOptimum reports whether the vertex is a confirmed local optimum.
func (v *Vertex) IsLocalOptimum() bool { return v.l.IsLocalOptimum(v.rec.ID) }

// NeighborStats summarizes the objectives of the scored neighbors.
type NeighborStats struct {
	N      int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
}

// NeighborScoreStats aggregates the objectives across scored neighbors. It
// reports false when no neighbor has been scored.
func (v *Vertex) NeighborScoreStats() (NeighborStats, bool) {
	var xs []float64
	for _, id := range v.Neighbors() {
		if lk := v.l.records[id].Score.Likelihood; lk != nil {
			xs = append(xs, *lk)
		}
	}
	if len(xs) == 0 {
		return NeighborStats{}, false
	}
	slices.Sort(xs)
	return NeighborStats{
		N:      len(xs),
		Min:    xs[0],
		Max:    xs[len(xs)-1],
		Mean:   stat.Mean(xs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
	}, true
}
