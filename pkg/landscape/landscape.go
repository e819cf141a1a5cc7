package landscape

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	gtopo "gonum.org/v1/gonum/graph/topo"

	"github.com/treescape/treescape/pkg/topology"
)

var (
	// ErrDuplicateStructure is returned when a shape is already present.
	ErrDuplicateStructure = errors.New("structure already in landscape")

	// ErrUnknownVertex is returned for vertex ids not in the landscape.
	ErrUnknownVertex = errors.New("vertex not in landscape")

	// ErrNoScorer is returned by scoring operations when the landscape was
	// built without a scorer.
	ErrNoScorer = errors.New("no scorer configured")
)

// How a vertex entered the landscape.
const (
	OriginSeed    = "seed"
	OriginExplore = "explore"
	OriginRandom  = "random"
	OriginFile    = "file"
)

// Score carries the two objectives tracked per vertex. Nil means not yet
// computed. Likelihood is the primary objective, higher is better;
// parsimony is a cost, lower is better.
type Score struct {
	Likelihood *float64 `json:"likelihood,omitempty"`
	Parsimony  *float64 `json:"parsimony,omitempty"`
}

// Scorer evaluates tree descriptions. ScoreCheap is called on every
// admission and should be fast; Score computes the full objective.
type Scorer interface {
	Score(newick string) (Score, error)
	ScoreCheap(newick string) (Score, error)
}

// Record is the state of one landscape vertex.
type Record struct {
	ID        int64
	Name      string
	Newick    string
	Structure string
	Origin    string
	Score     Score
	Explored  bool
	Failed    bool
}

// Landscape is a deduplicated graph of tree shapes. It is not safe for
// concurrent use.
type Landscape struct {
	g           *simple.WeightedUndirectedGraph
	records     map[int64]*Record
	byStructure map[string]int64

	scorer        Scorer
	op            topology.Op
	locks         []*topology.Bipartition
	defaultWeight float64
	name          string
	rng           *rand.Rand
}

// Option adjusts landscape construction.
type Option func(*Landscape)

// WithScorer sets the scorer used for admission and full scoring.
func WithScorer(s Scorer) Option {
	return func(l *Landscape) { l.scorer = s }
}

// WithOperator selects the rearrangement operator used by exploration.
// The default is SPR.
func WithOperator(op topology.Op) Option {
	return func(l *Landscape) { l.op = op }
}

// WithName names the landscape, carried into persisted files.
func WithName(name string) Option {
	return func(l *Landscape) { l.name = name }
}

// WithDefaultWeight sets the weight given to new edges. The default is 1.
func WithDefaultWeight(w float64) Option {
	return func(l *Landscape) { l.defaultWeight = w }
}

// WithSeed makes random exploration deterministic.
func WithSeed(seed uint64) Option {
	return func(l *Landscape) { l.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// New builds an empty landscape.
func New(opts ...Option) *Landscape {
	l := &Landscape{
		g:             simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		records:       make(map[int64]*Record),
		byStructure:   make(map[string]int64),
		op:            topology.OpSPR,
		defaultWeight: 1,
		name:          "landscape",
	}
	for _, o := range opts {
		o(l)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return l
}

// Name returns the landscape name.
func (l *Landscape) Name() string { return l.name }

// Operator returns the rearrangement operator used by exploration.
func (l *Landscape) Operator() topology.Op { return l.op }

// DefaultWeight returns the weight given to new edges.
func (l *Landscape) DefaultWeight() float64 { return l.defaultWeight }

// Len returns the number of vertices.
func (l *Landscape) Len() int { return len(l.records) }

// IDs returns all vertex ids in ascending order.
func (l *Landscape) IDs() []int64 {
	out := make([]int64, 0, len(l.records))
	for id := range l.records {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Record returns the state of one vertex.
func (l *Landscape) Record(id int64) (*Record, bool) {
	rec, ok := l.records[id]
	return rec, ok
}

// FindStructure canonicalizes a tree description and looks its shape up.
func (l *Landscape) FindStructure(text string) (int64, bool) {
	top, err := topology.FromNewick(text)
	if err != nil {
		return 0, false
	}
	id, ok := l.byStructure[top.Structure()]
	return id, ok
}

// Add canonicalizes a tree description and inserts it as a seed vertex.
// When the shape is already present, its id is returned together with
// [ErrDuplicateStructure].
func (l *Landscape) Add(text string) (int64, error) {
	top, err := topology.FromNewick(text)
	if err != nil {
		return 0, err
	}
	if id, ok := l.byStructure[top.Structure()]; ok {
		return id, fmt.Errorf("landscape: vertex %d: %w", id, ErrDuplicateStructure)
	}
	return l.insert(top, OriginSeed), nil
}

// Restore reinstates a vertex with a fixed id, used when loading persisted
// landscapes. Scores and flags are taken as given; the structure is
// recomputed from the tree text.
func (l *Landscape) Restore(rec Record) error {
	top, err := topology.FromNewick(rec.Newick)
	if err != nil {
		return err
	}
	structure := top.Structure()
	if id, ok := l.byStructure[structure]; ok {
		return fmt.Errorf("landscape: vertex %d: %w", id, ErrDuplicateStructure)
	}
	if l.g.Node(rec.ID) != nil {
		return fmt.Errorf("landscape: id %d taken: %w", rec.ID, ErrDuplicateStructure)
	}
	l.g.AddNode(simple.Node(rec.ID))
	stored := rec
	stored.Newick = top.Newick()
	stored.Structure = structure
	if stored.Name == "" {
		stored.Name = defaultName(rec.ID)
	}
	l.records[rec.ID] = &stored
	l.byStructure[structure] = rec.ID
	return nil
}

// RemoveTree deletes a vertex together with its incident edges and its
// structure-index entry, so the shape can be admitted again later.
func (l *Landscape) RemoveTree(id int64) error {
	rec, ok := l.records[id]
	if !ok {
		return fmt.Errorf("landscape: %d: %w", id, ErrUnknownVertex)
	}
	l.g.RemoveNode(id)
	delete(l.byStructure, rec.Structure)
	delete(l.records, id)
	return nil
}

func defaultName(id int64) string { return fmt.Sprintf("tree_%d", id) }

func (l *Landscape) insert(top *topology.Topology, origin string) int64 {
	n := l.g.NewNode()
	l.g.AddNode(n)
	id := n.ID()
	rec := &Record{
		ID:        id,
		Name:      defaultName(id),
		Newick:    top.Newick(),
		Structure: top.Structure(),
		Origin:    origin,
	}
	if l.scorer != nil {
		if sc, err := l.scorer.ScoreCheap(rec.Newick); err != nil {
			rec.Failed = true
		} else {
			rec.Score.merge(sc)
		}
	}
	l.records[id] = rec
	l.byStructure[rec.Structure] = id
	return id
}

func (s *Score) merge(o Score) {
	if o.Likelihood != nil {
		s.Likelihood = o.Likelihood
	}
	if o.Parsimony != nil {
		s.Parsimony = o.Parsimony
	}
}

// Connect adds an edge between two vertices with the default weight.
func (l *Landscape) Connect(a, b int64) error {
	if _, ok := l.records[a]; !ok {
		return fmt.Errorf("landscape: %d: %w", a, ErrUnknownVertex)
	}
	if _, ok := l.records[b]; !ok {
		return fmt.Errorf("landscape: %d: %w", b, ErrUnknownVertex)
	}
	if a == b {
		return nil
	}
	l.g.SetWeightedEdge(l.g.NewWeightedEdge(simple.Node(a), simple.Node(b), l.defaultWeight))
	return nil
}

// Neighbors returns the ids adjacent to a vertex, in ascending order.
func (l *Landscape) Neighbors(id int64) []int64 {
	if _, ok := l.records[id]; !ok {
		return nil
	}
	var out []int64
	it := l.g.From(id)
	for it.Next() {
		out = append(out, it.Node().ID())
	}
	slices.Sort(out)
	return out
}

// Degree returns the number of edges at a vertex.
func (l *Landscape) Degree(id int64) int { return len(l.Neighbors(id)) }

// Edges returns every edge as an id pair, smaller id first, in ascending
// order. The order is stable so persisted landscapes diff cleanly.
func (l *Landscape) Edges() [][2]int64 {
	var out [][2]int64
	it := l.g.Edges()
	for it.Next() {
		e := it.Edge()
		a, b := e.From().ID(), e.To().ID()
		if a > b {
			a, b = b, a
		}
		out = append(out, [2]int64{a, b})
	}
	slices.SortFunc(out, func(x, y [2]int64) int {
		switch {
		case x[0] != y[0]:
			return int(x[0] - y[0])
		default:
			return int(x[1] - y[1])
		}
	})
	return out
}

// Lock pins a bipartition for all future exploration. Candidate moves that
// would break a pinned split are never generated, and candidate shapes that
// lack one are never admitted. Locking is idempotent.
func (l *Landscape) Lock(bp *topology.Bipartition) {
	for _, lk := range l.locks {
		if lk.Equal(bp) {
			return
		}
	}
	l.locks = append(l.locks, bp)
}

// ToggleLock pins a bipartition, or releases it when it is already pinned.
// It reports whether the bipartition is locked afterwards.
func (l *Landscape) ToggleLock(bp *topology.Bipartition) bool {
	for i, lk := range l.locks {
		if lk.Equal(bp) {
			l.locks = slices.Delete(l.locks, i, i+1)
			return false
		}
	}
	l.locks = append(l.locks, bp)
	return true
}

// Locks returns the pinned bipartitions.
func (l *Landscape) Locks() []*topology.Bipartition { return slices.Clone(l.locks) }

// IsViolating reports whether a vertex's tree lacks a pinned bipartition.
// Violating vertices stay in the landscape, but exploration never produces
// more shapes like them.
func (l *Landscape) IsViolating(id int64) (bool, error) {
	rec, ok := l.records[id]
	if !ok {
		return false, fmt.Errorf("landscape: %d: %w", id, ErrUnknownVertex)
	}
	if len(l.locks) == 0 {
		return false, nil
	}
	top, err := topology.FromNewick(rec.Newick)
	if err != nil {
		return false, err
	}
	return l.violates(top), nil
}

// violates reports whether the tree lacks any pinned bipartition.
func (l *Landscape) violates(top *topology.Topology) bool {
	for _, lk := range l.locks {
		if _, ok := top.BranchFromBipartition(lk); !ok {
			return true
		}
	}
	return false
}

// origin rebuilds a vertex's topology with the landscape locks applied.
// Locks whose split the tree does not contain cannot be bound to a branch;
// they are enforced instead by filtering the candidate shapes.
func (l *Landscape) origin(rec *Record) (*topology.Topology, error) {
	top, err := topology.FromNewick(rec.Newick)
	if err != nil {
		return nil, err
	}
	for _, lk := range l.locks {
		if err := top.LockPartition(lk); err != nil {
			continue
		}
	}
	return top, nil
}

// Explore realizes every move of a vertex under the landscape operator. New
// shapes become vertices, known shapes gain an edge, and the vertex is
// marked explored. The ids of newly created vertices are returned.
func (l *Landscape) Explore(id int64) ([]int64, error) {
	rec, ok := l.records[id]
	if !ok {
		return nil, fmt.Errorf("landscape: %d: %w", id, ErrUnknownVertex)
	}
	top, err := l.origin(rec)
	if err != nil {
		return nil, err
	}
	moves, err := top.Moves(l.op)
	if err != nil {
		return nil, err
	}

	var created []int64
	for _, m := range moves {
		nt, err := m.ToTopology()
		if err != nil {
			continue
		}
		structure := nt.Structure()
		if structure == rec.Structure {
			continue
		}
		if l.violates(nt) {
			continue
		}
		other, ok := l.byStructure[structure]
		if !ok {
			other = l.insert(nt, OriginExplore)
			created = append(created, other)
		}
		if !l.g.HasEdgeBetween(id, other) {
			l.g.SetWeightedEdge(l.g.NewWeightedEdge(simple.Node(id), simple.Node(other), l.defaultWeight))
		}
	}
	rec.Explored = true
	return created, nil
}

// ExploreRandom realizes moves of a vertex in random order and stops at the
// first one that tells the landscape something new: a shape not seen
// before, or a known shape this vertex was not yet connected to. It reports
// whether such a step was found; the vertex is never marked explored, so a
// later full Explore still enumerates everything.
func (l *Landscape) ExploreRandom(id int64) (int64, bool, error) {
	rec, ok := l.records[id]
	if !ok {
		return 0, false, fmt.Errorf("landscape: %d: %w", id, ErrUnknownVertex)
	}
	top, err := l.origin(rec)
	if err != nil {
		return 0, false, err
	}
	moves, err := top.Moves(l.op)
	if err != nil {
		return 0, false, err
	}
	l.rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })

	for _, m := range moves {
		nt, err := m.ToTopology()
		if err != nil {
			continue
		}
		structure := nt.Structure()
		if structure == rec.Structure {
			continue
		}
		if l.violates(nt) {
			continue
		}
		other, known := l.byStructure[structure]
		if known {
			if l.g.HasEdgeBetween(id, other) {
				continue
			}
		} else {
			other = l.insert(nt, OriginRandom)
		}
		l.g.SetWeightedEdge(l.g.NewWeightedEdge(simple.Node(id), simple.Node(other), l.defaultWeight))
		return other, true, nil
	}
	return 0, false, nil
}

// ScoreFull computes the full objective for a vertex if it is still
// missing. Scoring failures are sticky: the vertex is flagged and not
// retried.
func (l *Landscape) ScoreFull(id int64) (Score, error) {
	rec, ok := l.records[id]
	if !ok {
		return Score{}, fmt.Errorf("landscape: %d: %w", id, ErrUnknownVertex)
	}
	if rec.Score.Likelihood != nil || rec.Failed {
		return rec.Score, nil
	}
	if l.scorer == nil {
		return Score{}, fmt.Errorf("landscape: %w", ErrNoScorer)
	}
	sc, err := l.scorer.Score(rec.Newick)
	if err != nil {
		rec.Failed = true
		return Score{}, fmt.Errorf("landscape: vertex %d: %w", id, err)
	}
	rec.Score.merge(sc)
	return rec.Score, nil
}

// PathBetween returns the cheapest edge path connecting two vertices and
// its total weight.
func (l *Landscape) PathBetween(a, b int64) ([]int64, float64, bool) {
	if _, ok := l.records[a]; !ok {
		return nil, 0, false
	}
	if _, ok := l.records[b]; !ok {
		return nil, 0, false
	}
	nodes, weight := path.DijkstraFrom(simple.Node(a), l.g).To(b)
	if len(nodes) == 0 {
		return nil, 0, false
	}
	return nodeIDs(nodes), weight, true
}

// Components returns the connected components of the landscape, each in
// ascending id order, ordered by their smallest vertex.
func (l *Landscape) Components() [][]int64 {
	comps := gtopo.ConnectedComponents(l.g)
	out := make([][]int64, 0, len(comps))
	for _, c := range comps {
		ids := nodeIDs(c)
		slices.Sort(ids)
		out = append(out, ids)
	}
	slices.SortFunc(out, func(a, b []int64) int {
		switch {
		case a[0] < b[0]:
			return -1
		case a[0] > b[0]:
			return 1
		}
		return 0
	})
	return out
}

func nodeIDs(nodes []graph.Node) []int64 {
	out := make([]int64, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}
