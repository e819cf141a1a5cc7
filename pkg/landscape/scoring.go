package landscape

import (
	"context"
	"encoding/json"
	"time"

	"github.com/treescape/treescape/pkg/align"
	"github.com/treescape/treescape/pkg/cache"
	"github.com/treescape/treescape/pkg/newick"
	"github.com/treescape/treescape/pkg/parsimony"
)

// ParsimonyScorer scores trees by weighted Fitch cost. The full objective is
// the negated cost, so higher stays better and parsimony can stand in
// wherever a likelihood engine would plug into the Scorer interface.
type ParsimonyScorer struct {
	s     *parsimony.Scorer
	sites int
}

// NewParsimonyScorer compiles the alignment into a reusable scorer.
func NewParsimonyScorer(a *align.Alignment) (*ParsimonyScorer, error) {
	s, err := parsimony.NewScorer(a)
	if err != nil {
		return nil, err
	}
	return &ParsimonyScorer{s: s, sites: a.Len()}, nil
}

// ScoreCheap returns only the parsimony cost.
func (p *ParsimonyScorer) ScoreCheap(text string) (Score, error) {
	c, err := p.s.CostNewick(text)
	if err != nil {
		return Score{}, err
	}
	cost := float64(c)
	return Score{Parsimony: &cost}, nil
}

// Score returns the parsimony cost and the negated cost as the objective.
func (p *ParsimonyScorer) Score(text string) (Score, error) {
	c, err := p.s.CostNewick(text)
	if err != nil {
		return Score{}, err
	}
	cost := float64(c)
	obj := -cost
	return Score{Likelihood: &obj, Parsimony: &cost}, nil
}

// Sites returns the number of alignment sites, used for cache keying.
func (p *ParsimonyScorer) Sites() int { return p.sites }

// CachedScorer memoizes full scores in a byte cache keyed by tree structure.
// Cheap scores are not cached; they are cheaper than the cache round trip.
type CachedScorer struct {
	inner Scorer
	store cache.Cache
	keyer cache.Keyer
	opts  cache.ScoreKeyOpts
	ttl   time.Duration
}

// NewCachedScorer wraps a scorer with a cache. A nil keyer falls back to
// the default keyer.
func NewCachedScorer(inner Scorer, store cache.Cache, keyer cache.Keyer, opts cache.ScoreKeyOpts) *CachedScorer {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedScorer{inner: inner, store: store, keyer: keyer, opts: opts}
}

// ScoreCheap delegates to the wrapped scorer.
func (c *CachedScorer) ScoreCheap(text string) (Score, error) {
	return c.inner.ScoreCheap(text)
}

// Score returns the cached score for the tree's structure, computing and
// storing it on a miss. Cache failures fall through to the wrapped scorer.
func (c *CachedScorer) Score(text string) (Score, error) {
	key, ok := c.key(text)
	if !ok {
		return c.inner.Score(text)
	}
	ctx := context.Background()
	if data, hit, err := c.store.Get(ctx, key); err == nil && hit {
		var sc Score
		if json.Unmarshal(data, &sc) == nil {
			return sc, nil
		}
	}
	sc, err := c.inner.Score(text)
	if err != nil {
		return Score{}, err
	}
	if data, err := json.Marshal(sc); err == nil {
		_ = c.store.Set(ctx, key, data, c.ttl)
	}
	return sc, nil
}

// key derives the cache key from the length-free structure, so trees that
// differ only in branch lengths share an entry.
func (c *CachedScorer) key(text string) (string, bool) {
	root, err := newick.Parse(text)
	if err != nil {
		return "", false
	}
	return c.keyer.ScoreKey(newick.Structure(root), c.opts), true
}
