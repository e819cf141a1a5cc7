package landscape

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/treescape/treescape/pkg/cache"
)

func TestParsimonyScorer(t *testing.T) {
	p := pars4(t)
	require.Equal(t, 1, p.Sites())

	cheap, err := p.ScoreCheap("((A,B),(C,D));")
	require.NoError(t, err)
	require.Equal(t, 1.0, *cheap.Parsimony)
	require.Nil(t, cheap.Likelihood)

	full, err := p.Score("((A,C),(B,D));")
	require.NoError(t, err)
	require.Equal(t, 2.0, *full.Parsimony)
	require.Equal(t, -2.0, *full.Likelihood)
}

func TestParsimonyScorerBadTree(t *testing.T) {
	p := pars4(t)
	_, err := p.Score("((A,B),(C,D)")
	require.Error(t, err)
}

// countingScorer counts full scores to make cache hits observable.
type countingScorer struct {
	inner Scorer
	full  int
}

func (c *countingScorer) Score(text string) (Score, error) {
	c.full++
	return c.inner.Score(text)
}

func (c *countingScorer) ScoreCheap(text string) (Score, error) {
	return c.inner.ScoreCheap(text)
}

func TestCachedScorer(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	counter := &countingScorer{inner: pars4(t)}
	cs := NewCachedScorer(counter, store, nil, cache.ScoreKeyOpts{Scorer: "parsimony", Sites: 1})

	first, err := cs.Score("((A,B),(C,D));")
	require.NoError(t, err)
	require.Equal(t, 1, counter.full)

	// Same shape with different branch lengths hits the cache.
	second, err := cs.Score("((A:0.3,B),(C,D:0.1));")
	require.NoError(t, err)
	require.Equal(t, 1, counter.full)
	require.Equal(t, *first.Likelihood, *second.Likelihood)

	// A different shape misses.
	_, err = cs.Score("((A,C),(B,D));")
	require.NoError(t, err)
	require.Equal(t, 2, counter.full)

	// Cheap scores bypass the cache entirely.
	_, err = cs.ScoreCheap("((A,B),(C,D));")
	require.NoError(t, err)
	require.Equal(t, 2, counter.full)
}

func TestCachedScorerScoped(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	a := &countingScorer{inner: pars4(t)}
	b := &countingScorer{inner: pars4(t)}
	csA := NewCachedScorer(a, store, cache.NewScopedKeyer(nil, "one:"), cache.ScoreKeyOpts{})
	csB := NewCachedScorer(b, store, cache.NewScopedKeyer(nil, "two:"), cache.ScoreKeyOpts{})

	_, err = csA.Score("((A,B),(C,D));")
	require.NoError(t, err)
	_, err = csB.Score("((A,B),(C,D));")
	require.NoError(t, err)

	// Scoped keyers keep the two namespaces apart.
	require.Equal(t, 1, a.full)
	require.Equal(t, 1, b.full)
}
