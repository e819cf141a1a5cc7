package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/treescape/treescape/pkg/align"
	"github.com/treescape/treescape/pkg/landscape"
)

func explored(t *testing.T) *landscape.Landscape {
	t.Helper()
	a, err := align.New(map[string]string{"A": "G", "B": "G", "C": "A", "D": "A"})
	require.NoError(t, err)
	scorer, err := landscape.NewParsimonyScorer(a)
	require.NoError(t, err)

	l := landscape.New(landscape.WithScorer(scorer))
	seed, err := l.Add("((A,B),(C,D));")
	require.NoError(t, err)
	_, err = l.Explore(seed)
	require.NoError(t, err)
	for _, id := range l.IDs() {
		_, err := l.ScoreFull(id)
		require.NoError(t, err)
	}
	return l
}

func TestToDOT(t *testing.T) {
	l := explored(t)
	dot := ToDOT(l, Options{})

	require.True(t, strings.HasPrefix(dot, "graph G {"))
	require.Contains(t, dot, "layout=neato;")
	for _, id := range l.IDs() {
		rec, _ := l.Record(id)
		require.Contains(t, dot, rec.Name)
	}
	require.Equal(t, len(l.Edges()), strings.Count(dot, "--"))

	// The explored, scored seed is the local optimum and drawn filled.
	require.Contains(t, dot, "fillcolor=gold")
}

func TestToDOTDetailed(t *testing.T) {
	l := explored(t)
	dot := ToDOT(l, Options{Detailed: true})
	require.Contains(t, dot, "obj: ")
	require.Contains(t, dot, "pars: ")
	require.Contains(t, dot, landscape.OriginSeed)
}

func TestToDOTLayoutOverride(t *testing.T) {
	dot := ToDOT(landscape.New(), Options{Layout: "dot"})
	require.Contains(t, dot, "layout=dot;")
	require.NotContains(t, dot, "--")
}

func TestToDOTUnexploredGrey(t *testing.T) {
	l := landscape.New()
	_, err := l.Add("((A,B),(C,D));")
	require.NoError(t, err)
	dot := ToDOT(l, Options{})
	require.Contains(t, dot, "fillcolor=lightgrey")
}
