// Package parsimony scores tree shapes against aligned character data with
// the Fitch small-parsimony algorithm.
//
// Sites are compressed before scoring: two columns that partition the taxa
// the same way have the same cost on every tree, so only distinct partition
// patterns are kept, each with a multiplicity weight. State sets are held as
// bit masks, which caps the distinct states per site at 64.
package parsimony

import (
	"errors"
	"fmt"

	"github.com/treescape/treescape/pkg/align"
	"github.com/treescape/treescape/pkg/newick"
	"github.com/treescape/treescape/pkg/topology"
)

var (
	// ErrTooManyStates is returned when a site has more than 64 distinct
	// states.
	ErrTooManyStates = errors.New("site has more than 64 distinct states")

	// ErrUnknownTaxon is returned when a tree carries a leaf absent from
	// the alignment.
	ErrUnknownTaxon = errors.New("taxon missing from alignment")
)

// profile is one distinct site pattern: a state mask per taxon, in alignment
// taxon order, plus the number of sites showing the pattern.
type profile struct {
	states []uint64
	weight int
}

// Scorer computes Fitch costs for trees over one alignment. It is safe for
// concurrent use once built.
type Scorer struct {
	taxa     map[string]int
	profiles []profile
}

// NewScorer compresses the alignment into site patterns.
func NewScorer(a *align.Alignment) (*Scorer, error) {
	taxa := a.Taxa()
	idx := make(map[string]int, len(taxa))
	for i, taxon := range taxa {
		idx[taxon] = i
	}

	s := &Scorer{taxa: idx}
	patterns := make(map[string]int)
	for site := range a.Len() {
		col := a.Column(site)
		comp := make([]byte, len(col))
		seen := make(map[byte]byte)
		for i, c := range col {
			v, ok := seen[c]
			if !ok {
				if len(seen) == 64 {
					return nil, fmt.Errorf("parsimony: site %d: %w", site, ErrTooManyStates)
				}
				v = byte(len(seen))
				seen[c] = v
			}
			comp[i] = v
		}
		key := string(comp)
		if j, ok := patterns[key]; ok {
			s.profiles[j].weight++
			continue
		}
		states := make([]uint64, len(comp))
		for i, v := range comp {
			states[i] = 1 << v
		}
		patterns[key] = len(s.profiles)
		s.profiles = append(s.profiles, profile{states: states, weight: 1})
	}
	return s, nil
}

// Patterns returns the number of distinct site patterns kept after
// compression.
func (s *Scorer) Patterns() int { return len(s.profiles) }

// Cost returns the weighted Fitch cost of a topology. Lower is better. The
// synthetic root sits on an edge, so the cost matches the unrooted tree's.
func (s *Scorer) Cost(top *topology.Topology) (int, error) {
	return s.cost(top.Root())
}

// CostNewick scores a raw tree description without canonicalizing it.
func (s *Scorer) CostNewick(text string) (int, error) {
	root, err := newick.Parse(text)
	if err != nil {
		return 0, err
	}
	return s.cost(root)
}

func (s *Scorer) cost(root *newick.Node) (int, error) {
	order := newick.PostOrder(root)
	masks := make(map[*newick.Node]uint64, len(order))
	total := 0
	for i := range s.profiles {
		p := &s.profiles[i]
		for _, n := range order {
			if n.IsLeaf() {
				j, ok := s.taxa[n.Label]
				if !ok {
					return 0, fmt.Errorf("parsimony: %q: %w", n.Label, ErrUnknownTaxon)
				}
				masks[n] = p.states[j]
				continue
			}
			acc, first := uint64(0), true
			for _, b := range n.Children {
				m := masks[b.Child]
				switch {
				case first:
					acc, first = m, false
				case acc&m != 0:
					acc &= m
				default:
					acc |= m
					total += p.weight
				}
			}
			masks[n] = acc
		}
	}
	return total, nil
}
