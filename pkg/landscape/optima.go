package landscape

import "slices"

// BestImprovement returns the neighbor with the highest objective strictly
// better than the vertex's own. Neighbors without a computed objective are
// ignored; an unscored vertex has no improvement.
func (l *Landscape) BestImprovement(id int64) (int64, bool) {
	rec, ok := l.records[id]
	if !ok || rec.Score.Likelihood == nil {
		return 0, false
	}
	best := *rec.Score.Likelihood
	found := false
	var bestID int64
	for _, nb := range l.Neighbors(id) {
		nrec := l.records[nb]
		if nrec.Score.Likelihood == nil {
			continue
		}
		if *nrec.Score.Likelihood > best {
			best = *nrec.Score.Likelihood
			bestID = nb
			found = true
		}
	}
	return bestID, found
}

// PathOfBestImprovement greedily follows BestImprovement until no neighbor
// improves, returning the improvement steps taken. The start vertex is not
// part of the path, so a vertex with no improving neighbor yields an empty
// path. Strict improvement rules out cycles.
func (l *Landscape) PathOfBestImprovement(id int64) []int64 {
	if _, ok := l.records[id]; !ok {
		return nil
	}
	var walk []int64
	for {
		next, ok := l.BestImprovement(id)
		if !ok {
			return walk
		}
		walk = append(walk, next)
		id = next
	}
}

// IsLocalOptimum reports whether a vertex is a confirmed local optimum: it
// is scored, its whole neighborhood has been realized, every healthy
// neighbor is scored, and none improves on it.
func (l *Landscape) IsLocalOptimum(id int64) bool {
	rec, ok := l.records[id]
	if !ok || !rec.Explored || rec.Score.Likelihood == nil {
		return false
	}
	nbs := l.Neighbors(id)
	if len(nbs) == 0 {
		return false
	}
	for _, nb := range nbs {
		nrec := l.records[nb]
		if nrec.Score.Likelihood == nil && !nrec.Failed {
			return false
		}
	}
	_, improving := l.BestImprovement(id)
	return !improving
}

// LocalOptima returns every confirmed local optimum in ascending id order.
func (l *Landscape) LocalOptima() []int64 {
	var out []int64
	for _, id := range l.IDs() {
		if l.IsLocalOptimum(id) {
			out = append(out, id)
		}
	}
	return out
}

// GlobalOptimum returns the confirmed local optimum with the highest
// objective. A well-scored but unexplored vertex never qualifies: its
// neighborhood is unknown, so its summit status is unconfirmed. The result
// reflects only what the landscape has seen, not the whole tree space.
func (l *Landscape) GlobalOptimum() (int64, bool) {
	var bestID int64
	var best float64
	found := false
	for _, id := range l.LocalOptima() {
		obj := *l.records[id].Score.Likelihood
		if !found || obj > best {
			best = obj
			bestID = id
			found = true
		}
	}
	return bestID, found
}

// Frontier returns the unexplored vertices in ascending id order, the usual
// work queue for iterative exploration.
func (l *Landscape) Frontier() []int64 {
	var out []int64
	for _, id := range l.IDs() {
		if rec := l.records[id]; !rec.Explored && !rec.Failed {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
