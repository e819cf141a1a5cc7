// Package landfile is the JSON interchange format for landscapes. A
// document captures everything needed to rebuild a landscape in another
// process: trees with their scores and flags, edges, locks, and the
// operator, keyed by a stable document id.
package landfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/treescape/treescape/pkg/landscape"
	"github.com/treescape/treescape/pkg/topology"
)

// Version is the current document format version.
const Version = 1

var (
	// ErrVersion is returned for documents written by an unknown format
	// version.
	ErrVersion = errors.New("unsupported landscape file version")

	// ErrMalformed is returned for documents that do not decode.
	ErrMalformed = errors.New("malformed landscape file")
)

// Document is the top-level file structure.
type Document struct {
	Name          string  `json:"name"`
	ID            string  `json:"id"`
	Version       int     `json:"version"`
	Operator      string  `json:"operator"`
	DefaultWeight float64 `json:"default_weight"`
	Trees         []Tree  `json:"trees"`
	Edges         []Edge  `json:"edges"`
	Locks         []Lock  `json:"locks,omitempty"`
}

// Tree is one persisted vertex.
type Tree struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name,omitempty"`
	Newick     string   `json:"newick"`
	Origin     string   `json:"origin,omitempty"`
	Likelihood *float64 `json:"likelihood,omitempty"`
	Parsimony  *float64 `json:"parsimony,omitempty"`
	Explored   bool     `json:"explored,omitempty"`
	Failed     bool     `json:"failed,omitempty"`
}

// Edge connects two vertices by id.
type Edge struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Lock is a pinned bipartition given by its leaf sides.
type Lock struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// FromLandscape snapshots a landscape into a document with a fresh id.
func FromLandscape(l *landscape.Landscape) *Document {
	d := &Document{
		Name:          l.Name(),
		ID:            uuid.NewString(),
		Version:       Version,
		Operator:      l.Operator().String(),
		DefaultWeight: l.DefaultWeight(),
	}
	for _, id := range l.IDs() {
		rec, _ := l.Record(id)
		d.Trees = append(d.Trees, Tree{
			ID:         rec.ID,
			Name:       rec.Name,
			Newick:     rec.Newick,
			Origin:     rec.Origin,
			Likelihood: rec.Score.Likelihood,
			Parsimony:  rec.Score.Parsimony,
			Explored:   rec.Explored,
			Failed:     rec.Failed,
		})
	}
	for _, e := range l.Edges() {
		d.Edges = append(d.Edges, Edge{From: e[0], To: e[1]})
	}
	for _, lk := range l.Locks() {
		left, right := lk.Sides()
		d.Locks = append(d.Locks, Lock{Left: left, Right: right})
	}
	return d
}

// Build rebuilds a landscape from the document. Extra options are applied
// after the document's own, so callers can attach a scorer or a seed.
func (d *Document) Build(opts ...landscape.Option) (*landscape.Landscape, error) {
	op, err := topology.ParseOp(d.Operator)
	if err != nil {
		return nil, err
	}
	weight := d.DefaultWeight
	if weight == 0 {
		weight = 1
	}
	all := append([]landscape.Option{
		landscape.WithName(d.Name),
		landscape.WithOperator(op),
		landscape.WithDefaultWeight(weight),
	}, opts...)
	l := landscape.New(all...)

	for _, t := range d.Trees {
		origin := t.Origin
		if origin == "" {
			origin = landscape.OriginFile
		}
		err := l.Restore(landscape.Record{
			ID:       t.ID,
			Name:     t.Name,
			Newick:   t.Newick,
			Origin:   origin,
			Score:    landscape.Score{Likelihood: t.Likelihood, Parsimony: t.Parsimony},
			Explored: t.Explored,
			Failed:   t.Failed,
		})
		if err != nil {
			return nil, fmt.Errorf("landfile: tree %d: %w", t.ID, err)
		}
	}
	for _, e := range d.Edges {
		if err := l.Connect(e.From, e.To); err != nil {
			return nil, fmt.Errorf("landfile: edge %d-%d: %w", e.From, e.To, err)
		}
	}
	for _, lk := range d.Locks {
		l.Lock(topology.FromSides(lk.Left, lk.Right))
	}
	return l, nil
}

// Write encodes a document as indented JSON.
func Write(w io.Writer, d *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Read decodes and validates a document.
func Read(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("landfile: %w: %w", ErrMalformed, err)
	}
	if d.Version != Version {
		return nil, fmt.Errorf("landfile: version %d: %w", d.Version, ErrVersion)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return &d, nil
}
