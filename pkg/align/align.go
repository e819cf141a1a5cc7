// Package align holds aligned character data for a set of taxa. Columns of
// the alignment are the sites scored by parsimony.
package align

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

var (
	// ErrEmpty is returned when no sequences are given.
	ErrEmpty = errors.New("alignment has no sequences")

	// ErrLengthMismatch is returned when sequences differ in length.
	ErrLengthMismatch = errors.New("sequences differ in length")

	// ErrDuplicateTaxon is returned when a taxon appears twice.
	ErrDuplicateTaxon = errors.New("duplicate taxon")

	// ErrBadFasta is returned for malformed FASTA input.
	ErrBadFasta = errors.New("malformed fasta")
)

// Alignment is an immutable site-by-taxon character matrix. Taxa are kept in
// sorted order; Column output is aligned with Taxa.
type Alignment struct {
	taxa  []string
	seqs  map[string]string
	sites int
}

// New builds an alignment from a taxon-to-sequence map. All sequences must
// share one length.
func New(seqs map[string]string) (*Alignment, error) {
	if len(seqs) == 0 {
		return nil, fmt.Errorf("align: %w", ErrEmpty)
	}
	taxa := make([]string, 0, len(seqs))
	sites := -1
	for taxon, seq := range seqs {
		if sites == -1 {
			sites = len(seq)
		} else if len(seq) != sites {
			return nil, fmt.Errorf("align: %q has %d sites, want %d: %w", taxon, len(seq), sites, ErrLengthMismatch)
		}
		taxa = append(taxa, taxon)
	}
	slices.Sort(taxa)
	cloned := make(map[string]string, len(seqs))
	for taxon, seq := range seqs {
		cloned[taxon] = seq
	}
	return &Alignment{taxa: taxa, seqs: cloned, sites: sites}, nil
}

// ParseFasta reads FASTA text. The taxon name is the first
// whitespace-delimited word of each header; sequence lines are concatenated.
func ParseFasta(r io.Reader) (*Alignment, error) {
	seqs := make(map[string]string)
	var taxon string
	var sb strings.Builder

	flush := func() error {
		if taxon == "" {
			return nil
		}
		if _, ok := seqs[taxon]; ok {
			return fmt.Errorf("align: %q: %w", taxon, ErrDuplicateTaxon)
		}
		seqs[taxon] = sb.String()
		sb.Reset()
		return nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, ">"):
			if err := flush(); err != nil {
				return nil, err
			}
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, fmt.Errorf("align: empty header: %w", ErrBadFasta)
			}
			taxon = fields[0]
		default:
			if taxon == "" {
				return nil, fmt.Errorf("align: sequence before header: %w", ErrBadFasta)
			}
			sb.WriteString(line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return New(seqs)
}

// Taxa returns the sorted taxon names.
func (a *Alignment) Taxa() []string { return slices.Clone(a.taxa) }

// NumTaxa returns the number of taxa.
func (a *Alignment) NumTaxa() int { return len(a.taxa) }

// Len returns the number of sites.
func (a *Alignment) Len() int { return a.sites }

// Sequence returns the characters of one taxon.
func (a *Alignment) Sequence(taxon string) (string, bool) {
	s, ok := a.seqs[taxon]
	return s, ok
}

// Column returns site i across all taxa, in Taxa order.
func (a *Alignment) Column(i int) []byte {
	out := make([]byte, len(a.taxa))
	for j, taxon := range a.taxa {
		out[j] = a.seqs[taxon][i]
	}
	return out
}

// StartingTree returns a deterministic ladder tree over the taxa, a seed
// shape for landscape exploration when no better tree is known.
func (a *Alignment) StartingTree() string {
	if len(a.taxa) == 1 {
		return a.taxa[0] + ";"
	}
	var sb strings.Builder
	for range len(a.taxa) - 1 {
		sb.WriteByte('(')
	}
	sb.WriteString(a.taxa[0])
	for _, taxon := range a.taxa[1:] {
		sb.WriteByte(',')
		sb.WriteString(taxon)
		sb.WriteByte(')')
	}
	sb.WriteByte(';')
	return sb.String()
}
