package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/treescape/treescape/pkg/landfile"
	"github.com/treescape/treescape/pkg/landscape"
)

// optimaOpts holds the command-line flags for the optima command.
type optimaOpts struct {
	config    string // config file path
	landscape string // landscape document path
	from      string // starting vertex (id or name) for improvement paths
	score     bool   // fully score every vertex first
	noCache   bool   // bypass the score cache
}

// newOptimaCmd creates the optima command. It reports the best-scored
// vertices of a landscape: the global optimum, all local optima, and
// optionally the path of best improvement from a chosen vertex.
func newOptimaCmd() *cobra.Command {
	var opts optimaOpts

	cmd := &cobra.Command{
		Use:   "optima",
		Short: "Report local and global optima of a landscape",
		Long: `Report the best-scored vertices of a landscape document.

A vertex is a local optimum when it is explored, scored, and none of its
scored neighbors improves on it. Use --score to fill in missing scores
first (requires a [sequences] table in the config).

Examples:
  treescape optima
  treescape optima --score
  treescape optima --from tree_0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptima(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (default: treescape.toml)")
	cmd.Flags().StringVarP(&opts.landscape, "landscape", "l", "", "landscape document path")
	cmd.Flags().StringVar(&opts.from, "from", "", "vertex (id or name) to trace best improvement from")
	cmd.Flags().BoolVar(&opts.score, "score", false, "fully score every vertex first")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the score cache")

	return cmd
}

func runOptima(ctx context.Context, opts *optimaOpts) error {
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	path := firstNonEmpty(opts.landscape, cfg.Landscape, defaultLandscapePath)

	scorer, closeCache, err := newScorer(cfg, opts.noCache)
	if err != nil {
		return err
	}
	if closeCache != nil {
		defer closeCache()
	}

	l, _, err := loadLandscape(path, scorer)
	if err != nil {
		return err
	}

	if opts.score {
		if err := scoreAll(ctx, l); err != nil {
			return err
		}
	}

	if best, ok := l.GlobalOptimum(); ok {
		rec, _ := l.Record(best)
		printSuccess("Global optimum: %s %s", StyleHighlight.Render(rec.Name), StyleDim.Render(fmtScore(rec.Score)))
		printDetail("%s", rec.Newick)
	} else {
		printWarning("No scored vertices; run explore with a [sequences] config or pass --score")
	}

	optima := l.LocalOptima()
	printNewline()
	printInfo("%d local optima", len(optima))
	for _, id := range optima {
		rec, _ := l.Record(id)
		printDetail("%s %s", rec.Name, fmtScore(rec.Score))
	}

	if opts.from != "" {
		id, err := findVertex(l, opts.from)
		if err != nil {
			return err
		}
		printNewline()
		printInfo("Best improvement from %s", opts.from)
		for _, step := range l.PathOfBestImprovement(id) {
			rec, _ := l.Record(step)
			printDetail("%s %s %s", iconArrow, rec.Name, fmtScore(rec.Score))
		}
	}

	printNewline()
	printStats(l.Len(), len(l.Edges()), len(l.Frontier()))
	return nil
}

// loadLandscape reads and rebuilds the landscape document at path.
func loadLandscape(path string, scorer landscape.Scorer) (*landscape.Landscape, *landfile.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("no landscape at %s: run explore first", path)
	}
	defer f.Close()

	doc, err := landfile.Read(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	var extra []landscape.Option
	if scorer != nil {
		extra = append(extra, landscape.WithScorer(scorer))
	}
	l, err := doc.Build(extra...)
	if err != nil {
		return nil, nil, err
	}
	return l, doc, nil
}

// findVertex resolves a vertex reference that is either a numeric id or a
// vertex name.
func findVertex(l *landscape.Landscape, ref string) (int64, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if _, ok := l.Record(id); ok {
			return id, nil
		}
	}
	for _, id := range l.IDs() {
		rec, _ := l.Record(id)
		if rec.Name == ref {
			return id, nil
		}
	}
	return 0, fmt.Errorf("no vertex %q in landscape", ref)
}

// fmtScore formats whichever score components are present.
func fmtScore(s landscape.Score) string {
	switch {
	case s.Likelihood != nil && s.Parsimony != nil:
		return fmt.Sprintf("(obj %.2f, pars %.0f)", *s.Likelihood, *s.Parsimony)
	case s.Parsimony != nil:
		return fmt.Sprintf("(pars %.0f)", *s.Parsimony)
	case s.Likelihood != nil:
		return fmt.Sprintf("(obj %.2f)", *s.Likelihood)
	default:
		return "(unscored)"
	}
}
