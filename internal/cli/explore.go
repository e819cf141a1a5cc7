package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/treescape/treescape/pkg/align"
	"github.com/treescape/treescape/pkg/landfile"
	"github.com/treescape/treescape/pkg/landscape"
	"github.com/treescape/treescape/pkg/topology"
)

// defaultLandscapePath is where the landscape document lives when neither
// the --landscape flag nor the config names one.
const defaultLandscapePath = "treescape.landscape.json"

// exploreOpts holds the command-line flags for the explore command.
type exploreOpts struct {
	config    string // config file path
	tree      string // seed tree (file or literal) for new landscapes
	landscape string // landscape document path
	operator  string // rearrangement operator override
	name      string // landscape name override
	rounds    int    // number of exploration rounds
	random    bool   // random walk instead of full frontier expansion
	seed      uint64 // rng seed for random walks
	score     bool   // fully score every vertex after exploring
	noCache   bool   // bypass the score cache
}

// newExploreCmd creates the explore command. It expands a landscape by
// applying rearrangement rounds, creating or updating a landscape document.
//
// A round of full exploration expands every frontier vertex into its
// complete rearrangement neighborhood. A round of random exploration takes
// a single step to a previously unseen neighbor, walking away from the
// last discovery.
func newExploreCmd() *cobra.Command {
	opts := exploreOpts{rounds: 1, seed: 1}

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Expand a tree topology landscape",
		Long: `Expand a landscape by applying rearrangement rounds.

The landscape document is created from the seed tree on first use and
updated in place afterwards. When the config carries a [sequences] table,
admitted trees are scored by parsimony.

Examples:
  treescape explore --tree "(C,(A,B),D);"
  treescape explore --rounds 3
  treescape explore --random --rounds 50 --seed 7
  treescape explore --config primates.toml --score`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (default: treescape.toml)")
	cmd.Flags().StringVarP(&opts.tree, "tree", "t", "", "seed tree: file or Newick literal (new landscapes)")
	cmd.Flags().StringVarP(&opts.landscape, "landscape", "l", "", "landscape document path")
	cmd.Flags().StringVar(&opts.operator, "operator", "", "rearrangement operator: spr (default), nni")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "landscape name (new landscapes)")
	cmd.Flags().IntVarP(&opts.rounds, "rounds", "r", opts.rounds, "number of exploration rounds")
	cmd.Flags().BoolVar(&opts.random, "random", false, "random walk instead of full expansion")
	cmd.Flags().Uint64Var(&opts.seed, "seed", opts.seed, "random walk seed")
	cmd.Flags().BoolVar(&opts.score, "score", false, "fully score every vertex after exploring")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the score cache")

	return cmd
}

func runExplore(ctx context.Context, opts *exploreOpts) error {
	logger := loggerFromContext(ctx)

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

	l, doc, err := openLandscape(path, cfg, scorer, opts)
	if err != nil {
		return err
	}

	before := l.Len()
	prog := newProgress(logger)
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Exploring (%s)...", l.Operator()))
	spin.Start()

	if opts.random {
		err = exploreRandom(ctx, l, opts.rounds)
	} else {
		for round := 1; round <= opts.rounds && err == nil; round++ {
			spin.SetMessage(fmt.Sprintf("Exploring round %d/%d (%s)...", round, opts.rounds, l.Operator()))
			err = exploreFull(ctx, l, 1)
		}
	}
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Discovered %d new trees in %d rounds", l.Len()-before, opts.rounds))

	if opts.score {
		if err := scoreAll(ctx, l); err != nil {
			return err
		}
	}

	if err := saveLandscape(path, l, doc); err != nil {
		return err
	}

	printSuccess("Landscape %s updated", StyleHighlight.Render(l.Name()))
	printStats(l.Len(), len(l.Edges()), len(l.Frontier()))
	printFile(path)
	printNextStep("Inspect optima", "treescape optima")
	return nil
}

// openLandscape loads the document at path, or seeds a fresh landscape when
// none exists yet. The returned document is nil for fresh landscapes.
func openLandscape(path string, cfg *Config, scorer landscape.Scorer, opts *exploreOpts) (*landscape.Landscape, *landfile.Document, error) {
	var extra []landscape.Option
	if scorer != nil {
		extra = append(extra, landscape.WithScorer(scorer))
	}
	extra = append(extra, landscape.WithSeed(opts.seed))

	if f, err := os.Open(path); err == nil {
		defer f.Close()
		doc, err := landfile.Read(f)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		l, err := doc.Build(extra...)
		if err != nil {
			return nil, nil, err
		}
		return l, doc, nil
	}

	op, err := topology.ParseOp(firstNonEmpty(opts.operator, cfg.Operator, "spr"))
	if err != nil {
		return nil, nil, err
	}
	weight := cfg.Weight
	if weight == 0 {
		weight = 1
	}
	name := firstNonEmpty(opts.name, cfg.Name, "landscape")
	l := landscape.New(append(extra,
		landscape.WithOperator(op),
		landscape.WithName(name),
		landscape.WithDefaultWeight(weight),
	)...)

	seed, err := seedTree(cfg, opts.tree)
	if err != nil {
		return nil, nil, err
	}
	if _, err := l.Add(seed); err != nil {
		return nil, nil, err
	}
	return l, nil, nil
}

// seedTree resolves the starting tree for a fresh landscape. With no --tree
// argument, a ladder tree over the alignment's taxa serves as the seed.
func seedTree(cfg *Config, arg string) (string, error) {
	if arg != "" {
		return readTree(arg)
	}
	if len(cfg.Sequences) > 0 {
		a, err := align.New(cfg.Sequences)
		if err != nil {
			return "", err
		}
		return a.StartingTree(), nil
	}
	return "", errors.New("no seed tree: pass --tree or configure [sequences]")
}

// exploreFull expands the whole frontier once per round.
func exploreFull(ctx context.Context, l *landscape.Landscape, rounds int) error {
	for round := 0; round < rounds; round++ {
		frontier := l.Frontier()
		if len(frontier) == 0 {
			return nil
		}
		for _, id := range frontier {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := l.Explore(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// exploreRandom walks away from the last discovery, one unseen neighbor per
// round. A walk that gets stuck restarts from the best-scored vertex.
func exploreRandom(ctx context.Context, l *landscape.Landscape, rounds int) error {
	ids := l.IDs()
	if len(ids) == 0 {
		return nil
	}
	cur := ids[0]
	for round := 0; round < rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, ok, err := l.ExploreRandom(cur)
		if err != nil {
			return err
		}
		if !ok {
			best, found := l.GlobalOptimum()
			if !found || best == cur {
				return nil
			}
			cur = best
			continue
		}
		cur = next
	}
	return nil
}

// scoreAll computes the full score for every vertex that still lacks one.
func scoreAll(ctx context.Context, l *landscape.Landscape) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	scored := 0
	for _, id := range l.IDs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := l.ScoreFull(id); err != nil {
			if errors.Is(err, landscape.ErrNoScorer) {
				printWarning("No scorer configured, skipping scoring")
				return nil
			}
			logger.Warnf("Score tree %d: %v", id, err)
			continue
		}
		scored++
	}
	prog.done(fmt.Sprintf("Scored %d trees", scored))
	return nil
}

// saveLandscape snapshots l to path, keeping the previous document's
// identity when updating in place.
func saveLandscape(path string, l *landscape.Landscape, prev *landfile.Document) error {
	doc := landfile.FromLandscape(l)
	if prev != nil {
		doc.ID = prev.ID
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return landfile.Write(out, doc)
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
