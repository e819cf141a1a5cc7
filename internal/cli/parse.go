package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treescape/treescape/pkg/topology"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	anchor       string // reroot taxon (lexicographically smallest if empty)
	bipartitions bool   // list bipartitions after the summary
	output       string // output file path (stdout if empty)
}

// newParseCmd creates the parse command for canonicalizing Newick trees.
// The argument is either a file path or a Newick literal; the command prints
// the canonical rooted form, the structure key used for deduplication, and
// the taxon count.
func newParseCmd() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse <file-or-newick>",
		Short: "Canonicalize a Newick tree",
		Long: `Canonicalize a Newick tree from a file or a literal string.

The tree is rerooted at the anchor taxon and printed in canonical form,
along with the length-free structure key that identifies its shape.

Examples:
  treescape parse tree.nwk
  treescape parse "(C,(A,B),D);"
  treescape parse tree.nwk --bipartitions
  treescape parse tree.nwk --anchor human`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.anchor, "anchor", "", "reroot taxon (default: lexicographically smallest)")
	cmd.Flags().BoolVar(&opts.bipartitions, "bipartitions", false, "list bipartitions with short forms")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func runParse(arg string, opts *parseOpts) error {
	text, err := readTree(arg)
	if err != nil {
		return err
	}

	var topts []topology.Option
	if opts.anchor != "" {
		topts = append(topts, topology.WithAnchor(opts.anchor))
	}
	top, err := topology.FromNewick(text, topts...)
	if err != nil {
		return err
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if opts.output != "" {
		// File output carries just the canonical tree.
		_, err := fmt.Fprintln(out, top.Newick())
		return err
	}

	printKeyValue("canonical", top.Newick())
	printKeyValue("structure", top.Structure())
	printKeyValue("unrooted", top.UnrootedNewick())
	printKeyValue("anchor", top.Anchor())
	printKeyValue("taxa", fmt.Sprintf("%d (%s)", top.NumLeaves(), strings.Join(top.Taxa(), ", ")))

	if opts.bipartitions {
		printNewline()
		printInfo("Bipartitions")
		for _, bp := range top.Bipartitions() {
			marker := " "
			if bp.Trivial() {
				marker = StyleDim.Render("·")
			}
			printDetail("%s %s", marker, bp.Short())
		}
	}

	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
