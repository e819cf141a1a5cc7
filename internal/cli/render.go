package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treescape/treescape/pkg/viz"
)

// Output formats for the render command.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	config    string // config file path
	landscape string // landscape document path
	output    string // output file (or base path for multiple formats)
	formats   string // comma-separated output formats
	layout    string // graphviz layout engine
	detailed  bool   // include scores and origins in node labels
}

// newRenderCmd creates the render command for drawing a landscape document
// as a graph. Local optima are filled gold, unexplored vertices grey, and
// failed vertices dashed.
func newRenderCmd() *cobra.Command {
	opts := renderOpts{formats: formatSVG, layout: "neato"}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a landscape document as a graph",
		Long: `Render a landscape document as a Graphviz drawing.

Examples:
  treescape render
  treescape render --format dot
  treescape render --format svg,png --detailed -o landscape`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (default: treescape.toml)")
	cmd.Flags().StringVarP(&opts.landscape, "landscape", "l", "", "landscape document path")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or base path (derived from landscape path if empty)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", opts.formats, "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.layout, "layout", opts.layout, "graphviz layout engine: neato (default), dot, fdp, circo")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include scores and origins in node labels")

	return cmd
}

func runRender(ctx context.Context, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	path := firstNonEmpty(opts.landscape, cfg.Landscape, defaultLandscapePath)

	formats := strings.Split(opts.formats, ",")
	for _, f := range formats {
		if f != formatDOT && f != formatSVG && f != formatPNG {
			return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", f)
		}
	}

	l, _, err := loadLandscape(path, nil)
	if err != nil {
		return err
	}

	dot := viz.ToDOT(l, viz.Options{Detailed: opts.detailed, Layout: opts.layout})
	logger.Debugf("Rendering %d trees, %d edges", l.Len(), len(l.Edges()))

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(path, filepath.Ext(path))
	}

	for _, format := range formats {
		data := []byte(dot)
		switch format {
		case formatSVG:
			if data, err = viz.RenderSVG(dot); err != nil {
				return fmt.Errorf("render svg: %w", err)
			}
		case formatPNG:
			if data, err = viz.RenderPNG(dot); err != nil {
				return fmt.Errorf("render png: %w", err)
			}
		}
		out := outputPath(base, format, len(formats) > 1)
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		printFile(out)
	}

	printSuccess("Rendered %s", StyleHighlight.Render(l.Name()))
	return nil
}

// outputPath derives the file name for one format. An explicit extension on
// base wins when a single format is requested.
func outputPath(base, format string, multi bool) string {
	if !multi && strings.HasSuffix(base, "."+format) {
		return base
	}
	return base + "." + format
}
