// Package viz renders landscapes as Graphviz drawings. Vertices are tree
// shapes, edges are single rearrangement moves; the picture is the usual way
// to eyeball basins and ridges in a small landscape.
package viz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/treescape/treescape/pkg/landscape"
)

// Options configures landscape rendering.
type Options struct {
	// Detailed includes scores and origins in node labels. When false,
	// only the vertex name is shown.
	Detailed bool

	// Layout selects the Graphviz layout engine. Defaults to neato,
	// which suits the undirected, roughly regular landscape graphs.
	Layout string
}

// ToDOT converts a landscape to Graphviz DOT format. The resulting string
// can be rendered with [RenderSVG] or [RenderPNG]. Local optima are filled,
// failed vertices dashed, unexplored vertices grey.
func ToDOT(l *landscape.Landscape, opts Options) string {
	layout := opts.Layout
	if layout == "" {
		layout = "neato"
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", layout)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, id := range l.IDs() {
		rec, _ := l.Record(id)
		attrs := fmtAttrs(l, rec, opts.Detailed)
		fmt.Fprintf(&buf, "  %d [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges() {
		fmt.Fprintf(&buf, "  %d -- %d;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(l *landscape.Landscape, rec *landscape.Record, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(rec, detailed)),
		fmt.Sprintf("tooltip=%q", rec.Newick),
	}
	switch {
	case rec.Failed:
		attrs = append(attrs, "style=\"filled,dashed\"", "fillcolor=lightgrey")
	case l.IsLocalOptimum(rec.ID):
		attrs = append(attrs, "fillcolor=gold")
	case !rec.Explored:
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

func fmtLabel(rec *landscape.Record, detailed bool) string {
	if !detailed {
		return rec.Name
	}
	parts := []string{rec.Name}
	if rec.Score.Likelihood != nil {
		parts = append(parts, fmt.Sprintf("obj: %.4g", *rec.Score.Likelihood))
	}
	if rec.Score.Parsimony != nil {
		parts = append(parts, fmt.Sprintf("pars: %.4g", *rec.Score.Parsimony))
	}
	if rec.Origin != "" {
		parts = append(parts, rec.Origin)
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
