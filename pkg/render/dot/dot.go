package dot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/callviz/pkg/callgraph"
	"github.com/matzehuels/callviz/pkg/coverage"
)

// DefaultCoveredColor highlights clusters whose methods are all covered.
const DefaultCoveredColor = "green"

// Options configures DOT export.
type Options struct {
	// CoveredColor is used for the border and label of fully covered
	// clusters. Defaults to DefaultCoveredColor.
	CoveredColor string

	// ConstructorLabel replaces the "<init>" method name in node labels.
	// When empty the marker is shown as is. Node identity is unaffected.
	ConstructorLabel string
}

func (o Options) coveredColor() string {
	if o.CoveredColor == "" {
		return DefaultCoveredColor
	}
	return o.CoveredColor
}

// ToDOT renders g as a complete directed-graph document.
func ToDOT(g *callgraph.Graph, opts Options) string {
	nodeCov := coverage.Normalize(g.NodeCoverage())
	edgeCov := coverage.Normalize(g.EdgeCoverage())

	var buf bytes.Buffer
	buf.WriteString("digraph CallGraph {\n")
	buf.WriteString("    rankdir=LR;\n")
	buf.WriteString("    graph [\n")
	buf.WriteString("        ranksep=1.8,\n")
	buf.WriteString("        nodesep=0.1,\n")
	buf.WriteString("        overlap=false,\n")
	buf.WriteString("        splines=true\n")
	buf.WriteString("    ];\n")
	buf.WriteString("    node [shape=box, fontsize=10];\n")

	for _, c := range g.SortedClusters() {
		writeCluster(&buf, g, c, nodeCov, opts)
	}

	for _, e := range g.Edges() {
		var attrs []string
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%s", quote(e.Label)))
		}
		if in, ok := edgeCov[e.Key()]; ok {
			attrs = append(attrs, colorAttrs(in.Color)...)
		}
		fmt.Fprintf(&buf, "    %s->%s%s;\n", quote(e.From), quote(e.To), fmtAttrs(attrs))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, g *callgraph.Graph, c callgraph.Cluster, nodeCov map[string]coverage.Intensity, opts Options) {
	fmt.Fprintf(buf, "    subgraph %s {\n", c.ID())
	fmt.Fprintf(buf, "        label=%s;\n", quote(c.Class))
	buf.WriteString("        style=rounded;\n")
	if g.IsFullyCovered(c.Nodes) {
		color := quote(opts.coveredColor())
		fmt.Fprintf(buf, "        color=%s;\n", color)
		fmt.Fprintf(buf, "        fontcolor=%s;\n", color)
	}

	for _, n := range c.Nodes {
		attrs := []string{"label=" + fmtLabel(g, n, opts.ConstructorLabel)}
		if in, ok := nodeCov[n]; ok {
			attrs = append(attrs, colorAttrs(in.Color)...)
		}
		fmt.Fprintf(buf, "        %s%s;\n", quote(n), fmtAttrs(attrs))
	}
	buf.WriteString("    }\n")
}

// fmtLabel returns the quoted node label. A ranking score goes on a second
// line; "\n" is DOT's centered line break, not a Go newline.
func fmtLabel(g *callgraph.Graph, n callgraph.Node, ctorLabel string) string {
	method := escape(callgraph.DisplayLabel(n, ctorLabel))
	if score, ok := g.Ranking(n); ok {
		return fmt.Sprintf(`"%s\n(%.4f)"`, method, score)
	}
	return `"` + method + `"`
}

func colorAttrs(color string) []string {
	c := quote(color)
	return []string{"color=" + c, "fontcolor=" + c}
}

func fmtAttrs(attrs []string) string {
	if len(attrs) == 0 {
		return ""
	}
	return " [" + strings.Join(attrs, ", ") + "]"
}

func quote(s string) string {
	return `"` + escape(s) + `"`
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escape(s string) string {
	return escaper.Replace(s)
}
