// Package dot renders call graphs as Graphviz DOT documents.
//
// # Overview
//
// [ToDOT] turns a [callgraph.Graph] into a left-to-right directed graph where
// every declaring class becomes a cluster and every method a box inside it:
//
//	doc := dot.ToDOT(g, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, doc)
//
// # Annotations
//
//   - Ranking: nodes with a ranking score show it below the method name with
//     four decimals.
//   - Node and edge coverage: covered entries are colored with the shade
//     computed by [coverage.Normalize]. Uncovered entries keep default styling.
//   - Cluster coverage: a cluster whose nodes are all covered gets its border
//     and label drawn in [Options.CoveredColor].
//
// Output is deterministic: clusters are sorted by class name, nodes by raw
// signature, and edges keep their input order.
//
// # Rendering
//
// [RenderSVG] and [RenderPNG] lay the document out in-process with
// [github.com/goccy/go-graphviz]. Layout is entirely up to Graphviz.
package dot
