// Package callgraph models call graphs emitted by static-analysis tools.
//
// # Overview
//
// A call graph is a set of method signatures (nodes) connected by call edges.
// Signatures are fully qualified, for example:
//
//	<com.example.library.Book: void <init>(java.lang.String)>
//
// This package parses the DOT-like text such tools emit, simplifies signatures
// into short "Class.method" labels, and groups nodes into clusters by
// declaring class. Rendering lives in [render/dot].
//
// # Parsing
//
// [Parse] extracts nodes and edges line by line. Only lines of the form
//
//	"<src>"->"<dst>"[label="3"];
//
// are considered; everything else (headers, attributes, braces) is skipped
// without error:
//
//	nodes, edges := callgraph.Parse(raw)
//	g := callgraph.New(nodes, edges,
//	    callgraph.WithNodeCoverage(nodeCov),
//	    callgraph.WithRanking(ranks))
//
// # Identity
//
// Node identity is always the raw signature. Simplified labels are a view:
// two overloaded methods share a label but remain distinct nodes. Coverage
// lookups use the raw signature for nodes and [EdgeKey] for edges.
//
// [render/dot]: github.com/matzehuels/callviz/pkg/render/dot
package callgraph
