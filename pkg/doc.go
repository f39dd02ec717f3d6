// Package pkg provides the libraries behind callviz, a tool that turns the
// raw call graph of a static-analysis run into an annotated Graphviz diagram.
//
// # Overview
//
// A raw call graph lists one caller → callee edge per line, each endpoint a
// full method signature such as "<com.example.Book: void <init>(java.lang.String)>".
// callviz groups methods by class, labels them with short names, colors them
// by test coverage and ranking, and writes a DOT document that Graphviz lays out.
//
// # Architecture
//
//	graph_raw.dot + coverage/ranking files
//	         ↓
//	    [io] (load inputs; missing files are empty)
//	         ↓
//	    [callgraph] (parse edges, build the model, cluster by class)
//	         ↓
//	    [coverage] (normalize scores into green shades)
//	         ↓
//	    [render/dot] (emit DOT; optionally lay out to SVG/PNG)
//
// [pipeline] runs these stages for both the CLI and the HTTP API and caches
// rendered images through [cache].
//
// # Quick Start
//
//	nodes, edges := callgraph.Parse(raw)
//	g := callgraph.New(nodes, edges,
//	    callgraph.WithNodeCoverage(nodeCov),
//	    callgraph.WithRanking(ranking))
//	doc := dot.ToDOT(g, dot.Options{ConstructorLabel: "new"})
//	svg, err := dot.RenderSVG(ctx, doc)
//
// # Main Packages
//
// [callgraph] - Signature simplification, the edge-line parser and the call
// graph model with class clusters.
//
// [coverage] - Min-max normalization of coverage scores and their colors.
//
// [render/dot] - Deterministic DOT export and in-process Graphviz rendering.
//
// [io] - Loaders for the graph, coverage (JSON) and ranking (JSON or
// "signature | score" lines) inputs, and timestamped output naming.
//
// [pipeline] - Parse → export → render orchestration with caching.
//
// [cache] - File, Redis and no-op artifact caches.
//
// [config] - TOML configuration.
//
// [errors] - Coded errors shared by the CLI and the API.
//
// [observability] - Hooks for metrics and tracing.
//
// # Testing
//
//	go test ./...                            # All tests
//	go test -run Example ./pkg/...           # Examples only
//	go test -tags integration ./pkg/cache/   # Redis tests (CALLVIZ_REDIS_URL)
//
// [callgraph]: https://pkg.go.dev/github.com/matzehuels/callviz/pkg/callgraph
// [coverage]: https://pkg.go.dev/github.com/matzehuels/callviz/pkg/coverage
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/callviz/pkg/render/dot
// [io]: https://pkg.go.dev/github.com/matzehuels/callviz/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/callviz/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/callviz/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/callviz/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/callviz/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/callviz/pkg/observability
package pkg
