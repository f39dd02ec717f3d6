package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/callviz/pkg/cache"
	"github.com/matzehuels/callviz/pkg/callgraph"
	"github.com/matzehuels/callviz/pkg/errors"
	"github.com/matzehuels/callviz/pkg/observability"
	"github.com/matzehuels/callviz/pkg/render/dot"
)

// Graph is the call-graph model the pipeline works on.
type Graph = callgraph.Graph

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different inputs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Execute runs the complete parse → export → render pipeline.
func (r *Runner) Execute(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		CacheHits: make(map[string]bool, len(opts.Formats)),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	g := r.Parse(ctx, in)
	result.Graph = g
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	r.Logger.Info("parsed call graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.ParseTime)

	// Stage 2: Export
	exportStart := time.Now()
	result.DOT = r.Export(ctx, g, opts)
	result.Stats.ExportTime = time.Since(exportStart)
	for _, c := range g.SortedClusters() {
		result.Stats.ClusterCount++
		if g.IsFullyCovered(c.Nodes) {
			result.Stats.CoveredClusters++
		}
	}

	r.Logger.Info("exported DOT",
		"clusters", result.Stats.ClusterCount,
		"covered", result.Stats.CoveredClusters,
		"duration", result.Stats.ExportTime)

	// Stage 3: Render
	renderStart := time.Now()
	for _, format := range opts.Formats {
		data, hit, err := r.Render(ctx, result.DOT, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = data
		result.CacheHits[format] = hit
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse builds the call-graph model from raw text and annotation mappings.
func (r *Runner) Parse(ctx context.Context, in Input) *Graph {
	start := time.Now()
	nodes, edges := callgraph.Parse(in.Raw)
	g := callgraph.New(nodes, edges,
		callgraph.WithNodeCoverage(in.NodeCoverage),
		callgraph.WithEdgeCoverage(in.EdgeCoverage),
		callgraph.WithRanking(in.Ranking))

	if invalid := countInvalidEdgeKeys(in.EdgeCoverage); invalid > 0 {
		r.Logger.Debug("edge coverage keys never match an edge", "count", invalid)
	}
	observability.Pipeline().OnParseComplete(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start))
	return g
}

// Export renders g as a DOT document.
func (r *Runner) Export(ctx context.Context, g *Graph, opts Options) string {
	start := time.Now()
	doc := dot.ToDOT(g, opts.dotOptions())
	observability.Pipeline().OnExportComplete(ctx, len(g.Clusters()), len(doc), time.Since(start))
	return doc
}

// Render produces one artifact for doc. The "dot" format returns doc
// unchanged and is never cached. Other formats are looked up in the cache
// first unless opts.Refresh is set. The bool result reports a cache hit.
func (r *Runner) Render(ctx context.Context, doc, format string, opts Options) ([]byte, bool, error) {
	if format == FormatDOT {
		return []byte(doc), false, nil
	}

	key := r.Keyer.ArtifactKey(cache.Hash([]byte(doc)), format)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, format)
			r.Logger.Debug("render cache hit", "format", format)
			return data, true, nil
		} else if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, format)
	}

	observability.Pipeline().OnRenderStart(ctx, format)
	start := time.Now()
	data, err := renderFormat(ctx, doc, format)
	observability.Pipeline().OnRenderComplete(ctx, format, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
		r.Logger.Warn("cache write failed", "format", format, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, format, len(data))
	}
	return data, false, nil
}

func renderFormat(ctx context.Context, doc, format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatSVG:
		data, err = dot.RenderSVG(ctx, doc)
	case FormatPNG:
		data, err = dot.RenderPNG(ctx, doc)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "graphviz %s", format)
	}
	return data, nil
}

func countInvalidEdgeKeys(m map[string]float64) int {
	n := 0
	for k := range m {
		if !callgraph.IsValidEdgeKey(k) {
			n++
		}
	}
	return n
}
