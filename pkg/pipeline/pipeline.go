// Package pipeline provides the parse → export → render pipeline for callviz.
//
// Both the CLI and the HTTP API go through this package so that caching,
// validation and logging behave the same for every entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Extract nodes and edges from raw call-graph text and attach the
//     coverage and ranking mappings
//  2. Export: Produce the annotated DOT document
//  3. Render: Lay the document out with Graphviz (SVG, PNG); the "dot"
//     format is the exported document itself
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Input{
//	    Raw:          raw,
//	    NodeCoverage: nodeCov,
//	}, pipeline.Options{Formats: []string{"dot", "svg"}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/callviz/pkg/errors"
	"github.com/matzehuels/callviz/pkg/render/dot"
)

// Format constants for output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// DefaultCacheTTL is how long rendered artifacts are cached.
const DefaultCacheTTL = 24 * time.Hour

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// Input is the raw material for one pipeline run. The mappings may be nil.
type Input struct {
	// Raw is the call-graph text emitted by the analysis tool.
	Raw string

	// NodeCoverage maps raw signatures to coverage scores.
	NodeCoverage map[string]float64

	// EdgeCoverage maps edge keys ("<src>"->"<dst>") to coverage scores.
	EdgeCoverage map[string]float64

	// Ranking maps raw signatures to importance scores.
	Ranking map[string]float64
}

// Options configures a pipeline run.
type Options struct {
	// Formats lists the artifacts to produce. Defaults to ["dot"].
	Formats []string

	// CoveredColor highlights fully covered clusters.
	CoveredColor string

	// ConstructorLabel replaces "<init>" in node labels. Display only.
	ConstructorLabel string

	// CacheTTL is the lifetime of cached renders. Defaults to DefaultCacheTTL.
	CacheTTL time.Duration

	// Refresh skips cache reads; results are still written.
	Refresh bool
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDOT}
	}
	if o.CoveredColor == "" {
		o.CoveredColor = dot.DefaultCoveredColor
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
}

// ValidateAndSetDefaults fills unset fields and validates the result.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := errors.ValidateColor(o.CoveredColor); err != nil {
		return err
	}
	return errors.ValidateLabel(o.ConstructorLabel)
}

// dotOptions returns the exporter options.
func (o Options) dotOptions() dot.Options {
	return dot.Options{
		CoveredColor:     o.CoveredColor,
		ConstructorLabel: o.ConstructorLabel,
	}
}

// ValidateFormats checks that all requested formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be %s)", f, formatList())
		}
	}
	return nil
}

func formatList() string {
	return fmt.Sprintf("'%s'", strings.Join([]string{FormatDOT, FormatSVG, FormatPNG}, "', '"))
}

// Result holds everything produced by [Runner.Execute].
type Result struct {
	Graph     *Graph
	DOT       string
	Artifacts map[string][]byte
	Stats     Stats
	CacheHits map[string]bool
}

// Stats summarizes a run.
type Stats struct {
	NodeCount       int
	EdgeCount       int
	ClusterCount    int
	CoveredClusters int
	ParseTime       time.Duration
	ExportTime      time.Duration
	RenderTime      time.Duration
}
