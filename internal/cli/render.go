package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/callviz/pkg/config"
	"github.com/matzehuels/callviz/pkg/io"
	"github.com/matzehuels/callviz/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	nodeCoverage     string // node coverage JSON file
	edgeCoverage     string // edge coverage JSON file
	ranking          string // ranking file (JSON or "signature | score" lines)
	output           string // output file (single format) or base path (multiple)
	outputDir        string // directory for timestamped output names
	formats          string // comma-separated output formats
	coveredColor     string // highlight color for fully covered clusters
	constructorLabel string // display-only replacement for <init>
	noCache          bool   // disable the artifact cache
	refresh          bool   // re-render even when cached
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [graph_raw.dot]",
		Short: "Export an annotated call graph as DOT, SVG or PNG",
		Long: `Export an annotated call graph.

The input is the raw call graph written by the analysis tool, one
"<caller>" -> "<callee>" edge per line. Methods are grouped by class,
labeled with their short names and colored by coverage when coverage
files are given.

Without --output, files are named after the input with a timestamp,
e.g. graph_raw_20260102-150405.dot.

SVG and PNG renders are cached locally (or in Redis when configured).`,
		Example: `  callviz render graph_raw.dot
  callviz render graph_raw.dot --node-coverage node_cov.json --ranking ranking.txt -f dot,svg
  callviz render graph_raw.dot --constructor-label new -o callgraph.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := applyRenderFlags(cmd, cfg, flags)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], cfg, opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.nodeCoverage, "node-coverage", "", "node coverage JSON (signature -> score)")
	cmd.Flags().StringVar(&flags.edgeCoverage, "edge-coverage", "", `edge coverage JSON ("<a>"->"<b>" -> score)`)
	cmd.Flags().StringVar(&flags.ranking, "ranking", "", "method ranking (JSON or 'signature | score' lines)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "directory for timestamped output files (default: next to input)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): dot (default), svg, png (comma-separated)")
	cmd.Flags().StringVar(&flags.coveredColor, "covered-color", "", "color of fully covered clusters (default green)")
	cmd.Flags().StringVar(&flags.constructorLabel, "constructor-label", "", "label shown instead of <init>")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "re-render even when a cached result exists")

	return cmd
}

// applyRenderFlags overlays explicitly set flags on config values.
func applyRenderFlags(cmd *cobra.Command, cfg config.Config, flags renderFlags) pipeline.Options {
	opts := pipelineOptions(cfg)
	if cmd.Flags().Changed("format") {
		opts.Formats = parseFormats(flags.formats)
	}
	if cmd.Flags().Changed("covered-color") {
		opts.CoveredColor = flags.coveredColor
	}
	if cmd.Flags().Changed("constructor-label") {
		opts.ConstructorLabel = flags.constructorLabel
	}
	opts.Refresh = flags.refresh
	return opts
}

// runRender loads the inputs, runs the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, cfg config.Config, opts pipeline.Options, flags renderFlags) error {
	prog := newProgress(c.Logger)

	raw, err := io.ImportGraph(input)
	if err != nil {
		return err
	}

	in := pipeline.Input{
		Raw:          raw,
		NodeCoverage: c.loadMapping("node coverage", flags.nodeCoverage, io.LoadCoverage),
		EdgeCoverage: c.loadMapping("edge coverage", flags.edgeCoverage, io.LoadCoverage),
		Ranking:      c.loadMapping("ranking", flags.ranking, io.LoadRanking),
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Exporting call graph...")
	spinner.Start()

	result, err := runner.Execute(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return err
	}
	spinner.Stop()
	prog.done("Exported call graph")

	outDir := flags.outputDir
	if outDir == "" {
		outDir = cfg.Render.OutputDir
	}
	paths := outputPaths(input, flags.output, outDir, opts.Formats, time.Now())

	printSuccess("Call graph exported")
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, allCached(result))
	printDetail("%d classes, %d fully covered", result.Stats.ClusterCount, result.Stats.CoveredClusters)
	for _, format := range opts.Formats {
		if err := io.WriteArtifact(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
		printFile(paths[format])
	}
	return nil
}

// loadMapping loads an optional coverage or ranking file. An unreadable or
// undecodable file is reported and treated as empty.
func (c *CLI) loadMapping(what, path string, load func(string) (map[string]float64, error)) map[string]float64 {
	if path == "" {
		return nil
	}
	m, err := load(path)
	if err != nil {
		printWarning("Ignoring %s %s: %v", what, path, err)
		return nil
	}
	c.Logger.Debug("loaded "+what, "path", path, "entries", len(m))
	return m
}

// outputPaths maps each format to its destination. With an explicit output
// and a single format the path is used as is; with several formats it is a
// base path that receives the format extension. Otherwise the name is derived
// from the input file and the current time.
func outputPaths(input, output, outDir string, formats []string, now time.Time) map[string]string {
	paths := make(map[string]string, len(formats))
	for _, f := range formats {
		switch {
		case output != "" && len(formats) == 1:
			paths[f] = output
		case output != "":
			paths[f] = output + "." + f
		default:
			paths[f] = io.TimestampedPath(outDir, input, f, now)
		}
	}
	return paths
}

// allCached reports whether every rendered (non-dot) artifact came from the cache.
func allCached(r *pipeline.Result) bool {
	rendered := false
	for f, hit := range r.CacheHits {
		if f == pipeline.FormatDOT {
			continue
		}
		rendered = true
		if !hit {
			return false
		}
	}
	return rendered
}
