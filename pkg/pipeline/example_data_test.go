package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/callviz/pkg/config"
	"github.com/matzehuels/callviz/pkg/io"
)

func TestExecute_LibraryExample(t *testing.T) {
	dir := filepath.Join("..", "..", "examples", "library")

	raw, err := io.ImportGraph(filepath.Join(dir, "graph_raw.dot"))
	if err != nil {
		t.Fatalf("ImportGraph: %v", err)
	}
	nodeCov, err := io.LoadCoverage(filepath.Join(dir, "node_cov.json"))
	if err != nil {
		t.Fatalf("LoadCoverage(node): %v", err)
	}
	edgeCov, err := io.LoadCoverage(filepath.Join(dir, "edge_cov.json"))
	if err != nil {
		t.Fatalf("LoadCoverage(edge): %v", err)
	}
	ranking, err := io.LoadRanking(filepath.Join(dir, "ranking.txt"))
	if err != nil {
		t.Fatalf("LoadRanking: %v", err)
	}
	cfg, err := config.Load(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Input{
		Raw:          raw,
		NodeCoverage: nodeCov,
		EdgeCoverage: edgeCov,
		Ranking:      ranking,
	}, Options{
		CoveredColor:     cfg.Render.CoveredColor,
		ConstructorLabel: cfg.Render.ConstructorLabel,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.NodeCount != 9 || res.Stats.EdgeCount != 9 {
		t.Errorf("stats = %d nodes, %d edges; want 9, 9", res.Stats.NodeCount, res.Stats.EdgeCount)
	}
	// Book and Main are fully covered; Library has an uncovered checkout,
	// Member scores 0 and String has no entry.
	if res.Stats.ClusterCount != 5 || res.Stats.CoveredClusters != 2 {
		t.Errorf("clusters = %d (%d covered), want 5 (2 covered)", res.Stats.ClusterCount, res.Stats.CoveredClusters)
	}

	for _, want := range []string{
		`subgraph cluster_Book {`,
		`color="darkgreen";`,
		`[label="new", color=`,
		`[label="findByTitle\n(0.4213)", color=`,
		`[label="2"];`,
	} {
		if !strings.Contains(res.DOT, want) {
			t.Errorf("DOT missing %q\n%s", want, res.DOT)
		}
	}
}
