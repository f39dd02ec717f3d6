package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/callviz/pkg/errors"
)

const sampleRaw = `digraph cg {
"<a.b.Foo: void bar(int)>" -> "<a.b.Foo: int baz()>";
"<a.b.Foo: int baz()>" -> "<a.b.Qux: void <init>()>";
}`

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"dot"}, false},
		{[]string{"dot", "svg", "png"}, false},
		{nil, false},
		{[]string{"pdf"}, true},
		{[]string{"SVG"}, true}, // case-sensitive
		{[]string{""}, true},
	}

	for _, tt := range tests {
		err := ValidateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormats(%v) code = %s, want INVALID_FORMAT", tt.formats, errors.GetCode(err))
		}
	}
}

func TestOptions_SetDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatDOT {
		t.Errorf("Formats = %v, want [dot]", opts.Formats)
	}
	if opts.CoveredColor != "green" {
		t.Errorf("CoveredColor = %q, want green", opts.CoveredColor)
	}
	if opts.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", opts.CacheTTL, DefaultCacheTTL)
	}
}

func TestOptions_ValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"defaults", Options{}, ""},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad color", Options{CoveredColor: "#12"}, errors.ErrCodeInvalidColor},
		{"bad label", Options{ConstructorLabel: `new"`}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatalf("NewRunner left nil fields: %+v", r)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestExecute_DOT(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	in := Input{
		Raw: sampleRaw,
		NodeCoverage: map[string]float64{
			"<a.b.Foo: void bar(int)>": 1,
			"<a.b.Foo: int baz()>":     0.5,
		},
	}

	res, err := r.Execute(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.NodeCount != 3 || res.Stats.EdgeCount != 2 {
		t.Errorf("stats = %d nodes, %d edges; want 3, 2", res.Stats.NodeCount, res.Stats.EdgeCount)
	}
	if res.Stats.ClusterCount != 2 {
		t.Errorf("ClusterCount = %d, want 2", res.Stats.ClusterCount)
	}
	if res.Stats.CoveredClusters != 1 {
		t.Errorf("CoveredClusters = %d, want 1", res.Stats.CoveredClusters)
	}
	if got := string(res.Artifacts[FormatDOT]); got != res.DOT {
		t.Error("dot artifact should equal the exported document")
	}
	if !strings.Contains(res.DOT, "subgraph cluster_Foo") {
		t.Errorf("missing Foo cluster:\n%s", res.DOT)
	}
	if res.CacheHits[FormatDOT] {
		t.Error("dot format should never be a cache hit")
	}
}

func TestExecute_InvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(context.Background(), Input{Raw: sampleRaw}, Options{Formats: []string{"bmp"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Fatalf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestExecute_ConstructorLabel(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Input{Raw: sampleRaw}, Options{ConstructorLabel: "new"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(res.DOT, `[label="new"`) {
		t.Errorf("constructor label not applied:\n%s", res.DOT)
	}
	if !strings.Contains(res.DOT, `"<a.b.Qux: void <init>()>"`) {
		t.Error("node identity must keep <init>")
	}
}

func TestRender_SVGCached(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())

	res, err := r.Execute(ctx, Input{Raw: sampleRaw}, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.CacheHits[FormatSVG] {
		t.Error("first render should miss the cache")
	}
	if !bytes.Contains(res.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact should contain <svg")
	}
	if mc.sets != 1 {
		t.Errorf("cache sets = %d, want 1", mc.sets)
	}

	data, hit, err := r.Render(ctx, res.DOT, FormatSVG, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !hit {
		t.Error("second render should hit the cache")
	}
	if !bytes.Equal(data, res.Artifacts[FormatSVG]) {
		t.Error("cached bytes differ from first render")
	}

	_, hit, err = r.Render(ctx, res.DOT, FormatSVG, Options{Refresh: true})
	if err != nil {
		t.Fatalf("Render refresh: %v", err)
	}
	if hit {
		t.Error("refresh should bypass the cache")
	}
	if mc.sets != 2 {
		t.Errorf("cache sets after refresh = %d, want 2", mc.sets)
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	_, _, err := r.Render(context.Background(), "digraph {}", "gif", Options{})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestCountInvalidEdgeKeys(t *testing.T) {
	m := map[string]float64{
		`"<a>"->"<b>"`:   1,
		`"<a>" -> "<b>"`: 1,
		"a->b":           1,
		"":               1,
	}
	if got := countInvalidEdgeKeys(m); got != 2 {
		t.Errorf("countInvalidEdgeKeys = %d, want 2", got)
	}
}
