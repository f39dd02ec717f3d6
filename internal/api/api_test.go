package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/callviz/pkg/observability"
	"github.com/matzehuels/callviz/pkg/pipeline"
)

const sampleRaw = `"<a.b.Foo: void bar(int)>" -> "<a.b.Foo: int baz()>";
"<a.b.Foo: int baz()>" -> "<a.b.Qux: void <init>()>" [label="2"];
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := httptest.NewServer(NewRouter(runner, pipeline.Options{}, logger))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func decodeError(t *testing.T, resp *http.Response) errorDetail {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestExport_DOT(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/v1/export", map[string]any{
		"graph": sampleRaw,
		"node_coverage": map[string]any{
			"<a.b.Foo: void bar(int)>": 1,
			"<a.b.Foo: int baz()>":     "n/a",
		},
		"ranking": "<a.b.Foo: int baz()> | 0.5\nmalformed\n",
	})
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := resp.Header.Get("X-Callviz-Nodes"); got != "3" {
		t.Errorf("X-Callviz-Nodes = %q, want 3", got)
	}
	if got := resp.Header.Get("X-Callviz-Clusters"); got != "2" {
		t.Errorf("X-Callviz-Clusters = %q, want 2", got)
	}

	for _, want := range []string{
		"digraph CallGraph {",
		"subgraph cluster_Foo {",
		`[label="baz\n(0.5000)"]`,
		`"<a.b.Foo: int baz()>"->"<a.b.Qux: void <init>()>" [label="2"];`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q\n%s", want, body)
		}
	}
	// "n/a" is skipped, so Foo is not fully covered.
	if strings.Contains(body, `fontcolor="green"`) {
		t.Errorf("Foo cluster should not be highlighted:\n%s", body)
	}
}

func TestExport_ConstructorLabel(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/v1/export", map[string]any{
		"graph":             sampleRaw,
		"constructor_label": "new",
	})
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, `"<a.b.Qux: void <init>()>" [label="new"];`) {
		t.Errorf("constructor label not applied:\n%s", body)
	}
}

func TestExport_SVG(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/v1/export?format=svg", map[string]any{"graph": sampleRaw})
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := resp.Header.Get("X-Callviz-Cache"); got != "miss" {
		t.Errorf("X-Callviz-Cache = %q, want miss", got)
	}
	if !strings.Contains(body, "<svg") {
		t.Error("body should contain <svg")
	}
}

func TestExport_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		body   any
		status int
		code   string
	}{
		{"bad json", "", "{not json", http.StatusBadRequest, "INVALID_INPUT"},
		{"missing graph", "", map[string]any{}, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", "?format=gif", map[string]any{"graph": sampleRaw}, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad color", "", map[string]any{"graph": sampleRaw, "covered_color": "#12"}, http.StatusBadRequest, "INVALID_COLOR"},
		{"bad coverage", "", map[string]any{"graph": sampleRaw, "node_coverage": []int{1}}, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/export"+tt.query, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decodeError(t, resp); got.Code != tt.code {
				t.Errorf("code = %q, want %q (message %q)", got.Code, tt.code, got.Message)
			}
		})
	}
}

func TestSimplify(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/v1/simplify", map[string]any{
		"signatures":        []string{"<a.b.C: void <init>(int)>", "<a.b.C: int m()>", "plain"},
		"constructor_label": "new",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got simplifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{
		"<a.b.C: void <init>(int)>": "C.new",
		"<a.b.C: int m()>":          "C.m",
		"plain":                     "plain",
	}
	for k, v := range want {
		if got.Labels[k] != v {
			t.Errorf("labels[%q] = %q, want %q", k, got.Labels[k], v)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/export")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.NewPrometheusHooks(reg).Register()
	defer observability.Reset()

	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := httptest.NewServer(NewRouter(runner, pipeline.Options{}, logger,
		WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))))
	defer srv.Close()

	post(t, srv.URL+"/v1/export", map[string]any{"graph": sampleRaw})

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body := readBody(t, resp)
	resp.Body.Close()

	for _, want := range []string{
		`callviz_http_requests_total{method="POST",path="/v1/export",status="200"} 1`,
		"callviz_parse_nodes_count 1",
		"callviz_export_clusters_sum 2",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
