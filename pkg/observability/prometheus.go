package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks records pipeline, cache and API events as Prometheus
// metrics. It implements [PipelineHooks], [CacheHooks] and [APIHooks].
type PrometheusHooks struct {
	parseNodes     prometheus.Histogram
	parseDuration  prometheus.Histogram
	exportClusters prometheus.Histogram
	exportBytes    prometheus.Histogram
	renderInFlight *prometheus.GaugeVec
	renderDuration *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
	cacheRequests  *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	httpInFlight   prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewPrometheusHooks registers the callviz metrics with reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		parseNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "callviz_parse_nodes",
			Help:    "Number of methods per parsed call graph",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to ~16k
		}),
		parseDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "callviz_parse_duration_seconds",
			Help:    "Call graph parse duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}),
		exportClusters: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "callviz_export_clusters",
			Help:    "Number of class clusters per exported document",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
		}),
		exportBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "callviz_export_bytes",
			Help:    "Size of exported DOT documents in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}),
		renderInFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "callviz_render_in_flight",
			Help: "Graphviz renders currently running by format",
		}, []string{"format"}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "callviz_render_duration_seconds",
			Help:    "Graphviz render duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"format"}),
		renderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "callviz_render_errors_total",
			Help: "Failed Graphviz renders by format",
		}, []string{"format"}),
		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "callviz_cache_requests_total",
			Help: "Artifact cache lookups by format and result",
		}, []string{"format", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "callviz_cache_written_bytes_total",
			Help: "Bytes written to the artifact cache by format",
		}, []string{"format"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "callviz_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "callviz_http_requests_total",
			Help: "HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "callviz_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Register installs h as the pipeline, cache and API hooks.
func (h *PrometheusHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetAPIHooks(h)
}

func (h *PrometheusHooks) OnParseComplete(_ context.Context, nodeCount, _ int, d time.Duration) {
	h.parseNodes.Observe(float64(nodeCount))
	h.parseDuration.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnExportComplete(_ context.Context, clusterCount, size int, _ time.Duration) {
	h.exportClusters.Observe(float64(clusterCount))
	h.exportBytes.Observe(float64(size))
}

func (h *PrometheusHooks) OnRenderStart(_ context.Context, format string) {
	h.renderInFlight.WithLabelValues(format).Inc()
}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.renderInFlight.WithLabelValues(format).Dec()
	h.renderDuration.WithLabelValues(format).Observe(d.Seconds())
	if err != nil {
		h.renderErrors.WithLabelValues(format).Inc()
	}
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, format string) {
	h.cacheRequests.WithLabelValues(format, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, format string) {
	h.cacheRequests.WithLabelValues(format, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, format string, size int) {
	h.cacheBytes.WithLabelValues(format).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {
	h.httpInFlight.Inc()
}

// OnResponse expects path to be a route pattern, not a raw URL, to keep
// label cardinality bounded.
func (h *PrometheusHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.httpInFlight.Dec()
	h.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ APIHooks      = (*PrometheusHooks)(nil)
)
