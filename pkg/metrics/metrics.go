// Package metrics implements the observability hooks with Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/mediatopo/pkg/observability"
)

// Registry holds all metrics for the application
type Registry struct {
	// Pipeline Metrics
	AcquireTotal     *prometheus.CounterVec
	AcquireDuration  *prometheus.HistogramVec
	DumpSizeBytes    prometheus.Histogram
	TopologyEntities prometheus.Gauge
	TopologyLinks    prometheus.Gauge
	ParseDuration    prometheus.Histogram
	GenerateDuration prometheus.Histogram
	RenderTotal      *prometheus.CounterVec
	RenderDuration   *prometheus.HistogramVec

	// Cache Metrics
	CacheOpsTotal   *prometheus.CounterVec
	CacheWriteBytes *prometheus.CounterVec

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{registry: reg}
	r.initPipelineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Install registers r as the pipeline, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

func (r *Registry) initPipelineMetrics() {
	r.AcquireTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediatopo_acquire_total",
			Help: "Topology dumps requested, by result",
		},
		[]string{"result"}, // ok, error
	)

	r.AcquireDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediatopo_acquire_duration_seconds",
			Help:    "Time spent obtaining a topology dump",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"result"},
	)

	r.DumpSizeBytes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediatopo_dump_size_bytes",
			Help:    "Size of topology dumps",
			Buckets: prometheus.ExponentialBuckets(256, 2, 10),
		},
	)

	r.TopologyEntities = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "mediatopo_topology_entities",
			Help: "Entities in the most recently parsed topology",
		},
	)

	r.TopologyLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "mediatopo_topology_links",
			Help: "Links in the most recently parsed topology",
		},
	)

	r.ParseDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediatopo_parse_duration_seconds",
			Help:    "Time spent parsing a dump",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
	)

	r.GenerateDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediatopo_generate_duration_seconds",
			Help:    "Time spent generating DOT",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
	)

	r.RenderTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediatopo_render_total",
			Help: "Render runs, by engine and result",
		},
		[]string{"engine", "result"},
	)

	r.RenderDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediatopo_render_duration_seconds",
			Help:    "Time spent rendering all requested formats",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"engine"},
	)
}

func (r *Registry) initCacheMetrics() {
	r.CacheOpsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediatopo_cache_operations_total",
			Help: "Cache lookups and writes",
		},
		[]string{"key_type", "op"}, // hit, miss, set
	)

	r.CacheWriteBytes = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediatopo_cache_write_bytes_total",
			Help: "Bytes written to the cache",
		},
		[]string{"key_type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediatopo_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediatopo_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "mediatopo_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		},
	)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnAcquireStart does nothing; acquisitions are counted on completion.
func (r *Registry) OnAcquireStart(context.Context, string) {}

// OnAcquireComplete records a dump acquisition.
func (r *Registry) OnAcquireComplete(_ context.Context, _ string, size int, d time.Duration, err error) {
	res := result(err)
	r.AcquireTotal.WithLabelValues(res).Inc()
	r.AcquireDuration.WithLabelValues(res).Observe(d.Seconds())
	if err == nil {
		r.DumpSizeBytes.Observe(float64(size))
	}
}

// OnParseComplete records the parsed graph size.
func (r *Registry) OnParseComplete(_ context.Context, entities, links int, d time.Duration) {
	r.TopologyEntities.Set(float64(entities))
	r.TopologyLinks.Set(float64(links))
	r.ParseDuration.Observe(d.Seconds())
}

// OnGenerateComplete records DOT generation.
func (r *Registry) OnGenerateComplete(_ context.Context, _ int, d time.Duration) {
	r.GenerateDuration.Observe(d.Seconds())
}

// OnRenderStart does nothing; renders are counted on completion.
func (r *Registry) OnRenderStart(context.Context, string, []string) {}

// OnRenderComplete records a render run.
func (r *Registry) OnRenderComplete(_ context.Context, engine string, _ []string, d time.Duration, err error) {
	r.RenderTotal.WithLabelValues(engine, result(err)).Inc()
	r.RenderDuration.WithLabelValues(engine).Observe(d.Seconds())
}

// OnCacheHit records a cache hit.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheOpsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss records a cache miss.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheOpsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet records a cache write.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheOpsTotal.WithLabelValues(keyType, "set").Inc()
	r.CacheWriteBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest marks a request in flight.
func (r *Registry) OnRequest(context.Context, string, string) {
	r.HTTPRequestsInFlight.Inc()
}

// OnResponse records a served request.
func (r *Registry) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)
