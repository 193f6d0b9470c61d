// Package metrics exposes Prometheus instrumentation for the pipeline,
// the dataset and the HTTP surface on a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the registry and every collector. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	pipelineDuration prometheus.Histogram
	pipelineRuns     prometheus.Counter
	filteredRows     *prometheus.GaugeVec
	datasetRows      *prometheus.GaugeVec

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentals_pipeline_duration_seconds",
			Help:    "Duration of one filter-aggregate pipeline run.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		pipelineRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentals_pipeline_runs_total",
			Help: "Total filter-aggregate pipeline runs.",
		}),
		filteredRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rentals_filtered_rows",
			Help: "Rows retained by the most recent pipeline run.",
		}, []string{"granularity"}),
		datasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rentals_dataset_rows",
			Help: "Rows in the loaded dataset.",
		}, []string{"granularity"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route and status.",
		}, []string{"route", "method", "status"}),
	}

	registry.MustRegister(
		r.pipelineDuration,
		r.pipelineRuns,
		r.filteredRows,
		r.datasetRows,
		r.requestDuration,
		r.requestTotal,
	)
	return r
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) ObservePipeline(d time.Duration, hourly, daily int) {
	if r == nil {
		return
	}
	r.pipelineRuns.Inc()
	r.pipelineDuration.Observe(d.Seconds())
	r.filteredRows.WithLabelValues("hourly").Set(float64(hourly))
	r.filteredRows.WithLabelValues("daily").Set(float64(daily))
}

func (r *Recorder) SetDatasetSize(hourly, daily int) {
	if r == nil {
		return
	}
	r.datasetRows.WithLabelValues("hourly").Set(float64(hourly))
	r.datasetRows.WithLabelValues("daily").Set(float64(daily))
}

// ObserveRequest records one HTTP request. route should be the matched mux
// pattern, not the raw path, to keep label cardinality bounded.
func (r *Recorder) ObserveRequest(route, method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.requestTotal.WithLabelValues(route, method, statusClass(status)).Inc()
	r.requestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
