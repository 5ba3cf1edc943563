package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics on prometheus collectors.
type PrometheusMetrics struct {
	pageDuration   *prometheus.HistogramVec
	moduleDuration *prometheus.HistogramVec
	moduleApplied  *prometheus.CounterVec
	classified     *prometheus.CounterVec
	inFlight       prometheus.Gauge
	httpDuration   *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
}

// NewPrometheus builds and registers the pipeline collectors on reg.
// Pass prometheus.DefaultRegisterer for the usual global registry.
func NewPrometheus(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		pageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scankit_page_duration_seconds",
				Help:    "Wall time spent preprocessing one page.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"status"},
		),
		moduleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scankit_module_duration_seconds",
				Help:    "Time spent in one module phase.",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"module", "phase"},
		),
		moduleApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scankit_module_applied_total",
				Help: "Corrections kept in the final output, per module.",
			},
			[]string{"module"},
		),
		classified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scankit_documents_classified_total",
				Help: "Classification outcomes by document type.",
			},
			[]string{"document_type"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scankit_in_flight_requests",
			Help: "Number of currently pending and processed requests.",
		}),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scankit_request_duration_seconds",
				Help:    "A histogram of latencies for requests.",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"handler", "method"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scankit_api_requests_total",
				Help: "A counter for requests to the wrapped handler.",
			},
			[]string{"code", "method"},
		),
	}
	reg.MustRegister(m.pageDuration, m.moduleDuration, m.moduleApplied,
		m.classified, m.inFlight, m.httpDuration, m.httpRequests)
	return m
}

func (m *PrometheusMetrics) PageProcessed(status string, seconds float64) {
	m.pageDuration.WithLabelValues(status).Observe(seconds)
}

func (m *PrometheusMetrics) ModuleTimed(module, phase string, seconds float64) {
	m.moduleDuration.WithLabelValues(module, phase).Observe(seconds)
}

func (m *PrometheusMetrics) ModuleApplied(module string) {
	m.moduleApplied.WithLabelValues(module).Inc()
}

func (m *PrometheusMetrics) DocumentClassified(documentType string) {
	m.classified.WithLabelValues(documentType).Inc()
}

// InstrumentHandler wraps an HTTP handler with in-flight, duration and
// request counters for the named route.
func (m *PrometheusMetrics) InstrumentHandler(name string, h http.Handler) http.Handler {
	return promhttp.InstrumentHandlerInFlight(m.inFlight,
		promhttp.InstrumentHandlerDuration(m.httpDuration.MustCurryWith(prometheus.Labels{"handler": name}),
			promhttp.InstrumentHandlerCounter(m.httpRequests, h),
		),
	)
}
