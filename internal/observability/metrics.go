package observability

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the review service.
type Metrics struct {
	Requests            *prometheus.CounterVec   // labels: route, status
	RequestDuration     *prometheus.HistogramVec // labels: route
	DatasheetsProcessed *prometheus.CounterVec   // labels: source={pdf,xlsx,text}
	ExtractionWarnings  *prometheus.CounterVec   // labels: kind={validation,missing_data}
	ModelsExported      *prometheus.CounterVec   // labels: format
	ScenariosEvaluated  *prometheus.CounterVec   // labels: band
	DashboardSessions   prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plant3d",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route template and status code.",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "plant3d",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route template.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"route"}),
		DatasheetsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plant3d",
			Name:      "datasheets_processed_total",
			Help:      "Datasheets run through extraction, by source format.",
		}, []string{"source"}),
		ExtractionWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plant3d",
			Name:      "extraction_warnings_total",
			Help:      "Warnings raised while extracting or resolving parameters.",
		}, []string{"kind"}),
		ModelsExported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plant3d",
			Name:      "models_exported_total",
			Help:      "Mesh files written, by format.",
		}, []string{"format"}),
		ScenariosEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plant3d",
			Name:      "scenarios_evaluated_total",
			Help:      "What-if scenarios evaluated, by resulting risk band.",
		}, []string{"band"}),
		DashboardSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "plant3d",
			Name:      "dashboard_sessions",
			Help:      "Open dashboard websocket sessions.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Requests,
		m.RequestDuration,
		m.DatasheetsProcessed,
		m.ExtractionWarnings,
		m.ModelsExported,
		m.ScenariosEvaluated,
		m.DashboardSessions,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Middleware counts requests per mux route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.Requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
