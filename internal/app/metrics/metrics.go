package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "workstudy",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workstudy",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "workstudy",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	applicationsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "workstudy",
			Subsystem: "applications",
			Name:      "submitted_total",
			Help:      "Total number of job applications submitted.",
		},
	)

	applicationsReviewed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workstudy",
			Subsystem: "applications",
			Name:      "reviewed_total",
			Help:      "Total number of application review decisions.",
		},
		[]string{"status"},
	)

	positionsFilled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "workstudy",
			Subsystem: "jobs",
			Name:      "positions_filled_total",
			Help:      "Total number of job positions filled.",
		},
	)

	workHoursLogged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "workstudy",
			Subsystem: "workhours",
			Name:      "entries_logged_total",
			Help:      "Total number of work hour entries logged.",
		},
	)

	workHoursReviewed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workstudy",
			Subsystem: "workhours",
			Name:      "entries_reviewed_total",
			Help:      "Total number of work hour review decisions.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		applicationsSubmitted,
		applicationsReviewed,
		positionsFilled,
		workHoursLogged,
		workHoursReviewed,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordApplicationSubmitted counts a newly filed application.
func RecordApplicationSubmitted() {
	applicationsSubmitted.Inc()
}

// RecordApplicationReviewed counts an application review decision.
func RecordApplicationReviewed(status string) {
	if status == "" {
		status = "unknown"
	}
	applicationsReviewed.WithLabelValues(status).Inc()
}

// RecordPositionFilled counts one filled job position.
func RecordPositionFilled() {
	positionsFilled.Inc()
}

// RecordWorkHoursLogged counts a newly logged work hour entry.
func RecordWorkHoursLogged() {
	workHoursLogged.Inc()
}

// RecordWorkHoursReviewed counts a work hour review decision.
func RecordWorkHoursReviewed(status string) {
	if status == "" {
		status = "unknown"
	}
	workHoursReviewed.WithLabelValues(status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses resource identifiers so the path label stays low
// cardinality.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" {
		return "/" + parts[0]
	}
	if len(parts) == 1 {
		return "/api"
	}
	resource := parts[1]
	if len(parts) == 2 {
		return "/api/" + resource
	}
	return "/api/" + resource + "/:rest"
}
