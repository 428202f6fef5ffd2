// Package metrics holds the Prometheus collectors for the site.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DefaultRegisterer and DefaultGatherer are used by Register and Handler.
	// Tests replace them with a private registry.
	DefaultRegisterer = prometheus.DefaultRegisterer
	DefaultGatherer   = prometheus.DefaultGatherer
)

// Outcomes recorded for exception events.
const (
	OutcomeSubstituted = "substituted"
	OutcomeDefault     = "default"
	OutcomeMiss        = "miss"
	OutcomeError       = "error"
)

var (
	ExceptionEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exceptionpages_exception_events_total",
		Help: "Total number of intercepted error responses by class and outcome.",
	}, []string{"class", "outcome"})
	SubrequestDurHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "exceptionpages_subrequest_duration_seconds",
		Help: "The duration of sub-requests rendering substitute content.",
	}, []string{"class"})
	HttpRequestDurHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "The latency of the HTTP requests.",
	}, []string{"handler", "method", "code"})
	HttpRequestsInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Subsystem: "http",
		Name:      "requests_inflight",
		Help:      "The number of inflight requests being handled at the same time.",
	})
)

func Register() {
	DefaultRegisterer.MustRegister(ExceptionEventsTotal)
	DefaultRegisterer.MustRegister(SubrequestDurHistogram)
	DefaultRegisterer.MustRegister(HttpRequestDurHistogram)
	DefaultRegisterer.MustRegister(HttpRequestsInflight)
}

// Handler serves the exposition format for DefaultGatherer.
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultGatherer, promhttp.HandlerOpts{})
}

// ObserveException counts one exception event.
func ObserveException(class, outcome string) {
	ExceptionEventsTotal.WithLabelValues(class, outcome).Inc()
}

// ObserveSubrequest records how long a sub-request took.
func ObserveSubrequest(class string, d time.Duration) {
	SubrequestDurHistogram.WithLabelValues(class).Observe(d.Seconds())
}

// Middleware records request latency labelled by the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		HttpRequestsInflight.Inc()
		defer func() {
			HttpRequestsInflight.Dec()
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			HttpRequestDurHistogram.
				WithLabelValues(routePattern(r), r.Method, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
		}()
		next.ServeHTTP(ww, r)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
