// Package metrics exposes Prometheus instrumentation for the HTTP API and
// the service operations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

const namespace = "farmworker_finance"

// Metrics owns a private registry so tests can create as many as they like
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	operations *prometheus.CounterVec
	disbursed  prometheus.Counter
	repaid     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by outcome; the outcome is ok or an error kind.",
		}, []string{"operation", "outcome"}),
		disbursed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loan_principal_disbursed_total",
			Help:      "Loan principal disbursed into savings.",
		}),
		repaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loan_repayments_total",
			Help:      "Loan repayments withdrawn from savings.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.duration, m.operations, m.disbursed, m.repaid,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOperation counts one service call. Safe on a nil receiver.
func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = models.ErrorKind(err)
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// AddDisbursed records disbursed principal. Safe on a nil receiver.
func (m *Metrics) AddDisbursed(amount float64) {
	if m == nil {
		return
	}
	m.disbursed.Add(amount)
}

// AddRepaid records a loan repayment. Safe on a nil receiver.
func (m *Metrics) AddRepaid(amount float64) {
	if m == nil {
		return
	}
	m.repaid.Add(amount)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by the matched
// route template, not the raw path
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
