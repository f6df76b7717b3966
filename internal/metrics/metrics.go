// Package metrics exposes the planner's prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ScopePlan     = "plan"
	ScopeSemester = "semester"

	ResultOK    = "ok"
	ResultError = "error"
	ResultRetry = "retry"
	ResultDrop  = "dropped"
)

var (
	// recalculationsTotal counts plan recalculations by scope and result
	recalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_recalculations_total",
		Help: "Total plan recalculations by scope and result",
	}, []string{"scope", "result"})

	// recalculationDuration tracks recalculation latency
	recalculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_recalculation_duration_seconds",
		Help:    "Plan recalculation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	})

	// classificationsTotal counts classified enrollments by resulting lecture type
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_classifications_total",
		Help: "Total classified enrollments by resulting lecture type",
	}, []string{"lecture_type"})

	// historyRowsTotal counts persisted history rows by kind
	historyRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_history_rows_total",
		Help: "Total change history rows written by kind",
	}, []string{"kind"})

	// workerJobsTotal counts recalculation queue jobs by result
	workerJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_worker_jobs_total",
		Help: "Total recalculation queue jobs by result",
	}, []string{"result"})

	// httpRequestsTotal counts API requests by route and status
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_http_requests_total",
		Help: "Total HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveRecalculation records one recalculation run.
func ObserveRecalculation(scope string, err error, elapsed time.Duration) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	recalculationsTotal.WithLabelValues(scope, result).Inc()
	recalculationDuration.Observe(elapsed.Seconds())
}

// CountClassification records one classified enrollment.
func CountClassification(lectureType string) {
	classificationsTotal.WithLabelValues(lectureType).Inc()
}

// CountHistoryRows records written history rows of one kind.
func CountHistoryRows(kind string, n int) {
	if n > 0 {
		historyRowsTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// CountWorkerJob records the outcome of one queue job.
func CountWorkerJob(result string) {
	workerJobsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records one served request. route is the matched
// pattern, not the raw path.
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
