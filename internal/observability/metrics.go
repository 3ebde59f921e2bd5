package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	assignmentsCreated  *prometheus.CounterVec
	assignmentsSkipped  prometheus.Counter
	assignmentStatus    *prometheus.CounterVec
	resultsRecorded     prometheus.Counter
	examPapersBuilt     *prometheus.CounterVec
	examPaperCacheReads *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors exported by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nepses",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nepses",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nepses",
			Name:      "http_errors_total",
			Help:      "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		assignmentsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nepses",
			Subsystem: "assignments",
			Name:      "created_total",
			Help:      "Assignments created, by creation mode.",
		}, []string{"mode"})

		assignmentsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nepses",
			Subsystem: "assignments",
			Name:      "skipped_total",
			Help:      "Bulk assignment targets skipped because the pair already existed.",
		})

		assignmentStatus = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nepses",
			Subsystem: "assignments",
			Name:      "status_transitions_total",
			Help:      "Assignment status changes, by target status.",
		}, []string{"status"})

		resultsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nepses",
			Subsystem: "results",
			Name:      "recorded_total",
			Help:      "Results graded and stored.",
		})

		examPapersBuilt = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nepses",
			Subsystem: "exams",
			Name:      "papers_built_total",
			Help:      "Exam papers built, by provenance.",
		}, []string{"provenance"})

		examPaperCacheReads = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nepses",
			Subsystem: "exams",
			Name:      "cache_reads_total",
			Help:      "Exam paper cache lookups, by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			assignmentsCreated, assignmentsSkipped, assignmentStatus,
			resultsRecorded, examPapersBuilt, examPaperCacheReads,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AssignmentsCreated counts created assignments labelled by mode (single, bulk).
func AssignmentsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return assignmentsCreated
}

// AssignmentsSkipped counts bulk targets that already held an assignment.
func AssignmentsSkipped() prometheus.Counter {
	RegisterMetrics()
	return assignmentsSkipped
}

// AssignmentStatusTransitions counts status changes labelled by target status.
func AssignmentStatusTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return assignmentStatus
}

// ResultsRecorded counts stored results.
func ResultsRecorded() prometheus.Counter {
	RegisterMetrics()
	return resultsRecorded
}

// ExamPapersBuilt counts built papers labelled by provenance.
func ExamPapersBuilt() *prometheus.CounterVec {
	RegisterMetrics()
	return examPapersBuilt
}

// ExamPaperCacheReads counts cache lookups labelled hit, miss or error.
func ExamPaperCacheReads() *prometheus.CounterVec {
	RegisterMetrics()
	return examPaperCacheReads
}
