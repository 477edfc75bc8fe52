package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled, by method, route template and status code.",
	}, []string{"method", "route", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fittrack",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	danglingReferences = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "populate",
		Name:      "dangling_references_total",
		Help:      "References that pointed at a missing record during population, by field.",
	}, []string{"field"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, danglingReferences)
}

// RecordHTTPRequest counts a finished request and observes its latency.
// route is the registered template (e.g. /api/users/:id), never the raw path.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordDanglingReference counts one unresolvable reference in field.
func RecordDanglingReference(field string) {
	danglingReferences.WithLabelValues(field).Inc()
}
