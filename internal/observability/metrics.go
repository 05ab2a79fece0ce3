package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	requestsTotal       *prometheus.CounterVec
	latencySeconds      *prometheus.HistogramVec
	errorsTotal         *prometheus.CounterVec
	searchLatency       prometheus.Histogram
	searchCacheRequests *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forum_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forum_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forum_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		searchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "forum_search_latency_seconds",
			Help:    "Latency distribution for home search composition.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		searchCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forum_search_cache_total",
			Help: "Search cache lookups partitioned by result.",
		}, []string{"result"})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, searchLatency, searchCacheRequests)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// SearchLatency exposes the histogram tracking home search composition time.
func SearchLatency() prometheus.Histogram {
	RegisterMetrics()
	return searchLatency
}

// SearchCacheRequests exposes the cache hit/miss counter for search results.
func SearchCacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return searchCacheRequests
}
