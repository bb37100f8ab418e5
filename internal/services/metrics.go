package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Research job outcomes: completed, completed_from_cache, failed, rejected
	ResearchJobs *prometheus.CounterVec

	// Cache lookups by tier ("exact", "fuzzy") and result ("hit", "miss", "error")
	CacheLookups *prometheus.CounterVec

	// Provider call latency
	ProviderLatency prometheus.Histogram

	// Trend source fetches by source name and status ("ok", "error")
	TrendFetches *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// InitMetrics initializes the Prometheus metrics (idempotent).
func InitMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ResearchJobs: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "trendscribe_research_jobs_total",
				Help: "Total number of research jobs by outcome",
			}, []string{"outcome"}),

			CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "trendscribe_cache_lookups_total",
				Help: "Total number of result cache lookups by tier and result",
			}, []string{"tier", "result"}),

			ProviderLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "trendscribe_provider_request_duration_seconds",
				Help:    "Research provider call latency in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120}, // research calls run long
			}),

			TrendFetches: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "trendscribe_trend_fetches_total",
				Help: "Total number of trend source fetches by source and status",
			}, []string{"source", "status"}),
		}
	})
	return globalMetrics
}
