package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AttemptsTotal tracks executed fetch attempts per provider and outcome
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetchd_attempts_total",
			Help: "Total number of fetch attempts executed",
		},
		[]string{"provider", "outcome"},
	)

	// FetchErrors tracks terminal classified failures per provider
	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetchd_fetch_errors_total",
			Help: "Total number of jobs exhausted with a classified error",
		},
		[]string{"provider", "kind"},
	)

	// FetchDuration tracks end-to-end job duration per provider
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetchd_fetch_duration_seconds",
			Help:    "Fetch job duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 900},
		},
		[]string{"provider"},
	)

	// CacheRequests tracks delivery cache lookups per store and result
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetchd_cache_requests_total",
			Help: "Total number of delivery cache lookups",
		},
		[]string{"store", "result"},
	)

	// CacheInvalidations tracks stale-handle evictions
	CacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetchd_cache_invalidations_total",
			Help: "Total number of delivery cache invalidations",
		},
	)

	// GateActive tracks currently held concurrency slots per operation class
	GateActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fetchd_gate_active",
			Help: "Currently active concurrency slots",
		},
		[]string{"class"},
	)

	// GateQueued tracks callers waiting for a slot per operation class
	GateQueued = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fetchd_gate_queued",
			Help: "Callers queued for a concurrency slot",
		},
		[]string{"class"},
	)

	// DBConnectionPoolUsage tracks primary store pool saturation
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fetchd_db_pool_usage",
			Help: "Database connection pool usage percentage",
		},
	)
)
