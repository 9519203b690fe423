package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hybridd",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	})

	cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hybridd",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	})

	cacheEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hybridd",
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Entries removed to satisfy the size bound",
	})

	cacheExpirationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hybridd",
		Subsystem: "cache",
		Name:      "expirations_total",
		Help:      "Entries purged after exceeding the TTL",
	})

	cacheCorruptionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hybridd",
		Subsystem: "cache",
		Name:      "corruptions_total",
		Help:      "Unreadable persisted entries recovered as misses",
	})

	cacheSizeBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hybridd",
		Subsystem: "cache",
		Name:      "size_bytes",
		Help:      "Total payload bytes currently cached",
	})

	cacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hybridd",
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Number of cached entries",
	})
)

func init() {
	prometheus.MustRegister(
		cacheHitsTotal,
		cacheMissesTotal,
		cacheEvictionsTotal,
		cacheExpirationsTotal,
		cacheCorruptionsTotal,
		cacheSizeBytes,
		cacheEntries,
	)
}
