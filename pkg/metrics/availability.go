package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AvailabilityMetrics records cache behavior and fallbacks for stock lookups.
type AvailabilityMetrics struct {
	lookupDuration *prometheus.HistogramVec
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
}

// NewAvailabilityMetrics registers the availability metrics on the provided registerer.
func NewAvailabilityMetrics(reg prometheus.Registerer) *AvailabilityMetrics {
	if reg == nil {
		return &AvailabilityMetrics{}
	}
	lookupDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "availability_lookup_duration_seconds",
		Help:    "Duration of availability lookups in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"store"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_cache_hits",
		Help: "Availability lookups served from the cache.",
	}, []string{"store"})
	cacheMisses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_cache_misses",
		Help: "Availability lookups that went to the database.",
	}, []string{"store"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_fallbacks",
		Help: "Availability lookups that degraded to the unavailable fallback.",
	}, []string{"store"})
	reg.MustRegister(lookupDuration, cacheHits, cacheMisses, fallbacks)
	return &AvailabilityMetrics{
		lookupDuration: lookupDuration,
		cacheHits:      cacheHits,
		cacheMisses:    cacheMisses,
		fallbacks:      fallbacks,
	}
}

// ObserveLookup records the duration of a lookup against the named store.
func (a *AvailabilityMetrics) ObserveLookup(store string, duration time.Duration) {
	if a == nil || a.lookupDuration == nil {
		return
	}
	a.lookupDuration.WithLabelValues(normalizeLabel(store)).Observe(duration.Seconds())
}

// IncCacheHit increments the cache hit counter for the named store.
func (a *AvailabilityMetrics) IncCacheHit(store string) {
	if a == nil || a.cacheHits == nil {
		return
	}
	a.cacheHits.WithLabelValues(normalizeLabel(store)).Inc()
}

// IncCacheMiss increments the cache miss counter for the named store.
func (a *AvailabilityMetrics) IncCacheMiss(store string) {
	if a == nil || a.cacheMisses == nil {
		return
	}
	a.cacheMisses.WithLabelValues(normalizeLabel(store)).Inc()
}

// IncFallback increments the fallback counter for the named store.
func (a *AvailabilityMetrics) IncFallback(store string) {
	if a == nil || a.fallbacks == nil {
		return
	}
	a.fallbacks.WithLabelValues(normalizeLabel(store)).Inc()
}

func normalizeLabel(store string) string {
	if store == "" {
		return "unknown"
	}
	return store
}
