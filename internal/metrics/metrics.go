// Package metrics exposes Prometheus counters for the content pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	global *Metrics
	once   sync.Once
)

// Metrics holds the pipeline counters.
type Metrics struct {
	FetchErrorsTotal    *prometheus.CounterVec
	CacheLookupsTotal   *prometheus.CounterVec
	CacheRebuildsTotal  prometheus.Counter
	LockWaitTimeouts    prometheus.Counter
	ParseFailuresTotal  prometheus.Counter
	SlugDecodeFallbacks prometheus.Counter
}

// Default returns the process-wide metrics, registering them on first use.
//
// Metrics:
//   - tilog_fetch_errors_total{kind} - files skipped during a scan
//   - tilog_cache_lookups_total{layer,result} - build cache lookups
//   - tilog_cache_rebuilds_total - directory scans performed behind the cache
//   - tilog_cache_lock_wait_timeouts_total - lock waits that gave up
//   - tilog_parse_failures_total - notes dropped by front matter parsing
//   - tilog_slug_decode_fallbacks_total - slugs that failed to decode
func Default() *Metrics {
	once.Do(func() {
		global = &Metrics{
			FetchErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tilog_fetch_errors_total",
					Help: "Total number of note files skipped during a directory scan",
				},
				[]string{"kind"}, // "read_error" or "validation_error"
			),
			CacheLookupsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tilog_cache_lookups_total",
					Help: "Total number of build cache lookups",
				},
				[]string{"layer", "result"},
			),
			CacheRebuildsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tilog_cache_rebuilds_total",
				Help: "Total number of directory scans performed behind the build cache",
			}),
			LockWaitTimeouts: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tilog_cache_lock_wait_timeouts_total",
				Help: "Total number of cache lock waits that gave up and read directly",
			}),
			ParseFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tilog_parse_failures_total",
				Help: "Total number of notes dropped because their front matter failed validation",
			}),
			SlugDecodeFallbacks: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tilog_slug_decode_fallbacks_total",
				Help: "Total number of tag slugs that could not be decoded",
			}),
		}
	})
	return global
}
