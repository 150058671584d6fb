package sessauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a counter or histogram maintained by the store.
type MetricID uint16

const (
	// MetricLoginSuccess counts logins that resolved with a committed session.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts logins rejected by validation or the gateway.
	MetricLoginFailure
	// MetricLogout counts explicit user-initiated logouts.
	MetricLogout
	// MetricForcedLogout counts logouts forced by the store itself.
	MetricForcedLogout
	// MetricRefreshSuccess counts successful token refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed token refreshes.
	MetricRefreshFailure
	// MetricIdentityRefetchFailure counts failed current-user refetches.
	MetricIdentityRefetchFailure
	// MetricTokenExpired counts expired tokens observed during claim checks.
	MetricTokenExpired
	// MetricTamperDetected counts local/token permission divergences.
	MetricTamperDetected
	// MetricPermissionRefreshSuccess counts background permission refreshes
	// that replaced the cached set.
	MetricPermissionRefreshSuccess
	// MetricPermissionRefreshFailure counts background permission refreshes
	// that failed and left the stale set in place.
	MetricPermissionRefreshFailure
	// MetricStaleResultDiscarded counts async completions discarded because
	// the session generation changed while they were in flight.
	MetricStaleResultDiscarded
	// MetricAccessGranted counts access checks that resolved to allow.
	MetricAccessGranted
	// MetricAccessDenied counts access checks that resolved to deny.
	MetricAccessDenied
	// MetricAccessCheckLatency is the histogram of CanAccessPath durations.
	MetricAccessCheckLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// Counters are padded to one cache line each so hot-path increments from
// different goroutines do not false-share.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the store's in-process counters and latency histogram. All
// methods are safe for concurrent use and are no-ops on a nil or disabled
// receiver.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms,
// consumed by the exporters under metrics/export.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a Metrics instance from cfg. Latency histograms require
// metrics to be enabled as well.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the access-check latency histogram is being
// recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records an access-check duration in the latency histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricAccessCheckLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of the counter for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and histograms. On a disabled instance the
// maps are empty, never nil.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAccessCheckLatency].buckets[i])
		}
		s.Histograms[MetricAccessCheckLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
