package adminAuth

import (
	"sort"
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter.
type MetricID uint16

const (
	MetricCodeSent MetricID = iota
	MetricCodeSendFailure
	MetricCodeVerified
	MetricCodeInvalid
	MetricCodeExpired
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginUnclaimed
	MetricPasswordSet
	MetricPasswordRejected
	MetricPasswordRehashed
	MetricSessionCreated
	MetricSessionRefreshed
	MetricAuthorizeAllow
	MetricAuthorizeDeny
	MetricRateLimitHit
	MetricIntegrityFault
	// MetricAuthorizeLatency is the only histogram-backed metric.
	MetricAuthorizeLatency
	metricIDCount
)

// latencyBounds are the inclusive upper bounds of the first seven latency
// buckets. The eighth bucket takes everything slower.
var latencyBounds = [...]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

const latencyBucketCount = len(latencyBounds) + 1

// counterSlot keeps each counter on its own cache line so hot counters do not
// contend.
type counterSlot struct {
	n atomic.Uint64
	_ [56]byte
}

// Metrics holds lock-free counters and an optional authorization latency
// histogram. A nil or disabled Metrics ignores every call.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]counterSlot
	latency       [latencyBucketCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool { return m != nil && m.enabled }

func (m *Metrics) LatencyEnabled() bool { return m != nil && m.enableLatency }

func (m *Metrics) Inc(id MetricID) {
	if !m.Enabled() || id >= metricIDCount {
		return
	}
	m.counters[id].n.Add(1)
}

// Observe records d when id is MetricAuthorizeLatency and latency tracking is
// on. Other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if !m.LatencyEnabled() || id != MetricAuthorizeLatency {
		return
	}
	m.latency[latencyBucket(d)].Add(1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return m.counters[id].n.Load()
}

// Snapshot copies every counter. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if !m.Enabled() {
		return s
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = m.counters[id].n.Load()
	}
	if m.enableLatency {
		buckets := make([]uint64, latencyBucketCount)
		for i := range buckets {
			buckets[i] = m.latency[i].Load()
		}
		s.Histograms[MetricAuthorizeLatency] = buckets
	}
	return s
}

// latencyBucket compares at millisecond resolution, so 5.9ms lands in the
// first bucket.
func latencyBucket(d time.Duration) int {
	d = d.Truncate(time.Millisecond)
	return sort.Search(len(latencyBounds), func(i int) bool { return d <= latencyBounds[i] })
}
