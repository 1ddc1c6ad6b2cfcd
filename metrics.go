package sentryd

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the stall-wait latency histogram buckets in
// nanoseconds, log-spaced from 1us to 10s.
var LatencyBuckets = []uint64{
	1_000,
	10_000,
	100_000,
	1_000_000,
	10_000_000,
	100_000_000,
	1_000_000_000,
	10_000_000_000,
}

const numLatencyBuckets = 8

// Metrics tracks operational statistics for the stall engine, table,
// and caches: stall/timeout/continuation/cache/drop counters plus a
// latency histogram.
type Metrics struct {
	StallsStarted       atomic.Uint64
	Allowed             atomic.Uint64
	Denied              atomic.Uint64
	Continuations       atomic.Uint64
	ContinuationCapHits atomic.Uint64
	TimedOut            atomic.Uint64
	Interrupted         atomic.Uint64
	DisabledMidWait     atomic.Uint64
	NoResources         atomic.Uint64

	QueueDropsNormal atomic.Uint64
	QueueDropsLow    atomic.Uint64

	TaskCacheHits  atomic.Uint64
	InodeCacheHits atomic.Uint64

	TotalLatencyNs atomic.Uint64
	OpCount        atomic.Uint64
	LatencyHist    [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
}

// NewMetrics creates a fresh, zeroed Metrics with StartTime set to now.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordStall records the outcome and total wait duration of one
// completed Stall Engine call.
func (m *Metrics) RecordStall(d time.Duration, v Verdict) {
	m.StallsStarted.Add(1)
	if v == Deny {
		m.Denied.Add(1)
	} else {
		m.Allowed.Add(1)
	}
	m.recordLatency(uint64(d.Nanoseconds()))
}

func (m *Metrics) RecordContinuation()    { m.Continuations.Add(1) }
func (m *Metrics) RecordContinuationCap() { m.ContinuationCapHits.Add(1) }
func (m *Metrics) RecordTimedOut()        { m.TimedOut.Add(1) }
func (m *Metrics) RecordInterrupted()     { m.Interrupted.Add(1) }
func (m *Metrics) RecordDisabledMidWait() { m.DisabledMidWait.Add(1) }
func (m *Metrics) RecordNoResources()     { m.NoResources.Add(1) }
func (m *Metrics) RecordTaskCacheHit()    { m.TaskCacheHits.Add(1) }
func (m *Metrics) RecordInodeCacheHit()   { m.InodeCacheHits.Add(1) }

// RecordQueueDrop increments the drop counter for the given priority
// queue.
func (m *Metrics) RecordQueueDrop(low bool) {
	if low {
		m.QueueDropsLow.Add(1)
	} else {
		m.QueueDropsNormal.Add(1)
	}
}

func (m *Metrics) recordLatency(ns uint64) {
	m.TotalLatencyNs.Add(ns)
	m.OpCount.Add(1)
	for i, bucket := range LatencyBuckets {
		if ns <= bucket {
			m.LatencyHist[i].Add(1)
		}
	}
}

// MetricsSnapshot is a point-in-time copy of Metrics, safe to read
// without further synchronization.
type MetricsSnapshot struct {
	StallsStarted       uint64
	Allowed             uint64
	Denied              uint64
	Continuations       uint64
	ContinuationCapHits uint64
	TimedOut            uint64
	Interrupted         uint64
	DisabledMidWait     uint64
	NoResources         uint64

	QueueDropsNormal uint64
	QueueDropsLow    uint64

	TaskCacheHits  uint64
	InodeCacheHits uint64

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyP50Ns uint64
	LatencyP99Ns uint64

	LatencyHistogram [numLatencyBuckets]uint64
}

// Snapshot copies the current counters into a MetricsSnapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		StallsStarted:       m.StallsStarted.Load(),
		Allowed:             m.Allowed.Load(),
		Denied:              m.Denied.Load(),
		Continuations:       m.Continuations.Load(),
		ContinuationCapHits: m.ContinuationCapHits.Load(),
		TimedOut:            m.TimedOut.Load(),
		Interrupted:         m.Interrupted.Load(),
		DisabledMidWait:     m.DisabledMidWait.Load(),
		NoResources:         m.NoResources.Load(),
		QueueDropsNormal:    m.QueueDropsNormal.Load(),
		QueueDropsLow:       m.QueueDropsLow.Load(),
		TaskCacheHits:       m.TaskCacheHits.Load(),
		InodeCacheHits:      m.InodeCacheHits.Load(),
	}

	opCount := m.OpCount.Load()
	if opCount > 0 {
		snap.AvgLatencyNs = m.TotalLatencyNs.Load() / opCount
	}
	snap.UptimeNs = uint64(time.Now().UnixNano() - m.StartTime.Load())

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyHist[i].Load()
	}
	if opCount > 0 {
		snap.LatencyP50Ns = m.calculatePercentile(0.50)
		snap.LatencyP99Ns = m.calculatePercentile(0.99)
	}

	return snap
}

// calculatePercentile estimates the latency at the given percentile
// (0.0-1.0) by linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	total := m.OpCount.Load()
	if total == 0 {
		return 0
	}
	target := uint64(float64(total) * percentile)

	prevBucket, prevCount := uint64(0), uint64(0)
	for i, bucket := range LatencyBuckets {
		count := m.LatencyHist[i].Load()
		if count >= target {
			if count == prevCount {
				return bucket
			}
			fraction := float64(target-prevCount) / float64(count-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket, prevCount = bucket, count
	}
	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset zeroes every counter; useful for tests.
func (m *Metrics) Reset() {
	m.StallsStarted.Store(0)
	m.Allowed.Store(0)
	m.Denied.Store(0)
	m.Continuations.Store(0)
	m.ContinuationCapHits.Store(0)
	m.TimedOut.Store(0)
	m.Interrupted.Store(0)
	m.DisabledMidWait.Store(0)
	m.NoResources.Store(0)
	m.QueueDropsNormal.Store(0)
	m.QueueDropsLow.Store(0)
	m.TaskCacheHits.Store(0)
	m.InodeCacheHits.Store(0)
	m.TotalLatencyNs.Store(0)
	m.OpCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyHist[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
}
