package sentryd

import (
	"testing"
	"time"
)

func TestMetricsStallCounts(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	if snap.StallsStarted != 0 {
		t.Errorf("Expected 0 initial stalls, got %d", snap.StallsStarted)
	}

	m.RecordStall(1*time.Millisecond, Allow)
	m.RecordStall(2*time.Millisecond, Deny)
	m.RecordStall(500*time.Microsecond, Allow)

	snap = m.Snapshot()
	if snap.StallsStarted != 3 {
		t.Errorf("Expected 3 stalls, got %d", snap.StallsStarted)
	}
	if snap.Allowed != 2 {
		t.Errorf("Expected 2 allowed, got %d", snap.Allowed)
	}
	if snap.Denied != 1 {
		t.Errorf("Expected 1 denied, got %d", snap.Denied)
	}
}

func TestMetricsCountersIncrement(t *testing.T) {
	m := NewMetrics()

	m.RecordContinuation()
	m.RecordContinuation()
	m.RecordContinuationCap()
	m.RecordTimedOut()
	m.RecordInterrupted()
	m.RecordDisabledMidWait()
	m.RecordNoResources()
	m.RecordTaskCacheHit()
	m.RecordInodeCacheHit()
	m.RecordQueueDrop(false)
	m.RecordQueueDrop(true)
	m.RecordQueueDrop(true)

	snap := m.Snapshot()
	if snap.Continuations != 2 {
		t.Errorf("Expected 2 continuations, got %d", snap.Continuations)
	}
	if snap.ContinuationCapHits != 1 {
		t.Errorf("Expected 1 continuation cap hit, got %d", snap.ContinuationCapHits)
	}
	if snap.TimedOut != 1 || snap.Interrupted != 1 || snap.DisabledMidWait != 1 || snap.NoResources != 1 {
		t.Errorf("Expected each terminal counter at 1, got %+v", snap)
	}
	if snap.TaskCacheHits != 1 || snap.InodeCacheHits != 1 {
		t.Errorf("Expected cache hit counters at 1, got %+v", snap)
	}
	if snap.QueueDropsNormal != 1 {
		t.Errorf("Expected 1 normal queue drop, got %d", snap.QueueDropsNormal)
	}
	if snap.QueueDropsLow != 2 {
		t.Errorf("Expected 2 low queue drops, got %d", snap.QueueDropsLow)
	}
}

func TestMetricsAvgLatency(t *testing.T) {
	m := NewMetrics()

	m.RecordStall(1*time.Millisecond, Allow)
	m.RecordStall(2*time.Millisecond, Allow)

	snap := m.Snapshot()
	expected := uint64(1_500_000) // 1.5ms in ns
	if snap.AvgLatencyNs != expected {
		t.Errorf("Expected avg latency %d ns, got %d ns", expected, snap.AvgLatencyNs)
	}
}

func TestMetricsUptime(t *testing.T) {
	m := NewMetrics()

	time.Sleep(10 * time.Millisecond)

	snap := m.Snapshot()
	if snap.UptimeNs < 10*uint64(time.Millisecond) {
		t.Errorf("Expected uptime >= 10ms, got %d ns", snap.UptimeNs)
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()

	m.RecordStall(1*time.Millisecond, Deny)
	m.RecordQueueDrop(false)

	snap := m.Snapshot()
	if snap.StallsStarted == 0 {
		t.Error("Expected some stalls before reset")
	}

	m.Reset()

	snap = m.Snapshot()
	if snap.StallsStarted != 0 || snap.Denied != 0 || snap.QueueDropsNormal != 0 {
		t.Errorf("Expected all counters zeroed after reset, got %+v", snap)
	}
}

func TestMetricsHistogramPercentiles(t *testing.T) {
	m := NewMetrics()

	for i := 0; i < 50; i++ {
		m.RecordStall(500*time.Microsecond, Allow)
	}
	for i := 0; i < 49; i++ {
		m.RecordStall(5*time.Millisecond, Allow)
	}
	m.RecordStall(50*time.Millisecond, Deny)

	snap := m.Snapshot()
	if snap.StallsStarted != 100 {
		t.Errorf("Expected 100 total stalls, got %d", snap.StallsStarted)
	}

	if snap.LatencyP50Ns < 100_000 || snap.LatencyP50Ns > 1_000_000 {
		t.Errorf("Expected P50 in 100us-1ms range, got %d ns", snap.LatencyP50Ns)
	}
	if snap.LatencyP99Ns < 5_000_000 || snap.LatencyP99Ns > 100_000_000 {
		t.Errorf("Expected P99 in 5ms-100ms range, got %d ns", snap.LatencyP99Ns)
	}

	total := uint64(0)
	for _, c := range snap.LatencyHistogram {
		total += c
	}
	if total == 0 {
		t.Error("Expected histogram buckets to be populated")
	}
}
