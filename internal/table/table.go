// Package table implements the Stall Table: a sharded hash keyed by
// request_id holding in-flight Stall Entries, plus per-shard FIFOs of
// queued non-stalling events. Sharding is by hash of request_id, each
// shard independently locked to keep contention local.
package table

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// ErrNoSpace is returned by Insert when the owning shard has reached
// its maximum number of in-flight entries.
var ErrNoSpace = errors.New("table: no space for new entry")

// ErrDuplicate signals a request_id collision, which should be
// impossible given monotonic assignment; surfacing it as an error
// rather than panicking lets a caller log and continue.
var ErrDuplicate = errors.New("table: duplicate request id")

const maxEntriesPerShard = 1 << 16

// Table is the Stall Table.
type Table struct {
	shards  []*shard
	mask    uint64
	nextID  atomic.Uint64
	enabled atomic.Bool
	cursor  atomic.Uint64

	partialTimeout time.Duration
}

// Config bundles the table's sizing knobs.
type Config struct {
	Shards         int           // power of two
	QueueCapacity  int           // per-shard, per-priority FIFO depth
	HighWaterBytes int64         // per-shard, per-priority byte cap
	PartialTimeout time.Duration // go-longpoll partial-batch timeout
}

// DefaultConfig returns sane sizing for a modest simulated workload.
func DefaultConfig() Config {
	return Config{
		Shards:         16,
		QueueCapacity:  1024,
		HighWaterBytes: 4 << 20,
		PartialTimeout: 50 * time.Millisecond,
	}
}

// New constructs a Table with the given sizing, enabled by default.
func New(cfg Config) *Table {
	n := cfg.Shards
	if n <= 0 || (n&(n-1)) != 0 {
		n = 16 // force power of two
	}
	t := &Table{
		shards:         make([]*shard, n),
		mask:           uint64(n - 1),
		partialTimeout: cfg.PartialTimeout,
	}
	for i := range t.shards {
		t.shards[i] = newShard(cfg.QueueCapacity, cfg.HighWaterBytes)
	}
	t.nextID.Store(0)
	t.enabled.Store(true)
	return t
}

// Enabled reports whether the table is accepting new work.
func (t *Table) Enabled() bool { return t.enabled.Load() }

// SetEnabled toggles the table. Disabling makes Insert and
// EnqueueNonStall refuse new work; it does not evict in-flight entries
// and does not wake their waiters, which still end by verdict, timeout,
// task interruption, or stall mode being turned off.
func (t *Table) SetEnabled(v bool) { t.enabled.Store(v) }

func (t *Table) allocateID() uint64 {
	return t.nextID.Add(1)
}

func (t *Table) shardFor(requestID uint64) *shard {
	return t.shards[requestID&t.mask]
}

// Insert publishes ev, assigning a fresh request_id, and returns a new
// Stall Entry in STALL mode. It satisfies
// stall.Table so *Table can back a stall.Engine directly.
func (t *Table) Insert(ev *event.Event, defaultResponse stall.Response) (*stall.Entry, error) {
	if !t.Enabled() {
		return nil, ErrNoSpace
	}
	id := t.allocateID()
	ev.RequestID = id
	sh := t.shardFor(id)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if len(sh.entries) >= maxEntriesPerShard {
		return nil, ErrNoSpace
	}
	if _, exists := sh.entries[id]; exists {
		return nil, ErrDuplicate
	}

	entry := stall.NewEntry(id, ev.TID, ev, defaultResponse)
	sh.entries[id] = entry
	return entry, nil
}

// Resolve looks up the entry for requestID and applies a user-space
// response to it, expected to run in O(1). Returns false if no such
// entry exists — the waiter may already have timed out, which is
// accepted silently.
func (t *Table) Resolve(requestID uint64, response stall.Response, contTimeout time.Duration) bool {
	sh := t.shardFor(requestID)
	sh.mu.Lock()
	entry, ok := sh.entries[requestID]
	sh.mu.Unlock()
	if !ok {
		return false
	}
	return entry.Resolve(response, contTimeout)
}

// Remove unlinks the entry for requestID from its shard. Idempotent:
// removing an already-removed id is a no-op.
func (t *Table) Remove(requestID uint64) {
	sh := t.shardFor(requestID)
	sh.mu.Lock()
	delete(sh.entries, requestID)
	sh.mu.Unlock()
}

// EnqueueNonStall appends a non-stalling event to the appropriate
// per-shard FIFO. The event is assigned a request_id
// for ordering/audit purposes even though no Stall Entry is created.
// Returns the accepted byte count, or 0 if the queue was full/over its
// high-water mark — the caller must release ev in that case.
func (t *Table) EnqueueNonStall(ev *event.Event, priority event.Priority) int {
	if !t.Enabled() {
		return 0
	}
	ev.RequestID = t.allocateID()
	sh := t.shardFor(ev.RequestID)
	if priority == event.LowPriority {
		return sh.low.enqueue(ev)
	}
	return sh.normal.enqueue(ev)
}

// DequeueBatch drains queued events in priority order: all available
// normal-priority events before any low-priority events within a
// shard, round-robining across shards to avoid starving any one shard.
// When nothing is queued it blocks (respecting ctx) on the normal FIFO
// of a single shard chosen round-robin, using go-longpoll's
// partial-timeout batching; events that arrive on other shards while
// it blocks are not returned by that call.
func (t *Table) DequeueBatch(ctx context.Context, maxEvents int) ([]*event.Event, error) {
	if maxEvents <= 0 {
		maxEvents = 1
	}

	out := t.roundRobinDrain(func(sh *shard) *fifo { return sh.normal }, maxEvents)
	if len(out) < maxEvents {
		out = append(out, t.roundRobinDrain(func(sh *shard) *fifo { return sh.low }, maxEvents-len(out))...)
	}
	if len(out) > 0 {
		return out, nil
	}

	// Nothing immediately available: block on the first shard in
	// round-robin order, using the longpoll batch combinator so a
	// slow trickle of events still returns promptly via PartialTimeout
	// rather than waiting for a full batch.
	n := len(t.shards)
	start := int(t.cursor.Add(1) % uint64(n))
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		sh := t.shards[idx]
		drained, err := sh.normal.drainBlocking(ctx, 1, maxEvents, t.partialTimeout)
		if err != nil {
			return nil, err
		}
		if len(drained) > 0 {
			return drained, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}
	// All shards empty of normal events; try low-priority the same way.
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		sh := t.shards[idx]
		drained, err := sh.low.drainBlocking(ctx, 1, maxEvents, t.partialTimeout)
		if err != nil {
			return nil, err
		}
		if len(drained) > 0 {
			return drained, nil
		}
	}
	return nil, nil
}

func (t *Table) roundRobinDrain(pick func(*shard) *fifo, max int) []*event.Event {
	var out []*event.Event
	n := len(t.shards)
	start := int(t.cursor.Load() % uint64(n))
	for i := 0; i < n && len(out) < max; i++ {
		idx := (start + i) % n
		q := pick(t.shards[idx])
		out = append(out, q.drainNonBlocking(max-len(out))...)
	}
	return out
}

// DropStats reports, per shard, the number of non-stall events dropped
// because a queue was full or over its high-water mark.
func (t *Table) DropStats() (normal, low uint64) {
	for _, sh := range t.shards {
		normal += sh.normal.dropCount()
		low += sh.low.dropCount()
	}
	return
}

// Len reports the number of in-flight Stall Entries across all shards;
// intended for tests and metrics, not the hot path.
func (t *Table) Len() int {
	n := 0
	for _, sh := range t.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}
