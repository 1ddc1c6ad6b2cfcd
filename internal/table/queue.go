package table

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-longpoll"

	"github.com/ehrlich-b/sentryd/internal/event"
)

// fifo is one per-shard, per-priority queue of non-stalling events
// awaiting delivery. Order within a fifo is preserved by the underlying
// buffered channel; draining is exposed both as a non-blocking drain
// (used by Table.DequeueBatch's fairness pass) and as a blocking batch
// read of the same channel using github.com/joeycumines/go-longpoll.
type fifo struct {
	ch        chan *event.Event
	queued    atomic.Int64 // bytes currently enqueued, for the high-water mark
	highWater int64
	drops     atomic.Uint64
}

func newFIFO(capacity int, highWater int64) *fifo {
	return &fifo{
		ch:        make(chan *event.Event, capacity),
		highWater: highWater,
	}
}

// enqueue appends ev, returning the accepted byte count or 0 if the
// queue is full or over its high-water mark -> accepted_bytes | 0"). The
// caller must free ev on a 0 return.
func (q *fifo) enqueue(ev *event.Event) int {
	size := int64(ev.ApproxSize())
	if q.queued.Load()+size > q.highWater {
		q.drops.Add(1)
		return 0
	}
	select {
	case q.ch <- ev:
		q.queued.Add(size)
		return int(size)
	default:
		q.drops.Add(1)
		return 0
	}
}

// drainNonBlocking pulls up to max queued events without blocking,
// used by the cross-shard round-robin fairness pass.
func (q *fifo) drainNonBlocking(max int) []*event.Event {
	var out []*event.Event
	for len(out) < max {
		select {
		case ev := <-q.ch:
			q.queued.Add(-int64(ev.ApproxSize()))
			out = append(out, ev)
		default:
			return out
		}
	}
	return out
}

// drainBlocking uses go-longpoll's Channel combinator to gather a batch
// of at least minSize (or whatever is available after partialTimeout)
// and at most maxSize events, blocking if the queue is currently empty.
// This backs the Delivery Surface's blocking read.
func (q *fifo) drainBlocking(ctx context.Context, minSize, maxSize int, partialTimeout time.Duration) ([]*event.Event, error) {
	var out []*event.Event
	cfg := &longpoll.ChannelConfig{
		MaxSize:        maxSize,
		MinSize:        minSize,
		PartialTimeout: partialTimeout,
	}
	err := longpoll.Channel(ctx, cfg, q.ch, func(ev *event.Event) error {
		q.queued.Add(-int64(ev.ApproxSize()))
		out = append(out, ev)
		return nil
	})
	if err == io.EOF {
		err = nil
	}
	return out, err
}

// dropCount reports events dropped because the queue was full or over
// its high-water mark.
func (q *fifo) dropCount() uint64 { return q.drops.Load() }
