package table

import (
	"context"
	"testing"
	"time"

	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	return Config{
		Shards:         4,
		QueueCapacity:  8,
		HighWaterBytes: 1 << 16,
		PartialTimeout: 20 * time.Millisecond,
	}
}

func TestTableInsertAssignsRequestID(t *testing.T) {
	tbl := New(smallConfig())
	ev := &event.Event{TID: 1, Flags: event.FlagStall}
	entry, err := tbl.Insert(ev, stall.Allow)
	require.NoError(t, err)
	require.NotZero(t, entry.RequestID)
	require.Equal(t, 1, tbl.Len())
}

func TestTableResolveAndRemove(t *testing.T) {
	tbl := New(smallConfig())
	ev := &event.Event{TID: 1, Flags: event.FlagStall}
	entry, err := tbl.Insert(ev, stall.Allow)
	require.NoError(t, err)

	require.True(t, tbl.Resolve(entry.RequestID, stall.Deny, 0))
	tbl.Remove(entry.RequestID)
	require.Equal(t, 0, tbl.Len())

	// Resolving an unknown/removed id is accepted silently.
	require.False(t, tbl.Resolve(entry.RequestID, stall.Allow, 0))
}

func TestTableDisabledRejectsInsert(t *testing.T) {
	tbl := New(smallConfig())
	tbl.SetEnabled(false)
	_, err := tbl.Insert(&event.Event{TID: 1}, stall.Allow)
	require.ErrorIs(t, err, ErrNoSpace)
}

func TestTableEnqueueNonStallAndDequeueBatch(t *testing.T) {
	tbl := New(smallConfig())
	for i := 0; i < 3; i++ {
		ev := &event.Event{TID: uint32(i), Payload: &event.TaskFreePayload{PID: uint32(i)}}
		n := tbl.EnqueueNonStall(ev, event.NormalPriority)
		require.NotZero(t, n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	out, err := tbl.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, out, 3)
}

func TestTableEnqueueNonStallDropsOverHighWater(t *testing.T) {
	cfg := smallConfig()
	cfg.HighWaterBytes = 1 // next to nothing fits
	tbl := New(cfg)
	ev := &event.Event{TID: 1, Payload: &event.ExecPayload{Path: []byte("/bin/sh")}}
	n := tbl.EnqueueNonStall(ev, event.NormalPriority)
	require.Zero(t, n)

	_, low := tbl.DropStats()
	_ = low
}

func TestTableDequeueBatchPrefersNormalOverLow(t *testing.T) {
	tbl := New(smallConfig())
	tbl.EnqueueNonStall(&event.Event{TID: 1, Payload: &event.TaskFreePayload{PID: 1}}, event.LowPriority)
	tbl.EnqueueNonStall(&event.Event{TID: 2, Payload: &event.TaskFreePayload{PID: 2}}, event.NormalPriority)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	out, err := tbl.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, uint32(2), out[0].TID)
}

func TestTableDequeueBatchBlocksUntilEvent(t *testing.T) {
	tbl := New(smallConfig())

	resultCh := make(chan int, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() {
		out, err := tbl.DequeueBatch(ctx, 5)
		require.NoError(t, err)
		resultCh <- len(out)
	}()

	time.Sleep(30 * time.Millisecond)
	tbl.EnqueueNonStall(&event.Event{TID: 9, Payload: &event.TaskFreePayload{PID: 9}}, event.NormalPriority)

	select {
	case n := <-resultCh:
		require.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("DequeueBatch did not return after event was enqueued")
	}
}
