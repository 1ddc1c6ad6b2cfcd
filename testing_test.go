package sentryd

import (
	"context"
	"testing"
	"time"

	"github.com/ehrlich-b/sentryd/internal/config"
	"github.com/ehrlich-b/sentryd/internal/table"
	"github.com/stretchr/testify/require"
)

func TestFakeAgentPumpCountsBatchesEventsResponses(t *testing.T) {
	cfg := config.Default()
	cfg.StallTimeout = 200 * time.Millisecond
	tblCfg := table.Config{Shards: 1, QueueCapacity: 8, HighWaterBytes: 1 << 16, PartialTimeout: 10 * time.Millisecond}
	e := New(WithConfig(cfg), WithTableConfig(tblCfg))

	agent := NewFakeAgent(e, AllowAgent)

	done := make(chan struct{})
	go func() {
		e.Hooks.Exec(1, 1, 7, 0, []byte("/bin/sh"), neverCloseEngine())
		close(done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := agent.Pump(ctx, 8)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	<-done

	counts := agent.CallCounts()
	require.Equal(t, 1, counts["batches"])
	require.Equal(t, 1, counts["events"])
	require.Equal(t, 1, counts["responses"])
}

func TestFakeAgentResetZeroesCounters(t *testing.T) {
	e := New()
	agent := NewFakeAgent(e, AllowAgent)
	agent.Reset()
	counts := agent.CallCounts()
	require.Equal(t, 0, counts["batches"])
	require.Equal(t, 0, counts["events"])
	require.Equal(t, 0, counts["responses"])
}

func TestFakeAgentStopEndsRunLoop(t *testing.T) {
	e := New()
	agent := NewFakeAgent(e, AllowAgent)
	agent.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	agent.Run(ctx, 8)
}
