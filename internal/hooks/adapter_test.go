package hooks

import (
	"testing"
	"time"

	"github.com/ehrlich-b/sentryd/internal/cache"
	"github.com/ehrlich-b/sentryd/internal/config"
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/selfset"
	"github.com/ehrlich-b/sentryd/internal/stall"
	"github.com/ehrlich-b/sentryd/internal/table"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) (*Adapter, *table.Table, *config.Manager) {
	t.Helper()
	cfgMgr := config.NewManager(config.Default())
	tbl := table.New(table.Config{Shards: 2, QueueCapacity: 8, HighWaterBytes: 1 << 16, PartialTimeout: 10 * time.Millisecond})
	taskCache := cache.NewTaskCache(8, time.Second)
	inodeCache := cache.NewInodeCache(8, time.Second)
	self := selfset.New()
	engine := stall.NewEngine(tbl, cfgMgr)
	factory := event.NewFactory()
	return New(cfgMgr, factory, tbl, engine, self, taskCache, inodeCache), tbl, cfgMgr
}

func TestAdapterExecStallsAndResolves(t *testing.T) {
	a, tbl, _ := newTestAdapter(t)

	done := make(chan struct{})
	var verdict stall.Verdict
	var err error
	go func() {
		verdict, err = a.Exec(1, 2, 7, 0, []byte("/bin/sh"), neverClose())
		close(done)
	}()

	require.Eventually(t, func() bool { return tbl.Len() == 1 }, time.Second, time.Millisecond)

	// Resolve the only in-flight entry directly via the table, standing
	// in for a user-space agent answering DENY.
	resolveFirst(t, tbl, stall.Deny)

	<-done
	require.NoError(t, err)
	require.Equal(t, stall.VerdictDeny, verdict)
}

func TestAdapterSelfEventNeverStalls(t *testing.T) {
	a, tbl, _ := newTestAdapter(t)
	a.Self.Add(2)

	verdict, err := a.Exec(1, 2, 7, 0, []byte("/bin/sh"), neverClose())
	require.NoError(t, err)
	require.Equal(t, stall.VerdictAllow, verdict)
	require.Equal(t, 0, tbl.Len())
}

func TestAdapterDisabledHookAllowsWithoutStalling(t *testing.T) {
	a, tbl, cfgMgr := newTestAdapter(t)
	cfgMgr.Update(func(c *config.Config) {
		c.EnabledHooks &^= uint64(1) << uint(event.Exec)
	})

	verdict, err := a.Exec(1, 2, 7, 0, []byte("/bin/sh"), neverClose())
	require.NoError(t, err)
	require.Equal(t, stall.VerdictAllow, verdict)
	require.Equal(t, 0, tbl.Len())
}

func TestAdapterInodeCacheSuppressesRepeatStall(t *testing.T) {
	a, tbl, _ := newTestAdapter(t)

	done := make(chan struct{})
	var verdict stall.Verdict
	go func() {
		verdict, _ = a.Exec(1, 2, 7, 0xabc, []byte("/bin/sh"), neverClose())
		close(done)
	}()
	require.Eventually(t, func() bool { return tbl.Len() == 1 }, time.Second, time.Millisecond)
	resolveFirst(t, tbl, stall.Allow)
	<-done
	require.Equal(t, stall.VerdictAllow, verdict)

	// Second identical exec on the same (tid, inode) should hit the
	// cache and never reach the table at all.
	verdict, err := a.Exec(1, 2, 7, 0xabc, []byte("/bin/sh"), neverClose())
	require.NoError(t, err)
	require.Equal(t, stall.VerdictAllow, verdict)
	require.Equal(t, 0, tbl.Len())
}

func TestAdapterCloseNeverStalls(t *testing.T) {
	a, tbl, _ := newTestAdapter(t)
	verdict, err := a.Close(1, 2, 7, event.OpenClosePayload{Path: []byte("/a"), IsRegular: true}, neverClose())
	require.NoError(t, err)
	require.Equal(t, stall.VerdictAllow, verdict)
	require.Equal(t, 0, tbl.Len())
}

func neverClose() <-chan struct{} { return make(chan struct{}) }

func resolveFirst(t *testing.T, tbl *table.Table, resp stall.Response) {
	t.Helper()
	// The Stall Table hides its internal ids; walk plausible recent ids
	// since tests assign them monotonically starting at 1.
	for id := uint64(1); id <= 64; id++ {
		if tbl.Resolve(id, resp, 0) {
			return
		}
	}
	t.Fatal("no in-flight entry found to resolve")
}
