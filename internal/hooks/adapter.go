// Package hooks implements the per-operation entry points that stand in
// for a real LSM hook vector. Every adapter shares
// the same six-step skeleton; kind-specific files apply only the
// filters and cache policy that differ per kind.
package hooks

import (
	"time"

	"github.com/ehrlich-b/sentryd/internal/cache"
	"github.com/ehrlich-b/sentryd/internal/config"
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/selfset"
	"github.com/ehrlich-b/sentryd/internal/stall"
	"github.com/ehrlich-b/sentryd/internal/table"
)

// Adapter bundles the handles every per-kind adapter function needs.
// It holds no per-call state; one Adapter serves every hook kind and
// every originating task, matching "explicit handles
// passed through the adapter" re-architecture away from global
// singletons for table and config.
type Adapter struct {
	Config     *config.Manager
	Factory    *event.Factory
	Table      *table.Table
	Engine     *stall.Engine
	Self       *selfset.Set
	TaskCache  *cache.TaskCache
	InodeCache *cache.InodeCache
}

// New constructs an Adapter over the given component handles.
func New(cfg *config.Manager, factory *event.Factory, tbl *table.Table, engine *stall.Engine, self *selfset.Set, taskCache *cache.TaskCache, inodeCache *cache.InodeCache) *Adapter {
	return &Adapter{
		Config:     cfg,
		Factory:    factory,
		Table:      tbl,
		Engine:     engine,
		Self:       self,
		TaskCache:  taskCache,
		InodeCache: inodeCache,
	}
}

// Decision carries everything the shared skeleton (steps 1, 3, 4, 6 of
// ) needs beyond the kind-specific filter and payload,
// which the calling per-kind function has already applied by the time
// it builds a Decision.
type Decision struct {
	TID    uint32
	PGID   uint32 // originating task's process group, for SELF detection
	Kind   event.Kind
	HookID uint16

	// NeverStall marks hooks that refuse to stall regardless of SELF
	// (step 3: CLOSE, SIGNAL, CLONE, EXIT, TASK_FREE, PTRACE-attach).
	NeverStall bool
	Priority   event.Priority
	TaskDone   <-chan struct{}

	// CacheLookup/CacheRecord are nil when this kind's payload must
	// always be reported for audit (step 4: "consult the cache only
	// when it is safe to"). When non-nil they back a single Task or
	// Inode cache key already scoped by the caller.
	CacheLookup func() (cache.Verdict, time.Duration, bool)
	CacheRecord func(cache.Verdict)

	// Build constructs the Event once report_flags are known (step 5).
	// ok=false means "not applicable" per the Factory's contract
	// and short-circuits to ALLOW.
	Build func(flags event.ReportFlag) (ev *event.Event, ok bool)
}

// Run executes the shared skeleton over d: hook-enabled gating, AUDIT
// always, clearing STALL for SELF or NeverStall kinds, the cache
// short-circuit, the Factory call, and finally the stall-or-enqueue
// branch.
func (a *Adapter) Run(d Decision) (stall.Verdict, error) {
	cfg := a.Config.Snapshot()

	if !hookEnabled(cfg.EnabledHooks, d.Kind) {
		return stall.VerdictAllow, nil
	}

	isSelf := a.Self.Contains(d.PGID)

	flags := event.FlagAudit
	if isSelf {
		flags |= event.FlagSelf
	} else if !d.NeverStall {
		flags |= event.FlagStall
	}

	if !isSelf && d.CacheLookup != nil {
		if v, _, ok := d.CacheLookup(); ok {
			if v == cache.Deny {
				return stall.VerdictDeny, nil
			}
			return stall.VerdictAllow, nil
		}
	}

	ev, ok := d.Build(flags)
	if !ok {
		return stall.VerdictAllow, nil
	}

	if !ev.MustStall() {
		if a.Table.EnqueueNonStall(ev, d.Priority) == 0 {
			ev.Release()
		}
		return stall.VerdictAllow, nil
	}

	verdict, err := a.Engine.Stall(d.TaskDone, ev)
	if err != nil {
		// Every engine error (Disabled, NoResources, ...) degrades to
		// ALLOW fail-open policy; the error is for
		// logging/metrics at the call site, not decision-making here.
		return stall.VerdictAllow, nil
	}
	if !isSelf && d.CacheRecord != nil {
		cv := cache.Allow
		if verdict == stall.VerdictDeny {
			cv = cache.Deny
		}
		d.CacheRecord(cv)
	}
	return verdict, nil
}

func hookEnabled(mask uint64, k event.Kind) bool {
	return mask&(uint64(1)<<uint(k)) != 0
}
