package hooks

import (
	"time"

	"github.com/ehrlich-b/sentryd/internal/cache"
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// Exec adapts an EXEC hook call. EXEC is high-frequency for long-lived
// interpreters re-execing themselves, so it is one of the two kinds
// (the other being OPEN) permitted to consult the Inode Cache — a hit
// means this inode was already ruled on recently and needn't be
// reported again.
func (a *Adapter) Exec(tid, pgid uint32, hookID uint16, inodeID uint64, path []byte, taskDone <-chan struct{}) (stall.Verdict, error) {
	return a.Run(Decision{
		TID:      tid,
		PGID:     pgid,
		Kind:     event.Exec,
		HookID:   hookID,
		Priority: event.NormalPriority,
		TaskDone: taskDone,
		CacheLookup: func() (cache.Verdict, time.Duration, bool) {
			return a.InodeCache.Lookup(tid, inodeID, event.Exec)
		},
		CacheRecord: func(v cache.Verdict) {
			a.InodeCache.Insert(tid, inodeID, event.Exec, v)
		},
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.Exec(tid, hookID, flags, path)
		},
	})
}
