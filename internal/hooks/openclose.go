package hooks

import (
	"time"

	"github.com/ehrlich-b/sentryd/internal/cache"
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

func openCloseUninteresting(p event.OpenClosePayload) bool {
	if !p.IsRegular {
		return true
	}
	if p.NoNotify && !p.Writable {
		return true
	}
	return false
}

// Open adapts an OPEN hook call. Like Exec, OPEN is permitted to
// consult the Inode Cache since a hit means this
// file was already ruled on for this task recently.
func (a *Adapter) Open(tid, pgid uint32, hookID uint16, inodeID uint64, p event.OpenClosePayload, taskDone <-chan struct{}) (stall.Verdict, error) {
	if openCloseUninteresting(p) {
		return stall.VerdictAllow, nil
	}
	return a.Run(Decision{
		TID:      tid,
		PGID:     pgid,
		Kind:     event.Open,
		HookID:   hookID,
		Priority: event.NormalPriority,
		TaskDone: taskDone,
		CacheLookup: func() (cache.Verdict, time.Duration, bool) {
			return a.InodeCache.Lookup(tid, inodeID, event.Open)
		},
		CacheRecord: func(v cache.Verdict) {
			a.InodeCache.Insert(tid, inodeID, event.Open, v)
		},
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.OpenClose(tid, event.Open, hookID, flags, p)
		},
	})
}

// Close adapts a CLOSE hook call. CLOSE may run in an atomic context
// and never stalls; it only ever enqueues an audit record.
func (a *Adapter) Close(tid, pgid uint32, hookID uint16, p event.OpenClosePayload, taskDone <-chan struct{}) (stall.Verdict, error) {
	if openCloseUninteresting(p) {
		return stall.VerdictAllow, nil
	}
	return a.Run(Decision{
		TID:        tid,
		PGID:       pgid,
		Kind:       event.Close,
		HookID:     hookID,
		NeverStall: true,
		Priority:   event.NormalPriority,
		TaskDone:   taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.OpenClose(tid, event.Close, hookID, flags, p)
		},
	})
}
