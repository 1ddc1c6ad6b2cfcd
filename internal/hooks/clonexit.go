package hooks

import (
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// CloneExit adapts a CLONE or EXIT hook call. Thread-level events
// (thread_group_id != pid) are dropped; only process-level events are
// reported. Both kinds never stall. A kprobe-sourced CLONE is an OS
// quirk reported at low priority and audit-only, same as EXIT.
func (a *Adapter) CloneExit(tid, pgid uint32, kind event.Kind, hookID uint16, p event.CloneExitPayload, taskDone <-chan struct{}) (stall.Verdict, error) {
	if p.IsThread {
		return stall.VerdictAllow, nil
	}

	priority := event.NormalPriority
	if kind == event.Exit || (kind == event.Clone && p.FromKprobe) {
		priority = event.LowPriority
	}

	return a.Run(Decision{
		TID:        tid,
		PGID:       pgid,
		Kind:       kind,
		HookID:     hookID,
		NeverStall: true,
		Priority:   priority,
		TaskDone:   taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.CloneExit(tid, kind, hookID, flags, p)
		},
	})
}
