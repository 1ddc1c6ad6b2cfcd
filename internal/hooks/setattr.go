package hooks

import (
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// Setattr adapts a SETATTR hook call. The redundant-change filter lives
// in event.SetattrPayload.Changed, consulted by the Factory itself
//; Setattr here only needs to forward the
// candidate payload and let the Factory's ok=false discard it.
func (a *Adapter) Setattr(tid, pgid uint32, hookID uint16, p event.SetattrPayload, taskDone <-chan struct{}) (stall.Verdict, error) {
	return a.Run(Decision{
		TID:      tid,
		PGID:     pgid,
		Kind:     event.Setattr,
		HookID:   hookID,
		Priority: event.NormalPriority,
		TaskDone: taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.Setattr(tid, hookID, flags, p)
		},
	})
}
