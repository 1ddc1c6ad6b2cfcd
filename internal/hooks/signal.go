package hooks

import (
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// Signal adapts a SIGNAL hook call. SIGNAL may run in an atomic
// context and never stalls; it only ever enqueues an audit record.
func (a *Adapter) Signal(tid, pgid uint32, hookID uint16, p event.SignalPayload, taskDone <-chan struct{}) (stall.Verdict, error) {
	return a.Run(Decision{
		TID:        tid,
		PGID:       pgid,
		Kind:       event.Signal,
		HookID:     hookID,
		NeverStall: true,
		Priority:   event.NormalPriority,
		TaskDone:   taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.Signal(tid, hookID, flags, p)
		},
	})
}
