package hooks

import (
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// TaskFree adapts a TASK_FREE hook call — kernel-internal cleanup
// notification, never stalls, low-priority audit only.
func (a *Adapter) TaskFree(tid, pgid uint32, hookID uint16, pid uint32, taskDone <-chan struct{}) (stall.Verdict, error) {
	return a.Run(Decision{
		TID:        tid,
		PGID:       pgid,
		Kind:       event.TaskFree,
		HookID:     hookID,
		NeverStall: true,
		Priority:   event.LowPriority,
		TaskDone:   taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.TaskFree(tid, hookID, flags, pid)
		},
	})
}
