package hooks

import (
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// Ptrace adapts a PTRACE hook call. Only attach requests are
// interesting; a request where both the child and the originator
// belong to the agent is dropped as a loop guard (the agent attaching
// to its own helper processes should never generate audit noise about
// itself). PTRACE-attach is one of the hooks that never stalls
// regardless of SELF.
func (a *Adapter) Ptrace(tid, pgid uint32, hookID uint16, p event.PtracePayload, taskDone <-chan struct{}) (stall.Verdict, error) {
	if p.Mode != event.PtraceAttach {
		return stall.VerdictAllow, nil
	}
	if a.Self.Contains(pgid) && p.ChildIsAgent {
		return stall.VerdictAllow, nil
	}

	return a.Run(Decision{
		TID:        tid,
		PGID:       pgid,
		Kind:       event.Ptrace,
		HookID:     hookID,
		NeverStall: true,
		Priority:   event.NormalPriority,
		TaskDone:   taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.Ptrace(tid, hookID, flags, p)
		},
	})
}
