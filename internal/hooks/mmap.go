package hooks

import (
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// Mmap adapts an MMAP hook call. Non-executable mappings are dropped
// before allocation. Among
// executable mappings, the three categories named in open
// question — the process's own executable, the dynamic loader, and
// everything else ("misc") — each have an independently configurable
// stall policy; a misc mapping additionally may be dropped from
// reporting entirely when mmap_report_misc is off.
func (a *Adapter) Mmap(tid, pgid uint32, hookID uint16, p event.MmapPayload, taskDone <-chan struct{}) (stall.Verdict, error) {
	if p.Prot&event.ProtExec == 0 {
		return stall.VerdictAllow, nil
	}

	cfg := a.Config.Snapshot()

	var stallPolicy bool
	priority := event.NormalPriority
	switch {
	case p.IsSelfExec:
		stallPolicy = cfg.MmapStallOnExec
	case p.IsLdso:
		stallPolicy = cfg.MmapStallOnLdso
	default:
		if !cfg.MmapReportMisc {
			return stall.VerdictAllow, nil
		}
		stallPolicy = cfg.MmapStallMisc
		priority = event.LowPriority
	}

	return a.Run(Decision{
		TID:        tid,
		PGID:       pgid,
		Kind:       event.Mmap,
		HookID:     hookID,
		NeverStall: !stallPolicy,
		Priority:   priority,
		TaskDone:   taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.Mmap(tid, hookID, flags, p)
		},
	})
}
