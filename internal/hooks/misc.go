package hooks

import (
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// Mkdir, Create, Link, and Symlink have no kind-specific filter in
// table; every call that reaches the adapter produces
// an event, subject only to the shared skeleton (enabled_hooks, SELF,
// stall-or-enqueue).

// Mkdir adapts a MKDIR hook call.
func (a *Adapter) Mkdir(tid, pgid uint32, hookID uint16, path []byte, mode uint32, taskDone <-chan struct{}) (stall.Verdict, error) {
	return a.Run(Decision{
		TID:      tid,
		PGID:     pgid,
		Kind:     event.Mkdir,
		HookID:   hookID,
		Priority: event.NormalPriority,
		TaskDone: taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.Mkdir(tid, hookID, flags, path, mode)
		},
	})
}

// Create adapts a CREATE hook call.
func (a *Adapter) Create(tid, pgid uint32, hookID uint16, path []byte, mode uint32, taskDone <-chan struct{}) (stall.Verdict, error) {
	return a.Run(Decision{
		TID:      tid,
		PGID:     pgid,
		Kind:     event.Create,
		HookID:   hookID,
		Priority: event.NormalPriority,
		TaskDone: taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.Create(tid, hookID, flags, path, mode)
		},
	})
}

// Link adapts a LINK (hard link) hook call.
func (a *Adapter) Link(tid, pgid uint32, hookID uint16, oldPath, newPath []byte, taskDone <-chan struct{}) (stall.Verdict, error) {
	return a.Run(Decision{
		TID:      tid,
		PGID:     pgid,
		Kind:     event.Link,
		HookID:   hookID,
		Priority: event.NormalPriority,
		TaskDone: taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.Link(tid, hookID, flags, oldPath, newPath)
		},
	})
}

// Symlink adapts a SYMLINK hook call.
func (a *Adapter) Symlink(tid, pgid uint32, hookID uint16, target, linkPath []byte, taskDone <-chan struct{}) (stall.Verdict, error) {
	return a.Run(Decision{
		TID:      tid,
		PGID:     pgid,
		Kind:     event.Symlink,
		HookID:   hookID,
		Priority: event.NormalPriority,
		TaskDone: taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.Symlink(tid, hookID, flags, target, linkPath)
		},
	})
}
