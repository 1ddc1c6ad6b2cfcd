package event

// Factory allocates the correctly-shaped Event for a given kind
//. Every filler is infallible in the shape it produces;
// some return ok=false to signal "not applicable, discard" so the
// calling adapter can skip the table/stall path entirely.
//
// Factory holds no mutable state today — kept as a named type (rather
// than free functions) so a future variant can own per-kind buffer
// pools or counters without changing call sites.
type Factory struct{}

// NewFactory returns a ready-to-use Factory.
func NewFactory() *Factory { return &Factory{} }

func newEvent(tid uint32, kind Kind, hookID uint16, flags ReportFlag, payload Payload) *Event {
	return &Event{
		TID:     tid,
		Kind:    kind,
		HookID:  hookID,
		Flags:   flags,
		Payload: payload,
	}
}

// Exec builds an EXEC event.
func (f *Factory) Exec(tid uint32, hookID uint16, flags ReportFlag, path []byte) (*Event, bool) {
	return newEvent(tid, Exec, hookID, flags, &ExecPayload{Path: NewPathBuf(path)}), true
}

// Unlink builds an UNLINK or RMDIR event (hookID distinguishes which
// syscall produced it, e.g. UNLINK vs RMDIR reusing the same payload).
func (f *Factory) Unlink(tid uint32, kind Kind, hookID uint16, flags ReportFlag, path []byte, isDir bool) (*Event, bool) {
	return newEvent(tid, kind, hookID, flags, &UnlinkPayload{Path: NewPathBuf(path), IsDir: isDir}), true
}

// Rename builds a RENAME event.
func (f *Factory) Rename(tid uint32, hookID uint16, flags ReportFlag, oldPath, newPath []byte) (*Event, bool) {
	return newEvent(tid, Rename, hookID, flags, &RenamePayload{
		OldPath: NewPathBuf(oldPath),
		NewPath: NewPathBuf(newPath),
	}), true
}

// Setattr builds a SETATTR event, returning ok=false when no masked
// field actually changes — the one factory-level "not applicable" case.
func (f *Factory) Setattr(tid uint32, hookID uint16, flags ReportFlag, p SetattrPayload) (*Event, bool) {
	if !p.Changed() {
		return nil, false
	}
	cp := p
	cp.Path = NewPathBuf(p.Path)
	return newEvent(tid, Setattr, hookID, flags, &cp), true
}

// Mkdir builds a MKDIR event.
func (f *Factory) Mkdir(tid uint32, hookID uint16, flags ReportFlag, path []byte, mode uint32) (*Event, bool) {
	return newEvent(tid, Mkdir, hookID, flags, &MkdirPayload{Path: NewPathBuf(path), Mode: mode}), true
}

// Create builds a CREATE event.
func (f *Factory) Create(tid uint32, hookID uint16, flags ReportFlag, path []byte, mode uint32) (*Event, bool) {
	return newEvent(tid, Create, hookID, flags, &CreatePayload{Path: NewPathBuf(path), Mode: mode}), true
}

// Link builds a LINK event.
func (f *Factory) Link(tid uint32, hookID uint16, flags ReportFlag, oldPath, newPath []byte) (*Event, bool) {
	return newEvent(tid, Link, hookID, flags, &LinkPayload{
		OldPath: NewPathBuf(oldPath),
		NewPath: NewPathBuf(newPath),
	}), true
}

// Symlink builds a SYMLINK event.
func (f *Factory) Symlink(tid uint32, hookID uint16, flags ReportFlag, target, linkPath []byte) (*Event, bool) {
	return newEvent(tid, Symlink, hookID, flags, &SymlinkPayload{
		Target:   NewPathBuf(target),
		LinkPath: NewPathBuf(linkPath),
	}), true
}

// OpenClose builds an OPEN or CLOSE event.
func (f *Factory) OpenClose(tid uint32, kind Kind, hookID uint16, flags ReportFlag, p OpenClosePayload) (*Event, bool) {
	cp := p
	cp.Path = NewPathBuf(p.Path)
	return newEvent(tid, kind, hookID, flags, &cp), true
}

// Mmap builds an MMAP event.
func (f *Factory) Mmap(tid uint32, hookID uint16, flags ReportFlag, p MmapPayload) (*Event, bool) {
	cp := p
	cp.Path = NewPathBuf(p.Path)
	return newEvent(tid, Mmap, hookID, flags, &cp), true
}

// Ptrace builds a PTRACE event.
func (f *Factory) Ptrace(tid uint32, hookID uint16, flags ReportFlag, p PtracePayload) (*Event, bool) {
	return newEvent(tid, Ptrace, hookID, flags, &p), true
}

// Signal builds a SIGNAL event.
func (f *Factory) Signal(tid uint32, hookID uint16, flags ReportFlag, p SignalPayload) (*Event, bool) {
	return newEvent(tid, Signal, hookID, flags, &p), true
}

// CloneExit builds a CLONE or EXIT event; the two share the same
// payload shape.
func (f *Factory) CloneExit(tid uint32, kind Kind, hookID uint16, flags ReportFlag, p CloneExitPayload) (*Event, bool) {
	return newEvent(tid, kind, hookID, flags, &p), true
}

// TaskFree builds a TASK_FREE event.
func (f *Factory) TaskFree(tid uint32, hookID uint16, flags ReportFlag, pid uint32) (*Event, bool) {
	return newEvent(tid, TaskFree, hookID, flags, &TaskFreePayload{PID: pid}), true
}
