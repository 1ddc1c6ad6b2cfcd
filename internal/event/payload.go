package event

// AttrMask mirrors the SETATTR field-changed bitset consulted by the
// factory's redundant-change filter.
type AttrMask uint32

const (
	AttrMode AttrMask = 1 << iota
	AttrUID
	AttrGID
	AttrSize
)

func (m AttrMask) Has(bit AttrMask) bool { return m&bit != 0 }

// PtraceMode distinguishes an attach request from other ptrace modes;
// only attach is ever interesting.
type PtraceMode uint8

const (
	PtraceAttach PtraceMode = iota
	PtraceOther
)

// ExecPayload backs EXEC events.
type ExecPayload struct {
	Path []byte
}

func (*ExecPayload) isPayload() {}
func (p *ExecPayload) release() { putPathBuf(p.Path) }

// UnlinkPayload backs UNLINK and RMDIR events; HookID on the owning
// Event distinguishes which syscall produced it.
type UnlinkPayload struct {
	Path  []byte
	IsDir bool
}

func (*UnlinkPayload) isPayload() {}
func (p *UnlinkPayload) release() { putPathBuf(p.Path) }

// RenamePayload backs RENAME events.
type RenamePayload struct {
	OldPath []byte
	NewPath []byte
}

func (*RenamePayload) isPayload() {}
func (p *RenamePayload) release() {
	putPathBuf(p.OldPath)
	putPathBuf(p.NewPath)
}

// SetattrPayload backs SETATTR events. CurrentMode/CurrentUID/... carry
// the inode's existing values so the factory/filter can detect no-op
// changes.
type SetattrPayload struct {
	Path        []byte
	Mask        AttrMask
	Mode        uint32
	UID         uint32
	GID         uint32
	Size        uint64
	CurrentMode uint32
	CurrentUID  uint32
	CurrentGID  uint32
	CurrentSize uint64
}

func (*SetattrPayload) isPayload() {}
func (p *SetattrPayload) release() { putPathBuf(p.Path) }

// Changed reports whether any masked field actually differs from the
// inode's current value, treating size==0 as interesting truncation
// only if the current size is nonzero.
func (p *SetattrPayload) Changed() bool {
	if p.Mask.Has(AttrMode) && p.Mode != p.CurrentMode {
		return true
	}
	if p.Mask.Has(AttrUID) && p.UID != p.CurrentUID {
		return true
	}
	if p.Mask.Has(AttrGID) && p.GID != p.CurrentGID {
		return true
	}
	if p.Mask.Has(AttrSize) {
		if p.Size == 0 {
			return p.CurrentSize != 0
		}
		return p.Size != p.CurrentSize
	}
	return false
}

// MkdirPayload backs MKDIR events.
type MkdirPayload struct {
	Path []byte
	Mode uint32
}

func (*MkdirPayload) isPayload() {}
func (p *MkdirPayload) release() { putPathBuf(p.Path) }

// CreatePayload backs CREATE events.
type CreatePayload struct {
	Path []byte
	Mode uint32
}

func (*CreatePayload) isPayload() {}
func (p *CreatePayload) release() { putPathBuf(p.Path) }

// LinkPayload backs LINK events.
type LinkPayload struct {
	OldPath []byte
	NewPath []byte
}

func (*LinkPayload) isPayload() {}
func (p *LinkPayload) release() {
	putPathBuf(p.OldPath)
	putPathBuf(p.NewPath)
}

// SymlinkPayload backs SYMLINK events.
type SymlinkPayload struct {
	Target  []byte
	LinkPath []byte
}

func (*SymlinkPayload) isPayload() {}
func (p *SymlinkPayload) release() {
	putPathBuf(p.Target)
	putPathBuf(p.LinkPath)
}

// OpenClosePayload backs OPEN and CLOSE events.
type OpenClosePayload struct {
	Path       []byte
	Flags      uint32
	Writable   bool
	NoNotify   bool
	IsRegular  bool
}

func (*OpenClosePayload) isPayload() {}
func (p *OpenClosePayload) release() { putPathBuf(p.Path) }

// MmapPayload backs MMAP events.
type MmapPayload struct {
	Path       []byte
	Prot       uint32
	Flags      uint32
	IsLdso     bool
	IsSelfExec bool
}

func (*MmapPayload) isPayload() {}
func (p *MmapPayload) release() { putPathBuf(p.Path) }

const (
	ProtExec = 1 << 2 // mirrors PROT_EXEC
)

// PtracePayload backs PTRACE events.
type PtracePayload struct {
	Mode          PtraceMode
	ChildTID      uint32
	ChildIsAgent  bool
}

func (*PtracePayload) isPayload() {}

// SignalPayload backs SIGNAL events.
type SignalPayload struct {
	Signo     int32
	TargetTID uint32
}

func (*SignalPayload) isPayload() {}

// CloneExitPayload backs CLONE and EXIT events.
type CloneExitPayload struct {
	ParentPID     uint32
	ChildPID      uint32
	ThreadGroupID uint32
	IsThread      bool
	FromKprobe    bool
}

func (*CloneExitPayload) isPayload() {}

// TaskFreePayload backs TASK_FREE events.
type TaskFreePayload struct {
	PID uint32
}

func (*TaskFreePayload) isPayload() {}

// approxPayloadSize implementations back Event.ApproxSize; each returns
// roughly the inline variable-length bytes (paths) plus a small
// constant for fixed fields, close enough to the real wire shape for
// high-water-mark accounting without needing the real encoder.
func (p *ExecPayload) approxPayloadSize() int       { return len(p.Path) }
func (p *UnlinkPayload) approxPayloadSize() int     { return len(p.Path) + 1 }
func (p *RenamePayload) approxPayloadSize() int     { return len(p.OldPath) + len(p.NewPath) }
func (p *SetattrPayload) approxPayloadSize() int    { return len(p.Path) + 24 }
func (p *MkdirPayload) approxPayloadSize() int      { return len(p.Path) + 4 }
func (p *CreatePayload) approxPayloadSize() int     { return len(p.Path) + 4 }
func (p *LinkPayload) approxPayloadSize() int       { return len(p.OldPath) + len(p.NewPath) }
func (p *SymlinkPayload) approxPayloadSize() int    { return len(p.Target) + len(p.LinkPath) }
func (p *OpenClosePayload) approxPayloadSize() int  { return len(p.Path) + 8 }
func (p *MmapPayload) approxPayloadSize() int       { return len(p.Path) + 8 }
func (p *PtracePayload) approxPayloadSize() int     { return 8 }
func (p *SignalPayload) approxPayloadSize() int     { return 8 }
func (p *CloneExitPayload) approxPayloadSize() int  { return 16 }
func (p *TaskFreePayload) approxPayloadSize() int   { return 4 }
