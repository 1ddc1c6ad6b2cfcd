// Package event defines the immutable Event descriptor created at hook
// time and the tagged-variant payload model that replaces
// the source's downcast-from-base-struct pattern.
package event

// Kind identifies the originating operation. Two kinds may share a
// HookID family (e.g. UNLINK/RMDIR reuse the same payload shape) but
// Kind always distinguishes the wire event_type.
type Kind uint16

const (
	Exec Kind = iota
	Unlink
	Rmdir
	Rename
	Setattr
	Mkdir
	Create
	Link
	Symlink
	Open
	Close
	Mmap
	Ptrace
	Signal
	Clone
	Exit
	TaskFree
)

// String renders a Kind for logs without requiring a dependency on fmt.Stringer
// consumers; kept small and explicit rather than reflection-based.
func (k Kind) String() string {
	switch k {
	case Exec:
		return "EXEC"
	case Unlink:
		return "UNLINK"
	case Rmdir:
		return "RMDIR"
	case Rename:
		return "RENAME"
	case Setattr:
		return "SETATTR"
	case Mkdir:
		return "MKDIR"
	case Create:
		return "CREATE"
	case Link:
		return "LINK"
	case Symlink:
		return "SYMLINK"
	case Open:
		return "OPEN"
	case Close:
		return "CLOSE"
	case Mmap:
		return "MMAP"
	case Ptrace:
		return "PTRACE"
	case Signal:
		return "SIGNAL"
	case Clone:
		return "CLONE"
	case Exit:
		return "EXIT"
	case TaskFree:
		return "TASK_FREE"
	default:
		return "UNKNOWN"
	}
}

// ReportFlag is a bitset over the report-flags set.
type ReportFlag uint16

const (
	FlagAudit ReportFlag = 1 << iota
	FlagStall
	FlagSelf
	FlagIgnore
	FlagLowPriority
)

func (f ReportFlag) Has(bit ReportFlag) bool { return f&bit != 0 }

// Payload is implemented by every kind-specific payload variant. The
// marker method keeps the set closed to this package, mirroring the
// kernel source's tagged union without reintroducing an embedded-struct
// downcast.
type Payload interface {
	isPayload()
}

// Event is the immutable descriptor created by the Factory at hook time.
// It has a single owner at any time: the factory until published, the
// Stall Table/Entry while in flight, and finally the Delivery Surface
// consumer. Never copy an Event by value across ownership boundaries;
// pass the pointer.
type Event struct {
	RequestID uint64
	TID       uint32
	Kind      Kind
	HookID    uint16
	Flags     ReportFlag
	Payload   Payload
}

// Ignorable reports whether this event is a candidate for free-and-allow
// short-circuiting in the first step of stall.Engine.Stall (IGNORE flag set).
func (e *Event) Ignorable() bool {
	return e.Flags.Has(FlagIgnore)
}

// MustStall reports whether the Stall Engine should be invoked at all.
// SELF-originated events never stall.
func (e *Event) MustStall() bool {
	return e.Flags.Has(FlagStall) && !e.Flags.Has(FlagSelf)
}

// Priority reports which delivery queue a non-stalling event belongs on.
func (e *Event) Priority() Priority {
	if e.Flags.Has(FlagLowPriority) {
		return LowPriority
	}
	return NormalPriority
}

// Priority selects one of the Stall Table's two per-shard FIFOs.
type Priority int

const (
	NormalPriority Priority = iota
	LowPriority
)

// Release returns any pooled byte buffers the payload borrowed back to
// their pool. It is safe to call multiple times and on a nil Payload;
// this is the "scoped ownership" replacement for the
// source's manual free-on-error plumbing — Go's GC reclaims the Event
// itself, but buffer reuse is still explicit and observable. Release
// clears Payload, so a second call returns nothing to the pool.
func (e *Event) Release() {
	if e == nil || e.Payload == nil {
		return
	}
	if r, ok := e.Payload.(releasable); ok {
		r.release()
	}
	e.Payload = nil
}

type releasable interface {
	release()
}

// headerSize is the fixed portion of the wire header:
// request_id(8) + tid(4) + event_type(2) + hook_id(2) + report_flags(2)
// + payload_len(2).
const headerSize = 8 + 4 + 2 + 2 + 2 + 2

// ApproxSize estimates the wire size of the event for high-water-mark
// accounting in the Stall Table's queues.
// It need not be byte-exact with the real wire encoder in
// internal/delivery/wire.go, only a reasonable proxy.
func (e *Event) ApproxSize() int {
	n := headerSize
	if sized, ok := e.Payload.(interface{ approxPayloadSize() int }); ok {
		n += sized.approxPayloadSize()
	}
	return n
}
