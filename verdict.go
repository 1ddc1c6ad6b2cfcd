package sentryd

import (
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// Verdict is the hook's returned decision to the OS.
type Verdict = stall.Verdict

const (
	Allow Verdict = stall.VerdictAllow
	Deny  Verdict = stall.VerdictDeny
)

// Response is a user-space reply to a stalling event.
type Response = stall.Response

const (
	ResponseAllow    Response = stall.Allow
	ResponseDeny     Response = stall.Deny
	ResponseContinue Response = stall.Continue
)

// ReportFlag is the bitset attached to every Event.
type ReportFlag = event.ReportFlag

const (
	FlagAudit       ReportFlag = event.FlagAudit
	FlagStall       ReportFlag = event.FlagStall
	FlagSelf        ReportFlag = event.FlagSelf
	FlagIgnore      ReportFlag = event.FlagIgnore
	FlagLowPriority ReportFlag = event.FlagLowPriority
)

// Kind identifies the hook operation that produced an Event.
type Kind = event.Kind

const (
	Exec     Kind = event.Exec
	Unlink   Kind = event.Unlink
	Rmdir    Kind = event.Rmdir
	Rename   Kind = event.Rename
	Setattr  Kind = event.Setattr
	Mkdir    Kind = event.Mkdir
	Create   Kind = event.Create
	Link     Kind = event.Link
	Symlink  Kind = event.Symlink
	Open     Kind = event.Open
	Close    Kind = event.Close
	Mmap     Kind = event.Mmap
	Ptrace   Kind = event.Ptrace
	Signal   Kind = event.Signal
	Clone    Kind = event.Clone
	Exit     Kind = event.Exit
	TaskFree Kind = event.TaskFree
)
