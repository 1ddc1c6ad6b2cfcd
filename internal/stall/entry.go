// Package stall implements the rendezvous object and blocking algorithm
// that suspend an in-kernel caller until a user-space verdict or timeout
// arrives. This is the highest-budget component of the
// core.
package stall

import (
	"sync"
	"time"

	"github.com/ehrlich-b/sentryd/internal/event"
)

// Mode mirrors Stall Entry mode field.
type Mode int

const (
	Stalling Mode = iota
	Released
)

// Response mirrors Stall Entry response field.
type Response int

const (
	Allow Response = iota
	Deny
	Continue
)

func (r Response) String() string {
	switch r {
	case Allow:
		return "ALLOW"
	case Deny:
		return "DENY"
	case Continue:
		return "CONTINUE"
	default:
		return "UNKNOWN"
	}
}

// Verdict is the hook's returned decision to the OS.
type Verdict int

const (
	VerdictAllow Verdict = iota
	VerdictDeny
)

// Entry is the rendezvous object for one in-flight stalling event
//. It is shared by the blocked originator (via Stall) and
// the response path (via Resolve); its lifetime runs from insert to
// remove, and remove is idempotent.
type Entry struct {
	RequestID uint64
	TID       uint32
	Event     *event.Event // back-reference; owned by the table/engine, not copied

	defaultResponse Response

	mu          sync.Mutex
	mode        Mode
	response    Response
	contTimeout time.Duration
	notify      chan struct{}
}

// NewEntry constructs an Entry in the initial STALL mode, with response
// seeded to the configured default.
func NewEntry(requestID uint64, tid uint32, ev *event.Event, defaultResponse Response) *Entry {
	return &Entry{
		RequestID:       requestID,
		TID:             tid,
		Event:           ev,
		defaultResponse: defaultResponse,
		mode:            Stalling,
		response:        defaultResponse,
		notify:          make(chan struct{}),
	}
}

// DefaultResponse returns the response installed at construction time,
// used whenever a wait round ends by timeout or interruption.
func (e *Entry) DefaultResponse() Response {
	return e.defaultResponse
}

// Resolve implements the Stall Table's resolve operation applied to
// this entry: it records the response and optional continuation
// timeout, flips mode to RELEASED, and wakes the waiter. Resolving an
// entry that is not currently STALL (already released, or removed) is a
// no-op that reports false — this is how a late/duplicate response to
// an already-finished request is silently accepted.
func (e *Entry) Resolve(response Response, contTimeout time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != Stalling {
		return false
	}
	e.response = response
	e.contTimeout = contTimeout
	e.mode = Released
	close(e.notify)
	return true
}

type waitOutcomeKind int

const (
	outcomeReleased waitOutcomeKind = iota
	outcomeTimedOut
	outcomeInterrupted
	outcomeDisabled
)

type waitOutcome struct {
	kind        waitOutcomeKind
	response    Response
	contTimeout time.Duration
}

// waitRound blocks until the entry is released, the given timeout
// elapses, taskDone fires (a pending task signal, modeled as context
// cancellation), or disableDone fires (stall mode was globally turned
// off mid-wait). On release, it re-arms mode=STALLING so a subsequent
// CONTINUE round can be resolved again.
func (e *Entry) waitRound(taskDone, disableDone <-chan struct{}, timeout time.Duration) waitOutcome {
	e.mu.Lock()
	ch := e.notify
	e.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		e.mu.Lock()
		resp := e.response
		ct := e.contTimeout
		e.mode = Stalling
		e.notify = make(chan struct{})
		e.mu.Unlock()
		return waitOutcome{kind: outcomeReleased, response: resp, contTimeout: ct}
	case <-timer.C:
		return waitOutcome{kind: outcomeTimedOut}
	case <-taskDone:
		return waitOutcome{kind: outcomeInterrupted}
	case <-disableDone:
		return waitOutcome{kind: outcomeDisabled}
	}
}
