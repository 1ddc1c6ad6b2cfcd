package stall

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ehrlich-b/sentryd/internal/config"
	"github.com/ehrlich-b/sentryd/internal/event"
)

// Errors the engine returns to its caller (the hook adapter). Callers
// are expected to map every one of these to ALLOW except where noted
// below.
var (
	// ErrDisabled is returned when the engine is asked to stall while
	// stall mode is off or the table itself is disabled.
	ErrDisabled = errors.New("stall: engine disabled")
	// ErrDisabledMidWait is returned as the distinct indicator for when
	// stall mode is turned off while a wait is already in flight.
	ErrDisabledMidWait = errors.New("stall: disabled while waiting")
	// ErrNoResources is returned when the table has no room for a new
	// entry.
	ErrNoResources = errors.New("stall: no resources")
)

// Table is the narrow slice of the Stall Table's contract the engine
// depends on. Defined here, rather
// than imported from package table, so stall has no dependency on
// table's queue/sharding internals — table depends on stall, not the
// reverse.
type Table interface {
	Insert(ev *event.Event, defaultResponse Response) (*Entry, error)
	Remove(requestID uint64)
	Enabled() bool
}

// Engine implements the stall() contract: blocking an originating task
// until a user-space response arrives, a timeout elapses, or stall
// mode is turned off mid-wait.
type Engine struct {
	table  Table
	cfgMgr *config.Manager

	mu          sync.Mutex
	disableDone chan struct{}
}

// NewEngine wires an Engine to its Table and Config manager, and
// registers a stall-mode flush hook so any wait in flight aborts
// immediately (ALLOW, ErrDisabledMidWait) the instant stall mode is
// turned off — "During the wait, if ... global stalling
// turned off, abort the wait, remove, and return ALLOW" edge case.
func NewEngine(table Table, cfgMgr *config.Manager) *Engine {
	e := &Engine{
		table:       table,
		cfgMgr:      cfgMgr,
		disableDone: closedChan(),
	}
	if cfgMgr.Snapshot().StallMode {
		e.disableDone = make(chan struct{})
	}
	cfgMgr.OnStallModeFlush(func(next config.Config) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if next.StallMode {
			e.disableDone = make(chan struct{})
		} else {
			close(e.disableDone)
		}
	})
	return e
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (e *Engine) disableWatch() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disableDone
}

// Stall blocks the calling goroutine (standing in for the originating
// kernel task) until a user-space response arrives, the configured
// timeout elapses, taskDone fires (a pending task signal), or the
// engine is globally disabled, including the continuation re-arm and
// the 256-round cap.
//
// taskDone should be a channel that closes when the originating task
// would be interrupted by a pending signal — typically ctx.Done() of a
// context scoped to that task.
func (e *Engine) Stall(taskDone <-chan struct{}, ev *event.Event) (Verdict, error) {
	cfg := e.cfgMgr.Snapshot()

	if ev.Ignorable() && cfg.IgnoreMode {
		ev.Release()
		return VerdictAllow, nil
	}

	if !cfg.StallMode || !e.table.Enabled() {
		ev.Release()
		return VerdictAllow, ErrDisabled
	}

	defaultResp := Allow
	if cfg.DenyOnTimeout {
		defaultResp = Deny
	}

	entry, err := e.table.Insert(ev, defaultResp)
	if err != nil {
		ev.Release()
		return VerdictAllow, err
	}

	timeout := cfg.StallTimeout
	continues := 0
	var final Response
	disabledMidWait := false

outer:
	for {
		outcome := entry.waitRound(taskDone, e.disableWatch(), timeout)
		switch outcome.kind {
		case outcomeTimedOut, outcomeInterrupted:
			final = entry.DefaultResponse()
			break outer
		case outcomeDisabled:
			disabledMidWait = true
			break outer
		case outcomeReleased:
			if outcome.response == Continue {
				continues++
				if continues >= config.MaxContinues {
					final = Deny
					break outer
				}
				if outcome.contTimeout > 0 {
					timeout = outcome.contTimeout
				} else {
					timeout = cfg.ContinueTimeout
				}
				continue outer
			}
			final = outcome.response
			break outer
		}
	}

	e.table.Remove(entry.RequestID)
	ev.Release()

	if disabledMidWait {
		return VerdictAllow, ErrDisabledMidWait
	}
	return mapVerdict(final), nil
}

func mapVerdict(r Response) Verdict {
	if r == Deny {
		return VerdictDeny
	}
	return VerdictAllow
}

// BoundedWait is the documented upper bound on a single stall's total
// wait time,
// exposed for tests and operational dashboards.
func BoundedWait(cfg config.Config) time.Duration {
	return cfg.StallTimeout + time.Duration(config.MaxContinues)*cfg.ContinueTimeout
}
