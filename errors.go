package sentryd

import (
	"errors"
	"fmt"

	"github.com/ehrlich-b/sentryd/internal/event"
)

// Code is the high-level error category a core operation failed with.
type Code string

const (
	CodeNoResources Code = "no resources"
	CodeDisabled    Code = "disabled"
	CodeDuplicate   Code = "duplicate request id"
	CodeInterrupted Code = "interrupted"
	CodeTimedOut    Code = "timed out"
	CodeQueueFull   Code = "queue full"
)

// Error is a structured core error with enough context to log without
// string-parsing.
type Error struct {
	Op        string
	Kind      event.Kind
	HasKind   bool
	RequestID uint64
	Code      Code
	Msg       string
	Inner     error
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.HasKind {
		parts = append(parts, fmt.Sprintf("kind=%s", e.Kind))
	}
	if e.RequestID != 0 {
		parts = append(parts, fmt.Sprintf("request_id=%d", e.RequestID))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("sentryd: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("sentryd: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error { return e.Inner }

// Is compares by Code, matching the prior errors.go equality rule.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// NewError creates a structured error with no event context.
func NewError(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// NewEventError creates a structured error scoped to a specific event.
func NewEventError(op string, kind event.Kind, requestID uint64, code Code, msg string) *Error {
	return &Error{Op: op, Kind: kind, HasKind: true, RequestID: requestID, Code: code, Msg: msg}
}

// WrapError wraps inner with op, preserving Code/context if inner is
// already a structured Error.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if se, ok := inner.(*Error); ok {
		return &Error{
			Op:        op,
			Kind:      se.Kind,
			HasKind:   se.HasKind,
			RequestID: se.RequestID,
			Code:      se.Code,
			Msg:       se.Msg,
			Inner:     se.Inner,
		}
	}
	return &Error{Op: op, Code: CodeNoResources, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err is a structured Error with the given Code.
func IsCode(err error, code Code) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
