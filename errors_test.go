package sentryd

import (
	"errors"
	"testing"

	"github.com/ehrlich-b/sentryd/internal/event"
)

func TestStructuredError(t *testing.T) {
	err := NewError("CONFIGURE", CodeNoResources, "no free shard slots")

	if err.Op != "CONFIGURE" {
		t.Errorf("Expected Op=CONFIGURE, got %s", err.Op)
	}
	if err.Code != CodeNoResources {
		t.Errorf("Expected Code=CodeNoResources, got %s", err.Code)
	}

	expected := "sentryd: no free shard slots (op=CONFIGURE)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestEventError(t *testing.T) {
	err := NewEventError("STALL", event.Exec, 42, CodeTimedOut, "")

	if err.RequestID != 42 {
		t.Errorf("Expected RequestID=42, got %d", err.RequestID)
	}
	if !err.HasKind || err.Kind != event.Exec {
		t.Errorf("Expected Kind=Exec, got %v (has=%v)", err.Kind, err.HasKind)
	}

	expected := "sentryd: timed out (op=STALL)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestWrapError(t *testing.T) {
	inner := errors.New("table full")
	err := WrapError("ENQUEUE", inner)

	if err.Code != CodeNoResources {
		t.Errorf("Expected Code=CodeNoResources, got %s", err.Code)
	}
	if !errors.Is(err, inner) {
		t.Error("Expected wrapped error to satisfy errors.Is for the inner error")
	}
}

func TestWrapErrorPreservesStructuredCode(t *testing.T) {
	inner := NewError("STALL", CodeTimedOut, "deadline exceeded")
	err := WrapError("RUN", inner)

	if err.Code != CodeTimedOut {
		t.Errorf("Expected wrapping to preserve Code=CodeTimedOut, got %s", err.Code)
	}
	if err.Op != "RUN" {
		t.Errorf("Expected Op to be overwritten to RUN, got %s", err.Op)
	}
}

func TestIsCode(t *testing.T) {
	err := NewError("TEST", CodeTimedOut, "operation timed out")

	if !IsCode(err, CodeTimedOut) {
		t.Error("IsCode should return true for matching code")
	}
	if IsCode(err, CodeQueueFull) {
		t.Error("IsCode should return false for non-matching code")
	}
	if IsCode(nil, CodeTimedOut) {
		t.Error("IsCode should return false for nil error")
	}
}

func TestErrorIsComparesByCode(t *testing.T) {
	a := &Error{Op: "A", Code: CodeDisabled}
	b := &Error{Op: "B", Code: CodeDisabled}
	c := &Error{Op: "C", Code: CodeDuplicate}

	if !errors.Is(a, b) {
		t.Error("errors with the same Code should satisfy errors.Is")
	}
	if errors.Is(a, c) {
		t.Error("errors with different Codes should not satisfy errors.Is")
	}
}
