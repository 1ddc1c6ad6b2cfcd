package delivery

import (
	"context"
	"time"

	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// Table is the narrow slice of the Stall Table's contract the Delivery
// Surface depends on.
type Table interface {
	DequeueBatch(ctx context.Context, maxEvents int) ([]*event.Event, error)
	Resolve(requestID uint64, response stall.Response, contTimeout time.Duration) bool
}

// Surface is the Delivery Surface: a blocking batch read of queued
// events and a non-blocking write of verdicts back into the table.
type Surface struct {
	table Table
}

// NewSurface wires a Surface to a Table implementation.
func NewSurface(t Table) *Surface { return &Surface{table: t} }

// ReadBatch blocks, respecting ctx, until at least one event is
// available or the table's partial-timeout batching returns early; it
// drains up to maxEvents and returns the wire-encoded concatenation
// alongside the event count. Every drained event is released
// immediately after encoding — once serialized, the Go-side Event has
// served its purpose.
func (s *Surface) ReadBatch(ctx context.Context, maxEvents int) ([]byte, int, error) {
	evs, err := s.table.DequeueBatch(ctx, maxEvents)
	if err != nil {
		return nil, 0, err
	}
	var out []byte
	n := 0
	for _, ev := range evs {
		enc, encErr := EncodeEvent(ev)
		ev.Release()
		if encErr != nil {
			continue
		}
		out = append(out, enc...)
		n++
	}
	return out, n, nil
}

// Write parses buf as a concatenation of Response wire messages and
// routes each to table.Resolve by request_id. A response referencing
// an unknown or already-finished request_id is accepted silently —
// Write never blocks.
func (s *Surface) Write(buf []byte) (applied int, err error) {
	for len(buf) >= responseLen {
		wr, derr := DecodeResponse(buf[:responseLen])
		if derr != nil {
			return applied, derr
		}
		buf = buf[responseLen:]

		resp, contTimeout := wireToResponse(wr)
		if s.table.Resolve(wr.RequestID, resp, contTimeout) {
			applied++
		}
	}
	return applied, nil
}

func wireToResponse(wr WireResponse) (stall.Response, time.Duration) {
	var r stall.Response
	switch wr.Response {
	case WireDeny:
		r = stall.Deny
	case WireContinue:
		r = stall.Continue
	default:
		r = stall.Allow
	}
	return r, time.Duration(wr.ContinueMS) * time.Millisecond
}
