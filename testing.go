package sentryd

import (
	"context"
	"sync"

	"github.com/ehrlich-b/sentryd/internal/delivery"
)

// FakeAgent stands in for the external user-space decision agent in
// tests: it drains an Engine's Delivery Surface in a loop and answers
// every decoded event according to a caller-supplied policy, tracking
// how many batches, events, and responses it has processed.
type FakeAgent struct {
	surface *delivery.Surface
	decide  func(delivery.DecodedHeader) delivery.WireResponse

	mu         sync.RWMutex
	batches    int
	eventsSeen int
	responses  int
	stopped    bool
}

// AllowAgent is a FakeAgent policy that answers ALLOW to everything.
func AllowAgent(delivery.DecodedHeader) delivery.WireResponse {
	return delivery.WireResponse{Response: delivery.WireAllow}
}

// DenyAgent is a FakeAgent policy that answers DENY to everything.
func DenyAgent(delivery.DecodedHeader) delivery.WireResponse {
	return delivery.WireResponse{Response: delivery.WireDeny}
}

// NewFakeAgent wires a FakeAgent to an Engine's Surface with the given
// decision policy.
func NewFakeAgent(e *Engine, decide func(delivery.DecodedHeader) delivery.WireResponse) *FakeAgent {
	return &FakeAgent{surface: e.Surface, decide: decide}
}

// Pump performs one read-decide-write cycle: it blocks on ReadBatch
// (respecting ctx), decodes each event's header, asks decide for a
// response, and writes every response back in one Write call. It
// returns the number of responses the table actually applied.
func (a *FakeAgent) Pump(ctx context.Context, maxEvents int) (int, error) {
	buf, n, err := a.surface.ReadBatch(ctx, maxEvents)
	if err != nil || n == 0 {
		return 0, err
	}

	a.mu.Lock()
	a.batches++
	a.eventsSeen += n
	a.mu.Unlock()

	var out []byte
	rest := buf
	for i := 0; i < n && len(rest) >= delivery.HeaderLen; i++ {
		hdr, decErr := delivery.DecodeHeader(rest)
		if decErr != nil {
			break
		}
		resp := a.decide(hdr)
		resp.RequestID = hdr.RequestID
		out = append(out, delivery.EncodeResponse(resp)...)
		rest = rest[delivery.HeaderLen+int(hdr.PayloadLen):]
	}

	applied, err := a.surface.Write(out)
	a.mu.Lock()
	a.responses += applied
	a.mu.Unlock()
	return applied, err
}

// Run pumps in a loop until ctx is cancelled, Pump errors, or Stop is
// called.
func (a *FakeAgent) Run(ctx context.Context, maxEvents int) {
	for {
		a.mu.RLock()
		stopped := a.stopped
		a.mu.RUnlock()
		if stopped {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := a.Pump(ctx, maxEvents); err != nil {
			return
		}
	}
}

// Stop halts a running Run loop at its next iteration boundary.
func (a *FakeAgent) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
}

// CallCounts reports how many batches, events, and responses this
// agent has processed.
func (a *FakeAgent) CallCounts() map[string]int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return map[string]int{
		"batches":   a.batches,
		"events":    a.eventsSeen,
		"responses": a.responses,
	}
}

// Reset zeroes the call counters, for reuse across table-driven test
// cases.
func (a *FakeAgent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.batches, a.eventsSeen, a.responses = 0, 0, 0
}
