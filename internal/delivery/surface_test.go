package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	events    []*event.Event
	resolved  map[uint64]stall.Response
}

func (f *fakeTable) DequeueBatch(ctx context.Context, maxEvents int) ([]*event.Event, error) {
	if len(f.events) == 0 {
		return nil, nil
	}
	n := maxEvents
	if n > len(f.events) {
		n = len(f.events)
	}
	out := f.events[:n]
	f.events = f.events[n:]
	return out, nil
}

func (f *fakeTable) Resolve(requestID uint64, response stall.Response, contTimeout time.Duration) bool {
	if f.resolved == nil {
		f.resolved = map[uint64]stall.Response{}
	}
	if requestID == 0 {
		return false
	}
	f.resolved[requestID] = response
	return true
}

func TestSurfaceReadBatchEncodesAndReleases(t *testing.T) {
	ft := &fakeTable{events: []*event.Event{
		{RequestID: 1, TID: 10, Kind: event.Exec, Payload: &event.ExecPayload{Path: []byte("/bin/sh")}},
		{RequestID: 2, TID: 11, Kind: event.TaskFree, Payload: &event.TaskFreePayload{PID: 11}},
	}}
	s := NewSurface(ft)

	buf, n, err := s.ReadBatch(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Greater(t, len(buf), 0)
}

func TestSurfaceWriteRoutesResponsesByRequestID(t *testing.T) {
	ft := &fakeTable{}
	s := NewSurface(ft)

	buf := append(
		EncodeResponse(WireResponse{RequestID: 5, Response: WireDeny}),
		EncodeResponse(WireResponse{RequestID: 6, Response: WireAllow})...,
	)

	applied, err := s.Write(buf)
	require.NoError(t, err)
	require.Equal(t, 2, applied)
	require.Equal(t, stall.Deny, ft.resolved[5])
	require.Equal(t, stall.Allow, ft.resolved[6])
}

func TestSurfaceWriteUnknownRequestIDAcceptedSilently(t *testing.T) {
	ft := &fakeTable{}
	s := NewSurface(ft)
	buf := EncodeResponse(WireResponse{RequestID: 0, Response: WireAllow})
	applied, err := s.Write(buf)
	require.NoError(t, err)
	require.Equal(t, 0, applied)
}
