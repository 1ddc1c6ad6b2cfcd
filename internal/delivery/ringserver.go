package delivery

import (
	"context"
	"errors"
)

// RingServer drives a Surface over an io_uring Ring bound to a real
// file descriptor — the production transport a kernel-resident
// mediation daemon uses instead of draining a Surface in-process the
// way a test harness or an all-in-one simulator does.
type RingServer struct {
	surface *Surface
	ring    *Ring
	readBuf []byte
}

// NewRingServer wires a Surface to a Ring, using bufSize as the fixed
// read-side buffer for inbound response bytes.
func NewRingServer(surface *Surface, ring *Ring, bufSize int) *RingServer {
	return &RingServer{surface: surface, ring: ring, readBuf: make([]byte, bufSize)}
}

// Run alternates: encode the next batch of queued events, submit it
// for write alongside a read of whatever response bytes are pending,
// wait for both completions, then apply any responses that arrived.
// It runs until ctx is done, the surface's batch read fails with a
// context error, or a submit fails; other batch read errors are
// skipped and the loop goes on.
func (s *RingServer) Run(ctx context.Context, maxEvents int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		writeBuf, _, err := s.surface.ReadBatch(ctx, maxEvents)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			continue
		}

		if err := s.ring.SubmitBatch(s.readBuf, writeBuf); err != nil {
			return err
		}
		want := uint32(1)
		if len(writeBuf) > 0 {
			want = 2
		}
		n, cerr := s.ring.WaitCompletions(want)
		if n > 0 {
			s.surface.Write(s.readBuf[:n])
		}
		if cerr != nil {
			continue
		}
	}
}
