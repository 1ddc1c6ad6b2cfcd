package delivery

import (
	"fmt"
	"sync"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"
)

// Ring is an io_uring-backed transport for the control character
// device, the external collaborator beyond the core's request/response
// contract: the core depends only on the Surface interface
// (surface.go), never on giouring directly, so this file is the one
// place that plumbing lives. A plain write(events)/read(responses) pair
// on the same fd, built on the pawelgaczynski/giouring bindings.
type Ring struct {
	mu   sync.Mutex
	ring *giouring.Ring
	fd   int
}

// NewRing creates an io_uring of the given submission-queue depth bound
// to fd, the control character device.
func NewRing(fd int, entries uint32) (*Ring, error) {
	ring, err := giouring.CreateRing(entries)
	if err != nil {
		return nil, fmt.Errorf("delivery: create io_uring: %w", err)
	}
	return &Ring{ring: ring, fd: fd}, nil
}

// Close tears down the ring. Safe to call once; a second call is a
// no-op.
func (r *Ring) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ring != nil {
		r.ring.QueueExit()
		r.ring = nil
	}
	return nil
}

// user-data tags distinguishing the two SQEs a single SubmitBatch call
// may carry, so WaitCompletions can tell a read completion from a
// write completion.
const (
	tagRead uint64 = iota + 1
	tagWrite
)

// SubmitBatch queues a read of pending serialized responses from the
// device into readBuf and, when writeBuf is non-empty, a write of the
// next batch of serialized events, then flushes both with one
// io_uring_enter syscall instead of two.
func (r *Ring) SubmitBatch(readBuf, writeBuf []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	readSQE := r.ring.GetSQE()
	if readSQE == nil {
		return fmt.Errorf("delivery: submission queue full")
	}
	readSQE.PrepareRead(r.fd, readBuf, 0)
	readSQE.SetData64(tagRead)

	if len(writeBuf) > 0 {
		writeSQE := r.ring.GetSQE()
		if writeSQE == nil {
			return fmt.Errorf("delivery: submission queue full")
		}
		writeSQE.PrepareWrite(r.fd, writeBuf, 0)
		writeSQE.SetData64(tagWrite)
	}

	_, err := r.ring.Submit()
	return err
}

// WaitCompletions blocks for want completions and returns the number of
// bytes the read SQE (if any, in this batch) reported. A failed SQE
// contributes its errno to the returned error but does not stop
// draining the remaining completions, so one bad write never wedges
// the ring.
func (r *Ring) WaitCompletions(want uint32) (readN int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := uint32(0); i < want; i++ {
		cqe, werr := r.ring.WaitCQE()
		if werr != nil {
			return readN, werr
		}
		if cqe.Res < 0 {
			err = fmt.Errorf("delivery: io_uring op failed: res=%d", cqe.Res)
		} else if cqe.UserData == tagRead {
			readN = int(cqe.Res)
		}
		r.ring.CQESeen(cqe)
	}
	return readN, err
}

// MapSharedBuffer mmaps a region of fd shared with the kernel side: a
// single flat buffer of serialized events and responses.
func MapSharedBuffer(fd int, size int) ([]byte, error) {
	return unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// UnmapSharedBuffer releases a mapping obtained from MapSharedBuffer.
func UnmapSharedBuffer(b []byte) error {
	return unix.Munmap(b)
}
