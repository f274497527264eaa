// Package simmw is a runnable, in-process implementation of every
// interface in internal/interfaces plus the action package's transport
// interfaces. It exists so the executor, dispatch, action and waitset
// packages have a real, testable middleware to drive end to end without
// depending on an actual DDS/RMW binding (spec.md §1 treats the
// middleware as an external collaborator; this is that collaborator for
// tests and the demo CLI).
package simmw

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/loopwire/rclgo/internal/rclerrors"
)

// Queue is the shared readiness-plus-data primitive every pub/sub and
// request/response endpoint here is built from: a bounded Go channel for
// the payloads, paired with a Linux eventfd in EFD_SEMAPHORE mode acting
// as the counting readiness signal a wait-set backend can poll on
// without touching the channel itself (spec §3 "wait-set index";
// grounded on the same golang.org/x/sys/unix reach the teacher uses for
// its io_uring/CPU-affinity syscalls, generalised here to eventfd).
type Queue struct {
	ch chan interface{}
	fd int
}

// NewQueue creates a queue of the given capacity. Capacity must be > 0.
func NewQueue(capacity int) (*Queue, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("simmw: queue capacity must be > 0: %w", rclerrors.ErrInvalidArgument)
	}
	fd, err := unix.Eventfd(0, unix.EFD_SEMAPHORE|unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("simmw: eventfd: %w", err)
	}
	return &Queue{ch: make(chan interface{}, capacity), fd: fd}, nil
}

// EventFD implements waitset.Signaller.
func (q *Queue) EventFD() int { return q.fd }

// Ready reports, without consuming, whether a value is queued.
func (q *Queue) Ready() bool { return len(q.ch) > 0 }

// Close releases the eventfd. Queues are not reusable after Close.
func (q *Queue) Close() error {
	return unix.Close(q.fd)
}

// Push enqueues v, incrementing the eventfd semaphore by one. Returns
// CapacityExceeded if the queue is full.
func (q *Queue) Push(v interface{}) error {
	select {
	case q.ch <- v:
	default:
		return fmt.Errorf("simmw: queue full: %w", rclerrors.ErrCapacityExceeded)
	}
	var one [8]byte
	one[0] = 1
	if _, err := unix.Write(q.fd, one[:]); err != nil {
		return fmt.Errorf("simmw: eventfd write: %w", err)
	}
	return nil
}

// Take dequeues one value and decrements the eventfd semaphore to match,
// so the wait-set's readability signal always tracks the channel's
// actual depth. ok is false (not an error) when nothing was queued,
// matching the middleware "take-failed" contract (spec §7).
func (q *Queue) Take() (v interface{}, ok bool) {
	select {
	case v = <-q.ch:
	default:
		return nil, false
	}
	var buf [8]byte
	unix.Read(q.fd, buf[:])
	return v, true
}
