//go:build linux

package waitset

import (
	"time"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"

	"github.com/loopwire/rclgo/internal/interfaces"
	"github.com/loopwire/rclgo/internal/logging"
)

// iouringWaitSet is the Linux fast path: instead of one poll(2) syscall
// per cycle it submits one IORING_OP_POLL_ADD SQE per registered eventfd
// and reaps completions from a single ring, the same "N sources, one
// syscall" shape as the teacher's Ring.WaitForCompletion batching
// (internal/queue/runner.go's processRequests). Any error standing the
// ring up falls back to the portable poll(2) backend.
type iouringWaitSet struct {
	registry
	ring *giouring.Ring
}

// NewWaitSet returns the fastest available backend for this platform: the
// io_uring-backed one on Linux when the kernel supports it, the portable
// unix.Poll backend otherwise.
func NewWaitSet() interfaces.WaitSet {
	ring, err := giouring.CreateRing(256)
	if err != nil {
		logging.Default().Debugf("waitset: io_uring unavailable, falling back to poll(2): %v", err)
		return NewPollWaitSet()
	}
	return &iouringWaitSet{ring: ring}
}

func (w *iouringWaitSet) Init(counts interfaces.WaitSetCounts) error {
	if w.ring == nil {
		// Fini released the ring; a rebuild needs a fresh one.
		ring, err := giouring.CreateRing(256)
		if err != nil {
			return err
		}
		w.ring = ring
	}
	w.registry.init(counts)
	return nil
}

func (w *iouringWaitSet) Fini() error {
	w.valid = false
	w.fds = nil
	if w.ring != nil {
		w.ring.QueueExit()
		w.ring = nil
	}
	return nil
}

func (w *iouringWaitSet) IsValid() bool { return w.valid }
func (w *iouringWaitSet) Clear()        { w.registry.clear() }

func (w *iouringWaitSet) AddSubscription(s interfaces.Subscription) (interfaces.WaitSetHandle, error) {
	return w.add(s)
}
func (w *iouringWaitSet) AddTimer(t interfaces.Timer) (interfaces.WaitSetHandle, error) {
	return w.add(t)
}
func (w *iouringWaitSet) AddClient(c interfaces.Client) (interfaces.WaitSetHandle, error) {
	return w.add(c)
}
func (w *iouringWaitSet) AddService(s interfaces.Service) (interfaces.WaitSetHandle, error) {
	return w.add(s)
}
func (w *iouringWaitSet) AddGuardCondition(g interfaces.GuardCondition) (interfaces.WaitSetHandle, error) {
	return w.add(g)
}

// Wait submits one POLL_ADD per registered fd and reaps whichever
// complete before the deadline. A kernel too old for multishot poll still
// completes each POLL_ADD exactly once per readiness transition, which is
// all the "at most one take per cycle" invariant (spec §8 invariant 4)
// needs.
func (w *iouringWaitSet) Wait(timeout time.Duration) ([]interfaces.WaitSetHandle, bool, error) {
	if len(w.fds) == 0 {
		time.Sleep(timeout)
		return nil, true, nil
	}

	submitted := 0
	for i, fd := range w.fds {
		if fd < 0 {
			continue
		}
		sqe := w.ring.GetSQE()
		if sqe == nil {
			break
		}
		sqe.PrepPollAdd(uint64(fd), unix.POLLIN)
		sqe.UserData = uint64(i)
		submitted++
	}
	if submitted == 0 {
		time.Sleep(timeout)
		return nil, true, nil
	}
	if _, err := w.ring.Submit(); err != nil {
		return nil, false, err
	}

	deadline := time.Now().Add(timeout)
	var ready []interfaces.WaitSetHandle
	for time.Now().Before(deadline) {
		cqe, err := w.ring.PeekCQE()
		if err == nil && cqe != nil {
			ready = append(ready, interfaces.WaitSetHandle(cqe.UserData))
			w.ring.CQESeen(cqe)
			// Drain any further already-completed entries without
			// sleeping; only block once nothing more is pending.
			continue
		}
		if len(ready) > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if len(ready) == 0 {
		return nil, true, nil
	}
	return ready, false, nil
}
