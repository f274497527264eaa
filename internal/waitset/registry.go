package waitset

import (
	"fmt"

	"github.com/loopwire/rclgo/internal/interfaces"
	"github.com/loopwire/rclgo/internal/rclerrors"
)

// registry is the bookkeeping shared by every WaitSet backend: the
// ordered list of registered fds, sized once at Init and refilled by
// Clear+Add* every cycle (spec §4.2).
type registry struct {
	valid bool
	fds   []int // fds[i] is the eventfd for WaitSetHandle(i); -1 if none
	cap   int
}

func (r *registry) init(counts interfaces.WaitSetCounts) {
	r.cap = counts.Subscriptions + counts.Timers + counts.Clients + counts.Services + counts.GuardConditions
	if r.cap < 1 {
		r.cap = 1
	}
	r.fds = make([]int, 0, r.cap)
	r.valid = true
}

func (r *registry) clear() {
	r.fds = r.fds[:0]
}

func (r *registry) add(s interface{}) (interfaces.WaitSetHandle, error) {
	sig, ok := s.(Signaller)
	fd := -1
	if ok {
		fd = sig.EventFD()
	}
	idx := len(r.fds)
	if idx >= r.cap && r.cap > 0 {
		// Growing past the sized capacity only happens if the table's
		// counters and the actual live census disagree, which would
		// itself violate spec §8 invariant 1; surface it rather than
		// silently reallocating (steady state must stay allocation-free).
		return 0, fmt.Errorf("waitset: registration exceeds sized capacity %d: %w", r.cap, rclerrors.ErrBadAlloc)
	}
	r.fds = append(r.fds, fd)
	return interfaces.WaitSetHandle(idx), nil
}
