package simmw

import "golang.org/x/sys/unix"

// Clock implements interfaces.Clock via CLOCK_MONOTONIC, matching the
// monotonic-time requirement of the periodic spinner's drift compensation
// (spec §4.7).
type Clock struct{}

// NewClock returns a monotonic clock.
func NewClock() Clock { return Clock{} }

// NowNanos implements interfaces.Clock.
func (Clock) NowNanos() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return ts.Nano()
}
