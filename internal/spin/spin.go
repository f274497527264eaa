// Package spin implements the four driving loops (spec.md §4.7 —
// component C8): spin_some, spin, spin_one_period, spin_period. Spin and
// SpinPeriod pin their goroutine to its OS thread (SpinSome and
// SpinOnePeriod do not) the same way the
// teacher's queue.Runner.ioLoop pins its I/O goroutine for ublk's
// per-thread affinity requirement — here the reason is determinism of
// the period-compensation clock reads rather than a kernel thread
// contract, but the mechanism is the same runtime.LockOSThread call.
package spin

import (
	"runtime"
	"time"

	"github.com/loopwire/rclgo/internal/interfaces"
)

// Result is the non-error outcome of one cycle (spec §7: Timeout is a
// value, not an error).
type Result int

const (
	Ok Result = iota
	Timeout
)

func (r Result) String() string {
	if r == Timeout {
		return "Timeout"
	}
	return "Ok"
}

// Cycler is the executor's view from the spin package: one full
// prepare-collect-dispatch cycle, its configured default timeout, and
// the liveness of the middleware context that gates spin/spin_period.
type Cycler interface {
	SpinSome(timeout time.Duration) (Result, error)
	ConfiguredTimeout() time.Duration
	Context() interfaces.Context
}

// SpinSome runs exactly one cycle with the given wait timeout.
func SpinSome(c Cycler, timeout time.Duration) (Result, error) {
	return c.SpinSome(timeout)
}

// Spin loops SpinSome(configured timeout) while the context remains
// valid, exiting on the first non-Ok/non-Timeout error (spec §4.7,
// §5 "spin exits when the context becomes invalid").
func Spin(c Cycler) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for c.Context().IsValid() {
		if _, err := c.SpinSome(c.ConfiguredTimeout()); err != nil {
			return err
		}
	}
	return nil
}

// PeriodicSpinner drives spin_one_period/spin_period. It owns the
// invocation_time anchor (spec §4.7, §8 invariant 6): seeded lazily on
// first use, advanced by exactly the configured period every call
// regardless of how long the cycle itself took, so drift never
// accumulates.
type PeriodicSpinner struct {
	clock          interfaces.Clock
	period         time.Duration
	invocationTime int64
	seeded         bool
}

// NewPeriodicSpinner constructs a spinner for the given period, reading
// time from clock.
func NewPeriodicSpinner(clock interfaces.Clock, period time.Duration) *PeriodicSpinner {
	return &PeriodicSpinner{clock: clock, period: period}
}

// InvocationTime returns the current anchor, in monotonic nanoseconds.
func (p *PeriodicSpinner) InvocationTime() int64 { return p.invocationTime }

// SpinOnePeriod runs one cycle, then sleeps so the elapsed time since
// the last call equals the configured period; if the cycle itself
// overran the period, the sleep is skipped (spec §4.7).
func (p *PeriodicSpinner) SpinOnePeriod(c Cycler) error {
	if !p.seeded {
		p.invocationTime = p.clock.NowNanos()
		p.seeded = true
	}

	if _, err := c.SpinSome(c.ConfiguredTimeout()); err != nil {
		return err
	}

	p.invocationTime += int64(p.period)
	if sleepFor := p.invocationTime - p.clock.NowNanos(); sleepFor > 0 {
		time.Sleep(time.Duration(sleepFor))
	}
	return nil
}

// SpinPeriod loops SpinOnePeriod while the context remains valid.
func (p *PeriodicSpinner) SpinPeriod(c Cycler) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for c.Context().IsValid() {
		if err := p.SpinOnePeriod(c); err != nil {
			return err
		}
	}
	return nil
}
