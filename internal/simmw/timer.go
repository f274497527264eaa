package simmw

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/loopwire/rclgo/internal/interfaces"
)

// Timer implements interfaces.Timer over a Linux timerfd: the kernel
// itself re-arms the period (it_interval), so Timer needs no manual
// rescheduling and is pollable exactly like every other Signaller here.
type Timer struct {
	fd       int
	callback func() error
	canceled bool
}

// NewTimer creates a periodic timer firing every period, invoking
// callback from Call.
func NewTimer(period time.Duration, callback func() error) (*Timer, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	ts := unix.NsecToTimespec(period.Nanoseconds())
	spec := unix.ItimerSpec{Interval: ts, Value: ts}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Timer{fd: fd, callback: callback}, nil
}

// EventFD implements waitset.Signaller.
func (t *Timer) EventFD() int { return t.fd }

// Cancel marks the timer canceled; the next Call reports
// interfaces.ErrTimerCanceled instead of firing.
func (t *Timer) Cancel() { t.canceled = true }

// Close releases the underlying timerfd.
func (t *Timer) Close() error { return unix.Close(t.fd) }

// Call implements interfaces.Timer: drains the expiration count and
// invokes the user callback.
func (t *Timer) Call() error {
	if t.canceled {
		return interfaces.ErrTimerCanceled
	}
	var buf [8]byte
	unix.Read(t.fd, buf[:])
	if t.callback != nil {
		return t.callback()
	}
	return nil
}
