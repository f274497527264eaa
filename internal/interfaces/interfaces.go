// Package interfaces defines the executor's view of the middleware layer.
// Everything here is an abstract collaborator per spec §6: the concrete
// DDS/RMW binding is out of scope for the executor core. The simmw package
// provides a runnable, in-process implementation of these interfaces.
package interfaces

import "time"

// Logger is the executor's logging facade.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Observer receives executor-level metrics events. Implementations must be
// safe to call from the single spin goroutine only (no concurrent calls are
// made by the executor itself).
type Observer interface {
	ObserveCycle(took int, executed int, err error)
	ObserveTimeout()
}

// Allocator abstracts the single allocation the executor performs at init.
// Only Executor.Init calls it; the action endpoints allocate their goal
// pools with make. No allocator method is invoked from the steady-state
// spin path.
type Allocator interface {
	Allocate(size int) ([]byte, error)
	Deallocate(p []byte) error
}

// Clock is the monotonic time source used by the spin loops for period
// compensation (spec §4.7).
type Clock interface {
	NowNanos() int64
}

// Context mirrors the middleware context object: is_valid() gates spin().
type Context interface {
	IsValid() bool
}

// WaitSetHandle is returned by the wait-set registration calls; it is the
// index the handle record must remember (spec §3, Handle record.index).
type WaitSetHandle int

// WaitSet is the readiness-aggregation primitive. One instance is owned by
// the executor and rebuilt whenever the handle table's structure changes.
type WaitSet interface {
	Init(counts WaitSetCounts) error
	Fini() error
	IsValid() bool
	Clear()
	AddSubscription(s Subscription) (WaitSetHandle, error)
	AddTimer(t Timer) (WaitSetHandle, error)
	AddClient(c Client) (WaitSetHandle, error)
	AddService(s Service) (WaitSetHandle, error)
	AddGuardCondition(g GuardCondition) (WaitSetHandle, error)
	// Wait blocks until at least one registered entity is ready or the
	// timeout elapses. It returns the set of ready wait-set indices.
	// A nil error with an empty/partial ready set on deadline is not an
	// error; callers distinguish timeout via the returned bool.
	Wait(timeout time.Duration) (ready []WaitSetHandle, timedOut bool, err error)
}

// WaitSetCounts sizes a wait-set build (spec §4.2).
type WaitSetCounts struct {
	Subscriptions  int
	Timers         int
	Clients        int
	Services       int
	GuardConditions int
}

// Subscription is a pub/sub endpoint that can be polled for readiness and
// drained of one message at a time.
type Subscription interface {
	// Take drains one payload into dst. ok=false with err=nil signals the
	// middleware's non-fatal "take-failed" condition (spec §7).
	Take(dst interface{}) (ok bool, err error)
}

// Timer fires on its own schedule; the executor never takes from it, it
// only invokes the middleware's timer-call primitive (spec §4.4).
type Timer interface {
	Call() error
}

// ErrTimerCanceled is returned by Timer.Call when the timer was canceled
// concurrently with its readiness being observed; it is swallowed by the
// execute step (spec §7).
var ErrTimerCanceled = timerCanceledError{}

type timerCanceledError struct{}

func (timerCanceledError) Error() string { return "rclgo: timer canceled" }

// Client is the requesting side of a request/response endpoint.
type Client interface {
	TakeResponse(dst interface{}) (ok bool, requestID int64, err error)
}

// Service is the responding side of a request/response endpoint.
type Service interface {
	TakeRequest(dst interface{}) (ok bool, requestID int64, err error)
	SendResponse(requestID int64, resp interface{}) error
}

// GuardCondition is a manually-triggerable notification source.
type GuardCondition interface {
	Trigger()
}
