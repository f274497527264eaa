// Package rclgo implements a deterministic, statically-sized callback
// executor for pub/sub and request/response middleware, modeled on
// ROS2's rclc executor (spec.md §1).
package rclgo

import (
	"fmt"
	"sync"
	"time"

	"github.com/loopwire/rclgo/internal/dispatch"
	"github.com/loopwire/rclgo/internal/handle"
	"github.com/loopwire/rclgo/internal/interfaces"
	"github.com/loopwire/rclgo/internal/logging"
	"github.com/loopwire/rclgo/internal/rclerrors"
	"github.com/loopwire/rclgo/internal/spin"
	"github.com/loopwire/rclgo/internal/waitset"
)

// ExecutorOptions configures an Executor at construction time (spec.md
// §4.1, mirroring the teacher's DeviceParams value-struct-with-defaults
// pattern).
type ExecutorOptions struct {
	// Capacity is the fixed handle-table size (N in spec §3). Required.
	Capacity int

	// Allocator performs the one init-time allocation the table needs.
	// Required.
	Allocator interfaces.Allocator

	// Timeout bounds how long each cycle's wait-set collection blocks.
	Timeout time.Duration

	// Semantics selects RclcppLike (default) or LET dispatch ordering.
	Semantics dispatch.Semantics

	// Trigger gates whether a cycle dispatches at all; nil defaults to
	// dispatch.Any.
	Trigger dispatch.Trigger

	// Logger receives lifecycle and per-cycle diagnostics; nil uses the
	// package default.
	Logger interfaces.Logger

	// Observer receives per-cycle metrics events; nil uses NoOpObserver.
	Observer interfaces.Observer
}

// DefaultExecutorOptions returns an ExecutorOptions with DefaultCapacity,
// DefaultTimeout and RclcppLike semantics, using allocator for the table's
// backing allocation.
func DefaultExecutorOptions(allocator interfaces.Allocator) ExecutorOptions {
	return ExecutorOptions{
		Capacity:  DefaultCapacity,
		Allocator: allocator,
		Timeout:   DefaultTimeout,
		Semantics: dispatch.RclcppLike,
	}
}

// executorState tracks the C10 lifecycle (spec §4.1, §8 invariant 9: Fini
// is idempotent, Init before any registration).
type executorState int

const (
	stateUninitialized executorState = iota
	stateInitialized
	stateFinalized
)

// Executor is the deterministic callback executor (spec.md §1, §4 — C10
// lifecycle wrapping C1-C9). It is not safe for concurrent use: spin,
// registration and Fini must all be called from the same goroutine, the
// same single-threaded-dispatch contract the teacher's queue.Runner holds
// for one queue's io_uring ring.
type Executor struct {
	mu    sync.Mutex
	state executorState

	table     *handle.Table
	collector *waitset.Collector
	allocator interfaces.Allocator
	ctx       interfaces.Context
	logger    interfaces.Logger
	observer  interfaces.Observer

	timeout   time.Duration
	semantics dispatch.Semantics
	trigger   dispatch.Trigger
}

// NewExecutor returns a zero-init Executor (spec §4.1's "zero
// initialization" state); Init must be called before any registration or
// spin call.
func NewExecutor() *Executor {
	return &Executor{state: stateUninitialized}
}

var _ spin.Cycler = (*Executor)(nil)

// Init allocates the handle table and wait-set collector for capacity
// entries, binding ctx as the middleware context that gates spin()/
// spin_period() (spec §4.1, §4.7). Init may be called at most once.
func (e *Executor) Init(ctx interfaces.Context, opts ExecutorOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateUninitialized {
		return WrapError("Init", fmt.Errorf("executor: already initialized: %w", rclerrors.ErrInvalidArgument))
	}
	if ctx == nil {
		return WrapError("Init", fmt.Errorf("executor: context must not be nil: %w", rclerrors.ErrInvalidArgument))
	}
	if opts.Allocator == nil {
		return WrapError("Init", fmt.Errorf("executor: allocator must not be nil: %w", rclerrors.ErrInvalidArgument))
	}

	if opts.Capacity <= 0 {
		return WrapError("Init", fmt.Errorf("executor: capacity must be > 0: %w", rclerrors.ErrInvalidArgument))
	}
	capacity := opts.Capacity
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// The table's backing array is the one allocation the executor makes
	// at init (spec §5 "Allocation discipline"); route it through the
	// configured allocator first so a failing allocator surfaces
	// ErrCodeBadAlloc before the table ever touches Go's own allocator.
	if _, err := opts.Allocator.Allocate(capacity * int(handleRecordSizeHint)); err != nil {
		return WrapError("Init", fmt.Errorf("executor: allocator failed: %w", rclerrors.ErrBadAlloc))
	}

	table, err := handle.NewTable(capacity)
	if err != nil {
		return WrapError("Init", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = NoOpObserver{}
	}

	e.table = table
	e.collector = waitset.NewCollector(waitset.NewWaitSet(), timeout)
	e.allocator = opts.Allocator
	e.ctx = ctx
	e.logger = logger
	e.observer = observer
	e.timeout = timeout
	e.semantics = opts.Semantics
	e.trigger = opts.Trigger
	e.state = stateInitialized

	e.logger.Infof("executor: initialized, capacity=%d timeout=%s semantics=%s", capacity, timeout, e.semantics)
	return nil
}

// handleRecordSizeHint is a nominal per-slot byte size used only to give
// the configured Allocator a non-zero, capacity-proportional size to
// allocate at Init; the real handle.Table storage is Go-native and does
// not depend on this value.
const handleRecordSizeHint = 64

func (e *Executor) requireInitialized(op string) error {
	if e.state != stateInitialized {
		return WrapError(op, fmt.Errorf("executor: not initialized: %w", rclerrors.ErrInvalidArgument))
	}
	return nil
}

// AddSubscription registers a subscription handle (spec §4.1).
func (e *Executor) AddSubscription(sub interfaces.Subscription, buf interface{}, cb handle.SubscriptionCallback, policy handle.InvocationPolicy) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("AddSubscription"); err != nil {
		return err
	}
	return WrapError("AddSubscription", e.table.AddSubscription(sub, buf, cb, policy))
}

// AddSubscriptionWithContext registers a context-carrying subscription
// handle (spec §4.1; ctx may be nil per SPEC_FULL.md §6).
func (e *Executor) AddSubscriptionWithContext(sub interfaces.Subscription, buf interface{}, cb handle.SubscriptionWithContextCallback, ctx interface{}, policy handle.InvocationPolicy) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("AddSubscriptionWithContext"); err != nil {
		return err
	}
	return WrapError("AddSubscriptionWithContext", e.table.AddSubscriptionWithContext(sub, buf, cb, ctx, policy))
}

// AddTimer registers a timer handle (spec §4.1, §4.4).
func (e *Executor) AddTimer(t interfaces.Timer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("AddTimer"); err != nil {
		return err
	}
	return WrapError("AddTimer", e.table.AddTimer(t))
}

// AddClient registers a client handle.
func (e *Executor) AddClient(c interfaces.Client, respBuf interface{}, cb handle.ClientCallback) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("AddClient"); err != nil {
		return err
	}
	return WrapError("AddClient", e.table.AddClient(c, respBuf, cb))
}

// AddClientWithRequestID registers a request-id-tracking client handle.
func (e *Executor) AddClientWithRequestID(c interfaces.Client, respBuf interface{}, cb handle.ClientWithRequestIDCallback) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("AddClientWithRequestID"); err != nil {
		return err
	}
	return WrapError("AddClientWithRequestID", e.table.AddClientWithRequestID(c, respBuf, cb))
}

// AddService registers a service handle.
func (e *Executor) AddService(s interfaces.Service, reqBuf interface{}, cb handle.ServiceCallback) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("AddService"); err != nil {
		return err
	}
	return WrapError("AddService", e.table.AddService(s, reqBuf, cb))
}

// AddServiceWithRequestID registers a request-id-tracking service handle.
func (e *Executor) AddServiceWithRequestID(s interfaces.Service, reqBuf interface{}, cb handle.ServiceWithRequestIDCallback) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("AddServiceWithRequestID"); err != nil {
		return err
	}
	return WrapError("AddServiceWithRequestID", e.table.AddServiceWithRequestID(s, reqBuf, cb))
}

// AddServiceWithContext registers a context-carrying service handle.
func (e *Executor) AddServiceWithContext(s interfaces.Service, reqBuf interface{}, cb handle.ServiceWithContextCallback, ctx interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("AddServiceWithContext"); err != nil {
		return err
	}
	return WrapError("AddServiceWithContext", e.table.AddServiceWithContext(s, reqBuf, cb, ctx))
}

// AddGuardCondition registers a guard-condition handle.
func (e *Executor) AddGuardCondition(g interfaces.GuardCondition, cb handle.GuardConditionCallback) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("AddGuardCondition"); err != nil {
		return err
	}
	return WrapError("AddGuardCondition", e.table.AddGuardCondition(g, cb))
}

// AddActionClient registers an action-client handle, folding its
// sub-entity counts into the wait-set sizing (spec §4.1).
func (e *Executor) AddActionClient(ref interface{}, endpoint interface{}, subEntities handle.ActionEntityCounts) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("AddActionClient"); err != nil {
		return err
	}
	return WrapError("AddActionClient", e.table.AddActionClient(ref, endpoint, subEntities))
}

// AddActionServer registers an action-server handle.
func (e *Executor) AddActionServer(ref interface{}, endpoint interface{}, subEntities handle.ActionEntityCounts) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("AddActionServer"); err != nil {
		return err
	}
	return WrapError("AddActionServer", e.table.AddActionServer(ref, endpoint, subEntities))
}

// Remove unregisters the handle whose middleware reference equals ref
// (spec §4.1, §8 invariant 2).
func (e *Executor) Remove(ref interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("Remove"); err != nil {
		return err
	}
	return WrapError("Remove", e.table.Remove(ref))
}

// SetTimeout updates the per-cycle wait-set block timeout (spec §4.10).
func (e *Executor) SetTimeout(timeout time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("SetTimeout"); err != nil {
		return err
	}
	if timeout <= 0 {
		return WrapError("SetTimeout", fmt.Errorf("executor: timeout must be > 0: %w", rclerrors.ErrInvalidArgument))
	}
	e.timeout = timeout
	e.collector.SetTimeout(timeout)
	return nil
}

// SetSemantics switches between RclcppLike and LET dispatch ordering
// (spec §4.6).
func (e *Executor) SetSemantics(semantics dispatch.Semantics) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("SetSemantics"); err != nil {
		return err
	}
	e.semantics = semantics
	return nil
}

// SetTrigger installs a custom trigger predicate; nil restores the
// default (dispatch.Any) behaviour (spec §4.5).
func (e *Executor) SetTrigger(trigger dispatch.Trigger) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("SetTrigger"); err != nil {
		return err
	}
	e.trigger = trigger
	return nil
}

// Prepare eagerly builds the wait-set from the current table contents so
// the first SpinSome call does not pay the rebuild cost. It is optional:
// SpinSome rebuilds lazily whenever the table is stale.
func (e *Executor) Prepare() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized("Prepare"); err != nil {
		return err
	}
	return WrapError("Prepare", e.collector.Collect(e.table))
}

// Fini marks the executor finalized, so later registration and spin calls
// fail with InvalidArgument. It does not finalize the wait-set or drop the
// handle table. It is idempotent (spec §8 invariant 9): calling it twice,
// or before Init, is not an error.
func (e *Executor) Fini() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != stateInitialized {
		e.state = stateFinalized
		return nil
	}
	e.state = stateFinalized
	e.logger.Infof("executor: finalized")
	return nil
}

// ConfiguredTimeout implements spin.Cycler.
func (e *Executor) ConfiguredTimeout() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeout
}

// Context implements spin.Cycler.
func (e *Executor) Context() interfaces.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx
}

// SpinSome runs exactly one prepare-collect-dispatch cycle (spec §4.7):
// collect readiness with the given timeout (falling back to the
// configured default when timeout <= 0), and if nothing came back ready,
// report spin.Timeout without touching dispatch at all. Otherwise it
// drives dispatch.Run over the live handles under the configured
// semantics and trigger, reporting per-cycle counts to the observer.
func (e *Executor) SpinSome(timeout time.Duration) (spin.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInitialized("SpinSome"); err != nil {
		return spin.Ok, err
	}

	if timeout > 0 && timeout != e.timeout {
		e.collector.SetTimeout(timeout)
		defer e.collector.SetTimeout(e.timeout)
	}

	if err := e.collector.Collect(e.table); err != nil {
		return spin.Ok, WrapError("SpinSome", err)
	}

	live := e.table.Live()
	ready := 0
	for i := range live {
		if live[i].DataAvailable || live[i].Policy == handle.Always {
			ready++
			e.recordKindDispatch(live[i].Kind)
		}
	}

	if ready == 0 {
		e.observer.ObserveTimeout()
		return spin.Timeout, nil
	}

	err := dispatch.Run(e.semantics, live, e.trigger)
	e.observer.ObserveCycle(ready, ready, err)
	if err != nil {
		return spin.Ok, WrapError("SpinSome", err)
	}
	return spin.Ok, nil
}

// recordKindDispatch reports a per-kind dispatch event to the observer if
// it is a *Metrics (the only implementation that tracks per-kind counts);
// any other interfaces.Observer just sees the aggregate ObserveCycle call.
func (e *Executor) recordKindDispatch(kind handle.Kind) {
	if m, ok := e.observer.(*Metrics); ok {
		m.RecordKindDispatch(kind)
	}
}

// Table exposes the underlying handle table for diagnostics and tests.
func (e *Executor) Table() *handle.Table {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table
}
