package handle

import (
	"fmt"

	"github.com/loopwire/rclgo/internal/interfaces"
	"github.com/loopwire/rclgo/internal/rclerrors"
)

// Counters tracks the per-kind census required by spec §3's invariant 1
// ("count consistency") and by the wait-set sizing step in §4.2.
type Counters struct {
	Subscriptions  int
	Timers         int
	Clients        int
	Services       int
	GuardConditions int
	ActionClients  int
	ActionServers  int
}

// Total returns the sum of all per-kind counters. It equals Count only
// while no action endpoint is registered: action registrations also fold
// their sub-entity counts into these counters.
func (c Counters) Total() int {
	return c.Subscriptions + c.Timers + c.Clients + c.Services + c.GuardConditions + c.ActionClients + c.ActionServers
}

// Table is the fixed-capacity handle table (spec §3, §4.1 — component C2).
// Entries [0, Count) are live in insertion order; [Count, capacity) are
// zero-initialised. The table never grows past the capacity fixed at
// construction: this is the boundary that keeps the executor's steady
// state allocation-free.
type Table struct {
	entries  []Record
	capacity int
	count    int
	counters Counters
	// stale is set on every structural mutation and cleared by whoever
	// rebuilds the wait-set (waitset.Collector); spec §3 "Wait-set
	// freshness".
	stale bool
}

// NewTable allocates the one backing array for the table (the executor's
// single init-time allocation for C2; spec §5 "Allocation discipline").
// Capacity must be > 0.
func NewTable(capacity int) (*Table, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("handle: capacity must be > 0: %w", rclerrors.ErrInvalidArgument)
	}
	entries := make([]Record, capacity)
	for i := range entries {
		entries[i].Index = IndexUnassigned
	}
	return &Table{entries: entries, capacity: capacity, stale: true}, nil
}

// Capacity returns the table's fixed capacity (N in spec §3).
func (t *Table) Capacity() int { return t.capacity }

// Count returns the number of live entries.
func (t *Table) Count() int { return t.count }

// Counters returns the current per-kind census.
func (t *Table) Counters() Counters { return t.counters }

// Stale reports whether a structural mutation has invalidated the
// wait-set since it was last rebuilt.
func (t *Table) Stale() bool { return t.stale }

// MarkFresh is called by the collector once it has rebuilt the wait-set
// from the current table contents.
func (t *Table) MarkFresh() { t.stale = false }

// Live returns the live entries in insertion order. Callers must not
// retain the slice across a mutating call (Add*/Remove*), which may
// reorder or shrink it.
func (t *Table) Live() []Record { return t.entries[:t.count] }

// LiveRef returns a pointer into the live entries so dispatch can mutate
// DataAvailable/ActionFlags/Index in place.
func (t *Table) LiveRef(i int) *Record { return &t.entries[i] }

func (t *Table) appendRecord(r Record) (int, error) {
	if t.count == t.capacity {
		return 0, fmt.Errorf("handle: table at capacity %d: %w", t.capacity, rclerrors.ErrCapacityExceeded)
	}
	idx := t.count
	t.entries[idx] = r
	t.count++
	t.stale = true
	return idx, nil
}

// AddSubscription appends a subscription handle (spec §4.1).
func (t *Table) AddSubscription(sub interfaces.Subscription, buf interface{}, cb SubscriptionCallback, policy InvocationPolicy) error {
	if sub == nil {
		return fmt.Errorf("handle: subscription must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if buf == nil {
		return fmt.Errorf("handle: buffer must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if cb == nil {
		return fmt.Errorf("handle: callback must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if _, err := t.appendRecord(newSubscriptionRecord(sub, buf, cb, policy)); err != nil {
		return err
	}
	t.counters.Subscriptions++
	return nil
}

// AddSubscriptionWithContext appends a context-carrying subscription
// handle. ctx may be nil (spec §4.1: "callback-context parameters are
// allowed to be null").
func (t *Table) AddSubscriptionWithContext(sub interfaces.Subscription, buf interface{}, cb SubscriptionWithContextCallback, ctx interface{}, policy InvocationPolicy) error {
	if sub == nil {
		return fmt.Errorf("handle: subscription must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if buf == nil {
		return fmt.Errorf("handle: buffer must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if cb == nil {
		return fmt.Errorf("handle: callback must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if _, err := t.appendRecord(newSubscriptionWithContextRecord(sub, buf, cb, ctx, policy)); err != nil {
		return err
	}
	t.counters.Subscriptions++
	return nil
}

// AddTimer appends a timer handle. Invocation policy for timers is fixed
// to OnNewData (spec §6 defaults).
func (t *Table) AddTimer(timer interfaces.Timer) error {
	if timer == nil {
		return fmt.Errorf("handle: timer must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if _, err := t.appendRecord(newTimerRecord(timer)); err != nil {
		return err
	}
	t.counters.Timers++
	return nil
}

// AddClient appends a client handle.
func (t *Table) AddClient(c interfaces.Client, respBuf interface{}, cb ClientCallback) error {
	if c == nil {
		return fmt.Errorf("handle: client must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if respBuf == nil {
		return fmt.Errorf("handle: response buffer must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if cb == nil {
		return fmt.Errorf("handle: callback must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if _, err := t.appendRecord(newClientRecord(c, respBuf, cb)); err != nil {
		return err
	}
	t.counters.Clients++
	return nil
}

// AddClientWithRequestID appends a request-id-tracking client handle.
func (t *Table) AddClientWithRequestID(c interfaces.Client, respBuf interface{}, cb ClientWithRequestIDCallback) error {
	if c == nil {
		return fmt.Errorf("handle: client must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if respBuf == nil {
		return fmt.Errorf("handle: response buffer must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if cb == nil {
		return fmt.Errorf("handle: callback must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if _, err := t.appendRecord(newClientWithRequestIDRecord(c, respBuf, cb)); err != nil {
		return err
	}
	t.counters.Clients++
	return nil
}

// AddService appends a service handle.
func (t *Table) AddService(s interfaces.Service, reqBuf interface{}, cb ServiceCallback) error {
	if s == nil {
		return fmt.Errorf("handle: service must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if reqBuf == nil {
		return fmt.Errorf("handle: request buffer must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if cb == nil {
		return fmt.Errorf("handle: callback must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if _, err := t.appendRecord(newServiceRecord(s, reqBuf, cb)); err != nil {
		return err
	}
	t.counters.Services++
	return nil
}

// AddServiceWithRequestID appends a request-id-tracking service handle.
func (t *Table) AddServiceWithRequestID(s interfaces.Service, reqBuf interface{}, cb ServiceWithRequestIDCallback) error {
	if s == nil {
		return fmt.Errorf("handle: service must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if reqBuf == nil {
		return fmt.Errorf("handle: request buffer must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if cb == nil {
		return fmt.Errorf("handle: callback must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if _, err := t.appendRecord(newServiceWithRequestIDRecord(s, reqBuf, cb)); err != nil {
		return err
	}
	t.counters.Services++
	return nil
}

// AddServiceWithContext appends a context-carrying service handle. ctx may
// be nil.
func (t *Table) AddServiceWithContext(s interfaces.Service, reqBuf interface{}, cb ServiceWithContextCallback, ctx interface{}) error {
	if s == nil {
		return fmt.Errorf("handle: service must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if reqBuf == nil {
		return fmt.Errorf("handle: request buffer must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if cb == nil {
		return fmt.Errorf("handle: callback must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if _, err := t.appendRecord(newServiceWithContextRecord(s, reqBuf, cb, ctx)); err != nil {
		return err
	}
	t.counters.Services++
	return nil
}

// AddGuardCondition appends a guard-condition handle.
func (t *Table) AddGuardCondition(g interfaces.GuardCondition, cb GuardConditionCallback) error {
	if g == nil {
		return fmt.Errorf("handle: guard condition must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if cb == nil {
		return fmt.Errorf("handle: callback must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if _, err := t.appendRecord(newGuardConditionRecord(g, cb)); err != nil {
		return err
	}
	t.counters.GuardConditions++
	return nil
}

// ActionClientCounts/ActionServerCounts are added to the aggregate
// sub-entity counters when an action endpoint is registered (spec §4.1:
// "addition also computes the number of sub-entities the action
// abstraction requires ... and adds those to the aggregate counters").
type ActionEntityCounts struct {
	Subscriptions  int
	GuardConditions int
	Timers         int
	Clients        int
	Services       int
}

// AddActionClient appends an action-client handle and folds its sub-entity
// counts into the aggregate counters used to size the wait-set.
func (t *Table) AddActionClient(ref interface{}, endpoint interface{}, subEntities ActionEntityCounts) error {
	if ref == nil || endpoint == nil {
		return fmt.Errorf("handle: action client must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if _, err := t.appendRecord(newActionClientRecord(ref, endpoint, subEntities)); err != nil {
		return err
	}
	t.counters.ActionClients++
	t.foldActionEntityCounts(subEntities)
	return nil
}

// AddActionServer appends an action-server handle and folds its sub-entity
// counts into the aggregate counters.
func (t *Table) AddActionServer(ref interface{}, endpoint interface{}, subEntities ActionEntityCounts) error {
	if ref == nil || endpoint == nil {
		return fmt.Errorf("handle: action server must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if _, err := t.appendRecord(newActionServerRecord(ref, endpoint, subEntities)); err != nil {
		return err
	}
	t.counters.ActionServers++
	t.foldActionEntityCounts(subEntities)
	return nil
}

func (t *Table) foldActionEntityCounts(c ActionEntityCounts) {
	t.counters.Subscriptions += c.Subscriptions
	t.counters.GuardConditions += c.GuardConditions
	t.counters.Timers += c.Timers
	t.counters.Clients += c.Clients
	t.counters.Services += c.Services
}

// unfoldActionEntityCounts subtracts counts previously folded in by
// foldActionEntityCounts, the symmetric operation Remove needs for an
// action-client/action-server handle (spec §8 invariant 1).
func (t *Table) unfoldActionEntityCounts(c ActionEntityCounts) {
	t.counters.Subscriptions -= c.Subscriptions
	t.counters.GuardConditions -= c.GuardConditions
	t.counters.Timers -= c.Timers
	t.counters.Clients -= c.Clients
	t.counters.Services -= c.Services
}

// Remove locates the entry whose middleware reference equals ref (pointer
// equality) and removes it, shifting the tail left by one to preserve the
// order of the remaining entries (spec §4.1, §8 invariant 2).
func (t *Table) Remove(ref interface{}) error {
	idx := -1
	for i := 0; i < t.count; i++ {
		if t.entries[i].Ref == ref {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("handle: no handle registered for reference: %w", rclerrors.ErrNotFound)
	}

	kind := t.entries[idx].Kind
	subEntities := t.entries[idx].ActionSubEntityCounts
	copy(t.entries[idx:t.count-1], t.entries[idx+1:t.count])
	t.entries[t.count-1].reset()
	t.count--
	t.stale = true

	switch kind {
	case KindSubscription, KindSubscriptionWithContext:
		t.counters.Subscriptions--
	case KindTimer:
		t.counters.Timers--
	case KindClient, KindClientWithRequestID:
		t.counters.Clients--
	case KindService, KindServiceWithRequestID, KindServiceWithContext:
		t.counters.Services--
	case KindGuardCondition:
		t.counters.GuardConditions--
	case KindActionClient:
		t.counters.ActionClients--
		t.unfoldActionEntityCounts(subEntities)
	case KindActionServer:
		t.counters.ActionServers--
		t.unfoldActionEntityCounts(subEntities)
	}
	return nil
}
