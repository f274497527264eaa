package handle

import "github.com/loopwire/rclgo/internal/interfaces"

// Callback variants, one per handle kind (spec §3: "exactly one callback
// function pointer of the variant dictated by kind").
type (
	SubscriptionCallback            func(msg interface{})
	SubscriptionWithContextCallback func(msg interface{}, ctx interface{})
	ServiceCallback                 func(req interface{}) interface{}
	ServiceWithRequestIDCallback    func(req interface{}, requestID int64) interface{}
	ServiceWithContextCallback      func(req interface{}, ctx interface{}) interface{}
	ClientCallback                  func(resp interface{})
	ClientWithRequestIDCallback     func(resp interface{}, requestID int64)
	GuardConditionCallback          func()
)

// IndexUnassigned is the sentinel value for Record.Index before a
// successful wait-set collection (spec §3 uses "capacity" as the
// sentinel; this package uses -1 everywhere, including in the table's
// unused slots).
const IndexUnassigned = -1

// ActionFlags carries the per-sub-entity readiness flags action endpoints
// need in addition to the single DataAvailable bit (spec §4.2 item 4).
type ActionFlags struct {
	FeedbackAvailable       bool
	StatusAvailable         bool
	GoalResponseAvailable   bool
	CancelResponseAvailable bool
	ResultResponseAvailable bool

	GoalRequestAvailable   bool
	CancelRequestAvailable bool
	ResultRequestAvailable bool
	GoalExpiredAvailable   bool
}

// Record is one registered source and its callback (spec §3). It behaves
// as a tagged variant: Kind determines which of the middleware-reference,
// buffer, and callback fields are meaningful. Constructors below are the
// only way to populate the kind-specific fields consistently; callers
// outside this package should not set them directly.
type Record struct {
	Kind   Kind
	Policy InvocationPolicy

	Subscription   interfaces.Subscription
	Timer          interfaces.Timer
	Client         interfaces.Client
	Service        interfaces.Service
	GuardCondition interfaces.GuardCondition
	// ActionClient/ActionServer hold the action package's endpoint types.
	// They are stored as interface{} to avoid an import cycle between
	// handle and action (the action package imports handle for
	// ActionFlags and ActionEntityCounts); dispatch and waitset recover
	// the behaviour they need with interface type assertions.
	ActionClient interface{}
	ActionServer interface{}

	// ActionSubEntityCounts records exactly what was folded into the
	// table's aggregate counters when this action endpoint was added, so
	// Remove can fold the same counts back out (spec §8 invariant 1,
	// "count consistency"). Zero for every non-action kind.
	ActionSubEntityCounts ActionEntityCounts

	// Ref is the middleware reference used for pointer-equality lookup on
	// remove (spec §4.1). For non-action kinds it is the same value as the
	// typed field above; for action kinds it is the ref passed at
	// registration, which may differ from the ActionClient/ActionServer
	// endpoint.
	Ref interface{}

	InputBuffer      interface{}
	ResponseBuffer   interface{}
	RequestIDScratch *int64
	CallbackContext  interface{}
	Callback         interface{}

	Index         int
	Initialized   bool
	DataAvailable bool
	ActionFlags   ActionFlags
}

func newBase(kind Kind, policy InvocationPolicy, ref interface{}, callback interface{}) Record {
	return Record{
		Kind:        kind,
		Policy:      policy,
		Ref:         ref,
		Callback:    callback,
		Index:       IndexUnassigned,
		Initialized: true,
	}
}

func newSubscriptionRecord(sub interfaces.Subscription, buf interface{}, cb SubscriptionCallback, policy InvocationPolicy) Record {
	r := newBase(KindSubscription, policy, sub, cb)
	r.Subscription = sub
	r.InputBuffer = buf
	return r
}

func newSubscriptionWithContextRecord(sub interfaces.Subscription, buf interface{}, cb SubscriptionWithContextCallback, ctx interface{}, policy InvocationPolicy) Record {
	r := newBase(KindSubscriptionWithContext, policy, sub, cb)
	r.Subscription = sub
	r.InputBuffer = buf
	r.CallbackContext = ctx
	return r
}

func newTimerRecord(t interfaces.Timer) Record {
	r := newBase(KindTimer, OnNewData, t, nil)
	r.Timer = t
	return r
}

func newClientRecord(c interfaces.Client, respBuf interface{}, cb ClientCallback) Record {
	r := newBase(KindClient, OnNewData, c, cb)
	r.Client = c
	r.ResponseBuffer = respBuf
	return r
}

func newClientWithRequestIDRecord(c interfaces.Client, respBuf interface{}, cb ClientWithRequestIDCallback) Record {
	r := newBase(KindClientWithRequestID, OnNewData, c, cb)
	r.Client = c
	r.ResponseBuffer = respBuf
	r.RequestIDScratch = new(int64)
	return r
}

func newServiceRecord(s interfaces.Service, reqBuf interface{}, cb ServiceCallback) Record {
	r := newBase(KindService, OnNewData, s, cb)
	r.Service = s
	r.InputBuffer = reqBuf
	return r
}

func newServiceWithRequestIDRecord(s interfaces.Service, reqBuf interface{}, cb ServiceWithRequestIDCallback) Record {
	r := newBase(KindServiceWithRequestID, OnNewData, s, cb)
	r.Service = s
	r.InputBuffer = reqBuf
	r.RequestIDScratch = new(int64)
	return r
}

func newServiceWithContextRecord(s interfaces.Service, reqBuf interface{}, cb ServiceWithContextCallback, ctx interface{}) Record {
	r := newBase(KindServiceWithContext, OnNewData, s, cb)
	r.Service = s
	r.InputBuffer = reqBuf
	r.CallbackContext = ctx
	return r
}

func newGuardConditionRecord(g interfaces.GuardCondition, cb GuardConditionCallback) Record {
	r := newBase(KindGuardCondition, OnNewData, g, cb)
	r.GuardCondition = g
	return r
}

func newActionClientRecord(ref interface{}, endpoint interface{}, subEntities ActionEntityCounts) Record {
	r := newBase(KindActionClient, OnNewData, ref, nil)
	r.ActionClient = endpoint
	r.ActionSubEntityCounts = subEntities
	return r
}

func newActionServerRecord(ref interface{}, endpoint interface{}, subEntities ActionEntityCounts) Record {
	r := newBase(KindActionServer, OnNewData, ref, nil)
	r.ActionServer = endpoint
	r.ActionSubEntityCounts = subEntities
	return r
}

// reset zeroes the slot so it matches the zero-initialised state the
// invariant in spec §3 requires for entries at index >= count.
func (r *Record) reset() {
	*r = Record{Index: IndexUnassigned}
}
