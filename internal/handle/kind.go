// Package handle implements the executor's handle record and handle table
// (spec.md §3, §4.1 — components C1 and C2).
package handle

// Kind is the closed enumeration of registrable source kinds (spec §3).
type Kind int

const (
	KindNone Kind = iota
	KindSubscription
	KindSubscriptionWithContext
	KindTimer
	KindClient
	KindClientWithRequestID
	KindService
	KindServiceWithRequestID
	KindServiceWithContext
	KindGuardCondition
	KindActionClient
	KindActionServer
)

func (k Kind) String() string {
	switch k {
	case KindSubscription:
		return "Subscription"
	case KindSubscriptionWithContext:
		return "SubscriptionWithContext"
	case KindTimer:
		return "Timer"
	case KindClient:
		return "Client"
	case KindClientWithRequestID:
		return "ClientWithRequestId"
	case KindService:
		return "Service"
	case KindServiceWithRequestID:
		return "ServiceWithRequestId"
	case KindServiceWithContext:
		return "ServiceWithContext"
	case KindGuardCondition:
		return "GuardCondition"
	case KindActionClient:
		return "ActionClient"
	case KindActionServer:
		return "ActionServer"
	default:
		return "None"
	}
}

// InvocationPolicy selects when a handle's callback fires (spec §3).
type InvocationPolicy int

const (
	// OnNewData fires the callback only when readiness was set and the
	// take (if any) succeeded.
	OnNewData InvocationPolicy = iota
	// Always fires the callback every cycle regardless of readiness.
	Always
)
