// Package dispatch implements the take and execute steps (spec §4.3,
// §4.4 — components C4 and C5), the trigger predicate (§4.5 — C6), and
// the two scheduling policies (§4.6 — C7) that drive them.
package dispatch

import (
	"fmt"

	"github.com/loopwire/rclgo/internal/handle"
	"github.com/loopwire/rclgo/internal/rclerrors"
)

// ActionTaker is implemented by action endpoints (handle.Record's
// ActionClient/ActionServer field) so the take step can delegate to
// them without dispatch importing the action package. An action
// endpoint performs its own per-sub-entity takes and goal-handle
// bookkeeping internally (spec §4.3's action-client/action-server
// paragraphs); Take reports only whether any of them failed fatally.
type ActionTaker interface {
	Take() error
}

// Take drains at most one payload per ready handle into its user buffer
// (spec §4.3). It is a no-op for handles that are not DataAvailable,
// for Timer and GuardCondition kinds (which have no take primitive), and
// it never takes twice for the same handle in one call (spec §8
// invariant 4). A middleware "take-failed" condition is not an error: it
// clears DataAvailable and Take returns nil. Any other error is fatal
// and is returned for the caller to abort the cycle with.
func Take(rec *handle.Record) error {
	if !rec.DataAvailable {
		return nil
	}

	switch rec.Kind {
	case handle.KindSubscription, handle.KindSubscriptionWithContext:
		ok, err := rec.Subscription.Take(rec.InputBuffer)
		if err != nil {
			return fmt.Errorf("dispatch: subscription take: %w", err)
		}
		if !ok {
			rec.DataAvailable = false
		}
		return nil

	case handle.KindService, handle.KindServiceWithRequestID, handle.KindServiceWithContext:
		ok, requestID, err := rec.Service.TakeRequest(rec.InputBuffer)
		if err != nil {
			return fmt.Errorf("dispatch: service take: %w", err)
		}
		if !ok {
			rec.DataAvailable = false
			return nil
		}
		if rec.RequestIDScratch != nil {
			*rec.RequestIDScratch = requestID
		}
		return nil

	case handle.KindClient, handle.KindClientWithRequestID:
		ok, requestID, err := rec.Client.TakeResponse(rec.ResponseBuffer)
		if err != nil {
			return fmt.Errorf("dispatch: client take: %w", err)
		}
		if !ok {
			rec.DataAvailable = false
			return nil
		}
		if rec.RequestIDScratch != nil {
			*rec.RequestIDScratch = requestID
		}
		return nil

	case handle.KindTimer, handle.KindGuardCondition:
		// Readiness is authoritative; there is no separate take.
		return nil

	case handle.KindActionClient:
		if t, ok := rec.ActionClient.(ActionTaker); ok {
			if err := t.Take(); err != nil {
				return fmt.Errorf("dispatch: action client take: %w", err)
			}
		}
		return nil

	case handle.KindActionServer:
		if t, ok := rec.ActionServer.(ActionTaker); ok {
			if err := t.Take(); err != nil {
				return fmt.Errorf("dispatch: action server take: %w", err)
			}
		}
		return nil

	default:
		return fmt.Errorf("dispatch: unknown handle kind %v: %w", rec.Kind, rclerrors.ErrInvalidArgument)
	}
}
