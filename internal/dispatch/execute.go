package dispatch

import (
	"errors"
	"fmt"

	"github.com/loopwire/rclgo/internal/handle"
	"github.com/loopwire/rclgo/internal/interfaces"
	"github.com/loopwire/rclgo/internal/rclerrors"
)

// ActionExecutor is implemented by action endpoints to run their own
// per-goal execute pass (spec §4.4: "the step walks the per-goal list
// and clears per-goal flags immediately on consumption"). It is invoked
// unconditionally every cycle; an endpoint with nothing ready is a
// no-op internally.
type ActionExecutor interface {
	Execute() error
}

// Execute invokes the callback variant selected by rec.Kind, honouring
// the invocation policy (spec §4.4): Always fires every cycle, passing a
// nil payload when nothing was taken; OnNewData fires only when
// DataAvailable is still true after Take.
func Execute(rec *handle.Record) error {
	fire := rec.Policy == handle.Always || rec.DataAvailable

	switch rec.Kind {
	case handle.KindSubscription:
		if !fire {
			return nil
		}
		cb := rec.Callback.(handle.SubscriptionCallback)
		cb(payloadOrNil(rec))
		return nil

	case handle.KindSubscriptionWithContext:
		if !fire {
			return nil
		}
		cb := rec.Callback.(handle.SubscriptionWithContextCallback)
		cb(payloadOrNil(rec), rec.CallbackContext)
		return nil

	case handle.KindTimer:
		if !fire {
			return nil
		}
		if err := rec.Timer.Call(); err != nil {
			if errors.Is(err, interfaces.ErrTimerCanceled) || errors.Is(err, rclerrors.ErrTimerCanceled) {
				return nil
			}
			return fmt.Errorf("dispatch: timer call: %w", err)
		}
		return nil

	case handle.KindService:
		if !fire {
			return nil
		}
		cb := rec.Callback.(handle.ServiceCallback)
		resp := cb(rec.InputBuffer)
		return sendResponse(rec, resp)

	case handle.KindServiceWithRequestID:
		if !fire {
			return nil
		}
		cb := rec.Callback.(handle.ServiceWithRequestIDCallback)
		resp := cb(rec.InputBuffer, requestID(rec))
		return sendResponse(rec, resp)

	case handle.KindServiceWithContext:
		if !fire {
			return nil
		}
		cb := rec.Callback.(handle.ServiceWithContextCallback)
		resp := cb(rec.InputBuffer, rec.CallbackContext)
		return sendResponse(rec, resp)

	case handle.KindClient:
		if !fire {
			return nil
		}
		cb := rec.Callback.(handle.ClientCallback)
		cb(responseOrNil(rec))
		return nil

	case handle.KindClientWithRequestID:
		if !fire {
			return nil
		}
		cb := rec.Callback.(handle.ClientWithRequestIDCallback)
		cb(responseOrNil(rec), requestID(rec))
		return nil

	case handle.KindGuardCondition:
		if !fire {
			return nil
		}
		cb := rec.Callback.(handle.GuardConditionCallback)
		cb()
		return nil

	case handle.KindActionClient:
		if exec, ok := rec.ActionClient.(ActionExecutor); ok {
			if err := exec.Execute(); err != nil {
				return fmt.Errorf("dispatch: action client execute: %w", err)
			}
		}
		return nil

	case handle.KindActionServer:
		if exec, ok := rec.ActionServer.(ActionExecutor); ok {
			if err := exec.Execute(); err != nil {
				return fmt.Errorf("dispatch: action server execute: %w", err)
			}
		}
		return nil

	default:
		return fmt.Errorf("dispatch: unknown handle kind %v: %w", rec.Kind, rclerrors.ErrInvalidArgument)
	}
}

func payloadOrNil(rec *handle.Record) interface{} {
	if rec.DataAvailable {
		return rec.InputBuffer
	}
	return nil
}

func responseOrNil(rec *handle.Record) interface{} {
	if rec.DataAvailable {
		return rec.ResponseBuffer
	}
	return nil
}

func requestID(rec *handle.Record) int64 {
	if rec.RequestIDScratch == nil {
		return 0
	}
	return *rec.RequestIDScratch
}

func sendResponse(rec *handle.Record, resp interface{}) error {
	if err := rec.Service.SendResponse(requestID(rec), resp); err != nil {
		return fmt.Errorf("dispatch: send response: %w", err)
	}
	return nil
}
