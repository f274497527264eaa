package action

import (
	"github.com/google/uuid"

	"github.com/loopwire/rclgo/internal/handle"
)

// ClientTransport is the middleware-side collaborator a Client takes
// from and sends through (spec §6: "Action helpers for wait-set entity
// counts, take-goal/cancel/result/feedback/status ... send-response").
// simmw provides the runnable implementation; tests use fakes.
type ClientTransport interface {
	EntityCounts() handle.ActionEntityCounts

	// Pending reports, without consuming, which sub-entities currently
	// have at least one message queued (spec §4.2 item 4).
	Pending() handle.ActionFlags

	TakeGoalResponse() (seq int64, accepted bool, ok bool, err error)
	TakeFeedback() (id uuid.UUID, feedback interface{}, ok bool, err error)
	TakeCancelResponse() (seq int64, goalsCanceling []uuid.UUID, ok bool, err error)
	TakeResultResponse() (seq int64, result interface{}, ok bool, err error)

	SendGoalRequest(id uuid.UUID, goal interface{}) (seq int64, err error)
	SendCancelRequest(id uuid.UUID) (seq int64, err error)
	SendResultRequest(id uuid.UUID) (seq int64, err error)
}

// ServerTransport is the middleware-side collaborator a Server takes
// from and sends through.
type ServerTransport interface {
	EntityCounts() handle.ActionEntityCounts
	Pending() handle.ActionFlags

	TakeGoalRequest() (id uuid.UUID, goal interface{}, ok bool, err error)
	TakeCancelRequest() (id uuid.UUID, header interface{}, ok bool, err error)
	TakeResultRequest() (id uuid.UUID, header interface{}, ok bool, err error)

	SendGoalResponse(id uuid.UUID, accepted bool) error
	SendCancelResponse(id uuid.UUID, status CancelResponseStatus) error
	SendResultResponse(id uuid.UUID, result interface{}) error
}
