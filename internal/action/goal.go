package action

import "github.com/google/uuid"

// ClientGoalState is the per-goal state machine on the issuing side
// (spec §4.9).
type ClientGoalState int

const (
	ClientPending ClientGoalState = iota
	ClientAccepted
	ClientExecuting
	ClientCanceling
	ClientTerminal
)

// ClientGoal is one goal-handle slot in a Client's pool.
type ClientGoal struct {
	UUID uuid.UUID

	GoalSeq   int64
	CancelSeq int64
	ResultSeq int64

	State ClientGoalState

	availGoalResponse   bool
	goalAccepted        bool
	availFeedback       bool
	lastFeedback        interface{}
	availCancelResponse bool
	goalCancelled       bool
	availResultResponse bool
	lastResult          interface{}
}

func (g *ClientGoal) reset() { *g = ClientGoal{} }

// ServerGoalState is the per-goal state machine on the responding side
// (spec §4.9).
type ServerGoalState int

const (
	ServerUnknown ServerGoalState = iota
	ServerAccepted
	ServerExecuting
	ServerCanceling
	ServerSucceeded
	ServerCanceled
	ServerAborted
)

// CancelResponseStatus is the outcome sent in response to a cancel
// request (spec §4.9).
type CancelResponseStatus int

const (
	CancelAccepted CancelResponseStatus = iota
	CancelRejected
	CancelUnknownGoal
)

// transitionCancel implements the `transition(current_state, CancelGoal)`
// helper from spec §4.9: only goals that are Accepted or Executing can
// move to Canceling; everything else is rejected.
func transitionCancel(s ServerGoalState) (ServerGoalState, bool) {
	switch s {
	case ServerAccepted, ServerExecuting:
		return ServerCanceling, true
	default:
		return s, false
	}
}

// ServerGoal is one goal-handle slot in a Server's pool.
type ServerGoal struct {
	UUID  uuid.UUID
	State ServerGoalState

	pendingGoal interface{}

	awaitingCancelDecision bool
	cancelRequestHeader    interface{}

	resultRequested     bool
	resultRequestHeader interface{}

	ended      bool
	endedState ServerGoalState
	result     interface{}
}

func (g *ServerGoal) reset() { *g = ServerGoal{} }
