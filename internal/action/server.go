package action

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/loopwire/rclgo/internal/handle"
	"github.com/loopwire/rclgo/internal/interfaces"
	"github.com/loopwire/rclgo/internal/rclerrors"
)

// ServerGoalDecision is what a user goal callback returns (spec §4.9).
type ServerGoalDecision int

const (
	Rejected ServerGoalDecision = iota
	Accepted
)

// ServerGoalCallback decides whether to accept a newly-arrived goal.
type ServerGoalCallback func(id uuid.UUID, goal interface{}) ServerGoalDecision

// ServerCancelCallback decides whether to accept a cancellation request
// for a goal currently in Canceling.
type ServerCancelCallback func(id uuid.UUID) bool

// ServerCallbacks bundles the user callbacks a Server dispatches to.
type ServerCallbacks struct {
	OnGoal   ServerGoalCallback
	OnCancel ServerCancelCallback
}

// Server is the executor-side half of an action server (spec §3, §4.9).
// It implements dispatch.ActionTaker, dispatch.ActionExecutor and
// waitset.ActionPoller.
type Server struct {
	transport ServerTransport
	callbacks ServerCallbacks
	logger    interfaces.Logger

	pool  *IndexPool
	goals []ServerGoal

	byUUID map[uuid.UUID]int

	pending handle.ActionFlags
}

// NewServer binds a goal-handle pool of handlesNumber slots, one per
// slot in the caller-provided backing array of goal-request payloads
// (spec §4.1).
func NewServer(transport ServerTransport, handlesNumber int, callbacks ServerCallbacks, logger interfaces.Logger) (*Server, error) {
	if transport == nil {
		return nil, fmt.Errorf("action: transport must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if handlesNumber <= 0 {
		return nil, fmt.Errorf("action: handles number must be > 0: %w", rclerrors.ErrInvalidArgument)
	}
	return &Server{
		transport: transport,
		callbacks: callbacks,
		logger:    logger,
		pool:      NewIndexPool(handlesNumber),
		goals:     make([]ServerGoal, handlesNumber),
		byUUID:    make(map[uuid.UUID]int, handlesNumber),
	}, nil
}

// EntityCounts reports the wait-set sub-entity counts this action
// server's endpoint requires.
func (s *Server) EntityCounts() handle.ActionEntityCounts { return s.transport.EntityCounts() }

// PoolFree returns the number of unused goal-handle slots.
func (s *Server) PoolFree() int { return s.pool.Free() }

// MarkGoalEnded is the external helper the user calls once a goal's
// execution concludes (spec §4.9: "user marks it Succeeded/Canceled/
// Aborted via external helper"). It only records the end state and the
// result; nothing is sent from here. Execute's next pass sends the result
// once a result request has arrived, and then releases the slot, so a
// cycle already in progress still sees a consistent goal list.
func (s *Server) MarkGoalEnded(id uuid.UUID, final ServerGoalState, result interface{}) error {
	slot, ok := s.byUUID[id]
	if !ok {
		return fmt.Errorf("action: unknown goal %s: %w", id, rclerrors.ErrNotFound)
	}
	g := &s.goals[slot]
	g.ended = true
	g.endedState = final
	g.result = result
	return nil
}

// Poll reports which sub-entities have data waiting (waitset.ActionPoller).
func (s *Server) Poll() handle.ActionFlags {
	s.pending = s.transport.Pending()
	return s.pending
}

// Take drains at most one message per ready sub-entity (spec §4.3).
func (s *Server) Take() error {
	if s.pending.GoalRequestAvailable {
		s.pending.GoalRequestAvailable = false
		id, goal, ok, err := s.transport.TakeGoalRequest()
		if err != nil {
			return fmt.Errorf("action: take goal request: %w", err)
		}
		if ok {
			slot, acquired := s.pool.Acquire()
			if !acquired {
				// Pool exhausted: the goal is silently dropped, matching
				// the "never fatal" handling the spec gives to other
				// take-step boundary conditions for action endpoints.
				if s.logger != nil {
					s.logger.Warnf("action: goal pool exhausted, dropping goal %s", id)
				}
				return nil
			}
			s.goals[slot] = ServerGoal{UUID: id, State: ServerUnknown, pendingGoal: goal}
			s.byUUID[id] = slot
		}
	}

	if s.pending.CancelRequestAvailable {
		s.pending.CancelRequestAvailable = false
		id, header, ok, err := s.transport.TakeCancelRequest()
		if err != nil {
			return fmt.Errorf("action: take cancel request: %w", err)
		}
		if ok {
			slot, found := s.byUUID[id]
			if !found {
				if sendErr := s.transport.SendCancelResponse(id, CancelUnknownGoal); sendErr != nil {
					return fmt.Errorf("action: send cancel response: %w", sendErr)
				}
			} else {
				g := &s.goals[slot]
				if next, okT := transitionCancel(g.State); okT {
					g.State = next
					g.cancelRequestHeader = header
					g.awaitingCancelDecision = true
				} else if sendErr := s.transport.SendCancelResponse(id, CancelRejected); sendErr != nil {
					return fmt.Errorf("action: send cancel response: %w", sendErr)
				}
			}
		}
	}

	if s.pending.ResultRequestAvailable {
		s.pending.ResultRequestAvailable = false
		id, header, ok, err := s.transport.TakeResultRequest()
		if err != nil {
			return fmt.Errorf("action: take result request: %w", err)
		}
		if ok {
			if slot, found := s.byUUID[id]; found {
				g := &s.goals[slot]
				g.State = ServerExecuting
				g.resultRequested = true
				g.resultRequestHeader = header
			}
			// Unmatched UUID is ignored (spec §4.9: "caller error").
		}
	}

	return nil
}

// Execute runs the goal-callback, cancel-callback and end-of-goal
// bookkeeping for every goal with pending work this cycle (spec §4.4,
// §4.9).
func (s *Server) Execute() error {
	var execErr error
	s.pool.Each(func(slot int) {
		if execErr != nil {
			return
		}
		g := &s.goals[slot]

		if g.State == ServerUnknown && g.pendingGoal != nil {
			goal := g.pendingGoal
			g.pendingGoal = nil
			decision := Rejected
			if s.callbacks.OnGoal != nil {
				decision = s.callbacks.OnGoal(g.UUID, goal)
			}
			if decision == Accepted {
				if err := s.transport.SendGoalResponse(g.UUID, true); err != nil {
					execErr = fmt.Errorf("action: send goal response: %w", err)
					return
				}
				g.State = ServerAccepted
			} else {
				if err := s.transport.SendGoalResponse(g.UUID, false); err != nil {
					execErr = fmt.Errorf("action: send goal response: %w", err)
					return
				}
				s.releaseGoal(slot)
				return
			}
		}

		if g.awaitingCancelDecision {
			g.awaitingCancelDecision = false
			accept := false
			if s.callbacks.OnCancel != nil {
				accept = s.callbacks.OnCancel(g.UUID)
			}
			if accept {
				if err := s.transport.SendCancelResponse(g.UUID, CancelAccepted); err != nil {
					execErr = fmt.Errorf("action: send cancel response: %w", err)
					return
				}
				// Actual cancellation proceeds via user code calling
				// MarkGoalEnded once the goal has actually stopped.
			} else {
				if err := s.transport.SendCancelResponse(g.UUID, CancelRejected); err != nil {
					execErr = fmt.Errorf("action: send cancel response: %w", err)
					return
				}
				g.State = ServerExecuting
			}
		}

		if g.ended {
			g.State = g.endedState
			if g.resultRequested {
				if err := s.transport.SendResultResponse(g.UUID, g.result); err != nil {
					execErr = fmt.Errorf("action: send result response: %w", err)
					return
				}
				s.releaseGoal(slot)
			}
			// If no result request has arrived yet, the goal stays in its
			// terminal state until one does; the take step will pick it
			// up and Execute will deliver the cached result next cycle.
		}
	})
	return execErr
}

func (s *Server) releaseGoal(slot int) {
	delete(s.byUUID, s.goals[slot].UUID)
	s.goals[slot].reset()
	s.pool.Release(slot)
}
