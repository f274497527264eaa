package action

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/loopwire/rclgo/internal/handle"
	"github.com/loopwire/rclgo/internal/interfaces"
	"github.com/loopwire/rclgo/internal/rclerrors"
)

// GoalCallback is invoked once per goal when its goal-response arrives.
type GoalCallback func(id uuid.UUID, accepted bool)

// FeedbackCallback is invoked for each feedback message matched to a goal.
type FeedbackCallback func(id uuid.UUID, feedback interface{})

// CancelCallback is invoked when a cancel-response is matched to a goal.
type CancelCallback func(id uuid.UUID, cancelled bool)

// ResultCallback is invoked when a result-response is matched to a goal.
type ResultCallback func(id uuid.UUID, result interface{})

// ClientCallbacks bundles the user callbacks a Client dispatches to
// (spec §4.9); any of them may be nil.
type ClientCallbacks struct {
	OnGoalResponse   GoalCallback
	OnFeedback       FeedbackCallback
	OnCancelResponse CancelCallback
	OnResult         ResultCallback
}

// Client is the executor-side half of an action client: the goal-handle
// pool plus the per-goal state machine described in spec §3 and §4.9. It
// implements dispatch.ActionTaker, dispatch.ActionExecutor and
// waitset.ActionPoller so the executor can drive it exactly like any
// other handle kind.
type Client struct {
	transport ClientTransport
	callbacks ClientCallbacks
	logger    interfaces.Logger

	pool  *IndexPool
	goals []ClientGoal

	bySeqGoal   map[int64]int
	byUUID      map[uuid.UUID]int
	byCancelSeq map[int64]int
	byResultSeq map[int64]int

	pending handle.ActionFlags
}

// NewClient allocates the goal-handle pool (spec §4.1: "addition of an
// action client allocates a goal-handle pool of caller-specified size").
// This is the only allocation a Client performs.
func NewClient(transport ClientTransport, poolSize int, callbacks ClientCallbacks, logger interfaces.Logger) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("action: transport must not be nil: %w", rclerrors.ErrInvalidArgument)
	}
	if poolSize <= 0 {
		return nil, fmt.Errorf("action: pool size must be > 0: %w", rclerrors.ErrInvalidArgument)
	}
	return &Client{
		transport:   transport,
		callbacks:   callbacks,
		logger:      logger,
		pool:        NewIndexPool(poolSize),
		goals:       make([]ClientGoal, poolSize),
		bySeqGoal:   make(map[int64]int, poolSize),
		byUUID:      make(map[uuid.UUID]int, poolSize),
		byCancelSeq: make(map[int64]int, poolSize),
		byResultSeq: make(map[int64]int, poolSize),
	}, nil
}

// EntityCounts reports the wait-set sub-entity counts the action
// abstraction requires (spec §4.1).
func (c *Client) EntityCounts() handle.ActionEntityCounts { return c.transport.EntityCounts() }

// PoolFree returns the number of unused goal-handle slots.
func (c *Client) PoolFree() int { return c.pool.Free() }

// SendGoal issues a new goal (user-layer operation, not on the hot spin
// path per spec §1 "client-visible action helpers ... out of scope"
// except for the bookkeeping the executor needs to route the eventual
// response). Returns the goal's UUID.
func (c *Client) SendGoal(goal interface{}) (uuid.UUID, error) {
	slot, ok := c.pool.Acquire()
	if !ok {
		return uuid.UUID{}, fmt.Errorf("action: client goal pool exhausted: %w", rclerrors.ErrCapacityExceeded)
	}
	id := uuid.New()
	seq, err := c.transport.SendGoalRequest(id, goal)
	if err != nil {
		c.pool.Release(slot)
		return uuid.UUID{}, err
	}
	c.goals[slot] = ClientGoal{UUID: id, GoalSeq: seq, State: ClientPending}
	c.bySeqGoal[seq] = slot
	c.byUUID[id] = slot
	return id, nil
}

// CancelGoal requests cancellation of an in-flight goal.
func (c *Client) CancelGoal(id uuid.UUID) error {
	slot, ok := c.byUUID[id]
	if !ok {
		return fmt.Errorf("action: unknown goal %s: %w", id, rclerrors.ErrNotFound)
	}
	seq, err := c.transport.SendCancelRequest(id)
	if err != nil {
		return err
	}
	c.goals[slot].CancelSeq = seq
	c.goals[slot].State = ClientCanceling
	c.byCancelSeq[seq] = slot
	return nil
}

// Poll reports which sub-entities have data waiting, without consuming
// it (waitset.ActionPoller).
func (c *Client) Poll() handle.ActionFlags {
	c.pending = c.transport.Pending()
	return c.pending
}

// Take drains at most one message per ready sub-entity and routes it to
// its owning goal (spec §4.3).
func (c *Client) Take() error {
	if c.pending.GoalResponseAvailable {
		c.pending.GoalResponseAvailable = false
		seq, accepted, ok, err := c.transport.TakeGoalResponse()
		if err != nil {
			return fmt.Errorf("action: take goal response: %w", err)
		}
		if ok {
			if slot, found := c.bySeqGoal[seq]; found {
				c.goals[slot].availGoalResponse = true
				c.goals[slot].goalAccepted = accepted
				delete(c.bySeqGoal, seq)
			}
		}
	}
	if c.pending.FeedbackAvailable {
		c.pending.FeedbackAvailable = false
		id, feedback, ok, err := c.transport.TakeFeedback()
		if err != nil {
			return fmt.Errorf("action: take feedback: %w", err)
		}
		if ok {
			if slot, found := c.byUUID[id]; found {
				c.goals[slot].availFeedback = true
				c.goals[slot].lastFeedback = feedback
			}
		}
	}
	if c.pending.CancelResponseAvailable {
		c.pending.CancelResponseAvailable = false
		seq, goalsCanceling, ok, err := c.transport.TakeCancelResponse()
		if err != nil {
			return fmt.Errorf("action: take cancel response: %w", err)
		}
		if ok {
			if slot, found := c.byCancelSeq[seq]; found {
				cancelled := false
				for _, gid := range goalsCanceling {
					if gid == c.goals[slot].UUID {
						cancelled = true
						break
					}
				}
				c.goals[slot].availCancelResponse = true
				c.goals[slot].goalCancelled = cancelled
				delete(c.byCancelSeq, seq)
			}
		}
	}
	if c.pending.ResultResponseAvailable {
		c.pending.ResultResponseAvailable = false
		seq, result, ok, err := c.transport.TakeResultResponse()
		if err != nil {
			return fmt.Errorf("action: take result response: %w", err)
		}
		if ok {
			if slot, found := c.byResultSeq[seq]; found {
				c.goals[slot].availResultResponse = true
				c.goals[slot].lastResult = result
				delete(c.byResultSeq, seq)
			}
		}
	}
	return nil
}

// Execute walks the per-goal list and fires the callbacks for whatever
// was taken this cycle, clearing each per-goal flag immediately on
// consumption (spec §4.4, §4.9).
func (c *Client) Execute() error {
	var execErr error
	c.pool.Each(func(slot int) {
		if execErr != nil {
			return
		}
		g := &c.goals[slot]

		if g.availGoalResponse {
			g.availGoalResponse = false
			if g.goalAccepted {
				g.State = ClientAccepted
				if c.callbacks.OnGoalResponse != nil {
					c.callbacks.OnGoalResponse(g.UUID, true)
				}
				seq, err := c.transport.SendResultRequest(g.UUID)
				if err != nil {
					execErr = fmt.Errorf("action: send result request: %w", err)
					return
				}
				g.ResultSeq = seq
				c.byResultSeq[seq] = slot
			} else {
				if c.callbacks.OnGoalResponse != nil {
					c.callbacks.OnGoalResponse(g.UUID, false)
				}
				c.releaseGoal(slot)
				return
			}
		}

		if g.availFeedback {
			g.availFeedback = false
			if c.callbacks.OnFeedback != nil {
				c.callbacks.OnFeedback(g.UUID, g.lastFeedback)
			}
		}

		if g.availCancelResponse {
			g.availCancelResponse = false
			if c.callbacks.OnCancelResponse != nil {
				c.callbacks.OnCancelResponse(g.UUID, g.goalCancelled)
			}
		}

		if g.availResultResponse {
			g.availResultResponse = false
			if c.callbacks.OnResult != nil {
				c.callbacks.OnResult(g.UUID, g.lastResult)
			}
			c.releaseGoal(slot)
		}
	})
	return execErr
}

func (c *Client) releaseGoal(slot int) {
	delete(c.byUUID, c.goals[slot].UUID)
	c.goals[slot].reset()
	c.pool.Release(slot)
}
