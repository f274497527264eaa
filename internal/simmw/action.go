package simmw

import (
	"github.com/google/uuid"

	"github.com/loopwire/rclgo/internal/action"
	"github.com/loopwire/rclgo/internal/handle"
)

// goalRequestPayload/goalResponsePayload etc. are the wire payloads the
// three request/response channels an action endpoint needs carry; the
// UUID rides alongside the channel's own int64 sequence number so the
// server side can key its pending-request bookkeeping by goal id the
// same way the client side keys by sequence (spec §4.9).
type goalRequestPayload struct {
	ID   uuid.UUID
	Goal interface{}
}

type goalResponsePayload struct {
	Accepted bool
}

type cancelRequestPayload struct {
	ID     uuid.UUID
	Header interface{}
}

type cancelResponsePayload struct {
	GoalsCanceling []uuid.UUID
}

type resultRequestPayload struct {
	ID     uuid.UUID
	Header interface{}
}

type resultResponsePayload struct {
	Result interface{}
}

// ActionChannel is the shared in-process transport underneath one action
// client/server pair: three request/response channels (goal, cancel,
// result) plus one feedback topic, matching the sub-entity inventory
// action.ClientTransport/ServerTransport report through EntityCounts
// (spec §4.1, §6).
type ActionChannel struct {
	goal   *RequestResponseChannel
	cancel *RequestResponseChannel
	result *RequestResponseChannel

	feedbackPub *Publisher
	feedbackSub *Subscription
}

// NewActionChannel builds the transport with the given per-channel queue
// depth.
func NewActionChannel(depth int) (*ActionChannel, error) {
	goalCh, err := NewRequestResponseChannel(depth)
	if err != nil {
		return nil, err
	}
	cancelCh, err := NewRequestResponseChannel(depth)
	if err != nil {
		return nil, err
	}
	resultCh, err := NewRequestResponseChannel(depth)
	if err != nil {
		return nil, err
	}
	pub, sub, err := NewTopic(depth)
	if err != nil {
		return nil, err
	}
	return &ActionChannel{
		goal:        goalCh,
		cancel:      cancelCh,
		result:      resultCh,
		feedbackPub: pub,
		feedbackSub: sub,
	}, nil
}

// ClientTransport returns the action.ClientTransport view of ch.
func (ch *ActionChannel) ClientTransport() *ActionClientTransport {
	return &ActionClientTransport{
		goal:     NewClient(ch.goal),
		cancel:   NewClient(ch.cancel),
		result:   NewClient(ch.result),
		feedback: ch.feedbackSub,
	}
}

// ServerTransport returns the action.ServerTransport view of ch.
func (ch *ActionChannel) ServerTransport() *ActionServerTransport {
	return &ActionServerTransport{
		goal:         NewService(ch.goal),
		cancel:       NewService(ch.cancel),
		result:       NewService(ch.result),
		goalReqSeq:   make(map[uuid.UUID]int64),
		cancelReqSeq: make(map[uuid.UUID]int64),
		resultReqSeq: make(map[uuid.UUID]int64),
	}
}

// ActionClientTransport implements action.ClientTransport over an
// ActionChannel.
type ActionClientTransport struct {
	goal     *Client
	cancel   *Client
	result   *Client
	feedback *Subscription
}

var _ action.ClientTransport = (*ActionClientTransport)(nil)

// EntityCounts implements action.ClientTransport.
func (t *ActionClientTransport) EntityCounts() handle.ActionEntityCounts {
	return handle.ActionEntityCounts{Clients: 3, Subscriptions: 1}
}

// Pending implements action.ClientTransport.
func (t *ActionClientTransport) Pending() handle.ActionFlags {
	return handle.ActionFlags{
		GoalResponseAvailable:   t.goal.ch.responses.Ready(),
		FeedbackAvailable:       t.feedback.q.Ready(),
		CancelResponseAvailable: t.cancel.ch.responses.Ready(),
		ResultResponseAvailable: t.result.ch.responses.Ready(),
	}
}

// TakeGoalResponse implements action.ClientTransport.
func (t *ActionClientTransport) TakeGoalResponse() (seq int64, accepted bool, ok bool, err error) {
	var resp goalResponsePayload
	ok, seq, err = t.goal.TakeResponse(&resp)
	return seq, resp.Accepted, ok, err
}

// TakeFeedback implements action.ClientTransport.
func (t *ActionClientTransport) TakeFeedback() (id uuid.UUID, feedback interface{}, ok bool, err error) {
	var fb struct {
		ID       uuid.UUID
		Feedback interface{}
	}
	ok, err = t.feedback.Take(&fb)
	return fb.ID, fb.Feedback, ok, err
}

// TakeCancelResponse implements action.ClientTransport.
func (t *ActionClientTransport) TakeCancelResponse() (seq int64, goalsCanceling []uuid.UUID, ok bool, err error) {
	var resp cancelResponsePayload
	ok, seq, err = t.cancel.TakeResponse(&resp)
	return seq, resp.GoalsCanceling, ok, err
}

// TakeResultResponse implements action.ClientTransport.
func (t *ActionClientTransport) TakeResultResponse() (seq int64, result interface{}, ok bool, err error) {
	var resp resultResponsePayload
	ok, seq, err = t.result.TakeResponse(&resp)
	return seq, resp.Result, ok, err
}

// SendGoalRequest implements action.ClientTransport.
func (t *ActionClientTransport) SendGoalRequest(id uuid.UUID, goal interface{}) (int64, error) {
	return t.goal.SendRequest(goalRequestPayload{ID: id, Goal: goal})
}

// SendCancelRequest implements action.ClientTransport.
func (t *ActionClientTransport) SendCancelRequest(id uuid.UUID) (int64, error) {
	return t.cancel.SendRequest(cancelRequestPayload{ID: id})
}

// SendResultRequest implements action.ClientTransport.
func (t *ActionClientTransport) SendResultRequest(id uuid.UUID) (int64, error) {
	return t.result.SendRequest(resultRequestPayload{ID: id})
}

// PublishFeedback is the producing side used by the action-server owner
// to emit feedback for id; it has no counterpart in action.ServerTransport
// because feedback publication happens outside the executor's take/execute
// cycle (spec §1: client-visible action helpers are out of scope except
// for the bookkeeping the executor needs to route responses).
func (ch *ActionChannel) PublishFeedback(id uuid.UUID, feedback interface{}) error {
	return ch.feedbackPub.Publish(struct {
		ID       uuid.UUID
		Feedback interface{}
	}{ID: id, Feedback: feedback})
}

// ActionServerTransport implements action.ServerTransport over an
// ActionChannel. It tracks, per pending request UUID, the envelope
// sequence number needed to route SendXResponse back through the
// matching RequestResponseChannel's Service.SendResponse call.
type ActionServerTransport struct {
	goal   *Service
	cancel *Service
	result *Service

	goalReqSeq   map[uuid.UUID]int64
	cancelReqSeq map[uuid.UUID]int64
	resultReqSeq map[uuid.UUID]int64
}

var _ action.ServerTransport = (*ActionServerTransport)(nil)

// EntityCounts implements action.ServerTransport.
func (t *ActionServerTransport) EntityCounts() handle.ActionEntityCounts {
	return handle.ActionEntityCounts{Services: 3}
}

// Pending implements action.ServerTransport.
func (t *ActionServerTransport) Pending() handle.ActionFlags {
	return handle.ActionFlags{
		GoalRequestAvailable:   t.goal.ch.requests.Ready(),
		CancelRequestAvailable: t.cancel.ch.requests.Ready(),
		ResultRequestAvailable: t.result.ch.requests.Ready(),
	}
}

// TakeGoalRequest implements action.ServerTransport.
func (t *ActionServerTransport) TakeGoalRequest() (id uuid.UUID, goal interface{}, ok bool, err error) {
	var req goalRequestPayload
	var seq int64
	ok, seq, err = t.goal.TakeRequest(&req)
	if ok {
		t.goalReqSeq[req.ID] = seq
	}
	return req.ID, req.Goal, ok, err
}

// TakeCancelRequest implements action.ServerTransport.
func (t *ActionServerTransport) TakeCancelRequest() (id uuid.UUID, header interface{}, ok bool, err error) {
	var req cancelRequestPayload
	var seq int64
	ok, seq, err = t.cancel.TakeRequest(&req)
	if ok {
		t.cancelReqSeq[req.ID] = seq
	}
	return req.ID, req.Header, ok, err
}

// TakeResultRequest implements action.ServerTransport.
func (t *ActionServerTransport) TakeResultRequest() (id uuid.UUID, header interface{}, ok bool, err error) {
	var req resultRequestPayload
	var seq int64
	ok, seq, err = t.result.TakeRequest(&req)
	if ok {
		t.resultReqSeq[req.ID] = seq
	}
	return req.ID, req.Header, ok, err
}

// SendGoalResponse implements action.ServerTransport.
func (t *ActionServerTransport) SendGoalResponse(id uuid.UUID, accepted bool) error {
	seq, ok := t.goalReqSeq[id]
	if !ok {
		return nil
	}
	delete(t.goalReqSeq, id)
	return t.goal.SendResponse(seq, goalResponsePayload{Accepted: accepted})
}

// SendCancelResponse implements action.ServerTransport.
func (t *ActionServerTransport) SendCancelResponse(id uuid.UUID, status action.CancelResponseStatus) error {
	seq, ok := t.cancelReqSeq[id]
	if !ok {
		return nil
	}
	delete(t.cancelReqSeq, id)
	var canceling []uuid.UUID
	if status == action.CancelAccepted {
		canceling = []uuid.UUID{id}
	}
	return t.cancel.SendResponse(seq, cancelResponsePayload{GoalsCanceling: canceling})
}

// SendResultResponse implements action.ServerTransport.
func (t *ActionServerTransport) SendResultResponse(id uuid.UUID, result interface{}) error {
	seq, ok := t.resultReqSeq[id]
	if !ok {
		return nil
	}
	delete(t.resultReqSeq, id)
	return t.result.SendResponse(seq, resultResponsePayload{Result: result})
}
