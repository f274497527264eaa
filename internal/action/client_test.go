package action

import (
	"testing"

	"github.com/google/uuid"

	"github.com/loopwire/rclgo/internal/handle"
)

// fakeClientTransport is a minimal scripted ClientTransport used to drive
// the client goal-handle state machine deterministically in tests.
type fakeClientTransport struct {
	pending handle.ActionFlags

	goalSeq      int64
	goalResponse struct {
		seq      int64
		accepted bool
	}
	resultResponse struct {
		seq    int64
		result interface{}
	}
	resultRequestedFor uuid.UUID
}

func (f *fakeClientTransport) EntityCounts() handle.ActionEntityCounts { return handle.ActionEntityCounts{} }
func (f *fakeClientTransport) Pending() handle.ActionFlags             { return f.pending }

func (f *fakeClientTransport) TakeGoalResponse() (int64, bool, bool, error) {
	return f.goalResponse.seq, f.goalResponse.accepted, true, nil
}
func (f *fakeClientTransport) TakeFeedback() (uuid.UUID, interface{}, bool, error) {
	return uuid.UUID{}, nil, false, nil
}
func (f *fakeClientTransport) TakeCancelResponse() (int64, []uuid.UUID, bool, error) {
	return 0, nil, false, nil
}
func (f *fakeClientTransport) TakeResultResponse() (int64, interface{}, bool, error) {
	return f.resultResponse.seq, f.resultResponse.result, true, nil
}

func (f *fakeClientTransport) SendGoalRequest(id uuid.UUID, goal interface{}) (int64, error) {
	f.goalSeq = 7
	return f.goalSeq, nil
}
func (f *fakeClientTransport) SendCancelRequest(id uuid.UUID) (int64, error) { return 1, nil }
func (f *fakeClientTransport) SendResultRequest(id uuid.UUID) (int64, error) {
	f.resultRequestedFor = id
	return 99, nil
}

// TestClientAcceptAndResultScenario exercises spec.md scenario S5: goal
// accepted, result delivered, pool slot released back to the pool.
func TestClientAcceptAndResultScenario(t *testing.T) {
	transport := &fakeClientTransport{}
	var accepted bool
	var gotID uuid.UUID
	var gotResult interface{}
	cbs := ClientCallbacks{
		OnGoalResponse: func(id uuid.UUID, ok bool) { accepted = ok; gotID = id },
		OnResult:       func(id uuid.UUID, result interface{}) { gotResult = result },
	}
	client, err := NewClient(transport, 2, cbs, nil)
	if err != nil {
		t.Fatal(err)
	}

	id, err := client.SendGoal("do-the-thing")
	if err != nil {
		t.Fatal(err)
	}
	if client.PoolFree() != 1 {
		t.Fatalf("pool free = %d, want 1 after one goal issued", client.PoolFree())
	}

	transport.goalResponse.seq = transport.goalSeq
	transport.goalResponse.accepted = true
	transport.pending = handle.ActionFlags{GoalResponseAvailable: true}
	client.Poll()
	if err := client.Take(); err != nil {
		t.Fatal(err)
	}
	if err := client.Execute(); err != nil {
		t.Fatal(err)
	}
	if !accepted || gotID != id {
		t.Fatalf("expected goal-response callback with accepted=true id=%s, got accepted=%v id=%s", id, accepted, gotID)
	}
	if transport.resultRequestedFor != id {
		t.Fatal("expected a result request to be issued after acceptance")
	}

	transport.resultResponse.seq = 99
	transport.resultResponse.result = "done"
	transport.pending = handle.ActionFlags{ResultResponseAvailable: true}
	client.Poll()
	if err := client.Take(); err != nil {
		t.Fatal(err)
	}
	if err := client.Execute(); err != nil {
		t.Fatal(err)
	}
	if gotResult != "done" {
		t.Fatalf("result = %v, want done", gotResult)
	}
	if client.PoolFree() != 2 {
		t.Fatalf("pool free = %d, want 2 after goal completes", client.PoolFree())
	}
}

func TestClientRejectedGoalReleasesSlotWithoutResultRequest(t *testing.T) {
	transport := &fakeClientTransport{}
	var accepted bool
	cbs := ClientCallbacks{OnGoalResponse: func(id uuid.UUID, ok bool) { accepted = ok }}
	client, err := NewClient(transport, 1, cbs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.SendGoal("x"); err != nil {
		t.Fatal(err)
	}

	transport.goalResponse.seq = transport.goalSeq
	transport.goalResponse.accepted = false
	transport.pending = handle.ActionFlags{GoalResponseAvailable: true}
	client.Poll()
	if err := client.Take(); err != nil {
		t.Fatal(err)
	}
	if err := client.Execute(); err != nil {
		t.Fatal(err)
	}
	if accepted {
		t.Fatal("expected rejection")
	}
	if client.PoolFree() != 1 {
		t.Fatal("expected slot released on rejection")
	}
	if transport.resultRequestedFor != (uuid.UUID{}) {
		t.Fatal("rejected goal must not issue a result request")
	}
}
