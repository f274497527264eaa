package handle

import (
	"errors"
	"testing"

	"github.com/loopwire/rclgo/internal/rclerrors"
)

type fakeSubscription struct{ name string }

func (f *fakeSubscription) Take(dst interface{}) (bool, error) { return true, nil }

func TestNewTableRejectsZeroCapacity(t *testing.T) {
	if _, err := NewTable(0); !errors.Is(err, rclerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAddSubscriptionAndCounters(t *testing.T) {
	tbl, err := NewTable(4)
	if err != nil {
		t.Fatal(err)
	}
	sub := &fakeSubscription{name: "s1"}
	buf := new(string)
	if err := tbl.AddSubscription(sub, buf, func(interface{}) {}, OnNewData); err != nil {
		t.Fatal(err)
	}
	if tbl.Count() != 1 {
		t.Fatalf("count = %d, want 1", tbl.Count())
	}
	if tbl.Counters().Subscriptions != 1 {
		t.Fatalf("subscription counter = %d, want 1", tbl.Counters().Subscriptions)
	}
	if !tbl.Stale() {
		t.Fatal("expected table to be stale after Add")
	}
}

func TestAddBeyondCapacity(t *testing.T) {
	tbl, _ := NewTable(1)
	sub1 := &fakeSubscription{name: "s1"}
	sub2 := &fakeSubscription{name: "s2"}
	buf := new(string)
	if err := tbl.AddSubscription(sub1, buf, func(interface{}) {}, OnNewData); err != nil {
		t.Fatal(err)
	}
	err := tbl.AddSubscription(sub2, buf, func(interface{}) {}, OnNewData)
	if !errors.Is(err, rclerrors.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if tbl.Count() != 1 {
		t.Fatalf("count changed after failed add: %d", tbl.Count())
	}
	if tbl.Counters().Subscriptions != 1 {
		t.Fatalf("counters changed after failed add: %+v", tbl.Counters())
	}
}

func TestAddRejectsNilArguments(t *testing.T) {
	tbl, _ := NewTable(2)
	buf := new(string)
	if err := tbl.AddSubscription(nil, buf, func(interface{}) {}, OnNewData); !errors.Is(err, rclerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for nil subscription, got %v", err)
	}
	sub := &fakeSubscription{}
	if err := tbl.AddSubscription(sub, nil, func(interface{}) {}, OnNewData); !errors.Is(err, rclerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for nil buffer, got %v", err)
	}
	if err := tbl.AddSubscription(sub, buf, nil, OnNewData); !errors.Is(err, rclerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for nil callback, got %v", err)
	}
}

func TestSubscriptionWithContextAllowsNilContext(t *testing.T) {
	tbl, _ := NewTable(2)
	sub := &fakeSubscription{}
	buf := new(string)
	err := tbl.AddSubscriptionWithContext(sub, buf, func(interface{}, interface{}) {}, nil, OnNewData)
	if err != nil {
		t.Fatalf("nil ctx should be legal: %v", err)
	}
}

func TestRemovePreservesOrder(t *testing.T) {
	tbl, _ := NewTable(4)
	s1 := &fakeSubscription{name: "s1"}
	s2 := &fakeSubscription{name: "s2"}
	s3 := &fakeSubscription{name: "s3"}
	buf := new(string)
	for _, s := range []*fakeSubscription{s1, s2, s3} {
		if err := tbl.AddSubscription(s, buf, func(interface{}) {}, OnNewData); err != nil {
			t.Fatal(err)
		}
	}
	tbl.MarkFresh()

	if err := tbl.Remove(s2); err != nil {
		t.Fatal(err)
	}
	if tbl.Count() != 2 {
		t.Fatalf("count = %d, want 2", tbl.Count())
	}
	live := tbl.Live()
	if live[0].Ref != interface{}(s1) || live[1].Ref != interface{}(s3) {
		t.Fatalf("order not preserved after remove: %+v", live)
	}
	if tbl.Counters().Subscriptions != 2 {
		t.Fatalf("counters not decremented: %+v", tbl.Counters())
	}
	if !tbl.Stale() {
		t.Fatal("remove must invalidate the wait-set")
	}
}

func TestRemoveUnregisteredFails(t *testing.T) {
	tbl, _ := NewTable(2)
	s1 := &fakeSubscription{}
	buf := new(string)
	if err := tbl.AddSubscription(s1, buf, func(interface{}) {}, OnNewData); err != nil {
		t.Fatal(err)
	}
	other := &fakeSubscription{}
	if err := tbl.Remove(other); !errors.Is(err, rclerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if tbl.Count() != 1 {
		t.Fatalf("table mutated on failed remove: count=%d", tbl.Count())
	}
}

func TestActionEntityCountsFoldIntoAggregate(t *testing.T) {
	tbl, _ := NewTable(2)
	ref := &struct{}{}
	endpoint := &struct{}{}
	err := tbl.AddActionClient(ref, endpoint, ActionEntityCounts{
		Subscriptions:  2,
		GuardConditions: 1,
		Clients:        3,
	})
	if err != nil {
		t.Fatal(err)
	}
	c := tbl.Counters()
	if c.ActionClients != 1 || c.Subscriptions != 2 || c.GuardConditions != 1 || c.Clients != 3 {
		t.Fatalf("unexpected counters: %+v", c)
	}
}

func TestActionEntityCountsUnfoldOnRemove(t *testing.T) {
	tbl, _ := NewTable(2)
	ref := &struct{}{}
	endpoint := &struct{}{}
	err := tbl.AddActionServer(ref, endpoint, ActionEntityCounts{
		Subscriptions:  2,
		GuardConditions: 1,
		Clients:        3,
		Services:       4,
		Timers:         5,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := tbl.Remove(ref); err != nil {
		t.Fatal(err)
	}

	c := tbl.Counters()
	if c != (Counters{}) {
		t.Fatalf("expected all counters back to zero after remove, got %+v", c)
	}
}
