package dispatch

import (
	"errors"
	"testing"

	"github.com/loopwire/rclgo/internal/handle"
)

type takeFailSub struct{}

func (takeFailSub) Take(dst interface{}) (bool, error) { return false, nil }

type takeOKSub struct{ msg string }

func (s *takeOKSub) Take(dst interface{}) (bool, error) {
	*dst.(*string) = s.msg
	return true, nil
}

type takeErrSub struct{}

func (takeErrSub) Take(dst interface{}) (bool, error) { return false, errors.New("boom") }

func buildSubRecord(t *testing.T, sub interface {
	Take(dst interface{}) (bool, error)
}) *handle.Record {
	t.Helper()
	tbl, err := handle.NewTable(1)
	if err != nil {
		t.Fatal(err)
	}
	buf := new(string)
	if err := tbl.AddSubscription(sub, buf, func(interface{}) {}, handle.OnNewData); err != nil {
		t.Fatal(err)
	}
	rec := tbl.LiveRef(0)
	rec.DataAvailable = true
	return rec
}

func TestTakeClearsDataAvailableOnTakeFailed(t *testing.T) {
	rec := buildSubRecord(t, takeFailSub{})
	if err := Take(rec); err != nil {
		t.Fatalf("take-failed must not be an error: %v", err)
	}
	if rec.DataAvailable {
		t.Fatal("DataAvailable must be cleared on take-failed")
	}
}

func TestTakePropagatesFatalMiddlewareError(t *testing.T) {
	rec := buildSubRecord(t, takeErrSub{})
	if err := Take(rec); err == nil {
		t.Fatal("expected fatal error to propagate")
	}
}

func TestTakeSkipsWhenNotDataAvailable(t *testing.T) {
	rec := buildSubRecord(t, &takeOKSub{msg: "x"})
	rec.DataAvailable = false
	if err := Take(rec); err != nil {
		t.Fatal(err)
	}
	if *rec.InputBuffer.(*string) != "" {
		t.Fatal("take must not run when DataAvailable is false")
	}
}

func TestTakeOnSuccessFillsBuffer(t *testing.T) {
	rec := buildSubRecord(t, &takeOKSub{msg: "hello"})
	if err := Take(rec); err != nil {
		t.Fatal(err)
	}
	if !rec.DataAvailable {
		t.Fatal("DataAvailable must remain true on successful take")
	}
	if *rec.InputBuffer.(*string) != "hello" {
		t.Fatalf("buffer = %q, want hello", *rec.InputBuffer.(*string))
	}
}

func TestTakeTimerAndGuardConditionAreNoOps(t *testing.T) {
	tbl, _ := handle.NewTable(2)
	timer := &fakeTimer{}
	if err := tbl.AddTimer(timer); err != nil {
		t.Fatal(err)
	}
	rec := tbl.LiveRef(0)
	rec.DataAvailable = true
	if err := Take(rec); err != nil {
		t.Fatal(err)
	}
	if timer.called {
		t.Fatal("Take must never invoke the timer's Call")
	}

	guard := &fakeGuard{}
	if err := tbl.AddGuardCondition(guard, func() {}); err != nil {
		t.Fatal(err)
	}
	grec := tbl.LiveRef(1)
	grec.DataAvailable = true
	if err := Take(grec); err != nil {
		t.Fatal(err)
	}
	if !grec.DataAvailable || guard.triggered {
		t.Fatal("Take must leave a guard condition record untouched")
	}
}

type fakeTimer struct{ called bool }

func (f *fakeTimer) Call() error { f.called = true; return nil }

type fakeGuard struct{ triggered bool }

func (f *fakeGuard) Trigger() { f.triggered = true }
