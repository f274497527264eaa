package dispatch

import (
	"errors"
	"testing"

	"github.com/loopwire/rclgo/internal/handle"
	"github.com/loopwire/rclgo/internal/interfaces"
)

type nopSub struct{}

func (nopSub) Take(dst interface{}) (bool, error) { return true, nil }

func TestExecuteSubscriptionPassesNilWhenAlwaysAndNoData(t *testing.T) {
	tbl, _ := handle.NewTable(1)
	var got interface{} = "untouched"
	cb := func(msg interface{}) { got = msg }
	if err := tbl.AddSubscription(nopSub{}, new(string), cb, handle.Always); err != nil {
		t.Fatal(err)
	}
	rec := tbl.LiveRef(0)
	rec.DataAvailable = false

	if err := Execute(rec); err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil payload, got %v", got)
	}
}

func TestExecuteSubscriptionSkippedUnderOnNewDataWithoutData(t *testing.T) {
	tbl, _ := handle.NewTable(1)
	fired := false
	cb := func(msg interface{}) { fired = true }
	if err := tbl.AddSubscription(nopSub{}, new(string), cb, handle.OnNewData); err != nil {
		t.Fatal(err)
	}
	rec := tbl.LiveRef(0)
	rec.DataAvailable = false

	if err := Execute(rec); err != nil {
		t.Fatal(err)
	}
	if fired {
		t.Fatal("OnNewData callback must not fire without data")
	}
}

type canceledTimer struct{}

func (canceledTimer) Call() error { return interfaces.ErrTimerCanceled }

func TestExecuteSwallowsTimerCanceled(t *testing.T) {
	tbl, _ := handle.NewTable(1)
	if err := tbl.AddTimer(canceledTimer{}); err != nil {
		t.Fatal(err)
	}
	rec := tbl.LiveRef(0)
	rec.DataAvailable = true

	if err := Execute(rec); err != nil {
		t.Fatalf("TimerCanceled must be swallowed, got %v", err)
	}
}

type failingTimer struct{}

func (failingTimer) Call() error { return errors.New("boom") }

func TestExecutePropagatesOtherTimerErrors(t *testing.T) {
	tbl, _ := handle.NewTable(1)
	if err := tbl.AddTimer(failingTimer{}); err != nil {
		t.Fatal(err)
	}
	rec := tbl.LiveRef(0)
	rec.DataAvailable = true

	if err := Execute(rec); err == nil {
		t.Fatal("expected non-canceled timer error to propagate")
	}
}

type recordingService struct {
	sentID   int64
	sentResp interface{}
}

func (s *recordingService) TakeRequest(dst interface{}) (bool, int64, error) { return true, 42, nil }
func (s *recordingService) SendResponse(requestID int64, resp interface{}) error {
	s.sentID = requestID
	s.sentResp = resp
	return nil
}

func TestExecuteServiceSendsResponseWithRequestID(t *testing.T) {
	svc := &recordingService{}
	tbl, _ := handle.NewTable(1)
	cb := func(req interface{}, requestID int64) interface{} { return "resp" }
	if err := tbl.AddServiceWithRequestID(svc, new(string), cb); err != nil {
		t.Fatal(err)
	}
	rec := tbl.LiveRef(0)
	rec.DataAvailable = true
	*rec.RequestIDScratch = 42

	if err := Execute(rec); err != nil {
		t.Fatal(err)
	}
	if svc.sentID != 42 || svc.sentResp != "resp" {
		t.Fatalf("unexpected response sent: id=%d resp=%v", svc.sentID, svc.sentResp)
	}
}

type failingSendService struct{}

func (failingSendService) TakeRequest(dst interface{}) (bool, int64, error) { return true, 0, nil }
func (failingSendService) SendResponse(requestID int64, resp interface{}) error {
	return errors.New("send failed")
}

func TestExecuteServiceSendFailureIsFatal(t *testing.T) {
	tbl, _ := handle.NewTable(1)
	cb := func(req interface{}) interface{} { return "resp" }
	if err := tbl.AddService(failingSendService{}, new(string), cb); err != nil {
		t.Fatal(err)
	}
	rec := tbl.LiveRef(0)
	rec.DataAvailable = true

	if err := Execute(rec); err == nil {
		t.Fatal("expected send-response failure to be fatal")
	}
}
