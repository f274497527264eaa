package waitset

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/loopwire/rclgo/internal/interfaces"
)

// fakeSub wraps a semaphore-mode eventfd so the poll backend can register
// it like a real middleware subscription.
type fakeSub struct{ fd int }

func newFakeSub(t *testing.T) *fakeSub {
	t.Helper()
	fd, err := unix.Eventfd(0, unix.EFD_SEMAPHORE|unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		t.Skipf("eventfd unavailable in this sandbox: %v", err)
	}
	f := &fakeSub{fd: fd}
	t.Cleanup(func() { unix.Close(fd) })
	return f
}

func (f *fakeSub) EventFD() int                              { return f.fd }
func (f *fakeSub) Take(dst interface{}) (bool, error)        { return true, nil }
func (f *fakeSub) signal()                                    { unix.Write(f.fd, []byte{1, 0, 0, 0, 0, 0, 0, 0}) }

func TestPollWaitSetTimesOutWithNothingSignalled(t *testing.T) {
	sub := newFakeSub(t)
	ws := NewPollWaitSet()
	if err := ws.Init(interfaces.WaitSetCounts{Subscriptions: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := ws.AddSubscription(sub); err != nil {
		t.Fatal(err)
	}

	ready, timedOut, err := ws.Wait(20 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if !timedOut || len(ready) != 0 {
		t.Fatalf("expected timeout with no ready handles, got ready=%v timedOut=%v", ready, timedOut)
	}
}

func TestPollWaitSetReportsSignalledHandle(t *testing.T) {
	quiet := newFakeSub(t)
	loud := newFakeSub(t)
	ws := NewPollWaitSet()
	if err := ws.Init(interfaces.WaitSetCounts{Subscriptions: 2}); err != nil {
		t.Fatal(err)
	}
	hQuiet, err := ws.AddSubscription(quiet)
	if err != nil {
		t.Fatal(err)
	}
	hLoud, err := ws.AddSubscription(loud)
	if err != nil {
		t.Fatal(err)
	}
	loud.signal()

	ready, timedOut, err := ws.Wait(200 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if timedOut {
		t.Fatal("expected a ready handle, got timeout")
	}
	if len(ready) != 1 || ready[0] != hLoud {
		t.Fatalf("ready = %v, want only %v", ready, hLoud)
	}
	_ = hQuiet
}

func TestPollWaitSetClearThenReInitAllowsRebuild(t *testing.T) {
	sub := newFakeSub(t)
	ws := NewPollWaitSet()
	if err := ws.Init(interfaces.WaitSetCounts{Subscriptions: 1}); err != nil {
		t.Fatal(err)
	}
	ws.Clear()
	if _, err := ws.AddSubscription(sub); err != nil {
		t.Fatal(err)
	}
	if err := ws.Fini(); err != nil {
		t.Fatal(err)
	}
	if ws.IsValid() {
		t.Fatal("expected Fini to invalidate the wait-set")
	}
}
