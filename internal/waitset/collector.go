package waitset

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/loopwire/rclgo/internal/handle"
	"github.com/loopwire/rclgo/internal/interfaces"
)

// ActionPoller is implemented by action endpoints stored in a
// handle.Record's ActionClient/ActionServer field. Action sub-entities sit
// behind the action package's transport interfaces (simmw.ActionChannel
// in this module) rather than being registered directly in the shared
// wait-set (spec §1 treats exact
// RMW/DDS wait-set wiring for actions as a middleware detail out of
// scope, and §4.2-§4.4 only require performing the take each flag calls
// for); Collect polls them out of band every cycle instead, which still
// honors "at most one take per cycle per ready flag" since Poll is called
// exactly once per record per Collect.
type ActionPoller interface {
	Poll() handle.ActionFlags
}

// Collector is the readiness-aggregation component (spec §4.2 — C3). It
// owns the WaitSet, rebuilds it whenever the table's structure goes
// stale, and on every cycle clears, re-registers every live non-action
// entry, waits, and writes DataAvailable/ActionFlags back onto the
// table's records in place.
type Collector struct {
	ws      interfaces.WaitSet
	timeout time.Duration
}

// NewCollector wraps ws (normally NewWaitSet()'s result) with the
// per-cycle wait timeout configured on the executor.
func NewCollector(ws interfaces.WaitSet, timeout time.Duration) *Collector {
	return &Collector{ws: ws, timeout: timeout}
}

// SetTimeout updates the per-cycle wait timeout (spec §4.10 SetTimeout).
func (c *Collector) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

func (c *Collector) rebuild(t *handle.Table) error {
	if c.ws.IsValid() {
		if err := c.ws.Fini(); err != nil {
			return err
		}
	}
	counters := t.Counters()
	if err := c.ws.Init(interfaces.WaitSetCounts{
		Subscriptions:   counters.Subscriptions,
		Timers:          counters.Timers,
		Clients:         counters.Clients,
		Services:        counters.Services,
		GuardConditions: counters.GuardConditions,
	}); err != nil {
		return err
	}
	t.MarkFresh()
	return nil
}

// Collect runs one readiness-collection cycle over t: rebuild-if-stale,
// register every live entry, block for up to the configured timeout, and
// write DataAvailable (and, for action endpoints, ActionFlags) back onto
// the live records (spec §4.2 steps 1-4).
func (c *Collector) Collect(t *handle.Table) error {
	if t.Stale() || !c.ws.IsValid() {
		if err := c.rebuild(t); err != nil {
			return err
		}
	}
	c.ws.Clear()

	live := t.Live()
	handles := make([]interfaces.WaitSetHandle, len(live))
	tracked := make([]bool, len(live))

	for i := range live {
		rec := &live[i]
		rec.DataAvailable = false

		var (
			h   interfaces.WaitSetHandle
			err error
		)
		switch rec.Kind {
		case handle.KindSubscription, handle.KindSubscriptionWithContext:
			h, err = c.ws.AddSubscription(rec.Subscription)
		case handle.KindTimer:
			h, err = c.ws.AddTimer(rec.Timer)
		case handle.KindClient, handle.KindClientWithRequestID:
			h, err = c.ws.AddClient(rec.Client)
		case handle.KindService, handle.KindServiceWithRequestID, handle.KindServiceWithContext:
			h, err = c.ws.AddService(rec.Service)
		case handle.KindGuardCondition:
			h, err = c.ws.AddGuardCondition(rec.GuardCondition)
		default:
			// Action kinds are polled out of band below.
			continue
		}
		if err != nil {
			return err
		}
		handles[i] = h
		tracked[i] = true
		rec.Index = int(h)
	}

	ready, timedOut, err := c.ws.Wait(c.timeout)
	if err != nil {
		return err
	}
	if !timedOut {
		readySet := make(map[interfaces.WaitSetHandle]struct{}, len(ready))
		for _, h := range ready {
			readySet[h] = struct{}{}
		}
		for i := range live {
			if !tracked[i] {
				continue
			}
			if _, ok := readySet[handles[i]]; ok {
				live[i].DataAvailable = true
			}
		}
	}

	c.pollActions(live)
	c.drainGuardConditions(live)
	return nil
}

// drainGuardConditions consumes the one-shot eventfd pulse behind every
// ready guard condition. Guard conditions have no take step (spec
// §4.3), but their signal is a semaphore count rather than a level: left
// undrained it would re-report DataAvailable forever after a single
// Trigger. Doing it here, once per cycle right after collection, keeps
// dispatch.Take a true no-op for this kind while still giving the
// signal single-cycle lifetime, the same "one unit consumed per
// observation" contract every other Signaller-backed entity gets from
// its own Take.
func (c *Collector) drainGuardConditions(live []handle.Record) {
	var buf [8]byte
	for i := range live {
		rec := &live[i]
		if rec.Kind != handle.KindGuardCondition || !rec.DataAvailable {
			continue
		}
		if sig, ok := rec.GuardCondition.(Signaller); ok {
			unix.Read(sig.EventFD(), buf[:])
		}
	}
}

func (c *Collector) pollActions(live []handle.Record) {
	for i := range live {
		rec := &live[i]
		var endpoint interface{}
		switch rec.Kind {
		case handle.KindActionClient:
			endpoint = rec.ActionClient
		case handle.KindActionServer:
			endpoint = rec.ActionServer
		default:
			continue
		}
		poller, ok := endpoint.(ActionPoller)
		if !ok {
			continue
		}
		flags := poller.Poll()
		rec.ActionFlags = flags
		rec.DataAvailable = flags != (handle.ActionFlags{})
	}
}
