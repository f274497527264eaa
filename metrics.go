package rclgo

import (
	"sync/atomic"

	"github.com/loopwire/rclgo/internal/handle"
)

// numKinds bounds the per-kind dispatch counter array; handle.Kind's
// enumeration is closed at handle.KindActionServer (spec.md §3).
const numKinds = int(handle.KindActionServer) + 1

// Metrics tracks executor cycle statistics in the teacher's atomic-counter
// style (metrics.go's ReadOps/WriteOps/... pattern), re-grounded onto the
// spin-cycle/take/execute/timeout vocabulary of this executor instead of
// block-device I/O counters (spec.md's component table does not name
// this, but ambient observability is carried regardless of Non-goals,
// SPEC_FULL.md §2.4).
type Metrics struct {
	CycleCount   atomic.Uint64
	TookCount    atomic.Uint64
	ExecuteCount atomic.Uint64
	TimeoutCount atomic.Uint64
	ErrorCount   atomic.Uint64

	// KindDispatchCount[k] counts how many times a handle of kind k was
	// observed ready (or Always-policy) going into a cycle's dispatch.
	KindDispatchCount [numKinds]atomic.Uint64
}

// NewMetrics creates a new, zeroed metrics instance.
func NewMetrics() *Metrics { return &Metrics{} }

// ObserveCycle implements interfaces.Observer: took/executed are added to
// TookCount/ExecuteCount for one spin cycle (spec.md §8's cycle-level
// testable properties); a non-nil err increments ErrorCount.
// Executor.SpinSome passes the number of handles that were ready (or
// Always-policy) as both values; it does not count callbacks that fired.
func (m *Metrics) ObserveCycle(took int, executed int, err error) {
	m.CycleCount.Add(1)
	m.TookCount.Add(uint64(took))
	m.ExecuteCount.Add(uint64(executed))
	if err != nil {
		m.ErrorCount.Add(1)
	}
}

// ObserveTimeout implements interfaces.Observer.
func (m *Metrics) ObserveTimeout() { m.TimeoutCount.Add(1) }

// RecordKindDispatch increments the per-kind ready counter. The executor
// calls this once per live handle found ready (or Always) right after
// collection, before scheduling (see Executor.SpinSome).
func (m *Metrics) RecordKindDispatch(kind handle.Kind) {
	if int(kind) < 0 || int(kind) >= numKinds {
		return
	}
	m.KindDispatchCount[kind].Add(1)
}

// MetricsSnapshot is a point-in-time copy of Metrics safe to read without
// further synchronization.
type MetricsSnapshot struct {
	CycleCount   uint64
	TookCount    uint64
	ExecuteCount uint64
	TimeoutCount uint64
	ErrorCount   uint64

	KindDispatchCount [numKinds]uint64
}

// Snapshot creates a point-in-time snapshot of metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		CycleCount:   m.CycleCount.Load(),
		TookCount:    m.TookCount.Load(),
		ExecuteCount: m.ExecuteCount.Load(),
		TimeoutCount: m.TimeoutCount.Load(),
		ErrorCount:   m.ErrorCount.Load(),
	}
	for i := range m.KindDispatchCount {
		snap.KindDispatchCount[i] = m.KindDispatchCount[i].Load()
	}
	return snap
}

// Reset zeroes all counters (useful for testing).
func (m *Metrics) Reset() {
	m.CycleCount.Store(0)
	m.TookCount.Store(0)
	m.ExecuteCount.Store(0)
	m.TimeoutCount.Store(0)
	m.ErrorCount.Store(0)
	for i := range m.KindDispatchCount {
		m.KindDispatchCount[i].Store(0)
	}
}

// NoOpObserver is a no-op implementation of interfaces.Observer, used
// when the caller does not care about cycle statistics.
type NoOpObserver struct{}

func (NoOpObserver) ObserveCycle(int, int, error) {}
func (NoOpObserver) ObserveTimeout()               {}
