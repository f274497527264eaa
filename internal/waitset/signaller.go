// Package waitset implements the readiness-aggregation primitive (spec.md
// §3 "Wait-set", §4.2 — component C3) and the Collector that drives it
// from a handle.Table.
package waitset

// Signaller is implemented by any middleware entity that can participate
// in a wait-set. EventFD returns a Linux eventfd created in EFD_SEMAPHORE
// mode: a write(2) of 1 signals "one unit of data available", and a
// read(2) both detects and atomically consumes one unit, giving the
// "single take per cycle per ready handle" invariant (spec §8 invariant 4)
// a single cheap primitive to rest on. Entities that don't wrap an
// eventfd (e.g. in tests) can return -1, which IsValid()-style backends
// treat as "never ready via the wait-set"; such entities must be polled
// out of band.
type Signaller interface {
	EventFD() int
}
