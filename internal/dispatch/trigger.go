package dispatch

import "github.com/loopwire/rclgo/internal/handle"

// Trigger is the user-pluggable boolean predicate that gates whether a
// dispatch cycle fires (spec §4.5). It is evaluated after readiness
// collection and before any take under default semantics.
type Trigger func(live []handle.Record) bool

// All is true iff every initialised handle has data available.
func All(live []handle.Record) bool {
	for i := range live {
		if !live[i].DataAvailable {
			return false
		}
	}
	return true
}

// Any is true iff at least one initialised handle has data available.
func Any(live []handle.Record) bool {
	for i := range live {
		if live[i].DataAvailable {
			return true
		}
	}
	return false
}

// One returns a Trigger that is true iff the handle whose middleware
// reference equals obj has data available.
func One(obj interface{}) Trigger {
	return func(live []handle.Record) bool {
		for i := range live {
			if live[i].Ref == obj {
				return live[i].DataAvailable
			}
		}
		return false
	}
}

// Always is constant true.
func Always(live []handle.Record) bool { return true }
