package dispatch

import "github.com/loopwire/rclgo/internal/handle"

// Semantics selects the data-communication policy (spec §4.6).
type Semantics int

const (
	// RclcppLike interleaves take-then-execute per handle: a handle's
	// callback can observe outputs a preceding handle in the same cycle
	// already published. This is the default.
	RclcppLike Semantics = iota
	// LET (Logical Execution Time) takes all ready handles before
	// executing any of them, giving every callback in a cycle the same
	// input snapshot.
	LET
)

func (s Semantics) String() string {
	switch s {
	case LET:
		return "LET"
	default:
		return "RclcppLike"
	}
}

// Run executes one dispatch cycle over live (spec §4.6): the trigger is
// evaluated first (spec §4.5, §8 invariant 8 — no callback fires if it
// returns false), then the selected policy drives Take/Execute over the
// live handles in insertion order. It returns the first fatal error from
// either step; non-fatal conditions (take-failed, timer-canceled) are
// already absorbed by Take/Execute and never reach here.
func Run(semantics Semantics, live []handle.Record, trigger Trigger) error {
	if trigger == nil {
		trigger = Any
	}
	if !trigger(live) {
		return nil
	}

	switch semantics {
	case LET:
		for i := range live {
			if err := Take(&live[i]); err != nil {
				return err
			}
		}
		for i := range live {
			if err := Execute(&live[i]); err != nil {
				return err
			}
		}
	default:
		for i := range live {
			if err := Take(&live[i]); err != nil {
				return err
			}
			if err := Execute(&live[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
