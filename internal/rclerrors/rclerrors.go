// Package rclerrors holds the sentinel errors shared by every internal
// package so the root package's structured Error type (errors.go) can map
// them with errors.Is/As without an import cycle back to the root package.
package rclerrors

import "errors"

// Sentinels corresponding to the error taxonomy in spec.md §7.
var (
	ErrInvalidArgument = errors.New("rclgo: invalid argument")
	ErrCapacityExceeded = errors.New("rclgo: capacity exceeded")
	ErrNotFound         = errors.New("rclgo: not found")
	ErrBadAlloc         = errors.New("rclgo: allocation failed")
	ErrTakeFailed       = errors.New("rclgo: take failed")
	ErrTimerCanceled    = errors.New("rclgo: timer canceled")
	ErrMiddleware       = errors.New("rclgo: middleware error")
)

// IsNonFatalCycleError reports whether err is one of the per-cycle errors
// that must never abort a dispatch cycle (spec §7: TakeFailed, TimerCanceled).
func IsNonFatalCycleError(err error) bool {
	return errors.Is(err, ErrTakeFailed) || errors.Is(err, ErrTimerCanceled)
}
