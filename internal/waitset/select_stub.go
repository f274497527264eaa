//go:build !linux

package waitset

import "github.com/loopwire/rclgo/internal/interfaces"

// NewWaitSet on non-Linux platforms is always the portable poll(2)
// backend; there is no io_uring fast path to try.
func NewWaitSet() interfaces.WaitSet {
	return NewPollWaitSet()
}
