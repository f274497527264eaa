package rclgo

import "time"

// Default configuration constants for ExecutorOptions (spec.md §4.1,
// SPEC_FULL.md §2.3), mirroring the teacher's DeviceParams default-value
// constants.
const (
	// DefaultCapacity is the default fixed handle-table size.
	DefaultCapacity = 16

	// DefaultTimeout is the default wait-set block timeout per cycle.
	DefaultTimeout = 100 * time.Millisecond

	// DefaultActionPoolSize is the default per-action-client/server
	// goal-handle pool size (spec.md §3).
	DefaultActionPoolSize = 8

	// DefaultQueueDepth is the default simmw queue/request-response depth
	// used by cmd/rclgo-demo.
	DefaultQueueDepth = 16
)
