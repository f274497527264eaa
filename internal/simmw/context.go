package simmw

import "sync/atomic"

// Context implements interfaces.Context as a single invalidation flag,
// flipped once (e.g. on SIGINT in the demo CLI) to stop the spin loop.
type Context struct{ valid int32 }

// NewContext returns a valid context.
func NewContext() *Context {
	c := &Context{}
	atomic.StoreInt32(&c.valid, 1)
	return c
}

// IsValid implements interfaces.Context.
func (c *Context) IsValid() bool { return atomic.LoadInt32(&c.valid) != 0 }

// Shutdown invalidates the context; subsequent IsValid calls return false.
func (c *Context) Shutdown() { atomic.StoreInt32(&c.valid, 0) }
