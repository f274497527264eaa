package simmw

// Allocator implements interfaces.Allocator as a plain heap allocation;
// the executor only calls it once at Init (spec §4.1), so there is no
// steady-state pressure that would justify a pool here.
type Allocator struct{}

// NewAllocator returns the default allocator.
func NewAllocator() Allocator { return Allocator{} }

// Allocate implements interfaces.Allocator.
func (Allocator) Allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// Deallocate implements interfaces.Allocator. Go's GC reclaims the slice;
// this is a no-op kept to satisfy the interface's explicit lifecycle.
func (Allocator) Deallocate(p []byte) error { return nil }
