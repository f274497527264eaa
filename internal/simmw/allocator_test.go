package simmw

import "testing"

func TestAllocatorAllocateReturnsRequestedSize(t *testing.T) {
	a := NewAllocator()
	buf, err := a.Allocate(128)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(buf) != 128 {
		t.Fatalf("got len %d, want 128", len(buf))
	}
	if err := a.Deallocate(buf); err != nil {
		t.Fatalf("Deallocate: %v", err)
	}
}
