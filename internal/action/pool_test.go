package action

import "testing"

func TestIndexPoolAcquireExhaustion(t *testing.T) {
	p := NewIndexPool(2)
	i1, ok := p.Acquire()
	if !ok {
		t.Fatal("expected first acquire to succeed")
	}
	i2, ok := p.Acquire()
	if !ok {
		t.Fatal("expected second acquire to succeed")
	}
	if i1 == i2 {
		t.Fatal("acquired the same slot twice")
	}
	if _, ok := p.Acquire(); ok {
		t.Fatal("expected pool exhaustion")
	}
	if p.Free() != 0 || p.Used() != 2 {
		t.Fatalf("free=%d used=%d, want 0/2", p.Free(), p.Used())
	}
}

func TestIndexPoolReleaseReturnsSlotToFreeList(t *testing.T) {
	p := NewIndexPool(1)
	idx, _ := p.Acquire()
	p.Release(idx)
	if p.Free() != 1 {
		t.Fatalf("free = %d, want 1 after release", p.Free())
	}
	if _, ok := p.Acquire(); !ok {
		t.Fatal("expected released slot to be reusable")
	}
}

func TestIndexPoolEachVisitsOnlyUsedSlots(t *testing.T) {
	p := NewIndexPool(3)
	a, _ := p.Acquire()
	b, _ := p.Acquire()
	c, _ := p.Acquire()
	p.Release(b)

	seen := map[int]bool{}
	p.Each(func(idx int) { seen[idx] = true })
	if seen[b] {
		t.Fatal("released slot must not be visited")
	}
	if !seen[a] || !seen[c] {
		t.Fatalf("expected %d and %d to be visited, got %v", a, c, seen)
	}
}

func TestIndexPoolReleaseNonAcquiredIsNoOp(t *testing.T) {
	p := NewIndexPool(1)
	p.Release(0)
	if p.Used() != 0 {
		t.Fatal("release of an unacquired slot must not change Used")
	}
}
