package simmw

import "testing"

func TestClockNowNanosIsMonotonicallyNonDecreasing(t *testing.T) {
	c := NewClock()
	a := c.NowNanos()
	b := c.NowNanos()
	if b < a {
		t.Fatalf("clock went backwards: %d then %d", a, b)
	}
}

func TestClockNowNanosNonZero(t *testing.T) {
	c := NewClock()
	if c.NowNanos() <= 0 {
		t.Fatalf("expected a positive monotonic timestamp")
	}
}
