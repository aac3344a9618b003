package ratelimit

import (
	"testing"
	"time"
)

func TestAllowBurstThenRefill(t *testing.T) {
	now := time.Date(2024, 10, 14, 15, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }
	l.lastSweep = now

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4:scanner", 3, 1) {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow("1.2.3.4:scanner", 3, 1) {
		t.Fatalf("bucket should be empty")
	}
	if !l.Allow("5.6.7.8:scanner", 3, 1) {
		t.Fatalf("other key should have its own bucket")
	}

	now = now.Add(1100 * time.Millisecond)
	if !l.Allow("1.2.3.4:scanner", 3, 1) {
		t.Fatalf("token should have refilled")
	}
}

func TestIdleBucketsEvicted(t *testing.T) {
	now := time.Now()
	l := New()
	l.now = func() time.Time { return now }
	l.lastSweep = now
	l.Allow("a", 1, 1)

	now = now.Add(idleTTL + time.Minute)
	l.Allow("b", 1, 1)
	if _, ok := l.m["a"]; ok {
		t.Fatalf("idle bucket not evicted")
	}
}
