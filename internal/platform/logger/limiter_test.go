package logger

import (
	"testing"
	"time"
)

func TestLimiterAllowsBurstThenBlocks(t *testing.T) {
	kl := newKeyLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !kl.allow(1, "decide") {
			t.Fatalf("call %d within burst should be allowed", i+1)
		}
	}
	if kl.allow(1, "decide") {
		t.Error("call beyond burst should be blocked")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	kl := newKeyLimiter(1, time.Minute)

	if !kl.allow(1, "decide") {
		t.Fatal("first key should be allowed")
	}
	if !kl.allow(2, "decide") {
		t.Error("different agent should have its own bucket")
	}
	if !kl.allow(1, "action") {
		t.Error("different category should have its own bucket")
	}
	if kl.allow(1, "decide") {
		t.Error("exhausted key should be blocked")
	}
}

func TestLimiterWindowResets(t *testing.T) {
	kl := newKeyLimiter(1, 10*time.Millisecond)

	if !kl.allow(1, "decide") {
		t.Fatal("first call should be allowed")
	}
	if kl.allow(1, "decide") {
		t.Fatal("second call inside the window should be blocked")
	}
	time.Sleep(15 * time.Millisecond)
	if !kl.allow(1, "decide") {
		t.Error("call after the window should be allowed again")
	}
}

func TestSweepDropsStaleBuckets(t *testing.T) {
	kl := newKeyLimiter(1, time.Millisecond)
	kl.allow(1, "decide")
	time.Sleep(5 * time.Millisecond)

	kl.sweep()

	kl.mu.Lock()
	n := len(kl.buckets)
	kl.mu.Unlock()
	if n != 0 {
		t.Errorf("stale buckets remaining: %d", n)
	}
}
