package logger

import (
	"sync"
	"time"
)

const (
	defaultDebugBurst  = 20
	defaultDebugWindow = 10 * time.Second
)

// keyLimiter is a token bucket per (agent id, category) pair. Keeps the
// per-agent debug stream from flooding when hundreds of agents share a
// category.
type keyLimiter struct {
	mu      sync.Mutex
	buckets map[limiterKey]*bucket
	burst   int
	window  time.Duration
}

type limiterKey struct {
	id       uint64
	category string
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

func newKeyLimiter(burst int, window time.Duration) *keyLimiter {
	return &keyLimiter{
		buckets: make(map[limiterKey]*bucket),
		burst:   burst,
		window:  window,
	}
}

func (kl *keyLimiter) allow(id uint64, category string) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	key := limiterKey{id: id, category: category}
	b, ok := kl.buckets[key]
	now := time.Now()

	if !ok || now.Sub(b.lastReset) >= kl.window {
		kl.buckets[key] = &bucket{tokens: kl.burst - 1, lastReset: now}
		return true
	}
	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

func (kl *keyLimiter) sweep() {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := time.Now()
	for key, b := range kl.buckets {
		if now.Sub(b.lastReset) > 2*kl.window {
			delete(kl.buckets, key)
		}
	}
}
