package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// sweepThreshold is the bucket-map size past which allow prunes idle
// entries inline, instead of running a background goroutine for it.
const sweepThreshold = 1024

// ipThrottle caps requests per client address with a fixed-window token
// bucket, the same mechanism the per-agent debug stream uses in
// platform/logger.
type ipThrottle struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	burst   int
	window  time.Duration
}

type ipBucket struct {
	tokens    int
	lastReset time.Time
}

func newIPThrottle(burst int, window time.Duration) *ipThrottle {
	return &ipThrottle{
		buckets: make(map[string]*ipBucket),
		burst:   burst,
		window:  window,
	}
}

// allow spends one token for the address. When denied, the returned
// duration says how long until the window resets.
func (t *ipThrottle) allow(ip string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if len(t.buckets) > sweepThreshold {
		for addr, b := range t.buckets {
			if now.Sub(b.lastReset) > 2*t.window {
				delete(t.buckets, addr)
			}
		}
	}

	b, ok := t.buckets[ip]
	if !ok || now.Sub(b.lastReset) >= t.window {
		t.buckets[ip] = &ipBucket{tokens: t.burst - 1, lastReset: now}
		return true, 0
	}
	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}
	return false, t.window - now.Sub(b.lastReset)
}

// limit wraps a handler, answering 429 with a Retry-After header once a
// caller runs out of tokens.
func (t *ipThrottle) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, retry := t.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP extracts the caller's address, preferring X-Forwarded-For
// for proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i, c := range xff {
			if c == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
