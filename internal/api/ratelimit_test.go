package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottleSpendsBurstThenDenies(t *testing.T) {
	th := newIPThrottle(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := th.allow("10.0.0.1")
		assert.True(t, ok, "request %d within burst", i+1)
	}
	ok, retry := th.allow("10.0.0.1")
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))
}

func TestThrottleTracksAddressesIndependently(t *testing.T) {
	th := newIPThrottle(1, time.Minute)

	ok, _ := th.allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = th.allow("10.0.0.1")
	assert.False(t, ok)
	ok, _ = th.allow("10.0.0.2")
	assert.True(t, ok, "a fresh address has its own bucket")
}

func TestThrottleWindowResets(t *testing.T) {
	th := newIPThrottle(1, 20*time.Millisecond)

	ok, _ := th.allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = th.allow("10.0.0.1")
	assert.False(t, ok)

	time.Sleep(25 * time.Millisecond)
	ok, _ = th.allow("10.0.0.1")
	assert.True(t, ok, "an elapsed window refills the bucket")
}

func TestThrottleMiddlewareAnswers429(t *testing.T) {
	th := newIPThrottle(1, time.Minute)
	handler := th.limit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/directive", nil)
	req.RemoteAddr = "10.0.0.1:5001"

	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:3999"
	assert.Equal(t, "10.0.0.9", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.9")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}
