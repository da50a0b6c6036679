package api

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimit_Write(t *testing.T) {
	srv, _ := newTestServer(t, RateLimits{Window: 15 * time.Minute, ReadMax: 100, WriteMax: 2})

	for i := 0; i < 2; i++ {
		code, _ := doRequest(t, srv, http.MethodPut, "/api/user/profile", map[string]any{"education": "x"})
		require.Equal(t, http.StatusOK, code, "request %d", i+1)
	}

	code, resp := doRequest(t, srv, http.MethodPut, "/api/user/profile", map[string]any{"education": "x"})
	assert.Equal(t, http.StatusTooManyRequests, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Too many write requests. Please try again after 15 minutes.", resp.Error.Message)

	// Reads have their own budget.
	code, _ = doRequest(t, srv, http.MethodGet, "/api/user/profile", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRateLimit_ReadAppliesBeforeAuth(t *testing.T) {
	srv, _ := newTestServer(t, RateLimits{Window: time.Hour, ReadMax: 1, WriteMax: 1})

	code, _ := doRequestAs(t, srv, http.MethodGet, "/api/user/profile", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp := doRequest(t, srv, http.MethodGet, "/api/user/profile", nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Too many read requests. Please try again after 1 hour.", resp.Error.Message)
}

func TestRateLimit_PerClient(t *testing.T) {
	l := newClientLimiter("write", 15*time.Minute, 1, nil)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5678"), "same IP, different port")
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:1234"))
}

func TestRateLimit_Disabled(t *testing.T) {
	l := newClientLimiter("read", time.Minute, 0, nil)
	assert.Nil(t, l)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := l.Middleware(next)
	rec := httptest.NewRecorder()
	for i := 0; i < 5; i++ {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	}
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHumanWindow(t *testing.T) {
	tests := map[time.Duration]string{
		15 * time.Minute: "15 minutes",
		time.Minute:      "1 minute",
		2 * time.Hour:    "2 hours",
		90 * time.Second: "1m30s",
	}
	for d, want := range tests {
		assert.Equal(t, want, humanWindow(d), d.String())
	}
}

func TestRateLimit_Headers(t *testing.T) {
	l := newClientLimiter("write", 10*time.Minute, 2, nil)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := call()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("RateLimit-Remaining"))
	assert.Empty(t, rec.Header().Get("Retry-After"))

	rec = call()
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))

	rec = call()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))
	// One token comes back every five minutes.
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 300, retry, 1)
	reset, err := strconv.Atoi(rec.Header().Get("RateLimit-Reset"))
	require.NoError(t, err)
	assert.InDelta(t, 600, reset, 1)
}

func TestRateLimit_SweepKeepsActiveClients(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	l := newClientLimiter("write", 10*time.Minute, 2, nil)
	l.now = func() time.Time { return now }
	l.lastSweep = t0

	// "busy" drains its bucket; "idle" is seen once and never again.
	l.take("busy")
	l.take("busy")
	allowed, _ := l.take("busy")
	require.False(t, allowed)
	l.take("idle")

	now = t0.Add(9 * time.Minute)
	l.take("busy")
	kept := l.buckets["busy"].limiter

	// A full window after the last sweep triggers the next one.
	now = t0.Add(10 * time.Minute)
	l.take("other")

	require.Contains(t, l.buckets, "busy")
	assert.Same(t, kept, l.buckets["busy"].limiter, "throttled client must keep its bucket")
	assert.NotContains(t, l.buckets, "idle")
	assert.Equal(t, now, l.lastSweep)
}
