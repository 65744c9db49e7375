package ratelimiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newLimiter(t *testing.T, requests int) *IPRateLimiter {
	t.Helper()
	rl := NewIPRateLimiter(requests, time.Minute, CleanupOpts{
		TTL:      time.Minute,
		Interval: time.Minute,
	})
	t.Cleanup(rl.Cancel)
	return rl
}

func TestAllow(t *testing.T) {
	rl := newLimiter(t, 2)

	if !rl.Allow("203.0.113.9") {
		t.Error("first request should be allowed")
	}
	if !rl.Allow("203.0.113.9") {
		t.Error("second request should be allowed")
	}
	if rl.Allow("203.0.113.9") {
		t.Error("third request should exceed the burst")
	}

	// A different address has its own bucket.
	if !rl.Allow("198.51.100.1") {
		t.Error("fresh address should be allowed")
	}
}

func TestGetClientIP(t *testing.T) {
	rl := newLimiter(t, 1)

	t.Run("from remote addr", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "203.0.113.9:4321"
		if got := rl.GetClientIP(r); got != "203.0.113.9" {
			t.Errorf("GetClientIP() = %q", got)
		}
	})

	t.Run("last hop of x-forwarded-for", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", "198.51.100.1, 203.0.113.9")
		if got := rl.GetClientIP(r); got != "203.0.113.9" {
			t.Errorf("GetClientIP() = %q", got)
		}
	})
}

func TestMiddleware(t *testing.T) {
	rl := newLimiter(t, 1)

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/messages/add", nil)
	req.RemoteAddr = "203.0.113.9:4321"

	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first request status = %d, want 201", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
}
