package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func hit(handler http.Handler, remoteAddr, forwardedFor string) int {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	var served int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(nil, 3, time.Minute, zap.NewNop())(next)

	for i := 0; i < 3; i++ {
		if code := hit(handler, "192.0.2.1:51234", ""); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}

	if code := hit(handler, "192.0.2.1:51234", ""); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the limit, got %d", code)
	}
	if served != 3 {
		t.Fatalf("expected 3 requests to reach the handler, got %d", served)
	}
}

func TestRateLimitWindowResets(t *testing.T) {
	handler := RateLimit(nil, 1, 80*time.Millisecond, zap.NewNop())(okHandler)

	if code := hit(handler, "192.0.2.5:1000", ""); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := hit(handler, "192.0.2.5:1000", ""); code != http.StatusTooManyRequests {
		t.Fatalf("second request in window: expected 429, got %d", code)
	}

	time.Sleep(120 * time.Millisecond)

	if code := hit(handler, "192.0.2.5:1000", ""); code != http.StatusOK {
		t.Fatalf("after window reset: expected 200, got %d", code)
	}
}

func TestRateLimitSeparatesClients(t *testing.T) {
	handler := RateLimit(nil, 1, time.Minute, zap.NewNop())(okHandler)

	if code := hit(handler, "192.0.2.10:1000", ""); code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", code)
	}
	// IP sama beda port tetap dihitung satu client
	if code := hit(handler, "192.0.2.10:2000", ""); code != http.StatusTooManyRequests {
		t.Fatalf("same IP different port: expected 429, got %d", code)
	}
	if code := hit(handler, "192.0.2.11:1000", ""); code != http.StatusOK {
		t.Fatalf("other client: expected 200, got %d", code)
	}
}

func TestRateLimitUsesForwardedFor(t *testing.T) {
	handler := RateLimit(nil, 1, time.Minute, zap.NewNop())(okHandler)

	// Dua koneksi beda tapi X-Forwarded-For sama, satu bucket
	if code := hit(handler, "10.0.0.1:1000", "203.0.113.7"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := hit(handler, "10.0.0.2:1000", "203.0.113.7"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for same forwarded client, got %d", code)
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:44321"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientKey(req); got != "203.0.113.7" {
		t.Errorf("expected first forwarded address, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:51234"
	if got := clientKey(req); got != "192.0.2.1" {
		t.Errorf("expected remote host without port, got %q", got)
	}
}
