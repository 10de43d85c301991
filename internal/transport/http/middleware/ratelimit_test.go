package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"opsflow/internal/requestctx"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitUsesActorKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent())
	ctx := requestctx.WithActor(t.Context(), requestctx.Actor{Subject: "user-1", Role: "hr"})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/documents/batch", nil).WithContext(ctx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/documents/batch", nil).WithContext(ctx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by actor key, got %d", secondRec.Code)
	}
	if secondRec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent())

	first := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	first.RemoteAddr = "203.0.113.10:4444"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	second.RemoteAddr = "203.0.113.10:5555"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by ip key, got %d", secondRec.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	other.RemoteAddr = "203.0.113.99:5555"
	otherRec := httptest.NewRecorder()
	limited.ServeHTTP(otherRec, other)
	if otherRec.Code != http.StatusNoContent {
		t.Fatalf("expected a different ip to pass, got %d", otherRec.Code)
	}
}

func TestRateLimitWindowResetAndSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1, time.Minute, clientIPKey)
	rl.now = func() time.Time { return now }

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		rl.enforce(rec, req)
		return rec.Code
	}

	send("192.0.2.1:1")
	send("192.0.2.2:1")
	if rl.size() != 2 {
		t.Fatalf("expected two buckets, got %d", rl.size())
	}

	now = now.Add(2 * time.Minute)
	if code := send("192.0.2.1:1"); code != http.StatusOK {
		t.Fatalf("expected request after window to pass, got %d", code)
	}
	if rl.size() != 1 {
		t.Fatalf("expected stale bucket to be swept, got %d", rl.size())
	}
}

func TestSensitiveMutationRateLimit(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent())

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "192.0.2.50:1"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(http.MethodPost, "/api/v1/licenses/abc/renew"); code != http.StatusNoContent {
		t.Fatalf("expected first renew to pass, got %d", code)
	}
	if code := send(http.MethodPost, "/api/v1/documents/upload"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second sensitive mutation to be throttled, got %d", code)
	}
	if code := send(http.MethodPost, "/api/v1/employees"); code != http.StatusNoContent {
		t.Fatalf("expected ordinary mutation to bypass, got %d", code)
	}
}
