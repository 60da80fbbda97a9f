package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
)

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	cfg := config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2, MaxTrackedClients: 10}
	handler := RateLimit(cfg, nil)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", nil)
		req.RemoteAddr = "9.9.9.9:1111"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected burst to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %v", codes)
	}

	other := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", nil)
	other.RemoteAddr = "8.8.8.8:1111"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("other clients keep their own bucket, got %d", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	handler := RateLimit(config.RateLimitConfig{}, nil)(okHandler())
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("disabled limiter blocked request %d", i)
		}
	}
}

func TestLimiterCacheResetsWhenFull(t *testing.T) {
	cache := newLimiterCache(1, 1, 2)
	cache.get("a")
	cache.get("b")
	if cache.size() != 2 {
		t.Fatalf("expected 2 limiters, got %d", cache.size())
	}
	cache.get("c")
	if cache.size() != 1 {
		t.Fatalf("expected cache reset to hold only the new key, got %d", cache.size())
	}
	if cache.get("c") != cache.get("c") {
		t.Fatal("expected stable limiter per key")
	}
}
