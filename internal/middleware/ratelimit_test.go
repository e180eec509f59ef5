package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimiterConfig(generalBurst, searchBurst int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // テスト中に補充されない程度に遅く
		GeneralBurst:    generalBurst,
		SearchRate:      rate.Limit(0.001),
		SearchBurst:     searchBurst,
		CleanupInterval: time.Hour,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(handler http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/articles/all-news", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), userID))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// TestGeneralMiddleware_AllowsWithinBurst はバースト内のリクエストが通過することを検証する。
func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(3, 1))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		if w := doRequest(handler, "user-1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}
}

// TestGeneralMiddleware_RejectsOverBurst は超過リクエストが429になることを検証する。
func TestGeneralMiddleware_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(2, 1))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	doRequest(handler, "user-1")
	doRequest(handler, "user-1")
	w := doRequest(handler, "user-1")

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header is missing")
	}
}

// TestGeneralMiddleware_IsolatesUsers はユーザーごとに独立して制限されることを検証する。
func TestGeneralMiddleware_IsolatesUsers(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	if w := doRequest(handler, "user-1"); w.Code != http.StatusOK {
		t.Fatalf("user-1 first request: status = %d", w.Code)
	}
	if w := doRequest(handler, "user-1"); w.Code != http.StatusTooManyRequests {
		t.Errorf("user-1 second request: status = %d, want 429", w.Code)
	}
	if w := doRequest(handler, "user-2"); w.Code != http.StatusOK {
		t.Errorf("user-2 first request: status = %d, want 200", w.Code)
	}
}

// TestSearchMiddleware_IndependentOfGeneral は検索制限がAPI全般と独立なことを検証する。
func TestSearchMiddleware_IndependentOfGeneral(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()
	general := rl.GeneralMiddleware()(okHandler())
	search := rl.SearchMiddleware()(okHandler())

	if w := doRequest(general, "user-1"); w.Code != http.StatusOK {
		t.Fatalf("general request: status = %d", w.Code)
	}
	// API全般のバーストを使い切っても検索は通る
	if w := doRequest(search, "user-1"); w.Code != http.StatusOK {
		t.Errorf("search request: status = %d, want 200", w.Code)
	}

	if rl.GeneralLimiterCount() != 1 || rl.SearchLimiterCount() != 1 {
		t.Errorf("limiter counts = %d/%d, want 1/1",
			rl.GeneralLimiterCount(), rl.SearchLimiterCount())
	}
}

// TestMiddleware_MissingUserID は未認証コンテキストが401になることを検証する。
func TestMiddleware_MissingUserID(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/articles/all-news", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

// TestNewRateLimiterConfig はreq/min指定からの変換を検証する。
func TestNewRateLimiterConfig(t *testing.T) {
	cfg := NewRateLimiterConfig(120, 30)

	if cfg.GeneralBurst != 120 || cfg.SearchBurst != 30 {
		t.Errorf("bursts = %d/%d, want 120/30", cfg.GeneralBurst, cfg.SearchBurst)
	}
	if cfg.GeneralRate != rate.Limit(2.0) {
		t.Errorf("general rate = %v, want 2", cfg.GeneralRate)
	}
	if cfg.SearchRate != rate.Limit(0.5) {
		t.Errorf("search rate = %v, want 0.5", cfg.SearchRate)
	}
}
