package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newThrottledAuthRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		DefaultGroup: "AUTH",
		Limiter:      limiter,
		Rules: map[string]RateLimitRule{
			"AUTH": {Rate: 1, Burst: 3},
		},
	}))
	r.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRateLimitThrottlesBeyondBurst(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := newThrottledAuthRouter(limiter)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("login attempt %d expected 200, got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("login attempt 4 expected 429, got %d", resp.Code)
	}

	var body struct {
		Msg          string `json:"msg"`
		RetryAfterMs int    `json:"retryAfterMs"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal 429 body: %v", err)
	}
	if body.Msg != "Too many requests" {
		t.Fatalf("unexpected msg %q", body.Msg)
	}
	if body.RetryAfterMs <= 0 {
		t.Fatalf("expected positive retryAfterMs, got %d", body.RetryAfterMs)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestRateLimitRefillsOverTime(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := newThrottledAuthRouter(limiter)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("login attempt %d expected 200, got %d", i+1, resp.Code)
		}
	}

	now = now.Add(2 * time.Second)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected refill to allow login, got %d", resp.Code)
	}
}
