package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(origins))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	return r
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := newCORSRouter([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allow-origin header, got %q", got)
	}
	allowHeaders := resp.Header().Get("Access-Control-Allow-Headers")
	if allowHeaders == "" {
		t.Fatal("expected allow-headers header")
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	r := newCORSRouter([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin header, got %q", got)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("request itself should pass, got %d", resp.Code)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	r := newCORSRouter([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", resp.Code)
	}
}
