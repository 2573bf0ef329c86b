package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"retail360-backend/internal/shared/auth"
)

func newGuardedRouter(t *testing.T) (*gin.Engine, *auth.Signer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	signer, err := auth.NewSigner([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/whoami", TokenGuard(signer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c)})
	})
	return r, signer
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenGuardMissingToken(t *testing.T) {
	t.Parallel()
	r, _ := newGuardedRouter(t)

	w := get(r, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"msg":"No token, authorization denied"}`, w.Body.String())
}

func TestTokenGuardInvalidToken(t *testing.T) {
	t.Parallel()
	r, _ := newGuardedRouter(t)

	w := get(r, "garbage.token.value")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"msg":"Token is not valid"}`, w.Body.String())
}

func TestTokenGuardExpiredToken(t *testing.T) {
	t.Parallel()
	r, signer := newGuardedRouter(t)

	token, err := signer.IssueWithTTL("u1", -time.Minute)
	require.NoError(t, err)

	w := get(r, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"msg":"Token is not valid"}`, w.Body.String())
}

func TestTokenGuardPreflightStopsChain(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	signer, err := auth.NewSigner([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	handlerRan := false
	r := gin.New()
	r.OPTIONS("/whoami", TokenGuard(signer), func(c *gin.Context) {
		handlerRan = true
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodOptions, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.False(t, handlerRan, "preflight must not reach the guarded handler")
}

func TestTokenGuardValidToken(t *testing.T) {
	t.Parallel()
	r, signer := newGuardedRouter(t)

	token, err := signer.Issue("u1")
	require.NoError(t, err)

	w := get(r, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"userId":"u1"}`, w.Body.String())
}
