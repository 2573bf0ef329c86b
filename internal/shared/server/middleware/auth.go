package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"retail360-backend/internal/shared/auth"
	"retail360-backend/internal/shared/server/respond"
)

const (
	userIDKey = "userId"

	// TokenHeader carries the raw signed token, without a bearer prefix.
	TokenHeader = "x-auth-token"
)

// TokenGuard verifies the x-auth-token header and stores the account id in
// context. It is the single authorization chokepoint; handlers behind it never
// re-verify tokens.
func TokenGuard(signer *auth.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		token := strings.TrimSpace(c.GetHeader(TokenHeader))
		if token == "" {
			respond.Msg(c, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		userID, err := signer.Verify(token)
		if err != nil {
			// Expired and malformed tokens get the same outward response;
			// the precise cause stays in the logs.
			if !errors.Is(err, auth.ErrTokenMissing) {
				respond.Msg(c, http.StatusUnauthorized, "Token is not valid")
				return
			}
			respond.Msg(c, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserIDFromContext fetches the account id set by TokenGuard.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
