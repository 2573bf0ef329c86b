package respond

import (
	"github.com/gin-gonic/gin"

	"retail360-backend/internal/shared/telemetry"
)

// MsgBody is the error shape used by the auth and ledger endpoints.
type MsgBody struct {
	Msg string `json:"msg"`
}

// ErrBody is the error shape used by the ingestion and gateway endpoints.
// Details carries at most the downstream engine's response body.
type ErrBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// Msg sends a {"msg": ...} error response and aborts the request.
func Msg(c *gin.Context, status int, msg string) {
	logError(c, status, msg)
	c.AbortWithStatusJSON(status, MsgBody{Msg: msg})
}

// Err sends an {"error": ..., "details": ...} response and aborts the request.
func Err(c *gin.Context, status int, message string, details any) {
	logError(c, status, message)
	c.AbortWithStatusJSON(status, ErrBody{Error: message, Details: details})
}

func logError(c *gin.Context, status int, message string) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)
}
