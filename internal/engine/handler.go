package engine

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"retail360-backend/internal/shared/server/respond"
)

// Handler is a thin pass-through gateway for the engine's read-only analytics
// endpoints.
type Handler struct {
	Client *Client
}

// NewHandler constructs a Handler.
func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

// RegisterRoutes attaches the gateway routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ml/stats", h.proxy(h.Client.Stats, "Failed to fetch stats"))
	rg.GET("/ml/forecast", h.proxy(h.Client.Forecast, "Failed to fetch forecast data"))
	rg.GET("/ml/segmentation", h.proxy(h.Client.Segmentation, "Failed to fetch segmentation data"))
	rg.POST("/ml/seed", h.proxy(h.Client.Seed, "Failed to seed data"))
}

func (h *Handler) proxy(fetch func(context.Context) (json.RawMessage, error), failMsg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := fetch(c.Request.Context())
		if err != nil {
			respond.Err(c, http.StatusInternalServerError, failMsg, nil)
			return
		}
		c.Data(http.StatusOK, "application/json", raw)
	}
}
