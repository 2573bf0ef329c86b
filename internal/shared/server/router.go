package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retail360-backend/internal/engine"
	"retail360-backend/internal/services/health"
	"retail360-backend/internal/shared/auth"
	"retail360-backend/internal/shared/config"
	"retail360-backend/internal/shared/server/middleware"
	"retail360-backend/internal/shared/server/respond"
	"retail360-backend/internal/uploads"
	"retail360-backend/internal/users"
)

// RouterDeps carries the handlers and services the router wires up.
type RouterDeps struct {
	Config        config.Config
	Signer        *auth.Signer
	UserHandler   *users.Handler
	UploadHandler *uploads.Handler
	EngineHandler *engine.Handler
	Health        *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})

	// Analytics pass-through is read-only engine data, public as the
	// dashboard expects.
	deps.EngineHandler.RegisterRoutes(api)

	// Credential endpoints are throttled per client to slow guessing.
	authGroup := api.Group("", middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"AUTH": {Rate: 1, Burst: 10},
		},
		DefaultGroup: "AUTH",
	}))
	deps.UserHandler.RegisterPublicRoutes(authGroup)

	// Everything else sits behind the token guard, the single
	// authorization chokepoint.
	protected := api.Group("", middleware.TokenGuard(deps.Signer))
	deps.UserHandler.RegisterRoutes(protected)
	deps.UploadHandler.RegisterRoutes(protected)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
