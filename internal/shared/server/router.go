package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tailor-portal/internal/delivery"
	"tailor-portal/internal/shared/config"
	"tailor-portal/internal/shared/metrics"
	"tailor-portal/internal/shared/server/middleware"
	"tailor-portal/internal/shared/server/respond"
)

// RouterDeps carries everything NewRouter mounts.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.TokenVerifier
	DeliveryHandler *delivery.Handler
	// Ready reports whether backing services are reachable. Optional.
	Ready func(ctx context.Context) error
	// Limiter is shared across routers in tests. Optional.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", healthHandler(deps.Ready))
	registerMeRoutes(api)

	if deps.DeliveryHandler != nil {
		limit := middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.TailorGroup: {Rate: deps.Config.TailorRate, Burst: deps.Config.TailorBurst},
			},
			GroupFor: func(*gin.Context) string { return middleware.TailorGroup },
			Limiter:  deps.Limiter,
		})
		deps.DeliveryHandler.RegisterRoutes(api, limit)
	}

	return r
}

func healthHandler(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				respond.JSON(c, http.StatusServiceUnavailable, gin.H{"ok": false})
				return
			}
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
