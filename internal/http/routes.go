package http

import (
	"github.com/gin-gonic/gin"

	"github.com/TheRealNinjyata/memro/internal/config"
	"github.com/TheRealNinjyata/memro/internal/http/handlers"
	"github.com/TheRealNinjyata/memro/internal/http/middleware"
	"github.com/TheRealNinjyata/memro/internal/ws"
)

// RegisterRoutes wires the health endpoints and the websocket entry point.
// Everything stateful happens over the socket; there is no REST API.
func RegisterRoutes(r *gin.Engine, hub *ws.Hub, cfg *config.Config, version string) {
	healthHandler := handlers.NewHealthHandler(hub, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Websocket entry point. The Redis limiter takes over when configured;
	// the in-process one always backs it up.
	r.GET("/ws",
		middleware.RedisRateLimit(cfg.WSRateLimit, cfg.WSRateWindow),
		middleware.SimpleRateLimit(cfg.WSRateLimit, cfg.WSRateWindow),
		ws.HandleWS(hub, cfg.AllowedOrigin),
	)
}
