package httpapi

import (
	"github.com/tech-arch1tect/stepup/server"
	"github.com/tech-arch1tect/stepup/services/logging"
	"github.com/tech-arch1tect/stepup/session"
	"go.uber.org/fx"
)

// RegisterRoutes wires the verification API onto the server. The
// session middleware wraps the whole API so the challenge context is
// available to both send and verify.
func RegisterRoutes(srv *server.Server, h *Handler, manager *session.Manager, logger *logging.Service) {
	srv.Use(logging.RequestLoggerSkipPaths(logger, "/healthz"))
	srv.Use(session.Middleware(manager))

	srv.Get("/healthz", h.Healthz)

	api := srv.Group("/api/:realm/verification")
	api.POST("/send", h.Send)
	api.POST("/verify", h.Verify)

	devices := srv.Group("/api/:realm/devices")
	devices.GET("/:subject", h.Devices)
	devices.DELETE("/:subject/:id", h.RevokeDevice)
}

var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
