package logging

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// RequestLogger logs every request with method, URI, status, latency and
// client details, at a level matching the response class.
func RequestLogger(logger *Service) echo.MiddlewareFunc {
	return RequestLoggerSkipPaths(logger)
}

// RequestLoggerSkipPaths is RequestLogger with exact-match path
// exclusions, typically health checks.
func RequestLoggerSkipPaths(logger *Service, skipPaths ...string) echo.MiddlewareFunc {
	skipMap := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skipMap[path] = true
	}

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogError:     true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		Skipper: func(c echo.Context) bool {
			return skipMap[c.Request().URL.Path]
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logRequest(logger, v)
			return nil
		},
	})
}

func logRequest(logger *Service, v middleware.RequestLoggerValues) {
	fields := []zap.Field{
		zap.String("method", v.Method),
		zap.String("uri", v.URI),
		zap.Int("status", v.Status),
		zap.Duration("latency", v.Latency),
		zap.String("remote_ip", v.RemoteIP),
		zap.String("user_agent", v.UserAgent),
	}

	if v.Error != nil {
		fields = append(fields, zap.Error(v.Error))
	}

	switch {
	case v.Status >= 500:
		logger.Error("server error", fields...)
	case v.Status >= 400:
		logger.Warn("client error", fields...)
	case v.Status >= 300:
		logger.Info("redirection", fields...)
	default:
		logger.Info("request", fields...)
	}
}
