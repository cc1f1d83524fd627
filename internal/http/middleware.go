package http

import (
	"time"

	"github.com/labstack/echo/v4"

	"phrasebook/internal/logger"
)

// RequestLoggerMiddleware logs one line per request. Server errors log at
// error level, client errors at warn and the rest at debug.
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status

			result := "ok"
			log := logger.Debug
			switch {
			case status >= 500:
				result = "failed"
				log = logger.Error
			case status >= 400:
				result = "failed"
				log = logger.Warn
			}

			log("http request",
				"module", "http",
				"action", "request",
				"resource", "http",
				"result", result,
				"method", req.Method,
				"path", req.URL.Path,
				"route", c.Path(),
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
			)
			return nil
		}
	}
}
