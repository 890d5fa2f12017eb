package middleware

import (
	"time"

	applogger "StockSage/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per completed request.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			if l != nil {
				req := c.Request()
				l.Info("http request",
					applogger.String("method", req.Method),
					applogger.String("path", req.URL.Path),
					applogger.Int("status", c.Response().Status),
					applogger.Duration("duration_ms", time.Since(start)),
				)
			}

			return err
		}
	}
}
