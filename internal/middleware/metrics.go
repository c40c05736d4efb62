package middleware

import (
	"digital-storefront/internal/common"
	"digital-storefront/internal/metrics"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
)

// Metrics records request count and latency per route template.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			m.RequestStarted()

			err := next(c)

			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = common.HTTPStatus(err)
				}
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.RequestFinished(c.Request().Method, path, status, time.Since(start).Seconds())
			return err
		}
	}
}
