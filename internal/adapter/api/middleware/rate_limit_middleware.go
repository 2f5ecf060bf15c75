package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"profilehub/internal/infrastructure/ratelimit"
	"profilehub/pkg/errors"
	"profilehub/pkg/logger"
)

// RateLimit limits requests per client IP. Limiter failures let the request
// through.
func RateLimit(limiter ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return next(c)
			}

			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}

			res, err := limiter.Allow(c.Request().Context(), "ip:"+ip)
			if err != nil {
				logger.Warn("Rate limiter unavailable: %v", err)
				return next(c)
			}

			resetSec := int(res.Reset.Seconds())
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.Itoa(resetSec))

			if !res.Allowed {
				if resetSec < 1 {
					resetSec = 1
				}
				h.Set("Retry-After", strconv.Itoa(resetSec))
				logger.Warn("Rate limit exceeded for IP %s", ip)
				return errors.TooManyRequests("Rate limit exceeded")
			}

			return next(c)
		}
	}
}
