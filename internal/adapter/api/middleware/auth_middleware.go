package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"profilehub/internal/domain/service"
	"profilehub/pkg/errors"
	"profilehub/pkg/logger"
)

// UIDKey is the echo context key holding the authenticated user id.
const UIDKey = "uid"

type AuthMiddleware struct {
	verifier service.TokenVerifier
}

func NewAuthMiddleware(verifier service.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return errors.Unauthorized("Authorization header is required", nil)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return errors.Unauthorized("Invalid authorization format", nil)
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), parts[1])
		if err != nil {
			logger.Debug("Token rejected: %v", err)
			return errors.Unauthorized("Invalid or expired token", err)
		}

		c.Set(UIDKey, uid)
		return next(c)
	}
}
