package middleware

import (
	stderrors "errors"

	"github.com/labstack/echo/v4"

	"profilehub/internal/domain/entity"
	"profilehub/internal/domain/repository"
	"profilehub/pkg/errors"
)

type AccessMiddleware struct {
	userRepo repository.UserRepository
}

func NewAccessMiddleware(userRepo repository.UserRepository) *AccessMiddleware {
	return &AccessMiddleware{
		userRepo: userRepo,
	}
}

// Require lets the request through when the caller's role grants right, or
// when the route's :userId is the caller's own id.
func (m *AccessMiddleware) Require(right string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := c.Get(UIDKey).(string)
			if !ok || uid == "" {
				return errors.Unauthorized("Authentication required", nil)
			}

			caller, err := m.userRepo.GetByID(c.Request().Context(), uid)
			if err != nil {
				if stderrors.Is(err, repository.ErrNotFound) {
					return errors.Unauthorized("Please authenticate", err)
				}
				return errors.Internal("Failed to verify privileges", err)
			}

			if entity.HasRight(caller.Role, right) || c.Param("userId") == uid {
				return next(c)
			}

			return errors.Forbidden("Forbidden", nil)
		}
	}
}
