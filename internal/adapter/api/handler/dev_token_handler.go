package handler

import (
	stderrors "errors"
	"time"

	"github.com/labstack/echo/v4"

	"profilehub/internal/domain/entity"
	"profilehub/internal/domain/repository"
	"profilehub/pkg/errors"
	"profilehub/pkg/response"
	"profilehub/pkg/utils"
)

const devTokenTTL = 24 * time.Hour

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Issue(userID string, ttl time.Duration) (string, error)
}

// DevTokenHandler hands out access tokens without a login flow. It is only
// routed in development.
type DevTokenHandler struct {
	issuer   TokenIssuer
	userRepo repository.UserRepository
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(issuer TokenIssuer, userRepo repository.UserRepository) *DevTokenHandler {
	return &DevTokenHandler{
		issuer:   issuer,
		userRepo: userRepo,
	}
}

func SetupDevTokenHandler(issuer TokenIssuer, userRepo repository.UserRepository) {
	devTokenHandler = NewDevTokenHandler(issuer, userRepo)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

// GenerateUserToken issues a token for the user named in the path.
func (h *DevTokenHandler) GenerateUserToken(c echo.Context) error {
	user, err := h.userRepo.GetByID(c.Request().Context(), c.Param("userId"))
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return response.Error(c, errors.NotFound("User", err))
		}
		return response.Error(c, errors.Internal("Failed to get user", err))
	}
	return h.issue(c, user)
}

// GenerateAdminToken issues a token for the oldest admin.
func (h *DevTokenHandler) GenerateAdminToken(c echo.Context) error {
	users, _, err := h.userRepo.List(c.Request().Context(),
		repository.UserFilter{Role: entity.RoleAdmin},
		repository.ListOptions{Limit: 1, Sort: []utils.SortField{{Field: "createdAt"}}},
	)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to list users", err))
	}
	if len(users) == 0 {
		return response.Error(c, errors.NotFound("Admin user", nil))
	}
	return h.issue(c, users[0])
}

func (h *DevTokenHandler) issue(c echo.Context, user *entity.User) error {
	token, err := h.issuer.Issue(user.ID, devTokenTTL)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to issue token", err))
	}

	return response.Success(c, "Token issued", map[string]interface{}{
		"token":     token,
		"expiresIn": int(devTokenTTL.Seconds()),
		"user": map[string]interface{}{
			"id":     user.ID,
			"mobile": user.Mobile,
			"name":   user.Name,
			"role":   user.Role,
		},
	})
}
