package repository

import (
	"context"
	"errors"

	"profilehub/internal/domain/entity"
	"profilehub/pkg/utils"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrDuplicate       = errors.New("duplicate unique field")
	ErrVersionConflict = errors.New("user version changed")
)

// UserFilter matches on exact values; empty fields match everything.
type UserFilter struct {
	Name string
	Role string
}

type ListOptions struct {
	Sort   []utils.SortField
	Limit  int
	Offset int
}

// SortableFields maps API sort keys to stored field names.
var SortableFields = map[string]string{
	"name":      "name",
	"email":     "email",
	"mobile":    "mobile",
	"role":      "role",
	"createdAt": "createdAt",
	"updatedAt": "updatedAt",
}

type UserRepository interface {
	// Create stores a new user. ErrDuplicate when the mobile is taken.
	Create(ctx context.Context, user *entity.User) error
	// GetByID returns ErrNotFound when no user has id.
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByMobile(ctx context.Context, mobile string) (*entity.User, error)
	// IsTaken reports whether another user than excludeID holds value in field.
	IsTaken(ctx context.Context, field, value, excludeID string) (bool, error)
	// Update replaces the stored user if its version still equals
	// expectedVersion and bumps user.Version. ErrNotFound or ErrVersionConflict otherwise.
	Update(ctx context.Context, user *entity.User, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter, opts ListOptions) ([]*entity.User, int64, error)
	Ping(ctx context.Context) error
}
