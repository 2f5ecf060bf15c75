package testutil

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"profilehub/internal/domain/entity"
	"profilehub/internal/domain/repository"
)

// MemoryUserRepository is a UserRepository kept in a map. It enforces the
// same uniqueness and version rules as the real stores.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*entity.User
	// PingErr is returned by Ping when set.
	PingErr error
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*entity.User)}
}

// clone deep-copies through JSON so callers never share slices with the store.
func clone(u *entity.User) *entity.User {
	raw, err := json.Marshal(u)
	if err != nil {
		panic(err)
	}
	var out entity.User
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

func (r *MemoryUserRepository) uniqueClash(u *entity.User) bool {
	for id, other := range r.users {
		if id == u.ID {
			continue
		}
		if other.Mobile == u.Mobile {
			return true
		}
		if u.Email != "" && other.Email == u.Email {
			return true
		}
		if u.SecondaryMobile != "" && other.SecondaryMobile == u.SecondaryMobile {
			return true
		}
	}
	return false
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok || r.uniqueClash(user) {
		return repository.ErrDuplicate
	}
	r.users[user.ID] = clone(user)
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *MemoryUserRepository) GetByMobile(ctx context.Context, mobile string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Mobile == mobile {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MemoryUserRepository) IsTaken(ctx context.Context, field, value, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.users {
		if id == excludeID {
			continue
		}
		var got string
		switch field {
		case "mobile":
			got = u.Mobile
		case "email":
			got = u.Email
		case "secondaryMobile":
			got = u.SecondaryMobile
		}
		if got == value {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *entity.User, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	if r.uniqueClash(user) {
		return repository.ErrDuplicate
	}

	user.Version = expectedVersion + 1
	r.users[user.ID] = clone(user)
	return nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) List(ctx context.Context, filter repository.UserFilter, opts repository.ListOptions) ([]*entity.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.User
	for _, u := range r.users {
		if filter.Name != "" && u.Name != filter.Name {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		matched = append(matched, clone(u))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, s := range opts.Sort {
			c := compareField(matched[i], matched[j], s.Field)
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	start := opts.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return matched[start:end], total, nil
}

func compareField(a, b *entity.User, field string) int {
	switch field {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "mobile":
		return strings.Compare(a.Mobile, b.Mobile)
	case "role":
		return strings.Compare(a.Role, b.Role)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}

func (r *MemoryUserRepository) Ping(ctx context.Context) error {
	return r.PingErr
}

// Put stores u as is, bypassing uniqueness checks. Tests use it to seed state.
func (r *MemoryUserRepository) Put(u *entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = clone(u)
}
