package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo mirrors postgres.UsersRepo: email is unique across all users
// and inactive users are invisible to every lookup.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{items: make(map[string]user.User)}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == u.Email {
			return user.User{}, &apperr.DuplicateKeyError{Field: "email", Value: u.Email}
		}
	}

	r.items[u.ID] = u
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Active && u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok || !u.Active {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByResetToken(_ context.Context, hashed string, now time.Time) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if !u.Active || u.PasswordResetToken == nil || u.PasswordResetExpires == nil {
			continue
		}
		if *u.PasswordResetToken == hashed && u.PasswordResetExpires.After(now) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

// SetResetToken stores or, with nil arguments, clears the reset token.
func (r *UsersRepo) SetResetToken(_ context.Context, id string, hashed *string, expires *time.Time) error {
	return r.mutate(id, func(u *user.User) {
		u.PasswordResetToken = hashed
		u.PasswordResetExpires = expires
	})
}

func (r *UsersRepo) UpdatePassword(_ context.Context, id, hash string, changedAt time.Time) error {
	return r.mutate(id, func(u *user.User) {
		u.PasswordHash = hash
		u.PasswordChangedAt = &changedAt
		u.PasswordResetToken = nil
		u.PasswordResetExpires = nil
	})
}

func (r *UsersRepo) Deactivate(_ context.Context, id string) error {
	return r.mutate(id, func(u *user.User) { u.Active = false })
}

func (r *UsersRepo) mutate(id string, fn func(*user.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok || !u.Active {
		return user.ErrNotFound
	}

	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u
	return nil
}
