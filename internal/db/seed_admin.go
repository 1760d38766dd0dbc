package db

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/security"
	"github.com/google/uuid"
)

type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureAdminUser creates the configured admin unless a user with that
// email already exists. Without ADMIN_EMAIL and ADMIN_PASSWORD it does
// nothing.
func EnsureAdminUser(ctx context.Context, store AdminStore, hasher *security.Hasher, cfg config.Config) (created bool, err error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	email := user.NormalizeEmail(cfg.AdminEmail)

	_, err = store.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return false, err
	}

	name := cfg.AdminName
	if name == "" {
		name = "Admin"
	}

	now := time.Now().UTC()

	_, err = store.Create(ctx, user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         user.RoleAdmin,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return false, err
	}

	return true, nil
}
