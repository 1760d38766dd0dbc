package user

import (
	"time"

	"github.com/google/uuid"
)

// NewFromSignup builds an active user; role defaults to RoleUser.
func NewFromSignup(in SignupInput, passwordHash string) User {
	now := time.Now().UTC()

	role := in.Role
	if role == "" {
		role = RoleUser
	}

	return User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Role:         role,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
