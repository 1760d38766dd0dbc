package user

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/coursehub/internal/resource"
)

var ErrNotFound = errors.New("user not found")

type Role string

const (
	RoleUser    Role = "user"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              Role       `json:"role"`
	PasswordHash      string     `json:"-"` // never expose hash in JSON
	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	// reset state and the soft-delete flag stay server side
	PasswordResetToken   *string    `json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	Active               bool       `json:"-"`
}

// ChangedPasswordAfter reports whether the password changed after a token
// issued at iat. Compared in whole seconds, like the token's own iat.
func (u *User) ChangedPasswordAfter(iat time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return iat.Unix() < u.PasswordChangedAt.Unix()
}

type SignupInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Role            Role   `json:"role" validate:"omitempty,oneof=user teacher admin"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordInput struct {
	Email string `json:"email"`
}

type PasswordInput struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type UpdatePasswordInput struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	PasswordInput
}

var passwordMessages = map[string]string{
	"password.required":        "Please provide a password",
	"password.min":             "Password must have at least 8 characters",
	"passwordConfirm.required": "Please confirm your password",
	"passwordConfirm.eqfield":  "Passwords do not match",
}

var SignupSchema = resource.Schema[SignupInput]{
	Name: "users",
	Messages: merge(passwordMessages, map[string]string{
		"name.required":  "Please tell us your name",
		"email.required": "Please provide your email",
		"email.email":    "Please provide a valid email",
		"role.oneof":     "Role is either: user, teacher, admin",
	}),
	Normalize: func(in *SignupInput) {
		in.Name = strings.TrimSpace(in.Name)
		in.Email = NormalizeEmail(in.Email)
		in.Role = Role(strings.TrimSpace(string(in.Role)))
	},
}

var PasswordSchema = resource.Schema[PasswordInput]{
	Name:     "users",
	Messages: passwordMessages,
}

var UpdatePasswordSchema = resource.Schema[UpdatePasswordInput]{
	Name: "users",
	Messages: merge(passwordMessages, map[string]string{
		"passwordCurrent.required": "Please provide your current password",
	}),
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
