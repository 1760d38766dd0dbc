package user_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/geocoder89/coursehub/internal/domain/user"
)

func validSignup() user.SignupInput {
	return user.SignupInput{
		Name:            "Ada",
		Email:           "  Ada@Example.COM ",
		Password:        "password123",
		PasswordConfirm: "password123",
	}
}

func TestSignupSchema_NormalizesEmail(t *testing.T) {
	in := validSignup()

	if err := user.SignupSchema.Prepare(&in); err != nil {
		t.Fatalf("expected valid signup, got %v", err)
	}
	if in.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email, got %q", in.Email)
	}

	u := user.NewFromSignup(in, "hash")
	if u.Role != user.RoleUser || !u.Active {
		t.Fatalf("expected default role user and active, got %+v", u)
	}
}

func TestSignupSchema_Messages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*user.SignupInput)
		want   string
	}{
		{"missing_name", func(in *user.SignupInput) { in.Name = "" }, "Please tell us your name"},
		{"missing_email", func(in *user.SignupInput) { in.Email = "" }, "Please provide your email"},
		{"bad_email", func(in *user.SignupInput) { in.Email = "not-an-email" }, "Please provide a valid email"},
		{"missing_password", func(in *user.SignupInput) { in.Password = ""; in.PasswordConfirm = "" }, "Please provide a password"},
		{"short_password", func(in *user.SignupInput) { in.Password = "short"; in.PasswordConfirm = "short" }, "Password must have at least 8 characters"},
		{"mismatch", func(in *user.SignupInput) { in.PasswordConfirm = "password124" }, "Passwords do not match"},
		{"bad_role", func(in *user.SignupInput) { in.Role = "root" }, "Role is either: user, teacher, admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSignup()
			tt.mutate(&in)

			var verr *apperr.ValidationError
			if err := user.SignupSchema.Prepare(&in); !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}

			msgs := strings.Join(verr.Messages(), " | ")
			if !strings.Contains(msgs, tt.want) {
				t.Fatalf("expected %q in %q", tt.want, msgs)
			}
		})
	}
}

func TestUpdatePasswordSchema(t *testing.T) {
	in := user.UpdatePasswordInput{
		PasswordInput: user.PasswordInput{Password: "newpassword", PasswordConfirm: "newpassword"},
	}

	var verr *apperr.ValidationError
	if err := user.UpdatePasswordSchema.Prepare(&in); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := verr.Messages(); len(got) != 1 || got[0] != "Please provide your current password" {
		t.Fatalf("unexpected messages: %v", got)
	}
}

func TestChangedPasswordAfter(t *testing.T) {
	iat := time.Unix(1_700_000_000, 0)
	u := user.User{}

	if u.ChangedPasswordAfter(iat) {
		t.Fatalf("never-changed password must not invalidate tokens")
	}

	before := iat.Add(-time.Second)
	u.PasswordChangedAt = &before
	if u.ChangedPasswordAfter(iat) {
		t.Fatalf("change before iat must keep token valid")
	}

	sameSecond := iat.Add(500 * time.Millisecond)
	u.PasswordChangedAt = &sameSecond
	if u.ChangedPasswordAfter(iat) {
		t.Fatalf("change within the iat second must keep token valid")
	}

	after := iat.Add(2 * time.Second)
	u.PasswordChangedAt = &after
	if !u.ChangedPasswordAfter(iat) {
		t.Fatalf("change after iat must invalidate token")
	}
}

func TestUserJSON_HidesSecrets(t *testing.T) {
	token := "hashed"
	u := user.User{ID: "1", Name: "Ada", PasswordHash: "secret", PasswordResetToken: &token, Active: true}

	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for _, key := range []string{"PasswordHash", "password", "secret", "active", "Active", "hashed"} {
		if strings.Contains(string(b), key) {
			t.Fatalf("serialized user leaks %q: %s", key, b)
		}
	}
}
