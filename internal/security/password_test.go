package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/geocoder89/coursehub/internal/security"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := security.NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if hash == "password123" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash %q", hash)
	}

	if err := h.Compare(hash, "password123"); err != nil {
		t.Fatalf("Compare error: %v", err)
	}

	err = h.Compare(hash, "wrong-password")
	if !errors.Is(err, security.ErrPasswordMismatch) {
		t.Fatalf("got err %v, want ErrPasswordMismatch", err)
	}
}

func TestHasher_CostBounds(t *testing.T) {
	h := security.NewHasher(1)

	hash, err := h.Hash("x")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Cost error: %v", err)
	}
	if cost != bcrypt.MinCost {
		t.Fatalf("got cost %d, want %d", cost, bcrypt.MinCost)
	}
}

func TestNewResetToken(t *testing.T) {
	raw, hashed, err := security.NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken error: %v", err)
	}

	if len(raw) != 64 {
		t.Fatalf("got raw length %d, want 64", len(raw))
	}
	if hashed != security.HashResetToken(raw) {
		t.Fatalf("stored hash does not match raw token")
	}

	raw2, _, _ := security.NewResetToken()
	if raw == raw2 {
		t.Fatalf("tokens must be random")
	}
}
