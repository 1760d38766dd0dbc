package postgres

import (
	"errors"
	"testing"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslatePgError_UniqueViolation(t *testing.T) {
	err := translatePgError(&pgconn.PgError{
		Code:           "23505",
		Detail:         "Key (email)=(ada@example.com) already exists.",
		ConstraintName: "users_email_key",
	})

	var dup *apperr.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateKeyError, got %T", err)
	}
	if dup.Field != "email" || dup.Value != "ada@example.com" {
		t.Fatalf("unexpected parse: %+v", dup)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		t.Fatalf("expected the pg error to stay reachable through Unwrap")
	}
}

func TestTranslatePgError_UniqueViolationWithoutDetail(t *testing.T) {
	err := translatePgError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	var dup *apperr.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Field != "users_email_key" {
		t.Fatalf("expected constraint name fallback, got %+v", err)
	}
}

func TestTranslatePgError_InvalidText(t *testing.T) {
	err := translatePgError(&pgconn.PgError{
		Code:    "22P02",
		Message: `invalid input syntax for type uuid: "abc"`,
	})

	var cast *apperr.CastError
	if !errors.As(err, &cast) {
		t.Fatalf("expected CastError, got %T", err)
	}
	if cast.Path != "uuid" || cast.Value != "abc" {
		t.Fatalf("unexpected parse: %+v", cast)
	}
}

func TestTranslatePgError_Passthrough(t *testing.T) {
	plain := errors.New("boom")
	if got := translatePgError(plain); got != plain {
		t.Fatalf("expected passthrough, got %v", got)
	}

	other := &pgconn.PgError{Code: "40001"}
	if got := translatePgError(other); got != error(other) {
		t.Fatalf("expected passthrough for unmapped code, got %v", got)
	}
}

func TestCheckID(t *testing.T) {
	if err := checkID("1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"); err != nil {
		t.Fatalf("expected valid uuid, got %v", err)
	}

	var cast *apperr.CastError
	if err := checkID("42"); !errors.As(err, &cast) || cast.Value != "42" {
		t.Fatalf("expected CastError for 42, got %v", err)
	}
}
