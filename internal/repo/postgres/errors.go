package postgres

import (
	"errors"
	"regexp"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// Key (email)=(ada@example.com) already exists.
	uniqueDetailRe = regexp.MustCompile(`Key \((.+?)\)=\((.*)\) already exists`)
	// invalid input syntax for type uuid: "abc"
	invalidInputRe = regexp.MustCompile(`invalid input syntax for type (\w+): "(.*)"`)
)

// translatePgError converts driver errors to the apperr shapes the error
// translator knows. Anything else is returned unchanged.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505":
		dup := &apperr.DuplicateKeyError{Field: pgErr.ConstraintName, Err: err}
		if m := uniqueDetailRe.FindStringSubmatch(pgErr.Detail); m != nil {
			dup.Field, dup.Value = m[1], m[2]
		}
		return dup

	case "22P02":
		cast := &apperr.CastError{Path: pgErr.ColumnName, Value: ""}
		if m := invalidInputRe.FindStringSubmatch(pgErr.Message); m != nil {
			if cast.Path == "" {
				cast.Path = m[1]
			}
			cast.Value = m[2]
		}
		return cast
	}

	return err
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &apperr.CastError{Path: "id", Value: id}
	}
	return nil
}
