package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/geocoder89/coursehub/internal/auth"
)

// Translate maps any failure to an *Error. Rules are checked in order and
// the first match wins; anything unrecognised becomes a non-operational 500.
func Translate(err error) *Error {
	var (
		castErr *CastError
		dupErr  *DuplicateKeyError
		valErr  *ValidationError
	)

	switch {
	case err == nil:
		return Internal(nil)

	case errors.As(err, &castErr):
		return wrap(err, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s.", castErr.Path, castErr.Value))

	case errors.As(err, &dupErr):
		return wrap(err, http.StatusBadRequest, fmt.Sprintf("Duplicate field value: %q. Please use another value!", dupErr.Value))

	case errors.As(err, &valErr):
		return wrap(err, http.StatusBadRequest, "Invalid input data. "+strings.Join(valErr.Messages(), ". "))

	case errors.Is(err, auth.ErrTokenInvalid):
		return wrap(err, http.StatusUnauthorized, "Invalid token. Please log in again!")

	case errors.Is(err, auth.ErrTokenExpired):
		return wrap(err, http.StatusUnauthorized, "Your token has expired! Please log in again.")
	}

	if appErr, ok := As(err); ok {
		return appErr
	}

	return Internal(err)
}

func wrap(cause error, status int, message string) *Error {
	e := New(status, message)
	e.cause = cause
	return e
}
