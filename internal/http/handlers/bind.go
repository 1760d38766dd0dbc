package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/gin-gonic/gin"
)

// decodeJSON decodes the request body onto out. An empty body leaves out
// untouched so validation reports the missing fields.
func decodeJSON(ctx *gin.Context, out any) error {
	if ctx.Request.Body == nil {
		return nil
	}

	err := ctx.ShouldBindJSON(out)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	return bindError(err)
}

func bindError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tooLarge  *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLarge):
		return apperr.New(http.StatusRequestEntityTooLarge, "Request body is too large")

	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperr.BadRequest("Invalid JSON in request body")

	case errors.As(err, &typeErr):
		field := strings.TrimSpace(typeErr.Field)
		if field == "" {
			field = "body"
		}
		return &apperr.CastError{Path: field, Value: typeErr.Value}
	}

	return apperr.BadRequest("Invalid request body")
}
