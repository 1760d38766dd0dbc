package resource

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/geocoder89/coursehub/internal/query"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so messages and field paths match the wire format
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return sf.Name
		}
		return name
	})

	return v
}

type Schema[T any] struct {
	// Name is the plural resource name, also used as cache namespace.
	Name string

	// Messages maps "<jsonField>.<rule>" to the message clients see.
	Messages map[string]string

	// Normalize runs before validation (trimming, lowercasing).
	Normalize func(*T)

	Query query.Spec
}

// Prepare normalizes then validates rec in place.
func (s Schema[T]) Prepare(rec *T) error {
	if s.Normalize != nil {
		s.Normalize(rec)
	}
	return s.Validate(rec)
}

// Validate runs the struct's `validate` rules and reports every failed
// field as a single *apperr.ValidationError.
func (s Schema[T]) Validate(rec *T) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &apperr.ValidationError{Errors: make([]apperr.FieldError, 0, len(verrs))}

	for _, fe := range verrs {
		field := fe.Field()
		out.Errors = append(out.Errors, apperr.FieldError{
			Field:   field,
			Rule:    fe.Tag(),
			Message: s.message(field, fe.Tag(), fe.Param()),
		})
	}

	return out
}

func (s Schema[T]) message(field, rule, param string) string {
	if msg, ok := s.Messages[field+"."+rule]; ok {
		return msg
	}
	return field + " " + validationMessage(rule, param)
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "eqfield":
		return "must match " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
