// Package resource describes a record type to the generic CRUD handlers:
// its name, field rules and client-facing validation messages.
package resource

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("no document found with that id")

// Meta is embedded by every stored record.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) Base() *Meta {
	return m
}

// Document is satisfied by a pointer to any struct embedding Meta.
type Document[T any] interface {
	*T
	Base() *Meta
}
