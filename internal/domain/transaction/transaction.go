package transaction

import (
	"strings"

	"github.com/geocoder89/coursehub/internal/query"
	"github.com/geocoder89/coursehub/internal/resource"
)

// Transaction only exposes a list endpoint; records are written by seeding
// or directly through the store.
type Transaction struct {
	resource.Meta
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
}

var Schema = resource.Schema[Transaction]{
	Name: "transactions",
	Messages: map[string]string{
		"title.required":       "A Transaction must have a title",
		"description.required": "A Transaction must have a description",
		"category.required":    "Transaction must belong to a category!",
	},
	Normalize: func(t *Transaction) {
		t.Title = strings.TrimSpace(t.Title)
		t.Description = strings.TrimSpace(t.Description)
		t.Category = strings.TrimSpace(t.Category)
	},
	Query: query.Spec{
		Sortable:   []string{"title", "category", "createdAt", "updatedAt"},
		Filterable: []string{"category"},
		Selectable: []string{"title", "description", "category", "createdAt", "updatedAt"},
	},
}
