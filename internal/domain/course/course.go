package course

import (
	"strings"

	"github.com/geocoder89/coursehub/internal/query"
	"github.com/geocoder89/coursehub/internal/resource"
)

// Categories a course can belong to.
const (
	CategoryScience    = "Science"
	CategoryArts       = "Arts"
	CategoryTechnology = "Technology"
	CategoryLiterature = "Literature"
)

type Course struct {
	resource.Meta
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required,oneof=Science Arts Technology Literature"`
}

var Schema = resource.Schema[Course]{
	Name: "courses",
	Messages: map[string]string{
		"title.required":       "A course must have a title",
		"description.required": "A course must have a description",
		"category.required":    "Course must belong to a category!",
		"category.oneof":       "Category is either: Science, Arts, Technology, Literature",
	},
	Normalize: func(c *Course) {
		c.Title = strings.TrimSpace(c.Title)
		c.Description = strings.TrimSpace(c.Description)
		c.Category = strings.TrimSpace(c.Category)
	},
	Query: query.Spec{
		Sortable:   []string{"title", "category", "createdAt", "updatedAt"},
		Filterable: []string{"title", "category"},
		Selectable: []string{"title", "description", "category", "createdAt", "updatedAt"},
	},
}
