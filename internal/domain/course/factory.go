package course

import (
	"time"

	"github.com/geocoder89/coursehub/internal/resource"
	"github.com/google/uuid"
)

func New(title, description, category string) Course {
	now := time.Now().UTC()

	return Course{
		Meta: resource.Meta{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:       title,
		Description: description,
		Category:    category,
	}
}
