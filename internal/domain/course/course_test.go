package course_test

import (
	"errors"
	"testing"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/geocoder89/coursehub/internal/domain/course"
)

func TestSchema_PrepareTrimsAndAccepts(t *testing.T) {
	c := course.Course{
		Title:       "  Jest Course ",
		Description: "This is a Jest course.\n",
		Category:    " Technology",
	}

	if err := course.Schema.Prepare(&c); err != nil {
		t.Fatalf("expected valid course, got %v", err)
	}

	if c.Title != "Jest Course" || c.Category != "Technology" || c.Description != "This is a Jest course." {
		t.Fatalf("fields not trimmed: %+v", c)
	}
}

func TestSchema_Messages(t *testing.T) {
	tests := []struct {
		name string
		in   course.Course
		want []string
	}{
		{
			name: "all_missing",
			in:   course.Course{},
			want: []string{
				"A course must have a title",
				"A course must have a description",
				"Course must belong to a category!",
			},
		},
		{
			name: "bad_category",
			in:   course.Course{Title: "t", Description: "d", Category: "Cooking"},
			want: []string{"Category is either: Science, Arts, Technology, Literature"},
		},
		{
			name: "whitespace_only_title",
			in:   course.Course{Title: "   ", Description: "d", Category: "Arts"},
			want: []string{"A course must have a title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := course.Schema.Prepare(&tt.in)

			var verr *apperr.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *apperr.ValidationError, got %T (%v)", err, err)
			}

			got := verr.Messages()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d messages, got %v", len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("message %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestNew(t *testing.T) {
	c := course.New("Go", "Learn Go", course.CategoryTechnology)

	if c.ID == "" {
		t.Fatalf("expected id to be set")
	}
	if !c.CreatedAt.Equal(c.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt on a new course")
	}
}
