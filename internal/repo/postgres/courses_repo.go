package postgres

import (
	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoursesRepo struct {
	*table[course.Course, *course.Course]
}

func NewCoursesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CoursesRepo {
	return &CoursesRepo{&table[course.Course, *course.Course]{
		base: base{pool: pool, prom: prom},
		name: "courses",
		cols: []column{
			{field: "title", name: "title"},
			{field: "description", name: "description"},
			{field: "category", name: "category"},
		},
		values: func(c *course.Course) []any {
			return []any{c.Title, c.Description, c.Category}
		},
		dests: func(c *course.Course) []any {
			return []any{&c.Title, &c.Description, &c.Category}
		},
	}}
}
