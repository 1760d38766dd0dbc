package postgres

import (
	"fmt"
	"sort"
	"strings"

	"github.com/geocoder89/coursehub/internal/query"
)

// column maps a json field name to its SQL column.
type column struct {
	field string
	name  string
}

var metaColumns = []column{
	{field: "id", name: "id"},
	{field: "createdAt", name: "created_at"},
	{field: "updatedAt", name: "updated_at"},
}

func lookupColumn(cols []column, field string) (string, bool) {
	for _, c := range append(metaColumns, cols...) {
		if c.field == field {
			return c.name, true
		}
	}
	return "", false
}

func columnList(cols []column) string {
	names := make([]string, 0, len(metaColumns)+len(cols))
	for _, c := range append(metaColumns, cols...) {
		names = append(names, c.name)
	}
	return strings.Join(names, ", ")
}

// buildListQuery only ever interpolates column names taken from cols, so
// query string values reach SQL as arguments.
func buildListQuery(table string, cols []column, opts query.Options) (string, []any) {
	q := "SELECT " + columnList(cols) + " FROM " + table

	var (
		conds   []string
		args    []any
		argsPos = 1
	)

	fields := make([]string, 0, len(opts.Filters))
	for field := range opts.Filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		name, ok := lookupColumn(cols, field)
		if !ok {
			continue
		}
		conds = append(conds, fmt.Sprintf("%s = $%d", name, argsPos))
		args = append(args, opts.Filters[field])
		argsPos++
	}

	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}

	order := make([]string, 0, len(opts.Sort)+2)
	for _, s := range opts.Sort {
		name, ok := lookupColumn(cols, s.Field)
		if !ok {
			continue
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		order = append(order, name+" "+dir)
	}
	order = append(order, "created_at ASC", "id ASC")
	q += " ORDER BY " + strings.Join(order, ", ")

	limit := opts.Limit
	if limit <= 0 {
		limit = query.DefaultLimit
	}

	q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argsPos, argsPos+1)
	args = append(args, limit, opts.Offset())

	return q, args
}
