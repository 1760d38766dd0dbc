// Package query turns list query strings into paging, sorting, filtering
// and field selection options.
package query

import (
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 1000
)

// reserved keys never act as equality filters
var reserved = map[string]struct{}{
	"page":   {},
	"limit":  {},
	"sort":   {},
	"fields": {},
}

// Spec lists the json field names a resource allows in each clause.
type Spec struct {
	Sortable   []string
	Filterable []string
	Selectable []string
}

type SortField struct {
	Field string
	Desc  bool
}

type Options struct {
	Page    int
	Limit   int
	Sort    []SortField
	Fields  []string
	Filters map[string]string
}

func Default() Options {
	return Options{Page: DefaultPage, Limit: DefaultLimit}
}

// Parse never fails: bad paging values fall back to defaults and fields the
// spec does not allow are dropped.
func Parse(values url.Values, spec Spec) Options {
	opts := Default()

	if n, ok := positiveInt(values.Get("page")); ok {
		opts.Page = n
	}

	if n, ok := positiveInt(values.Get("limit")); ok {
		if n > MaxLimit {
			n = MaxLimit
		}
		opts.Limit = n
	}

	for _, raw := range splitList(values.Get("sort")) {
		sf := SortField{Field: raw}
		if strings.HasPrefix(raw, "-") {
			sf = SortField{Field: strings.TrimPrefix(raw, "-"), Desc: true}
		}
		if slices.Contains(spec.Sortable, sf.Field) {
			opts.Sort = append(opts.Sort, sf)
		}
	}

	for _, f := range splitList(values.Get("fields")) {
		if slices.Contains(spec.Selectable, f) && !slices.Contains(opts.Fields, f) {
			opts.Fields = append(opts.Fields, f)
		}
	}

	for key, vals := range values {
		if _, skip := reserved[key]; skip || len(vals) == 0 {
			continue
		}
		if !slices.Contains(spec.Filterable, key) {
			continue
		}
		if opts.Filters == nil {
			opts.Filters = make(map[string]string)
		}
		opts.Filters[key] = vals[0]
	}

	return opts
}

func (o Options) Offset() int {
	page := o.Page
	if page < 1 {
		page = DefaultPage
	}
	return (page - 1) * o.Limit
}

// CacheKey is stable for equal options regardless of query string order.
func (o Options) CacheKey() string {
	var b strings.Builder

	b.WriteString("page=" + strconv.Itoa(o.Page))
	b.WriteString(":limit=" + strconv.Itoa(o.Limit))

	b.WriteString(":sort=")
	for i, s := range o.Sort {
		if i > 0 {
			b.WriteString(",")
		}
		if s.Desc {
			b.WriteString("-")
		}
		b.WriteString(s.Field)
	}

	b.WriteString(":fields=" + strings.Join(o.Fields, ","))

	keys := make([]string, 0, len(o.Filters))
	for k := range o.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString(":filter=")
	for i, k := range keys {
		if i > 0 {
			b.WriteString("&")
		}
		b.WriteString(url.QueryEscape(k) + "=" + url.QueryEscape(o.Filters[k]))
	}

	return b.String()
}

func positiveInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && p != "-" {
			out = append(out, p)
		}
	}
	return out
}
