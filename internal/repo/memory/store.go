// Package memory keeps records in process memory. It backs STORE=memory and
// the handler and integration tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/geocoder89/coursehub/internal/query"
	"github.com/geocoder89/coursehub/internal/resource"
	"github.com/google/uuid"
)

// Store is a generic record store ordered by insertion.
type Store[T any, PT resource.Document[T]] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
	now   func() time.Time
}

func NewStore[T any, PT resource.Document[T]]() *Store[T, PT] {
	return &Store[T, PT]{
		items: make(map[string]T),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store[T, PT]) Create(_ context.Context, rec T) (T, error) {
	meta := PT(&rec).Base()

	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	now := s.now()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[meta.ID]; exists {
		return rec, &apperr.DuplicateKeyError{Field: "id", Value: meta.ID}
	}

	s.items[meta.ID] = rec
	s.order = append(s.order, meta.ID)

	return rec, nil
}

func (s *Store[T, PT]) GetByID(_ context.Context, id string) (T, error) {
	var zero T

	if err := checkID(id); err != nil {
		return zero, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.items[id]
	if !ok {
		return zero, resource.ErrNotFound
	}
	return rec, nil
}

func (s *Store[T, PT]) Update(_ context.Context, rec T) (T, error) {
	meta := PT(&rec).Base()

	if err := checkID(meta.ID); err != nil {
		return rec, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.items[meta.ID]
	if !ok {
		return rec, resource.ErrNotFound
	}

	meta.CreatedAt = PT(&prev).Base().CreatedAt
	meta.UpdatedAt = s.now()
	s.items[meta.ID] = rec

	return rec, nil
}

func (s *Store[T, PT]) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return resource.ErrNotFound
	}

	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store[T, PT]) List(_ context.Context, opts query.Options) ([]T, error) {
	s.mu.RLock()
	rows := make([]row[T], 0, len(s.order))
	for _, id := range s.order {
		rec := s.items[id]
		fields, err := jsonFields(rec)
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		rows = append(rows, row[T]{rec: rec, meta: *PT(&rec).Base(), fields: fields})
	}
	s.mu.RUnlock()

	filtered := rows[:0]
	for _, r := range rows {
		if r.matches(opts.Filters) {
			filtered = append(filtered, r)
		}
	}

	if len(opts.Sort) > 0 {
		sort.SliceStable(filtered, func(i, j int) bool {
			for _, sf := range opts.Sort {
				c := compareField(filtered[i], filtered[j], sf.Field)
				if c == 0 {
					continue
				}
				if sf.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	start := opts.Offset()
	if start >= len(filtered) {
		return []T{}, nil
	}
	end := len(filtered)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	out := make([]T, 0, end-start)
	for _, r := range filtered[start:end] {
		out = append(out, r.rec)
	}
	return out, nil
}

// Ping satisfies the readiness probe.
func (s *Store[T, PT]) Ping(context.Context) error { return nil }

type row[T any] struct {
	rec    T
	meta   resource.Meta
	fields map[string]any
}

func (r row[T]) matches(filters map[string]string) bool {
	for k, want := range filters {
		v, ok := r.fields[k]
		if !ok || fmt.Sprint(v) != want {
			return false
		}
	}
	return true
}

func compareField[T any](a, b row[T], field string) int {
	switch field {
	case "createdAt":
		return a.meta.CreatedAt.Compare(b.meta.CreatedAt)
	case "updatedAt":
		return a.meta.UpdatedAt.Compare(b.meta.UpdatedAt)
	}

	av, bv := a.fields[field], b.fields[field]

	if af, ok := av.(float64); ok {
		if bf, ok := bv.(float64); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}

	return strings.Compare(fmt.Sprint(av), fmt.Sprint(bv))
}

func jsonFields(rec any) (map[string]any, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &apperr.CastError{Path: "id", Value: id}
	}
	return nil
}
