package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/coursehub/internal/query"
	"github.com/geocoder89/coursehub/internal/resource"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// table is the CRUD shared by the resource repos. Each repo supplies its
// columns and how to read and write their values.
type table[T any, PT resource.Document[T]] struct {
	base
	name   string
	cols   []column
	values func(*T) []any
	dests  func(*T) []any
}

func (t *table[T, PT]) scan(row pgx.Row) (T, error) {
	var rec T
	meta := PT(&rec).Base()

	dest := append([]any{&meta.ID, &meta.CreatedAt, &meta.UpdatedAt}, t.dests(&rec)...)
	err := row.Scan(dest...)
	return rec, err
}

func (t *table[T, PT]) Create(ctx context.Context, rec T) (T, error) {
	meta := PT(&rec).Base()
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	now := dbTime(time.Now())
	meta.CreatedAt, meta.UpdatedAt = now, now

	placeholders := make([]string, 0, len(metaColumns)+len(t.cols))
	for i := range len(metaColumns) + len(t.cols) {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, columnList(t.cols), strings.Join(placeholders, ", "))
	args := append([]any{meta.ID, meta.CreatedAt, meta.UpdatedAt}, t.values(&rec)...)

	err := t.observe(t.name+".create", func() error {
		_, err := t.pool.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		var zero T
		return zero, translatePgError(err)
	}

	return rec, nil
}

func (t *table[T, PT]) List(ctx context.Context, opts query.Options) ([]T, error) {
	sql, args := buildListQuery(t.name, t.cols, opts)

	out := make([]T, 0)

	err := t.observe(t.name+".list", func() error {
		rows, err := t.pool.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := t.scan(rows)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, translatePgError(err)
	}

	return out, nil
}

func (t *table[T, PT]) GetByID(ctx context.Context, id string) (T, error) {
	var (
		rec T
		err error
	)

	if err = checkID(id); err != nil {
		return rec, err
	}

	sql := "SELECT " + columnList(t.cols) + " FROM " + t.name + " WHERE id = $1"

	err = t.observe(t.name+".get_by_id", func() error {
		rec, err = t.scan(t.pool.QueryRow(ctx, sql, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, resource.ErrNotFound
		}
		return rec, translatePgError(err)
	}

	return rec, nil
}

// Update writes every column of rec and returns the stored row.
func (t *table[T, PT]) Update(ctx context.Context, rec T) (T, error) {
	meta := PT(&rec).Base()
	if err := checkID(meta.ID); err != nil {
		return rec, err
	}

	sets := make([]string, 0, len(t.cols)+1)
	for i, c := range t.cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", c.name, i+2))
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(t.cols)+2))

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 RETURNING %s",
		t.name, strings.Join(sets, ", "), columnList(t.cols))
	args := append(append([]any{meta.ID}, t.values(&rec)...), dbTime(time.Now()))

	var (
		out T
		err error
	)

	err = t.observe(t.name+".update", func() error {
		out, err = t.scan(t.pool.QueryRow(ctx, sql, args...))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, resource.ErrNotFound
		}
		return rec, translatePgError(err)
	}

	return out, nil
}

func (t *table[T, PT]) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	var tag pgconn.CommandTag

	err := t.observe(t.name+".delete", func() error {
		var err error
		tag, err = t.pool.Exec(ctx, "DELETE FROM "+t.name+" WHERE id = $1", id)
		return err
	})
	if err != nil {
		return translatePgError(err)
	}

	if tag.RowsAffected() == 0 {
		return resource.ErrNotFound
	}
	return nil
}
