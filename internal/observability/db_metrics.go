package observability

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/coursehub/internal/resource"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ObserveDB times one logical repository operation. A missing row is an
// answer, not a failure, so it gets its own status and no error count.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := dbStatus(err)
	if status == "error" {
		p.DbErrorsTotal.WithLabelValues(op, dbErrorClass(err)).Inc()
	}

	p.DbQueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

func dbStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, resource.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// pgClasses maps SQLSTATE classes (first two characters) to labels.
var pgClasses = map[string]string{
	"08": "connection",
	"22": "bad_input",
	"23": "constraint",
	"40": "rollback",
	"53": "resources",
	"57": "canceled",
}

func dbErrorClass(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return "duplicate"
		}
		if len(pgErr.Code) >= 2 {
			if class, ok := pgClasses[pgErr.Code[:2]]; ok {
				return class
			}
		}
		return "pg_" + pgErr.Code
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case pgconn.Timeout(err):
		return "timeout"
	default:
		return "other"
	}
}
