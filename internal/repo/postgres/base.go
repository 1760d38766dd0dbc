package postgres

import (
	"time"

	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

type base struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func (b base) observe(op string, fn func() error) error {
	if b.prom != nil {
		return b.prom.ObserveDB(op, fn)
	}
	return fn()
}

// dbTime matches what a timestamptz column hands back, so a row returned
// from Create compares equal to the same row read later.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
