package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/job"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const jobColumns = `id, type, payload, status, attempts, max_attempts, run_at,
	locked_at, locked_by, last_error, idempotency_key, created_at, updated_at`

// every state change gives the row back to the queue or closes it
const unlock = `locked_at = NULL, locked_by = NULL, updated_at = NOW()`

type JobsRepo struct {
	base
}

func NewJobsRepo(pool *pgxpool.Pool, prom *observability.Prom) *JobsRepo {
	return &JobsRepo{base{pool: pool, prom: prom}}
}

// queryJob runs a statement returning one job row. No row is
// job.ErrJobNotFound.
func (r *JobsRepo) queryJob(ctx context.Context, op, sql string, args ...any) (job.Job, error) {
	var (
		j      job.Job
		status string
	)

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx, sql, args...).Scan(
			&j.ID, &j.Type, &j.Payload, &status,
			&j.Attempts, &j.MaxAttempts, &j.RunAt,
			&j.LockedAt, &j.LockedBy, &j.LastError,
			&j.IdempotencyKey, &j.CreatedAt, &j.UpdatedAt,
		)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return job.Job{}, job.ErrJobNotFound
	}
	if err != nil {
		return job.Job{}, err
	}

	j.Status = job.Status(status)
	return j, nil
}

// Create inserts j unless its idempotency key is taken, in which case the
// job already holding the key is returned.
func (r *JobsRepo) Create(ctx context.Context, j job.Job) (job.Job, error) {
	created, err := r.queryJob(ctx, "jobs.create", `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING `+jobColumns,
		j.ID, string(j.Type), j.Payload, string(j.Status), j.Attempts, j.MaxAttempts, j.RunAt,
		j.LockedAt, j.LockedBy, j.LastError, j.IdempotencyKey, j.CreatedAt, j.UpdatedAt,
	)

	if errors.Is(err, job.ErrJobNotFound) && j.IdempotencyKey != nil {
		return r.GetByIdempotencyKey(ctx, *j.IdempotencyKey)
	}
	return created, err
}

// ClaimNext locks the oldest runnable job for workerID. SKIP LOCKED keeps
// two workers off the same row.
func (r *JobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	return r.queryJob(ctx, "jobs.claim_next", `
		UPDATE jobs
		SET status = 'processing', locked_at = NOW(), locked_by = $1, updated_at = NOW()
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = 'pending' AND run_at <= NOW() AND attempts < max_attempts
			ORDER BY run_at, created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns, workerID)
}

func (r *JobsRepo) GetByID(ctx context.Context, id string) (job.Job, error) {
	if err := checkID(id); err != nil {
		return job.Job{}, err
	}
	return r.queryJob(ctx, "jobs.get_by_id", `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
}

func (r *JobsRepo) GetByIdempotencyKey(ctx context.Context, key string) (job.Job, error) {
	return r.queryJob(ctx, "jobs.get_by_idempotency_key",
		`SELECT `+jobColumns+` FROM jobs WHERE idempotency_key = $1`, key)
}

func (r *JobsRepo) MarkDone(ctx context.Context, id string) error {
	return r.update(ctx, "jobs.mark_done",
		`UPDATE jobs SET status = 'done', last_error = NULL, `+unlock+` WHERE id = $1`, id)
}

func (r *JobsRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	return r.update(ctx, "jobs.mark_failed",
		`UPDATE jobs SET status = 'failed', attempts = attempts + 1, last_error = $2, `+unlock+` WHERE id = $1`,
		id, errMsg)
}

// Reschedule counts the failed attempt and queues the job again at runAt.
func (r *JobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	return r.update(ctx, "jobs.reschedule",
		`UPDATE jobs SET status = 'pending', attempts = attempts + 1, run_at = $2, last_error = $3, `+unlock+` WHERE id = $1`,
		id, runAt, errMsg)
}

// RequeueStaleProcessing hands back jobs locked longer than lockTTL; their
// worker is assumed dead. The attempt is not counted.
func (r *JobsRepo) RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error) {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}

	tag, err := r.exec(ctx, "jobs.requeue_stale",
		`UPDATE jobs SET status = 'pending', `+unlock+`
		WHERE status = 'processing' AND locked_at < NOW() - make_interval(secs => $1)`,
		lockTTL.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *JobsRepo) update(ctx context.Context, op, sql string, args ...any) error {
	tag, err := r.exec(ctx, op, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}

func (r *JobsRepo) exec(ctx context.Context, op, sql string, args ...any) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	err := r.observe(op, func() error {
		var err error
		tag, err = r.pool.Exec(ctx, sql, args...)
		return err
	})
	return tag, err
}
