package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/job"
	"github.com/geocoder89/coursehub/internal/jobs"
	"github.com/geocoder89/coursehub/internal/notifications"
)

// ProcessOne claims and runs at most one job. It reports whether a job was
// claimed.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}
		return false, err
	}

	w.metrics.IncClaimed()
	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()

	execCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	err = w.execute(execCtx, j)
	cancel()

	elapsed := time.Since(start)
	w.metrics.ObserveDuration(elapsed)

	if err != nil {
		return true, w.handleFailure(ctx, j, err, elapsed)
	}

	if err := w.repo.MarkDone(ctx, j.ID); err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	w.metrics.IncDone()
	w.observe(j, "done", elapsed)
	w.log.InfoContext(ctx, "job done", "job_id", j.ID, "type", j.Type, "duration", elapsed.String())
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j.Type, j.Payload)
	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.PasswordResetPayload:
		return w.notifier.SendPasswordReset(ctx, notifications.PasswordResetInput{
			Email:     p.Email,
			Name:      p.Name,
			ResetURL:  p.ResetURL,
			ExpiresAt: p.ExpiresAt,
		})
	default:
		return fmt.Errorf("%w: no handler for %s", jobs.ErrInvalidJobType, j.Type)
	}
}

// handleFailure retries with backoff until MaxAttempts. Malformed jobs fail
// at once since retrying cannot fix them.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error, elapsed time.Duration) error {
	msg := cause.Error()

	permanent := errors.Is(cause, jobs.ErrInvalidJobType) ||
		errors.Is(cause, jobs.ErrInvalidJobPayload) ||
		errors.Is(cause, jobs.ErrPayloadTypeMismatch)

	if permanent || j.Attempts+1 >= j.MaxAttempts {
		w.metrics.IncFailed()
		w.observe(j, "failed", elapsed)
		w.log.ErrorContext(ctx, "job failed", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts+1, "err", msg)
		return w.repo.MarkFailed(ctx, j.ID, msg)
	}

	runAt := w.now().Add(w.backoff(j.Attempts))

	w.metrics.IncRetried()
	w.observe(j, "retry", elapsed)
	w.log.WarnContext(ctx, "job rescheduled", "job_id", j.ID, "type", j.Type, "run_at", runAt, "err", msg)
	return w.repo.Reschedule(ctx, j.ID, runAt, msg)
}

func (w *Worker) observe(j job.Job, result string, d time.Duration) {
	if w.prom != nil {
		w.prom.ObserveJob(string(j.Type), result, d)
	}
}
