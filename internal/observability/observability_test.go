package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/coursehub/internal/actorctx"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLogger_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := observability.NewLoggerTo(&buf, "production")

	ctx := actorctx.WithRequestID(context.Background(), "req-42")
	log.InfoContext(ctx, "hello")
	log.DebugContext(ctx, "hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line (debug filtered), got %d: %s", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if rec["request_id"] != "req-42" {
		t.Fatalf("expected request_id, got %v", rec)
	}
}

func TestLogger_AddsCaller(t *testing.T) {
	var buf bytes.Buffer
	log := observability.NewLoggerTo(&buf, "production")

	ctx := actorctx.WithUser(context.Background(), &user.User{ID: "u-1", Role: user.RoleTeacher})
	log.InfoContext(ctx, "created")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if rec["user_id"] != "u-1" || rec["role"] != "teacher" {
		t.Fatalf("expected caller attrs, got %v", rec)
	}
	if _, ok := rec["request_id"]; ok {
		t.Fatalf("no request id was set, got %v", rec)
	}
}

func TestLogger_DevelopmentIsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := observability.NewLoggerTo(&buf, "development")

	log.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected debug record in development, got %q", buf.String())
	}
}

func TestProm_ObserveDBAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := observability.NewProm(reg)

	_ = p.ObserveDB("courses.get", func() error { return nil })
	err := p.ObserveDB("users.create", func() error { return &pgconn.PgError{Code: "23505"} })
	if err == nil {
		t.Fatalf("expected the wrapped error to be returned")
	}

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "duplicate")); got != 1 {
		t.Fatalf("expected 1 duplicate, got %v", got)
	}

	_ = p.ObserveDB("courses.get", func() error { return fmt.Errorf("scan: %w", pgx.ErrNoRows) })
	_ = p.ObserveDB("courses.list", func() error { return &pgconn.PgError{Code: "22P02"} })
	_ = p.ObserveDB("courses.list", func() error { return context.DeadlineExceeded })

	if got := testutil.CollectAndCount(p.DbErrorsTotal); got != 3 {
		t.Fatalf("expected 3 error series (not_found is not an error), got %d", got)
	}
	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("courses.list", "bad_input")); got != 1 {
		t.Fatalf("expected 1 bad_input, got %v", got)
	}
	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("courses.list", "timeout")); got != 1 {
		t.Fatalf("expected 1 timeout, got %v", got)
	}

	p.ObserveCache("courses", "hit")
	p.ObserveJob("send_password_reset", "done", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"coursehub_db_query_duration_seconds",
		"coursehub_cache_lookups_total",
		"coursehub_jobs_results_total",
	} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}

func TestJobMetrics_Snapshot(t *testing.T) {
	m := observability.NewJobMetrics()
	m.IncClaimed()
	m.IncDone()
	m.ObserveDuration(10 * time.Millisecond)
	m.ObserveDuration(30 * time.Millisecond)

	s := m.Snapshot()
	if s.Claimed != 1 || s.Done != 1 || s.DurationCount != 2 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if s.AverageDuration != 20*time.Millisecond || s.MaxDuration != 30*time.Millisecond {
		t.Fatalf("unexpected durations %+v", s)
	}
}
