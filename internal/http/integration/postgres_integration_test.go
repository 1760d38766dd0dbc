package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/coursehub/internal/auth"
	"github.com/geocoder89/coursehub/internal/db"
	apphttp "github.com/geocoder89/coursehub/internal/http"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/geocoder89/coursehub/internal/repo/postgres"
	"github.com/geocoder89/coursehub/internal/security"
	"github.com/prometheus/client_golang/prometheus"
)

// newPostgresApp runs against TEST_DB_DSN and is skipped without it.
func newPostgresApp(t *testing.T) app {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool, err := db.NewPool(ctx, db.PoolConfig{URL: dsn, MaxConns: 4})
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	_, err = pool.Exec(ctx, `TRUNCATE jobs, transactions, courses, users`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	cfg := testConfig()
	cfg.Store = "postgres"

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	prom := observability.NewProm(prometheus.NewRegistry())

	a := app{cfg: cfg}
	a.router = apphttp.NewRouter(apphttp.Deps{
		Config:       cfg,
		Log:          log,
		Tokens:       tokens,
		Hasher:       security.NewHasher(cfg.BcryptCost),
		Courses:      postgres.NewCoursesRepo(pool, prom),
		Transactions: postgres.NewTransactionsRepo(pool, prom),
		Users:        postgres.NewUsersRepo(pool, prom),
		Jobs:         postgres.NewJobsRepo(pool, prom),
		Prom:         prom,
		Ping:         pool.Ping,
	})

	return a
}

func TestPostgres_CourseRoundTrip(t *testing.T) {
	a := newPostgresApp(t)

	teacher := a.signup(t, "Teacher", "teacher@example.com", "teacher")

	rec, env := a.do(t, request{method: http.MethodPost, path: "/api/v1/signup",
		body: `{"name":"Again","email":"teacher@example.com","password":"pass1234","passwordConfirm":"pass1234"}`})
	if rec.Code != http.StatusBadRequest || env.Message != `Duplicate field value: "teacher@example.com". Please use another value!` {
		t.Fatalf("duplicate email: %d %q", rec.Code, env.Message)
	}

	var ids []string
	for _, title := range []string{"First", "Second", "Third"} {
		rec, env := a.do(t, request{method: http.MethodPost, path: "/api/v1/courses", token: teacher,
			body: `{"title":"` + title + `","description":"d","category":"Science"}`})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %s: %d %s", title, rec.Code, rec.Body.String())
		}
		ids = append(ids, env.record(t)["id"].(string))
	}

	rec, env = a.do(t, request{method: http.MethodGet, path: "/api/v1/courses?page=2&limit=1", token: teacher})
	if rec.Code != http.StatusOK || env.Results != 1 || env.records(t)[0]["title"] != "Second" {
		t.Fatalf("pagination: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = a.do(t, request{method: http.MethodPatch, path: "/api/v1/courses/" + ids[0], token: teacher, body: `{"title":"Renamed"}`})
	if rec.Code != http.StatusOK || env.record(t)["title"] != "Renamed" {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = a.do(t, request{method: http.MethodGet, path: "/api/v1/courses/not-a-uuid", token: teacher})
	if rec.Code != http.StatusBadRequest || env.Message != "Invalid id: not-a-uuid." {
		t.Fatalf("cast: %d %q", rec.Code, env.Message)
	}

	rec, _ = a.do(t, request{method: http.MethodDelete, path: "/api/v1/courses/" + ids[1], token: teacher})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}

	rec, env = a.do(t, request{method: http.MethodDelete, path: "/api/v1/courses/" + ids[1], token: teacher})
	if rec.Code != http.StatusNotFound || env.Message != "No document found with that ID" {
		t.Fatalf("delete twice: %d %q", rec.Code, env.Message)
	}
}
