package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/coursehub/internal/auth"
	"github.com/geocoder89/coursehub/internal/cache"
	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/domain/transaction"
	apphttp "github.com/geocoder89/coursehub/internal/http"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/geocoder89/coursehub/internal/repo/memory"
	"github.com/geocoder89/coursehub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

type app struct {
	router       *gin.Engine
	cfg          config.Config
	users        *memory.UsersRepo
	courses      *memory.Store[course.Course, *course.Course]
	transactions *memory.Store[transaction.Transaction, *transaction.Transaction]
	jobs         *memory.JobsRepo
}

func testConfig() config.Config {
	return config.Config{
		Env:                config.EnvProduction,
		Store:              config.StoreMemory,
		JWTSecret:          "integration-secret",
		JWTExpiresIn:       time.Hour,
		JWTCookieExpiresIn: 90,
		BcryptCost:         bcrypt.MinCost,
		PasswordResetTTL:   10 * time.Minute,
		ResetURLBase:       "http://localhost:3000/api/v1/resetPassword",
		RateLimit:          1000,
		RateWindow:         time.Hour,
		MaxBodyBytes:       10 << 10,
		CORSOrigins:        []string{"*"},
		RequestTimeout:     2 * time.Second,
		ServiceName:        "coursehub-test",
	}
}

func newApp(t *testing.T, mutate func(*config.Config)) app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	prom := observability.NewProm(prometheus.NewRegistry())

	a := app{
		cfg:          cfg,
		users:        memory.NewUsersRepo(),
		courses:      memory.NewStore[course.Course](),
		transactions: memory.NewStore[transaction.Transaction](),
		jobs:         memory.NewJobsRepo(),
	}

	a.router = apphttp.NewRouter(apphttp.Deps{
		Config:       cfg,
		Log:          log,
		Tokens:       tokens,
		Hasher:       security.NewHasher(cfg.BcryptCost),
		Courses:      a.courses,
		Transactions: a.transactions,
		Users:        a.users,
		Jobs:         a.jobs,
		Lists:        cache.NewLists(cache.NewMemory(time.Minute), prom, log),
		Prom:         prom,
		Ping:         a.courses.Ping,
	})

	return a
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Results int             `json:"results"`
	Stack   string          `json:"stack"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) records(t *testing.T) []map[string]any {
	t.Helper()

	var wrapped struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(e.Data, &wrapped); err != nil {
		t.Fatalf("decode list data: %v", err)
	}
	return wrapped.Data
}

func (e envelope) record(t *testing.T) map[string]any {
	t.Helper()

	var wrapped struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(e.Data, &wrapped); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return wrapped.Data
}

type request struct {
	method  string
	path    string
	body    string
	token   string
	cookies []*http.Cookie
}

func (a app) do(t *testing.T, r request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return a.doWithContentType(t, r, "application/json")
}

func (a app) doWithContentType(t *testing.T, r request, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var body io.Reader
	if r.body != "" {
		body = bytes.NewBufferString(r.body)
	}

	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func (a app) signup(t *testing.T, name, email, role string) string {
	t.Helper()

	body := `{"name":"` + name + `","email":"` + email + `","password":"pass1234","passwordConfirm":"pass1234"`
	if role != "" {
		body += `,"role":"` + role + `"`
	}
	body += "}"

	rec, env := a.do(t, request{method: http.MethodPost, path: "/api/v1/signup", body: body})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d body=%s", email, rec.Code, rec.Body.String())
	}
	return env.Token
}

func (a app) seedTransaction(t *testing.T, title, category string) {
	t.Helper()

	_, err := a.transactions.Create(context.Background(), transaction.Transaction{
		Title:       title,
		Description: "seeded",
		Category:    category,
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
