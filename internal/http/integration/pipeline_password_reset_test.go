package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/job"
	"github.com/geocoder89/coursehub/internal/notifications"
	"github.com/geocoder89/coursehub/internal/queue/worker"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifications.PasswordResetInput
}

func (n *recordingNotifier) SendPasswordReset(_ context.Context, in notifications.PasswordResetInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, in)
	return nil
}

func (n *recordingNotifier) Last() (notifications.PasswordResetInput, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) == 0 {
		return notifications.PasswordResetInput{}, false
	}
	return n.calls[len(n.calls)-1], true
}

func TestPipeline_ForgotPassword_WorkerSends_ResetSucceeds(t *testing.T) {
	a := newApp(t, nil)
	a.signup(t, "Sam", "sam@example.com", "admin")

	rec, env := a.do(t, request{method: http.MethodPost, path: "/api/v1/forgotPassword", body: `{"email":"sam@example.com"}`})
	if rec.Code != http.StatusOK || env.Message != "Token sent to email!" {
		t.Fatalf("forgot password: %d %q", rec.Code, env.Message)
	}

	notifier := &recordingNotifier{}
	w := worker.New(worker.Config{WorkerID: "test-worker"}, a.jobs, notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	processed, err := w.ProcessOne(ctx)
	if err != nil || !processed {
		t.Fatalf("worker did not process the reset job: processed=%v err=%v", processed, err)
	}

	if again, _ := w.ProcessOne(ctx); again {
		t.Fatalf("the reset job must be sent once")
	}

	sent, ok := notifier.Last()
	if !ok || sent.Email != "sam@example.com" || !strings.HasPrefix(sent.ResetURL, a.cfg.ResetURLBase+"/") {
		t.Fatalf("unexpected notification %+v", sent)
	}

	raw := strings.TrimPrefix(sent.ResetURL, a.cfg.ResetURLBase+"/")

	rec, env = a.do(t, request{
		method: http.MethodPatch,
		path:   "/api/v1/resetPassword/" + raw,
		body:   `{"password":"brandnew1","passwordConfirm":"brandnew1"}`,
	})
	if rec.Code != http.StatusOK || env.Token == "" {
		t.Fatalf("reset: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = a.do(t, request{method: http.MethodPost, path: "/api/v1/login", body: `{"email":"sam@example.com","password":"brandnew1"}`})
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password: %d", rec.Code)
	}

	rec, _ = a.do(t, request{method: http.MethodPost, path: "/api/v1/login", body: `{"email":"sam@example.com","password":"pass1234"}`})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password must stop working: %d", rec.Code)
	}
}

func TestAdminJobs_ShowsDeliveredJob(t *testing.T) {
	a := newApp(t, nil)
	admin := a.signup(t, "Admin", "admin@example.com", "admin")
	student := a.signup(t, "Student", "student@example.com", "")

	rec, _ := a.do(t, request{method: http.MethodPost, path: "/api/v1/forgotPassword", body: `{"email":"student@example.com"}`})
	if rec.Code != http.StatusOK {
		t.Fatalf("forgot password: %d", rec.Code)
	}

	claimed, err := a.jobs.ClaimNext(context.Background(), "probe")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := a.jobs.MarkDone(context.Background(), claimed.ID); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	rec, _ = a.do(t, request{method: http.MethodGet, path: "/api/v1/admin/jobs/" + claimed.ID, token: student})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student must not read jobs: %d", rec.Code)
	}

	rec, env := a.do(t, request{method: http.MethodGet, path: "/api/v1/admin/jobs/" + claimed.ID, token: admin})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin job view: %d %s", rec.Code, rec.Body.String())
	}
	if got := env.record(t)["status"]; got != string(job.StatusDone) {
		t.Fatalf("unexpected job status %v", got)
	}
	if strings.Contains(rec.Body.String(), "resetUrl") {
		t.Fatalf("job view must not leak the reset link")
	}
}
