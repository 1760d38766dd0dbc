package integration_test

import (
	"net/http"
	"testing"

	"github.com/geocoder89/coursehub/internal/auth"
	"github.com/geocoder89/coursehub/internal/config"
)

func TestAuth_CookieSessionAndLogout(t *testing.T) {
	a := newApp(t, nil)
	a.signup(t, "Sam", "sam@example.com", "")

	rec, env := a.do(t, request{method: http.MethodPost, path: "/api/v1/login", body: `{"email":"sam@example.com","password":"pass1234"}`})
	if rec.Code != http.StatusOK || env.Token == "" {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}

	session := cookieNamed(rec, auth.CookieName)
	if session == nil || !session.HttpOnly || !session.Secure {
		t.Fatalf("unexpected session cookie %+v", session)
	}

	rec, _ = a.do(t, request{method: http.MethodGet, path: "/api/v1/users/me", cookies: []*http.Cookie{session}})
	if rec.Code != http.StatusOK {
		t.Fatalf("cookie auth: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = a.do(t, request{method: http.MethodGet, path: "/api/v1/logout"})
	if rec.Code != http.StatusOK || env.Status != "success" {
		t.Fatalf("logout: %d %s", rec.Code, rec.Body.String())
	}

	loggedOut := cookieNamed(rec, auth.CookieName)
	if loggedOut == nil || loggedOut.Value != "loggedOut" {
		t.Fatalf("logout must overwrite the cookie, got %+v", loggedOut)
	}

	rec, env = a.do(t, request{method: http.MethodGet, path: "/api/v1/users/me", cookies: []*http.Cookie{loggedOut}})
	if rec.Code != http.StatusUnauthorized || env.Message != "You are not logged in! Please log in to get access." {
		t.Fatalf("after logout: %d %q", rec.Code, env.Message)
	}
}

func TestAuth_TokenErrorsTranslated(t *testing.T) {
	a := newApp(t, nil)

	rec, env := a.do(t, request{method: http.MethodGet, path: "/api/v1/users/me", token: "not.a.jwt"})
	if rec.Code != http.StatusUnauthorized || env.Message != "Invalid token. Please log in again!" {
		t.Fatalf("invalid token: %d %q", rec.Code, env.Message)
	}

	other, err := auth.NewManager("another-secret", a.cfg.JWTExpiresIn)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	forged, _ := other.Sign("00000000-0000-0000-0000-000000000000")

	rec, env = a.do(t, request{method: http.MethodGet, path: "/api/v1/users/me", token: forged})
	if rec.Code != http.StatusUnauthorized || env.Message != "Invalid token. Please log in again!" {
		t.Fatalf("forged token: %d %q", rec.Code, env.Message)
	}
}

func TestAuth_DuplicateSignup(t *testing.T) {
	a := newApp(t, nil)
	a.signup(t, "Sam", "sam@example.com", "")

	rec, env := a.do(t, request{
		method: http.MethodPost,
		path:   "/api/v1/signup",
		body:   `{"name":"Sam","email":"sam@example.com","password":"pass1234","passwordConfirm":"pass1234"}`,
	})
	if rec.Code != http.StatusBadRequest || env.Message != `Duplicate field value: "sam@example.com". Please use another value!` {
		t.Fatalf("duplicate: %d %q", rec.Code, env.Message)
	}
}

func TestDevelopmentErrorsCarryStack(t *testing.T) {
	a := newApp(t, func(c *config.Config) { c.Env = config.EnvDevelopment })

	rec, env := a.do(t, request{method: http.MethodGet, path: "/api/v1/nothing-here"})
	if rec.Code != http.StatusNotFound || env.Stack == "" {
		t.Fatalf("development 404 must include a stack: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequireJSON(t *testing.T) {
	a := newApp(t, nil)

	req := request{method: http.MethodPost, path: "/api/v1/login", body: `email=a`}
	rec, _ := a.doWithContentType(t, req, "application/x-www-form-urlencoded")
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}
