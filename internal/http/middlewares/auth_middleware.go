package middlewares

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/coursehub/internal/actorctx"
	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/geocoder89/coursehub/internal/auth"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// LoggedOutCookie is the value logout leaves in the jwt cookie.
const LoggedOutCookie = "loggedOut"

// Keep these small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
	users  UserFinder
}

func NewAuthMiddleware(tokens TokenVerifier, users UserFinder) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Protect admits requests carrying a valid token of a user that still
// exists and has not changed password since the token was issued.
func (m *AuthMiddleware) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFrom(c)
		if raw == "" {
			Abort(c, apperr.Unauthorized("You are not logged in! Please log in to get access."))
			return
		}

		claims, err := m.tokens.Verify(raw)
		if err != nil {
			Abort(c, err)
			return
		}

		u, err := m.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				Abort(c, apperr.Unauthorized("The user belonging to this token no longer exists."))
				return
			}
			Abort(c, apperr.Internal(err))
			return
		}

		if u.ChangedPasswordAfter(claims.IssuedAtTime()) {
			Abort(c, apperr.Unauthorized("User recently changed password! Please log in again."))
			return
		}

		c.Request = c.Request.WithContext(actorctx.WithUser(c.Request.Context(), &u))
		c.Next()
	}
}

// CurrentUser returns the user Protect attached to the request.
func CurrentUser(c *gin.Context) (*user.User, bool) {
	return actorctx.UserFrom(c.Request.Context())
}

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}

	v, err := c.Cookie(auth.CookieName)
	if err != nil || v == LoggedOutCookie {
		return ""
	}
	return v
}
