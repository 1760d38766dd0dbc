package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/geocoder89/coursehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type UserDeactivator interface {
	Deactivate(ctx context.Context, id string) error
}

type UsersHandler struct {
	users   UserDeactivator
	timeout time.Duration
}

func NewUsersHandler(users UserDeactivator, timeout time.Duration) *UsersHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &UsersHandler{users: users, timeout: timeout}
}

// GetMe returns the user Protect resolved.
func (h *UsersHandler) GetMe(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		middlewares.Abort(ctx, apperr.Unauthorized("User not authenticated"))
		return
	}

	respondData(ctx, http.StatusOK, u)
}

// DeleteMe deactivates the account; the row stays but every lookup skips it.
func (h *UsersHandler) DeleteMe(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		middlewares.Abort(ctx, apperr.Unauthorized("User not authenticated"))
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	if err := h.users.Deactivate(cctx, u.ID); err != nil {
		middlewares.Abort(ctx, notFoundUser(err))
		return
	}

	respondNoContent(ctx)
}
