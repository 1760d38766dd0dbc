package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/coursehub/internal/actorctx"
	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/geocoder89/coursehub/internal/auth"
	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/domain/job"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/http/middlewares"
	"github.com/geocoder89/coursehub/internal/jobs"
	"github.com/geocoder89/coursehub/internal/security"
	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByResetToken(ctx context.Context, hashed string, now time.Time) (user.User, error)
	SetResetToken(ctx context.Context, id string, hashed *string, expires *time.Time) error
	UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error
	Deactivate(ctx context.Context, id string) error
}

type JobsEnqueuer interface {
	Create(ctx context.Context, j job.Job) (job.Job, error)
}

const loggedOutTTL = 10 * time.Second

type AuthHandler struct {
	users  UsersStore
	jobs   JobsEnqueuer
	tokens *auth.Manager
	hasher *security.Hasher
	cfg    config.Config
	log    *slog.Logger
	now    func() time.Time
}

func NewAuthHandler(users UsersStore, jobsRepo JobsEnqueuer, tokens *auth.Manager, hasher *security.Hasher, cfg config.Config, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		users:  users,
		jobs:   jobsRepo,
		tokens: tokens,
		hasher: hasher,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

func (h *AuthHandler) Signup(ctx *gin.Context) {
	var in user.SignupInput
	if err := decodeJSON(ctx, &in); err != nil {
		middlewares.Abort(ctx, err)
		return
	}

	if err := user.SignupSchema.Prepare(&in); err != nil {
		middlewares.Abort(ctx, err)
		return
	}

	cctx, cancel := h.withTimeout(ctx)
	defer cancel()

	hash, err := h.hasher.Hash(in.Password)
	if err != nil {
		middlewares.Abort(ctx, apperr.Internal(err))
		return
	}

	u, err := h.users.Create(cctx, user.NewFromSignup(in, hash))
	if err != nil {
		middlewares.Abort(ctx, err)
		return
	}

	h.sendToken(ctx, http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var in user.LoginInput
	if err := decodeJSON(ctx, &in); err != nil {
		middlewares.Abort(ctx, err)
		return
	}

	email := user.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		middlewares.Abort(ctx, apperr.BadRequest("Please provide email and password!"))
		return
	}

	cctx, cancel := h.withTimeout(ctx)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, email)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		middlewares.Abort(ctx, apperr.Internal(err))
		return
	}

	// same answer for unknown email and wrong password
	if err != nil || h.hasher.Compare(u.PasswordHash, in.Password) != nil {
		middlewares.Abort(ctx, apperr.Unauthorized("Incorrect email or password"))
		return
	}

	h.sendToken(ctx, http.StatusOK, u)
}

// Logout overwrites the cookie; issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     auth.CookieName,
		Value:    middlewares.LoggedOutCookie,
		Path:     "/",
		Expires:  h.now().Add(loggedOutTTL),
		HttpOnly: true,
		Secure:   !h.cfg.IsDevelopment(),
	})

	ctx.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var in user.ForgotPasswordInput
	if err := decodeJSON(ctx, &in); err != nil {
		middlewares.Abort(ctx, err)
		return
	}

	cctx, cancel := h.withTimeout(ctx)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, user.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			middlewares.Abort(ctx, apperr.NotFound("There is no user with that email address."))
			return
		}
		middlewares.Abort(ctx, apperr.Internal(err))
		return
	}

	raw, hashed, err := security.NewResetToken()
	if err != nil {
		middlewares.Abort(ctx, apperr.Internal(err))
		return
	}

	expires := h.now().UTC().Add(h.cfg.PasswordResetTTL)
	if err := h.users.SetResetToken(cctx, u.ID, &hashed, &expires); err != nil {
		middlewares.Abort(ctx, apperr.Internal(err))
		return
	}

	if err := h.enqueueReset(cctx, u, raw, hashed, expires); err != nil {
		if cerr := h.users.SetResetToken(cctx, u.ID, nil, nil); cerr != nil {
			h.log.WarnContext(cctx, "clear reset token failed", "user_id", u.ID, "err", cerr)
		}
		middlewares.Abort(ctx, apperr.New(http.StatusInternalServerError, "There was an error sending the email. Try again later!"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Token sent to email!",
	})
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var in user.PasswordInput
	if err := decodeJSON(ctx, &in); err != nil {
		middlewares.Abort(ctx, err)
		return
	}

	cctx, cancel := h.withTimeout(ctx)
	defer cancel()

	hashed := security.HashResetToken(ctx.Param("token"))

	u, err := h.users.GetByResetToken(cctx, hashed, h.now().UTC())
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			middlewares.Abort(ctx, apperr.BadRequest("Token is invalid or has expired"))
			return
		}
		middlewares.Abort(ctx, apperr.Internal(err))
		return
	}

	if err := user.PasswordSchema.Validate(&in); err != nil {
		middlewares.Abort(ctx, err)
		return
	}

	h.changePassword(ctx, cctx, u, in.Password)
}

// UpdateMyPassword runs behind Protect.
func (h *AuthHandler) UpdateMyPassword(ctx *gin.Context) {
	current, ok := middlewares.CurrentUser(ctx)
	if !ok {
		middlewares.Abort(ctx, apperr.Unauthorized("User not authenticated"))
		return
	}

	var in user.UpdatePasswordInput
	if err := decodeJSON(ctx, &in); err != nil {
		middlewares.Abort(ctx, err)
		return
	}

	if err := user.UpdatePasswordSchema.Validate(&in); err != nil {
		middlewares.Abort(ctx, err)
		return
	}

	if err := h.hasher.Compare(current.PasswordHash, in.PasswordCurrent); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			middlewares.Abort(ctx, apperr.Unauthorized("Your current password is wrong."))
			return
		}
		middlewares.Abort(ctx, apperr.Internal(err))
		return
	}

	cctx, cancel := h.withTimeout(ctx)
	defer cancel()

	h.changePassword(ctx, cctx, *current, in.Password)
}

func (h *AuthHandler) changePassword(ctx *gin.Context, cctx context.Context, u user.User, password string) {
	hash, err := h.hasher.Hash(password)
	if err != nil {
		middlewares.Abort(ctx, apperr.Internal(err))
		return
	}

	// one second back so a token signed right now is still newer
	changedAt := h.now().UTC().Add(-time.Second)

	if err := h.users.UpdatePassword(cctx, u.ID, hash, changedAt); err != nil {
		middlewares.Abort(ctx, notFoundUser(err))
		return
	}

	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil

	h.sendToken(ctx, http.StatusOK, u)
}

func (h *AuthHandler) enqueueReset(ctx context.Context, u user.User, raw, hashed string, expires time.Time) error {
	reqID, _ := actorctx.RequestIDFrom(ctx)

	payload := jobs.PasswordResetPayload{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		ResetURL:  strings.TrimRight(h.cfg.ResetURLBase, "/") + "/" + raw,
		ExpiresAt: expires,
		RequestID: reqID,
	}

	key := string(jobs.JobSendPasswordReset) + ":" + hashed

	j, err := job.Enqueue(jobs.JobSendPasswordReset, payload, &key)
	if err != nil {
		return err
	}

	_, err = h.jobs.Create(ctx, j)
	return err
}

func (h *AuthHandler) sendToken(ctx *gin.Context, status int, u user.User) {
	token, err := h.tokens.Sign(u.ID)
	if err != nil {
		middlewares.Abort(ctx, apperr.Internal(err))
		return
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  h.now().Add(h.cfg.CookieTTL()),
		HttpOnly: true,
		Secure:   !h.cfg.IsDevelopment(),
	})

	ctx.JSON(status, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": u},
	})
}

func (h *AuthHandler) withTimeout(ctx *gin.Context) (context.Context, context.CancelFunc) {
	timeout := h.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx.Request.Context(), timeout)
}

func notFoundUser(err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return apperr.Unauthorized("The user belonging to this token no longer exists.")
	}
	return apperr.Internal(err)
}
