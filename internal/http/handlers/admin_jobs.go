package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/geocoder89/coursehub/internal/domain/job"
	"github.com/geocoder89/coursehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type JobReader interface {
	GetByID(ctx context.Context, id string) (job.Job, error)
}

// AdminJobsHandler lets admins follow background jobs such as reset mails.
type AdminJobsHandler struct {
	repo    JobReader
	timeout time.Duration
}

func NewAdminJobsHandler(repo JobReader, timeout time.Duration) *AdminJobsHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AdminJobsHandler{repo: repo, timeout: timeout}
}

// GetByID serves GET /admin/jobs/:id
func (h *AdminJobsHandler) GetByID(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	j, err := h.repo.GetByID(cctx, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			middlewares.Abort(ctx, apperr.NotFound(notFoundMessage))
			return
		}
		middlewares.Abort(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, newJobView(j))
}

// jobView leaves out the payload; reset jobs carry a live reset link.
type jobView struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      job.Status `json:"status"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"maxAttempts"`
	RunAt       time.Time  `json:"runAt"`
	LastError   *string    `json:"lastError,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func newJobView(j job.Job) jobView {
	return jobView{
		ID:          j.ID,
		Type:        string(j.Type),
		Status:      j.Status,
		Attempts:    j.Attempts,
		MaxAttempts: j.MaxAttempts,
		RunAt:       j.RunAt,
		LastError:   j.LastError,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
