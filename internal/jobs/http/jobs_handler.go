// Package http provides the admin endpoints that trigger scheduled jobs on demand.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/diffrun/opsdesk/internal/httputil"
	jobsUseCase "github.com/diffrun/opsdesk/internal/jobs/usecase"
)

// maxFeedbackLimit caps the limit query parameter of a manual feedback run.
const maxFeedbackLimit = 1000

// JobsHandler handles manual job triggers.
type JobsHandler struct {
	jobsUseCase jobsUseCase.JobsUseCase
	logger      *slog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(jobsUseCase jobsUseCase.JobsUseCase, logger *slog.Logger) *JobsHandler {
	return &JobsHandler{
		jobsUseCase: jobsUseCase,
		logger:      logger,
	}
}

// RunNudgesHandler runs the nudge job once.
// POST /v1/cron/nudges
func (h *JobsHandler) RunNudgesHandler(c *gin.Context) {
	result, err := h.jobsUseCase.RunNudges(c.Request.Context(), time.Now().UTC())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunFeedbackEmailsHandler runs the feedback email job once.
// POST /v1/cron/feedback-emails?limit=
func (h *JobsHandler) RunFeedbackEmailsHandler(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxFeedbackLimit {
			httputil.HandleBadRequestGin(c,
				fmt.Errorf("invalid limit parameter: must be between 1 and %d", maxFeedbackLimit), h.logger)
			return
		}
		limit = n
	}

	result, err := h.jobsUseCase.RunFeedbackEmails(c.Request.Context(), time.Now().UTC(), limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunReconcileHandler runs the shipment reconcile job once.
// POST /v1/cron/reconcile
func (h *JobsHandler) RunReconcileHandler(c *gin.Context) {
	result, err := h.jobsUseCase.RunReconcile(c.Request.Context(), time.Now().UTC())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SendFeedbackEmailHandler enqueues the feedback email for one preview job.
// POST /v1/jobs/:job_id/feedback-email
func (h *JobsHandler) SendFeedbackEmailHandler(c *gin.Context) {
	jobID := strings.TrimSpace(c.Param("job_id"))
	if jobID == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("job_id cannot be empty"), h.logger)
		return
	}

	result, err := h.jobsUseCase.SendFeedbackEmail(c.Request.Context(), jobID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, result)
}
