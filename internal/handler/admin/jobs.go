package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/tally/internal/jobs"
	"github.com/dukerupert/tally/internal/worker"
)

// Trigger starts batch runs on demand.
type Trigger interface {
	TriggerDaily(ctx context.Context) (jobs.RunReport, error)
	TriggerWeekly(ctx context.Context) (jobs.RunReport, error)
}

// JobsHandler exposes the batch runs as admin actions.
type JobsHandler struct {
	trigger Trigger
	logger  *slog.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(trigger Trigger, logger *slog.Logger) *JobsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobsHandler{
		trigger: trigger,
		logger:  logger,
	}
}

// errorResponse is the JSON body of a failed admin request
type errorResponse struct {
	Error string `json:"error"`
}

// RunDaily handles POST /admin/jobs/daily
//
// Response codes:
// - 200 OK: run finished, body is the run report (check its status)
// - 409 Conflict: a daily run is already in progress in this process
func (h *JobsHandler) RunDaily(c echo.Context) error {
	return h.run(c, jobs.JobTypeDaily, h.trigger.TriggerDaily)
}

// RunWeekly handles POST /admin/jobs/weekly
func (h *JobsHandler) RunWeekly(c echo.Context) error {
	return h.run(c, jobs.JobTypeWeekly, h.trigger.TriggerWeekly)
}

func (h *JobsHandler) run(c echo.Context, jobType string, trigger func(context.Context) (jobs.RunReport, error)) error {
	// The run outlives a dropped client connection; RUN_TIMEOUT still bounds it.
	ctx := context.WithoutCancel(c.Request().Context())

	h.logger.Info("manual run requested", "job_type", jobType, "remote_ip", c.RealIP())

	report, err := trigger(ctx)
	if errors.Is(err, worker.ErrRunInProgress) {
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	}
	if err != nil {
		h.logger.Error("manual run failed", "job_type", jobType, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "run could not be started"})
	}

	return c.JSON(http.StatusOK, report)
}

// Health handles GET /health
func (h *JobsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
