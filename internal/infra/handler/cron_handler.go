package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/scheduler"
)

// PassRunner runs one scheduler pass synchronously.
type PassRunner interface {
	RunPass(ctx context.Context, source scheduler.Source) (scheduler.PassResult, error)
}

// CronHandler lets an external scheduler drive passes over HTTP instead of
// the in-process triggers.
type CronHandler struct {
	runner PassRunner
}

func NewCronHandler(runner PassRunner) *CronHandler {
	return &CronHandler{runner: runner}
}

func (h *CronHandler) DailyCheck(c *gin.Context) {
	h.run(c, scheduler.SourceDue)
}

func (h *CronHandler) QuickCheck(c *gin.Context) {
	h.run(c, scheduler.SourceTiered)
}

func (h *CronHandler) run(c *gin.Context, source scheduler.Source) {
	result, err := h.runner.RunPass(c.Request.Context(), source)
	if err != nil {
		if errors.Is(err, scheduler.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error:   "service_unavailable",
				Message: "reminder store unavailable",
			})

			return
		}

		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromPassResult(result))
}

// JobName names cron routes for job-style request logging, or "" for any
// other route.
func JobName(c *gin.Context) string {
	switch c.FullPath() {
	case "/cron/daily-check":
		return "daily-check"
	case "/cron/quick-check", "/reminders/quick-check":
		return "quick-check"
	default:
		return ""
	}
}

// RegisterRoutes accepts GET as well as POST so existing external triggers
// keep working. /reminders/quick-check is the legacy quick-check path.
func (h *CronHandler) RegisterRoutes(router gin.IRoutes) {
	methods := []string{http.MethodGet, http.MethodPost}

	router.Match(methods, "/cron/daily-check", h.DailyCheck)
	router.Match(methods, "/cron/quick-check", h.QuickCheck)
	router.Match(methods, "/reminders/quick-check", h.QuickCheck)
}
