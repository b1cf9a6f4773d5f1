package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/app"
)

type ReminderHandler struct {
	useCase app.ReminderUseCase
}

func NewReminderHandler(useCase app.ReminderUseCase) *ReminderHandler {
	useWireFieldNames()

	return &ReminderHandler{
		useCase: useCase,
	}
}

func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)

		return
	}

	output, err := h.useCase.CreateReminder(c.Request.Context(), app.CreateReminderInput{
		Task:     req.Task,
		DueDate:  req.DueDate,
		UserID:   req.UserID,
		Priority: req.Priority,
	})
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusCreated, FromOutput(output))
}

func (h *ReminderHandler) ListReminders(c *gin.Context) {
	var req ListRemindersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)

		return
	}

	output, err := h.useCase.ListReminders(c.Request.Context(), app.ListRemindersInput{
		UserID: req.UserID,
		Status: req.Status,
		Page:   req.Page,
		Limit:  req.Limit,
	})
	if err != nil {
		handleError(c, err)

		return
	}

	slog.DebugContext(c.Request.Context(), "reminders listed",
		"count", len(output.Reminders),
		"total", output.Total,
	)
	c.JSON(http.StatusOK, FromOutputs(output))
}

func (h *ReminderHandler) GetReminder(c *gin.Context) {
	output, err := h.useCase.GetReminder(c.Request.Context(), app.GetReminderInput{ID: c.Param("id")})
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromOutput(output))
}

func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)

		return
	}

	input := app.UpdateReminderInput{
		ID:       c.Param("id"),
		Task:     req.Task,
		Priority: req.Priority,
		DueDate:  req.DueDate,
		Status:   req.Status,
	}

	if req.SnoozeMinutes != nil {
		minutes := req.SnoozeMinutes.String()
		input.SnoozeMinutes = &minutes
	}

	output, err := h.useCase.UpdateReminder(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromOutput(output))
}

func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	if err := h.useCase.DeleteReminder(c.Request.Context(), app.DeleteReminderInput{ID: c.Param("id")}); err != nil {
		handleError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ReminderHandler) GetStats(c *gin.Context) {
	output, err := h.useCase.GetStats(c.Request.Context())
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, StatsResponse(output))
}

func (h *ReminderHandler) RegisterRoutes(router *gin.RouterGroup) {
	reminders := router.Group("/reminders")
	{
		reminders.POST("", h.CreateReminder)
		reminders.GET("", h.ListReminders)
		reminders.GET("/stats", h.GetStats)
		reminders.GET("/:id", h.GetReminder)
		reminders.PATCH("/:id", h.UpdateReminder)
		reminders.DELETE("/:id", h.DeleteReminder)
	}
}
