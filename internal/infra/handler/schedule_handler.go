package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/app"
)

type ScheduleHandler struct {
	useCase app.ScheduleUseCase
}

func NewScheduleHandler(useCase app.ScheduleUseCase) *ScheduleHandler {
	useWireFieldNames()

	return &ScheduleHandler{useCase: useCase}
}

func (h *ScheduleHandler) ScheduleMeeting(c *gin.Context) {
	var req ScheduleMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)

		return
	}

	output, err := h.useCase.ScheduleMeeting(c.Request.Context(), app.ScheduleMeetingInput{Text: req.Text})
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusCreated, ScheduleMeetingResponse{
		EventID:    output.EventID,
		ReminderID: output.ReminderID,
		Name:       output.Name,
		Start:      output.Start,
		End:        output.End,
		Attendees:  output.Attendees,
	})
}

func (h *ScheduleHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/schedule", h.ScheduleMeeting)
}
