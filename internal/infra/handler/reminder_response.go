package handler

import (
	"time"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/app"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/scheduler"
)

type ReminderResponse struct {
	ID                 string    `json:"id"`
	Task               string    `json:"task"`
	DueDate            time.Time `json:"dueDate"`
	UserID             string    `json:"userId"`
	Priority           string    `json:"priority"`
	Status             string    `json:"status"`
	DailyReminderSent  bool      `json:"dailyReminderSent"`
	HourlyReminderSent bool      `json:"hourlyReminderSent"`
	MinuteReminderSent bool      `json:"minuteReminderSent"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

type RemindersResponse struct {
	Reminders []ReminderResponse `json:"reminders"`
	Meta      PageMeta           `json:"meta"`
}

type StatsResponse struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Sent     int64 `json:"sent"`
	DueToday int64 `json:"dueToday"`
	Overdue  int64 `json:"overdue"`
}

type PassResponse struct {
	Source    string    `json:"source"`
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	Skipped   int       `json:"skipped"`
	Errors    int       `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}

type ScheduleMeetingResponse struct {
	EventID    string    `json:"eventId"`
	ReminderID string    `json:"reminderId,omitempty"`
	Name       string    `json:"name"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Attendees  []string  `json:"attendees"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func FromOutput(output app.ReminderOutput) ReminderResponse {
	return ReminderResponse{
		ID:                 output.ID,
		Task:               output.Task,
		DueDate:            output.DueDate,
		UserID:             output.UserID,
		Priority:           output.Priority,
		Status:             output.Status,
		DailyReminderSent:  output.DailyReminderSent,
		HourlyReminderSent: output.HourlyReminderSent,
		MinuteReminderSent: output.MinuteReminderSent,
		CreatedAt:          output.CreatedAt,
		UpdatedAt:          output.UpdatedAt,
	}
}

func FromOutputs(output app.RemindersOutput) RemindersResponse {
	reminders := make([]ReminderResponse, 0, len(output.Reminders))
	for _, r := range output.Reminders {
		reminders = append(reminders, FromOutput(r))
	}

	return RemindersResponse{
		Reminders: reminders,
		Meta: PageMeta{
			Total: output.Total,
			Page:  output.Page,
			Pages: output.Pages,
			Limit: output.Limit,
		},
	}
}

func FromPassResult(result scheduler.PassResult) PassResponse {
	return PassResponse{
		Source:    string(result.Source),
		Total:     result.Total,
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Errors:    result.Errors,
		Timestamp: result.FinishedAt,
	}
}
