package handler

import "encoding/json"

type CreateReminderRequest struct {
	Task     string `json:"task" binding:"required"`
	DueDate  string `json:"dueDate" binding:"required"`
	UserID   string `json:"userId" binding:"required"`
	Priority string `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// ListRemindersRequest leaves page and limit unchecked; out-of-range values
// are clamped by the use case.
type ListRemindersRequest struct {
	UserID string `form:"userId"`
	Status string `form:"status" binding:"omitempty,oneof=pending sent processed snoozed"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// UpdateReminderRequest is a partial update; absent fields are left alone.
// snoozeMinutes accepts a JSON number or a numeric string.
type UpdateReminderRequest struct {
	Task          *string      `json:"task"`
	Priority      *string      `json:"priority"`
	DueDate       *string      `json:"dueDate"`
	SnoozeMinutes *json.Number `json:"snoozeMinutes"`
	Status        *string      `json:"status"`
}

type ScheduleMeetingRequest struct {
	Text string `json:"text" binding:"required"`
}
