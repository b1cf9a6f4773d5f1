package app

import (
	"time"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

type ReminderOutput struct {
	ID                 string
	Task               string
	DueDate            time.Time
	UserID             string
	Priority           string
	Status             string
	DailyReminderSent  bool
	HourlyReminderSent bool
	MinuteReminderSent bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type RemindersOutput struct {
	Reminders []ReminderOutput
	Total     int64
	Page      int
	Pages     int
	Limit     int
}

type StatsOutput struct {
	Total    int64
	Pending  int64
	Sent     int64
	DueToday int64
	Overdue  int64
}

type ScheduleMeetingOutput struct {
	EventID    string
	ReminderID string
	Name       string
	Start      time.Time
	End        time.Time
	Attendees  []string
}

func FromEntity(reminder *domain.Reminder) ReminderOutput {
	return ReminderOutput{
		ID:                 reminder.ID().String(),
		Task:               reminder.Task(),
		DueDate:            reminder.DueDate(),
		UserID:             reminder.UserID(),
		Priority:           string(reminder.Priority()),
		Status:             string(reminder.Status()),
		DailyReminderSent:  reminder.DailyReminderSent(),
		HourlyReminderSent: reminder.HourlyReminderSent(),
		MinuteReminderSent: reminder.MinuteReminderSent(),
		CreatedAt:          reminder.CreatedAt(),
		UpdatedAt:          reminder.UpdatedAt(),
	}
}

func FromEntities(reminders []*domain.Reminder, total int64, page, limit int) RemindersOutput {
	outputs := make([]ReminderOutput, 0, len(reminders))
	for _, r := range reminders {
		outputs = append(outputs, FromEntity(r))
	}

	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}

	return RemindersOutput{
		Reminders: outputs,
		Total:     total,
		Page:      page,
		Pages:     pages,
		Limit:     limit,
	}
}
