package repository

import (
	"time"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

type ReminderModel struct {
	ID                 string    `gorm:"column:id;type:uuid;primaryKey"`
	Task               string    `gorm:"column:task;type:text;not null"`
	DueDate            time.Time `gorm:"column:due_date;type:timestamptz;not null;index:idx_reminders_status_due_date,priority:2"`
	UserID             string    `gorm:"column:user_id;type:varchar(320);not null;index:idx_reminders_user_id"`
	Priority           string    `gorm:"column:priority;type:varchar(16);not null;default:medium"`
	Status             string    `gorm:"column:status;type:varchar(16);not null;default:pending;index:idx_reminders_status_due_date,priority:1"`
	DailyReminderSent  bool      `gorm:"column:daily_reminder_sent;type:boolean;not null;default:false"`
	HourlyReminderSent bool      `gorm:"column:hourly_reminder_sent;type:boolean;not null;default:false"`
	MinuteReminderSent bool      `gorm:"column:minute_reminder_sent;type:boolean;not null;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt          time.Time `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (ReminderModel) TableName() string {
	return "reminders"
}

func (m *ReminderModel) ToEntity() (*domain.Reminder, error) {
	reminderID, err := domain.ReminderIDFromString(m.ID)
	if err != nil {
		return nil, err
	}

	priority, err := domain.NewPriority(m.Priority)
	if err != nil {
		return nil, err
	}

	status, err := domain.NewStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return domain.Reconstitute(
		reminderID,
		m.Task,
		m.DueDate.UTC(),
		m.UserID,
		priority,
		status,
		m.DailyReminderSent,
		m.HourlyReminderSent,
		m.MinuteReminderSent,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}

func FromEntity(e *domain.Reminder) *ReminderModel {
	return &ReminderModel{
		ID:                 e.ID().String(),
		Task:               e.Task(),
		DueDate:            e.DueDate(),
		UserID:             e.UserID(),
		Priority:           string(e.Priority()),
		Status:             string(e.Status()),
		DailyReminderSent:  e.DailyReminderSent(),
		HourlyReminderSent: e.HourlyReminderSent(),
		MinuteReminderSent: e.MinuteReminderSent(),
		CreatedAt:          e.CreatedAt(),
		UpdatedAt:          e.UpdatedAt(),
	}
}

// flagColumn maps a tier flag to its column.
func flagColumn(flag domain.Flag) string {
	switch flag {
	case domain.FlagDaily:
		return "daily_reminder_sent"
	case domain.FlagHourly:
		return "hourly_reminder_sent"
	case domain.FlagMinute:
		return "minute_reminder_sent"
	default:
		return ""
	}
}
