package app

import (
	"context"
)

type ReminderUseCase interface {
	CreateReminder(ctx context.Context, input CreateReminderInput) (ReminderOutput, error)
	ListReminders(ctx context.Context, input ListRemindersInput) (RemindersOutput, error)
	GetReminder(ctx context.Context, input GetReminderInput) (ReminderOutput, error)
	UpdateReminder(ctx context.Context, input UpdateReminderInput) (ReminderOutput, error)
	DeleteReminder(ctx context.Context, input DeleteReminderInput) error
	GetStats(ctx context.Context) (StatsOutput, error)
}

type ScheduleUseCase interface {
	ScheduleMeeting(ctx context.Context, input ScheduleMeetingInput) (ScheduleMeetingOutput, error)
}
