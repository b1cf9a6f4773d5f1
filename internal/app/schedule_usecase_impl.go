package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/nlp"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/notify"
)

// MeetingParser reads a meeting out of free text.
type MeetingParser interface {
	Parse(ctx context.Context, text string, now time.Time) (domain.Meeting, error)
}

// CalendarService books a meeting and returns the provider's event id.
type CalendarService interface {
	ScheduleEvent(ctx context.Context, meeting domain.Meeting, link string) (string, error)
}

type scheduleUseCaseImpl struct {
	parser    MeetingParser
	calendar  CalendarService
	sender    notify.Sender
	reminders ReminderUseCase
	now       func() time.Time
	location  *time.Location
}

func NewScheduleUseCase(
	parser MeetingParser,
	calendar CalendarService,
	sender notify.Sender,
	reminders ReminderUseCase,
	now func() time.Time,
	location *time.Location,
) ScheduleUseCase {
	if now == nil {
		now = time.Now
	}

	if location == nil {
		location = time.UTC
	}

	return &scheduleUseCaseImpl{
		parser:    parser,
		calendar:  calendar,
		sender:    sender,
		reminders: reminders,
		now:       now,
		location:  location,
	}
}

// ScheduleMeeting books the meeting described by input.Text, emails the
// attendees and, when asked for, creates a high-priority reminder at the
// meeting start for the first attendee. A failed confirmation email does not
// fail the booking.
func (uc *scheduleUseCaseImpl) ScheduleMeeting(ctx context.Context, input ScheduleMeetingInput) (ScheduleMeetingOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return ScheduleMeetingOutput{}, NewValidationError("text", "text is required")
	}

	if uc.parser == nil {
		return ScheduleMeetingOutput{}, fmt.Errorf("%w: text understanding is not configured", ErrUnavailable)
	}

	now := uc.now()

	meeting, err := uc.parser.Parse(ctx, text, now)
	if err != nil {
		if errors.Is(err, nlp.ErrInvalidDescriptor) || errors.Is(err, nlp.ErrParseFailed) {
			slog.InfoContext(ctx, "meeting request could not be understood",
				"event", "schedule.parse.reject",
				"error", err,
			)

			return ScheduleMeetingOutput{}, NewValidationError("text", err.Error())
		}

		slog.ErrorContext(ctx, "text understanding failed",
			"event", "schedule.parse.fail",
			"error", err,
		)

		return ScheduleMeetingOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	link := meeting.MeetingLink(now)

	eventID, err := uc.calendar.ScheduleEvent(ctx, meeting, link)
	if err != nil {
		slog.ErrorContext(ctx, "failed to schedule calendar event",
			"event", "schedule.calendar.fail",
			"name", meeting.Name,
			"error", err,
		)

		return ScheduleMeetingOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	slog.InfoContext(ctx, "meeting scheduled",
		"event", "schedule.create",
		"event_id", eventID,
		"name", meeting.Name,
		"attendees", len(meeting.Attendees),
	)

	uc.sendInvitation(ctx, meeting, link)

	output := ScheduleMeetingOutput{
		EventID:   eventID,
		Name:      meeting.Name,
		Start:     meeting.Start,
		End:       meeting.End,
		Attendees: meeting.Attendees,
	}

	if meeting.Reminder {
		reminder, err := uc.reminders.CreateReminder(ctx, CreateReminderInput{
			Task:     meeting.Name,
			DueDate:  meeting.Start.Format(time.RFC3339),
			UserID:   meeting.Attendees[0],
			Priority: string(domain.PriorityHigh),
		})
		if err != nil {
			return ScheduleMeetingOutput{}, err
		}

		output.ReminderID = reminder.ID
	}

	return output, nil
}

func (uc *scheduleUseCaseImpl) sendInvitation(ctx context.Context, meeting domain.Meeting, link string) {
	msg, err := notify.Invitation(meeting, link, uc.location)
	if err == nil {
		err = uc.sender.Send(ctx, msg)
	}

	if err != nil {
		slog.WarnContext(ctx, "failed to send meeting invitation",
			"event", "schedule.invite.fail",
			"name", meeting.Name,
			"error", err,
		)
	}
}
