package pubsub

import (
	"context"
	"errors"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

var ErrCalendarUnavailable = errors.New("calendar bridge is not configured")

// Calendar hands meetings to the downstream calendar integrator by
// publishing meeting.scheduled. The event id is the message id.
type Calendar struct {
	publisher Publisher
}

func NewCalendar(publisher Publisher) *Calendar {
	return &Calendar{publisher: publisher}
}

// ScheduleEvent publishes meeting with its join link, which may be empty.
func (c *Calendar) ScheduleEvent(ctx context.Context, meeting domain.Meeting, link string) (string, error) {
	if c == nil || c.publisher == nil {
		return "", ErrCalendarUnavailable
	}

	return c.publisher.PublishMeetingScheduled(ctx, MeetingScheduledEvent{
		Name:        meeting.Name,
		Start:       meeting.Start.UTC(),
		End:         meeting.End.UTC(),
		Attendees:   meeting.Attendees,
		Location:    string(meeting.Location),
		MeetingLink: link,
		Duration:    meeting.Duration,
	})
}
