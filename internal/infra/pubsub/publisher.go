package pubsub

import (
	"context"
	"io"
	"time"
)

//go:generate mockgen -source=publisher.go -destination=publisher_mock.go -package=pubsub

const (
	StreamName = "REMINDER_EVENTS"

	TopicReminderNotified = "reminder.notified"
	TopicMeetingScheduled = "meeting.scheduled"
)

type ReminderNotifiedEvent struct {
	ReminderID string    `json:"reminder_id"`
	UserID     string    `json:"user_id"`
	Tier       string    `json:"tier"`
	DueDate    time.Time `json:"due_date"`
	NotifiedAt time.Time `json:"notified_at"`
}

type MeetingScheduledEvent struct {
	Name        string    `json:"name"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Attendees   []string  `json:"attendees"`
	Location    string    `json:"location"`
	MeetingLink string    `json:"meeting_link,omitempty"`
	Duration    int       `json:"duration"`
}

type Publisher interface {
	PublishReminderNotified(ctx context.Context, event ReminderNotifiedEvent) error
	// PublishMeetingScheduled returns the id of the published message.
	PublishMeetingScheduled(ctx context.Context, event MeetingScheduledEvent) (string, error)
	io.Closer
}
