package nlp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

var now = time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC)

func fixedReply(reply string, err error) completeFunc {
	return func(context.Context, string, string) (string, error) {
		return reply, err
	}
}

func TestParseSuccess(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected domain.Meeting
	}{
		{
			name: "plain JSON",
			reply: `{"action":"schedule","name":"Weekly Sync","start":"2025-08-13T12:30:00+03:00",` +
				`"end":"2025-08-13T13:30:00+03:00","attendees":["a@x.com"],"reminder":true,"duration":60,"location":"virtual"}`,
			expected: domain.Meeting{
				Action:    domain.ActionSchedule,
				Name:      "Weekly Sync",
				Start:     time.Date(2025, 8, 13, 9, 30, 0, 0, time.UTC),
				End:       time.Date(2025, 8, 13, 10, 30, 0, 0, time.UTC),
				Attendees: []string{"a@x.com"},
				Reminder:  true,
				Duration:  60,
				Location:  domain.LocationVirtual,
			},
		},
		{
			name: "fenced JSON with a trailing comma",
			reply: "```json\n{\"name\":\"Design review\",\"start\":\"2025-08-14T10:00:00Z\",\"end\":\"2025-08-14T10:30:00Z\"," +
				"\"attendees\":[\"b@x.com\",],\"location\":\"in-person\",}\n```",
			expected: domain.Meeting{
				Action:    domain.ActionSchedule,
				Name:      "Design review",
				Start:     time.Date(2025, 8, 14, 10, 0, 0, 0, time.UTC),
				End:       time.Date(2025, 8, 14, 10, 30, 0, 0, time.UTC),
				Attendees: []string{"b@x.com"},
				Duration:  30,
				Location:  domain.LocationInPerson,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := newDeepSeekParser(fixedReply(tt.reply, nil), time.UTC)

			meeting, err := parser.Parse(context.Background(), "set up a meeting", now)

			require.NoError(t, err)
			assert.Equal(t, tt.expected.Action, meeting.Action)
			assert.Equal(t, tt.expected.Name, meeting.Name)
			assert.True(t, tt.expected.Start.Equal(meeting.Start))
			assert.True(t, tt.expected.End.Equal(meeting.End))
			assert.Equal(t, tt.expected.Attendees, meeting.Attendees)
			assert.Equal(t, tt.expected.Reminder, meeting.Reminder)
			assert.Equal(t, tt.expected.Duration, meeting.Duration)
			assert.Equal(t, tt.expected.Location, meeting.Location)
		})
	}
}

func TestParseError(t *testing.T) {
	errUpstream := errors.New("connection reset")

	tests := []struct {
		name        string
		text        string
		reply       string
		replyErr    error
		expectedErr error
	}{
		{
			name:        "empty text",
			text:        "  ",
			expectedErr: ErrInvalidDescriptor,
		},
		{
			name:        "upstream failure",
			text:        "meet tomorrow",
			replyErr:    errUpstream,
			expectedErr: errUpstream,
		},
		{
			name:        "no JSON in reply",
			text:        "meet tomorrow",
			reply:       "",
			expectedErr: ErrParseFailed,
		},
		{
			name:        "invalid attendee",
			text:        "meet tomorrow",
			reply:       `{"name":"Sync","start":"2025-08-14T10:00:00Z","end":"2025-08-14T11:00:00Z","attendees":["bob"]}`,
			expectedErr: ErrInvalidDescriptor,
		},
		{
			name:        "end before start",
			text:        "meet tomorrow",
			reply:       `{"name":"Sync","start":"2025-08-14T10:00:00Z","end":"2025-08-14T09:00:00Z","attendees":["a@x.com"]}`,
			expectedErr: ErrInvalidDescriptor,
		},
		{
			name:        "unknown location",
			text:        "meet tomorrow",
			reply:       `{"name":"Sync","start":"2025-08-14T10:00:00Z","end":"2025-08-14T11:00:00Z","attendees":["a@x.com"],"location":"moon"}`,
			expectedErr: ErrInvalidDescriptor,
		},
		{
			name:        "start is not a timestamp",
			text:        "meet tomorrow",
			reply:       `{"name":"Sync","start":"tomorrow","end":"2025-08-14T11:00:00Z","attendees":["a@x.com"]}`,
			expectedErr: ErrInvalidDescriptor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := newDeepSeekParser(fixedReply(tt.reply, tt.replyErr), time.UTC)

			_, err := parser.Parse(context.Background(), tt.text, now)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestSystemPromptSuccess(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)

	prompt := systemPrompt(now.In(loc), loc)

	assert.Contains(t, prompt, "Today's date: 2025-08-13")
	assert.Contains(t, prompt, "Current time: 2025-08-13T12:00:00+03:00")
	assert.Contains(t, prompt, "User timezone: EAT")
}

func TestNewDeepSeekParserError(t *testing.T) {
	_, err := NewDeepSeekParser(DeepSeekConfig{})

	assert.Error(t, err)
}
