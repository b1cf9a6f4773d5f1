package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/app"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/nlp"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/notify"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/testutil"
)

type parserFunc func(ctx context.Context, text string, now time.Time) (domain.Meeting, error)

func (f parserFunc) Parse(ctx context.Context, text string, now time.Time) (domain.Meeting, error) {
	return f(ctx, text, now)
}

type fakeCalendar struct {
	err   error
	links []string
}

func (c *fakeCalendar) ScheduleEvent(_ context.Context, _ domain.Meeting, link string) (string, error) {
	if c.err != nil {
		return "", c.err
	}

	c.links = append(c.links, link)

	return "evt-1", nil
}

func meetingParser(t *testing.T, reminder bool) parserFunc {
	t.Helper()

	meeting, err := domain.NewMeeting(
		domain.ActionSchedule,
		"Design review",
		now.Add(26*time.Hour),
		now.Add(27*time.Hour),
		[]string{"lead@x.com", "dev@x.com"},
		reminder,
		0,
		domain.LocationVirtual,
	)
	require.NoError(t, err)

	return func(_ context.Context, _ string, _ time.Time) (domain.Meeting, error) {
		return meeting, nil
	}
}

type scheduleFixture struct {
	uc       app.ScheduleUseCase
	repo     *testutil.MemoryRepository
	sender   *testutil.RecordingSender
	calendar *fakeCalendar
}

func newScheduleUseCase(parser app.MeetingParser) scheduleFixture {
	repo := testutil.NewMemoryRepository()
	clock := testutil.NewClock(now)
	sender := testutil.NewRecordingSender()
	calendar := &fakeCalendar{}

	reminders := app.NewReminderUseCase(repo, clock.Now, time.UTC)

	return scheduleFixture{
		uc:       app.NewScheduleUseCase(parser, calendar, sender, reminders, clock.Now, time.UTC),
		repo:     repo,
		sender:   sender,
		calendar: calendar,
	}
}

func TestScheduleMeetingSuccess(t *testing.T) {
	f := newScheduleUseCase(meetingParser(t, true))

	output, err := f.uc.ScheduleMeeting(context.Background(), app.ScheduleMeetingInput{
		Text: "Design review with lead@x.com and dev@x.com tomorrow at 11, remind me",
	})
	require.NoError(t, err)

	assert.Equal(t, "evt-1", output.EventID)
	assert.Equal(t, "Design review", output.Name)
	assert.NotEmpty(t, output.ReminderID)

	messages := f.sender.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Meeting Invitation: Design review", messages[0].Subject)
	assert.Equal(t, []string{"lead@x.com", "dev@x.com"}, messages[0].To)

	require.Len(t, f.calendar.links, 1)
	assert.Contains(t, messages[0].Text, f.calendar.links[0], "email and event share the join link")

	id, err := domain.ReminderIDFromString(output.ReminderID)
	require.NoError(t, err)

	reminder := f.repo.Get(id)
	require.NotNil(t, reminder)
	assert.Equal(t, "lead@x.com", reminder.UserID())
	assert.Equal(t, domain.PriorityHigh, reminder.Priority())
	assert.True(t, now.Add(26*time.Hour).Equal(reminder.DueDate()))
}

func TestScheduleMeetingWithoutReminderSuccess(t *testing.T) {
	f := newScheduleUseCase(meetingParser(t, false))
	f.sender.Fail = func(notify.Message) error { return errors.New("smtp down") }

	output, err := f.uc.ScheduleMeeting(context.Background(), app.ScheduleMeetingInput{Text: "Design review"})
	require.NoError(t, err, "invitation failure does not fail the booking")

	assert.Equal(t, "evt-1", output.EventID)
	assert.Empty(t, output.ReminderID)
	assert.Zero(t, f.repo.Len())
}

func TestScheduleMeetingError(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		parser   app.MeetingParser
		calErr   error
		expected error
	}{
		{
			name:     "empty text",
			text:     "  ",
			parser:   meetingParser(t, true),
			expected: app.ErrValidation,
		},
		{
			name: "descriptor fails validation",
			text: "meet someone",
			parser: parserFunc(func(context.Context, string, time.Time) (domain.Meeting, error) {
				return domain.Meeting{}, fmt.Errorf("%w: attendees required", nlp.ErrInvalidDescriptor)
			}),
			expected: app.ErrValidation,
		},
		{
			name: "model answer unreadable",
			text: "meet someone",
			parser: parserFunc(func(context.Context, string, time.Time) (domain.Meeting, error) {
				return domain.Meeting{}, nlp.ErrParseFailed
			}),
			expected: app.ErrValidation,
		},
		{
			name: "model unreachable",
			text: "meet someone",
			parser: parserFunc(func(context.Context, string, time.Time) (domain.Meeting, error) {
				return domain.Meeting{}, errors.New("dial tcp: i/o timeout")
			}),
			expected: app.ErrUnavailable,
		},
		{
			name:     "parser not configured",
			text:     "meet someone",
			parser:   nil,
			expected: app.ErrUnavailable,
		},
		{
			name:     "calendar fails",
			text:     "Design review",
			parser:   meetingParser(t, true),
			calErr:   errors.New("calendar bridge is not configured"),
			expected: app.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newScheduleUseCase(tt.parser)
			f.calendar.err = tt.calErr

			_, err := f.uc.ScheduleMeeting(context.Background(), app.ScheduleMeetingInput{Text: tt.text})

			assert.ErrorIs(t, err, tt.expected)
			assert.Empty(t, f.sender.Messages())
			assert.Zero(t, f.repo.Len())
		})
	}
}
