package scheduler_test

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/notify"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/scheduler"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/testutil"
)

var baseTime = time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *testutil.MemoryRepository
	sender    *testutil.RecordingSender
	clock     *testutil.Clock
	scheduler *scheduler.Scheduler
}

func setup(t *testing.T, opts ...scheduler.Option) *fixture {
	t.Helper()

	repo := testutil.NewMemoryRepository()
	sender := testutil.NewRecordingSender()
	clock := testutil.NewClock(baseTime)

	dispatcher := notify.NewDispatcher(sender, time.Second, time.UTC)

	opts = append([]scheduler.Option{scheduler.WithClock(clock.Now)}, opts...)

	return &fixture{
		repo:      repo,
		sender:    sender,
		clock:     clock,
		scheduler: scheduler.New(repo, dispatcher, scheduler.Config{Concurrency: 4}, opts...),
	}
}

func storedReminder(task string, dueIn time.Duration, status domain.Status) *domain.Reminder {
	return domain.Reconstitute(
		domain.NewReminderID(),
		task,
		baseTime.Add(dueIn),
		"a@x.com",
		domain.PriorityMedium,
		status,
		false,
		false,
		false,
		baseTime.Add(-72*time.Hour),
		baseTime.Add(-72*time.Hour),
	)
}

func TestRunPassAtMostOncePerTierSuccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	daily := storedReminder("daily", 24*time.Hour, domain.StatusPending)
	hourly := storedReminder("hourly", time.Hour, domain.StatusPending)
	minute := storedReminder("minute", time.Minute, domain.StatusSnoozed)
	idle := storedReminder("idle", 12*time.Hour, domain.StatusPending)
	f.repo.Put(daily, hourly, minute, idle)

	first, err := f.scheduler.RunPass(ctx, scheduler.SourceTiered)
	require.NoError(t, err)

	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 3, first.Processed)
	assert.Equal(t, 0, first.Errors)

	second, err := f.scheduler.RunPass(ctx, scheduler.SourceTiered)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Total)
	assert.Equal(t, 0, second.Processed)
	assert.ElementsMatch(t, []string{"Reminder: daily", "Reminder: hourly", "Reminder: minute"}, f.sender.Subjects())

	assert.True(t, f.repo.Get(daily.ID()).DailyReminderSent())
	assert.True(t, f.repo.Get(hourly.ID()).HourlyReminderSent())
	assert.True(t, f.repo.Get(minute.ID()).MinuteReminderSent())
	assert.Equal(t, domain.StatusSnoozed, f.repo.Get(minute.ID()).Status())
	assert.False(t, f.repo.Get(idle.ID()).DailyReminderSent())
}

func TestRunPassOverdueClosesReminderSuccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	overdue := storedReminder("Submit report", -5*time.Minute, domain.StatusPending)
	f.repo.Put(overdue)

	result, err := f.scheduler.RunPass(ctx, scheduler.SourceTiered)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)

	_, err = f.scheduler.RunPass(ctx, scheduler.SourceTiered)
	require.NoError(t, err)

	messages := f.sender.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Text, "Due Now")
	assert.Contains(t, messages[0].Text, "Status: Due now")
	assert.Equal(t, domain.StatusSent, f.repo.Get(overdue.ID()).Status())
}

func TestRunPassDueSourceSuccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	overdue := storedReminder("overdue", -time.Hour, domain.StatusSnoozed)
	upcoming := storedReminder("upcoming", time.Hour, domain.StatusPending)
	closed := storedReminder("closed", -time.Hour, domain.StatusProcessed)
	f.repo.Put(overdue, upcoming, closed)

	result, err := f.scheduler.RunPass(ctx, scheduler.SourceDue)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, []string{"Reminder: overdue"}, f.sender.Subjects())
	assert.Equal(t, domain.StatusSent, f.repo.Get(overdue.ID()).Status())
	assert.False(t, f.repo.Get(upcoming.ID()).HourlyReminderSent())
}

func TestRunPassSendFailureReleasesClaimSuccess(t *testing.T) {
	tests := []struct {
		name  string
		dueIn time.Duration
		check func(t *testing.T, r *domain.Reminder)
	}{
		{
			name:  "timed tier flag stays false",
			dueIn: time.Hour,
			check: func(t *testing.T, r *domain.Reminder) {
				assert.False(t, r.HourlyReminderSent())
			},
		},
		{
			name:  "immediate tier status is restored",
			dueIn: -time.Minute,
			check: func(t *testing.T, r *domain.Reminder) {
				assert.Equal(t, domain.StatusSnoozed, r.Status())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()

			failing := storedReminder("failing", tt.dueIn, domain.StatusSnoozed)
			healthy := storedReminder("healthy", 24*time.Hour, domain.StatusPending)
			f.repo.Put(failing, healthy)

			f.sender.Fail = func(msg notify.Message) error {
				if msg.Subject == "Reminder: failing" {
					return errors.New("smtp: 451 temporary failure")
				}

				return nil
			}

			result, err := f.scheduler.RunPass(ctx, scheduler.SourceTiered)
			require.NoError(t, err)

			assert.Equal(t, 2, result.Total)
			assert.Equal(t, 1, result.Processed)
			assert.Equal(t, 1, result.Errors)
			tt.check(t, f.repo.Get(failing.ID()))
			assert.True(t, f.repo.Get(healthy.ID()).DailyReminderSent())

			f.sender.Fail = nil

			retry, err := f.scheduler.RunPass(ctx, scheduler.SourceTiered)
			require.NoError(t, err)

			assert.Equal(t, 1, retry.Processed)
			assert.Equal(t, []string{"Reminder: healthy", "Reminder: failing"}, f.sender.Subjects())
		})
	}
}

func TestRunPassError(t *testing.T) {
	tests := []struct {
		name   string
		source scheduler.Source
		inject func(repo *testutil.MemoryRepository)
	}{
		{
			name:   "tiered query fails",
			source: scheduler.SourceTiered,
			inject: func(repo *testutil.MemoryRepository) {
				repo.FailCandidates = errors.New("connection refused")
			},
		},
		{
			name:   "due query fails",
			source: scheduler.SourceDue,
			inject: func(repo *testutil.MemoryRepository) {
				repo.FailDue = errors.New("connection refused")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			f.repo.Put(storedReminder("overdue", -time.Minute, domain.StatusPending))
			tt.inject(f.repo)

			result, err := f.scheduler.RunPass(context.Background(), tt.source)

			assert.ErrorIs(t, err, scheduler.ErrStoreUnavailable)
			assert.Equal(t, 0, result.Processed)
			assert.Empty(t, f.sender.Messages())
		})
	}
}

func TestRunPassClaimWriteFailureSuccess(t *testing.T) {
	f := setup(t)
	reminder := storedReminder("hourly", time.Hour, domain.StatusPending)
	f.repo.Put(reminder)
	f.repo.FailConditionalUpdate = errors.New("deadlock detected")

	result, err := f.scheduler.RunPass(context.Background(), scheduler.SourceTiered)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Errors)
	assert.Empty(t, f.sender.Messages(), "nothing is sent without a claim")
}

func TestRunPassConcurrentPassesSuccess(t *testing.T) {
	f := setup(t)

	reminders := []*domain.Reminder{
		storedReminder("daily", 24*time.Hour, domain.StatusPending),
		storedReminder("hourly", time.Hour, domain.StatusPending),
		storedReminder("minute", time.Minute, domain.StatusPending),
		storedReminder("overdue", -time.Minute, domain.StatusPending),
	}
	f.repo.Put(reminders...)

	const passes = 3

	// Every pass reads the same snapshot before any of them claims.
	var arrived sync.WaitGroup
	arrived.Add(passes)
	f.repo.AfterCandidates = func() {
		arrived.Done()
		arrived.Wait()
	}

	var wg sync.WaitGroup

	results := make([]scheduler.PassResult, passes)
	for i := range passes {
		wg.Add(1)

		go func() {
			defer wg.Done()

			result, err := f.scheduler.RunPass(context.Background(), scheduler.SourceTiered)
			assert.NoError(t, err)

			results[i] = result
		}()
	}

	wg.Wait()

	processed := 0
	for _, r := range results {
		assert.Equal(t, len(reminders), r.Total)
		processed += r.Processed
	}

	assert.Equal(t, len(reminders), processed)
	assert.Len(t, f.sender.Messages(), len(reminders))
}

func TestRunPassCancelledMidPassSuccess(t *testing.T) {
	f := setup(t)

	inFlight := make(chan struct{})
	unblock := make(chan struct{})

	var once sync.Once

	f.sender.Fail = func(notify.Message) error {
		once.Do(func() {
			close(inFlight)
			<-unblock
		})

		return nil
	}

	s := scheduler.New(
		f.repo,
		notify.NewDispatcher(f.sender, 5*time.Second, time.UTC),
		scheduler.Config{Concurrency: 1},
		scheduler.WithClock(f.clock.Now),
	)

	first := storedReminder("a", time.Hour, domain.StatusPending)
	second := storedReminder("b", 24*time.Hour, domain.StatusPending)
	f.repo.Put(first, second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type passOutcome struct {
		result scheduler.PassResult
		err    error
	}

	done := make(chan passOutcome, 1)

	go func() {
		result, err := s.RunPass(ctx, scheduler.SourceTiered)
		done <- passOutcome{result: result, err: err}
	}()

	select {
	case <-inFlight:
	case <-time.After(3 * time.Second):
		t.Fatal("first dispatch never started")
	}

	cancel()
	close(unblock)

	var outcome passOutcome
	select {
	case outcome = <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("pass did not finish after cancellation")
	}

	require.NoError(t, outcome.err)
	assert.Equal(t, 2, outcome.result.Total)
	assert.Equal(t, 1, outcome.result.Processed)
	assert.Equal(t, 1, outcome.result.Skipped)
	assert.Zero(t, outcome.result.Errors)

	assert.Equal(t, []string{"Reminder: a"}, f.sender.Subjects())
	assert.True(t, f.repo.Get(first.ID()).HourlyReminderSent(), "the claimed record is finished")
	assert.False(t, f.repo.Get(second.ID()).DailyReminderSent(), "no new claim after cancellation")
}

func TestRunPassPublishesEventSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := pubsub.NewMockPublisher(ctrl)

	f := setup(t, scheduler.WithPublisher(publisher))
	reminder := storedReminder("hourly", time.Hour, domain.StatusPending)
	f.repo.Put(reminder)

	publisher.EXPECT().
		PublishReminderNotified(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event pubsub.ReminderNotifiedEvent) error {
			assert.Equal(t, reminder.ID().String(), event.ReminderID)
			assert.Equal(t, "a@x.com", event.UserID)
			assert.Equal(t, string(domain.TierOneHour), event.Tier)
			assert.True(t, baseTime.Equal(event.NotifiedAt))

			return errors.New("nats: no responders")
		}).
		Times(1)

	result, err := f.scheduler.RunPass(context.Background(), scheduler.SourceTiered)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed, "publish failure does not undo the dispatch")
	assert.True(t, f.repo.Get(reminder.ID()).HourlyReminderSent())
}

func TestReminderLifecycleSuccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	reminder, err := domain.NewReminder("Submit report", baseTime.Add(26*time.Hour), "a@x.com", domain.PriorityMedium, baseTime)
	require.NoError(t, err)
	f.repo.Put(reminder)

	steps := []struct {
		name            string
		dueIn           time.Duration
		expectedSubject int
		check           func(t *testing.T, r *domain.Reminder)
	}{
		{
			name:            "outside every window",
			dueIn:           26 * time.Hour,
			expectedSubject: 0,
			check: func(t *testing.T, r *domain.Reminder) {
				assert.False(t, r.DailyReminderSent())
			},
		},
		{
			name:            "exactly 24h out",
			dueIn:           24 * time.Hour,
			expectedSubject: 1,
			check: func(t *testing.T, r *domain.Reminder) {
				assert.True(t, r.DailyReminderSent())
				assert.Equal(t, domain.StatusPending, r.Status())
			},
		},
		{
			name:            "still inside the daily window",
			dueIn:           23*time.Hour + 30*time.Minute,
			expectedSubject: 1,
			check: func(t *testing.T, r *domain.Reminder) {
				assert.False(t, r.HourlyReminderSent())
			},
		},
		{
			name:            "1h out",
			dueIn:           time.Hour,
			expectedSubject: 2,
			check: func(t *testing.T, r *domain.Reminder) {
				assert.True(t, r.HourlyReminderSent())
			},
		},
		{
			name:            "1m out",
			dueIn:           time.Minute,
			expectedSubject: 3,
			check: func(t *testing.T, r *domain.Reminder) {
				assert.True(t, r.MinuteReminderSent())
				assert.Equal(t, domain.StatusPending, r.Status())
			},
		},
		{
			name:            "overdue",
			dueIn:           -time.Minute,
			expectedSubject: 4,
			check: func(t *testing.T, r *domain.Reminder) {
				assert.Equal(t, domain.StatusSent, r.Status())
			},
		},
		{
			name:            "closed reminder stays quiet",
			dueIn:           -time.Hour,
			expectedSubject: 4,
			check: func(t *testing.T, r *domain.Reminder) {
				assert.Equal(t, domain.StatusSent, r.Status())
			},
		},
	}

	for _, step := range steps {
		f.clock.Set(reminder.DueDate().Add(-step.dueIn))

		_, err := f.scheduler.RunPass(ctx, scheduler.SourceTiered)
		require.NoError(t, err, step.name)

		assert.Len(t, f.sender.Messages(), step.expectedSubject, step.name)
		step.check(t, f.repo.Get(reminder.ID()))
	}
}

func TestStartError(t *testing.T) {
	f := setup(t)
	s := scheduler.New(f.repo, notify.NewDispatcher(f.sender, time.Second, nil), scheduler.Config{PollSpec: "every minute"})

	err := s.Start(context.Background())

	assert.Error(t, err)
}

func TestStartStopSuccess(t *testing.T) {
	f := setup(t)
	f.repo.Put(storedReminder("overdue", -time.Minute, domain.StatusPending))

	s := scheduler.New(
		f.repo,
		notify.NewDispatcher(f.sender, time.Second, nil),
		scheduler.Config{PollSpec: "@every 1s"},
		scheduler.WithClock(f.clock.Now),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.Error(t, s.Start(ctx), "second start is rejected")

	assert.Eventually(t, func() bool {
		return len(f.sender.Messages()) == 1
	}, 3*time.Second, 50*time.Millisecond)

	s.Stop()
	s.Stop()
}

func TestStopReleasesContextWatcherSuccess(t *testing.T) {
	f := setup(t)

	before := runtime.NumGoroutine()

	s := scheduler.New(
		f.repo,
		notify.NewDispatcher(f.sender, time.Second, nil),
		scheduler.Config{PollSpec: "@every 1h"},
		scheduler.WithClock(f.clock.Now),
	)

	// Never cancelled: only Stop may end the scheduler's goroutines.
	require.NoError(t, s.Start(context.Background()))

	s.Stop()

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 3*time.Second, 20*time.Millisecond)
}
