package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability/logging"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability/metrics"
)

// ErrStoreUnavailable aborts a pass whose candidate query failed.
var ErrStoreUnavailable = errors.New("reminder store unavailable")

const tracerName = "github.com/KasumiMercury/primind-reminder-scheduler/internal/scheduler"

// Source selects which candidates a pass considers.
type Source string

const (
	// SourceTiered runs the combined tier query: overdue plus every open window.
	SourceTiered Source = "tiered"
	// SourceDue only closes out overdue reminders.
	SourceDue Source = "due"
)

// Dispatcher sends the notification for one reminder at one tier.
type Dispatcher interface {
	Dispatch(ctx context.Context, r *domain.Reminder, tier domain.Tier, now time.Time) error
}

type Config struct {
	// PollSpec drives SourceTiered passes. Empty disables the trigger.
	PollSpec string
	// DailySpec drives SourceDue passes. Empty disables the trigger.
	DailySpec   string
	Concurrency int
	// WriteTimeout bounds each claim and release write.
	WriteTimeout time.Duration
	Location     *time.Location
}

type PassResult struct {
	Source     Source
	Total      int
	Processed  int
	Skipped    int
	Errors     int
	StartedAt  time.Time
	FinishedAt time.Time
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithPublisher publishes reminder.notified after every successful dispatch.
func WithPublisher(publisher pubsub.Publisher) Option {
	return func(s *Scheduler) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.SchedulerMetrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// Scheduler runs notification passes, either on its own cron triggers or
// when called directly.
type Scheduler struct {
	repo       domain.ReminderRepository
	dispatcher Dispatcher
	publisher  pubsub.Publisher
	metrics    *metrics.SchedulerMetrics
	now        func() time.Time
	cfg        Config

	mu       sync.Mutex
	cron     *cron.Cron
	baseCtx  context.Context
	cancel   context.CancelFunc
	stopped  chan struct{}
	stopOnce sync.Once
}

func New(repo domain.ReminderRepository, dispatcher Dispatcher, cfg Config, opts ...Option) *Scheduler {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	s := &Scheduler{
		repo:       repo,
		dispatcher: dispatcher,
		now:        time.Now,
		cfg:        cfg,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start registers the configured triggers and starts firing them. Passes
// started by a trigger stop claiming new candidates once ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("scheduler already started")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(s.cfg.Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	baseCtx, cancel := context.WithCancel(logging.WithModule(ctx, logging.ModuleScheduler))

	triggers := []struct {
		spec   string
		source Source
	}{
		{spec: s.cfg.PollSpec, source: SourceTiered},
		{spec: s.cfg.DailySpec, source: SourceDue},
	}

	for _, t := range triggers {
		if t.spec == "" {
			continue
		}

		source := t.source
		if _, err := c.AddFunc(t.spec, func() { s.runTriggered(source) }); err != nil {
			cancel()

			return fmt.Errorf("invalid schedule %q for %s trigger: %w", t.spec, source, err)
		}

		slog.InfoContext(baseCtx, "scheduler trigger registered",
			"event", "scheduler.trigger.register",
			"source", string(source),
			"spec", t.spec,
		)
	}

	stopped := make(chan struct{})

	s.cron = c
	s.baseCtx = baseCtx
	s.cancel = cancel
	s.stopped = stopped

	c.Start()

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopped:
		}
	}()

	return nil
}

// Stop halts the triggers and waits for running passes to finish. A pass in
// flight completes the record it is dispatching but claims no new ones.
// Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel, stopped := s.cron, s.cancel, s.stopped
	s.mu.Unlock()

	if c == nil {
		return
	}

	s.stopOnce.Do(func() {
		slog.Info("scheduler stopping",
			"event", "scheduler.stop",
		)

		close(stopped)

		stopCtx := c.Stop()
		cancel()
		<-stopCtx.Done()

		slog.Info("scheduler stopped",
			"event", "scheduler.stopped",
		)
	})
}

func (s *Scheduler) runTriggered(source Source) {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	// RunPass logs its own outcome.
	_, _ = s.RunPass(ctx, source)
}

// RunPass executes one query, classify, dispatch and persist sequence.
// Per-reminder failures are counted, never returned; only a failed
// candidate query aborts the pass with ErrStoreUnavailable.
func (s *Scheduler) RunPass(ctx context.Context, source Source) (PassResult, error) {
	now := s.now().UTC()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "scheduler.pass")
	defer span.End()

	span.SetAttributes(attribute.String("scheduler.source", string(source)))

	result := PassResult{Source: source, StartedAt: now}

	candidates, err := s.candidates(ctx, source, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "candidate query failed")

		slog.ErrorContext(ctx, "scheduler pass aborted",
			"event", "scheduler.pass.abort",
			"source", string(source),
			"error", err,
		)

		s.metrics.RecordPassAborted(ctx, string(source))

		return result, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	result.Total = len(candidates)

	var processed, skipped, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)

	for _, r := range candidates {
		if ctx.Err() != nil {
			skipped.Add(1)

			continue
		}

		g.Go(func() error {
			switch s.process(ctx, r, now) {
			case outcomeSent:
				processed.Add(1)
			case outcomeSkipped:
				skipped.Add(1)
			case outcomeFailed:
				failed.Add(1)
			}

			return nil
		})
	}

	_ = g.Wait()

	result.Processed = int(processed.Load())
	result.Skipped = int(skipped.Load())
	result.Errors = int(failed.Load())
	result.FinishedAt = s.now().UTC()

	span.SetAttributes(
		attribute.Int("scheduler.candidates", result.Total),
		attribute.Int("scheduler.processed", result.Processed),
		attribute.Int("scheduler.errors", result.Errors),
	)

	s.metrics.RecordPass(ctx, string(source), result.Total, result.Errors, result.FinishedAt.Sub(result.StartedAt))

	slog.InfoContext(ctx, "scheduler pass finished",
		"event", "scheduler.pass.finish",
		"source", string(source),
		"total", result.Total,
		"processed", result.Processed,
		"skipped", result.Skipped,
		"errors", result.Errors,
	)

	return result, nil
}

func (s *Scheduler) candidates(ctx context.Context, source Source, now time.Time) ([]*domain.Reminder, error) {
	if source == SourceDue {
		return s.repo.FindDue(ctx, now)
	}

	return s.repo.FindCandidates(ctx, now)
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeSent
	outcomeFailed
)

// process claims the reminder's tier before sending so that concurrent
// passes cannot both dispatch it. A failed send releases the claim and the
// next pass retries while the window is still open.
func (s *Scheduler) process(ctx context.Context, r *domain.Reminder, now time.Time) outcome {
	tier, ok := domain.Classify(r, now)
	if !ok || ctx.Err() != nil {
		return outcomeSkipped
	}

	log := slog.With(
		"reminder_id", r.ID().String(),
		"tier", string(tier),
	)

	guard, change := tier.Claim(r)

	claimed, err := s.write(ctx, r.ID(), guard, change, now)
	if err != nil {
		log.ErrorContext(ctx, "failed to claim reminder tier",
			"event", "scheduler.claim.fail",
			"error", err,
		)

		s.metrics.RecordDispatch(ctx, string(tier), metrics.OutcomeError)

		return outcomeFailed
	}

	if !claimed {
		log.DebugContext(ctx, "tier already claimed by another pass",
			"event", "scheduler.claim.lost",
		)

		s.metrics.RecordDispatch(ctx, string(tier), metrics.OutcomeSkipped)

		return outcomeSkipped
	}

	// The claim is persisted; finish this record even if the pass is cancelled.
	sendCtx := context.WithoutCancel(ctx)

	sendCtx, span := otel.Tracer(tracerName).Start(sendCtx, "scheduler.dispatch")
	span.SetAttributes(
		attribute.String("reminder.id", r.ID().String()),
		attribute.String("reminder.tier", string(tier)),
	)
	defer span.End()

	if err := s.dispatcher.Dispatch(sendCtx, r, tier, now); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")

		log.WarnContext(sendCtx, "failed to dispatch reminder",
			"event", "scheduler.dispatch.fail",
			"error", err,
		)

		s.release(sendCtx, r, tier, now)
		s.metrics.RecordDispatch(sendCtx, string(tier), metrics.OutcomeError)

		return outcomeFailed
	}

	log.InfoContext(sendCtx, "reminder notification dispatched",
		"event", "scheduler.dispatch",
		"user_id", r.UserID(),
	)

	s.metrics.RecordDispatch(sendCtx, string(tier), metrics.OutcomeSent)
	s.publish(sendCtx, r, tier, now)

	return outcomeSent
}

func (s *Scheduler) release(ctx context.Context, r *domain.Reminder, tier domain.Tier, now time.Time) {
	guard, change := tier.Release(r)

	released, err := s.write(ctx, r.ID(), guard, change, now)
	if err != nil || !released {
		slog.ErrorContext(ctx, "failed to release reminder tier after send failure",
			"event", "scheduler.release.fail",
			"reminder_id", r.ID().String(),
			"tier", string(tier),
			"released", released,
			"error", err,
		)
	}
}

func (s *Scheduler) write(ctx context.Context, id domain.ReminderID, guard domain.Guard, change domain.Change, now time.Time) (bool, error) {
	// Detached so a cancelled pass cannot abandon a write the store already applied.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	defer cancel()

	return s.repo.ConditionalUpdate(writeCtx, id, guard, change, now)
}

func (s *Scheduler) publish(ctx context.Context, r *domain.Reminder, tier domain.Tier, now time.Time) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.PublishReminderNotified(ctx, pubsub.ReminderNotifiedEvent{
		ReminderID: r.ID().String(),
		UserID:     r.UserID(),
		Tier:       string(tier),
		DueDate:    r.DueDate(),
		NotifiedAt: now,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to publish reminder notified event",
			"event", "scheduler.publish.fail",
			"reminder_id", r.ID().String(),
			"error", err,
		)
	}
}
