package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type reminderUseCaseImpl struct {
	repo     domain.ReminderRepository
	now      func() time.Time
	location *time.Location
}

// NewReminderUseCase builds the lifecycle operations over repo. now and
// location default to time.Now and UTC; location decides the "due today"
// boundary in statistics and reads due dates given without an offset.
func NewReminderUseCase(repo domain.ReminderRepository, now func() time.Time, location *time.Location) ReminderUseCase {
	if now == nil {
		now = time.Now
	}

	if location == nil {
		location = time.UTC
	}

	return &reminderUseCaseImpl{
		repo:     repo,
		now:      now,
		location: location,
	}
}

func (uc *reminderUseCaseImpl) CreateReminder(ctx context.Context, input CreateReminderInput) (ReminderOutput, error) {
	slog.DebugContext(ctx, "creating reminder",
		"user_id", input.UserID,
		"due_date", input.DueDate,
	)

	if strings.TrimSpace(input.Task) == "" {
		return ReminderOutput{}, NewValidationError("task", "task is required")
	}

	if strings.TrimSpace(input.UserID) == "" {
		return ReminderOutput{}, NewValidationError("userId", "userId is required")
	}

	if strings.TrimSpace(input.DueDate) == "" {
		return ReminderOutput{}, NewValidationError("dueDate", "dueDate is required")
	}

	dueDate, err := parseDueDate(input.DueDate, uc.location)
	if err != nil {
		return ReminderOutput{}, err
	}

	priority, err := domain.NewPriority(input.Priority)
	if err != nil {
		return ReminderOutput{}, NewValidationError("priority", err.Error())
	}

	reminder, err := domain.NewReminder(input.Task, dueDate, input.UserID, priority, uc.now())
	if err != nil {
		return ReminderOutput{}, toValidationError(err)
	}

	if err := uc.repo.Save(ctx, reminder); err != nil {
		slog.ErrorContext(ctx, "failed to save reminder",
			"error", err,
			"reminder_id", reminder.ID().String(),
		)

		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	slog.InfoContext(ctx, "reminder created",
		"event", "reminder.create",
		"reminder_id", reminder.ID().String(),
		"due_date", reminder.DueDate(),
	)

	return FromEntity(reminder), nil
}

func (uc *reminderUseCaseImpl) ListReminders(ctx context.Context, input ListRemindersInput) (RemindersOutput, error) {
	page, limit := ClampPage(input.Page, input.Limit)

	filter := domain.ListFilter{UserID: strings.TrimSpace(input.UserID)}

	if input.Status != "" {
		status, err := domain.NewStatus(input.Status)
		if err != nil {
			return RemindersOutput{}, NewValidationError("status", err.Error())
		}

		filter.Status = status
	}

	slog.DebugContext(ctx, "listing reminders",
		"user_id", filter.UserID,
		"status", filter.Status,
		"page", page,
		"limit", limit,
	)

	reminders, total, err := uc.repo.FindPage(ctx, filter, page, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list reminders",
			"error", err,
		)

		return RemindersOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return FromEntities(reminders, total, page, limit), nil
}

// ClampPage normalizes pagination: page is at least 1, limit defaults to
// DefaultListLimit and is bounded to [1, MaxListLimit].
func ClampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}

	switch {
	case limit == 0:
		limit = DefaultListLimit
	case limit < 1:
		limit = 1
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	return page, limit
}

func (uc *reminderUseCaseImpl) GetReminder(ctx context.Context, input GetReminderInput) (ReminderOutput, error) {
	reminderID, err := domain.ReminderIDFromString(input.ID)
	if err != nil {
		return ReminderOutput{}, NewValidationError("id", err.Error())
	}

	reminder, err := uc.repo.FindByID(ctx, reminderID)
	if err != nil {
		return ReminderOutput{}, uc.lookupError(ctx, input.ID, err)
	}

	return FromEntity(reminder), nil
}

type reminderPatch struct {
	task     *string
	priority *domain.Priority
	dueDate  *time.Time
	snooze   *float64
	status   *domain.Status
}

func (p reminderPatch) empty() bool {
	return p.task == nil && p.priority == nil && p.dueDate == nil && p.snooze == nil && p.status == nil
}

func (uc *reminderUseCaseImpl) UpdateReminder(ctx context.Context, input UpdateReminderInput) (ReminderOutput, error) {
	slog.DebugContext(ctx, "updating reminder",
		"reminder_id", input.ID,
	)

	reminderID, err := domain.ReminderIDFromString(input.ID)
	if err != nil {
		return ReminderOutput{}, NewValidationError("id", err.Error())
	}

	patch, err := parsePatch(input, uc.location)
	if err != nil {
		return ReminderOutput{}, err
	}

	if patch.empty() {
		return ReminderOutput{}, NewValidationError("update", "no valid update fields")
	}

	var updated *domain.Reminder

	err = uc.repo.WithTx(ctx, func(txRepo domain.ReminderRepository) error {
		reminder, err := txRepo.FindByIDForUpdate(ctx, reminderID)
		if err != nil {
			return err
		}

		if err := uc.apply(reminder, patch); err != nil {
			return err
		}

		if err := txRepo.Update(ctx, reminder); err != nil {
			return err
		}

		updated = reminder

		return nil
	})
	if err != nil {
		if IsValidationError(err) {
			return ReminderOutput{}, err
		}

		return ReminderOutput{}, uc.lookupError(ctx, input.ID, err)
	}

	slog.InfoContext(ctx, "reminder updated",
		"event", "reminder.update",
		"reminder_id", input.ID,
		"status", string(updated.Status()),
		"due_date", updated.DueDate(),
	)

	return FromEntity(updated), nil
}

func parsePatch(input UpdateReminderInput, loc *time.Location) (reminderPatch, error) {
	var patch reminderPatch

	if input.Task != nil {
		task := strings.TrimSpace(*input.Task)
		if task == "" {
			return reminderPatch{}, NewValidationError("task", domain.ErrEmptyTask.Error())
		}

		patch.task = &task
	}

	if input.Priority != nil {
		priority, err := domain.NewPriority(*input.Priority)
		if err != nil || *input.Priority == "" {
			return reminderPatch{}, NewValidationError("priority", "priority must be one of low, medium, high")
		}

		patch.priority = &priority
	}

	if input.DueDate != nil {
		dueDate, err := parseDueDate(*input.DueDate, loc)
		if err != nil {
			return reminderPatch{}, err
		}

		patch.dueDate = &dueDate
	}

	if input.SnoozeMinutes != nil {
		minutes, err := strconv.ParseFloat(strings.TrimSpace(*input.SnoozeMinutes), 64)
		if err != nil || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
			return reminderPatch{}, NewValidationError("snoozeMinutes", "snoozeMinutes must be numeric")
		}

		patch.snooze = &minutes
	}

	if input.Status != nil {
		status, err := domain.NewOverrideStatus(*input.Status)
		if err != nil {
			return reminderPatch{}, NewValidationError("status", "status must be one of pending, processed, snoozed")
		}

		patch.status = &status
	}

	return patch, nil
}

// apply runs field edits first so a snooze always decides the final due date.
func (uc *reminderUseCaseImpl) apply(reminder *domain.Reminder, patch reminderPatch) error {
	now := uc.now()

	if patch.task != nil {
		if err := reminder.Rename(*patch.task, now); err != nil {
			return toValidationError(err)
		}
	}

	if patch.priority != nil {
		reminder.ChangePriority(*patch.priority, now)
	}

	if patch.dueDate != nil {
		if err := reminder.Reschedule(*patch.dueDate, now); err != nil {
			return toValidationError(err)
		}
	}

	switch {
	case patch.snooze != nil:
		if err := reminder.Snooze(*patch.snooze, now); err != nil {
			return toValidationError(err)
		}
	case patch.status != nil:
		reminder.OverrideStatus(*patch.status, now)
	}

	return nil
}

func (uc *reminderUseCaseImpl) DeleteReminder(ctx context.Context, input DeleteReminderInput) error {
	slog.DebugContext(ctx, "deleting reminder",
		"reminder_id", input.ID,
	)

	reminderID, err := domain.ReminderIDFromString(input.ID)
	if err != nil {
		return NewValidationError("id", err.Error())
	}

	if err := uc.repo.Delete(ctx, reminderID); err != nil {
		return uc.lookupError(ctx, input.ID, err)
	}

	slog.InfoContext(ctx, "reminder deleted",
		"event", "reminder.delete",
		"reminder_id", input.ID,
	)

	return nil
}

func (uc *reminderUseCaseImpl) GetStats(ctx context.Context) (StatsOutput, error) {
	now := uc.now()
	local := now.In(uc.location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, uc.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats, err := uc.repo.Stats(ctx, now.UTC(), dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		slog.ErrorContext(ctx, "failed to compute reminder stats",
			"error", err,
		)

		return StatsOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return StatsOutput(stats), nil
}

func (uc *reminderUseCaseImpl) lookupError(ctx context.Context, id string, err error) error {
	if errors.Is(err, domain.ErrReminderNotFound) {
		slog.DebugContext(ctx, "reminder not found",
			"reminder_id", id,
		)

		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	slog.ErrorContext(ctx, "reminder store operation failed",
		"reminder_id", id,
		"error", err,
	)

	return fmt.Errorf("%w: %v", ErrInternalError, err)
}

// localDueDateLayouts are accepted without an offset and read in the
// configured timezone, as sent by date-time inputs in browsers.
var localDueDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDueDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)

	if dueDate, err := time.Parse(time.RFC3339, value); err == nil {
		return dueDate, nil
	}

	for _, layout := range localDueDateLayouts {
		if dueDate, err := time.ParseInLocation(layout, value, loc); err == nil {
			return dueDate, nil
		}
	}

	return time.Time{}, NewValidationError("dueDate", "dueDate must be an RFC3339 timestamp or a local date-time")
}

func toValidationError(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyTask):
		return NewValidationError("task", err.Error())
	case errors.Is(err, domain.ErrEmptyUserID):
		return NewValidationError("userId", err.Error())
	case errors.Is(err, domain.ErrZeroDueDate):
		return NewValidationError("dueDate", err.Error())
	case errors.Is(err, domain.ErrInvalidPriority):
		return NewValidationError("priority", err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		return NewValidationError("status", err.Error())
	case errors.Is(err, domain.ErrInvalidSnooze):
		return NewValidationError("snoozeMinutes", err.Error())
	default:
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
}
