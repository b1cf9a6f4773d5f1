package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

type reminderRepositoryImpl struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) domain.ReminderRepository {
	return &reminderRepositoryImpl{
		db: db,
	}
}

func (r *reminderRepositoryImpl) Save(ctx context.Context, reminder *domain.Reminder) error {
	slog.DebugContext(ctx, "saving reminder to database",
		"reminder_id", reminder.ID().String(),
	)

	m := FromEntity(reminder)

	result := r.db.WithContext(ctx).Create(m)
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to save reminder to database",
			"reminder_id", reminder.ID().String(),
			"error", result.Error,
		)

		return result.Error
	}

	return nil
}

func (r *reminderRepositoryImpl) FindByID(ctx context.Context, id domain.ReminderID) (*domain.Reminder, error) {
	return r.findByID(ctx, r.db.WithContext(ctx), id)
}

func (r *reminderRepositoryImpl) FindByIDForUpdate(ctx context.Context, id domain.ReminderID) (*domain.Reminder, error) {
	return r.findByID(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *reminderRepositoryImpl) findByID(ctx context.Context, db *gorm.DB, id domain.ReminderID) (*domain.Reminder, error) {
	slog.DebugContext(ctx, "finding reminder by ID",
		"reminder_id", id.String(),
	)

	var m ReminderModel

	result := db.Where("id = ?", id.String()).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReminderNotFound
		}

		slog.ErrorContext(ctx, "failed to find reminder by ID",
			"reminder_id", id.String(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	return m.ToEntity()
}

func (r *reminderRepositoryImpl) FindPage(ctx context.Context, filter domain.ListFilter, page, limit int) ([]*domain.Reminder, int64, error) {
	slog.DebugContext(ctx, "finding reminder page",
		"user_id", filter.UserID,
		"status", filter.Status,
		"page", page,
		"limit", limit,
	)

	q := r.db.WithContext(ctx).Model(&ReminderModel{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}

	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		slog.ErrorContext(ctx, "failed to count reminders",
			"error", err,
		)

		return nil, 0, err
	}

	var models []ReminderModel

	result := q.Order("due_date ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to find reminder page",
			"error", result.Error,
		)

		return nil, 0, result.Error
	}

	reminders, err := toEntities(ctx, models)
	if err != nil {
		return nil, 0, err
	}

	return reminders, total, nil
}

func (r *reminderRepositoryImpl) Update(ctx context.Context, reminder *domain.Reminder) error {
	slog.DebugContext(ctx, "updating reminder in database",
		"reminder_id", reminder.ID().String(),
	)

	m := FromEntity(reminder)

	// Select("*") so false flags are written too.
	result := r.db.WithContext(ctx).
		Model(&ReminderModel{}).
		Where("id = ?", m.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to update reminder in database",
			"reminder_id", reminder.ID().String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrReminderNotFound
	}

	return nil
}

func (r *reminderRepositoryImpl) Delete(ctx context.Context, id domain.ReminderID) error {
	slog.DebugContext(ctx, "deleting reminder from database",
		"reminder_id", id.String(),
	)

	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&ReminderModel{})
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to delete reminder from database",
			"reminder_id", id.String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrReminderNotFound
	}

	return nil
}

func (r *reminderRepositoryImpl) FindCandidates(ctx context.Context, now time.Time) ([]*domain.Reminder, error) {
	tiers := r.db.Where("due_date <= ?", now)
	for _, w := range domain.TimedWindows {
		tiers = tiers.Or(
			fmt.Sprintf("%s = ? AND due_date BETWEEN ? AND ?", flagColumn(w.Flag)),
			false, now.Add(w.From), now.Add(w.To),
		)
	}

	var models []ReminderModel

	result := r.db.WithContext(ctx).
		Where("status IN ?", statusStrings(domain.ActiveStatuses)).
		Where(tiers).
		Order("due_date ASC").
		Find(&models)
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to find candidate reminders",
			"now", now,
			"error", result.Error,
		)

		return nil, result.Error
	}

	return toEntities(ctx, models)
}

func (r *reminderRepositoryImpl) FindDue(ctx context.Context, now time.Time) ([]*domain.Reminder, error) {
	var models []ReminderModel

	result := r.db.WithContext(ctx).
		Where("status IN ? AND due_date <= ?", statusStrings(domain.ActiveStatuses), now).
		Order("due_date ASC").
		Find(&models)
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to find due reminders",
			"now", now,
			"error", result.Error,
		)

		return nil, result.Error
	}

	return toEntities(ctx, models)
}

func (r *reminderRepositoryImpl) ConditionalUpdate(
	ctx context.Context,
	id domain.ReminderID,
	guard domain.Guard,
	change domain.Change,
	now time.Time,
) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&ReminderModel{}).
		Where("id = ? AND due_date = ?", id.String(), guard.DueDate)

	if len(guard.Statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(guard.Statuses))
	}

	if guard.Flag != domain.FlagNone {
		q = q.Where(fmt.Sprintf("%s = ?", flagColumn(guard.Flag)), guard.FlagSent)
	}

	updates := map[string]any{"updated_at": now.UTC()}
	if change.Flag != domain.FlagNone {
		updates[flagColumn(change.Flag)] = change.FlagSent
	}

	if change.Status != "" {
		updates["status"] = string(change.Status)
	}

	result := q.Updates(updates)
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to apply conditional update",
			"reminder_id", id.String(),
			"error", result.Error,
		)

		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *reminderRepositoryImpl) Stats(ctx context.Context, now time.Time, dayStart, dayEnd time.Time) (domain.Stats, error) {
	var stats domain.Stats

	counts := []struct {
		target *int64
		apply  func(*gorm.DB) *gorm.DB
	}{
		{&stats.Total, func(q *gorm.DB) *gorm.DB { return q }},
		{&stats.Pending, func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ?", string(domain.StatusPending))
		}},
		{&stats.Sent, func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ?", string(domain.StatusSent))
		}},
		{&stats.DueToday, func(q *gorm.DB) *gorm.DB {
			return q.Where("due_date >= ? AND due_date < ?", dayStart, dayEnd)
		}},
		{&stats.Overdue, func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ? AND due_date < ?", string(domain.StatusPending), now)
		}},
	}

	for _, c := range counts {
		if err := c.apply(r.db.WithContext(ctx).Model(&ReminderModel{})).Count(c.target).Error; err != nil {
			slog.ErrorContext(ctx, "failed to count reminder stats",
				"error", err,
			)

			return domain.Stats{}, err
		}
	}

	return stats, nil
}

func (r *reminderRepositoryImpl) WithTx(ctx context.Context, fn func(repo domain.ReminderRepository) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		slog.ErrorContext(ctx, "failed to begin transaction",
			"error", tx.Error,
		)

		return tx.Error
	}

	txRepo := &reminderRepositoryImpl{db: tx}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			slog.ErrorContext(ctx, "failed to rollback transaction",
				"error", rbErr,
				"original_error", err,
			)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		slog.ErrorContext(ctx, "failed to commit transaction",
			"error", err,
		)

		return err
	}

	return nil
}

func toEntities(ctx context.Context, models []ReminderModel) ([]*domain.Reminder, error) {
	reminders := make([]*domain.Reminder, 0, len(models))
	for _, m := range models {
		reminder, err := m.ToEntity()
		if err != nil {
			slog.ErrorContext(ctx, "failed to convert model to entity",
				"reminder_id", m.ID,
				"error", err,
			)

			return nil, err
		}

		reminders = append(reminders, reminder)
	}

	return reminders, nil
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}

	return out
}
