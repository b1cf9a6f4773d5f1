package domain

import (
	"context"
	"time"
)

type ListFilter struct {
	UserID string
	Status Status
}

type Stats struct {
	Total    int64
	Pending  int64
	Sent     int64
	DueToday int64
	Overdue  int64
}

type ReminderRepository interface {
	Save(ctx context.Context, reminder *Reminder) error
	FindByID(ctx context.Context, id ReminderID) (*Reminder, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id ReminderID) (*Reminder, error)
	// FindPage orders by due date ascending. page is 1-based.
	FindPage(ctx context.Context, filter ListFilter, page, limit int) ([]*Reminder, int64, error)
	Update(ctx context.Context, reminder *Reminder) error
	Delete(ctx context.Context, id ReminderID) error

	// FindCandidates returns every reminder matching any tier predicate at now
	// in a single query.
	FindCandidates(ctx context.Context, now time.Time) ([]*Reminder, error)
	// FindDue returns active reminders whose due date is at or before now.
	FindDue(ctx context.Context, now time.Time) ([]*Reminder, error)
	// ConditionalUpdate applies change only if guard still holds for the
	// stored record and reports whether the write landed.
	ConditionalUpdate(ctx context.Context, id ReminderID, guard Guard, change Change, now time.Time) (bool, error)

	Stats(ctx context.Context, now time.Time, dayStart, dayEnd time.Time) (Stats, error)
	WithTx(ctx context.Context, fn func(repo ReminderRepository) error) error
}
