package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

// MemoryRepository is an in-process domain.ReminderRepository with the same
// conditional-write semantics as the postgres implementation.
//
// The Fail* fields inject errors into the matching method. AfterCandidates,
// when set, runs after a candidate snapshot is taken and before it is
// returned, which lets tests line up concurrent passes on the same snapshot.
type MemoryRepository struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	reminders map[string]*domain.Reminder

	FailSave              error
	FailUpdate            error
	FailCandidates        error
	FailDue               error
	FailConditionalUpdate error
	FailStats             error
	AfterCandidates       func()
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		reminders: make(map[string]*domain.Reminder),
	}
}

// Put stores a copy of reminder, bypassing fault injection.
func (m *MemoryRepository) Put(reminders ...*domain.Reminder) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range reminders {
		m.reminders[r.ID().String()] = r.Clone()
	}
}

// Get returns a copy of the stored reminder, or nil.
func (m *MemoryRepository) Get(id domain.ReminderID) *domain.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reminders[id.String()]
	if !ok {
		return nil
	}

	return r.Clone()
}

func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.reminders)
}

func (m *MemoryRepository) Save(_ context.Context, reminder *domain.Reminder) error {
	if m.FailSave != nil {
		return m.FailSave
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reminders[reminder.ID().String()] = reminder.Clone()

	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id domain.ReminderID) (*domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reminders[id.String()]
	if !ok {
		return nil, domain.ErrReminderNotFound
	}

	return r.Clone(), nil
}

// FindByIDForUpdate is FindByID; exclusion comes from WithTx holding the
// repository-wide transaction lock.
func (m *MemoryRepository) FindByIDForUpdate(ctx context.Context, id domain.ReminderID) (*domain.Reminder, error) {
	return m.FindByID(ctx, id)
}

func (m *MemoryRepository) FindPage(_ context.Context, filter domain.ListFilter, page, limit int) ([]*domain.Reminder, int64, error) {
	matched := m.selectSorted(func(r *domain.Reminder) bool {
		if filter.UserID != "" && r.UserID() != filter.UserID {
			return false
		}

		return filter.Status == "" || r.Status() == filter.Status
	})

	total := int64(len(matched))

	start := (page - 1) * limit
	if start >= len(matched) {
		return []*domain.Reminder{}, total, nil
	}

	end := min(start+limit, len(matched))

	return matched[start:end], total, nil
}

func (m *MemoryRepository) Update(_ context.Context, reminder *domain.Reminder) error {
	if m.FailUpdate != nil {
		return m.FailUpdate
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reminders[reminder.ID().String()]; !ok {
		return domain.ErrReminderNotFound
	}

	m.reminders[reminder.ID().String()] = reminder.Clone()

	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, id domain.ReminderID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reminders[id.String()]; !ok {
		return domain.ErrReminderNotFound
	}

	delete(m.reminders, id.String())

	return nil
}

func (m *MemoryRepository) FindCandidates(_ context.Context, now time.Time) ([]*domain.Reminder, error) {
	if m.FailCandidates != nil {
		return nil, m.FailCandidates
	}

	candidates := m.selectSorted(func(r *domain.Reminder) bool {
		if !r.Status().IsActive() {
			return false
		}

		if !r.DueDate().After(now) {
			return true
		}

		for _, w := range domain.TimedWindows {
			if !r.FlagSent(w.Flag) && w.Contains(r.DueDate(), now) {
				return true
			}
		}

		return false
	})

	if m.AfterCandidates != nil {
		m.AfterCandidates()
	}

	return candidates, nil
}

func (m *MemoryRepository) FindDue(_ context.Context, now time.Time) ([]*domain.Reminder, error) {
	if m.FailDue != nil {
		return nil, m.FailDue
	}

	due := m.selectSorted(func(r *domain.Reminder) bool {
		return r.Status().IsActive() && !r.DueDate().After(now)
	})

	if m.AfterCandidates != nil {
		m.AfterCandidates()
	}

	return due, nil
}

func (m *MemoryRepository) ConditionalUpdate(
	ctx context.Context,
	id domain.ReminderID,
	guard domain.Guard,
	change domain.Change,
	now time.Time,
) (bool, error) {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	return m.conditionalUpdate(ctx, id, guard, change, now)
}

func (m *MemoryRepository) conditionalUpdate(
	_ context.Context,
	id domain.ReminderID,
	guard domain.Guard,
	change domain.Change,
	now time.Time,
) (bool, error) {
	if m.FailConditionalUpdate != nil {
		return false, m.FailConditionalUpdate
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reminders[id.String()]
	if !ok || !guard.Matches(r) {
		return false, nil
	}

	change.ApplyTo(r, now)

	return true, nil
}

func (m *MemoryRepository) Stats(_ context.Context, now time.Time, dayStart, dayEnd time.Time) (domain.Stats, error) {
	if m.FailStats != nil {
		return domain.Stats{}, m.FailStats
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var stats domain.Stats
	for _, r := range m.reminders {
		stats.Total++

		switch r.Status() {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusSent:
			stats.Sent++
		}

		if !r.DueDate().Before(dayStart) && r.DueDate().Before(dayEnd) {
			stats.DueToday++
		}

		if r.Status() == domain.StatusPending && r.DueDate().Before(now) {
			stats.Overdue++
		}
	}

	return stats, nil
}

// WithTx serializes fn against other transactions and conditional writes,
// and restores the previous contents if fn fails.
func (m *MemoryRepository) WithTx(ctx context.Context, fn func(repo domain.ReminderRepository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snapshot := m.snapshot()

	if err := fn(&memoryTx{MemoryRepository: m}); err != nil {
		m.mu.Lock()
		m.reminders = snapshot
		m.mu.Unlock()

		return err
	}

	return nil
}

func (m *MemoryRepository) snapshot() map[string]*domain.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make(map[string]*domain.Reminder, len(m.reminders))
	for k, r := range m.reminders {
		copied[k] = r.Clone()
	}

	return copied
}

func (m *MemoryRepository) selectSorted(keep func(*domain.Reminder) bool) []*domain.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Reminder, 0, len(m.reminders))
	for _, r := range m.reminders {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DueDate().Equal(out[j].DueDate()) {
			return out[i].ID().String() < out[j].ID().String()
		}

		return out[i].DueDate().Before(out[j].DueDate())
	})

	return out
}

// memoryTx is the repository handed to a WithTx callback. The transaction
// lock is already held, so conditional writes and nested transactions must
// not take it again.
type memoryTx struct {
	*MemoryRepository
}

func (tx *memoryTx) ConditionalUpdate(
	ctx context.Context,
	id domain.ReminderID,
	guard domain.Guard,
	change domain.Change,
	now time.Time,
) (bool, error) {
	return tx.conditionalUpdate(ctx, id, guard, change, now)
}

func (tx *memoryTx) WithTx(_ context.Context, fn func(repo domain.ReminderRepository) error) error {
	return fn(tx)
}
