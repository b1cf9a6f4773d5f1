package domain

import (
	"math"
	"strings"
	"time"
)

type Reminder struct {
	id                 ReminderID
	task               string
	dueDate            time.Time
	userID             string
	priority           Priority
	status             Status
	dailyReminderSent  bool
	hourlyReminderSent bool
	minuteReminderSent bool
	createdAt          time.Time
	updatedAt          time.Time
}

func NewReminder(
	task string,
	dueDate time.Time,
	userID string,
	priority Priority,
	now time.Time,
) (*Reminder, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, ErrEmptyTask
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	if dueDate.IsZero() {
		return nil, ErrZeroDueDate
	}

	if priority == "" {
		priority = PriorityMedium
	}

	return &Reminder{
		id:        NewReminderID(),
		task:      task,
		dueDate:   normalizeTime(dueDate),
		userID:    userID,
		priority:  priority,
		status:    StatusPending,
		createdAt: normalizeTime(now),
		updatedAt: normalizeTime(now),
	}, nil
}

func Reconstitute(
	id ReminderID,
	task string,
	dueDate time.Time,
	userID string,
	priority Priority,
	status Status,
	dailyReminderSent bool,
	hourlyReminderSent bool,
	minuteReminderSent bool,
	createdAt time.Time,
	updatedAt time.Time,
) *Reminder {
	return &Reminder{
		id:                 id,
		task:               task,
		dueDate:            dueDate,
		userID:             userID,
		priority:           priority,
		status:             status,
		dailyReminderSent:  dailyReminderSent,
		hourlyReminderSent: hourlyReminderSent,
		minuteReminderSent: minuteReminderSent,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

func (r *Reminder) Rename(task string, now time.Time) error {
	task = strings.TrimSpace(task)
	if task == "" {
		return ErrEmptyTask
	}

	r.task = task
	r.touch(now)

	return nil
}

func (r *Reminder) ChangePriority(priority Priority, now time.Time) {
	r.priority = priority
	r.touch(now)
}

// Reschedule moves the due date. A different due date starts a fresh
// notification sequence, so every tier flag is cleared.
func (r *Reminder) Reschedule(dueDate time.Time, now time.Time) error {
	if dueDate.IsZero() {
		return ErrZeroDueDate
	}

	dueDate = normalizeTime(dueDate)
	if !dueDate.Equal(r.dueDate) {
		r.dueDate = dueDate
		r.resetFlags()
	}

	r.touch(now)

	return nil
}

// Snooze pushes the due date to now+minutes and restarts the notification
// sequence regardless of the current status.
func (r *Reminder) Snooze(minutes float64, now time.Time) error {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return ErrInvalidSnooze
	}

	r.dueDate = normalizeTime(now.Add(time.Duration(minutes * float64(time.Minute))))
	r.status = StatusSnoozed
	r.resetFlags()
	r.touch(now)

	return nil
}

// OverrideStatus sets the status directly. Tier flags are left untouched.
func (r *Reminder) OverrideStatus(status Status, now time.Time) {
	r.status = status
	r.touch(now)
}

func (r *Reminder) FlagSent(flag Flag) bool {
	switch flag {
	case FlagDaily:
		return r.dailyReminderSent
	case FlagHourly:
		return r.hourlyReminderSent
	case FlagMinute:
		return r.minuteReminderSent
	default:
		return false
	}
}

func (r *Reminder) setFlag(flag Flag, sent bool) {
	switch flag {
	case FlagDaily:
		r.dailyReminderSent = sent
	case FlagHourly:
		r.hourlyReminderSent = sent
	case FlagMinute:
		r.minuteReminderSent = sent
	}
}

func (r *Reminder) resetFlags() {
	r.dailyReminderSent = false
	r.hourlyReminderSent = false
	r.minuteReminderSent = false
}

func (r *Reminder) touch(now time.Time) {
	r.updatedAt = normalizeTime(now)
}

// Clone returns an independent copy of the reminder.
func (r *Reminder) Clone() *Reminder {
	c := *r

	return &c
}

func (r *Reminder) ID() ReminderID {
	return r.id
}

func (r *Reminder) Task() string {
	return r.task
}

func (r *Reminder) DueDate() time.Time {
	return r.dueDate
}

func (r *Reminder) UserID() string {
	return r.userID
}

func (r *Reminder) Priority() Priority {
	return r.priority
}

func (r *Reminder) Status() Status {
	return r.status
}

func (r *Reminder) DailyReminderSent() bool {
	return r.dailyReminderSent
}

func (r *Reminder) HourlyReminderSent() bool {
	return r.hourlyReminderSent
}

func (r *Reminder) MinuteReminderSent() bool {
	return r.minuteReminderSent
}

func (r *Reminder) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Reminder) UpdatedAt() time.Time {
	return r.updatedAt
}

// postgres timestamptz keeps microseconds; truncating up front keeps
// in-memory values comparable with what is read back.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
