package domain

import "time"

type Tier string

const (
	TierImmediate      Tier = "immediate"
	TierOneMinute      Tier = "1-minute"
	TierOneHour        Tier = "1-hour"
	TierTwentyFourHour Tier = "24-hour"
)

// Flag names the per-tier "already sent" marker on a reminder.
type Flag string

const (
	FlagNone   Flag = ""
	FlagDaily  Flag = "daily"
	FlagHourly Flag = "hourly"
	FlagMinute Flag = "minute"
)

type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyElevated Urgency = "elevated"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyOverdue  Urgency = "overdue"
)

// Window is the lead-time band, relative to now, in which a timed tier fires.
// Both bounds are inclusive. Bands are wider than the polling interval so a
// reminder cannot slip between two passes.
type Window struct {
	Tier Tier
	Flag Flag
	From time.Duration
	To   time.Duration
}

// TimedWindows lists the timed tiers in evaluation order.
var TimedWindows = []Window{
	{Tier: TierTwentyFourHour, Flag: FlagDaily, From: 23 * time.Hour, To: 25 * time.Hour},
	{Tier: TierOneHour, Flag: FlagHourly, From: 55 * time.Minute, To: 65 * time.Minute},
	{Tier: TierOneMinute, Flag: FlagMinute, From: 30 * time.Second, To: 90 * time.Second},
}

func (w Window) Contains(dueDate, now time.Time) bool {
	return !dueDate.Before(now.Add(w.From)) && !dueDate.After(now.Add(w.To))
}

// Classify picks the tier a reminder is due for at now, if any.
// Overdue wins over every timed tier; at most one tier matches per call.
func Classify(r *Reminder, now time.Time) (Tier, bool) {
	if !r.Status().IsActive() {
		return "", false
	}

	if !r.DueDate().After(now) {
		return TierImmediate, true
	}

	for _, w := range TimedWindows {
		if r.FlagSent(w.Flag) {
			continue
		}

		if w.Contains(r.DueDate(), now) {
			return w.Tier, true
		}
	}

	return "", false
}

func (t Tier) Label() string {
	switch t {
	case TierTwentyFourHour:
		return "24-Hour Advance Notice"
	case TierOneHour:
		return "1-Hour Advance Notice"
	case TierOneMinute:
		return "URGENT - 1-Minute Notice"
	default:
		return "Due Now"
	}
}

// Flag returns the marker set once this tier has been dispatched.
// The immediate tier has none; it closes the reminder instead.
func (t Tier) Flag() Flag {
	switch t {
	case TierTwentyFourHour:
		return FlagDaily
	case TierOneHour:
		return FlagHourly
	case TierOneMinute:
		return FlagMinute
	default:
		return FlagNone
	}
}

func (t Tier) Urgency() Urgency {
	switch t {
	case TierTwentyFourHour:
		return UrgencyNormal
	case TierOneHour:
		return UrgencyElevated
	case TierOneMinute:
		return UrgencyUrgent
	default:
		return UrgencyOverdue
	}
}

// Guard is the stored state a conditional write requires. A zero Flag skips
// the flag check; empty Statuses skips the status check.
type Guard struct {
	DueDate  time.Time
	Statuses []Status
	Flag     Flag
	FlagSent bool
}

// Change is what a conditional write applies when its Guard holds.
type Change struct {
	Flag     Flag
	FlagSent bool
	Status   Status
}

// Claim returns the conditional write that reserves this tier for r.
// Reserving before sending means two concurrent passes cannot both send.
func (t Tier) Claim(r *Reminder) (Guard, Change) {
	if t == TierImmediate {
		return Guard{DueDate: r.DueDate(), Statuses: ActiveStatuses},
			Change{Status: StatusSent}
	}

	return Guard{DueDate: r.DueDate(), Statuses: ActiveStatuses, Flag: t.Flag(), FlagSent: false},
		Change{Flag: t.Flag(), FlagSent: true}
}

// Release undoes a Claim after a failed send so the next pass retries.
func (t Tier) Release(r *Reminder) (Guard, Change) {
	if t == TierImmediate {
		return Guard{DueDate: r.DueDate(), Statuses: []Status{StatusSent}},
			Change{Status: r.Status()}
	}

	return Guard{DueDate: r.DueDate(), Flag: t.Flag(), FlagSent: true},
		Change{Flag: t.Flag(), FlagSent: false}
}

func (g Guard) Matches(r *Reminder) bool {
	if !g.DueDate.Equal(r.DueDate()) {
		return false
	}

	if len(g.Statuses) > 0 {
		ok := false
		for _, s := range g.Statuses {
			if r.Status() == s {
				ok = true

				break
			}
		}

		if !ok {
			return false
		}
	}

	if g.Flag != FlagNone && r.FlagSent(g.Flag) != g.FlagSent {
		return false
	}

	return true
}

func (c Change) ApplyTo(r *Reminder, now time.Time) {
	if c.Flag != FlagNone {
		r.setFlag(c.Flag, c.FlagSent)
	}

	if c.Status != "" {
		r.status = c.Status
	}

	r.touch(now)
}
