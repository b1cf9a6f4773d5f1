package domain

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusSnoozed   Status = "snoozed"
	StatusSent      Status = "sent"
	StatusProcessed Status = "processed"
)

// ActiveStatuses are the statuses the scheduler still notifies for.
var ActiveStatuses = []Status{StatusPending, StatusSnoozed}

func NewStatus(s string) (Status, error) {
	switch s {
	case string(StatusPending), string(StatusSnoozed), string(StatusSent), string(StatusProcessed):
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
	}
}

// NewOverrideStatus parses a status that a caller may set directly.
// sent is reserved for the scheduler.
func NewOverrideStatus(s string) (Status, error) {
	switch s {
	case string(StatusPending), string(StatusProcessed), string(StatusSnoozed):
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
	}
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusSnoozed
}

// IsTerminal reports whether no further notifications will be issued.
// sent and processed are the same terminal state under two names.
func (s Status) IsTerminal() bool {
	return s == StatusSent || s == StatusProcessed
}
