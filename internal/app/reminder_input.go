package app

type CreateReminderInput struct {
	Task     string
	DueDate  string
	UserID   string
	Priority string
}

type ListRemindersInput struct {
	UserID string
	Status string
	Page   int
	Limit  int
}

type GetReminderInput struct {
	ID string
}

// UpdateReminderInput is a partial update. Nil fields are left untouched.
// SnoozeMinutes and Status are mutually exclusive; when both are present
// the snooze wins.
type UpdateReminderInput struct {
	ID            string
	Task          *string
	Priority      *string
	DueDate       *string
	SnoozeMinutes *string
	Status        *string
}

type DeleteReminderInput struct {
	ID string
}

type ScheduleMeetingInput struct {
	Text string
}
