package domain

import "errors"

var (
	ErrReminderNotFound = errors.New("reminder not found")

	ErrInvalidReminderID = errors.New("invalid reminder ID")

	ErrEmptyTask       = errors.New("task cannot be empty")
	ErrEmptyUserID     = errors.New("user ID cannot be empty")
	ErrZeroDueDate     = errors.New("due date must be set")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidSnooze   = errors.New("snooze duration must be a finite number of minutes")
)
