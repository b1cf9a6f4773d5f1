package domain

import "fmt"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// NewPriority parses p. An empty value yields the default, medium.
func NewPriority(p string) (Priority, error) {
	switch p {
	case "":
		return PriorityMedium, nil
	case string(PriorityLow), string(PriorityMedium), string(PriorityHigh):
		return Priority(p), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPriority, p)
	}
}
