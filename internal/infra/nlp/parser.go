package nlp

import (
	"context"
	"errors"
	"time"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

var (
	// ErrParseFailed means the model answered but no descriptor could be read from it.
	ErrParseFailed = errors.New("failed to parse meeting details")
	// ErrInvalidDescriptor means the descriptor was read but fails validation.
	ErrInvalidDescriptor = errors.New("invalid meeting details")
)

// Parser turns a free-text scheduling request into a meeting.
type Parser interface {
	Parse(ctx context.Context, text string, now time.Time) (domain.Meeting, error)
}
