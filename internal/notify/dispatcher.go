package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

const DefaultTimeout = 15 * time.Second

type Dispatcher struct {
	sender   Sender
	timeout  time.Duration
	location *time.Location
}

// NewDispatcher wraps sender with a per-send timeout. A non-positive timeout
// falls back to DefaultTimeout; a nil location renders dates in UTC.
func NewDispatcher(sender Sender, timeout time.Duration, location *time.Location) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if location == nil {
		location = time.UTC
	}

	return &Dispatcher{
		sender:   sender,
		timeout:  timeout,
		location: location,
	}
}

// Dispatch renders and sends the tier notification for r. Any failure,
// including the send outliving the timeout, is wrapped in ErrSendFailed.
func (d *Dispatcher) Dispatch(ctx context.Context, r *domain.Reminder, tier domain.Tier, now time.Time) error {
	payload := BuildPayload(r, tier, now)

	msg, err := payload.Render(d.location)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- d.sender.Send(sendCtx, msg)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSendFailed, err)
		}
	case <-sendCtx.Done():
		return fmt.Errorf("%w: %v", ErrSendFailed, sendCtx.Err())
	}

	slog.DebugContext(ctx, "notification sent",
		"reminder_id", r.ID().String(),
		"tier", string(tier),
		"recipient", payload.Recipient,
	)

	return nil
}
