package mailer

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/notify"
)

// LogSender only logs messages. It stands in for SMTP when no host is configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) Send(ctx context.Context, msg notify.Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	slog.InfoContext(ctx, "email suppressed, no SMTP host configured",
		"event", "mail.send.skip",
		"to", msg.To,
		"subject", msg.Subject,
	)

	return nil
}
