package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/mail.v2"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/notify"
)

var ErrNoRecipients = errors.New("message has no recipients")

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender delivers notify.Message values over SMTP.
type SMTPSender struct {
	dialer   *mail.Dialer
	from     string
	fromName string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer:   mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg notify.Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	// mail.v2 has no context support; the dialer still gets a deadline.
	if deadline, ok := ctx.Deadline(); ok {
		dialer := *s.dialer
		dialer.Timeout = max(time.Until(deadline), time.Millisecond)

		err = dialer.DialAndSend(m)
	} else {
		err = s.dialer.DialAndSend(m)
	}

	if err != nil {
		slog.ErrorContext(ctx, "failed to send email",
			"event", "mail.send.fail",
			"subject", msg.Subject,
			"recipients", len(msg.To),
			"error", err,
		)

		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.InfoContext(ctx, "email sent",
		"event", "mail.send",
		"subject", msg.Subject,
		"recipients", len(msg.To),
	)

	return nil
}

func (s *SMTPSender) build(msg notify.Message) (*mail.Message, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}

	return m, nil
}
