package main

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/app"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/config"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/mailer"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/nlp"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/notify"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability/logging"
)

// Optional collaborators come back as nil interfaces when disabled, never as
// typed nil pointers.

func initPublisher(ctx context.Context, cfg *config.Config) (pubsub.Publisher, error) {
	if cfg.PubSub.NatsURL == "" {
		slog.Warn("NATS_URL not set, event publishing and meeting scheduling disabled")
		return nil, nil
	}

	publisher, err := pubsub.NewNATSPublisherWithStream(ctx, pubsub.NATSPublisherConfig{
		URL: cfg.PubSub.NatsURL,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("NATS publisher initialized", "url", cfg.PubSub.NatsURL)

	return publisher, nil
}

func initParser(cfg *config.Config) (app.MeetingParser, error) {
	if cfg.NLP.APIKey == "" {
		slog.Warn("DEEPSEEK_API_KEY not set, meeting scheduling from text disabled")
		return nil, nil
	}

	parser, err := nlp.NewDeepSeekParser(nlp.DeepSeekConfig{
		APIKey:   cfg.NLP.APIKey,
		Model:    cfg.NLP.Model,
		Location: cfg.Location,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("DeepSeek meeting parser initialized", "model", cfg.NLP.Model)

	return parser, nil
}

func initSender(cfg *config.Config) notify.Sender {
	if cfg.Mail.Host == "" {
		slog.Warn("SMTP_HOST not set, notifications are logged instead of sent")
		return mailer.NewLogSender()
	}

	slog.Info("SMTP sender initialized", "host", cfg.Mail.Host, "port", cfg.Mail.Port)

	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
	})
}

func initObservability(ctx context.Context, cfg *config.Config) (*observability.Resources, error) {
	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:    cfg.Observability.ServiceName,
			Version: Version,
		},
		Environment:    logging.Environment(cfg.Observability.Environment),
		LogLevel:       logging.ParseLevel(cfg.Log.Level),
		DefaultModule:  logging.ModuleHTTP,
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		SamplingRate:   1.0,
		MetricsEnabled: cfg.Observability.MetricsEnabled,
	})
}
