package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Log           LogConfig
	Scheduler     SchedulerConfig
	Mail          MailConfig
	PubSub        PubSubConfig
	NLP           NLPConfig
	Observability ObservabilityConfig
	// Location is used for the daily trigger and "due today" statistics.
	Location *time.Location
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

type SchedulerConfig struct {
	Enabled         bool
	PollSpec        string
	DailySpec       string
	Concurrency     int
	DispatchTimeout time.Duration
}

// MailConfig selects the notification transport. An empty Host logs
// messages instead of sending them.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// PubSubConfig enables event publishing and the calendar bridge when NatsURL
// is set.
type PubSubConfig struct {
	NatsURL string
}

// NLPConfig enables meeting scheduling from free text when APIKey is set.
type NLPConfig struct {
	APIKey string
	Model  string
}

type ObservabilityConfig struct {
	ServiceName    string
	Environment    string
	OTLPEndpoint   string
	MetricsEnabled bool
}

func Load() (*Config, error) {
	var errs []error

	intVar := func(key, def string) int {
		v, err := strconv.Atoi(getEnv(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}

		return v
	}

	durationVar := func(key, def string) time.Duration {
		v, err := time.ParseDuration(getEnv(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}

		return v
	}

	boolVar := func(key, def string) bool {
		v, err := strconv.ParseBool(getEnv(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}

		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         intVar("SERVER_PORT", "8080"),
			ReadTimeout:  durationVar("SERVER_READ_TIMEOUT", "30s"),
			WriteTimeout: durationVar("SERVER_WRITE_TIMEOUT", "30s"),
		},
		Database: DatabaseConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxOpenConns:    intVar("DB_MAX_OPEN_CONNS", "25"),
			MaxIdleConns:    intVar("DB_MAX_IDLE_CONNS", "25"),
			ConnMaxLifetime: durationVar("DB_CONN_MAX_LIFETIME", "5m"),
			SlowThreshold:   durationVar("DB_SLOW_THRESHOLD", "200ms"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Scheduler: SchedulerConfig{
			Enabled:         boolVar("SCHEDULER_ENABLED", "true"),
			PollSpec:        getEnv("SCHEDULER_POLL_SPEC", "@every 1m"),
			DailySpec:       getEnv("SCHEDULER_DAILY_SPEC", "0 8 * * *"),
			Concurrency:     intVar("SCHEDULER_CONCURRENCY", "4"),
			DispatchTimeout: durationVar("SCHEDULER_DISPATCH_TIMEOUT", "15s"),
		},
		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     intVar("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("MAIL_FROM"),
			FromName: getEnv("MAIL_FROM_NAME", "AI Executive Assistant"),
		},
		PubSub: PubSubConfig{
			NatsURL: os.Getenv("NATS_URL"),
		},
		NLP: NLPConfig{
			APIKey: os.Getenv("DEEPSEEK_API_KEY"),
			Model:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		},
		Observability: ObservabilityConfig{
			ServiceName:    getEnv("SERVICE_NAME", "reminder-scheduler"),
			Environment:    getEnv("ENV", "local"),
			OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			MetricsEnabled: boolVar("METRICS_ENABLED", "true"),
		},
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE: %w", err))
	}

	cfg.Location = loc

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.DSN == "" {
		return errors.New("POSTGRES_DSN environment variable is required")
	}

	if c.Scheduler.Concurrency < 1 {
		return errors.New("invalid SCHEDULER_CONCURRENCY: must be at least 1")
	}

	if c.Scheduler.DispatchTimeout <= 0 {
		return errors.New("invalid SCHEDULER_DISPATCH_TIMEOUT: must be positive")
	}

	if c.Mail.Host != "" && c.Mail.From == "" {
		return errors.New("MAIL_FROM is required when SMTP_HOST is set")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
