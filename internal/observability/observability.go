package observability

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability/logging"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability/metrics"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability/tracing"
)

type Config struct {
	ServiceInfo    logging.ServiceInfo
	Environment    logging.Environment
	LogLevel       slog.Level
	DefaultModule  logging.Module
	OTLPEndpoint   string
	SamplingRate   float64
	MetricsEnabled bool
}

// Resources holds the installed providers so main can flush them on exit.
type Resources struct {
	Tracing *tracing.Provider
	Metrics *metrics.Provider
}

// Init installs the slog default logger and the global tracer and meter
// providers.
func Init(ctx context.Context, cfg Config) (*Resources, error) {
	slog.SetDefault(slog.New(logging.NewHandler(os.Stdout, logging.Config{
		Service:       cfg.ServiceInfo,
		Environment:   cfg.Environment,
		Level:         cfg.LogLevel,
		DefaultModule: cfg.DefaultModule,
	})))

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    cfg.ServiceInfo.Name,
		ServiceVersion: cfg.ServiceInfo.Version,
		Environment:    string(cfg.Environment),
		Endpoint:       cfg.OTLPEndpoint,
		SamplingRate:   cfg.SamplingRate,
	})
	if err != nil {
		return nil, err
	}

	tp.Install()

	mp, err := metrics.NewProvider(ctx, metrics.Config{
		ServiceName:    cfg.ServiceInfo.Name,
		ServiceVersion: cfg.ServiceInfo.Version,
		Environment:    string(cfg.Environment),
		Enabled:        cfg.MetricsEnabled,
	})
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(ctx))
	}

	mp.Install()

	return &Resources{Tracing: tp, Metrics: mp}, nil
}

func (r *Resources) Shutdown(ctx context.Context) error {
	return errors.Join(r.Tracing.Shutdown(ctx), r.Metrics.Shutdown(ctx))
}
