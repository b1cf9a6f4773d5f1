package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/app"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/config"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/handler"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/repository"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/notify"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability/logging"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability/metrics"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability/middleware"
	"github.com/KasumiMercury/primind-reminder-scheduler/internal/scheduler"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := initObservability(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize observability", "error", err)
		return 1
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to flush telemetry", "error", err)
		}
	}()

	db, err := initDatabase(cfg.Database, cfg.Log)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		return 1
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to get underlying sql.DB", "error", err)
		return 1
	}

	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database connection", "error", err)
		}
	}()

	if err := repository.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		return 1
	}

	publisher, err := initPublisher(ctx, cfg)
	if err != nil {
		slog.Error("failed to create NATS publisher", "error", err)
		return 1
	}

	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				slog.Warn("failed to close publisher", "error", err)
			}
		}()
	}

	parser, err := initParser(cfg)
	if err != nil {
		slog.Error("failed to create meeting parser", "error", err)
		return 1
	}

	sender := initSender(cfg)

	reminderRepo := repository.NewReminderRepository(db)
	reminderUseCase := app.NewReminderUseCase(reminderRepo, time.Now, cfg.Location)
	scheduleUseCase := app.NewScheduleUseCase(parser, pubsub.NewCalendar(publisher), sender, reminderUseCase, time.Now, cfg.Location)

	schedulerMetrics, err := metrics.NewSchedulerMetrics(obs.Metrics.Meter())
	if err != nil {
		slog.Error("failed to register scheduler metrics", "error", err)
		return 1
	}

	sched := scheduler.New(
		reminderRepo,
		notify.NewDispatcher(sender, cfg.Scheduler.DispatchTimeout, cfg.Location),
		scheduler.Config{
			PollSpec:    cfg.Scheduler.PollSpec,
			DailySpec:   cfg.Scheduler.DailySpec,
			Concurrency: cfg.Scheduler.Concurrency,
			Location:    cfg.Location,
		},
		scheduler.WithPublisher(publisher),
		scheduler.WithMetrics(schedulerMetrics),
	)

	if cfg.Scheduler.Enabled {
		if err := sched.Start(ctx); err != nil {
			slog.Error("failed to start scheduler", "error", err)
			return 1
		}

		defer sched.Stop()
	} else {
		slog.Warn("SCHEDULER_ENABLED is false, notification passes run only through /cron endpoints")
	}

	httpMetrics, err := metrics.NewHTTPMetrics(obs.Metrics.Meter())
	if err != nil {
		slog.Error("failed to register http metrics", "error", err)
		return 1
	}

	healthChecks := map[string]handler.HealthCheck{
		"database": sqlDB.PingContext,
	}

	if publisher == nil {
		healthChecks["events"] = nil
	}

	if parser == nil {
		healthChecks["nlp"] = nil
	}

	router := setupRouter(routes{
		reminder:    handler.NewReminderHandler(reminderUseCase),
		schedule:    handler.NewScheduleHandler(scheduleUseCase),
		cron:        handler.NewCronHandler(sched),
		health:      handler.NewHealthHandler(healthChecks, time.Now),
		metrics:     obs.Metrics.Handler(),
		httpMetrics: httpMetrics,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", cfg.Server.Address(), "version", Version)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", "error", err)
			return 1
		}

		slog.Info("server exited properly")

		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}

		slog.Error("server exited with error", "error", err)

		return 1
	}
}

func initDatabase(cfg config.DatabaseConfig, logCfg config.LogConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logging.NewGormLogger(cfg.SlowThreshold, logging.ParseLevel(logCfg.Level)),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

type routes struct {
	reminder    *handler.ReminderHandler
	schedule    *handler.ScheduleHandler
	cron        *handler.CronHandler
	health      *handler.HealthHandler
	metrics     http.Handler
	httpMetrics *metrics.HTTPMetrics
}

func setupRouter(r routes) *gin.Engine {
	router := gin.New()

	router.Use(middleware.PanicRecoveryGin())
	router.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:      []string{"/ping", "/health", "/metrics"},
		Module:         logging.ModuleHTTP,
		ModuleResolver: resolveModule,
		JobResolver:    handler.JobName,
		TracerName:     "github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/handler",
		HTTPMetrics:    r.httpMetrics,
	}))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	r.health.RegisterRoutes(router)
	r.cron.RegisterRoutes(router)

	if r.metrics != nil {
		router.GET("/metrics", gin.WrapH(r.metrics))
	}

	v1 := router.Group("/api/v1")
	r.reminder.RegisterRoutes(v1)
	r.schedule.RegisterRoutes(v1)

	return router
}

func resolveModule(c *gin.Context) logging.Module {
	path := c.Request.URL.Path

	switch {
	case strings.HasPrefix(path, "/cron/"), path == "/reminders/quick-check":
		return logging.ModuleCron
	case strings.HasPrefix(path, "/api/v1/schedule"):
		return logging.ModuleSchedule
	case strings.HasPrefix(path, "/api/v1/reminders"):
		return logging.ModuleReminder
	default:
		return ""
	}
}
