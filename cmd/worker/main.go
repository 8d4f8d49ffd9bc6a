package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/notify"
)

func main() {
	logging.Setup(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	pgLogHandler := logging.NewPGHandler(db, 5*time.Second)
	logger := logging.Setup(cfg.AppEnv, pgLogHandler).With("component", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := jobs.NewScheduler(
		jobs.New(db, logger, cfg.InactivityDays, cfg.LogRetentionDays),
		logger,
		jobs.Schedules{Deactivate: cfg.DeactivateSchedule, LogPrune: cfg.LogPruneSchedule},
	)
	scheduler.Start()

	consumerDone := make(chan struct{})
	if cfg.AMQPURL != "" {
		go func() {
			defer close(consumerDone)
			consume(ctx, cfg, logger)
		}()
	} else {
		logger.Info("AMQP_URL not set, course update consumer disabled")
		close(consumerDone)
	}

	<-ctx.Done()
	logger.Info("shutting down worker...")

	<-scheduler.Stop().Done()
	<-consumerDone
	pgLogHandler.Stop()

	if err := database.Close(db); err != nil {
		logger.Error("database close error", "error", err)
	}
	logger.Info("worker stopped")
}

// consume keeps a queue consumer running until ctx is cancelled, reconnecting
// with a fixed backoff when the broker connection drops.
func consume(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	var m notify.Mailer = mailer
	if !mailer.IsConfigured() {
		logger.Warn("SMTP not configured, emails will only be logged")
		m = notify.LogMailer{Logger: logger}
	}
	bindings := map[string]func([]byte) bool{
		notify.RoutingCourseUpdated: notify.HandleCourseUpdated(m, logger),
	}

	for {
		consumer, err := notify.NewConsumer(cfg.AMQPURL, logger)
		if err == nil {
			logger.Info("consuming course updates", "queue", cfg.NotifyQueue, "exchange", cfg.NotifyExchange)
			err = consumer.Consume(ctx, cfg.NotifyExchange, cfg.NotifyQueue, bindings)
			consumer.Close()
		}
		if ctx.Err() != nil {
			return
		}
		logger.Error("course update consumer stopped, retrying", "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}
