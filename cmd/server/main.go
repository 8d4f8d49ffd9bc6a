package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/currency"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	logging.Setup(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db, 5*time.Second)
	logger := logging.Setup(cfg.AppEnv, pgLogHandler)

	// Exchange rates, optionally cached in Redis
	var rateCache currency.RateCache
	if cfg.RedisURL != "" {
		rc, err := currency.NewRedisCache(cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, exchange rates will not be cached", "error", err)
		} else {
			defer rc.Close()
			rateCache = rc
		}
	}
	converter := currency.NewConverter(currency.Config{
		BaseURL:       cfg.CurrencyAPIURL,
		APIKey:        cfg.CurrencyAPIKey,
		LocalCurrency: cfg.LocalCurrency,
		Timeout:       cfg.UpstreamTimeout,
		CacheTTL:      cfg.RateCacheTTL,
	}, rateCache)

	if cfg.StripeAPIKey == "" {
		slog.Warn("STRIPE_API_KEY is not set, gateway payments will fail")
	}
	stripeGateway := gateway.NewStripe(gateway.StripeConfig{
		APIKey:  cfg.StripeAPIKey,
		Timeout: cfg.UpstreamTimeout,
	})

	publisher := newPublisher(cfg, logger)

	// Services
	authService := services.NewAuthService(db, services.AuthConfig{
		Secret:        cfg.JWTSecret,
		AccessExpiry:  cfg.JWTAccessExpiry,
		RefreshExpiry: cfg.JWTRefreshExpiry,
	})
	userService := services.NewUserService(db)
	courseService := services.NewCourseService(db, publisher, logger)
	lessonService := services.NewLessonService(db)
	subscriptionService := services.NewSubscriptionService(db)
	paymentService := services.NewPaymentService(db, converter, stripeGateway, services.PaymentConfig{
		SuccessURL: cfg.StripeSuccessURL,
		Timeout:    cfg.UpstreamTimeout,
	}, logger)

	// Handlers
	validate := validation.New()
	pager := handlers.Paginator{DefaultSize: cfg.PageSize, MaxSize: cfg.MaxPageSize}
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, validate),
		Health:       handlers.NewHealthHandler(db),
		User:         handlers.NewUserHandler(userService, validate, pager),
		Course:       handlers.NewCourseHandler(courseService, validate, pager),
		Lesson:       handlers.NewLessonHandler(lessonService, validate, pager),
		Subscription: handlers.NewSubscriptionHandler(subscriptionService, validate),
		Payment:      handlers.NewPaymentHandler(paymentService, validate, pager),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, h, routes.Options{
		JWTSecret:     cfg.JWTSecret,
		RateLimit:     60,
		AuthRateLimit: 10,
		AccountCheck:  authService.IsActive,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	publisher.Close()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

// newPublisher sends course-update events to RabbitMQ when AMQP_URL is set
// and falls back to in-process delivery otherwise.
func newPublisher(cfg *config.Config, logger *slog.Logger) notify.Publisher {
	if cfg.AMQPURL != "" {
		p, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.NotifyExchange, logger)
		if err == nil {
			slog.Info("course update notifications via rabbitmq", "exchange", cfg.NotifyExchange)
			return p
		}
		slog.Warn("rabbitmq unavailable, sending notifications in-process", "error", err)
	}
	return notify.NewAsyncPublisher(newMailer(cfg, logger), logger)
}

func newMailer(cfg *config.Config, logger *slog.Logger) notify.Mailer {
	m := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if !m.IsConfigured() {
		slog.Warn("SMTP not configured, emails will only be logged")
		return notify.LogMailer{Logger: logger}
	}
	return m
}
