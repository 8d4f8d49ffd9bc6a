package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Database
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	// JWT
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	JWTAccessExpiry  time.Duration `mapstructure:"JWT_ACCESS_EXPIRY"`
	JWTRefreshExpiry time.Duration `mapstructure:"JWT_REFRESH_EXPIRY"`

	// Exchange rates
	CurrencyAPIURL string        `mapstructure:"CURRENCY_API_URL"`
	CurrencyAPIKey string        `mapstructure:"CURRENCY_API_KEY"`
	LocalCurrency  string        `mapstructure:"LOCAL_CURRENCY"`
	RateCacheTTL   time.Duration `mapstructure:"RATE_CACHE_TTL"`

	// Payment gateway
	StripeAPIKey     string        `mapstructure:"STRIPE_API_KEY"`
	StripeSuccessURL string        `mapstructure:"STRIPE_SUCCESS_URL"`
	UpstreamTimeout  time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`

	// Redis (optional rate cache)
	RedisURL string `mapstructure:"REDIS_URL"`

	// RabbitMQ (optional; notifications are sent in-process without it)
	AMQPURL        string `mapstructure:"AMQP_URL"`
	NotifyExchange string `mapstructure:"NOTIFY_EXCHANGE"`
	NotifyQueue    string `mapstructure:"NOTIFY_QUEUE"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	// Jobs
	DeactivateSchedule string `mapstructure:"DEACTIVATE_SCHEDULE"`
	InactivityDays     int    `mapstructure:"INACTIVITY_DAYS"`
	LogPruneSchedule   string `mapstructure:"LOG_PRUNE_SCHEDULE"`
	LogRetentionDays   int    `mapstructure:"LOG_RETENTION_DAYS"`

	// Server
	Port        string `mapstructure:"PORT"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
	PageSize    int    `mapstructure:"PAGE_SIZE"`
	MaxPageSize int    `mapstructure:"MAX_PAGE_SIZE"`

	SentryDSN string `mapstructure:"SENTRY_DSN"`
	AppEnv    string `mapstructure:"APP_ENV"`
}

var defaults = map[string]any{
	"DB_HOST":     "localhost",
	"DB_PORT":     "5432",
	"DB_USER":     "postgres",
	"DB_PASSWORD": "",
	"DB_NAME":     "lms_db",
	"DB_SSLMODE":  "disable",

	"JWT_SECRET":         "",
	"JWT_ACCESS_EXPIRY":  "15m",
	"JWT_REFRESH_EXPIRY": "168h",

	"CURRENCY_API_URL": "https://api.currencyapi.com/",
	"CURRENCY_API_KEY": "",
	"LOCAL_CURRENCY":   "RUB",
	"RATE_CACHE_TTL":   "10m",

	"STRIPE_API_KEY":     "",
	"STRIPE_SUCCESS_URL": "https://127.0.0.1:8000/",
	"UPSTREAM_TIMEOUT":   "10s",

	"REDIS_URL": "",

	"AMQP_URL":        "",
	"NOTIFY_EXCHANGE": "lms.events",
	"NOTIFY_QUEUE":    "lms.course_updates",

	"SMTP_HOST":     "smtp.gmail.com",
	"SMTP_PORT":     587,
	"SMTP_USERNAME": "",
	"SMTP_PASSWORD": "",
	"SMTP_FROM":     "noreply@lms.local",

	"DEACTIVATE_SCHEDULE": "@daily",
	"INACTIVITY_DAYS":     30,
	"LOG_PRUNE_SCHEDULE":  "@daily",
	"LOG_RETENTION_DAYS":  30,

	"PORT":          "8080",
	"CORS_ORIGINS":  "*",
	"PAGE_SIZE":     10,
	"MAX_PAGE_SIZE": 100,

	"SENTRY_DSN": "",
	"APP_ENV":    "",
}

// Load reads configuration from the environment. In development a .env file
// in the working directory is loaded first if present.
func Load() (*Config, error) {
	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" || env == "development" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to load .env file", "error", err)
		}
	}

	for key, val := range defaults {
		viper.SetDefault(key, val)
		_ = viper.BindEnv(key)
	}
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.MaxPageSize < cfg.PageSize {
		cfg.MaxPageSize = cfg.PageSize
	}
	if cfg.InactivityDays <= 0 {
		cfg.InactivityDays = 30
	}
	if cfg.LogRetentionDays <= 0 {
		cfg.LogRetentionDays = 30
	}
	if !strings.HasSuffix(cfg.CurrencyAPIURL, "/") {
		cfg.CurrencyAPIURL += "/"
	}
	return &cfg, nil
}

// Validate reports settings the API server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if c.DBPassword == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
