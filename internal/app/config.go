package app

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Stripe           StripeConfig
	Events           EventsConfig
	Mail             MailConfig
	OtelCollectorUrl string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
	Migrate      bool
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type StripeConfig struct {
	WebhookSecret string
}

type EventsConfig struct {
	AppID        string
	SigningKey   string
	AMQPURL      string
	Queue        string
	AMQPWorkers  int
	PollInterval time.Duration
	Retries      int
}

type MailConfig struct {
	ReminderConcurrency int
}

// parseConfig reads flags from args. Values found in .env or the
// environment become the flag defaults.
func parseConfig(fs *flag.FlagSet, args []string) (Config, bool, error) {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	var cfg Config

	fs.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	fs.StringVar(&cfg.Env, "env", envString("APP_ENV", "dev"), "Environment (dev|staging|prod)")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", envString("DATABASE_URL", ""), "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")
	fs.BoolVar(&cfg.DB.Migrate, "db-migrate", false, "Apply database migrations on startup")

	fs.StringVar(&cfg.Redis.URL, "redis-url", envString("REDIS_URL", ""), "Redis address, in-memory event state when empty")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	fs.StringVar(&cfg.SMTP.Host, "smtp-host", envString("SMTP_HOST", "sandbox.smtp.mailtrap.io"), "SMTP host")
	fs.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	fs.StringVar(&cfg.SMTP.Username, "smtp-username", envString("SMTP_USER", ""), "SMTP username")
	fs.StringVar(&cfg.SMTP.Password, "smtp-password", envString("SMTP_PASS", ""), "SMTP password")
	fs.StringVar(&cfg.SMTP.Sender, "smtp-sender", envString("SENDER_EMAIL", "CineX <no-reply@cinex.metinatakli.net>"), "SMTP sender")

	fs.StringVar(&cfg.Stripe.WebhookSecret, "stripe-webhook-secret", envString("STRIPE_WEBHOOK_SECRET", ""), "Stripe webhook secret")

	fs.StringVar(&cfg.Events.AppID, "events-app-id", envString("EVENTS_APP_ID", "movie-ticket-booking"), "Event application id")
	fs.StringVar(&cfg.Events.SigningKey, "events-signing-key", envString("EVENTS_SIGNING_KEY", ""), "HS256 key for event ingest tokens, open ingest when empty")
	fs.StringVar(&cfg.Events.AMQPURL, "amqp-url", envString("AMQP_URL", ""), "RabbitMQ URL, in-process delivery when empty")
	fs.StringVar(&cfg.Events.Queue, "amqp-queue", envString("AMQP_QUEUE", "movie-ticket-booking.events"), "RabbitMQ queue for events")
	fs.IntVar(&cfg.Events.AMQPWorkers, "amqp-workers", 10, "RabbitMQ deliveries dispatched at once")
	fs.DurationVar(&cfg.Events.PollInterval, "events-poll-interval", time.Second, "Interval between scans for due runs")
	fs.IntVar(&cfg.Events.Retries, "events-retries", 3, "Retries of a failed function run")

	fs.IntVar(&cfg.Mail.ReminderConcurrency, "reminder-concurrency", 10, "Reminder emails sent at once")

	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err := fs.Parse(args)
	if err != nil {
		return cfg, false, err
	}

	return cfg, *displayVersion, nil
}

func envString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}

	return value
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}
