package integration_test

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-ticket-events/internal/app"
	"github.com/metinatakli/movie-ticket-events/internal/events"
	"github.com/metinatakli/movie-ticket-events/internal/mailer"
	"github.com/metinatakli/movie-ticket-events/internal/payment"
	"github.com/metinatakli/movie-ticket-events/internal/repository"
	appvalidator "github.com/metinatakli/movie-ticket-events/internal/validator"
	"github.com/redis/go-redis/v9"
)

// testClock is the engine's clock; sleeps and retries are driven by moving it.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type TestApp struct {
	App    *app.Application
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Engine *events.Engine
	Clock  *testClock
	Mailer *mailer.MockMailer
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewMockMailer()
	clock := &testClock{now: time.Now().UTC()}

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	engine := events.NewEngine(
		cfg.Events.AppID,
		events.NewRedisStore(redisClient, cfg.Events.AppID),
		logger,
		events.WithClock(clock.Now),
	)

	application, err := app.NewApp(
		cfg,
		logger,
		validator,
		mailer,
		engine,
		repository.NewPostgresUserRepository(db),
		repository.NewPostgresShowRepository(db),
		repository.NewPostgresBookingRepository(db),
		payment.NewStripeWebhookParser(cfg.Stripe.WebhookSecret),
	)
	if err != nil {
		redisClient.Close()
		db.Close()
		return nil, err
	}

	return &TestApp{
		App:    application,
		DB:     db,
		Redis:  redisClient,
		Engine: engine,
		Clock:  clock,
		Mailer: mailer,
	}, nil
}
