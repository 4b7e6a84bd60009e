package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-ticket-events/internal/domain"
	"github.com/metinatakli/movie-ticket-events/internal/events"
	"github.com/metinatakli/movie-ticket-events/internal/mailer"
	"github.com/metinatakli/movie-ticket-events/internal/payment"
	"github.com/metinatakli/movie-ticket-events/internal/repository"
	appvalidator "github.com/metinatakli/movie-ticket-events/internal/validator"
	"github.com/metinatakli/movie-ticket-events/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "movie-ticket-events"

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	validator *validator.Validate
	mailer    mailer.Mailer
	engine    *events.Engine
	transport *events.AMQPTransport

	userRepo    domain.UserRepository
	showRepo    domain.ShowRepository
	bookingRepo domain.BookingRepository

	paymentWebhook domain.PaymentWebhookParser
}

// NewApp wires the application and registers its event functions with
// engine.
func NewApp(
	cfg Config,
	logger *slog.Logger,
	validator *validator.Validate,
	mailer mailer.Mailer,
	engine *events.Engine,
	userRepo domain.UserRepository,
	showRepo domain.ShowRepository,
	bookingRepo domain.BookingRepository,
	paymentWebhook domain.PaymentWebhookParser,
) (*Application, error) {

	app := &Application{
		config:         cfg,
		logger:         logger,
		validator:      validator,
		mailer:         mailer,
		engine:         engine,
		userRepo:       userRepo,
		showRepo:       showRepo,
		bookingRepo:    bookingRepo,
		paymentWebhook: paymentWebhook,
	}

	err := engine.Register(app.functions()...)
	if err != nil {
		return nil, fmt.Errorf("register functions: %w", err)
	}

	return app, nil
}

func Run() error {
	cfg, displayVersion, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(logger.Handler(), otelslog.NewHandler(serviceName)))
	}

	if cfg.DB.Migrate {
		err = repository.Migrate(cfg.DB.DSN)
		if err != nil {
			return err
		}

		logger.Info("database migrations applied")
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var store events.Store

	if cfg.Redis.URL != "" {
		redisClient, err := NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		store = events.NewRedisStore(redisClient, cfg.Events.AppID)
	} else {
		logger.Warn("redis url not set, event run state is kept in memory")
		store = events.NewMemoryStore()
	}

	engineOpts := []events.Option{
		events.WithPollInterval(cfg.Events.PollInterval),
	}

	var transport *events.AMQPTransport

	if cfg.Events.AMQPURL != "" {
		transport = events.NewAMQPTransport(cfg.Events.AMQPURL, cfg.Events.Queue, cfg.Events.AMQPWorkers, logger)
		defer transport.Close()

		engineOpts = append(engineOpts, events.WithPublisher(transport))
	}

	engine := events.NewEngine(cfg.Events.AppID, store, logger, engineOpts...)

	smtpMailer, err := mailer.NewInstrumentedMailer(
		mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
	)
	if err != nil {
		return err
	}

	app, err := NewApp(
		cfg,
		logger,
		appvalidator.NewValidator(),
		smtpMailer,
		engine,
		repository.NewPostgresUserRepository(db),
		repository.NewPostgresShowRepository(db),
		repository.NewPostgresBookingRepository(db),
		payment.NewStripeWebhookParser(cfg.Stripe.WebhookSecret),
	)
	if err != nil {
		return err
	}

	app.transport = transport

	return app.run()
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	err = otelpgx.RecordStats(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var workers sync.WaitGroup

	workers.Add(1)
	go func() {
		defer workers.Done()

		err := app.engine.Start(workersCtx)
		if err != nil {
			app.logger.Error("event engine stopped with error", "error", err)
		}
	}()

	if app.transport != nil {
		workers.Add(1)
		go func() {
			defer workers.Done()

			err := app.transport.Consume(workersCtx, app.engine.Dispatch)
			if err != nil {
				app.logger.Error("event consumer stopped with error", "error", err)
			}
		}()
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
			return
		}

		app.logger.Info("waiting for event workers")

		stopWorkers()
		workers.Wait()
		app.engine.Wait()

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
