package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"staybook/internal/app/commands"
	bookingapp "staybook/internal/app/handlers/booking"
	guestapp "staybook/internal/app/handlers/guest"
	propertyapp "staybook/internal/app/handlers/property"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	"staybook/internal/domain/refund"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongostore "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	memorylock "staybook/internal/infra/lock/memory"
	redislock "staybook/internal/infra/lock/redis"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/validation"
)

const serviceName = "staybook"

// Overrides replaces the system clock and id source, mostly for tests.
type Overrides struct {
	Clock policies.Clock
	IDs   policies.IDGenerator
}

// Application is the wired service: buses, HTTP handlers, health checks and
// the optional outbox worker.
type Application struct {
	Commands commands.Bus
	Queries  queries.Bus
	Handlers ginserver.Handlers
	Health   obs.HealthHandlers
	// Worker is nil when events stay in process.
	Worker *infraoutbox.Worker

	factory uow.UoWFactory
	clock   policies.Clock
	closers []func(context.Context) error
}

type backend struct {
	factory     uow.UoWFactory
	box         outbox.Outbox
	idempotency middleware.IdempotencyStore
	worker      *infraoutbox.Worker
	checks      map[string]obs.Check
	closers     []func(context.Context) error
}

// Build wires storage, locking, buses and HTTP handlers from cfg. On error
// every resource opened so far is released.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, ov Overrides) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clock := ov.Clock
	if clock == nil {
		clock = policies.SystemClock{}
	}
	ids := ov.IDs
	if ids == nil {
		ids = policies.UUIDGenerator{}
	}

	var (
		be  backend
		err error
	)
	switch cfg.Storage {
	case config.StorageMongo:
		be, err = buildMongo(ctx, cfg, logger)
	default:
		be = buildMemory(cfg, logger)
	}
	if err != nil {
		return nil, err
	}
	app := &Application{factory: be.factory, clock: clock, closers: be.closers}

	locker, lockCheck, err := buildLocker(cfg, app)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	if lockCheck != nil {
		be.checks["redis"] = lockCheck
	}

	encoder := outbox.JSONEventEncoder{IDGenerator: ids.NewID, Headers: obs.EventHeaders}
	selector := refund.NewSelector(cfg.RefundPartialPercent)

	cmdBus := commands.NewInMemoryBus()
	commands.RegisterHandler(cmdBus, propertyapp.CreatePropertyCommand{}.Key(), &propertyapp.CreatePropertyHandler{
		UoWFactory: be.factory, Clock: clock, IDs: ids, Outbox: be.box, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(cmdBus, guestapp.RegisterGuestCommand{}.Key(), &guestapp.RegisterGuestHandler{
		UoWFactory: be.factory, Clock: clock, IDs: ids, Outbox: be.box, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(cmdBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: be.factory, Clock: clock, IDs: ids, Locker: locker, Outbox: be.box, Encoder: encoder,
	})
	commands.RegisterHandler(cmdBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: be.factory, Clock: clock, Selector: selector, Locker: locker, Outbox: be.box, Encoder: encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, propertyapp.GetPropertyQuery{}.Key(), &propertyapp.GetPropertyHandler{UoWFactory: be.factory})
	queries.RegisterHandler(queryBus, guestapp.GetGuestQuery{}.Key(), &guestapp.GetGuestHandler{UoWFactory: be.factory})
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: be.factory})
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(), &bookingapp.ListGuestBookingsHandler{UoWFactory: be.factory})
	queries.RegisterHandler(queryBus, bookingapp.ListPropertyBookingsQuery{}.Key(), &bookingapp.ListPropertyBookingsHandler{UoWFactory: be.factory})
	queries.RegisterHandler(queryBus, bookingapp.RefundQuoteQuery{}.Key(), &bookingapp.RefundQuoteHandler{
		UoWFactory: be.factory, Clock: clock, Selector: selector,
	})

	validator := validation.New()
	app.Commands = middleware.ChainCommands(cmdBus,
		middleware.Logging(logger),
		middleware.Validation(validator),
		middleware.Idempotency(be.idempotency, nil, cfg.IdempotencyTTL),
		middleware.OutboxFlush(be.box, logger),
		middleware.Transaction(be.factory, nil),
	)
	app.Queries = middleware.ChainQueries(queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(validator),
	)
	app.Handlers = ginserver.Handlers{
		Property: ginserver.PropertyHandler{Commands: app.Commands, Queries: app.Queries, Logger: logger},
		Guest:    ginserver.GuestHandler{Commands: app.Commands, Queries: app.Queries, Logger: logger},
		Booking:  ginserver.BookingHandler{Commands: app.Commands, Queries: app.Queries, Logger: logger},
	}
	app.Health = obs.HealthHandlers{Checks: be.checks}
	app.Worker = be.worker
	return app, nil
}

func buildMemory(cfg config.Config, logger *slog.Logger) backend {
	box := memory.NewOutbox(func(ctx context.Context, rec outbox.EventRecord) {
		logger.InfoContext(ctx, "event published", "event", rec.Name, "aggregate_id", rec.Aggregate, "event_id", rec.ID)
	})
	return backend{
		factory:     memory.Factory{Store: memory.NewStore()},
		box:         box,
		idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		checks:      map[string]obs.Check{},
	}
}

func buildMongo(ctx context.Context, cfg config.Config, logger *slog.Logger) (backend, error) {
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return backend{}, err
	}
	closers := []func(context.Context) error{client.Close}
	fail := func(err error) (backend, error) {
		_ = closeAll(ctx, closers)
		return backend{}, err
	}
	if err := client.Ping(ctx); err != nil {
		return fail(fmt.Errorf("mongo ping: %w", err))
	}
	if err := client.EnsureIndexes(ctx); err != nil {
		return fail(err)
	}
	store, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return fail(err)
	}
	idem, err := mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
	if err != nil {
		return fail(err)
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, serviceName, nil)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func(context.Context) error { return producer.Close() })

	return backend{
		factory:     mongostore.NewFactory(client.DB),
		box:         store,
		idempotency: idem,
		worker: &infraoutbox.Worker{
			Store:       store,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      serviceName,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		},
		checks: map[string]obs.Check{
			"mongo": client.Ping,
			"kafka": producer.Ready,
		},
		closers: closers,
	}, nil
}

func buildLocker(cfg config.Config, app *Application) (policies.Locker, obs.Check, error) {
	switch cfg.LockBackend {
	case config.LockNone:
		return policies.NopLocker{}, nil, nil
	case config.LockRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		app.closers = append(app.closers, func(context.Context) error { return client.Close() })
		locker := redislock.New(client, cfg.LockTTL)
		return locker, locker.Ping, nil
	case config.LockMemory, "":
		return memorylock.NewLocker(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported lock backend %q", cfg.LockBackend)
	}
}

// Close releases storage, broker and lock connections in reverse order.
func (a *Application) Close(ctx context.Context) error {
	return closeAll(ctx, a.closers)
}

func closeAll(ctx context.Context, closers []func(context.Context) error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
