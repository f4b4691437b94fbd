package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homestay/internal/app/commands"
	bookingapp "homestay/internal/app/handlers/booking"
	listingapp "homestay/internal/app/handlers/listings"
	reviewsapp "homestay/internal/app/handlers/reviews"
	"homestay/internal/app/middleware"
	appoutbox "homestay/internal/app/outbox"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	"homestay/internal/domain/listings"
	"homestay/internal/domain/user"
	"homestay/internal/infra/broker/kafka"
	"homestay/internal/infra/config"
	"homestay/internal/infra/db/mongo"
	ginserver "homestay/internal/infra/http/gin"
	"homestay/internal/infra/obs"
	infraoutbox "homestay/internal/infra/outbox"
	"homestay/internal/infra/storage/memory"
	"homestay/internal/infra/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if err := app.loadFixtures(ctx, cfg.FixturesPath, logger); err != nil {
		logger.Warn("fixtures load failed", "error", err, "path", cfg.FixturesPath)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		app.close(shutdownCtx, logger)
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	factory  uow.Factory
	worker   *infraoutbox.Worker
	ready    func() error
	closers  []func(context.Context) error
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var app application

	var (
		factory     uow.Factory
		outboxStore appoutbox.Outbox
		workerSrc   infraoutbox.Source
		idStore     middleware.IdempotencyStore
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("connect mongo: %w", err)
		}
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		app.closers = append(app.closers, client.Close)

		lock := mongo.LockSettings{RetryInterval: cfg.LockRetryInterval, Timeout: cfg.LockTimeout}
		factory = mongo.Factory{
			DB:           client.DB,
			ListingsRepo: mongo.NewListingRepository(client.DB),
			BookingRepo:  mongo.NewBookingRepository(client.DB, lock),
			ReviewsRepo:  mongo.NewReviewRepository(client.DB),
			UsersRepo:    mongo.NewUserRepository(client.DB),
		}
		box := mongo.NewOutbox(client.DB)
		outboxStore, workerSrc = box, box
		idStore = mongo.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
	default:
		store := memory.NewStore()
		factory = memory.NewFactory(store)
		box := memory.NewOutbox()
		outboxStore, workerSrc = box, box
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		app.ready = func() error { return nil }
	}
	app.factory = factory

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: factory,
		Outbox:     outboxStore,
		Encoder:    encoder,
		Currency:   cfg.Currency,
	})
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(), &bookingapp.ConfirmBookingHandler{
		UoWFactory: factory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: factory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, reviewsapp.SubmitReviewCommand{}.Key(), &reviewsapp.SubmitReviewHandler{
		UoWFactory: factory,
		Outbox:     outboxStore,
		Encoder:    encoder,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{
		UoWFactory: factory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, listingapp.UpdateListingCommand{}.Key(), &listingapp.UpdateListingHandler{
		UoWFactory: factory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, listingapp.SetAvailabilityCommand{}.Key(), &listingapp.SetAvailabilityHandler{
		UoWFactory: factory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.ListBookingsQuery{}.Key(), &bookingapp.ListBookingsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, reviewsapp.ListReviewsQuery{}.Key(), &reviewsapp.ListReviewsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, reviewsapp.ListingStatsQuery{}.Key(), &reviewsapp.ListingStatsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, listingapp.GetSummaryQuery{}.Key(), &listingapp.GetSummaryHandler{UoWFactory: factory})

	validator := validation.NewStructValidator()
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(validator),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus, middleware.QueryValidation(validator))

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, fmt.Errorf("connect kafka: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
		app.worker = &infraoutbox.Worker{
			Store:       workerSrc,
			Producer:    producer,
			Logger:      logger,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
		}
	}

	app.handlers = ginserver.Handlers{
		Booking:     ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		Review:      ginserver.ReviewHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		Listing:     ginserver.ListingHandler{Queries: queryBusWithMiddleware},
		HostListing: ginserver.HostListingHandler{Commands: commandBusWithMiddleware},
	}
	return app, nil
}

func (a application) close(ctx context.Context, logger *slog.Logger) {
	for _, closeFn := range a.closers {
		if err := closeFn(ctx); err != nil {
			logger.Error("shutdown cleanup failed", "error", err)
		}
	}
}

func (a application) loadFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures fixtureFile
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	unit, err := a.factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	ctx = uow.BindContext(ctx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	for _, fx := range fixtures.Users {
		if err := unit.Users().Save(ctx, &user.User{ID: fx.ID, Username: fx.Username, DisplayName: fx.DisplayName}); err != nil {
			logger.Error("cannot store fixture user", "user_id", fx.ID, "error", err)
		}
	}

	now := time.Now().UTC()
	for _, fx := range fixtures.Listings {
		listing, err := listings.NewListing(listings.CreateParams{
			ID:               listings.ListingID(fx.ID),
			Host:             listings.HostID(fx.Host),
			Title:            fx.Title,
			Description:      fx.Description,
			Location:         fx.Location,
			PropertyType:     fx.PropertyType,
			NightlyRateCents: fx.NightlyRateCents,
			MaxGuests:        fx.MaxGuests,
			Bedrooms:         fx.Bedrooms,
			Bathrooms:        fx.Bathrooms,
			Amenities:        fx.Amenities,
			Available:        fx.Available,
			Now:              now,
		})
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := unit.Listings().Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}

	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

type fixtureFile struct {
	Users    []userFixture    `json:"users"`
	Listings []listingFixture `json:"listings"`
}

type userFixture struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type listingFixture struct {
	ID               string `json:"id"`
	Host             string `json:"host"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Location         string `json:"location"`
	PropertyType     string `json:"property_type"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
	MaxGuests        int    `json:"max_guests"`
	Bedrooms         int    `json:"bedrooms"`
	Bathrooms        int    `json:"bathrooms"`
	Amenities        string `json:"amenities"`
	Available        bool   `json:"available"`
}
