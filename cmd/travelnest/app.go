package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	adminapp "travelnest/internal/app/handlers/admin"
	bookingapp "travelnest/internal/app/handlers/booking"
	contactapp "travelnest/internal/app/handlers/contact"
	listingapp "travelnest/internal/app/handlers/listings"
	meapp "travelnest/internal/app/handlers/me"
	membershipapp "travelnest/internal/app/handlers/membership"
	reviewsapp "travelnest/internal/app/handlers/reviews"
	"travelnest/internal/app/middleware"
	appoutbox "travelnest/internal/app/outbox"
	"travelnest/internal/app/policies"
	"travelnest/internal/app/projections"
	"travelnest/internal/app/queries"
	authsvc "travelnest/internal/app/services/auth"
	"travelnest/internal/app/uow"
	"travelnest/internal/app/validation"
	domainauth "travelnest/internal/domain/auth"
	domainbooking "travelnest/internal/domain/booking"
	domainmembership "travelnest/internal/domain/membership"
	domainpricing "travelnest/internal/domain/pricing"
	"travelnest/internal/domain/shared/money"
	domainuser "travelnest/internal/domain/user"
	"travelnest/internal/infra/broker/kafka"
	"travelnest/internal/infra/config"
	mongostore "travelnest/internal/infra/db/mongo"
	ginserver "travelnest/internal/infra/http/gin"
	"travelnest/internal/infra/inbox"
	"travelnest/internal/infra/outbox"
	"travelnest/internal/infra/payments/razorpay"
	"travelnest/internal/infra/security"
	"travelnest/internal/infra/storage/memory"
	"travelnest/internal/infra/storage/s3"
)

const (
	revenueConsumer = "revenue-projection"
	eventSource     = "app://travelnest"
)

type backgroundTask struct {
	name string
	run  func(ctx context.Context) error
}

type application struct {
	handlers   ginserver.Handlers
	auth       *authsvc.Service
	readiness  map[string]func(ctx context.Context) error
	background []backgroundTask
	closers    []func(ctx context.Context) error
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown step failed", "error", err)
		}
	}
}

// persistence is everything that differs between the memory and mongo modes.
type persistence struct {
	factory     uow.UoWFactory
	users       domainuser.Repository
	sessions    domainauth.SessionStore
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	revenue     *projections.RevenueProjector
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{readiness: map[string]func(context.Context) error{}}

	var (
		store persistence
		err   error
	)
	switch cfg.StorageMode {
	case config.StorageMongo:
		store, err = buildMongo(cfg, logger, app)
	default:
		store = buildMemory(logger)
	}
	if err != nil {
		return nil, err
	}

	payments, err := buildPayments(cfg, logger)
	if err != nil {
		return nil, err
	}
	images, err := buildImages(cfg, logger)
	if err != nil {
		return nil, err
	}
	pricing := policies.PricingPolicies{
		Direct:  domainpricing.DirectBooking.WithFee(cfg.ServiceFeeBps).WithSurcharge(cfg.ExtraGuestFee),
		Gateway: domainpricing.GatewayCheckout.WithFee(cfg.GatewayFeeBps).WithSurcharge(cfg.ExtraGuestFee),
	}
	if err := pricing.Validate(); err != nil {
		return nil, fmt.Errorf("pricing policies: %w", err)
	}

	app.auth = &authsvc.Service{
		Users:      store.users,
		Sessions:   store.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.SessionTokens{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	commandBus, queryBus := registerHandlers(store, pricing, payments, images, cfg, logger)
	app.handlers = ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: app.auth, Logger: logger},
		Listing:        ginserver.ListingHandler{Queries: queryBus, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: commandBus, Logger: logger},
		Me:             ginserver.MeHandler{Queries: queryBus, Logger: logger},
		Membership:     ginserver.MembershipHandler{Commands: commandBus, Logger: logger},
		Manager:        ginserver.ManagerHandler{Commands: commandBus, Logger: logger},
		Admin:          ginserver.AdminHandler{Commands: commandBus, Queries: queryBus, Logger: logger},
		Contact:        ginserver.ContactHandler{Commands: commandBus, Logger: logger},
		Reviews:        ginserver.ReviewsHandler{Commands: commandBus, Queries: queryBus, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: app.auth, Logger: logger}.Handle,
	}
	return app, nil
}

func buildMemory(logger *slog.Logger) persistence {
	mem := memory.NewStore()
	projector := &projections.RevenueProjector{Store: memory.NewRevenueStore(), Inbox: memory.NewInbox(), Logger: logger}
	box := memory.NewOutbox(func(ctx context.Context, rec appoutbox.EventRecord) error {
		if err := projector.Project(ctx, rec.ID, rec.Name, rec.Payload); err != nil {
			logger.Warn("revenue projection failed", "event_id", rec.ID, "type", rec.Name, "error", err)
		}
		return nil
	})
	return persistence{
		factory:     memory.Factory{Store: mem},
		users:       mem.Users(),
		sessions:    memory.NewSessionStore(),
		outbox:      box,
		idempotency: memory.NewIdempotencyStore(),
		revenue:     projector,
	}
}

func buildMongo(cfg config.Config, logger *slog.Logger, app *application) (persistence, error) {
	client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return persistence{}, fmt.Errorf("mongo connect: %w", err)
	}
	app.closers = append(app.closers, client.Close)
	app.readiness["mongo"] = client.Ping

	db := client.DB
	box := outbox.NewStore(db)
	projector := &projections.RevenueProjector{
		Store:  mongostore.NewRevenueStore(db),
		Inbox:  inbox.NewStore(db, revenueConsumer),
		Logger: logger,
	}
	events := kafka.CloudEventHandler{Projector: projector}

	worker := &outbox.Worker{
		Store:       box,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      eventSource,
		Backoff:     cfg.RetryBackoff,
	}
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("no kafka brokers configured, projecting outbox events in process")
		worker.Producer = kafka.LocalProducer{Handler: events}
	} else {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, "travelnest-outbox", sarama.NewConfig())
		if err != nil {
			return persistence{}, fmt.Errorf("kafka producer: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
		worker.Producer = producer

		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, sarama.NewConfig(), events, logger)
		if err != nil {
			return persistence{}, fmt.Errorf("kafka consumer: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return consumer.Close() })
		topic := cfg.KafkaTopicPrefix + "booking.events.v1"
		app.background = append(app.background, backgroundTask{
			name: "revenue-consumer",
			run:  func(ctx context.Context) error { return consumer.Run(ctx, []string{topic}) },
		})
	}
	app.background = append(app.background, backgroundTask{name: "outbox-worker", run: worker.Run})

	return persistence{
		factory:     mongostore.NewFactory(db),
		users:       mongostore.NewUserRepository(db),
		sessions:    mongostore.NewSessionStore(db),
		outbox:      box,
		idempotency: mongostore.NewIdempotencyStore(db, cfg.IdempotencyTTL),
		revenue:     projector,
	}, nil
}

func buildPayments(cfg config.Config, logger *slog.Logger) (policies.PaymentsPort, error) {
	if !cfg.UsesRazorpay() {
		logger.Warn("razorpay keys missing, using the sandbox gateway")
		return razorpay.NewSandbox(cfg.SandboxSecret), nil
	}
	client, err := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("razorpay client: %w", err)
	}
	return client, nil
}

func buildImages(cfg config.Config, logger *slog.Logger) (policies.ImageStorage, error) {
	if cfg.S3Endpoint == "" {
		return s3.NoopStore{}, nil
	}
	store, err := s3.NewImageStore(s3.Options{
		Endpoint:      cfg.S3Endpoint,
		UseSSL:        cfg.S3UseSSL,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicEndpoint,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("image store: %w", err)
	}
	return store, nil
}

// accessRules lists which messages need a caller. Keys missing here are public.
func accessRules() middleware.RoleRules {
	manager := []string{string(domainuser.RoleManager), string(domainuser.RoleAdmin)}
	admin := []string{string(domainuser.RoleAdmin)}
	return middleware.RoleRules{
		bookingapp.CreateBookingCommand{}.Key():              {},
		bookingapp.StartCheckoutCommand{}.Key():              {},
		bookingapp.ConfirmCheckoutCommand{}.Key():            {},
		bookingapp.CancelBookingCommand{}.Key():              {},
		membershipapp.StartMembershipCheckoutCommand{}.Key(): {},
		membershipapp.ActivateMembershipCommand{}.Key():      {},
		membershipapp.GetMembershipQuery{}.Key():             {},
		meapp.ListGuestBookingsQuery{}.Key():                 {},
		reviewsapp.SubmitReviewCommand{}.Key():               {},
		reviewsapp.DeleteReviewCommand{}.Key():               {},
		listingapp.CreateListingCommand{}.Key():              manager,
		listingapp.UpdateListingCommand{}.Key():              manager,
		listingapp.DeleteListingCommand{}.Key():              manager,
		listingapp.UploadListingImageCommand{}.Key():         manager,
		adminapp.DashboardQuery{}.Key():                      admin,
		adminapp.ListUsersQuery{}.Key():                      admin,
		contactapp.ListContactMessagesQuery{}.Key():          admin,
		contactapp.UpdateContactStatusCommand{}.Key():        admin,
	}
}

func registerHandlers(store persistence, pricing policies.PricingPolicies, payments policies.PaymentsPort, images policies.ImageStorage, cfg config.Config, logger *slog.Logger) (commands.Bus, queries.Bus) {
	encoder := appoutbox.JSONEventEncoder{}
	ledger := domainmembership.DefaultLedger()
	cancellation := domainbooking.DefaultCancellationPolicy()
	membershipPrice := money.Money{Amount: cfg.MembershipPrice, Currency: money.DefaultCurrency}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler[bookingapp.CreateBookingCommand, *dto.BookingSummary](commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: store.factory,
		Policies:   pricing,
		Outbox:     store.outbox,
		Encoder:    encoder,
	})
	commands.RegisterHandler[bookingapp.StartCheckoutCommand, *dto.CheckoutOrder](commandBus, bookingapp.StartCheckoutCommand{}.Key(), &bookingapp.StartCheckoutHandler{
		UoWFactory: store.factory,
		Policies:   pricing,
		Payments:   payments,
	})
	commands.RegisterHandler[bookingapp.ConfirmCheckoutCommand, *dto.BookingSummary](commandBus, bookingapp.ConfirmCheckoutCommand{}.Key(), &bookingapp.ConfirmCheckoutHandler{
		UoWFactory: store.factory,
		Policies:   pricing,
		Payments:   payments,
		Outbox:     store.outbox,
		Encoder:    encoder,
	})
	commands.RegisterHandler[bookingapp.CancelBookingCommand, *dto.CancellationResult](commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: store.factory,
		Policy:     cancellation,
		Outbox:     store.outbox,
		Encoder:    encoder,
		Logger:     logger,
	})
	commands.RegisterHandler[membershipapp.StartMembershipCheckoutCommand, *dto.CheckoutOrder](commandBus, membershipapp.StartMembershipCheckoutCommand{}.Key(), &membershipapp.StartMembershipCheckoutHandler{
		UoWFactory: store.factory,
		Payments:   payments,
		Price:      membershipPrice,
	})
	commands.RegisterHandler[membershipapp.ActivateMembershipCommand, *dto.MembershipStatus](commandBus, membershipapp.ActivateMembershipCommand{}.Key(), &membershipapp.ActivateMembershipHandler{
		UoWFactory: store.factory,
		Payments:   payments,
		Price:      membershipPrice,
		Ledger:     ledger,
		Outbox:     store.outbox,
		Encoder:    encoder,
		Logger:     logger,
	})
	commands.RegisterHandler[listingapp.CreateListingCommand, *dto.ListingDetail](commandBus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{
		Outbox: store.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[listingapp.UpdateListingCommand, *dto.ListingDetail](commandBus, listingapp.UpdateListingCommand{}.Key(), &listingapp.UpdateListingHandler{
		Outbox: store.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[listingapp.DeleteListingCommand, *struct{}](commandBus, listingapp.DeleteListingCommand{}.Key(), &listingapp.DeleteListingHandler{
		Images: images, Outbox: store.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[listingapp.UploadListingImageCommand, *dto.ListingImageUploadResult](commandBus, listingapp.UploadListingImageCommand{}.Key(), &listingapp.UploadListingImageHandler{
		Images: images, Outbox: store.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[contactapp.SubmitContactMessageCommand, *dto.ContactMessage](commandBus, contactapp.SubmitContactMessageCommand{}.Key(), &contactapp.SubmitContactMessageHandler{Logger: logger})
	commands.RegisterHandler[contactapp.UpdateContactStatusCommand, *dto.ContactMessage](commandBus, contactapp.UpdateContactStatusCommand{}.Key(), &contactapp.UpdateContactStatusHandler{})
	commands.RegisterHandler[reviewsapp.SubmitReviewCommand, dto.Review](commandBus, reviewsapp.SubmitReviewCommand{}.Key(), &reviewsapp.SubmitReviewHandler{
		UoWFactory: store.factory, Outbox: store.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[reviewsapp.DeleteReviewCommand, *struct{}](commandBus, reviewsapp.DeleteReviewCommand{}.Key(), &reviewsapp.DeleteReviewHandler{
		UoWFactory: store.factory, Outbox: store.outbox, Encoder: encoder, Logger: logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[bookingapp.QuoteStayQuery, dto.Quote](queryBus, bookingapp.QuoteStayQuery{}.Key(), &bookingapp.QuoteStayHandler{UoWFactory: store.factory, Policies: pricing})
	queries.RegisterHandler[membershipapp.GetMembershipQuery, dto.MembershipStatus](queryBus, membershipapp.GetMembershipQuery{}.Key(), &membershipapp.GetMembershipHandler{UoWFactory: store.factory, Ledger: ledger})
	queries.RegisterHandler[listingapp.ListCatalogQuery, dto.ListingCatalog](queryBus, listingapp.ListCatalogQuery{}.Key(), &listingapp.ListCatalogHandler{UoWFactory: store.factory})
	queries.RegisterHandler[listingapp.GetListingQuery, dto.ListingDetail](queryBus, listingapp.GetListingQuery{}.Key(), &listingapp.GetListingHandler{UoWFactory: store.factory})
	queries.RegisterHandler[meapp.ListGuestBookingsQuery, dto.GuestBookingCollection](queryBus, meapp.ListGuestBookingsQuery{}.Key(), &meapp.ListGuestBookingsHandler{UoWFactory: store.factory, Logger: logger})
	queries.RegisterHandler[adminapp.DashboardQuery, dto.Dashboard](queryBus, adminapp.DashboardQuery{}.Key(), &adminapp.DashboardHandler{
		UoWFactory: store.factory,
		Revenue:    store.revenue,
		Ledger:     ledger,
		Logger:     logger,
	})
	queries.RegisterHandler[adminapp.ListUsersQuery, dto.UserList](queryBus, adminapp.ListUsersQuery{}.Key(), &adminapp.ListUsersHandler{UoWFactory: store.factory})
	queries.RegisterHandler[contactapp.ListContactMessagesQuery, dto.ContactMessageList](queryBus, contactapp.ListContactMessagesQuery{}.Key(), &contactapp.ListContactMessagesHandler{UoWFactory: store.factory})
	queries.RegisterHandler[reviewsapp.ListListingReviewsQuery, dto.ReviewCollection](queryBus, reviewsapp.ListListingReviewsQuery{}.Key(), &reviewsapp.ListListingReviewsHandler{UoWFactory: store.factory, Logger: logger})

	validator := validation.New()
	rules := accessRules()
	chainedCommands := middleware.ChainCommands(
		commandBus,
		middleware.Authorization(rules),
		middleware.Idempotency(store.idempotency, nil),
		middleware.Validation(validator),
		middleware.OutboxFlush(store.outbox),
		middleware.Transaction(store.factory, middleware.WithoutTransaction(
			bookingapp.StartCheckoutCommand{}.Key(),
			bookingapp.ConfirmCheckoutCommand{}.Key(),
			membershipapp.StartMembershipCheckoutCommand{}.Key(),
			membershipapp.ActivateMembershipCommand{}.Key(),
		)),
	)
	chainedQueries := middleware.ChainQueries(
		queryBus,
		middleware.QueryAuthorization(rules),
		middleware.QueryValidation(validator),
	)
	return chainedCommands, chainedQueries
}
