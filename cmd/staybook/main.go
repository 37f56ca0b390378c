package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"staybook/internal/app/commands"
	appbooking "staybook/internal/app/handlers/booking"
	applistings "staybook/internal/app/handlers/listings"
	apppayments "staybook/internal/app/handlers/payments"
	appreviews "staybook/internal/app/handlers/reviews"
	"staybook/internal/app/middleware"
	"staybook/internal/app/queries"
	authsvc "staybook/internal/app/services/auth"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	"staybook/internal/infra/gateway/chapa"
	"staybook/internal/infra/http/rest"
	"staybook/internal/infra/notify"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/security"
	redisstore "staybook/internal/infra/storage/redis"
	"staybook/internal/infra/storage/s3"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Error("mongo connect failed", "err", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.Mongo.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		logger.Error("index creation failed", "err", err)
		os.Exit(1)
	}

	factory := mongodb.NewFactory(mongoClient, cfg.Mongo.Database)
	outboxStore := mongodb.NewOutboxStore(db)
	idempotencyStore := mongodb.NewIdempotencyStore(db)

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	sessions := redisstore.NewSessionStore(redisClient)

	photos, err := s3.NewPhotoStore(cfg.S3)
	if err != nil {
		logger.Error("object storage init failed", "err", err)
		os.Exit(1)
	}
	if err := photos.EnsureBucket(ctx); err != nil {
		logger.Warn("bucket check failed, uploads may not work", "err", err)
	}

	gateway := chapa.NewClient(cfg.Chapa.BaseURL, cfg.Chapa.SecretKey, cfg.Chapa.Timeout)

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		logger.Error("kafka producer init failed", "err", err)
		os.Exit(1)
	}
	defer producer.Close()

	worker := &infraoutbox.Worker{
		Store:        outboxStore,
		Publisher:    producer,
		Logger:       logger,
		Source:       "staybook",
		TopicPrefix:  cfg.Kafka.TopicPrefix,
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
	}
	go worker.Run(ctx)

	mailHandler := &notify.Handler{
		Notifier: notify.NewSMTPMailer(cfg.SMTP),
		Logger:   logger,
	}
	consumer, err := kafka.NewConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.GroupID,
		[]string{worker.TopicFor("payments.completed")},
		mailHandler.Handle,
		logger,
	)
	if err != nil {
		logger.Error("kafka consumer init failed", "err", err)
		os.Exit(1)
	}
	defer consumer.Close()
	go consumer.Run(ctx)

	cmdBase := commands.NewInMemoryBus()
	commands.RegisterHandler(cmdBase, applistings.CreateListingCommand{}.Key(),
		&applistings.CreateListingHandler{UoWFactory: factory, Outbox: outboxStore})
	commands.RegisterHandler(cmdBase, applistings.UpdateListingCommand{}.Key(),
		&applistings.UpdateListingHandler{UoWFactory: factory, Outbox: outboxStore})
	commands.RegisterHandler(cmdBase, applistings.AttachPhotoCommand{}.Key(),
		&applistings.AttachPhotoHandler{UoWFactory: factory, Photos: photos})
	commands.RegisterHandler(cmdBase, appbooking.RequestBookingCommand{}.Key(),
		&appbooking.RequestBookingHandler{UoWFactory: factory, Outbox: outboxStore})
	commands.RegisterHandler(cmdBase, appbooking.CancelBookingCommand{}.Key(),
		&appbooking.CancelBookingHandler{UoWFactory: factory, Outbox: outboxStore})
	commands.RegisterHandler(cmdBase, apppayments.InitiatePaymentCommand{}.Key(),
		&apppayments.InitiatePaymentHandler{UoWFactory: factory, Gateway: gateway, Outbox: outboxStore})
	commands.RegisterHandler(cmdBase, apppayments.VerifyPaymentCommand{}.Key(),
		&apppayments.VerifyPaymentHandler{UoWFactory: factory, Gateway: gateway, Outbox: outboxStore})
	commands.RegisterHandler(cmdBase, appreviews.SubmitReviewCommand{}.Key(),
		&appreviews.SubmitReviewHandler{UoWFactory: factory, Outbox: outboxStore})
	cmdBus := middleware.ChainCommands(cmdBase,
		middleware.Idempotency(idempotencyStore, nil, appbooking.ReplayableErrors()))

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, applistings.GetListingQuery{}.Key(),
		&applistings.GetListingHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, applistings.ListListingsQuery{}.Key(),
		&applistings.ListListingsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, appbooking.GuestBookingsQuery{}.Key(),
		&appbooking.GuestBookingsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, apppayments.BookingPaymentsQuery{}.Key(),
		&apppayments.BookingPaymentsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, appreviews.ListReviewsQuery{}.Key(),
		&appreviews.ListReviewsHandler{UoWFactory: factory})

	authService := &authsvc.Service{
		UoWFactory: factory,
		Sessions:   sessions,
		Hasher:     security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
	}

	server := &rest.Server{
		Logger:        logger,
		Commands:      cmdBus,
		Queries:       queryBus,
		Auth:          authService,
		Currency:      cfg.Currency,
		PublicBaseURL: cfg.PublicBaseURL,
		Ready: map[string]obs.ReadinessCheck{
			"mongo": func(ctx context.Context) error {
				return mongoClient.Ping(ctx, readpref.Primary())
			},
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(cfg.Env),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "err", err)
	}
}
