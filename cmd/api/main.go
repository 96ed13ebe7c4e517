// @title EventHub API
// @version 1.0
// @description Event registration service: capacity-bounded tickets, check-ins and feedback.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/broker"
	"eventhub/internal/adapters/email"
	httpdelivery "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
	"eventhub/internal/repository/memory"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"
)

const shutdownTimeout = 10 * time.Second

// repositories is the storage backend chosen by STORAGE_DRIVER.
type repositories struct {
	tx       domain.Transactor
	events   domain.EventRepository
	tickets  domain.TicketRepository
	checkins domain.CheckinRepository
	feedback domain.FeedbackRepository
	close    func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			logger.Warn("close storage", "err", err)
		}
	}()

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	ledger := services.NewRegistrationLedger(repos.tx, repos.events, repos.tickets, repos.checkins, repos.feedback, logger)
	eventService := services.NewEventService(ledger, repos.events, repos.tickets, repos.checkins, repos.feedback,
		publisher, logger, cfg.RequestTimeout)
	attendeeService := services.NewAttendeeService(ledger, repos.events, repos.tickets, repos.feedback,
		emailService, publisher, logger, cfg.RequestTimeout)

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty; tokens signed with an empty key will be accepted")
	}
	router := httpdelivery.NewRouter(
		controllers.NewEventController(logger, eventService),
		controllers.NewAttendeeController(logger, attendeeService),
		auth.NewJWTVerifier(cfg.JWTSecret),
		logger,
	)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, router))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Environment, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			tx:       store,
			events:   memory.NewEventRepository(store),
			tickets:  memory.NewTicketRepository(store),
			checkins: memory.NewCheckinRepository(store),
			feedback: memory.NewFeedbackRepository(store),
			close:    func() error { return nil },
		}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := postgres.Open(connectCtx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}
	if cfg.MigrateOnStart {
		if err := postgres.ApplySchema(connectCtx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("schema applied")
	}
	return postgresRepositories(db), nil
}

func postgresRepositories(db *sql.DB) *repositories {
	return &repositories{
		tx:       postgres.NewTxManager(db),
		events:   postgres.NewEventRepository(db),
		tickets:  postgres.NewTicketRepository(db),
		checkins: postgres.NewCheckinRepository(db),
		feedback: postgres.NewFeedbackRepository(db),
		close:    db.Close,
	}
}

// newPublisher connects to RabbitMQ when AMQP_URL is set. A failed connection degrades to a no-op publisher.
func newPublisher(cfg *config.Config, logger *slog.Logger) (domain.TicketEventPublisher, func()) {
	if cfg.AMQPUrl == "" {
		return broker.NewNoopPublisher(logger), func() {}
	}
	p, err := broker.NewAMQPPublisher(cfg.AMQPUrl, cfg.AMQPExchange, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable, ticket events will not be published", "err", err)
		return broker.NewNoopPublisher(logger), func() {}
	}
	return p, func() {
		if err := p.Close(); err != nil {
			logger.Warn("close rabbitmq publisher", "err", err)
		}
	}
}
