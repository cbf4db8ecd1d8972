package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parleychat/parley/internal/identity/bus"
	"github.com/parleychat/parley/internal/identity/dispatch"
	"github.com/parleychat/parley/internal/identity/notify"
	"github.com/parleychat/parley/internal/identity/service"
	"github.com/parleychat/parley/internal/identity/store"
	"github.com/parleychat/parley/internal/identity/store/drivers/sqlite"
	"github.com/parleychat/parley/pkg/cryptox"
	"github.com/parleychat/parley/pkg/jwtx"
	"github.com/parleychat/parley/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "dev"

// Application wires the identity service together: store, token signer,
// services, dispatcher, outbox and the Kafka consumer loop.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	registrationService *service.RegistrationService
	confirmationService *service.ConfirmationService
	tokenService        *service.TokenService
	directoryService    *service.DirectoryService

	dispatcher *dispatch.Dispatcher
	outbox     *notify.Outbox
	responder  *bus.Responder
	consumer   *bus.Consumer
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("IDENTITY_JWT_SECRET is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("IDENTITY_KAFKA_BROKERS is required")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "identity-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initNotification(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initBus()

	return app, nil
}

// Run starts the outbox worker and the consumer loop and blocks until a
// shutdown signal arrives or the consumer dies.
func (app *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.outbox.Start(ctx)
	app.logger.Info("identity service starting",
		"version", BuildVersion,
		"requests_topic", app.cfg.RequestsTopic,
		"responses_topic", app.cfg.ResponsesTopic,
	)

	consumerErrors := make(chan error, 1)
	go func() {
		consumerErrors <- app.consumer.Run(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-consumerErrors:
		if err != nil {
			app.shutdown(cancel, nil)
			return fmt.Errorf("consumer failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		app.shutdown(cancel, consumerErrors)
	}

	return nil
}

// shutdown tears the application down back to front. consumerErrors,
// when non-nil, is waited on so the in-flight command finishes before
// the outbox it may still enqueue into is stopped.
func (app *Application) shutdown(cancel context.CancelFunc, consumerErrors <-chan error) {
	app.logger.Info("shutting down identity service...")

	done := make(chan struct{})
	go func() {
		defer close(done)

		// Closing the reader unblocks a pending fetch; cancel catches the rest.
		if err := app.consumer.Close(); err != nil {
			app.logger.Error("error closing consumer", "error", err)
		}
		cancel()

		if consumerErrors != nil {
			if err := <-consumerErrors; err != nil {
				app.logger.Error("consumer exited with error", "error", err)
			}
		}

		app.outbox.Stop()

		if err := app.responder.Close(); err != nil {
			app.logger.Error("error closing responder", "error", err)
		}
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
		}
	}()

	select {
	case <-done:
		app.logger.Info("identity service stopped")
	case <-time.After(app.cfg.ShutdownGracePeriod):
		app.logger.Error("shutdown grace period exceeded, exiting",
			"grace_period", app.cfg.ShutdownGracePeriod)
	}
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initNotification() error {
	var notifier notify.Notifier
	if app.cfg.SMTPHost != "" {
		mailer, err := notify.NewMailer(notify.SMTPConfig{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUser,
			Password: app.cfg.SMTPPassword,
			From:     app.cfg.SMTPFrom,
		})
		if err != nil {
			return err
		}
		notifier = mailer
	} else {
		notifier = &notify.LogNotifier{Logger: app.logger}
	}

	app.outbox = notify.NewOutbox(
		notifier,
		app.logger,
		app.cfg.OutboxSize,
		app.cfg.NotifyRatePerMinute,
	)
	return nil
}

func (app *Application) initServices() {
	hasher := cryptox.NewHasher(app.cfg.Pepper)
	secret := []byte(app.cfg.JWTSecret)

	app.registrationService = &service.RegistrationService{
		Store:      app.db,
		Hasher:     hasher,
		Dispatcher: app.outbox,
		CodeTTL:    app.cfg.ConfirmationTTL,
	}
	app.confirmationService = &service.ConfirmationService{Store: app.db}
	app.tokenService = &service.TokenService{
		Store:      app.db,
		Hasher:     hasher,
		Signer:     jwtx.NewSigner(secret),
		Verifier:   jwtx.NewVerifier(secret, app.cfg.Issuer),
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}
	app.directoryService = &service.DirectoryService{Store: app.db}

	app.dispatcher = &dispatch.Dispatcher{
		Registration: app.registrationService,
		Confirmation: app.confirmationService,
		Tokens:       app.tokenService,
		Directory:    app.directoryService,
	}
}

func (app *Application) initBus() {
	app.responder = bus.NewResponder(app.cfg.Brokers, app.cfg.ResponsesTopic)
	app.consumer = bus.NewConsumer(
		app.cfg.Brokers,
		app.cfg.RequestsTopic,
		app.cfg.GroupID,
		app.dispatcher,
		app.responder,
		app.logger,
	)
}
