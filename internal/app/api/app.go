// Package api assembles the HTTP application: storage, cache, broker,
// external clients, services and the router.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/techcfa/cfa-backend/internal/cache"
	"github.com/techcfa/cfa-backend/internal/config"
	"github.com/techcfa/cfa-backend/internal/lib/jwt"
	"github.com/techcfa/cfa-backend/internal/lib/rabbitmq"
	"github.com/techcfa/cfa-backend/internal/lib/smtp"
	"github.com/techcfa/cfa-backend/internal/metrics"
	"github.com/techcfa/cfa-backend/internal/migrations"
	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/razorpay"
	"github.com/techcfa/cfa-backend/internal/services/auth"
	"github.com/techcfa/cfa-backend/internal/services/sender"
	"github.com/techcfa/cfa-backend/internal/services/subscription"
	"github.com/techcfa/cfa-backend/internal/sheets"
	"github.com/techcfa/cfa-backend/internal/storage"
	"github.com/techcfa/cfa-backend/internal/twilio"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// broadcaster publishes media announcements to the notification
// exchange for the notifier worker.
type broadcaster struct {
	ch *amqp.Channel
}

func (b *broadcaster) PublishBroadcast(event models.BroadcastEvent) error {
	return rabbitmq.PublishMessage(b.ch, rabbitmq.Exchange, rabbitmq.BroadcastRoutingKey, event)
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := sender.New(transport, logger)
	smsClient := twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	ordersClient := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	sheetsClient := sheets.NewClient(cfg.SheetsToken)

	authService := auth.New(db, db, jwtMaker, senderService, smsClient, logger)
	subscriptionService := subscription.New(
		db, ordersClient, cacheRedis, sheetsClient,
		cfg.RazorpayKeySecret, cfg.SpreadsheetID,
		cfg.FreeUserLimit, cfg.PlansCacheTTL, logger,
	)

	metrics.MustRegister()

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, Deps{
		DB:           db,
		JWTMaker:     jwtMaker,
		Auth:         authService,
		Subscription: subscriptionService,
		Broadcaster:  &broadcaster{ch: ch},
		Sheets:       sheetsClient,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", slog.Any("err", err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", slog.Any("err", err))
	}
}
