// Package notifier consumes broadcast events from the queue and mails
// every active subscriber.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/techcfa/cfa-backend/internal/config"
	"github.com/techcfa/cfa-backend/internal/lib/rabbitmq"
	"github.com/techcfa/cfa-backend/internal/lib/smtp"
	"github.com/techcfa/cfa-backend/internal/models"
	senderservice "github.com/techcfa/cfa-backend/internal/services/sender"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	db     *storage.Storage
	sender *senderservice.Service
	logger *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
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

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.New(transport, logger)

	return &App{
		conn:   conn,
		ch:     ch,
		db:     db,
		sender: senderService,
		logger: logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.BroadcastQueue, a.handleBroadcast(ctx))
	if err != nil {
		a.logger.Error("failed to start broadcast consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", slog.Any("err", err))
	}
	return nil
}

// handleBroadcast decodes one queued event and fans it out by mail.
// A failure is returned so the delivery is nacked and retried.
func (a *App) handleBroadcast(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		const op = "notifier.handleBroadcast"

		var event models.BroadcastEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		emails, err := a.db.ListActiveSubscriberEmails(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if len(emails) == 0 {
			a.logger.Info("no active subscribers to notify",
				slog.String("media_id", event.MediaID))
			return nil
		}

		if err := a.sender.SendAnnouncement(emails, event.Title, event.Description); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		a.logger.Info("broadcast delivered",
			slog.String("media_id", event.MediaID),
			slog.Int("recipients", len(emails)))
		return nil
	}
}
