package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/greenleaf/plant-store-api/internal/mailer"
	"github.com/greenleaf/plant-store-api/internal/model"
	"github.com/greenleaf/plant-store-api/internal/repository"
)

const idempotencyTTL = 24 * time.Hour

// NotificationWorker consumes mail events and dispatches them to the Mailer.
// Delivery is at-least-once; a Redis idempotency key suppresses duplicates.
type NotificationWorker struct {
	channel     *amqp.Channel
	orderRepo   repository.OrderRepository
	mail        mailer.Mailer
	redisClient *redis.Client
	log         *slog.Logger
	done        chan struct{}
}

func NewNotificationWorker(
	ch *amqp.Channel,
	orderRepo repository.OrderRepository,
	mail mailer.Mailer,
	redisClient *redis.Client,
	log *slog.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		channel:     ch,
		orderRepo:   orderRepo,
		mail:        mail,
		redisClient: redisClient,
		log:         log,
		done:        make(chan struct{}),
	}
}

func (w *NotificationWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(mailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("notification worker started")
	return nil
}

func (w *NotificationWorker) Stop() { close(w.done) }

func (w *NotificationWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var mail model.MailMessage
	if err := json.Unmarshal(msg.Body, &mail); err != nil {
		w.log.Error("unmarshal mail message", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("mail_id", mail.ID, "kind", mail.Kind, "to", mail.Email)

	idempotencyKey := "mail_sent:" + mail.ID.String()
	exists, err := w.redisClient.Exists(ctx, idempotencyKey).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("mail already sent, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.dispatch(ctx, mail); err != nil {
		log.Error("dispatch mail failed", "error", err)
		_ = msg.Nack(false, false) // to DLQ
		return
	}

	if err := w.redisClient.Set(ctx, idempotencyKey, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("mail dispatched")
}

func (w *NotificationWorker) dispatch(ctx context.Context, mail model.MailMessage) error {
	switch mail.Kind {
	case model.MailOrderConfirmation:
		if mail.OrderID == nil {
			return fmt.Errorf("order confirmation without order id")
		}
		order, err := w.orderRepo.GetByID(ctx, *mail.OrderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if order == nil {
			return fmt.Errorf("order not found: %s", *mail.OrderID)
		}
		return w.mail.SendOrderConfirmation(ctx, mail.Email, mail.FirstName, order)
	case model.MailEmailVerification:
		return w.mail.SendVerificationEmail(ctx, mail.Email, mail.FirstName, mail.Token)
	case model.MailWelcome:
		return w.mail.SendWelcomeEmail(ctx, mail.Email, mail.FirstName)
	default:
		return fmt.Errorf("unknown mail kind: %s", mail.Kind)
	}
}
