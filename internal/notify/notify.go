// Package notify persists notifications and publishes them on the
// message broker. Delivery is best-effort: failures are logged and
// never surfaced to the domain operation that produced the event.
package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/skillsmatch/apiserver/internal/mq"
	"github.com/skillsmatch/apiserver/types"
)

// Repository persists notification rows.
type Repository interface {
	Create(ctx context.Context, n types.Notification) (types.Notification, error)
}

// Dispatcher stores each notification and fans it out on the broker.
// The broker is optional; without one, notifications are still
// persisted and readable through the inbox endpoints.
type Dispatcher struct {
	repo    Repository
	broker  *mq.MQ
	channel string
	log     *zap.Logger
}

func NewDispatcher(repo Repository, broker *mq.MQ, channel string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, broker: broker, channel: channel, log: log}
}

// Send persists the notification and publishes the stored row as a
// JSON event. Neither step may fail the caller.
func (d *Dispatcher) Send(ctx context.Context, n types.Notification) {
	stored, err := d.repo.Create(ctx, n)
	if err != nil {
		d.log.Warn("notification persist failed",
			zap.Int("recipient_id", n.RecipientID),
			zap.String("type", n.Type),
			zap.Error(err))
		return
	}

	if d.broker == nil {
		return
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		d.log.Warn("notification encode failed", zap.Int("notification_id", stored.ID), zap.Error(err))
		return
	}
	attrs := map[string]string{"type": stored.Type}
	if _, err := d.broker.Publish(ctx, d.channel, payload, attrs); err != nil {
		d.log.Warn("notification publish failed",
			zap.Int("notification_id", stored.ID),
			zap.String("channel", d.channel),
			zap.Error(err))
	}
}
