package services

import (
	"context"

	"github.com/skillsmatch/apiserver/types"
)

// Notifier delivers a notification as a side effect of a domain
// operation. Implementations persist and dispatch best-effort: Send
// never returns an error and must not block the calling operation on
// delivery failures.
type Notifier interface {
	Send(ctx context.Context, n types.Notification)
}

// NopNotifier discards notifications. Used when no broker is configured
// and as a default in tests.
type NopNotifier struct{}

func (NopNotifier) Send(context.Context, types.Notification) {}
