package services

import (
	"context"
	"fmt"

	"github.com/skillsmatch/apiserver/types"
)

// NotificationRepository defines read/ack operations on stored
// notifications. Creation goes through the Notifier, not this service.
type NotificationRepository interface {
	Get(ctx context.Context, id int) (types.Notification, error)
	ListByRecipient(ctx context.Context, recipientID int, unreadOnly bool, offset, limit int) ([]types.Notification, int, error)
	MarkRead(ctx context.Context, id int) error
	MarkAllRead(ctx context.Context, recipientID int) error
	Deactivate(ctx context.Context, id int) error
	CountUnread(ctx context.Context, recipientID int) (int, error)
}

// NotificationService encapsulates a user's notification inbox.
type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// ListMine returns a page of the caller's notifications.
func (s *NotificationService) ListMine(ctx context.Context, actor types.User, unreadOnly bool, offset, limit int) ([]types.Notification, int, error) {
	return s.repo.ListByRecipient(ctx, actor.ID, unreadOnly, offset, limit)
}

// MarkRead acknowledges one of the caller's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, actor types.User, id int) error {
	if err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead acknowledges every unread notification of the caller.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor types.User) error {
	return s.repo.MarkAllRead(ctx, actor.ID)
}

// Delete soft-deletes one of the caller's notifications.
func (s *NotificationService) Delete(ctx context.Context, actor types.User, id int) error {
	if err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, id)
}

// UnreadCount returns the caller's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, actor types.User) (int, error) {
	return s.repo.CountUnread(ctx, actor.ID)
}

func (s *NotificationService) authorize(ctx context.Context, actor types.User, id int) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != actor.ID {
		return fmt.Errorf("notification %d belongs to another user: %w", id, ErrForbidden)
	}
	return nil
}
