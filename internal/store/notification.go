package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/skillsmatch/apiserver/types"
)

// NotificationRepository handles persistence for notifications.
type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `
	id, recipient_id, type, message, related_job_id,
	related_application_id, related_interview_id, priority, action_url,
	is_read, is_active, created_at`

func scanNotification(row interface{ Scan(...any) error }) (types.Notification, error) {
	var n types.Notification
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.Type,
		&n.Message,
		&n.RelatedJobID,
		&n.RelatedApplicationID,
		&n.RelatedInterviewID,
		&n.Priority,
		&n.ActionURL,
		&n.IsRead,
		&n.IsActive,
		&n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Notification{}, ErrNotFound
		}
		return types.Notification{}, err
	}
	return n, nil
}

func (r *NotificationRepository) Get(ctx context.Context, id int) (types.Notification, error) {
	const query = `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	return scanNotification(r.db.QueryRowContext(ctx, query, id))
}

func (r *NotificationRepository) Create(ctx context.Context, n types.Notification) (types.Notification, error) {
	n.CreatedAt = time.Now()
	if n.Priority == "" {
		n.Priority = "normal"
	}

	const query = `
		INSERT INTO notifications (
			recipient_id, type, message, related_job_id,
			related_application_id, related_interview_id, priority,
			action_url, is_read, is_active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, TRUE, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		n.RecipientID,
		n.Type,
		n.Message,
		n.RelatedJobID,
		n.RelatedApplicationID,
		n.RelatedInterviewID,
		n.Priority,
		n.ActionURL,
		n.CreatedAt,
	).Scan(&n.ID); err != nil {
		return types.Notification{}, err
	}
	n.IsActive = true
	return n, nil
}

// ListByRecipient returns active notifications for a user, newest
// first, optionally only unread.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int, unreadOnly bool, offset, limit int) ([]types.Notification, int, error) {
	where := `recipient_id = $1 AND is_active = TRUE`
	if unreadOnly {
		where += ` AND is_read = FALSE`
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM notifications WHERE `+where, recipientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE ` + where + `
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, recipientID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := make([]types.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int) error {
	const query = `UPDATE notifications SET is_read = TRUE WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int) error {
	const query = `
		UPDATE notifications
		SET is_read = TRUE
		WHERE recipient_id = $1 AND is_read = FALSE`
	_, err := r.db.ExecContext(ctx, query, recipientID)
	return err
}

// Deactivate soft-deletes a notification.
func (r *NotificationRepository) Deactivate(ctx context.Context, id int) error {
	const query = `UPDATE notifications SET is_active = FALSE WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID int) (int, error) {
	const query = `
		SELECT COUNT(1)
		FROM notifications
		WHERE recipient_id = $1 AND is_read = FALSE AND is_active = TRUE`
	var count int
	err := r.db.QueryRowContext(ctx, query, recipientID).Scan(&count)
	return count, err
}

func (r *NotificationRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
