package services

import (
	"context"
	"errors"
	"testing"

	"github.com/skillsmatch/apiserver/internal/store"
	"github.com/skillsmatch/apiserver/types"
)

// stubNotificationRepo is an in-memory NotificationRepository.
type stubNotificationRepo struct {
	notifications map[int]types.Notification
	nextID        int
}

func newStubNotificationRepo() *stubNotificationRepo {
	return &stubNotificationRepo{notifications: map[int]types.Notification{}, nextID: 1}
}

func (r *stubNotificationRepo) add(n types.Notification) types.Notification {
	n.ID = r.nextID
	n.IsActive = true
	r.nextID++
	r.notifications[n.ID] = n
	return n
}

func (r *stubNotificationRepo) Get(_ context.Context, id int) (types.Notification, error) {
	n, ok := r.notifications[id]
	if !ok || !n.IsActive {
		return types.Notification{}, store.ErrNotFound
	}
	return n, nil
}

func (r *stubNotificationRepo) ListByRecipient(_ context.Context, recipientID int, unreadOnly bool, offset, limit int) ([]types.Notification, int, error) {
	var out []types.Notification
	for _, n := range r.notifications {
		if n.RecipientID != recipientID || !n.IsActive {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id int) error {
	n, ok := r.notifications[id]
	if !ok {
		return store.ErrNotFound
	}
	n.IsRead = true
	r.notifications[id] = n
	return nil
}

func (r *stubNotificationRepo) MarkAllRead(_ context.Context, recipientID int) error {
	for id, n := range r.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
			r.notifications[id] = n
		}
	}
	return nil
}

func (r *stubNotificationRepo) Deactivate(_ context.Context, id int) error {
	n, ok := r.notifications[id]
	if !ok {
		return store.ErrNotFound
	}
	n.IsActive = false
	r.notifications[id] = n
	return nil
}

func (r *stubNotificationRepo) CountUnread(_ context.Context, recipientID int) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && n.IsActive && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func TestNotificationInbox(t *testing.T) {
	repo := newStubNotificationRepo()
	svc := NewNotificationService(repo)

	mine := repo.add(types.Notification{RecipientID: testApplicant.ID, Type: types.NotifyStatusChanged})
	repo.add(types.Notification{RecipientID: testApplicant.ID, Type: types.NotifyInterviewScheduled})
	theirs := repo.add(types.Notification{RecipientID: testRecruiter.ID, Type: types.NotifyApplicationReceived})

	items, total, err := svc.ListMine(context.Background(), testApplicant, false, 0, 20)
	if err != nil || total != 2 || len(items) != 2 {
		t.Fatalf("list failed: %v (%d items, total %d)", err, len(items), total)
	}

	count, err := svc.UnreadCount(context.Background(), testApplicant)
	if err != nil || count != 2 {
		t.Fatalf("unread count = %d (%v), want 2", count, err)
	}

	if err := svc.MarkRead(context.Background(), testApplicant, theirs.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for another user's notification, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), testApplicant, mine.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if count, _ = svc.UnreadCount(context.Background(), testApplicant); count != 1 {
		t.Fatalf("unread count after read = %d, want 1", count)
	}

	if err := svc.MarkAllRead(context.Background(), testApplicant); err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	if count, _ = svc.UnreadCount(context.Background(), testApplicant); count != 0 {
		t.Fatalf("unread count after read-all = %d, want 0", count)
	}

	if err := svc.Delete(context.Background(), testApplicant, theirs.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden deleting another user's notification, got %v", err)
	}
	if err := svc.Delete(context.Background(), testApplicant, mine.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, _, err := svc.ListMine(context.Background(), testApplicant, false, 0, 20); err != nil {
		t.Fatalf("list after delete failed: %v", err)
	}
	if _, total, _ := svc.ListMine(context.Background(), testApplicant, false, 0, 20); total != 1 {
		t.Fatalf("soft-deleted notification still listed: total %d", total)
	}
}
