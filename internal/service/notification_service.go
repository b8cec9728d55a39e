package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/subscriptio/subscriptio/internal/finance"
	"github.com/subscriptio/subscriptio/internal/models"
	"github.com/subscriptio/subscriptio/internal/storage"
)

// NotificationService maintains renewal reminders derived from subscriptions
// that are about to renew.
type NotificationService struct {
	store storage.Store
}

// NewNotificationService creates a new notification service.
func NewNotificationService(store storage.Store) *NotificationService {
	return &NotificationService{store: store}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, userID)
}

// MarkRead flags one of the user's notifications as seen.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	notifications, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		return err
	}
	for _, n := range notifications {
		if n.ID == id {
			return s.store.MarkNotificationRead(ctx, id)
		}
	}
	return fmt.Errorf("notification %s: %w", id, storage.ErrNotFound)
}

// Refresh regenerates renewal reminders from the subscriptions expiring
// within the user's configured threshold. Reminders already marked read for
// a subscription that still expires are recreated unread; the renewal moved
// closer, so it is worth surfacing again.
func (s *NotificationService) Refresh(ctx context.Context, userID string, now time.Time) ([]models.Notification, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}

	expiring := finance.ExpiringSubscriptions(subs, settings.ExpiringDays, now)

	var created []models.Notification
	for _, e := range expiring {
		if err := s.store.DeleteNotificationsForSubscription(ctx, userID, e.ID); err != nil {
			return nil, err
		}
		n := &models.Notification{
			UserID:         userID,
			SubscriptionID: e.ID,
			Message:        renewalMessage(e),
		}
		if err := s.store.CreateNotification(ctx, n); err != nil {
			return nil, err
		}
		created = append(created, *n)
	}

	slog.Info("Notifications refreshed", "user_id", userID, "created", len(created))
	return created, nil
}

func renewalMessage(e finance.ExpiringSubscription) string {
	switch e.DaysUntilRenewal {
	case 0:
		return fmt.Sprintf("%s renews today", e.Name)
	case 1:
		return fmt.Sprintf("%s renews tomorrow", e.Name)
	default:
		return fmt.Sprintf("%s renews in %d days", e.Name, e.DaysUntilRenewal)
	}
}
