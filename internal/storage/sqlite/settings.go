package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/subscriptio/subscriptio/internal/models"
	"github.com/subscriptio/subscriptio/internal/storage"
)

// GetSettings returns the user's settings, falling back to defaults when
// nothing has been stored yet.
func (s *SQLiteStore) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, currency, forecast_months, expiring_days
		FROM settings WHERE user_id = ?`, userID).
		Scan(&settings.UserID, &settings.Currency, &settings.ForecastMonths, &settings.ExpiringDays)
	if err == sql.ErrNoRows {
		return models.DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

// PutSettings inserts or replaces the user's settings.
func (s *SQLiteStore) PutSettings(ctx context.Context, settings *models.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, currency, forecast_months, expiring_days)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			currency = excluded.currency,
			forecast_months = excluded.forecast_months,
			expiring_days = excluded.expiring_days`,
		settings.UserID, settings.Currency, settings.ForecastMonths, settings.ExpiringDays)
	if err != nil {
		return fmt.Errorf("failed to put settings: %w", err)
	}
	return nil
}

// CreateNotification persists a renewal reminder.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, subscription_id, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.SubscriptionID, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the user's notifications, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, subscription_id, message, read, created_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.SubscriptionID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification as seen.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// DeleteNotificationsForSubscription removes a subscription's reminders before
// they are regenerated.
func (s *SQLiteStore) DeleteNotificationsForSubscription(ctx context.Context, userID, subscriptionID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE user_id = ? AND subscription_id = ?",
		userID, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	return nil
}
