// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/subscriptio/subscriptio/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence operations the services rely on.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateSubscription persists a new subscription. The ID and timestamps
	// are populated by the store when unset.
	CreateSubscription(ctx context.Context, sub *models.Subscription) error

	// GetSubscription retrieves a subscription by ID, including its
	// recurrence descriptor and participant shares.
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)

	// ListSubscriptions returns all subscriptions owned by the user,
	// most recently updated first.
	ListSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error)

	// UpdateSubscription overwrites an existing subscription in place.
	// Edits are not versioned.
	UpdateSubscription(ctx context.Context, sub *models.Subscription) error

	// DeleteSubscription removes a subscription and its participant shares.
	// Recorded payments are deliberately left in place (orphaned payments
	// remain unless deleted separately).
	DeleteSubscription(ctx context.Context, id string) error

	// CreatePayment persists a payment and its splits.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// GetPayment retrieves a payment by ID, including its splits.
	GetPayment(ctx context.Context, id string) (*models.Payment, error)

	// ListPayments returns all payments, ordered by due date ascending.
	ListPayments(ctx context.Context) ([]models.Payment, error)

	// ListPaymentsBySubscription returns the payments belonging to one
	// subscription, ordered by due date ascending.
	ListPaymentsBySubscription(ctx context.Context, subscriptionID string) ([]models.Payment, error)

	// UpdatePayment overwrites an existing payment and replaces its splits.
	UpdatePayment(ctx context.Context, payment *models.Payment) error

	// DeletePayment removes a payment and its splits.
	DeletePayment(ctx context.Context, id string) error

	// CreatePerson persists a new person.
	CreatePerson(ctx context.Context, person *models.Person) error

	// GetPerson retrieves a person by ID.
	GetPerson(ctx context.Context, id string) (*models.Person, error)

	// ListPeople returns all people owned by the user, sorted by name.
	ListPeople(ctx context.Context, userID string) ([]models.Person, error)

	// UpdatePerson overwrites an existing person.
	UpdatePerson(ctx context.Context, person *models.Person) error

	// DeletePerson removes a person.
	DeletePerson(ctx context.Context, id string) error

	// CreateUser persists a new account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves an account by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves an account by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetSettings returns the user's settings, or defaults when none are
	// stored yet.
	GetSettings(ctx context.Context, userID string) (*models.Settings, error)

	// PutSettings inserts or replaces the user's settings.
	PutSettings(ctx context.Context, settings *models.Settings) error

	// CreateNotification persists a renewal reminder.
	CreateNotification(ctx context.Context, n *models.Notification) error

	// ListNotifications returns the user's notifications, newest first.
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)

	// MarkNotificationRead flags a notification as seen.
	MarkNotificationRead(ctx context.Context, id string) error

	// DeleteNotificationsForSubscription removes pending reminders for a
	// subscription, used before regenerating them.
	DeleteNotificationsForSubscription(ctx context.Context, userID, subscriptionID string) error

	// Close releases any resources held by the store.
	Close() error
}
