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

// SubscriptionService owns the subscription lifecycle and the reports built
// on top of it.
type SubscriptionService struct {
	store storage.Store
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(store storage.Store) *SubscriptionService {
	return &SubscriptionService{store: store}
}

func validateSubscription(sub *models.Subscription) error {
	if sub.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if sub.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	if r := sub.Recurrence; r != nil {
		switch r.Kind {
		case models.RecurrenceMonthly, models.RecurrenceAnnual, models.RecurrenceCustom:
		default:
			return fmt.Errorf("%w: unknown recurrence type %q", ErrInvalidInput, r.Kind)
		}
		if r.Interval < 1 {
			return fmt.Errorf("%w: recurrence interval must be at least 1", ErrInvalidInput)
		}
		if r.AnchorDay < 1 || r.AnchorDay > 31 {
			return fmt.Errorf("%w: recurrence day must be between 1 and 31", ErrInvalidInput)
		}
	}
	if sub.Installments < 0 {
		return fmt.Errorf("%w: installments must not be negative", ErrInvalidInput)
	}
	for _, p := range sub.Participants {
		if p.PersonID == "" {
			return fmt.Errorf("%w: participant personId is required", ErrInvalidInput)
		}
		switch p.Kind {
		case models.SharePercent:
			if p.Value < 0 || p.Value > 100 {
				return fmt.Errorf("%w: percent share must be between 0 and 100", ErrInvalidInput)
			}
		case models.ShareFixed:
			if p.Value < 0 {
				return fmt.Errorf("%w: fixed share must not be negative", ErrInvalidInput)
			}
		default:
			return fmt.Errorf("%w: unknown share type %q", ErrInvalidInput, p.Kind)
		}
	}
	return nil
}

// Create validates and persists a new subscription for the user.
func (s *SubscriptionService) Create(ctx context.Context, userID string, sub *models.Subscription) error {
	sub.UserID = userID
	if sub.Status == "" {
		sub.Status = models.StatusActive
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}
	if err := s.store.CreateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	slog.Info("Subscription created", "subscription_id", sub.ID, "name", sub.Name, "user_id", userID)
	return nil
}

// Get returns one of the user's subscriptions.
func (s *SubscriptionService) Get(ctx context.Context, userID, id string) (*models.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, fmt.Errorf("subscription %s: %w", id, ErrForbidden)
	}
	return sub, nil
}

// List returns all of the user's subscriptions.
func (s *SubscriptionService) List(ctx context.Context, userID string) ([]models.Subscription, error) {
	return s.store.ListSubscriptions(ctx, userID)
}

// Update validates and overwrites one of the user's subscriptions.
func (s *SubscriptionService) Update(ctx context.Context, userID string, sub *models.Subscription) error {
	existing, err := s.Get(ctx, userID, sub.ID)
	if err != nil {
		return err
	}
	sub.UserID = userID
	sub.CreatedAt = existing.CreatedAt
	if sub.Status == "" {
		sub.Status = existing.Status
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}
	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}

// Delete removes one of the user's subscriptions along with its reminders.
// Payments already recorded for it are kept.
func (s *SubscriptionService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteSubscription(ctx, id); err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if err := s.store.DeleteNotificationsForSubscription(ctx, userID, id); err != nil {
		slog.Warn("Failed to clear notifications for deleted subscription",
			"subscription_id", id, "error", err)
	}
	slog.Info("Subscription deleted", "subscription_id", id, "user_id", userID)
	return nil
}

// Schedule previews the next payments of a subscription without persisting
// them.
func (s *SubscriptionService) Schedule(ctx context.Context, userID, id string, from time.Time, monthsAhead int) ([]models.Payment, error) {
	sub, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	payments, err := finance.GenerateNextPayments(*sub, from, monthsAhead)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return payments, nil
}

// MaterializeSchedule persists the subscription's upcoming payments, skipping
// due dates that already have one. Returns the payments actually created.
func (s *SubscriptionService) MaterializeSchedule(ctx context.Context, userID, id string, from time.Time, monthsAhead int) ([]models.Payment, error) {
	generated, err := s.Schedule(ctx, userID, id, from, monthsAhead)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.ListPaymentsBySubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.DueDate.Format("2006-01-02")] = true
	}

	var created []models.Payment
	for _, p := range generated {
		if seen[p.DueDate.Format("2006-01-02")] {
			continue
		}
		p.ID = "" // let storage assign a real id
		if err := s.store.CreatePayment(ctx, &p); err != nil {
			return nil, fmt.Errorf("failed to create payment: %w", err)
		}
		created = append(created, p)
	}
	slog.Info("Schedule materialized", "subscription_id", id, "created", len(created))
	return created, nil
}

// Forecast projects the user's total cost over the coming months.
func (s *SubscriptionService) Forecast(ctx context.Context, userID string, months int, now time.Time) ([]finance.ForecastMonth, error) {
	if months <= 0 {
		settings, err := s.store.GetSettings(ctx, userID)
		if err != nil {
			return nil, err
		}
		months = settings.ForecastMonths
	}
	subs, err := s.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return finance.Forecast(subs, months, now), nil
}

// Breakdown aggregates the user's monthly spend per category.
func (s *SubscriptionService) Breakdown(ctx context.Context, userID string) ([]finance.CategoryTotal, error) {
	subs, err := s.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return finance.CategoryBreakdown(subs), nil
}

// Expiring lists the user's subscriptions renewing within the threshold.
func (s *SubscriptionService) Expiring(ctx context.Context, userID string, days int, now time.Time) ([]finance.ExpiringSubscription, error) {
	if days <= 0 {
		settings, err := s.store.GetSettings(ctx, userID)
		if err != nil {
			return nil, err
		}
		days = settings.ExpiringDays
	}
	subs, err := s.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return finance.ExpiringSubscriptions(subs, days, now), nil
}
