package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/subscriptio/subscriptio/internal/finance"
	"github.com/subscriptio/subscriptio/internal/models"
	"github.com/subscriptio/subscriptio/internal/storage"
)

// PaymentService owns recorded payments and their splits.
type PaymentService struct {
	store storage.Store
}

// NewPaymentService creates a new payment service.
func NewPaymentService(store storage.Store) *PaymentService {
	return &PaymentService{store: store}
}

// ownsSubscription reports whether the subscription exists and belongs to the
// user.
func (s *PaymentService) ownsSubscription(ctx context.Context, userID, subscriptionID string) error {
	sub, err := s.store.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub.UserID != userID {
		return fmt.Errorf("subscription %s: %w", subscriptionID, ErrForbidden)
	}
	return nil
}

// subscriptionIDs returns the set of subscription ids owned by the user.
func (s *PaymentService) subscriptionIDs(ctx context.Context, userID string) (map[string]bool, error) {
	subs, err := s.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(subs))
	for _, sub := range subs {
		ids[sub.ID] = true
	}
	return ids, nil
}

// Create validates and records a payment against one of the user's
// subscriptions. Splits may be provided explicitly; otherwise they are
// derived from the subscription's shares when it is shared.
func (s *PaymentService) Create(ctx context.Context, userID string, payment *models.Payment) error {
	if payment.SubscriptionID == "" {
		return fmt.Errorf("%w: subscriptionId is required", ErrInvalidInput)
	}
	if payment.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	if payment.DueDate.IsZero() {
		return fmt.Errorf("%w: dateDue is required", ErrInvalidInput)
	}
	if err := s.ownsSubscription(ctx, userID, payment.SubscriptionID); err != nil {
		return err
	}

	if len(payment.Splits) == 0 {
		sub, err := s.store.GetSubscription(ctx, payment.SubscriptionID)
		if err != nil {
			return err
		}
		if sub.Shared && len(sub.Participants) > 0 {
			payment.Splits = finance.ComputeSplits(sub.Participants, payment.Amount)
		}
	}

	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	slog.Info("Payment recorded", "payment_id", payment.ID,
		"subscription_id", payment.SubscriptionID, "amount", payment.Amount)
	return nil
}

// Get returns one of the user's payments.
func (s *PaymentService) Get(ctx context.Context, userID, id string) (*models.Payment, error) {
	payment, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ownsSubscription(ctx, userID, payment.SubscriptionID); err != nil {
		return nil, err
	}
	return payment, nil
}

// List returns the user's payments across all subscriptions, ordered by due
// date. Payments whose subscription was deleted are not listed here; they
// still count toward balances.
func (s *PaymentService) List(ctx context.Context, userID string) ([]models.Payment, error) {
	owned, err := s.subscriptionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, err
	}

	var payments []models.Payment
	for _, p := range all {
		if owned[p.SubscriptionID] {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

// ListBySubscription returns one subscription's payments ordered by due date.
func (s *PaymentService) ListBySubscription(ctx context.Context, userID, subscriptionID string) ([]models.Payment, error) {
	if err := s.ownsSubscription(ctx, userID, subscriptionID); err != nil {
		return nil, err
	}
	return s.store.ListPaymentsBySubscription(ctx, subscriptionID)
}

// Update overwrites one of the user's payments.
func (s *PaymentService) Update(ctx context.Context, userID string, payment *models.Payment) error {
	if _, err := s.Get(ctx, userID, payment.ID); err != nil {
		return err
	}
	if err := s.ownsSubscription(ctx, userID, payment.SubscriptionID); err != nil {
		return err
	}
	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

// Delete removes one of the user's payments.
func (s *PaymentService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.store.DeletePayment(ctx, id)
}

// MarkPaid flags a payment as settled on the given date, optionally recording
// who paid. A zero paidDate means today.
func (s *PaymentService) MarkPaid(ctx context.Context, userID, id string, paidDate time.Time, payerID string) (*models.Payment, error) {
	payment, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if paidDate.IsZero() {
		paidDate = time.Now()
	}
	payment.Paid = true
	payment.PaidDate = &paidDate
	if payerID != "" {
		payment.PayerID = payerID
	}
	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	slog.Info("Payment marked paid", "payment_id", id, "payer_id", payment.PayerID)
	return payment, nil
}

// SettleSplit flags one person's share of a payment as reimbursed, tagging it
// with a settlement reference.
func (s *PaymentService) SettleSplit(ctx context.Context, userID, paymentID, personID string) (*models.Payment, error) {
	payment, err := s.Get(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range payment.Splits {
		if payment.Splits[i].PersonID == personID {
			payment.Splits[i].Paid = true
			if payment.Splits[i].SettlementID == "" {
				payment.Splits[i].SettlementID = uuid.New().String()
			}
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: person %s has no split in payment %s", ErrInvalidInput, personID, paymentID)
	}

	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	slog.Info("Split settled", "payment_id", paymentID, "person_id", personID)
	return payment, nil
}

// CheckSplit compares a payment's splits against its total.
func (s *PaymentService) CheckSplit(ctx context.Context, userID, id string) (*finance.SplitCheck, error) {
	payment, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	check := finance.ValidateSplit(*payment)
	return &check, nil
}

// UpcomingDue lists the user's unpaid payments due within the threshold.
func (s *PaymentService) UpcomingDue(ctx context.Context, userID string, days int, now time.Time) ([]models.Payment, error) {
	if days <= 0 {
		settings, err := s.store.GetSettings(ctx, userID)
		if err != nil {
			return nil, err
		}
		days = settings.ExpiringDays
	}
	payments, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return finance.UpcomingDuePayments(payments, days, now), nil
}

// PeriodExpenses totals the user's payments due within [start, end].
func (s *PaymentService) PeriodExpenses(ctx context.Context, userID string, start, end time.Time) (float64, error) {
	if !end.After(start) {
		return 0, fmt.Errorf("%w: end must be after start", ErrInvalidInput)
	}
	payments, err := s.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	return finance.PeriodExpenses(payments, start, end), nil
}
