package finance

import (
	"fmt"
	"time"

	"github.com/subscriptio/subscriptio/internal/models"
)

// GenerateNextPayments walks the subscription's recurrence forward from the
// given date and produces up to monthsAhead future payment records, ordered by
// due date ascending. Each payment carries the subscription amount, computed
// splits for shared subscriptions, and a deterministic id derived from the
// subscription id and sequence index.
//
// A subscription without a recurrence descriptor yields an empty list. When
// the subscription has an end date or a bounded number of installments, the
// schedule stops there. A negative monthsAhead is a programmer error and
// returns an error.
//
// The result is never persisted by this package; callers decide what to do
// with it.
func GenerateNextPayments(sub models.Subscription, from time.Time, monthsAhead int) ([]models.Payment, error) {
	if monthsAhead < 0 {
		return nil, fmt.Errorf("monthsAhead must be non-negative, got %d", monthsAhead)
	}
	if sub.Recurrence == nil {
		return []models.Payment{}, nil
	}

	max := monthsAhead
	if sub.Installments > 0 && sub.Installments < max {
		max = sub.Installments
	}

	payments := make([]models.Payment, 0, max)
	cursor := from
	for seq := 0; seq < max; seq++ {
		due, ok := NextOccurrence(sub.Recurrence, cursor)
		if !ok {
			break
		}
		if sub.EndDate != nil && due.After(*sub.EndDate) {
			break
		}

		payments = append(payments, models.Payment{
			ID:             fmt.Sprintf("payment_%s_%d", sub.ID, seq),
			SubscriptionID: sub.ID,
			DueDate:        due,
			Amount:         sub.Amount,
			Splits:         splitsFor(sub),
			Paid:           false,
			PaidDate:       nil,
			PayerID:        "",
		})
		cursor = due
	}

	return payments, nil
}

// splitsFor computes the splits attached to each generated payment.
// Unshared subscriptions and shared ones without participants get none.
func splitsFor(sub models.Subscription) []models.Split {
	if !sub.Shared || len(sub.Participants) == 0 {
		return nil
	}
	return ComputeSplits(sub.Participants, sub.Amount)
}
