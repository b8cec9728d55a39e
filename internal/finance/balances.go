package finance

import (
	"sort"

	"github.com/subscriptio/subscriptio/internal/models"
)

// ComputePersonBalances folds all payments (with their splits) into a
// per-person aggregate keyed by person id. Paid splits add to TotalPaid;
// unpaid splits add to TotalOwed and append a pending-payment descriptor.
// NetBalance is TotalPaid - TotalOwed.
//
// Every person in people gets an entry, all-zero if no splits reference them.
// Splits referencing a person id not present in people are dropped. The fold
// is commutative over splits, so the result is independent of payment order.
func ComputePersonBalances(people []models.Person, _ []models.Subscription, payments []models.Payment) map[string]*models.PersonBalance {
	balances := make(map[string]*models.PersonBalance, len(people))
	for _, person := range people {
		balances[person.ID] = &models.PersonBalance{
			PersonID:        person.ID,
			PersonName:      person.Name,
			PendingPayments: []models.PendingPayment{},
		}
	}

	for _, payment := range payments {
		for _, split := range payment.Splits {
			balance, known := balances[split.PersonID]
			if !known {
				continue
			}
			if split.Paid {
				balance.TotalPaid += split.Amount
				continue
			}
			balance.TotalOwed += split.Amount
			balance.PendingPayments = append(balance.PendingPayments, models.PendingPayment{
				PaymentID:      payment.ID,
				SubscriptionID: payment.SubscriptionID,
				Amount:         split.Amount,
				DueDate:        payment.DueDate,
			})
		}
	}

	for _, balance := range balances {
		// Pending lists sort by due date so the result does not depend on
		// the order payments were supplied in.
		sort.Slice(balance.PendingPayments, func(i, j int) bool {
			a, b := balance.PendingPayments[i], balance.PendingPayments[j]
			if !a.DueDate.Equal(b.DueDate) {
				return a.DueDate.Before(b.DueDate)
			}
			return a.PaymentID < b.PaymentID
		})
		balance.TotalPaid = RoundCents(balance.TotalPaid)
		balance.TotalOwed = RoundCents(balance.TotalOwed)
		balance.NetBalance = RoundCents(balance.TotalPaid - balance.TotalOwed)
	}

	return balances
}
