package models

import "time"

// Split is one participant's computed share of a single payment occurrence.
type Split struct {
	// PersonID references the person who owes this share.
	PersonID string `json:"personId"`

	// Amount is the owed amount, rounded to cents.
	Amount float64 `json:"amount"`

	// Paid marks this share as individually settled.
	Paid bool `json:"paid"`

	// SettlementID optionally links the settlement record created when this
	// share was paid.
	SettlementID string `json:"paymentId,omitempty"`
}

// Payment is one concrete occurrence of a subscription's cost, either
// generated from the recurrence schedule or recorded manually.
type Payment struct {
	// ID is the unique identifier. Generated payments use a deterministic id
	// derived from the subscription id and sequence index.
	ID string `json:"id"`

	// SubscriptionID references the owning subscription. Deleting the
	// subscription does not delete its recorded payments.
	SubscriptionID string `json:"subscriptionId"`

	// DueDate is when the payment is due.
	DueDate time.Time `json:"dateDue"`

	// Amount is the total payment amount.
	Amount float64 `json:"amount"`

	// Splits holds one entry per participant. The sum of split amounts should
	// equal Amount within a cent; any shortfall is the owner's share.
	Splits []Split `json:"splits,omitempty"`

	// Paid marks the whole payment as settled.
	Paid bool `json:"paid"`

	// PaidDate is set when the payment is marked paid.
	PaidDate *time.Time `json:"paidDate,omitempty"`

	// PayerID is who actually paid (set when marked paid).
	PayerID string `json:"payerId,omitempty"`

	// CreatedAt is a Unix timestamp maintained by the store.
	CreatedAt int64 `json:"createdAt,omitempty"`
}
