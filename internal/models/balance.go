package models

import "time"

// PendingPayment describes one unpaid split from a person's point of view.
type PendingPayment struct {
	PaymentID      string    `json:"paymentId"`
	SubscriptionID string    `json:"subscriptionId"`
	Amount         float64   `json:"amount"`
	DueDate        time.Time `json:"dueDate"`
}

// PersonBalance is the aggregate view of one person's position across all
// tracked payments. It is recomputed from scratch on every aggregation call
// and is never persisted.
type PersonBalance struct {
	PersonID   string `json:"personId"`
	PersonName string `json:"personName"`

	// TotalOwed is the sum of this person's unpaid splits.
	TotalOwed float64 `json:"totalOwed"`

	// TotalPaid is the sum of this person's paid splits.
	TotalPaid float64 `json:"totalPaid"`

	// NetBalance is TotalPaid - TotalOwed.
	NetBalance float64 `json:"netBalance"`

	// PendingPayments lists the outstanding items behind TotalOwed.
	PendingPayments []PendingPayment `json:"pendingPayments"`
}
