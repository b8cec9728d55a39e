package models

import "time"

// Recurrence kinds.
const (
	RecurrenceMonthly = "monthly"
	RecurrenceAnnual  = "annual"
	RecurrenceCustom  = "custom"
)

// Amount kinds. Variable subscriptions (e.g. utility bills) have a nominal
// amount that each recorded payment may override.
const (
	AmountFixed    = "fixed"
	AmountVariable = "variable"
)

// Subscription statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Share kinds for participant shares.
const (
	SharePercent = "percent"
	ShareFixed   = "fixed"
)

// Recurrence describes how often and on what day a subscription bills.
type Recurrence struct {
	// Kind is one of monthly, annual or custom.
	Kind string `json:"type"`

	// Interval is the number of kind-units between occurrences (>= 1).
	// monthly/custom count months, annual counts years.
	Interval int `json:"interval"`

	// AnchorDay is the day of month (1-31) every occurrence falls on.
	// Days past the end of a target month clamp to that month's last day.
	AnchorDay int `json:"day"`
}

// ParticipantShare is one person's stake in a shared subscription.
type ParticipantShare struct {
	// PersonID references the Person holding this share.
	PersonID string `json:"personId"`

	// Kind is percent or fixed.
	Kind string `json:"shareType"`

	// Value is a percentage (0-100) for percent shares, a currency amount
	// for fixed shares. Percent shares are not required to sum to 100;
	// any remainder is attributed to the subscription owner.
	Value float64 `json:"value"`
}

// Subscription represents a recurring expense such as a streaming service,
// a utility contract or a loan installment plan.
type Subscription struct {
	// ID is the unique identifier for the subscription (UUID format).
	ID string `json:"id"`

	// UserID is the account that owns this subscription.
	UserID string `json:"userId,omitempty"`

	// Name is the display name (e.g. "Netflix").
	Name string `json:"name"`

	// Category is a free-form grouping label (e.g. "Streaming", "Utilities").
	Category string `json:"category"`

	// Amount is the cost per occurrence. For variable subscriptions this is
	// the nominal amount used by forecasts.
	Amount float64 `json:"amount"`

	// AmountKind is fixed or variable.
	AmountKind string `json:"amountType,omitempty"`

	// Recurrence describes the billing cadence. A subscription without a
	// recurrence descriptor produces no scheduled payments and contributes
	// zero to forecasts.
	Recurrence *Recurrence `json:"recurrence,omitempty"`

	// StartDate is when billing begins.
	StartDate time.Time `json:"startDate,omitempty"`

	// Installments is the optional total number of payments (0 = open-ended).
	Installments int `json:"installments,omitempty"`

	// EndDate optionally bounds the subscription.
	EndDate *time.Time `json:"endDate,omitempty"`

	// Shared marks the subscription as cost-shared among Participants.
	Shared bool `json:"shared"`

	// Participants is the list of shares for a shared subscription.
	Participants []ParticipantShare `json:"participants,omitempty"`

	// Status is active or inactive. Inactive subscriptions are excluded from
	// forecasts, breakdowns and renewal reminders.
	Status string `json:"status"`

	// Notes is free text.
	Notes string `json:"notes,omitempty"`

	// CreatedAt and UpdatedAt are Unix timestamps maintained by the store.
	CreatedAt int64 `json:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty"`
}

// Active reports whether the subscription participates in reports.
func (s *Subscription) Active() bool {
	return s.Status == StatusActive
}
