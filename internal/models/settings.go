package models

// Settings holds per-user application preferences.
type Settings struct {
	// UserID is the account these settings belong to.
	UserID string `json:"userId"`

	// Currency is the ISO 4217 display currency (default EUR).
	Currency string `json:"currency"`

	// ForecastMonths is the default horizon for spend forecasts.
	ForecastMonths int `json:"forecastMonths"`

	// ExpiringDays is how far ahead renewal reminders look.
	ExpiringDays int `json:"expiringDays"`
}

// DefaultSettings returns the settings applied to a fresh account.
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:         userID,
		Currency:       "EUR",
		ForecastMonths: 12,
		ExpiringDays:   7,
	}
}

// Notification is a renewal reminder shown in the user's inbox.
type Notification struct {
	// ID is the unique identifier (UUID format).
	ID string `json:"id"`

	// UserID is the account this notification belongs to.
	UserID string `json:"userId"`

	// SubscriptionID references the subscription about to renew.
	SubscriptionID string `json:"subscriptionId"`

	// Message is the human-readable reminder text.
	Message string `json:"message"`

	// Read marks the notification as seen.
	Read bool `json:"read"`

	// CreatedAt is a Unix timestamp.
	CreatedAt int64 `json:"createdAt"`
}
