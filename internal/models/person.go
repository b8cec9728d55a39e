package models

// Person is someone who shares subscription costs with the account owner.
// People are plain contact records; they do not log in (see User for accounts).
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string `json:"id"`

	// UserID is the account that owns this contact.
	UserID string `json:"userId,omitempty"`

	// Name is the display name.
	Name string `json:"name"`

	// Email is optional contact info.
	Email string `json:"email,omitempty"`

	// Phone is optional contact info.
	Phone string `json:"phone,omitempty"`

	// IBAN is used when settling balances by bank transfer.
	IBAN string `json:"iban,omitempty"`

	// Notes is free text.
	Notes string `json:"notes,omitempty"`

	// CreatedAt is a Unix timestamp maintained by the store.
	CreatedAt int64 `json:"createdAt,omitempty"`
}
