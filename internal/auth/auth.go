package auth

import (
	"context"
	"errors"

	"github.com/subscriptio/subscriptio/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingToken       = errors.New("authorization token required")
)

// Authenticator verifies account credentials. The credential format depends
// on the implementation; today that is a password, but the service layer does
// not need to know.
type Authenticator interface {
	// Register creates a new account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credentials and returns the account if valid.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks that the credential meets the
	// implementation's minimum requirements.
	ValidateCredential(credential string) error
}
