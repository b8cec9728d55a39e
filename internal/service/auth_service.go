package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/subscriptio/subscriptio/internal/auth"
	"github.com/subscriptio/subscriptio/internal/models"
	"github.com/subscriptio/subscriptio/internal/storage"
)

// AuthService handles account registration and login.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
	}
}

// Session is the result of a successful register or login.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new account with default settings and returns a session.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*Session, error) {
	if email == "" || displayName == "" {
		return nil, fmt.Errorf("%w: email and name are required", ErrInvalidInput)
	}

	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		return nil, err
	}

	if err := s.store.PutSettings(ctx, models.DefaultSettings(user.ID)); err != nil {
		slog.Warn("Failed to store default settings", "user_id", user.ID, "error", err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("User registered", "user_id", user.ID, "email", email)
	return &Session{User: user, Token: token}, nil
}

// Login verifies credentials and returns a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("User logged in", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// Me returns the account behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// GetSettings returns the user's settings, defaulted when never stored.
func (s *AuthService) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {
	return s.store.GetSettings(ctx, userID)
}

// UpdateSettings validates and stores the user's settings.
func (s *AuthService) UpdateSettings(ctx context.Context, userID string, settings *models.Settings) error {
	if settings.Currency == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidInput)
	}
	if settings.ForecastMonths < 1 {
		return fmt.Errorf("%w: forecastMonths must be at least 1", ErrInvalidInput)
	}
	if settings.ExpiringDays < 1 {
		return fmt.Errorf("%w: expiringDays must be at least 1", ErrInvalidInput)
	}
	settings.UserID = userID
	return s.store.PutSettings(ctx, settings)
}
