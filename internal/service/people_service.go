package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/subscriptio/subscriptio/internal/finance"
	"github.com/subscriptio/subscriptio/internal/models"
	"github.com/subscriptio/subscriptio/internal/storage"
)

// PeopleService owns the people splits are shared with and their balances.
type PeopleService struct {
	store storage.Store
}

// NewPeopleService creates a new people service.
func NewPeopleService(store storage.Store) *PeopleService {
	return &PeopleService{store: store}
}

// Create validates and persists a new person for the user.
func (s *PeopleService) Create(ctx context.Context, userID string, person *models.Person) error {
	if person.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	person.UserID = userID
	if err := s.store.CreatePerson(ctx, person); err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}
	slog.Info("Person created", "person_id", person.ID, "name", person.Name, "user_id", userID)
	return nil
}

// Get returns one of the user's people.
func (s *PeopleService) Get(ctx context.Context, userID, id string) (*models.Person, error) {
	person, err := s.store.GetPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	if person.UserID != userID {
		return nil, fmt.Errorf("person %s: %w", id, ErrForbidden)
	}
	return person, nil
}

// List returns the user's people sorted by name.
func (s *PeopleService) List(ctx context.Context, userID string) ([]models.Person, error) {
	return s.store.ListPeople(ctx, userID)
}

// Update overwrites one of the user's people.
func (s *PeopleService) Update(ctx context.Context, userID string, person *models.Person) error {
	if _, err := s.Get(ctx, userID, person.ID); err != nil {
		return err
	}
	if person.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	person.UserID = userID
	if err := s.store.UpdatePerson(ctx, person); err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	return nil
}

// Delete removes one of the user's people. Existing splits keep the person's
// id; balance reports simply stop including them.
func (s *PeopleService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.store.DeletePerson(ctx, id)
}

// Balances aggregates what each of the user's people owes and has paid
// across all recorded payments, including payments whose subscription was
// deleted. Splits referencing people of other users are dropped by the
// aggregation.
func (s *PeopleService) Balances(ctx context.Context, userID string) (map[string]*models.PersonBalance, error) {
	people, err := s.store.ListPeople(ctx, userID)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	return finance.ComputePersonBalances(people, subs, payments), nil
}
