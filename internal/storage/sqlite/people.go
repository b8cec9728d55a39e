package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/subscriptio/subscriptio/internal/models"
	"github.com/subscriptio/subscriptio/internal/storage"
)

// CreatePerson persists a new person.
func (s *SQLiteStore) CreatePerson(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	if person.CreatedAt == 0 {
		person.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO people (id, user_id, name, email, phone, iban, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		person.ID, person.UserID, person.Name, person.Email, person.Phone,
		person.IBAN, person.Notes, person.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

// GetPerson retrieves a person by ID.
func (s *SQLiteStore) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	var person models.Person
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, email, phone, iban, notes, created_at
		FROM people WHERE id = ?`, id).
		Scan(&person.ID, &person.UserID, &person.Name, &person.Email,
			&person.Phone, &person.IBAN, &person.Notes, &person.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("person %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return &person, nil
}

// ListPeople returns the user's people sorted by name.
func (s *SQLiteStore) ListPeople(ctx context.Context, userID string) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, email, phone, iban, notes, created_at
		FROM people WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		var person models.Person
		if err := rows.Scan(&person.ID, &person.UserID, &person.Name, &person.Email,
			&person.Phone, &person.IBAN, &person.Notes, &person.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return people, nil
}

// UpdatePerson overwrites an existing person.
func (s *SQLiteStore) UpdatePerson(ctx context.Context, person *models.Person) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE people SET name = ?, email = ?, phone = ?, iban = ?, notes = ?
		WHERE id = ?`,
		person.Name, person.Email, person.Phone, person.IBAN, person.Notes, person.ID)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("person %s: %w", person.ID, storage.ErrNotFound)
	}
	return nil
}

// DeletePerson removes a person. Splits referencing the person are left alone;
// the balance aggregator drops unknown person ids.
func (s *SQLiteStore) DeletePerson(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("person %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
