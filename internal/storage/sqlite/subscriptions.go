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

// CreateSubscription persists a new subscription and its participant shares.
func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if sub.CreatedAt == 0 {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = models.StatusActive
	}
	if sub.AmountKind == "" {
		sub.AmountKind = models.AmountFixed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertSubscription(ctx, tx, sub); err != nil {
		return err
	}
	if err := insertShares(ctx, tx, sub.ID, sub.Participants); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSubscription retrieves a subscription by ID, including recurrence and shares.
func (s *SQLiteStore) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, category, amount, amount_kind,
		       rec_kind, rec_interval, rec_anchor_day,
		       start_date, installments, end_date, shared, status, notes,
		       created_at, updated_at
		FROM subscriptions WHERE id = ?`, id)

	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subscription %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	if err := s.loadShares(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubscriptions returns the user's subscriptions, most recently updated first.
func (s *SQLiteStore) ListSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, category, amount, amount_kind,
		       rec_kind, rec_interval, rec_anchor_day,
		       start_date, installments, end_date, shared, status, notes,
		       created_at, updated_at
		FROM subscriptions WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	for i := range subs {
		if err := s.loadShares(ctx, &subs[i]); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

// UpdateSubscription overwrites a subscription and replaces its shares.
func (s *SQLiteStore) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	sub.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	recKind, recInterval, recDay := recurrenceColumns(sub.Recurrence)
	res, err := tx.ExecContext(ctx, `
		UPDATE subscriptions
		SET name = ?, category = ?, amount = ?, amount_kind = ?,
		    rec_kind = ?, rec_interval = ?, rec_anchor_day = ?,
		    start_date = ?, installments = ?, end_date = ?,
		    shared = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		sub.Name, sub.Category, sub.Amount, sub.AmountKind,
		recKind, recInterval, recDay,
		unixOrZero(sub.StartDate), sub.Installments, endDateColumn(sub.EndDate),
		sub.Shared, sub.Status, sub.Notes, sub.UpdatedAt, sub.ID)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscription %s: %w", sub.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM participant_shares WHERE subscription_id = ?", sub.ID); err != nil {
		return fmt.Errorf("failed to clear shares: %w", err)
	}
	if err := insertShares(ctx, tx, sub.ID, sub.Participants); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteSubscription removes a subscription. Shares cascade; recorded payments
// are left in place on purpose.
func (s *SQLiteStore) DeleteSubscription(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscription %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var (
		sub        models.Subscription
		recKind    sql.NullString
		recInt     sql.NullInt64
		recDay     sql.NullInt64
		startDate  int64
		endDate    sql.NullInt64
	)
	err := row.Scan(&sub.ID, &sub.UserID, &sub.Name, &sub.Category, &sub.Amount, &sub.AmountKind,
		&recKind, &recInt, &recDay,
		&startDate, &sub.Installments, &endDate, &sub.Shared, &sub.Status, &sub.Notes,
		&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if recKind.Valid {
		sub.Recurrence = &models.Recurrence{
			Kind:      recKind.String,
			Interval:  int(recInt.Int64),
			AnchorDay: int(recDay.Int64),
		}
	}
	sub.StartDate = timeOrZero(startDate)
	if endDate.Valid {
		end := timeOrZero(endDate.Int64)
		sub.EndDate = &end
	}
	return &sub, nil
}

func (s *SQLiteStore) loadShares(ctx context.Context, sub *models.Subscription) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT person_id, share_kind, share_value
		FROM participant_shares WHERE subscription_id = ? ORDER BY position`, sub.ID)
	if err != nil {
		return fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var share models.ParticipantShare
		if err := rows.Scan(&share.PersonID, &share.Kind, &share.Value); err != nil {
			return fmt.Errorf("failed to scan share: %w", err)
		}
		sub.Participants = append(sub.Participants, share)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate shares: %w", err)
	}
	return nil
}

func insertSubscription(ctx context.Context, tx *sql.Tx, sub *models.Subscription) error {
	recKind, recInterval, recDay := recurrenceColumns(sub.Recurrence)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO subscriptions (
			id, user_id, name, category, amount, amount_kind,
			rec_kind, rec_interval, rec_anchor_day,
			start_date, installments, end_date, shared, status, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.Name, sub.Category, sub.Amount, sub.AmountKind,
		recKind, recInterval, recDay,
		unixOrZero(sub.StartDate), sub.Installments, endDateColumn(sub.EndDate),
		sub.Shared, sub.Status, sub.Notes,
		sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

func insertShares(ctx context.Context, tx *sql.Tx, subID string, shares []models.ParticipantShare) error {
	for i, share := range shares {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO participant_shares (subscription_id, person_id, share_kind, share_value, position)
			VALUES (?, ?, ?, ?, ?)`,
			subID, share.PersonID, share.Kind, share.Value, i)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}
	return nil
}

func recurrenceColumns(r *models.Recurrence) (sql.NullString, sql.NullInt64, sql.NullInt64) {
	if r == nil {
		return sql.NullString{}, sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullString{String: r.Kind, Valid: true},
		sql.NullInt64{Int64: int64(r.Interval), Valid: true},
		sql.NullInt64{Int64: int64(r.AnchorDay), Valid: true}
}

func endDateColumn(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
