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

// CreatePayment persists a payment and its splits.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, subscription_id, due_date, amount, paid, paid_date, payer_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.SubscriptionID, unixOrZero(payment.DueDate), payment.Amount,
		payment.Paid, endDateColumn(payment.PaidDate), payment.PayerID, payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	if err := insertSplits(ctx, tx, payment.ID, payment.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment by ID, including its splits.
func (s *SQLiteStore) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subscription_id, due_date, amount, paid, paid_date, payer_id, created_at
		FROM payments WHERE id = ?`, id)

	payment, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if err := s.loadSplits(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ListPayments returns all payments ordered by due date ascending.
func (s *SQLiteStore) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return s.listPayments(ctx, `
		SELECT id, subscription_id, due_date, amount, paid, paid_date, payer_id, created_at
		FROM payments ORDER BY due_date`)
}

// ListPaymentsBySubscription returns one subscription's payments ordered by
// due date ascending.
func (s *SQLiteStore) ListPaymentsBySubscription(ctx context.Context, subscriptionID string) ([]models.Payment, error) {
	return s.listPayments(ctx, `
		SELECT id, subscription_id, due_date, amount, paid, paid_date, payer_id, created_at
		FROM payments WHERE subscription_id = ? ORDER BY due_date`, subscriptionID)
}

func (s *SQLiteStore) listPayments(ctx context.Context, query string, args ...any) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	for i := range payments {
		if err := s.loadSplits(ctx, &payments[i]); err != nil {
			return nil, err
		}
	}
	return payments, nil
}

// UpdatePayment overwrites a payment and replaces its splits.
func (s *SQLiteStore) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET subscription_id = ?, due_date = ?, amount = ?, paid = ?, paid_date = ?, payer_id = ?
		WHERE id = ?`,
		payment.SubscriptionID, unixOrZero(payment.DueDate), payment.Amount,
		payment.Paid, endDateColumn(payment.PaidDate), payment.PayerID, payment.ID)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payment %s: %w", payment.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM payment_splits WHERE payment_id = ?", payment.ID); err != nil {
		return fmt.Errorf("failed to clear splits: %w", err)
	}
	if err := insertSplits(ctx, tx, payment.ID, payment.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeletePayment removes a payment; splits cascade.
func (s *SQLiteStore) DeletePayment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payment %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var (
		payment  models.Payment
		dueDate  int64
		paidDate sql.NullInt64
	)
	err := row.Scan(&payment.ID, &payment.SubscriptionID, &dueDate, &payment.Amount,
		&payment.Paid, &paidDate, &payment.PayerID, &payment.CreatedAt)
	if err != nil {
		return nil, err
	}

	payment.DueDate = timeOrZero(dueDate)
	if paidDate.Valid {
		paid := timeOrZero(paidDate.Int64)
		payment.PaidDate = &paid
	}
	return &payment, nil
}

func (s *SQLiteStore) loadSplits(ctx context.Context, payment *models.Payment) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT person_id, amount, paid, settlement_id
		FROM payment_splits WHERE payment_id = ? ORDER BY position`, payment.ID)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.Split
		if err := rows.Scan(&split.PersonID, &split.Amount, &split.Paid, &split.SettlementID); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		payment.Splits = append(payment.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, paymentID string, splits []models.Split) error {
	for i, split := range splits {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payment_splits (payment_id, person_id, amount, paid, settlement_id, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			paymentID, split.PersonID, split.Amount, split.Paid, split.SettlementID, i)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}
