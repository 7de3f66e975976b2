package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backoffice/internal/models"
	"github.com/ledgerline/backoffice/internal/storage"
)

// RecordPayment appends a payment and returns the cumulative amount
// received for its bill, including the new payment.
//
// The insert and the sum run in the same transaction. SQLite serializes
// writers, so a concurrent recorder's total always includes every payment
// committed before its own insert; the read-sum-then-write race of the
// naive approach cannot occur.
func (s *SQLiteStore) RecordPayment(ctx context.Context, payment *models.Payment) (decimal.Decimal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM bills WHERE id = ?", payment.BillID).Scan(&exists)
	if err == sql.ErrNoRows {
		return decimal.Zero, fmt.Errorf("bill %s: %w", payment.BillID, storage.ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to check bill existence: %w", err)
	}

	if err := insertPayment(ctx, tx, payment); err != nil {
		return decimal.Zero, err
	}

	total, err := sumPayments(ctx, tx, payment.BillID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return total, nil
}

// ListPaymentsByBill retrieves all payments for a bill, oldest first.
func (s *SQLiteStore) ListPaymentsByBill(ctx context.Context, billID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, bill_id, added_by, payment_invoice_url, amount_received, created_at
		 FROM payments WHERE bill_id = ? ORDER BY created_at`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		var amount string
		var invoiceURL sql.NullString

		if err := rows.Scan(&payment.ID, &payment.Name, &payment.Description,
			&payment.BillID, &payment.AddedBy, &invoiceURL, &amount, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		payment.AmountReceived, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt payment amount %q: %w", amount, err)
		}
		if invoiceURL.Valid {
			payment.InvoiceURL = invoiceURL.String
		}

		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// insertPayment writes a payment row inside tx, assigning ID and CreatedAt
// if unset.
func insertPayment(ctx context.Context, tx *sql.Tx, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO payments (id, name, description, bill_id, added_by, payment_invoice_url, amount_received, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.Name, payment.Description, payment.BillID,
		payment.AddedBy, nullable(payment.InvoiceURL), payment.AmountReceived.String(), payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// sumPayments totals amount_received for a bill inside tx. The amounts are
// summed as decimals in Go rather than with SQL SUM, which would coerce
// the TEXT column to floats.
func sumPayments(ctx context.Context, tx *sql.Tx, billID string) (decimal.Decimal, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT amount_received FROM payments WHERE bill_id = ?", billID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan payment amount: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("corrupt payment amount %q: %w", amount, err)
		}
		total = total.Add(d)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to iterate payment amounts: %w", err)
	}

	return total, nil
}
