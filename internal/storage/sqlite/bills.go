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

const billSelect = `
	SELECT id, name, description, bill_amount, paid, added_by, invoice_pdf_url, created_at
	FROM bills
`

// CreateBill persists a new bill and, when initial is non-nil, the
// initial payment against it, in one transaction.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill, initial *models.Payment) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, name, description, bill_amount, paid, added_by, invoice_pdf_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Name, bill.Description, bill.Amount.String(), bill.Paid,
		bill.AddedBy, nullable(bill.InvoiceURL), bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	if initial != nil {
		initial.BillID = bill.ID
		if err := insertPayment(ctx, tx, initial); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID. Returns storage.ErrNotFound if absent.
func (s *SQLiteStore) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	bill, err := scanBillColumns(s.db.QueryRowContext(ctx, billSelect+" WHERE id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBills retrieves all bills, newest first.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]*models.Bill, error) {
	return s.queryBills(ctx, billSelect+" ORDER BY created_at DESC")
}

// ListBillsBetween retrieves bills created in [start, end], inclusive on
// both ends.
func (s *SQLiteStore) ListBillsBetween(ctx context.Context, start, end int64) ([]*models.Bill, error) {
	return s.queryBills(ctx,
		billSelect+" WHERE created_at >= ? AND created_at <= ? ORDER BY created_at",
		start, end)
}

// MarkBillPaid sets the bill's paid flag. It only ever writes true.
func (s *SQLiteStore) MarkBillPaid(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE bills SET paid = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark bill paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bill %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) queryBills(ctx context.Context, query string, args ...any) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBillColumns(rows.Scan)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	return bills, nil
}

// scanBillColumns scans the billSelect column set. Amounts are stored as
// TEXT and parsed back into decimals so money never round-trips through
// floats.
func scanBillColumns(scan func(dest ...any) error) (*models.Bill, error) {
	bill := &models.Bill{}
	var amount string
	var invoiceURL sql.NullString

	err := scan(&bill.ID, &bill.Name, &bill.Description, &amount, &bill.Paid,
		&bill.AddedBy, &invoiceURL, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bill: %w", err)
	}

	bill.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt bill amount %q: %w", amount, err)
	}
	if invoiceURL.Valid {
		bill.InvoiceURL = invoiceURL.String
	}

	return bill, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
