// Package billing owns bill/payment reconciliation: creating bills,
// appending payments, and deriving the paid flag from cumulative totals.
// Nothing else in the system writes Bill.Paid.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/backoffice/internal/authz"
	"github.com/ledgerline/backoffice/internal/files"
	"github.com/ledgerline/backoffice/internal/models"
	"github.com/ledgerline/backoffice/internal/storage"
)

var (
	// ErrValidation wraps all malformed-input failures; the message carries
	// the specific field problem.
	ErrValidation = errors.New("validation failed")

	// ErrBillNotFound is returned when a referenced bill does not exist.
	ErrBillNotFound = errors.New("bill not found")
)

// Input carries the request fields for creating a bill or recording a
// payment. Amounts arrive as raw strings because rejecting unparseable
// values is part of the engine's contract.
type Input struct {
	Name           string
	Description    string
	Amount         string
	AmountReceived string        // optional
	Attachment     *files.Upload // optional
}

// Engine implements bill payment reconciliation over a Store.
type Engine struct {
	store storage.Store
	files files.Store
}

// NewEngine creates a reconciliation engine with the given backends.
func NewEngine(store storage.Store, fileStore files.Store) *Engine {
	return &Engine{store: store, files: fileStore}
}

// CreateBill validates the input, uploads the attachment if present, and
// persists the bill. When an initial amount_received is supplied the actor
// must clear the prepaid policy check; the bill's paid flag is derived
// from the initial payment and both rows are written atomically.
//
// Nothing is uploaded or persisted if validation or authorization fails.
func (e *Engine) CreateBill(ctx context.Context, actor *models.User, in Input) (*models.Bill, *models.Payment, error) {
	amount, received, err := validateInput(in)
	if err != nil {
		return nil, nil, err
	}

	prepaid := received != nil
	if prepaid {
		if err := authz.CheckCreatePrepaid(actor.AccessLevel()); err != nil {
			return nil, nil, err
		}
	}

	invoiceURL, err := e.uploadAttachment(ctx, in.Attachment)
	if err != nil {
		return nil, nil, err
	}

	bill := &models.Bill{
		Name:        in.Name,
		Description: in.Description,
		Amount:      amount,
		AddedBy:     actor.ID,
		InvoiceURL:  invoiceURL,
	}

	var payment *models.Payment
	if prepaid {
		bill.Paid = received.GreaterThanOrEqual(amount)
		payment = &models.Payment{
			Name:           in.Name,
			Description:    in.Description,
			AddedBy:        actor.ID,
			InvoiceURL:     invoiceURL,
			AmountReceived: *received,
		}
	}

	if err := e.store.CreateBill(ctx, bill, payment); err != nil {
		return nil, nil, fmt.Errorf("failed to create bill: %w", err)
	}

	slog.Info("Bill created",
		"bill_id", bill.ID,
		"amount", bill.Amount,
		"paid", bill.Paid,
		"prepaid", prepaid,
		"added_by", actor.ID,
	)

	return bill, payment, nil
}

// RecordPayment appends a payment to an existing bill and re-derives the
// paid flag. The payment is persisted unconditionally, even for a zero
// amount; the paid flag only ever moves from false to true, so a later
// under-payment never un-pays a bill.
func (e *Engine) RecordPayment(ctx context.Context, actor *models.User, billID string, in Input) (*models.Bill, *models.Payment, error) {
	_, received, err := validateInput(in)
	if err != nil {
		return nil, nil, err
	}

	bill, err := e.store.GetBill(ctx, billID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrBillNotFound
		}
		return nil, nil, err
	}

	invoiceURL, err := e.uploadAttachment(ctx, in.Attachment)
	if err != nil {
		return nil, nil, err
	}

	amountReceived := decimal.Zero
	if received != nil {
		amountReceived = *received
	}

	payment := &models.Payment{
		Name:           in.Name,
		Description:    in.Description,
		BillID:         bill.ID,
		AddedBy:        actor.ID,
		InvoiceURL:     invoiceURL,
		AmountReceived: amountReceived,
	}

	total, err := e.store.RecordPayment(ctx, payment)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrBillNotFound
		}
		return nil, nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if !bill.Paid && total.GreaterThanOrEqual(bill.Amount) {
		if err := e.store.MarkBillPaid(ctx, bill.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to mark bill paid: %w", err)
		}
		bill.Paid = true
	}

	slog.Info("Payment recorded",
		"bill_id", bill.ID,
		"payment_id", payment.ID,
		"amount_received", payment.AmountReceived,
		"cumulative", total,
		"paid", bill.Paid,
		"added_by", actor.ID,
	)

	return bill, payment, nil
}

// ListBills returns all bills, newest first.
func (e *Engine) ListBills(ctx context.Context) ([]*models.Bill, error) {
	return e.store.ListBills(ctx)
}

// GetBill returns a bill with its full payment history.
func (e *Engine) GetBill(ctx context.Context, billID string) (*models.Bill, []*models.Payment, error) {
	bill, err := e.store.GetBill(ctx, billID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrBillNotFound
		}
		return nil, nil, err
	}

	payments, err := e.store.ListPaymentsByBill(ctx, billID)
	if err != nil {
		return nil, nil, err
	}

	return bill, payments, nil
}

func (e *Engine) uploadAttachment(ctx context.Context, attachment *files.Upload) (string, error) {
	if attachment == nil {
		return "", nil
	}
	url, err := e.files.Save(ctx, "bills", *attachment)
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}
	return url, nil
}

// validateInput checks the shared field rules for bill creation and
// payment recording. It returns the parsed bill amount and, when present,
// the parsed amount received.
func validateInput(in Input) (decimal.Decimal, *decimal.Decimal, error) {
	if in.Name == "" || in.Description == "" || in.Amount == "" {
		return decimal.Zero, nil, fmt.Errorf("%w: name, description, and bill amount are required", ErrValidation)
	}

	amount, err := decimal.NewFromString(in.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil, fmt.Errorf("%w: bill amount must be a positive number", ErrValidation)
	}

	if in.AmountReceived == "" {
		return amount, nil, nil
	}

	received, err := decimal.NewFromString(in.AmountReceived)
	if err != nil || received.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil, fmt.Errorf("%w: amount received must be a positive number", ErrValidation)
	}

	return amount, &received, nil
}
