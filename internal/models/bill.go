package models

import "github.com/shopspring/decimal"

// Bill represents a billable obligation with a target amount.
//
// Lifecycle: created once; Paid is the only field mutated afterwards, and
// only by the billing engine as a consequence of payment totals. Once a
// bill is paid it never transitions back to unpaid.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `json:"id"`

	// Name is a short label for the bill.
	Name string `json:"name"`

	// Description explains what the bill is for.
	Description string `json:"description"`

	// Amount is the target amount to be collected. Never negative.
	Amount decimal.Decimal `json:"bill_amount"`

	// Paid reports whether cumulative payments have reached Amount.
	Paid bool `json:"paid"`

	// AddedBy is the ID of the user who created the bill.
	AddedBy string `json:"added_by"`

	// InvoiceURL is the optional attachment reference for the bill invoice.
	InvoiceURL string `json:"invoice_pdf_url,omitempty"`

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64 `json:"created_at"`
}

// Payment is an append-only record of funds received against a bill.
// Corrections are recorded as new payments, never by editing old rows.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string `json:"id"`

	// Name is a short label for the payment.
	Name string `json:"name"`

	// Description explains the payment.
	Description string `json:"description"`

	// BillID references the bill this payment counts toward.
	BillID string `json:"bill_id"`

	// AddedBy is the ID of the user who recorded the payment.
	AddedBy string `json:"added_by"`

	// InvoiceURL is the optional attachment reference for the payment receipt.
	InvoiceURL string `json:"payment_invoice_url,omitempty"`

	// AmountReceived is the amount received in this payment. Never negative.
	AmountReceived decimal.Decimal `json:"amount_received"`

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64 `json:"created_at"`
}
