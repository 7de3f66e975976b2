package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/backoffice/internal/models"
)

// BillDetail is one bill in a report, with its payment history and the
// cumulative amount received.
type BillDetail struct {
	Bill           *models.Bill      `json:"bill"`
	Payments       []*models.Payment `json:"payments"`
	AmountReceived decimal.Decimal   `json:"amountReceived"`
}

// Report aggregates all bills created in a time window.
type Report struct {
	StartTime           time.Time       `json:"startTime"`
	EndTime             time.Time       `json:"endTime"`
	Bills               []BillDetail    `json:"bills"`
	TotalAmountBilled   decimal.Decimal `json:"totalAmountBilled"`
	TotalAmountReceived decimal.Decimal `json:"totalAmountReceived"`
}

// Report sums billed and received amounts for every bill created in
// [start, end], inclusive on both ends. It is a pure read; no state is
// touched. Payments are attributed to their bill regardless of when they
// themselves were recorded.
func (e *Engine) Report(ctx context.Context, start, end time.Time) (*Report, error) {
	bills, err := e.store.ListBillsBetween(ctx, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}

	report := &Report{
		StartTime:           start,
		EndTime:             end,
		Bills:               make([]BillDetail, 0, len(bills)),
		TotalAmountBilled:   decimal.Zero,
		TotalAmountReceived: decimal.Zero,
	}

	for _, bill := range bills {
		payments, err := e.store.ListPaymentsByBill(ctx, bill.ID)
		if err != nil {
			return nil, err
		}

		received := decimal.Zero
		for _, p := range payments {
			received = received.Add(p.AmountReceived)
		}

		report.Bills = append(report.Bills, BillDetail{
			Bill:           bill,
			Payments:       payments,
			AmountReceived: received,
		})
		report.TotalAmountBilled = report.TotalAmountBilled.Add(bill.Amount)
		report.TotalAmountReceived = report.TotalAmountReceived.Add(received)
	}

	return report, nil
}
