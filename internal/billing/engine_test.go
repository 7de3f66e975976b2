package billing

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/backoffice/internal/authz"
	"github.com/ledgerline/backoffice/internal/files"
	"github.com/ledgerline/backoffice/internal/models"
	"github.com/ledgerline/backoffice/internal/storage/sqlite"
)

// fakeFileStore records saves and can be told to fail.
type fakeFileStore struct {
	saves int
	fail  bool
}

func (f *fakeFileStore) Save(ctx context.Context, folder string, upload files.Upload) (string, error) {
	if f.fail {
		return "", fmt.Errorf("bucket unavailable")
	}
	f.saves++
	return "http://files.local/" + folder + "/" + upload.Filename, nil
}

func setupEngine(t *testing.T) (*Engine, *sqlite.SQLiteStore, *fakeFileStore) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	fs := &fakeFileStore{}
	return NewEngine(store, fs), store, fs
}

func seedUser(t *testing.T, store *sqlite.SQLiteStore, username, roleName string) *models.User {
	t.Helper()
	ctx := context.Background()

	role, err := store.GetRoleByName(ctx, roleName)
	if err != nil || role == nil {
		t.Fatalf("failed to get role %q: %v", roleName, err)
	}
	user := &models.User{
		FirstName: "F", LastName: "L",
		Username: username, PasswordHash: "hash", RoleID: role.ID,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	user.Role = role
	return user
}

func TestCreateBill(t *testing.T) {
	engine, store, fs := setupEngine(t)
	ctx := context.Background()
	admin := seedUser(t, store, "admin", "admin")
	regular := seedUser(t, store, "regular", "user")

	t.Run("plain bill starts unpaid", func(t *testing.T) {
		bill, payment, err := engine.CreateBill(ctx, regular, Input{
			Name: "Rent", Description: "March", Amount: "100.00",
		})
		if err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if bill.Paid {
			t.Error("expected unpaid bill")
		}
		if payment != nil {
			t.Error("expected no payment for plain bill")
		}
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		_, _, err := engine.CreateBill(ctx, regular, Input{Name: "x", Amount: "5"})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("non-numeric amount rejected", func(t *testing.T) {
		_, _, err := engine.CreateBill(ctx, regular, Input{
			Name: "x", Description: "y", Amount: "lots",
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		_, _, err := engine.CreateBill(ctx, regular, Input{
			Name: "x", Description: "y", Amount: "-3.50",
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("prepaid requires admin and persists nothing on denial", func(t *testing.T) {
		before, err := engine.ListBills(ctx)
		if err != nil {
			t.Fatalf("ListBills failed: %v", err)
		}

		_, _, err = engine.CreateBill(ctx, regular, Input{
			Name: "Prepaid", Description: "d", Amount: "50.00", AmountReceived: "50.00",
		})
		if !errors.Is(err, authz.ErrPrepaidForbidden) {
			t.Fatalf("expected ErrPrepaidForbidden, got %v", err)
		}

		after, err := engine.ListBills(ctx)
		if err != nil {
			t.Fatalf("ListBills failed: %v", err)
		}
		if len(after) != len(before) {
			t.Error("denied prepaid create must not persist a bill")
		}
	})

	t.Run("prepaid full amount is immediately paid", func(t *testing.T) {
		bill, payment, err := engine.CreateBill(ctx, admin, Input{
			Name: "Prepaid", Description: "d", Amount: "50.00", AmountReceived: "50.00",
		})
		if err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if !bill.Paid {
			t.Error("expected bill paid when initial payment covers amount")
		}
		if payment == nil || !payment.AmountReceived.Equal(decimal.RequireFromString("50.00")) {
			t.Errorf("expected payment of 50.00, got %+v", payment)
		}
		if payment.BillID != bill.ID {
			t.Error("expected payment linked to bill")
		}
	})

	t.Run("prepaid partial amount stays unpaid", func(t *testing.T) {
		bill, payment, err := engine.CreateBill(ctx, admin, Input{
			Name: "Partial", Description: "d", Amount: "80.00", AmountReceived: "30.00",
		})
		if err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if bill.Paid {
			t.Error("expected bill unpaid with partial initial payment")
		}
		if payment == nil {
			t.Error("expected initial payment record")
		}
	})

	t.Run("attachment uploaded before persisting", func(t *testing.T) {
		bill, _, err := engine.CreateBill(ctx, regular, Input{
			Name: "With file", Description: "d", Amount: "10.00",
			Attachment: &files.Upload{Filename: "invoice.pdf", Content: strings.NewReader("x")},
		})
		if err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if bill.InvoiceURL == "" {
			t.Error("expected invoice URL set from file store")
		}
		if fs.saves == 0 {
			t.Error("expected file store to be called")
		}
	})

	t.Run("upload failure aborts the whole operation", func(t *testing.T) {
		before, _ := engine.ListBills(ctx)
		fs.fail = true
		defer func() { fs.fail = false }()

		_, _, err := engine.CreateBill(ctx, regular, Input{
			Name: "Doomed", Description: "d", Amount: "10.00",
			Attachment: &files.Upload{Filename: "invoice.pdf", Content: strings.NewReader("x")},
		})
		if err == nil {
			t.Fatal("expected error when upload fails")
		}

		after, _ := engine.ListBills(ctx)
		if len(after) != len(before) {
			t.Error("failed upload must not leave a bill behind")
		}
	})
}

func TestRecordPayment(t *testing.T) {
	engine, store, _ := setupEngine(t)
	ctx := context.Background()
	admin := seedUser(t, store, "admin", "admin")

	bill, _, err := engine.CreateBill(ctx, admin, Input{
		Name: "Project", Description: "d", Amount: "100.00",
	})
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	pay := func(amount string) *models.Bill {
		t.Helper()
		in := Input{Name: "Installment", Description: "d", Amount: "100.00"}
		if amount != "" {
			in.AmountReceived = amount
		}
		updated, payment, err := engine.RecordPayment(ctx, admin, bill.ID, in)
		if err != nil {
			t.Fatalf("RecordPayment(%s) failed: %v", amount, err)
		}
		if payment == nil {
			t.Fatal("expected payment record")
		}
		return updated
	}

	t.Run("partial payment leaves bill unpaid", func(t *testing.T) {
		if updated := pay("40.00"); updated.Paid {
			t.Error("expected unpaid at cumulative 40.00")
		}
	})

	t.Run("threshold payment marks paid", func(t *testing.T) {
		if updated := pay("60.00"); !updated.Paid {
			t.Error("expected paid at cumulative 100.00")
		}
	})

	t.Run("over-payment keeps bill paid", func(t *testing.T) {
		if updated := pay("10.00"); !updated.Paid {
			t.Error("expected paid to stay true at cumulative 110.00")
		}
	})

	t.Run("omitted amount still appends a zero payment", func(t *testing.T) {
		updated := pay("")
		if !updated.Paid {
			t.Error("zero payment must never un-pay a bill")
		}
		payments, err := store.ListPaymentsByBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("ListPaymentsByBill failed: %v", err)
		}
		if len(payments) != 4 {
			t.Fatalf("expected 4 payments, got %d", len(payments))
		}
		last := payments[len(payments)-1]
		if !last.AmountReceived.IsZero() {
			t.Errorf("expected zero amount, got %s", last.AmountReceived)
		}
	})

	t.Run("unknown bill is ErrBillNotFound", func(t *testing.T) {
		_, _, err := engine.RecordPayment(ctx, admin, "no-such-bill", Input{
			Name: "x", Description: "y", Amount: "1.00",
		})
		if !errors.Is(err, ErrBillNotFound) {
			t.Errorf("expected ErrBillNotFound, got %v", err)
		}
	})

	t.Run("GetBill returns history", func(t *testing.T) {
		got, payments, err := engine.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if !got.Paid {
			t.Error("expected paid bill")
		}
		if len(payments) != 4 {
			t.Errorf("expected 4 payments, got %d", len(payments))
		}
	})
}

func TestReport(t *testing.T) {
	engine, store, _ := setupEngine(t)
	ctx := context.Background()
	admin := seedUser(t, store, "admin", "admin")

	// Bills pinned to known timestamps so the window edges are exact.
	makeBill := func(amount string, createdAt time.Time) *models.Bill {
		t.Helper()
		bill := &models.Bill{
			Name: "b", Description: "d",
			Amount:    decimal.RequireFromString(amount),
			AddedBy:   admin.ID,
			CreatedAt: createdAt.Unix(),
		}
		if err := store.CreateBill(ctx, bill, nil); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		return bill
	}

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	atStart := makeBill("100.00", start)
	makeBill("50.00", start.AddDate(0, 0, 10))
	atEnd := makeBill("25.00", end)
	makeBill("999.00", start.Add(-time.Second))
	makeBill("999.00", end.Add(time.Second))

	for billID, amount := range map[string]string{atStart.ID: "70.00", atEnd.ID: "25.00"} {
		_, _, err := engine.RecordPayment(ctx, admin, billID, Input{
			Name: "p", Description: "d", Amount: "1.00", AmountReceived: amount,
		})
		if err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}
	}

	report, err := engine.Report(ctx, start, end)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if len(report.Bills) != 3 {
		t.Fatalf("expected 3 bills in window (inclusive edges), got %d", len(report.Bills))
	}
	if !report.TotalAmountBilled.Equal(decimal.RequireFromString("175.00")) {
		t.Errorf("expected total billed 175.00, got %s", report.TotalAmountBilled)
	}
	if !report.TotalAmountReceived.Equal(decimal.RequireFromString("95.00")) {
		t.Errorf("expected total received 95.00, got %s", report.TotalAmountReceived)
	}

	for _, detail := range report.Bills {
		if detail.Bill.ID == atEnd.ID && !detail.AmountReceived.Equal(decimal.RequireFromString("25.00")) {
			t.Errorf("expected per-bill received 25.00, got %s", detail.AmountReceived)
		}
	}
}
