// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/backoffice/internal/models"
)

// ErrNotFound is wrapped by store methods when a referenced entity is
// absent, so callers can map it to a 404 with errors.Is.
var ErrNotFound = errors.New("not found")

// Store defines the interface for persistence operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the engine or HTTP layer.
type Store interface {
	// CreateUser persists a new user. The user.ID and CreatedAt fields are
	// populated by the store if unset.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user with their role joined.
	// Returns nil and no error when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByUsername retrieves a user by unique username.
	// Returns nil and no error when the user does not exist.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// ListUsers retrieves all users with roles joined.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// UpdateUser writes the user's mutable fields (names, role).
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser removes the user row. Returns ErrNotFound if absent.
	DeleteUser(ctx context.Context, id string) error

	// GetRoleByID retrieves a role. Returns nil and no error when absent.
	GetRoleByID(ctx context.Context, id string) (*models.Role, error)

	// GetRoleByName retrieves a role by unique name.
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)

	// ListRoles retrieves all roles.
	ListRoles(ctx context.Context) ([]*models.Role, error)

	// CreateBill persists a new bill and, when initial is non-nil, the
	// initial payment against it, atomically.
	CreateBill(ctx context.Context, bill *models.Bill, initial *models.Payment) error

	// GetBill retrieves a bill by ID. Returns ErrNotFound if absent.
	GetBill(ctx context.Context, id string) (*models.Bill, error)

	// ListBills retrieves all bills, newest first.
	ListBills(ctx context.Context) ([]*models.Bill, error)

	// ListBillsBetween retrieves bills created in [start, end], inclusive
	// on both ends.
	ListBillsBetween(ctx context.Context, start, end int64) ([]*models.Bill, error)

	// MarkBillPaid sets the bill's paid flag. It only ever writes true;
	// there is no way to un-pay a bill through the store.
	MarkBillPaid(ctx context.Context, id string) error

	// RecordPayment appends a payment and returns the cumulative amount
	// received for its bill, including the new payment. The insert and the
	// sum happen in one transaction so concurrent recorders cannot both
	// observe a stale total.
	RecordPayment(ctx context.Context, payment *models.Payment) (decimal.Decimal, error)

	// ListPaymentsByBill retrieves all payments for a bill, oldest first.
	ListPaymentsByBill(ctx context.Context, billID string) ([]*models.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}
