package sqlite

import (
	"database/sql"

	"github.com/google/uuid"
)

// schema contains the SQL statements to set up the database.
// These run on startup to ensure tables exist.
// Roles must be created before users, and users before bills/payments,
// due to foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS roles (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    access_level INTEGER NOT NULL CHECK (access_level IN (1, 2))
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (role_id) REFERENCES roles(id)
);

CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    bill_amount TEXT NOT NULL,
    paid INTEGER NOT NULL DEFAULT 0,
    added_by TEXT NOT NULL,
    invoice_pdf_url TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (added_by) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    bill_id TEXT NOT NULL,
    added_by TEXT NOT NULL,
    payment_invoice_url TEXT,
    amount_received TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE,
    FOREIGN KEY (added_by) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE INDEX IF NOT EXISTS idx_bills_created_at ON bills(created_at);
CREATE INDEX IF NOT EXISTS idx_payments_bill_id ON payments(bill_id);
`

// runMigrations executes the schema setup and seeds the role table.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return seedRoles(db)
}

// seedRoles inserts the default roles when the table is empty.
func seedRoles(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM roles").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeds := []struct {
		name  string
		level int
	}{
		{"user", 1},
		{"admin", 2},
	}
	for _, seed := range seeds {
		_, err := db.Exec(
			"INSERT INTO roles (id, name, access_level) VALUES (?, ?, ?)",
			uuid.New().String(), seed.name, seed.level,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
