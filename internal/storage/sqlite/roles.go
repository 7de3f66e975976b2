package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgerline/backoffice/internal/models"
)

// GetRoleByID retrieves a role by ID. Returns nil and no error when absent.
func (s *SQLiteStore) GetRoleByID(ctx context.Context, id string) (*models.Role, error) {
	return s.scanRole(s.db.QueryRowContext(ctx,
		"SELECT id, name, access_level FROM roles WHERE id = ?", id))
}

// GetRoleByName retrieves a role by unique name. Returns nil and no error
// when absent.
func (s *SQLiteStore) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	return s.scanRole(s.db.QueryRowContext(ctx,
		"SELECT id, name, access_level FROM roles WHERE name = ?", name))
}

// ListRoles retrieves all roles ordered by access level.
func (s *SQLiteStore) ListRoles(ctx context.Context) ([]*models.Role, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, access_level FROM roles ORDER BY access_level, name")
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.AccessLevel); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}

	return roles, nil
}

func (s *SQLiteStore) scanRole(row *sql.Row) (*models.Role, error) {
	role := &models.Role{}
	err := row.Scan(&role.ID, &role.Name, &role.AccessLevel)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}
