// Package authz is the single place access-level decisions are made.
// Every endpoint consults these functions instead of comparing levels
// inline, so each denial carries the specific rule that was violated.
package authz

import (
	"errors"

	"github.com/ledgerline/backoffice/internal/models"
)

// AdminLevel is the access level required for administrative actions.
const AdminLevel = 2

var (
	// ErrInsufficientLevel is the generic level-gate denial.
	ErrInsufficientLevel = errors.New("insufficient permissions")

	// ErrSelfDelete denies deleting one's own account, at any level.
	ErrSelfDelete = errors.New("cannot delete own account")

	// ErrNotSuperior denies deleting a peer or superior account.
	ErrNotSuperior = errors.New("insufficient permissions to delete this user")

	// ErrRoleChangeForbidden denies role changes by non-admins.
	ErrRoleChangeForbidden = errors.New("insufficient permissions to change user type")

	// ErrRoleEscalation denies assigning a role above the requester's level.
	ErrRoleEscalation = errors.New("cannot assign higher access level")

	// ErrPrepaidForbidden denies creating a bill with an immediate payment.
	ErrPrepaidForbidden = errors.New("insufficient permissions to create a paid bill")
)

// CanPerform reports whether a requester at the given level may perform an
// action requiring requiredLevel. A missing or unparseable level must be
// passed as 0, which denies everything.
func CanPerform(requesterLevel, requiredLevel int) bool {
	return requesterLevel >= requiredLevel
}

// CheckLevel returns ErrInsufficientLevel unless the requester clears the
// required level.
func CheckLevel(requesterLevel, requiredLevel int) error {
	if !CanPerform(requesterLevel, requiredLevel) {
		return ErrInsufficientLevel
	}
	return nil
}

// CheckDeleteUser decides whether requester may delete target.
// Self-delete is always denied; otherwise the requester's level must be
// strictly greater than the target's (peers cannot delete peers).
func CheckDeleteUser(requester, target *models.User) error {
	if requester.ID == target.ID {
		return ErrSelfDelete
	}
	if requester.AccessLevel() <= target.AccessLevel() {
		return ErrNotSuperior
	}
	return nil
}

// CheckAssignRole decides whether a requester may assign a role with the
// given access level. Only admins change roles, and nobody assigns a role
// above their own level.
func CheckAssignRole(requesterLevel, newRoleLevel int) error {
	if requesterLevel < AdminLevel {
		return ErrRoleChangeForbidden
	}
	if newRoleLevel > requesterLevel {
		return ErrRoleEscalation
	}
	return nil
}

// CheckCreatePrepaid decides whether a requester may register a bill
// together with an initial payment.
func CheckCreatePrepaid(requesterLevel int) error {
	if requesterLevel < AdminLevel {
		return ErrPrepaidForbidden
	}
	return nil
}
