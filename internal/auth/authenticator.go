package auth

import (
	"context"

	"github.com/ledgerline/backoffice/internal/models"
)

// Authenticator is the interface for credential handling implementations.
// The HTTP layer depends on this so the password scheme can be swapped
// (e.g. for SSO) without touching the handlers.
type Authenticator interface {
	// Register creates a new account. The credential checks (confirm match,
	// strength) run before anything is hashed or persisted.
	Register(ctx context.Context, in RegisterInput) (*models.User, error)

	// Authenticate verifies a username/password pair and returns the user.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)

	// ValidateCredential checks whether a credential meets the
	// implementation's requirements.
	ValidateCredential(credential string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
