package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ledgerline/backoffice/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameExists     = errors.New("username already exists")
	ErrUnknownRole        = errors.New("invalid user type")
)

// UserStorage defines the persistence operations the authenticator needs.
// This keeps the authenticator independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetRoleByID(ctx context.Context, id string) (*models.Role, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
}

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Username        string
	Password        string
	ConfirmPassword string
	RoleID          string // optional; defaults to the "user" role
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
}

// NewPasswordAuthenticator creates a password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{storage: storage}
}

// ValidateCredential checks that a password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new account with a hashed password.
// The confirm check runs before anything is hashed or persisted.
func (a *PasswordAuthenticator) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := a.ValidateCredential(in.Password); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetUserByUsername(ctx, in.Username)
	if err == nil && existing != nil {
		return nil, ErrUsernameExists
	}

	role, err := a.resolveRole(ctx, in.RoleID)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		PasswordHash: string(hashed),
		RoleID:       role.ID,
		Role:         role,
	}

	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the username and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := a.storage.GetUserByUsername(ctx, username)
	if err != nil || user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (a *PasswordAuthenticator) resolveRole(ctx context.Context, roleID string) (*models.Role, error) {
	if roleID == "" {
		role, err := a.storage.GetRoleByName(ctx, "user")
		if err != nil || role == nil {
			return nil, fmt.Errorf("default role missing: %w", err)
		}
		return role, nil
	}

	role, err := a.storage.GetRoleByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up role: %w", err)
	}
	if role == nil {
		return nil, ErrUnknownRole
	}
	return role, nil
}
