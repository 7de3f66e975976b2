package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ledgerline/backoffice/internal/models"
	"github.com/ledgerline/backoffice/internal/storage/sqlite"
)

func newAuthenticator(t *testing.T) *PasswordAuthenticator {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewPasswordAuthenticator(store)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := newAuthenticator(t)
	ctx := t.Context()

	input := RegisterInput{
		FirstName: "Ann", LastName: "Smith",
		Username: "ann", Password: "password123", ConfirmPassword: "password123",
	}

	user, err := a.Register(ctx, input)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PasswordHash == input.Password {
		t.Error("password stored in plaintext")
	}
	if user.Role == nil || user.Role.Name != "user" {
		t.Errorf("expected default user role, got %+v", user.Role)
	}

	if _, err := a.Authenticate(ctx, "ann", "password123"); err != nil {
		t.Errorf("Authenticate with correct password failed: %v", err)
	}
	if _, err := a.Authenticate(ctx, "ann", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterRejections(t *testing.T) {
	a := newAuthenticator(t)
	ctx := t.Context()

	base := RegisterInput{
		FirstName: "Bob", LastName: "Jones",
		Username: "bob", Password: "password123", ConfirmPassword: "password123",
	}

	t.Run("mismatched confirmation", func(t *testing.T) {
		in := base
		in.ConfirmPassword = "different123"
		if _, err := a.Register(ctx, in); !errors.Is(err, ErrPasswordMismatch) {
			t.Errorf("expected ErrPasswordMismatch, got %v", err)
		}
	})

	t.Run("short password", func(t *testing.T) {
		in := base
		in.Password, in.ConfirmPassword = "short", "short"
		if _, err := a.Register(ctx, in); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		in := base
		in.RoleID = "no-such-role"
		if _, err := a.Register(ctx, in); !errors.Is(err, ErrUnknownRole) {
			t.Errorf("expected ErrUnknownRole, got %v", err)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		if _, err := a.Register(ctx, base); err != nil {
			t.Fatalf("first Register failed: %v", err)
		}
		if _, err := a.Register(ctx, base); !errors.Is(err, ErrUsernameExists) {
			t.Errorf("expected ErrUsernameExists, got %v", err)
		}
	})
}

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Username: "ann"}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "ann" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("expected a token ID for revocation")
	}
}

func TestJWTValidateRejections(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Username: "ann"}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTManager("other-secret", time.Hour).Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := NewJWTManager("test-secret", -time.Minute).Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := manager.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
