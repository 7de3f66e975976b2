package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RevocationStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRevocationStore(client), mr
}

func TestRevocation(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	t.Run("unknown token is not revoked", func(t *testing.T) {
		if err := store.Check(ctx, "jti-1"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		if err := store.Revoke(ctx, "jti-2", time.Hour); err != nil {
			t.Fatalf("Revoke failed: %v", err)
		}
		if err := store.Check(ctx, "jti-2"); !errors.Is(err, ErrTokenRevoked) {
			t.Errorf("expected ErrTokenRevoked, got %v", err)
		}
	})

	t.Run("revocation expires with the token", func(t *testing.T) {
		if err := store.Revoke(ctx, "jti-3", time.Minute); err != nil {
			t.Fatalf("Revoke failed: %v", err)
		}
		mr.FastForward(2 * time.Minute)
		if err := store.Check(ctx, "jti-3"); err != nil {
			t.Errorf("expected expired revocation to clear, got %v", err)
		}
	})

	t.Run("non-positive TTL is a no-op", func(t *testing.T) {
		if err := store.Revoke(ctx, "jti-4", 0); err != nil {
			t.Fatalf("Revoke failed: %v", err)
		}
		if err := store.Check(ctx, "jti-4"); err != nil {
			t.Errorf("expected nil for no-op revoke, got %v", err)
		}
	})
}
