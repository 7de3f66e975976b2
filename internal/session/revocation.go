// Package session tracks revoked tokens in Redis.
//
// JWTs are stateless, so logout on its own only clears the cookie; a
// captured token would stay valid until expiry. The revocation list closes
// that window: logout writes the token's jti with a TTL equal to the
// token's remaining life, and the auth middleware rejects any token whose
// jti is present. Keys expire on their own, so the list never needs
// cleanup.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenRevoked is returned when a presented token has been logged out.
var ErrTokenRevoked = errors.New("token has been revoked")

const keyPrefix = "revoked:"

// RevocationStore persists revoked token IDs in Redis.
type RevocationStore struct {
	client *redis.Client
}

// NewRevocationStore creates a revocation store backed by the given client.
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// Revoke marks a token ID as revoked until it would have expired anyway.
// A non-positive TTL means the token is already expired and there is
// nothing to do.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, keyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Check returns ErrTokenRevoked if the token ID is on the revocation list.
// Transport errors are returned as-is so the caller can choose its failure
// mode.
func (s *RevocationStore) Check(ctx context.Context, tokenID string) error {
	_, err := s.client.Get(ctx, keyPrefix+tokenID).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check revocation: %w", err)
	}
	return ErrTokenRevoked
}
