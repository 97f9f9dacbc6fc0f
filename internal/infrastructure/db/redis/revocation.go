package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers deleted skaters so their outstanding credentials
// are rejected until they would have expired anyway.
// Key format: revoked:skater:<id>
type RevocationStore struct {
	client *redis.Client
}

// NewRevocationStore creates a RevocationStore wrapping the given Redis client.
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// Revoke marks skaterID as revoked for ttl.
func (s *RevocationStore) Revoke(ctx context.Context, skaterID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(skaterID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke skater %d: %w", skaterID, err)
	}
	return nil
}

// IsRevoked reports whether credentials of skaterID must be rejected.
func (s *RevocationStore) IsRevoked(ctx context.Context, skaterID int64) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(skaterID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationStore) key(skaterID int64) string {
	return fmt.Sprintf("revoked:skater:%d", skaterID)
}
