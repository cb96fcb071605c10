package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "auth:denylist:"

// Denylist records revoked token IDs in Redis until their natural expiry.
// It backs optional logout revocation and refresh rotation; when revocation
// is disabled the middleware carries a nil denylist and the hot path stays
// stateless.
type Denylist struct {
	client *redis.Client
	now    func() time.Time
}

// NewDenylist wraps a Redis client.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client, now: time.Now}
}

// Revoke stores the token ID until expiresAt. Tokens already past expiry are
// ignored; validation rejects them anyway.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether the token ID has been revoked. Lookup errors are
// returned to the caller, which rejects the request: a revoked token passing
// because the store was unreachable is the worse failure mode.
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	_, err := d.client.Get(ctx, denylistPrefix+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
