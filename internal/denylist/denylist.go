package denylist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auth:denylist:"

// Denylist records revoked token IDs in Redis until their natural expiry.
// A nil *Denylist is valid and behaves as if revocation were disabled, which
// keeps the default no-op logout semantics.
type Denylist struct {
	client *redis.Client
}

func Connect(ctx context.Context, addr string, db int) (*Denylist, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Denylist{client: client}, nil
}

// Add marks a token ID revoked for the remaining token lifetime. Entries for
// already-expired tokens are skipped since Validate rejects those anyway.
func (d *Denylist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	if d == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, keyPrefix+jti, "1", ttl).Err()
}

func (d *Denylist) Contains(ctx context.Context, jti string) (bool, error) {
	if d == nil || jti == "" {
		return false, nil
	}
	n, err := d.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *Denylist) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}
