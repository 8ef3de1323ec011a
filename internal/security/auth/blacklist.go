package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/taskboard/internal/infrastructure/redis"
)

// Blacklist invalidates tokens on logout. Entries live in Redis until the
// token itself would have expired.
type Blacklist struct {
	redis *redis.Client
}

// NewBlacklist creates a Redis-backed token blacklist
func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{redis: client}
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// Add blacklists a token for the given TTL
func (b *Blacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := b.redis.Set(ctx, blacklistKey(token), "1", ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// Contains reports whether a token has been invalidated. Backend failures
// fail open: a dead Redis must not lock every user out.
func (b *Blacklist) Contains(ctx context.Context, token string) bool {
	exists, err := b.redis.Exists(ctx, blacklistKey(token))
	if err != nil {
		return false
	}
	return exists
}
