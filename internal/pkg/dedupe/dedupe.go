// Package dedupe suppresses repeat waitlist submissions for the same email
// within a short window. It is backed by Redis SET NX with a TTL.
package dedupe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "waitlist:submitted:"

// Guard claims an email for the duration of its TTL.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Guard on top of an existing Redis client.
func New(client *redis.Client, ttl time.Duration) *Guard {
	return &Guard{client: client, ttl: ttl}
}

// Claim returns true the first time an email is seen inside the window and
// false for every repeat until the key expires. Emails compare
// case-insensitively.
func (g *Guard) Claim(ctx context.Context, email string) (bool, error) {
	key := Key(email)
	ok, err := g.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe: claim %s: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim so the email can be submitted again immediately.
func (g *Guard) Release(ctx context.Context, email string) error {
	if err := g.client.Del(ctx, Key(email)).Err(); err != nil {
		return fmt.Errorf("dedupe: release: %w", err)
	}
	return nil
}

// Ping checks that the backing Redis is reachable.
func (g *Guard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

// Key derives the Redis key for an email. The address itself never lands in
// Redis.
func Key(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return keyPrefix + hex.EncodeToString(sum[:])
}
