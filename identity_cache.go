package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var errIdentityCacheUnavailable = errors.New("identity cache unavailable")

// identitySnapshot is the JSON shape cached per email. The refresh token is
// deliberately absent: a poisoned or leaked cache entry must never be able to
// mint new sessions.
type identitySnapshot struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Confirmed    bool      `json:"confirmed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type identityCache struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func newIdentityCache(redisClient redis.UniversalClient, cfg CacheConfig) *identityCache {
	return &identityCache{
		redis:  redisClient,
		prefix: cfg.IdentityPrefix,
		ttl:    cfg.IdentityTTL,
	}
}

func (c *identityCache) key(email string) string {
	return c.prefix + email
}

// Get returns the cached snapshot for email, nil on a miss. An entry that no
// longer decodes is treated as a miss and evicted rather than surfaced.
func (c *identityCache) Get(ctx context.Context, email string) (*UserRecord, error) {
	data, err := c.redis.Get(ctx, c.key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errIdentityCacheUnavailable, err)
	}

	var snap identitySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		_ = c.redis.Del(ctx, c.key(email)).Err()
		return nil, nil
	}

	return &UserRecord{
		ID:           snap.ID,
		Username:     snap.Username,
		Email:        snap.Email,
		PasswordHash: snap.PasswordHash,
		AvatarURL:    snap.AvatarURL,
		Confirmed:    snap.Confirmed,
		CreatedAt:    snap.CreatedAt,
		UpdatedAt:    snap.UpdatedAt,
	}, nil
}

// Set caches user under its email for the configured TTL. The refresh token
// field is stripped before encoding.
func (c *identityCache) Set(ctx context.Context, user *UserRecord) error {
	snap := identitySnapshot{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		AvatarURL:    user.AvatarURL,
		Confirmed:    user.Confirmed,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	if err := c.redis.Set(ctx, c.key(user.Email), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errIdentityCacheUnavailable, err)
	}

	return nil
}

// Delete evicts the snapshot for email. Deleting an absent entry is not an
// error.
func (c *identityCache) Delete(ctx context.Context, email string) error {
	if err := c.redis.Del(ctx, c.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errIdentityCacheUnavailable, err)
	}
	return nil
}
