package authflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var errResetNonceUnavailable = errors.New("reset nonce store unavailable")

// resetNonceStore records that a reset link has been opened. A nonce exists
// from the moment the link is viewed until it is consumed by a confirm or its
// TTL runs out; confirming without a live nonce fails.
type resetNonceStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func newResetNonceStore(redisClient redis.UniversalClient, cfg CacheConfig) *resetNonceStore {
	return &resetNonceStore{
		redis:  redisClient,
		prefix: cfg.ResetNoncePrefix,
		ttl:    cfg.ResetNonceTTL,
	}
}

func (s *resetNonceStore) key(email, token string) string {
	return s.prefix + email + ":" + token
}

// Put mints the nonce for this email/token pair. Re-viewing a link before the
// nonce expires refreshes the TTL; the marker value is opaque.
func (s *resetNonceStore) Put(ctx context.Context, email, token string) error {
	marker := uuid.NewString()
	if err := s.redis.Set(ctx, s.key(email, token), marker, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errResetNonceUnavailable, err)
	}
	return nil
}

// Consume spends the nonce. GETDEL makes the read and the delete one command,
// so two concurrent confirms cannot both observe the nonce as live.
func (s *resetNonceStore) Consume(ctx context.Context, email, token string) (bool, error) {
	err := s.redis.GetDel(ctx, s.key(email, token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", errResetNonceUnavailable, err)
	}
	return true, nil
}
