package authflow

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/VoloKh/authFlow/token"
)

// Authenticate describes the authenticate operation and its observable behavior.
//
// This is the hot path: every guarded request resolves its bearer token here.
// The identity cache fronts the user store with a 15-minute snapshot; a cache
// outage degrades to a direct store read and never fails the call. The
// returned record always has an empty RefreshToken — snapshots are minted
// without it and the store path strips it.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*UserRecord, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Observe(MetricResolveLatency, time.Since(start))
		}
	}()

	claims, err := e.codec.Decode(accessToken, token.ScopeAccess)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	email := claims.Subject()

	cached, cacheErr := e.identities.Get(ctx, email)
	if cacheErr != nil {
		log.Printf("authflow: identity cache read for %s degraded: %v", email, cacheErr)
		e.metricInc(MetricResolveCacheBypass)
	}
	if cached != nil {
		e.metricInc(MetricResolveCacheHit)
		return cached, nil
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if cacheErr == nil {
		e.metricInc(MetricResolveCacheMiss)
		if err := e.identities.Set(ctx, user); err != nil {
			log.Printf("authflow: identity cache write for %s failed: %v", email, err)
		}
	}

	out := *user
	out.RefreshToken = ""
	return &out, nil
}
