package authflow

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"

	"github.com/VoloKh/authFlow/token"
)

// Refresh describes the refresh operation and its observable behavior.
//
// A structurally invalid or wrong-scope token is answered with
// ErrUnauthenticated. A valid token that is not the account's stored one
// revokes the stored token before failing with ErrInvalidRefreshToken: a
// stale or stolen copy burns the live session along with itself. On success
// both tokens rotate.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.codec.Decode(refreshToken, token.ScopeRefresh)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", ErrUnauthenticated, nil)
		return nil, ErrUnauthenticated
	}
	email := claims.Subject()

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, email, ErrUnauthenticated, nil)
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if rotator, ok := e.users.(RefreshTokenRotator); ok {
		return e.refreshAtomic(ctx, rotator, user, refreshToken)
	}

	// Fallback path: compare here, persist separately. The window between the
	// two is the documented race; stores wanting it closed implement
	// RefreshTokenRotator.
	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, e.revokeOnMismatch(ctx, email)
	}

	pair, err := e.issueTokenPair(ctx, user)
	if err != nil {
		e.emitAudit(ctx, auditEventRefreshInvalid, false, email, err, nil)
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, email, nil, nil)

	return pair, nil
}

func (e *Engine) refreshAtomic(ctx context.Context, rotator RefreshTokenRotator, user *UserRecord, presented string) (*TokenPair, error) {
	access, err := e.codec.Issue(user.Email, token.ScopeAccess, e.config.Token.AccessTTL)
	if err != nil {
		return nil, err
	}
	next, err := e.codec.Issue(user.Email, token.ScopeRefresh, e.config.Token.RefreshTTL)
	if err != nil {
		return nil, err
	}

	swapped, err := rotator.RotateRefreshToken(ctx, user.Email, presented, next)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, e.revokeOnMismatch(ctx, user.Email)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, user.Email, nil, nil)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: next,
		TokenType:    "bearer",
	}, nil
}

// revokeOnMismatch clears the stored refresh token and reports the mismatch.
// The clear is itself best-effort: if it fails the caller is still refused.
func (e *Engine) revokeOnMismatch(ctx context.Context, email string) error {
	if err := e.users.UpdateRefreshToken(ctx, email, ""); err != nil {
		log.Printf("authflow: refresh revocation for %s failed: %v", email, err)
	}

	e.metricInc(MetricRefreshRevoked)
	e.emitAudit(ctx, auditEventRefreshRevoked, false, email, ErrInvalidRefreshToken, nil)

	return ErrInvalidRefreshToken
}
