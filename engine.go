package authflow

import (
	"context"
	"errors"

	"github.com/VoloKh/authFlow/mail"
	"github.com/VoloKh/authFlow/password"
	"github.com/VoloKh/authFlow/token"
)

// Engine defines a public type used by authFlow APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	users        UserStore
	mailer       mail.Mailer
	codec        *token.Codec
	passwordHash *password.Hasher
	identities   *identityCache
	resetNonces  *resetNonceStore
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// issueTokenPair mints an access/refresh pair for user and persists the new
// refresh token as the account's only live one.
func (e *Engine) issueTokenPair(ctx context.Context, user *UserRecord) (*TokenPair, error) {
	access, err := e.codec.Issue(user.Email, token.ScopeAccess, e.config.Token.AccessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := e.codec.Issue(user.Email, token.ScopeRefresh, e.config.Token.RefreshTTL)
	if err != nil {
		return nil, err
	}

	if err := e.users.UpdateRefreshToken(ctx, user.Email, refresh); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// ActionToken mints a short-lived token for a caller-defined purpose. The
// purpose behaves like any built-in scope: the token is only accepted by
// VerifyActionToken with the identical purpose string.
func (e *Engine) ActionToken(email, purpose string) (string, error) {
	if e == nil || e.codec == nil {
		return "", ErrEngineNotReady
	}
	if purpose == "" {
		return "", errors.New("empty purpose")
	}
	return e.codec.Issue(email, token.Scope(purpose), e.config.Token.ActionTTL)
}

// VerifyActionToken decodes a caller-defined action token and returns its
// subject email. Any decode failure is reported as ErrUnauthenticated.
func (e *Engine) VerifyActionToken(raw, purpose string) (string, error) {
	if e == nil || e.codec == nil {
		return "", ErrEngineNotReady
	}

	claims, err := e.codec.Decode(raw, token.Scope(purpose))
	if err != nil {
		return "", ErrUnauthenticated
	}
	return claims.Subject(), nil
}

// InvalidateIdentity evicts the cached identity snapshot for email. Host
// applications call it after profile updates or deletions so stale data does
// not outlive the row it was copied from.
func (e *Engine) InvalidateIdentity(ctx context.Context, email string) error {
	if e == nil || e.identities == nil {
		return ErrEngineNotReady
	}

	err := e.identities.Delete(ctx, email)
	e.emitAudit(ctx, auditEventIdentityCacheInvalidation, err == nil, email, err, nil)
	return err
}
