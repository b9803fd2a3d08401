package authflow

import (
	"context"
	"errors"
	"log"

	"github.com/VoloKh/authFlow/token"
)

// RequestEmailConfirmation describes the requestemailconfirmation operation and its observable behavior.
//
// Re-requesting for an already confirmed account is an idempotent no-op; the
// boolean result tells the host which message to show. The link is sent
// best-effort, so a true error only ever means the account could not be
// looked up.
//
// RequestEmailConfirmation may return an error when input validation, dependency calls, or security checks fail.
// RequestEmailConfirmation does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RequestEmailConfirmation(ctx context.Context, email string) (alreadyConfirmed bool, err error) {
	if e == nil || e.codec == nil {
		return false, ErrEngineNotReady
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	if user.Confirmed {
		e.emitAudit(ctx, auditEventEmailConfirmationRequest, true, user.Email, nil, func() map[string]string {
			return map[string]string{"outcome": "already_confirmed"}
		})
		return true, nil
	}

	e.metricInc(MetricEmailConfirmationRequest)
	e.emitAudit(ctx, auditEventEmailConfirmationRequest, true, user.Email, nil, nil)

	e.sendConfirmationMail(ctx, user)

	return false, nil
}

// ConfirmEmail describes the confirmemail operation and its observable behavior.
//
// Any decode failure — forged, expired, or wrong-scope token — and an unknown
// subject all collapse into ErrEmailConfirmationInvalid. Confirming an
// already confirmed account succeeds idempotently.
//
// ConfirmEmail may return an error when input validation, dependency calls, or security checks fail.
// ConfirmEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConfirmEmail(ctx context.Context, rawToken string) (alreadyConfirmed bool, err error) {
	if e == nil || e.codec == nil {
		return false, ErrEngineNotReady
	}

	claims, err := e.codec.Decode(rawToken, token.ScopeConfirmEmail)
	if err != nil {
		e.metricInc(MetricEmailConfirmationFailure)
		e.emitAudit(ctx, auditEventEmailConfirmationFailure, false, "", ErrEmailConfirmationInvalid, nil)
		return false, ErrEmailConfirmationInvalid
	}
	email := claims.Subject()

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricEmailConfirmationFailure)
			e.emitAudit(ctx, auditEventEmailConfirmationFailure, false, email, ErrEmailConfirmationInvalid, nil)
			return false, ErrEmailConfirmationInvalid
		}
		return false, err
	}

	if user.Confirmed {
		return true, nil
	}

	if err := e.users.MarkEmailConfirmed(ctx, email); err != nil {
		e.emitAudit(ctx, auditEventEmailConfirmationFailure, false, email, err, nil)
		return false, err
	}

	// The snapshot, if any, still says unconfirmed.
	if err := e.identities.Delete(ctx, email); err != nil {
		log.Printf("authflow: identity cache eviction for %s failed: %v", email, err)
	}

	e.metricInc(MetricEmailConfirmationSuccess)
	e.emitAudit(ctx, auditEventEmailConfirmationSuccess, true, email, nil, nil)

	return false, nil
}
