package authflow

import (
	"context"
	"errors"
	"log"

	"github.com/VoloKh/authFlow/token"
)

// RequestPasswordReset describes the requestpasswordreset operation and its observable behavior.
//
// The answer is deliberately the same whether or not the account exists:
// unknown and unconfirmed addresses are silently suppressed so the endpoint
// cannot be used to enumerate accounts. Only infrastructure failures surface.
//
// RequestPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// RequestPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	if e == nil || e.codec == nil {
		return ErrEngineNotReady
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventPasswordResetRequest, true, email, nil, func() map[string]string {
				return map[string]string{"outcome": "suppressed"}
			})
			return nil
		}
		return err
	}

	if !user.Confirmed {
		e.emitAudit(ctx, auditEventPasswordResetRequest, true, email, nil, func() map[string]string {
			return map[string]string{"outcome": "suppressed"}
		})
		return nil
	}

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, auditEventPasswordResetRequest, true, user.Email, nil, nil)

	e.sendResetMail(ctx, user)

	return nil
}

// OpenPasswordReset describes the openpasswordreset operation and its observable behavior.
//
// Viewing a reset link is what arms it: the single-use nonce is minted here
// and the follow-up confirm must find it alive. The token is verified first —
// an expired or forged link never mints a nonce — so revisiting a dead link
// yields ErrPasswordResetInvalid and nothing else.
//
// OpenPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// OpenPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) OpenPasswordReset(ctx context.Context, rawToken string) (string, error) {
	if e == nil || e.codec == nil {
		return "", ErrEngineNotReady
	}

	claims, err := e.codec.Decode(rawToken, token.ScopeResetPassword)
	if err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, "", ErrPasswordResetInvalid, nil)
		return "", ErrPasswordResetInvalid
	}
	email := claims.Subject()

	if err := e.resetNonces.Put(ctx, email, rawToken); err != nil {
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, email, ErrPasswordResetUnavailable, nil)
		return "", ErrPasswordResetUnavailable
	}

	e.emitAudit(ctx, auditEventPasswordResetOpened, true, email, nil, nil)

	return email, nil
}

// ConfirmPasswordReset describes the confirmpasswordreset operation and its observable behavior.
//
// The nonce minted by OpenPasswordReset is consumed exactly once; a second
// confirm with the same link, or a confirm whose nonce has expired, fails
// with ErrPasswordResetInvalid. If the nonce store cannot be reached the
// reset is refused — fail closed, never around the single-use guarantee.
// A successful reset also clears the stored refresh token, logging out
// whoever held the old session.
//
// ConfirmPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// ConfirmPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, rawToken, newPassword string) error {
	if e == nil || e.codec == nil {
		return ErrEngineNotReady
	}

	claims, err := e.codec.Decode(rawToken, token.ScopeResetPassword)
	if err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, "", ErrPasswordResetInvalid, nil)
		return ErrPasswordResetInvalid
	}
	email := claims.Subject()

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricPasswordResetFailure)
			e.emitAudit(ctx, auditEventPasswordResetFailure, false, email, ErrPasswordResetInvalid, nil)
			return ErrPasswordResetInvalid
		}
		return err
	}
	if !user.Confirmed {
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, email, ErrEmailNotConfirmed, nil)
		return ErrEmailNotConfirmed
	}

	consumed, err := e.resetNonces.Consume(ctx, email, rawToken)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, email, ErrPasswordResetUnavailable, nil)
		return ErrPasswordResetUnavailable
	}
	if !consumed {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, email, ErrPasswordResetInvalid, nil)
		return ErrPasswordResetInvalid
	}

	hash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := e.users.UpdatePasswordHash(ctx, email, hash); err != nil {
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, email, err, nil)
		return err
	}

	// The old session dies with the old password.
	if err := e.users.UpdateRefreshToken(ctx, email, ""); err != nil {
		log.Printf("authflow: refresh revocation after reset for %s failed: %v", email, err)
	}

	// The snapshot still carries the old hash.
	if err := e.identities.Delete(ctx, email); err != nil {
		log.Printf("authflow: identity cache eviction for %s failed: %v", email, err)
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditEventPasswordResetSuccess, true, email, nil, nil)

	return nil
}
