package authflow

import (
	"context"
	"errors"
)

// Login describes the login operation and its observable behavior.
//
// The checks run in a fixed order — account existence, email confirmation,
// password — and each failure maps to its own sentinel so the host can speak
// the original API's distinct 401 messages.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	if e == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, req.Email, ErrUserNotFound, nil)
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !user.Confirmed {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.Email, ErrEmailNotConfirmed, nil)
		return nil, ErrEmailNotConfirmed
	}

	if !e.passwordHash.Verify(req.Password, user.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.Email, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	pair, err := e.issueTokenPair(ctx, user)
	if err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, user.Email, err, nil)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.Email, nil, nil)

	return pair, nil
}
