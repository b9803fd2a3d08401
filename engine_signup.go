package authflow

import (
	"context"
	"errors"
)

// Signup describes the signup operation and its observable behavior.
//
// The account is created unconfirmed: it cannot log in until the emailed
// confirmation link is followed. The confirmation mail is dispatched
// best-effort after the row exists; a mail failure never fails the signup.
//
// Signup may return an error when input validation, dependency calls, or security checks fail.
// Signup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) (*UserRecord, error) {
	if e == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, ErrSignupInvalid
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := e.users.Create(ctx, CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		AvatarURL:    req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			e.metricInc(MetricSignupDuplicate)
			e.emitAudit(ctx, auditEventSignupDuplicate, false, req.Email, ErrDuplicateUser, nil)
			return nil, ErrDuplicateUser
		}
		e.emitAudit(ctx, auditEventSignupFailure, false, req.Email, err, nil)
		return nil, err
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, auditEventSignupSuccess, true, user.Email, nil, func() map[string]string {
		return map[string]string{"username": user.Username}
	})

	e.sendConfirmationMail(ctx, user)

	return user, nil
}
