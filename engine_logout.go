package authflow

import "context"

// Logout describes the logout operation and its observable behavior.
//
// The presented access token must still validate; the stored refresh token is
// then cleared and the identity snapshot evicted, so the session cannot be
// renewed and the next resolve sees fresh data. The access token itself stays
// valid until its expiry — revocation lists are out of scope.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, accessToken string) error {
	user, err := e.Authenticate(ctx, accessToken)
	if err != nil {
		return err
	}

	if err := e.users.UpdateRefreshToken(ctx, user.Email, ""); err != nil {
		e.emitAudit(ctx, auditEventLogout, false, user.Email, err, nil)
		return err
	}

	if err := e.identities.Delete(ctx, user.Email); err != nil {
		e.emitAudit(ctx, auditEventLogout, false, user.Email, err, nil)
		return err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, user.Email, nil, nil)

	return nil
}
