package authflow

import (
	"context"
	"log"
	"strings"

	"github.com/VoloKh/authFlow/token"
)

// linkFor joins the request's base URL (falling back to the configured one)
// with path and the raw token.
func (e *Engine) linkFor(ctx context.Context, path, rawToken string) string {
	base := linkBaseURLFromContext(ctx)
	if base == "" {
		base = e.config.Mail.LinkBaseURL
	}
	return strings.TrimSuffix(base, "/") + path + rawToken
}

// dispatchMail runs send on its own goroutine with the configured timeout.
// Delivery is best-effort: failures are logged, metered and audited, and the
// triggering flow never sees them.
func (e *Engine) dispatchMail(kind, email string, send func(ctx context.Context) error) {
	if !e.config.Mail.Enabled {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.config.Mail.SendTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			log.Printf("authflow: %s mail to %s failed: %v", kind, email, err)
			e.metricInc(MetricMailDispatchFailure)
			e.emitAudit(ctx, auditEventMailDispatchFailure, false, email, nil, func() map[string]string {
				return map[string]string{"kind": kind}
			})
		}
	}()
}

func (e *Engine) sendConfirmationMail(ctx context.Context, user *UserRecord) {
	raw, err := e.codec.Issue(user.Email, token.ScopeConfirmEmail, e.config.Token.ActionTTL)
	if err != nil {
		log.Printf("authflow: confirmation token for %s failed: %v", user.Email, err)
		return
	}

	link := e.linkFor(ctx, e.config.Mail.ConfirmPath, raw)
	username := user.Username
	email := user.Email

	e.dispatchMail("confirmation", email, func(ctx context.Context) error {
		return e.mailer.SendEmailConfirmation(ctx, email, username, link)
	})
}

func (e *Engine) sendResetMail(ctx context.Context, user *UserRecord) {
	raw, err := e.codec.Issue(user.Email, token.ScopeResetPassword, e.config.Token.ActionTTL)
	if err != nil {
		log.Printf("authflow: reset token for %s failed: %v", user.Email, err)
		return
	}

	link := e.linkFor(ctx, e.config.Mail.ResetPath, raw)
	username := user.Username
	email := user.Email

	e.dispatchMail("password_reset", email, func(ctx context.Context) error {
		return e.mailer.SendPasswordReset(ctx, email, username, link)
	})
}
