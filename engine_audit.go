package authflow

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSignupSuccess             = "signup_success"
	auditEventSignupDuplicate           = "signup_duplicate"
	auditEventSignupFailure             = "signup_failure"
	auditEventLoginSuccess              = "login_success"
	auditEventLoginFailure              = "login_failure"
	auditEventRefreshSuccess            = "refresh_success"
	auditEventRefreshInvalid            = "refresh_invalid"
	auditEventRefreshRevoked            = "refresh_revoked"
	auditEventLogout                    = "logout"
	auditEventEmailConfirmationRequest  = "email_confirmation_request"
	auditEventEmailConfirmationSuccess  = "email_confirmation_success"
	auditEventEmailConfirmationFailure  = "email_confirmation_failure"
	auditEventPasswordResetRequest      = "password_reset_request"
	auditEventPasswordResetOpened       = "password_reset_opened"
	auditEventPasswordResetSuccess      = "password_reset_success"
	auditEventPasswordResetFailure      = "password_reset_failure"
	auditEventMailDispatchFailure       = "mail_dispatch_failure"
	auditEventIdentityCacheInvalidation = "identity_cache_invalidation"
)

// AuditErrorCode defines a public type used by authFlow APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrUnauthenticated     AuditErrorCode = "unauthenticated"
	auditErrInvalidCredentials  AuditErrorCode = "invalid_credentials"
	auditErrUserNotFound        AuditErrorCode = "user_not_found"
	auditErrEmailNotConfirmed   AuditErrorCode = "email_not_confirmed"
	auditErrDuplicate           AuditErrorCode = "duplicate"
	auditErrRefreshInvalid      AuditErrorCode = "refresh_invalid"
	auditErrConfirmationInvalid AuditErrorCode = "confirmation_invalid"
	auditErrResetInvalid        AuditErrorCode = "reset_invalid"
	auditErrUnavailable         AuditErrorCode = "backend_unavailable"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrEmailNotConfirmed):
		return auditErrEmailNotConfirmed
	case errors.Is(err, ErrDuplicateUser):
		return auditErrDuplicate
	case errors.Is(err, ErrInvalidRefreshToken):
		return auditErrRefreshInvalid
	case errors.Is(err, ErrEmailConfirmationInvalid):
		return auditErrConfirmationInvalid
	case errors.Is(err, ErrPasswordResetInvalid):
		return auditErrResetInvalid
	case errors.Is(err, ErrPasswordResetUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
