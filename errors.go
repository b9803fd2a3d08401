package authflow

import "errors"

var (
	// ErrUnauthenticated is an exported constant or variable used by the authentication engine.
	//
	// It is the single answer for every token-validation failure on untrusted
	// input — signature, expiry, and scope problems all collapse into it so a
	// caller cannot probe which check failed.
	ErrUnauthenticated = errors.New("could not validate credentials")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid password")
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailNotConfirmed is an exported constant or variable used by the authentication engine.
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	// ErrDuplicateUser is an exported constant or variable used by the authentication engine.
	ErrDuplicateUser = errors.New("account already exists")
	// ErrInvalidRefreshToken is an exported constant or variable used by the authentication engine.
	//
	// Returned when a structurally valid refresh token does not match the one
	// stored for the account. The stored token is cleared as a side effect, so
	// the holder of the legitimate token is logged out too.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrEmailConfirmationInvalid is an exported constant or variable used by the authentication engine.
	ErrEmailConfirmationInvalid = errors.New("email confirmation link invalid or expired")
	// ErrPasswordResetInvalid is an exported constant or variable used by the authentication engine.
	ErrPasswordResetInvalid = errors.New("password reset link invalid or expired")
	// ErrPasswordResetUnavailable is an exported constant or variable used by the authentication engine.
	ErrPasswordResetUnavailable = errors.New("password reset backend unavailable")
	// ErrSignupInvalid is an exported constant or variable used by the authentication engine.
	ErrSignupInvalid = errors.New("username, email and password are required")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not fully initialized")
)
