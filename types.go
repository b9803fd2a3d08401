package authflow

import (
	"context"
	"time"
)

// UserRecord defines a public type used by authFlow APIs.
//
// UserRecord instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type UserRecord struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	AvatarURL    string
	RefreshToken string
	Confirmed    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserParams defines a public type used by authFlow APIs.
//
// CreateUserParams instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	AvatarURL    string
}

// UserStore is the persistence contract the host application implements. The
// engine never talks to the primary datastore directly; everything it needs
// from the user table goes through this interface.
//
// Error contract: GetByEmail returns ErrUserNotFound for an absent account;
// Create returns ErrDuplicateUser when the email or username is taken. Any
// other error is treated as an infrastructure failure and passed through.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	Create(ctx context.Context, params CreateUserParams) (*UserRecord, error)

	// UpdateRefreshToken persists the account's current refresh token.
	// An empty token clears it, revoking the live session.
	UpdateRefreshToken(ctx context.Context, email, refreshToken string) error

	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
	MarkEmailConfirmed(ctx context.Context, email string) error
}

// RefreshTokenRotator is an optional upgrade of UserStore. When the store
// implements it, refresh rotation is delegated to a single conditional write
// (compare the stored token, swap in the next one atomically), closing the
// read-compare-write race the fallback path carries. The boolean result is
// false when the stored token did not match presented.
type RefreshTokenRotator interface {
	RotateRefreshToken(ctx context.Context, email, presented, next string) (bool, error)
}

// TokenPair defines a public type used by authFlow APIs.
//
// TokenPair instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // always "bearer"
}

// SignupRequest defines a public type used by authFlow APIs.
//
// SignupRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignupRequest struct {
	Username  string
	Email     string
	Password  string
	AvatarURL string // already uploaded by the host application
}

// LoginRequest defines a public type used by authFlow APIs.
//
// LoginRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginRequest struct {
	Email    string
	Password string
}
