package authflow

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by authFlow APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Cache    CacheConfig
	Mail     MailConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by authFlow APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	SigningMethod string // "hs256" (default), "ed25519" optional
	Secret        []byte // hs256 shared secret
	PrivateKey    []byte // ed25519 private key
	PublicKey     []byte // ed25519 public key
	Issuer        string
	Leeway        time.Duration

	AccessTTL  time.Duration // bearer access tokens
	RefreshTTL time.Duration // rotating refresh tokens
	ActionTTL  time.Duration // email confirmation / password reset / custom links
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authFlow APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Cost int // bcrypt cost; 0 selects the library default
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig defines a public type used by authFlow APIs.
//
// CacheConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CacheConfig struct {
	IdentityPrefix   string // key prefix for identity snapshots
	ResetNoncePrefix string // key prefix for single-use reset nonces
	IdentityTTL      time.Duration
	ResetNonceTTL    time.Duration
}

/*
====================================
MAIL CONFIG
====================================
*/

// MailConfig defines a public type used by authFlow APIs.
//
// MailConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MailConfig struct {
	Enabled     bool
	LinkBaseURL string // fallback when the request context carries no base URL
	ConfirmPath string // appended to the base URL, token appended after
	ResetPath   string
	SendTimeout time.Duration // per-send budget for async dispatch
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by authFlow APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by authFlow APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULTS
====================================
*/

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			SigningMethod: "hs256",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			ActionTTL:     15 * time.Minute,
		},
		Password: PasswordConfig{
			Cost: 0, // bcrypt default
		},
		Cache: CacheConfig{
			IdentityPrefix:   "identity:",
			ResetNoncePrefix: "reset-nonce:",
			IdentityTTL:      900 * time.Second,
			ResetNonceTTL:    900 * time.Second,
		},
		Mail: MailConfig{
			Enabled:     true,
			ConfirmPath: "/api/auth/confirmed_email/",
			ResetPath:   "/api/auth/get_reset_token/",
			SendTimeout: 10 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// -------- TOKEN --------
	switch c.Token.SigningMethod {
	case "hs256":
		if len(c.Token.Secret) == 0 {
			return errors.New("Token.Secret required for hs256")
		}
	case "ed25519":
		if len(c.Token.PrivateKey) == 0 || len(c.Token.PublicKey) == 0 {
			return errors.New("Token.PrivateKey and Token.PublicKey required for ed25519")
		}
	default:
		return errors.New("Token.SigningMethod must be hs256 or ed25519")
	}
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token.AccessTTL must be positive")
	}
	if c.Token.RefreshTTL <= c.Token.AccessTTL {
		return errors.New("Token.RefreshTTL must exceed Token.AccessTTL")
	}
	if c.Token.ActionTTL <= 0 {
		return errors.New("Token.ActionTTL must be positive")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token.Leeway out of range")
	}

	// -------- CACHE --------
	if strings.TrimSpace(c.Cache.IdentityPrefix) == "" {
		return errors.New("Cache.IdentityPrefix required")
	}
	if strings.TrimSpace(c.Cache.ResetNoncePrefix) == "" {
		return errors.New("Cache.ResetNoncePrefix required")
	}
	if c.Cache.IdentityPrefix == c.Cache.ResetNoncePrefix {
		return errors.New("Cache prefixes must differ")
	}
	if c.Cache.IdentityTTL <= 0 {
		return errors.New("Cache.IdentityTTL must be positive")
	}
	if c.Cache.ResetNonceTTL <= 0 {
		return errors.New("Cache.ResetNonceTTL must be positive")
	}

	// -------- MAIL --------
	if c.Mail.Enabled {
		if c.Mail.ConfirmPath == "" || c.Mail.ResetPath == "" {
			return errors.New("Mail paths required when mail is enabled")
		}
		if c.Mail.SendTimeout <= 0 {
			return errors.New("Mail.SendTimeout must be positive")
		}
	}

	// -------- AUDIT --------
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be positive when audit is enabled")
	}

	return nil
}

/*
====================================
CLONING
====================================
*/

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}
