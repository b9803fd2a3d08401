package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod defines a public type used by authFlow APIs.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodHS256 is an exported constant or variable used by the authentication engine.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 is an exported constant or variable used by the authentication engine.
	MethodEd25519 SigningMethod = "ed25519"
)

// Scope names the single purpose a token was minted for. A token is only
// accepted by the operation that expects its scope; presenting it anywhere
// else fails with ErrWrongScope.
type Scope string

const (
	// ScopeAccess is an exported constant or variable used by the authentication engine.
	ScopeAccess Scope = "access_token"
	// ScopeRefresh is an exported constant or variable used by the authentication engine.
	ScopeRefresh Scope = "refresh_token"
	// ScopeConfirmEmail is an exported constant or variable used by the authentication engine.
	ScopeConfirmEmail Scope = "confirm_email"
	// ScopeResetPassword is an exported constant or variable used by the authentication engine.
	ScopeResetPassword Scope = "reset_password"
)

var (
	// ErrInvalidToken is the umbrella for every decode failure. Callers that
	// must not leak which check failed match on this one sentinel.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidSignature is an exported constant or variable used by the authentication engine.
	ErrInvalidSignature = fmt.Errorf("%w: signature verification failed", ErrInvalidToken)
	// ErrExpired is an exported constant or variable used by the authentication engine.
	ErrExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)
	// ErrWrongScope is an exported constant or variable used by the authentication engine.
	ErrWrongScope = fmt.Errorf("%w: unexpected token scope", ErrInvalidToken)
)

// Config defines a public type used by authFlow APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	SigningMethod SigningMethod
	Secret        []byte // hs256 shared secret
	PrivateKey    []byte // ed25519 private key (seed or full form)
	PublicKey     []byte // ed25519 public key
	Issuer        string
	Leeway        time.Duration
}

// Claims carries the decoded payload of a verified token: the subject
// (the account email), the scope, and the registered iat/exp pair.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Subject returns the account email the token was minted for.
func (c *Claims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Codec defines a public type used by authFlow APIs.
//
// Codec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Codec struct {
	config Config
}

// NewCodec describes the newcodec operation and its observable behavior.
//
// NewCodec may return an error when input validation, dependency calls, or security checks fail.
// NewCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.Secret) == 0 {
			return nil, errors.New("hs256 requires a shared secret")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Codec{config: cfg}, nil
}

// Issue mints a signed token for subject with exactly one scope and the
// given lifetime. Issuance only fails on configuration or signing errors,
// never for business reasons.
func (c *Codec) Issue(subject string, scope Scope, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}
	if scope == "" {
		return "", errors.New("empty scope")
	}
	if ttl <= 0 {
		return "", errors.New("non-positive ttl")
	}

	// The jti makes every token unique even when two are minted for the same
	// subject within one clock second; rotation depends on the new refresh
	// token differing from the old one.
	now := time.Now()
	claims := Claims{
		Scope: string(scope),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}

	tok := jwt.NewWithClaims(c.getMethod(), claims)

	signKey, err := c.getSignKey()
	if err != nil {
		return "", err
	}

	return tok.SignedString(signKey)
}

// Decode verifies raw and requires its scope to equal want. Every failure
// wraps ErrInvalidToken; the concrete sentinel (ErrInvalidSignature,
// ErrExpired, ErrWrongScope) is available for auditing but callers facing
// untrusted input should collapse to the umbrella.
func (c *Codec) Decode(raw string, want Scope) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.getMethod().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.getMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.getVerifyKey()
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalidSignature
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidSignature
	}
	if claims.RegisteredClaims.Subject == "" {
		return nil, ErrInvalidSignature
	}
	if claims.Scope != string(want) {
		return nil, ErrWrongScope
	}

	return claims, nil
}

func (c *Codec) getMethod() jwt.SigningMethod {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (c *Codec) getSignKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return parseEdPrivateKey(c.config.PrivateKey)
	default:
		return c.config.Secret, nil
	}
}

func (c *Codec) getVerifyKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(c.config.PublicKey)
	default:
		return c.config.Secret, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	switch len(key) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(key), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(key), nil
	default:
		return nil, errors.New("ed25519 private key must be seed or full form")
	}
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) != ed25519.PublicKeySize {
		return nil, errors.New("ed25519 public key has wrong length")
	}
	return ed25519.PublicKey(key), nil
}
