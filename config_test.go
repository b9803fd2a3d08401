package authflow

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Token.AccessTTL != 15*time.Minute {
		t.Fatalf("unexpected access TTL: %v", cfg.Token.AccessTTL)
	}
	if cfg.Token.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("unexpected refresh TTL: %v", cfg.Token.RefreshTTL)
	}
	if cfg.Cache.IdentityTTL != 900*time.Second || cfg.Cache.ResetNonceTTL != 900*time.Second {
		t.Fatal("unexpected cache TTLs")
	}
}

func TestConfigValidateRejections(t *testing.T) {
	base := func() Config {
		cfg := DefaultConfig()
		cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing hs256 secret", func(c *Config) { c.Token.Secret = nil }},
		{"unknown signing method", func(c *Config) { c.Token.SigningMethod = "rs256" }},
		{"ed25519 without keys", func(c *Config) { c.Token.SigningMethod = "ed25519" }},
		{"zero access ttl", func(c *Config) { c.Token.AccessTTL = 0 }},
		{"refresh not exceeding access", func(c *Config) { c.Token.RefreshTTL = c.Token.AccessTTL }},
		{"zero action ttl", func(c *Config) { c.Token.ActionTTL = 0 }},
		{"oversized leeway", func(c *Config) { c.Token.Leeway = 5 * time.Minute }},
		{"blank identity prefix", func(c *Config) { c.Cache.IdentityPrefix = "  " }},
		{"blank nonce prefix", func(c *Config) { c.Cache.ResetNoncePrefix = "" }},
		{"colliding prefixes", func(c *Config) { c.Cache.ResetNoncePrefix = c.Cache.IdentityPrefix }},
		{"zero identity ttl", func(c *Config) { c.Cache.IdentityTTL = 0 }},
		{"zero nonce ttl", func(c *Config) { c.Cache.ResetNonceTTL = 0 }},
		{"mail enabled without paths", func(c *Config) { c.Mail.ConfirmPath = "" }},
		{"mail enabled without timeout", func(c *Config) { c.Mail.SendTimeout = 0 }},
		{"audit enabled without buffer", func(c *Config) { c.Audit.BufferSize = 0 }},
	}

	for _, tc := range cases {
		cfg := base()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestConfigValidateDisabledSectionsSkipped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Mail.Enabled = false
	cfg.Mail.ConfirmPath = ""
	cfg.Mail.SendTimeout = 0
	cfg.Audit.Enabled = false
	cfg.Audit.BufferSize = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled sections must not be validated: %v", err)
	}
}

func TestCloneConfigDetachesKeyMaterial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")

	clone := cloneConfig(cfg)
	clone.Token.Secret[0] = 'x'

	if cfg.Token.Secret[0] == 'x' {
		t.Fatal("clone must not share the secret's backing array")
	}
}
