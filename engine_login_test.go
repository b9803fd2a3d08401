package authflow

import (
	"context"
	"errors"
	"testing"
)

func TestLoginSuccessIssuesPairAndPersistsRefresh(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	seedUser(t, store, "alice@example.com", "alice", "correct-horse", true)

	engine := newTestEngine(t, rdb, store, nil)

	pair, err := engine.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be set")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}
	if pair.TokenType != "bearer" {
		t.Fatalf("expected token type bearer, got %q", pair.TokenType)
	}

	if got := store.stored("alice@example.com").RefreshToken; got != pair.RefreshToken {
		t.Fatalf("stored refresh token mismatch: got %q want %q", got, pair.RefreshToken)
	}

	if engine.metrics.Value(MetricLoginSuccess) != 1 {
		t.Fatal("expected login success metric")
	}
}

func TestLoginUnknownUser(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, newMockUserStore(), nil)

	_, err := engine.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "x"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLoginUnconfirmedRejectedBeforePasswordCheck(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMockUserStore()
	seedUser(t, store, "bob@example.com", "bob", "hunter2", false)

	engine := newTestEngine(t, rdb, store, nil)

	// Even the correct password is refused while unconfirmed.
	_, err := engine.Login(context.Background(), LoginRequest{Email: "bob@example.com", Password: "hunter2"})
	if !errors.Is(err, ErrEmailNotConfirmed) {
		t.Fatalf("expected ErrEmailNotConfirmed, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMockUserStore()
	seedUser(t, store, "alice@example.com", "alice", "correct-horse", true)

	engine := newTestEngine(t, rdb, store, nil)

	_, err := engine.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if engine.metrics.Value(MetricLoginFailure) != 1 {
		t.Fatal("expected login failure metric")
	}
}

func TestLoginOverwritesPreviousRefreshToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	seedUser(t, store, "alice@example.com", "alice", "correct-horse", true)

	engine := newTestEngine(t, rdb, store, nil)

	first, err := engine.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("first Login failed: %v", err)
	}
	second, err := engine.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}

	if first.RefreshToken == second.RefreshToken {
		t.Fatal("expected a fresh refresh token per login")
	}
	if got := store.stored("alice@example.com").RefreshToken; got != second.RefreshToken {
		t.Fatal("expected the second login's refresh token to be the stored one")
	}

	// The first session can no longer refresh.
	if _, err := engine.Refresh(ctx, first.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}
