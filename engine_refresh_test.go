package authflow

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

func login(t *testing.T, engine *Engine, email, pw string) *TokenPair {
	t.Helper()

	pair, err := engine.Login(context.Background(), LoginRequest{Email: email, Password: pw})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return pair
}

func refreshFixture(t *testing.T, rdb *redis.Client) (*Engine, *mockUserStore, *TokenPair) {
	t.Helper()

	store := newMockUserStore()
	seedUser(t, store, "alice@example.com", "alice", "correct-horse", true)
	engine := newTestEngine(t, rdb, store, nil)
	pair := login(t, engine, "alice@example.com", "correct-horse")

	return engine, store, pair
}

func TestRefreshRotatesBothTokens(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine, store, pair := refreshFixture(t, rdb)

	next, err := engine.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token did not rotate")
	}
	if next.AccessToken == pair.AccessToken {
		t.Fatal("access token did not rotate")
	}
	if got := store.stored("alice@example.com").RefreshToken; got != next.RefreshToken {
		t.Fatal("rotated refresh token not persisted")
	}
	if engine.metrics.Value(MetricRefreshSuccess) != 1 {
		t.Fatal("expected refresh success metric")
	}
}

func TestRefreshWithRotatedOutTokenRevokesSession(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine, store, pair := refreshFixture(t, rdb)

	next, err := engine.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// Replaying the rotated-out token must fail and burn the live one.
	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if got := store.stored("alice@example.com").RefreshToken; got != "" {
		t.Fatalf("expected stored refresh token cleared, got %q", got)
	}

	// The previously legitimate holder is collateral damage.
	if _, err := engine.Refresh(ctx, next.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for revoked session, got %v", err)
	}
	if engine.metrics.Value(MetricRefreshRevoked) != 2 {
		t.Fatalf("expected 2 revocations, got %d", engine.metrics.Value(MetricRefreshRevoked))
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine, store, pair := refreshFixture(t, rdb)

	_, err := engine.Refresh(ctx, pair.AccessToken)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	// A wrong-scope presentation is not a mismatch: the session survives.
	if got := store.stored("alice@example.com").RefreshToken; got != pair.RefreshToken {
		t.Fatal("stored refresh token must be untouched after a scope rejection")
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine, _, _ := refreshFixture(t, rdb)

	_, err := engine.Refresh(context.Background(), "not-a-token")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRefreshUnknownSubject(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	seedUser(t, store, "alice@example.com", "alice", "correct-horse", true)
	engine := newTestEngine(t, rdb, store, nil)
	pair := login(t, engine, "alice@example.com", "correct-horse")

	// Account deleted out from under the session.
	store.mu.Lock()
	delete(store.users, "alice@example.com")
	store.mu.Unlock()

	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRefreshAtomicRotatorPath(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := &rotatingUserStore{mockUserStore: newMockUserStore()}
	seedUser(t, store.mockUserStore, "alice@example.com", "alice", "correct-horse", true)
	engine := newTestEngine(t, rdb, store, nil)
	pair := login(t, engine, "alice@example.com", "correct-horse")

	next, err := engine.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if store.rotateCalls != 1 {
		t.Fatalf("expected rotator to be used, got %d calls", store.rotateCalls)
	}
	if got := store.stored("alice@example.com").RefreshToken; got != next.RefreshToken {
		t.Fatal("rotator did not persist the next token")
	}

	// Replay through the rotator also revokes.
	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if got := store.stored("alice@example.com").RefreshToken; got != "" {
		t.Fatal("expected stored refresh token cleared after rotator mismatch")
	}
}
