package authflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/VoloKh/authFlow/password"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

type mockUserStore struct {
	mu    sync.Mutex
	users map[string]*UserRecord // keyed by email

	createErr         error
	updateRefreshErr  error
	updatePasswordErr error

	getCalls            int
	createCalls         int
	updateRefreshCalls  int
	updatePasswordCalls int
	confirmCalls        int
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users: map[string]*UserRecord{},
	}
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++

	user, ok := m.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}

	out := *user
	return &out, nil
}

func (m *mockUserStore) Create(_ context.Context, params CreateUserParams) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++

	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.users[params.Email]; ok {
		return nil, ErrDuplicateUser
	}
	for _, u := range m.users {
		if u.Username == params.Username {
			return nil, ErrDuplicateUser
		}
	}

	now := time.Now()
	user := &UserRecord{
		ID:           params.Email, // good enough for tests
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		AvatarURL:    params.AvatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[params.Email] = user

	out := *user
	return &out, nil
}

func (m *mockUserStore) UpdateRefreshToken(_ context.Context, email, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateRefreshCalls++

	if m.updateRefreshErr != nil {
		return m.updateRefreshErr
	}
	user, ok := m.users[email]
	if !ok {
		return ErrUserNotFound
	}
	user.RefreshToken = refreshToken
	return nil
}

func (m *mockUserStore) UpdatePasswordHash(_ context.Context, email, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updatePasswordCalls++

	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	user, ok := m.users[email]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockUserStore) MarkEmailConfirmed(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmCalls++

	user, ok := m.users[email]
	if !ok {
		return ErrUserNotFound
	}
	user.Confirmed = true
	return nil
}

func (m *mockUserStore) stored(email string) UserRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return UserRecord{}
	}
	return *user
}

// rotatingUserStore adds the conditional-swap upgrade to the mock.
type rotatingUserStore struct {
	*mockUserStore
	rotateCalls int
}

func (r *rotatingUserStore) RotateRefreshToken(_ context.Context, email, presented, next string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rotateCalls++

	user, ok := r.users[email]
	if !ok {
		return false, ErrUserNotFound
	}
	if user.RefreshToken != presented {
		return false, nil
	}
	user.RefreshToken = next
	return true, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password.Cost = 4 // keep bcrypt cheap in tests
	cfg.Mail.Enabled = false
	cfg.Audit.Enabled = false
	cfg.Metrics.Enabled = true
	return cfg
}

func newTestEngine(t *testing.T, rdb *redis.Client, store UserStore, mutate func(*Config)) *Engine {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func seedUser(t *testing.T, store *mockUserStore, email, username, plainPassword string, confirmed bool) {
	t.Helper()

	hasher, err := password.NewHasher(password.Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := hasher.Hash(plainPassword)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	now := time.Now()
	store.mu.Lock()
	store.users[email] = &UserRecord{
		ID:           email,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Confirmed:    confirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	store.mu.Unlock()
}
