package main

import (
	"context"
	"sync"
	"time"

	authflow "github.com/VoloKh/authFlow"
	"github.com/VoloKh/authFlow/password"
)

const seedPassword = "loadtest-password"

// memoryStore is an in-memory UserStore. It implements the conditional
// rotation upgrade so the refresh phase exercises the atomic path.
type memoryStore struct {
	mu       sync.RWMutex
	byEmail  map[string]*authflow.UserRecord
	seedHash string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byEmail: make(map[string]*authflow.UserRecord),
	}
}

// seed inserts a confirmed account. All accounts share one password, so the
// bcrypt hash is computed once and reused.
func (s *memoryStore) seed(email, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seedHash == "" {
		hasher, err := password.NewHasher(password.Config{Cost: 4})
		if err != nil {
			return err
		}
		hash, err := hasher.Hash(seedPassword)
		if err != nil {
			return err
		}
		s.seedHash = hash
	}

	now := time.Now()
	s.byEmail[email] = &authflow.UserRecord{
		ID:           email,
		Username:     username,
		Email:        email,
		PasswordHash: s.seedHash,
		Confirmed:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return nil
}

func (s *memoryStore) GetByEmail(_ context.Context, email string) (*authflow.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byEmail[email]
	if !ok {
		return nil, authflow.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (s *memoryStore) Create(_ context.Context, params authflow.CreateUserParams) (*authflow.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[params.Email]; ok {
		return nil, authflow.ErrDuplicateUser
	}

	now := time.Now()
	user := &authflow.UserRecord{
		ID:           params.Email,
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		AvatarURL:    params.AvatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byEmail[params.Email] = user

	out := *user
	return &out, nil
}

func (s *memoryStore) UpdateRefreshToken(_ context.Context, email, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[email]
	if !ok {
		return authflow.ErrUserNotFound
	}
	user.RefreshToken = refreshToken
	return nil
}

func (s *memoryStore) UpdatePasswordHash(_ context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[email]
	if !ok {
		return authflow.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (s *memoryStore) MarkEmailConfirmed(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[email]
	if !ok {
		return authflow.ErrUserNotFound
	}
	user.Confirmed = true
	return nil
}

// RotateRefreshToken swaps presented for next in one critical section.
func (s *memoryStore) RotateRefreshToken(_ context.Context, email, presented, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[email]
	if !ok {
		return false, authflow.ErrUserNotFound
	}
	if user.RefreshToken != presented {
		return false, nil
	}
	user.RefreshToken = next
	return true, nil
}
