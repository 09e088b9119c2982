package user

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation. It backs development runs
// without a database and the test suite.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*Record
	byUsername map[string]string
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*Record),
		byUsername: make(map[string]string),
	}
}

func cloneRecord(rec *Record) *Record {
	clone := *rec
	return &clone
}

// FindByUsername implements Store.
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneRecord(s.byID[id]), nil
}

// FindByID implements Store.
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneRecord(rec), nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[rec.Username]; taken {
		return ErrDuplicateUsername
	}

	stored := cloneRecord(rec)
	s.byID[stored.ID] = stored
	s.byUsername[stored.Username] = stored.ID

	return nil
}

// Exists implements Store.
func (s *MemoryStore) Exists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byUsername[username]
	return ok, nil
}

// SaveRefreshToken implements Store.
func (s *MemoryStore) SaveRefreshToken(ctx context.Context, id, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}

	rec.RefreshToken = token
	rec.RefreshTokenExpiry = expiry

	return nil
}

// RotateRefreshToken implements Store. The compare and the swap happen under
// one lock, so concurrent rotations for the same user are linearized.
func (s *MemoryStore) RotateRefreshToken(ctx context.Context, id, current, next string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}

	if rec.RefreshToken == "" || rec.RefreshToken != current {
		return ErrRefreshTokenMismatch
	}

	rec.RefreshToken = next
	rec.RefreshTokenExpiry = expiry

	return nil
}
