// AngelaMos | 2026
// memory.go

package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pawmart/go-backend/internal/core"
)

// MemoryRepository is an in-memory session store with the same
// contract as the SQL adapter. It backs tests and single-process
// development setups; nothing survives a restart.
type MemoryRepository struct {
	mu       sync.RWMutex
	byHash   map[string]*Session
	byUserID map[string]map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byHash:   make(map[string]*Session),
		byUserID: make(map[string]map[string]struct{}),
	}
}

func (m *MemoryRepository) Create(_ context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byHash[session.TokenHash]; exists {
		return fmt.Errorf("create session: %w", core.ErrDuplicateKey)
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	stored := *session
	m.byHash[session.TokenHash] = &stored

	if m.byUserID[session.UserID] == nil {
		m.byUserID[session.UserID] = make(map[string]struct{})
	}
	m.byUserID[session.UserID][session.TokenHash] = struct{}{}

	return nil
}

func (m *MemoryRepository) FindByToken(
	_ context.Context,
	tokenHash string,
) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.byHash[tokenHash]
	if !ok {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}

	found := *session
	return &found, nil
}

func (m *MemoryRepository) DeleteByToken(
	_ context.Context,
	tokenHash string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.byHash[tokenHash]
	if !ok {
		return fmt.Errorf("delete session: %w", core.ErrNotFound)
	}

	delete(m.byHash, tokenHash)
	delete(m.byUserID[session.UserID], tokenHash)

	return nil
}

func (m *MemoryRepository) DeleteAllForUser(
	_ context.Context,
	userID string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for hash := range m.byUserID[userID] {
		delete(m.byHash, hash)
	}
	delete(m.byUserID, userID)

	return nil
}

func (m *MemoryRepository) GetActiveForUser(
	_ context.Context,
	userID string,
) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	var sessions []Session
	for hash := range m.byUserID[userID] {
		if session, ok := m.byHash[hash]; ok && session.ExpiresAt.After(now) {
			sessions = append(sessions, *session)
		}
	}

	return sessions, nil
}

func (m *MemoryRepository) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var removed int64
	for hash, session := range m.byHash {
		if session.ExpiresAt.Before(now) {
			delete(m.byHash, hash)
			delete(m.byUserID[session.UserID], hash)
			removed++
		}
	}

	return removed, nil
}

var _ Repository = (*MemoryRepository)(nil)
