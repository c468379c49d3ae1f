// Package chat stores per-session conversation history.
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/legalbot/jai/internal/config"
	"github.com/legalbot/jai/internal/models"
)

// Store keeps ordered conversation turns keyed by session ID. Callers pass
// the session ID explicitly; nothing here is ambient. History is append-only
// until Clear.
type Store interface {
	Append(ctx context.Context, sessionID string, turn models.ConversationTurn) error
	History(ctx context.Context, sessionID string) ([]models.ConversationTurn, error)
	Clear(ctx context.Context, sessionID string) error
	Close() error
}

// New creates the configured conversation store backend.
// Supported backends: "memory" (default), "redis".
func New(cfg config.ChatConfig, ttl time.Duration) (Store, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(cfg, ttl)
	default:
		return nil, fmt.Errorf("unknown chat backend: %s (supported: memory, redis)", cfg.Backend)
	}
}

// MemoryStore is an in-process conversation store. History lives for the
// process lifetime unless cleared.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]models.ConversationTurn
}

// NewMemoryStore creates an empty in-memory conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]models.ConversationTurn)}
}

// Append adds a turn to the session's history. AskedAt defaults to now.
func (m *MemoryStore) Append(ctx context.Context, sessionID string, turn models.ConversationTurn) error {
	if turn.AskedAt.IsZero() {
		turn.AskedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], turn)
	return nil
}

// History returns the session's turns oldest first. The returned slice is a
// copy; callers cannot mutate stored history.
func (m *MemoryStore) History(ctx context.Context, sessionID string) ([]models.ConversationTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	turns := m.sessions[sessionID]
	out := make([]models.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}

// Clear removes the session's history. Irreversible.
func (m *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}
