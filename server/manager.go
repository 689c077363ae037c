package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
	"github.com/sg19chess/mla-voice-saas/agent/orchestrator"
)

// Manager owns the live call sessions and their Redis bookkeeping.
// Redis is optional; without it the gateway keeps sessions in memory
// only.
type Manager struct {
	sessions map[string]*callSession
	mu       sync.RWMutex

	redis        *redis.Client
	cfg          Config
	orchestrator *orchestrator.Orchestrator
	interpreter  contractx.Interpreter
}

func NewManager(cfg Config, orch *orchestrator.Orchestrator, interp contractx.Interpreter, rdb *redis.Client) *Manager {
	return &Manager{
		sessions:     make(map[string]*callSession),
		redis:        rdb,
		cfg:          cfg,
		orchestrator: orch,
		interpreter:  interp,
	}
}

func (m *Manager) CreateSession(ctx context.Context, conn *websocket.Conn) (*callSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, fmt.Errorf("maximum concurrent calls reached")
	}

	sess := newCallSession(uuid.New().String(), conn, m.orchestrator, m.interpreter)
	m.sessions[sess.ID] = sess

	if m.redis != nil {
		m.redis.HSet(ctx, "call:"+sess.ID, map[string]interface{}{
			"connected_at": time.Now().Format(time.RFC3339),
			"status":       "active",
		})
		m.redis.SAdd(ctx, "active_calls", sess.ID)
		m.redis.Expire(ctx, "call:"+sess.ID, m.cfg.SessionTimeout)
	}

	return sess, nil
}

func (m *Manager) RemoveSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[sessionID]
	if !exists {
		return nil
	}

	sess.close()
	delete(m.sessions, sessionID)

	if m.redis != nil {
		m.redis.Del(ctx, "call:"+sessionID)
		m.redis.SRem(ctx, "active_calls", sessionID)
	}

	return nil
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, sess := range m.sessions {
		sess.close()
		delete(m.sessions, id)
	}
}
