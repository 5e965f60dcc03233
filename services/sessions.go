package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an idle session is kept before eviction.
// The original kept state only for the life of a browser tab; expiring idle
// sessions is the server-side analogue.
const DefaultSessionTTL = 2 * time.Hour

// SessionManager owns the per-session state stores, keyed by session id.
// Idle sessions expire via the cache janitor.
type SessionManager struct {
	sessions *cache.Cache
	ttl      time.Duration
	logger   *zap.SugaredLogger
}

// NewSessionManager creates a session manager with the given idle TTL
func NewSessionManager(ttl time.Duration, logger *zap.SugaredLogger) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &SessionManager{
		sessions: cache.New(ttl, ttl/2),
		ttl:      ttl,
		logger:   logger,
	}
}

// GetOrCreate returns the store for the session, creating it (and a fresh
// session id when none was supplied) as needed. Touching a session extends
// its TTL.
func (m *SessionManager) GetOrCreate(sessionID string) (*Store, string) {
	if sessionID == "" {
		sessionID = uuid.NewString()
		m.logger.Infow("Created session", "session_id", sessionID)
	}

	if existing, found := m.sessions.Get(sessionID); found {
		store := existing.(*Store)
		m.sessions.Set(sessionID, store, cache.DefaultExpiration)
		return store, sessionID
	}

	store := NewStore()
	m.sessions.Set(sessionID, store, cache.DefaultExpiration)
	return store, sessionID
}

// Get returns the store for an existing session
func (m *SessionManager) Get(sessionID string) (*Store, bool) {
	existing, found := m.sessions.Get(sessionID)
	if !found {
		return nil, false
	}
	m.sessions.Set(sessionID, existing, cache.DefaultExpiration)
	return existing.(*Store), true
}

// Count returns the number of live sessions
func (m *SessionManager) Count() int {
	return m.sessions.ItemCount()
}

// GetStatus returns the current status of the session manager
func (m *SessionManager) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"sessions": m.Count(),
		"ttl":      m.ttl.String(),
	}
}
