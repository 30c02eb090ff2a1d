package api

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/service"
)

const defaultMaxSessions = 256

// SessionRegistry keeps the live selection sessions. It is bounded: creating
// a session beyond capacity evicts the least recently used one.
type SessionRegistry struct {
	service  *service.TriageService
	sessions *lru.Cache
	logger   *logrus.Logger
}

// NewSessionRegistry creates a registry holding at most maxSessions.
func NewSessionRegistry(svc *service.TriageService, maxSessions int, logger *logrus.Logger) (*SessionRegistry, error) {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}

	sessions, err := lru.NewWithEvict(maxSessions, func(key, _ interface{}) {
		logger.WithField("session_id", key).Debug("Selection session evicted")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}

	return &SessionRegistry{
		service:  svc,
		sessions: sessions,
		logger:   logger,
	}, nil
}

// Create starts a new session for locale.
func (r *SessionRegistry) Create(locale string) *service.SelectionSession {
	session := r.service.NewSession(locale)
	r.sessions.Add(session.ID(), session)
	return session
}

// Get returns the session with id.
func (r *SessionRegistry) Get(id string) (*service.SelectionSession, bool) {
	value, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	session, ok := value.(*service.SelectionSession)
	return session, ok
}

// Delete removes the session with id.
func (r *SessionRegistry) Delete(id string) bool {
	return r.sessions.Remove(id)
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	return r.sessions.Len()
}
