package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/symptom-triage-engine/internal/domain"
)

// ErrNothingToAnalyze is returned when a session has neither selected keys
// nor description text.
var ErrNothingToAnalyze = errors.New("select at least one symptom or describe how you feel")

// SessionSnapshot is a point-in-time copy of a session's state.
type SessionSnapshot struct {
	ID         string              `json:"id"`
	Locale     string              `json:"locale"`
	Text       string              `json:"text"`
	Manual     []domain.SymptomKey `json:"manual"`
	Auto       []domain.SymptomKey `json:"auto"`
	Excluded   []domain.SymptomKey `json:"excluded"`
	Selected   []domain.SymptomKey `json:"selected"`
	CanAnalyze bool                `json:"canAnalyze"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// SelectionSession tracks the symptom checklist for one user: keys picked by
// hand, keys suggested from the description and suggestions the user
// rejected. It is safe for concurrent use.
type SelectionSession struct {
	id      string
	service *TriageService

	mu        sync.Mutex
	locale    string
	text      string
	manual    domain.SymptomKeySet
	auto      domain.SymptomKeySet
	excluded  domain.SymptomKeySet
	updatedAt time.Time
}

// NewSelectionSession creates an empty session.
func NewSelectionSession(service *TriageService, locale string) *SelectionSession {
	return &SelectionSession{
		id:        uuid.New().String(),
		service:   service,
		locale:    locale,
		manual:    domain.NewSymptomKeySet(),
		auto:      domain.NewSymptomKeySet(),
		excluded:  domain.NewSymptomKeySet(),
		updatedAt: time.Now(),
	}
}

// ID returns the session identifier.
func (s *SelectionSession) ID() string {
	return s.id
}

// UpdateText replaces the description and recomputes the suggested keys,
// leaving out any the user rejected.
func (s *SelectionSession) UpdateText(text string) SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	s.auto = s.service.ResolveExcluding(text, s.locale, s.excluded)
	s.updatedAt = time.Now()
	return s.snapshotLocked()
}

// SetLocale changes the locale used for later resolution and analysis.
func (s *SelectionSession) SetLocale(locale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locale = locale
}

// Toggle flips a key. A hand-picked key is dropped, a suggested key is
// rejected, and an unselected key is picked by hand and no longer rejected.
func (s *SelectionSession) Toggle(key domain.SymptomKey) (SessionSnapshot, error) {
	if !key.IsValid() {
		return SessionSnapshot{}, domain.NewValidationError("key", "unknown symptom key", string(key))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.manual.Has(key):
		s.manual.Remove(key)
	case s.auto.Has(key):
		s.excluded.Add(key)
		s.auto.Remove(key)
	default:
		s.excluded.Remove(key)
		s.manual.Add(key)
	}
	s.updatedAt = time.Now()
	return s.snapshotLocked(), nil
}

// Selected returns hand-picked keys followed by suggested keys.
func (s *SelectionSession) Selected() []domain.SymptomKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manual.Union(s.auto).Keys()
}

// CanAnalyze reports whether any key is selected.
func (s *SelectionSession) CanAnalyze() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manual.Len()+s.auto.Len() > 0
}

// Snapshot returns the current state.
func (s *SelectionSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Analyze scores the current selection with the trimmed description and
// saves the result.
func (s *SelectionSession) Analyze(ctx context.Context) (*domain.AnalysisResult, error) {
	s.mu.Lock()
	keys := s.manual.Union(s.auto).Keys()
	desc := strings.TrimSpace(s.text)
	locale := s.locale
	s.mu.Unlock()

	if len(keys) == 0 && desc == "" {
		return nil, ErrNothingToAnalyze
	}
	return s.service.AnalyzeAndSave(ctx, keys, desc, locale), nil
}

func (s *SelectionSession) snapshotLocked() SessionSnapshot {
	selected := s.manual.Union(s.auto)
	return SessionSnapshot{
		ID:         s.id,
		Locale:     s.locale,
		Text:       s.text,
		Manual:     s.manual.Keys(),
		Auto:       s.auto.Keys(),
		Excluded:   s.excluded.Keys(),
		Selected:   selected.Keys(),
		CanAnalyze: selected.Len() > 0,
		UpdatedAt:  s.updatedAt,
	}
}
