package storage

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/lehigh-university-libraries/carcustomizer/internal/orchestrator"
	"github.com/lehigh-university-libraries/carcustomizer/internal/providers"
	"github.com/lehigh-university-libraries/carcustomizer/internal/registry"
)

// Session is one editor workspace: its views and the orchestrator that edits them
type Session struct {
	ID           string
	CreatedAt    time.Time
	Orchestrator *orchestrator.Orchestrator
}

// Registry returns the session's view registry
func (s *Session) Registry() *registry.Registry {
	return s.Orchestrator.Registry()
}

// Summary describes the session for API responses, with image URLs
// rooted at baseURL
func (s *Session) Summary(baseURL string) models.EditorSession {
	out := models.EditorSession{
		ID:        s.ID,
		Busy:      s.Orchestrator.Busy(),
		CreatedAt: s.CreatedAt,
	}
	if active, ok := s.Orchestrator.Active(); ok {
		out.Active = &active
	}
	for _, v := range s.Registry().GetAll() {
		viewURL := fmt.Sprintf("%s/api/sessions/%s/views/%s/image", baseURL, s.ID, v.ID)
		out.Views = append(out.Views, models.ViewSummary{
			ID:          v.ID,
			Label:       v.Label,
			Status:      v.Status,
			Modified:    !bytes.Equal(v.Current.Data, v.Original.Data),
			MIMEType:    v.Current.MIMEType,
			CurrentURL:  viewURL + "?variant=current",
			OriginalURL: viewURL + "?variant=original",
		})
	}
	return out
}

type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session over the bootstrapped views
func (s *SessionStore) Create(views []models.View, editor providers.Editor) (*Session, error) {
	reg, err := registry.New(views)
	if err != nil {
		return nil, err
	}
	session := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		Orchestrator: orchestrator.New(reg, editor),
	}
	s.Set(session.ID, session)
	return session, nil
}

func (s *SessionStore) Get(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(sessionID string, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

// GetAll returns every session, oldest first
func (s *SessionStore) GetAll() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Session, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return exists
}
