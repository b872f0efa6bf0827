package store

import (
	"context"
	"sync"
	"time"

	"caseworks/internal/timesession/models"
	"caseworks/internal/timesession/service"
	id "caseworks/pkg/domain"
	"caseworks/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in a map. One mutex spans every check and
// mutation, so the one-active-session-per-pair invariant holds under
// concurrent use exactly as the postgres store's partial index does.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.TimeSessionID]*models.TimeSession
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[id.TimeSessionID]*models.TimeSession)}
}

func (s *InMemoryStore) Create(_ context.Context, session *models.TimeSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.IsActive {
		for _, other := range s.sessions {
			if other.IsActive && other.UserID == session.UserID && other.BeneficiaryID == session.BeneficiaryID {
				return service.ErrActiveSessionExists
			}
		}
	}
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, sessionID id.TimeSessionID) (*models.TimeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *InMemoryStore) FindActive(_ context.Context, userID id.UserID, beneficiaryID id.BeneficiaryID) (*models.TimeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.IsActive && session.UserID == userID && session.BeneficiaryID == beneficiaryID {
			copied := *session
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindLatestActiveByUser(_ context.Context, userID id.UserID) (*models.TimeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.TimeSession
	for _, session := range s.sessions {
		if !session.IsActive || session.UserID != userID {
			continue
		}
		if latest == nil || session.StartTime.After(latest.StartTime) {
			latest = session
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (s *InMemoryStore) CloseIfActive(_ context.Context, sessionID id.TimeSessionID, userID id.UserID, end time.Time, note string) (*models.TimeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || !session.IsActive || session.UserID != userID {
		return nil, sentinel.ErrNotFound
	}
	session.Close(end, note)
	copied := *session
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context, filter service.Filter) ([]*models.TimeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.TimeSession
	for _, session := range s.sessions {
		if filter.UserID != nil && session.UserID != *filter.UserID {
			continue
		}
		if filter.BeneficiaryID != nil && session.BeneficiaryID != *filter.BeneficiaryID {
			continue
		}
		if filter.Active != nil && session.IsActive != *filter.Active {
			continue
		}
		copied := *session
		out = append(out, &copied)
	}
	return out, nil
}
