package store

import (
	"context"
	"sync"

	"caseworks/internal/stay/models"
	"caseworks/internal/stay/service"
	id "caseworks/pkg/domain"
	"caseworks/pkg/platform/sentinel"
)

// InMemoryStore keeps stays in a map. One mutex spans every check and
// mutation, so the occupancy invariants hold under concurrent use exactly as
// the postgres store's constraints do.
type InMemoryStore struct {
	mu    sync.RWMutex
	stays map[id.StayID]*models.Stay
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{stays: make(map[id.StayID]*models.Stay)}
}

func (s *InMemoryStore) Create(_ context.Context, stay *models.Stay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stay.Status == models.StatusActive {
		if err := s.checkOccupancy(stay); err != nil {
			return err
		}
	}
	copied := *stay
	s.stays[stay.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, stayID id.StayID) (*models.Stay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stay, ok := s.stays[stayID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *stay
	return &copied, nil
}

func (s *InMemoryStore) Update(_ context.Context, stay *models.Stay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stays[stay.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if stay.Status == models.StatusActive {
		if err := s.checkOccupancy(stay); err != nil {
			return err
		}
	}
	copied := *stay
	s.stays[stay.ID] = &copied
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, stayID id.StayID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stays[stayID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.stays, stayID)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter service.Filter) ([]*models.Stay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Stay
	for _, stay := range s.stays {
		if filter.BeneficiaryID != nil && stay.BeneficiaryID != *filter.BeneficiaryID {
			continue
		}
		if filter.Status != nil && stay.Status != *filter.Status {
			continue
		}
		copied := *stay
		out = append(out, &copied)
	}
	return out, nil
}

// checkOccupancy enforces the two exclusivity invariants against all other
// records. Caller must hold the write lock.
func (s *InMemoryStore) checkOccupancy(candidate *models.Stay) error {
	for _, other := range s.stays {
		if other.ID == candidate.ID || other.Status != models.StatusActive {
			continue
		}
		if other.BeneficiaryID == candidate.BeneficiaryID {
			return service.ErrBeneficiaryHasActiveStay
		}
		if other.Dormitory == candidate.Dormitory && other.Bed == candidate.Bed {
			return service.ErrBedOccupied
		}
	}
	return nil
}
