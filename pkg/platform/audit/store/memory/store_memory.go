// Package memory keeps audit events in process memory, in append order.
// Used by tests and by local runs without a database.
package memory

import (
	"context"
	"sync"

	id "caseworks/pkg/domain"
	audit "caseworks/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Clear drops all recorded events between tests.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorID id.UserID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []audit.Event
	for _, event := range s.events {
		if event.ActorID == actorID {
			matched = append(matched, event)
		}
	}
	return matched, nil
}
