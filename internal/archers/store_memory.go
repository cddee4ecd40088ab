package archers

import (
	"context"
	"sort"
	"sync"

	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
)

// InMemoryStore backs unit tests and local development.
type InMemoryStore struct {
	mu      sync.RWMutex
	archers map[id.ArcherID]Archer
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{archers: make(map[id.ArcherID]Archer)}
}

func (s *InMemoryStore) Create(_ context.Context, archer *Archer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.archers[archer.ID]; exists {
		return sentinel.ErrConflict
	}
	s.archers[archer.ID] = *archer
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, archerID id.ArcherID) (*Archer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	archer, ok := s.archers[archerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := archer
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Archer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Archer, 0, len(s.archers))
	for _, archer := range s.archers {
		copied := archer
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, archerID id.ArcherID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.archers[archerID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.archers, archerID)
	return nil
}
