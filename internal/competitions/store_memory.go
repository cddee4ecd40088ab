package competitions

import (
	"context"
	"sort"
	"sync"

	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items map[id.CompetitionID]Competition
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[id.CompetitionID]Competition)}
}

func (s *InMemoryStore) Create(_ context.Context, competition *Competition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[competition.ID]; exists {
		return sentinel.ErrConflict
	}
	s.items[competition.ID] = *competition
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, competitionID id.CompetitionID) (*Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	competition, ok := s.items[competitionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := competition
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Competition, 0, len(s.items))
	for _, competition := range s.items {
		copied := competition
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
