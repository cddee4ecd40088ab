package rounds

import (
	"context"
	"sort"
	"sync"

	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	rounds map[id.RoundID]Round
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rounds: make(map[id.RoundID]Round)}
}

func (s *InMemoryStore) Create(_ context.Context, round *Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rounds[round.ID]; exists {
		return sentinel.ErrConflict
	}
	s.rounds[round.ID] = cloneRound(round)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, roundID id.RoundID) (*Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	round, ok := s.rounds[roundID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := cloneRound(&round)
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Round, 0, len(s.rounds))
	for _, round := range s.rounds {
		copied := cloneRound(&round)
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func cloneRound(r *Round) Round {
	copied := *r
	copied.Ranges = append([]RangeSegment(nil), r.Ranges...)
	copied.Equivalent = append([]id.RoundID(nil), r.Equivalent...)
	return copied
}
