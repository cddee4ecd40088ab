package scores

import (
	"context"
	"sort"
	"sync"

	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	scores map[id.ScoreID]Score
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{scores: make(map[id.ScoreID]Score)}
}

func (s *InMemoryStore) Create(_ context.Context, score *Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.scores[score.ID]; exists {
		return sentinel.ErrConflict
	}
	s.scores[score.ID] = cloneScore(score)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, scoreID id.ScoreID) (*Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[scoreID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := cloneScore(&score)
	return &copied, nil
}

func (s *InMemoryStore) ListByArcher(_ context.Context, archerID id.ArcherID) ([]*Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Score
	for _, score := range s.scores {
		if score.ArcherID == archerID {
			copied := cloneScore(&score)
			copied.Ends = nil // list views carry totals only
			out = append(out, &copied)
		}
	}
	sortNewestShotFirst(out)
	return out, nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]*Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Score, 0, len(s.scores))
	for _, score := range s.scores {
		copied := cloneScore(&score)
		copied.Ends = nil
		out = append(out, &copied)
	}
	sortNewestShotFirst(out)
	return out, nil
}

func sortNewestShotFirst(list []*Score) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].DateShot.Equal(list[j].DateShot) {
			return list[i].DateShot.After(list[j].DateShot)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
}

func cloneScore(score *Score) Score {
	copied := *score
	if score.CompetitionID != nil {
		compID := *score.CompetitionID
		copied.CompetitionID = &compID
	}
	copied.Ends = make([]End, len(score.Ends))
	for i, end := range score.Ends {
		copiedEnd := end
		copiedEnd.Arrows = append([]Arrow(nil), end.Arrows...)
		copied.Ends[i] = copiedEnd
	}
	return copied
}
