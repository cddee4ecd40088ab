package staging

import (
	"context"
	"sort"
	"sync"

	"quiverbook/internal/scoring"
	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
)

// InMemoryStore backs unit tests and local development. All methods copy on
// the way in and out so callers can never mutate stored state directly.
type InMemoryStore struct {
	mu     sync.RWMutex
	scores map[id.StagingScoreID]StagingScore
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{scores: make(map[id.StagingScoreID]StagingScore)}
}

func (s *InMemoryStore) Create(_ context.Context, score *StagingScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.scores[score.ID]; exists {
		return sentinel.ErrConflict
	}
	s.scores[score.ID] = cloneStaging(score)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, stagingID id.StagingScoreID) (*StagingScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[stagingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := cloneStaging(&score)
	return &copied, nil
}

func (s *InMemoryStore) ListPending(_ context.Context) ([]*StagingScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*StagingScore
	for _, score := range s.scores {
		if score.Status == StatusPending {
			copied := cloneStaging(&score)
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]*StagingScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*StagingScore, 0, len(s.scores))
	for _, score := range s.scores {
		copied := cloneStaging(&score)
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, stagingID id.StagingScoreID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scores[stagingID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.scores, stagingID)
	return nil
}

// Execute holds the store lock across validate and apply, so the transition
// guard and the write are one atomic step.
func (s *InMemoryStore) Execute(_ context.Context, stagingID id.StagingScoreID,
	validate func(*StagingScore) error, apply func(*StagingScore)) (*StagingScore, error) {

	s.mu.Lock()
	defer s.mu.Unlock()
	score, ok := s.scores[stagingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(&score); err != nil {
		return nil, err
	}
	apply(&score)
	s.scores[stagingID] = score
	copied := cloneStaging(&score)
	return &copied, nil
}

func cloneStaging(score *StagingScore) StagingScore {
	copied := *score
	if score.ResolvedAt != nil {
		resolvedAt := *score.ResolvedAt
		copied.ResolvedAt = &resolvedAt
	}
	copied.Breakdown = make([]scoring.RangeScores, len(score.Breakdown))
	for i, rng := range score.Breakdown {
		copiedRange := rng
		copiedRange.Ends = make([][]scoring.ArrowValue, len(rng.Ends))
		for j, end := range rng.Ends {
			copiedRange.Ends[j] = append([]scoring.ArrowValue(nil), end...)
		}
		copied.Breakdown[i] = copiedRange
	}
	return copied
}
