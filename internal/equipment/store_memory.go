package equipment

import (
	"context"
	"sort"
	"strings"
	"sync"

	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items map[id.EquipmentID]Equipment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[id.EquipmentID]Equipment)}
}

func (s *InMemoryStore) Create(_ context.Context, eq *Equipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if strings.EqualFold(existing.Name, eq.Name) {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.items[eq.ID] = *eq
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, equipmentID id.EquipmentID) (*Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eq, ok := s.items[equipmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := eq
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Equipment, 0, len(s.items))
	for _, eq := range s.items {
		copied := eq
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
