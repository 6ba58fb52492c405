package factset

import (
	"context"
	"sort"
	"sync"

	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

// MemoryStore holds fact-set definitions in memory for tests and
// single-node development.
type MemoryStore struct {
	mu     sync.RWMutex
	sets   map[id.FactSetID]*FactSet
	nextID id.FactSetID
}

// NewMemoryStore builds an empty fact-set store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sets:   make(map[id.FactSetID]*FactSet),
		nextID: 1,
	}
}

func copySet(set *FactSet) *FactSet {
	c := *set
	c.IncludedFactIDs = append([]id.FactID{}, set.IncludedFactIDs...)
	c.ExcludedFactIDs = append([]id.FactID{}, set.ExcludedFactIDs...)
	return &c
}

// FactSets returns all sets in ascending name order.
func (s *MemoryStore) FactSets(_ context.Context) ([]FactSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FactSet, 0, len(s.sets))
	for _, set := range s.sets {
		out = append(out, *copySet(set))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) FactSetByID(_ context.Context, setID id.FactSetID) (*FactSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[setID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copySet(set), nil
}

func (s *MemoryStore) FactSetByName(_ context.Context, name string) (*FactSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, set := range s.sets {
		if set.Name == name {
			return copySet(set), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) CreateFactSet(_ context.Context, set *FactSet) (*FactSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sets {
		if existing.Name == set.Name {
			return nil, sentinel.ErrConflict
		}
	}
	created := copySet(set)
	created.ID = s.nextID
	s.nextID++
	s.sets[created.ID] = created
	return copySet(created), nil
}

func (s *MemoryStore) UpdateFactSet(_ context.Context, set *FactSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[set.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.sets[set.ID] = copySet(set)
	return nil
}

func (s *MemoryStore) DeleteFactSet(_ context.Context, setID id.FactSetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[setID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sets, setID)
	return nil
}
