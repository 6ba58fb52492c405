package facts

import (
	"context"
	"sort"
	"sync"

	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

// MemoryStore is the in-memory fact inventory used by tests and single-node
// development. It seeds the reserved SET category and the universal
// "All Systems" fact.
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[id.CategoryID]*Category
	facts      map[id.FactID]*Fact
	machines   map[id.MachineID]*Machine
	nextFactID id.FactID
	nextCatID  id.CategoryID
}

// NewMemoryStore builds an empty store pre-seeded with the SET category and
// the universal fact (ID 1).
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		categories: make(map[id.CategoryID]*Category),
		facts:      make(map[id.FactID]*Fact),
		machines:   make(map[id.MachineID]*Machine),
		nextFactID: id.UniversalFactID + 1,
		nextCatID:  2,
	}
	s.categories[1] = &Category{ID: 1, Name: id.SetCategoryName, Kind: KindNormal, Sort: SortBasic}
	s.facts[id.UniversalFactID] = &Fact{
		ID:         id.UniversalFactID,
		CategoryID: 1,
		Value:      id.UniversalFactValue,
	}
	return s
}

// SetCategoryID is the seeded ID of the reserved SET category.
const SetCategoryID id.CategoryID = 1

// AddCategory registers a category and returns it with an assigned ID.
func (s *MemoryStore) AddCategory(category Category) *Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	category.ID = s.nextCatID
	s.nextCatID++
	s.categories[category.ID] = &category
	return &category
}

// PutMachine registers or replaces a machine.
func (s *MemoryStore) PutMachine(machine Machine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := machine
	s.machines[m.ID] = &m
}

func (s *MemoryStore) CategoryByID(_ context.Context, categoryID id.CategoryID) (*Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category, ok := s.categories[categoryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *category
	return &c, nil
}

func (s *MemoryStore) CategoryByName(_ context.Context, name string) (*Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, category := range s.categories {
		if category.Name == name {
			c := *category
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) FactByID(_ context.Context, factID id.FactID) (*Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fact, ok := s.facts[factID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	f := *fact
	return &f, nil
}

func (s *MemoryStore) FactsByIDs(_ context.Context, factIDs []id.FactID) (map[id.FactID]*Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.FactID]*Fact, len(factIDs))
	for _, factID := range factIDs {
		if fact, ok := s.facts[factID]; ok {
			f := *fact
			out[factID] = &f
		}
	}
	return out, nil
}

func (s *MemoryStore) FindFact(_ context.Context, categoryID id.CategoryID, value string) (*Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if fact := s.findLocked(categoryID, value); fact != nil {
		f := *fact
		return &f, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) findLocked(categoryID id.CategoryID, value string) *Fact {
	for _, fact := range s.facts {
		if fact.CategoryID == categoryID && fact.Value == value {
			return fact
		}
	}
	return nil
}

func (s *MemoryStore) FindOrCreateFact(_ context.Context, input *Fact) (*Fact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.findLocked(input.CategoryID, input.Value); existing != nil {
		f := *existing
		return &f, nil
	}
	fact := *input
	fact.ID = s.nextFactID
	s.nextFactID++
	s.facts[fact.ID] = &fact
	f := fact
	return &f, nil
}

func (s *MemoryStore) UpdateFact(_ context.Context, factID id.FactID, value, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fact, ok := s.facts[factID]
	if !ok {
		return sentinel.ErrNotFound
	}
	fact.Value = value
	fact.Description = description
	return nil
}

func (s *MemoryStore) DeleteFact(_ context.Context, factID id.FactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.facts[factID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.facts, factID)
	return nil
}

func (s *MemoryStore) MachineFacts(_ context.Context, machineID id.MachineID) ([]id.FactID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	machine, ok := s.machines[machineID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]id.FactID{}, machine.FactIDs...), nil
}

func (s *MemoryStore) MachineProject(_ context.Context, machineID id.MachineID) (id.ProjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	machine, ok := s.machines[machineID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return machine.ProjectID, nil
}

func (s *MemoryStore) MachineStatus(_ context.Context, machineID id.MachineID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	machine, ok := s.machines[machineID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return machine.Status, nil
}

// Machines returns all machines in ascending ID order for deterministic
// iteration in the rollout and scope modules.
func (s *MemoryStore) Machines(_ context.Context) ([]Machine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Machine, 0, len(s.machines))
	for _, machine := range s.machines {
		m := *machine
		m.FactIDs = append([]id.FactID{}, machine.FactIDs...)
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
