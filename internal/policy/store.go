package policy

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Catalog,FactSource,Deriver

import (
	"context"
	"sync"

	id "muster/pkg/domain"
)

// Catalog supplies the enabled policy collection. Implementations: the
// in-memory catalog below and the postgres store in internal/storage.
type Catalog interface {
	EnabledPolicies(ctx context.Context) ([]Policy, error)
}

// FactSource provides the machine state policy resolution needs.
type FactSource interface {
	MachineFacts(ctx context.Context, machineID id.MachineID) ([]id.FactID, error)
	MachineProject(ctx context.Context, machineID id.MachineID) (id.ProjectID, error)
}

// Deriver synthesizes fact-set membership facts for a seed fact collection.
type Deriver interface {
	DeriveSets(ctx context.Context, seed []id.FactID) ([]id.FactID, error)
}

// MemoryCatalog is a static in-memory policy catalog for tests and
// single-node development.
type MemoryCatalog struct {
	mu       sync.RWMutex
	policies []Policy
}

// NewMemoryCatalog builds a catalog from the given policies.
func NewMemoryCatalog(policies ...Policy) *MemoryCatalog {
	return &MemoryCatalog{policies: policies}
}

// Put adds or replaces a policy by ID.
func (c *MemoryCatalog) Put(p Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.policies {
		if c.policies[i].ID == p.ID {
			c.policies[i] = p
			return
		}
	}
	c.policies = append(c.policies, p)
}

func (c *MemoryCatalog) EnabledPolicies(_ context.Context) ([]Policy, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Policy, 0, len(c.policies))
	for _, p := range c.policies {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out, nil
}
