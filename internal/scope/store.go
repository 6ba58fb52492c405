package scope

import (
	"context"
	"sync"

	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

// Catalog supplies domains and scopes by id.
type Catalog interface {
	DomainByID(ctx context.Context, domainID id.DomainID) (*Domain, error)
	ScopeByID(ctx context.Context, scopeID id.ScopeID) (*Scope, error)
}

// MemoryCatalog is an in-memory domain/scope catalog for tests and
// single-node development.
type MemoryCatalog struct {
	mu      sync.RWMutex
	domains map[id.DomainID]Domain
	scopes  map[id.ScopeID]Scope
}

// NewMemoryCatalog builds an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		domains: make(map[id.DomainID]Domain),
		scopes:  make(map[id.ScopeID]Scope),
	}
}

// PutDomain adds or replaces a domain.
func (c *MemoryCatalog) PutDomain(d Domain) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.domains[d.ID] = d
}

// PutScope adds or replaces a scope.
func (c *MemoryCatalog) PutScope(s Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scopes[s.ID] = s
}

func (c *MemoryCatalog) DomainByID(_ context.Context, domainID id.DomainID) (*Domain, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.domains[domainID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &d, nil
}

func (c *MemoryCatalog) ScopeByID(_ context.Context, scopeID id.ScopeID) (*Scope, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scopes[scopeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &s, nil
}
