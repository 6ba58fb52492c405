package rollout

import (
	"context"
	"sync"

	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

// Catalog supplies deployments and their schedules. Implementations: the
// in-memory catalog below and the postgres store in internal/storage.
type Catalog interface {
	DeploymentByID(ctx context.Context, deploymentID id.DeploymentID) (*Deployment, error)
	ScheduleByID(ctx context.Context, scheduleID id.ScheduleID) (*Schedule, error)
}

// MemoryCatalog is an in-memory deployment/schedule catalog for tests and
// single-node development.
type MemoryCatalog struct {
	mu          sync.RWMutex
	deployments map[id.DeploymentID]Deployment
	schedules   map[id.ScheduleID]Schedule
}

// NewMemoryCatalog builds an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		deployments: make(map[id.DeploymentID]Deployment),
		schedules:   make(map[id.ScheduleID]Schedule),
	}
}

// PutDeployment adds or replaces a deployment.
func (c *MemoryCatalog) PutDeployment(d Deployment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deployments[d.ID] = d
}

// PutSchedule adds or replaces a schedule.
func (c *MemoryCatalog) PutSchedule(s Schedule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedules[s.ID] = s
}

func (c *MemoryCatalog) DeploymentByID(_ context.Context, deploymentID id.DeploymentID) (*Deployment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.deployments[deploymentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &d, nil
}

func (c *MemoryCatalog) ScheduleByID(_ context.Context, scheduleID id.ScheduleID) (*Schedule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schedules[scheduleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &s, nil
}
